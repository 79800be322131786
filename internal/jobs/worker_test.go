package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockQueryLogPruner is a mock implementation of QueryLogPruner
type MockQueryLogPruner struct {
	mock.Mock
}

func (m *MockQueryLogPruner) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestRetentionProcessor_ProcessJobs tests log pruning with the configured window
func TestRetentionProcessor_ProcessJobs(t *testing.T) {
	mockPruner := new(MockQueryLogPruner)
	mockPruner.On("DeleteOlderThan", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		// Cutoff should be roughly seven days ago.
		expected := time.Now().UTC().Add(-7 * 24 * time.Hour)
		diff := cutoff.Sub(expected)
		return diff > -time.Minute && diff < time.Minute
	})).Return(int64(3), nil)

	processor := NewRetentionProcessor(mockPruner, 7)
	err := processor.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockPruner.AssertExpectations(t)
}

// TestRetentionProcessor_DefaultWindow tests the fallback retention window
func TestRetentionProcessor_DefaultWindow(t *testing.T) {
	mockPruner := new(MockQueryLogPruner)
	mockPruner.On("DeleteOlderThan", mock.Anything, mock.Anything).Return(int64(0), nil)

	processor := NewRetentionProcessor(mockPruner, 0)
	err := processor.ProcessJobs(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, time.Duration(DefaultRetentionDays)*24*time.Hour, processor.retention)
}

// TestRetentionProcessor_PrunerError tests error propagation to the worker loop
func TestRetentionProcessor_PrunerError(t *testing.T) {
	mockPruner := new(MockQueryLogPruner)
	mockPruner.On("DeleteOlderThan", mock.Anything, mock.Anything).Return(int64(0), errors.New("database error"))

	processor := NewRetentionProcessor(mockPruner, 7)
	err := processor.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to prune query logs")
	mockPruner.AssertExpectations(t)
}
