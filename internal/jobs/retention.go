package jobs

import (
	"context"
	"fmt"
	"log"
	"time"
)

// DefaultRetentionDays keeps query logs for thirty days unless configured
// otherwise.
const DefaultRetentionDays = 30

// QueryLogPruner deletes query logs older than a cutoff.
type QueryLogPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionProcessor prunes aged query logs on each worker tick.
type RetentionProcessor struct {
	pruner    QueryLogPruner
	retention time.Duration
}

// NewRetentionProcessor creates a RetentionProcessor. A non-positive
// retentionDays falls back to the default.
func NewRetentionProcessor(pruner QueryLogPruner, retentionDays int) *RetentionProcessor {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &RetentionProcessor{
		pruner:    pruner,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// ProcessJobs deletes logs past the retention window.
func (p *RetentionProcessor) ProcessJobs(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-p.retention)
	deleted, err := p.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune query logs: %w", err)
	}
	if deleted > 0 {
		log.Printf("Pruned %d query logs older than %s", deleted, cutoff.Format(time.RFC3339))
	}
	return nil
}
