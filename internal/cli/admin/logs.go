package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/loquent-ai/loquent/internal/config"
	"github.com/loquent-ai/loquent/internal/repository"
	"github.com/spf13/cobra"
)

func LogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Manage query logs",
		Long:  "Inspect and prune recorded query logs",
	}

	cmd.AddCommand(LogsPruneCmd())

	return cmd
}

func LogsPruneCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete query logs older than the retention window",
		Long:  "Delete query logs older than the given number of days, in one pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runLogsPrune(outputFormat, days)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().IntVarP(&days, "days", "d", 0, "Retention window in days (defaults to LOQUENT_LOG_RETENTION_DAYS)")

	return cmd
}

func runLogsPrune(outputFormat string, days int) error {
	ctx := context.Background()

	cfg, pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if days <= 0 {
		days = cfg.LogRetentionDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	queryLogRepo := repository.NewQueryLogRepository(pool)
	deleted, err := queryLogRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune query logs: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Deleted %d query logs older than %s\n", deleted, cutoff.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func getDBPool(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return cfg, pool, nil
}
