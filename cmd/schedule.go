package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/study-planner/internal/config"
	"github.com/example/study-planner/internal/db"
	"github.com/example/study-planner/internal/logging"
	"github.com/example/study-planner/internal/migrate"
	"github.com/example/study-planner/internal/planner"
	"github.com/example/study-planner/internal/postgres"
)

func newScheduleCmd() *cobra.Command {
	var userID string

	c := &cobra.Command{
		Use:   "schedule",
		Short: "Run the scheduling engine once for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			log, err := logging.New(logging.Options{
				Level:    cfg.LogLevel,
				Output:   cfg.LogOutput,
				FilePath: cfg.LogFilePath,
			})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			loc := cfg.Location()
			engine := planner.NewEngine(postgres.NewStore(d), log, planner.WithNow(func() time.Time {
				return time.Now().In(loc)
			}))

			result, err := engine.ScheduleForUser(ctx, userID)
			if err != nil {
				return err
			}

			switch result.Outcome {
			case planner.OutcomeNoPreferences:
				fmt.Fprintln(os.Stdout, "no preferences found for user")
			case planner.OutcomeNothingToSchedule:
				fmt.Fprintln(os.Stdout, "nothing to schedule")
			default:
				for _, wr := range result.Blocks {
					status := "written"
					if wr.Err != nil {
						status = "failed: " + wr.Err.Error()
					}
					fmt.Fprintf(os.Stdout, "task=%s %s..%s color=%s %s\n",
						wr.Block.TaskID,
						wr.Block.StartAt.Format(time.RFC3339),
						wr.Block.EndAt.Format(time.RFC3339),
						wr.Block.Color,
						status)
				}
				fmt.Fprintf(os.Stdout, "%d block(s) planned, %d failed\n", len(result.Blocks), len(result.Failed()))
			}
			return nil
		},
	}

	c.Flags().StringVar(&userID, "user-id", "", "user id")
	_ = c.MarkFlagRequired("user-id")
	return c
}
