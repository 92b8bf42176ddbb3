package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/study-planner/internal/config"
	"github.com/example/study-planner/internal/db"
	"github.com/example/study-planner/internal/logging"
	"github.com/example/study-planner/internal/migrate"
	"github.com/example/study-planner/internal/planner"
	"github.com/example/study-planner/internal/postgres"
	"github.com/example/study-planner/internal/replan"
	"github.com/example/study-planner/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the scheduling API",
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

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}

			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			store := postgres.NewStore(d)
			loc := cfg.Location()
			engine := planner.NewEngine(store, log, planner.WithNow(func() time.Time {
				return time.Now().In(loc)
			}))

			if cfg.ReplanTime != "" {
				rp := replan.New(store, engine, log, loc)
				if err := rp.Start(cfg.ReplanTime); err != nil {
					return fmt.Errorf("start replanner: %w", err)
				}
				defer rp.Stop()
			}

			ws := &web.Server{Engine: engine, Log: log}
			if err := web.Start(ctx, cfg.ListenAddr, ws.Routes(), log); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
