package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.DB.Driver != config.DriverPostgres {
				return errors.New("migrate доступен только для db.driver=postgres")
			}

			db, err := config.OpenPostgres(context.Background(), cfg.DB, log)
			if err != nil {
				return err
			}
			defer db.Close()
			return config.MigrateUp(db, cfg.Migrations.Path, log)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return errors.New("--steps должен быть > 0")
			}
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.DB.Driver != config.DriverPostgres {
				return errors.New("migrate доступен только для db.driver=postgres")
			}

			db, err := config.OpenPostgres(context.Background(), cfg.DB, log)
			if err != nil {
				return err
			}
			defer db.Close()
			return config.MigrateDown(db, cfg.Migrations.Path, steps, log)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}
