package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/addressbook/addressbook-go/internal/config"
	"github.com/addressbook/addressbook-go/internal/repository"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	for _, c := range []struct {
		op    repository.MigrateCommand
		short string
	}{
		{repository.MigrateUp, "Apply all pending migrations"},
		{repository.MigrateDown, "Roll back the latest migration"},
		{repository.MigrateStatus, "Print migration status"},
	} {
		op := c.op
		cmd.AddCommand(&cobra.Command{
			Use:   string(op),
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context(), op)
			},
		})
	}
	return cmd
}

func runMigrate(ctx context.Context, op repository.MigrateCommand) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db, op); err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}
	return nil
}
