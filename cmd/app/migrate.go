package main

import (
	"fmt"
	"strconv"

	"AstroChart/internal/repository/migrations"
	"AstroChart/pkg/postgres"

	"github.com/spf13/cobra"
)

func migrateCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	open := func() (*postgres.Client, error) {
		cfg, err := load()
		if err != nil {
			return nil, err
		}
		return postgres.NewClient(postgres.WithDSN(cfg.Postgres.DSN))
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				pg, err := open()
				if err != nil {
					return err
				}
				defer pg.Close()
				if err := migrations.Up(pg.DB().DB); err != nil {
					return err
				}
				return printVersion(cmd, pg)
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1 step)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n < 1 {
						return fmt.Errorf("steps must be a positive integer, got %q", args[0])
					}
					steps = n
				}
				pg, err := open()
				if err != nil {
					return err
				}
				defer pg.Close()
				if err := migrations.Down(pg.DB().DB, steps); err != nil {
					return err
				}
				return printVersion(cmd, pg)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				pg, err := open()
				if err != nil {
					return err
				}
				defer pg.Close()
				return printVersion(cmd, pg)
			},
		},
	)
	return cmd
}

func printVersion(cmd *cobra.Command, pg *postgres.Client) error {
	v, dirty, err := migrations.Version(pg.DB().DB)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", v, dirty)
	return nil
}
