package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/carepoint/scheduling-api/internal/core/service"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and the demo directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

func runSeed(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	st, err := openStores(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer st.close(log)

	seeder := service.NewSeeder(st.users, st.doctors, st.patients, log).WithEmailRegistry(st.emails)
	if err := seeder.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}
	if err := seeder.SeedDirectory(ctx); err != nil {
		return err
	}
	log.Info().Msg("seed complete")
	return nil
}
