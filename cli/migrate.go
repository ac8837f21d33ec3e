package cli

import (
	"github.com/spf13/cobra"

	"github.com/intakehq/intake/engine/infra/store"
	"github.com/intakehq/intake/pkg/config"
	"github.com/intakehq/intake/pkg/logger"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply entity store migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := setupContext(cmd.Context(), cfg)
			dbCfg := &store.Config{
				ConnString: cfg.Database.ConnString,
				Host:       cfg.Database.Host,
				Port:       cfg.Database.Port,
				User:       cfg.Database.User,
				Password:   cfg.Database.Password,
				DBName:     cfg.Database.Name,
				SSLMode:    cfg.Database.SSLMode,
			}
			if err := store.ApplyMigrations(ctx, dbCfg.DSN()); err != nil {
				return err
			}
			logger.FromContext(ctx).Info("migrations applied")
			return nil
		},
	}
}
