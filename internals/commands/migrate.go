package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	database "github.com/sudoneoox/Picton/internals/databases"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()
			if err := database.AutoMigrate(db.WithContext(cmd.Context())); err != nil {
				return err
			}
			zap.L().Info("schema migrated", zap.Int("tables", len(database.Models())))
			return nil
		},
	}
}
