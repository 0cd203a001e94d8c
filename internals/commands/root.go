// Package commands holds the picton CLI: the HTTP server and the maintenance tasks.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/configs"
	database "github.com/sudoneoox/Picton/internals/databases"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "picton",
		Short:         "University form approval backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd(), newPersonalIDsCmd())
	return root
}

// Execute runs the CLI; "serve" is the default when no subcommand is given.
func Execute(ctx context.Context) int {
	root := newRootCmd()
	if len(os.Args) == 1 {
		root.SetArgs([]string{"serve"})
	}
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// bootstrap loads the environment, installs the logger and opens the database.
func bootstrap() (configs.Config, *gorm.DB, func(), error) {
	cfg := configs.LoadEnv()
	logger, err := configs.InitLogger(cfg)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.ConnectDB(cfg)
	if err != nil {
		_ = logger.Sync()
		return cfg, nil, nil, err
	}
	database.TunePool(db)
	cleanup := func() {
		database.Close(db)
		_ = zap.L().Sync()
	}
	return cfg, db, cleanup, nil
}
