package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	database "github.com/sudoneoox/Picton/internals/databases"
	"github.com/sudoneoox/Picton/internals/seeds"
)

func newSeedCmd() *cobra.Command {
	var (
		file    string
		migrate bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the university hierarchy, demo approvers and form templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seeds.Default()
			if file != "" {
				raw, rerr := os.ReadFile(file)
				if rerr != nil {
					return rerr
				}
				f, err = seeds.Parse(raw)
			}
			if err != nil {
				return err
			}

			_, db, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()
			if migrate {
				if err := database.AutoMigrate(db); err != nil {
					return err
				}
			}
			sum, err := seeds.Run(cmd.Context(), db, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d units, %d users, %d approver links, %d templates\n",
				sum.Units, sum.Users, sum.Approvers, sum.Templates)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML seed file (default: embedded university seed)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Run migrations before seeding")
	return cmd
}
