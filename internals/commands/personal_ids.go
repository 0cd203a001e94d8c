package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	userService "github.com/sudoneoox/Picton/internals/features/users/user/service"
)

func newPersonalIDsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-personal-ids",
		Short: "Assign a 7-digit personal id to every user that lacks one",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()
			n, err := userService.New(db).GenerateMissingPersonalIDs(cmd.Context())
			if err != nil {
				return fmt.Errorf("after %d users: %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "assigned %d personal ids\n", n)
			return nil
		},
	}
}
