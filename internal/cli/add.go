package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <number>",
		Short: "Add a contact",
		Long:  "Add stores a new contact. Names need not be unique; adding the same\nname twice creates two contacts.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := types.Contact{Name: args[0], Number: args[1]}
			if err := c.Validate(); err != nil {
				return userError(fmt.Errorf("please enter both name and number: %w", err))
			}

			d, _, err := a.openDirectory(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			added, err := d.Add(cmd.Context(), c.Name, c.Number)
			if err != nil {
				return sysError(fmt.Errorf("error adding contact: %w", err))
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), added)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Contact '%s' added successfully.\n", added.Name)
			return nil
		},
	}
}
