package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete every contact with this exact name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if name == "" {
				return userError(errors.New("please enter a name to delete"))
			}

			d, _, err := a.openDirectory(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			n, err := d.Delete(cmd.Context(), name)
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					return userError(fmt.Errorf("contact '%s' not found in the phone book", name))
				}
				return sysError(fmt.Errorf("error deleting contact: %w", err))
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"deleted": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Contact '%s' deleted successfully.\n", name)
			return nil
		},
	}
}
