package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Print the number of the first contact with this exact name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if name == "" {
				return userError(errors.New("please enter a name to search"))
			}

			d, _, err := a.openDirectory(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			number, err := d.Search(name)
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					return userError(fmt.Errorf("contact '%s' not found in the phone book", name))
				}
				return classify(err)
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), types.Contact{Name: name, Number: number})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Contact found - Name: %s, Number: %s\n", name, number)
			return nil
		},
	}
}
