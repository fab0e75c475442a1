package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"display"},
		Short:   "List all contacts in the order they were added",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := a.openDirectory(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				contacts := d.List()
				if contacts == nil {
					contacts = []types.Contact{}
				}
				return writeJSON(out, contacts)
			}

			if d.Len() == 0 {
				fmt.Fprintln(out, "Phone book is empty.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tNUMBER")
			for c := range d.All() {
				fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Number)
			}
			return tw.Flush()
		},
	}
}
