package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/phonebook/internal/sqlite"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write all contacts to a JSONL file",
		Long:  "Export writes one JSON object per contact, in insertion order.\nThe file is replaced atomically.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			if err := backend.EnsureSchema(cmd.Context()); err != nil {
				return sysError(err)
			}
			n, err := backend.ExportJSONL(cmd.Context(), args[0])
			if err != nil {
				return sysError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d contacts to %s\n", n, args[0])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add contacts from a JSONL file",
		Long:  "Import adds every valid record of a JSONL file as a new contact.\nMalformed lines and records missing a name or number are skipped.\nIDs in the file are ignored.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contacts, err := sqlite.ReadJSONL(args[0])
			if err != nil {
				return userError(err)
			}

			d, _, err := a.openDirectory(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			n, err := d.Import(cmd.Context(), contacts)
			if err != nil {
				return sysError(fmt.Errorf("imported %d of %d contacts: %w", n, len(contacts), err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d contacts from %s\n", n, args[0])
			return nil
		},
	}
}
