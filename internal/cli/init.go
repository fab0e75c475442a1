package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize phonebook storage",
		Long:  "Create the configuration and data directories, write a default config.yaml\nif none exists, and create the contacts table.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := a.resolveDataDir()
			if err != nil {
				return sysError(fmt.Errorf("resolve data dir: %w", err))
			}
			if _, err := writeConfigIfMissing(a.configDir, a.flags.dataDir); err != nil {
				return sysError(err)
			}

			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()
			if err := backend.EnsureSchema(cmd.Context()); err != nil {
				return sysError(fmt.Errorf("initialize storage: %w", err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Phone book initialized successfully")
			fmt.Fprintln(out, "  config:", a.configDir)
			fmt.Fprintln(out, "  data:  ", dataDir)
			return nil
		},
	}
}
