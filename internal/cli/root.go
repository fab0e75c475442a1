// Package cli implements the phonebook command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/phonebook/internal/logger"
	"github.com/mesh-intelligence/phonebook/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app is the state shared by one command tree: flags, the loaded config
// and the logger built from it.
type app struct {
	flags     rootFlags
	v         *viper.Viper
	configDir string
	logger    *slog.Logger
	level     slog.LevelVar
	closeLog  func() error
}

// NewRootCmd creates the top-level "phonebook" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{
		v:        viper.New(),
		logger:   slog.New(slog.DiscardHandler),
		closeLog: func() error { return nil },
	}

	root := &cobra.Command{
		Use:   "phonebook",
		Short: "A small persistent phone book",
		Long:  "Phonebook stores name/number pairs in SQLite and serves them\nfrom the command line, a REST API and an HTML form.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("log-format", "", "log format: text or json")
	pf.String("log-file", "", "append logs to this file instead of stderr")
	_ = a.v.BindPFlag(cfgKeyLogLevel, pf.Lookup("log-level"))
	_ = a.v.BindPFlag(cfgKeyLogFormat, pf.Lookup("log-format"))
	_ = a.v.BindPFlag(cfgKeyLogFile, pf.Lookup("log-file"))

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newServeCmd(a))

	for _, cmd := range root.Commands() {
		a.closeLogAfter(cmd)
	}
	return root
}

// closeLogAfter makes cmd release the log file when it returns, including
// on error, where cobra skips the post-run hooks.
func (a *app) closeLogAfter(cmd *cobra.Command) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if cerr := a.closeLog(); cerr != nil && err == nil {
			return sysError(fmt.Errorf("close log file: %w", cerr))
		}
		return err
	}
}

// setup resolves the config directory, loads config.yaml and builds the
// logger. Logs go to stderr unless log_file says otherwise.
func (a *app) setup(stderr io.Writer) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := loadConfig(a.v, configDir); err != nil {
		return sysError(err)
	}
	a.configDir = configDir

	a.logger, a.closeLog = logger.New(logger.Options{
		Level:    a.v.GetString(cfgKeyLogLevel),
		File:     a.v.GetString(cfgKeyLogFile),
		Format:   a.v.GetString(cfgKeyLogFormat),
		Output:   stderr,
		LevelVar: &a.level,
	})
	return nil
}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by input: not found, empty fields, bad args.
func userError(err error) error { return &exitError{code: exitUserError, err: err} }

// sysError marks err as an environment or storage failure.
func sysError(err error) error { return &exitError{code: exitSysError, err: err} }

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Unmarked errors come from cobra itself: unknown command, bad flags.
	return exitUserError
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "phonebook:", err)
		os.Exit(exitCode(err))
	}
}
