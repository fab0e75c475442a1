package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/phonebook/internal/logger"
	"github.com/mesh-intelligence/phonebook/internal/server"
	"github.com/mesh-intelligence/phonebook/pkg/phonebook"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the phone book over HTTP",
		Long:  "Serve exposes the HTML form at /, the REST API under /api,\nhealth probes at /liveness and /readiness, and metrics at /metrics.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, backend, err := a.openDirectory(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			handler := server.NewRouter(d, server.Options{
				Title:   "Phone Book",
				Version: phonebook.Version,
				Ready:   backend.Ping,
				Logger:  a.logger,
			})
			srv := server.NewServer(server.ServerOptions{Addr: a.v.GetString(cfgKeyListen)}, handler, a.logger)

			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return sysError(fmt.Errorf("listen: %w", err))
			}
			a.watchConfig()
			a.logger.Info("serving phone book", "addr", ln.Addr().String(), "contacts", d.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", ln.Addr())

			errc := make(chan error, 1)
			go func() { errc <- srv.Serve(ln) }()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return sysError(fmt.Errorf("serve: %w", err))
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("could not shutdown the server", "err", err)
			}
			a.logger.Info("server closed")
			return nil
		},
	}
	cmd.Flags().String("listen", "", "address to listen on (default from config, localhost:8080)")
	_ = a.v.BindPFlag(cfgKeyListen, cmd.Flags().Lookup("listen"))
	return cmd
}

// watchConfig applies log_level changes in config.yaml while serving. Other
// keys take effect on restart.
func (a *app) watchConfig() {
	if a.v.ConfigFileUsed() == "" {
		return
	}
	a.v.OnConfigChange(func(e fsnotify.Event) {
		lvl, err := logger.ParseLevel(a.v.GetString(cfgKeyLogLevel))
		if err != nil {
			a.logger.Warn("ignoring config change", "file", e.Name, "err", err)
			return
		}
		if lvl != a.level.Level() {
			a.level.Set(lvl)
			a.logger.Info("log level changed", "level", lvl)
		}
	})
	a.v.WatchConfig()
}
