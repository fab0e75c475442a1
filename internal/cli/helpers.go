package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mesh-intelligence/phonebook/internal/directory"
	"github.com/mesh-intelligence/phonebook/internal/paths"
	"github.com/mesh-intelligence/phonebook/internal/sqlite"
	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// resolveDataDir applies --data-dir > config.yaml data_dir > env > default.
func (a *app) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.v.GetString(cfgKeyDataDir))
}

// attachBackend resolves the data directory and attaches a SQLite backend.
// The caller must Detach it, directly or through Directory.Close.
func (a *app) attachBackend() (*sqlite.Backend, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	backend := sqlite.NewBackend()
	cfg := types.Config{
		Backend: a.v.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}
	if err := backend.Attach(cfg); err != nil {
		return nil, sysError(fmt.Errorf("attach backend: %w", err))
	}
	return backend, nil
}

// openDirectory attaches the backend and opens a Directory over it. A load
// failure is logged and the directory is returned anyway with what loaded.
// The caller must Close the directory.
func (a *app) openDirectory(ctx context.Context) (*directory.Directory, *sqlite.Backend, error) {
	backend, err := a.attachBackend()
	if err != nil {
		return nil, nil, err
	}
	d, err := directory.Open(ctx, backend, a.logger)
	if err != nil {
		a.logger.Warn("phone book partially loaded", "err", err, "contacts", d.Len())
	}
	return d, backend, nil
}

// classify marks not-found as a user error and anything else as a system error.
func classify(err error) error {
	if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrInvalidName) || errors.Is(err, types.ErrInvalidNumber) {
		return userError(err)
	}
	return sysError(err)
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}
