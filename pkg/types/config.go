package types

import (
	"errors"
	"fmt"
)

// Config selects the record store and where it keeps its files. It is
// decoded from config.yaml and passed to sqlite.Backend.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// Validate reports whether the phone book can be opened with c. An empty
// DataDir is allowed and means the working directory.
func (c Config) Validate() error {
	switch c.Backend {
	case "":
		return ErrBackendEmpty
	case BackendSQLite:
		return nil
	default:
		return fmt.Errorf("%w %q", ErrBackendUnknown, c.Backend)
	}
}
