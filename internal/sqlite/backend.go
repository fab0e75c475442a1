// Package sqlite implements the phonebook record store on SQLite.
//
// The Backend owns the contacts table. Every mutation is committed to SQLite
// before a Change describing the affected rows is published to subscribers,
// so in-memory views can follow the table without re-reading it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// DatabaseFile is the SQLite file name created inside Config.DataDir.
const DatabaseFile = "phonebook.db"

// Backend is the durable record store for contacts.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	subMu       sync.Mutex
	nextSubID   int
	subscribers map[int]func(types.Change)
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		subscribers: make(map[int]func(types.Change)),
	}
}

// Attach opens the database inside config.DataDir, creating the directory
// if it does not exist. Existing data is kept. The schema is not created
// here; call EnsureSchema.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dsn := "file:" + filepath.Join(dataDir, DatabaseFile) + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("connecting to database: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrBackendDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}
	return nil
}

// DataDir returns the directory the backend was attached with.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}

// Ping reports whether the database is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	return b.withConn(ctx, func(conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// EnsureSchema creates the contacts table if it does not already exist.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	return b.withConn(ctx, func(conn *sql.Conn) error {
		for _, ddl := range schemaDDL {
			if _, err := conn.ExecContext(ctx, ddl); err != nil {
				return fmt.Errorf("creating schema: %w", err)
			}
		}
		return nil
	})
}

// withConn acquires a dedicated connection for one operation and releases it
// when fn returns, whatever the outcome.
func (b *Backend) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrBackendDetached
	}

	conn, err := b.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

// Subscribe registers fn to receive every Change committed after the call.
// fn runs synchronously on the goroutine that made the mutation and must not
// call back into the Backend's mutating methods. The returned function
// removes the subscription; calling it more than once is harmless.
func (b *Backend) Subscribe(fn func(types.Change)) (unsubscribe func()) {
	b.subMu.Lock()
	defer b.subMu.Unlock()

	id := b.nextSubID
	b.nextSubID++
	b.subscribers[id] = fn

	return func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		delete(b.subscribers, id)
	}
}

// publish delivers ch to every subscriber.
func (b *Backend) publish(ch types.Change) {
	b.subMu.Lock()
	fns := make([]func(types.Change), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		fns = append(fns, fn)
	}
	b.subMu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}
