// Package directory implements the contact directory: a write-through cache
// over the durable record store.
//
// Every mutation is sent to the store first. The store publishes the rows it
// actually committed, and the directory folds that change into its traversal
// cache, so the cache can only ever hold what the store holds. Reads are
// answered from the cache and never touch the store.
package directory

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// Store is the record store the directory writes through to.
// *sqlite.Backend satisfies it.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Load(ctx context.Context, fn func(types.Contact) error) error
	Insert(ctx context.Context, name, number string) (types.Contact, error)
	DeleteByName(ctx context.Context, name string) ([]types.Contact, error)
	Subscribe(fn func(types.Change)) (unsubscribe func())
	Detach() error
}

var _ types.Directory = (*Directory)(nil)

// Directory owns the traversal cache for one record store.
type Directory struct {
	store  Store
	logger *slog.Logger

	mu          sync.RWMutex
	cache       cache
	closed      bool
	unsubscribe func()
}

// New creates a Directory over store and subscribes to its change feed.
// The cache starts empty; call Init to load existing contacts.
func New(store Store, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Directory{
		store:  store,
		logger: logger,
	}
	d.unsubscribe = store.Subscribe(d.onChange)
	return d
}

// Open is New followed by Init. The returned Directory is always usable; a
// non-nil error is a diagnostic describing what could not be loaded.
func Open(ctx context.Context, store Store, logger *slog.Logger) (*Directory, error) {
	d := New(store, logger)
	return d, d.Init(ctx)
}

// Init ensures the contacts table exists and rebuilds the cache from it.
// Failures are logged and returned, but leave the directory usable with
// whatever prefix of rows loaded, possibly none.
func (d *Directory) Init(ctx context.Context) error {
	var errs []error
	if err := d.store.EnsureSchema(ctx); err != nil {
		d.logger.Warn("could not create contacts table", "err", err)
		errs = append(errs, fmt.Errorf("ensuring schema: %w", err))
	}
	if err := d.Reload(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Reload discards the cache and rebuilds it from the store in storage order.
// If loading fails part way, the rows read before the failure are kept.
//
// The write lock is held across the load, so a change committed meanwhile
// is applied after the reset rather than lost to it. Load never publishes.
func (d *Directory) Reload(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return types.ErrDirectoryClosed
	}

	var loaded []types.Contact
	err := d.store.Load(ctx, func(c types.Contact) error {
		loaded = append(loaded, c)
		return nil
	})
	d.cache.reset(loaded)

	if err != nil {
		d.logger.Warn("could not load contacts", "err", err, "loaded", len(loaded))
		return fmt.Errorf("loading contacts: %w", err)
	}
	d.logger.Debug("contacts loaded", "count", len(loaded))
	return nil
}

// onChange is the store subscription. It runs after the store committed.
func (d *Directory) onChange(ch types.Change) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.cache.apply(ch)
}

// Add stores a new contact and returns it with its assigned ID. The caller
// is responsible for presence checks (see types.Contact.Validate). On a
// storage error the cache is unchanged.
func (d *Directory) Add(ctx context.Context, name, number string) (types.Contact, error) {
	if d.isClosed() {
		return types.Contact{}, types.ErrDirectoryClosed
	}
	c, err := d.store.Insert(ctx, name, number)
	if err != nil {
		d.logger.Error("could not add contact", "name", name, "err", err)
		return types.Contact{}, fmt.Errorf("adding contact: %w", err)
	}
	d.logger.Debug("contact added", "id", c.ID, "name", c.Name)
	return c, nil
}

// Search returns the number of the first contact, in insertion order, whose
// name equals name exactly. Returns ErrNotFound if there is none.
func (d *Directory) Search(name string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return "", types.ErrDirectoryClosed
	}
	c, ok := d.cache.first(name)
	if !ok {
		return "", fmt.Errorf("contact %q: %w", name, types.ErrNotFound)
	}
	return c.Number, nil
}

// List returns a copy of every contact in insertion order.
func (d *Directory) List() []types.Contact {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil
	}
	return d.cache.snapshot()
}

// All yields every contact in insertion order, as of the call.
func (d *Directory) All() iter.Seq[types.Contact] {
	return func(yield func(types.Contact) bool) {
		for _, c := range d.List() {
			if !yield(c) {
				return
			}
		}
	}
}

// Len returns the number of contacts in the cache.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cache.len()
}

// Delete removes every contact named name from the store, and through the
// change feed from the cache, and returns how many were removed. Returns
// ErrNotFound, leaving both structures untouched, when no contact matches.
func (d *Directory) Delete(ctx context.Context, name string) (int, error) {
	if d.isClosed() {
		return 0, types.ErrDirectoryClosed
	}
	deleted, err := d.store.DeleteByName(ctx, name)
	if err != nil {
		d.logger.Error("could not delete contact", "name", name, "err", err)
		// The store may have removed rows it could not report.
		if rerr := d.Reload(context.WithoutCancel(ctx)); rerr != nil {
			d.logger.Warn("could not resync after failed delete", "err", rerr)
		}
		return 0, fmt.Errorf("deleting contact: %w", err)
	}
	if len(deleted) == 0 {
		return 0, fmt.Errorf("contact %q: %w", name, types.ErrNotFound)
	}
	d.logger.Debug("contacts deleted", "name", name, "count", len(deleted))
	return len(deleted), nil
}

// Import adds contacts in order, ignoring their IDs. It stops at the first
// failure and returns how many were added before it.
func (d *Directory) Import(ctx context.Context, contacts []types.Contact) (int, error) {
	for i, c := range contacts {
		if _, err := d.Add(ctx, c.Name, c.Number); err != nil {
			return i, err
		}
	}
	return len(contacts), nil
}

// Close stops following the store and detaches it. Further operations
// return ErrDirectoryClosed. Close is idempotent.
func (d *Directory) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.cache.reset(nil)
	d.mu.Unlock()

	d.unsubscribe()
	return d.store.Detach()
}

func (d *Directory) isClosed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}
