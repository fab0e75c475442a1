// This file implements the contacts table accessors for the SQLite backend.
package sqlite

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// Insert appends a contact row and returns it with its assigned ID.
// Publishes a ChangeInsert after the row is committed.
func (b *Backend) Insert(ctx context.Context, name, number string) (types.Contact, error) {
	var contact types.Contact
	err := b.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, insertContact, name, number)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading inserted id: %w", err)
		}
		contact = types.Contact{ID: id, Name: name, Number: number}
		return nil
	})
	if err != nil {
		return types.Contact{}, fmt.Errorf("inserting contact %q: %w", name, err)
	}

	b.publish(types.Change{Op: types.ChangeInsert, Contacts: []types.Contact{contact}})
	return contact, nil
}

// DeleteByName removes every row whose name matches exactly and returns the
// removed contacts in ID order. An empty result is not an error; callers
// decide whether zero rows means not found.
// Publishes a ChangeDelete when at least one row was removed.
func (b *Backend) DeleteByName(ctx context.Context, name string) ([]types.Contact, error) {
	var deleted []types.Contact
	err := b.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, deleteContactByName, name)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var c types.Contact
			if err := rows.Scan(&c.ID, &c.Name, &c.Number); err != nil {
				return fmt.Errorf("scanning deleted row: %w", err)
			}
			deleted = append(deleted, c)
		}
		return rows.Err()
	})
	// RETURNING does not guarantee row order.
	slices.SortFunc(deleted, func(x, y types.Contact) int { return cmp.Compare(x.ID, y.ID) })

	// The statement removes every match before the first row is returned,
	// so rows scanned before a failure are gone and must still be published.
	if len(deleted) > 0 {
		b.publish(types.Change{Op: types.ChangeDelete, Contacts: deleted})
	}
	if err != nil {
		return nil, fmt.Errorf("deleting contacts named %q: %w", name, err)
	}
	if len(deleted) == 0 {
		return nil, nil
	}
	return deleted, nil
}

// Load streams every contact to fn in storage order (ascending ID).
// If reading fails part way, the contacts already delivered stay delivered
// and the error is returned. An error from fn stops the scan and is returned
// unchanged.
func (b *Backend) Load(ctx context.Context, fn func(types.Contact) error) error {
	return b.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, selectContacts)
		if err != nil {
			return fmt.Errorf("querying contacts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var c types.Contact
			if err := rows.Scan(&c.ID, &c.Name, &c.Number); err != nil {
				return fmt.Errorf("scanning contact: %w", err)
			}
			if err := fn(c); err != nil {
				return err
			}
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating contacts: %w", err)
		}
		return nil
	})
}

// Count returns the number of rows in the contacts table.
func (b *Backend) Count(ctx context.Context) (int, error) {
	var n int
	err := b.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("counting contacts: %w", err)
	}
	return n, nil
}
