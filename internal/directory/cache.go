package directory

import (
	"cmp"
	"slices"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// cache is the traversal cache: contacts in ascending ID order, which is
// insertion order. Entries live in one contiguous slice.
type cache struct {
	entries []types.Contact
}

// reset replaces the cache contents. contacts must be in ID order.
func (c *cache) reset(contacts []types.Contact) {
	c.entries = contacts
}

// apply folds a committed store change into the cache.
func (c *cache) apply(ch types.Change) {
	switch ch.Op {
	case types.ChangeInsert:
		for _, ct := range ch.Contacts {
			c.insert(ct)
		}
	case types.ChangeDelete:
		c.remove(ch.Contacts)
	}
}

// insert places ct by ID. Inserts normally arrive in ID order and land on
// the tail. An ID already present is ignored so a change that raced with a
// reload is not applied twice.
func (c *cache) insert(ct types.Contact) {
	n := len(c.entries)
	if n == 0 || c.entries[n-1].ID < ct.ID {
		c.entries = append(c.entries, ct)
		return
	}
	i, found := slices.BinarySearchFunc(c.entries, ct.ID, func(e types.Contact, id int64) int {
		return cmp.Compare(e.ID, id)
	})
	if found {
		return
	}
	c.entries = slices.Insert(c.entries, i, ct)
}

// remove drops every entry whose ID appears in contacts and returns how many
// were dropped.
func (c *cache) remove(contacts []types.Contact) int {
	ids := make(map[int64]struct{}, len(contacts))
	for _, ct := range contacts {
		ids[ct.ID] = struct{}{}
	}
	before := len(c.entries)
	c.entries = slices.DeleteFunc(c.entries, func(e types.Contact) bool {
		_, ok := ids[e.ID]
		return ok
	})
	return before - len(c.entries)
}

// first returns the earliest entry whose name matches exactly.
func (c *cache) first(name string) (types.Contact, bool) {
	for _, e := range c.entries {
		if e.Name == name {
			return e, true
		}
	}
	return types.Contact{}, false
}

// snapshot returns a copy of the entries safe to hand to callers.
func (c *cache) snapshot() []types.Contact {
	return slices.Clone(c.entries)
}

func (c *cache) len() int { return len(c.entries) }
