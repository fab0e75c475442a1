// This file provides JSONL export and import of the contacts table.
// One JSON object per line: {"id":1,"name":"Alice","number":"555-0001"}.
package sqlite

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// maxLine bounds a single JSONL record on import.
const maxLine = 1 << 20

// ExportJSONL writes every contact, in storage order, to path. The file is
// replaced atomically; a failed export leaves any previous file untouched.
// Returns the number of contacts written.
func (b *Backend) ExportJSONL(ctx context.Context, path string) (int, error) {
	n := 0
	err := writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		return b.Load(ctx, func(c types.Contact) error {
			if err := enc.Encode(c); err != nil {
				return fmt.Errorf("encoding contact %d: %w", c.ID, err)
			}
			n++
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("exporting contacts: %w", err)
	}
	return n, nil
}

// ReadJSONL parses a contacts JSONL file. Blank lines, malformed lines and
// records missing a name or number are skipped. The id field is kept but
// importers ignore it; identities are always assigned by the store.
func ReadJSONL(path string) ([]types.Contact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var contacts []types.Contact
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var c types.Contact
		if json.Unmarshal(line, &c) != nil || c.Validate() != nil {
			continue
		}
		contacts = append(contacts, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return contacts, nil
}

// writeAtomic streams fill into a temp file next to path, fsyncs it and
// renames it over path. On any error the temp file is removed.
func writeAtomic(path string, fill func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = fill(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
