package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/VictoriaMetrics/metrics"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// meteredDirectory counts directory outcomes for /metrics. The REST API and
// the form page share one, so both surfaces are counted alike.
type meteredDirectory struct {
	Directory

	added       *metrics.Counter
	deleted     *metrics.Counter
	searchHit   *metrics.Counter
	searchMiss  *metrics.Counter
	storageErrs *metrics.Counter
}

func newMeteredDirectory(dir Directory, set *metrics.Set) *meteredDirectory {
	set.NewGauge("phonebook_contacts", func() float64 { return float64(dir.Len()) })
	return &meteredDirectory{
		Directory:   dir,
		added:       set.NewCounter("phonebook_contacts_added_total"),
		deleted:     set.NewCounter("phonebook_contacts_deleted_total"),
		searchHit:   set.NewCounter(`phonebook_searches_total{result="found"}`),
		searchMiss:  set.NewCounter(`phonebook_searches_total{result="not_found"}`),
		storageErrs: set.NewCounter("phonebook_storage_errors_total"),
	}
}

func (m *meteredDirectory) Add(ctx context.Context, name, number string) (types.Contact, error) {
	c, err := m.Directory.Add(ctx, name, number)
	if err != nil {
		m.storageErrs.Inc()
		return c, err
	}
	m.added.Inc()
	return c, nil
}

func (m *meteredDirectory) Search(name string) (string, error) {
	number, err := m.Directory.Search(name)
	switch {
	case err == nil:
		m.searchHit.Inc()
	case errors.Is(err, types.ErrNotFound):
		m.searchMiss.Inc()
	}
	return number, err
}

func (m *meteredDirectory) Delete(ctx context.Context, name string) (int, error) {
	n, err := m.Directory.Delete(ctx, name)
	switch {
	case err == nil:
		m.deleted.Add(n)
	case !errors.Is(err, types.ErrNotFound):
		m.storageErrs.Inc()
	}
	return n, err
}

// writeBuildInfo writes the phonebook_build_info line.
func writeBuildInfo(w io.Writer, version string) {
	fmt.Fprintf(w, "phonebook_build_info{goversion=%q,version=%q} 1\n", runtime.Version(), version)
}
