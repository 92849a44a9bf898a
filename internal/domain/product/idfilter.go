package product

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
)

const idFilterFPR = 0.001

// IDFilter is a bloom-filter membership test over known product IDs. It lets
// callers reject requests for IDs that certainly do not exist without a
// database round trip. A positive answer is only probabilistic, so callers
// must still perform the authoritative lookup.
//
// The filter contents can be swapped at any time with Reload, so it stays
// usable across catalog changes. Lookups and reloads are safe to race.
type IDFilter struct {
	inner atomic.Pointer[idFilterSet]
}

type idFilterSet struct {
	filter *bloom.BloomFilter
	n      int
}

// NewIDFilter builds a filter sized for the given IDs.
func NewIDFilter(ids []string) *IDFilter {
	f := &IDFilter{}
	f.Reload(ids)
	return f
}

// Reload replaces the filter contents with the given IDs.
func (f *IDFilter) Reload(ids []string) {
	n := uint(len(ids))
	if n < 1024 {
		n = 1024
	}
	b := bloom.NewWithEstimates(n, idFilterFPR)
	for _, id := range ids {
		b.AddString(id)
	}
	f.inner.Store(&idFilterSet{filter: b, n: len(ids)})
}

// MightContain reports whether id may be a known product ID. A false result
// is definitive: the ID does not exist.
//
// A filter holding zero IDs carries no information about the catalog (it may
// simply not have seen it yet), so it answers true and leaves the decision to
// the authoritative lookup.
func (f *IDFilter) MightContain(id string) bool {
	if f == nil {
		return true
	}
	set := f.inner.Load()
	if set.n == 0 {
		return true
	}
	return set.filter.TestString(id)
}

// RefreshFrom rebuilds the filter from the directory's current catalog.
func (f *IDFilter) RefreshFrom(ctx context.Context, dir Directory) error {
	products, err := dir.List(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	f.Reload(ids)
	return nil
}

// StartRefresh launches a background goroutine that rebuilds the filter from
// the directory at the given interval, so products added after construction
// become visible. A failed refresh keeps the previous contents. It stops when
// ctx is cancelled.
func (f *IDFilter) StartRefresh(ctx context.Context, dir Directory, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = f.RefreshFrom(ctx, dir)
			}
		}
	}()
}
