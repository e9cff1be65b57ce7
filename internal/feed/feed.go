// Package feed implements incremental paginated retrieval of unbounded event
// lists (logs, screenshots). A Feed accumulates pages for one query and
// discards responses that arrive for a query it has already moved past.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"insightwatch/internal/normalize"
)

// ErrStale marks a response that completed for a superseded query. The
// response is discarded without touching visible state.
var ErrStale = errors.New("stale response discarded")

// LoadError is an initial-load failure; the feed state has been cleared.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("feed load: %v", e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// ExtendError is a pagination failure; previously loaded items are intact.
type ExtendError struct {
	Err error
}

func (e *ExtendError) Error() string { return fmt.Sprintf("feed extend: %v", e.Err) }
func (e *ExtendError) Unwrap() error { return e.Err }

// Query identifies one feed lifetime: changing any field means a new Load.
// Limit is fixed per feed instance in practice; the page number is engine
// state, not part of the query.
type Query struct {
	From     string
	To       string
	ScopeKey string
	Limit    int
}

// Fetcher retrieves one normalized page for a query.
type Fetcher func(ctx context.Context, q Query, page int) (normalize.ListResult, error)

// State is a consistent snapshot of the feed for rendering.
type State struct {
	Items   []normalize.Record
	Page    int
	Total   int
	Loading bool
	Err     string
}

// Feed drives incremental retrieval for one list view. Every request is
// tagged with the generation current at issue time; only responses whose
// generation still matches are committed, so a slow response for a previous
// subject or range can never overwrite newer state.
type Feed struct {
	fetch Fetcher

	mu       sync.Mutex
	query    Query
	items    []normalize.Record
	page     int
	total    int
	loading  bool
	busyMore bool
	errMsg   string
	gen      uint64
}

// New creates a feed over a page fetcher.
func New(fetch Fetcher) *Feed {
	return &Feed{
		fetch: fetch,
		items: []normalize.Record{},
	}
}

// Load (re)initializes the feed for a query and fetches page 1, replacing
// any existing items. A Load issued while an older one is still in flight
// supersedes it: the older response is discarded on arrival.
func (f *Feed) Load(ctx context.Context, q Query) error {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.query = q
	f.loading = true
	f.errMsg = ""
	f.mu.Unlock()

	res, err := f.fetch(ctx, q, 1)

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.gen {
		log.Debug().Str("scope", q.ScopeKey).Msg("Discarding stale feed load")
		return ErrStale
	}
	f.loading = false

	if err != nil {
		f.items = []normalize.Record{}
		f.total = 0
		f.page = 1
		f.errMsg = err.Error()
		return &LoadError{Err: err}
	}

	f.items = res.Items
	f.total = res.Total
	f.page = 1
	if res.Page > 0 {
		f.page = res.Page
	}
	return nil
}

// LoadMore fetches the next page and appends it. It is a no-op while a load
// is in flight or once everything is loaded; a failed extension surfaces an
// error without discarding the pages already loaded.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.loading || f.busyMore || len(f.items) >= f.total {
		f.mu.Unlock()
		return nil
	}
	gen := f.gen
	q := f.query
	next := f.page + 1
	f.busyMore = true
	f.errMsg = ""
	f.mu.Unlock()

	res, err := f.fetch(ctx, q, next)

	f.mu.Lock()
	defer f.mu.Unlock()

	// At most one LoadMore is ever in flight, so the flag can be dropped
	// unconditionally even when the response turns out to be stale.
	f.busyMore = false

	if gen != f.gen {
		log.Debug().Str("scope", q.ScopeKey).Msg("Discarding stale feed extension")
		return ErrStale
	}

	if err != nil {
		f.errMsg = err.Error()
		return &ExtendError{Err: err}
	}

	f.items = append(f.items, res.Items...)
	f.page = next
	if res.Page > 0 {
		f.page = res.Page
	}
	// The latest server-reported total is authoritative, even if it moved
	// between calls.
	f.total = res.Total
	return nil
}

// CanLoadMore reports whether another page is available.
func (f *Feed) CanLoadMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items) < f.total
}

// State returns a copy of the current feed state.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]normalize.Record, len(f.items))
	copy(items, f.items)
	return State{
		Items:   items,
		Page:    f.page,
		Total:   f.total,
		Loading: f.loading || f.busyMore,
		Err:     f.errMsg,
	}
}
