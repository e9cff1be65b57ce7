package insights

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"insightwatch/internal/api"
	"insightwatch/internal/normalize"
)

// ErrStale marks a snapshot that completed for a superseded Load call; it is
// never committed to visible state.
var ErrStale = errors.New("stale snapshot discarded")

// Analytics is the slice of the API client the view model consumes. The
// insights endpoints are company-wide; UserAnalysis carries a selected
// subject's KPIs and charts in one payload.
type Analytics interface {
	InsightsSummary(ctx context.Context, q api.InsightsQuery) ([]byte, error)
	InsightsTop(ctx context.Context, q api.InsightsQuery) ([]byte, error)
	InsightsTimeseries(ctx context.Context, q api.InsightsQuery) ([]byte, error)
	InsightsHourly(ctx context.Context, q api.InsightsQuery) ([]byte, error)
	UserAnalysis(ctx context.Context, key, from, to string) ([]byte, error)
}

// source is one backend analytics query. The slice order below is the
// declared source order: merge results and error selection follow it, never
// completion order, so error reporting is deterministic across runs.
type source struct {
	Name  string
	IsKPI bool
	Kind  normalize.ChartKind
	Fetch func(ctx context.Context, c Analytics, q api.InsightsQuery) ([]byte, error)
}

func sources(topLimit int) []source {
	return []source{
		{
			Name:  "summary",
			IsKPI: true,
			Fetch: func(ctx context.Context, c Analytics, q api.InsightsQuery) ([]byte, error) {
				return c.InsightsSummary(ctx, q)
			},
		},
		{
			Name: "activity_over_time",
			Kind: normalize.KindSeries,
			Fetch: func(ctx context.Context, c Analytics, q api.InsightsQuery) ([]byte, error) {
				return c.InsightsTimeseries(ctx, q)
			},
		},
		{
			Name: "top_categories",
			Kind: normalize.KindItems,
			Fetch: func(ctx context.Context, c Analytics, q api.InsightsQuery) ([]byte, error) {
				q.By = "category"
				q.Limit = topLimit
				return c.InsightsTop(ctx, q)
			},
		},
		{
			Name: "top_apps",
			Kind: normalize.KindItems,
			Fetch: func(ctx context.Context, c Analytics, q api.InsightsQuery) ([]byte, error) {
				q.By = "application"
				q.Limit = topLimit
				return c.InsightsTop(ctx, q)
			},
		},
		{
			Name: "hourly",
			Kind: normalize.KindHourly,
			Fetch: func(ctx context.Context, c Analytics, q api.InsightsQuery) ([]byte, error) {
				return c.InsightsHourly(ctx, q)
			},
		},
	}
}

// Result is the merged analytics snapshot. On the company-wide path every
// source has a slot whether it succeeded or not: a failed source contributes
// its empty default, so renderers never branch on key presence. KPIs and
// Charts are always non-nil. Err carries the first failure by declared
// source order, or "".
type Result struct {
	Range  DateRange                  `json:"range"`
	Scope  string                     `json:"scope,omitempty"`
	KPIs   map[string]any             `json:"kpis"`
	Charts map[string]normalize.Chart `json:"charts"`
	Err    string                     `json:"error,omitempty"`
}

// ViewModel produces the merged analytics snapshot for a scope and range.
// Only the most recently requested snapshot is ever committed: each Load
// captures a generation at issue time and a completion whose generation no
// longer matches is discarded.
type ViewModel struct {
	client   Analytics
	topLimit int

	mu      sync.Mutex
	gen     uint64
	loading bool
	result  *Result
}

// New creates a view model over an analytics client. topLimit caps the
// ranked top-apps/top-categories queries.
func New(client Analytics, topLimit int) *ViewModel {
	if topLimit <= 0 {
		topLimit = 10
	}
	return &ViewModel{client: client, topLimit: topLimit}
}

type outcome struct {
	raw []byte
	err error
}

// Load retrieves the analytics snapshot for a scope and range. An empty
// scopeKey fans out the company-wide insights queries concurrently; a
// non-empty one fetches the subject's analysis payload, which bundles KPIs
// and charts in a single response. Either way the result is returned and
// committed unless a newer Load superseded this one, in which case ErrStale
// is returned and visible state is untouched.
func (vm *ViewModel) Load(ctx context.Context, scopeKey string, rng DateRange) (*Result, error) {
	vm.mu.Lock()
	vm.gen++
	gen := vm.gen
	vm.loading = true
	vm.mu.Unlock()

	var result *Result
	if scopeKey != "" {
		result = vm.loadSubject(ctx, scopeKey, rng)
	} else {
		result = vm.loadCompany(ctx, rng)
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if gen != vm.gen {
		log.Debug().Str("scope", scopeKey).Msg("Discarding stale analytics snapshot")
		return nil, ErrStale
	}
	vm.loading = false
	vm.result = result
	return result, nil
}

// loadCompany issues all company-wide queries concurrently, normalizes each
// response and merges them. One failing source never blocks the others: its
// slot gets the empty default and the error is recorded per-source.
func (vm *ViewModel) loadCompany(ctx context.Context, rng DateRange) *Result {
	query := api.InsightsQuery{From: rng.From, To: rng.To}
	srcs := sources(vm.topLimit)
	outcomes := make([]outcome, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range srcs {
		g.Go(func() error {
			raw, err := src.Fetch(gctx, vm.client, query)
			outcomes[i] = outcome{raw: raw, err: err}
			// Failures are captured per-source, never propagated: a failing
			// query must not cancel its siblings.
			return nil
		})
	}
	_ = g.Wait()

	return merge(srcs, outcomes, "", rng)
}

// loadSubject fetches the per-subject analysis payload. The insights
// endpoints know nothing about subjects, so the selected subject's numbers
// come exclusively from here.
func (vm *ViewModel) loadSubject(ctx context.Context, scopeKey string, rng DateRange) *Result {
	result := &Result{
		Range:  rng,
		Scope:  scopeKey,
		KPIs:   map[string]any{},
		Charts: map[string]normalize.Chart{},
	}

	raw, err := vm.client.UserAnalysis(ctx, scopeKey, rng.From, rng.To)
	if err != nil {
		log.Warn().Err(err).Str("scope", scopeKey).Msg("Subject analysis failed")
		result.Err = fmt.Sprintf("analysis: %v", err)
		return result
	}
	result.KPIs, result.Charts = normalize.Analysis(raw)
	return result
}

// merge folds the per-source outcomes into one Result in declared order.
func merge(srcs []source, outcomes []outcome, scopeKey string, rng DateRange) *Result {
	result := &Result{
		Range:  rng,
		Scope:  scopeKey,
		KPIs:   map[string]any{},
		Charts: map[string]normalize.Chart{},
	}

	for i, src := range srcs {
		out := outcomes[i]
		if out.err != nil {
			log.Warn().Err(out.err).Str("source", src.Name).Msg("Analytics source failed")
			if result.Err == "" {
				result.Err = fmt.Sprintf("%s: %v", src.Name, out.err)
			}
			if !src.IsKPI {
				result.Charts[src.Name] = normalize.EmptyChart(src.Kind)
			}
			continue
		}
		if src.IsKPI {
			result.KPIs = normalize.KPIs(out.raw)
			continue
		}
		result.Charts[src.Name] = normalize.ParseChart(out.raw, src.Kind)
	}
	return result
}

// Current returns the last committed snapshot, or nil before the first Load.
func (vm *ViewModel) Current() *Result {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.result
}

// Loading reports whether a Load is in flight.
func (vm *ViewModel) Loading() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loading
}
