package feed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightwatch/internal/normalize"
)

func page(user string, n, total int) normalize.ListResult {
	items := make([]normalize.Record, n)
	for i := range items {
		items[i] = normalize.Record{"company_username": user}
	}
	return normalize.ListResult{Items: items, Total: total}
}

func TestLoad_PopulatesState(t *testing.T) {
	f := New(func(ctx context.Context, q Query, p int) (normalize.ListResult, error) {
		return page("alice", 2, 5), nil
	})

	require.NoError(t, f.Load(context.Background(), Query{ScopeKey: "alice", Limit: 2}))

	st := f.State()
	assert.Len(t, st.Items, 2)
	assert.Equal(t, 5, st.Total)
	assert.Equal(t, 1, st.Page)
	assert.True(t, f.CanLoadMore())
}

func TestLoadMore_AppendsAndAdvances(t *testing.T) {
	f := New(func(ctx context.Context, q Query, p int) (normalize.ListResult, error) {
		return page("alice", 2, 4), nil
	})
	ctx := context.Background()

	require.NoError(t, f.Load(ctx, Query{ScopeKey: "alice", Limit: 2}))
	require.NoError(t, f.LoadMore(ctx))

	st := f.State()
	assert.Len(t, st.Items, 4)
	assert.Equal(t, 2, st.Page)
	assert.False(t, f.CanLoadMore())
}

func TestLoadMore_NoOpWhenExhausted(t *testing.T) {
	var calls atomic.Int32
	f := New(func(ctx context.Context, q Query, p int) (normalize.ListResult, error) {
		calls.Add(1)
		return page("alice", 3, 3), nil
	})
	ctx := context.Background()

	require.NoError(t, f.Load(ctx, Query{ScopeKey: "alice", Limit: 3}))
	before := f.State()

	require.NoError(t, f.LoadMore(ctx))
	require.NoError(t, f.LoadMore(ctx))

	assert.Equal(t, int32(1), calls.Load(), "exhausted LoadMore must not issue requests")
	assert.Equal(t, before.Items, f.State().Items)
	assert.Equal(t, before.Total, f.State().Total)
}

func TestLoadMore_NeverOverlaps(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	f := New(func(ctx context.Context, q Query, p int) (normalize.ListResult, error) {
		if p == 1 {
			return page("alice", 2, 6), nil
		}
		calls.Add(1)
		close(started)
		<-release
		return page("alice", 2, 6), nil
	})
	ctx := context.Background()
	require.NoError(t, f.Load(ctx, Query{ScopeKey: "alice", Limit: 2}))

	done := make(chan error, 1)
	go func() { done <- f.LoadMore(ctx) }()
	<-started

	// Second call while the first is in flight: a no-op, not a queued retry.
	require.NoError(t, f.LoadMore(ctx))
	assert.Equal(t, int32(1), calls.Load())

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, f.State().Items, 4)
}

func TestLoad_FailureClearsState(t *testing.T) {
	fail := false
	f := New(func(ctx context.Context, q Query, p int) (normalize.ListResult, error) {
		if fail {
			return normalize.EmptyList(), errors.New("backend down")
		}
		return page("alice", 2, 4), nil
	})
	ctx := context.Background()

	require.NoError(t, f.Load(ctx, Query{ScopeKey: "alice", Limit: 2}))
	fail = true

	err := f.Load(ctx, Query{ScopeKey: "alice", Limit: 2})
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)

	st := f.State()
	assert.Empty(t, st.Items)
	assert.Zero(t, st.Total)
	assert.Equal(t, "backend down", st.Err)
}

func TestLoadMore_FailurePreservesState(t *testing.T) {
	f := New(func(ctx context.Context, q Query, p int) (normalize.ListResult, error) {
		if p > 1 {
			return normalize.EmptyList(), errors.New("timeout")
		}
		return page("alice", 2, 6), nil
	})
	ctx := context.Background()

	require.NoError(t, f.Load(ctx, Query{ScopeKey: "alice", Limit: 2}))
	before := f.State()

	err := f.LoadMore(ctx)
	var extendErr *ExtendError
	require.ErrorAs(t, err, &extendErr)

	st := f.State()
	assert.Equal(t, before.Items, st.Items, "partial progress must survive a failed extension")
	assert.Equal(t, before.Total, st.Total)
	assert.Equal(t, "timeout", st.Err)
}

func TestLoad_StaleResponseSuppressed(t *testing.T) {
	aliceStarted := make(chan struct{})
	releaseAlice := make(chan struct{})

	f := New(func(ctx context.Context, q Query, p int) (normalize.ListResult, error) {
		if q.ScopeKey == "alice" {
			close(aliceStarted)
			<-releaseAlice
			return page("alice", 3, 3), nil
		}
		return page("bob", 2, 2), nil
	})
	ctx := context.Background()

	aliceDone := make(chan error, 1)
	go func() { aliceDone <- f.Load(ctx, Query{ScopeKey: "alice", Limit: 3}) }()
	<-aliceStarted

	// A newer query supersedes alice's in-flight load.
	require.NoError(t, f.Load(ctx, Query{ScopeKey: "bob", Limit: 2}))

	close(releaseAlice)
	require.ErrorIs(t, <-aliceDone, ErrStale)

	st := f.State()
	require.Len(t, st.Items, 2)
	for _, r := range st.Items {
		assert.Equal(t, "bob", r["company_username"], "visible state must belong to the newest query")
	}
}

func TestLoadMore_ServerTotalAuthoritative(t *testing.T) {
	totals := []int{10, 7}
	f := New(func(ctx context.Context, q Query, p int) (normalize.ListResult, error) {
		res := page("alice", 2, totals[p-1])
		return res, nil
	})
	ctx := context.Background()

	require.NoError(t, f.Load(ctx, Query{ScopeKey: "alice", Limit: 2}))
	require.NoError(t, f.LoadMore(ctx))

	assert.Equal(t, 7, f.State().Total, "the latest server total wins over the cached one")
}
