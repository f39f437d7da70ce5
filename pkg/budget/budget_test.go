package budget

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMatcher(t *testing.T) {
	tests := []struct {
		name    string
		matcher RequestMatcher
		desc    Descriptor
		want    bool
	}{
		{"zero matcher matches all", RequestMatcher{}, Descriptor{Method: "GET", Path: "/x"}, true},
		{"method match is case-insensitive", RequestMatcher{Method: "get"}, Descriptor{Method: "GET", Path: "/x"}, true},
		{"method mismatch", RequestMatcher{Method: "POST"}, Descriptor{Method: "GET", Path: "/x"}, false},
		{"prefix match", RequestMatcher{PathPrefix: "/api/export"}, Descriptor{Method: "GET", Path: "/api/export/events"}, true},
		{"prefix mismatch", RequestMatcher{PathPrefix: "/api/export"}, Descriptor{Method: "GET", Path: "/api/engage"}, false},
		{"method and prefix", RequestMatcher{Method: "POST", PathPrefix: "/api"}, Descriptor{Method: "POST", Path: "/api/import"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.matcher.Matches(tt.desc))
		})
	}
}

func TestBudgetNoMatchIsUnthrottled(t *testing.T) {
	b := New(Policy{
		Matcher: RequestMatcher{PathPrefix: "/limited"},
		Limiter: NewFixedInterval(time.Hour),
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Acquire(context.Background(), Descriptor{Method: "GET", Path: "/open"}))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestBudgetFirstMatchGoverns(t *testing.T) {
	// The broad policy is listed second, so the narrow one wins for its path.
	b := New(
		Policy{
			Matcher: RequestMatcher{PathPrefix: "/fast"},
			Limiter: NewCallRate(1000, time.Second),
		},
		Policy{
			Matcher: RequestMatcher{},
			Limiter: NewFixedInterval(time.Hour),
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, b.Acquire(ctx, Descriptor{Method: "GET", Path: "/fast/one"}))
	require.NoError(t, b.Acquire(ctx, Descriptor{Method: "GET", Path: "/fast/two"}))
}

func TestBudgetCacheServedSkipsQuota(t *testing.T) {
	b := New(Policy{
		Matcher: RequestMatcher{},
		Limiter: NewFixedInterval(time.Hour),
	})

	// First call consumes the slot.
	require.NoError(t, b.Acquire(context.Background(), Descriptor{Method: "GET", Path: "/x"}))

	// Cache-served calls pass instantly even though the gate is closed.
	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Acquire(context.Background(), Descriptor{Method: "GET", Path: "/x", ServedFromCache: true}))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	// A cache-served call never fails, even under a dead context.
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, b.Acquire(cancelled, Descriptor{Method: "GET", Path: "/x", ServedFromCache: true}))
}

func TestCallRateOnePerSecondConcurrent(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	b := New(Policy{
		Matcher: RequestMatcher{},
		Limiter: NewCallRate(1, time.Second),
	})

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Acquire(context.Background(), Descriptor{Method: "GET", Path: "/q"})
		}()
	}
	wg.Wait()

	// Three calls at one per second: the last cannot complete before ~2s.
	assert.GreaterOrEqual(t, time.Since(start), 1900*time.Millisecond)
}

func TestFixedIntervalSpacing(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	g := NewFixedInterval(100 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, g.Acquire(context.Background()))
	}
	// Calls at 0ms, 100ms, 200ms.
	assert.GreaterOrEqual(t, time.Since(start), 190*time.Millisecond)
}

func TestFixedIntervalCancellation(t *testing.T) {
	g := NewFixedInterval(time.Hour)
	require.NoError(t, g.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, g.Acquire(ctx), context.DeadlineExceeded)
}

func TestZeroQuotaIsUnlimited(t *testing.T) {
	assert.NoError(t, NewCallRate(0, time.Second).Acquire(context.Background()))
	assert.NoError(t, NewFixedInterval(0).Acquire(context.Background()))
}

func TestNilBudgetIsUnthrottled(t *testing.T) {
	var b *Budget
	assert.NoError(t, b.Acquire(context.Background(), Descriptor{Method: "GET", Path: "/x"}))
}
