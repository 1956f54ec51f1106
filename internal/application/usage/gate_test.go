package usage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/medinsight/internal/infra/cache/memory"
)

type failingCounter struct{}

func (failingCounter) Get(context.Context, string) (int, error)       { return 0, errors.New("down") }
func (failingCounter) Increment(context.Context, string) (int, error) { return 0, errors.New("down") }
func (failingCounter) Decrement(context.Context, string) error        { return errors.New("down") }

func TestGateQuotaInvariant(t *testing.T) {
	ctx := context.Background()
	g := NewGate(memory.NewCounter(), 0)
	require.Equal(t, 1, g.Quota())

	r, err := g.Reserve(ctx, false, "s1")
	require.NoError(t, err)
	r.Keep()

	for n := 2; n <= 5; n++ {
		_, err := g.Reserve(ctx, false, "s1")
		assert.ErrorIs(t, err, ErrLimitReached, "action %d", n)
	}
	_, err = g.Reserve(ctx, false, "s2")
	assert.NoError(t, err)
}

func TestGateRejectedReserveHoldsNothing(t *testing.T) {
	ctx := context.Background()
	c := memory.NewCounter()
	g := NewGate(c, 1)

	r, err := g.Reserve(ctx, false, "s1")
	require.NoError(t, err)
	_, err = g.Reserve(ctx, false, "s1")
	require.ErrorIs(t, err, ErrLimitReached)

	n, _ := c.Get(ctx, "session:s1")
	assert.Equal(t, 1, n)

	require.NoError(t, r.Release(ctx))
	require.NoError(t, r.Release(ctx))
	n, _ = c.Get(ctx, "session:s1")
	assert.Zero(t, n)

	_, err = g.Reserve(ctx, false, "s1")
	assert.NoError(t, err)
}

func TestGateKeepThenReleaseIsNoop(t *testing.T) {
	ctx := context.Background()
	c := memory.NewCounter()
	g := NewGate(c, 2)

	r, err := g.Reserve(ctx, false, "s")
	require.NoError(t, err)
	r.Keep()
	require.NoError(t, r.Release(ctx))

	n, _ := c.Get(ctx, "session:s")
	assert.Equal(t, 1, n)
}

func TestGateConcurrentReserveHonoursQuota(t *testing.T) {
	ctx := context.Background()
	g := NewGate(memory.NewCounter(), 3)

	var granted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r, err := g.Reserve(ctx, false, "shared"); err == nil {
				granted.Add(1)
				r.Keep()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(3), granted.Load())
}

func TestGateAuthenticatedBypassesCounter(t *testing.T) {
	g := NewGate(failingCounter{}, 1)
	r, err := g.Reserve(context.Background(), true, "")
	require.NoError(t, err)
	assert.NoError(t, r.Release(context.Background()))
}

func TestGateCounterFailure(t *testing.T) {
	g := NewGate(failingCounter{}, 1)
	_, err := g.Reserve(context.Background(), false, "s")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLimitReached)
}

func TestGateStatus(t *testing.T) {
	ctx := context.Background()
	c := memory.NewCounter()
	g := NewGate(c, 2)

	st, err := g.Status(ctx, false, "s", "")
	require.NoError(t, err)
	assert.Equal(t, Status{Used: 0, Quota: 2, Remaining: 2}, st)

	for i := 0; i < 3; i++ {
		_, _ = c.Increment(ctx, "session:s")
	}
	st, err = g.Status(ctx, false, "s", "")
	require.NoError(t, err)
	assert.Equal(t, Status{Used: 2, Quota: 2, Remaining: 0}, st)

	_, _ = g.RecordUser(ctx, "u1")
	st, err = g.Status(ctx, true, "s", "u1")
	require.NoError(t, err)
	assert.Equal(t, Status{Authenticated: true, Used: 1, Quota: -1, Remaining: -1}, st)
}
