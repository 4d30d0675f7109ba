package cache

import (
	"context"
	"testing"
	"time"

	"portfolio-advisor/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleAllocation() domain.AssetAllocation {
	return domain.AssetAllocation{
		Equity: 57.5, Bonds: 28.5, Cash: 6.5, Other: 7.5, HoldingsCount: 5,
		Audit: domain.AllocationAudit{
			RiskScore:    60,
			Tier:         "growth",
			Interpolated: true,
			Adjustments:  []domain.Adjustment{{Name: "horizon", Equity: 2, Bonds: -1.2, Cash: -0.8}},
			EquityCap:    90,
			ComputedAt:   time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC),
		},
	}
}

func TestAllocationCacheRoundTrip(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewAllocationCache(client, time.Minute, testTracer)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleAllocation()
	require.NoError(t, c.Set(ctx, "p1", want))
	assert.True(t, mr.Exists("allocation:p1"))
	assert.Equal(t, time.Minute, mr.TTL("allocation:p1"))

	got, ok, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Equity, got.Equity)
	assert.Equal(t, want.HoldingsCount, got.HoldingsCount)
	assert.Equal(t, want.Audit.Adjustments, got.Audit.Adjustments)
	assert.True(t, want.Audit.ComputedAt.Equal(got.Audit.ComputedAt))
}

func TestAllocationCacheExpires(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewAllocationCache(client, time.Minute, testTracer)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "p1", sampleAllocation()))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllocationCacheCorruptPayload(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewAllocationCache(client, time.Minute, testTracer)
	require.NoError(t, mr.Set("allocation:p1", "\xc1"))

	_, _, err := c.Get(context.Background(), "p1")
	assert.Error(t, err)
}

func TestAllocationCacheNilClientIsMiss(t *testing.T) {
	c := NewAllocationCache(nil, time.Minute, testTracer)

	require.NoError(t, c.Set(context.Background(), "p1", sampleAllocation()))
	_, ok, err := c.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := InitRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = client.Close()

	_, err = InitRedis(context.Background(), "redis://%zz")
	assert.Error(t, err)
}
