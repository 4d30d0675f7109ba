package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-advisor/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const allocationKeyPrefix = "allocation:"

// AllocationCache keeps computed allocations in Redis as msgpack blobs. A nil
// client turns every call into a miss.
type AllocationCache struct {
	client *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewAllocationCache(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *AllocationCache {
	return &AllocationCache{client: client, ttl: ttl, tracer: tracer}
}

func allocationKey(portfolioID string) string {
	return allocationKeyPrefix + portfolioID
}

func (c *AllocationCache) Get(ctx context.Context, portfolioID string) (domain.AssetAllocation, bool, error) {
	ctx, span := c.tracer.Start(ctx, "allocation-cache.get")
	defer span.End()

	if c.client == nil {
		return domain.AssetAllocation{}, false, nil
	}

	data, err := c.client.Get(ctx, allocationKey(portfolioID)).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return domain.AssetAllocation{}, false, nil
	}
	if err != nil {
		return domain.AssetAllocation{}, false, err
	}

	alloc, err := decodeAllocation(data)
	if err != nil {
		return domain.AssetAllocation{}, false, err
	}
	span.SetAttributes(attribute.Bool("cache.hit", true))
	return alloc, true, nil
}

func (c *AllocationCache) Set(ctx context.Context, portfolioID string, alloc domain.AssetAllocation) error {
	ctx, span := c.tracer.Start(ctx, "allocation-cache.set")
	defer span.End()

	if c.client == nil {
		return nil
	}
	data, err := encodeAllocation(alloc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, allocationKey(portfolioID), data, c.ttl).Err()
}

func encodeAllocation(alloc domain.AssetAllocation) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(alloc); err != nil {
		return nil, fmt.Errorf("encode allocation: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeAllocation(data []byte) (domain.AssetAllocation, error) {
	var alloc domain.AssetAllocation
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&alloc); err != nil {
		return domain.AssetAllocation{}, fmt.Errorf("decode allocation: %w", err)
	}
	return alloc, nil
}
