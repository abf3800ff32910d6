package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/snappy"

	"github.com/timenexus/timenexus/pkg/observability"
)

// Compressed snappy-compresses the entries of an inner cache.
type Compressed struct {
	Inner Cache
}

// Get implements Cache. An entry that does not decode is a miss.
func (c Compressed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := c.Inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	data, err := snappy.Decode(nil, raw)
	if err != nil {
		_ = c.Inner.Delete(ctx, key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set implements Cache.
func (c Compressed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.Inner.Set(ctx, key, snappy.Encode(nil, data), ttl)
}

func (c Compressed) Delete(ctx context.Context, key string) error { return c.Inner.Delete(ctx, key) }
func (c Compressed) Close() error                                 { return c.Inner.Close() }

// Instrumented reports the operations of an inner cache to the
// registered cache hooks under KeyType.
type Instrumented struct {
	Inner   Cache
	KeyType string
}

// Get implements Cache.
func (c Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Inner.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, c.KeyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, c.KeyType)
	}
	return data, ok, nil
}

// Set implements Cache.
func (c Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Inner.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	observability.Cache().OnCacheSet(ctx, c.KeyType, len(data))
	return nil
}

func (c Instrumented) Delete(ctx context.Context, key string) error { return c.Inner.Delete(ctx, key) }
func (c Instrumented) Close() error                                 { return c.Inner.Close() }

var (
	_ Cache = Compressed{}
	_ Cache = Instrumented{}
)
