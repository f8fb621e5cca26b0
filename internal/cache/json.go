package cache

import (
	"context"
	"encoding/json"
)

// GetJSON decodes the value stored under key into a T. A nil cache and entries
// that fail to decode are misses.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var value T
	if c == nil {
		return value, false
	}
	raw, ok := c.Get(ctx, key)
	if !ok {
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		var zero T
		return zero, false
	}
	return value, true
}

// SetJSON encodes value and stores it under key. It is a no-op on a nil cache.
func SetJSON(ctx context.Context, c Cache, key string, value any) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.Set(ctx, key, raw)
	return nil
}
