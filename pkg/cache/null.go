package cache

import (
	"context"
	"time"
)

// NullCache turns caching off: every lookup misses and nothing is kept.
// The CLI uses it for stdin input, for --no-cache and when the cache
// directory cannot be opened.
type NullCache struct{}

func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NullCache) Delete(context.Context, string) error {
	return nil
}

func (NullCache) Close() error {
	return nil
}

var _ Cache = NullCache{}
