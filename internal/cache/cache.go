// Package cache stores serialized search and comparison responses.
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"
)

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "pmstd:"

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Cache is a byte-oriented TTL cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string) (int64, error)
	Close() error
}

// Key builds "pmstd:<kind>:<sha256>" from parts exactly as given. Callers
// pass the query the engine will rank with; case and spacing are significant.
func Key(kind string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return fmt.Sprintf("%s%s:%x", KeyPrefix, kind, sum[:16])
}

// KindPrefix returns the key prefix shared by every entry of kind.
func KindPrefix(kind string) string {
	return KeyPrefix + kind + ":"
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) InvalidatePrefix(context.Context, string) (int64, error) { return 0, nil }

func (Noop) Close() error { return nil }
