// Package repo contains the storage behind the model response cache.
// Each backend has its own file implementing RecordCache.
// No business logic lives here, only storage access and encoding.
package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/dayplanner/internal/domain"
)

// RecordCache stores the raw records the model returned for a prompt.
// Sessions are never persisted; only model output is reused.
type RecordCache interface {
	// Get returns the records cached under key.
	// Returns domain.ErrNotFound when there is no live entry.
	Get(ctx context.Context, key string) ([]domain.Record, error)

	// Put stores records under key, replacing any previous entry.
	Put(ctx context.Context, key string, records []domain.Record) error
}

// CacheKey derives the cache key for a prompt sent to model.
// Prompts that differ only in whitespace share a key.
func CacheKey(model, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(strings.Fields(prompt), " ")))
	return hex.EncodeToString(h.Sum(nil))
}

// Option configures a RecordCache implementation.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL expires entries d after they are written. Zero keeps them forever.
func WithTTL(d time.Duration) Option {
	return func(o *options) { o.ttl = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// expiresAt returns the unix expiry second for an entry written now, or 0 for
// entries that never expire.
func (o options) expiresAt() int64 {
	if o.ttl <= 0 {
		return 0
	}
	return o.now().Add(o.ttl).Unix()
}

func encodeRecords(records []domain.Record) (string, error) {
	if records == nil {
		records = []domain.Record{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeRecords(s string) ([]domain.Record, error) {
	var records []domain.Record
	if err := json.Unmarshal([]byte(s), &records); err != nil {
		return nil, fmt.Errorf("decode cached records: %w", err)
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

// noopCache never stores anything.
type noopCache struct{}

// NewNoopCache returns a RecordCache that always misses.
func NewNoopCache() RecordCache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string) ([]domain.Record, error) {
	return nil, fmt.Errorf("repo.noopCache.Get: %w", domain.ErrNotFound)
}

func (noopCache) Put(context.Context, string, []domain.Record) error {
	return nil
}
