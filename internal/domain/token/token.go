// Package token implements the single-use play token cache.
//
// Tokens are capability strings: holding one authorizes exactly one score
// submission for the channel/subject pair it was issued for. They live only
// in process memory; a restart drops outstanding tokens and players request
// a fresh link.
package token

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/okian/quickdraw/pkg/metrics"
)

// Token identifiers are drawn from a 36-character alphabet at 24 characters,
// a keyspace far beyond what is guessable inside the validity window.
const (
	alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength = 24
)

// Holder is the context a token was issued for.
type Holder struct {
	ChannelID   string
	SubjectID   string
	DisplayName string
}

type entry struct {
	holder    Holder
	expiresAt time.Time
}

// Cache issues, consumes and expires single-use tokens.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	ttl   time.Duration
	sweep time.Duration
	now   func() time.Time
}

// NewCache creates a token cache with default TTL and sweep interval.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     15 * time.Minute,
		sweep:   60 * time.Second,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Issue generates an unpredictable token id, stores the holder context with
// an absolute expiry, and returns the id. A colliding id overwrites the
// previous entry; with this keyspace that is a non-event.
func (c *Cache) Issue(ctx context.Context, h Holder) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := newID()
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}

	c.mu.Lock()
	c.entries[id] = entry{holder: h, expiresAt: c.now().Add(c.ttl)}
	n := len(c.entries)
	c.mu.Unlock()

	metrics.RecordTokenIssued()
	metrics.UpdateLiveTokens(n)
	return id, nil
}

// Consume atomically looks up and removes the token. An expired entry is
// removed and reported as ErrNotFound, same as an absent one. Under two
// concurrent calls for the same id exactly one succeeds.
func (c *Cache) Consume(ctx context.Context, id string) (Holder, error) {
	if err := ctx.Err(); err != nil {
		return Holder{}, err
	}

	c.mu.Lock()
	e, ok := c.entries[id]
	if ok {
		delete(c.entries, id)
	}
	n := len(c.entries)
	c.mu.Unlock()

	metrics.UpdateLiveTokens(n)
	if !ok || c.now().After(e.expiresAt) {
		metrics.RecordTokenRejected()
		return Holder{}, ErrNotFound
	}

	metrics.RecordTokenConsumed()
	return e.holder, nil
}

// Sweep removes all expired entries and returns how many were dropped.
// This is memory hygiene only; Consume performs the authoritative expiry
// check on every call.
func (c *Cache) Sweep(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}

	now := c.now()

	c.mu.Lock()
	removed := 0
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
			removed++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	metrics.RecordTokensSwept(removed)
	metrics.UpdateLiveTokens(n)
	return removed
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (c *Cache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Len returns the number of outstanding tokens.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// newID draws idLength characters from alphabet using crypto/rand.
// Rejection sampling keeps the distribution uniform.
func newID() (string, error) {
	const maxAccept = byte(len(alphabet) * (256 / len(alphabet))) // 252

	out := make([]byte, 0, idLength)
	buf := make([]byte, idLength*2)
	for len(out) < idLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= maxAccept {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == idLength {
				break
			}
		}
	}
	return string(out), nil
}
