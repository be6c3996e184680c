package booru

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultMaxKeys = 100
	DefaultTTL     = 24 * time.Hour
)

var ErrNoResults = errors.New("no results")

// History remembers which results were already shown per key so the same one
// is not picked twice until every current candidate has been seen.
//
// A key expires TTL after it was first recorded; later picks do not extend it.
// At most MaxKeys keys are kept, the least recently used is dropped first.
type History[K comparable, ID comparable] struct {
	mu   sync.Mutex
	seen *expirable.LRU[K, *[]ID]
	intn func(n int) int
}

type HistoryConfig struct {
	MaxKeys int
	TTL     time.Duration
	// Intn picks an index in [0, n). Defaults to math/rand/v2.IntN.
	Intn func(n int) int
}

func NewHistory[K comparable, ID comparable](cfg HistoryConfig) *History[K, ID] {
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = DefaultMaxKeys
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Intn == nil {
		cfg.Intn = rand.IntN
	}

	return &History[K, ID]{
		seen: expirable.NewLRU[K, *[]ID](cfg.MaxKeys, nil, cfg.TTL),
		intn: cfg.Intn,
	}
}

// RecordAndPick chooses one of candidates for key and records it.
//
// Unseen candidates are preferred. Once every candidate is in the history, the
// history is cut down to its last entry and picking starts over from there.
func (h *History[K, ID]) RecordAndPick(key K, candidates []ID) (ID, error) {
	var zero ID
	if len(candidates) == 0 {
		return zero, ErrNoResults
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	seen, ok := h.seen.Get(key)
	if !ok {
		seen = new([]ID)
		// only added on creation, Add renews the expiry
		h.seen.Add(key, seen)
	}

	if len(*seen) > 0 && containsAll(*seen, candidates) {
		*seen = slices.Clone((*seen)[len(*seen)-1:])
	}

	pool := candidates
	if len(candidates) > 1 {
		pool = unseen(candidates, *seen)
		if len(pool) == 0 {
			pool = candidates
		}
	}

	pick := pool[h.intn(len(pool))]
	if !slices.Contains(*seen, pick) {
		*seen = append(*seen, pick)
	}
	return pick, nil
}

// Snapshot returns a copy of the recorded history for key.
func (h *History[K, ID]) Snapshot(key K) []ID {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen, ok := h.seen.Peek(key)
	if !ok {
		return nil
	}
	return slices.Clone(*seen)
}

// Len is the number of keys currently tracked.
func (h *History[K, ID]) Len() int {
	return h.seen.Len()
}

func containsAll[ID comparable](seen, candidates []ID) bool {
	for _, c := range candidates {
		if !slices.Contains(seen, c) {
			return false
		}
	}
	return true
}

func unseen[ID comparable](candidates, seen []ID) []ID {
	out := make([]ID, 0, len(candidates))
	for _, c := range candidates {
		if !slices.Contains(seen, c) {
			out = append(out, c)
		}
	}
	return out
}
