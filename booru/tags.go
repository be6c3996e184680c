package booru

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"

	"image_bot/entities"
)

const maxSuggestions = 20

var ErrSuggestionLookup = errors.New("tag suggestion lookup failed")

type TagSource interface {
	Tags(ctx context.Context, pattern string) ([]entities.Tag, error)
}

// TagStore persists suggestions across restarts.
type TagStore interface {
	All(ctx context.Context) (map[string][]string, error)
	Put(ctx context.Context, query string, tags []string) error
	Clear(ctx context.Context) error
}

// TagCache memoizes tag autocomplete lookups by case-folded query.
type TagCache struct {
	source TagSource
	store  TagStore

	mu    sync.RWMutex
	tags  map[string][]string
	group singleflight.Group
}

// NewTagCache creates an empty cache. store may be nil for a memory-only cache.
func NewTagCache(source TagSource, store TagStore) *TagCache {
	return &TagCache{
		source: source,
		store:  store,
		tags:   make(map[string][]string),
	}
}

// Load replaces the memory cache with the persisted one.
func (c *TagCache) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	all, err := c.store.All(ctx)
	if err != nil {
		return fmt.Errorf("error loading tag cache: %w", err)
	}

	c.mu.Lock()
	c.tags = all
	c.mu.Unlock()

	log.Printf("Loaded %d cached tag queries", len(all))
	return nil
}

func (c *TagCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.tags = make(map[string][]string)
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.Clear(ctx)
}

func (c *TagCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tags)
}

// Lookup returns up to 20 tags containing query. A miss fetches from the source
// once, even when several lookups for the same query race.
func (c *TagCache) Lookup(ctx context.Context, query string) ([]string, error) {
	key := cases.Fold().String(strings.TrimSpace(query))

	if tags, ok := c.get(key); ok {
		tagLookups.WithLabelValues("hit").Inc()
		return slices.Clone(tags), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if tags, ok := c.get(key); ok {
			return tags, nil
		}

		tagLookups.WithLabelValues("miss").Inc()
		found, err := c.source.Tags(ctx, url.QueryEscape(key))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSuggestionLookup, err)
		}

		names := make([]string, 0, min(len(found), maxSuggestions))
		for _, tag := range found[:min(len(found), maxSuggestions)] {
			names = append(names, html.UnescapeString(tag.Name))
		}

		c.mu.Lock()
		c.tags[key] = names
		c.mu.Unlock()

		if c.store != nil {
			if err := c.store.Put(ctx, key, names); err != nil {
				log.Error().Err(err).Str("query", key).Msg("Error persisting tag suggestions")
			}
		}
		return names, nil
	})
	if err != nil {
		tagLookups.WithLabelValues("error").Inc()
		return nil, err
	}
	return slices.Clone(v.([]string)), nil
}

func (c *TagCache) get(key string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tags, ok := c.tags[key]
	return tags, ok
}
