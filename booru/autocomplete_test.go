package booru

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"image_bot/entities"
)

func TestSuggestDefaults(t *testing.T) {
	cache := NewTagCache(&fakeTagSource{}, nil)

	require.Equal(t, []string{"full_body", "-excluded_tag", "score:>10", "score:>100"}, cache.Suggest(context.Background(), ""))
	require.Equal(t, []string{
		"cat full_body -excluded_tag",
		"cat full_body score:>10",
		"cat full_body score:>100",
	}, cache.Suggest(context.Background(), "cat full_body "))
	require.Equal(t, []string{"-dog score:>5 full_body"}, cache.Suggest(context.Background(), "-dog score:>5 "))
}

func TestSuggestCompletesLastTag(t *testing.T) {
	source := &fakeTagSource{
		patterns: make(chan string, 1),
		tags:     []entities.Tag{{Name: "cat_ears"}, {Name: "cat_tail"}},
	}
	cache := NewTagCache(source, nil)

	require.Equal(t, []string{"1girl cat_ears", "1girl cat_tail"}, cache.Suggest(context.Background(), "1girl ca"))
	require.Equal(t, "ca", <-source.patterns)

	source.tags = []entities.Tag{{Name: "dog"}}
	require.Equal(t, []string{"1girl -dog"}, cache.Suggest(context.Background(), "1girl -do"))
}

func TestSuggestError(t *testing.T) {
	cache := NewTagCache(&fakeTagSource{err: errors.New("timeout")}, nil)
	require.Equal(t, []string{ErrorSuggestion}, cache.Suggest(context.Background(), "cat"))
}
