package booru

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"image_bot/entities"
)

// Denylist is always excluded from searches, whatever the user asked for.
var Denylist = []string{"loli", "shota", "guro", "video"}

type PostSource interface {
	Posts(ctx context.Context, tags string) ([]entities.Post, error)
}

// Picker searches posts and returns one the channel has not been shown yet.
type Picker struct {
	source  PostSource
	history *History[string, int64]
}

func NewPicker(source PostSource, history *History[string, int64]) *Picker {
	if history == nil {
		history = NewHistory[string, int64](HistoryConfig{})
	}
	return &Picker{source: source, history: history}
}

// Query turns space separated user tags into the escaped, '+' joined search,
// with the denylist removed and force-excluded.
func Query(tags string) string {
	fields := strings.Fields(strings.ToLower(tags))

	out := make([]string, 0, len(fields)+len(Denylist))
	for _, tag := range fields {
		if slices.Contains(Denylist, tag) {
			continue
		}
		out = append(out, url.QueryEscape(tag))
	}
	for _, tag := range Denylist {
		out = append(out, "-"+tag)
	}
	return strings.Join(out, "+")
}

// Pick returns nil without error when the search has no image results.
func (p *Picker) Pick(ctx context.Context, tags, channelID string) (*entities.Post, error) {
	posts, err := p.source.Posts(ctx, Query(tags))
	if err != nil {
		searches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("error grabbing posts: %w", err)
	}

	images := make([]entities.Post, 0, len(posts))
	ids := make([]int64, 0, len(posts))
	for _, post := range posts {
		if !post.IsImage() {
			continue
		}
		images = append(images, post)
		ids = append(ids, post.ID)
	}
	if len(images) == 0 {
		searches.WithLabelValues("empty").Inc()
		return nil, nil
	}

	id, err := p.history.RecordAndPick(channelID, ids)
	if err != nil {
		return nil, err
	}

	searches.WithLabelValues("found").Inc()
	i := slices.IndexFunc(images, func(post entities.Post) bool { return post.ID == id })
	return &images[i], nil
}

func (p *Picker) History() *History[string, int64] { return p.history }
