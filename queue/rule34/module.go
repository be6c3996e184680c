package rule34

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"image_bot/booru"
	"image_bot/queue"
)

const searchTimeout = 30 * time.Second

type Config struct {
	Picker *booru.Picker
	Tags   *booru.TagCache
	// OwnerID may clear the tag cache.
	OwnerID string
}

// Rule34 serves image-board searches with tag autocomplete.
type Rule34 struct {
	picker  *booru.Picker
	tags    *booru.TagCache
	ownerID string
}

func New(cfg Config) *Rule34 {
	return &Rule34{
		picker:  cfg.Picker,
		tags:    cfg.Tags,
		ownerID: cfg.OwnerID,
	}
}

func (r *Rule34) Commands() []*discordgo.ApplicationCommand { return r.commands() }

func (r *Rule34) Handlers() queue.CommandHandlers { return r.handlers() }

func (r *Rule34) Components() queue.Components { return nil }

func searchContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), searchTimeout)
}

var _ queue.Module = (*Rule34)(nil)
