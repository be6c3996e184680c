package novelai

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"

	"image_bot/discord_bot/handlers"
)

const (
	prefix = "novelai_"
	retry  = prefix + "retry"
	reroll = prefix + "reroll"

	// ViewTimeout is how long Retry and Reroll buttons stay on a message.
	ViewTimeout = 10 * time.Minute
	maxButtons  = 1024
)

// buttonEntry is the request a button on a message queues again.
type buttonEntry struct {
	job       *Job
	session   *discordgo.Session
	channelID string
	messageID string
}

// buttonStore keeps the requests behind live buttons. Expired entries have their buttons removed.
type buttonStore struct {
	entries *expirable.LRU[string, *buttonEntry]
}

func newButtonStore() *buttonStore {
	return &buttonStore{
		entries: expirable.NewLRU[string, *buttonEntry](maxButtons, removeButtons, ViewTimeout),
	}
}

func (b *buttonStore) key() string { return uuid.NewString() }

func (b *buttonStore) add(key string, entry *buttonEntry) {
	b.entries.Add(key, entry)
}

func (b *buttonStore) get(key string) (*buttonEntry, bool) {
	return b.entries.Get(key)
}

// remove drops the entry and takes its buttons off the message.
func (b *buttonStore) remove(key string) {
	b.entries.Remove(key)
}

func (b *buttonStore) purge() {
	b.entries.Purge()
}

func removeButtons(key string, entry *buttonEntry) {
	if entry == nil || entry.session == nil {
		return
	}
	go func() {
		_, err := entry.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         entry.messageID,
			Channel:    entry.channelID,
			Components: &[]discordgo.MessageComponent{},
		})
		if err != nil && !handlers.IsGone(err) {
			log.Debug().Err(err).Str("button", key).Msg("Error removing buttons")
		}
	}()
}

// setRerollDisabled toggles the Reroll button of a delivered image while its reroll is queued.
func setRerollDisabled(entry *buttonEntry, key string, disabled bool) error {
	components := imageComponents(key, disabled)
	_, err := entry.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         entry.messageID,
		Channel:    entry.channelID,
		Components: &components,
	})
	return err
}

func imageComponents(key string, rerollDisabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Reroll",
					Style:    discordgo.PrimaryButton,
					CustomID: reroll + ":" + key,
					Disabled: rerollDisabled,
				},
				discordgo.Button{
					Label:    "Delete",
					Style:    discordgo.DangerButton,
					CustomID: handlers.DeleteGeneration,
				},
			},
		},
	}
}

func retryComponents(key string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Retry",
					Style:    discordgo.PrimaryButton,
					CustomID: retry + ":" + key,
				},
			},
		},
	}
}
