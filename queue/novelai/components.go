package novelai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"image_bot/discord_bot/handlers"
	"image_bot/entities"
	"image_bot/queue"
	"image_bot/repositories"
)

const expiredContent = "This button has expired."

func (q *NAIQueue) components() queue.Components {
	return queue.Components{
		retry:  q.processRetryButton,
		reroll: q.processRerollButton,
	}
}

func buttonKey(i *discordgo.InteractionCreate) string {
	_, key, _ := strings.Cut(i.MessageComponentData().CustomID, ":")
	return key
}

// processRetryButton queues a failed request again and takes the button off the failure message.
func (q *NAIQueue) processRetryButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	key := buttonKey(i)
	entry, ok := q.buttons.get(key)
	if !ok {
		return handlers.EphemeralContent(s, i.Interaction, expiredContent)
	}

	submitter := q.submitter(i.Interaction)
	if err := q.gate.Admit(q.ctx, submitter, entry.job.Where); err != nil {
		return reject(s, i.Interaction, err)
	}

	if err := handlers.MessageResponse(s, i.Interaction, q.LoadingMessage()); err != nil {
		return err
	}
	q.buttons.remove(key)

	return q.enqueue(s, i.Interaction, entry.job.Retry(submitter, q.clock.Now(), q.gate.seed))
}

// processRerollButton queues the delivered request again with a new seed.
// The Reroll button stays disabled until the reroll is done.
func (q *NAIQueue) processRerollButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	key := buttonKey(i)
	entry, ok := q.buttons.get(key)
	if !ok {
		var err error
		entry, err = q.recoverEntry(s, i)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return handlers.EphemeralContent(s, i.Interaction, expiredContent)
		case err != nil:
			return handlers.ErrorEphemeral(s, i.Interaction, fmt.Errorf("error looking up generation: %w", err))
		}
		q.buttons.add(key, entry)
	}

	submitter := q.submitter(i.Interaction)
	if err := q.gate.Admit(q.ctx, submitter, entry.job.Where); err != nil {
		return reject(s, i.Interaction, err)
	}

	if err := handlers.MessageResponse(s, i.Interaction, q.LoadingMessage()); err != nil {
		return err
	}

	// re-enabled by the follow-up, which also runs if the queue refuses the job
	if err := setRerollDisabled(entry, key, true); err != nil {
		log.Debug().Err(err).Str("message", entry.messageID).Msg("Error disabling reroll button")
	}

	job := entry.job.Again(submitter, q.clock.Now())
	job.Request.Parameters.Seed = q.gate.seed()
	job.FollowUp = func(ctx context.Context) error {
		if _, ok := q.buttons.get(key); !ok {
			return nil
		}
		return setRerollDisabled(entry, key, false)
	}

	return q.enqueue(s, i.Interaction, job)
}

// recoverEntry rebuilds the request behind a message from the generation log,
// for buttons that outlived the in-memory store.
func (q *NAIQueue) recoverEntry(s *discordgo.Session, i *discordgo.InteractionCreate) (*buttonEntry, error) {
	if q.generations == nil {
		return nil, repositories.ErrNotFound
	}

	generation, err := q.generations.GetByMessage(q.ctx, i.Message.ID)
	if err != nil {
		return nil, err
	}

	request := entities.DefaultNovelAIRequest()
	request.Input = generation.Prompt
	request.Parameters.NegativePrompt = generation.NegativePrompt
	request.Parameters.Width = generation.Width
	request.Parameters.Height = generation.Height
	request.Parameters.Seed = generation.Seed
	request.Parameters.Sampler = generation.Sampler
	request.Parameters.Scale = generation.Scale
	request.Parameters.NoiseSchedule = ResolveSchedule(generation.Sampler, entities.ScheduleRecommended)

	job := newJob(
		Submitter{ID: generation.MemberID, Owner: q.isOwner(generation.MemberID)},
		q.where(s, i.Interaction),
		request,
		generation.CreatedAt,
	)

	return &buttonEntry{
		job:       job,
		session:   s,
		channelID: i.ChannelID,
		messageID: i.Message.ID,
	}, nil
}
