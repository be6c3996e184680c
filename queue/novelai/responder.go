package novelai

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"image_bot/discord_bot/handlers"
	"image_bot/utils"
)

// interactionResponder reports a job by editing the original response of the interaction that queued it.
type interactionResponder struct {
	queue       *NAIQueue
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func (q *NAIQueue) responder(s *discordgo.Session, i *discordgo.Interaction) Responder {
	return &interactionResponder{queue: q, session: s, interaction: i}
}

func (r *interactionResponder) Progress(ctx context.Context, content string) error {
	_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{
		Content: &content,
	}, discordgo.WithContext(ctx))
	return gone(err)
}

func (r *interactionResponder) Deliver(ctx context.Context, job *Job, result *Result) (string, error) {
	var content string
	if job.Requester != "" && !job.Where.IsDM() {
		action := "Retry"
		if job.FollowUp != nil {
			action = "Reroll"
		}
		content = fmt.Sprintf("%s requested by %s", action, utils.Mention(job.Requester))
	}

	template := job.Again(job.Submitter, job.Created)
	template.Request.Parameters.Seed = result.Seed

	key := r.queue.buttons.key()
	components := imageComponents(key, false)
	msg, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
		Files: []*discordgo.File{{
			Name:        fmt.Sprintf("%x.png", md5.Sum(result.Image)),
			ContentType: "image/png",
			Reader:      bytes.NewReader(result.Image),
		}},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", gone(err)
	}

	r.queue.buttons.add(key, &buttonEntry{
		job:       template,
		session:   r.session,
		channelID: msg.ChannelID,
		messageID: msg.ID,
	})
	return msg.ID, nil
}

func (r *interactionResponder) Fail(ctx context.Context, job *Job, failure *Failure) error {
	content := failure.Message()
	components := []discordgo.MessageComponent{}

	var key string
	if failure.Retryable {
		key = r.queue.buttons.key()
		components = retryComponents(key)
	}

	msg, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return gone(err)
	}

	if key != "" {
		r.queue.buttons.add(key, &buttonEntry{
			job:       job.Again(job.Submitter, job.Created),
			session:   r.session,
			channelID: msg.ChannelID,
			messageID: msg.ID,
		})
	}
	return nil
}

// gone marks errors that mean the interaction or its message no longer exists.
func gone(err error) error {
	if err == nil {
		return nil
	}
	if handlers.IsGone(err) {
		return fmt.Errorf("%w: %w", ErrGone, err)
	}
	return err
}
