package novelai

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"image_bot/entities"
)

const (
	generatingContent = "`Generating image...`"
	retryingContent   = "`Generating image...` :warning:"
)

func positionContent(position int) string {
	return fmt.Sprintf("`Position in queue: %d`", position)
}

// drain runs job, then every job queued behind it, until the queue is empty.
func (q *NAIQueue) drain(job *Job) {
	defer q.wg.Done()

	q.process(job)
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		job = q.pending[0]
		q.pending = q.pending[1:]
		waiting := slices.Clone(q.pending)
		emoji := q.loadingEmoji
		queueDepth.Set(float64(len(q.pending)))
		q.mu.Unlock()

		err := job.Responder.Progress(q.ctx, emoji+generatingContent)
		if errors.Is(err, ErrGone) || errors.Is(err, context.Canceled) {
			log.Debug().Str("job", job.ID).Msg("Abandoning job, its interaction is gone")
			q.release(job, false)
			generations.WithLabelValues(string(FailureGone)).Inc()
			q.runFollowUp(job, job.FollowUp)
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("job", job.ID).Msg("Error editing message in queue")
		}

		if len(waiting) > 0 {
			q.wg.Add(1)
			go q.updatePositions(waiting, emoji)
		}

		q.process(job)
	}
}

// runFollowUp runs a job's continuation. Its errors are only logged.
func (q *NAIQueue) runFollowUp(job *Job, followUp Continuation) {
	if followUp == nil {
		return
	}
	if err := followUp(q.ctx); err != nil {
		log.Debug().Err(err).Str("job", job.ID).Msg("Error running follow-up")
	}
}

// updatePositions tells every waiting job its new place in line.
func (q *NAIQueue) updatePositions(waiting []*Job, emoji string) {
	defer q.wg.Done()

	var group errgroup.Group
	for i, job := range waiting {
		group.Go(func() error {
			return job.Responder.Progress(q.ctx, emoji+positionContent(i+1))
		})
	}
	if err := group.Wait(); err != nil {
		log.Debug().Err(err).Msg("Error updating queue positions")
	}
}

func (q *NAIQueue) process(job *Job) {
	started := time.Now()
	followUp := job.FollowUp
	defer func() { q.runFollowUp(job, followUp) }()

	response, err := q.generate(q.ctx, job)
	q.release(job, true)

	if err != nil {
		failure := Classify(err)
		generations.WithLabelValues(string(failure.Kind)).Inc()

		switch failure.Kind {
		case FailureGone:
			return
		case FailureRateLimited:
			followUp = nil
		case FailureUnclassified:
			log.Error().Err(err).Str("job", job.ID).Msg("Error generating image")
		default:
			log.Warn().Err(err).Str("job", job.ID).Str("kind", string(failure.Kind)).Msg(failure.Content)
		}

		if err := job.Responder.Fail(q.ctx, job, failure); err != nil && !errors.Is(err, ErrGone) {
			log.Error().Err(err).Str("job", job.ID).Msg("Error reporting failed generation")
		}
		return
	}

	result := &Result{Image: response.Images[0], Seed: response.Seed}
	messageID, err := job.Responder.Deliver(q.ctx, job, result)
	if err != nil {
		if errors.Is(err, ErrGone) {
			generations.WithLabelValues(string(FailureGone)).Inc()
			return
		}
		log.Error().Err(err).Str("job", job.ID).Msg("Error delivering image")
		generations.WithLabelValues(outcomeDeliveryFailed).Inc()
		return
	}

	generations.WithLabelValues(outcomeSuccess).Inc()
	generationDuration.Observe(time.Since(started).Seconds())
	log.Printf("Generated image for %s with seed %d", job.Submitter.ID, result.Seed)

	q.index(job, messageID, result.Seed)
}

// generate calls upstream, retrying transient errors up to MaxAttempts times in total.
func (q *NAIQueue) generate(ctx context.Context, job *Job) (*entities.NovelAIResponse, error) {
	if q.client == nil {
		return nil, ErrNotConfigured
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		upstreamAttempts.Inc()
		response, err := q.client.Inference(ctx, job.Request)
		if err == nil {
			if len(response.Images) == 0 {
				return nil, errNoImages
			}
			return response, nil
		}

		if !IsTransient(err) || attempt >= MaxAttempts {
			return nil, err
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("job", job.ID).Msg("NovelAI encountered an error, retrying")

		if attempt == 2 {
			if err := job.Responder.Progress(ctx, q.LoadingEmoji()+retryingContent); err != nil {
				if errors.Is(err, ErrGone) {
					return nil, err
				}
				log.Error().Err(err).Str("job", job.ID).Msg("Error editing message for retry")
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(q.retryDelay):
		}
	}
}

func (q *NAIQueue) index(job *Job, messageID string, seed int64) {
	if q.generations == nil || messageID == "" {
		return
	}

	_, err := q.generations.Create(q.ctx, &entities.ImageGeneration{
		MessageID:      messageID,
		InteractionID:  job.InteractionID,
		MemberID:       job.Submitter.ID,
		ChannelID:      job.Where.ChannelID,
		Prompt:         job.Request.Input,
		NegativePrompt: job.Request.Parameters.NegativePrompt,
		Width:          job.Request.Parameters.Width,
		Height:         job.Request.Parameters.Height,
		Seed:           seed,
		Sampler:        job.Request.Parameters.Sampler,
		Scale:          job.Request.Parameters.Scale,
	})
	if err != nil {
		log.Error().Err(err).Str("message", messageID).Msg("Error recording generation")
	}
}
