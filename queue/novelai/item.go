package novelai

import (
	"context"
	"time"

	"github.com/google/uuid"

	"image_bot/entities"
)

type ItemType = string

const (
	ItemTypeImage   ItemType = "Text to Image"
	ItemTypeImg2Img ItemType = "Image to Image"
)

// Submitter is who asked for a generation.
type Submitter struct {
	ID string
	// Owner skips the concurrency and cooldown checks.
	Owner bool
}

// Where is the context a request came from.
type Where struct {
	GuildID   string
	ChannelID string
	// NSFW is true for channels marked age-restricted. Always false in DMs.
	NSFW bool
}

func (w Where) IsDM() bool { return w.GuildID == "" }

// Continuation runs after a job finished, whatever the outcome.
type Continuation func(ctx context.Context) error

// Job is one normalized generation request, owned by the queue until it is drained.
type Job struct {
	ID   string
	Type ItemType

	Submitter Submitter
	Where     Where
	Request   *entities.NovelAIRequest
	// FixedSeed is set when the submitter chose the seed. Retries keep it, otherwise they draw a new one.
	FixedSeed bool

	// InteractionID is the interaction whose response the job edits.
	InteractionID string
	// Requester pressed the button that created this job, if any.
	Requester string
	// FollowUp runs after the job, unless the upstream rate limited it.
	// It also runs when the job is abandoned or not accepted by the queue.
	FollowUp Continuation

	Responder Responder
	Created   time.Time
}

func newJob(submitter Submitter, where Where, request *entities.NovelAIRequest, created time.Time) *Job {
	itemType := ItemTypeImage
	if request.IsImg2Img() {
		itemType = ItemTypeImg2Img
	}
	return &Job{
		ID:        uuid.NewString(),
		Type:      itemType,
		Submitter: submitter,
		Where:     where,
		Request:   request,
		Created:   created,
	}
}

// Again copies the job for the same request on behalf of requester.
// The copy has no responder or follow-up.
func (j *Job) Again(requester Submitter, created time.Time) *Job {
	job := newJob(requester, j.Where, j.Request.Clone(), created)
	job.Requester = requester.ID
	job.FixedSeed = j.FixedSeed
	return job
}

// Retry is Again with a fresh seed from seed, unless the submitter chose one.
func (j *Job) Retry(requester Submitter, created time.Time, seed func() int64) *Job {
	job := j.Again(requester, created)
	if !job.FixedSeed {
		job.Request.Parameters.Seed = seed()
	}
	return job
}

// UseImage turns the job into img2img from a base64 encoded source image.
func (j *Job) UseImage(image string, strength, noise float64) {
	j.Type = ItemTypeImg2Img
	j.Request.Action = entities.ActionImg2Img
	j.Request.Parameters.Image = image
	j.Request.Parameters.Strength = strength
	j.Request.Parameters.Noise = noise
}

// Result is a finished generation.
type Result struct {
	Image []byte
	Seed  int64
}

// Responder is where a job reports progress and its outcome.
// Implementations return an error wrapping ErrGone when the target no longer exists.
type Responder interface {
	Progress(ctx context.Context, content string) error
	// Deliver shows the image and returns the id of the message it was posted in.
	Deliver(ctx context.Context, job *Job, result *Result) (string, error)
	Fail(ctx context.Context, job *Job, failure *Failure) error
}
