package novelai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"image_bot/api/novelai"
)

var (
	ErrAlreadyGenerating = errors.New("submitter already has a generation in progress")
	ErrQueueClosed       = errors.New("queue is closed")
	ErrInvalidJob        = errors.New("job is missing its request or responder")
	ErrNotConfigured     = errors.New("NovelAI token is not configured")
	errNoImages          = errors.New("response contained no images")
	// ErrGone is returned by a Responder when the message or interaction behind a job no longer exists.
	ErrGone = errors.New("interaction is gone")
)

// MaxAttempts is the number of upstream calls made for one job before giving up on transient errors.
const MaxAttempts = 4

var transientStatuses = []int{
	http.StatusRequestTimeout,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
	520, 522, 524,
}

// IsTransient reports whether err is an upstream status worth retrying.
func IsTransient(err error) bool {
	var apiErr *novelai.Error
	return errors.As(err, &apiErr) && slices.Contains(transientStatuses, apiErr.Status)
}

type FailureKind string

const (
	FailureOutage       FailureKind = "outage"
	FailureAuth         FailureKind = "auth"
	FailureQuota        FailureKind = "quota"
	FailureRateLimited  FailureKind = "rate_limited"
	FailureValidation   FailureKind = "validation"
	FailureUpstream     FailureKind = "upstream"
	FailureUnclassified FailureKind = "unclassified"
	FailureGone         FailureKind = "gone"
)

// Failure is how a failed job is reported back to the submitter.
type Failure struct {
	Kind    FailureKind
	Content string
	// Retryable failures get a button that queues the same request again.
	Retryable bool
	Err       error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Message is the text shown in place of the image.
func (f *Failure) Message() string {
	return ":warning: " + f.Content
}

// Classify maps an error from a job's execution to what the submitter sees.
func Classify(err error) *Failure {
	if errors.Is(err, ErrGone) || errors.Is(err, context.Canceled) {
		return &Failure{Kind: FailureGone, Err: err}
	}

	var apiErr *novelai.Error
	if !errors.As(err, &apiErr) {
		return &Failure{
			Kind:      FailureUnclassified,
			Content:   "Failed to generate image! Contact the bot owner if the problem persists.",
			Retryable: true,
			Err:       err,
		}
	}

	switch status := apiErr.Status; {
	case status == http.StatusUnauthorized:
		return &Failure{Kind: FailureAuth, Content: "Failed to authenticate NovelAI account.", Err: err}
	case status == http.StatusPaymentRequired:
		return &Failure{Kind: FailureQuota, Content: "The subscription and/or credits have run out for this NovelAI account.", Err: err}
	case slices.Contains(transientStatuses, status):
		return &Failure{
			Kind:    FailureOutage,
			Content: "NovelAI seems to be experiencing an outage, and multiple retries have failed. Please be patient and try again soon.",
			Err:     err,
		}
	case status == http.StatusTooManyRequests:
		return &Failure{
			Kind:    FailureRateLimited,
			Content: "Bot is not allowed to generate multiple images at the same time. Please wait a minute.",
			Err:     err,
		}
	case status == http.StatusBadRequest:
		return &Failure{Kind: FailureValidation, Content: "Failed to generate image: " + orDefault(apiErr.Message, "A validation error occured."), Retryable: true, Err: err}
	case status == http.StatusConflict:
		return &Failure{Kind: FailureValidation, Content: "Failed to generate image: " + orDefault(apiErr.Message, "A conflict error occured."), Retryable: true, Err: err}
	default:
		return &Failure{Kind: FailureUpstream, Content: fmt.Sprintf("Failed to generate image: Error %d.", status), Retryable: true, Err: err}
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
