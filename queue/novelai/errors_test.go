package novelai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"image_bot/api/novelai"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      FailureKind
		retryable bool
		content   string
	}{
		{name: "unauthorized", err: &novelai.Error{Status: 401}, kind: FailureAuth, content: "Failed to authenticate NovelAI account."},
		{name: "out of credits", err: &novelai.Error{Status: 402}, kind: FailureQuota},
		{name: "outage", err: &novelai.Error{Status: 502}, kind: FailureOutage},
		{name: "cloudflare timeout", err: &novelai.Error{Status: 524}, kind: FailureOutage},
		{name: "concurrent generation", err: &novelai.Error{Status: 429}, kind: FailureRateLimited},
		{name: "validation with message", err: &novelai.Error{Status: 400, Message: "prompt too long"}, kind: FailureValidation, retryable: true, content: "Failed to generate image: prompt too long"},
		{name: "validation without message", err: &novelai.Error{Status: 400}, kind: FailureValidation, retryable: true, content: "Failed to generate image: A validation error occured."},
		{name: "conflict", err: &novelai.Error{Status: 409}, kind: FailureValidation, retryable: true, content: "Failed to generate image: A conflict error occured."},
		{name: "other status", err: &novelai.Error{Status: 418}, kind: FailureUpstream, retryable: true, content: "Failed to generate image: Error 418."},
		{name: "wrapped status", err: fmt.Errorf("generating: %w", &novelai.Error{Status: 401}), kind: FailureAuth},
		{name: "network", err: errors.New("connection reset"), kind: FailureUnclassified, retryable: true},
		{name: "gone", err: fmt.Errorf("%w: unknown interaction", ErrGone), kind: FailureGone},
		{name: "canceled", err: context.Canceled, kind: FailureGone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failure := Classify(tt.err)
			require.Equal(t, tt.kind, failure.Kind)
			require.Equal(t, tt.retryable, failure.Retryable)
			require.ErrorIs(t, failure, tt.err)
			if tt.content != "" {
				require.Equal(t, tt.content, failure.Content)
				require.Equal(t, ":warning: "+tt.content, failure.Message())
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	require.True(t, IsTransient(&novelai.Error{Status: 500}))
	require.True(t, IsTransient(fmt.Errorf("attempt 2: %w", &novelai.Error{Status: 503})))
	require.False(t, IsTransient(&novelai.Error{Status: 429}))
	require.False(t, IsTransient(errors.New("timeout")))
}
