package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func restError(status, code int) *discordgo.RESTError {
	err := &discordgo.RESTError{Response: &http.Response{StatusCode: status}}
	if code != 0 {
		err.Message = &discordgo.APIErrorMessage{Code: code, Message: "error"}
	}
	return err
}

func TestIsGone(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unknown channel", restError(http.StatusBadRequest, 10003), true},
		{"unknown message", restError(http.StatusBadRequest, 10008), true},
		{"unknown webhook", restError(http.StatusBadRequest, 10015), true},
		{"unknown interaction", restError(http.StatusBadRequest, 10062), true},
		{"not found without code", restError(http.StatusNotFound, 0), true},
		{"wrapped", fmt.Errorf("error editing: %w", restError(http.StatusBadRequest, 10008)), true},
		{"missing access", restError(http.StatusForbidden, 50001), false},
		{"server error", restError(http.StatusInternalServerError, 0), false},
		{"not a rest error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsGone(tt.err))
		})
	}
}

func TestFormatErrorRedactsToken(t *testing.T) {
	token := "secret-token"
	Token = &token
	t.Cleanup(func() { Token = nil })

	embeds, _ := errorEmbed(&discordgo.Interaction{}, errors.New("bad request for secret-token"))
	require.Equal(t, "bad request for [TOKEN]", embeds[0].Fields[0].Value)
}
