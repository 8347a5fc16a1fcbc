package postcraft

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"busy", ErrBusy, "A post is already being generated. Please wait for it to finish."},
		{"wrapped busy", fmt.Errorf("generate: %w", ErrBusy), "A post is already being generated. Please wait for it to finish."},
		{"missing idea", ValidationError{Field: "mainIdea", Reason: "is required"}, "Please provide a main idea and select a post type."},
		{"missing type", ValidationError{Field: "postType", Reason: "is required"}, "Please provide a main idea and select a post type."},
		{"bad url", ValidationError{Field: "sourceUrl", Reason: "no host"}, "The source link is not a valid URL."},
		{"other validation", ValidationError{Field: "platform", Reason: `"myspace" is not supported`}, `Invalid input: "myspace" is not supported.`},
		{
			"missing env",
			MissingEnvError{Provider: "gemini", Variables: []string{"GEMINI_API_KEY"}},
			"Generation is unavailable: gemini credentials not configured (missing GEMINI_API_KEY).",
		},
		{"quota", &ProviderError{Kind: ProviderQuota, Status: 429}, "The AI provider rejected the request because the quota was exceeded. Try again later."},
		{"transport", &ProviderError{Kind: ProviderTransport, Err: errors.New("dial tcp")}, "Could not reach the AI provider. Check your connection and try again."},
		{"blocked", &ProviderError{Kind: ProviderBlocked, Message: "SAFETY"}, "The AI provider declined to generate this post (SAFETY)."},
		{"malformed", &ProviderError{Kind: ProviderMalformed}, "The AI provider returned an unusable response. Please try again."},
		{"status", &ProviderError{Kind: ProviderStatus, Status: 500}, "The AI provider returned an error (status 500). Please try again."},
		{"unknown", errors.New("boom"), "An unexpected error occurred."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &ProviderError{Provider: "gemini", Kind: ProviderTransport, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "gemini request failed: connection reset", err.Error())
}

func TestMissingEnvErrorMessage(t *testing.T) {
	assert.Equal(t, "generator credentials not configured", MissingEnvError{Provider: "generator"}.Error())
	assert.Equal(t,
		"gemini credentials not configured (missing GEMINI_API_KEY, API_KEY)",
		MissingEnvError{Provider: "gemini", Variables: []string{"GEMINI_API_KEY", "API_KEY"}}.Error())
}
