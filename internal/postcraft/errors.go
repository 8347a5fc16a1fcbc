package postcraft

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBusy is returned when a generation is requested while another is still running.
var ErrBusy = errors.New("a post is already being generated")

// MissingEnvError is returned when required configuration is missing.
type MissingEnvError struct {
	Provider  string
	Variables []string
}

func (e MissingEnvError) Error() string {
	if len(e.Variables) == 0 {
		return fmt.Sprintf("%s credentials not configured", e.Provider)
	}
	return fmt.Sprintf("%s credentials not configured (missing %s)", e.Provider, strings.Join(e.Variables, ", "))
}

// ValidationError captures a problem with the user's input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// ProviderErrorKind classifies provider failures.
type ProviderErrorKind string

const (
	ProviderTransport ProviderErrorKind = "transport"
	ProviderStatus    ProviderErrorKind = "status"
	ProviderQuota     ProviderErrorKind = "quota"
	ProviderBlocked   ProviderErrorKind = "blocked"
	ProviderMalformed ProviderErrorKind = "malformed"
)

// ProviderError is the single error type a Generator surfaces for remote failures.
type ProviderError struct {
	Provider string
	Kind     ProviderErrorKind
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	switch e.Kind {
	case ProviderTransport:
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	case ProviderStatus, ProviderQuota:
		return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s %s response: %s", e.Provider, e.Kind, e.Message)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

// UserMessage converts a pipeline error into a single displayable sentence.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		verr ValidationError
		menv MissingEnvError
		perr *ProviderError
	)
	switch {
	case errors.Is(err, ErrBusy):
		return "A post is already being generated. Please wait for it to finish."
	case errors.As(err, &verr):
		switch verr.Field {
		case "mainIdea", "postType":
			return "Please provide a main idea and select a post type."
		case "sourceUrl":
			return "The source link is not a valid URL."
		}
		return fmt.Sprintf("Invalid input: %s.", verr.Reason)
	case errors.As(err, &menv):
		return fmt.Sprintf("Generation is unavailable: %s.", menv.Error())
	case errors.As(err, &perr):
		switch perr.Kind {
		case ProviderQuota:
			return "The AI provider rejected the request because the quota was exceeded. Try again later."
		case ProviderTransport:
			return "Could not reach the AI provider. Check your connection and try again."
		case ProviderBlocked:
			return fmt.Sprintf("The AI provider declined to generate this post (%s).", perr.Message)
		case ProviderMalformed:
			return "The AI provider returned an unusable response. Please try again."
		}
		return fmt.Sprintf("The AI provider returned an error (status %d). Please try again.", perr.Status)
	}
	return "An unexpected error occurred."
}
