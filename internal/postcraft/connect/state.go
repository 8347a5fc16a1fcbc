// Package connect implements the simulated "connect your account" flow.
//
// The flow is a finite-state machine. Transition is a pure function over
// (Session, Event); Flow drives it with timers and a random outcome source.
package connect

import (
	"errors"
	"fmt"

	"github.com/blacktop/postcraft/internal/postcraft"
	"github.com/google/uuid"
)

// Step is the visible state of a connection attempt.
type Step string

const (
	Idle        Step = "idle"
	Connecting  Step = "connecting"
	Permissions Step = "permissions"
	Connected   Step = "connected"
	Error       Step = "error"
)

// Stage distinguishes the two visits to Connecting.
type Stage string

const (
	StageNone Stage = ""
	// StageHandshake is the first Connecting visit, before consent.
	StageHandshake Stage = "handshake"
	// StageAuthorizing is the second Connecting visit, after consent.
	StageAuthorizing Stage = "authorizing"
)

// EventKind names an input to the state machine.
type EventKind string

const (
	EventConnect EventKind = "connect"
	EventTimer   EventKind = "timer"
	EventAllow   EventKind = "allow"
	EventCancel  EventKind = "cancel"
	EventRetry   EventKind = "retry"
	EventBack    EventKind = "back"
	EventClose   EventKind = "close"
)

// Event is one input. Platform is used by EventConnect; Success by EventTimer
// while authorizing.
type Event struct {
	Kind     EventKind
	Platform postcraft.Platform
	Success  bool
}

// Session is the transient state of one connection attempt.
type Session struct {
	ID       string             `json:"id,omitempty"`
	Platform postcraft.Platform `json:"platform,omitempty"`
	Step     Step               `json:"step"`
	Stage    Stage              `json:"stage,omitempty"`
	// Attempt increases every time a timed step starts; stale timers compare against it.
	Attempt int `json:"attempt"`
}

// ErrInvalidTransition is returned for events the current step does not accept.
var ErrInvalidTransition = errors.New("invalid transition")

// Pending reports whether the session is waiting on a timer.
func (s Session) Pending() bool { return s.Step == Connecting }

// Transition applies ev to s and returns the next session.
// It never mutates s; on error the returned session equals s.
func Transition(s Session, ev Event) (Session, error) {
	switch ev.Kind {
	case EventConnect:
		if s.Step == Connected || s.Step == Error {
			return s, invalid(s, ev)
		}
		if _, ok := postcraft.Config(ev.Platform); !ok {
			return s, fmt.Errorf("%w: unknown platform %q", ErrInvalidTransition, ev.Platform)
		}
		return Session{
			ID:       uuid.NewString(),
			Platform: ev.Platform,
			Step:     Connecting,
			Stage:    StageHandshake,
			Attempt:  s.Attempt + 1,
		}, nil

	case EventTimer:
		if s.Step != Connecting {
			return s, invalid(s, ev)
		}
		next := s
		next.Stage = StageNone
		switch s.Stage {
		case StageHandshake:
			next.Step = Permissions
		case StageAuthorizing:
			if ev.Success {
				next.Step = Connected
			} else {
				next.Step = Error
			}
		default:
			return s, invalid(s, ev)
		}
		return next, nil

	case EventAllow:
		if s.Step != Permissions {
			return s, invalid(s, ev)
		}
		next := s
		next.Step = Connecting
		next.Stage = StageAuthorizing
		next.Attempt++
		return next, nil

	case EventCancel:
		switch s.Step {
		case Idle, Connecting, Permissions:
			return reset(s), nil
		}
		return s, invalid(s, ev)

	case EventRetry:
		if s.Step != Error {
			return s, invalid(s, ev)
		}
		next := s
		next.Step = Connecting
		next.Stage = StageHandshake
		next.Attempt++
		return next, nil

	case EventBack:
		if s.Step != Error {
			return s, invalid(s, ev)
		}
		return reset(s), nil

	case EventClose:
		return reset(s), nil
	}

	return s, fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, ev.Kind)
}

// reset returns to Idle, keeping only the attempt counter so pending timers stay stale.
func reset(s Session) Session {
	return Session{Step: Idle, Attempt: s.Attempt + 1}
}

func invalid(s Session, ev Event) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, ev.Kind, s.Step)
}
