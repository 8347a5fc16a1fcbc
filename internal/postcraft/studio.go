package postcraft

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/blacktop/postcraft/internal/logutil"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/semaphore"
)

// Studio runs the generation pipeline for a single session: it validates input,
// calls the Generator, and assembles the resulting DisplayPost.
// At most one generation runs at a time; a concurrent request fails with ErrBusy.
type Studio struct {
	gen    Generator
	genErr error
	now    func() time.Time
	busy   *semaphore.Weighted

	mu     sync.RWMutex
	latest *DisplayPost
}

// NewStudio wraps gen. When the generator could not be constructed, pass the
// construction error instead; generation then fails with that error while the
// rest of the session keeps working.
func NewStudio(gen Generator, genErr error) *Studio {
	return &Studio{
		gen:    gen,
		genErr: genErr,
		now:    time.Now,
		busy:   semaphore.NewWeighted(1),
	}
}

// WithClock overrides the clock used for timestamps and image seeds.
func (s *Studio) WithClock(now func() time.Time) *Studio {
	s.now = now
	return s
}

// Configured reports whether a generator is available.
func (s *Studio) Configured() bool {
	return s.gen != nil && s.genErr == nil
}

// ConfigWarning returns a user-visible warning when generation is not configured.
func (s *Studio) ConfigWarning() string {
	if s.Configured() {
		return ""
	}
	if s.genErr != nil {
		return "Warning: " + s.genErr.Error()
	}
	return "Warning: no AI provider configured"
}

// Generate builds the request for p, calls the provider once, and returns the new post.
// On any error the previously generated post is kept.
func (s *Studio) Generate(ctx context.Context, p Platform, input ContentInput) (DisplayPost, error) {
	req, err := BuildRequest(p, input)
	if err != nil {
		return DisplayPost{}, err
	}
	if !s.Configured() {
		if s.genErr != nil {
			return DisplayPost{}, s.genErr
		}
		return DisplayPost{}, MissingEnvError{Provider: "generator"}
	}

	if !s.busy.TryAcquire(1) {
		return DisplayPost{}, ErrBusy
	}
	defer s.busy.Release(1)

	logutil.Debugf("generating post: platform=%s type=%q grounding=%t provider=%s", p, req.PostType, req.Grounding, s.gen.Name())
	res, err := s.gen.Generate(ctx, req)
	if err != nil {
		logutil.Debugf("generation failed: %v", err)
		return DisplayPost{}, err
	}

	post, err := s.assemble(req, res)
	if err != nil {
		return DisplayPost{}, err
	}

	s.mu.Lock()
	s.latest = &post
	s.mu.Unlock()

	logutil.Debugf("post generated: id=%s segments=%d citations=%d", post.ID, len(post.Segments), len(post.Citations))
	return post, nil
}

func (s *Studio) assemble(req GenerationRequest, res GenerationResult) (DisplayPost, error) {
	if strings.TrimSpace(res.Text) == "" {
		return DisplayPost{}, &ProviderError{Provider: s.gen.Name(), Kind: ProviderMalformed, Message: "empty text"}
	}

	now := s.now()
	post := DisplayPost{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Platform:  req.Platform,
		PostType:  req.PostType,
		Text:      res.Text,
		Segments:  Segment(req.PostType, res.Text),
		Image:     DecideImage(req.Platform, req.PostType, now),
		Citations: slices.Clone(res.Citations),
		CreatedAt: now,
	}
	return post, nil
}

// Latest returns the most recent successfully generated post.
func (s *Studio) Latest() (DisplayPost, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return DisplayPost{}, false
	}
	return *s.latest, true
}

// Reset discards the latest post, as happens when the active platform changes.
func (s *Studio) Reset() {
	s.mu.Lock()
	s.latest = nil
	s.mu.Unlock()
}
