package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/blacktop/postcraft/internal/logutil"
	"github.com/blacktop/postcraft/internal/postcraft"
	"github.com/blacktop/postcraft/internal/postcraft/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Name() string { return "stub" }

func (g stubGenerator) Generate(context.Context, postcraft.GenerationRequest) (postcraft.GenerationResult, error) {
	return postcraft.GenerationResult{Text: g.text}, g.err
}

// manualScheduler never fires on its own.
type manualScheduler struct{ pending []func() }

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) { s.pending = append(s.pending, f) }

func setupTestServer(t *testing.T, gen postcraft.Generator, genErr error) (*Server, *manualScheduler) {
	t.Helper()
	logutil.SetOutput(io.Discard)
	t.Cleanup(func() { logutil.SetOutput(os.Stderr) })

	sched := &manualScheduler{}
	flow := connect.NewFlow(connect.Options{Scheduler: sched})
	studio := postcraft.NewStudio(gen, genErr).WithClock(func() time.Time {
		return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	})
	return New(studio, flow), sched
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRoutes(t *testing.T) {
	srv, _ := setupTestServer(t, stubGenerator{text: "hi"}, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"Health check", http.MethodGet, "/health", http.StatusOK},
		{"Platforms", http.MethodGet, "/api/platforms", http.StatusOK},
		{"Config", http.MethodGet, "/api/config", http.StatusOK},
		{"Latest before any post", http.MethodGet, "/api/posts/latest", http.StatusNotFound},
		{"Connection session", http.MethodGet, "/api/connections", http.StatusOK},
		{"Unknown action", http.MethodPost, "/api/connections/dance", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, "")
			assert.Equal(t, tt.wantStatus, rec.Code, "%s %s", tt.method, tt.path)
		})
	}
}

func TestPlatforms(t *testing.T) {
	srv, _ := setupTestServer(t, stubGenerator{text: "hi"}, nil)

	rec := do(t, srv, http.MethodGet, "/api/platforms", "")
	require.Equal(t, http.StatusOK, rec.Code)

	configs := decode[[]postcraft.PlatformConfig](t, rec)
	require.Len(t, configs, 3)
	assert.Equal(t, postcraft.X, configs[1].Name)
	assert.Equal(t, postcraft.ThemeDark, configs[1].Theme)
	assert.NotContains(t, rec.Body.String(), "tone")
}

func TestGeneratePost(t *testing.T) {
	srv, _ := setupTestServer(t, stubGenerator{text: "1/2 Hook\n\n2/2 Payoff"}, nil)

	rec := do(t, srv, http.MethodPost, "/api/posts", `{"platform":"x","mainIdea":"Why tests matter","postType":"thread"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	post := decode[postcraft.DisplayPost](t, rec)
	assert.Equal(t, postcraft.X, post.Platform)
	assert.Equal(t, postcraft.XThread, post.PostType)
	assert.Equal(t, []string{"Hook", "Payoff"}, post.Segments)
	assert.NotEmpty(t, post.ID)

	rec = do(t, srv, http.MethodGet, "/api/posts/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, post.ID, decode[postcraft.DisplayPost](t, rec).ID)
}

func TestGeneratePostErrors(t *testing.T) {
	tests := []struct {
		name       string
		gen        postcraft.Generator
		genErr     error
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing idea",
			gen:        stubGenerator{text: "hi"},
			body:       `{"platform":"linkedin","postType":"Text Post"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Please provide a main idea and select a post type.",
		},
		{
			name:       "post type from another platform",
			gen:        stubGenerator{text: "hi"},
			body:       `{"platform":"linkedin","mainIdea":"idea","postType":"Thread"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Please provide a main idea and select a post type.",
		},
		{
			name:       "unknown platform",
			gen:        stubGenerator{text: "hi"},
			body:       `{"platform":"myspace","mainIdea":"idea","postType":"Tweet"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad json",
			gen:        stubGenerator{text: "hi"},
			body:       `{"platform":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not configured",
			genErr:     postcraft.MissingEnvError{Provider: "gemini", Variables: []string{"GEMINI_API_KEY"}},
			body:       `{"platform":"x","mainIdea":"idea","postType":"Tweet"}`,
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "Generation is unavailable: gemini credentials not configured (missing GEMINI_API_KEY).",
		},
		{
			name:       "provider quota",
			gen:        stubGenerator{err: &postcraft.ProviderError{Provider: "stub", Kind: postcraft.ProviderQuota, Status: 429}},
			body:       `{"platform":"x","mainIdea":"idea","postType":"Tweet"}`,
			wantStatus: http.StatusBadGateway,
			wantError:  "The AI provider rejected the request because the quota was exceeded. Try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := setupTestServer(t, tt.gen, tt.genErr)
			rec := do(t, srv, http.MethodPost, "/api/posts", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decode[errorResponse](t, rec).Error)
			}
		})
	}
}

func TestConfigWarning(t *testing.T) {
	srv, _ := setupTestServer(t, nil, postcraft.MissingEnvError{Provider: "gemini", Variables: []string{"GEMINI_API_KEY"}})

	rec := do(t, srv, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	cfg := decode[configResponse](t, rec)
	assert.False(t, cfg.Configured)
	assert.Contains(t, cfg.Warning, "GEMINI_API_KEY")
}

func TestConnectionFlow(t *testing.T) {
	srv, sched := setupTestServer(t, stubGenerator{text: "hi"}, nil)

	rec := do(t, srv, http.MethodPost, "/api/connections", `{"platform":"instagram"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	s := decode[connect.Session](t, rec)
	assert.Equal(t, connect.Connecting, s.Step)
	assert.Equal(t, postcraft.Instagram, s.Platform)

	rec = do(t, srv, http.MethodPost, "/api/connections/allow", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	require.Len(t, sched.pending, 1)
	sched.pending[0]()

	rec = do(t, srv, http.MethodGet, "/api/connections", "")
	assert.Equal(t, connect.Permissions, decode[connect.Session](t, rec).Step)

	rec = do(t, srv, http.MethodPost, "/api/connections/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, connect.Idle, decode[connect.Session](t, rec).Step)

	rec = do(t, srv, http.MethodPost, "/api/connections", `{"platform":"friendster"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
