package server

import (
	"errors"
	"net/http"

	"github.com/blacktop/postcraft/internal/logutil"
	"github.com/blacktop/postcraft/internal/postcraft"
	"github.com/blacktop/postcraft/internal/postcraft/connect"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

type generateRequest struct {
	Platform string `json:"platform"`
	postcraft.ContentInput
}

type connectRequest struct {
	Platform string `json:"platform"`
}

type configResponse struct {
	Configured bool   `json:"configured"`
	Warning    string `json:"warning,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlatforms(c echo.Context) error {
	out := make([]postcraft.PlatformConfig, 0, len(postcraft.Platforms))
	for _, p := range postcraft.Platforms {
		cfg, _ := postcraft.Config(p)
		out = append(out, cfg)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, configResponse{
		Configured: s.studio.Configured(),
		Warning:    s.studio.ConfigWarning(),
	})
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "request body must be JSON"})
	}

	platform, err := postcraft.ParsePlatform(req.Platform)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: postcraft.UserMessage(err)})
	}

	if req.PostType != "" {
		if t, err := postcraft.ParsePostType(platform, string(req.PostType)); err == nil {
			req.PostType = t
		}
	}

	post, err := s.studio.Generate(c.Request().Context(), platform, req.ContentInput)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logutil.Errorf("generate %s post: %v", platform, err)
		}
		return c.JSON(status, errorResponse{Error: postcraft.UserMessage(err)})
	}
	return c.JSON(http.StatusCreated, post)
}

func (s *Server) handleLatest(c echo.Context) error {
	post, ok := s.studio.Latest()
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "no post has been generated yet"})
	}
	return c.JSON(http.StatusOK, post)
}

func (s *Server) handleSession(c echo.Context) error {
	return c.JSON(http.StatusOK, s.flow.Session())
}

func (s *Server) handleConnect(c echo.Context) error {
	var req connectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "request body must be JSON"})
	}
	platform, err := postcraft.ParsePlatform(req.Platform)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: postcraft.UserMessage(err)})
	}

	session, err := s.flow.Connect(platform)
	if err != nil {
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusAccepted, session)
}

var connectionActions = map[string]connect.EventKind{
	"allow":  connect.EventAllow,
	"cancel": connect.EventCancel,
	"retry":  connect.EventRetry,
	"back":   connect.EventBack,
	"close":  connect.EventClose,
}

func (s *Server) handleConnectionAction(c echo.Context) error {
	kind, ok := connectionActions[c.Param("action")]
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "unknown action"})
	}

	session, err := s.flow.Apply(connect.Event{Kind: kind})
	if err != nil {
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, session)
}

func statusFor(err error) int {
	var (
		verr postcraft.ValidationError
		menv postcraft.MissingEnvError
		perr *postcraft.ProviderError
	)
	switch {
	case errors.Is(err, postcraft.ErrBusy):
		return http.StatusConflict
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &menv):
		return http.StatusServiceUnavailable
	case errors.As(err, &perr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
