package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/blacktop/postcraft/internal/logutil"
	"github.com/blacktop/postcraft/internal/postcraft"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	envAPIKey    = "GEMINI_API_KEY"
	envAPIKeyAlt = "API_KEY"
	envModel     = "POSTCRAFT_GEMINI_MODEL"
	envBaseURL   = "POSTCRAFT_GEMINI_BASE_URL"

	providerName   = "gemini"
	defaultModel   = "gemini-2.5-flash"
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	apiVersion     = "v1beta"
)

var httpTimeout = 60 * time.Second

var tracer = otel.Tracer("github.com/blacktop/postcraft/internal/postcraft/gemini")

// Config holds explicit settings; empty fields fall back to the environment.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client implements postcraft.Generator on top of the Gemini generateContent REST API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// New constructs a Gemini generator. It fails with postcraft.MissingEnvError when no API key is available.
func New(base Config) (*Client, error) {
	cfg, err := loadConfig(base)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpTimeout}
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string { return providerName }

// Model returns the model the client generates with.
func (c *Client) Model() string { return c.model }

// Generate sends one generateContent call. There is no retry; every failure is a *postcraft.ProviderError.
func (c *Client) Generate(ctx context.Context, req postcraft.GenerationRequest) (res postcraft.GenerationResult, err error) {
	ctx, span := tracer.Start(ctx, "postcraft.generate", trace.WithAttributes(
		attribute.String("gen_ai.system", providerName),
		attribute.String("gen_ai.request.model", c.model),
		attribute.String("postcraft.platform", string(req.Platform)),
		attribute.String("postcraft.post_type", string(req.PostType)),
		attribute.Bool("postcraft.grounding", req.Grounding),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("postcraft.citations", len(res.Citations)))
		}
		span.End()
	}()

	body, err := json.Marshal(buildParams(req))
	if err != nil {
		return postcraft.GenerationResult{}, c.malformed(fmt.Sprintf("marshal request: %v", err))
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, apiVersion, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return postcraft.GenerationResult{}, &postcraft.ProviderError{Provider: providerName, Kind: postcraft.ProviderTransport, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	logutil.Debugf("calling gemini: model=%s grounding=%t prompt_bytes=%d", c.model, req.Grounding, len(req.Prompt))
	if logutil.Verbose() {
		logutil.Debugf("prompt:\n%s", req.Prompt)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return postcraft.GenerationResult{}, &postcraft.ProviderError{Provider: providerName, Kind: postcraft.ProviderTransport, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return postcraft.GenerationResult{}, &postcraft.ProviderError{Provider: providerName, Kind: postcraft.ProviderTransport, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return postcraft.GenerationResult{}, statusError(resp.StatusCode, respBody)
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return postcraft.GenerationResult{}, c.malformed(fmt.Sprintf("decode response: %v", err))
	}

	return c.mapResponse(decoded)
}

func (c *Client) mapResponse(resp generateContentResponse) (postcraft.GenerationResult, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return postcraft.GenerationResult{}, &postcraft.ProviderError{Provider: providerName, Kind: postcraft.ProviderBlocked, Message: resp.PromptFeedback.BlockReason}
	}
	if len(resp.Candidates) == 0 {
		return postcraft.GenerationResult{}, c.malformed("no candidates returned")
	}

	cand := resp.Candidates[0]
	var text strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part.Thought {
				continue
			}
			text.WriteString(part.Text)
		}
	}

	out := strings.TrimSpace(text.String())
	if out == "" {
		if blocked(cand.FinishReason) {
			return postcraft.GenerationResult{}, &postcraft.ProviderError{Provider: providerName, Kind: postcraft.ProviderBlocked, Message: cand.FinishReason}
		}
		return postcraft.GenerationResult{}, c.malformed("candidate has no text")
	}

	var citations []postcraft.Citation
	if cand.GroundingMetadata != nil {
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			citations = append(citations, postcraft.Citation{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}

	logutil.Debugf("gemini response: finish=%s chars=%d citations=%d", cand.FinishReason, len(out), len(citations))
	return postcraft.GenerationResult{Text: out, Citations: citations}, nil
}

func (c *Client) malformed(msg string) error {
	return &postcraft.ProviderError{Provider: providerName, Kind: postcraft.ProviderMalformed, Message: msg}
}

func buildParams(req postcraft.GenerationRequest) generateContentRequest {
	params := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
	}
	if req.Grounding {
		params.Tools = []tool{{GoogleSearch: &googleSearch{}}}
	}
	return params
}

func statusError(status int, body []byte) error {
	perr := &postcraft.ProviderError{
		Provider: providerName,
		Kind:     postcraft.ProviderStatus,
		Status:   status,
		Message:  strings.TrimSpace(string(body)),
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		perr.Message = envelope.Error.Message
		if envelope.Error.Status == "RESOURCE_EXHAUSTED" {
			perr.Kind = postcraft.ProviderQuota
		}
	}
	if status == http.StatusTooManyRequests {
		perr.Kind = postcraft.ProviderQuota
	}
	if perr.Message == "" {
		perr.Message = http.StatusText(status)
	}
	return perr
}

func blocked(finishReason string) bool {
	switch finishReason {
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		return true
	}
	return false
}

func loadConfig(base Config) (Config, error) {
	cfg := Config{
		APIKey:     strings.TrimSpace(base.APIKey),
		Model:      strings.TrimSpace(base.Model),
		BaseURL:    strings.TrimSpace(base.BaseURL),
		HTTPClient: base.HTTPClient,
	}

	if cfg.APIKey == "" {
		cfg.APIKey = firstEnv(envAPIKey, envAPIKeyAlt)
	}
	if cfg.Model == "" {
		cfg.Model = firstEnv(envModel)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = firstEnv(envBaseURL)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.APIKey == "" {
		return Config{}, postcraft.MissingEnvError{Provider: providerName, Variables: []string{envAPIKey}}
	}
	return cfg, nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// IsConfigError reports whether err came from missing configuration.
func IsConfigError(err error) bool {
	var menv postcraft.MissingEnvError
	return errors.As(err, &menv)
}
