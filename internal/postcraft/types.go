package postcraft

import (
	"context"
	"time"
)

// ContentInput is the user-supplied draft material for one generation attempt.
type ContentInput struct {
	MainIdea          string   `json:"mainIdea"`
	UserWritingSample string   `json:"userWritingSample,omitempty"`
	InfluencerStyles  string   `json:"influencerStyles,omitempty"`
	SourceURL         string   `json:"sourceUrl,omitempty"`
	PostType          PostType `json:"postType"`
}

// GenerationRequest is the exact payload handed to a Generator.
// It is built once by BuildRequest and never modified afterwards.
type GenerationRequest struct {
	Platform  Platform
	PostType  PostType
	Prompt    string
	SourceURL string
	Grounding bool
}

// Citation is a web source the provider used while grounding a response.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// GenerationResult is the normalized provider response.
type GenerationResult struct {
	Text      string
	Citations []Citation
}

// ImageSpec describes the placeholder image attached to image-bearing posts.
type ImageSpec struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// DisplayPost is the display-ready artifact produced by a successful generation.
type DisplayPost struct {
	ID        string     `json:"id"`
	Platform  Platform   `json:"platform"`
	PostType  PostType   `json:"postType"`
	Text      string     `json:"text"`
	Segments  []string   `json:"segments,omitempty"`
	Image     *ImageSpec `json:"image,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Generator abstracts an AI text-generation provider.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}
