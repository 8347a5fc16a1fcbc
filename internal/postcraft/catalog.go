package postcraft

import (
	"fmt"
	"slices"
	"strings"
)

// Platform is one of the supported social destinations.
type Platform string

const (
	LinkedIn  Platform = "LinkedIn"
	X         Platform = "X"
	Instagram Platform = "Instagram"
)

// PostType is a platform-scoped content shape.
type PostType string

const (
	LinkedInText  PostType = "Text Post"
	LinkedInImage PostType = "Image Post"

	XTweet  PostType = "Tweet"
	XThread PostType = "Thread"

	InstagramPost  PostType = "Photo/Video Post (Caption)"
	InstagramStory PostType = "Story Idea"
	InstagramReel  PostType = "Reel Script/Idea"
)

// Theme is the UI theme a rendering layer should apply for a platform.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// PlatformConfig is one read-only catalog entry.
type PlatformConfig struct {
	Name      Platform   `json:"name"`
	Theme     Theme      `json:"theme"`
	PostTypes []PostType `json:"postTypes"`
	LogoColor string     `json:"logoColor"`
	// CharLimit is the per-unit character budget (per tweet for X); 0 means no practical limit.
	CharLimit int    `json:"charLimit,omitempty"`
	Tone      string `json:"-"`
}

// Platforms lists the catalog keys in display order.
var Platforms = []Platform{LinkedIn, X, Instagram}

var catalog = map[Platform]PlatformConfig{
	LinkedIn: {
		Name:      LinkedIn,
		Theme:     ThemeLight,
		PostTypes: []PostType{LinkedInText, LinkedInImage},
		LogoColor: "#0077B5",
		CharLimit: 3000,
		Tone:      "professional, insightful and approachable; short paragraphs, a strong opening line and a clear takeaway or question for the reader",
	},
	X: {
		Name:      X,
		Theme:     ThemeDark,
		PostTypes: []PostType{XTweet, XThread},
		LogoColor: "#FFFFFF",
		CharLimit: 280,
		Tone:      "punchy, conversational and direct; every word earns its place and hashtags are used sparingly",
	},
	Instagram: {
		Name:      Instagram,
		Theme:     ThemeLight,
		PostTypes: []PostType{InstagramPost, InstagramStory, InstagramReel},
		LogoColor: "#E1306C",
		CharLimit: 2200,
		Tone:      "warm, visual and energetic; emojis are welcome and a block of relevant hashtags closes the caption",
	},
}

var platformAliases = map[string]Platform{
	"linkedin":  LinkedIn,
	"li":        LinkedIn,
	"x":         X,
	"twitter":   X,
	"instagram": Instagram,
	"ig":        Instagram,
}

var postTypeSlugs = map[string]PostType{
	"text":   LinkedInText,
	"image":  LinkedInImage,
	"tweet":  XTweet,
	"thread": XThread,
	"post":   InstagramPost,
	"photo":  InstagramPost,
	"story":  InstagramStory,
	"reel":   InstagramReel,
}

// Config returns the catalog entry for p.
func Config(p Platform) (PlatformConfig, bool) {
	cfg, ok := catalog[p]
	if !ok {
		return PlatformConfig{}, false
	}
	cfg.PostTypes = slices.Clone(cfg.PostTypes)
	return cfg, true
}

// Allows reports whether t is a legal post type on p.
func Allows(p Platform, t PostType) bool {
	cfg, ok := catalog[p]
	if !ok {
		return false
	}
	return slices.Contains(cfg.PostTypes, t)
}

// DefaultPostType returns the first allowed post type for p.
func DefaultPostType(p Platform) PostType {
	cfg, ok := catalog[p]
	if !ok || len(cfg.PostTypes) == 0 {
		return ""
	}
	return cfg.PostTypes[0]
}

// ParsePlatform resolves a platform name or alias, case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if p, ok := platformAliases[raw]; ok {
		return p, nil
	}
	return "", ValidationError{Field: "platform", Reason: fmt.Sprintf("%q is not supported", s)}
}

// ParsePostType resolves a post type label or slug within the scope of p.
// An empty string selects the platform default.
func ParsePostType(p Platform, s string) (PostType, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return DefaultPostType(p), nil
	}

	cfg, ok := catalog[p]
	if !ok {
		return "", ValidationError{Field: "platform", Reason: fmt.Sprintf("%q is not supported", p)}
	}
	for _, t := range cfg.PostTypes {
		if strings.EqualFold(string(t), raw) {
			return t, nil
		}
	}
	if t, ok := postTypeSlugs[strings.ToLower(raw)]; ok && slices.Contains(cfg.PostTypes, t) {
		return t, nil
	}
	return "", ValidationError{Field: "postType", Reason: fmt.Sprintf("%q is not available on %s", s, p)}
}
