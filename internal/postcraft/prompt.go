package postcraft

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var currentInfoPattern = regexp.MustCompile(`(?i)\b(latest|today|tonight|this (?:week|month|year)|breaking|news|current(?:ly)?|recent(?:ly)?|trending|upcoming|20[2-9]\d)\b`)

// structure holds the per-post-type shape instructions.
var structure = map[PostType]string{
	LinkedInText: "Write a single LinkedIn text post of 120 to 250 words. Open with a hook line, " +
		"use short paragraphs separated by blank lines, and end with a question or call to action. " +
		"Add at most three relevant hashtags on the last line.",
	LinkedInImage: "Write the text for a LinkedIn post that will be published alongside an image. " +
		"Keep it to 80 to 150 words, refer to the visual naturally, and end with a call to action. " +
		"Add at most three relevant hashtags on the last line.",
	XTweet: "Write one tweet of at most 280 characters including spaces, hashtags and links. " +
		"Do not split it into multiple tweets.",
	XThread: "Write a thread of 3 to 7 tweets. Every tweet must be at most 280 characters. " +
		"Start each tweet on a new line with its position counter in the form i/n (for example 1/5), " +
		"and separate tweets with a blank line. The first tweet is the hook; the last one wraps up.",
	InstagramPost: "Write one polished Instagram caption for a photo or video post. " +
		"Start with an attention-grabbing first line, keep the body under 150 words, " +
		"and finish with 5 to 10 relevant hashtags on their own line.",
	InstagramStory: "Describe an Instagram Story idea as a short sequence of 3 to 5 frames. " +
		"For each frame give the visual, the on-screen text and any sticker or poll to use.",
	InstagramReel: "Write an Instagram Reel script for 15 to 30 seconds: a hook for the first 3 seconds, " +
		"the scene-by-scene beats with voice-over or on-screen text, a closing call to action, " +
		"and a short caption with hashtags.",
}

// BuildRequest validates input against platform p and composes the generation request.
// It is a pure function: identical inputs always produce an identical request.
func BuildRequest(p Platform, input ContentInput) (GenerationRequest, error) {
	cfg, ok := catalog[p]
	if !ok {
		return GenerationRequest{}, ValidationError{Field: "platform", Reason: fmt.Sprintf("%q is not supported", p)}
	}
	if err := ValidateInput(p, input); err != nil {
		return GenerationRequest{}, err
	}

	mainIdea := strings.TrimSpace(input.MainIdea)
	sample := strings.TrimSpace(input.UserWritingSample)
	styles := strings.TrimSpace(input.InfluencerStyles)
	source := strings.TrimSpace(input.SourceURL)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert social media copywriter creating a %s %s.\n\n", cfg.Name, input.PostType)
	fmt.Fprintf(&b, "Platform tone: %s.\n\n", cfg.Tone)
	fmt.Fprintf(&b, "Format: %s\n\n", structure[input.PostType])
	fmt.Fprintf(&b, "Main idea:\n%s\n", mainIdea)

	if sample != "" {
		fmt.Fprintf(&b, "\nMatch the voice, vocabulary and rhythm of this writing sample from the author, without copying its content:\n\"\"\"\n%s\n\"\"\"\n", sample)
	}
	if styles != "" {
		fmt.Fprintf(&b, "\nTake stylistic inspiration from these creators or styles, without imitating any one of them verbatim: %s\n", styles)
	}
	if source != "" {
		fmt.Fprintf(&b, "\nBase the facts on this source and use web search to verify details: %s\n", source)
	}

	b.WriteString("\nReturn only the post content, with no preamble, explanations or markdown headings.")

	return GenerationRequest{
		Platform:  p,
		PostType:  input.PostType,
		Prompt:    b.String(),
		SourceURL: source,
		Grounding: source != "" || needsCurrentInfo(mainIdea, sample),
	}, nil
}

// ValidateInput checks input for platform p without building a request.
func ValidateInput(p Platform, input ContentInput) error {
	if strings.TrimSpace(input.MainIdea) == "" {
		return ValidationError{Field: "mainIdea", Reason: "is required"}
	}
	if input.PostType == "" {
		return ValidationError{Field: "postType", Reason: "is required"}
	}
	if !Allows(p, input.PostType) {
		return ValidationError{Field: "postType", Reason: fmt.Sprintf("%q is not available on %s", input.PostType, p)}
	}
	if source := strings.TrimSpace(input.SourceURL); source != "" {
		if err := validateSourceURL(source); err != nil {
			return err
		}
	}
	return nil
}

func validateSourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ValidationError{Field: "sourceUrl", Reason: fmt.Sprintf("%q is not a valid URL", raw)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ValidationError{Field: "sourceUrl", Reason: fmt.Sprintf("%q must be an http or https URL", raw)}
	}
	if u.Host == "" {
		return ValidationError{Field: "sourceUrl", Reason: fmt.Sprintf("%q has no host", raw)}
	}
	return nil
}

func needsCurrentInfo(texts ...string) bool {
	for _, text := range texts {
		if currentInfoPattern.MatchString(text) {
			return true
		}
	}
	return false
}
