// Package twitter turns generated X posts into X API v2 create-tweet payloads.
// Nothing is sent; the payloads are what a publisher would submit.
package twitter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/blacktop/postcraft/internal/postcraft"
	"github.com/michimani/gotwi"
	managetweettypes "github.com/michimani/gotwi/tweet/managetweet/types"
)

const maxTweetChars = 280

// Draft is one tweet of an exported post.
type Draft struct {
	Index int `json:"index"`
	// ReplyTo is the index of the draft this one replies to, or -1 for the first tweet.
	ReplyTo int             `json:"replyTo"`
	Chars   int             `json:"chars"`
	Payload json.RawMessage `json:"payload"`

	input *managetweettypes.CreateInput
}

// Input returns the gotwi create input for the draft.
func (d Draft) Input() *managetweettypes.CreateInput { return d.input }

// Export builds one payload per tweet of post. Threads produce one payload per
// segment, chained by ReplyTo. Tweets over the character budget are reported
// together as validation errors.
func Export(post postcraft.DisplayPost) ([]Draft, error) {
	if post.Platform != postcraft.X {
		return nil, postcraft.ValidationError{Field: "platform", Reason: fmt.Sprintf("%s posts cannot be exported to X", post.Platform)}
	}

	texts := post.Segments
	if len(texts) == 0 {
		texts = []string{post.Text}
	}

	drafts := make([]Draft, 0, len(texts))
	var errs []error
	for i, text := range texts {
		chars := utf8.RuneCountInString(text)
		if chars > maxTweetChars {
			errs = append(errs, postcraft.ValidationError{
				Field:  fmt.Sprintf("tweet %d", i+1),
				Reason: fmt.Sprintf("is %d characters (limit %d)", chars, maxTweetChars),
			})
			continue
		}

		input := &managetweettypes.CreateInput{Text: gotwi.String(text)}
		payload, err := renderBody(input)
		if err != nil {
			return nil, fmt.Errorf("render tweet %d: %w", i+1, err)
		}

		drafts = append(drafts, Draft{
			Index:   i,
			ReplyTo: i - 1,
			Chars:   chars,
			Payload: payload,
			input:   input,
		})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return drafts, nil
}

func renderBody(input *managetweettypes.CreateInput) (json.RawMessage, error) {
	body, err := input.Body()
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}
