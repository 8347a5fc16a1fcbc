package postcraft

import (
	"regexp"
	"strings"
)

// threadDelimiter matches the separators a thread prompt asks the model to emit:
// a line-leading "i/n" counter, a line-leading "N." enumerator, or a tweet break marker.
var threadDelimiter = regexp.MustCompile(`(?im)^[ \t]*(?:\(?\d{1,3}/\d{1,3}\)?[ \t]*-?|\d{1,3}\.[ \t]+)|-{3}[ \t]*tweet break[ \t]*-{3}`)

var blankLines = regexp.MustCompile(`\r?\n(?:[ \t]*\r?\n)+`)

// Segment returns the ordered display units of text for post type t.
// Only the multi-part post type is segmented; all others return nil.
func Segment(t PostType, text string) []string {
	if t != XThread {
		return nil
	}
	return SegmentThread(text)
}

// SegmentThread splits raw thread text using, in order, the explicit delimiters,
// then blank lines, then the whole text. The first rule yielding more than one
// segment wins. Leading counters and enumerators are stripped from every segment.
// Non-blank text always yields at least one segment.
func SegmentThread(text string) []string {
	if segments := splitOnDelimiters(text); len(segments) > 1 {
		return segments
	}
	if segments := splitOnBlankLines(text); len(segments) > 1 {
		return segments
	}
	if whole := stripLeadingDelimiter(text); whole != "" {
		return []string{whole}
	}
	return nil
}

func splitOnDelimiters(text string) []string {
	locs := threadDelimiter.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	segments := make([]string, 0, len(locs)+1)
	segments = appendSegment(segments, text[:locs[0][0]])
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segments = appendSegment(segments, text[loc[1]:end])
	}
	return segments
}

func splitOnBlankLines(text string) []string {
	var segments []string
	for _, block := range blankLines.Split(text, -1) {
		segments = appendSegment(segments, stripLeadingDelimiter(block))
	}
	return segments
}

func stripLeadingDelimiter(s string) string {
	s = strings.TrimSpace(s)
	if loc := threadDelimiter.FindStringIndex(s); loc != nil && loc[0] == 0 {
		s = strings.TrimSpace(s[loc[1]:])
	}
	return s
}

func appendSegment(segments []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		segments = append(segments, s)
	}
	return segments
}
