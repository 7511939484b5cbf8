package oracle

import (
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

// DefaultSummaryLength is the fallback summary length in grapheme clusters.
const DefaultSummaryLength = 100

// Interpretation is a provider response split for display and sharing.
type Interpretation struct {
	Reading string `json:"reading"`
	Summary string `json:"summary"`
}

// Segmenter splits free-form interpretation text into reading and summary.
type Segmenter interface {
	Segment(text string, lang Language) Interpretation
}

// SegmenterFunc adapts a function to Segmenter.
type SegmenterFunc func(text string, lang Language) Interpretation

func (f SegmenterFunc) Segment(text string, lang Language) Interpretation { return f(text, lang) }

var (
	// Summary headings in either language; providers do not always answer
	// in the language they were asked in.
	summaryMarker = regexp.MustCompile(`(?i)#{2,6}[ \t]*(?:精炼总结|总结|summary)[ \t]*[:：]?`)
	// Length annotations such as "(120 words)" or "（80字）".
	countAnnotation = regexp.MustCompile(`(?i)[ \t]*[（(][ \t]*\d+[ \t]*(?:字|words?|characters?|chars?)[ \t]*[)）]`)
)

// MarkerSegmenter splits at the first summary heading. Without a heading
// the whole text is the reading and the summary is a truncated prefix.
type MarkerSegmenter struct {
	// SummaryLength bounds the fallback summary. Zero means DefaultSummaryLength.
	SummaryLength int
}

// Segment never fails; unrecognised text degrades to truncation.
func (m MarkerSegmenter) Segment(text string, lang Language) Interpretation {
	loc := summaryMarker.FindStringIndex(text)
	if loc != nil {
		reading := strings.TrimSpace(text[:loc[0]])
		rest := text[loc[1]:]
		// Only the section under the first heading is the summary.
		if next := summaryMarker.FindStringIndex(rest); next != nil {
			rest = rest[:next[0]]
		}
		summary := strings.TrimSpace(countAnnotation.ReplaceAllString(rest, ""))
		if summary != "" {
			return Interpretation{Reading: reading, Summary: summary}
		}
		if reading != "" {
			return Interpretation{Reading: reading, Summary: m.truncate(reading, lang)}
		}
	}
	return Interpretation{Reading: text, Summary: m.truncate(text, lang)}
}

func (m MarkerSegmenter) truncate(text string, lang Language) string {
	n := m.SummaryLength
	if n <= 0 {
		n = DefaultSummaryLength
	}
	prefix, cut := truncateGraphemes(text, n)
	if !cut {
		return strings.TrimSpace(prefix)
	}
	return strings.TrimRight(prefix, " \t\r\n") + ellipsis(lang)
}

func ellipsis(lang Language) string {
	if lang == Chinese {
		return "……"
	}
	return "..."
}

// truncateGraphemes returns the first n grapheme clusters of s and whether
// anything was cut. Cutting on cluster boundaries keeps multi-byte and
// combining characters intact.
func truncateGraphemes(s string, n int) (string, bool) {
	rest, state := s, -1
	for i := 0; i < n && rest != ""; i++ {
		_, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
	}
	if rest == "" {
		return s, false
	}
	return s[:len(s)-len(rest)], true
}
