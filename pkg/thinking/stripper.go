package thinking

import (
	"regexp"
	"sort"
	"strings"
)

// StripResult contains the separated reasoning commentary and the remaining
// narrative text.
type StripResult struct {
	Commentary string // inner text of all reasoning tags, in order of appearance
	Remainder  string // input with reasoning and tool-call segments removed
}

// Reasoning tag synonyms emitted by different assistant backends:
// <thinking>, <think> and <AI_THINK>. All are treated identically.
var closedTagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<thinking>(.*?)</thinking>`),
	regexp.MustCompile(`(?is)<think>(.*?)</think>`),
	regexp.MustCompile(`(?is)<ai_think>(.*?)</ai_think>`),
}

var (
	toolCallPattern = regexp.MustCompile(`(?is)<tool_call>.*?</tool_call>`)

	// Unclosed variants appear while a stream is still in flight. Everything
	// from the opening tag to the end of the text belongs to the segment.
	openReasoningPattern = regexp.MustCompile(`(?is)<(?:thinking|think|ai_think)>(.*)$`)
	openToolCallPattern  = regexp.MustCompile(`(?is)<tool_call>.*$`)
)

type segment struct {
	start int
	end   int
	inner string
}

// Strip separates reasoning commentary from narrative text. Tool-call bodies
// are dropped entirely. Calling Strip on its own Remainder returns the
// Remainder unchanged.
func Strip(text string) StripResult {
	var segments []segment
	for _, pattern := range closedTagPatterns {
		for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
			segments = append(segments, segment{
				start: m[0],
				end:   m[1],
				inner: text[m[2]:m[3]],
			})
		}
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i].start < segments[j].start })

	var commentary []string
	var remainder strings.Builder
	last := 0
	for _, seg := range segments {
		if seg.start < last {
			// Overlapping match from a synonym pattern, already consumed.
			continue
		}
		if inner := strings.TrimSpace(seg.inner); inner != "" {
			commentary = append(commentary, inner)
		}
		remainder.WriteString(text[last:seg.start])
		last = seg.end
	}
	remainder.WriteString(text[last:])

	rest := toolCallPattern.ReplaceAllString(remainder.String(), "")
	rest = openToolCallPattern.ReplaceAllString(rest, "")

	// A trailing unclosed reasoning tag is commentary still being streamed.
	if m := openReasoningPattern.FindStringSubmatchIndex(rest); m != nil {
		if inner := strings.TrimSpace(rest[m[2]:m[3]]); inner != "" {
			commentary = append(commentary, inner)
		}
		rest = rest[:m[0]]
	}

	return StripResult{
		Commentary: strings.Join(commentary, "\n\n"),
		Remainder:  strings.TrimSpace(rest),
	}
}
