package lexical

import (
	"regexp"
	"strings"
)

// Bracket directives the assistant uses for its own routing. These never
// belong in the user-facing document.
var knownTagPattern = regexp.MustCompile(`(?i)\[(?:PRICING[/_ ]?JSON|ANALYZE(?:\s*&\s*CLASSIFY)?|FINANCIAL[_\s-]*REASONING|BUDGET[_\s-]*NOTE|GENERATE\s+THE\s+SOW)\]`)

// Reasoning sections run from their tag to the next bracket tag, heading or
// end of text. The terminator is captured and restored on replacement.
var internalSectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\[FINANCIAL[*_\s-]*REASONING[*_\s-]*\].*?(\n\s*\[|\n\s*#{2,3}|$)`),
	regexp.MustCompile(`(?is)\[BUDGET[*_\s-]*NOTE[*_\s-]*\].*?(\n\s*\[|\n\s*#{2,3}|$)`),
}

// RemoveInternalSections drops whole assistant bookkeeping sections, not
// just their tags. Run before pricing extraction.
func RemoveInternalSections(text string) string {
	for _, p := range internalSectionPatterns {
		text = p.ReplaceAllString(text, "$1")
	}
	return text
}

// bracketPattern matches any [..] segment with an optional trailing "(" so
// markdown links can be told apart without lookahead.
var bracketPattern = regexp.MustCompile(`\[[^\]]+\]\(?`)

var internalTagInner = regexp.MustCompile(`^[A-Z0-9 _\-/&]+$`)

// ScrubBracketTags removes internal all-caps bracket directives from
// markdown while leaving [text](url) links untouched.
func ScrubBracketTags(text string) string {
	text = knownTagPattern.ReplaceAllString(text, "")

	text = bracketPattern.ReplaceAllStringFunc(text, func(match string) string {
		if strings.HasSuffix(match, "(") {
			// Markdown link, keep as is.
			return match
		}
		inner := match[1 : len(match)-1]
		if internalTagInner.MatchString(inner) {
			return ""
		}
		return match
	})

	return collapseBlank(text)
}

var blankRunPattern = regexp.MustCompile(`\n{3,}`)

func collapseBlank(s string) string {
	return strings.TrimSpace(blankRunPattern.ReplaceAllString(s, "\n\n"))
}

// SanitizeEmptyTextNodes removes text nodes whose content trims to nothing.
// The editor schema rejects empty text leaves.
func SanitizeEmptyTextNodes(root *LexicalRoot) {
	if root == nil {
		return
	}
	root.Root.Children = sanitizeChildren(root.Root.Children)
}

func sanitizeChildren(nodes []Node) []Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type == TypeText && strings.TrimSpace(n.Text) == "" {
			continue
		}
		n.Children = sanitizeChildren(n.Children)
		out = append(out, n)
	}
	return out
}
