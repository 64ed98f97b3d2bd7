package lexical

import (
	"regexp"
	"strconv"
	"strings"

	"sow-studio-be/internal/constant"
	"sow-studio-be/pkg/pricing"
)

// Builder converts assistant markdown into an editor document tree. Pricing
// table placeholders are spliced in as typed nodes bound to their scope in
// order of appearance.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

var (
	headingPattern   = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletPattern    = regexp.MustCompile(`^(\s*)[-*]\s+(.*)$`)
	numberPattern    = regexp.MustCompile(`^(\s*)(\d+)\.\s+(.*)$`)
	checkPattern     = regexp.MustCompile(`^(\s*)-\s+\[([ xX])\]\s+(.*)$`)
	ruleLinePattern  = regexp.MustCompile(`^\s*(-{3,}|\*{3,}|_{3,})\s*$`)
	tableLinePattern = regexp.MustCompile(`^\s*\|.*\|\s*$`)
	tableSepPattern  = regexp.MustCompile(`^\s*\|?\s*:?-{3,}.*$`)
)

// Build parses markdown into a document tree. Each placeholder line consumes
// the next scope; placeholders beyond the scope count render empty tables
// and leftover scopes are appended after the final content node.
func (b *Builder) Build(markdown string, scopes []pricing.ScopeBlock) *LexicalRoot {
	lines := strings.Split(markdown, "\n")
	root := Node{Type: TypeRoot, Version: 1}
	scopeIndex := 0

	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			i++

		case trimmed == constant.PricingTablePlaceholder:
			node := Node{Type: TypePricingTable, Version: 1}
			if scopeIndex < len(scopes) {
				scope := scopes[scopeIndex]
				node.Scope = &scope
				scopeIndex++
			}
			root.Children = append(root.Children, node)
			i++

		case headingPattern.MatchString(trimmed):
			m := headingPattern.FindStringSubmatch(trimmed)
			root.Children = append(root.Children, Node{
				Type:     TypeHeading,
				Version:  1,
				Tag:      "h" + strconv.Itoa(len(m[1])),
				Children: parseInline(m[2]),
			})
			i++

		case ruleLinePattern.MatchString(line):
			root.Children = append(root.Children, Node{Type: TypeHorizontalRule, Version: 1})
			i++

		case tableLinePattern.MatchString(line):
			node, consumed := buildTable(lines[i:])
			if len(node.Children) > 0 {
				root.Children = append(root.Children, node)
			}
			i += consumed

		case checkPattern.MatchString(line) || bulletPattern.MatchString(line) || numberPattern.MatchString(line):
			node, consumed := buildList(lines[i:])
			root.Children = append(root.Children, node)
			i += consumed

		default:
			// Paragraph: consecutive plain lines merge with spaces.
			var parts []string
			for i < len(lines) {
				t := strings.TrimSpace(lines[i])
				if t == "" || t == constant.PricingTablePlaceholder ||
					headingPattern.MatchString(t) || tableLinePattern.MatchString(lines[i]) ||
					checkPattern.MatchString(lines[i]) || bulletPattern.MatchString(lines[i]) ||
					numberPattern.MatchString(lines[i]) || ruleLinePattern.MatchString(lines[i]) {
					break
				}
				parts = append(parts, t)
				i++
			}
			root.Children = append(root.Children, Node{
				Type:     TypeParagraph,
				Version:  1,
				Children: parseInline(strings.Join(parts, " ")),
			})
		}
	}

	// Scopes that never got a marker still need a table, appended at the end.
	for ; scopeIndex < len(scopes); scopeIndex++ {
		scope := scopes[scopeIndex]
		root.Children = append(root.Children, Node{Type: TypePricingTable, Version: 1, Scope: &scope})
	}

	tree := &LexicalRoot{Root: root}
	SanitizeEmptyTextNodes(tree)
	return tree
}

// buildList consumes consecutive list lines and returns the list node plus
// the number of lines used. Nested lists use two-space indentation.
func buildList(lines []string) (Node, int) {
	return buildListAt(lines, 0)
}

func buildListAt(lines []string, depth int) (Node, int) {
	node := Node{Type: TypeList, Version: 1, Start: 1}
	consumed := 0
	value := 1

	for consumed < len(lines) {
		line := lines[consumed]
		indent, ok := listIndent(line)
		if !ok {
			break
		}
		level := indent / 2
		if level < depth {
			break
		}
		if level > depth {
			nested, used := buildListAt(lines[consumed:], level)
			if len(node.Children) > 0 {
				last := &node.Children[len(node.Children)-1]
				last.Children = append(last.Children, nested)
			} else {
				node.Children = append(node.Children, Node{
					Type: TypeListItem, Version: 1, Children: []Node{nested},
				})
			}
			consumed += used
			continue
		}

		item := Node{Type: TypeListItem, Version: 1, Value: value}
		switch {
		case checkPattern.MatchString(line):
			m := checkPattern.FindStringSubmatch(line)
			node.ListType = "check"
			item.Checked = strings.EqualFold(m[2], "x")
			item.Children = parseInline(m[3])
		case numberPattern.MatchString(line):
			m := numberPattern.FindStringSubmatch(line)
			if node.ListType == "" {
				node.ListType = "number"
				if start, err := strconv.Atoi(m[2]); err == nil {
					node.Start = start
				}
			}
			item.Children = parseInline(m[3])
		default:
			m := bulletPattern.FindStringSubmatch(line)
			if node.ListType == "" {
				node.ListType = "bullet"
			}
			item.Children = parseInline(m[2])
		}
		node.Children = append(node.Children, item)
		value++
		consumed++
	}

	if node.ListType == "" {
		node.ListType = "bullet"
	}
	return node, consumed
}

func listIndent(line string) (int, bool) {
	if m := checkPattern.FindStringSubmatch(line); m != nil {
		return len(m[1]), true
	}
	if m := bulletPattern.FindStringSubmatch(line); m != nil {
		return len(m[1]), true
	}
	if m := numberPattern.FindStringSubmatch(line); m != nil {
		return len(m[1]), true
	}
	return 0, false
}

// buildTable consumes consecutive pipe-table lines. The first row becomes
// the header row, separator rows are dropped.
func buildTable(lines []string) (Node, int) {
	node := Node{Type: TypeTable, Version: 1}
	consumed := 0
	rowIndex := 0

	for consumed < len(lines) && tableLinePattern.MatchString(lines[consumed]) {
		line := strings.TrimSpace(lines[consumed])
		consumed++
		if tableSepPattern.MatchString(strings.Trim(line, "|")) {
			continue
		}

		cells := strings.Split(strings.Trim(line, "|"), "|")
		row := Node{Type: TypeTableRow, Version: 1}
		for _, cell := range cells {
			cellNode := Node{
				Type:    TypeTableCell,
				Version: 1,
				Children: []Node{{
					Type:     TypeParagraph,
					Version:  1,
					Children: parseInline(strings.TrimSpace(cell)),
				}},
			}
			if rowIndex == 0 {
				cellNode.HeaderState = 1
			}
			row.Children = append(row.Children, cellNode)
		}
		node.Children = append(node.Children, row)
		rowIndex++
	}
	return node, consumed
}

// Inline markdown spans, tried earliest-match-first.
var inlinePatterns = []struct {
	re     *regexp.Regexp
	format int
	isLink bool
}{
	{re: regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`), isLink: true},
	{re: regexp.MustCompile("`([^`]+)`"), format: FormatCode},
	{re: regexp.MustCompile(`\*\*([^*]+)\*\*`), format: FormatBold},
	{re: regexp.MustCompile(`~~([^~]+)~~`), format: FormatStrikethrough},
	{re: regexp.MustCompile(`_([^_]+)_`), format: FormatItalic},
	{re: regexp.MustCompile(`\*([^*]+)\*`), format: FormatItalic},
}

// parseInline splits a text run into formatted text and link nodes.
func parseInline(text string) []Node {
	if text == "" {
		return nil
	}

	var nodes []Node
	for text != "" {
		bestIdx := -1
		var bestLoc []int
		var bestPattern int
		for pi, p := range inlinePatterns {
			loc := p.re.FindStringSubmatchIndex(text)
			if loc == nil {
				continue
			}
			if bestIdx == -1 || loc[0] < bestIdx {
				bestIdx = loc[0]
				bestLoc = loc
				bestPattern = pi
			}
		}
		if bestIdx == -1 {
			nodes = append(nodes, NewTextNode(text, 0))
			break
		}

		if bestIdx > 0 {
			nodes = append(nodes, NewTextNode(text[:bestIdx], 0))
		}
		p := inlinePatterns[bestPattern]
		if p.isLink {
			nodes = append(nodes, Node{
				Type:     TypeLink,
				Version:  1,
				URL:      text[bestLoc[4]:bestLoc[5]],
				Children: []Node{NewTextNode(text[bestLoc[2]:bestLoc[3]], 0)},
			})
		} else {
			nodes = append(nodes, NewTextNode(text[bestLoc[2]:bestLoc[3]], p.format))
		}
		text = text[bestLoc[1]:]
	}
	return nodes
}

var (
	clientLinePattern = regexp.MustCompile(`(?im)^\*{0,2}client\*{0,2}[:\s]+\*{0,2}([^*\n]+)`)
	sowLinePattern    = regexp.MustCompile(`(?im)^scope of work[:\s]+(.+)$`)
)

// DetectTitle picks a document title from markdown: the first heading, a
// "Client:" line, or a "Scope of Work:" line, in that order.
func DetectTitle(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		if m := headingPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return strings.TrimSpace(stripInline(m[2]))
		}
	}
	if m := clientLinePattern.FindStringSubmatch(markdown); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := sowLinePattern.FindStringSubmatch(markdown); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func stripInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
