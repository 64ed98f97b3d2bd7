package lexical

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Renderer converts an editor document tree back to markdown. The output is
// what the assistant sees as "current document" context on follow-up turns.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render walks the tree and emits markdown.
func (r *Renderer) Render(root *LexicalRoot) string {
	if root == nil {
		return ""
	}
	var sb strings.Builder
	r.walkNode(root.Root, &sb, 0)
	return strings.TrimSpace(sb.String()) + "\n"
}

// RenderJSON parses a serialized document and renders it. Content that is
// not a document tree comes back unchanged.
func (r *Renderer) RenderJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, `{"root":`) {
		return content
	}
	var root LexicalRoot
	if err := json.Unmarshal([]byte(trimmed), &root); err != nil {
		return content
	}
	return r.Render(&root)
}

func (r *Renderer) walkNode(node Node, sb *strings.Builder, depth int) {
	switch node.Type {
	case TypeRoot:
		for _, child := range node.Children {
			r.walkNode(child, sb, depth)
			sb.WriteString("\n")
		}

	case TypeHeading:
		level := 1
		if len(node.Tag) == 2 && node.Tag[0] == 'h' {
			level = int(node.Tag[1] - '0')
		}
		sb.WriteString(strings.Repeat("#", level) + " ")
		for _, child := range node.Children {
			r.walkNode(child, sb, depth)
		}
		sb.WriteString("\n")

	case TypeParagraph:
		r.handleParagraph(node, sb, depth)

	case TypeText:
		r.handleText(node, sb)

	case TypeList:
		r.handleList(node, sb, depth)

	case TypeListItem:
		// Fallback if encountered loose
		for _, child := range node.Children {
			r.walkNode(child, sb, depth)
		}

	case TypeTable:
		r.handleTable(node, sb)

	case TypeLink:
		r.handleLink(node, sb)

	case TypeHorizontalRule:
		sb.WriteString("---\n")

	case TypePricingTable:
		r.handlePricingTable(node, sb)

	default:
		for _, child := range node.Children {
			r.walkNode(child, sb, depth)
		}
	}
}

func (r *Renderer) handleParagraph(node Node, sb *strings.Builder, depth int) {
	align := ""
	if fmtStr, ok := node.Format.(string); ok && fmtStr != "" && fmtStr != "left" {
		align = fmtStr
	}

	if align != "" {
		sb.WriteString(fmt.Sprintf("<div align=\"%s\">", align))
	}

	for _, child := range node.Children {
		r.walkNode(child, sb, depth)
	}

	if align != "" {
		sb.WriteString("</div>")
	}
	sb.WriteString("\n")
}

func (r *Renderer) handleText(node Node, sb *strings.Builder) {
	styles := ParseStyle(node.Style)
	openTag := styles.BuildAnnotatedOpenTag()
	if openTag != "" {
		sb.WriteString(openTag)
	}

	fmtInt := 0
	if f, ok := node.Format.(float64); ok {
		fmtInt = int(f)
	} else if f, ok := node.Format.(int); ok {
		fmtInt = f
	}

	isBold := (fmtInt & FormatBold) != 0
	isItalic := (fmtInt & FormatItalic) != 0
	isUnderline := (fmtInt & FormatUnderline) != 0
	isCode := (fmtInt & FormatCode) != 0
	isStrike := (fmtInt & FormatStrikethrough) != 0

	// Wrapper order: Code > Bold > Italic > Underline > Strike
	if isCode {
		sb.WriteString("`")
	}
	if isBold {
		sb.WriteString("**")
	}
	if isItalic {
		sb.WriteString("_")
	}
	if isUnderline {
		sb.WriteString("<u>")
	}
	if isStrike {
		sb.WriteString("~~")
	}

	sb.WriteString(node.Text)

	if isStrike {
		sb.WriteString("~~")
	}
	if isUnderline {
		sb.WriteString("</u>")
	}
	if isItalic {
		sb.WriteString("_")
	}
	if isBold {
		sb.WriteString("**")
	}
	if isCode {
		sb.WriteString("`")
	}

	if openTag != "" {
		sb.WriteString("</span>")
	}
}

func (r *Renderer) handleLink(node Node, sb *strings.Builder) {
	sb.WriteString("[")
	for _, child := range node.Children {
		r.walkNode(child, sb, 0)
	}
	sb.WriteString(fmt.Sprintf("](%s)", node.URL))
}

func (r *Renderer) handleList(node Node, sb *strings.Builder, depth int) {
	index := 1
	if node.Start > 0 {
		index = node.Start
	}

	for _, child := range node.Children {
		if child.Type != TypeListItem {
			continue
		}

		sb.WriteString(strings.Repeat("  ", depth))

		switch node.ListType {
		case "number":
			sb.WriteString(fmt.Sprintf("%d. ", index))
			index++
		case "check":
			if child.Checked {
				sb.WriteString("- [x] ")
			} else {
				sb.WriteString("- [ ] ")
			}
		default:
			sb.WriteString("- ")
		}

		for _, grandChild := range child.Children {
			if grandChild.Type == TypeList {
				sb.WriteString("\n")
				r.handleList(grandChild, sb, depth+1)
			} else {
				r.walkNode(grandChild, sb, depth)
			}
		}
		sb.WriteString("\n")
	}
	if depth == 0 {
		sb.WriteString("\n")
	}
}

func (r *Renderer) handleTable(node Node, sb *strings.Builder) {
	var rows [][]string
	maxCols := 0

	for _, row := range node.Children {
		if row.Type != TypeTableRow {
			continue
		}

		var rowData []string
		for _, cell := range row.Children {
			var cellSb strings.Builder
			for _, content := range cell.Children {
				r.walkNode(content, &cellSb, 0)
			}
			// Newlines break markdown table rows
			rowData = append(rowData, strings.TrimSpace(strings.ReplaceAll(cellSb.String(), "\n", " ")))
		}
		rows = append(rows, rowData)
		if len(rowData) > maxCols {
			maxCols = len(rowData)
		}
	}

	if len(rows) == 0 {
		return
	}

	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := 0; i < maxCols; i++ {
			if i < len(cells) {
				sb.WriteString(" " + cells[i] + " |")
			} else {
				sb.WriteString("  |")
			}
		}
		sb.WriteString("\n")
	}

	writeRow(rows[0])
	sb.WriteString("|")
	for i := 0; i < maxCols; i++ {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for i := 1; i < len(rows); i++ {
		writeRow(rows[i])
	}
	sb.WriteString("\n")
}

// handlePricingTable renders the scope behind an editable pricing table as
// an Investment Breakdown section so follow-up turns can reason about it.
func (r *Renderer) handlePricingTable(node Node, sb *strings.Builder) {
	scope := node.Scope
	if scope == nil || len(scope.Roles) == 0 {
		return
	}

	if scope.Name != "" {
		sb.WriteString(fmt.Sprintf("### %s: Investment Breakdown\n\n", scope.Name))
	}
	sb.WriteString("| Role | Description | Hours | Rate | Cost |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, row := range scope.Roles {
		sb.WriteString(fmt.Sprintf("| %s | %s | %.1f | $%.2f | $%.2f |\n",
			row.Role, row.Description, row.Hours, row.Rate, row.Cost))
	}
	sb.WriteString(fmt.Sprintf("\nSubtotal: $%.2f\n", scope.Subtotal))
	if scope.DiscountPercent > 0 {
		sb.WriteString(fmt.Sprintf("Discount (%.1f%%): -$%.2f\n", scope.DiscountPercent, scope.DiscountAmount))
	}
	sb.WriteString(fmt.Sprintf("GST (%.1f%%): $%.2f\n", scope.GSTPercent, scope.GSTAmount))
	sb.WriteString(fmt.Sprintf("Total: $%.2f\n", scope.Total))
}
