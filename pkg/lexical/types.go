package lexical

import (
	"strings"

	"sow-studio-be/pkg/pricing"
)

// LexicalRoot represents the top-level editor document structure
type LexicalRoot struct {
	Root Node `json:"root"`
}

// Node represents any node in the editor tree.
// Using pointers for nullable fields to save space/detect absence
type Node struct {
	Type     string `json:"type"`
	Version  int    `json:"version"`
	Children []Node `json:"children,omitempty"`

	// Text specific
	Text   string      `json:"text,omitempty"`
	Format interface{} `json:"format,omitempty"` // Can be int (bitmask) or string (alignment)
	Style  string      `json:"style,omitempty"`
	Mode   string      `json:"mode,omitempty"`
	Detail int         `json:"detail,omitempty"`

	// Paragraph specific
	Direction  string `json:"direction,omitempty"`
	Indent     int    `json:"indent,omitempty"`
	TextFormat int    `json:"textFormat,omitempty"`

	// Link specific
	URL    string `json:"url,omitempty"`
	Rel    string `json:"rel,omitempty"`
	Target string `json:"target,omitempty"`
	Title  string `json:"title,omitempty"`

	// Heading specific: h1..h6
	Tag string `json:"tag,omitempty"`

	// List specific
	ListType string `json:"listType,omitempty"` // check, bullet, number
	Start    int    `json:"start,omitempty"`

	// ListItem specific
	Checked bool `json:"checked,omitempty"`
	Value   int  `json:"value,omitempty"`

	// Table specific
	ColSpan     int `json:"colSpan,omitempty"`
	RowSpan     int `json:"rowSpan,omitempty"`
	HeaderState int `json:"headerState,omitempty"` // 1 = header, 0 = normal

	// Pricing table specific: the scope backing an editable pricing table
	Scope *pricing.ScopeBlock `json:"scopeData,omitempty"`
}

// Node type names as the editor schema expects them.
const (
	TypeRoot           = "root"
	TypeParagraph      = "paragraph"
	TypeText           = "text"
	TypeHeading        = "heading"
	TypeList           = "list"
	TypeListItem       = "listitem"
	TypeTable          = "table"
	TypeTableRow       = "tablerow"
	TypeTableCell      = "tablecell"
	TypeLink           = "link"
	TypeHorizontalRule = "horizontalrule"
	TypePricingTable   = "editablePricingTable"
)

// Constants for Text Format Bitmask
const (
	FormatBold          = 1
	FormatItalic        = 2
	FormatStrikethrough = 4
	FormatUnderline     = 8
	FormatCode          = 16
	FormatSubscript     = 32
	FormatSuperscript   = 64
	FormatHighlight     = 1 << 7
)

// NewTextNode builds a text leaf with the given format bitmask.
func NewTextNode(text string, format int) Node {
	n := Node{Type: TypeText, Version: 1, Text: text}
	if format != 0 {
		n.Format = format
	}
	return n
}

// IsEmptyDocument reports whether the tree has no meaningful content: a nil
// root, no children, or a single paragraph holding only blank text.
func IsEmptyDocument(root *LexicalRoot) bool {
	if root == nil || len(root.Root.Children) == 0 {
		return true
	}
	if len(root.Root.Children) != 1 {
		return false
	}
	only := root.Root.Children[0]
	if only.Type != TypeParagraph {
		return false
	}
	for _, child := range only.Children {
		if child.Type != TypeText {
			return false
		}
		if strings.TrimSpace(child.Text) != "" {
			return false
		}
	}
	return true
}
