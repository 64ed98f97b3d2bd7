package pricing

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"sow-studio-be/internal/constant"
)

// fencedPattern matches ```json code blocks. The assistant emits one block
// per scope in multi-phase proposals.
var fencedPattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// flexFloat tolerates numbers arriving as JSON strings or garbage. Anything
// that is not a parseable number decodes to 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	var v float64
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

type wireRole struct {
	Role        string    `json:"role"`
	Description string    `json:"description"`
	Hours       flexFloat `json:"hours"`
	Rate        flexFloat `json:"rate"`
	Cost        flexFloat `json:"cost"`
}

type wireScope struct {
	ScopeName        string     `json:"scope_name"`
	ScopeDescription string     `json:"scope_description"`
	Deliverables     []string   `json:"deliverables"`
	Assumptions      []string   `json:"assumptions"`
	RoleAllocation   []wireRole `json:"role_allocation"`
	Roles            []wireRole `json:"roles"`
	DiscountPercent  *flexFloat `json:"discount_percent"`
}

type wireScopeItem struct {
	Name           string     `json:"name"`
	ScopeName      string     `json:"scope_name"`
	Description    string     `json:"description"`
	Roles          []wireRole `json:"roles"`
	RoleAllocation []wireRole `json:"role_allocation"`
}

// wireBlock is the superset of every pricing payload shape the assistant has
// ever produced.
type wireBlock struct {
	wireScope
	Scopes             []wireScope     `json:"scopes"`
	SuggestedRoles     []wireRole      `json:"suggestedRoles"`
	ScopeItems         []wireScopeItem `json:"scopeItems"`
	Discount           *flexFloat      `json:"discount"`
	DiscountPercentage *flexFloat      `json:"discount_percentage"`
	ProjectDetails     *struct {
		DiscountPercentage *flexFloat `json:"discount_percentage"`
	} `json:"project_details"`
}

// Extraction is the outcome of scanning one assistant response for pricing.
type Extraction struct {
	// Narrative is the input with every valid pricing block replaced by the
	// table placeholder. Invalid blocks stay verbatim.
	Narrative string
	Document  *MultiScopeDocument
	// InvalidBlocks holds the raw text of fenced json blocks that failed to
	// parse or carried no role rows.
	InvalidBlocks []string
}

// Extractor pulls structured pricing out of assistant text.
type Extractor struct {
	gstPercent float64
}

func NewExtractor(gstPercent float64) *Extractor {
	if gstPercent <= 0 {
		gstPercent = constant.DefaultGSTPercent
	}
	return &Extractor{gstPercent: gstPercent}
}

// Extract scans text for pricing data in priority order: fenced ```json
// blocks, a bare legacy suggestedRoles object, then a bare structured
// payload. When nothing usable is found it returns ErrNoPricingData and the
// untouched narrative; no table is ever fabricated.
func (e *Extractor) Extract(text string) (*Extraction, error) {
	result := &Extraction{Narrative: text}
	doc := &MultiScopeDocument{ExtractedAt: time.Now()}

	if e.extractFenced(text, result, doc) {
		doc.Encoding = EncodingFenced
	} else if e.extractBare(text, result, doc) {
		// encoding set inside
	}

	if doc.RoleCount() == 0 {
		return result, ErrNoPricingData
	}

	RecalculateDocument(doc, e.gstPercent)
	result.Document = doc
	return result, nil
}

// extractFenced walks every fenced json block. Valid blocks are replaced in
// place by the placeholder so table positions survive; broken blocks remain
// readable in the narrative.
func (e *Extractor) extractFenced(text string, result *Extraction, doc *MultiScopeDocument) bool {
	matches := fencedPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return false
	}

	var narrative strings.Builder
	last := 0
	found := false
	for _, m := range matches {
		raw := text[m[2]:m[3]]
		scopes, discount, ok := parseBlock(raw)
		if !ok {
			result.InvalidBlocks = append(result.InvalidBlocks, text[m[0]:m[1]])
			continue
		}

		narrative.WriteString(text[last:m[0]])
		narrative.WriteString("\n" + constant.PricingTablePlaceholder + "\n")
		last = m[1]

		doc.Scopes = append(doc.Scopes, scopes...)
		if discount != nil {
			doc.Discount = *discount
		}
		found = true
	}
	if !found {
		return false
	}
	narrative.WriteString(text[last:])
	result.Narrative = collapseBlankLines(narrative.String())
	return true
}

// extractBare handles pricing objects that arrived without code fences.
func (e *Extractor) extractBare(text string, result *Extraction, doc *MultiScopeDocument) bool {
	for _, key := range []string{`"suggestedRoles"`, `"scopes"`, `"scopeItems"`} {
		raw, start, end := findEnclosingObject(text, key)
		if raw == "" {
			continue
		}
		scopes, discount, ok := parseBlock(raw)
		if !ok {
			continue
		}
		doc.Scopes = append(doc.Scopes, scopes...)
		if discount != nil {
			doc.Discount = *discount
		}
		if key == `"suggestedRoles"` {
			doc.Encoding = EncodingLegacy
		} else {
			doc.Encoding = EncodingStructured
		}
		result.Narrative = collapseBlankLines(
			text[:start] + "\n" + constant.PricingTablePlaceholder + "\n" + text[end:])
		return true
	}
	return false
}

// parseBlock interprets one pricing payload. A block is usable only when it
// parses and yields at least one role row with no negative figures.
func parseBlock(raw string) ([]ScopeBlock, *float64, bool) {
	var block wireBlock
	if err := json.Unmarshal([]byte(raw), &block); err != nil {
		return nil, nil, false
	}

	var scopes []ScopeBlock
	switch {
	case len(block.Scopes) > 0:
		for _, ws := range block.Scopes {
			scopes = append(scopes, scopeFromWire(ws, "Unnamed Scope"))
		}
	case len(block.ScopeItems) > 0:
		for _, item := range block.ScopeItems {
			name := item.ScopeName
			if name == "" {
				name = item.Name
			}
			scopes = append(scopes, scopeFromWire(wireScope{
				ScopeName:        name,
				ScopeDescription: item.Description,
				RoleAllocation:   append(item.RoleAllocation, item.Roles...),
			}, "Unnamed Scope"))
		}
	default:
		ws := block.wireScope
		ws.RoleAllocation = append(ws.RoleAllocation, ws.Roles...)
		ws.RoleAllocation = append(ws.RoleAllocation, block.SuggestedRoles...)
		ws.Roles = nil
		scopes = append(scopes, scopeFromWire(ws, constant.DefaultScopeName))
	}

	total := 0
	for _, s := range scopes {
		for _, r := range s.Roles {
			if r.Hours < 0 || r.Rate < 0 {
				return nil, nil, false
			}
		}
		total += len(s.Roles)
	}
	if total == 0 {
		return nil, nil, false
	}

	return scopes, blockDiscount(block), true
}

func scopeFromWire(ws wireScope, fallbackName string) ScopeBlock {
	name := strings.TrimSpace(ws.ScopeName)
	if name == "" {
		name = fallbackName
	}
	rows := ws.RoleAllocation
	if len(rows) == 0 {
		rows = ws.Roles
	}
	scope := ScopeBlock{
		Name:         name,
		Description:  ws.ScopeDescription,
		Deliverables: ws.Deliverables,
		Assumptions:  ws.Assumptions,
	}
	if ws.DiscountPercent != nil {
		scope.DiscountPercent = float64(*ws.DiscountPercent)
	}
	for _, r := range rows {
		scope.Roles = append(scope.Roles, RoleAllocation{
			Role:        strings.TrimSpace(r.Role),
			Description: r.Description,
			Hours:       float64(r.Hours),
			Rate:        float64(r.Rate),
		})
	}
	return scope
}

func blockDiscount(block wireBlock) *float64 {
	var v *flexFloat
	switch {
	case block.Discount != nil:
		v = block.Discount
	case block.DiscountPercentage != nil:
		v = block.DiscountPercentage
	case block.ProjectDetails != nil && block.ProjectDetails.DiscountPercentage != nil:
		v = block.ProjectDetails.DiscountPercentage
	default:
		return nil
	}
	f := float64(*v)
	return &f
}

// findEnclosingObject locates the JSON object containing key by walking
// outward from the key to candidate opening braces and matching forward.
// The outermost brace that still yields valid JSON wins.
func findEnclosingObject(text, key string) (raw string, start, end int) {
	keyIdx := strings.Index(text, key)
	if keyIdx < 0 {
		return "", 0, 0
	}
	for p := keyIdx; p >= 0; p-- {
		if text[p] != '{' {
			continue
		}
		close := matchBrace(text, p)
		if close <= keyIdx {
			continue
		}
		candidate := text[p : close+1]
		if json.Valid([]byte(candidate)) {
			raw, start, end = candidate, p, close+1
		}
	}
	return raw, start, end
}

// matchBrace returns the index of the brace closing the one at open, or -1.
// String literals and escapes are honored.
func matchBrace(text string, open int) int {
	depth := 0
	inString := false
	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

var blankRunPattern = regexp.MustCompile(`\n{3,}`)

func collapseBlankLines(s string) string {
	return strings.TrimSpace(blankRunPattern.ReplaceAllString(s, "\n\n"))
}
