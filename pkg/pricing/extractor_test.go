package pricing

import (
	"errors"
	"strings"
	"testing"

	"sow-studio-be/internal/constant"
)

const fencedScope = "```json\n" +
	`{"scope_name":"Phase 1: Discovery","scope_description":"Initial audit","deliverables":["Audit report"],"role_allocation":[{"role":"Tech - Sr. Consultant - Analytics","hours":10,"rate":295},{"role":"Account Management - Account Manager","hours":4,"rate":180}],"scope_subtotal":3670}` +
	"\n```"

func TestExtractFencedBlock(t *testing.T) {
	text := "Here is the proposal.\n\n" + fencedScope + "\n\nLet me know your thoughts."

	e := NewExtractor(10)
	got, err := e.Extract(text)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.Contains(got.Narrative, constant.PricingTablePlaceholder) {
		t.Errorf("Narrative missing placeholder: %q", got.Narrative)
	}
	if strings.Contains(got.Narrative, "```json") {
		t.Errorf("valid block not removed from narrative: %q", got.Narrative)
	}
	if got.Document.Encoding != EncodingFenced {
		t.Errorf("Encoding = %s, want %s", got.Document.Encoding, EncodingFenced)
	}
	if len(got.Document.Scopes) != 1 {
		t.Fatalf("got %d scopes, want 1", len(got.Document.Scopes))
	}

	scope := got.Document.Scopes[0]
	if scope.Name != "Phase 1: Discovery" {
		t.Errorf("scope name = %q", scope.Name)
	}
	// 10h * 295 + 4h * 180 = 3670, totals recomputed not trusted
	if scope.Subtotal != 3670 {
		t.Errorf("Subtotal = %v, want 3670", scope.Subtotal)
	}
	if scope.GSTAmount != 367 {
		t.Errorf("GSTAmount = %v, want 367", scope.GSTAmount)
	}
	if scope.Total != 4037 {
		t.Errorf("Total = %v, want 4037", scope.Total)
	}
}

func TestExtractMultipleBlocksPreserveOrder(t *testing.T) {
	valid := fencedScope
	broken := "```json\n{\"scope_name\": broken\n```"
	empty := "```json\n{\"scope_name\":\"Empty\",\"role_allocation\":[]}\n```"
	text := "intro\n" + valid + "\nmiddle\n" + broken + "\nbetween\n" + empty + "\n" + valid + "\ntail"

	got, err := NewExtractor(10).Extract(text)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if n := strings.Count(got.Narrative, constant.PricingTablePlaceholder); n != 2 {
		t.Errorf("placeholder count = %d, want 2", n)
	}
	// Broken and role-less blocks stay verbatim for the reader to see.
	if !strings.Contains(got.Narrative, "broken") {
		t.Errorf("malformed block was removed: %q", got.Narrative)
	}
	if !strings.Contains(got.Narrative, `"Empty"`) {
		t.Errorf("role-less block was removed: %q", got.Narrative)
	}
	if len(got.InvalidBlocks) != 2 {
		t.Errorf("InvalidBlocks = %d, want 2", len(got.InvalidBlocks))
	}
	if len(got.Document.Scopes) != 2 {
		t.Errorf("scopes = %d, want 2", len(got.Document.Scopes))
	}

	// Ordering: intro, table, narrative with broken/empty, table, tail.
	first := strings.Index(got.Narrative, constant.PricingTablePlaceholder)
	mid := strings.Index(got.Narrative, "broken")
	last := strings.LastIndex(got.Narrative, constant.PricingTablePlaceholder)
	if !(first < mid && mid < last) {
		t.Errorf("placeholder order wrong: first=%d mid=%d last=%d", first, mid, last)
	}
}

func TestExtractMultiScopeBlock(t *testing.T) {
	text := "```json\n" +
		`{"scopes":[{"scope_name":"Phase 1","role_allocation":[{"role":"Tech - Producer - Email","hours":8,"rate":120}]},{"scope_name":"Phase 2","role_allocation":[{"role":"Tech - Specialist - Email","hours":5,"rate":180}]}],"discount":10}` +
		"\n```"

	got, err := NewExtractor(10).Extract(text)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got.Document.Scopes) != 2 {
		t.Fatalf("scopes = %d, want 2", len(got.Document.Scopes))
	}
	if got.Document.Discount != 10 {
		t.Errorf("Discount = %v, want 10", got.Document.Discount)
	}
	// 8*120 = 960, minus 10% = 864, plus GST = 950.40
	if got.Document.Scopes[0].Total != 950.40 {
		t.Errorf("scope[0].Total = %v, want 950.40", got.Document.Scopes[0].Total)
	}
}

func TestExtractLegacySuggestedRoles(t *testing.T) {
	text := `The pricing follows. {"suggestedRoles":[{"role":"Tech - Producer - Design","hours":12,"rate":120,"description":"UI build"}],"discount":5} Thanks.`

	got, err := NewExtractor(10).Extract(text)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Document.Encoding != EncodingLegacy {
		t.Errorf("Encoding = %s, want %s", got.Document.Encoding, EncodingLegacy)
	}
	if got.Document.Discount != 5 {
		t.Errorf("Discount = %v, want 5", got.Document.Discount)
	}
	if len(got.Document.Scopes) != 1 || got.Document.Scopes[0].Name != constant.DefaultScopeName {
		t.Fatalf("unexpected scopes: %+v", got.Document.Scopes)
	}
	if strings.Contains(got.Narrative, "suggestedRoles") {
		t.Errorf("legacy object not removed: %q", got.Narrative)
	}
	if !strings.Contains(got.Narrative, constant.PricingTablePlaceholder) {
		t.Errorf("placeholder missing: %q", got.Narrative)
	}
}

func TestExtractStructuredFallback(t *testing.T) {
	text := `Summary below. {"scopeItems":[{"name":"Integration","roles":[{"role":"Tech - Integrations","hours":20,"rate":170}]}]} End.`

	got, err := NewExtractor(10).Extract(text)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Document.Encoding != EncodingStructured {
		t.Errorf("Encoding = %s, want %s", got.Document.Encoding, EncodingStructured)
	}
	if got.Document.Scopes[0].Name != "Integration" {
		t.Errorf("scope name = %q", got.Document.Scopes[0].Name)
	}
}

func TestExtractNoPricingFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain narrative", "Just a narrative answer with no pricing at all."},
		{"only malformed block", "```json\n{nope\n```"},
		{"only empty roles", "```json\n{\"scope_name\":\"X\",\"role_allocation\":[]}\n```"},
		{"negative hours invalidate", "```json\n{\"scope_name\":\"X\",\"role_allocation\":[{\"role\":\"Tech - Producer - Admin\",\"hours\":-3,\"rate\":120}]}\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewExtractor(10).Extract(tt.text)
			if !errors.Is(err, ErrNoPricingData) {
				t.Fatalf("Extract() error = %v, want ErrNoPricingData", err)
			}
			if got.Document != nil {
				t.Errorf("Document = %+v, want nil", got.Document)
			}
			if strings.Contains(got.Narrative, constant.PricingTablePlaceholder) {
				t.Errorf("placeholder inserted without pricing: %q", got.Narrative)
			}
		})
	}
}

func TestExtractStringHoursTolerated(t *testing.T) {
	text := "```json\n" +
		`{"scope_name":"X","role_allocation":[{"role":"Tech - Producer - Admin","hours":"6","rate":"120"},{"role":"Tech - Producer - Email","hours":"lots","rate":120}]}` +
		"\n```"

	got, err := NewExtractor(10).Extract(text)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	rows := got.Document.Scopes[0].Roles
	if rows[0].Hours != 6 || rows[0].Rate != 120 {
		t.Errorf("quoted numbers not parsed: %+v", rows[0])
	}
	if rows[1].Hours != 0 {
		t.Errorf("garbage hours = %v, want 0", rows[1].Hours)
	}
}
