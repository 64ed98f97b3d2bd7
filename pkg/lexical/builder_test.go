package lexical

import (
	"testing"

	"sow-studio-be/internal/constant"
	"sow-studio-be/pkg/pricing"
)

func nodeTypes(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Type
	}
	return out
}

func TestBuildHeadingsAndParagraphs(t *testing.T) {
	md := "# CRM Migration Proposal\n\nWe will migrate your CRM.\nThis covers data and workflows.\n\n## Approach"

	tree := NewBuilder().Build(md, nil)
	children := tree.Root.Children

	if len(children) != 3 {
		t.Fatalf("children = %v", nodeTypes(children))
	}
	if children[0].Type != TypeHeading || children[0].Tag != "h1" {
		t.Errorf("node 0 = %+v, want h1 heading", children[0])
	}
	if children[0].Children[0].Text != "CRM Migration Proposal" {
		t.Errorf("heading text = %q", children[0].Children[0].Text)
	}
	if children[1].Type != TypeParagraph {
		t.Errorf("node 1 = %s, want paragraph", children[1].Type)
	}
	if got := children[1].Children[0].Text; got != "We will migrate your CRM. This covers data and workflows." {
		t.Errorf("paragraph text = %q", got)
	}
	if children[2].Tag != "h2" {
		t.Errorf("node 2 tag = %q, want h2", children[2].Tag)
	}
}

func TestBuildLists(t *testing.T) {
	md := "- first\n- second\n\n1. alpha\n2. beta\n\n- [x] done\n- [ ] pending"

	tree := NewBuilder().Build(md, nil)
	children := tree.Root.Children
	if len(children) != 3 {
		t.Fatalf("children = %v", nodeTypes(children))
	}

	if children[0].ListType != "bullet" || len(children[0].Children) != 2 {
		t.Errorf("bullet list = %+v", children[0])
	}
	if children[1].ListType != "number" || children[1].Start != 1 {
		t.Errorf("number list = %+v", children[1])
	}
	check := children[2]
	if check.ListType != "check" {
		t.Fatalf("check list = %+v", check)
	}
	if !check.Children[0].Checked || check.Children[1].Checked {
		t.Errorf("checked flags wrong: %+v", check.Children)
	}
}

func TestBuildTable(t *testing.T) {
	md := "| Role | Hours |\n|---|---|\n| Producer | 10 |\n| Specialist | 5 |"

	tree := NewBuilder().Build(md, nil)
	if len(tree.Root.Children) != 1 || tree.Root.Children[0].Type != TypeTable {
		t.Fatalf("children = %v", nodeTypes(tree.Root.Children))
	}

	table := tree.Root.Children[0]
	if len(table.Children) != 3 {
		t.Fatalf("rows = %d, want 3 (header + 2)", len(table.Children))
	}
	header := table.Children[0]
	if header.Children[0].HeaderState != 1 {
		t.Errorf("first row not marked header: %+v", header.Children[0])
	}
	if table.Children[1].Children[0].HeaderState != 0 {
		t.Errorf("body row marked header")
	}
}

func TestBuildBindsPlaceholdersToScopesInOrder(t *testing.T) {
	scopes := []pricing.ScopeBlock{
		{Name: "Phase 1", Roles: []pricing.RoleAllocation{{Role: "A", Hours: 1, Rate: 100}}},
		{Name: "Phase 2", Roles: []pricing.RoleAllocation{{Role: "B", Hours: 2, Rate: 100}}},
	}
	md := "## Phase 1\n\n" + constant.PricingTablePlaceholder + "\n\n## Phase 2\n\n" + constant.PricingTablePlaceholder

	tree := NewBuilder().Build(md, scopes)

	var tables []Node
	for _, n := range tree.Root.Children {
		if n.Type == TypePricingTable {
			tables = append(tables, n)
		}
	}
	if len(tables) != 2 {
		t.Fatalf("pricing tables = %d, want 2", len(tables))
	}
	if tables[0].Scope.Name != "Phase 1" || tables[1].Scope.Name != "Phase 2" {
		t.Errorf("scopes out of order: %q then %q", tables[0].Scope.Name, tables[1].Scope.Name)
	}
}

func TestBuildSurplusMarkerRendersEmptyTable(t *testing.T) {
	md := constant.PricingTablePlaceholder + "\n\n" + constant.PricingTablePlaceholder

	tree := NewBuilder().Build(md, []pricing.ScopeBlock{{Name: "Only"}})

	if len(tree.Root.Children) != 2 {
		t.Fatalf("children = %v", nodeTypes(tree.Root.Children))
	}
	if tree.Root.Children[0].Scope == nil || tree.Root.Children[0].Scope.Name != "Only" {
		t.Errorf("first marker unbound: %+v", tree.Root.Children[0])
	}
	if tree.Root.Children[1].Scope != nil {
		t.Errorf("surplus marker should be empty, got %+v", tree.Root.Children[1].Scope)
	}
}

func TestBuildSurplusScopesAppended(t *testing.T) {
	tree := NewBuilder().Build("Narrative only.", []pricing.ScopeBlock{{Name: "Tail"}})

	last := tree.Root.Children[len(tree.Root.Children)-1]
	if last.Type != TypePricingTable || last.Scope == nil || last.Scope.Name != "Tail" {
		t.Errorf("unbound scope not appended: %+v", last)
	}
}

func TestBuildInlineFormattingAndLinks(t *testing.T) {
	md := "See **bold** and [our site](https://example.com) plus `code`."

	tree := NewBuilder().Build(md, nil)
	para := tree.Root.Children[0]

	var link *Node
	var boldSeen, codeSeen bool
	for i := range para.Children {
		n := para.Children[i]
		switch n.Type {
		case TypeLink:
			link = &para.Children[i]
		case TypeText:
			if f, ok := n.Format.(int); ok {
				if f&FormatBold != 0 && n.Text == "bold" {
					boldSeen = true
				}
				if f&FormatCode != 0 && n.Text == "code" {
					codeSeen = true
				}
			}
		}
	}
	if !boldSeen || !codeSeen {
		t.Errorf("inline formats missing: %+v", para.Children)
	}
	if link == nil || link.URL != "https://example.com" {
		t.Fatalf("link missing: %+v", para.Children)
	}
	if link.Children[0].Text != "our site" {
		t.Errorf("link text = %q", link.Children[0].Text)
	}
}

func TestBuildNoEmptyTextNodes(t *testing.T) {
	md := "# Title\n\n   \n\nBody text."

	tree := NewBuilder().Build(md, nil)
	var walk func(n Node)
	walk = func(n Node) {
		if n.Type == TypeText && len(n.Text) > 0 && n.Text == "   " {
			t.Errorf("blank text node survived: %+v", n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(tree.Root)
}

func TestDetectTitle(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{"first heading", "# Acme CRM Rollout\n\nbody", "Acme CRM Rollout"},
		{"client line", "Intro\n\n**Client:** Acme Pty Ltd\n", "Acme Pty Ltd"},
		{"scope of work line", "Scope of Work: Website Rebuild\n", "Website Rebuild"},
		{"nothing", "plain narrative", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectTitle(tt.md); got != tt.want {
				t.Errorf("DetectTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
