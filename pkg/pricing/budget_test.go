package pricing

import "testing"

func TestExtractTurnBudget(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantBudget   float64
		wantHasB     bool
		wantDiscount float64
		wantHasD     bool
	}{
		{
			name:       "budget keyword",
			text:       "Our budget is $25,000 for this project",
			wantBudget: 25000, wantHasB: true,
		},
		{
			name:       "investment keyword",
			text:       "We can make an investment: 12000.50",
			wantBudget: 12000.50, wantHasB: true,
		},
		{
			name:       "bare dollar amount",
			text:       "Keep it under $8,500 please",
			wantBudget: 8500, wantHasB: true,
		},
		{
			name:         "discount before percent",
			text:         "Please apply discount: 15%",
			wantDiscount: 15, wantHasD: true,
		},
		{
			name:         "percent before discount",
			text:         "Can we get 12.5% discount on the total?",
			wantDiscount: 12.5, wantHasD: true,
		},
		{
			name:         "off phrasing",
			text:         "give us 20% off",
			wantDiscount: 20, wantHasD: true,
		},
		{
			name:         "budget and discount together",
			text:         "Budget $30,000 with a 10% discount",
			wantBudget:   30000,
			wantHasB:     true,
			wantDiscount: 10,
			wantHasD:     true,
		},
		{
			name: "nothing stated",
			text: "Please draft a scope of work for a CRM migration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTurnBudget(tt.text)
			if got.HasBudget != tt.wantHasB || got.Budget != tt.wantBudget {
				t.Errorf("budget = (%v, %v), want (%v, %v)", got.Budget, got.HasBudget, tt.wantBudget, tt.wantHasB)
			}
			if got.HasDiscount != tt.wantHasD || got.Discount != tt.wantDiscount {
				t.Errorf("discount = (%v, %v), want (%v, %v)", got.Discount, got.HasDiscount, tt.wantDiscount, tt.wantHasD)
			}
		})
	}
}

func TestTurnBudgetOverridesAssistantDiscount(t *testing.T) {
	doc := &MultiScopeDocument{
		Discount: 25, // assistant proposed
		Scopes: []ScopeBlock{{
			Name:  "Phase 1",
			Roles: []RoleAllocation{{Role: "Tech - Producer - Email", Hours: 10, Rate: 120}},
		}},
	}

	tb := ExtractTurnBudget("Budget is $2,000 and apply 10% discount")
	tb.Apply(doc, 10)

	if !doc.UserDiscountApplied {
		t.Error("UserDiscountApplied not set")
	}
	if doc.Discount != 10 {
		t.Errorf("Discount = %v, want user value 10", doc.Discount)
	}
	scope := doc.Scopes[0]
	// 1200 - 10% = 1080, + 10% GST = 1188
	if scope.DiscountAmount != 120 || scope.Total != 1188 {
		t.Errorf("scope totals = %+v", scope)
	}
	if doc.BudgetCheck == nil {
		t.Fatal("BudgetCheck missing")
	}
	if !doc.BudgetCheck.WithinBudget {
		t.Errorf("WithinBudget = false, total %v vs budget %v", doc.BudgetCheck.CalculatedTotal, doc.BudgetCheck.UserBudget)
	}
}

func TestTurnBudgetWithoutStatementsLeavesDocument(t *testing.T) {
	doc := &MultiScopeDocument{
		Discount: 20,
		Scopes: []ScopeBlock{{
			Roles: []RoleAllocation{{Role: "Tech - Producer - Email", Hours: 10, Rate: 120}},
		}},
	}

	ExtractTurnBudget("no financial statements here").Apply(doc, 10)

	if doc.UserDiscountApplied {
		t.Error("UserDiscountApplied set without user discount")
	}
	if doc.Discount != 20 {
		t.Errorf("assistant discount changed to %v", doc.Discount)
	}
}
