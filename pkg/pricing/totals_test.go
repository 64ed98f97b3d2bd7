package pricing

import "testing"

func TestClampDiscount(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-10, 0},
		{0, 0},
		{12.5, 12.5},
		{50, 50},
		{75, 50},
		{200, 50},
	}
	for _, tt := range tests {
		if got := ClampDiscount(tt.in); got != tt.want {
			t.Errorf("ClampDiscount(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRecalculateScope(t *testing.T) {
	scope := &ScopeBlock{
		Roles: []RoleAllocation{
			{Role: "Tech - Producer - Email", Hours: 10, Rate: 120, Cost: 999}, // cost lies
			{Role: "Tech - Specialist - Email", Hours: 5.5, Rate: 180},
		},
	}

	RecalculateScope(scope, 10, 10)

	if scope.Roles[0].Cost != 1200 {
		t.Errorf("row cost = %v, want recomputed 1200", scope.Roles[0].Cost)
	}
	if scope.Roles[1].Cost != 990 {
		t.Errorf("row cost = %v, want 990", scope.Roles[1].Cost)
	}
	if scope.Subtotal != 2190 {
		t.Errorf("Subtotal = %v, want 2190", scope.Subtotal)
	}
	if scope.DiscountAmount != 219 {
		t.Errorf("DiscountAmount = %v, want 219", scope.DiscountAmount)
	}
	if scope.SubtotalAfterDiscount != 1971 {
		t.Errorf("SubtotalAfterDiscount = %v, want 1971", scope.SubtotalAfterDiscount)
	}
	if scope.GSTAmount != 197.10 {
		t.Errorf("GSTAmount = %v, want 197.10", scope.GSTAmount)
	}
	if scope.Total != 2168.10 {
		t.Errorf("Total = %v, want 2168.10", scope.Total)
	}
	if scope.Total != scope.SubtotalAfterDiscount+scope.GSTAmount {
		t.Errorf("total invariant broken: %v != %v + %v", scope.Total, scope.SubtotalAfterDiscount, scope.GSTAmount)
	}
}

func TestRecalculateScopeNegativeHoursZeroed(t *testing.T) {
	scope := &ScopeBlock{
		Roles: []RoleAllocation{{Role: "Tech - Producer - Admin", Hours: -4, Rate: 120}},
	}
	RecalculateScope(scope, 0, 10)
	if scope.Roles[0].Hours != 0 || scope.Subtotal != 0 || scope.Total != 0 {
		t.Errorf("negative hours leaked into totals: %+v", scope)
	}
}

func TestRateCardResolve(t *testing.T) {
	card := DefaultRateCard()
	rows := []RoleAllocation{
		{Role: "Tech - Integrations", Hours: 10, Rate: 999}, // assistant rate ignored
		{Role: "  Tech - Producer - Email  ", Hours: 4, Rate: 120},
		{Role: "Quantum Blockchain Evangelist", Hours: 40, Rate: 500},
	}

	valid, rejected := card.Resolve(rows)

	if len(valid) != 2 {
		t.Fatalf("valid = %d, want 2", len(valid))
	}
	if valid[0].Rate != 170 || valid[0].Cost != 1700 {
		t.Errorf("official rate not applied: %+v", valid[0])
	}
	if valid[1].Role != "Tech - Producer - Email" {
		t.Errorf("name not trimmed to official: %q", valid[1].Role)
	}
	if len(rejected) != 1 {
		t.Fatalf("rejected = %d, want 1", len(rejected))
	}
}
