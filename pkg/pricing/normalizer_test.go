package pricing

import (
	"testing"

	"sow-studio-be/internal/constant"
)

func countAccountRows(rows []RoleAllocation) int {
	n := 0
	for _, r := range rows {
		if isAccountManagementVariant(r.Role) {
			n++
		}
	}
	return n
}

func TestNormalizeGovernanceRoles(t *testing.T) {
	card := DefaultRateCard()

	tests := []struct {
		name            string
		rows            []RoleAllocation
		wantHours       float64
		wantDescription string
		wantRowCount    int
	}{
		{
			name: "variants collapse and hours sum",
			rows: []RoleAllocation{
				{Role: "Account Manager", Hours: 6},
				{Role: "Account Management - Director", Hours: 4, Description: "oversight"},
				{Role: "Tech - Producer - Email", Hours: 8, Rate: 120},
			},
			wantHours:       10,
			wantDescription: "oversight",
			wantRowCount:    2,
		},
		{
			name: "zero variant hours fall back to default",
			rows: []RoleAllocation{
				{Role: "account   management -  manager", Hours: 0},
				{Role: "Tech - Producer - Design", Hours: 5, Rate: 120},
			},
			wantHours:       constant.CanonicalAccountRoleHours,
			wantDescription: constant.CanonicalAccountRoleDescription,
			wantRowCount:    2,
		},
		{
			name: "no variants still appends canonical",
			rows: []RoleAllocation{
				{Role: "Tech - Integrations", Hours: 20, Rate: 170},
			},
			wantHours:       constant.CanonicalAccountRoleHours,
			wantDescription: constant.CanonicalAccountRoleDescription,
			wantRowCount:    2,
		},
		{
			name: "negative hours ignored in sum",
			rows: []RoleAllocation{
				{Role: "Account Director", Hours: -5},
				{Role: "Senior Account Manager", Hours: 7},
			},
			wantHours:       7,
			wantDescription: constant.CanonicalAccountRoleDescription,
			wantRowCount:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeGovernanceRoles(tt.rows, card)

			if len(got) != tt.wantRowCount {
				t.Fatalf("row count = %d, want %d (%+v)", len(got), tt.wantRowCount, got)
			}
			if countAccountRows(got) != 1 {
				t.Fatalf("account rows = %d, want exactly 1", countAccountRows(got))
			}

			canonical := got[len(got)-1]
			if canonical.Role != constant.CanonicalAccountRole {
				t.Errorf("canonical role = %q", canonical.Role)
			}
			if canonical.Hours != tt.wantHours {
				t.Errorf("hours = %v, want %v", canonical.Hours, tt.wantHours)
			}
			if canonical.Rate != constant.CanonicalAccountRoleRate {
				t.Errorf("rate = %v, want %v", canonical.Rate, constant.CanonicalAccountRoleRate)
			}
			if canonical.Description != tt.wantDescription {
				t.Errorf("description = %q, want %q", canonical.Description, tt.wantDescription)
			}
		})
	}
}

func TestNormalizeGovernanceRolesIdempotent(t *testing.T) {
	card := DefaultRateCard()
	rows := []RoleAllocation{
		{Role: "Account Manager", Hours: 6},
		{Role: "Account Management Director", Hours: 3},
		{Role: "Tech - Producer - Admin", Hours: 10, Rate: 120},
	}

	first := NormalizeGovernanceRoles(rows, card)
	second := NormalizeGovernanceRoles(first, card)

	if len(first) != len(second) {
		t.Fatalf("row counts differ: %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("row %d changed on second pass: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestIsAccountManagementVariant(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"Account Manager", true},
		{"Account Management - Director", true},
		{"account management-senior account manager", true},
		{constant.CanonicalAccountRole, true},
		{"Accountant", false},
		{"Tech - Producer - Email", false},
		{"Project Management - Project Manager", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isAccountManagementVariant(tt.role); got != tt.want {
			t.Errorf("isAccountManagementVariant(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
