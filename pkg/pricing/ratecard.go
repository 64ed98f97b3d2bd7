package pricing

import (
	"fmt"
	"strings"

	"sow-studio-be/internal/constant"
)

// RateCardRole is one official role with its hourly rate.
type RateCardRole struct {
	Name       string  `json:"roleName"`
	HourlyRate float64 `json:"hourlyRate"`
}

// RateCard is the catalog of billable roles. Rates from here always replace
// whatever the assistant proposed.
type RateCard struct {
	ordered []RateCardRole
	byName  map[string]RateCardRole
}

func NewRateCard(roles []RateCardRole) *RateCard {
	card := &RateCard{byName: make(map[string]RateCardRole, len(roles))}
	for _, r := range roles {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		if _, exists := card.byName[name]; exists {
			continue
		}
		r.Name = name
		card.ordered = append(card.ordered, r)
		card.byName[name] = r
	}
	return card
}

// DefaultRateCard returns the official agency rate card.
func DefaultRateCard() *RateCard {
	return NewRateCard([]RateCardRole{
		{Name: "Account Management - Head Of", HourlyRate: 365},
		{Name: "Account Management - Director", HourlyRate: 295},
		{Name: "Account Management - Senior Account Manager", HourlyRate: 210},
		{Name: "Account Management - Account Manager", HourlyRate: 180},
		{Name: constant.CanonicalAccountRole, HourlyRate: constant.CanonicalAccountRoleRate},
		{Name: "Account Management - Account Coordinator", HourlyRate: 120},
		{Name: "Project Management - Head Of", HourlyRate: 295},
		{Name: "Project Management - Senior Project Manager", HourlyRate: 210},
		{Name: "Project Management - Project Manager", HourlyRate: 180},
		{Name: "Tech - Head Of - Customer Success", HourlyRate: 365},
		{Name: "Tech - Head Of - Program Strategy", HourlyRate: 365},
		{Name: "Tech - Head Of - Senior Project Management", HourlyRate: 365},
		{Name: "Tech - Head Of - Systems", HourlyRate: 365},
		{Name: "Tech - Delivery - Project Coordination", HourlyRate: 180},
		{Name: "Tech - Integrations", HourlyRate: 170},
		{Name: "Tech - Integrations (Senior)", HourlyRate: 295},
		{Name: "Tech - Keyword Research", HourlyRate: 120},
		{Name: "Tech - Landing Page - (Offshore)", HourlyRate: 120},
		{Name: "Tech - Landing Page - (Onshore)", HourlyRate: 210},
		{Name: "Tech - Website Optimisation", HourlyRate: 120},
		{Name: "Tech - Producer - Admin", HourlyRate: 120},
		{Name: "Tech - Producer - Campaign Orchestration", HourlyRate: 120},
		{Name: "Tech - Producer - Copywriting", HourlyRate: 120},
		{Name: "Tech - Producer - Deployment", HourlyRate: 120},
		{Name: "Tech - Producer - Design", HourlyRate: 120},
		{Name: "Tech - Producer - Development", HourlyRate: 120},
		{Name: "Tech - Producer - Documentation", HourlyRate: 120},
		{Name: "Tech - Producer - Email", HourlyRate: 120},
		{Name: "Tech - Producer - Integration", HourlyRate: 120},
		{Name: "Tech - Producer - Landing Page", HourlyRate: 120},
		{Name: "Tech - Producer - Lead Management", HourlyRate: 120},
		{Name: "Tech - Producer - Reporting", HourlyRate: 120},
		{Name: "Tech - Producer - Testing", HourlyRate: 120},
		{Name: "Tech - Producer - Training", HourlyRate: 120},
		{Name: "Tech - Producer - Workflow", HourlyRate: 120},
		{Name: "Tech - Specialist - Admin", HourlyRate: 180},
		{Name: "Tech - Specialist - Campaign Orchestration", HourlyRate: 180},
		{Name: "Tech - Specialist - Complex Workflow", HourlyRate: 180},
		{Name: "Tech - Specialist - Database Management", HourlyRate: 180},
		{Name: "Tech - Specialist - Email", HourlyRate: 180},
		{Name: "Tech - Specialist - Integration", HourlyRate: 180},
		{Name: "Tech - Specialist - Integration (Snr)", HourlyRate: 190},
		{Name: "Tech - Specialist - Lead Management", HourlyRate: 180},
		{Name: "Tech - Specialist - Reporting", HourlyRate: 180},
		{Name: "Tech - Specialist - Workflow", HourlyRate: 180},
		{Name: "Tech - Sr. Architect - App Development", HourlyRate: 365},
		{Name: "Tech - Sr. Architect - Consultation", HourlyRate: 365},
		{Name: "Tech - Sr. Architect - Data Migration", HourlyRate: 365},
		{Name: "Tech - Sr. Architect - Integration Strategy", HourlyRate: 365},
		{Name: "Tech - Sr. Consultant - Advisory & Consultation", HourlyRate: 295},
		{Name: "Tech - Sr. Consultant - Analytics", HourlyRate: 295},
		{Name: "Tech - Sr. Consultant - Campaign Strategy", HourlyRate: 295},
		{Name: "Tech - Sr. Consultant - CRM Strategy", HourlyRate: 295},
		{Name: "Tech - Sr. Consultant - Solution Design", HourlyRate: 295},
		{Name: "Tech - Sr. Consultant - Technical, Strategy", HourlyRate: 295},
	})
}

// Lookup finds a role by exact name match after trimming whitespace.
func (c *RateCard) Lookup(name string) (RateCardRole, bool) {
	r, ok := c.byName[strings.TrimSpace(name)]
	return r, ok
}

// Roles returns the catalog in its original order.
func (c *RateCard) Roles() []RateCardRole {
	out := make([]RateCardRole, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Resolve validates allocation rows against the catalog. Known roles get the
// official rate and a recomputed cost. Unknown roles are dropped and reported,
// never invented or re-rated.
func (c *RateCard) Resolve(rows []RoleAllocation) (valid []RoleAllocation, rejected []error) {
	for _, row := range rows {
		official, ok := c.Lookup(row.Role)
		if !ok {
			rejected = append(rejected, fmt.Errorf("%w: %q", ErrUnknownRole, row.Role))
			continue
		}
		row.Role = official.Name
		row.Rate = official.HourlyRate
		if row.Hours < 0 {
			row.Hours = 0
		}
		row.Cost = roundCents(row.Hours * row.Rate)
		valid = append(valid, row)
	}
	return valid, rejected
}
