package pricing

import "time"

// RoleAllocation is one row of a pricing table. Cost is always derived from
// Hours and Rate, never taken from the assistant.
type RoleAllocation struct {
	Role        string  `json:"role"`
	Description string  `json:"description,omitempty"`
	Hours       float64 `json:"hours"`
	Rate        float64 `json:"rate"`
	Cost        float64 `json:"cost"`
}

// BudgetCheck compares the user's stated budget against the computed total.
type BudgetCheck struct {
	UserBudget      float64 `json:"user_budget"`
	CalculatedTotal float64 `json:"calculated_total"`
	WithinBudget    bool    `json:"within_budget"`
}

// ScopeBlock is one phase/scope of a proposal with its own pricing table.
// The financial fields are recomputed from the role rows on every pass, the
// assistant's arithmetic is never trusted.
type ScopeBlock struct {
	Name                  string           `json:"scope_name"`
	Description           string           `json:"scope_description,omitempty"`
	Deliverables          []string         `json:"deliverables,omitempty"`
	Assumptions           []string         `json:"assumptions,omitempty"`
	Roles                 []RoleAllocation `json:"role_allocation"`
	Subtotal              float64          `json:"scope_subtotal"`
	DiscountPercent       float64          `json:"discount_percent"`
	DiscountAmount        float64          `json:"discount_amount"`
	SubtotalAfterDiscount float64          `json:"subtotal_after_discount"`
	GSTPercent            float64          `json:"gst_percent"`
	GSTAmount             float64          `json:"gst_amount"`
	Total                 float64          `json:"scope_total"`
}

// Encoding identifies which wire format the pricing data arrived in.
type Encoding string

const (
	EncodingNone       Encoding = ""
	EncodingFenced     Encoding = "fenced"     // ```json blocks with scope shapes
	EncodingLegacy     Encoding = "legacy"     // bare {"suggestedRoles": [...]} object
	EncodingStructured Encoding = "structured" // architect payload with scopeItems
)

// MultiScopeDocument is the normalized pricing payload for one assistant
// turn. Discount is the document level percentage; UserDiscountApplied marks
// that it came from the user's own text rather than the assistant.
type MultiScopeDocument struct {
	Scopes              []ScopeBlock `json:"scopes"`
	Discount            float64      `json:"discount"`
	UserDiscountApplied bool         `json:"user_discount_applied,omitempty"`
	Encoding            Encoding     `json:"encoding,omitempty"`
	BudgetCheck         *BudgetCheck `json:"budget_check,omitempty"`
	ExtractedAt         time.Time    `json:"extracted_at"`
}

// RoleCount returns the total number of allocation rows across all scopes.
func (d *MultiScopeDocument) RoleCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, s := range d.Scopes {
		n += len(s.Roles)
	}
	return n
}
