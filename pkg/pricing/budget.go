package pricing

import (
	"regexp"
	"strconv"
	"strings"
)

// TurnBudget carries the financial constraints stated in the user's own
// message. These always win over whatever the assistant proposed.
type TurnBudget struct {
	Budget      float64
	HasBudget   bool
	Discount    float64
	HasDiscount bool
}

// Budget phrasing: a keyword followed by an amount, or a bare dollar figure.
var budgetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)budget[:\s]*\$?([0-9,]+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`(?i)investment[:\s]*\$?([0-9,]+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`(?i)cost[:\s]*\$?([0-9,]+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`(?i)price[:\s]*\$?([0-9,]+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`(?i)total[:\s]*\$?([0-9,]+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`(?i)\$([0-9,]+(?:\.[0-9]{2})?)`),
}

// Discount phrasing in both orders: "discount 15%" and "15% discount".
var discountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)discount[:\s]*([0-9]+(?:\.[0-9]{1,2})?)%?`),
	regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]{1,2})?)%?\s*discount`),
	regexp.MustCompile(`(?i)off[:\s]*([0-9]+(?:\.[0-9]{1,2})?)%?`),
	regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]{1,2})?)%?\s*off`),
	regexp.MustCompile(`(?i)reduction[:\s]*([0-9]+(?:\.[0-9]{1,2})?)%?`),
}

// ExtractTurnBudget scans the user's request text for a stated budget and
// discount. Zero and negative figures are ignored.
func ExtractTurnBudget(userText string) TurnBudget {
	var tb TurnBudget

	for _, pattern := range budgetPatterns {
		m := pattern.FindStringSubmatch(userText)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err == nil && v > 0 {
			tb.Budget = v
			tb.HasBudget = true
			break
		}
	}

	for _, pattern := range discountPatterns {
		m := pattern.FindStringSubmatch(userText)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v > 0 {
			tb.Discount = v
			tb.HasDiscount = true
			break
		}
	}

	return tb
}

// Apply overrides the document's financials with the user's stated values
// and recomputes every scope. The override is recorded on the document so
// downstream consumers know the discount did not come from the assistant.
func (tb TurnBudget) Apply(doc *MultiScopeDocument, gstPercent float64) {
	if doc == nil {
		return
	}
	if tb.HasDiscount {
		doc.Discount = ClampDiscount(tb.Discount)
		doc.UserDiscountApplied = true
	}
	if tb.HasBudget {
		doc.BudgetCheck = &BudgetCheck{UserBudget: tb.Budget}
	}
	RecalculateDocument(doc, gstPercent)
}
