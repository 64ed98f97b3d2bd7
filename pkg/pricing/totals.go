package pricing

import "math"

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ClampDiscount normalizes a discount percentage. Negative values become 0
// and anything above the cap is reduced to the cap the export backend
// enforces.
func ClampDiscount(pct float64) float64 {
	if pct < 0 || math.IsNaN(pct) {
		return 0
	}
	if pct > 50 {
		return 50
	}
	return pct
}

// RecalculateScope rederives every financial field of a scope from its role
// rows. Cost per row is hours times the rate, the subtotal is the row sum,
// and the total is the discounted subtotal plus GST. A discount amount that
// would exceed the subtotal zeroes the discount.
func RecalculateScope(scope *ScopeBlock, discountPct, gstPct float64) {
	subtotal := 0.0
	for i := range scope.Roles {
		if scope.Roles[i].Hours < 0 {
			scope.Roles[i].Hours = 0
		}
		scope.Roles[i].Cost = roundCents(scope.Roles[i].Hours * scope.Roles[i].Rate)
		subtotal += scope.Roles[i].Cost
	}
	subtotal = roundCents(subtotal)

	pct := ClampDiscount(discountPct)
	discountAmount := roundCents(subtotal * pct / 100)
	if discountAmount > subtotal {
		pct = 0
		discountAmount = 0
	}

	afterDiscount := roundCents(subtotal - discountAmount)
	gstAmount := roundCents(afterDiscount * gstPct / 100)

	scope.Subtotal = subtotal
	scope.DiscountPercent = pct
	scope.DiscountAmount = discountAmount
	scope.SubtotalAfterDiscount = afterDiscount
	scope.GSTPercent = gstPct
	scope.GSTAmount = gstAmount
	scope.Total = roundCents(afterDiscount + gstAmount)
}

// RecalculateDocument applies the document discount to every scope and
// refreshes the budget check when a user budget is present.
func RecalculateDocument(doc *MultiScopeDocument, gstPct float64) {
	total := 0.0
	for i := range doc.Scopes {
		pct := doc.Scopes[i].DiscountPercent
		if doc.UserDiscountApplied || doc.Discount > 0 {
			// Document level discount overrides whatever the block carried.
			pct = doc.Discount
		}
		RecalculateScope(&doc.Scopes[i], pct, gstPct)
		total += doc.Scopes[i].Total
	}
	if doc.BudgetCheck != nil {
		doc.BudgetCheck.CalculatedTotal = roundCents(total)
		doc.BudgetCheck.WithinBudget = doc.BudgetCheck.CalculatedTotal <= doc.BudgetCheck.UserBudget
	}
}

// DocumentTotal sums the scope totals.
func DocumentTotal(doc *MultiScopeDocument) float64 {
	total := 0.0
	for _, s := range doc.Scopes {
		total += s.Total
	}
	return roundCents(total)
}
