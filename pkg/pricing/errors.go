package pricing

import "errors"

var (
	// ErrNoPricingData means the response contained no usable role rows in
	// any supported encoding. Callers must fail closed and never fabricate
	// a table.
	ErrNoPricingData = errors.New("no usable pricing data in response")

	// ErrUnknownRole means a role name had no exact match in the rate card.
	ErrUnknownRole = errors.New("role not present in rate card")
)
