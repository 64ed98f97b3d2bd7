package pricing

import (
	"regexp"
	"strings"

	"sow-studio-be/internal/constant"
)

var (
	hyphenLeftPattern  = regexp.MustCompile(`\s*-`)
	hyphenRightPattern = regexp.MustCompile(`-\s*`)
	whitespacePattern  = regexp.MustCompile(`\s+`)

	accountPattern = regexp.MustCompile(`account`)
	rankPattern    = regexp.MustCompile(`(management|manager|director)`)
)

// normalizeRoleName lowercases, collapses spacing around hyphens and folds
// runs of whitespace so naming variants compare equal.
func normalizeRoleName(s string) string {
	s = strings.ToLower(s)
	s = hyphenLeftPattern.ReplaceAllString(s, "-")
	s = hyphenRightPattern.ReplaceAllString(s, "-")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// isAccountManagementVariant reports whether a role name belongs to the
// account governance family, whatever the assistant called it.
func isAccountManagementVariant(roleName string) bool {
	n := normalizeRoleName(roleName)
	return accountPattern.MatchString(n) && rankPattern.MatchString(n)
}

// NormalizeGovernanceRoles collapses every account-management variant into
// exactly one canonical row. Hours from the variants are summed, the first
// non-empty description survives, and the canonical rate always comes from
// the card. Running it twice yields the same rows.
func NormalizeGovernanceRoles(rows []RoleAllocation, card *RateCard) []RoleAllocation {
	if len(rows) == 0 {
		return rows
	}

	amRate := constant.CanonicalAccountRoleRate
	if official, ok := card.Lookup(constant.CanonicalAccountRole); ok {
		amRate = official.HourlyRate
	}

	var variantHours float64
	var variantDescription string
	kept := make([]RoleAllocation, 0, len(rows))
	for _, row := range rows {
		if !isAccountManagementVariant(row.Role) {
			kept = append(kept, row)
			continue
		}
		if row.Hours > 0 {
			variantHours += row.Hours
		}
		if variantDescription == "" && strings.TrimSpace(row.Description) != "" {
			variantDescription = row.Description
		}
	}

	finalHours := variantHours
	if finalHours <= 0 {
		finalHours = constant.CanonicalAccountRoleHours
	}
	finalDescription := variantDescription
	if finalDescription == "" {
		finalDescription = constant.CanonicalAccountRoleDescription
	}

	canonicalKey := normalizeRoleName(constant.CanonicalAccountRole)
	for i := range kept {
		if normalizeRoleName(kept[i].Role) != canonicalKey {
			continue
		}
		// A canonical row already exists, fold the variant hours into it.
		kept[i].Role = constant.CanonicalAccountRole
		kept[i].Hours += finalHours
		kept[i].Rate = amRate
		kept[i].Cost = roundCents(kept[i].Hours * amRate)
		if strings.TrimSpace(kept[i].Description) == "" {
			kept[i].Description = finalDescription
		}
		return kept
	}

	return append(kept, RoleAllocation{
		Role:        constant.CanonicalAccountRole,
		Description: finalDescription,
		Hours:       finalHours,
		Rate:        amRate,
		Cost:        roundCents(finalHours * amRate),
	})
}
