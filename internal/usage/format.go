package usage

import (
	"fmt"
	"strconv"
)

// FormatTokens abbreviates a token count for display: values of a
// million or more render as N.NM, a thousand or more as N.NK, and
// smaller values as the plain integer.
func FormatTokens(tokens int64) string {
	switch {
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000)
	case tokens >= 1_000:
		return fmt.Sprintf("%.1fK", float64(tokens)/1_000)
	default:
		return strconv.FormatInt(tokens, 10)
	}
}

// FormatPercent renders a percentage with one decimal place and a
// trailing percent sign.
func FormatPercent(percentage float64) string {
	return fmt.Sprintf("%.1f%%", percentage)
}
