package lookup

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizePhoneNumber converts a formatted phone number to E.164.
// Ten-digit numbers without a country code are assumed to be US.
func NormalizePhoneNumber(number string) (string, error) {
	var digits strings.Builder
	hasPlus := strings.HasPrefix(strings.TrimSpace(number), "+")
	for _, r := range number {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	cleaned := digits.String()
	switch {
	case cleaned == "":
		return "", fmt.Errorf("no digits in %q", number)
	case hasPlus:
		return "+" + cleaned, nil
	case len(cleaned) == 10:
		return "+1" + cleaned, nil
	case len(cleaned) == 11 && strings.HasPrefix(cleaned, "1"):
		return "+" + cleaned, nil
	default:
		return "+" + cleaned, nil
	}
}
