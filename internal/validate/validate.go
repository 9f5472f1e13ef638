package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePostal = regexp.MustCompile(`^[A-Za-z0-9 -]{3,10}$`)
	reCountry = regexp.MustCompile(`^[A-Z]{2}$`)
	reCond   = regexp.MustCompile(`^(NEW|LIKE_NEW|GOOD|FAIR|POOR)$`)
	rePhone  = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a simple resource identifier (offer/category/service-point ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// PostalCode accepts the loose international formats the carrier accepts.
func PostalCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePostal.MatchString(s)
}

// Country validates an ISO 3166-1 alpha-2 code.
func Country(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reCountry.MatchString(s)
}

// Condition validates the offer condition enum.
func Condition(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reCond.MatchString(s)
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && rePhone.MatchString(s)
}

// Qty parses a quantity. Values below 1 mean "remove" and are returned
// as-is so the caller can decide; abusive values are clamped.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 1
	}
	if n > 50 {
		return 50
	}
	return n
}

// Amount parses a positive decimal price.
func Amount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}

// Password enforces the login password policy.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 20 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
