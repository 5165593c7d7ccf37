package docscan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var centsRE = regexp.MustCompile(`[.,]\d{2}$`)

// ParseAmountFromMatch normalizes a matched substring into an integer amount
// (whole rupees). A trailing decimal part of exactly two digits is dropped
// (e.g. 85,000.00 -> 85000).
func ParseAmountFromMatch(found string) (int64, error) {
	foundTrim := strings.TrimSpace(found)
	if foundTrim == "" {
		return 0, fmt.Errorf("empty")
	}
	var digits string
	if centsRE.MatchString(foundTrim) {
		lastDot := strings.LastIndex(foundTrim, ".")
		lastComma := strings.LastIndex(foundTrim, ",")
		if lastComma > lastDot {
			digits = onlyDigits(foundTrim[:lastComma])
		} else if lastDot > lastComma {
			digits = onlyDigits(foundTrim[:lastDot])
		} else {
			digits = onlyDigits(foundTrim)
		}
	} else {
		digits = onlyDigits(foundTrim)
	}
	if digits == "" {
		return 0, fmt.Errorf("no digits extracted from %q", found)
	}
	amt, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", digits, err)
	}
	if amt < 0 {
		amt = -amt
	}
	return amt, nil
}
