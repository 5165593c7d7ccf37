package docscan

import "strings"

// isPlausibleSalary applies lightweight heuristics to decide whether a
// matched numeric substring likely represents a monthly salary rather than
// a phone number, CNIC fragment or employee id. Conservative on purpose:
// prefer strings with currency hints or grouping separators, reject very
// long digit-only strings and anything starting with 0 (phone numbers and
// CNICs both do here).
func isPlausibleSalary(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	low := strings.ToLower(s)
	if strings.Contains(low, "rs") || strings.Contains(low, "pkr") {
		return true
	}
	if strings.Contains(s, ".") || strings.Contains(s, ",") {
		d := onlyDigits(s)
		return len(d) >= 4 && d[0] != '0'
	}
	d := onlyDigits(s)
	if d == "" || d[0] == '0' {
		return false
	}
	// monthly salaries are realistically 4-7 digits of PKR
	if len(d) < 4 || len(d) > 7 {
		return false
	}
	// mid-size irregular numbers (e.g. 250903) are usually ids, not pay
	if len(d) >= 6 && !(strings.HasSuffix(d, "000") || strings.HasSuffix(d, "500")) {
		return false
	}
	return true
}
