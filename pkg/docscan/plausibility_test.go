package docscan

import "testing"

func TestPlausibleSalaryRejectsIdentifiers(t *testing.T) {
	cases := map[string]bool{
		"Rs 85,000":       true,
		"85,000":          true,
		"85000":           true,
		"03001234567":     false, // phone number
		"1234512345671":   false, // CNIC digits
		"250903":          false, // irregular mid-size id
		"120":             false, // too short for a salary
		"":                false,
		"PKR 45000":       true,
		"Net Pay 150,000": true,
	}
	for in, want := range cases {
		if got := isPlausibleSalary(in); got != want {
			t.Fatalf("isPlausibleSalary(%q) = %v, want %v", in, got, want)
		}
	}
}
