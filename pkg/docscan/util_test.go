package docscan

import "testing"

func TestLooksLikeNonSlip(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"ACME LOGO", true},
		{"company letterhead", true},
		{"", false},
		{"Net Salary Rs 85,000", false},
		{"ref 12345", false},
		{"a long paragraph of text without any numbers but clearly more than forty characters", false},
	}
	for _, c := range cases {
		if got := looksLikeNonSlip(c.text); got != c.want {
			t.Fatalf("looksLikeNonSlip(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestNormalizeTextCollapsesWhitespace(t *testing.T) {
	got := normalizeText("Net\tSalary\n  Rs   85,000")
	if got != "Net Salary Rs 85,000" {
		t.Fatalf("normalizeText: got %q", got)
	}
}
