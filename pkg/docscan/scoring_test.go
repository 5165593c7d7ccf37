package docscan

import "testing"

func TestBestAmountNetSalaryPriority(t *testing.T) {
	// larger bare number loses to an explicit Net Salary line
	matches := []string{"250,000", "Net Salary Rs 85,000"}
	amt, raw, ok := BestAmountFromMatches(matches)
	if !ok {
		t.Fatalf("no amount chosen")
	}
	if amt != 85000 {
		t.Fatalf("expected 85000 (net salary) got %d raw=%s", amt, raw)
	}
}

func TestBestAmountTieGoesToLarger(t *testing.T) {
	matches := []string{"Rs 40,000", "Rs 85,000"}
	amt, _, ok := BestAmountFromMatches(matches)
	if !ok || amt != 85000 {
		t.Fatalf("expected 85000 got %d ok=%v", amt, ok)
	}
}

func TestBestAmountNoCandidates(t *testing.T) {
	if _, _, ok := BestAmountFromMatches([]string{"", "abc"}); ok {
		t.Fatalf("expected no candidate")
	}
}
