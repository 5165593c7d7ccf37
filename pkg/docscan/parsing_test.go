package docscan

import "testing"

func TestParseAmountStripDecimals(t *testing.T) {
	amt, err := ParseAmountFromMatch("85,000.00")
	if err != nil || amt != 85000 {
		t.Fatalf("expected 85000 got %d err=%v", amt, err)
	}
	amt2, err2 := ParseAmountFromMatch("120.000,00")
	if err2 != nil || amt2 != 120000 {
		t.Fatalf("expected 120000 got %d err=%v", amt2, err2)
	}
}

func TestParseAmountPlainAndLabelled(t *testing.T) {
	amt, err := ParseAmountFromMatch("Net Salary: Rs 85,000")
	if err != nil || amt != 85000 {
		t.Fatalf("expected 85000 got %d err=%v", amt, err)
	}
	if _, err := ParseAmountFromMatch("   "); err == nil {
		t.Fatalf("expected error for blank match")
	}
}
