package main

import (
	"testing"

	"udhaar/models"
)

func TestDecideLoanStatusBoundary(t *testing.T) {
	if got := decideLoanStatus(500000); got != models.LoanApproved {
		t.Fatalf("amount at the limit should auto-approve, got %s", got)
	}
	if got := decideLoanStatus(500001); got != models.LoanPending {
		t.Fatalf("amount above the limit should be pending, got %s", got)
	}
	if got := decideLoanStatus(1); got != models.LoanApproved {
		t.Fatalf("small amount should auto-approve, got %s", got)
	}
}

func TestFormatPKR(t *testing.T) {
	cases := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		600000:   "600,000",
		12345678: "12,345,678",
	}
	for in, want := range cases {
		if got := formatPKR(in); got != want {
			t.Fatalf("formatPKR(%d) = %s, want %s", in, got, want)
		}
	}
}

func TestMismatchThreshold(t *testing.T) {
	if mismatch(80000, 85000) {
		t.Fatalf("6%% difference should not flag a mismatch")
	}
	if !mismatch(40000, 85000) {
		t.Fatalf("half the declared income should flag a mismatch")
	}
}
