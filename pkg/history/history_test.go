package history

import (
	"strings"
	"testing"
	"time"

	"udhaar/models"
)

func TestTransactionsShapeAndRanges(t *testing.T) {
	src := NewSynthetic(1)
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	txns := src.Transactions(now)
	if len(txns) != 20 {
		t.Fatalf("expected 20 transactions got %d", len(txns))
	}
	for i, tx := range txns {
		if tx.Date.Year() != 2026 {
			t.Fatalf("txn %d dated %v outside current year", i, tx.Date)
		}
		if tx.Type != models.TxnDebit || tx.Status != models.TxnPaid {
			t.Fatalf("txn %d has type=%s status=%s", i, tx.Type, tx.Status)
		}
		switch tx.Category {
		case models.CategoryUtility:
			if tx.Amount < 2000 || tx.Amount >= 17000 {
				t.Fatalf("utility amount %d out of range", tx.Amount)
			}
			if !strings.Contains(tx.Description, "Bill") {
				t.Fatalf("utility description %q missing Bill", tx.Description)
			}
		case models.CategoryTelco:
			if tx.Amount < 100 || tx.Amount >= 1100 {
				t.Fatalf("telco amount %d out of range", tx.Amount)
			}
		default:
			t.Fatalf("unexpected category %s", tx.Category)
		}
	}
}

func TestTransactionsNewestFirst(t *testing.T) {
	src := NewSynthetic(7)
	txns := src.Transactions(time.Now())
	for i := 1; i < len(txns); i++ {
		if txns[i].Date.After(txns[i-1].Date) {
			t.Fatalf("transactions not sorted newest-first at index %d", i)
		}
	}
}

func TestSummariesRanges(t *testing.T) {
	// run many draws so both late-payment branches are exercised
	src := NewSynthetic(42)
	for i := 0; i < 500; i++ {
		telco, util := src.Summaries()
		if telco.AverageBill < 500 || telco.AverageBill >= 3500 {
			t.Fatalf("telco average bill %d out of range", telco.AverageBill)
		}
		if telco.LatePayments < 0 || telco.LatePayments >= 5 {
			t.Fatalf("telco late payments %d out of range", telco.LatePayments)
		}
		if telco.TenureYears < 1 || telco.TenureYears > 5 {
			t.Fatalf("telco tenure %d out of range", telco.TenureYears)
		}
		if telco.DataUsageGB < 10 || telco.DataUsageGB >= 60 {
			t.Fatalf("telco data usage %d out of range", telco.DataUsageGB)
		}
		if util.AverageBill < 2000 || util.AverageBill >= 17000 {
			t.Fatalf("utility average bill %d out of range", util.AverageBill)
		}
		if util.LatePayments < 0 || util.LatePayments >= 3 {
			t.Fatalf("utility late payments %d out of range", util.LatePayments)
		}
		found := false
		for _, p := range utilityProviders {
			if util.Provider == p {
				found = true
			}
		}
		if !found {
			t.Fatalf("unknown utility provider %q", util.Provider)
		}
	}
}

func TestSyntheticSeedReproducible(t *testing.T) {
	a := NewSynthetic(99)
	b := NewSynthetic(99)
	ta, _ := a.Summaries()
	tb, _ := b.Summaries()
	if ta != tb {
		t.Fatalf("same seed produced different telco summaries: %+v vs %+v", ta, tb)
	}
}
