package scoring

import (
	"testing"

	"udhaar/models"
)

func TestComputeHighIncomeCleanHistory(t *testing.T) {
	// 600 base + 100 income + 30 telco + 20 tenure + 50 utility = 800
	telco := models.TelcoSummary{LatePayments: 0, TenureYears: 4}
	util := models.UtilitySummary{LatePayments: 0}
	score, risk := Compute(100001, telco, util, 0)
	if score != 800 {
		t.Fatalf("expected 800 got %d", score)
	}
	if risk != RiskLow {
		t.Fatalf("expected Low got %s", risk)
	}
}

func TestComputeLowIncomeLatePayers(t *testing.T) {
	// 600 + 20 - 20 (telco 2 late) + 0 (tenure <= 3) - 20 (utility 1 late) - 20 (dependents) = 560
	telco := models.TelcoSummary{LatePayments: 2, TenureYears: 1}
	util := models.UtilitySummary{LatePayments: 1}
	score, risk := Compute(30000, telco, util, 5)
	if score != 560 {
		t.Fatalf("expected 560 got %d", score)
	}
	if risk != RiskHigh {
		t.Fatalf("expected High got %s", risk)
	}
}

func TestComputeIncomeBandBoundaries(t *testing.T) {
	telco := models.TelcoSummary{}
	util := models.UtilitySummary{}
	// exactly 100000 falls in the middle band, exactly 50000 in the low band
	mid, _ := Compute(100000, telco, util, 0)
	low, _ := Compute(50000, telco, util, 0)
	if mid-low != 30 {
		t.Fatalf("expected 50 vs 20 income bonus, got scores mid=%d low=%d", mid, low)
	}
}

func TestComputeAlwaysInBounds(t *testing.T) {
	incomes := []int64{0, 10000, 50000, 50001, 100000, 100001, 10000000}
	for _, inc := range incomes {
		for late := 0; late < 30; late++ {
			telco := models.TelcoSummary{LatePayments: late, TenureYears: late % 6}
			util := models.UtilitySummary{LatePayments: late}
			for _, deps := range []int{0, 3, 4, 12} {
				score, risk := Compute(inc, telco, util, deps)
				if score < MinScore || score > MaxScore {
					t.Fatalf("score %d out of bounds for income=%d late=%d deps=%d", score, inc, late, deps)
				}
				if risk != RiskLevelFor(score) {
					t.Fatalf("risk %s inconsistent with score %d", risk, score)
				}
			}
		}
	}
}

func TestRiskLevelBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{850, RiskLow},
		{750, RiskLow},
		{749, RiskMedium},
		{650, RiskMedium},
		{649, RiskHigh},
		{300, RiskHigh},
	}
	for _, c := range cases {
		if got := RiskLevelFor(c.score); got != c.want {
			t.Fatalf("RiskLevelFor(%d) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	telco := models.TelcoSummary{LatePayments: 1, TenureYears: 5}
	util := models.UtilitySummary{LatePayments: 2}
	s1, r1 := Compute(72000, telco, util, 2)
	s2, r2 := Compute(72000, telco, util, 2)
	if s1 != s2 || r1 != r2 {
		t.Fatalf("same inputs gave different results: %d/%s vs %d/%s", s1, r1, s2, r2)
	}
}
