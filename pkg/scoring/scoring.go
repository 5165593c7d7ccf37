// Package scoring computes a bounded credit score from a user's declared
// financials and retrieved billing history. The model is a deterministic
// additive one: same inputs always give the same score, so the engine has
// no failure modes and no side effects.
package scoring

import "udhaar/models"

// Score bounds and base value of the additive model.
const (
	MinScore  = 300
	MaxScore  = 850
	BaseScore = 600
)

// Risk tiers derived from the final score.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"

	lowThreshold    = 750
	mediumThreshold = 650
)

// Compute derives a credit score and risk tier from monthly income (PKR),
// billing summaries and dependent count. The result is always clamped to
// [MinScore, MaxScore].
func Compute(income int64, telco models.TelcoSummary, utility models.UtilitySummary, dependents int) (int, string) {
	score := BaseScore

	// Income band
	switch {
	case income > 100000:
		score += 100
	case income > 50000:
		score += 50
	default:
		score += 20
	}

	// Telco payment behaviour
	if telco.LatePayments == 0 {
		score += 30
	} else {
		score -= telco.LatePayments * 10
	}
	if telco.TenureYears > 3 {
		score += 20
	}

	// Utility payment behaviour
	if utility.LatePayments == 0 {
		score += 50
	} else {
		score -= utility.LatePayments * 20
	}

	// Many dependents on a low income
	if dependents > 3 && income < 50000 {
		score -= 20
	}

	score = clamp(score)
	return score, RiskLevelFor(score)
}

// RiskLevelFor maps a score to its coarse risk tier. Both thresholds are
// inclusive: 750 is Low, 650 is Medium.
func RiskLevelFor(score int) string {
	switch {
	case score >= lowThreshold:
		return RiskLow
	case score >= mediumThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
