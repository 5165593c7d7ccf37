// Package history produces the external financial history used as scoring
// input. The only implementation today fabricates plausible data with
// uniform sampling; it stands in for a real bank/telco aggregation feed and
// is hidden behind the Source interface so that swap never touches scoring.
package history

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"udhaar/models"
)

// Source is the capability the store depends on for external history.
type Source interface {
	// Transactions fabricates the user's recent transaction list. Records
	// are returned newest-first.
	Transactions(now time.Time) []models.Transaction
	// Summaries fabricates the telco and utility billing rollups.
	Summaries() (models.TelcoSummary, models.UtilitySummary)
}

var (
	billers          = []string{"LESCO", "SNGPL", "PTCL", "Jazz", "Ufone", "Zong"}
	utilityProviders = []string{"LESCO", "K-Electric", "IESCO"}
)

const transactionCount = 20

// Synthetic samples uniformly from fixed provider and amount ranges. Not
// safe for concurrent use; the store serializes calls.
type Synthetic struct {
	rnd *rand.Rand
}

// NewSynthetic returns a generator seeded from the given value. Tests pass a
// fixed seed for reproducible histories.
func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{rnd: rand.New(rand.NewSource(seed))}
}

func (s *Synthetic) Transactions(now time.Time) []models.Transaction {
	year := now.Year()
	out := make([]models.Transaction, 0, transactionCount)
	for i := 0; i < transactionCount; i++ {
		isUtility := s.rnd.Intn(2) == 0
		provider := billers[s.rnd.Intn(len(billers))]
		date := time.Date(year, time.Month(s.rnd.Intn(12)+1), s.rnd.Intn(28)+1, 0, 0, 0, 0, time.UTC)

		var desc string
		var amount int64
		category := models.CategoryTelco
		if isUtility {
			desc = fmt.Sprintf("%s Bill %s %d", provider, date.Month().String()[:3], year)
			amount = int64(s.rnd.Intn(15000) + 2000)
			category = models.CategoryUtility
		} else {
			desc = fmt.Sprintf("%s Mobile Load / Bundle", provider)
			amount = int64(s.rnd.Intn(1000) + 100)
		}
		out = append(out, models.Transaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Type:        models.TxnDebit,
			Category:    category,
			Status:      models.TxnPaid,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (s *Synthetic) Summaries() (models.TelcoSummary, models.UtilitySummary) {
	telco := models.TelcoSummary{
		AverageBill:  int64(s.rnd.Intn(3000) + 500),
		DataUsageGB:  s.rnd.Intn(50) + 10,
		TenureYears:  s.rnd.Intn(5) + 1,
		LatePayments: 0,
	}
	// 20% of applicants have 1-4 late telco payments
	if s.rnd.Float64() > 0.8 {
		telco.LatePayments = s.rnd.Intn(4) + 1
	}

	utility := models.UtilitySummary{
		AverageBill:  int64(s.rnd.Intn(15000) + 2000),
		Provider:     utilityProviders[s.rnd.Intn(len(utilityProviders))],
		LatePayments: 0,
	}
	// 10% have 1-2 late utility payments
	if s.rnd.Float64() > 0.9 {
		utility.LatePayments = s.rnd.Intn(2) + 1
	}
	return telco, utility
}
