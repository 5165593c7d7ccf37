package docscan

import "strings"

// BestAmountFromMatches selects the most salary-like candidate using
// scoring priorities: currency markers and net/gross salary context beat
// bare digit runs, grouping separators beat plain numbers, ties go to the
// larger amount.
func BestAmountFromMatches(matches []string) (int64, string, bool) {
	type cand struct {
		amt   int64
		raw   string
		score int
	}
	scoreFor := func(raw string) int {
		s := 0
		low := strings.ToLower(raw)
		if strings.Contains(low, "rs") || strings.Contains(low, "pkr") {
			s += 10
		}
		if strings.Contains(low, "net") {
			s += 8 // "Net Salary" / "Net Pay" lines are the figure we want
		}
		if strings.Contains(low, "gross") || strings.Contains(low, "salary") || strings.Contains(low, "pay") {
			s += 5
		}
		if strings.Contains(raw, ".") || strings.Contains(raw, ",") {
			s += 5
		}
		if strings.HasSuffix(raw, ",00") || strings.HasSuffix(raw, ".00") {
			s += 3
		}
		if len(onlyDigits(raw)) >= 5 {
			s += 1
		}
		return s
	}
	cands := []cand{}
	for _, m := range matches {
		amt, err := ParseAmountFromMatch(m)
		if err != nil || amt <= 0 {
			continue
		}
		cands = append(cands, cand{amt: amt, raw: m, score: scoreFor(m)})
	}
	if len(cands) == 0 {
		return 0, "", false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		replace := false
		if c.score > best.score {
			replace = true
		} else if c.score == best.score {
			if c.amt > best.amt {
				replace = true
			} else if c.amt == best.amt && len(c.raw) > len(best.raw) {
				replace = true
			}
		}
		if replace {
			best = c
		}
	}
	return best.amt, best.raw, true
}
