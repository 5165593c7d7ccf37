// Package docscan recovers a monthly income figure from uploaded
// verification documents (salary slips, bank statements) using Tesseract
// OCR plus a stack of heuristics tuned for PKR payslips. Results carry a
// rough confidence so callers can decide whether the figure is worth
// surfacing next to the applicant's declared income.
package docscan

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// ExtractIncomeFromImage performs light preprocessing + Tesseract OCR and
// attempts to extract the net salary amount in whole rupees. Returns
// (amount, confidence, raw match). ErrNotASlip when the image carries no
// figures at all; ErrNoIncome when nothing plausible is found.
func ExtractIncomeFromImage(path string) (int64, float64, string, error) {
	matches, text, nonSlip, err := FindAllMatches(path)
	if err != nil {
		return 0, 0, "", err
	}
	if len(matches) == 0 {
		// second pass: binarized image with a digit whitelist picks up
		// low-contrast scans the grayscale pass misses
		if extra, err2 := digitsPass(path); err2 == nil {
			for _, m := range extra {
				if isPlausibleSalary(m) {
					matches = append(matches, m)
				}
			}
		}
	}
	if len(matches) == 0 {
		if nonSlip {
			return 0, 0, "", ErrNotASlip
		}
		return 0, 0, "", ErrNoIncome
	}
	amt, raw, ok := BestAmountFromMatches(matches)
	if !ok {
		return 0, 0, "", ErrNoIncome
	}
	// Confidence proxy based on match length vs OCR text size, boosted when
	// the match carries explicit currency or salary context.
	conf := float64(len(raw)) / float64(len(text)+1)
	if conf > 1 {
		conf = 1
	}
	low := strings.ToLower(raw)
	if strings.Contains(low, "rs") || strings.Contains(low, "pkr") || strings.Contains(low, "salary") || strings.Contains(low, "net") {
		if conf < 0.85 {
			conf = 0.85
		}
	}
	log.Printf("docscan: %s candidates=%v chosen_raw=%q chosen_amt=%d conf=%.2f", path, matches, raw, amt, conf)
	return amt, conf, raw, nil
}

var slipPatterns = []string{
	`(?i)(?:net|gross|total|basic)\s*(?:salary|pay|payable)?[:\s]*(?:Rs\.?|PKR)?\s*([0-9]{1,3}(?:[.,][0-9]{3})+(?:[.,][0-9]{2})?|[0-9]{4,9})`,
	`(?i)(?:Rs\.?|PKR)\s*([0-9]{1,3}(?:[.,][0-9]{3})+(?:[.,][0-9]{2})?|[0-9]{4,9})`,
	`([0-9]{1,3}(?:[.,][0-9]{3})+)`,
	`([0-9]{5,})`,
}

// FindAllMatches OCRs the document and returns all salary-like substrings
// in the order found, plus the normalized OCR text. The boolean is true
// when the image looks like a logo or photo with no figures at all, so
// callers can surface a clearer message than "no income found".
func FindAllMatches(path string) ([]string, string, bool, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, "", false, fmt.Errorf("open image: %w", err)
	}
	prepared := prepareForOCR(img)
	tmpFile, err := os.CreateTemp("", "docscan-*.png")
	tmp := path
	if err == nil {
		tmp = tmpFile.Name()
		_ = tmpFile.Close()
		if err := imaging.Save(prepared, tmp); err != nil {
			tmp = path
		}
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	client.SetImage(tmp)
	text, err := client.Text()
	if tmp != path {
		_ = os.Remove(tmp)
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("ocr error: %w", err)
	}
	text = normalizeText(text)
	log.Printf("docscan RAW %s snippet=%q", path, snippet(text, 180))

	isLikelyNonSlip := looksLikeNonSlip(text)

	var out []string
	seen := map[string]struct{}{}
	for _, p := range slipPatterns {
		re := regexp.MustCompile(p)
		ms := re.FindAllStringSubmatch(text, -1)
		for _, m := range ms {
			if len(m) < 2 {
				continue
			}
			s := strings.TrimSpace(m[1])
			if s == "" {
				continue
			}
			// Keep the label/currency context on the candidate when the full
			// match carried one, so scoring can prioritize "Net Salary" lines
			// over stray ids that happen to be numeric.
			full := strings.ToLower(m[0])
			lowS := strings.ToLower(s)
			if hasSalaryContext(full) && !hasSalaryContext(lowS) {
				s = strings.TrimSpace(m[0])
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			if !isPlausibleSalary(s) {
				continue
			}
			out = append(out, s)
		}
	}
	return out, text, isLikelyNonSlip, nil
}

func hasSalaryContext(low string) bool {
	for _, kw := range []string{"rs", "pkr", "net", "gross", "salary", "pay"} {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}

// digitsPass re-runs OCR on a binarized copy with a digit whitelist.
func digitsPass(path string) ([]string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	bin := binarize(imaging.Grayscale(img), 150)
	tmpFile, err := os.CreateTemp("", "docscan-bin-*.png")
	if err != nil {
		return nil, err
	}
	tmp := tmpFile.Name()
	_ = tmpFile.Close()
	defer os.Remove(tmp)
	if err := imaging.Save(bin, tmp); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	_ = client.SetWhitelist("0123456789RsPKRrspk.,:()/- ")
	client.SetImage(tmp)
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("ocr error: %w", err)
	}
	text = normalizeText(text)
	re := regexp.MustCompile(`[0-9]{1,3}(?:[.,][0-9]{3})+|[0-9]{4,9}`)
	return re.FindAllString(text, -1), nil
}
