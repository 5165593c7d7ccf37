package docscan

import "strings"

// snippet returns a shortened version of text (ASCII only) for logging.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// normalizeText collapses whitespace and replaces newlines/tabs.
func normalizeText(t string) string {
	t = strings.ReplaceAll(t, "\n", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	return strings.Join(strings.Fields(t), " ")
}

// looksLikeNonSlip reports whether OCR text is most likely a logo or photo:
// a short burst of letters with no digits anywhere.
func looksLikeNonSlip(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(trimmed) >= 40 {
		return false
	}
	return !strings.ContainsAny(trimmed, "0123456789")
}

// onlyDigits extracts decimal digits from a string.
func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
