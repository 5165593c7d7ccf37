package docscan

import "errors"

// ErrNoIncome is returned when no plausible salary figure can be extracted.
var ErrNoIncome = errors.New("no income figure detected")

// ErrNotASlip is returned when the image carries no figures at all and is
// most likely a logo or photo rather than a payslip.
var ErrNotASlip = errors.New("image does not look like a payslip")
