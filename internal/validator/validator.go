// Package validator compares the AI-extracted fields of a T1 return and a
// Notice of Assessment for mutual consistency.
package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/fraudlens/tax-forensics-api/internal/models"
	"github.com/shopspring/decimal"
)

// amountTolerance is the currency-rounding slack allowed between two
// amounts that should match: one cent.
var amountTolerance = decimal.NewFromFloat(0.01)

const (
	similarityPass = 0.90
	similarityWarn = 0.70
)

// Validator runs the fixed battery of field-level comparison rules.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Compare runs every rule and derives the overall risk from the worst
// status present: any fail is high, warnings only is medium, all passes is
// low, and unknown when no rule could run. Rules whose fields are missing
// in either record are skipped and surfaced as flagged items, never
// silently dropped.
func (v *Validator) Compare(t1, noa *models.StructuredRecord) *models.ComparisonResult {
	start := time.Now()

	result := &models.ComparisonResult{
		Checks:       []models.ComparisonCheck{},
		FlaggedItems: []string{},
		T1Data:       t1,
		NOAData:      noa,
	}

	v.checkSIN(result, t1, noa)
	v.checkText(result, "name_match", "name", t1.FullName, noa.FullName)
	v.checkText(result, "address_match", "address", t1.Address, noa.Address)
	v.checkAmount(result, "refund_amount_match", "refund amount", t1.RefundAmount, noa.RefundAmount)
	v.checkIncomes(result, t1, noa)
	v.checkDateLogic(result, t1, noa)
	v.checkAccountant(result, t1, noa)

	result.OverallRisk = overallRisk(result.Checks)
	result.ProcessingTime = time.Since(start).Seconds()

	return result
}

func (v *Validator) checkSIN(result *models.ComparisonResult, t1, noa *models.StructuredRecord) {
	if t1.SIN == nil || noa.SIN == nil {
		skip(result, "SIN missing in one or both documents")
		return
	}

	t1SIN := digitsOnly(t1.SIN.Value)
	noaSIN := digitsOnly(noa.SIN.Value)

	// A placeholder like "N/A" carries no digits to compare; that is absent
	// data, not a mismatch.
	if t1SIN == "" || noaSIN == "" {
		skip(result, "SIN value is not numeric in one or both documents")
		return
	}

	if t1SIN == noaSIN {
		addCheck(result, models.ComparisonCheck{
			Check:      "sin_match",
			Status:     models.StatusPass,
			Confidence: 100,
			Details:    "SIN matches between T1 and NOA",
		})
		return
	}

	addCheck(result, models.ComparisonCheck{
		Check:      "sin_match",
		Status:     models.StatusFail,
		Confidence: 95,
		Details:    fmt.Sprintf("SIN mismatch: T1 has %q, NOA has %q", t1.SIN.Value, noa.SIN.Value),
	})
}

func (v *Validator) checkText(result *models.ComparisonResult, name, label string, a, b *models.FieldValue) {
	if a == nil || b == nil {
		skip(result, fmt.Sprintf("%s missing in one or both documents", label))
		return
	}

	sim := similarity(normalizeText(a.Value), normalizeText(b.Value))
	confidence := int(sim * 100)

	switch {
	case sim >= similarityPass:
		addCheck(result, models.ComparisonCheck{
			Check:      name,
			Status:     models.StatusPass,
			Confidence: confidence,
			Details:    fmt.Sprintf("%s is consistent between documents", label),
		})
	case sim >= similarityWarn:
		addCheck(result, models.ComparisonCheck{
			Check:      name,
			Status:     models.StatusWarning,
			Confidence: confidence,
			Details:    fmt.Sprintf("%s differs slightly: T1 has %q, NOA has %q", label, a.Value, b.Value),
		})
	default:
		addCheck(result, models.ComparisonCheck{
			Check:      name,
			Status:     models.StatusFail,
			Confidence: 80,
			Details:    fmt.Sprintf("%s mismatch: T1 has %q, NOA has %q", label, a.Value, b.Value),
		})
	}
}

func (v *Validator) checkAmount(result *models.ComparisonResult, name, label string, a, b *models.FieldValue) {
	if a == nil || b == nil {
		skip(result, fmt.Sprintf("%s missing in one or both documents", label))
		return
	}

	amountA, errA := parseAmount(a.Value)
	amountB, errB := parseAmount(b.Value)
	if errA != nil || errB != nil {
		skip(result, fmt.Sprintf("%s could not be parsed as an amount", label))
		return
	}

	if amountA.Sub(amountB).Abs().LessThanOrEqual(amountTolerance) {
		addCheck(result, models.ComparisonCheck{
			Check:      name,
			Status:     models.StatusPass,
			Confidence: 100,
			Details:    fmt.Sprintf("%s matches within rounding tolerance", label),
		})
		return
	}

	addCheck(result, models.ComparisonCheck{
		Check:      name,
		Status:     models.StatusFail,
		Confidence: 95,
		Details:    fmt.Sprintf("%s mismatch: T1 has %s, NOA has %s", label, amountA.StringFixed(2), amountB.StringFixed(2)),
	})
}

func (v *Validator) checkIncomes(result *models.ComparisonResult, t1, noa *models.StructuredRecord) {
	pairs := []struct {
		name  string
		label string
		a, b  *models.FieldValue
	}{
		{"total_income_match", "total income", t1.TotalIncome, noa.TotalIncome},
		{"net_income_match", "net income", t1.NetIncome, noa.NetIncome},
		{"taxable_income_match", "taxable income", t1.TaxableIncome, noa.TaxableIncome},
	}

	ran := false
	for _, pair := range pairs {
		// Only field pairs present in both records are comparable; a field
		// absent on one side is not evidence of tampering.
		if pair.a == nil || pair.b == nil {
			continue
		}
		ran = true
		v.checkAmount(result, pair.name, pair.label, pair.a, pair.b)
	}

	if !ran {
		skip(result, "no income figures present in both documents")
	}
}

func (v *Validator) checkDateLogic(result *models.ComparisonResult, t1, noa *models.StructuredRecord) {
	if t1.FilingDate == nil || noa.AssessmentDate == nil {
		skip(result, "filing or assessment date missing; date logic not verified")
		return
	}

	filed, okFiled := parseDate(t1.FilingDate.Value)
	assessed, okAssessed := parseDate(noa.AssessmentDate.Value)
	if !okFiled || !okAssessed {
		skip(result, "filing or assessment date could not be parsed")
		return
	}

	// An assessment cannot predate the return it assesses.
	if assessed.Before(filed) {
		addCheck(result, models.ComparisonCheck{
			Check:      "date_logic",
			Status:     models.StatusFail,
			Confidence: 90,
			Details: fmt.Sprintf("NOA assessment date %s precedes T1 filing date %s",
				assessed.Format("2006-01-02"), filed.Format("2006-01-02")),
		})
		return
	}

	addCheck(result, models.ComparisonCheck{
		Check:      "date_logic",
		Status:     models.StatusPass,
		Confidence: 90,
		Details:    "assessment date follows filing date",
	})
}

func (v *Validator) checkAccountant(result *models.ComparisonResult, t1, noa *models.StructuredRecord) {
	t1Has := t1.AccountantName != nil || t1.AccountantID != nil
	noaHas := noa.AccountantName != nil || noa.AccountantID != nil

	switch {
	case !t1Has && !noaHas:
		skip(result, "no accountant information declared in either document")
	case t1Has != noaHas:
		addCheck(result, models.ComparisonCheck{
			Check:      "accountant_info",
			Status:     models.StatusWarning,
			Confidence: 60,
			Details:    "accountant information declared in only one document",
		})
	default:
		if t1.AccountantName != nil && noa.AccountantName != nil {
			sim := similarity(normalizeText(t1.AccountantName.Value), normalizeText(noa.AccountantName.Value))
			if sim < similarityWarn {
				addCheck(result, models.ComparisonCheck{
					Check:      "accountant_info",
					Status:     models.StatusWarning,
					Confidence: int(sim * 100),
					Details: fmt.Sprintf("accountant differs: T1 has %q, NOA has %q",
						t1.AccountantName.Value, noa.AccountantName.Value),
				})
				return
			}
		}
		addCheck(result, models.ComparisonCheck{
			Check:      "accountant_info",
			Status:     models.StatusPass,
			Confidence: 85,
			Details:    "accountant information is consistent",
		})
	}
}

func addCheck(result *models.ComparisonResult, check models.ComparisonCheck) {
	result.Checks = append(result.Checks, check)
	if check.Status == models.StatusFail || check.Status == models.StatusWarning {
		result.FlaggedItems = append(result.FlaggedItems, fmt.Sprintf("[%s] %s", check.Check, check.Details))
	}
}

// skip records a rule that could not run because of missing data. Skipped
// rules appear as flagged items, not as failed checks.
func skip(result *models.ComparisonResult, reason string) {
	result.FlaggedItems = append(result.FlaggedItems, "missing data: "+reason)
}

func overallRisk(checks []models.ComparisonCheck) models.ComparisonRisk {
	if len(checks) == 0 {
		return models.ComparisonUnknown
	}

	risk := models.ComparisonLow
	for _, check := range checks {
		switch check.Status {
		case models.StatusFail:
			return models.ComparisonHigh
		case models.StatusWarning:
			risk = models.ComparisonMedium
		}
	}
	return risk
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// similarity is a normalized Levenshtein ratio in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "()")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	return decimal.NewFromString(s)
}

var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02/01/2006",
	"2006/01/02",
	"January 2 2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
