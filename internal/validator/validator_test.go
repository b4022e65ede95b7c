package validator

import (
	"strings"
	"testing"

	"github.com/fraudlens/tax-forensics-api/internal/models"
)

func fv(value string) *models.FieldValue {
	return &models.FieldValue{Value: value, Raw: value}
}

func baseRecord(kind models.DocType) *models.StructuredRecord {
	return &models.StructuredRecord{
		Kind:         kind,
		SIN:          fv("123-456-789"),
		FullName:     fv("Jane Taxpayer"),
		Address:      fv("12 Birch Street, Ottawa ON"),
		RefundAmount: fv("$1,250.00"),
		TotalIncome:  fv("85,000.00"),
		NetIncome:    fv("78,500.00"),
	}
}

func matchedPair() (*models.StructuredRecord, *models.StructuredRecord) {
	t1 := baseRecord(models.DocTypeT1)
	t1.FilingDate = fv("2025-04-15")
	noa := baseRecord(models.DocTypeNOA)
	noa.AssessmentDate = fv("2025-05-02")
	return t1, noa
}

func findCheck(t *testing.T, result *models.ComparisonResult, name string) models.ComparisonCheck {
	t.Helper()
	for _, check := range result.Checks {
		if check.Check == name {
			return check
		}
	}
	t.Fatalf("check %q not present in result: %+v", name, result.Checks)
	return models.ComparisonCheck{}
}

func flaggedContains(result *models.ComparisonResult, substr string) bool {
	for _, item := range result.FlaggedItems {
		if strings.Contains(item, substr) {
			return true
		}
	}
	return false
}

func TestCompareConsistentDocuments(t *testing.T) {
	t1, noa := matchedPair()

	result := New().Compare(t1, noa)

	if result.OverallRisk != models.ComparisonLow {
		t.Errorf("expected low risk for consistent documents, got %s", result.OverallRisk)
	}
	for _, name := range []string{"sin_match", "name_match", "address_match", "refund_amount_match", "total_income_match", "net_income_match", "date_logic"} {
		if check := findCheck(t, result, name); check.Status != models.StatusPass {
			t.Errorf("%s: expected pass, got %s (%s)", name, check.Status, check.Details)
		}
	}
	if result.T1Data != t1 || result.NOAData != noa {
		t.Errorf("extracted records must be echoed back in the result")
	}
}

func TestCompareSINMismatch(t *testing.T) {
	t1, noa := matchedPair()
	noa.SIN = fv("123-456-780")

	result := New().Compare(t1, noa)

	check := findCheck(t, result, "sin_match")
	if check.Status != models.StatusFail {
		t.Fatalf("expected SIN fail, got %s", check.Status)
	}
	if !flaggedContains(result, "sin_match") {
		t.Errorf("failed SIN check must appear in flagged_items: %v", result.FlaggedItems)
	}
	if result.OverallRisk != models.ComparisonHigh {
		t.Errorf("any failed check must drive overall risk to high, got %s", result.OverallRisk)
	}
}

func TestCompareSINFormattingIgnored(t *testing.T) {
	t1, noa := matchedPair()
	t1.SIN = fv("123 456 789")
	noa.SIN = fv("123456789")

	result := New().Compare(t1, noa)

	if check := findCheck(t, result, "sin_match"); check.Status != models.StatusPass {
		t.Errorf("separator differences must not fail the SIN check: %s", check.Details)
	}
}

func TestCompareDigitlessSINIsSkipped(t *testing.T) {
	t1, noa := matchedPair()
	t1.SIN = fv("not provided")
	noa.SIN = fv("N/A")

	result := New().Compare(t1, noa)

	for _, check := range result.Checks {
		if check.Check == "sin_match" {
			t.Errorf("digitless SIN values must not produce a check result: %+v", check)
		}
	}
	if !flaggedContains(result, "missing data: SIN value is not numeric") {
		t.Errorf("skipped SIN rule must be surfaced: %v", result.FlaggedItems)
	}
	if result.OverallRisk == models.ComparisonHigh {
		t.Errorf("digitless SINs must not fail the comparison, got %s", result.OverallRisk)
	}
}

func TestCompareRefundTolerance(t *testing.T) {
	t1, noa := matchedPair()
	t1.RefundAmount = fv("$1,250.00")
	noa.RefundAmount = fv("1250.01")

	result := New().Compare(t1, noa)
	if check := findCheck(t, result, "refund_amount_match"); check.Status != models.StatusPass {
		t.Errorf("one cent of drift must pass: %s", check.Details)
	}

	noa.RefundAmount = fv("1250.02")
	result = New().Compare(t1, noa)
	if check := findCheck(t, result, "refund_amount_match"); check.Status != models.StatusFail {
		t.Errorf("two cents of drift must fail: %s", check.Details)
	}
}

func TestCompareDateLogicViolation(t *testing.T) {
	t1, noa := matchedPair()
	t1.FilingDate = fv("April 15, 2025")
	noa.AssessmentDate = fv("2025-03-01")

	result := New().Compare(t1, noa)

	check := findCheck(t, result, "date_logic")
	if check.Status != models.StatusFail {
		t.Errorf("assessment before filing must fail, got %s (%s)", check.Status, check.Details)
	}
}

func TestCompareMissingFieldsAreSkippedNotFailed(t *testing.T) {
	t1, noa := matchedPair()
	t1.SIN = nil
	noa.RefundAmount = nil

	result := New().Compare(t1, noa)

	for _, check := range result.Checks {
		if check.Check == "sin_match" || check.Check == "refund_amount_match" {
			t.Errorf("rule with missing input must not produce a check result: %+v", check)
		}
	}
	if !flaggedContains(result, "missing data: SIN missing") {
		t.Errorf("skipped SIN rule must be surfaced: %v", result.FlaggedItems)
	}
	if !flaggedContains(result, "missing data: refund amount missing") {
		t.Errorf("skipped refund rule must be surfaced: %v", result.FlaggedItems)
	}
	if result.OverallRisk != models.ComparisonLow {
		t.Errorf("skips alone must not raise the risk, got %s", result.OverallRisk)
	}
}

func TestCompareNameWarningGivesMediumRisk(t *testing.T) {
	t1, noa := matchedPair()
	// Similar but not identical: above the warn cutoff, below the pass cutoff.
	t1.FullName = fv("Jane A. Taxpayer")
	noa.FullName = fv("Jane Taxpayer")

	result := New().Compare(t1, noa)

	check := findCheck(t, result, "name_match")
	if check.Status != models.StatusWarning {
		t.Fatalf("expected warning for near-match name, got %s (%s)", check.Status, check.Details)
	}
	if result.OverallRisk != models.ComparisonMedium {
		t.Errorf("warnings without failures must yield medium risk, got %s", result.OverallRisk)
	}
}

func TestCompareNoComparableFieldsIsUnknown(t *testing.T) {
	result := New().Compare(&models.StructuredRecord{}, &models.StructuredRecord{})

	if len(result.Checks) != 0 {
		t.Fatalf("expected no checks to run, got %+v", result.Checks)
	}
	if result.OverallRisk != models.ComparisonUnknown {
		t.Errorf("expected unknown risk when nothing is comparable, got %s", result.OverallRisk)
	}
	if len(result.FlaggedItems) == 0 {
		t.Errorf("every skipped rule must leave a flagged item")
	}
}

func TestCompareAccountantOneSided(t *testing.T) {
	t1, noa := matchedPair()
	t1.AccountantName = fv("Nguyen & Partners LLP")

	result := New().Compare(t1, noa)

	check := findCheck(t, result, "accountant_info")
	if check.Status != models.StatusWarning || check.Confidence != 60 {
		t.Errorf("one-sided accountant info must warn at confidence 60, got %+v", check)
	}
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abcd", "abcd", 1},
		{"abcd", "abce", 0.75},
		{"abcd", "", 0},
	}
	for _, tc := range cases {
		if got := similarity(tc.a, tc.b); got != tc.want {
			t.Errorf("similarity(%q, %q) = %f, want %f", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	for input, want := range map[string]string{
		"$1,250.00": "1250.00",
		"(500.25)":  "500.25",
		" 42 ":      "42.00",
	} {
		amount, err := parseAmount(input)
		if err != nil {
			t.Errorf("parseAmount(%q): %v", input, err)
			continue
		}
		if amount.StringFixed(2) != want {
			t.Errorf("parseAmount(%q) = %s, want %s", input, amount.StringFixed(2), want)
		}
	}
}
