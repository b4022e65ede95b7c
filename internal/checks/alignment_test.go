package checks

import (
	"testing"

	"github.com/fraudlens/tax-forensics-api/internal/models"
)

func TestAlignmentCheckCleanLine(t *testing.T) {
	doc := &models.Document{
		Pages: []models.Page{{
			Number: 1,
			Words: []models.Word{
				{Text: "Total", X: 72, Y: 700, Width: 30},
				{Text: "income", X: 106, Y: 700, Width: 40},
				{Text: "45,000.00", X: 150, Y: 700, Width: 55},
			},
		}},
	}

	result := AlignmentCheck{}.Run(doc)

	if !result.Applicable {
		t.Fatalf("expected check to be applicable")
	}
	if result.RiskScore != 0 {
		t.Errorf("expected risk score 0 for aligned text, got %d", result.RiskScore)
	}
}

func TestAlignmentCheckFlagsOffBaselineWord(t *testing.T) {
	doc := &models.Document{
		Pages: []models.Page{{
			Number: 1,
			Words: []models.Word{
				{Text: "Refund", X: 72, Y: 500, Width: 40},
				{Text: "amount", X: 116, Y: 500, Width: 45},
				{Text: "due", X: 165, Y: 500, Width: 22},
				// Pasted-in figure sitting 4pt off the baseline
				{Text: "9,999.00", X: 191, Y: 504, Width: 50},
			},
		}},
	}

	result := AlignmentCheck{}.Run(doc)

	if !result.Applicable {
		t.Fatalf("expected check to be applicable")
	}
	if result.RiskScore <= 0 {
		t.Errorf("expected positive risk score, got %d", result.RiskScore)
	}
	if len(result.Issues) == 0 {
		t.Fatalf("expected at least one issue")
	}
	if result.Issues[0].Page != 1 {
		t.Errorf("expected issue on page 1, got %d", result.Issues[0].Page)
	}
	if !hasStringFlag(result.Flags, "MISALIGNED_TEXT") {
		t.Errorf("expected MISALIGNED_TEXT flag, got %v", result.Flags)
	}
}

func TestAlignmentCheckEmptyDocumentNotApplicable(t *testing.T) {
	result := AlignmentCheck{}.Run(&models.Document{Pages: []models.Page{{Number: 1}}})

	if result.Applicable {
		t.Errorf("expected check to be inapplicable for empty document")
	}
}

func hasStringFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
