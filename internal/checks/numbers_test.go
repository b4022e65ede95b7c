package checks

import (
	"testing"

	"github.com/fraudlens/tax-forensics-api/internal/models"
)

func docWithTokens(tokens ...string) *models.Document {
	words := make([]models.Word, len(tokens))
	for i, tok := range tokens {
		words[i] = models.Word{Text: tok}
	}
	return &models.Document{Pages: []models.Page{{Number: 1, Words: words}}}
}

func TestNumberCheckFlagsMixedDecimals(t *testing.T) {
	result := NumberCheck{}.Run(docWithTokens("$1,200.00", "345.50", "12.5"))

	if !result.Applicable {
		t.Fatalf("expected check to be applicable")
	}
	if result.RiskScore <= 0 {
		t.Errorf("expected positive risk score, got %d", result.RiskScore)
	}
	if !hasStringFlag(result.Flags, "INCONSISTENT_DECIMALS") {
		t.Errorf("expected INCONSISTENT_DECIMALS flag, got %v", result.Flags)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("expected one issue for the three-token mix, got %d", len(result.Issues))
	}
}

func TestNumberCheckUniformCurrencyIsClean(t *testing.T) {
	result := NumberCheck{}.Run(docWithTokens("100.00", "2,500.00", "$37.25"))

	if result.RiskScore != 0 {
		t.Errorf("expected risk score 0, got %d", result.RiskScore)
	}
	if len(result.Flags) != 0 {
		t.Errorf("expected no flags, got %v", result.Flags)
	}
}

func TestNumberCheckNoAmountsIsClean(t *testing.T) {
	result := NumberCheck{}.Run(docWithTokens("Notice", "of", "Assessment", "2024"))

	if !result.Applicable {
		t.Fatalf("expected check to be applicable")
	}
	if result.RiskScore != 0 {
		t.Errorf("expected risk score 0, got %d", result.RiskScore)
	}
}

func TestNumberCheckEmptyDocumentNotApplicable(t *testing.T) {
	result := NumberCheck{}.Run(&models.Document{Pages: []models.Page{{Number: 1}}})

	if result.Applicable {
		t.Errorf("expected check to be inapplicable for empty document")
	}
}
