package ai

import (
	"strings"
	"testing"

	"github.com/fraudlens/tax-forensics-api/internal/models"
)

const sampleExtraction = `{
  "sin": {"value": "123-456-789", "raw": "SIN: 123 456 789"},
  "full_name": {"value": "Jane Taxpayer", "raw": "JANE TAXPAYER"},
  "refund_amount": {"value": "1250.00", "raw": "$1,250.00"},
  "address": null
}`

func TestParseRecordBareJSON(t *testing.T) {
	record, err := ParseRecord(sampleExtraction, models.DocTypeT1)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if record.Kind != models.DocTypeT1 {
		t.Errorf("kind = %s, want %s", record.Kind, models.DocTypeT1)
	}
	if record.SIN == nil || record.SIN.Value != "123-456-789" {
		t.Errorf("sin = %+v", record.SIN)
	}
	if record.SIN.Raw != "SIN: 123 456 789" {
		t.Errorf("sin raw = %q", record.SIN.Raw)
	}
	if record.Address != nil {
		t.Errorf("null field must stay nil, got %+v", record.Address)
	}
}

func TestParseRecordMarkdownFenced(t *testing.T) {
	// Models routinely wrap their output in a code block despite the prompt.
	fenced := "```json\n" + sampleExtraction + "\n```"

	record, err := ParseRecord(fenced, models.DocTypeNOA)
	if err != nil {
		t.Fatalf("parse fenced: %v", err)
	}
	if record.Kind != models.DocTypeNOA {
		t.Errorf("kind = %s, want %s", record.Kind, models.DocTypeNOA)
	}
	if record.FullName == nil || record.FullName.Value != "Jane Taxpayer" {
		t.Errorf("full_name = %+v", record.FullName)
	}
}

func TestParseRecordInvalidContent(t *testing.T) {
	if _, err := ParseRecord("I could not read the document.", models.DocTypeT1); err == nil {
		t.Fatal("expected an error for non-JSON content")
	}
}

func TestBuildPromptIncludesDocumentText(t *testing.T) {
	prompt := buildPrompt("Line 15000 Total income 85,000.00", models.DocTypeT1)

	if !strings.Contains(prompt, "Line 15000 Total income 85,000.00") {
		t.Error("prompt must embed the document text")
	}
	if !strings.Contains(prompt, "T1 Income Tax Return") {
		t.Error("prompt must name the document kind")
	}
	if !strings.Contains(prompt, "filing_date") {
		t.Error("T1 prompt must request the filing date")
	}

	noaPrompt := buildPrompt("Notice of Assessment", models.DocTypeNOA)
	if !strings.Contains(noaPrompt, "identification_number") {
		t.Error("NOA prompt must request the identification number")
	}
}
