package forensics

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/fraudlens/tax-forensics-api/internal/models"
	"github.com/fraudlens/tax-forensics-api/internal/repository"
	"github.com/fraudlens/tax-forensics-api/internal/utils"
)

var (
	idNumberLabeled = regexp.MustCompile(`(?i)(?:notice|reference|identification)\s*(?:no\.?|number|#)?\s*:?\s*([A-Z0-9][A-Z0-9-]{5,})`)
	idNumberBare    = regexp.MustCompile(`\b\d{9,15}\b`)
	sinPattern      = regexp.MustCompile(`\b(\d{3})[- ]?(\d{3})[- ]?(\d{3})\b`)
	dateIssuedLabel = regexp.MustCompile(`(?i)date issued\s*:?\s*([A-Za-z]+\s+\d{1,2},?\s+\d{4}|\d{4}-\d{2}-\d{2})`)
)

// DuplicateDetector checks a NOA's identification number against the
// forensic store. Reuse of the same notice number across separate uploads
// is a strong fraud signal.
type DuplicateDetector struct {
	store  repository.Store
	logger *utils.Logger
}

func NewDuplicateDetector(store repository.Store, logger *utils.Logger) *DuplicateDetector {
	return &DuplicateDetector{store: store, logger: logger}
}

// Check extracts the identification number from the document and performs
// the atomic check-and-insert. A store failure is returned to the caller,
// never absorbed, because duplicate-detection correctness depends on it.
func (d *DuplicateDetector) Check(ctx context.Context, doc *models.Document) (models.CheckResult, error) {
	text := doc.Text()

	idNumber := extractIdentificationNumber(text)
	if idNumber == "" {
		return models.NotApplicable("no identification number found"), nil
	}

	record := models.ForensicRecord{
		IdentificationNumber: idNumber,
		SINLast4:             extractSINLast4(text),
		DateIssued:           extractDateIssued(text),
		FileName:             doc.FileName,
	}

	check, err := d.store.CheckAndRecord(ctx, record)
	if err != nil {
		return models.CheckResult{}, utils.NewStorageError("duplicate check failed", err)
	}

	result := models.CheckResult{
		Applicable: true,
		Details: map[string]any{
			"identification_number": idNumber,
			"is_duplicate":          check.IsDuplicate,
		},
	}

	if !check.IsDuplicate {
		return result, nil
	}

	d.logger.Warn("duplicate identification number detected",
		"identification_number", idNumber,
		"original_file", check.OriginalRecord.FileName,
		"duplicate_file", doc.FileName)

	result.RiskScore = 85
	result.Flags = []string{"DUPLICATE_ID"}
	result.Issues = []models.Issue{{
		Description: fmt.Sprintf("identification number %s was first seen in %q", idNumber, check.OriginalRecord.FileName),
		Value: map[string]any{
			"original_file_name": check.OriginalRecord.FileName,
			"first_uploaded":     check.OriginalRecord.UploadedTimestamp,
		},
	}}

	return result, nil
}

// extractIdentificationNumber pulls the NOA notice number out of the
// document text, preferring an explicitly labeled value over a bare run of
// digits.
func extractIdentificationNumber(text string) string {
	if m := idNumberLabeled.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		// Labels like "Notice of Assessment" match the label pattern with a
		// word, not a number; require at least one digit.
		if strings.ContainsAny(candidate, "0123456789") {
			return candidate
		}
	}
	return idNumberBare.FindString(text)
}

func extractSINLast4(text string) string {
	m := sinPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	digits := m[1] + m[2] + m[3]
	return digits[len(digits)-4:]
}

func extractDateIssued(text string) string {
	if m := dateIssuedLabel.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
