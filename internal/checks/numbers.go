package checks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fraudlens/tax-forensics-api/internal/models"
)

var decimalToken = regexp.MustCompile(`^\d{1,3}(?:,\d{3})*\.\d+$|^\d+\.\d+$`)

// NumberCheck looks for inconsistent decimal formatting among amounts.
// Genuine tax documents print currency uniformly with two decimal places;
// a retyped figure often loses or gains a digit.
type NumberCheck struct{}

func (NumberCheck) Name() string { return "numbers" }

func (NumberCheck) Run(doc *models.Document) models.CheckResult {
	if doc.WordCount() == 0 {
		return models.NotApplicable("no extractable words")
	}

	result := models.CheckResult{Applicable: true, Details: map[string]any{}}

	twoPlace := 0
	var offending []string

	for _, page := range doc.Pages {
		for _, word := range page.Words {
			token := normalizeNumericToken(word.Text)
			if token == "" || !decimalToken.MatchString(token) {
				continue
			}

			places := decimalPlaces(token)
			if places == 2 {
				twoPlace++
				continue
			}

			offending = append(offending, token)
			result.Issues = append(result.Issues, models.Issue{
				Page:        page.Number,
				Description: fmt.Sprintf("amount %q has %d decimal places", token, places),
				Value:       map[string]any{"token": token, "decimal_places": places},
			})
		}
	}

	total := twoPlace + len(offending)
	result.Details["currency_tokens"] = total
	result.Details["nonstandard_tokens"] = len(offending)

	// A document with only consistent formatting, either all-currency or
	// no currency at all, is clean.
	if twoPlace > 0 && len(offending) > 0 {
		fraction := float64(len(offending)) / float64(total)
		result.RiskScore = clampScore(int(fraction * 150))
		result.Flags = append(result.Flags, "INCONSISTENT_DECIMALS")
	} else {
		result.Issues = nil
	}

	return result
}

// normalizeNumericToken strips currency decoration so "$1,234.50" and
// "(1,234.50)" compare as plain numbers. Returns "" for non-numeric text.
func normalizeNumericToken(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "()")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	if s == "" || !strings.ContainsAny(s, "0123456789") {
		return ""
	}
	return s
}

func decimalPlaces(token string) int {
	idx := strings.LastIndex(token, ".")
	if idx < 0 {
		return 0
	}
	return len(token) - idx - 1
}
