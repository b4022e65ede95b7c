package checks

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/fraudlens/tax-forensics-api/internal/models"
)

var pageNumberPattern = regexp.MustCompile(`(?i)\bpage\s+(\d+)\s+of\s+(\d+)\b`)

// PageNumberCheck verifies the printed "Page X of Y" sequence on NOA
// documents: gaps, resets and total-count mismatches all indicate page
// substitution. Documents that never print page numbers cannot be penalized
// and report themselves inapplicable.
type PageNumberCheck struct{}

func (PageNumberCheck) Name() string { return "page_numbers" }

func (PageNumberCheck) Run(doc *models.Document) models.CheckResult {
	if doc.DocType != models.DocTypeNOA {
		return models.NotApplicable("page numbering check applies to NOA documents only")
	}

	type printed struct {
		page  int // physical page
		num   int // printed "page X"
		total int // printed "of Y"
	}

	var seen []printed
	for _, page := range doc.Pages {
		m := pageNumberPattern.FindStringSubmatch(page.Text())
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		total, _ := strconv.Atoi(m[2])
		seen = append(seen, printed{page: page.Number, num: num, total: total})
	}

	if len(seen) == 0 {
		return models.NotApplicable("no printed page numbering found")
	}

	result := models.CheckResult{
		Applicable: true,
		Details: map[string]any{
			"pages_with_numbering": len(seen),
			"declared_total":       seen[0].total,
		},
	}

	score := 0

	for i := 1; i < len(seen); i++ {
		if seen[i].total != seen[0].total {
			score += 40
			result.Flags = appendUnique(result.Flags, "TOTAL_MISMATCH")
			result.Issues = append(result.Issues, models.Issue{
				Page:        seen[i].page,
				Description: fmt.Sprintf("declared total changed from %d to %d", seen[0].total, seen[i].total),
			})
		}
		if seen[i].num != seen[i-1].num+1 {
			score += 35
			result.Flags = appendUnique(result.Flags, "SEQUENCE_GAP")
			result.Issues = append(result.Issues, models.Issue{
				Page:        seen[i].page,
				Description: fmt.Sprintf("printed page number jumped from %d to %d", seen[i-1].num, seen[i].num),
			})
		}
	}

	if len(seen) == seen[0].total && seen[0].total != len(doc.Pages) {
		score += 30
		result.Flags = appendUnique(result.Flags, "PAGE_COUNT_MISMATCH")
		result.Issues = append(result.Issues, models.Issue{
			Description: fmt.Sprintf("document has %d pages but declares %d", len(doc.Pages), seen[0].total),
		})
	}

	result.RiskScore = clampScore(score)
	return result
}

func appendUnique(flags []string, flag string) []string {
	for _, f := range flags {
		if f == flag {
			return flags
		}
	}
	return append(flags, flag)
}
