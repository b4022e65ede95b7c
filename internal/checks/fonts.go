package checks

import (
	"fmt"
	"sort"

	"github.com/fraudlens/tax-forensics-api/internal/models"
)

// minorityFontShare is the share of characters below which a font counts as
// a minority font. Legitimate tax documents are near-monotone in font; a
// sliver of a second font is a classic tamper signature.
const minorityFontShare = 0.05

// FontCheck tallies character counts per font and flags fonts that appear
// in only a small fraction of the document.
type FontCheck struct{}

func (FontCheck) Name() string { return "fonts" }

func (FontCheck) Run(doc *models.Document) models.CheckResult {
	counts := map[string]int{}
	total := 0

	for _, page := range doc.Pages {
		for _, word := range page.Words {
			n := len([]rune(word.Text))
			counts[word.Font] += n
			total += n
		}
	}

	if total == 0 {
		return models.NotApplicable("no extractable characters")
	}

	dominant := ""
	dominantCount := 0
	for font, n := range counts {
		if n > dominantCount {
			dominant, dominantCount = font, n
		}
	}

	result := models.CheckResult{
		Applicable: true,
		Details: map[string]any{
			"dominant_font": dominant,
			"font_count":    len(counts),
			"total_chars":   total,
		},
	}

	var minorityShare float64
	var minorityFonts []string
	for font, n := range counts {
		share := float64(n) / float64(total)
		if share > 0 && share < minorityFontShare+1e-9 {
			minorityFonts = append(minorityFonts, font)
			minorityShare += share
			result.Issues = append(result.Issues, models.Issue{
				Description: fmt.Sprintf("font %q covers only %.1f%% of characters", font, share*100),
				Value:       map[string]any{"font": font, "share": round2(share)},
			})
		}
	}
	sort.Strings(minorityFonts)

	if len(minorityFonts) > 0 {
		result.Flags = append(result.Flags, "MINORITY_FONTS")
		result.Details["minority_fonts"] = minorityFonts
		result.RiskScore = clampScore(20*len(minorityFonts) + int(minorityShare*400))
	}

	return result
}
