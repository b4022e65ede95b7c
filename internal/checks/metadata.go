package checks

import (
	"fmt"
	"strings"
	"time"

	"github.com/fraudlens/tax-forensics-api/internal/models"
)

// modificationGrace is how far a ModDate may trail the CreationDate before
// the document counts as edited after issue. Generators routinely stamp
// both within seconds of each other.
const modificationGrace = 5 * time.Minute

// editingSoftware are producer/creator substrings of tools used to alter
// documents rather than generate them.
var editingSoftware = []string{
	"photoshop",
	"gimp",
	"canva",
	"ilovepdf",
	"sejda",
	"smallpdf",
	"pdfescape",
	"pdf-xchange",
	"foxit editor",
	"nitro",
}

// MetadataCheck inspects the embedded PDF metadata for signs the document
// was edited after generation. Raster uploads have no metadata dictionary
// and report themselves inapplicable.
type MetadataCheck struct{}

func (MetadataCheck) Name() string { return "metadata" }

func (MetadataCheck) Run(doc *models.Document) models.CheckResult {
	if doc.Meta == nil {
		return models.NotApplicable("no embedded metadata in raster input")
	}

	meta := doc.Meta
	result := models.CheckResult{
		Applicable: true,
		Details: map[string]any{
			"producer": meta.Producer,
			"creator":  meta.Creator,
		},
	}

	score := 0

	if meta.CreationDate != nil && meta.ModDate != nil {
		drift := meta.ModDate.Sub(*meta.CreationDate)
		if drift > modificationGrace {
			score += 35
			result.Flags = append(result.Flags, "MODIFIED_AFTER_CREATION")
			result.Issues = append(result.Issues, models.Issue{
				Description: fmt.Sprintf("document modified %s after creation", drift.Round(time.Second)),
				Value: map[string]any{
					"creation_date": meta.CreationDate.Format(time.RFC3339),
					"mod_date":      meta.ModDate.Format(time.RFC3339),
				},
			})
		}
	}

	if tool := matchEditingSoftware(meta.Producer, meta.Creator); tool != "" {
		score += 45
		result.Flags = append(result.Flags, "EDITING_SOFTWARE")
		result.Issues = append(result.Issues, models.Issue{
			Description: fmt.Sprintf("produced by editing software %q", tool),
			Value:       map[string]any{"tool": tool},
		})
	}

	if meta.Producer == "" && meta.CreationDate == nil {
		score += 20
		result.Flags = append(result.Flags, "MISSING_METADATA")
		result.Issues = append(result.Issues, models.Issue{
			Description: "expected metadata fields are absent",
		})
	}

	result.RiskScore = clampScore(score)
	return result
}

func matchEditingSoftware(producer, creator string) string {
	haystack := strings.ToLower(producer + " " + creator)
	for _, tool := range editingSoftware {
		if strings.Contains(haystack, tool) {
			return tool
		}
	}
	return ""
}
