package checks

import (
	"fmt"
	"math"
	"sort"

	"github.com/fraudlens/tax-forensics-api/internal/models"
)

const (
	// Vertical offset from the line baseline beyond which a word counts as
	// misaligned, in points.
	baselineTolerance = 2.5

	// Horizontal gap larger than this multiple of the line's median gap is
	// treated as a spacing break.
	gapSpikeFactor = 4.0
)

// AlignmentCheck flags words that sit off their text line's baseline or
// break the line's spacing rhythm. Pasted-in text rarely lands exactly on
// the original grid.
type AlignmentCheck struct{}

func (AlignmentCheck) Name() string { return "alignment" }

func (AlignmentCheck) Run(doc *models.Document) models.CheckResult {
	totalWords := doc.WordCount()
	if totalWords == 0 {
		return models.NotApplicable("no extractable words")
	}

	result := models.CheckResult{Applicable: true, Details: map[string]any{}}
	misaligned := 0

	for _, page := range doc.Pages {
		lines := clusterLines(page.Words)

		for _, line := range lines {
			if len(line) < 3 {
				continue
			}

			baseline := medianY(line)
			medGap := medianGap(line)

			for i, word := range line {
				offBaseline := math.Abs(word.Y-baseline) > baselineTolerance
				spacingBreak := false
				if i > 0 && medGap > 0 {
					gap := word.X - (line[i-1].X + line[i-1].Width)
					spacingBreak = gap > gapSpikeFactor*medGap
				}

				if offBaseline || spacingBreak {
					misaligned++
					result.Issues = append(result.Issues, models.Issue{
						Page:        page.Number,
						Description: fmt.Sprintf("word %q is misaligned", word.Text),
						Value: map[string]any{
							"word":            word.Text,
							"baseline_offset": round2(word.Y - baseline),
							"spacing_break":   spacingBreak,
						},
					})
				}
			}
		}
	}

	fraction := float64(misaligned) / float64(totalWords)
	result.RiskScore = clampScore(int(fraction * 300))
	result.Details["misaligned_words"] = misaligned
	result.Details["total_words"] = totalWords

	if misaligned > 0 {
		result.Flags = append(result.Flags, "MISALIGNED_TEXT")
	}

	return result
}

// clusterLines groups a page's words into text lines by vertical position.
func clusterLines(words []models.Word) [][]models.Word {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]models.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines [][]models.Word
	current := []models.Word{sorted[0]}
	refY := sorted[0].Y

	for _, w := range sorted[1:] {
		if math.Abs(w.Y-refY) <= baselineTolerance*2 {
			current = append(current, w)
			continue
		}
		lines = append(lines, sortByX(current))
		current = []models.Word{w}
		refY = w.Y
	}
	lines = append(lines, sortByX(current))

	return lines
}

func sortByX(line []models.Word) []models.Word {
	sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	return line
}

func medianY(line []models.Word) float64 {
	ys := make([]float64, len(line))
	for i, w := range line {
		ys[i] = w.Y
	}
	sort.Float64s(ys)
	return ys[len(ys)/2]
}

func medianGap(line []models.Word) float64 {
	if len(line) < 2 {
		return 0
	}
	gaps := make([]float64, 0, len(line)-1)
	for i := 1; i < len(line); i++ {
		gap := line[i].X - (line[i-1].X + line[i-1].Width)
		if gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) == 0 {
		return 0
	}
	sort.Float64s(gaps)
	return gaps[len(gaps)/2]
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
