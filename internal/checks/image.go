package checks

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/fraudlens/tax-forensics-api/internal/models"
)

const (
	// sharpnessThreshold is the mean absolute Laplacian response below which
	// a page counts as blurry. Rescanned or recomposited documents lose the
	// high-frequency content a digitally generated page has.
	sharpnessThreshold = 6.0

	// maxAnalysisWidth bounds the work done on very large scans.
	maxAnalysisWidth = 1200

	// minAnalysisSide is the smallest image dimension the sharpness estimate
	// is meaningful for.
	minAnalysisSide = 50

	// minPixelSpread is the gray-level spread below which a page counts as
	// blank rather than blurry.
	minPixelSpread = 8
)

// ImageQualityCheck estimates sharpness via a Laplacian high-frequency
// proxy, over the upload itself for raster input and over the largest
// embedded page image for scanned PDFs. Documents with no raster
// representation at all report themselves inapplicable.
type ImageQualityCheck struct{}

func (ImageQualityCheck) Name() string { return "image" }

func (ImageQualityCheck) Run(doc *models.Document) models.CheckResult {
	if doc.Image == nil {
		return models.NotApplicable("no raster representation available")
	}

	img := doc.Image
	if img.Bounds().Dx() < minAnalysisSide || img.Bounds().Dy() < minAnalysisSide {
		return models.NotApplicable("image too small to assess sharpness")
	}
	if img.Bounds().Dx() > maxAnalysisWidth {
		img = imaging.Resize(img, maxAnalysisWidth, 0, imaging.Lanczos)
	}
	gray := imaging.Grayscale(img)

	sharpness, spread := meanLaplacian(gray)
	if spread < minPixelSpread {
		return models.NotApplicable("image has no measurable detail")
	}

	result := models.CheckResult{
		Applicable: true,
		Details: map[string]any{
			"sharpness": round2(sharpness),
			"threshold": sharpnessThreshold,
		},
	}

	if sharpness < sharpnessThreshold {
		result.RiskScore = clampScore(int((1 - sharpness/sharpnessThreshold) * 100))
		result.Flags = append(result.Flags, "LOW_SHARPNESS")
		result.Issues = append(result.Issues, models.Issue{
			Page:        1,
			Description: "image sharpness is below the expected level for a generated document",
			Value:       map[string]any{"sharpness": round2(sharpness)},
		})
	}

	return result
}

// meanLaplacian returns the mean absolute 4-neighbor Laplacian response of
// a grayscale image, a cheap stand-in for high-frequency content, along
// with the gray-level spread so a blank page can be told apart from a
// blurry one.
func meanLaplacian(gray *image.NRGBA) (float64, int) {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0, 0
	}

	at := func(x, y int) int {
		return int(gray.Pix[y*gray.Stride+x*4])
	}

	var sum float64
	var n int
	minPix, maxPix := 255, 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := at(x, y)
			if v < minPix {
				minPix = v
			}
			if v > maxPix {
				maxPix = v
			}

			lap := 4*v - at(x-1, y) - at(x+1, y) - at(x, y-1) - at(x, y+1)
			if lap < 0 {
				lap = -lap
			}
			sum += float64(lap)
			n++
		}
	}

	return sum / float64(n), maxPix - minPix
}
