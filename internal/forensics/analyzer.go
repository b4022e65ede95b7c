// Package forensics aggregates the individual document checks into one
// explainable verdict.
package forensics

import (
	"context"
	"math"
	"time"

	"github.com/fraudlens/tax-forensics-api/internal/checks"
	"github.com/fraudlens/tax-forensics-api/internal/models"
	"github.com/fraudlens/tax-forensics-api/internal/repository"
	"github.com/fraudlens/tax-forensics-api/internal/utils"
)

// checkWeights reflect evidentiary strength: a reused notice number or
// edited metadata is far stronger evidence than cosmetic alignment noise.
// Inapplicable checks contribute zero weight, not zero score.
var checkWeights = map[string]float64{
	"alignment":    0.75,
	"fonts":        1.25,
	"metadata":     1.50,
	"numbers":      1.00,
	"image":        1.00,
	"page_numbers": 1.00,
	"noa_id_check": 2.00,
}

// Risk level cutoffs over the weighted overall score.
const (
	riskLowCutoff  = 30.0
	riskHighCutoff = 70.0
)

// Analyzer runs the full forensic battery over one document.
type Analyzer struct {
	detector *DuplicateDetector
	logger   *utils.Logger
}

func NewAnalyzer(store repository.Store, logger *utils.Logger) *Analyzer {
	return &Analyzer{
		detector: NewDuplicateDetector(store, logger),
		logger:   logger,
	}
}

// Analyze runs every applicable check and aggregates the results. The base
// checks are pure and run concurrently; the duplicate detector is the one
// stateful step and runs only for NOA documents. Only a store failure makes
// Analyze itself fail; per-check failures are absorbed into the result.
func (a *Analyzer) Analyze(ctx context.Context, doc *models.Document) (*models.AnalysisResult, error) {
	start := time.Now()

	battery := []checks.Check{
		checks.AlignmentCheck{},
		checks.FontCheck{},
		checks.MetadataCheck{},
		checks.NumberCheck{},
		checks.ImageQualityCheck{},
	}
	if doc.DocType == models.DocTypeNOA {
		battery = append(battery, checks.PageNumberCheck{})
	}

	results := checks.RunAll(doc, battery)

	result := &models.AnalysisResult{
		Alignment: results["alignment"],
		Fonts:     results["fonts"],
		Metadata:  results["metadata"],
		Numbers:   results["numbers"],
		Image:     results["image"],
		Timestamp: time.Now(),
		FileName:  doc.FileName,
		DocType:   doc.DocType,
	}

	named := map[string]models.CheckResult{
		"alignment": result.Alignment,
		"fonts":     result.Fonts,
		"metadata":  result.Metadata,
		"numbers":   result.Numbers,
		"image":     result.Image,
	}

	if doc.DocType == models.DocTypeNOA {
		pageNumbers := results["page_numbers"]
		result.PageNumbers = &pageNumbers
		named["page_numbers"] = pageNumbers

		idCheck, err := a.detector.Check(ctx, doc)
		if err != nil {
			return nil, err
		}
		result.NOAIDCheck = &idCheck
		named["noa_id_check"] = idCheck
	}

	result.OverallScore = aggregate(named)
	result.RiskLevel = riskLevelFor(result.OverallScore)
	result.ProcessingTime = time.Since(start).Seconds()

	a.logger.Info("forensic analysis complete",
		"file_name", doc.FileName,
		"doc_type", doc.DocType,
		"overall_score", result.OverallScore,
		"risk_level", result.RiskLevel)

	return result, nil
}

// aggregate computes the weighted mean risk score over applicable checks.
func aggregate(named map[string]models.CheckResult) float64 {
	var weightedSum, totalWeight float64

	for name, check := range named {
		if !check.Applicable {
			continue
		}
		weight := checkWeights[name]
		weightedSum += weight * float64(check.RiskScore)
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}

	score := weightedSum / totalWeight
	return math.Round(score*100) / 100
}

func riskLevelFor(score float64) models.RiskLevel {
	switch {
	case score >= riskHighCutoff:
		return models.RiskHigh
	case score >= riskLowCutoff:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
