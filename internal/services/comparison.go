package services

import (
	"context"
	"sync"

	"github.com/fraudlens/tax-forensics-api/internal/ai"
	"github.com/fraudlens/tax-forensics-api/internal/config"
	"github.com/fraudlens/tax-forensics-api/internal/extractor"
	"github.com/fraudlens/tax-forensics-api/internal/metrics"
	"github.com/fraudlens/tax-forensics-api/internal/models"
	"github.com/fraudlens/tax-forensics-api/internal/utils"
	"github.com/fraudlens/tax-forensics-api/internal/validator"
)

type ComparisonService interface {
	ValidateDocuments(ctx context.Context, t1, noa *models.UploadRequest) (*models.ComparisonResult, error)
}

type comparisonService struct {
	extractor ai.StructuredExtractor
	validator *validator.Validator
	logger    *utils.Logger
}

func NewComparisonService(cfg *config.Config, logger *utils.Logger) ComparisonService {
	var structuredExtractor ai.StructuredExtractor
	if cfg.ComparisonEnabled() {
		structuredExtractor = ai.NewGeminiExtractor(cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	} else {
		logger.Warn("Comparison disabled: GEMINI_API_KEY not configured")
	}

	return &comparisonService{
		extractor: structuredExtractor,
		validator: validator.New(),
		logger:    logger,
	}
}

func (s *comparisonService) ValidateDocuments(ctx context.Context, t1, noa *models.UploadRequest) (*models.ComparisonResult, error) {
	if s.extractor == nil {
		return nil, utils.NewConfigurationError("document comparison requires a configured Gemini API key")
	}

	t1Text, err := extractor.ExtractPDFText(t1.File)
	if err != nil {
		s.logger.Error("Failed to extract T1 text", "error", err, "filename", t1.Filename)
		return nil, utils.NewExtractionError("failed to extract text from T1 document", err)
	}

	noaText, err := extractor.ExtractPDFText(noa.File)
	if err != nil {
		s.logger.Error("Failed to extract NOA text", "error", err, "filename", noa.Filename)
		return nil, utils.NewExtractionError("failed to extract text from NOA document", err)
	}

	// The two AI calls are independent, slow, network-bound operations; run
	// them side by side and join before validation.
	var wg sync.WaitGroup
	var t1Record, noaRecord *models.StructuredRecord
	var t1Err, noaErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		t1Record, t1Err = s.extractor.Extract(ctx, t1Text, models.DocTypeT1)
	}()
	go func() {
		defer wg.Done()
		noaRecord, noaErr = s.extractor.Extract(ctx, noaText, models.DocTypeNOA)
	}()
	wg.Wait()

	if t1Err != nil {
		s.logger.Error("T1 structured extraction failed", "error", t1Err)
		return nil, utils.NewExtractionError("structured extraction failed for T1 document", t1Err)
	}
	if noaErr != nil {
		s.logger.Error("NOA structured extraction failed", "error", noaErr)
		return nil, utils.NewExtractionError("structured extraction failed for NOA document", noaErr)
	}

	result := s.validator.Compare(t1Record, noaRecord)
	metrics.ComparisonsTotal.WithLabelValues(string(result.OverallRisk)).Inc()

	s.logger.Info("Cross-document validation complete",
		"overall_risk", result.OverallRisk,
		"checks", len(result.Checks),
		"flagged_items", len(result.FlaggedItems))

	return result, nil
}
