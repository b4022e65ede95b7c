package services

import (
	"context"
	"fmt"

	"github.com/fraudlens/tax-forensics-api/internal/config"
	"github.com/fraudlens/tax-forensics-api/internal/extractor"
	"github.com/fraudlens/tax-forensics-api/internal/forensics"
	"github.com/fraudlens/tax-forensics-api/internal/metrics"
	"github.com/fraudlens/tax-forensics-api/internal/models"
	"github.com/fraudlens/tax-forensics-api/internal/repository"
	"github.com/fraudlens/tax-forensics-api/internal/storage"
	"github.com/fraudlens/tax-forensics-api/internal/utils"
)

type ForensicsService interface {
	AnalyzeUpload(ctx context.Context, req *models.UploadRequest) (*models.AnalysisResult, error)
	CheckDuplicate(ctx context.Context, idNumber, fileName string) (models.DuplicateCheck, error)
	GetRecord(ctx context.Context, idNumber string) (*models.ForensicRecord, error)
	GetRecords(ctx context.Context, limit, offset int) ([]models.ForensicRecord, error)
	FetchEvidence(ctx context.Context, key string) ([]byte, error)
	GetDuplicateHistory(ctx context.Context) ([]models.DuplicateDetection, error)
	Stats(ctx context.Context) (models.StoreStats, error)
}

type forensicsService struct {
	store    repository.Store
	analyzer *forensics.Analyzer
	archive  storage.Archive
	logger   *utils.Logger
}

func NewForensicsService(store repository.Store, cfg *config.Config, logger *utils.Logger) ForensicsService {
	var archive storage.Archive
	if cfg.ArchiveEnabled() {
		s3Archive, err := storage.NewS3Archive(cfg)
		if err != nil {
			logger.Fatal("Failed to initialize evidence archive", "error", err)
		}
		archive = s3Archive
	} else {
		logger.Warn("Evidence archive disabled: no S3 endpoint configured")
	}

	return &forensicsService{
		store:    store,
		analyzer: forensics.NewAnalyzer(store, logger),
		archive:  archive,
		logger:   logger,
	}
}

func (s *forensicsService) AnalyzeUpload(ctx context.Context, req *models.UploadRequest) (*models.AnalysisResult, error) {
	doc, err := s.extractDocument(req)
	if err != nil {
		s.logger.Error("Layout extraction failed", "error", err, "filename", req.Filename)
		return nil, utils.NewExtractionError("failed to extract document layout", err)
	}

	result, err := s.analyzer.Analyze(ctx, doc)
	if err != nil {
		s.logger.Error("Forensic analysis failed", "error", err, "filename", req.Filename)
		return nil, err
	}

	metrics.AnalysesTotal.WithLabelValues(string(result.RiskLevel)).Inc()
	if result.NOAIDCheck != nil && hasFlag(*result.NOAIDCheck, "DUPLICATE_ID") {
		metrics.DuplicatesDetectedTotal.Inc()
	}

	s.archiveOriginal(ctx, req)

	return result, nil
}

func (s *forensicsService) extractDocument(req *models.UploadRequest) (*models.Document, error) {
	switch req.ContentType {
	case "application/pdf":
		return extractor.ExtractPDFLayout(req.File, req.Filename, req.DocType)
	case "image/jpeg", "image/png":
		return extractor.ExtractRaster(req.File, req.Filename, req.DocType)
	default:
		return nil, fmt.Errorf("unsupported content type %q", req.ContentType)
	}
}

// archiveOriginal retains the uploaded bytes for later audit. Failures are
// logged, not surfaced: the forensic verdict is already complete.
func (s *forensicsService) archiveOriginal(ctx context.Context, req *models.UploadRequest) {
	if s.archive == nil {
		return
	}

	key := fmt.Sprintf("analyzed/%s/%s", utils.GenerateID(), req.Filename)
	if err := s.archive.Store(ctx, key, req.File, req.ContentType); err != nil {
		s.logger.Error("Failed to archive analyzed document", "error", err, "key", key)
		return
	}

	s.logger.Info("Document archived", "key", key, "filename", req.Filename)
}

func (s *forensicsService) CheckDuplicate(ctx context.Context, idNumber, fileName string) (models.DuplicateCheck, error) {
	if fileName == "" {
		fileName = "manual-check"
	}

	check, err := s.store.CheckAndRecord(ctx, models.ForensicRecord{
		IdentificationNumber: idNumber,
		FileName:             fileName,
	})
	if err != nil {
		s.logger.Error("Duplicate check failed", "error", err, "identification_number", idNumber)
		return models.DuplicateCheck{}, utils.NewStorageError("duplicate check failed", err)
	}

	if check.IsDuplicate {
		metrics.DuplicatesDetectedTotal.Inc()
	}

	return check, nil
}

func (s *forensicsService) GetRecord(ctx context.Context, idNumber string) (*models.ForensicRecord, error) {
	record, err := s.store.GetByIdentificationNumber(ctx, idNumber)
	if err != nil {
		s.logger.Error("Failed to load forensic record", "error", err, "identification_number", idNumber)
		return nil, utils.NewStorageError("failed to load forensic record", err)
	}
	if record == nil {
		return nil, utils.NewNotFoundError("no record for identification number " + idNumber)
	}
	return record, nil
}

// FetchEvidence retrieves an archived original by its storage key.
func (s *forensicsService) FetchEvidence(ctx context.Context, key string) ([]byte, error) {
	if s.archive == nil {
		return nil, utils.NewConfigurationError("evidence archive is not configured")
	}

	data, err := s.archive.Fetch(ctx, key)
	if err != nil {
		s.logger.Error("Failed to fetch archived document", "error", err, "key", key)
		return nil, utils.NewNotFoundError("no archived document under key " + key)
	}
	return data, nil
}

func (s *forensicsService) GetRecords(ctx context.Context, limit, offset int) ([]models.ForensicRecord, error) {
	records, err := s.store.GetAllRecords(ctx)
	if err != nil {
		s.logger.Error("Failed to list forensic records", "error", err)
		return nil, utils.NewStorageError("failed to list forensic records", err)
	}

	if offset >= len(records) {
		return []models.ForensicRecord{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(records) {
		end = len(records)
	}

	return records[offset:end], nil
}

func (s *forensicsService) GetDuplicateHistory(ctx context.Context) ([]models.DuplicateDetection, error) {
	history, err := s.store.GetDuplicateHistory(ctx)
	if err != nil {
		s.logger.Error("Failed to list duplicate history", "error", err)
		return nil, utils.NewStorageError("failed to list duplicate history", err)
	}
	return history, nil
}

func (s *forensicsService) Stats(ctx context.Context) (models.StoreStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		s.logger.Error("Failed to compute store stats", "error", err)
		return models.StoreStats{}, utils.NewStorageError("failed to compute store stats", err)
	}
	return stats, nil
}

func hasFlag(check models.CheckResult, flag string) bool {
	for _, f := range check.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
