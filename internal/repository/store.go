package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fraudlens/tax-forensics-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// Store is the persistence contract of the duplicate-ID detector. Both
// tables are append-only: rows are never updated or deleted, so the audit
// history stays intact.
type Store interface {
	// CheckAndRecord atomically looks up the identification number and
	// either inserts a first-sighting ForensicRecord (not a duplicate) or a
	// DuplicateDetection referencing the original (duplicate).
	CheckAndRecord(ctx context.Context, record models.ForensicRecord) (models.DuplicateCheck, error)
	GetByIdentificationNumber(ctx context.Context, idNumber string) (*models.ForensicRecord, error)
	GetAllRecords(ctx context.Context) ([]models.ForensicRecord, error)
	GetDuplicateHistory(ctx context.Context) ([]models.DuplicateDetection, error)
	Stats(ctx context.Context) (models.StoreStats, error)
}

type store struct {
	db *sqlx.DB

	// Serializes check-and-insert so two concurrent uploads of the same
	// identifier cannot both observe "absent". The unique index on
	// identification_number backs this up at the schema level.
	mu sync.Mutex
}

func NewStore(db *sqlx.DB) Store {
	return &store{db: db}
}

func (s *store) CheckAndRecord(ctx context.Context, record models.ForensicRecord) (models.DuplicateCheck, error) {
	idNumber := strings.TrimSpace(record.IdentificationNumber)
	if idNumber == "" {
		return models.DuplicateCheck{}, fmt.Errorf("identification number is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.DuplicateCheck{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	original, err := getByIdentificationNumber(ctx, tx, idNumber)
	if err != nil {
		return models.DuplicateCheck{}, err
	}

	now := time.Now().UTC()

	if original == nil {
		query := `
			INSERT INTO forensic_records (identification_number, sin_last_4, full_name, date_issued, uploaded_timestamp, file_name)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query,
			idNumber,
			record.SINLast4,
			record.FullName,
			record.DateIssued,
			now,
			record.FileName,
		); err != nil {
			return models.DuplicateCheck{}, fmt.Errorf("insert forensic record: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return models.DuplicateCheck{}, fmt.Errorf("commit: %w", err)
		}

		return models.DuplicateCheck{IsDuplicate: false}, nil
	}

	query := `
		INSERT INTO duplicate_detections (identification_number, original_file_name, duplicate_file_name, detected_timestamp)
		VALUES (?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query,
		idNumber,
		original.FileName,
		record.FileName,
		now,
	); err != nil {
		return models.DuplicateCheck{}, fmt.Errorf("insert duplicate detection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.DuplicateCheck{}, fmt.Errorf("commit: %w", err)
	}

	return models.DuplicateCheck{IsDuplicate: true, OriginalRecord: original}, nil
}

func (s *store) GetByIdentificationNumber(ctx context.Context, idNumber string) (*models.ForensicRecord, error) {
	return getByIdentificationNumber(ctx, s.db, idNumber)
}

func getByIdentificationNumber(ctx context.Context, q sqlx.QueryerContext, idNumber string) (*models.ForensicRecord, error) {
	var record models.ForensicRecord

	query := `
		SELECT id, identification_number, sin_last_4, full_name, date_issued, uploaded_timestamp, file_name
		FROM forensic_records
		WHERE identification_number = ?
	`

	err := sqlx.GetContext(ctx, q, &record, query, idNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query forensic record: %w", err)
	}

	return &record, nil
}

func (s *store) GetAllRecords(ctx context.Context) ([]models.ForensicRecord, error) {
	records := make([]models.ForensicRecord, 0)

	query := `
		SELECT id, identification_number, sin_last_4, full_name, date_issued, uploaded_timestamp, file_name
		FROM forensic_records
		ORDER BY id ASC
	`

	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("query forensic records: %w", err)
	}

	return records, nil
}

func (s *store) GetDuplicateHistory(ctx context.Context) ([]models.DuplicateDetection, error) {
	detections := make([]models.DuplicateDetection, 0)

	query := `
		SELECT id, identification_number, original_file_name, duplicate_file_name, detected_timestamp
		FROM duplicate_detections
		ORDER BY id ASC
	`

	if err := s.db.SelectContext(ctx, &detections, query); err != nil {
		return nil, fmt.Errorf("query duplicate detections: %w", err)
	}

	return detections, nil
}

func (s *store) Stats(ctx context.Context) (models.StoreStats, error) {
	var stats models.StoreStats

	if err := s.db.GetContext(ctx, &stats.TotalRecords, `SELECT COUNT(*) FROM forensic_records`); err != nil {
		return models.StoreStats{}, fmt.Errorf("count forensic records: %w", err)
	}

	if err := s.db.GetContext(ctx, &stats.TotalDuplicatesDetected, `SELECT COUNT(*) FROM duplicate_detections`); err != nil {
		return models.StoreStats{}, fmt.Errorf("count duplicate detections: %w", err)
	}

	if stats.TotalRecords > 0 {
		stats.DuplicateRatePercent = float64(stats.TotalDuplicatesDetected) / float64(stats.TotalRecords) * 100
	}

	return stats, nil
}
