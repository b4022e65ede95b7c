package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fraudlens/tax-forensics-api/internal/db"
	"github.com/fraudlens/tax-forensics-api/internal/models"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "forensic_test.db")
	database, err := db.NewSQLiteDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.RunMigrations(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return NewStore(database)
}

func TestCheckAndRecordDuplicateFlow(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.CheckAndRecord(ctx, models.ForensicRecord{
		IdentificationNumber: "123456789",
		FileName:             "A.pdf",
	})
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if first.IsDuplicate {
		t.Fatalf("first sighting must not be a duplicate")
	}

	second, err := store.CheckAndRecord(ctx, models.ForensicRecord{
		IdentificationNumber: "123456789",
		FileName:             "B.pdf",
	})
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !second.IsDuplicate {
		t.Fatalf("second sighting must be a duplicate")
	}
	if second.OriginalRecord == nil || second.OriginalRecord.FileName != "A.pdf" {
		t.Errorf("expected original record to point at A.pdf, got %+v", second.OriginalRecord)
	}

	records, err := store.GetAllRecords(ctx)
	if err != nil {
		t.Fatalf("get records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one forensic record, got %d", len(records))
	}

	history, err := store.GetDuplicateHistory(ctx)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly one duplicate detection, got %d", len(history))
	}
	if history[0].DuplicateFileName != "B.pdf" {
		t.Errorf("expected duplicate file B.pdf, got %q", history[0].DuplicateFileName)
	}
	if history[0].OriginalFileName != "A.pdf" {
		t.Errorf("expected original file A.pdf, got %q", history[0].OriginalFileName)
	}
}

func TestCheckAndRecordConcurrentSameIdentifier(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var wg sync.WaitGroup
	files := []string{"C1.pdf", "C2.pdf"}

	wg.Add(len(files))
	for _, file := range files {
		go func(file string) {
			defer wg.Done()
			if _, err := store.CheckAndRecord(ctx, models.ForensicRecord{
				IdentificationNumber: "999",
				FileName:             file,
			}); err != nil {
				t.Errorf("check %s: %v", file, err)
			}
		}(file)
	}
	wg.Wait()

	records, err := store.GetAllRecords(ctx)
	if err != nil {
		t.Fatalf("get records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one forensic record after concurrent checks, got %d", len(records))
	}

	history, err := store.GetDuplicateHistory(ctx)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly one duplicate detection after concurrent checks, got %d", len(history))
	}
}

func TestGetByIdentificationNumber(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.CheckAndRecord(ctx, models.ForensicRecord{
		IdentificationNumber: "555555555",
		SINLast4:             "6789",
		FileName:             "noa.pdf",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	record, err := store.GetByIdentificationNumber(ctx, "555555555")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if record == nil {
		t.Fatal("expected a record for a stored identifier")
	}
	if record.FileName != "noa.pdf" || record.SINLast4 != "6789" {
		t.Errorf("unexpected record: %+v", record)
	}

	missing, err := store.GetByIdentificationNumber(ctx, "000000000")
	if err != nil {
		t.Fatalf("lookup missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for an unknown identifier, got %+v", missing)
	}
}

func TestStatsEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalRecords != 0 || stats.TotalDuplicatesDetected != 0 {
		t.Errorf("expected zero counts, got %+v", stats)
	}
	if stats.DuplicateRatePercent != 0 {
		t.Errorf("expected duplicate rate 0 on empty store, got %f", stats.DuplicateRatePercent)
	}
}

func TestStatsDuplicateRate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, id := range []string{"111111111", "222222222"} {
		if _, err := store.CheckAndRecord(ctx, models.ForensicRecord{IdentificationNumber: id, FileName: "first.pdf"}); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	if _, err := store.CheckAndRecord(ctx, models.ForensicRecord{IdentificationNumber: "111111111", FileName: "again.pdf"}); err != nil {
		t.Fatalf("duplicate: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalRecords != 2 || stats.TotalDuplicatesDetected != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.DuplicateRatePercent != 50 {
		t.Errorf("expected duplicate rate 50, got %f", stats.DuplicateRatePercent)
	}
}

func TestCheckAndRecordRejectsEmptyIdentifier(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.CheckAndRecord(context.Background(), models.ForensicRecord{FileName: "X.pdf"}); err == nil {
		t.Errorf("expected error for empty identification number")
	}
}
