package models

import (
	"time"
)

// Issue is one piece of evidence produced by a forensic check.
type Issue struct {
	Page        int            `json:"page,omitempty"`
	Description string         `json:"description"`
	Value       map[string]any `json:"value,omitempty"`
}

// CheckResult is the outcome of a single forensic check. A check that could
// not run reports Applicable=false with a zero score so it never penalizes
// the document.
type CheckResult struct {
	RiskScore  int            `json:"risk_score"`
	Applicable bool           `json:"applicable"`
	Issues     []Issue        `json:"issues,omitempty"`
	Flags      []string       `json:"flags,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// NotApplicable builds a zero-score result for a check that does not apply.
func NotApplicable(reason string) CheckResult {
	return CheckResult{
		RiskScore:  0,
		Applicable: false,
		Details:    map[string]any{"reason": reason},
	}
}

// FailedCheck builds the recovery result for a check that errored internally.
func FailedCheck(err error) CheckResult {
	return CheckResult{
		RiskScore:  0,
		Applicable: false,
		Error:      err.Error(),
	}
}

// RiskLevel buckets an overall score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// AnalysisResult is the full forensic verdict for one document.
type AnalysisResult struct {
	OverallScore float64   `json:"overall_score"`
	RiskLevel    RiskLevel `json:"risk_level"`

	Alignment   CheckResult  `json:"alignment"`
	Fonts       CheckResult  `json:"fonts"`
	Metadata    CheckResult  `json:"metadata"`
	Numbers     CheckResult  `json:"numbers"`
	Image       CheckResult  `json:"image"`
	PageNumbers *CheckResult `json:"page_numbers,omitempty"`
	NOAIDCheck  *CheckResult `json:"noa_id_check,omitempty"`

	ProcessingTime float64   `json:"processing_time"`
	Timestamp      time.Time `json:"timestamp"`
	FileName       string    `json:"file_name"`
	DocType        DocType   `json:"doc_type"`
}

// ForensicRecord is the persisted first sighting of a NOA identification
// number. Rows are append-only.
type ForensicRecord struct {
	ID                   int64     `json:"id" db:"id"`
	IdentificationNumber string    `json:"identification_number" db:"identification_number"`
	SINLast4             string    `json:"sin_last_4,omitempty" db:"sin_last_4"`
	FullName             string    `json:"full_name,omitempty" db:"full_name"`
	DateIssued           string    `json:"date_issued,omitempty" db:"date_issued"`
	UploadedTimestamp    time.Time `json:"uploaded_timestamp" db:"uploaded_timestamp"`
	FileName             string    `json:"file_name" db:"file_name"`
}

// DuplicateDetection is the persisted record of a repeat sighting of an
// identification number. Rows are append-only.
type DuplicateDetection struct {
	ID                   int64     `json:"id" db:"id"`
	IdentificationNumber string    `json:"identification_number" db:"identification_number"`
	OriginalFileName     string    `json:"original_file_name" db:"original_file_name"`
	DuplicateFileName    string    `json:"duplicate_file_name" db:"duplicate_file_name"`
	DetectedTimestamp    time.Time `json:"detected_timestamp" db:"detected_timestamp"`
}

// DuplicateCheck is the outcome of one atomic check-and-insert.
type DuplicateCheck struct {
	IsDuplicate    bool            `json:"is_duplicate"`
	OriginalRecord *ForensicRecord `json:"original_record,omitempty"`
}

// StoreStats summarizes the forensic store contents.
type StoreStats struct {
	TotalRecords            int     `json:"total_records"`
	TotalDuplicatesDetected int     `json:"total_duplicates_detected"`
	DuplicateRatePercent    float64 `json:"duplicate_rate_percent"`
}
