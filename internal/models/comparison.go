package models

// FieldValue is one AI-extracted field with its raw text provenance.
type FieldValue struct {
	Value string `json:"value"`
	Raw   string `json:"raw,omitempty"`
}

// StructuredRecord holds the named fields the AI extractor pulled out of a
// single tax document. Absent fields are nil.
type StructuredRecord struct {
	Kind DocType `json:"kind"`

	SIN      *FieldValue `json:"sin,omitempty"`
	FullName *FieldValue `json:"full_name,omitempty"`
	Address  *FieldValue `json:"address,omitempty"`

	RefundAmount  *FieldValue `json:"refund_amount,omitempty"`
	TotalIncome   *FieldValue `json:"total_income,omitempty"`
	NetIncome     *FieldValue `json:"net_income,omitempty"`
	TaxableIncome *FieldValue `json:"taxable_income,omitempty"`

	FilingDate     *FieldValue `json:"filing_date,omitempty"`
	AssessmentDate *FieldValue `json:"assessment_date,omitempty"`

	IdentificationNumber *FieldValue `json:"identification_number,omitempty"`

	AccountantName *FieldValue `json:"accountant_name,omitempty"`
	AccountantID   *FieldValue `json:"accountant_id,omitempty"`
}

// CheckStatus is the outcome of one cross-document comparison rule.
type CheckStatus string

const (
	StatusPass    CheckStatus = "pass"
	StatusFail    CheckStatus = "fail"
	StatusWarning CheckStatus = "warning"
)

// ComparisonCheck is the result of one field-level comparison rule.
type ComparisonCheck struct {
	Check      string      `json:"check"`
	Status     CheckStatus `json:"status"`
	Confidence int         `json:"confidence"`
	Details    string      `json:"details"`
}

// ComparisonRisk is the overall risk of a cross-document comparison.
type ComparisonRisk string

const (
	ComparisonLow     ComparisonRisk = "low"
	ComparisonMedium  ComparisonRisk = "medium"
	ComparisonHigh    ComparisonRisk = "high"
	ComparisonUnknown ComparisonRisk = "unknown"
)

// ComparisonResult is the full cross-document verdict.
type ComparisonResult struct {
	OverallRisk  ComparisonRisk    `json:"overall_risk"`
	Checks       []ComparisonCheck `json:"checks"`
	FlaggedItems []string          `json:"flagged_items"`

	T1Data  *StructuredRecord `json:"t1_data"`
	NOAData *StructuredRecord `json:"noa_data"`

	ProcessingTime float64 `json:"processing_time"`
}
