package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportKind selects which import pipeline a preview runs through.
type ImportKind string

const (
	ImportKindStudents ImportKind = "students"
	ImportKindRecords  ImportKind = "records"
)

// RowStatus is the commit-eligibility classification of one spreadsheet row.
type RowStatus string

const (
	RowStatusValid   RowStatus = "valid"
	RowStatusWarning RowStatus = "warning"
	RowStatusError   RowStatus = "error"
)

// IssueLevel distinguishes blocking problems from advisories.
type IssueLevel string

const (
	IssueLevelError   IssueLevel = "error"
	IssueLevelWarning IssueLevel = "warning"
)

// Machine-stable issue codes.
const (
	IssueCodeRequired      = "REQUIRED"
	IssueCodeInvalidType   = "INVALID_TYPE"
	IssueCodeInvalidValue  = "INVALID_VALUE"
	IssueCodeInvalidFormat = "INVALID_FORMAT"
	IssueCodeMaxLength     = "MAX_LENGTH"
	IssueCodeOutOfRange    = "OUT_OF_RANGE"
	IssueCodeDuplicate     = "DUPLICATE"
	IssueCodeNotFound      = "NOT_FOUND"
	IssueCodeNoData        = "NO_DATA"
)

// FieldIssue is one validation finding on one field of one row.
type FieldIssue struct {
	Field   string     `json:"field"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Level   IssueLevel `json:"level"`
}

// StatusFromIssues derives the row status: error beats warning beats valid.
func StatusFromIssues(issues []FieldIssue) RowStatus {
	status := RowStatusValid
	for _, issue := range issues {
		if issue.Level == IssueLevelError {
			return RowStatusError
		}
		status = RowStatusWarning
	}
	return status
}

// ImportContext fixes the target of a preview for its whole lifetime.
// Grade and Class are only meaningful for records imports.
type ImportContext struct {
	Kind     ImportKind `json:"import_kind"`
	SchoolID uuid.UUID  `json:"school_id"`
	Grade    int        `json:"grade,omitempty"`
	Class    string     `json:"class,omitempty"`
}

// StudentRow is one parsed roster row. The raw cell values are kept verbatim
// for caller inspection; the *Parsed fields are filled by the validator only
// when the raw value was acceptable.
type StudentRow struct {
	StudentNumber string `json:"student_number"`
	Name          string `json:"name"`
	Gender        string `json:"gender"`
	Grade         string `json:"grade"`
	Class         string `json:"class"`
	BirthDate     string `json:"birth_date"`

	GenderParsed    Gender     `json:"gender_parsed,omitempty"`
	GradeParsed     int        `json:"grade_parsed,omitempty"`
	BirthDateParsed *time.Time `json:"birth_date_parsed,omitempty"`
}

// RecordRow is one parsed sport-record row. ValuesParsed maps measurement
// codes (see MeasurementFields) to the numeric values that passed parsing.
type RecordRow struct {
	StudentNumber string `json:"student_number"`
	Name          string `json:"name"`
	Height        string `json:"height"`
	Weight        string `json:"weight"`
	SitReach      string `json:"sit_reach"`
	StandingJump  string `json:"standing_jump"`
	SitUps        string `json:"sit_ups"`
	Cardio        string `json:"cardio"`
	TestDate      string `json:"test_date"`

	StudentID      *uuid.UUID         `json:"student_id,omitempty"`
	TestDateParsed *time.Time         `json:"test_date_parsed,omitempty"`
	ValuesParsed   map[string]float64 `json:"values_parsed,omitempty"`
}

// ImportRow is one validated row of a preview. Exactly one of Student and
// Record is set, matching the preview's kind.
type ImportRow struct {
	RowNumber int          `json:"row_number"`
	Status    RowStatus    `json:"status"`
	Student   *StudentRow  `json:"student,omitempty"`
	Record    *RecordRow   `json:"record,omitempty"`
	Issues    []FieldIssue `json:"issues"`
}

// ImportPreview is a staged, validated, not-yet-committed batch. Rows keep
// original spreadsheet order and are never mutated after creation.
type ImportPreview struct {
	ID        string        `json:"preview_id"`
	Context   ImportContext `json:"context"`
	FileName  string        `json:"file_name"`
	Rows      []ImportRow   `json:"rows"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// Counts tallies row statuses. Counts are always derived from Rows; the
// preview stores no redundant copy that could drift.
func (p *ImportPreview) Counts() (total, valid, warning, errored int) {
	for _, row := range p.Rows {
		switch row.Status {
		case RowStatusValid:
			valid++
		case RowStatusWarning:
			warning++
		case RowStatusError:
			errored++
		}
	}
	return len(p.Rows), valid, warning, errored
}

// SkippedRow reports why one row did not commit (one entry per skipped row).
type SkippedRow struct {
	RowNumber int    `json:"row_number"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
}

// ImportResult is the immutable outcome of executing a preview.
type ImportResult struct {
	PreviewID    string       `json:"preview_id"`
	Kind         ImportKind   `json:"import_kind"`
	SuccessCount int          `json:"success_count"`
	SkipCount    int          `json:"skip_count"`
	Errors       []SkippedRow `json:"errors"`
	ExecutedAt   time.Time    `json:"executed_at"`
}

// Measurement codes for records imports, in template column order. Iterate
// this slice, not ValuesParsed, wherever ordering must be deterministic.
var MeasurementFields = []string{
	"height",
	"weight",
	"sit_reach",
	"standing_jump",
	"sit_ups",
	"cardio",
}

// MeasurementRange bounds plausible (not possible) values; violations are
// warnings, never errors.
type MeasurementRange struct {
	Min float64
	Max float64
}

var MeasurementRanges = map[string]MeasurementRange{
	"height":        {Min: 80, Max: 250},
	"weight":        {Min: 10, Max: 200},
	"sit_reach":     {Min: -30, Max: 60},
	"standing_jump": {Min: 20, Max: 350},
	"sit_ups":       {Min: 0, Max: 100},
	"cardio":        {Min: 60, Max: 1800},
}

// Template column headers. Starred columns are required.
var StudentTemplateHeaders = []string{
	"Student No.*",
	"Name*",
	"Gender*",
	"Grade*",
	"Class",
	"Birth Date",
}

var RecordsTemplateHeaders = []string{
	"Student No.*",
	"Name*",
	"Height (cm)",
	"Weight (kg)",
	"Sit & Reach (cm)",
	"Standing Jump (cm)",
	"Sit-ups (reps/min)",
	"Cardio (sec)",
	"Test Date*",
}
