package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. All are user- or caller-
// correctable and returned as values; none is fatal to the process.
var (
	// ErrLocationUnavailable: the farmer profile has no village, district,
	// or state to build a weather query from.
	ErrLocationUnavailable = errors.New("farmer location not available")

	// ErrWeatherSourceUnavailable: the upstream weather API timed out,
	// returned a non-2xx status, or sent a malformed payload. Transient;
	// the caller may retry the whole check.
	ErrWeatherSourceUnavailable = errors.New("weather source unavailable")

	// ErrFarmerNotFound: no farmer profile exists for that ID.
	ErrFarmerNotFound = errors.New("farmer not found")

	// ErrAlertNotFound: no alert with that ID belongs to the farmer.
	ErrAlertNotFound = errors.New("weather alert not found")

	// ErrClaimNotFound: no claim with that ID belongs to the farmer.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrUploadFailed: the evidence storage write failed; no photo record
	// was committed.
	ErrUploadFailed = errors.New("evidence upload failed")
)

// Submission gate steps reported by SubmissionIncompleteError.
const (
	StepEvidence  = "evidence"
	StepDocuments = "documents"
)

// SubmissionIncompleteError reports which readiness gate blocked a submission.
type SubmissionIncompleteError struct {
	Step    string // StepEvidence or StepDocuments
	Message string
}

func (e *SubmissionIncompleteError) Error() string {
	return fmt.Sprintf("submission incomplete at %s step: %s", e.Step, e.Message)
}
