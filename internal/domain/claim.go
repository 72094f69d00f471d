package domain

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// ClaimStatus is the claim lifecycle state.
type ClaimStatus string

const (
	StatusDraft            ClaimStatus = "DRAFT"
	StatusEvidencePending  ClaimStatus = "EVIDENCE_PENDING"
	StatusDocumentsPending ClaimStatus = "DOCUMENTS_PENDING"
	StatusReadyToSubmit    ClaimStatus = "READY_TO_SUBMIT"
	StatusSubmitted        ClaimStatus = "SUBMITTED"
	StatusUnderReview      ClaimStatus = "UNDER_REVIEW"
	StatusApproved         ClaimStatus = "APPROVED"
	StatusRejected         ClaimStatus = "REJECTED"
)

// LossType mirrors the alert types plus "other" for losses with no
// originating weather alert.
type LossType string

const (
	LossHeavyRain  LossType = "heavy_rain"
	LossFlood      LossType = "flood"
	LossDrought    LossType = "drought"
	LossHailstorm  LossType = "hailstorm"
	LossCyclone    LossType = "cyclone"
	LossFrost      LossType = "frost"
	LossPestAttack LossType = "pest_attack"
	LossOther      LossType = "other"
)

// DeadlineWindow is the PMFBY submission window from the calamity date.
const DeadlineWindow = 72 * time.Hour

// DocumentType names a document kind in the farmer's vault.
type DocumentType string

const (
	DocAadhaar      DocumentType = "aadhaar"
	DocBankPassbook DocumentType = "bank_passbook"
	DocLandCert     DocumentType = "land_certificate"
	DocSevenTwelve  DocumentType = "seven_twelve"
	DocSowingCert   DocumentType = "sowing_certificate"
)

// RequiredDocumentTypes are the vault documents a claim must attach to reach
// READY_TO_SUBMIT. The sowing certificate is optional and not listed.
var RequiredDocumentTypes = []DocumentType{DocAadhaar, DocBankPassbook, DocLandCert, DocSevenTwelve}

// EvidencePhoto is one geotagged crop-damage photo. PhotoNumber is 1-based
// and equals the photo's position in the upload sequence.
type EvidencePhoto struct {
	URL              string    `json:"url"`
	Filename         string    `json:"filename"`
	UploadedAt       time.Time `json:"uploaded_at"`
	PhotoNumber      int       `json:"photo_number"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	CaptureTimestamp string    `json:"capture_timestamp,omitempty"`
}

// DocumentRecord is a vault document attached to a claim.
type DocumentRecord struct {
	DocumentType DocumentType `json:"document_type"`
	URL          string       `json:"url"`
	Filename     string       `json:"filename,omitempty"`
	UploadedAt   *time.Time   `json:"uploaded_at,omitempty"`
}

// InsuranceClaim is a PMFBY claim with its frozen auto-filled form, evidence,
// attached documents, and deadline state.
type InsuranceClaim struct {
	ID        uuid.UUID  `json:"id"`
	ClaimCode string     `json:"claim_id"` // human-readable, e.g. CLM-2026-48301
	FarmerID  uuid.UUID  `json:"farmer_id"`
	AlertID   *uuid.UUID `json:"weather_alert_id,omitempty"` // nulled if the alert is deleted; the claim survives

	LossType          LossType  `json:"loss_type"`
	DateOfCalamity    time.Time `json:"date_of_calamity"` // UTC midnight of the calamity date
	SurveyNumber      string    `json:"survey_number"`
	AreaAffected      float64   `json:"area_affected"` // acres, ≥ 0
	DamageDescription string    `json:"damage_description"`

	FormData ClaimForm `json:"claim_form_data"`

	EvidencePhotos    []EvidencePhoto  `json:"evidence_photos"`
	AttachedDocuments []DocumentRecord `json:"attached_documents"`

	Status           ClaimStatus `json:"status"`
	Deadline         *time.Time  `json:"deadline,omitempty"`
	IsWithinDeadline bool        `json:"is_within_deadline"`

	AdminNotes      string     `json:"admin_notes"`
	RejectionReason string     `json:"rejection_reason"`
	VerifiedBy      string     `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewClaimCode generates a human-readable claim code: current year plus five
// random digits. Uniqueness is enforced by the store, which regenerates on
// collision.
func NewClaimCode() string {
	return fmt.Sprintf("CLM-%d-%05d", clock.Now().Year(), rand.IntN(100000))
}

// CalamityDate truncates a timestamp to its UTC civil date (midnight UTC).
func CalamityDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// BeforeSave fills derived fields; the store calls it on every create and
// update. The claim code and deadline are set exactly once — the deadline is
// midnight of the calamity date plus 72 hours and is never recomputed.
// IsWithinDeadline is refreshed against the clock on every save, including
// saves after submission.
func (c *InsuranceClaim) BeforeSave() {
	now := clock.Now()
	if c.ClaimCode == "" {
		c.ClaimCode = NewClaimCode()
	}
	if c.Deadline == nil && !c.DateOfCalamity.IsZero() {
		deadline := CalamityDate(c.DateOfCalamity).Add(DeadlineWindow)
		c.Deadline = &deadline
	}
	if c.Deadline != nil {
		c.IsWithinDeadline = !now.After(*c.Deadline)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// HoursRemaining returns hours until the deadline, rounded to one decimal and
// floored at zero. Zero when no deadline is set.
func (c *InsuranceClaim) HoursRemaining() float64 {
	if c.Deadline == nil {
		return 0
	}
	hours := c.Deadline.Sub(clock.Now()).Hours()
	return math.Max(0, math.Round(hours*10)/10)
}

// DeadlineExpired reports whether the deadline has passed. False when no
// deadline is set.
func (c *InsuranceClaim) DeadlineExpired() bool {
	if c.Deadline == nil {
		return false
	}
	return clock.Now().After(*c.Deadline)
}

// RecomputeReadiness derives the pre-submission status from current evidence
// and document completeness. Readiness is never accumulated: a claim that was
// READY_TO_SUBMIT regresses to DOCUMENTS_PENDING if a vault document has since
// disappeared. Statuses from SUBMITTED onward are owned by the admin flow and
// are left alone.
func (c *InsuranceClaim) RecomputeReadiness(missing []DocumentType) {
	switch c.Status {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected:
		return
	}

	hasEvidence := len(c.EvidencePhotos) >= 1
	switch {
	case hasEvidence && len(missing) == 0:
		c.Status = StatusReadyToSubmit
	case hasEvidence:
		c.Status = StatusDocumentsPending
	default:
		c.Status = StatusEvidencePending
	}
}

// MarkSubmitted moves the claim to SUBMITTED and stamps the submission time.
// Late submissions are allowed; the deadline flag on the following save
// records that they were late.
func (c *InsuranceClaim) MarkSubmitted() {
	now := clock.Now()
	c.Status = StatusSubmitted
	c.SubmittedAt = &now
	if c.Deadline != nil {
		c.IsWithinDeadline = !now.After(*c.Deadline)
	}
}

// ClaimJSON is the structured claim snapshot embedded in submission results.
// Field names are part of the external contract.
type ClaimJSON struct {
	LossType          LossType    `json:"loss_type"`
	Timestamp         string      `json:"timestamp"`
	SurveyNumber      string      `json:"survey_number"`
	DamageDescription string      `json:"damage_description"`
	ClaimID           string      `json:"claim_id"`
	FarmerID          string      `json:"farmer_id"`
	AreaAffected      float64     `json:"area_affected"`
	DateOfCalamity    string      `json:"date_of_calamity"`
	Deadline          string      `json:"deadline,omitempty"`
	HoursRemaining    float64     `json:"hours_remaining"`
	IsWithinDeadline  bool        `json:"is_within_deadline"`
	Status            ClaimStatus `json:"status"`
	EvidenceCount     int         `json:"evidence_count"`
	DocumentsCount    int         `json:"documents_count"`
}

// Snapshot renders the claim as its external JSON form.
func (c *InsuranceClaim) Snapshot() ClaimJSON {
	timestamp := c.CreatedAt
	if timestamp.IsZero() {
		timestamp = clock.Now()
	}
	out := ClaimJSON{
		LossType:          c.LossType,
		Timestamp:         timestamp.UTC().Format(time.RFC3339),
		SurveyNumber:      c.SurveyNumber,
		DamageDescription: c.DamageDescription,
		ClaimID:           c.ClaimCode,
		FarmerID:          c.FarmerID.String(),
		AreaAffected:      c.AreaAffected,
		DateOfCalamity:    CalamityDate(c.DateOfCalamity).Format("2006-01-02"),
		HoursRemaining:    c.HoursRemaining(),
		IsWithinDeadline:  c.IsWithinDeadline,
		Status:            c.Status,
		EvidenceCount:     len(c.EvidencePhotos),
		DocumentsCount:    len(c.AttachedDocuments),
	}
	if c.Deadline != nil {
		out.Deadline = c.Deadline.UTC().Format(time.RFC3339)
	}
	return out
}
