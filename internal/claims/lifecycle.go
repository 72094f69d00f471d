package claims

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
	"github.com/agrisarthi/crop-claims-service/internal/observability"
)

// CreateClaimInput carries the caller-supplied loss fields for a new claim.
// All fields are optional; the alert fills what the caller leaves blank.
type CreateClaimInput struct {
	LossType          domain.LossType
	AreaAffected      float64
	DamageDescription string
	SurveyNumber      string
}

// EvidenceUpload is one photo to attach as evidence.
type EvidenceUpload struct {
	Filename         string
	Data             []byte
	Latitude         *float64
	Longitude        *float64
	CaptureTimestamp string
}

// AttachResult reports a document-attachment pass.
type AttachResult struct {
	Attached          []domain.DocumentRecord
	Missing           []domain.DocumentType
	DocumentsComplete bool
	Status            domain.ClaimStatus
}

// SubmissionResult is the structured outcome of a successful submission.
// Field names are part of the external contract.
type SubmissionResult struct {
	ClaimID          string             `json:"claim_id"`
	SubmittedAt      string             `json:"submitted_at"` // ISO-8601
	IsWithinDeadline bool               `json:"is_within_deadline"`
	HoursRemaining   float64            `json:"hours_remaining"`
	Status           domain.ClaimStatus `json:"status"`
	ClaimJSON        domain.ClaimJSON   `json:"claim_json"`
}

// Engine owns the claim lifecycle: creation with the auto-filled form,
// evidence upload, document attachment, and submission against the 72-hour
// deadline.
type Engine struct {
	claims   ClaimStore
	vault    DocumentVault
	evidence EvidenceStore
	logger   *slog.Logger
	metrics  *observability.Metrics

	// locks serializes evidence appends per claim; concurrent uploads would
	// otherwise race on the read-modify-write of the photo list. Entries are
	// never evicted; active claims per process stay small.
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewEngine creates a claim lifecycle engine.
func NewEngine(claimStore ClaimStore, vault DocumentVault, evidence EvidenceStore, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		claims:   claimStore,
		vault:    vault,
		evidence: evidence,
		logger:   logger,
		metrics:  metrics,
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// Create builds a claim with its frozen auto-filled form and saves it in
// EVIDENCE_PENDING. Loss type resolution: explicit input, else the alert's
// type, else "other". The calamity date comes from the alert's trigger date,
// else today; the store's save hook derives the deadline from it.
func (e *Engine) Create(ctx context.Context, farmer domain.Farmer, alert *domain.WeatherAlert, in CreateClaimInput) (domain.InsuranceClaim, error) {
	lossType := in.LossType
	if lossType == "" {
		if alert != nil {
			lossType = domain.LossType(alert.AlertType)
		}
		if lossType == "" {
			lossType = domain.LossOther
		}
	}

	calamityAt := domain.Now()
	var alertID *uuid.UUID
	if alert != nil {
		calamityAt = alert.TriggeredAt
		id := alert.ID
		alertID = &id
	}

	claim := domain.InsuranceClaim{
		ID:                uuid.New(),
		FarmerID:          farmer.ID,
		AlertID:           alertID,
		LossType:          lossType,
		DateOfCalamity:    domain.CalamityDate(calamityAt),
		SurveyNumber:      in.SurveyNumber,
		AreaAffected:      in.AreaAffected,
		DamageDescription: in.DamageDescription,
		FormData:          domain.ComposeClaimForm(farmer, alert),
		Status:            domain.StatusEvidencePending,
	}

	if err := e.claims.CreateClaim(ctx, &claim); err != nil {
		return domain.InsuranceClaim{}, fmt.Errorf("create claim: %w", err)
	}

	e.metrics.ClaimsCreated.Inc()
	e.logger.Info("claim created",
		"claim_id", claim.ID,
		"claim_code", claim.ClaimCode,
		"farmer_id", farmer.ID,
		"loss_type", lossType,
		"deadline", claim.Deadline,
	)
	return claim, nil
}

// AddEvidence stores one photo and appends its record to the claim. The photo
// number is 1-based and equals the prior count plus one. Status does not
// change here — only attach-documents recomputes readiness — but the save
// refreshes the deadline flag. A failed storage write commits nothing.
func (e *Engine) AddEvidence(ctx context.Context, farmerID, claimID uuid.UUID, upload EvidenceUpload) (domain.EvidencePhoto, int, error) {
	lock := e.claimLock(claimID)
	lock.Lock()
	defer lock.Unlock()

	claim, err := e.claims.GetClaim(ctx, claimID, farmerID)
	if err != nil {
		return domain.EvidencePhoto{}, 0, err
	}

	number := len(claim.EvidencePhotos) + 1
	filename := fmt.Sprintf("claims/%s/evidence_%d.%s", claim.ClaimCode, number, fileExt(upload.Filename))

	url, err := e.evidence.Store(ctx, farmerID, filename, upload.Data)
	if err != nil {
		e.metrics.EvidenceUploads.WithLabelValues("error").Inc()
		return domain.EvidencePhoto{}, 0, fmt.Errorf("%w: %s", domain.ErrUploadFailed, err)
	}

	photo := domain.EvidencePhoto{
		URL:              url,
		Filename:         filename,
		UploadedAt:       domain.Now(),
		PhotoNumber:      number,
		Latitude:         upload.Latitude,
		Longitude:        upload.Longitude,
		CaptureTimestamp: upload.CaptureTimestamp,
	}
	claim.EvidencePhotos = append(claim.EvidencePhotos, photo)

	if err := e.claims.UpdateClaim(ctx, &claim); err != nil {
		return domain.EvidencePhoto{}, 0, fmt.Errorf("save evidence record: %w", err)
	}

	e.metrics.EvidenceUploads.WithLabelValues("success").Inc()
	e.logger.Info("evidence uploaded", "claim_code", claim.ClaimCode, "photo_number", number)
	return photo, len(claim.EvidencePhotos), nil
}

// AttachDocuments pulls the required document types from the farmer's vault
// and recomputes readiness from scratch. Attachment is idempotent; it can
// also regress a READY_TO_SUBMIT claim whose vault lost a document since the
// last pass.
func (e *Engine) AttachDocuments(ctx context.Context, farmerID, claimID uuid.UUID) (AttachResult, error) {
	claim, err := e.claims.GetClaim(ctx, claimID, farmerID)
	if err != nil {
		return AttachResult{}, err
	}

	found, missing, err := e.vault.FetchRequired(ctx, farmerID, domain.RequiredDocumentTypes)
	if err != nil {
		return AttachResult{}, fmt.Errorf("fetch vault documents: %w", err)
	}

	claim.AttachedDocuments = found
	claim.RecomputeReadiness(missing)

	if err := e.claims.UpdateClaim(ctx, &claim); err != nil {
		return AttachResult{}, fmt.Errorf("save attachments: %w", err)
	}

	e.logger.Info("documents attached",
		"claim_code", claim.ClaimCode,
		"attached", len(found),
		"missing", len(missing),
		"status", claim.Status,
	)
	return AttachResult{
		Attached:          found,
		Missing:           missing,
		DocumentsComplete: len(missing) == 0,
		Status:            claim.Status,
	}, nil
}

// Submit validates the submission gates and moves the claim to SUBMITTED.
// The gate is deliberately weaker than READY_TO_SUBMIT: at least one photo
// and at least one attached document, not the full required set. Submitting
// after the deadline succeeds with is_within_deadline=false; enforcement is
// advisory.
func (e *Engine) Submit(ctx context.Context, farmerID, claimID uuid.UUID) (SubmissionResult, error) {
	claim, err := e.claims.GetClaim(ctx, claimID, farmerID)
	if err != nil {
		return SubmissionResult{}, err
	}

	if len(claim.EvidencePhotos) < 1 {
		e.metrics.SubmissionRejections.WithLabelValues(domain.StepEvidence).Inc()
		return SubmissionResult{}, &domain.SubmissionIncompleteError{
			Step:    domain.StepEvidence,
			Message: "at least 1 evidence photo is required",
		}
	}
	if len(claim.AttachedDocuments) < 1 {
		e.metrics.SubmissionRejections.WithLabelValues(domain.StepDocuments).Inc()
		return SubmissionResult{}, &domain.SubmissionIncompleteError{
			Step:    domain.StepDocuments,
			Message: "required documents must be attached",
		}
	}

	claim.MarkSubmitted()
	if err := e.claims.UpdateClaim(ctx, &claim); err != nil {
		return SubmissionResult{}, fmt.Errorf("save submission: %w", err)
	}

	e.metrics.ClaimsSubmitted.WithLabelValues(strconv.FormatBool(claim.IsWithinDeadline)).Inc()
	e.logger.Info("claim submitted",
		"claim_code", claim.ClaimCode,
		"within_deadline", claim.IsWithinDeadline,
		"hours_remaining", claim.HoursRemaining(),
	)

	var submittedAt string
	if claim.SubmittedAt != nil {
		submittedAt = claim.SubmittedAt.UTC().Format(time.RFC3339)
	}
	return SubmissionResult{
		ClaimID:          claim.ClaimCode,
		SubmittedAt:      submittedAt,
		IsWithinDeadline: claim.IsWithinDeadline,
		HoursRemaining:   claim.HoursRemaining(),
		Status:           claim.Status,
		ClaimJSON:        claim.Snapshot(),
	}, nil
}

// Get returns a farmer's claim by ID.
func (e *Engine) Get(ctx context.Context, farmerID, claimID uuid.UUID) (domain.InsuranceClaim, error) {
	return e.claims.GetClaim(ctx, claimID, farmerID)
}

// List returns all of a farmer's claims, newest first.
func (e *Engine) List(ctx context.Context, farmerID uuid.UUID) ([]domain.InsuranceClaim, error) {
	return e.claims.ListClaims(ctx, farmerID)
}

func (e *Engine) claimLock(claimID uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[claimID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[claimID] = lock
	}
	return lock
}

// fileExt returns the lowercase extension without the dot, defaulting to jpg.
func fileExt(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return "jpg"
	}
	return strings.ToLower(filename[idx+1:])
}
