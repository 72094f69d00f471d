package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrisarthi/crop-claims-service/internal/claims"
	"github.com/agrisarthi/crop-claims-service/internal/domain"
)

// maxEvidenceBytes caps a single evidence photo upload.
const maxEvidenceBytes = 10 << 20

// ClaimsController serves the claim lifecycle endpoints.
type ClaimsController struct {
	recorder *claims.Recorder
	engine   *claims.Engine
	logger   *slog.Logger
}

func NewClaimsController(recorder *claims.Recorder, engine *claims.Engine, logger *slog.Logger) *ClaimsController {
	return &ClaimsController{recorder: recorder, engine: engine, logger: logger}
}

type createClaimRequest struct {
	AlertID           string  `json:"alert_id"`
	LossType          string  `json:"loss_type"`
	AreaAffected      float64 `json:"area_affected"`
	DamageDescription string  `json:"damage_description"`
	SurveyNumber      string  `json:"survey_number"`
}

// Create files a new claim, optionally linked to a weather alert.
// POST /api/claims/create
func (cc *ClaimsController) Create(c *gin.Context) {
	var req createClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	farmer := currentFarmer(c)

	var alert *domain.WeatherAlert
	if req.AlertID != "" {
		alertID, err := uuid.Parse(req.AlertID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid alert_id")
			return
		}
		found, err := cc.recorder.Alert(c.Request.Context(), farmer.ID, alertID)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		alert = &found
	}

	claim, err := cc.engine.Create(c.Request.Context(), farmer, alert, claims.CreateClaimInput{
		LossType:          domain.LossType(req.LossType),
		AreaAffected:      req.AreaAffected,
		DamageDescription: req.DamageDescription,
		SurveyNumber:      req.SurveyNumber,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Claim created with auto-filled form. Complete the remaining steps before the deadline.", gin.H{
		"claim": claim,
		"next_steps": []string{
			"Upload at least one geotagged photo of the crop damage",
			"Attach the required documents from your document vault",
			"Submit the claim before the 72-hour deadline",
		},
		"hours_remaining": claim.HoursRemaining(),
	})
}

// List returns the farmer's claims plus a status summary.
// GET /api/claims
func (cc *ClaimsController) List(c *gin.Context) {
	farmer := currentFarmer(c)

	list, err := cc.engine.List(c.Request.Context(), farmer.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if list == nil {
		list = []domain.InsuranceClaim{}
	}

	respondOK(c, http.StatusOK, "Claims retrieved", gin.H{
		"claims":        list,
		"status_counts": statusCounts(list),
	})
}

// Get returns one claim with its deadline countdown.
// GET /api/claims/:id
func (cc *ClaimsController) Get(c *gin.Context) {
	claimID, ok := claimIDParam(c)
	if !ok {
		return
	}
	farmer := currentFarmer(c)

	claim, err := cc.engine.Get(c.Request.Context(), farmer.ID, claimID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Claim retrieved", gin.H{
		"claim":            claim,
		"hours_remaining":  claim.HoursRemaining(),
		"deadline_expired": claim.DeadlineExpired(),
	})
}

// UploadEvidence attaches one photo to the claim.
// POST /api/claims/:id/upload-evidence (multipart: photo, latitude,
// longitude, capture_timestamp)
func (cc *ClaimsController) UploadEvidence(c *gin.Context) {
	claimID, ok := claimIDParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "photo file is required")
		return
	}
	if fileHeader.Size > maxEvidenceBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "photo exceeds the 10MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read photo")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read photo")
		return
	}

	upload := claims.EvidenceUpload{
		Filename:         fileHeader.Filename,
		Data:             data,
		CaptureTimestamp: c.PostForm("capture_timestamp"),
	}
	if lat, ok := parseCoord(c.PostForm("latitude")); ok {
		upload.Latitude = &lat
	}
	if lon, ok := parseCoord(c.PostForm("longitude")); ok {
		upload.Longitude = &lon
	}

	farmer := currentFarmer(c)
	photo, total, err := cc.engine.AddEvidence(c.Request.Context(), farmer.ID, claimID, upload)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Evidence photo uploaded", gin.H{
		"photo":        photo,
		"total_photos": total,
	})
}

// AttachDocuments pulls required documents from the farmer's vault.
// POST /api/claims/:id/attach-documents
func (cc *ClaimsController) AttachDocuments(c *gin.Context) {
	claimID, ok := claimIDParam(c)
	if !ok {
		return
	}
	farmer := currentFarmer(c)

	result, err := cc.engine.AttachDocuments(c.Request.Context(), farmer.ID, claimID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	message := "All required documents attached"
	if !result.DocumentsComplete {
		message = "Some required documents are missing from your vault"
	}
	if result.Missing == nil {
		result.Missing = []domain.DocumentType{}
	}
	respondOK(c, http.StatusOK, message, gin.H{
		"attached_documents": result.Attached,
		"missing_documents":  result.Missing,
		"documents_complete": result.DocumentsComplete,
		"status":             result.Status,
	})
}

// Submit finalizes the claim for the insurer.
// POST /api/claims/:id/submit
func (cc *ClaimsController) Submit(c *gin.Context) {
	claimID, ok := claimIDParam(c)
	if !ok {
		return
	}
	farmer := currentFarmer(c)

	result, err := cc.engine.Submit(c.Request.Context(), farmer.ID, claimID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	message := "Claim submitted within the deadline"
	if !result.IsWithinDeadline {
		message = "Claim submitted after the 72-hour deadline; processing may be delayed"
	}
	respondOK(c, http.StatusOK, message, result)
}

func claimIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid claim ID")
		return uuid.UUID{}, false
	}
	return id, true
}

func parseCoord(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func statusCounts(list []domain.InsuranceClaim) gin.H {
	counts := map[domain.ClaimStatus]int{}
	for _, claim := range list {
		counts[claim.Status]++
	}
	return gin.H{
		"total":             len(list),
		"draft":             counts[domain.StatusDraft],
		"evidence_pending":  counts[domain.StatusEvidencePending],
		"documents_pending": counts[domain.StatusDocumentsPending],
		"ready_to_submit":   counts[domain.StatusReadyToSubmit],
		"submitted":         counts[domain.StatusSubmitted],
		"under_review":      counts[domain.StatusUnderReview],
		"approved":          counts[domain.StatusApproved],
		"rejected":          counts[domain.StatusRejected],
	}
}
