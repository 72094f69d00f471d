package claims

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
	"github.com/agrisarthi/crop-claims-service/internal/observability"
)

type fakeClaimStore struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]domain.InsuranceClaim
	frozen bool
}

func newFakeClaimStore() *fakeClaimStore {
	return &fakeClaimStore{byID: make(map[uuid.UUID]domain.InsuranceClaim)}
}

func (f *fakeClaimStore) CreateClaim(ctx context.Context, claim *domain.InsuranceClaim) error {
	claim.BeforeSave()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[claim.ID] = *claim
	return nil
}

func (f *fakeClaimStore) UpdateClaim(ctx context.Context, claim *domain.InsuranceClaim) error {
	claim.BeforeSave()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[claim.ID] = *claim
	return nil
}

func (f *fakeClaimStore) GetClaim(ctx context.Context, id, farmerID uuid.UUID) (domain.InsuranceClaim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claim, ok := f.byID[id]
	if !ok || claim.FarmerID != farmerID {
		return domain.InsuranceClaim{}, domain.ErrClaimNotFound
	}
	return claim, nil
}

func (f *fakeClaimStore) ListClaims(ctx context.Context, farmerID uuid.UUID) ([]domain.InsuranceClaim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.InsuranceClaim
	for _, c := range f.byID {
		if c.FarmerID == farmerID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeVault struct {
	docs map[domain.DocumentType]domain.DocumentRecord
	err  error
}

func (f *fakeVault) FetchRequired(ctx context.Context, farmerID uuid.UUID, types []domain.DocumentType) ([]domain.DocumentRecord, []domain.DocumentType, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	var found []domain.DocumentRecord
	var missing []domain.DocumentType
	for _, dt := range types {
		if rec, ok := f.docs[dt]; ok {
			found = append(found, rec)
		} else {
			missing = append(missing, dt)
		}
	}
	return found, missing, nil
}

type fakeEvidenceStore struct {
	mu     sync.Mutex
	stored map[string][]byte
	err    error
}

func newFakeEvidenceStore() *fakeEvidenceStore {
	return &fakeEvidenceStore{stored: make(map[string][]byte)}
}

func (f *fakeEvidenceStore) Store(ctx context.Context, farmerID uuid.UUID, path string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[path] = data
	return "/media/" + path, nil
}

func fullVault() *fakeVault {
	docs := make(map[domain.DocumentType]domain.DocumentRecord)
	for _, dt := range domain.RequiredDocumentTypes {
		docs[dt] = domain.DocumentRecord{DocumentType: dt, URL: "/vault/" + string(dt) + ".pdf"}
	}
	return &fakeVault{docs: docs}
}

func newTestEngine(store ClaimStore, vault DocumentVault, evidence EvidenceStore) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(store, vault, evidence, logger, observability.NewMetricsForTesting())
}

func frozenClockAt(t *testing.T, at time.Time) *clockwork.FakeClock {
	t.Helper()
	fake := clockwork.NewFakeClockAt(at)
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(clockwork.NewRealClock()) })
	return fake
}

func TestEngineCreate(t *testing.T) {
	checkedAt := time.Date(2026, 6, 10, 14, 30, 0, 0, time.UTC)
	frozenClockAt(t, checkedAt)

	farmer := testFarmer()

	t.Run("from alert", func(t *testing.T) {
		store := newFakeClaimStore()
		engine := newTestEngine(store, fullVault(), newFakeEvidenceStore())

		alert := domain.WeatherAlert{
			ID:          uuid.New(),
			FarmerID:    farmer.ID,
			AlertType:   domain.AlertFlood,
			Severity:    domain.SeverityCritical,
			Triggered:   true,
			TriggeredAt: checkedAt,
			Snapshot:    domain.WeatherSnapshot{PrecipMM: 130, ConditionText: "Torrential rain"},
		}

		claim, err := engine.Create(context.Background(), farmer, &alert, CreateClaimInput{
			AreaAffected:      1.5,
			DamageDescription: "standing water across the paddy field",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.LossFlood, claim.LossType)
		assert.Equal(t, domain.StatusEvidencePending, claim.Status)
		require.NotNil(t, claim.AlertID)
		assert.Equal(t, alert.ID, *claim.AlertID)
		assert.Regexp(t, `^CLM-2026-\d{5}$`, claim.ClaimCode)

		require.NotNil(t, claim.Deadline)
		assert.Equal(t, time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC), *claim.Deadline)
		assert.True(t, claim.IsWithinDeadline)

		assert.Equal(t, "flood", claim.FormData.LossDetails.LossType)
		assert.Equal(t, farmer.Name, claim.FormData.FarmerDetails.Name)
	})

	t.Run("explicit loss type overrides alert", func(t *testing.T) {
		store := newFakeClaimStore()
		engine := newTestEngine(store, fullVault(), newFakeEvidenceStore())

		alert := domain.WeatherAlert{ID: uuid.New(), FarmerID: farmer.ID, AlertType: domain.AlertFlood, TriggeredAt: checkedAt}
		claim, err := engine.Create(context.Background(), farmer, &alert, CreateClaimInput{LossType: domain.LossHailstorm})
		require.NoError(t, err)
		assert.Equal(t, domain.LossHailstorm, claim.LossType)
	})

	t.Run("without alert defaults to other and today", func(t *testing.T) {
		store := newFakeClaimStore()
		engine := newTestEngine(store, fullVault(), newFakeEvidenceStore())

		claim, err := engine.Create(context.Background(), farmer, nil, CreateClaimInput{})
		require.NoError(t, err)

		assert.Equal(t, domain.LossOther, claim.LossType)
		assert.Nil(t, claim.AlertID)
		assert.Equal(t, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), claim.DateOfCalamity)
		require.NotNil(t, claim.Deadline)
		assert.Equal(t, time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC), *claim.Deadline)
	})
}

func TestEngineAddEvidence(t *testing.T) {
	frozenClockAt(t, time.Date(2026, 6, 10, 15, 0, 0, 0, time.UTC))
	farmer := testFarmer()

	setup := func(t *testing.T) (*Engine, *fakeClaimStore, *fakeEvidenceStore, domain.InsuranceClaim) {
		store := newFakeClaimStore()
		evidence := newFakeEvidenceStore()
		engine := newTestEngine(store, fullVault(), evidence)
		claim, err := engine.Create(context.Background(), farmer, nil, CreateClaimInput{})
		require.NoError(t, err)
		return engine, store, evidence, claim
	}

	t.Run("sequential numbering and paths", func(t *testing.T) {
		engine, _, evidence, claim := setup(t)

		photo1, total, err := engine.AddEvidence(context.Background(), farmer.ID, claim.ID, EvidenceUpload{
			Filename: "damage.JPG",
			Data:     []byte("img1"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, photo1.PhotoNumber)
		assert.Equal(t, 1, total)
		assert.Equal(t, "claims/"+claim.ClaimCode+"/evidence_1.jpg", photo1.Filename)
		assert.Equal(t, "/media/claims/"+claim.ClaimCode+"/evidence_1.jpg", photo1.URL)

		photo2, total, err := engine.AddEvidence(context.Background(), farmer.ID, claim.ID, EvidenceUpload{
			Filename: "field.png",
			Data:     []byte("img2"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, photo2.PhotoNumber)
		assert.Equal(t, 2, total)
		assert.Equal(t, "claims/"+claim.ClaimCode+"/evidence_2.png", photo2.Filename)

		assert.Contains(t, evidence.stored, photo1.Filename)
		assert.Contains(t, evidence.stored, photo2.Filename)
	})

	t.Run("extension defaults to jpg", func(t *testing.T) {
		engine, _, _, claim := setup(t)
		photo, _, err := engine.AddEvidence(context.Background(), farmer.ID, claim.ID, EvidenceUpload{
			Filename: "photo-no-extension",
			Data:     []byte("img"),
		})
		require.NoError(t, err)
		assert.Equal(t, "claims/"+claim.ClaimCode+"/evidence_1.jpg", photo.Filename)
	})

	t.Run("status unchanged by upload", func(t *testing.T) {
		engine, store, _, claim := setup(t)
		_, _, err := engine.AddEvidence(context.Background(), farmer.ID, claim.ID, EvidenceUpload{Filename: "a.jpg"})
		require.NoError(t, err)
		saved, err := store.GetClaim(context.Background(), claim.ID, farmer.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusEvidencePending, saved.Status)
	})

	t.Run("storage failure commits nothing", func(t *testing.T) {
		store := newFakeClaimStore()
		evidence := &fakeEvidenceStore{err: errors.New("disk full")}
		engine := newTestEngine(store, fullVault(), evidence)
		claim, err := engine.Create(context.Background(), farmer, nil, CreateClaimInput{})
		require.NoError(t, err)

		_, _, err = engine.AddEvidence(context.Background(), farmer.ID, claim.ID, EvidenceUpload{Filename: "a.jpg"})
		assert.ErrorIs(t, err, domain.ErrUploadFailed)

		saved, err := store.GetClaim(context.Background(), claim.ID, farmer.ID)
		require.NoError(t, err)
		assert.Empty(t, saved.EvidencePhotos)
	})

	t.Run("concurrent uploads never share a number", func(t *testing.T) {
		engine, store, _, claim := setup(t)

		const n = 8
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := engine.AddEvidence(context.Background(), farmer.ID, claim.ID, EvidenceUpload{
					Filename: "burst.jpg",
					Data:     []byte("img"),
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		saved, err := store.GetClaim(context.Background(), claim.ID, farmer.ID)
		require.NoError(t, err)
		require.Len(t, saved.EvidencePhotos, n)
		seen := make(map[int]bool)
		for _, p := range saved.EvidencePhotos {
			assert.False(t, seen[p.PhotoNumber], "duplicate photo number %d", p.PhotoNumber)
			seen[p.PhotoNumber] = true
		}
	})

	t.Run("wrong farmer", func(t *testing.T) {
		engine, _, _, claim := setup(t)
		_, _, err := engine.AddEvidence(context.Background(), uuid.New(), claim.ID, EvidenceUpload{Filename: "a.jpg"})
		assert.ErrorIs(t, err, domain.ErrClaimNotFound)
	})
}

func TestEngineAttachDocuments(t *testing.T) {
	frozenClockAt(t, time.Date(2026, 6, 10, 15, 0, 0, 0, time.UTC))
	farmer := testFarmer()

	createWithEvidence := func(t *testing.T, engine *Engine) domain.InsuranceClaim {
		claim, err := engine.Create(context.Background(), farmer, nil, CreateClaimInput{})
		require.NoError(t, err)
		_, _, err = engine.AddEvidence(context.Background(), farmer.ID, claim.ID, EvidenceUpload{Filename: "a.jpg"})
		require.NoError(t, err)
		return claim
	}

	t.Run("complete vault reaches ready", func(t *testing.T) {
		store := newFakeClaimStore()
		engine := newTestEngine(store, fullVault(), newFakeEvidenceStore())
		claim := createWithEvidence(t, engine)

		result, err := engine.AttachDocuments(context.Background(), farmer.ID, claim.ID)
		require.NoError(t, err)

		assert.True(t, result.DocumentsComplete)
		assert.Len(t, result.Attached, len(domain.RequiredDocumentTypes))
		assert.Empty(t, result.Missing)
		assert.Equal(t, domain.StatusReadyToSubmit, result.Status)
	})

	t.Run("partial vault stays documents pending", func(t *testing.T) {
		vault := fullVault()
		delete(vault.docs, domain.DocSevenTwelve)
		store := newFakeClaimStore()
		engine := newTestEngine(store, vault, newFakeEvidenceStore())
		claim := createWithEvidence(t, engine)

		result, err := engine.AttachDocuments(context.Background(), farmer.ID, claim.ID)
		require.NoError(t, err)

		assert.False(t, result.DocumentsComplete)
		assert.Equal(t, []domain.DocumentType{domain.DocSevenTwelve}, result.Missing)
		assert.Equal(t, domain.StatusDocumentsPending, result.Status)
	})

	t.Run("without evidence stays evidence pending", func(t *testing.T) {
		store := newFakeClaimStore()
		engine := newTestEngine(store, fullVault(), newFakeEvidenceStore())
		claim, err := engine.Create(context.Background(), farmer, nil, CreateClaimInput{})
		require.NoError(t, err)

		result, err := engine.AttachDocuments(context.Background(), farmer.ID, claim.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusEvidencePending, result.Status)
	})

	t.Run("reattach with unchanged vault is idempotent", func(t *testing.T) {
		store := newFakeClaimStore()
		engine := newTestEngine(store, fullVault(), newFakeEvidenceStore())
		claim := createWithEvidence(t, engine)

		first, err := engine.AttachDocuments(context.Background(), farmer.ID, claim.ID)
		require.NoError(t, err)
		second, err := engine.AttachDocuments(context.Background(), farmer.ID, claim.ID)
		require.NoError(t, err)

		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.Attached, second.Attached)
		assert.Equal(t, first.Missing, second.Missing)
		assert.Equal(t, first.DocumentsComplete, second.DocumentsComplete)
	})

	t.Run("reattach after vault loss regresses status", func(t *testing.T) {
		vault := fullVault()
		store := newFakeClaimStore()
		engine := newTestEngine(store, vault, newFakeEvidenceStore())
		claim := createWithEvidence(t, engine)

		result, err := engine.AttachDocuments(context.Background(), farmer.ID, claim.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusReadyToSubmit, result.Status)

		delete(vault.docs, domain.DocAadhaar)
		result, err = engine.AttachDocuments(context.Background(), farmer.ID, claim.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDocumentsPending, result.Status)
		assert.Equal(t, []domain.DocumentType{domain.DocAadhaar}, result.Missing)
	})

	t.Run("vault error", func(t *testing.T) {
		store := newFakeClaimStore()
		engine := newTestEngine(store, &fakeVault{err: errors.New("vault offline")}, newFakeEvidenceStore())
		claim := createWithEvidence(t, engine)

		_, err := engine.AttachDocuments(context.Background(), farmer.ID, claim.ID)
		assert.Error(t, err)
	})
}

func TestEngineSubmit(t *testing.T) {
	calamity := time.Date(2026, 6, 10, 14, 0, 0, 0, time.UTC)
	farmer := testFarmer()

	ready := func(t *testing.T, engine *Engine) domain.InsuranceClaim {
		t.Helper()
		claim, err := engine.Create(context.Background(), farmer, nil, CreateClaimInput{})
		require.NoError(t, err)
		_, _, err = engine.AddEvidence(context.Background(), farmer.ID, claim.ID, EvidenceUpload{Filename: "a.jpg"})
		require.NoError(t, err)
		_, err = engine.AttachDocuments(context.Background(), farmer.ID, claim.ID)
		require.NoError(t, err)
		return claim
	}

	t.Run("within deadline", func(t *testing.T) {
		fake := frozenClockAt(t, calamity)
		store := newFakeClaimStore()
		engine := newTestEngine(store, fullVault(), newFakeEvidenceStore())
		claim := ready(t, engine)

		fake.Advance(30 * time.Hour)
		result, err := engine.Submit(context.Background(), farmer.ID, claim.ID)
		require.NoError(t, err)

		assert.Equal(t, claim.ClaimCode, result.ClaimID)
		assert.Equal(t, domain.StatusSubmitted, result.Status)
		assert.True(t, result.IsWithinDeadline)
		assert.InDelta(t, 28.0, result.HoursRemaining, 0.01)
		assert.Equal(t, domain.StatusSubmitted, result.ClaimJSON.Status)
		assert.Equal(t, 1, result.ClaimJSON.EvidenceCount)
	})

	t.Run("late submission succeeds flagged", func(t *testing.T) {
		fake := frozenClockAt(t, calamity)
		store := newFakeClaimStore()
		engine := newTestEngine(store, fullVault(), newFakeEvidenceStore())
		claim := ready(t, engine)

		fake.Advance(100 * time.Hour)
		result, err := engine.Submit(context.Background(), farmer.ID, claim.ID)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusSubmitted, result.Status)
		assert.False(t, result.IsWithinDeadline)
		assert.Equal(t, 0.0, result.HoursRemaining)
	})

	t.Run("no evidence blocks at evidence step", func(t *testing.T) {
		frozenClockAt(t, calamity)
		store := newFakeClaimStore()
		engine := newTestEngine(store, fullVault(), newFakeEvidenceStore())
		claim, err := engine.Create(context.Background(), farmer, nil, CreateClaimInput{})
		require.NoError(t, err)

		_, err = engine.Submit(context.Background(), farmer.ID, claim.ID)
		var incomplete *domain.SubmissionIncompleteError
		require.ErrorAs(t, err, &incomplete)
		assert.Equal(t, domain.StepEvidence, incomplete.Step)

		saved, err := store.GetClaim(context.Background(), claim.ID, farmer.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusEvidencePending, saved.Status)
	})

	t.Run("no documents blocks at documents step", func(t *testing.T) {
		frozenClockAt(t, calamity)
		store := newFakeClaimStore()
		engine := newTestEngine(store, fullVault(), newFakeEvidenceStore())
		claim, err := engine.Create(context.Background(), farmer, nil, CreateClaimInput{})
		require.NoError(t, err)
		_, _, err = engine.AddEvidence(context.Background(), farmer.ID, claim.ID, EvidenceUpload{Filename: "a.jpg"})
		require.NoError(t, err)

		_, err = engine.Submit(context.Background(), farmer.ID, claim.ID)
		var incomplete *domain.SubmissionIncompleteError
		require.ErrorAs(t, err, &incomplete)
		assert.Equal(t, domain.StepDocuments, incomplete.Step)
	})

	t.Run("one attached document is enough", func(t *testing.T) {
		frozenClockAt(t, calamity)
		vault := fullVault()
		delete(vault.docs, domain.DocAadhaar)
		delete(vault.docs, domain.DocBankPassbook)
		delete(vault.docs, domain.DocLandCert)
		store := newFakeClaimStore()
		engine := newTestEngine(store, vault, newFakeEvidenceStore())
		claim, err := engine.Create(context.Background(), farmer, nil, CreateClaimInput{})
		require.NoError(t, err)
		_, _, err = engine.AddEvidence(context.Background(), farmer.ID, claim.ID, EvidenceUpload{Filename: "a.jpg"})
		require.NoError(t, err)
		attach, err := engine.AttachDocuments(context.Background(), farmer.ID, claim.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusDocumentsPending, attach.Status)

		result, err := engine.Submit(context.Background(), farmer.ID, claim.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmitted, result.Status)
	})
}
