package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantflow/internal/dossier/models"
	"grantflow/internal/dossier/store"
	"grantflow/internal/platform/blob"
	id "grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
	audit "grantflow/pkg/platform/audit"
	auditmemory "grantflow/pkg/platform/audit/store/memory"
	"grantflow/pkg/platform/audit/publisher"
	"grantflow/pkg/requestcontext"
)

type testEnv struct {
	service *Service
	store   *store.InMemoryStore
	blobs   *blob.InMemoryStore
	audits  *auditmemory.InMemoryStore
	ctx     context.Context
	userID  id.UserID
	now     time.Time
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	dossiers := store.NewInMemoryStore()
	blobs := blob.NewInMemoryStore()
	audits := auditmemory.NewInMemoryStore()
	pub := publisher.NewPublisher(audits)
	t.Cleanup(pub.Close)

	opts = append([]Option{WithAuditPublisher(pub)}, opts...)
	svc := New(dossiers, blobs, opts...)

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	userID, err := id.ParseUserID("5f2b0c9e-3a41-4c7d-9d6a-1b2c3d4e5f60")
	require.NoError(t, err)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithUserID(ctx, userID)

	return &testEnv{service: svc, store: dossiers, blobs: blobs, audits: audits, ctx: ctx, userID: userID, now: now}
}

func (e *testEnv) createDossier(t *testing.T, callID string) *models.Dossier {
	t.Helper()
	d, err := e.service.CreateDossier(e.ctx, CreateDossierRequest{
		OrganizationID:  id.NewOrganizationID(),
		Kind:            models.KindApplication,
		Title:           "Modernizare ferma",
		CallID:          callID,
		BudgetEstimated: decimal.NewFromInt(100_000),
	})
	require.NoError(t, err)
	return d
}

func (e *testEnv) auditActions(t *testing.T, dossierID id.DossierID) []string {
	t.Helper()
	events, err := e.audits.ListByDossier(context.Background(), dossierID)
	require.NoError(t, err)
	actions := make([]string, 0, len(events))
	for _, ev := range events {
		actions = append(actions, ev.Action)
	}
	return actions
}

func TestCreateDossierWithCall(t *testing.T) {
	env := newTestEnv(t)

	d := env.createDossier(t, "afir-sm6-4-2025")

	assert.Equal(t, models.PhaseCallSelected, d.Status)
	assert.Equal(t, "Sesiune aleasă", d.StatusLabel)
	assert.Equal(t, "sM6.4-2025", d.CallCode)
	assert.Equal(t, "sM6.4", d.MeasureCode)
	assert.Equal(t, "AFIR", d.ProgramName)
	assert.Equal(t, int64(1), d.Version)
	require.Len(t, d.History, 2)
	assert.Nil(t, d.History[0].From)
	assert.Equal(t, models.PhaseCallSelected, d.History[1].To)
	assert.Equal(t, env.userID.String(), d.History[1].By)

	assert.Contains(t, env.auditActions(t, d.ID), string(audit.EventDossierCreated))
}

func TestCreateDossierUnknownCall(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CreateDossier(env.ctx, CreateDossierRequest{
		OrganizationID: id.NewOrganizationID(),
		Kind:           models.KindApplication,
		Title:          "Modernizare ferma",
		CallID:         "no-such-call",
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestTransition(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "")
	require.Equal(t, models.PhaseDraft, d.Status)

	updated, err := env.service.Transition(env.ctx, d.ID, d.Version, models.PhaseCallSelected, "call chosen")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCallSelected, updated.Status)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "Sesiune aleasă", updated.StatusLabel)

	assert.Contains(t, env.auditActions(t, d.ID), string(audit.EventPhaseTransitioned))
}

func TestTransitionStaleVersion(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "")

	_, err := env.service.Transition(env.ctx, d.ID, d.Version+5, models.PhaseCallSelected, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeVersionConflict))
}

func TestTransitionZeroExpectedVersionConflicts(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "")

	// A zero expected version must never pass as "skip the check".
	_, err := env.service.Transition(env.ctx, d.ID, 0, models.PhaseCallSelected, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeVersionConflict))

	current, err := env.service.GetDossier(env.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseDraft, current.Status)
	assert.Equal(t, d.Version, current.Version)
}

func TestTransitionRejectedByGraph(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "")

	_, err := env.service.Transition(env.ctx, d.ID, d.Version, models.PhaseSubmitted, "skipping ahead")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	// The rejection itself leaves an audit trace.
	assert.Contains(t, env.auditActions(t, d.ID), string(audit.EventTransitionRejected))

	current, err := env.service.GetDossier(env.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseDraft, current.Status)
	assert.Equal(t, d.Version, current.Version)
}

func TestUploadGuideAutoAdvances(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "afir-sm6-4-2025")

	updated, err := env.service.UploadGuide(env.ctx, d.ID, d.Version, UploadGuideRequest{
		Filename:    "ghid-sm64.pdf",
		Tip:         "ghid",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4 ghid"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.PhaseGuideReady, updated.Status)
	require.Len(t, updated.GuideAssets, 1)
	assert.Equal(t, "ghid-sm64.pdf", updated.GuideAssets[0].Filename)

	last := updated.History[len(updated.History)-1]
	assert.Equal(t, models.SystemActor, last.By)
	assert.Equal(t, "guide uploaded", last.Reason)

	content, contentType, err := env.blobs.Get(context.Background(), updated.GuideAssets[0].FileRef)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 ghid"), content)
	assert.Equal(t, "application/pdf", contentType)
}

func TestUploadGuideDoesNotAdvanceOutsideCallSelected(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "")
	require.Equal(t, models.PhaseDraft, d.Status)

	updated, err := env.service.UploadGuide(env.ctx, d.ID, d.Version, UploadGuideRequest{
		Filename: "ghid.pdf",
		Content:  []byte("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PhaseDraft, updated.Status)
	assert.Len(t, updated.GuideAssets, 1)
}

func TestFreezeChecklistIdempotent(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "")

	frozen, err := env.service.FreezeChecklist(env.ctx, d.ID, d.Version)
	require.NoError(t, err)
	assert.True(t, frozen.ChecklistFrozen)
	assert.Equal(t, d.Version+1, frozen.Version)

	again, err := env.service.FreezeChecklist(env.ctx, d.ID, frozen.Version)
	require.NoError(t, err)
	assert.True(t, again.ChecklistFrozen)
	assert.Equal(t, frozen.Version, again.Version, "repeat freeze must not burn a version")
}

func TestAddRequiredDocumentAfterFreeze(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "")

	frozen, err := env.service.FreezeChecklist(env.ctx, d.ID, d.Version)
	require.NoError(t, err)

	_, _, err = env.service.AddRequiredDocument(env.ctx, d.ID, frozen.Version, AddRequiredDocumentRequest{
		OfficialName: "Cerere de finanțare",
		FolderGroup:  models.FolderDepunere,
		Required:     true,
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeChecklistFrozen))
}

func TestUploadDocumentSatisfiesChecklist(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "")

	withEntry, entry, err := env.service.AddRequiredDocument(env.ctx, d.ID, d.Version, AddRequiredDocumentRequest{
		OfficialName: "Cerere de finanțare",
		FolderGroup:  models.FolderDepunere,
		Required:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, entry.OrderIndex)
	assert.Equal(t, models.RequiredDocumentPending, entry.Status)

	updated, doc, err := env.service.UploadDocument(env.ctx, d.ID, withEntry.Version, UploadDocumentRequest{
		Filename:    "cerere.pdf",
		ContentType: "application/pdf",
		FolderGroup: models.FolderDepunere,
		Content:     []byte("%PDF cerere"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentUploaded, doc.Status)
	require.Len(t, updated.RequiredDocuments, 1)
	assert.Equal(t, models.RequiredDocumentUploaded, updated.RequiredDocuments[0].Status)
}

func TestUploadDocumentUnknownFolderGroup(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "")

	_, _, err := env.service.UploadDocument(env.ctx, d.ID, d.Version, UploadDocumentRequest{
		Filename:    "x.pdf",
		FolderGroup: "altceva",
		Content:     []byte("x"),
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownFolderGroup))
}

func TestDeleteDocumentFlipsChecklistBack(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "")

	withEntry, _, err := env.service.AddRequiredDocument(env.ctx, d.ID, d.Version, AddRequiredDocumentRequest{
		OfficialName: "Plan de afaceri",
		FolderGroup:  models.FolderDepunere,
		Required:     true,
	})
	require.NoError(t, err)

	withDoc, doc, err := env.service.UploadDocument(env.ctx, d.ID, withEntry.Version, UploadDocumentRequest{
		Filename:    "plan.pdf",
		FolderGroup: models.FolderDepunere,
		Content:     []byte("plan"),
	})
	require.NoError(t, err)
	require.Equal(t, models.RequiredDocumentUploaded, withDoc.RequiredDocuments[0].Status)

	afterDelete, err := env.service.DeleteDocument(env.ctx, d.ID, withDoc.Version, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, afterDelete.Documents)
	assert.Equal(t, models.RequiredDocumentPending, afterDelete.RequiredDocuments[0].Status)

	_, _, err = env.blobs.Get(context.Background(), doc.FileRef)
	require.Error(t, err, "blob content removed with the record")
}

func TestApplyOCRResultSkipsVersionCheck(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "")

	withDoc, doc, err := env.service.UploadDocument(env.ctx, d.ID, d.Version, UploadDocumentRequest{
		Filename:    "act.pdf",
		FolderGroup: models.FolderAchizitii,
		Content:     []byte("act"),
	})
	require.NoError(t, err)

	// The dossier moves on while the OCR callback is in flight.
	moved, err := env.service.Transition(env.ctx, d.ID, withDoc.Version, models.PhaseCallSelected, "")
	require.NoError(t, err)

	updated, err := env.service.ApplyOCRResult(env.ctx, d.ID, doc.ID, models.OCRResult{
		Status: models.OCRCompleted,
		Fields: map[string]string{"cui": "RO123456"},
	})
	require.NoError(t, err)
	assert.Equal(t, moved.Version+1, updated.Version)
	require.NotNil(t, updated.Documents[0].OCR)
	assert.Equal(t, models.OCRCompleted, updated.Documents[0].OCR.Status)
	assert.Equal(t, "RO123456", updated.Documents[0].OCR.Fields["cui"])
}

func TestAddProcurementItemValidation(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "")

	_, err := env.service.AddProcurementItem(env.ctx, d.ID, d.Version, AddProcurementItemRequest{
		Description: "   ",
		Amount:      decimal.NewFromInt(10),
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = env.service.AddProcurementItem(env.ctx, d.ID, d.Version, AddProcurementItemRequest{
		Description: "Tractor",
		Amount:      decimal.NewFromInt(-5),
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	updated, err := env.service.AddProcurementItem(env.ctx, d.ID, d.Version, AddProcurementItemRequest{
		Description: "Tractor",
		Category:    "utilaje",
		Amount:      decimal.NewFromInt(85_000),
	})
	require.NoError(t, err)
	require.Len(t, updated.Procurement, 1)
	assert.Equal(t, "Tractor", updated.Procurement[0].Description)
}

func TestHistoryIsOrdered(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDossier(t, "afir-sm6-4-2025")

	guideReady, err := env.service.UploadGuide(env.ctx, d.ID, d.Version, UploadGuideRequest{Filename: "ghid.pdf", Content: []byte("g")})
	require.NoError(t, err)
	_, err = env.service.Transition(env.ctx, d.ID, guideReady.Version, models.PhasePreeligibility, "next step")
	require.NoError(t, err)

	history, err := env.service.History(env.ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, models.PhaseDraft, history[0].To)
	assert.Equal(t, models.PhaseCallSelected, history[1].To)
	assert.Equal(t, models.PhaseGuideReady, history[2].To)
	assert.Equal(t, models.PhasePreeligibility, history[3].To)
}
