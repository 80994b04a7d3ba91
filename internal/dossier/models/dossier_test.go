package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
)

func newTestDossier(t *testing.T) *Dossier {
	t.Helper()
	d, err := NewDossier(id.NewDossierID(), id.NewOrganizationID(), KindApplication,
		"Modernizare ferma", "", "user-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return d
}

func TestNewDossier(t *testing.T) {
	d := newTestDossier(t)

	assert.Equal(t, PhaseDraft, d.Status)
	assert.Equal(t, "Ciornă", d.StatusLabel)
	assert.Equal(t, int64(1), d.Version)
	assert.False(t, d.ChecklistFrozen)
	assert.Len(t, d.FolderGroups, 4)

	require.Len(t, d.History, 1)
	assert.Nil(t, d.History[0].From)
	assert.Equal(t, PhaseDraft, d.History[0].To)
	assert.Equal(t, "user-1", d.History[0].By)
}

func TestNewDossierValidation(t *testing.T) {
	now := time.Now().UTC()

	_, err := NewDossier(id.NewDossierID(), id.NewOrganizationID(), KindApplication, "", "", "u", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = NewDossier(id.NewDossierID(), id.OrganizationID{}, KindApplication, "t", "", "u", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = NewDossier(id.NewDossierID(), id.NewOrganizationID(), "bogus", "t", "", "u", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestTransitions(t *testing.T) {
	now := time.Now().UTC()

	t.Run("declared edge succeeds and appends history", func(t *testing.T) {
		d := newTestDossier(t)
		require.NoError(t, d.CanTransitionTo(PhaseCallSelected))
		d.ApplyTransition(PhaseCallSelected, "apel ales", "user-1", now)

		assert.Equal(t, PhaseCallSelected, d.Status)
		assert.Equal(t, "Sesiune aleasă", d.StatusLabel)
		require.Len(t, d.History, 2)
		last := d.History[1]
		require.NotNil(t, last.From)
		assert.Equal(t, PhaseDraft, *last.From)
		assert.Equal(t, PhaseCallSelected, last.To)
		assert.Equal(t, "apel ales", last.Reason)
	})

	t.Run("jump over intermediate phase is rejected", func(t *testing.T) {
		d := newTestDossier(t)
		err := d.CanTransitionTo(PhaseGuideReady)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		assert.Equal(t, PhaseDraft, d.Status)
		assert.Len(t, d.History, 1)
	})

	t.Run("undeclared phase is rejected", func(t *testing.T) {
		d := newTestDossier(t)
		err := d.CanTransitionTo(PhaseArhivat)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	t.Run("current phase is rejected", func(t *testing.T) {
		d := newTestDossier(t)
		err := d.CanTransitionTo(PhaseDraft)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func TestRequiredDocumentOrdering(t *testing.T) {
	d := newTestDossier(t)
	now := time.Now().UTC()

	require.NoError(t, d.CanAddRequiredDocument("Cerere de finanțare", FolderDepunere))
	a := d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Cerere de finanțare", FolderDepunere, true, "", now)
	b := d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Plan de afaceri", FolderDepunere, true, "cap. 3", now)
	c := d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Certificat fiscal", FolderContractare, true, "", now)

	assert.Equal(t, 1, a.OrderIndex)
	assert.Equal(t, 2, b.OrderIndex)
	assert.Equal(t, 3, c.OrderIndex)

	// Removing the middle entry leaves the remaining indexes untouched and
	// the next insert continues past the historical maximum.
	require.NoError(t, d.CanRemoveRequiredDocument(b.ID))
	d.ApplyRequiredDocumentRemoval(b.ID, now)
	next := d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Declarație pe proprie răspundere", FolderDepunere, false, "", now)
	assert.Equal(t, 4, next.OrderIndex)

	indexes := make([]int, 0, len(d.RequiredDocuments))
	for _, rd := range d.RequiredDocuments {
		indexes = append(indexes, rd.OrderIndex)
	}
	assert.Equal(t, []int{1, 3, 4}, indexes)
}

func TestRequiredDocumentValidation(t *testing.T) {
	d := newTestDossier(t)

	err := d.CanAddRequiredDocument("", FolderDepunere)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	err = d.CanAddRequiredDocument("Aviz", "09_inexistent")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownFolderGroup))

	err = d.CanRemoveRequiredDocument(id.NewRequiredDocumentID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestFreezeIsMonotonic(t *testing.T) {
	d := newTestDossier(t)
	now := time.Now().UTC()
	d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Cerere", FolderDepunere, true, "", now)

	assert.True(t, d.ApplyFreeze(now))
	assert.False(t, d.ApplyFreeze(now), "second freeze is an idempotent no-op")
	assert.True(t, d.ChecklistFrozen)

	err := d.CanAddRequiredDocument("Aviz", FolderDepunere)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeChecklistFrozen))
	err = d.CanRemoveRequiredDocument(d.RequiredDocuments[0].ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeChecklistFrozen))
}

func uploadedDoc(folderGroup string) UploadedDocument {
	return UploadedDocument{
		ID:          id.NewDocumentID(),
		Filename:    "scan.pdf",
		FileRef:     "blob://scan.pdf",
		FileSize:    1024,
		FolderGroup: folderGroup,
		Status:      DocumentUploaded,
		UploadedAt:  time.Now().UTC(),
		UploadedBy:  "user-1",
	}
}

func TestChecklistMatching(t *testing.T) {
	now := time.Now().UTC()

	t.Run("upload satisfies every entry in the folder", func(t *testing.T) {
		d := newTestDossier(t)
		d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Cerere", FolderDepunere, true, "", now)
		d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Plan", FolderDepunere, true, "", now)
		d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Certificat", FolderContractare, true, "", now)

		require.NoError(t, d.CanAttachDocument(FolderDepunere))
		d.ApplyDocument(uploadedDoc(FolderDepunere), now)

		assert.Equal(t, RequiredDocumentUploaded, d.RequiredDocuments[0].Status)
		assert.Equal(t, RequiredDocumentUploaded, d.RequiredDocuments[1].Status)
		assert.Equal(t, RequiredDocumentPending, d.RequiredDocuments[2].Status)

		uploaded, total := d.ChecklistProgress()
		assert.Equal(t, 2, uploaded)
		assert.Equal(t, 3, total)
	})

	t.Run("status survives while another document remains", func(t *testing.T) {
		d := newTestDossier(t)
		d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Cerere", FolderDepunere, true, "", now)

		first := uploadedDoc(FolderDepunere)
		second := uploadedDoc(FolderDepunere)
		d.ApplyDocument(first, now)
		d.ApplyDocument(second, now)
		assert.Equal(t, RequiredDocumentUploaded, d.RequiredDocuments[0].Status)

		require.NoError(t, d.CanRemoveDocument(first.ID))
		d.ApplyDocumentRemoval(first.ID, now)
		assert.Equal(t, RequiredDocumentUploaded, d.RequiredDocuments[0].Status)

		d.ApplyDocumentRemoval(second.ID, now)
		assert.Equal(t, RequiredDocumentPending, d.RequiredDocuments[0].Status)
	})

	t.Run("draft-status documents do not satisfy entries", func(t *testing.T) {
		d := newTestDossier(t)
		d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Cerere", FolderDepunere, true, "", now)

		doc := uploadedDoc(FolderDepunere)
		doc.Status = DocumentDraft
		d.ApplyDocument(doc, now)
		assert.Equal(t, RequiredDocumentPending, d.RequiredDocuments[0].Status)
	})

	t.Run("matching keeps working after freeze", func(t *testing.T) {
		d := newTestDossier(t)
		d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Cerere", FolderDepunere, true, "", now)
		d.ApplyFreeze(now)

		d.ApplyDocument(uploadedDoc(FolderDepunere), now)
		assert.Equal(t, RequiredDocumentUploaded, d.RequiredDocuments[0].Status)
	})

	t.Run("entry added after upload starts satisfied", func(t *testing.T) {
		d := newTestDossier(t)
		d.ApplyDocument(uploadedDoc(FolderDepunere), now)
		entry := d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Cerere", FolderDepunere, true, "", now)
		assert.Equal(t, RequiredDocumentUploaded, entry.Status)
	})
}

func TestCanAttachDocumentRejectsUnknownFolder(t *testing.T) {
	d := newTestDossier(t)
	err := d.CanAttachDocument("99_necunoscut")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownFolderGroup))
}

func TestApplyOCRResult(t *testing.T) {
	d := newTestDossier(t)
	now := time.Now().UTC()
	doc := uploadedDoc(FolderDepunere)
	d.ApplyDocument(doc, now)

	first := OCRResult{Status: OCRPending}
	require.NoError(t, d.ApplyOCRResult(doc.ID, first, now))

	second := OCRResult{
		Status:      OCRCompleted,
		Fields:      map[string]string{"cui": "RO123456"},
		Confidences: map[string]float64{"cui": 0.97},
	}
	require.NoError(t, d.ApplyOCRResult(doc.ID, second, now))

	require.NotNil(t, d.Documents[0].OCR)
	assert.Equal(t, OCRCompleted, d.Documents[0].OCR.Status)
	assert.Equal(t, "RO123456", d.Documents[0].OCR.Fields["cui"])

	err := d.ApplyOCRResult(id.NewDocumentID(), first, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestApplyDraftMirrorsDocument(t *testing.T) {
	d := newTestDossier(t)
	now := time.Now().UTC()
	d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Cerere", FolderDepunere, true, "", now)

	draftID := id.NewDraftID()
	mirrored := uploadedDoc(FolderDepunere)
	mirrored.DraftID = &draftID
	d.ApplyDraft(Draft{ID: draftID, TemplateID: "plan_afaceri", Status: "generated", CreatedAt: now, CreatedBy: "user-1"}, mirrored, now)

	assert.Len(t, d.Drafts, 1)
	assert.Len(t, d.Documents, 1)
	assert.Equal(t, RequiredDocumentUploaded, d.RequiredDocuments[0].Status)
}

func TestCloneIsDeep(t *testing.T) {
	d := newTestDossier(t)
	now := time.Now().UTC()
	d.ApplyRequiredDocument(id.NewRequiredDocumentID(), "Cerere", FolderDepunere, true, "", now)
	doc := uploadedDoc(FolderDepunere)
	d.ApplyDocument(doc, now)
	require.NoError(t, d.ApplyOCRResult(doc.ID, OCRResult{Status: OCRCompleted, Fields: map[string]string{"cui": "RO1"}}, now))

	clone := d.Clone()
	clone.ApplyTransition(PhaseCallSelected, "r", "u", now)
	clone.RequiredDocuments[0].OfficialName = "changed"
	clone.Documents[0].OCR.Fields["cui"] = "RO2"

	assert.Equal(t, PhaseDraft, d.Status)
	assert.Len(t, d.History, 1)
	assert.Equal(t, "Cerere", d.RequiredDocuments[0].OfficialName)
	assert.Equal(t, "RO1", d.Documents[0].OCR.Fields["cui"])
}
