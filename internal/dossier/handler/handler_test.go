package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantflow/internal/dossier/models"
	"grantflow/internal/dossier/service"
	"grantflow/internal/dossier/store"
	"grantflow/internal/platform/blob"
	"grantflow/internal/platform/middleware"
	id "grantflow/pkg/domain"
)

func newDossierRouter(t *testing.T) chi.Router {
	t.Helper()
	svc := service.New(store.NewInMemoryStore(), blob.NewInMemoryStore(),
		service.WithLogger(slog.New(slog.DiscardHandler)))

	router := chi.NewRouter()
	router.Use(middleware.RequestMeta)
	New(svc, slog.New(slog.DiscardHandler)).Register(router)
	NewCatalog().Register(router)
	return router
}

func doJSON(t *testing.T, router chi.Router, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createDossier(t *testing.T, router chi.Router, callID string) models.Dossier {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/dossiers", map[string]any{
		"organization_id": id.NewOrganizationID().String(),
		"kind":            "application",
		"title":           "Modernizare ferma",
		"call_id":         callID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var d models.Dossier
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&d))
	return d
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestCreateDossier(t *testing.T) {
	router := newDossierRouter(t)

	d := createDossier(t, router, "afir-sm6-4-2025")
	assert.Equal(t, models.PhaseCallSelected, d.Status)
	assert.Equal(t, "Sesiune aleasă", d.StatusLabel)
	assert.Equal(t, int64(1), d.Version)
	assert.Len(t, d.FolderGroups, 4)
}

func TestCreateDossierRejectsBadKind(t *testing.T) {
	router := newDossierRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/dossiers", map[string]any{
		"organization_id": id.NewOrganizationID().String(),
		"kind":            "portfolio",
		"title":           "X",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", errorCode(t, rec))
}

func TestGetDossierNotFound(t *testing.T) {
	router := newDossierRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/dossiers/"+id.NewDossierID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransitionEndpoint(t *testing.T) {
	router := newDossierRouter(t)
	d := createDossier(t, router, "")

	rec := doJSON(t, router, http.MethodPost, "/dossiers/"+d.ID.String()+"/transition", map[string]any{
		"target":           "call_selected",
		"reason":           "call chosen",
		"expected_version": d.Version,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Dossier
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, models.PhaseCallSelected, updated.Status)
	assert.Equal(t, d.Version+1, updated.Version)
}

func TestTransitionRejectedAndConflict(t *testing.T) {
	router := newDossierRouter(t)
	d := createDossier(t, router, "")

	rec := doJSON(t, router, http.MethodPost, "/dossiers/"+d.ID.String()+"/transition", map[string]any{
		"target":           "submitted",
		"expected_version": d.Version,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_transition", errorCode(t, rec))

	rec = doJSON(t, router, http.MethodPost, "/dossiers/"+d.ID.String()+"/transition", map[string]any{
		"target":           "call_selected",
		"expected_version": d.Version + 7,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "version_conflict", errorCode(t, rec))
}

func TestTransitionRejectsMissingExpectedVersion(t *testing.T) {
	router := newDossierRouter(t)
	d := createDossier(t, router, "")

	// Omitting expected_version decodes as zero and must be rejected before
	// it reaches the store.
	rec := doJSON(t, router, http.MethodPost, "/dossiers/"+d.ID.String()+"/transition", map[string]any{
		"target": "call_selected",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", errorCode(t, rec))

	current := doJSON(t, router, http.MethodGet, "/dossiers/"+d.ID.String(), nil)
	var unchanged models.Dossier
	require.NoError(t, json.NewDecoder(current.Body).Decode(&unchanged))
	assert.Equal(t, models.PhaseDraft, unchanged.Status)
	assert.Equal(t, d.Version, unchanged.Version)
}

func TestChecklistFreezeFlow(t *testing.T) {
	router := newDossierRouter(t)
	d := createDossier(t, router, "")

	rec := doJSON(t, router, http.MethodPost, "/dossiers/"+d.ID.String()+"/required-documents", map[string]any{
		"official_name":    "Cerere de finanțare",
		"folder_group":     "depunere",
		"required":         true,
		"expected_version": d.Version,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var addResp struct {
		Dossier models.Dossier          `json:"dossier"`
		Entry   models.RequiredDocument `json:"entry"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&addResp))
	assert.Equal(t, 1, addResp.Entry.OrderIndex)

	rec = doJSON(t, router, http.MethodPost, "/dossiers/"+d.ID.String()+"/checklist/freeze", map[string]any{
		"expected_version": addResp.Dossier.Version,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var frozen models.Dossier
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&frozen))
	assert.True(t, frozen.ChecklistFrozen)

	rec = doJSON(t, router, http.MethodPost, "/dossiers/"+d.ID.String()+"/required-documents", map[string]any{
		"official_name":    "Plan de afaceri",
		"folder_group":     "depunere",
		"expected_version": frozen.Version,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "checklist_frozen", errorCode(t, rec))
}

func TestDocumentLifecycle(t *testing.T) {
	router := newDossierRouter(t)
	d := createDossier(t, router, "")

	rec := doJSON(t, router, http.MethodPost, "/dossiers/"+d.ID.String()+"/documents", map[string]any{
		"filename":         "cerere.pdf",
		"content_type":     "application/pdf",
		"folder_group":     "depunere",
		"content":          []byte("%PDF cerere"),
		"expected_version": d.Version,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var uploadResp struct {
		Dossier  models.Dossier          `json:"dossier"`
		Document models.UploadedDocument `json:"document"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&uploadResp))
	assert.Equal(t, models.DocumentUploaded, uploadResp.Document.Status)

	// Deletes carry the expected version as a query parameter.
	deletePath := fmt.Sprintf("/dossiers/%s/documents/%s", d.ID, uploadResp.Document.ID)
	rec = doJSON(t, router, http.MethodDelete, deletePath, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("%s?expected_version=%d", deletePath, uploadResp.Dossier.Version), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var afterDelete models.Dossier
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&afterDelete))
	assert.Empty(t, afterDelete.Documents)
}

func TestDocumentUploadUnknownFolderGroup(t *testing.T) {
	router := newDossierRouter(t)
	d := createDossier(t, router, "")

	rec := doJSON(t, router, http.MethodPost, "/dossiers/"+d.ID.String()+"/documents", map[string]any{
		"filename":         "x.pdf",
		"folder_group":     "altceva",
		"content":          []byte("x"),
		"expected_version": d.Version,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_folder_group", errorCode(t, rec))
}

func TestOCRCallbackEndpoint(t *testing.T) {
	router := newDossierRouter(t)
	d := createDossier(t, router, "")

	rec := doJSON(t, router, http.MethodPost, "/dossiers/"+d.ID.String()+"/documents", map[string]any{
		"filename":         "act.pdf",
		"folder_group":     "achizitii",
		"content":          []byte("act"),
		"expected_version": d.Version,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var uploadResp struct {
		Document models.UploadedDocument `json:"document"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&uploadResp))

	path := fmt.Sprintf("/dossiers/%s/documents/%s/ocr-result", d.ID, uploadResp.Document.ID)
	rec = doJSON(t, router, http.MethodPost, path, map[string]any{
		"status": "completed",
		"fields": map[string]string{"cui": "RO123"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Dossier
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	require.NotNil(t, updated.Documents[0].OCR)
	assert.Equal(t, models.OCRCompleted, updated.Documents[0].OCR.Status)
}

func TestReportEndpoint(t *testing.T) {
	router := newDossierRouter(t)
	d := createDossier(t, router, "afir-sm6-4-2025")

	rec := doJSON(t, router, http.MethodGet, "/dossiers/"+d.ID.String()+"/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, d.ID, report.DossierID)
	assert.Len(t, report.Checks, 7)
}

func TestExportManifestEndpoint(t *testing.T) {
	router := newDossierRouter(t)
	d := createDossier(t, router, "")

	rec := doJSON(t, router, http.MethodGet, "/dossiers/"+d.ID.String()+"/export/manifest", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var manifest models.Manifest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&manifest))
	assert.Equal(t, "Modernizare ferma", manifest.Title)
	assert.Len(t, manifest.Folders, 4)
}

func TestProposeWithoutExtractor(t *testing.T) {
	router := newDossierRouter(t)
	d := createDossier(t, router, "")

	rec := doJSON(t, router, http.MethodPost, "/dossiers/"+d.ID.String()+"/required-documents/propose", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "collaborator_error", errorCode(t, rec))
}

func TestListDossiersScopedByOrganization(t *testing.T) {
	router := newDossierRouter(t)
	first := createDossier(t, router, "")
	createDossier(t, router, "")

	rec := doJSON(t, router, http.MethodGet, "/dossiers?organization_id="+first.OrganizationID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Dossiers []models.Dossier `json:"dossiers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listResp))
	require.Len(t, listResp.Dossiers, 1)
	assert.Equal(t, first.ID, listResp.Dossiers[0].ID)
}

func TestListDossiersRequiresOrganization(t *testing.T) {
	router := newDossierRouter(t)
	createDossier(t, router, "")

	rec := doJSON(t, router, http.MethodGet, "/dossiers", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", errorCode(t, rec))
}

func TestStatesEndpoint(t *testing.T) {
	router := newDossierRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/states/application", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var graph struct {
		Kind   string                          `json:"kind"`
		Phases []models.Phase                  `json:"phases"`
		Labels map[models.Phase]string         `json:"labels"`
		Edges  map[models.Phase][]models.Phase `json:"edges"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&graph))
	assert.Len(t, graph.Phases, 13)
	assert.Equal(t, "Ciornă", graph.Labels[models.PhaseDraft])
	assert.Empty(t, graph.Edges[models.PhaseMonitoring])

	rec = doJSON(t, router, http.MethodGet, "/states/portfolio", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	router := newDossierRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/catalog/programs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var programsResp struct {
		Programs []struct {
			ID string `json:"id"`
		} `json:"programs"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&programsResp))
	assert.NotEmpty(t, programsResp.Programs)

	rec = doJSON(t, router, http.MethodGet, "/catalog/programs/afir/measures", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/catalog/programs/nope/measures", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/catalog/measures/afir-sm6-4/calls", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/catalog/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
