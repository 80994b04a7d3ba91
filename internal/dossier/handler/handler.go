// Package handler exposes the dossier API over HTTP. Handlers decode and
// validate the wire format, then delegate to the service; domain errors map
// to status codes in one place (pkg/platform/httputil).
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"grantflow/internal/dossier/models"
	"grantflow/internal/dossier/service"
	id "grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
	"grantflow/pkg/platform/httputil"
	"grantflow/pkg/requestcontext"
)

// Service is the dossier operation surface the handler depends on.
type Service interface {
	CreateDossier(ctx context.Context, req service.CreateDossierRequest) (*models.Dossier, error)
	GetDossier(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error)
	ListDossiers(ctx context.Context, orgID id.OrganizationID) ([]*models.Dossier, error)
	Transition(ctx context.Context, dossierID id.DossierID, expectedVersion int64, target models.Phase, reason string) (*models.Dossier, error)
	History(ctx context.Context, dossierID id.DossierID) ([]models.HistoryEntry, error)

	AddRequiredDocument(ctx context.Context, dossierID id.DossierID, expectedVersion int64, req service.AddRequiredDocumentRequest) (*models.Dossier, models.RequiredDocument, error)
	RemoveRequiredDocument(ctx context.Context, dossierID id.DossierID, expectedVersion int64, entryID id.RequiredDocumentID) (*models.Dossier, error)
	FreezeChecklist(ctx context.Context, dossierID id.DossierID, expectedVersion int64) (*models.Dossier, error)
	ProposeFromGuide(ctx context.Context, dossierID id.DossierID) (models.Proposal, error)

	UploadGuide(ctx context.Context, dossierID id.DossierID, expectedVersion int64, req service.UploadGuideRequest) (*models.Dossier, error)
	UploadDocument(ctx context.Context, dossierID id.DossierID, expectedVersion int64, req service.UploadDocumentRequest) (*models.Dossier, models.UploadedDocument, error)
	DeleteDocument(ctx context.Context, dossierID id.DossierID, expectedVersion int64, docID id.DocumentID) (*models.Dossier, error)
	ApplyOCRResult(ctx context.Context, dossierID id.DossierID, docID id.DocumentID, result models.OCRResult) (*models.Dossier, error)
	RunOCR(ctx context.Context, dossierID id.DossierID, docID id.DocumentID) (*models.Dossier, error)

	GenerateDraft(ctx context.Context, dossierID id.DossierID, expectedVersion int64, req service.GenerateDraftRequest) (*models.Dossier, models.Draft, error)
	AddProcurementItem(ctx context.Context, dossierID id.DossierID, expectedVersion int64, req service.AddProcurementItemRequest) (*models.Dossier, error)

	EvaluateReadiness(ctx context.Context, dossierID id.DossierID) (models.Report, error)
	ExportManifest(ctx context.Context, dossierID id.DossierID) (models.Manifest, error)
}

// Handler handles dossier endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a dossier Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the dossier routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/dossiers", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)

		r.Route("/{dossierID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Post("/transition", h.handleTransition)
			r.Get("/history", h.handleHistory)
			r.Get("/report", h.handleReport)
			r.Get("/export/manifest", h.handleExportManifest)

			r.Post("/guides", h.handleUploadGuide)

			r.Post("/required-documents", h.handleAddRequiredDocument)
			r.Post("/required-documents/propose", h.handlePropose)
			r.Delete("/required-documents/{entryID}", h.handleRemoveRequiredDocument)
			r.Post("/checklist/freeze", h.handleFreeze)

			r.Post("/documents", h.handleUploadDocument)
			r.Delete("/documents/{docID}", h.handleDeleteDocument)
			r.Post("/documents/{docID}/ocr", h.handleRunOCR)
			r.Post("/documents/{docID}/ocr-result", h.handleOCRResult)

			r.Post("/drafts", h.handleGenerateDraft)
			r.Post("/procurement", h.handleAddProcurementItem)
		})
	})
}

func (h *Handler) dossierID(r *http.Request) (id.DossierID, error) {
	return id.ParseDossierID(chi.URLParam(r, "dossierID"))
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

// expectedVersionQuery reads the expected_version query parameter used by
// DELETE routes, which carry no body.
func expectedVersionQuery(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("expected_version")
	if raw == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, "expected_version query parameter is required")
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || version <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "expected_version must be a positive integer")
	}
	return version, nil
}

// expectedVersionBody validates the expected_version field of a mutation
// body. Committed dossiers are never below version 1, so zero (the JSON
// zero value when the field is omitted) is rejected rather than handed to
// the store.
func expectedVersionBody(version int64) (int64, error) {
	if version <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "expected_version must be a positive integer")
	}
	return version, nil
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.WarnContext(r.Context(), msg,
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err.Error())
}

type createDossierRequest struct {
	OrganizationID  string          `json:"organization_id"`
	Kind            string          `json:"kind"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	CallID          string          `json:"call_id"`
	BudgetEstimated decimal.Decimal `json:"budget_estimated"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createDossierRequest
	if err := decodeBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	orgID, err := id.ParseOrganizationID(req.OrganizationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.CreateDossier(r.Context(), service.CreateDossierRequest{
		OrganizationID:  orgID,
		Kind:            models.DossierKind(req.Kind),
		Title:           req.Title,
		Description:     req.Description,
		CallID:          req.CallID,
		BudgetEstimated: req.BudgetEstimated,
	})
	if err != nil {
		h.logError(r, "create dossier failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("organization_id")
	if raw == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "organization_id query parameter is required"))
		return
	}
	orgID, err := id.ParseOrganizationID(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	dossiers, err := h.service.ListDossiers(r.Context(), orgID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"dossiers": dossiers})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := h.service.GetDossier(r.Context(), dossierID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

type transitionRequest struct {
	Target          string `json:"target"`
	Reason          string `json:"reason"`
	ExpectedVersion int64  `json:"expected_version"`
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req transitionRequest
	if err := decodeBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	version, err := expectedVersionBody(req.ExpectedVersion)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.Transition(r.Context(), dossierID, version, models.Phase(req.Target), req.Reason)
	if err != nil {
		h.logError(r, "transition failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	history, err := h.service.History(r.Context(), dossierID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	report, err := h.service.EvaluateReadiness(r.Context(), dossierID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleExportManifest(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	manifest, err := h.service.ExportManifest(r.Context(), dossierID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, manifest)
}

type uploadGuideRequest struct {
	Filename        string `json:"filename"`
	Tip             string `json:"tip"`
	ContentType     string `json:"content_type"`
	Content         []byte `json:"content"`
	ExpectedVersion int64  `json:"expected_version"`
}

func (h *Handler) handleUploadGuide(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req uploadGuideRequest
	if err := decodeBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	version, err := expectedVersionBody(req.ExpectedVersion)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.UploadGuide(r.Context(), dossierID, version, service.UploadGuideRequest{
		Filename:    req.Filename,
		Tip:         req.Tip,
		ContentType: req.ContentType,
		Content:     req.Content,
	})
	if err != nil {
		h.logError(r, "guide upload failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, d)
}

type addRequiredDocumentRequest struct {
	OfficialName    string `json:"official_name"`
	FolderGroup     string `json:"folder_group"`
	Required        bool   `json:"required"`
	GuideReference  string `json:"guide_reference"`
	ExpectedVersion int64  `json:"expected_version"`
}

func (h *Handler) handleAddRequiredDocument(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req addRequiredDocumentRequest
	if err := decodeBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	version, err := expectedVersionBody(req.ExpectedVersion)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, entry, err := h.service.AddRequiredDocument(r.Context(), dossierID, version, service.AddRequiredDocumentRequest{
		OfficialName:   req.OfficialName,
		FolderGroup:    req.FolderGroup,
		Required:       req.Required,
		GuideReference: req.GuideReference,
	})
	if err != nil {
		h.logError(r, "add required document failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"dossier": d, "entry": entry})
}

func (h *Handler) handleRemoveRequiredDocument(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entryID, err := id.ParseRequiredDocumentID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	version, err := expectedVersionQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.RemoveRequiredDocument(r.Context(), dossierID, version, entryID)
	if err != nil {
		h.logError(r, "remove required document failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handlePropose(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	proposal, err := h.service.ProposeFromGuide(r.Context(), dossierID)
	if err != nil {
		h.logError(r, "checklist proposal failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, proposal)
}

type freezeRequest struct {
	ExpectedVersion int64 `json:"expected_version"`
}

func (h *Handler) handleFreeze(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req freezeRequest
	if err := decodeBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	version, err := expectedVersionBody(req.ExpectedVersion)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.FreezeChecklist(r.Context(), dossierID, version)
	if err != nil {
		h.logError(r, "checklist freeze failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

type uploadDocumentRequest struct {
	Filename        string `json:"filename"`
	ContentType     string `json:"content_type"`
	FolderGroup     string `json:"folder_group"`
	DeclaredType    string `json:"declared_type"`
	Content         []byte `json:"content"`
	ExpectedVersion int64  `json:"expected_version"`
}

func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req uploadDocumentRequest
	if err := decodeBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	version, err := expectedVersionBody(req.ExpectedVersion)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, doc, err := h.service.UploadDocument(r.Context(), dossierID, version, service.UploadDocumentRequest{
		Filename:     req.Filename,
		ContentType:  req.ContentType,
		FolderGroup:  req.FolderGroup,
		DeclaredType: req.DeclaredType,
		Content:      req.Content,
	})
	if err != nil {
		h.logError(r, "document upload failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"dossier": d, "document": doc})
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docID, err := id.ParseDocumentID(chi.URLParam(r, "docID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	version, err := expectedVersionQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.DeleteDocument(r.Context(), dossierID, version, docID)
	if err != nil {
		h.logError(r, "document delete failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleRunOCR(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docID, err := id.ParseDocumentID(chi.URLParam(r, "docID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.RunOCR(r.Context(), dossierID, docID)
	if err != nil {
		h.logError(r, "ocr run failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

type ocrResultRequest struct {
	Status      string             `json:"status"`
	Fields      map[string]string  `json:"fields"`
	Confidences map[string]float64 `json:"confidences"`
}

// handleOCRResult is the callback endpoint for asynchronous OCR processing.
// No expected version: results land on whatever state the dossier reached.
func (h *Handler) handleOCRResult(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docID, err := id.ParseDocumentID(chi.URLParam(r, "docID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req ocrResultRequest
	if err := decodeBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.ApplyOCRResult(r.Context(), dossierID, docID, models.OCRResult{
		Status:      models.OCRStatus(req.Status),
		Fields:      req.Fields,
		Confidences: req.Confidences,
	})
	if err != nil {
		h.logError(r, "ocr result store failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

type generateDraftRequest struct {
	TemplateID      string            `json:"template_id"`
	Context         map[string]string `json:"context"`
	ExpectedVersion int64             `json:"expected_version"`
}

func (h *Handler) handleGenerateDraft(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req generateDraftRequest
	if err := decodeBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	version, err := expectedVersionBody(req.ExpectedVersion)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, draft, err := h.service.GenerateDraft(r.Context(), dossierID, version, service.GenerateDraftRequest{
		TemplateID: req.TemplateID,
		Context:    req.Context,
	})
	if err != nil {
		h.logError(r, "draft generation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"dossier": d, "draft": draft})
}

type addProcurementItemRequest struct {
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	ExpectedVersion int64           `json:"expected_version"`
}

func (h *Handler) handleAddProcurementItem(w http.ResponseWriter, r *http.Request) {
	dossierID, err := h.dossierID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req addProcurementItemRequest
	if err := decodeBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	version, err := expectedVersionBody(req.ExpectedVersion)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.AddProcurementItem(r.Context(), dossierID, version, service.AddProcurementItemRequest{
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
	})
	if err != nil {
		h.logError(r, "procurement add failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, d)
}
