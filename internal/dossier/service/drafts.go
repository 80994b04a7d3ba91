package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"grantflow/internal/catalog"
	"grantflow/internal/collaborator"
	"grantflow/internal/dossier/models"
	id "grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
	audit "grantflow/pkg/platform/audit"
	"grantflow/pkg/requestcontext"
)

// GenerateDraftRequest asks for one generated narrative document.
type GenerateDraftRequest struct {
	TemplateID string
	Context    map[string]string
}

// GenerateDraft calls the drafting collaborator against a catalog template,
// stores the rendered PDF, and records the draft on the dossier. The draft is
// mirrored as an uploaded document in the submission folder so checklist
// matching sees it.
func (s *Service) GenerateDraft(ctx context.Context, dossierID id.DossierID, expectedVersion int64, req GenerateDraftRequest) (*models.Dossier, models.Draft, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.GenerateDraft")
	defer span.End()

	template, ok := catalog.TemplateByID(req.TemplateID)
	if !ok {
		return nil, models.Draft{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown draft template %q", req.TemplateID)
	}
	if s.drafter == nil {
		return nil, models.Draft{}, dErrors.New(dErrors.CodeCollaboratorError, "drafting service is not configured")
	}
	if !s.draftingBreaker.Allow() {
		return nil, models.Draft{}, dErrors.New(dErrors.CodeCollaboratorError, "drafting service is unavailable")
	}

	now := requestcontext.Now(ctx)
	actor := actorFrom(ctx)

	callCtx, cancel := s.collaboratorCtx(ctx)
	defer cancel()
	result, err := s.drafter.GenerateDraft(callCtx, collaborator.DraftRequest{
		DossierID:  dossierID.String(),
		TemplateID: template.ID,
		Context:    req.Context,
	})
	s.recordCollaboratorOutcome(ctx, s.draftingBreaker, err)
	if err != nil {
		return nil, models.Draft{}, mapCollaboratorErr(err, "drafting")
	}

	filename := template.ID + ".pdf"
	pdfRef, err := s.blobs.Put(ctx, filename, "application/pdf", result.PDF)
	if err != nil {
		return nil, models.Draft{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store draft pdf")
	}

	draft := models.Draft{
		ID:            id.NewDraftID(),
		TemplateID:    template.ID,
		TemplateLabel: template.Label,
		Content:       result.Content,
		PDFRef:        pdfRef,
		Status:        "generated",
		CreatedAt:     now,
		CreatedBy:     actor,
	}
	mirrored := models.UploadedDocument{
		ID:           id.NewDocumentID(),
		Filename:     filename,
		FileRef:      pdfRef,
		FileSize:     int64(len(result.PDF)),
		ContentType:  "application/pdf",
		FolderGroup:  models.FolderDepunere,
		DeclaredType: template.ID,
		Status:       models.DocumentUploaded,
		DraftID:      &draft.ID,
		UploadedAt:   now,
		UploadedBy:   actor,
	}

	updated, err := s.dossiers.Execute(ctx, dossierID, expectedVersion, func(d *models.Dossier) error {
		if err := d.CanAttachDocument(models.FolderDepunere); err != nil {
			return err
		}
		d.ApplyDraft(draft, mirrored, now)
		return nil
	})
	if err != nil {
		s.noteExecuteErr(err)
		_ = s.blobs.Delete(ctx, pdfRef)
		return nil, models.Draft{}, err
	}

	if s.metrics != nil {
		s.metrics.IncrementDocumentUploaded()
	}
	s.logAudit(ctx, audit.EventDraftGenerated, dossierID, template.Label, "")
	return updated, draft, nil
}

// AddProcurementItemRequest describes one budget line.
type AddProcurementItemRequest struct {
	Description string
	Category    string
	Amount      decimal.Decimal
}

// AddProcurementItem appends a procurement line to the dossier budget.
func (s *Service) AddProcurementItem(ctx context.Context, dossierID id.DossierID, expectedVersion int64, req AddProcurementItemRequest) (*models.Dossier, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.AddProcurementItem")
	defer span.End()

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "procurement description must not be empty")
	}
	if req.Amount.IsNegative() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "procurement amount must not be negative")
	}

	now := requestcontext.Now(ctx)
	item := models.ProcurementLineItem{
		ID:          uuid.NewString(),
		Description: description,
		Category:    req.Category,
		Amount:      req.Amount,
		CreatedAt:   now,
	}

	updated, err := s.dossiers.Execute(ctx, dossierID, expectedVersion, func(d *models.Dossier) error {
		d.ApplyProcurementItem(item, now)
		return nil
	})
	if err != nil {
		s.noteExecuteErr(err)
		return nil, err
	}

	s.logAudit(ctx, audit.EventProcurementItemAdded, dossierID, description, "")
	return updated, nil
}
