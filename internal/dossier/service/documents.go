package service

import (
	"context"

	"github.com/google/uuid"

	"grantflow/internal/collaborator"
	"grantflow/internal/dossier/models"
	"grantflow/internal/dossier/store"
	id "grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
	audit "grantflow/pkg/platform/audit"
	"grantflow/pkg/requestcontext"
)

// UploadGuideRequest carries one applicant's guide or annex upload.
type UploadGuideRequest struct {
	Filename    string
	Tip         string
	ContentType string
	Content     []byte
}

// UploadGuide stores the guide content and attaches the reference to the
// dossier. A dossier sitting in call_selected advances to guide_ready
// automatically, recorded against the system actor.
func (s *Service) UploadGuide(ctx context.Context, dossierID id.DossierID, expectedVersion int64, req UploadGuideRequest) (*models.Dossier, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.UploadGuide")
	defer span.End()

	if req.Filename == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "guide filename must not be empty")
	}

	now := requestcontext.Now(ctx)
	actor := actorFrom(ctx)

	ref, err := s.blobs.Put(ctx, req.Filename, req.ContentType, req.Content)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store guide content")
	}

	autoAdvanced := false
	updated, err := s.dossiers.Execute(ctx, dossierID, expectedVersion, func(d *models.Dossier) error {
		d.ApplyGuideAsset(models.GuideAsset{
			ID:         uuid.NewString(),
			Filename:   req.Filename,
			FileRef:    ref,
			FileSize:   int64(len(req.Content)),
			Tip:        req.Tip,
			UploadedAt: now,
			UploadedBy: actor,
		}, now)
		if d.Status == models.PhaseCallSelected && d.CanTransitionTo(models.PhaseGuideReady) == nil {
			d.ApplyTransition(models.PhaseGuideReady, "guide uploaded", models.SystemActor, now)
			autoAdvanced = true
		}
		return nil
	})
	if err != nil {
		s.noteExecuteErr(err)
		_ = s.blobs.Delete(ctx, ref)
		return nil, err
	}

	s.logAudit(ctx, audit.EventGuideUploaded, dossierID, req.Filename, "")
	if autoAdvanced {
		if s.metrics != nil {
			s.metrics.IncrementTransitionCommitted()
		}
		s.logAudit(ctx, audit.EventPhaseTransitioned, dossierID, string(models.PhaseGuideReady), "guide uploaded")
	}
	return updated, nil
}

// UploadDocumentRequest carries one checklist document upload.
type UploadDocumentRequest struct {
	Filename     string
	ContentType  string
	FolderGroup  string
	DeclaredType string
	Content      []byte
}

// UploadDocument stores the file and attaches a document record in the given
// folder group, recomputing checklist status for that group. When an OCR
// collaborator is wired the record starts with a pending OCR marker;
// processing itself runs through RunOCR or the callback.
func (s *Service) UploadDocument(ctx context.Context, dossierID id.DossierID, expectedVersion int64, req UploadDocumentRequest) (*models.Dossier, models.UploadedDocument, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.UploadDocument")
	defer span.End()

	if req.Filename == "" {
		return nil, models.UploadedDocument{}, dErrors.New(dErrors.CodeInvalidInput, "document filename must not be empty")
	}

	now := requestcontext.Now(ctx)
	actor := actorFrom(ctx)

	ref, err := s.blobs.Put(ctx, req.Filename, req.ContentType, req.Content)
	if err != nil {
		return nil, models.UploadedDocument{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document content")
	}

	doc := models.UploadedDocument{
		ID:           id.NewDocumentID(),
		Filename:     req.Filename,
		FileRef:      ref,
		FileSize:     int64(len(req.Content)),
		ContentType:  req.ContentType,
		FolderGroup:  req.FolderGroup,
		DeclaredType: req.DeclaredType,
		Status:       models.DocumentUploaded,
		UploadedAt:   now,
		UploadedBy:   actor,
	}
	if s.ocr != nil {
		doc.OCR = &models.OCRResult{Status: models.OCRPending}
	}

	updated, err := s.dossiers.Execute(ctx, dossierID, expectedVersion, func(d *models.Dossier) error {
		if err := d.CanAttachDocument(req.FolderGroup); err != nil {
			return err
		}
		d.ApplyDocument(doc, now)
		return nil
	})
	if err != nil {
		s.noteExecuteErr(err)
		_ = s.blobs.Delete(ctx, ref)
		return nil, models.UploadedDocument{}, err
	}

	if s.metrics != nil {
		s.metrics.IncrementDocumentUploaded()
	}
	s.logAudit(ctx, audit.EventDocumentUploaded, dossierID, req.Filename, "")
	return updated, doc, nil
}

// DeleteDocument removes a document record and its stored content. The
// folder's checklist entries recompute, which may flip them back to pending.
func (s *Service) DeleteDocument(ctx context.Context, dossierID id.DossierID, expectedVersion int64, docID id.DocumentID) (*models.Dossier, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.DeleteDocument")
	defer span.End()

	now := requestcontext.Now(ctx)

	var fileRef string
	updated, err := s.dossiers.Execute(ctx, dossierID, expectedVersion, func(d *models.Dossier) error {
		if err := d.CanRemoveDocument(docID); err != nil {
			return err
		}
		for _, doc := range d.Documents {
			if doc.ID == docID {
				fileRef = doc.FileRef
				break
			}
		}
		d.ApplyDocumentRemoval(docID, now)
		return nil
	})
	if err != nil {
		s.noteExecuteErr(err)
		return nil, err
	}

	if fileRef != "" {
		// Best effort: the record is gone either way.
		_ = s.blobs.Delete(ctx, fileRef)
	}
	if s.metrics != nil {
		s.metrics.IncrementDocumentDeleted()
	}
	s.logAudit(ctx, audit.EventDocumentDeleted, dossierID, docID.String(), "")
	return updated, nil
}

// ApplyOCRResult stores a collaborator OCR payload on a document. Callbacks
// arrive on their own schedule, so the write skips the version check: the
// result lands on whatever state the dossier has reached, last writer wins.
func (s *Service) ApplyOCRResult(ctx context.Context, dossierID id.DossierID, docID id.DocumentID, result models.OCRResult) (*models.Dossier, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.ApplyOCRResult")
	defer span.End()

	now := requestcontext.Now(ctx)
	updated, err := s.dossiers.Execute(ctx, dossierID, store.SkipVersionCheck, func(d *models.Dossier) error {
		return d.ApplyOCRResult(docID, result, now)
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.EventOCRResultStored, dossierID, docID.String(), string(result.Status))
	return updated, nil
}

// RunOCR sends one uploaded document through the OCR collaborator and stores
// the outcome. Synchronous variant of the callback flow, used when the
// operator wants processing on demand.
func (s *Service) RunOCR(ctx context.Context, dossierID id.DossierID, docID id.DocumentID) (*models.Dossier, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.RunOCR")
	defer span.End()

	if s.ocr == nil {
		return nil, dErrors.New(dErrors.CodeCollaboratorError, "ocr service is not configured")
	}

	d, err := s.dossiers.Get(ctx, dossierID)
	if err != nil {
		return nil, err
	}
	var target *models.UploadedDocument
	for i := range d.Documents {
		if d.Documents[i].ID == docID {
			target = &d.Documents[i]
			break
		}
	}
	if target == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}

	callCtx, cancel := s.collaboratorCtx(ctx)
	defer cancel()
	raw, err := s.ocr.Process(callCtx, collaborator.OCRRequest{
		FileRef:      target.FileRef,
		Filename:     target.Filename,
		DeclaredType: target.DeclaredType,
	})
	if err != nil {
		return nil, mapCollaboratorErr(err, "ocr")
	}

	result := models.OCRResult{
		Status:      models.OCRStatus(raw.Status),
		Fields:      raw.Fields,
		Confidences: raw.Confidences,
	}
	return s.ApplyOCRResult(ctx, dossierID, docID, result)
}
