package service

import (
	"context"
	"errors"
	"strings"

	"grantflow/internal/collaborator"
	"grantflow/internal/dossier/models"
	id "grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
	audit "grantflow/pkg/platform/audit"
	platstrings "grantflow/pkg/platform/strings"
	"grantflow/pkg/requestcontext"
)

// errFreezeNoop aborts the commit when a freeze changes nothing, so an
// already-frozen checklist does not burn a version on repeat calls.
var errFreezeNoop = errors.New("checklist already frozen")

// AddRequiredDocumentRequest describes one new checklist entry.
type AddRequiredDocumentRequest struct {
	OfficialName   string
	FolderGroup    string
	Required       bool
	GuideReference string
}

// AddRequiredDocument appends a checklist entry. Rejected once the checklist
// is frozen or when the folder group is not declared on the dossier.
func (s *Service) AddRequiredDocument(ctx context.Context, dossierID id.DossierID, expectedVersion int64, req AddRequiredDocumentRequest) (*models.Dossier, models.RequiredDocument, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.AddRequiredDocument")
	defer span.End()

	now := requestcontext.Now(ctx)
	name := strings.TrimSpace(req.OfficialName)

	var entry models.RequiredDocument
	updated, err := s.dossiers.Execute(ctx, dossierID, expectedVersion, func(d *models.Dossier) error {
		if err := d.CanAddRequiredDocument(name, req.FolderGroup); err != nil {
			return err
		}
		entry = d.ApplyRequiredDocument(id.NewRequiredDocumentID(), name, req.FolderGroup, req.Required, req.GuideReference, now)
		return nil
	})
	if err != nil {
		s.noteExecuteErr(err)
		return nil, models.RequiredDocument{}, err
	}

	s.logAudit(ctx, audit.EventChecklistEntryAdded, dossierID, entry.OfficialName, "")
	return updated, entry, nil
}

// RemoveRequiredDocument drops a checklist entry. Remaining order indexes
// keep their values.
func (s *Service) RemoveRequiredDocument(ctx context.Context, dossierID id.DossierID, expectedVersion int64, entryID id.RequiredDocumentID) (*models.Dossier, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.RemoveRequiredDocument")
	defer span.End()

	now := requestcontext.Now(ctx)
	updated, err := s.dossiers.Execute(ctx, dossierID, expectedVersion, func(d *models.Dossier) error {
		if err := d.CanRemoveRequiredDocument(entryID); err != nil {
			return err
		}
		d.ApplyRequiredDocumentRemoval(entryID, now)
		return nil
	})
	if err != nil {
		s.noteExecuteErr(err)
		return nil, err
	}

	s.logAudit(ctx, audit.EventChecklistEntryRemoved, dossierID, entryID.String(), "")
	return updated, nil
}

// FreezeChecklist locks the checklist structure. Freezing twice is a no-op
// success that leaves the version untouched.
func (s *Service) FreezeChecklist(ctx context.Context, dossierID id.DossierID, expectedVersion int64) (*models.Dossier, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.FreezeChecklist")
	defer span.End()

	now := requestcontext.Now(ctx)
	updated, err := s.dossiers.Execute(ctx, dossierID, expectedVersion, func(d *models.Dossier) error {
		if !d.ApplyFreeze(now) {
			return errFreezeNoop
		}
		return nil
	})
	if errors.Is(err, errFreezeNoop) {
		return s.dossiers.Get(ctx, dossierID)
	}
	if err != nil {
		s.noteExecuteErr(err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementChecklistFrozen()
	}
	s.logAudit(ctx, audit.EventChecklistFrozen, dossierID, "", "")
	return updated, nil
}

// ProposeFromGuide asks the extraction collaborator for checklist candidates
// derived from the uploaded guide material. The dossier is never mutated:
// acceptance goes entry by entry through AddRequiredDocument. Candidates with
// duplicate or empty names, or referencing undeclared folder groups, are
// dropped and counted rather than repaired.
func (s *Service) ProposeFromGuide(ctx context.Context, dossierID id.DossierID) (models.Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.ProposeFromGuide")
	defer span.End()

	d, err := s.dossiers.Get(ctx, dossierID)
	if err != nil {
		return models.Proposal{}, err
	}
	if s.extractor == nil {
		return models.Proposal{}, dErrors.New(dErrors.CodeCollaboratorError, "extraction service is not configured")
	}
	if !d.HasGuide() {
		return models.Proposal{}, dErrors.New(dErrors.CodeInvalidInput, "dossier has no uploaded guide to extract from")
	}
	if !s.extractionBreaker.Allow() {
		return models.Proposal{}, dErrors.New(dErrors.CodeCollaboratorError, "extraction service is unavailable")
	}

	guideRefs := make([]string, 0, len(d.GuideAssets))
	for _, asset := range d.GuideAssets {
		guideRefs = append(guideRefs, asset.FileRef)
	}

	if s.metrics != nil {
		s.metrics.IncrementProposalRequested()
	}

	callCtx, cancel := s.collaboratorCtx(ctx)
	defer cancel()
	candidates, err := s.extractor.ExtractChecklist(callCtx, collaborator.ExtractionRequest{
		DossierID: d.ID.String(),
		CallCode:  d.CallCode,
		GuideRefs: guideRefs,
	})
	s.recordCollaboratorOutcome(ctx, s.extractionBreaker, err)
	if err != nil {
		return models.Proposal{}, mapCollaboratorErr(err, "extraction")
	}

	proposal := filterCandidates(d, candidates)
	s.logAudit(ctx, audit.EventChecklistProposed, dossierID, "", "")
	return proposal, nil
}

// filterCandidates validates extractor output against the dossier: names are
// trimmed and deduplicated (first occurrence wins), unknown folder groups are
// rejected outright.
func filterCandidates(d *models.Dossier, candidates []collaborator.ChecklistCandidate) models.Proposal {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.OfficialName)
	}
	allowed := make(map[string]struct{}, len(names))
	for _, name := range platstrings.DedupeAndTrim(names) {
		allowed[name] = struct{}{}
	}

	proposal := models.Proposal{
		Candidates: make([]models.ChecklistCandidate, 0, len(candidates)),
		Source:     "guide_extraction",
	}
	for _, c := range candidates {
		name := strings.TrimSpace(c.OfficialName)
		if _, ok := allowed[name]; !ok {
			proposal.Rejected++
			continue
		}
		delete(allowed, name)
		if _, ok := d.FolderGroupByKey(c.FolderGroup); !ok {
			proposal.Rejected++
			continue
		}
		proposal.Candidates = append(proposal.Candidates, models.ChecklistCandidate{
			OfficialName:   name,
			FolderGroup:    c.FolderGroup,
			Required:       c.Required,
			GuideReference: c.GuideReference,
		})
	}
	return proposal
}
