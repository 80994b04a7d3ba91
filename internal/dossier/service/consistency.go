package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"grantflow/internal/catalog"
	"grantflow/internal/dossier/models"
	id "grantflow/pkg/domain"
	audit "grantflow/pkg/platform/audit"
	"grantflow/pkg/requestcontext"
)

// checkFunc computes one readiness check from a dossier snapshot. Checks are
// pure: they read the snapshot and never touch shared state, which is what
// makes the fan-out safe.
type checkFunc func(d *models.Dossier) models.Check

var readinessChecks = []checkFunc{
	checkChecklistCompleteness,
	checkGuidePresence,
	checkBudgetWithinCallBounds,
	checkFrozenBeforeSubmission,
	checkOCRProcessing,
	checkDrafts,
	checkProcurement,
}

// EvaluateReadiness runs the full check battery against the dossier's
// current state and returns the report. Reports are cached per (dossier,
// version); any committed mutation bumps the version and misses the cache.
func (s *Service) EvaluateReadiness(ctx context.Context, dossierID id.DossierID) (models.Report, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.EvaluateReadiness")
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveReport(start)
		}
	}()

	d, err := s.dossiers.Get(ctx, dossierID)
	if err != nil {
		return models.Report{}, err
	}

	if s.reports != nil {
		if cached, ok := s.reports.Get(ctx, d.ID, d.Version); ok {
			return cached, nil
		}
	}

	checks := make([]models.Check, len(readinessChecks))
	g, _ := errgroup.WithContext(ctx)
	for i, check := range readinessChecks {
		g.Go(func() error {
			checks[i] = check(d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Report{}, err
	}

	report := models.Report{
		DossierID:   d.ID,
		Version:     d.Version,
		GeneratedAt: requestcontext.Now(ctx),
		Checks:      checks,
	}
	for _, c := range checks {
		if c.Status == models.CheckNeedsAction {
			report.NeedsAction = true
			break
		}
	}

	if s.reports != nil {
		s.reports.Set(ctx, report)
	}
	s.logAudit(ctx, audit.EventReportGenerated, dossierID, "", "")
	return report, nil
}

func checkChecklistCompleteness(d *models.Dossier) models.Check {
	check := models.Check{Name: "checklist_completeness"}
	uploaded, total := d.ChecklistProgress()
	switch {
	case total == 0:
		check.Status = models.CheckWarning
		check.Detail = "no required documents defined"
	case uploaded < total:
		check.Status = models.CheckNeedsAction
		check.Detail = fmt.Sprintf("%d of %d required documents uploaded", uploaded, total)
	default:
		check.Status = models.CheckOK
	}
	return check
}

func checkGuidePresence(d *models.Dossier) models.Check {
	check := models.Check{Name: "guide_presence", Status: models.CheckOK}
	if d.Kind == models.KindApplication && !d.HasGuide() {
		check.Status = models.CheckNeedsAction
		check.Detail = "no applicant guide uploaded"
	}
	return check
}

func checkBudgetWithinCallBounds(d *models.Dossier) models.Check {
	check := models.Check{Name: "budget_within_call_bounds"}
	if d.CallID == "" {
		check.Status = models.CheckWarning
		check.Detail = "no funding call selected"
		return check
	}
	call, ok := catalog.CallByID(d.CallID)
	if !ok {
		check.Status = models.CheckWarning
		check.Detail = fmt.Sprintf("call %q is no longer in the catalog", d.CallID)
		return check
	}
	if d.BudgetEstimated.IsZero() {
		check.Status = models.CheckWarning
		check.Detail = "no budget estimate recorded"
		return check
	}
	if d.BudgetEstimated.LessThan(call.ValueMin) || d.BudgetEstimated.GreaterThan(call.ValueMax) {
		check.Status = models.CheckNeedsAction
		check.Detail = fmt.Sprintf("estimated budget %s is outside the call bounds %s - %s",
			d.BudgetEstimated.StringFixed(2), call.ValueMin.StringFixed(2), call.ValueMax.StringFixed(2))
		return check
	}
	check.Status = models.CheckOK
	return check
}

// checkFrozenBeforeSubmission warns when a dossier has passed its submission
// phase with the checklist still open to edits.
func checkFrozenBeforeSubmission(d *models.Dossier) models.Check {
	check := models.Check{Name: "checklist_frozen", Status: models.CheckOK}
	if d.ChecklistFrozen {
		return check
	}
	graph := d.Graph()
	submission := models.PhaseSubmitted
	if d.Kind == models.KindProject {
		submission = models.PhaseDepus
	}
	if graph.Ordinal(d.Status) >= graph.Ordinal(submission) {
		check.Status = models.CheckWarning
		check.Detail = "checklist is not frozen past submission"
	}
	return check
}

func checkOCRProcessing(d *models.Dossier) models.Check {
	check := models.Check{Name: "ocr_processing", Status: models.CheckOK}
	open := 0
	for _, doc := range d.Documents {
		if doc.OCR != nil && (doc.OCR.Status == models.OCRPending || doc.OCR.Status == models.OCRNeedsReview) {
			open++
		}
	}
	if open > 0 {
		check.Status = models.CheckWarning
		check.Detail = fmt.Sprintf("%d documents awaiting ocr review", open)
	}
	return check
}

func checkDrafts(d *models.Dossier) models.Check {
	check := models.Check{Name: "drafts", Status: models.CheckOK}
	if len(d.Drafts) == 0 {
		check.Status = models.CheckWarning
		check.Detail = "no generated drafts"
	}
	return check
}

func checkProcurement(d *models.Dossier) models.Check {
	check := models.Check{Name: "procurement", Status: models.CheckOK}
	if len(d.Procurement) == 0 {
		check.Status = models.CheckWarning
		check.Detail = "procurement list is empty"
	}
	return check
}

// ExportManifest lists the dossier's exportable content: guide assets under
// a leading pseudo-folder, then every uploaded document grouped by folder in
// ordinal order. Bytes stay in blob storage.
func (s *Service) ExportManifest(ctx context.Context, dossierID id.DossierID) (models.Manifest, error) {
	ctx, span := s.tracer.Start(ctx, "dossier.ExportManifest")
	defer span.End()

	d, err := s.dossiers.Get(ctx, dossierID)
	if err != nil {
		return models.Manifest{}, err
	}

	manifest := models.Manifest{
		DossierID:   d.ID,
		Title:       d.Title,
		GeneratedAt: requestcontext.Now(ctx),
	}

	if len(d.GuideAssets) > 0 {
		guides := models.ManifestFolder{Key: "ghid", Name: "00_Ghid", Files: make([]models.ManifestFile, 0, len(d.GuideAssets))}
		for _, asset := range d.GuideAssets {
			guides.Files = append(guides.Files, models.ManifestFile{
				Filename:     asset.Filename,
				FileRef:      asset.FileRef,
				FileSize:     asset.FileSize,
				DeclaredType: asset.Tip,
			})
		}
		manifest.Folders = append(manifest.Folders, guides)
	}

	groups := append([]models.FolderGroup(nil), d.FolderGroups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Ordinal < groups[j].Ordinal })
	for _, fg := range groups {
		folder := models.ManifestFolder{Key: fg.Key, Name: fg.Name, Files: []models.ManifestFile{}}
		for _, doc := range d.Documents {
			if doc.FolderGroup != fg.Key || doc.Status != models.DocumentUploaded {
				continue
			}
			folder.Files = append(folder.Files, models.ManifestFile{
				Filename:     doc.Filename,
				FileRef:      doc.FileRef,
				FileSize:     doc.FileSize,
				DeclaredType: doc.DeclaredType,
			})
		}
		manifest.Folders = append(manifest.Folders, folder)
	}

	s.logAudit(ctx, audit.EventManifestExported, dossierID, "", "")
	return manifest, nil
}
