package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
)

// Dossier is the aggregate root for one funding application.
//
// Invariants:
//   - Status is always a declared phase of the graph selected by Kind
//   - Every required/uploaded document references a declared folder group
//   - ChecklistFrozen moves false -> true exactly once and never back
//   - History is append-only, ordered by commit time
//   - Version increases by exactly 1 on every committed mutation; the
//     increment is applied by the store at commit time, not by Apply methods
//
// Mutations follow the Can*/Apply* split: services validate with Can* inside
// a store Execute callback, then mutate with Apply*. Apply methods never
// fail on conditions the matching Can method checks, so a rejected operation
// leaves the aggregate untouched.
type Dossier struct {
	ID             id.DossierID      `json:"id"`
	OrganizationID id.OrganizationID `json:"organization_id"`
	Kind           DossierKind       `json:"kind"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`

	CallID      string `json:"call_id,omitempty"`
	CallName    string `json:"call_name,omitempty"`
	CallCode    string `json:"call_code,omitempty"`
	MeasureName string `json:"measure_name,omitempty"`
	MeasureCode string `json:"measure_code,omitempty"`
	ProgramName string `json:"program_name,omitempty"`

	Status      Phase  `json:"status"`
	StatusLabel string `json:"status_label"`

	ChecklistFrozen bool  `json:"checklist_frozen"`
	Version         int64 `json:"version"`

	GuideAssets       []GuideAsset          `json:"guide_assets"`
	RequiredDocuments []RequiredDocument    `json:"required_documents"`
	Documents         []UploadedDocument    `json:"documents"`
	Drafts            []Draft               `json:"drafts"`
	FolderGroups      []FolderGroup         `json:"folder_groups"`
	Procurement       []ProcurementLineItem `json:"procurement"`
	History           []HistoryEntry        `json:"history"`

	BudgetEstimated decimal.Decimal `json:"budget_estimated"`
	BudgetApproved  decimal.Decimal `json:"budget_approved"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by"`
}

// NewDossier creates a dossier in its graph's initial phase with an empty,
// unfrozen checklist and the default folder taxonomy. The creation itself is
// the first history entry.
func NewDossier(dossierID id.DossierID, orgID id.OrganizationID, kind DossierKind, title, description, createdBy string, now time.Time) (*Dossier, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "dossier title must not be empty")
	}
	if orgID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "organization id is required")
	}
	graph, err := GraphForKind(kind)
	if err != nil {
		return nil, err
	}
	initial := graph.Initial()
	return &Dossier{
		ID:             dossierID,
		OrganizationID: orgID,
		Kind:           kind,
		Title:          title,
		Description:    description,
		Status:         initial,
		StatusLabel:    graph.Label(initial),
		Version:        1,
		FolderGroups:   DefaultFolderGroups(),
		History: []HistoryEntry{{
			From:   nil,
			To:     initial,
			At:     now,
			By:     createdBy,
			Reason: "dossier created",
		}},
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: createdBy,
	}, nil
}

// Graph resolves the phase graph governing this dossier.
func (d *Dossier) Graph() *Graph {
	graph, err := GraphForKind(d.Kind)
	if err != nil {
		// Kind is validated at construction and never mutated afterwards.
		panic(err)
	}
	return graph
}

// -----------------------------------------------------------------------------
// Phase transitions
// -----------------------------------------------------------------------------

// CanTransitionTo checks whether the edge Status -> target exists. The
// current phase is never in its own destination set, so requesting it again
// fails the same way any other missing edge does.
func (d *Dossier) CanTransitionTo(target Phase) error {
	graph := d.Graph()
	if !graph.Contains(target) {
		return dErrors.Newf(dErrors.CodeInvalidTransition, "phase %q is not declared for %s dossiers", target, d.Kind)
	}
	if !graph.CanTransition(d.Status, target) {
		return dErrors.Newf(dErrors.CodeInvalidTransition, "transition %q -> %q is not permitted", d.Status, target)
	}
	return nil
}

// ApplyTransition commits the phase change and appends the history entry.
// Call CanTransitionTo first.
func (d *Dossier) ApplyTransition(target Phase, reason, by string, now time.Time) {
	from := d.Status
	d.Status = target
	d.StatusLabel = d.Graph().Label(target)
	d.History = append(d.History, HistoryEntry{
		From:   &from,
		To:     target,
		At:     now,
		By:     by,
		Reason: reason,
	})
	d.UpdatedAt = now
}

// -----------------------------------------------------------------------------
// Checklist
// -----------------------------------------------------------------------------

// CanModifyChecklist rejects structural checklist edits once frozen.
func (d *Dossier) CanModifyChecklist() error {
	if d.ChecklistFrozen {
		return dErrors.New(dErrors.CodeChecklistFrozen, "checklist is frozen")
	}
	return nil
}

// CanAddRequiredDocument validates a new checklist entry: checklist not
// frozen, name present, folder group declared.
func (d *Dossier) CanAddRequiredDocument(officialName, folderGroup string) error {
	if err := d.CanModifyChecklist(); err != nil {
		return err
	}
	if officialName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "official name must not be empty")
	}
	if _, ok := d.FolderGroupByKey(folderGroup); !ok {
		return dErrors.Newf(dErrors.CodeUnknownFolderGroup, "folder group %q is not defined for this dossier", folderGroup)
	}
	return nil
}

// ApplyRequiredDocument appends a checklist entry with the next order index.
// Indexes are monotonic from 1 and never renumbered on delete, so they stay
// stable identifiers across the dossier's life. The entry starts pending and
// is immediately recomputed against already-uploaded documents.
func (d *Dossier) ApplyRequiredDocument(reqID id.RequiredDocumentID, officialName, folderGroup string, required bool, guideReference string, now time.Time) RequiredDocument {
	next := 1
	for _, rd := range d.RequiredDocuments {
		if rd.OrderIndex >= next {
			next = rd.OrderIndex + 1
		}
	}
	entry := RequiredDocument{
		ID:             reqID,
		OfficialName:   officialName,
		FolderGroup:    folderGroup,
		Required:       required,
		GuideReference: guideReference,
		OrderIndex:     next,
		Status:         RequiredDocumentPending,
	}
	d.RequiredDocuments = append(d.RequiredDocuments, entry)
	d.recomputeFolder(folderGroup)
	d.UpdatedAt = now
	return d.RequiredDocuments[len(d.RequiredDocuments)-1]
}

// CanRemoveRequiredDocument validates removal of a checklist entry.
func (d *Dossier) CanRemoveRequiredDocument(reqID id.RequiredDocumentID) error {
	if err := d.CanModifyChecklist(); err != nil {
		return err
	}
	for _, rd := range d.RequiredDocuments {
		if rd.ID == reqID {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "required document not found")
}

// ApplyRequiredDocumentRemoval drops the entry. Remaining order indexes are
// left untouched.
func (d *Dossier) ApplyRequiredDocumentRemoval(reqID id.RequiredDocumentID, now time.Time) {
	kept := d.RequiredDocuments[:0]
	for _, rd := range d.RequiredDocuments {
		if rd.ID != reqID {
			kept = append(kept, rd)
		}
	}
	d.RequiredDocuments = kept
	d.UpdatedAt = now
}

// ApplyFreeze locks the checklist structure. Freezing an already-frozen
// checklist is a no-op success; the return value reports whether this call
// changed anything.
func (d *Dossier) ApplyFreeze(now time.Time) bool {
	if d.ChecklistFrozen {
		return false
	}
	d.ChecklistFrozen = true
	d.UpdatedAt = now
	return true
}

// ChecklistProgress counts satisfied required entries. Optional entries are
// excluded from both numbers.
func (d *Dossier) ChecklistProgress() (uploaded, total int) {
	for _, rd := range d.RequiredDocuments {
		if !rd.Required {
			continue
		}
		total++
		if rd.Status == RequiredDocumentUploaded {
			uploaded++
		}
	}
	return uploaded, total
}

// -----------------------------------------------------------------------------
// Documents
// -----------------------------------------------------------------------------

// FolderGroupByKey resolves a declared folder group.
func (d *Dossier) FolderGroupByKey(key string) (FolderGroup, bool) {
	for _, fg := range d.FolderGroups {
		if fg.Key == key {
			return fg, true
		}
	}
	return FolderGroup{}, false
}

// CanAttachDocument validates that the target folder group is declared.
// Checked at the boundary before any state change.
func (d *Dossier) CanAttachDocument(folderGroup string) error {
	if _, ok := d.FolderGroupByKey(folderGroup); !ok {
		return dErrors.Newf(dErrors.CodeUnknownFolderGroup, "folder group %q is not defined for this dossier", folderGroup)
	}
	return nil
}

// ApplyDocument appends an uploaded document record and recomputes checklist
// status for its folder group.
func (d *Dossier) ApplyDocument(doc UploadedDocument, now time.Time) {
	d.Documents = append(d.Documents, doc)
	d.recomputeFolder(doc.FolderGroup)
	d.UpdatedAt = now
}

// CanRemoveDocument validates removal of an uploaded document.
func (d *Dossier) CanRemoveDocument(docID id.DocumentID) error {
	for _, doc := range d.Documents {
		if doc.ID == docID {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "document not found")
}

// ApplyDocumentRemoval drops the record and recomputes its folder group,
// which may flip previously satisfied checklist entries back to pending when
// the last matching document disappears.
func (d *Dossier) ApplyDocumentRemoval(docID id.DocumentID, now time.Time) {
	var folderGroup string
	kept := d.Documents[:0]
	for _, doc := range d.Documents {
		if doc.ID == docID {
			folderGroup = doc.FolderGroup
			continue
		}
		kept = append(kept, doc)
	}
	d.Documents = kept
	if folderGroup != "" {
		d.recomputeFolder(folderGroup)
	}
	d.UpdatedAt = now
}

// ApplyOCRResult stores the collaborator's opaque OCR payload on a document.
// Last writer wins; the core never inspects field contents.
func (d *Dossier) ApplyOCRResult(docID id.DocumentID, result OCRResult, now time.Time) error {
	for i := range d.Documents {
		if d.Documents[i].ID == docID {
			r := result
			d.Documents[i].OCR = &r
			d.UpdatedAt = now
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "document not found")
}

// recomputeFolder re-derives the status of every checklist entry in the
// folder group. An entry is satisfied by the presence of any uploaded
// document in the same group: matching is deliberately folder-level rather
// than per-document, favouring completeness tracking over precision.
func (d *Dossier) recomputeFolder(folderGroup string) {
	hasDoc := false
	for _, doc := range d.Documents {
		if doc.FolderGroup == folderGroup && doc.Status == DocumentUploaded {
			hasDoc = true
			break
		}
	}
	status := RequiredDocumentPending
	if hasDoc {
		status = RequiredDocumentUploaded
	}
	for i := range d.RequiredDocuments {
		if d.RequiredDocuments[i].FolderGroup == folderGroup {
			d.RequiredDocuments[i].Status = status
		}
	}
}

// -----------------------------------------------------------------------------
// Guides, drafts, procurement
// -----------------------------------------------------------------------------

// ApplyGuideAsset attaches an uploaded guide document reference.
func (d *Dossier) ApplyGuideAsset(asset GuideAsset, now time.Time) {
	d.GuideAssets = append(d.GuideAssets, asset)
	d.UpdatedAt = now
}

// HasGuide reports whether at least one guide asset is attached.
func (d *Dossier) HasGuide() bool {
	return len(d.GuideAssets) > 0
}

// ApplyDraft records an externally generated draft and mirrors it as an
// uploaded document in the submission folder so checklist matching sees it.
func (d *Dossier) ApplyDraft(draft Draft, mirrored UploadedDocument, now time.Time) {
	d.Drafts = append(d.Drafts, draft)
	d.ApplyDocument(mirrored, now)
}

// ApplyProcurementItem appends a budget line.
func (d *Dossier) ApplyProcurementItem(item ProcurementLineItem, now time.Time) {
	d.Procurement = append(d.Procurement, item)
	d.UpdatedAt = now
}

// -----------------------------------------------------------------------------
// Copying
// -----------------------------------------------------------------------------

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate committed state behind the version check.
func (d *Dossier) Clone() *Dossier {
	out := *d
	out.GuideAssets = append([]GuideAsset(nil), d.GuideAssets...)
	out.RequiredDocuments = append([]RequiredDocument(nil), d.RequiredDocuments...)
	out.Documents = make([]UploadedDocument, len(d.Documents))
	for i, doc := range d.Documents {
		out.Documents[i] = doc
		if doc.OCR != nil {
			ocr := *doc.OCR
			if doc.OCR.Fields != nil {
				ocr.Fields = make(map[string]string, len(doc.OCR.Fields))
				for k, v := range doc.OCR.Fields {
					ocr.Fields[k] = v
				}
			}
			if doc.OCR.Confidences != nil {
				ocr.Confidences = make(map[string]float64, len(doc.OCR.Confidences))
				for k, v := range doc.OCR.Confidences {
					ocr.Confidences[k] = v
				}
			}
			out.Documents[i].OCR = &ocr
		}
		if doc.DraftID != nil {
			draftID := *doc.DraftID
			out.Documents[i].DraftID = &draftID
		}
	}
	out.Drafts = append([]Draft(nil), d.Drafts...)
	out.FolderGroups = append([]FolderGroup(nil), d.FolderGroups...)
	out.Procurement = append([]ProcurementLineItem(nil), d.Procurement...)
	out.History = make([]HistoryEntry, len(d.History))
	for i, h := range d.History {
		out.History[i] = h
		if h.From != nil {
			from := *h.From
			out.History[i].From = &from
		}
	}
	return &out
}
