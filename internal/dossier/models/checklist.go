package models

import (
	id "grantflow/pkg/domain"
)

// RequiredDocumentStatus tracks whether a checklist entry is satisfied.
type RequiredDocumentStatus string

const (
	RequiredDocumentPending  RequiredDocumentStatus = "pending"
	RequiredDocumentUploaded RequiredDocumentStatus = "uploaded"
)

// RequiredDocument is one checklist entry: a document the call requires the
// applicant to provide. Once the dossier's checklist is frozen the entry is
// structurally immutable; only Status may still change, driven by document
// matching.
type RequiredDocument struct {
	ID             id.RequiredDocumentID  `json:"id"`
	OfficialName   string                 `json:"official_name"`
	FolderGroup    string                 `json:"folder_group"`
	Required       bool                   `json:"required"`
	GuideReference string                 `json:"guide_reference,omitempty"`
	OrderIndex     int                    `json:"order_index"`
	Status         RequiredDocumentStatus `json:"status"`
}

// ChecklistCandidate is an entry proposed by the extraction collaborator.
// Candidates are validated against the dossier's folder groups before they
// can be accepted; acceptance itself goes through the ordinary
// AddRequiredDocument path, one entry at a time.
type ChecklistCandidate struct {
	OfficialName   string `json:"official_name"`
	FolderGroup    string `json:"folder_group"`
	Required       bool   `json:"required"`
	GuideReference string `json:"guide_reference,omitempty"`
}

// Proposal is the outcome of a guide extraction run. Candidates referencing
// unknown folder groups are dropped, not repaired; Rejected counts them.
type Proposal struct {
	Candidates []ChecklistCandidate `json:"candidates"`
	Rejected   int                  `json:"rejected"`
	Source     string               `json:"source"`
}
