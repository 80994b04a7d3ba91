// Package collaborator defines the ports for the external document services
// the engine orchestrates but never implements: guide extraction, OCR, and
// draft generation. The domain layer depends on these interfaces; adapters
// (HTTP clients, mocks) implement them. Payloads stay opaque: the engine
// stores what comes back and never interprets extracted content.
package collaborator

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import "context"

// ChecklistCandidate is one checklist entry proposed by the extraction
// service. FolderGroup is whatever the extractor guessed; validation against
// the dossier's declared groups happens in the domain layer.
type ChecklistCandidate struct {
	OfficialName   string `json:"official_name"`
	FolderGroup    string `json:"folder_group"`
	Required       bool   `json:"required"`
	GuideReference string `json:"guide_reference,omitempty"`
}

// ExtractionRequest identifies the guide material to analyze.
type ExtractionRequest struct {
	DossierID string   `json:"dossier_id"`
	CallCode  string   `json:"call_code,omitempty"`
	GuideRefs []string `json:"guide_refs"`
}

// Extractor proposes checklist entries from uploaded guide documents.
type Extractor interface {
	ExtractChecklist(ctx context.Context, req ExtractionRequest) ([]ChecklistCandidate, error)
}

// OCRRequest identifies one uploaded document to process.
type OCRRequest struct {
	FileRef      string `json:"file_ref"`
	Filename     string `json:"filename"`
	DeclaredType string `json:"declared_type,omitempty"`
}

// OCRResult is the opaque payload returned by the OCR service.
type OCRResult struct {
	Status      string             `json:"status"`
	Fields      map[string]string  `json:"fields,omitempty"`
	Confidences map[string]float64 `json:"confidences,omitempty"`
}

// OCRProcessor extracts structured fields from document scans.
type OCRProcessor interface {
	Process(ctx context.Context, req OCRRequest) (OCRResult, error)
}

// DraftRequest asks the drafting service to generate a narrative document
// from a template and dossier context.
type DraftRequest struct {
	DossierID  string            `json:"dossier_id"`
	TemplateID string            `json:"template_id"`
	Context    map[string]string `json:"context,omitempty"`
}

// DraftResult carries the generated content and its rendered PDF bytes.
type DraftResult struct {
	Content string `json:"content"`
	PDF     []byte `json:"pdf"`
}

// Drafter generates narrative draft documents.
type Drafter interface {
	GenerateDraft(ctx context.Context, req DraftRequest) (DraftResult, error)
}
