package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "grantflow/pkg/domain"
)

// DocumentStatus is the lifecycle state of an uploaded document record.
type DocumentStatus string

const (
	DocumentDraft    DocumentStatus = "draft"
	DocumentUploaded DocumentStatus = "uploaded"
)

// OCRStatus mirrors the external OCR collaborator's processing state. The
// core stores it opaquely and never interprets extracted field contents.
type OCRStatus string

const (
	OCRPending     OCRStatus = "pending"
	OCRCompleted   OCRStatus = "completed"
	OCRNeedsReview OCRStatus = "needs_review"
)

// OCRResult is the opaque payload returned by the OCR collaborator.
// Fields and confidences are stored as-is for display by the caller.
type OCRResult struct {
	Status      OCRStatus          `json:"status"`
	Fields      map[string]string  `json:"fields,omitempty"`
	Confidences map[string]float64 `json:"confidences,omitempty"`
}

// UploadedDocument is a document record inside a dossier. FileRef is an
// opaque blob-storage reference; the core never opens file content.
type UploadedDocument struct {
	ID           id.DocumentID  `json:"id"`
	Filename     string         `json:"filename"`
	FileRef      string         `json:"file_ref"`
	FileSize     int64          `json:"file_size"`
	ContentType  string         `json:"content_type,omitempty"`
	FolderGroup  string         `json:"folder_group"`
	DeclaredType string         `json:"declared_type,omitempty"`
	Status       DocumentStatus `json:"status"`
	OCR          *OCRResult     `json:"ocr,omitempty"`
	DraftID      *id.DraftID    `json:"draft_id,omitempty"`
	UploadedAt   time.Time      `json:"uploaded_at"`
	UploadedBy   string         `json:"uploaded_by"`
}

// GuideAsset is an uploaded applicant's guide or annex. Guides drive the
// checklist proposal flow but are not checklist documents themselves.
type GuideAsset struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileRef    string    `json:"file_ref"`
	FileSize   int64     `json:"file_size"`
	Tip        string    `json:"tip"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy string    `json:"uploaded_by"`
}

// Draft is an externally generated narrative document. Content is opaque to
// the core; the PDF reference points into blob storage.
type Draft struct {
	ID            id.DraftID `json:"id"`
	TemplateID    string     `json:"template_id"`
	TemplateLabel string     `json:"template_label"`
	Content       string     `json:"content"`
	PDFRef        string     `json:"pdf_ref"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	CreatedBy     string     `json:"created_by"`
}

// ProcurementLineItem is a budget-adjacent purchase line. Not core lifecycle
// logic; the consistency checker only warns when the list is empty.
type ProcurementLineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}
