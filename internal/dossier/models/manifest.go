package models

import (
	"time"

	id "grantflow/pkg/domain"
)

// ManifestFile is one exportable file reference. Bytes stay in blob storage;
// the manifest only lists what a ZIP export would contain.
type ManifestFile struct {
	Filename     string `json:"filename"`
	FileRef      string `json:"file_ref"`
	FileSize     int64  `json:"file_size"`
	DeclaredType string `json:"declared_type,omitempty"`
}

// ManifestFolder groups exportable files under one dossier folder.
type ManifestFolder struct {
	Key   string         `json:"key"`
	Name  string         `json:"name"`
	Files []ManifestFile `json:"files"`
}

// Manifest is the logical listing of a dossier's exportable content: the
// guide assets plus every uploaded document, grouped by folder. Building one
// never mutates the dossier.
type Manifest struct {
	DossierID   id.DossierID     `json:"dossier_id"`
	Title       string           `json:"title"`
	GeneratedAt time.Time        `json:"generated_at"`
	Folders     []ManifestFolder `json:"folders"`
}
