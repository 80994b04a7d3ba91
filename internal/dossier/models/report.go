package models

import (
	"time"

	id "grantflow/pkg/domain"
)

// CheckStatus grades a single readiness check.
type CheckStatus string

const (
	// CheckOK: nothing to do.
	CheckOK CheckStatus = "ok"
	// CheckNeedsAction: the dossier cannot responsibly advance until fixed.
	CheckNeedsAction CheckStatus = "needs_action"
	// CheckWarning: worth attention, does not block by itself.
	CheckWarning CheckStatus = "warning"
)

// Check is one entry in a readiness report.
type Check struct {
	Name   string      `json:"name"`
	Status CheckStatus `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

// Report is the point-in-time outcome of running the full readiness battery
// against a dossier. Producing one never mutates the dossier; the Version
// field records which aggregate state the report describes.
type Report struct {
	DossierID   id.DossierID `json:"dossier_id"`
	Version     int64        `json:"version"`
	GeneratedAt time.Time    `json:"generated_at"`
	Checks      []Check      `json:"checks"`
	NeedsAction bool         `json:"needs_action"`
}
