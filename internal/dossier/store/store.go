// Package store persists dossier aggregates. Implementations are
// interface-driven so the service layer can run against the in-memory store
// in tests and PostgreSQL in production without rewiring.
package store

import (
	"context"

	"grantflow/internal/dossier/models"
	id "grantflow/pkg/domain"
)

// SkipVersionCheck disables optimistic concurrency for an Execute call.
// Reserved for collaborator callbacks whose results must land regardless of
// how the aggregate moved since the request went out. The sentinel is
// negative so a zero-valued expected version coming off the wire can never
// bypass the check: committed dossiers start at version 1.
const SkipVersionCheck int64 = -1

// Store is the dossier persistence port.
//
// Execute is the single mutation path: it loads the aggregate, runs fn
// against a private copy, and commits only when fn returns nil. The version
// check and the increment both happen inside Execute, so fn never touches
// Version itself. A non-nil error from fn aborts the commit and surfaces
// unchanged.
type Store interface {
	Create(ctx context.Context, d *models.Dossier) error
	Get(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error)
	List(ctx context.Context, orgID id.OrganizationID) ([]*models.Dossier, error)
	Execute(ctx context.Context, dossierID id.DossierID, expectedVersion int64, fn func(d *models.Dossier) error) (*models.Dossier, error)
}
