package audit

import (
	"context"

	id "grantflow/pkg/domain"
)

// Store persists audit events. Append-only: nothing updates or deletes.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDossier(ctx context.Context, dossierID id.DossierID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
