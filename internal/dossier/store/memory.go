package store

import (
	"context"
	"sort"
	"sync"

	"grantflow/internal/dossier/models"
	id "grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
)

// InMemoryStore keeps dossiers in a map guarded by a RWMutex. It favors
// clarity over performance and hands out deep copies so callers can never
// mutate committed state behind the version check.
type InMemoryStore struct {
	mu       sync.RWMutex
	dossiers map[id.DossierID]*models.Dossier
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{dossiers: make(map[id.DossierID]*models.Dossier)}
}

func (s *InMemoryStore) Create(_ context.Context, d *models.Dossier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.dossiers[d.ID]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "dossier %s already exists", d.ID)
	}
	s.dossiers[d.ID] = d.Clone()
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, dossierID id.DossierID) (*models.Dossier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dossiers[dossierID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "dossier %s not found", dossierID)
	}
	return d.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context, orgID id.OrganizationID) ([]*models.Dossier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Dossier, 0, len(s.dossiers))
	for _, d := range s.dossiers {
		if !orgID.IsZero() && d.OrganizationID != orgID {
			continue
		}
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemoryStore) Execute(_ context.Context, dossierID id.DossierID, expectedVersion int64, fn func(d *models.Dossier) error) (*models.Dossier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.dossiers[dossierID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "dossier %s not found", dossierID)
	}
	if expectedVersion != SkipVersionCheck && current.Version != expectedVersion {
		return nil, dErrors.Newf(dErrors.CodeVersionConflict,
			"dossier %s is at version %d, expected %d", dossierID, current.Version, expectedVersion)
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.Version = current.Version + 1
	s.dossiers[dossierID] = working
	return working.Clone(), nil
}
