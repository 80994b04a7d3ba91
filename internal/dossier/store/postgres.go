package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"grantflow/internal/dossier/models"
	id "grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
)

// PostgresStore persists dossiers as JSONB documents. The aggregate is
// written whole; the version column duplicates the document's version field
// so the compare-and-swap happens in SQL rather than application code.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed dossier store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const dossierSchema = `
CREATE TABLE IF NOT EXISTS dossiers (
    id              UUID PRIMARY KEY,
    organization_id UUID NOT NULL,
    version         BIGINT NOT NULL,
    data            JSONB NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dossiers_organization ON dossiers (organization_id, created_at);
`

// EnsureSchema creates the dossiers table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, dossierSchema); err != nil {
		return fmt.Errorf("ensure dossier schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, d *models.Dossier) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dossier: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO dossiers (id, organization_id, version, data, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID.String(), d.OrganizationID.String(), d.Version, data, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return dErrors.Newf(dErrors.CodeConflict, "dossier %s already exists", d.ID)
		}
		return fmt.Errorf("insert dossier: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM dossiers WHERE id = $1`, dossierID.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "dossier %s not found", dossierID)
		}
		return nil, fmt.Errorf("select dossier: %w", err)
	}
	return unmarshalDossier(data)
}

func (s *PostgresStore) List(ctx context.Context, orgID id.OrganizationID) ([]*models.Dossier, error) {
	query := `SELECT data FROM dossiers ORDER BY created_at, id`
	args := []any{}
	if !orgID.IsZero() {
		query = `SELECT data FROM dossiers WHERE organization_id = $1 ORDER BY created_at, id`
		args = append(args, orgID.String())
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dossiers: %w", err)
	}
	defer rows.Close()

	var out []*models.Dossier
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan dossier row: %w", err)
		}
		d, err := unmarshalDossier(data)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dossiers: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Execute(ctx context.Context, dossierID id.DossierID, expectedVersion int64, fn func(d *models.Dossier) error) (*models.Dossier, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin dossier tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var data []byte
	var current int64
	err = tx.QueryRow(ctx,
		`SELECT data, version FROM dossiers WHERE id = $1 FOR UPDATE`,
		dossierID.String()).Scan(&data, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "dossier %s not found", dossierID)
		}
		return nil, fmt.Errorf("lock dossier: %w", err)
	}
	if expectedVersion != SkipVersionCheck && current != expectedVersion {
		return nil, dErrors.Newf(dErrors.CodeVersionConflict,
			"dossier %s is at version %d, expected %d", dossierID, current, expectedVersion)
	}

	d, err := unmarshalDossier(data)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	d.Version = current + 1

	updated, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal dossier: %w", err)
	}
	_, err = tx.Exec(ctx,
		`UPDATE dossiers SET version = $2, data = $3, updated_at = $4 WHERE id = $1`,
		dossierID.String(), d.Version, updated, d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update dossier: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit dossier tx: %w", err)
	}
	return d, nil
}

func unmarshalDossier(data []byte) (*models.Dossier, error) {
	var d models.Dossier
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal dossier: %w", err)
	}
	return &d, nil
}
