package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"brushline/internal/modkit/repokit"
	perr "brushline/internal/platform/errors"
	"brushline/internal/platform/store"
	"brushline/internal/services/api/timeline/domain"
)

// Schema creates the saved selection table
const Schema = `
CREATE TABLE IF NOT EXISTS saved_selections (
    id          uuid        PRIMARY KEY,
    dataset     text        NOT NULL,
    name        text        NOT NULL,
    start_at    timestamptz NOT NULL,
    end_at      timestamptz NOT NULL,
    granularity text        NOT NULL,
    created_at  timestamptz NOT NULL DEFAULT now(),
    CHECK (start_at < end_at)
);
CREATE INDEX IF NOT EXISTS saved_selections_dataset_idx ON saved_selections (dataset, created_at DESC);
`

// SavedRepo persists named selections per dataset
type SavedRepo interface {
	Insert(ctx context.Context, s domain.Saved) (domain.Saved, error)
	List(ctx context.Context, dataset string, limit int) ([]domain.Saved, error)
	Get(ctx context.Context, id string) (domain.Saved, error)
	Delete(ctx context.Context, dataset, id string) error
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements SavedRepo
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the postgres saved selection repo
func NewPG() repokit.Binder[SavedRepo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) SavedRepo { return &queries{q: q} }

// EnsureSchema applies Schema; safe to run on every boot
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	if _, err := q.Exec(ctx, Schema); err != nil {
		return perr.FromPostgres(err, "saved_selections schema")
	}
	return nil
}

func (r *queries) Insert(ctx context.Context, s domain.Saved) (domain.Saved, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	const sqlq = `
        INSERT INTO saved_selections (id, dataset, name, start_at, end_at, granularity)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `
	var created time.Time
	err := r.q.QueryRow(ctx, sqlq, s.ID, s.Dataset, s.Name, s.Start.UTC(), s.End.UTC(), s.Granularity).Scan(&created)
	if err != nil {
		return domain.Saved{}, perr.FromPostgresWithField(err, "insert saved selection")
	}
	s.CreatedAt = created.UTC()
	return s, nil
}

func (r *queries) List(ctx context.Context, dataset string, limit int) ([]domain.Saved, error) {
	if limit <= 0 {
		limit = 100
	}
	const sqlq = `
        SELECT id::text, dataset, name, start_at, end_at, granularity, created_at
          FROM saved_selections
         WHERE dataset = $1
         ORDER BY created_at DESC, id
         LIMIT $2
    `
	out, err := store.Many(ctx, r.q, scanSaved, sqlq, dataset, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list saved selections")
	}
	return out, nil
}

func (r *queries) Get(ctx context.Context, id string) (domain.Saved, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Saved{}, perr.InvalidArgf("invalid saved selection id %q", id)
	}
	const sqlq = `
        SELECT id::text, dataset, name, start_at, end_at, granularity, created_at
          FROM saved_selections
         WHERE id = $1
    `
	s, err := store.One(ctx, r.q, scanSaved, sqlq, id)
	switch {
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		return domain.Saved{}, perr.NotFoundf("saved selection %s not found", id)
	case err != nil:
		return domain.Saved{}, perr.FromPostgres(err, "get saved selection")
	}
	return s, nil
}

// Delete removes id only when it belongs to dataset
func (r *queries) Delete(ctx context.Context, dataset, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return perr.InvalidArgf("invalid saved selection id %q", id)
	}
	const sqlq = `DELETE FROM saved_selections WHERE id = $1 AND dataset = $2`
	err := store.ExecOne(ctx, r.q, sqlq, id, dataset)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.NotFoundf("saved selection %s not found", id)
	}
	return err
}

func scanSaved(row store.Row) (domain.Saved, error) {
	var s domain.Saved
	if err := row.Scan(&s.ID, &s.Dataset, &s.Name, &s.Start, &s.End, &s.Granularity, &s.CreatedAt); err != nil {
		return domain.Saved{}, err
	}
	s.Start, s.End, s.CreatedAt = s.Start.UTC(), s.End.UTC(), s.CreatedAt.UTC()
	return s, nil
}
