package pgdrafts

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tclass/web/core/draft"
)

const (
	loadQuery = `SELECT data FROM form_drafts WHERE storage_key = $1 AND owner = $2`
	saveQuery = `
INSERT INTO form_drafts (storage_key, owner, data, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (storage_key, owner) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	clearQuery = `DELETE FROM form_drafts WHERE storage_key = $1 AND owner = $2`
)

type draftRepository struct {
	db *sqlx.DB
}

var _ draft.Repository = (*draftRepository)(nil) // interface compliance check

func NewDraftRepository(db *sqlx.DB) draft.Repository {
	return &draftRepository{db: db}
}

func (repo *draftRepository) Load(ctx context.Context, key draft.Key, owner string) ([]byte, error) {
	var data []byte
	err := repo.db.GetContext(ctx, &data, loadQuery, string(key), owner)
	if err == sql.ErrNoRows {
		return nil, draft.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading draft")
	}
	return data, nil
}

func (repo *draftRepository) Save(ctx context.Context, key draft.Key, owner string, data []byte) error {
	_, err := repo.db.ExecContext(ctx, saveQuery, string(key), owner, string(data))
	return errors.Wrap(err, "saving draft")
}

func (repo *draftRepository) Clear(ctx context.Context, key draft.Key, owner string) error {
	_, err := repo.db.ExecContext(ctx, clearQuery, string(key), owner)
	return errors.Wrap(err, "clearing draft")
}
