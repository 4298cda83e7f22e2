package inmemdrafts

import (
	"context"
	"sync"

	"github.com/tclass/web/core/draft"
)

type (
	DB struct {
		drafts *draftTable
	}

	draftTable struct {
		sync.RWMutex
		table map[string][]byte
	}
)

func Open() *DB {
	return &DB{drafts: &draftTable{table: make(map[string][]byte)}}
}

type draftRepository struct {
	db *draftTable
}

var _ draft.Repository = (*draftRepository)(nil) // interface compliance check

func NewDraftRepository(db *DB) draft.Repository {
	return &draftRepository{db: db.drafts}
}

func (repo *draftRepository) Load(_ context.Context, key draft.Key, owner string) ([]byte, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	data, ok := repo.db.table[draft.StorageID(key, owner)]
	if !ok {
		return nil, draft.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (repo *draftRepository) Save(_ context.Context, key draft.Key, owner string, data []byte) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[draft.StorageID(key, owner)] = append([]byte(nil), data...)
	return nil
}

func (repo *draftRepository) Clear(_ context.Context, key draft.Key, owner string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.table, draft.StorageID(key, owner))
	return nil
}
