// Package drafts opens the configured draft.Repository.
package drafts

import (
	"context"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/draft"
	"github.com/tclass/web/storage/database"
	inmemdrafts "github.com/tclass/web/storage/drafts/inmem"
	pgdrafts "github.com/tclass/web/storage/drafts/postgres"
	redisdrafts "github.com/tclass/web/storage/drafts/redis"
)

// Open returns the repository of conf.Draft.Store and the func releasing it.
// The postgres store is migrated before use.
func Open(ctx context.Context, conf *core.Config) (draft.Repository, func() error, error) {
	switch conf.Draft.Store {
	case "redis":
		client, err := redisdrafts.Open(ctx, conf.Redis)
		if err != nil {
			return nil, nil, err
		}
		return redisdrafts.NewDraftRepository(client, conf.Draft.TTL), client.Close, nil

	case "postgres":
		db, err := database.Open(ctx, conf.Database)
		if err != nil {
			return nil, nil, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pgdrafts.NewDraftRepository(db), db.Close, nil

	default:
		return inmemdrafts.NewDraftRepository(inmemdrafts.Open()), func() error { return nil }, nil
	}
}
