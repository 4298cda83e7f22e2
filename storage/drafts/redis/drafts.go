package redisdrafts

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/draft"
)

// Open connects to Redis and checks the connection.
func Open(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

type draftRepository struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ draft.Repository = (*draftRepository)(nil) // interface compliance check

// NewDraftRepository stores drafts as plain string values; ttl 0 keeps them until cleared.
func NewDraftRepository(client redis.Cmdable, ttl time.Duration) draft.Repository {
	return &draftRepository{client: client, ttl: ttl}
}

func (repo *draftRepository) Load(ctx context.Context, key draft.Key, owner string) ([]byte, error) {
	data, err := repo.client.Get(ctx, draft.StorageID(key, owner)).Bytes()
	if err == redis.Nil {
		return nil, draft.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading draft")
	}
	return data, nil
}

func (repo *draftRepository) Save(ctx context.Context, key draft.Key, owner string, data []byte) error {
	err := repo.client.Set(ctx, draft.StorageID(key, owner), data, repo.ttl).Err()
	return errors.Wrap(err, "saving draft")
}

func (repo *draftRepository) Clear(ctx context.Context, key draft.Key, owner string) error {
	err := repo.client.Del(ctx, draft.StorageID(key, owner)).Err()
	return errors.Wrap(err, "clearing draft")
}
