package redisdrafts

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/draft"
	testutil "github.com/tclass/web/tests"
)

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client, err := Open(context.Background(), core.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestDraftRepository(t *testing.T) {
	_, client := setup(t)
	testutil.CheckDraftRepository(t, NewDraftRepository(client, 0))
}

func TestDraftRepository_ttl(t *testing.T) {
	mr, client := setup(t)
	repo := NewDraftRepository(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, draft.VocationalKey, "o", []byte(`{}`)))
	assert.Equal(t, time.Hour, mr.TTL("tclass_vocational_form_draft_v1:o"))

	mr.FastForward(2 * time.Hour)
	_, err := repo.Load(ctx, draft.VocationalKey, "o")
	assert.Equal(t, draft.ErrNotFound, err)
}

func TestOpen_unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Open(context.Background(), core.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
