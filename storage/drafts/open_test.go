package drafts

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tclass/web/core"
	testutil "github.com/tclass/web/tests"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		conf := testConfig(t)
		conf.Draft.Store = "memory"
		repo, closeFn, err := Open(ctx, conf)
		require.NoError(t, err)
		defer func() { assert.NoError(t, closeFn()) }()
		testutil.CheckDraftRepository(t, repo)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		conf := testConfig(t)
		conf.Draft.Store = "redis"
		conf.Redis.Addr = mr.Addr()
		repo, closeFn, err := Open(ctx, conf)
		require.NoError(t, err)
		defer func() { assert.NoError(t, closeFn()) }()
		testutil.CheckDraftRepository(t, repo)
	})
}

func testConfig(t *testing.T) *core.Config {
	conf, err := core.LoadConfig("TEST", t.TempDir())
	require.NoError(t, err)
	return conf
}
