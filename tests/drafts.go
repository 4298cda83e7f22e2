package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tclass/web/core/draft"
)

// CheckDraftRepository runs the behaviour every draft.Repository must have.
func CheckDraftRepository(t *testing.T, repo draft.Repository) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Load(ctx, draft.AdmissionKey, "owner-1")
	assert.Equal(t, draft.ErrNotFound, err, "load before save")

	require.NoError(t, repo.Save(ctx, draft.AdmissionKey, "owner-1", []byte(`{"firstName":"Ana"}`)))
	require.NoError(t, repo.Save(ctx, draft.VocationalKey, "owner-1", []byte(`{"firstName":"Ben"}`)))
	require.NoError(t, repo.Save(ctx, draft.AdmissionKey, "owner-2", []byte(`{"firstName":"Cy"}`)))

	data, err := repo.Load(ctx, draft.AdmissionKey, "owner-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Ana"}`, string(data))

	// last write wins
	require.NoError(t, repo.Save(ctx, draft.AdmissionKey, "owner-1", []byte(`{"firstName":"Ada"}`)))
	data, err = repo.Load(ctx, draft.AdmissionKey, "owner-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Ada"}`, string(data))

	require.NoError(t, repo.Clear(ctx, draft.AdmissionKey, "owner-1"))
	_, err = repo.Load(ctx, draft.AdmissionKey, "owner-1")
	assert.Equal(t, draft.ErrNotFound, err, "load after clear")

	// other keys and owners are untouched
	data, err = repo.Load(ctx, draft.VocationalKey, "owner-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Ben"}`, string(data))
	data, err = repo.Load(ctx, draft.AdmissionKey, "owner-2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Cy"}`, string(data))

	// clearing nothing is fine
	assert.NoError(t, repo.Clear(ctx, draft.AdmissionKey, "nobody"))
}
