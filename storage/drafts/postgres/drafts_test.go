package pgdrafts

import (
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/tclass/web/storage/database"
	testutil "github.com/tclass/web/tests"
)

// TCLASS_TEST_DATABASE_URL points at a disposable Postgres database.
func TestDraftRepository(t *testing.T) {
	dsn := os.Getenv("TCLASS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TCLASS_TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.Migrate(db))
	_, err = db.Exec(`DELETE FROM form_drafts`)
	require.NoError(t, err)

	testutil.CheckDraftRepository(t, NewDraftRepository(db))
}
