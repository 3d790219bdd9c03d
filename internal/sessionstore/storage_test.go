package sessionstore_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachline/internal/db"
	"coachline/internal/migrate"
	"coachline/internal/sessionstore"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrate.Migrate(context.Background(), conn))
	return conn
}

func exerciseStorage(t *testing.T, s sessionstore.Storage) {
	ctx := context.Background()

	_, ok, err := s.Load(ctx, "app-state-store")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "app-state-store", []byte(`{"a":1}`)))
	require.NoError(t, s.Save(ctx, "app-state-store", []byte(`{"a":2}`)))
	got, ok, err := s.Load(ctx, "app-state-store")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":2}`, string(got))

	require.NoError(t, s.Delete(ctx, "app-state-store"))
	_, ok, err = s.Load(ctx, "app-state-store")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "x", []byte(`1`)))
	require.NoError(t, s.Save(ctx, "y", []byte(`2`)))
	require.NoError(t, s.Clear(ctx))
	_, ok, _ = s.Load(ctx, "x")
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	exerciseStorage(t, sessionstore.NewMemory())
}

func TestSQLite(t *testing.T) {
	conn := openDB(t)
	s, err := sessionstore.Begin(context.Background(), conn, "U1")
	require.NoError(t, err)
	exerciseStorage(t, s)
}

func TestScopesAreIsolated(t *testing.T) {
	conn := openDB(t)
	ctx := context.Background()

	first, err := sessionstore.Begin(ctx, conn, "U1")
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "auth-store", []byte(`"first"`)))

	second, err := sessionstore.Begin(ctx, conn, "U2")
	require.NoError(t, err)
	_, ok, err := second.Load(ctx, "auth-store")
	require.NoError(t, err)
	assert.False(t, ok, "new scope must not see the previous scope's state")

	current, err := sessionstore.Current(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, second.Scope, current.Scope)
	userID, err := current.UserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "U2", userID)
}

func TestEndRemovesScope(t *testing.T) {
	conn := openDB(t)
	ctx := context.Background()

	s, err := sessionstore.Begin(ctx, conn, "U1")
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "auth-store", []byte(`{}`)))
	require.NoError(t, s.End(ctx))

	_, err = sessionstore.Current(ctx, conn)
	assert.ErrorIs(t, err, sessionstore.ErrNoScope)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM session_state`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestCurrentOrBegin(t *testing.T) {
	conn := openDB(t)
	ctx := context.Background()

	s, err := sessionstore.CurrentOrBegin(ctx, conn)
	require.NoError(t, err)
	again, err := sessionstore.CurrentOrBegin(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, s.Scope, again.Scope)
}
