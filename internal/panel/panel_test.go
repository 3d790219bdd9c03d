package panel_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachline/internal/api"
	"coachline/internal/apitest"
	"coachline/internal/domain"
	"coachline/internal/panel"
)

func loggedIn(t *testing.T) (*api.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser("coach@example.com", "secret", domain.UserSession{ID: "U1"})
	c := api.New(srv.URL)
	_, err := c.Login(context.Background(), "coach@example.com", "secret")
	require.NoError(t, err)
	return c, srv
}

func TestAgreementEditKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	c, srv := loggedIn(t)
	srv.AddAgreement(domain.Agreement{
		ID: "A1", CoachingSessionID: "S1", Body: "b", UserID: "U1",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	p := panel.NewAgreements(c, "S1", "U1", zerolog.Nop())
	require.NoError(t, p.Load(ctx))
	require.Len(t, p.Rows(), 1)
	assert.Equal(t, "b", p.Rows()[0].Body)

	_, err := p.Edit(ctx, "A1", "b2")
	require.NoError(t, err)

	rows := p.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "A1", rows[0].ID)
	assert.Equal(t, "b2", rows[0].Body)

	reqs := srv.Requests()
	last := reqs[len(reqs)-1]
	assert.Equal(t, "PUT", last.Method)
	assert.Equal(t, "/agreements/A1", last.Path)
	assert.Contains(t, last.Body, `"body":"b2"`)
}

func TestAgreementAddAndDelete(t *testing.T) {
	ctx := context.Background()
	c, srv := loggedIn(t)
	p := panel.NewAgreements(c, "S1", "U1", zerolog.Nop())
	require.NoError(t, p.Load(ctx))
	assert.Empty(t, p.Rows())

	created, err := p.Add(ctx, "Meet weekly")
	require.NoError(t, err)
	require.Len(t, p.Rows(), 1)
	assert.Equal(t, "S1", created.CoachingSessionID)

	require.NoError(t, p.Delete(ctx, created.ID))
	assert.Empty(t, p.Rows())
	assert.Equal(t, 1, srv.CountRequests("DELETE", "/agreements/"+created.ID))
}

func TestBlankBodyIsIgnored(t *testing.T) {
	ctx := context.Background()
	c, srv := loggedIn(t)
	p := panel.NewAgreements(c, "S1", "U1", zerolog.Nop())

	_, err := p.Add(ctx, "   ")
	require.NoError(t, err)
	_, err = p.Edit(ctx, "A1", "\t")
	require.NoError(t, err)

	assert.Zero(t, srv.CountRequests("POST", "/agreements"))
	assert.Zero(t, srv.CountRequests("PUT", "/agreements/A1"))
	assert.Empty(t, p.Rows())
}

func TestFailedEditLeavesRows(t *testing.T) {
	ctx := context.Background()
	c, srv := loggedIn(t)
	srv.AddAgreement(domain.Agreement{ID: "A1", CoachingSessionID: "S1", Body: "b"})
	p := panel.NewAgreements(c, "S1", "U1", zerolog.Nop())
	require.NoError(t, p.Load(ctx))

	srv.Fail("PUT", "/agreements/A1", 500)
	_, err := p.Edit(ctx, "A1", "b2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrServer))
	assert.Equal(t, "b", p.Rows()[0].Body)
}

func TestUnknownRowIsRejected(t *testing.T) {
	ctx := context.Background()
	c, srv := loggedIn(t)
	srv.AddAgreement(domain.Agreement{ID: "A1", CoachingSessionID: "S1", Body: "b"})
	srv.AddAgreement(domain.Agreement{ID: "A9", CoachingSessionID: "S2", Body: "other session"})
	p := panel.NewAgreements(c, "S1", "U1", zerolog.Nop())
	require.NoError(t, p.Load(ctx))

	_, err := p.Edit(ctx, "A9", "x")
	require.ErrorIs(t, err, panel.ErrUnknownRow)
	err = p.Delete(ctx, "A9")
	require.ErrorIs(t, err, panel.ErrUnknownRow)

	assert.Zero(t, srv.CountRequests("PUT", "/agreements/A9"))
	assert.Zero(t, srv.CountRequests("DELETE", "/agreements/A9"))
	assert.Equal(t, []string{"A1"}, ids(p.Rows()))
	assert.Equal(t, "b", p.Rows()[0].Body)
}

func TestActionsPanel(t *testing.T) {
	ctx := context.Background()
	c, _ := loggedIn(t)
	p := panel.NewActions(c, "S1", "U1", zerolog.Nop())

	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	created, err := p.Add(ctx, api.ActionDraft{Body: "Draft plan", DueBy: due})
	require.NoError(t, err)
	assert.Equal(t, domain.NotStarted, created.Status)
	assert.True(t, due.Equal(created.DueBy))

	updated, err := p.Edit(ctx, created.ID, api.ActionDraft{Body: "Draft plan", Status: domain.Completed, DueBy: due})
	require.NoError(t, err)
	assert.Equal(t, domain.Completed, updated.Status)
	require.Len(t, p.Rows(), 1)
	assert.Equal(t, domain.Completed, p.Rows()[0].Status)

	var buf bytes.Buffer
	p.Render(&buf)
	assert.Contains(t, buf.String(), "Draft plan")
	assert.Contains(t, buf.String(), "Completed")
}

type memBackend struct {
	rows []domain.Agreement
}

func (m *memBackend) List(context.Context) ([]domain.Agreement, error) { return m.rows, nil }
func (m *memBackend) Create(_ context.Context, body string) (domain.Agreement, error) {
	return domain.Agreement{ID: body, Body: body}, nil
}
func (m *memBackend) Update(_ context.Context, id domain.ID, body string) (domain.Agreement, error) {
	return domain.Agreement{ID: id, Body: body}, nil
}
func (m *memBackend) Delete(context.Context, domain.ID) error { return nil }

func ids(rows []domain.Agreement) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestSortToggle(t *testing.T) {
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	backend := &memBackend{rows: []domain.Agreement{
		{ID: "x", Body: "same", CreatedAt: day(3)},
		{ID: "y", Body: "alpha", CreatedAt: day(10)},
		{ID: "z", Body: "same", CreatedAt: day(1)},
		{ID: "w", Body: "Beta", CreatedAt: day(2)},
	}}
	p := panel.New[domain.Agreement, string](backend, panel.AgreementColumns, func(s string) string { return s }, zerolog.Nop())
	require.NoError(t, p.Load(ctx))

	t.Run("dates compare as time", func(t *testing.T) {
		require.NoError(t, p.SortBy("created_at"))
		assert.Equal(t, []string{"z", "w", "x", "y"}, ids(p.Rows()))
		require.NoError(t, p.SortBy("created_at"))
		assert.Equal(t, []string{"y", "x", "w", "z"}, ids(p.Rows()))
	})

	t.Run("asc desc asc is stable", func(t *testing.T) {
		require.NoError(t, p.SortBy("body"))
		key, dir := p.Sort()
		assert.Equal(t, "body", key)
		assert.Equal(t, panel.Asc, dir)
		first := ids(p.Rows())

		require.NoError(t, p.SortBy("body"))
		_, dir = p.Sort()
		assert.Equal(t, panel.Desc, dir)

		require.NoError(t, p.SortBy("body"))
		assert.Equal(t, first, ids(p.Rows()))
		assert.Equal(t, "y", first[0])
		assert.Equal(t, "w", first[1])
	})

	t.Run("unknown column", func(t *testing.T) {
		assert.Error(t, p.SortBy("nope"))
	})

	t.Run("added rows follow the active sort", func(t *testing.T) {
		_, err := p.Add(ctx, "aardvark")
		require.NoError(t, err)
		assert.Equal(t, "aardvark", p.Rows()[0].ID)
	})
}
