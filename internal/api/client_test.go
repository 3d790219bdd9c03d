package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachline/internal/api"
	"coachline/internal/apitest"
	"coachline/internal/domain"
	"coachline/internal/metrics"
)

func newLoggedInClient(t *testing.T) (*api.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser("coach@example.com", "secret", domain.UserSession{ID: "U1", FirstName: "Jim", LastName: "Hodapp", DisplayName: "Jim"})
	c := api.New(srv.URL)
	_, err := c.Login(context.Background(), "coach@example.com", "secret")
	require.NoError(t, err)
	return c, srv
}

func TestLogin(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("coach@example.com", "secret", domain.UserSession{ID: "U1", DisplayName: "Jim"})
	c := api.New(srv.URL)

	t.Run("bad password is unauthorized", func(t *testing.T) {
		_, err := c.Login(context.Background(), "coach@example.com", "nope")
		require.Error(t, err)
		assert.True(t, errors.Is(err, api.ErrUnauthorized))
		assert.Equal(t, "Login failed: unauthorized", err.Error())
	})

	t.Run("valid credentials set the session cookie", func(t *testing.T) {
		user, err := c.Login(context.Background(), "coach@example.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, "U1", user.ID)
		assert.True(t, user.IsLoggedIn)
		cookies := c.SessionCookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, apitest.SessionCookie, cookies[0].Name)
	})

	t.Run("login is form encoded", func(t *testing.T) {
		reqs := srv.Requests()
		last := reqs[len(reqs)-1]
		assert.Equal(t, "/login", last.Path)
		assert.Contains(t, last.Body, "email=coach%40example.com")
	})
}

func TestRequestsCarryVersionHeader(t *testing.T) {
	c, srv := newLoggedInClient(t)
	c.APIVersion = "1.2.3"
	_, err := c.FetchOrganizations(context.Background())
	require.NoError(t, err)
	reqs := srv.Requests()
	assert.Equal(t, "1.2.3", reqs[len(reqs)-1].Version)
}

func TestUnauthenticatedCallsFail(t *testing.T) {
	srv := apitest.New(t)
	c := api.New(srv.URL)
	_, err := c.FetchAgreementsByCoachingSessionID(context.Background(), "S1")
	require.Error(t, err)
	assert.Equal(t, api.KindUnauthorized, api.KindOf(err))
	assert.Equal(t, "Fetch of Agreements by coaching session id failed: unauthorized", err.Error())
}

func TestStatusMapping(t *testing.T) {
	c, srv := newLoggedInClient(t)
	ctx := context.Background()

	t.Run("500 is a server error", func(t *testing.T) {
		srv.Fail(http.MethodGet, "/agreements", http.StatusInternalServerError)
		_, err := c.FetchAgreementsByCoachingSessionID(ctx, "S1")
		assert.True(t, errors.Is(err, api.ErrServer))
		assert.Contains(t, err.Error(), "internal server error")
	})

	t.Run("404 carries the id", func(t *testing.T) {
		_, err := c.FetchOrganization(ctx, "missing")
		assert.True(t, api.IsNotFound(err))
		assert.Equal(t, "Fetch of Organization not found for id missing", err.Error())
	})

	t.Run("other statuses are transport errors", func(t *testing.T) {
		srv.Fail(http.MethodGet, "/actions", http.StatusTeapot)
		_, err := c.FetchActionsByCoachingSessionID(ctx, "S1")
		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, api.KindTransport, apiErr.Kind)
		assert.Equal(t, http.StatusTeapot, apiErr.Status)
	})

	t.Run("network failure is a transport error", func(t *testing.T) {
		dead := api.New("http://127.0.0.1:1")
		_, err := dead.FetchOrganizations(ctx)
		assert.True(t, errors.Is(err, api.ErrTransport))
	})
}

func TestAgreementLifecycle(t *testing.T) {
	c, srv := newLoggedInClient(t)
	ctx := context.Background()
	srv.AddAgreement(domain.Agreement{ID: "A1", CoachingSessionID: "S1", Body: "b", UserID: "U1"})

	list, err := c.FetchAgreementsByCoachingSessionID(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Body)

	updated, err := c.UpdateAgreement(ctx, "A1", "S1", "U1", "b2")
	require.NoError(t, err)
	assert.Equal(t, "A1", updated.ID)
	assert.Equal(t, "b2", updated.Body)

	created, err := c.CreateAgreement(ctx, "S1", "U1", "new")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	require.NoError(t, c.DeleteAgreement(ctx, "A1"))
	list, err = c.FetchAgreementsByCoachingSessionID(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestActionDraftStatus(t *testing.T) {
	c, _ := newLoggedInClient(t)
	ctx := context.Background()
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	a, err := c.CreateAction(ctx, "S1", "U1", api.ActionDraft{Body: "call", DueBy: due})
	require.NoError(t, err)
	assert.Equal(t, domain.NotStarted, a.Status)
	assert.True(t, a.DueBy.Equal(due))

	a, err = c.UpdateAction(ctx, a.ID, "S1", "U1", api.ActionDraft{Body: "call", Status: domain.Completed, DueBy: due})
	require.NoError(t, err)
	assert.Equal(t, domain.Completed, a.Status)
}

func TestFetchCoachingSessionsUsesDateRange(t *testing.T) {
	c, srv := newLoggedInClient(t)
	srv.AddSession(domain.CoachingSession{ID: "in", CoachingRelationshipID: "R1", Date: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)})
	srv.AddSession(domain.CoachingSession{ID: "out", CoachingRelationshipID: "R1", Date: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)})

	sessions, err := c.FetchCoachingSessions(context.Background(), "R1",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "in", sessions[0].ID)

	reqs := srv.Requests()
	assert.Contains(t, reqs[len(reqs)-1].Query, "from_date=2024-01-01")
	assert.Contains(t, reqs[len(reqs)-1].Query, "to_date=2024-01-31")
}

func TestMetricsAreRecorded(t *testing.T) {
	c, _ := newLoggedInClient(t)
	reg := prometheus.NewRegistry()
	c.Metrics = metrics.NewCollector(reg)

	_, _ = c.FetchOrganizations(context.Background())
	_, _ = c.FetchOrganization(context.Background(), "missing")

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "coachline_api_requests_total")
	assert.Contains(t, names, "coachline_api_request_duration_seconds")
}

func TestRestoreSessionCookies(t *testing.T) {
	c, srv := newLoggedInClient(t)
	cookies := c.SessionCookies()

	fresh := api.New(srv.URL)
	require.NoError(t, fresh.RestoreSessionCookies(cookies))
	_, err := fresh.FetchOrganizations(context.Background())
	require.NoError(t, err)
}
