package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachline/internal/domain"
)

func TestDefaultsRoundTrip(t *testing.T) {
	t.Run("organization", func(t *testing.T) {
		s, err := StringifyOrganization(domain.DefaultOrganization())
		require.NoError(t, err)
		got, err := ParseOrganization([]byte(s))
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultOrganization(), got)
	})
	t.Run("coaching relationship", func(t *testing.T) {
		s, err := StringifyCoachingRelationship(domain.DefaultCoachingRelationshipWithUserNames())
		require.NoError(t, err)
		got, err := ParseCoachingRelationship([]byte(s))
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultCoachingRelationshipWithUserNames(), got)
	})
	t.Run("coaching session", func(t *testing.T) {
		s, err := StringifyCoachingSession(domain.DefaultCoachingSession())
		require.NoError(t, err)
		got, err := ParseCoachingSession([]byte(s))
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultCoachingSession(), got)
	})
	t.Run("note", func(t *testing.T) {
		s, err := StringifyNote(domain.DefaultNote())
		require.NoError(t, err)
		got, err := ParseNote([]byte(s))
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultNote(), got)
	})
	t.Run("agreement", func(t *testing.T) {
		s, err := StringifyAgreement(domain.DefaultAgreement())
		require.NoError(t, err)
		got, err := ParseAgreement([]byte(s))
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultAgreement(), got)
	})
	t.Run("action", func(t *testing.T) {
		s, err := StringifyAction(domain.DefaultAction())
		require.NoError(t, err)
		got, err := ParseAction([]byte(s))
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultAction(), got)
	})
	t.Run("overarching goal", func(t *testing.T) {
		s, err := StringifyOverarchingGoal(domain.DefaultOverarchingGoal())
		require.NoError(t, err)
		got, err := ParseOverarchingGoal([]byte(s))
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultOverarchingGoal(), got)
	})
	t.Run("user session", func(t *testing.T) {
		s, err := StringifyUserSession(domain.DefaultUserSession())
		require.NoError(t, err)
		got, err := ParseUserSession([]byte(s))
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultUserSession(), got)
	})
}

func TestParseAgreement(t *testing.T) {
	raw := `{"id":"A1","coaching_session_id":"S1","body":"b","user_id":"U1","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}`
	a, err := ParseAgreement([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "A1", a.ID)
	assert.Equal(t, "b", a.Body)
	assert.True(t, a.CreatedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestValidationFailures(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		field string
	}{
		{"not an object", `[1,2]`, ""},
		{"missing body", `{"id":"A1","coaching_session_id":"S1","user_id":"U1","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}`, "body"},
		{"id not string", `{"id":7,"coaching_session_id":"S1","body":"b","user_id":"U1","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}`, "id"},
		{"bad timestamp", `{"id":"A1","coaching_session_id":"S1","body":"b","user_id":"U1","created_at":"yesterday","updated_at":"2024-01-01T00:00:00Z"}`, "created_at"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAgreement([]byte(tc.raw))
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "Agreement", ve.Entity)
			assert.Equal(t, tc.field, ve.Field)
			assert.Contains(t, err.Error(), "Invalid Agreement data")
		})
	}
}

func TestParseActionRejectsUnknownStatus(t *testing.T) {
	raw := `{"id":"X","coaching_session_id":"S1","body":"b","user_id":"U1","status":"someday","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}`
	_, err := ParseAction([]byte(raw))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status", ve.Field)
}

func TestParseCoachingSessionsSortsByDate(t *testing.T) {
	raw := `[
		{"id":"late","coaching_relationship_id":"R1","date":"2024-03-01T10:00:00Z","timezone":"UTC","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"},
		{"id":"early","coaching_relationship_id":"R1","date":"2024-02-01T10:00:00+02:00","timezone":"UTC","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}
	]`
	sessions, err := ParseCoachingSessions([]byte(raw))
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "early", sessions[0].ID)
	assert.Equal(t, "late", sessions[1].ID)
}

func TestParseListReportsItemIndex(t *testing.T) {
	raw := `[{"id":"O1","name":"Acme","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"},{"id":"O2"}]`
	_, err := ParseOrganizations([]byte(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 1")
}

func TestValidateByEntityName(t *testing.T) {
	ok := `{"id":"O1","name":"Acme","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}`
	require.NoError(t, Validate("Organization", []byte(ok)))

	err := Validate("Organization", []byte(`{"id":"O1"}`))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)

	assert.Error(t, Validate("Spaceship", []byte(ok)))
}
