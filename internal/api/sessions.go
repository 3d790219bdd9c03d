package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"coachline/internal/codec"
	"coachline/internal/domain"
)

const dateLayout = "2006-01-02"

// FetchCoachingSessions lists a relationship's sessions between from and to
// (inclusive calendar dates), ordered by date.
func (c *Client) FetchCoachingSessions(ctx context.Context, relationshipID string, from, to time.Time) ([]domain.CoachingSession, error) {
	op := operation{key: "fetch_coaching_sessions", desc: "Fetch of CoachingSessions by coaching relationship id", id: relationshipID}
	q := url.Values{}
	q.Set("coaching_relationship_id", relationshipID)
	q.Set("from_date", from.Format(dateLayout))
	q.Set("to_date", to.Format(dateLayout))
	data, err := c.doJSON(ctx, op, http.MethodGet, "coaching_sessions?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return decode(c, op, data, codec.ParseCoachingSessions)
}
