package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ID is an opaque identifier assigned by the backend. Empty means unset.
type ID = string

// Entity is implemented by every record the selection stores can hold.
type Entity interface {
	GetID() ID
}

type Organization struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Logo      string    `json:"logo,omitempty"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at" format:"date-time"`
	UpdatedAt time.Time `json:"updated_at" format:"date-time"`
}

func (o Organization) GetID() ID { return o.ID }

type CoachingRelationshipWithUserNames struct {
	ID               ID        `json:"id"`
	CoachID          ID        `json:"coach_id"`
	CoacheeID        ID        `json:"coachee_id"`
	CoachFirstName   string    `json:"coach_first_name"`
	CoachLastName    string    `json:"coach_last_name"`
	CoacheeFirstName string    `json:"coachee_first_name"`
	CoacheeLastName  string    `json:"coachee_last_name"`
	CreatedAt        time.Time `json:"created_at" format:"date-time"`
	UpdatedAt        time.Time `json:"updated_at" format:"date-time"`
}

func (r CoachingRelationshipWithUserNames) GetID() ID { return r.ID }

func (r CoachingRelationshipWithUserNames) CoachFullName() string {
	return strings.TrimSpace(r.CoachFirstName + " " + r.CoachLastName)
}

func (r CoachingRelationshipWithUserNames) CoacheeFullName() string {
	return strings.TrimSpace(r.CoacheeFirstName + " " + r.CoacheeLastName)
}

// Label is the "Coach -> Coachee" form shown when picking a relationship.
func (r CoachingRelationshipWithUserNames) Label() string {
	return fmt.Sprintf("%s -> %s", r.CoachFullName(), r.CoacheeFullName())
}

type CoachingSession struct {
	ID                     ID        `json:"id"`
	CoachingRelationshipID ID        `json:"coaching_relationship_id"`
	Date                   time.Time `json:"date" format:"date-time"`
	Timezone               string    `json:"timezone"`
	CreatedAt              time.Time `json:"created_at" format:"date-time"`
	UpdatedAt              time.Time `json:"updated_at" format:"date-time"`
}

func (s CoachingSession) GetID() ID { return s.ID }

// LocalDate returns the session date in the session's own timezone, falling
// back to UTC when the zone is unknown.
func (s CoachingSession) LocalDate() time.Time {
	if s.Timezone == "" {
		return s.Date.UTC()
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return s.Date.UTC()
	}
	return s.Date.In(loc)
}

type Note struct {
	ID                ID        `json:"id"`
	CoachingSessionID ID        `json:"coaching_session_id"`
	Body              string    `json:"body"`
	UserID            ID        `json:"user_id"`
	CreatedAt         time.Time `json:"created_at" format:"date-time"`
	UpdatedAt         time.Time `json:"updated_at" format:"date-time"`
}

func (n Note) GetID() ID { return n.ID }

type Agreement struct {
	ID                ID        `json:"id"`
	CoachingSessionID ID        `json:"coaching_session_id"`
	Body              string    `json:"body"`
	UserID            ID        `json:"user_id"`
	CreatedAt         time.Time `json:"created_at" format:"date-time"`
	UpdatedAt         time.Time `json:"updated_at" format:"date-time"`
}

func (a Agreement) GetID() ID { return a.ID }

type Action struct {
	ID                ID         `json:"id"`
	CoachingSessionID ID         `json:"coaching_session_id"`
	Body              string     `json:"body"`
	UserID            ID         `json:"user_id"`
	Status            ItemStatus `json:"status" enum:"not_started,in_progress,completed,wont_do"`
	StatusChangedAt   time.Time  `json:"status_changed_at" format:"date-time"`
	DueBy             time.Time  `json:"due_by" format:"date-time"`
	CreatedAt         time.Time  `json:"created_at" format:"date-time"`
	UpdatedAt         time.Time  `json:"updated_at" format:"date-time"`
}

func (a Action) GetID() ID { return a.ID }

type OverarchingGoal struct {
	ID                ID         `json:"id"`
	CoachingSessionID ID         `json:"coaching_session_id"`
	UserID            ID         `json:"user_id"`
	Title             string     `json:"title"`
	Body              string     `json:"body"`
	Status            ItemStatus `json:"status" enum:"not_started,in_progress,completed,wont_do"`
	StatusChangedAt   time.Time  `json:"status_changed_at" format:"date-time"`
	CompletedAt       time.Time  `json:"completed_at" format:"date-time"`
	CreatedAt         time.Time  `json:"created_at" format:"date-time"`
	UpdatedAt         time.Time  `json:"updated_at" format:"date-time"`
}

func (g OverarchingGoal) GetID() ID { return g.ID }

// UserSession is the authenticated principal. IsLoggedIn never crosses the wire.
type UserSession struct {
	ID          ID     `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	IsLoggedIn  bool   `json:"-"`
}

func (u UserSession) GetID() ID { return u.ID }

func DefaultOrganization() Organization { return Organization{} }

func DefaultCoachingRelationshipWithUserNames() CoachingRelationshipWithUserNames {
	return CoachingRelationshipWithUserNames{}
}

func DefaultCoachingSession() CoachingSession { return CoachingSession{} }

func DefaultNote() Note { return Note{} }

func DefaultAgreement() Agreement { return Agreement{} }

func DefaultAction() Action { return Action{Status: NotStarted} }

func DefaultOverarchingGoal() OverarchingGoal { return OverarchingGoal{Status: NotStarted} }

func DefaultUserSession() UserSession { return UserSession{} }

// FindByID returns the element of items whose id matches, or the zero value.
func FindByID[T Entity](items []T, id ID) (T, bool) {
	for _, it := range items {
		if it.GetID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// SortSessionsByDate orders sessions chronologically, newest last.
func SortSessionsByDate(sessions []CoachingSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Date.Before(sessions[j].Date)
	})
}
