package state

import (
	"github.com/rs/zerolog"

	"coachline/internal/domain"
	"coachline/internal/sessionstore"
)

const (
	OrganizationStoreName = "organization-state-store"
	RelationshipStoreName = "coaching-relationship-state-store"
	SessionStoreName      = "coaching-session-state-store"
	GoalStoreName         = "overarching-goal-state-store"
	AuthStoreName         = "auth-store"
	AppStoreName          = "app-state-store"
)

type (
	Organizations = Store[domain.Organization]
	Relationships = Store[domain.CoachingRelationshipWithUserNames]
	Sessions      = Store[domain.CoachingSession]
	Goals         = Store[domain.OverarchingGoal]
)

func NewOrganizations(storage sessionstore.Storage, logger zerolog.Logger) *Organizations {
	return NewStore(OrganizationStoreName, storage, logger, domain.DefaultOrganization())
}

func NewRelationships(storage sessionstore.Storage, logger zerolog.Logger) *Relationships {
	return NewStore(RelationshipStoreName, storage, logger, domain.DefaultCoachingRelationshipWithUserNames())
}

func NewSessions(storage sessionstore.Storage, logger zerolog.Logger) *Sessions {
	return NewStore(SessionStoreName, storage, logger, domain.DefaultCoachingSession())
}

func NewGoals(storage sessionstore.Storage, logger zerolog.Logger) *Goals {
	return NewStore(GoalStoreName, storage, logger, domain.DefaultOverarchingGoal())
}
