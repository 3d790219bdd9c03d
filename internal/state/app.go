package state

import (
	"github.com/rs/zerolog"

	"coachline/internal/domain"
	"coachline/internal/sessionstore"
)

// Selection is the app-wide chain of selected ids.
type Selection struct {
	OrganizationID domain.ID `json:"organization_id"`
	RelationshipID domain.ID `json:"coaching_relationship_id"`
	SessionID      domain.ID `json:"coaching_session_id"`
}

type AppState struct {
	c *container[Selection]
}

func NewAppState(storage sessionstore.Storage, logger zerolog.Logger) *AppState {
	return &AppState{c: newContainer(AppStoreName, storage, logger, func() Selection { return Selection{} })}
}

// SetOrganizationID clears the dependent ids in the same write.
func (a *AppState) SetOrganizationID(id domain.ID) {
	a.c.update(func(s *Selection) {
		s.OrganizationID = id
		s.RelationshipID = ""
		s.SessionID = ""
	})
}

// SetRelationshipID clears the session id in the same write.
func (a *AppState) SetRelationshipID(id domain.ID) {
	a.c.update(func(s *Selection) {
		s.RelationshipID = id
		s.SessionID = ""
	})
}

func (a *AppState) SetSessionID(id domain.ID) {
	a.c.update(func(s *Selection) { s.SessionID = id })
}

func (a *AppState) Reset() { a.c.reset() }

func (a *AppState) Selection() Selection { return a.c.get() }

func (a *AppState) Subscribe(fn func(Selection)) (unsubscribe func()) { return a.c.subscribe(fn) }
