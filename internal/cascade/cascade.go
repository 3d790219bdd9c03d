// Package cascade keeps the organization, relationship and session
// selections consistent: choosing a parent clears every dependent
// selection before the new id becomes visible.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"coachline/internal/api"
	"coachline/internal/domain"
	"coachline/internal/provider"
)

var (
	ErrNoOrganization = errors.New("no organization selected")
	ErrNoRelationship = errors.New("no coaching relationship selected")
)

// API is the subset of the backend the cascade reads from.
type API interface {
	FetchOrganizations(ctx context.Context) ([]domain.Organization, error)
	FetchOrganizationsByUserID(ctx context.Context, userID string) ([]domain.Organization, error)
	FetchOrganization(ctx context.Context, id string) (domain.Organization, error)
	FetchCoachingRelationships(ctx context.Context, organizationID string) ([]domain.CoachingRelationshipWithUserNames, error)
	FetchCoachingRelationship(ctx context.Context, organizationID, relationshipID string) (domain.CoachingRelationshipWithUserNames, error)
	FetchCoachingSessions(ctx context.Context, relationshipID string, from, to time.Time) ([]domain.CoachingSession, error)
	FetchOverarchingGoalsByCoachingSessionID(ctx context.Context, sessionID string) ([]domain.OverarchingGoal, error)
}

const (
	keyOrganization  = "organization"
	keyRelationship  = "relationship"
	keyGoals         = "goals"
	keyOrganizations = "organizations"
	keyRelationships = "relationships"
	keySessions      = "sessions"
)

// Selector drives the selection chain of one Root.
//
// Every fetch carries a token; a response is applied only if its token is
// still the latest for its key. Store subscribers must not call back into
// the Selector synchronously.
type Selector struct {
	root   *provider.Root
	api    API
	logger zerolog.Logger

	// applyMu orders cascade writes against async results.
	applyMu sync.Mutex

	mu     sync.Mutex
	tokens map[string]uint64
	err    error

	wg sync.WaitGroup
}

func New(root *provider.Root, client API, logger zerolog.Logger) *Selector {
	return &Selector{
		root:   root,
		api:    client,
		logger: logger.With().Str("component", "cascade").Logger(),
		tokens: map[string]uint64{},
	}
}

// SelectOrganization clears the relationship, session and goal selections
// and then selects id. An empty id clears without fetching.
func (s *Selector) SelectOrganization(ctx context.Context, id domain.ID) {
	s.applyMu.Lock()
	s.clearErr()
	s.bump(keyRelationship, keyRelationships, keySessions, keyGoals)
	s.root.Goals.Reset()
	s.root.Sessions.Reset()
	s.root.Relationships.Reset()
	s.root.App.SetOrganizationID(id)
	s.root.Organizations.Select(id)
	token := s.bump(keyOrganization)
	s.applyMu.Unlock()

	if id == "" {
		return
	}
	s.spawn(ctx, keyOrganization, token, func(ctx context.Context) (func(), error) {
		org, err := s.api.FetchOrganization(ctx, id)
		if err != nil {
			return nil, err
		}
		return func() { s.root.Organizations.SetCurrent(org) }, nil
	})
}

// SelectRelationship clears the session and goal selections and then selects id.
func (s *Selector) SelectRelationship(ctx context.Context, id domain.ID) error {
	s.applyMu.Lock()
	orgID := s.root.Organizations.CurrentID()
	if id != "" && orgID == "" {
		s.applyMu.Unlock()
		return ErrNoOrganization
	}
	s.clearErr()
	s.bump(keySessions, keyGoals)
	s.root.Goals.Reset()
	s.root.Sessions.Reset()
	s.root.App.SetRelationshipID(id)
	s.root.Relationships.Select(id)
	token := s.bump(keyRelationship)
	s.applyMu.Unlock()

	if id == "" {
		return nil
	}
	s.spawn(ctx, keyRelationship, token, func(ctx context.Context) (func(), error) {
		rel, err := s.api.FetchCoachingRelationship(ctx, orgID, id)
		if err != nil {
			return nil, err
		}
		return func() { s.root.Relationships.SetCurrent(rel) }, nil
	})
	return nil
}

// SelectSession clears the goal selection, selects id and loads the
// session's overarching goals. The first goal becomes current.
func (s *Selector) SelectSession(ctx context.Context, id domain.ID) error {
	s.applyMu.Lock()
	if id != "" && s.root.Relationships.CurrentID() == "" {
		s.applyMu.Unlock()
		return ErrNoRelationship
	}
	s.clearErr()
	s.root.Goals.Reset()
	s.root.App.SetSessionID(id)
	s.root.Sessions.Select(id)
	token := s.bump(keyGoals)
	s.applyMu.Unlock()

	if id == "" {
		return nil
	}
	s.spawn(ctx, keyGoals, token, func(ctx context.Context) (func(), error) {
		goals, err := s.api.FetchOverarchingGoalsByCoachingSessionID(ctx, id)
		if api.IsNotFound(err) {
			goals, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		return func() {
			s.root.Goals.SetList(goals)
			if len(goals) > 0 {
				s.root.Goals.SetCurrent(goals[0])
			}
		}, nil
	})
	return nil
}

// LoadOrganizations fills the organization list, scoped to the signed-in
// user when one is known.
func (s *Selector) LoadOrganizations(ctx context.Context) error {
	token := s.issue(keyOrganizations)
	var (
		orgs []domain.Organization
		err  error
	)
	if userID := s.root.Auth.UserID(); userID != "" {
		orgs, err = s.api.FetchOrganizationsByUserID(ctx, userID)
	} else {
		orgs, err = s.api.FetchOrganizations(ctx)
	}
	return s.applyList(keyOrganizations, token, err, func() { s.root.Organizations.SetList(orgs) })
}

func (s *Selector) LoadRelationships(ctx context.Context) error {
	orgID := s.root.Organizations.CurrentID()
	if orgID == "" {
		return ErrNoOrganization
	}
	token := s.issue(keyRelationships)
	rels, err := s.api.FetchCoachingRelationships(ctx, orgID)
	return s.applyList(keyRelationships, token, err, func() { s.root.Relationships.SetList(rels) })
}

// LoadSessions fills the session list for the selected relationship within [from, to].
func (s *Selector) LoadSessions(ctx context.Context, from, to time.Time) error {
	relID := s.root.Relationships.CurrentID()
	if relID == "" {
		return ErrNoRelationship
	}
	token := s.issue(keySessions)
	sessions, err := s.api.FetchCoachingSessions(ctx, relID, from, to)
	return s.applyList(keySessions, token, err, func() { s.root.Sessions.SetList(sessions) })
}

// Err returns the last fetch failure of an asynchronous selection.
func (s *Selector) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Wait blocks until every outstanding fetch has settled.
func (s *Selector) Wait() { s.wg.Wait() }

// Close discards every response still in flight.
func (s *Selector) Close() {
	s.applyMu.Lock()
	s.bump(keyOrganization, keyRelationship, keyGoals, keyOrganizations, keyRelationships, keySessions)
	s.applyMu.Unlock()
}

func (s *Selector) applyList(key string, token uint64, err error, apply func()) error {
	if api.IsNotFound(err) {
		err = nil
		apply = func() { s.emptyList(key) }
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("load list")
		return fmt.Errorf("load %s: %w", key, err)
	}
	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	if !s.latest(key, token) {
		s.logger.Debug().Str("key", key).Uint64("token", token).Msg("discarding stale list")
		return nil
	}
	apply()
	return nil
}

func (s *Selector) emptyList(key string) {
	switch key {
	case keyOrganizations:
		s.root.Organizations.SetList(nil)
	case keyRelationships:
		s.root.Relationships.SetList(nil)
	case keySessions:
		s.root.Sessions.SetList(nil)
	}
}

func (s *Selector) spawn(ctx context.Context, key string, token uint64, fetch func(context.Context) (func(), error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		apply, err := fetch(ctx)

		s.applyMu.Lock()
		defer s.applyMu.Unlock()
		if !s.latest(key, token) {
			s.logger.Debug().Str("key", key).Uint64("token", token).Msg("discarding stale response")
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("fetch selection")
			s.setErr(fmt.Errorf("fetch %s: %w", key, err))
			return
		}
		apply()
	}()
}

func (s *Selector) issue(key string) uint64 {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	return s.bump(key)
}

// bump advances the token of each key and returns the last one.
func (s *Selector) bump(keys ...string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last uint64
	for _, k := range keys {
		s.tokens[k]++
		last = s.tokens[k]
	}
	return last
}

func (s *Selector) latest(key string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[key] == token
}

func (s *Selector) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Selector) clearErr() { s.setErr(nil) }
