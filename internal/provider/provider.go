// Package provider scopes one set of stores to a Root. Code below a Root
// finds its stores through the context.
package provider

import (
	"context"

	"github.com/rs/zerolog"

	"coachline/internal/sessionstore"
	"coachline/internal/state"
)

// Root owns one fresh instance of every store.
type Root struct {
	Storage       sessionstore.Storage
	Organizations *state.Organizations
	Relationships *state.Relationships
	Sessions      *state.Sessions
	Goals         *state.Goals
	Auth          *state.Auth
	App           *state.AppState
}

// NewRoot builds the stores for one root, hydrating each from storage.
func NewRoot(ctx context.Context, storage sessionstore.Storage, logger zerolog.Logger) *Root {
	logger = logger.With().Str("component", "provider").Logger()
	if storage == nil {
		storage = sessionstore.NewMemory()
	}
	r := &Root{
		Storage:       storage,
		Organizations: state.NewOrganizations(storage, logger),
		Relationships: state.NewRelationships(storage, logger),
		Sessions:      state.NewSessions(storage, logger),
		Goals:         state.NewGoals(storage, logger),
		Auth:          state.NewAuth(storage, logger),
		App:           state.NewAppState(storage, logger),
	}
	logger.Debug().Msg("root created")
	return r
}

// ResetAll returns every store to its initial state.
func (r *Root) ResetAll() {
	r.Goals.Reset()
	r.Sessions.Reset()
	r.Relationships.Reset()
	r.Organizations.Reset()
	r.App.Reset()
	r.Auth.Reset()
}

type rootKey struct{}

func WithRoot(ctx context.Context, r *Root) context.Context {
	return context.WithValue(ctx, rootKey{}, r)
}

func FromContext(ctx context.Context) (*Root, bool) {
	r, ok := ctx.Value(rootKey{}).(*Root)
	return r, ok && r != nil
}

func mustRoot(ctx context.Context, hook string) *Root {
	r, ok := FromContext(ctx)
	if !ok {
		panic(hook + " must be used within a Root")
	}
	return r
}

func UseOrganizations(ctx context.Context) *state.Organizations {
	return mustRoot(ctx, "UseOrganizations").Organizations
}

func UseRelationships(ctx context.Context) *state.Relationships {
	return mustRoot(ctx, "UseRelationships").Relationships
}

func UseSessions(ctx context.Context) *state.Sessions {
	return mustRoot(ctx, "UseSessions").Sessions
}

func UseGoals(ctx context.Context) *state.Goals {
	return mustRoot(ctx, "UseGoals").Goals
}

func UseAuth(ctx context.Context) *state.Auth {
	return mustRoot(ctx, "UseAuth").Auth
}

func UseAppState(ctx context.Context) *state.AppState {
	return mustRoot(ctx, "UseAppState").App
}
