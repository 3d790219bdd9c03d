package panel

import (
	"context"

	"github.com/rs/zerolog"

	"coachline/internal/api"
	"coachline/internal/domain"
)

type AgreementAPI interface {
	FetchAgreementsByCoachingSessionID(ctx context.Context, sessionID string) ([]domain.Agreement, error)
	CreateAgreement(ctx context.Context, sessionID, userID, body string) (domain.Agreement, error)
	UpdateAgreement(ctx context.Context, id, sessionID, userID, body string) (domain.Agreement, error)
	DeleteAgreement(ctx context.Context, id string) error
}

type ActionAPI interface {
	FetchActionsByCoachingSessionID(ctx context.Context, sessionID string) ([]domain.Action, error)
	CreateAction(ctx context.Context, sessionID, userID string, draft api.ActionDraft) (domain.Action, error)
	UpdateAction(ctx context.Context, id, sessionID, userID string, draft api.ActionDraft) (domain.Action, error)
	DeleteAction(ctx context.Context, id string) error
}

type (
	Agreements = Panel[domain.Agreement, string]
	Actions    = Panel[domain.Action, api.ActionDraft]
)

var AgreementColumns = []Column[domain.Agreement]{
	{Key: "body", Title: "Agreement", Value: func(a domain.Agreement) any { return a.Body }},
	{Key: "created_at", Title: "Created", Value: func(a domain.Agreement) any { return a.CreatedAt }},
	{Key: "updated_at", Title: "Updated", Value: func(a domain.Agreement) any { return a.UpdatedAt }},
}

var ActionColumns = []Column[domain.Action]{
	{Key: "body", Title: "Action", Value: func(a domain.Action) any { return a.Body }},
	{Key: "status", Title: "Status", Value: func(a domain.Action) any { return a.Status }},
	{Key: "due_by", Title: "Due", Value: func(a domain.Action) any { return a.DueBy }},
	{Key: "created_at", Title: "Created", Value: func(a domain.Action) any { return a.CreatedAt }},
	{Key: "updated_at", Title: "Updated", Value: func(a domain.Action) any { return a.UpdatedAt }},
}

type agreementBackend struct {
	api       AgreementAPI
	sessionID domain.ID
	userID    domain.ID
}

func (b agreementBackend) List(ctx context.Context) ([]domain.Agreement, error) {
	rows, err := b.api.FetchAgreementsByCoachingSessionID(ctx, b.sessionID)
	if api.IsNotFound(err) {
		return nil, nil
	}
	return rows, err
}

func (b agreementBackend) Create(ctx context.Context, body string) (domain.Agreement, error) {
	return b.api.CreateAgreement(ctx, b.sessionID, b.userID, body)
}

func (b agreementBackend) Update(ctx context.Context, id domain.ID, body string) (domain.Agreement, error) {
	return b.api.UpdateAgreement(ctx, id, b.sessionID, b.userID, body)
}

func (b agreementBackend) Delete(ctx context.Context, id domain.ID) error {
	return b.api.DeleteAgreement(ctx, id)
}

// NewAgreements edits the agreements of one coaching session.
func NewAgreements(client AgreementAPI, sessionID, userID domain.ID, logger zerolog.Logger) *Agreements {
	return New[domain.Agreement, string](
		agreementBackend{api: client, sessionID: sessionID, userID: userID},
		AgreementColumns,
		func(body string) string { return body },
		logger.With().Str("panel", "agreements").Logger(),
	)
}

type actionBackend struct {
	api       ActionAPI
	sessionID domain.ID
	userID    domain.ID
}

func (b actionBackend) List(ctx context.Context) ([]domain.Action, error) {
	rows, err := b.api.FetchActionsByCoachingSessionID(ctx, b.sessionID)
	if api.IsNotFound(err) {
		return nil, nil
	}
	return rows, err
}

func (b actionBackend) Create(ctx context.Context, draft api.ActionDraft) (domain.Action, error) {
	if !draft.Status.Valid() {
		draft.Status = domain.NotStarted
	}
	return b.api.CreateAction(ctx, b.sessionID, b.userID, draft)
}

func (b actionBackend) Update(ctx context.Context, id domain.ID, draft api.ActionDraft) (domain.Action, error) {
	return b.api.UpdateAction(ctx, id, b.sessionID, b.userID, draft)
}

func (b actionBackend) Delete(ctx context.Context, id domain.ID) error {
	return b.api.DeleteAction(ctx, id)
}

// NewActions edits the actions of one coaching session.
func NewActions(client ActionAPI, sessionID, userID domain.ID, logger zerolog.Logger) *Actions {
	return New[domain.Action, api.ActionDraft](
		actionBackend{api: client, sessionID: sessionID, userID: userID},
		ActionColumns,
		func(d api.ActionDraft) string { return d.Body },
		logger.With().Str("panel", "actions").Logger(),
	)
}
