// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrAlreadyEvaluated signals a repeat or racing evaluation of an event
// whose one-time transition already happened.
var ErrAlreadyEvaluated = errors.New("event already evaluated")

// ErrEventLocked signals an attempt to edit an evaluated event's call-ups.
var ErrEventLocked = errors.New("event locked")

// ErrForbidden signals a scope whose role may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error if any field errors are present.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	if v, ok := err.(feIface); ok && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// TeamService defines the tenant registry use cases.
type TeamService interface {
	CreateTeam(ctx context.Context, name string) (model.Team, error)
	GetTeam(ctx context.Context, id int64) (model.Team, error)
}

// RosterService defines roster maintenance use cases.
type RosterService interface {
	CreatePlayer(ctx context.Context, scope model.Scope, profile model.PlayerProfile) (model.Player, error)
	GetPlayer(ctx context.Context, scope model.Scope, id int64) (model.Player, error)
	ListPlayers(ctx context.Context, scope model.Scope, page repository.Page) (repository.PageResult[model.Player], error)
	UpdatePlayerProfile(ctx context.Context, scope model.Scope, id int64, profile model.PlayerProfile) (model.Player, error)
	DeletePlayer(ctx context.Context, scope model.Scope, id int64) error
}

// EventService defines event maintenance and call-up use cases.
type EventService interface {
	CreateEvent(ctx context.Context, scope model.Scope, in CreateEventInput) (model.Event, error)
	GetEvent(ctx context.Context, scope model.Scope, id int64) (model.Event, error)
	ListEvents(ctx context.Context, scope model.Scope, eventType string, page repository.Page) (repository.PageResult[model.Event], error)
	SetCallUps(ctx context.Context, scope model.Scope, eventID int64, playerIDs []int64) (model.Event, error)
	DeleteEvent(ctx context.Context, scope model.Scope, id int64) error
}

// CreateEventInput carries the fields an administrator supplies for a new event.
type CreateEventInput struct {
	Type        string
	Description string
	Date        string // ISO date, parsed and validated by the service
	Condition   string // matches only
}

// EvaluationService is the aggregation engine plus its read paths.
type EvaluationService interface {
	// EvaluateEvent performs the one-time evaluation transaction for an
	// event: evaluation rows, player running averages and counters, the
	// event's collective rating, and the match outcome if applicable.
	EvaluateEvent(ctx context.Context, scope model.Scope, eventID int64, inputs map[int64]model.EvaluationInput, score *model.MatchScore) (model.EvaluationResult, error)
	ListByEvent(ctx context.Context, scope model.Scope, eventID int64) ([]model.Evaluation, error)
	ListByPlayer(ctx context.Context, scope model.Scope, playerID int64) ([]model.Evaluation, error)
}

// DashboardService defines the read-only aggregate views.
type DashboardService interface {
	PlayerRankings(ctx context.Context, scope model.Scope, metric string, limit int) ([]model.Player, error)
	CollectiveEvolution(ctx context.Context, scope model.Scope) ([]model.Event, error)
	SeasonSummary(ctx context.Context, scope model.Scope) (model.SeasonSummary, error)
}
