// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/peladahub/pelada-service/internal/balancer"
	"github.com/peladahub/pelada-service/internal/model"
	"github.com/peladahub/pelada-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

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

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// NewInvalidInputError exposes aggregated validation errors to callers outside
// the package, e.g. handlers rejecting malformed request bodies.
func NewInvalidInputError(fe []FieldError) error { return newInvalidInput(fe) }

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

// PlayerInput carries the writable player fields for create and update.
type PlayerInput struct {
	Name       string
	Nickname   string
	Position   string
	SkillLevel int
}

// PlayerService defines roster use cases.
type PlayerService interface {
	CreatePlayer(ctx context.Context, in PlayerInput) (model.Player, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (model.Player, error)
	ListPlayers(ctx context.Context, page repository.Page) (repository.PageResult[model.Player], error)
	UpdatePlayer(ctx context.Context, id uuid.UUID, in PlayerInput) (model.Player, error)
	DeletePlayer(ctx context.Context, id uuid.UUID) error
	GetPlayerAggregatedStats(ctx context.Context, playerID uuid.UUID) (model.PlayerAggregatedStats, error)
}

// MatchService defines match history use cases and accepts finished matches
// from the session engine for archival.
type MatchService interface {
	Archive(ctx context.Context, m model.Match) error
	GetMatch(ctx context.Context, id uuid.UUID) (model.Match, error)
	ListMatches(ctx context.Context, page repository.Page) (repository.PageResult[model.Match], error)
}

// DrawService defines the team draw use case.
type DrawService interface {
	DrawTeams(ctx context.Context, playerIDs []uuid.UUID, mode balancer.Mode, playersPerTeam int) ([]model.Team, error)
}
