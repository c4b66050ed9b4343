package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/peladahub/pelada-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// PlayerRepository declares persistence operations for the roster.
// Implementations return domain models and surface the domain errors from
// errors.go rather than storage-specific codes.
type PlayerRepository interface {
	Create(ctx context.Context, p model.Player) (model.Player, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Player, error)
	// ListByIDs returns the players for ids. A missing id yields ErrNotFound;
	// the draw flow must never silently shrink its input.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Player, error)
	List(ctx context.Context, p Page) (PageResult[model.Player], error)
	Update(ctx context.Context, p model.Player) (model.Player, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// GetAggregatedStats computes career totals for one player from archived
	// matches: games, wins, losses, draws, goals, assists.
	GetAggregatedStats(ctx context.Context, playerID uuid.UUID) (model.PlayerAggregatedStats, error)
}

// MatchRepository declares persistence operations for finished matches.
type MatchRepository interface {
	// Archive stores a finished match along with its lineups and goal log as
	// one atomic unit. The record is immutable afterwards.
	Archive(ctx context.Context, m model.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Match, error)
	// List returns matches newest first.
	List(ctx context.Context, p Page) (PageResult[model.Match], error)
}
