package repository

import (
	"context"

	"github.com/avillegas/roster-stats-service/internal/model"
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
// The evaluation engine leans on it hard: every evaluation is one WithinTx call.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// TeamRepository declares persistence operations for the team scope registry.
// I return domain models and surface domain errors from errors.go rather than PG codes.
type TeamRepository interface {
	Create(ctx context.Context, t model.Team) (model.Team, error)
	GetByID(ctx context.Context, id int64) (model.Team, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// PlayerRepository declares persistence operations for roster members.
type PlayerRepository interface {
	Create(ctx context.Context, p model.Player) (model.Player, error)
	GetByID(ctx context.Context, id int64) (model.Player, error)
	ListByTeam(ctx context.Context, teamID int64, p Page) (PageResult[model.Player], error)
	// ListRanked returns up to limit players of a team ordered by the given
	// ranking metric, highest first. The metric must be one of the
	// RankBy* constants; anything else is rejected.
	ListRanked(ctx context.Context, teamID int64, metric string, limit int) ([]model.Player, error)
	// UpdateProfile rewrites identity fields only. Counters and averages are
	// untouchable through this path.
	UpdateProfile(ctx context.Context, id int64, profile model.PlayerProfile) (model.Player, error)
	// ApplyEvaluation adds counter deltas in-place and sets the recomputed
	// averages in a single UPDATE.
	ApplyEvaluation(ctx context.Context, id int64, upd model.PlayerStatsUpdate) error
	// AdjustCallUps shifts total_call_ups by delta, floored at zero.
	AdjustCallUps(ctx context.Context, id int64, delta int) error
	Delete(ctx context.Context, id int64) error
}

// Ranking metrics accepted by PlayerRepository.ListRanked.
const (
	RankByGoals   = "goals"
	RankByAssists = "assists"
	RankByMinutes = "minutes"
	RankByRating  = "rating"
)

// EventRepository declares persistence operations for events.
type EventRepository interface {
	Create(ctx context.Context, e model.Event) (model.Event, error)
	GetByID(ctx context.Context, id int64) (model.Event, error)
	// ListByTeam lists a team's events newest first; eventType narrows the
	// result when non-empty.
	ListByTeam(ctx context.Context, teamID int64, eventType string, p Page) (PageResult[model.Event], error)
	// ListEvaluatedByTeam returns evaluated events in chronological order,
	// the feed behind the collective-rating evolution chart.
	ListEvaluatedByTeam(ctx context.Context, teamID int64) ([]model.Event, error)
	SetCallUps(ctx context.Context, id int64, playerIDs []int64) error
	// MarkEvaluated flips the evaluated flag conditionally: it fails with
	// ErrConflict when the event is already evaluated, which lets the engine
	// treat the flag as a compare-and-commit guard instead of a racy
	// check-then-act read.
	MarkEvaluated(ctx context.Context, id int64) error
	RecordOutcome(ctx context.Context, id int64, out model.EventOutcome) error
	GetSeasonSummary(ctx context.Context, teamID int64) (model.SeasonSummary, error)
	Delete(ctx context.Context, id int64) error
}

// EvaluationRepository declares operations for the append-only evaluation
// records. There is deliberately no update method.
type EvaluationRepository interface {
	Insert(ctx context.Context, e model.Evaluation) (model.Evaluation, error)
	ListByEvent(ctx context.Context, eventID int64) ([]model.Evaluation, error)
	// ListByPlayer returns a player's evaluations newest event first.
	ListByPlayer(ctx context.Context, playerID int64) ([]model.Evaluation, error)
	DeleteByEvent(ctx context.Context, eventID int64) (int64, error)
	DeleteByPlayer(ctx context.Context, playerID int64) (int64, error)
}
