package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/rs/zerolog"
)

type evaluationService struct {
	evaluations repository.EvaluationRepository
	players     repository.PlayerRepository
	events      repository.EventRepository
	tx          repository.TxManager
	log         zerolog.Logger
}

func NewEvaluationService(evaluations repository.EvaluationRepository, players repository.PlayerRepository, events repository.EventRepository, tx repository.TxManager, logger zerolog.Logger) EvaluationService {
	l := logger.With().Str("module", "service").Str("component", "evaluation").Logger()
	return &evaluationService{evaluations: evaluations, players: players, events: events, tx: tx, log: l}
}

// EvaluateEvent runs the whole evaluation as one transaction:
//
//  1. flip the event's evaluated marker conditionally (the one-time guard);
//  2. append one evaluation row per submitted player;
//  3. fold each input into the player's running averages with
//     (avg*n + v)/(n+1) and add the raw counters;
//  4. derive the event's collective rating from the per-event dimension
//     means, and for matches resolve the score and award points.
//
// Any failure rolls the whole thing back; no player or event row changes.
func (s *evaluationService) EvaluateEvent(ctx context.Context, scope model.Scope, eventID int64, inputs map[int64]model.EvaluationInput, score *model.MatchScore) (model.EvaluationResult, error) {
	start := time.Now()
	if err := requireAdmin(scope); err != nil {
		return model.EvaluationResult{}, err
	}

	var ferrs []FieldError
	if eventID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "event_id", Message: "must be > 0"})
	}
	if len(inputs) == 0 {
		ferrs = append(ferrs, FieldError{Field: "evaluations", Message: "must not be empty"})
	}
	for pid, in := range inputs {
		if pid <= 0 {
			ferrs = append(ferrs, FieldError{Field: "evaluations", Message: "player ids must be > 0"})
			continue
		}
		ferrs = append(ferrs, validateEvaluationInput(in)...)
	}
	if score != nil && (score.HomeGoals < 0 || score.AwayGoals < 0) {
		ferrs = append(ferrs, FieldError{Field: "score", Message: "goals must be >= 0"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Int64("event_id", eventID).Interface("field_errors", ferrs).Msg("evaluation validation failed")
		return model.EvaluationResult{}, err
	}

	// Deterministic player order keeps the write sequence stable, which
	// matters for lock ordering when two events share players.
	playerIDs := make([]int64, 0, len(inputs))
	for pid := range inputs {
		playerIDs = append(playerIDs, pid)
	}
	sort.Slice(playerIDs, func(i, j int) bool { return playerIDs[i] < playerIDs[j] })

	var result model.EvaluationResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ev, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if ev.TeamID != scope.TeamID {
			return repository.ErrNotFound
		}
		if ev.Evaluated {
			return ErrAlreadyEvaluated
		}
		isMatch := ev.Type == model.EventMatch
		if isMatch && score == nil {
			return NewInvalidInputError([]FieldError{{Field: "score", Message: "required for match events"}})
		}

		calledUp := make(map[int64]struct{}, len(ev.CallUps))
		for _, id := range ev.CallUps {
			calledUp[id] = struct{}{}
		}
		for _, pid := range playerIDs {
			if _, ok := calledUp[pid]; !ok {
				return NewInvalidInputError([]FieldError{{Field: "evaluations", Message: "player is not called up for this event"}})
			}
		}

		// The advisory check above is not race-safe on its own; this
		// conditional update is the real guard. Losing the race rolls the
		// transaction back before any evaluation row is written.
		if err := s.events.MarkEvaluated(ctx, eventID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrAlreadyEvaluated
			}
			return err
		}

		var meanSum float64
		for _, pid := range playerIDs {
			in := inputs[pid]

			p, err := s.players.GetByID(ctx, pid)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return NewInvalidInputError([]FieldError{{Field: "evaluations", Message: "player does not exist"}})
				}
				return err
			}

			if _, err := s.evaluations.Insert(ctx, model.Evaluation{
				PlayerID:      pid,
				EventID:       eventID,
				EventDate:     ev.Date,
				Technique:     in.Technique,
				Physical:      in.Physical,
				Tactical:      in.Tactical,
				Attitude:      in.Attitude,
				MinutesPlayed: in.MinutesPlayed,
				Goals:         in.Goals,
				Assists:       in.Assists,
				YellowCards:   in.YellowCards,
				RedCards:      in.RedCards,
				Fouls:         in.Fouls,
			}); err != nil {
				return err
			}

			upd := foldEvaluation(p, in)
			if err := s.players.ApplyEvaluation(ctx, pid, upd); err != nil {
				return err
			}

			meanSum += in.DimensionMean()
		}

		// Every evaluated player counts in the denominator, a zero mean
		// included; only an empty evaluation set yields a zero rating.
		collective := float64(0)
		if len(playerIDs) > 0 {
			collective = meanSum / float64(len(playerIDs))
		}

		outcome := model.EventOutcome{CollectiveRating: collective}
		if isMatch {
			gf, ga := resolveScore(ev.Condition, *score)
			pts := matchPoints(gf, ga)
			outcome.GoalsFor = &gf
			outcome.GoalsAgainst = &ga
			outcome.Points = &pts
		}
		if err := s.events.RecordOutcome(ctx, eventID, outcome); err != nil {
			return err
		}

		result = model.EvaluationResult{
			EventID:          eventID,
			PlayersEvaluated: len(playerIDs),
			CollectiveRating: collective,
			GoalsFor:         outcome.GoalsFor,
			GoalsAgainst:     outcome.GoalsAgainst,
			Points:           outcome.Points,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyEvaluated) || errors.Is(err, ErrInvalidInput) || errors.Is(err, repository.ErrNotFound) {
			return model.EvaluationResult{}, err
		}
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("evaluate event failed")
		return model.EvaluationResult{}, err
	}
	s.log.Info().
		Dur("took", time.Since(start)).
		Int64("event_id", eventID).
		Int("players", result.PlayersEvaluated).
		Float64("collective_rating", result.CollectiveRating).
		Msg("event evaluated")
	return result, nil
}

func (s *evaluationService) ListByEvent(ctx context.Context, scope model.Scope, eventID int64) ([]model.Evaluation, error) {
	if eventID <= 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "event_id", Message: "must be > 0"}})
	}
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.TeamID != scope.TeamID {
		return nil, repository.ErrNotFound
	}
	return s.evaluations.ListByEvent(ctx, eventID)
}

func (s *evaluationService) ListByPlayer(ctx context.Context, scope model.Scope, playerID int64) ([]model.Evaluation, error) {
	if playerID <= 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "player_id", Message: "must be > 0"}})
	}
	p, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p.TeamID != scope.TeamID {
		return nil, repository.ErrNotFound
	}
	return s.evaluations.ListByPlayer(ctx, playerID)
}

// foldEvaluation computes the player update for one new evaluation: raw
// counters become deltas, each running average advances by the incremental
// weighted mean (avg*n + v)/(n+1) with n read before this write, and the
// overall rating is re-derived from the four new averages, never stored
// independently of them.
func foldEvaluation(p model.Player, in model.EvaluationInput) model.PlayerStatsUpdate {
	n := float64(p.EventsEvaluated)
	next := n + 1

	upd := model.PlayerStatsUpdate{
		Goals:       in.Goals,
		Assists:     in.Assists,
		Minutes:     in.MinutesPlayed,
		YellowCards: in.YellowCards,
		RedCards:    in.RedCards,
		Fouls:       in.Fouls,

		AvgTechnique:    (p.AvgTechnique*n + float64(in.Technique)) / next,
		AvgPhysical:     (p.AvgPhysical*n + float64(in.Physical)) / next,
		AvgTactical:     (p.AvgTactical*n + float64(in.Tactical)) / next,
		AvgAttitude:     (p.AvgAttitude*n + float64(in.Attitude)) / next,
		EventsEvaluated: p.EventsEvaluated + 1,
	}
	upd.OverallRating = (upd.AvgTechnique + upd.AvgPhysical + upd.AvgTactical + upd.AvgAttitude) / 4
	return upd
}

// resolveScore turns the side-relative score into goals for/against the
// owning team using the event's condition.
func resolveScore(condition string, score model.MatchScore) (goalsFor, goalsAgainst int) {
	if condition == model.ConditionHome {
		return score.HomeGoals, score.AwayGoals
	}
	return score.AwayGoals, score.HomeGoals
}

// matchPoints awards league points: 3 for a win, 1 for a draw, 0 otherwise.
func matchPoints(goalsFor, goalsAgainst int) int {
	switch {
	case goalsFor > goalsAgainst:
		return 3
	case goalsFor == goalsAgainst:
		return 1
	default:
		return 0
	}
}
