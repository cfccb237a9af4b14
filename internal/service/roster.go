package service

import (
	"context"
	"errors"
	"time"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/rs/zerolog"
)

type rosterService struct {
	players     repository.PlayerRepository
	teams       repository.TeamRepository
	evaluations repository.EvaluationRepository
	tx          repository.TxManager
	log         zerolog.Logger
}

func NewRosterService(players repository.PlayerRepository, teams repository.TeamRepository, evaluations repository.EvaluationRepository, tx repository.TxManager, logger zerolog.Logger) RosterService {
	l := logger.With().Str("module", "service").Str("component", "roster").Logger()
	return &rosterService{players: players, teams: teams, evaluations: evaluations, tx: tx, log: l}
}

func (s *rosterService) CreatePlayer(ctx context.Context, scope model.Scope, profile model.PlayerProfile) (model.Player, error) {
	start := time.Now()
	if err := requireAdmin(scope); err != nil {
		return model.Player{}, err
	}

	profile, ferrs := validateProfile(profile)
	if scope.TeamID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "team_id", Message: "must be > 0"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("player validation failed")
		return model.Player{}, err
	}

	// Existence check improves client UX vs deferring to FK violation.
	ok, err := s.teams.Exists(ctx, scope.TeamID)
	if err != nil {
		return model.Player{}, err
	}
	if !ok {
		return model.Player{}, NewInvalidInputError([]FieldError{{Field: "team_id", Message: "team does not exist"}})
	}

	// Counters and running averages start at zero; only the evaluation
	// engine moves them from here on.
	out, err := s.players.Create(ctx, model.Player{
		TeamID:        scope.TeamID,
		FirstName:     profile.FirstName,
		LastName:      profile.LastName,
		Position:      profile.Position,
		SquadNumber:   profile.SquadNumber,
		Age:           profile.Age,
		PreferredFoot: profile.PreferredFoot,
	})
	if err != nil {
		s.log.Error().Err(err).Int64("team_id", scope.TeamID).Str("ln", profile.LastName).Msg("create player failed")
		return model.Player{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("player_id", out.ID).Msg("player created")
	return out, nil
}

func (s *rosterService) GetPlayer(ctx context.Context, scope model.Scope, id int64) (model.Player, error) {
	if id <= 0 {
		return model.Player{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	p, err := s.players.GetByID(ctx, id)
	if err != nil {
		return model.Player{}, err
	}
	// Tenant isolation: a player outside the scope does not exist for it.
	if p.TeamID != scope.TeamID {
		return model.Player{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *rosterService) ListPlayers(ctx context.Context, scope model.Scope, page repository.Page) (repository.PageResult[model.Player], error) {
	if scope.TeamID <= 0 {
		return repository.PageResult[model.Player]{}, NewInvalidInputError([]FieldError{{Field: "team_id", Message: "must be > 0"}})
	}
	p := normalizePage(page)
	res, err := s.players.ListByTeam(ctx, scope.TeamID, p)
	if err != nil {
		s.log.Error().Err(err).Int64("team_id", scope.TeamID).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list players failed")
		return repository.PageResult[model.Player]{}, err
	}
	return res, nil
}

// UpdatePlayerProfile edits identity fields only. It cannot reach counters,
// averages or events_evaluated through any input.
func (s *rosterService) UpdatePlayerProfile(ctx context.Context, scope model.Scope, id int64, profile model.PlayerProfile) (model.Player, error) {
	if err := requireAdmin(scope); err != nil {
		return model.Player{}, err
	}
	if id <= 0 {
		return model.Player{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	profile, ferrs := validateProfile(profile)
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Int64("player_id", id).Msg("profile validation failed")
		return model.Player{}, err
	}

	if _, err := s.GetPlayer(ctx, scope, id); err != nil {
		return model.Player{}, err
	}
	out, err := s.players.UpdateProfile(ctx, id, profile)
	if err != nil {
		s.log.Error().Err(err).Int64("player_id", id).Msg("update profile failed")
		return model.Player{}, err
	}
	return out, nil
}

// DeletePlayer removes a roster member and every evaluation referencing
// them in one transaction, so aggregate queries never meet orphaned rows.
func (s *rosterService) DeletePlayer(ctx context.Context, scope model.Scope, id int64) error {
	start := time.Now()
	if err := requireAdmin(scope); err != nil {
		return err
	}
	if id <= 0 {
		return NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}

	var removed int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.players.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p.TeamID != scope.TeamID {
			return repository.ErrNotFound
		}
		n, err := s.evaluations.DeleteByPlayer(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return s.players.Delete(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Int64("player_id", id).Msg("delete player failed")
		}
		return err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("player_id", id).Int64("evaluations_removed", removed).Msg("player deleted")
	return nil
}
