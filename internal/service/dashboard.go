package service

import (
	"context"
	"strings"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/rs/zerolog"
)

const defaultRankingLimit = 25

// dashboardService serves the read-only aggregate views: rankings, the
// collective-rating evolution feed and the season table. All of it is
// derived from what the evaluation engine already persisted.
type dashboardService struct {
	players repository.PlayerRepository
	events  repository.EventRepository
	log     zerolog.Logger
}

func NewDashboardService(players repository.PlayerRepository, events repository.EventRepository, logger zerolog.Logger) DashboardService {
	l := logger.With().Str("module", "service").Str("component", "dashboard").Logger()
	return &dashboardService{players: players, events: events, log: l}
}

func (s *dashboardService) PlayerRankings(ctx context.Context, scope model.Scope, metric string, limit int) ([]model.Player, error) {
	if scope.TeamID <= 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "team_id", Message: "must be > 0"}})
	}
	metric = strings.ToLower(strings.TrimSpace(metric))
	if metric == "" {
		metric = repository.RankByGoals
	}
	if !isValidRankMetric(metric) {
		return nil, NewInvalidInputError([]FieldError{{Field: "metric", Message: "must be one of goals, assists, minutes, rating"}})
	}
	if limit <= 0 || limit > 100 {
		limit = defaultRankingLimit
	}
	res, err := s.players.ListRanked(ctx, scope.TeamID, metric, limit)
	if err != nil {
		s.log.Error().Err(err).Int64("team_id", scope.TeamID).Str("metric", metric).Msg("player rankings failed")
		return nil, err
	}
	return res, nil
}

// CollectiveEvolution returns evaluated events carrying a positive
// collective rating, oldest first, ready to plot as a time series.
func (s *dashboardService) CollectiveEvolution(ctx context.Context, scope model.Scope) ([]model.Event, error) {
	if scope.TeamID <= 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "team_id", Message: "must be > 0"}})
	}
	events, err := s.events.ListEvaluatedByTeam(ctx, scope.TeamID)
	if err != nil {
		s.log.Error().Err(err).Int64("team_id", scope.TeamID).Msg("collective evolution failed")
		return nil, err
	}
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.CollectiveRating > 0 {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *dashboardService) SeasonSummary(ctx context.Context, scope model.Scope) (model.SeasonSummary, error) {
	if scope.TeamID <= 0 {
		return model.SeasonSummary{}, NewInvalidInputError([]FieldError{{Field: "team_id", Message: "must be > 0"}})
	}
	sum, err := s.events.GetSeasonSummary(ctx, scope.TeamID)
	if err != nil {
		s.log.Error().Err(err).Int64("team_id", scope.TeamID).Msg("season summary failed")
		return model.SeasonSummary{}, err
	}
	return sum, nil
}
