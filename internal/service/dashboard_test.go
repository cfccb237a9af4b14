package service_test

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/avillegas/roster-stats-service/internal/service"
)

// recordingPlayers captures the ranking query the service builds.
type recordingPlayers struct {
	memPlayers
	metric string
	limit  int
}

func (f *recordingPlayers) ListRanked(_ context.Context, _ int64, metric string, limit int) ([]model.Player, error) {
	f.metric = metric
	f.limit = limit
	return []model.Player{}, nil
}

type evolutionEvents struct {
	memEvents
	evaluated []model.Event
	summary   model.SeasonSummary
}

func (f *evolutionEvents) ListEvaluatedByTeam(context.Context, int64) ([]model.Event, error) {
	return f.evaluated, nil
}
func (f *evolutionEvents) GetSeasonSummary(context.Context, int64) (model.SeasonSummary, error) {
	return f.summary, nil
}

func newDashboardFixture() (*recordingPlayers, *evolutionEvents, service.DashboardService) {
	players := &recordingPlayers{memPlayers: memPlayers{byID: map[int64]model.Player{}}}
	events := &evolutionEvents{}
	svc := service.NewDashboardService(players, events, zerolog.New(io.Discard))
	return players, events, svc
}

func TestPlayerRankings_MetricAndLimitDefaults(t *testing.T) {
	cases := []struct {
		name       string
		metric     string
		limit      int
		wantMetric string
		wantLimit  int
		wantErr    bool
	}{
		{"defaults", "", 0, repository.RankByGoals, 25, false},
		{"explicit rating", "Rating", 10, repository.RankByRating, 10, false},
		{"limit over cap falls back", "assists", 500, repository.RankByAssists, 25, false},
		{"unknown metric", "steals", 10, "", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			players, _, svc := newDashboardFixture()
			_, err := svc.PlayerRankings(context.Background(), adminScope(), tc.metric, tc.limit)
			if tc.wantErr {
				if !serviceErrIsInvalid(err) {
					t.Fatalf("want invalid input, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if players.metric != tc.wantMetric || players.limit != tc.wantLimit {
				t.Fatalf("query metric=%q limit=%d, want %q/%d", players.metric, players.limit, tc.wantMetric, tc.wantLimit)
			}
		})
	}
}

func TestCollectiveEvolution_DropsZeroRatings(t *testing.T) {
	_, events, svc := newDashboardFixture()
	events.evaluated = []model.Event{
		{ID: 1, CollectiveRating: 6.5},
		{ID: 2, CollectiveRating: 0},
		{ID: 3, CollectiveRating: 7.25},
	}

	out, err := svc.CollectiveEvolution(context.Background(), adminScope())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].ID != 3 {
		t.Fatalf("unexpected series: %+v", out)
	}
}

func TestSeasonSummary_Passthrough(t *testing.T) {
	_, events, svc := newDashboardFixture()
	events.summary = model.SeasonSummary{Played: 10, Wins: 6, Draws: 2, Losses: 2, GoalsFor: 18, GoalsAgainst: 9, Points: 20}

	got, err := svc.SeasonSummary(context.Background(), adminScope())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != events.summary {
		t.Fatalf("summary = %+v", got)
	}
}

func TestDashboard_RequiresTeamScope(t *testing.T) {
	_, _, svc := newDashboardFixture()
	noTeam := model.Scope{Role: model.RoleViewer}

	if _, err := svc.PlayerRankings(context.Background(), noTeam, "", 0); !serviceErrIsInvalid(err) {
		t.Fatalf("rankings: %v", err)
	}
	if _, err := svc.CollectiveEvolution(context.Background(), noTeam); !serviceErrIsInvalid(err) {
		t.Fatalf("collective: %v", err)
	}
	if _, err := svc.SeasonSummary(context.Background(), noTeam); !serviceErrIsInvalid(err) {
		t.Fatalf("season: %v", err)
	}
}
