package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/avillegas/roster-stats-service/internal/service"
)

type fakeTeamLookup struct{ ok map[int64]bool }

func (f *fakeTeamLookup) Create(_ context.Context, t model.Team) (model.Team, error) {
	t.ID = 1
	return t, nil
}
func (f *fakeTeamLookup) GetByID(_ context.Context, id int64) (model.Team, error) {
	if f.ok[id] {
		return model.Team{ID: id}, nil
	}
	return model.Team{}, repository.ErrNotFound
}
func (f *fakeTeamLookup) Exists(_ context.Context, id int64) (bool, error) { return f.ok[id], nil }

var _ repository.TeamRepository = (*fakeTeamLookup)(nil)

func validProfile() model.PlayerProfile {
	return model.PlayerProfile{
		FirstName: "Ana", LastName: "Villegas", Position: "midfielder",
		SquadNumber: 8, Age: 24, PreferredFoot: "left",
	}
}

func newRosterFixture() (*memPlayers, *memEvals, service.RosterService) {
	players := &memPlayers{byID: map[int64]model.Player{
		1: {ID: 1, TeamID: testTeamID, TotalGoals: 12, EventsEvaluated: 4, AvgTechnique: 7},
		2: {ID: 2, TeamID: 99},
	}}
	teams := &fakeTeamLookup{ok: map[int64]bool{testTeamID: true}}
	evals := &memEvals{}
	svc := service.NewRosterService(players, teams, evals, passTx{}, zerolog.New(io.Discard))
	return players, evals, svc
}

func TestCreatePlayer_Validation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*model.PlayerProfile)
		wantErr bool
		field   string
	}{
		{"ok", func(p *model.PlayerProfile) {}, false, ""},
		{"foot normalized", func(p *model.PlayerProfile) { p.PreferredFoot = " Right " }, false, ""},
		{"empty first name", func(p *model.PlayerProfile) { p.FirstName = " " }, true, "first_name"},
		{"empty last name", func(p *model.PlayerProfile) { p.LastName = "" }, true, "last_name"},
		{"empty position", func(p *model.PlayerProfile) { p.Position = "" }, true, "position"},
		{"squad number too big", func(p *model.PlayerProfile) { p.SquadNumber = 100 }, true, "squad_number"},
		{"negative age", func(p *model.PlayerProfile) { p.Age = -1 }, true, "age"},
		{"bad foot", func(p *model.PlayerProfile) { p.PreferredFoot = "ambidextrous" }, true, "preferred_foot"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, svc := newRosterFixture()
			profile := validProfile()
			tc.mutate(&profile)
			out, err := svc.CreatePlayer(context.Background(), adminScope(), profile)
			if tc.wantErr {
				if !serviceErrIsInvalid(err) {
					t.Fatalf("want invalid input, got %v", err)
				}
				found := false
				for _, fe := range service.FieldErrors(err) {
					if fe.Field == tc.field {
						found = true
					}
				}
				if !found {
					t.Fatalf("missing field error %q: %v", tc.field, service.FieldErrors(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.TotalGoals != 0 || out.EventsEvaluated != 0 || out.OverallRating != 0 {
				t.Fatalf("new player must start with zeroed stats: %+v", out)
			}
		})
	}
}

func TestCreatePlayer_UnknownTeam(t *testing.T) {
	players := &memPlayers{byID: map[int64]model.Player{}}
	teams := &fakeTeamLookup{ok: map[int64]bool{}}
	svc := service.NewRosterService(players, teams, &memEvals{}, passTx{}, zerolog.New(io.Discard))

	_, err := svc.CreatePlayer(context.Background(), adminScope(), validProfile())
	if !serviceErrIsInvalid(err) {
		t.Fatalf("want invalid input for missing team, got %v", err)
	}
}

func TestGetPlayer_TenantIsolation(t *testing.T) {
	_, _, svc := newRosterFixture()

	if _, err := svc.GetPlayer(context.Background(), adminScope(), 1); err != nil {
		t.Fatalf("own player: %v", err)
	}
	// Player 2 belongs to another team; the scope must not see it at all.
	if _, err := svc.GetPlayer(context.Background(), adminScope(), 2); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("foreign player: want ErrNotFound, got %v", err)
	}
}

func TestUpdatePlayerProfile_NeverTouchesStats(t *testing.T) {
	players, _, svc := newRosterFixture()
	before := players.byID[1]

	_, err := svc.UpdatePlayerProfile(context.Background(), adminScope(), 1, validProfile())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	after := players.byID[1]
	if after.TotalGoals != before.TotalGoals || after.EventsEvaluated != before.EventsEvaluated || after.AvgTechnique != before.AvgTechnique {
		t.Fatalf("profile edit changed stats: before=%+v after=%+v", before, after)
	}
}

func TestDeletePlayer_CascadesEvaluations(t *testing.T) {
	players, evals, svc := newRosterFixture()
	evals.rows = []model.Evaluation{
		{ID: 1, PlayerID: 1, EventID: 100},
		{ID: 2, PlayerID: 1, EventID: 200},
		{ID: 3, PlayerID: 3, EventID: 100},
	}

	if err := svc.DeletePlayer(context.Background(), adminScope(), 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := players.byID[1]; ok {
		t.Fatalf("player still present")
	}
	if len(evals.rows) != 1 || evals.rows[0].PlayerID != 3 {
		t.Fatalf("cascade left %v", evals.rows)
	}
}

func TestRosterService_ViewerForbidden(t *testing.T) {
	_, _, svc := newRosterFixture()
	viewer := model.Scope{TeamID: testTeamID, Role: model.RoleViewer}

	if _, err := svc.CreatePlayer(context.Background(), viewer, validProfile()); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdatePlayerProfile(context.Background(), viewer, 1, validProfile()); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("update: %v", err)
	}
	if err := svc.DeletePlayer(context.Background(), viewer, 1); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("delete: %v", err)
	}
}
