// Package contract holds reusable test suites any repository
// implementation must pass. The postgres tests wire real factories into
// them; an alternative backend would reuse the same suites unchanged.
package contract

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
)

type TeamFactory func(t *testing.T) (repository.TeamRepository, func())

type PlayerFactory func(t *testing.T) (repo repository.PlayerRepository, mkTeam func(ctx context.Context) (int64, error), cleanup func())

type EventFactory func(t *testing.T) (repo repository.EventRepository, mkTeam func(ctx context.Context) (int64, error), cleanup func())

type EvaluationFactory func(t *testing.T) (repo repository.EvaluationRepository, mkPlayer func(ctx context.Context) (int64, error), mkEvent func(ctx context.Context) (int64, error), cleanup func())

type TxFactory func(t *testing.T) (tx repository.TxManager, teams repository.TeamRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func eventDate(day int) time.Time {
	return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
}

func RunTeamRepositoryContract(t *testing.T, makeRepo TeamFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.Team{Name: "CD Laguna"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != created.ID || got.Name != created.Name {
			t.Fatalf("mismatch: %+v", got)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 999999)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Create(ctx, model.Team{Name: "Twice"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, err := repo.Create(ctx, model.Team{Name: "Twice"})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("exists", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.Team{Name: "Exists"})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		ok, err := repo.Exists(ctx, created.ID)
		if err != nil || !ok {
			t.Fatalf("exists = %v, %v", ok, err)
		}
		ok, err = repo.Exists(ctx, 999999)
		if err != nil || ok {
			t.Fatalf("phantom exists = %v, %v", ok, err)
		}
	})
}

func RunPlayerRepositoryContract(t *testing.T, makeRepo PlayerFactory) {
	t.Helper()

	seedPlayer := func(t *testing.T, repo repository.PlayerRepository, teamID int64, lastName string, squad int) model.Player {
		t.Helper()
		p, err := repo.Create(context.Background(), model.Player{
			TeamID: teamID, FirstName: "Test", LastName: lastName,
			Position: "midfielder", SquadNumber: squad, Age: 22, PreferredFoot: model.FootRight,
		})
		if err != nil {
			t.Fatalf("seed player: %v", err)
		}
		return p
	}

	t.Run("create_starts_with_zeroed_stats", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		teamID, err := mkTeam(context.Background())
		if err != nil {
			t.Fatalf("mk team: %v", err)
		}
		p := seedPlayer(t, repo, teamID, "Zero", 9)
		if p.TotalGoals != 0 || p.TotalCallUps != 0 || p.EventsEvaluated != 0 || p.OverallRating != 0 {
			t.Fatalf("fresh player carries stats: %+v", p)
		}
	})

	t.Run("apply_evaluation_accumulates", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, _ := mkTeam(ctx)
		p := seedPlayer(t, repo, teamID, "Acc", 10)

		upd := model.PlayerStatsUpdate{
			Goals: 2, Assists: 1, Minutes: 90,
			AvgTechnique: 8, AvgPhysical: 6, AvgTactical: 7, AvgAttitude: 9,
			OverallRating: 7.5, EventsEvaluated: 1,
		}
		if err := repo.ApplyEvaluation(ctx, p.ID, upd); err != nil {
			t.Fatalf("apply: %v", err)
		}
		upd2 := model.PlayerStatsUpdate{
			Goals: 1, Minutes: 45,
			AvgTechnique: 7, AvgPhysical: 6, AvgTactical: 7, AvgAttitude: 8,
			OverallRating: 7, EventsEvaluated: 2,
		}
		if err := repo.ApplyEvaluation(ctx, p.ID, upd2); err != nil {
			t.Fatalf("apply2: %v", err)
		}

		got, err := repo.GetByID(ctx, p.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.TotalGoals != 3 || got.TotalAssists != 1 || got.TotalMinutes != 135 {
			t.Fatalf("counters must add up: %+v", got)
		}
		if got.AvgTechnique != 7 || got.OverallRating != 7 || got.EventsEvaluated != 2 {
			t.Fatalf("averages must be absolute: %+v", got)
		}
	})

	t.Run("apply_evaluation_missing_player", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		err := repo.ApplyEvaluation(context.Background(), 999999, model.PlayerStatsUpdate{})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update_profile_preserves_stats", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, _ := mkTeam(ctx)
		p := seedPlayer(t, repo, teamID, "Before", 4)
		if err := repo.ApplyEvaluation(ctx, p.ID, model.PlayerStatsUpdate{
			Goals: 5, AvgTechnique: 6, AvgPhysical: 6, AvgTactical: 6, AvgAttitude: 6,
			OverallRating: 6, EventsEvaluated: 1,
		}); err != nil {
			t.Fatalf("apply: %v", err)
		}

		got, err := repo.UpdateProfile(ctx, p.ID, model.PlayerProfile{
			FirstName: "Renamed", LastName: "After", Position: "forward",
			SquadNumber: 11, Age: 23, PreferredFoot: model.FootLeft,
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if got.LastName != "After" || got.SquadNumber != 11 {
			t.Fatalf("profile not updated: %+v", got)
		}
		if got.TotalGoals != 5 || got.OverallRating != 6 || got.EventsEvaluated != 1 {
			t.Fatalf("profile edit touched stats: %+v", got)
		}
	})

	t.Run("adjust_call_ups_floors_at_zero", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, _ := mkTeam(ctx)
		p := seedPlayer(t, repo, teamID, "Floor", 2)

		if err := repo.AdjustCallUps(ctx, p.ID, 1); err != nil {
			t.Fatalf("inc: %v", err)
		}
		if err := repo.AdjustCallUps(ctx, p.ID, -1); err != nil {
			t.Fatalf("dec: %v", err)
		}
		if err := repo.AdjustCallUps(ctx, p.ID, -1); err != nil {
			t.Fatalf("dec below zero: %v", err)
		}
		got, _ := repo.GetByID(ctx, p.ID)
		if got.TotalCallUps != 0 {
			t.Fatalf("call-ups = %d, want 0", got.TotalCallUps)
		}
	})

	t.Run("list_ranked", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, _ := mkTeam(ctx)
		a := seedPlayer(t, repo, teamID, "A", 1)
		b := seedPlayer(t, repo, teamID, "B", 2)
		c := seedPlayer(t, repo, teamID, "C", 3)
		for id, goals := range map[int64]int{a.ID: 3, b.ID: 9, c.ID: 6} {
			if err := repo.ApplyEvaluation(ctx, id, model.PlayerStatsUpdate{Goals: goals, EventsEvaluated: 1}); err != nil {
				t.Fatalf("seed stats: %v", err)
			}
		}
		ranked, err := repo.ListRanked(ctx, teamID, repository.RankByGoals, 2)
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		if len(ranked) != 2 || ranked[0].ID != b.ID || ranked[1].ID != c.ID {
			t.Fatalf("ranking order: %+v", ranked)
		}
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, _ := mkTeam(ctx)
		for i := 0; i < 5; i++ {
			seedPlayer(t, repo, teamID, fmt.Sprintf("P%d", i), i+1)
		}
		res, err := repo.ListByTeam(ctx, teamID, repository.Page{Limit: 2, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 2 || res.Total != 5 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, _ := mkTeam(ctx)
		p := seedPlayer(t, repo, teamID, "Gone", 5)
		if err := repo.Delete(ctx, p.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.GetByID(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func RunEventRepositoryContract(t *testing.T, makeRepo EventFactory) {
	t.Helper()

	seedEvent := func(t *testing.T, repo repository.EventRepository, teamID int64, typ string, day int) model.Event {
		t.Helper()
		cond := ""
		if typ == model.EventMatch {
			cond = model.ConditionHome
		}
		e, err := repo.Create(context.Background(), model.Event{
			TeamID: teamID, Type: typ, Description: "fixture", Date: eventDate(day),
			Condition: cond,
		})
		if err != nil {
			t.Fatalf("seed event: %v", err)
		}
		return e
	}

	t.Run("create_and_get", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, _ := mkTeam(ctx)
		e := seedEvent(t, repo, teamID, model.EventMatch, 8)
		got, err := repo.GetByID(ctx, e.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Type != model.EventMatch || got.Evaluated || got.Points != nil {
			t.Fatalf("fresh event state: %+v", got)
		}
	})

	t.Run("list_by_type", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, _ := mkTeam(ctx)
		seedEvent(t, repo, teamID, model.EventMatch, 8)
		seedEvent(t, repo, teamID, model.EventTraining, 9)
		seedEvent(t, repo, teamID, model.EventMatch, 10)

		all, err := repo.ListByTeam(ctx, teamID, "", repository.Page{Limit: 10})
		if err != nil || all.Total != 3 {
			t.Fatalf("all events: %d, %v", all.Total, err)
		}
		matches, err := repo.ListByTeam(ctx, teamID, model.EventMatch, repository.Page{Limit: 10})
		if err != nil || matches.Total != 2 {
			t.Fatalf("matches: %d, %v", matches.Total, err)
		}
		// Newest first.
		if len(all.Items) == 3 && all.Items[0].Date.Before(all.Items[2].Date) {
			t.Fatalf("expected newest first: %v", all.Items)
		}
	})

	t.Run("set_call_ups_roundtrip", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, _ := mkTeam(ctx)
		e := seedEvent(t, repo, teamID, model.EventTraining, 9)

		if err := repo.SetCallUps(ctx, e.ID, []int64{5, 7, 11}); err != nil {
			t.Fatalf("set: %v", err)
		}
		got, _ := repo.GetByID(ctx, e.ID)
		if len(got.CallUps) != 3 || got.CallUps[0] != 5 || got.CallUps[2] != 11 {
			t.Fatalf("call-ups = %v", got.CallUps)
		}
	})

	t.Run("mark_evaluated_is_one_shot", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, _ := mkTeam(ctx)
		e := seedEvent(t, repo, teamID, model.EventMatch, 8)

		if err := repo.MarkEvaluated(ctx, e.ID); err != nil {
			t.Fatalf("first mark: %v", err)
		}
		if err := repo.MarkEvaluated(ctx, e.ID); !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("second mark: want ErrConflict, got %v", err)
		}
		if err := repo.MarkEvaluated(ctx, 999999); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("missing event: want ErrNotFound, got %v", err)
		}
	})

	t.Run("record_outcome_and_summary", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, _ := mkTeam(ctx)

		record := func(day, gf, ga, pts int, rating float64) {
			e := seedEvent(t, repo, teamID, model.EventMatch, day)
			if err := repo.MarkEvaluated(ctx, e.ID); err != nil {
				t.Fatalf("mark: %v", err)
			}
			if err := repo.RecordOutcome(ctx, e.ID, model.EventOutcome{
				CollectiveRating: rating, GoalsFor: &gf, GoalsAgainst: &ga, Points: &pts,
			}); err != nil {
				t.Fatalf("record: %v", err)
			}
		}
		record(1, 3, 1, 3, 6.5)
		record(2, 2, 2, 1, 5.0)
		record(3, 0, 1, 0, 4.5)

		// A training session with no score must stay out of the table.
		tr := seedEvent(t, repo, teamID, model.EventTraining, 4)
		_ = repo.MarkEvaluated(ctx, tr.ID)
		if err := repo.RecordOutcome(ctx, tr.ID, model.EventOutcome{CollectiveRating: 7}); err != nil {
			t.Fatalf("training outcome: %v", err)
		}

		sum, err := repo.GetSeasonSummary(ctx, teamID)
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		want := model.SeasonSummary{Played: 3, Wins: 1, Draws: 1, Losses: 1, GoalsFor: 5, GoalsAgainst: 4, Points: 4}
		if sum != want {
			t.Fatalf("summary = %+v, want %+v", sum, want)
		}

		evaluated, err := repo.ListEvaluatedByTeam(ctx, teamID)
		if err != nil {
			t.Fatalf("evaluated: %v", err)
		}
		if len(evaluated) != 4 {
			t.Fatalf("evaluated events = %d", len(evaluated))
		}
		// Chronological for the evolution chart.
		if evaluated[0].Date.After(evaluated[len(evaluated)-1].Date) {
			t.Fatalf("expected oldest first")
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, _ := mkTeam(ctx)
		e := seedEvent(t, repo, teamID, model.EventTraining, 9)
		if err := repo.Delete(ctx, e.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.GetByID(ctx, e.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func RunEvaluationRepositoryContract(t *testing.T, makeRepo EvaluationFactory) {
	t.Helper()

	t.Run("insert_and_list", func(t *testing.T) {
		repo, mkPlayer, mkEvent, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		playerID, _ := mkPlayer(ctx)
		eventID, _ := mkEvent(ctx)

		created, err := repo.Insert(ctx, model.Evaluation{
			PlayerID: playerID, EventID: eventID, EventDate: eventDate(8),
			Technique: 8, Physical: 7, Tactical: 6, Attitude: 9,
			MinutesPlayed: 90, Goals: 1,
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if created.ID == 0 {
			t.Fatalf("id not assigned")
		}

		byEvent, err := repo.ListByEvent(ctx, eventID)
		if err != nil || len(byEvent) != 1 {
			t.Fatalf("by event: %v %v", byEvent, err)
		}
		byPlayer, err := repo.ListByPlayer(ctx, playerID)
		if err != nil || len(byPlayer) != 1 {
			t.Fatalf("by player: %v %v", byPlayer, err)
		}
		if byPlayer[0].Technique != 8 || byPlayer[0].Goals != 1 {
			t.Fatalf("row mismatch: %+v", byPlayer[0])
		}
	})

	t.Run("one_row_per_player_per_event", func(t *testing.T) {
		repo, mkPlayer, mkEvent, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		playerID, _ := mkPlayer(ctx)
		eventID, _ := mkEvent(ctx)

		seed := model.Evaluation{PlayerID: playerID, EventID: eventID, EventDate: eventDate(8)}
		if _, err := repo.Insert(ctx, seed); err != nil {
			t.Fatalf("first insert: %v", err)
		}
		if _, err := repo.Insert(ctx, seed); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("duplicate insert: want ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("delete_by_event_and_player", func(t *testing.T) {
		repo, mkPlayer, mkEvent, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		p1, _ := mkPlayer(ctx)
		p2, _ := mkPlayer(ctx)
		e1, _ := mkEvent(ctx)
		e2, _ := mkEvent(ctx)

		for _, pair := range []struct{ p, e int64 }{{p1, e1}, {p2, e1}, {p1, e2}} {
			if _, err := repo.Insert(ctx, model.Evaluation{PlayerID: pair.p, EventID: pair.e, EventDate: eventDate(8)}); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}

		n, err := repo.DeleteByEvent(ctx, e1)
		if err != nil || n != 2 {
			t.Fatalf("delete by event: n=%d err=%v", n, err)
		}
		n, err = repo.DeleteByPlayer(ctx, p1)
		if err != nil || n != 1 {
			t.Fatalf("delete by player: n=%d err=%v", n, err)
		}
		left, _ := repo.ListByPlayer(ctx, p2)
		if len(left) != 0 {
			t.Fatalf("leftover rows: %v", left)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit", func(t *testing.T) {
		tx, teams, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var id int64
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			created, err := teams.Create(ctx, model.Team{Name: "Committed"})
			if err != nil {
				return err
			}
			id = created.ID
			return nil
		})
		if err != nil {
			t.Fatalf("tx: %v", err)
		}
		if _, err := teams.GetByID(ctx, id); err != nil {
			t.Fatalf("committed row missing: %v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, teams, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		sentinel := errors.New("abort")
		var id int64
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			created, err := teams.Create(ctx, model.Team{Name: "RolledBack"})
			if err != nil {
				return err
			}
			id = created.ID
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected sentinel, got %v", err)
		}
		if _, err := teams.GetByID(ctx, id); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("rollback leaked a row: %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	p, cleanup := makePinger(t)
	t.Cleanup(cleanup)
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
