package service_test

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/avillegas/roster-stats-service/internal/service"
)

// In-memory fakes mimicking the repository contracts closely enough to
// observe what the engine writes.

type memPlayers struct {
	byID    map[int64]model.Player
	applied []appliedUpdate
}

type appliedUpdate struct {
	id  int64
	upd model.PlayerStatsUpdate
}

func (f *memPlayers) Create(_ context.Context, p model.Player) (model.Player, error) {
	return p, nil
}
func (f *memPlayers) GetByID(_ context.Context, id int64) (model.Player, error) {
	p, ok := f.byID[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	return p, nil
}
func (f *memPlayers) ListByTeam(context.Context, int64, repository.Page) (repository.PageResult[model.Player], error) {
	return repository.PageResult[model.Player]{}, nil
}
func (f *memPlayers) ListRanked(context.Context, int64, string, int) ([]model.Player, error) {
	return nil, nil
}
func (f *memPlayers) UpdateProfile(_ context.Context, id int64, _ model.PlayerProfile) (model.Player, error) {
	return f.byID[id], nil
}
func (f *memPlayers) ApplyEvaluation(_ context.Context, id int64, upd model.PlayerStatsUpdate) error {
	p, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.TotalGoals += upd.Goals
	p.TotalAssists += upd.Assists
	p.TotalMinutes += upd.Minutes
	p.TotalYellowCards += upd.YellowCards
	p.TotalRedCards += upd.RedCards
	p.TotalFouls += upd.Fouls
	p.AvgTechnique = upd.AvgTechnique
	p.AvgPhysical = upd.AvgPhysical
	p.AvgTactical = upd.AvgTactical
	p.AvgAttitude = upd.AvgAttitude
	p.OverallRating = upd.OverallRating
	p.EventsEvaluated = upd.EventsEvaluated
	f.byID[id] = p
	f.applied = append(f.applied, appliedUpdate{id: id, upd: upd})
	return nil
}
func (f *memPlayers) AdjustCallUps(_ context.Context, id int64, delta int) error {
	p, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.TotalCallUps += delta
	if p.TotalCallUps < 0 {
		p.TotalCallUps = 0
	}
	f.byID[id] = p
	return nil
}
func (f *memPlayers) Delete(_ context.Context, id int64) error {
	delete(f.byID, id)
	return nil
}

var _ repository.PlayerRepository = (*memPlayers)(nil)

type memEvents struct {
	byID     map[int64]model.Event
	outcomes map[int64]model.EventOutcome
	// forceConflict makes MarkEvaluated lose the guard even when the
	// loaded event looked unevaluated, simulating a racing writer.
	forceConflict bool
}

func (f *memEvents) Create(_ context.Context, e model.Event) (model.Event, error) { return e, nil }
func (f *memEvents) GetByID(_ context.Context, id int64) (model.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return model.Event{}, repository.ErrNotFound
	}
	return e, nil
}
func (f *memEvents) ListByTeam(context.Context, int64, string, repository.Page) (repository.PageResult[model.Event], error) {
	return repository.PageResult[model.Event]{}, nil
}
func (f *memEvents) ListEvaluatedByTeam(context.Context, int64) ([]model.Event, error) {
	return nil, nil
}
func (f *memEvents) SetCallUps(_ context.Context, id int64, playerIDs []int64) error {
	e, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.CallUps = playerIDs
	f.byID[id] = e
	return nil
}
func (f *memEvents) MarkEvaluated(_ context.Context, id int64) error {
	e, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if e.Evaluated || f.forceConflict {
		return repository.ErrConflict
	}
	e.Evaluated = true
	f.byID[id] = e
	return nil
}
func (f *memEvents) RecordOutcome(_ context.Context, id int64, out model.EventOutcome) error {
	if f.outcomes == nil {
		f.outcomes = make(map[int64]model.EventOutcome)
	}
	f.outcomes[id] = out
	return nil
}
func (f *memEvents) GetSeasonSummary(context.Context, int64) (model.SeasonSummary, error) {
	return model.SeasonSummary{}, nil
}
func (f *memEvents) Delete(_ context.Context, id int64) error {
	delete(f.byID, id)
	return nil
}

var _ repository.EventRepository = (*memEvents)(nil)

type memEvals struct {
	rows []model.Evaluation
}

func (f *memEvals) Insert(_ context.Context, e model.Evaluation) (model.Evaluation, error) {
	for _, r := range f.rows {
		if r.PlayerID == e.PlayerID && r.EventID == e.EventID {
			return model.Evaluation{}, repository.ErrAlreadyExists
		}
	}
	e.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, e)
	return e, nil
}
func (f *memEvals) ListByEvent(_ context.Context, eventID int64) ([]model.Evaluation, error) {
	var out []model.Evaluation
	for _, r := range f.rows {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *memEvals) ListByPlayer(_ context.Context, playerID int64) ([]model.Evaluation, error) {
	var out []model.Evaluation
	for _, r := range f.rows {
		if r.PlayerID == playerID {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *memEvals) DeleteByEvent(_ context.Context, eventID int64) (int64, error) {
	var kept []model.Evaluation
	var n int64
	for _, r := range f.rows {
		if r.EventID == eventID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}
func (f *memEvals) DeleteByPlayer(_ context.Context, playerID int64) (int64, error) {
	var kept []model.Evaluation
	var n int64
	for _, r := range f.rows {
		if r.PlayerID == playerID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

var _ repository.EvaluationRepository = (*memEvals)(nil)

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn repository.TxFunc) error { return fn(ctx) }

var _ repository.TxManager = passTx{}

func serviceErrIsInvalid(err error) bool { return errors.Is(err, service.ErrInvalidInput) }

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

const testTeamID = int64(10)

func adminScope() model.Scope { return model.Scope{TeamID: testTeamID, Role: model.RoleAdmin} }

func newEvalFixture() (*memPlayers, *memEvents, *memEvals, service.EvaluationService) {
	players := &memPlayers{byID: map[int64]model.Player{
		1: {ID: 1, TeamID: testTeamID},
		2: {ID: 2, TeamID: testTeamID},
		3: {ID: 3, TeamID: testTeamID},
	}}
	events := &memEvents{byID: map[int64]model.Event{
		100: {
			ID:      100,
			TeamID:  testTeamID,
			Type:    model.EventMatch,
			Date:    time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
			CallUps: []int64{1, 2, 3},
		},
		200: {
			ID:      200,
			TeamID:  testTeamID,
			Type:    model.EventTraining,
			Date:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			CallUps: []int64{1, 2},
		},
	}}
	evals := &memEvals{}
	svc := service.NewEvaluationService(evals, players, events, passTx{}, zerolog.New(io.Discard))
	return players, events, evals, svc
}

func TestEvaluateEvent_FirstEvaluationSetsAverages(t *testing.T) {
	players, _, evals, svc := newEvalFixture()

	in := model.EvaluationInput{
		Technique: 8, Physical: 6, Tactical: 7, Attitude: 9,
		MinutesPlayed: 90, Goals: 2, Assists: 1, YellowCards: 1,
	}
	res, err := svc.EvaluateEvent(context.Background(), adminScope(), 100,
		map[int64]model.EvaluationInput{1: in}, &model.MatchScore{HomeGoals: 2, AwayGoals: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PlayersEvaluated != 1 {
		t.Fatalf("players evaluated = %d", res.PlayersEvaluated)
	}

	p := players.byID[1]
	if p.AvgTechnique != 8 || p.AvgPhysical != 6 || p.AvgTactical != 7 || p.AvgAttitude != 9 {
		t.Fatalf("averages after first evaluation: %+v", p)
	}
	if !almostEqual(p.OverallRating, 7.5) {
		t.Fatalf("overall rating = %v, want 7.5", p.OverallRating)
	}
	if p.TotalGoals != 2 || p.TotalAssists != 1 || p.TotalMinutes != 90 || p.TotalYellowCards != 1 {
		t.Fatalf("counters: %+v", p)
	}
	if p.EventsEvaluated != 1 {
		t.Fatalf("events evaluated = %d", p.EventsEvaluated)
	}
	if len(evals.rows) != 1 || evals.rows[0].EventID != 100 || evals.rows[0].PlayerID != 1 {
		t.Fatalf("evaluation rows: %+v", evals.rows)
	}
}

func TestEvaluateEvent_RunningAverageIsIncrementalMean(t *testing.T) {
	players, _, _, svc := newEvalFixture()

	// Two prior evaluations averaging 6.0 on every dimension.
	players.byID[1] = model.Player{
		ID: 1, TeamID: testTeamID, EventsEvaluated: 2,
		AvgTechnique: 6, AvgPhysical: 6, AvgTactical: 6, AvgAttitude: 6,
		OverallRating: 6, TotalGoals: 4,
	}

	in := model.EvaluationInput{Technique: 9, Physical: 9, Tactical: 9, Attitude: 9, MinutesPlayed: 60, Goals: 1}
	_, err := svc.EvaluateEvent(context.Background(), adminScope(), 100,
		map[int64]model.EvaluationInput{1: in}, &model.MatchScore{HomeGoals: 1, AwayGoals: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := players.byID[1]
	// (6*2 + 9) / 3 = 7 exactly, per dimension.
	for name, got := range map[string]float64{
		"technique": p.AvgTechnique, "physical": p.AvgPhysical,
		"tactical": p.AvgTactical, "attitude": p.AvgAttitude,
	} {
		if !almostEqual(got, 7) {
			t.Fatalf("avg %s = %v, want 7", name, got)
		}
	}
	if !almostEqual(p.OverallRating, 7) {
		t.Fatalf("overall = %v, want 7", p.OverallRating)
	}
	if p.EventsEvaluated != 3 {
		t.Fatalf("events evaluated = %d, want 3", p.EventsEvaluated)
	}
	if p.TotalGoals != 5 {
		t.Fatalf("total goals = %d, want 5", p.TotalGoals)
	}
}

func TestEvaluateEvent_CollectiveRatingCountsZeroMeans(t *testing.T) {
	_, events, _, svc := newEvalFixture()

	inputs := map[int64]model.EvaluationInput{
		1: {Technique: 8, Physical: 8, Tactical: 8, Attitude: 8}, // mean 8
		2: {Technique: 4, Physical: 4, Tactical: 4, Attitude: 4}, // mean 4
		3: {},                                                    // mean 0, still in the denominator
	}
	res, err := svc.EvaluateEvent(context.Background(), adminScope(), 100, inputs,
		&model.MatchScore{HomeGoals: 0, AwayGoals: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(res.CollectiveRating, 4) {
		t.Fatalf("collective = %v, want 4", res.CollectiveRating)
	}
	if out := events.outcomes[100]; !almostEqual(out.CollectiveRating, 4) {
		t.Fatalf("persisted collective = %v", out.CollectiveRating)
	}
}

func TestEvaluateEvent_MatchOutcome(t *testing.T) {
	cases := []struct {
		name      string
		condition string
		score     model.MatchScore
		wantFor   int
		wantAg    int
		wantPts   int
	}{
		{"home win", model.ConditionHome, model.MatchScore{HomeGoals: 3, AwayGoals: 1}, 3, 1, 3},
		{"away draw", model.ConditionAway, model.MatchScore{HomeGoals: 2, AwayGoals: 2}, 2, 2, 1},
		{"home loss", model.ConditionHome, model.MatchScore{HomeGoals: 0, AwayGoals: 1}, 0, 1, 0},
		{"away win", model.ConditionAway, model.MatchScore{HomeGoals: 1, AwayGoals: 4}, 4, 1, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, events, _, svc := newEvalFixture()
			ev := events.byID[100]
			ev.Condition = tc.condition
			events.byID[100] = ev

			res, err := svc.EvaluateEvent(context.Background(), adminScope(), 100,
				map[int64]model.EvaluationInput{1: {Technique: 5, Physical: 5, Tactical: 5, Attitude: 5}},
				&tc.score)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.GoalsFor == nil || res.GoalsAgainst == nil || res.Points == nil {
				t.Fatalf("match outcome missing: %+v", res)
			}
			if *res.GoalsFor != tc.wantFor || *res.GoalsAgainst != tc.wantAg || *res.Points != tc.wantPts {
				t.Fatalf("outcome = %d:%d pts %d, want %d:%d pts %d",
					*res.GoalsFor, *res.GoalsAgainst, *res.Points, tc.wantFor, tc.wantAg, tc.wantPts)
			}
		})
	}
}

func TestEvaluateEvent_TrainingHasNoOutcome(t *testing.T) {
	_, events, _, svc := newEvalFixture()

	res, err := svc.EvaluateEvent(context.Background(), adminScope(), 200,
		map[int64]model.EvaluationInput{1: {Technique: 6, Physical: 6, Tactical: 6, Attitude: 6}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.GoalsFor != nil || res.GoalsAgainst != nil || res.Points != nil {
		t.Fatalf("training should carry no score: %+v", res)
	}
	out := events.outcomes[200]
	if out.GoalsFor != nil || out.Points != nil {
		t.Fatalf("persisted outcome should have nil goals/points: %+v", out)
	}
}

func TestEvaluateEvent_MatchRequiresScore(t *testing.T) {
	_, _, _, svc := newEvalFixture()

	_, err := svc.EvaluateEvent(context.Background(), adminScope(), 100,
		map[int64]model.EvaluationInput{1: {}}, nil)
	if !serviceErrIsInvalid(err) {
		t.Fatalf("want invalid input, got %v", err)
	}
	found := false
	for _, fe := range service.FieldErrors(err) {
		if fe.Field == "score" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing score field error: %v", service.FieldErrors(err))
	}
}

func TestEvaluateEvent_AlreadyEvaluated(t *testing.T) {
	players, events, evals, svc := newEvalFixture()
	ev := events.byID[100]
	ev.Evaluated = true
	events.byID[100] = ev

	_, err := svc.EvaluateEvent(context.Background(), adminScope(), 100,
		map[int64]model.EvaluationInput{1: {}}, &model.MatchScore{})
	if !errors.Is(err, service.ErrAlreadyEvaluated) {
		t.Fatalf("want ErrAlreadyEvaluated, got %v", err)
	}
	if len(evals.rows) != 0 {
		t.Fatalf("no evaluation rows expected, got %d", len(evals.rows))
	}
	if len(players.applied) != 0 {
		t.Fatalf("no player updates expected, got %d", len(players.applied))
	}
}

func TestEvaluateEvent_LosingTheGuardRace(t *testing.T) {
	players, events, evals, svc := newEvalFixture()
	// The snapshot read says "not evaluated" but the conditional update
	// loses to a concurrent writer.
	events.forceConflict = true

	_, err := svc.EvaluateEvent(context.Background(), adminScope(), 100,
		map[int64]model.EvaluationInput{1: {}}, &model.MatchScore{})
	if !errors.Is(err, service.ErrAlreadyEvaluated) {
		t.Fatalf("want ErrAlreadyEvaluated, got %v", err)
	}
	if len(evals.rows) != 0 || len(players.applied) != 0 {
		t.Fatalf("losing the race must write nothing")
	}
}

func TestEvaluateEvent_RejectsPlayerOutsideCallUps(t *testing.T) {
	_, events, _, svc := newEvalFixture()
	ev := events.byID[100]
	ev.CallUps = []int64{2, 3}
	events.byID[100] = ev

	_, err := svc.EvaluateEvent(context.Background(), adminScope(), 100,
		map[int64]model.EvaluationInput{1: {}}, &model.MatchScore{})
	if !serviceErrIsInvalid(err) {
		t.Fatalf("want invalid input, got %v", err)
	}
}

func TestEvaluateEvent_Validation(t *testing.T) {
	cases := []struct {
		name   string
		inputs map[int64]model.EvaluationInput
		score  *model.MatchScore
		field  string
	}{
		{"empty inputs", map[int64]model.EvaluationInput{}, &model.MatchScore{}, "evaluations"},
		{"dimension above range", map[int64]model.EvaluationInput{1: {Technique: 11}}, &model.MatchScore{}, "technique"},
		{"dimension below range", map[int64]model.EvaluationInput{1: {Attitude: -1}}, &model.MatchScore{}, "attitude"},
		{"minutes out of range", map[int64]model.EvaluationInput{1: {MinutesPlayed: 121}}, &model.MatchScore{}, "minutes_played"},
		{"negative counter", map[int64]model.EvaluationInput{1: {Goals: -1}}, &model.MatchScore{}, "goals"},
		{"negative score", map[int64]model.EvaluationInput{1: {}}, &model.MatchScore{HomeGoals: -1}, "score"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, svc := newEvalFixture()
			_, err := svc.EvaluateEvent(context.Background(), adminScope(), 100, tc.inputs, tc.score)
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
				t.Fatalf("missing field error %q in %v", tc.field, service.FieldErrors(err))
			}
		})
	}
}

func TestEvaluateEvent_ScopeEnforcement(t *testing.T) {
	_, _, _, svc := newEvalFixture()

	if _, err := svc.EvaluateEvent(context.Background(),
		model.Scope{TeamID: testTeamID, Role: model.RoleViewer}, 100,
		map[int64]model.EvaluationInput{1: {}}, &model.MatchScore{}); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("viewer must be forbidden, got %v", err)
	}

	if _, err := svc.EvaluateEvent(context.Background(),
		model.Scope{TeamID: 99, Role: model.RoleAdmin}, 100,
		map[int64]model.EvaluationInput{1: {}}, &model.MatchScore{}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("foreign team must see not found, got %v", err)
	}
}

func TestListByPlayer_TenantIsolation(t *testing.T) {
	players, _, _, svc := newEvalFixture()
	players.byID[5] = model.Player{ID: 5, TeamID: 99}

	_, err := svc.ListByPlayer(context.Background(), adminScope(), 5)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound for foreign player, got %v", err)
	}
}
