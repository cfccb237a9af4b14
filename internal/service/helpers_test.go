package service

import (
	"testing"

	"github.com/avillegas/roster-stats-service/internal/model"
)

func TestParseEventDate(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{"valid", "2025-03-08", true},
		{"valid with spaces", " 2025-03-08 ", true},
		{"slash format", "2025/03/08", false},
		{"with time", "2025-03-08T10:00:00Z", false},
		{"impossible day", "2025-02-30", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := parseEventDate(tc.input); ok != tc.ok {
				t.Fatalf("parseEventDate(%q) ok=%v, want %v", tc.input, ok, tc.ok)
			}
		})
	}
}

func TestDiffIDs(t *testing.T) {
	added, removed := diffIDs([]int64{1, 2, 3}, []int64{2, 3, 4, 5})
	if len(added) != 2 || added[0] != 4 || added[1] != 5 {
		t.Fatalf("added = %v", added)
	}
	if len(removed) != 1 || removed[0] != 1 {
		t.Fatalf("removed = %v", removed)
	}

	added, removed = diffIDs(nil, nil)
	if len(added) != 0 || len(removed) != 0 {
		t.Fatalf("empty diff: %v %v", added, removed)
	}

	added, removed = diffIDs([]int64{7}, []int64{7})
	if len(added) != 0 || len(removed) != 0 {
		t.Fatalf("identical lists must not diff: %v %v", added, removed)
	}
}

func TestDedupeIDs_PreservesOrder(t *testing.T) {
	got := dedupeIDs([]int64{3, 1, 3, 2, 1})
	want := []int64{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMatchPoints(t *testing.T) {
	cases := []struct {
		gf, ga, want int
	}{
		{3, 1, 3},
		{2, 2, 1},
		{0, 1, 0},
		{0, 0, 1},
	}
	for _, tc := range cases {
		if got := matchPoints(tc.gf, tc.ga); got != tc.want {
			t.Fatalf("matchPoints(%d,%d) = %d, want %d", tc.gf, tc.ga, got, tc.want)
		}
	}
}

func TestResolveScore(t *testing.T) {
	gf, ga := resolveScore(model.ConditionHome, model.MatchScore{HomeGoals: 3, AwayGoals: 1})
	if gf != 3 || ga != 1 {
		t.Fatalf("home: %d:%d", gf, ga)
	}
	gf, ga = resolveScore(model.ConditionAway, model.MatchScore{HomeGoals: 3, AwayGoals: 1})
	if gf != 1 || ga != 3 {
		t.Fatalf("away: %d:%d", gf, ga)
	}
}

func TestFoldEvaluation(t *testing.T) {
	p := model.Player{
		EventsEvaluated: 4,
		AvgTechnique:    6, AvgPhysical: 5, AvgTactical: 7, AvgAttitude: 8,
	}
	in := model.EvaluationInput{
		Technique: 10, Physical: 10, Tactical: 2, Attitude: 8,
		Goals: 1, Assists: 2, MinutesPlayed: 75, Fouls: 3,
	}
	upd := foldEvaluation(p, in)

	// (avg*4 + v) / 5 per dimension.
	if upd.AvgTechnique != 6.8 || upd.AvgPhysical != 6 || upd.AvgTactical != 6 || upd.AvgAttitude != 8 {
		t.Fatalf("averages: %+v", upd)
	}
	if want := (6.8 + 6 + 6 + 8) / 4; upd.OverallRating != want {
		t.Fatalf("overall = %v, want %v", upd.OverallRating, want)
	}
	if upd.EventsEvaluated != 5 {
		t.Fatalf("events evaluated = %d", upd.EventsEvaluated)
	}
	if upd.Goals != 1 || upd.Assists != 2 || upd.Minutes != 75 || upd.Fouls != 3 {
		t.Fatalf("counter deltas: %+v", upd)
	}
}
