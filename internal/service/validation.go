package service

import (
	"strings"
	"time"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
)

func normalizePage(p repository.Page) repository.Page {
	limit := p.Limit
	offset := p.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

func isValidFoot(foot string) bool {
	switch foot {
	case model.FootRight, model.FootLeft, model.FootBoth:
		return true
	default:
		return false
	}
}

func normalizeFoot(foot string) string {
	return strings.ToLower(strings.TrimSpace(foot))
}

func isValidEventType(t string) bool {
	switch t {
	case model.EventMatch, model.EventTraining:
		return true
	default:
		return false
	}
}

func isValidCondition(c string) bool {
	switch c {
	case model.ConditionHome, model.ConditionAway:
		return true
	default:
		return false
	}
}

func isValidRankMetric(m string) bool {
	switch m {
	case repository.RankByGoals, repository.RankByAssists, repository.RankByMinutes, repository.RankByRating:
		return true
	default:
		return false
	}
}

// parseEventDate accepts a plain calendar date, the granularity events are
// scheduled at.
func parseEventDate(s string) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// validateProfile aggregates field errors for player identity fields and
// returns the normalized profile alongside them.
func validateProfile(p model.PlayerProfile) (model.PlayerProfile, []FieldError) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Position = strings.TrimSpace(p.Position)
	p.PreferredFoot = normalizeFoot(p.PreferredFoot)

	var ferrs []FieldError
	if p.FirstName == "" {
		ferrs = append(ferrs, FieldError{Field: "first_name", Message: "must not be empty"})
	} else if ln := len([]rune(p.FirstName)); ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "first_name", Message: "length must be <= 50"})
	}
	if p.LastName == "" {
		ferrs = append(ferrs, FieldError{Field: "last_name", Message: "must not be empty"})
	} else if ln := len([]rune(p.LastName)); ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "last_name", Message: "length must be <= 50"})
	}
	if p.Position == "" {
		ferrs = append(ferrs, FieldError{Field: "position", Message: "must not be empty"})
	} else if ln := len([]rune(p.Position)); ln > 40 {
		ferrs = append(ferrs, FieldError{Field: "position", Message: "length must be <= 40"})
	}
	if p.SquadNumber < 0 || p.SquadNumber > 99 {
		ferrs = append(ferrs, FieldError{Field: "squad_number", Message: "must be between 0 and 99"})
	}
	if p.Age < 0 || p.Age > 99 {
		ferrs = append(ferrs, FieldError{Field: "age", Message: "must be between 0 and 99"})
	}
	if !isValidFoot(p.PreferredFoot) {
		ferrs = append(ferrs, FieldError{Field: "preferred_foot", Message: "must be one of right, left, both"})
	}
	return p, ferrs
}

// validateEvaluationInput range-checks one player's payload. Dimension
// scores are whole points 0..10; the raw counters just need to be sane
// non-negative match numbers.
func validateEvaluationInput(in model.EvaluationInput) []FieldError {
	var ferrs []FieldError
	dims := []struct {
		name  string
		value int
	}{
		{"technique", in.Technique},
		{"physical", in.Physical},
		{"tactical", in.Tactical},
		{"attitude", in.Attitude},
	}
	for _, d := range dims {
		if d.value < 0 || d.value > 10 {
			ferrs = append(ferrs, FieldError{Field: d.name, Message: "must be between 0 and 10"})
		}
	}
	if in.MinutesPlayed < 0 || in.MinutesPlayed > 120 {
		ferrs = append(ferrs, FieldError{Field: "minutes_played", Message: "must be between 0 and 120"})
	}
	counters := []struct {
		name  string
		value int
	}{
		{"goals", in.Goals},
		{"assists", in.Assists},
		{"yellow_cards", in.YellowCards},
		{"red_cards", in.RedCards},
		{"fouls", in.Fouls},
	}
	for _, c := range counters {
		if c.value < 0 {
			ferrs = append(ferrs, FieldError{Field: c.name, Message: "must be >= 0"})
		}
	}
	return ferrs
}

// requireAdmin gates mutating operations on the scope's role.
func requireAdmin(scope model.Scope) error {
	if !scope.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
