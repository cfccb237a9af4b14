// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// Roles carried in the request scope. Mutations require RoleAdmin.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Event types.
const (
	EventMatch    = "match"
	EventTraining = "training"
)

// Match conditions, relative to the owning team.
const (
	ConditionHome = "home"
	ConditionAway = "away"
)

// Preferred foot values for a player profile.
const (
	FootRight = "right"
	FootLeft  = "left"
	FootBoth  = "both"
)

// Scope is the immutable tenant/role token every operation receives.
// Identity itself lives outside this service; callers arrive already
// authenticated and the scope is all the core ever sees of them.
type Scope struct {
	TeamID int64  `json:"team_id"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the scope may perform mutating operations.
func (s Scope) IsAdmin() bool { return s.Role == RoleAdmin }

// Team is the tenant registry entry all other records hang off.
type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Player represents one roster member with cumulative totals and running
// averages. Counters and averages are owned by the evaluation engine;
// profile edits never touch them.
type Player struct {
	ID            int64  `json:"id"`
	TeamID        int64  `json:"team_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Position      string `json:"position"`
	SquadNumber   int    `json:"squad_number"`
	Age           int    `json:"age"`
	PreferredFoot string `json:"preferred_foot"`

	TotalGoals       int `json:"total_goals"`
	TotalAssists     int `json:"total_assists"`
	TotalMinutes     int `json:"total_minutes"`
	TotalCallUps     int `json:"total_call_ups"`
	TotalYellowCards int `json:"total_yellow_cards"`
	TotalRedCards    int `json:"total_red_cards"`
	TotalFouls       int `json:"total_fouls"`
	EventsEvaluated  int `json:"events_evaluated"`

	AvgTechnique  float64 `json:"avg_technique"`
	AvgPhysical   float64 `json:"avg_physical"`
	AvgTactical   float64 `json:"avg_tactical"`
	AvgAttitude   float64 `json:"avg_attitude"`
	OverallRating float64 `json:"overall_rating"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlayerProfile carries the editable identity fields of a player,
// deliberately excluding every counter and average.
type PlayerProfile struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Position      string `json:"position"`
	SquadNumber   int    `json:"squad_number"`
	Age           int    `json:"age"`
	PreferredFoot string `json:"preferred_foot"`
}

// Event is one match or training session. Outcome fields are nil until the
// event has been evaluated; CallUps may only change before that.
type Event struct {
	ID          int64     `json:"id"`
	TeamID      int64     `json:"team_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Condition   string    `json:"condition,omitempty"`
	CallUps     []int64   `json:"call_ups"`

	Evaluated        bool    `json:"evaluated"`
	CollectiveRating float64 `json:"collective_rating"`
	GoalsFor         *int    `json:"goals_for,omitempty"`
	GoalsAgainst     *int    `json:"goals_against,omitempty"`
	Points           *int    `json:"points,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Evaluation is the immutable per-player, per-event scored record.
// EventDate is denormalized from the event for chronological queries.
type Evaluation struct {
	ID        int64     `json:"id"`
	PlayerID  int64     `json:"player_id"`
	EventID   int64     `json:"event_id"`
	EventDate time.Time `json:"event_date"`

	Technique int `json:"technique"`
	Physical  int `json:"physical"`
	Tactical  int `json:"tactical"`
	Attitude  int `json:"attitude"`

	MinutesPlayed int `json:"minutes_played"`
	Goals         int `json:"goals"`
	Assists       int `json:"assists"`
	YellowCards   int `json:"yellow_cards"`
	RedCards      int `json:"red_cards"`
	Fouls         int `json:"fouls"`

	CreatedAt time.Time `json:"created_at"`
}

// EvaluationInput is the fixed, validated payload one player contributes to
// an event evaluation. Dimension scores are whole points on a 0-10 scale.
type EvaluationInput struct {
	Technique int `json:"technique"`
	Physical  int `json:"physical"`
	Tactical  int `json:"tactical"`
	Attitude  int `json:"attitude"`

	MinutesPlayed int `json:"minutes_played"`
	Goals         int `json:"goals"`
	Assists       int `json:"assists"`
	YellowCards   int `json:"yellow_cards"`
	RedCards      int `json:"red_cards"`
	Fouls         int `json:"fouls"`
}

// DimensionMean is this input's four-dimension mean for the one event being
// evaluated, the per-player contribution to the collective rating.
func (in EvaluationInput) DimensionMean() float64 {
	return float64(in.Technique+in.Physical+in.Tactical+in.Attitude) / 4
}

// MatchScore is the raw side-relative score as entered: goals of the home
// side and goals of the away side, not yet resolved against the team's
// condition.
type MatchScore struct {
	HomeGoals int `json:"home_goals"`
	AwayGoals int `json:"away_goals"`
}

// PlayerStatsUpdate is the write the evaluation engine applies to one
// player: deltas for the raw counters, absolute values for the recomputed
// averages and the evaluation count.
type PlayerStatsUpdate struct {
	Goals       int
	Assists     int
	Minutes     int
	YellowCards int
	RedCards    int
	Fouls       int

	AvgTechnique    float64
	AvgPhysical     float64
	AvgTactical     float64
	AvgAttitude     float64
	OverallRating   float64
	EventsEvaluated int
}

// EventOutcome is the event-level result of an evaluation. Goal and point
// fields stay nil for training sessions.
type EventOutcome struct {
	CollectiveRating float64
	GoalsFor         *int
	GoalsAgainst     *int
	Points           *int
}

// EvaluationResult summarizes a committed evaluation for the caller.
type EvaluationResult struct {
	EventID          int64   `json:"event_id"`
	PlayersEvaluated int     `json:"players_evaluated"`
	CollectiveRating float64 `json:"collective_rating"`
	GoalsFor         *int    `json:"goals_for,omitempty"`
	GoalsAgainst     *int    `json:"goals_against,omitempty"`
	Points           *int    `json:"points,omitempty"`
}

// SeasonSummary is the team's season table line derived from evaluated
// matches. Read-only query result, never persisted.
type SeasonSummary struct {
	Played       int `json:"played"`
	Wins         int `json:"wins"`
	Draws        int `json:"draws"`
	Losses       int `json:"losses"`
	GoalsFor     int `json:"goals_for"`
	GoalsAgainst int `json:"goals_against"`
	Points       int `json:"points"`
}
