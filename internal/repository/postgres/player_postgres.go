package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type playerRepository struct{ pool *pgxpool.Pool }

func NewPlayerRepository(pool *pgxpool.Pool) repository.PlayerRepository {
	return &playerRepository{pool: pool}
}

const playerColumns = `id, team_id, first_name, last_name, position, squad_number, age, preferred_foot,
	total_goals, total_assists, total_minutes, total_call_ups, total_yellow_cards, total_red_cards, total_fouls,
	events_evaluated, avg_technique, avg_physical, avg_tactical, avg_attitude, overall_rating,
	created_at, updated_at`

func scanPlayer(row pgx.Row) (model.Player, error) {
	var p model.Player
	err := row.Scan(
		&p.ID, &p.TeamID, &p.FirstName, &p.LastName, &p.Position, &p.SquadNumber, &p.Age, &p.PreferredFoot,
		&p.TotalGoals, &p.TotalAssists, &p.TotalMinutes, &p.TotalCallUps, &p.TotalYellowCards, &p.TotalRedCards, &p.TotalFouls,
		&p.EventsEvaluated, &p.AvgTechnique, &p.AvgPhysical, &p.AvgTactical, &p.AvgAttitude, &p.OverallRating,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *playerRepository) Create(ctx context.Context, p model.Player) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	exec := getQ(ctx, r.pool)
	// Counters and averages rely on the schema's zero defaults.
	row := exec.QueryRow(ctx,
		`INSERT INTO players (team_id, first_name, last_name, position, squad_number, age, preferred_foot)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+playerColumns,
		p.TeamID, p.FirstName, p.LastName, p.Position, p.SquadNumber, p.Age, p.PreferredFoot,
	)
	out, err := scanPlayer(row)
	if err != nil {
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *playerRepository) GetByID(ctx context.Context, id int64) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	out, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, repository.ErrNotFound
		}
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *playerRepository) ListByTeam(ctx context.Context, teamID int64, p repository.Page) (repository.PageResult[model.Player], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Player]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+playerColumns+`, COUNT(*) OVER() AS total
		 FROM players WHERE team_id = $1
		 ORDER BY squad_number, id
		 LIMIT $2 OFFSET $3`,
		teamID, limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Player]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Player]{Items: make([]model.Player, 0, limit)}
	for rows.Next() {
		var it model.Player
		var total int
		if err := rows.Scan(
			&it.ID, &it.TeamID, &it.FirstName, &it.LastName, &it.Position, &it.SquadNumber, &it.Age, &it.PreferredFoot,
			&it.TotalGoals, &it.TotalAssists, &it.TotalMinutes, &it.TotalCallUps, &it.TotalYellowCards, &it.TotalRedCards, &it.TotalFouls,
			&it.EventsEvaluated, &it.AvgTechnique, &it.AvgPhysical, &it.AvgTactical, &it.AvgAttitude, &it.OverallRating,
			&it.CreatedAt, &it.UpdatedAt, &total,
		); err != nil {
			return repository.PageResult[model.Player]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, it)
		res.Total = total
	}
	return res, nil
}

// ListRanked orders a team's roster by one cumulative metric, highest first.
// The metric is mapped to a column here so no caller input reaches the SQL text.
func (r *playerRepository) ListRanked(ctx context.Context, teamID int64, metric string, limit int) ([]model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	var column string
	switch metric {
	case repository.RankByGoals:
		column = "total_goals"
	case repository.RankByAssists:
		column = "total_assists"
	case repository.RankByMinutes:
		column = "total_minutes"
	case repository.RankByRating:
		column = "overall_rating"
	default:
		return nil, fmt.Errorf("unknown ranking metric %q", metric)
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+playerColumns+` FROM players
		 WHERE team_id = $1
		 ORDER BY `+column+` DESC, id
		 LIMIT $2`,
		teamID, limit,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.Player, 0, limit)
	for rows.Next() {
		var it model.Player
		if err := rows.Scan(
			&it.ID, &it.TeamID, &it.FirstName, &it.LastName, &it.Position, &it.SquadNumber, &it.Age, &it.PreferredFoot,
			&it.TotalGoals, &it.TotalAssists, &it.TotalMinutes, &it.TotalCallUps, &it.TotalYellowCards, &it.TotalRedCards, &it.TotalFouls,
			&it.EventsEvaluated, &it.AvgTechnique, &it.AvgPhysical, &it.AvgTactical, &it.AvgAttitude, &it.OverallRating,
			&it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, nil
}

func (r *playerRepository) UpdateProfile(ctx context.Context, id int64, profile model.PlayerProfile) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`UPDATE players SET
			first_name = $2, last_name = $3, position = $4, squad_number = $5, age = $6, preferred_foot = $7,
			updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+playerColumns,
		id, profile.FirstName, profile.LastName, profile.Position, profile.SquadNumber, profile.Age, profile.PreferredFoot,
	)
	out, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, repository.ErrNotFound
		}
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

// ApplyEvaluation adds the raw counter deltas in SQL and sets the averages
// the engine recomputed, all in one UPDATE so readers never see a half
// applied player row.
func (r *playerRepository) ApplyEvaluation(ctx context.Context, id int64, upd model.PlayerStatsUpdate) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`UPDATE players SET
			total_goals = total_goals + $2,
			total_assists = total_assists + $3,
			total_minutes = total_minutes + $4,
			total_yellow_cards = total_yellow_cards + $5,
			total_red_cards = total_red_cards + $6,
			total_fouls = total_fouls + $7,
			avg_technique = $8,
			avg_physical = $9,
			avg_tactical = $10,
			avg_attitude = $11,
			overall_rating = $12,
			events_evaluated = $13,
			updated_at = NOW()
		 WHERE id = $1`,
		id, upd.Goals, upd.Assists, upd.Minutes, upd.YellowCards, upd.RedCards, upd.Fouls,
		upd.AvgTechnique, upd.AvgPhysical, upd.AvgTactical, upd.AvgAttitude, upd.OverallRating, upd.EventsEvaluated,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AdjustCallUps shifts the call-up counter by delta. GREATEST keeps the
// counter non-negative even if edits arrive out of order.
func (r *playerRepository) AdjustCallUps(ctx context.Context, id int64, delta int) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`UPDATE players SET
			total_call_ups = GREATEST(total_call_ups + $2, 0),
			updated_at = NOW()
		 WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *playerRepository) Delete(ctx context.Context, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.PlayerRepository = (*playerRepository)(nil)
