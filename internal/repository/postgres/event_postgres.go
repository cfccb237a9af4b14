package postgres

import (
	"context"
	"errors"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type eventRepository struct{ pool *pgxpool.Pool }

func NewEventRepository(pool *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `id, team_id, type, description, date, condition, call_ups,
	evaluated, collective_rating, goals_for, goals_against, points, created_at, updated_at`

func scanEvent(row pgx.Row) (model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.TeamID, &e.Type, &e.Description, &e.Date, &e.Condition, &e.CallUps,
		&e.Evaluated, &e.CollectiveRating, &e.GoalsFor, &e.GoalsAgainst, &e.Points, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *eventRepository) Create(ctx context.Context, e model.Event) (model.Event, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Event{}, err
	}
	exec := getQ(ctx, r.pool)
	// Fresh events start with an empty call-up list and no outcome.
	row := exec.QueryRow(ctx,
		`INSERT INTO events (team_id, type, description, date, condition)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+eventColumns,
		e.TeamID, e.Type, e.Description, e.Date, e.Condition,
	)
	out, err := scanEvent(row)
	if err != nil {
		return model.Event{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (model.Event, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Event{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	out, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Event{}, repository.ErrNotFound
		}
		return model.Event{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *eventRepository) ListByTeam(ctx context.Context, teamID int64, eventType string, p repository.Page) (repository.PageResult[model.Event], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Event]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+eventColumns+`, COUNT(*) OVER() AS total
		 FROM events
		 WHERE team_id = $1 AND ($2::TEXT = '' OR type = $2)
		 ORDER BY date DESC, id DESC
		 LIMIT $3 OFFSET $4`,
		teamID, eventType, limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Event]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Event]{Items: make([]model.Event, 0, limit)}
	for rows.Next() {
		var it model.Event
		var total int
		if err := rows.Scan(
			&it.ID, &it.TeamID, &it.Type, &it.Description, &it.Date, &it.Condition, &it.CallUps,
			&it.Evaluated, &it.CollectiveRating, &it.GoalsFor, &it.GoalsAgainst, &it.Points, &it.CreatedAt, &it.UpdatedAt, &total,
		); err != nil {
			return repository.PageResult[model.Event]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, it)
		res.Total = total
	}
	return res, nil
}

func (r *eventRepository) ListEvaluatedByTeam(ctx context.Context, teamID int64) ([]model.Event, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE team_id = $1 AND evaluated
		 ORDER BY date, id`,
		teamID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.Event, 0, 16)
	for rows.Next() {
		var it model.Event
		if err := rows.Scan(
			&it.ID, &it.TeamID, &it.Type, &it.Description, &it.Date, &it.Condition, &it.CallUps,
			&it.Evaluated, &it.CollectiveRating, &it.GoalsFor, &it.GoalsAgainst, &it.Points, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, nil
}

func (r *eventRepository) SetCallUps(ctx context.Context, id int64, playerIDs []int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	if playerIDs == nil {
		playerIDs = []int64{}
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`UPDATE events SET call_ups = $2, updated_at = NOW() WHERE id = $1`,
		id, playerIDs,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkEvaluated is the one-time transition guard. The WHERE clause makes it
// a conditional write: a second caller updates zero rows and gets
// ErrConflict, so racing evaluations serialize on the event row.
func (r *eventRepository) MarkEvaluated(ctx context.Context, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`UPDATE events SET evaluated = TRUE, updated_at = NOW()
		 WHERE id = $1 AND NOT evaluated`,
		id,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		// Either missing or already evaluated; disambiguate for the caller.
		var exists bool
		if err := exec.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
			return repository.MapPgError(err)
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	return nil
}

func (r *eventRepository) RecordOutcome(ctx context.Context, id int64, out model.EventOutcome) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`UPDATE events SET
			collective_rating = $2,
			goals_for = $3,
			goals_against = $4,
			points = $5,
			updated_at = NOW()
		 WHERE id = $1`,
		id, out.CollectiveRating, out.GoalsFor, out.GoalsAgainst, out.Points,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetSeasonSummary folds every evaluated match with a recorded outcome into
// one standings line. Points are read back, not re-derived, so the summary
// always agrees with what the evaluation engine awarded.
func (r *eventRepository) GetSeasonSummary(ctx context.Context, teamID int64) (model.SeasonSummary, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.SeasonSummary{}, err
	}
	query := `
		SELECT
			COALESCE(COUNT(*), 0) AS played,
			COALESCE(COUNT(*) FILTER (WHERE points = 3), 0) AS wins,
			COALESCE(COUNT(*) FILTER (WHERE points = 1), 0) AS draws,
			COALESCE(COUNT(*) FILTER (WHERE points = 0), 0) AS losses,
			COALESCE(SUM(goals_for), 0) AS goals_for,
			COALESCE(SUM(goals_against), 0) AS goals_against,
			COALESCE(SUM(points), 0) AS points
		FROM events
		WHERE team_id = $1 AND type = 'match' AND evaluated AND points IS NOT NULL
	`
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, query, teamID)

	var s model.SeasonSummary
	err := row.Scan(&s.Played, &s.Wins, &s.Draws, &s.Losses, &s.GoalsFor, &s.GoalsAgainst, &s.Points)
	if err != nil {
		return model.SeasonSummary{}, repository.MapPgError(err)
	}
	return s, nil
}

func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.EventRepository = (*eventRepository)(nil)
