package postgres

import (
	"context"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type evaluationRepository struct{ pool *pgxpool.Pool }

func NewEvaluationRepository(pool *pgxpool.Pool) repository.EvaluationRepository {
	return &evaluationRepository{pool: pool}
}

const evaluationColumns = `id, player_id, event_id, event_date,
	technique, physical, tactical, attitude,
	minutes_played, goals, assists, yellow_cards, red_cards, fouls, created_at`

func (r *evaluationRepository) Insert(ctx context.Context, e model.Evaluation) (model.Evaluation, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Evaluation{}, err
	}
	exec := getQ(ctx, r.pool)
	// Append-only: a repeat (player_id, event_id) pair trips the unique
	// index and surfaces as ErrAlreadyExists.
	row := exec.QueryRow(ctx,
		`INSERT INTO evaluations (
			player_id, event_id, event_date,
			technique, physical, tactical, attitude,
			minutes_played, goals, assists, yellow_cards, red_cards, fouls
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING `+evaluationColumns,
		e.PlayerID, e.EventID, e.EventDate,
		e.Technique, e.Physical, e.Tactical, e.Attitude,
		e.MinutesPlayed, e.Goals, e.Assists, e.YellowCards, e.RedCards, e.Fouls,
	)
	var out model.Evaluation
	if err := row.Scan(
		&out.ID, &out.PlayerID, &out.EventID, &out.EventDate,
		&out.Technique, &out.Physical, &out.Tactical, &out.Attitude,
		&out.MinutesPlayed, &out.Goals, &out.Assists, &out.YellowCards, &out.RedCards, &out.Fouls, &out.CreatedAt,
	); err != nil {
		return model.Evaluation{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *evaluationRepository) ListByEvent(ctx context.Context, eventID int64) ([]model.Evaluation, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+evaluationColumns+` FROM evaluations WHERE event_id = $1 ORDER BY id`, eventID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return collectEvaluations(rows)
}

func (r *evaluationRepository) ListByPlayer(ctx context.Context, playerID int64) ([]model.Evaluation, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+evaluationColumns+` FROM evaluations WHERE player_id = $1 ORDER BY event_date DESC, id DESC`, playerID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return collectEvaluations(rows)
}

func (r *evaluationRepository) DeleteByEvent(ctx context.Context, eventID int64) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM evaluations WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *evaluationRepository) DeleteByPlayer(ctx context.Context, playerID int64) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM evaluations WHERE player_id = $1`, playerID)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func collectEvaluations(rows pgx.Rows) ([]model.Evaluation, error) {
	defer rows.Close()
	res := make([]model.Evaluation, 0, 16)
	for rows.Next() {
		var it model.Evaluation
		if err := rows.Scan(
			&it.ID, &it.PlayerID, &it.EventID, &it.EventDate,
			&it.Technique, &it.Physical, &it.Tactical, &it.Attitude,
			&it.MinutesPlayed, &it.Goals, &it.Assists, &it.YellowCards, &it.RedCards, &it.Fouls, &it.CreatedAt,
		); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, nil
}

var _ repository.EvaluationRepository = (*evaluationRepository)(nil)
