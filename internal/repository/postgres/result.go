package postgres

import (
	"context"

	"github.com/duoqueue/matchmaker/internal/infrastructure/db"
	"github.com/duoqueue/matchmaker/internal/matchmaker"
	"github.com/duoqueue/matchmaker/internal/repository"
	"github.com/duoqueue/matchmaker/pkg/errors"
)

// ResultRepository хранит очки и дельту Эло одной стороны матча, плюс
// даёт доступ к произвольным выборкам из result_with_team_details —
// тем самым удовлетворяя execute из контракта порта.
type ResultRepository struct {
	db *db.DB
}

// NewResultRepository создаёт репозиторий результатов.
func NewResultRepository(conn *db.DB) *ResultRepository {
	return &ResultRepository{db: conn}
}

// Insert сохраняет очки и дельту команды, полученные в AddResult. Делает
// upsert: overwrite происходит, только если AddResult ещё не видел эту
// сторону, но конфликт по (match_id, team_id) всё равно может наступить
// при перезапуске, поэтому обновляем, а не отвергаем.
func (r *ResultRepository) Insert(ctx context.Context, res matchmaker.Result, matchID int64) error {
	query := `
		INSERT INTO results (match_id, team_id, points, delta)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (match_id, team_id) DO UPDATE
		SET points = EXCLUDED.points, delta = EXCLUDED.delta
	`
	_, err := r.db.ExecContext(ctx, query, matchID, res.Team.ID, res.Points, res.Delta)
	if err != nil {
		return errors.Wrap(err, "failed to insert result")
	}
	return nil
}

// Execute запускает произвольный параметризованный запрос (например,
// выборку из result_with_team_details) и возвращает курсор через узкий
// интерфейс repository.Rows.
func (r *ResultRepository) Execute(ctx context.Context, query string, args ...any) (repository.Rows, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	return rows, nil
}
