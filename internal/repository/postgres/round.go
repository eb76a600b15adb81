package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/duoqueue/matchmaker/internal/infrastructure/db"
	"github.com/duoqueue/matchmaker/internal/matchmaker"
	"github.com/duoqueue/matchmaker/pkg/errors"
)

// RoundRepository хранит раунды: идентификатор, время начала/конца и
// число участников.
type RoundRepository struct {
	db *db.DB
}

// NewRoundRepository создаёт репозиторий раундов.
func NewRoundRepository(conn *db.DB) *RoundRepository {
	return &RoundRepository{db: conn}
}

// Insert фиксирует раунд в момент его формирования триггером.
func (r *RoundRepository) Insert(ctx context.Context, rnd matchmaker.Round) error {
	query := `
		INSERT INTO rounds (id, start_time, participants)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, rnd.ID, rnd.StartTime, rnd.Participants)
	if err != nil {
		return errors.Wrap(err, "failed to insert round")
	}
	return nil
}

// Load получает раунд по round_id.
func (r *RoundRepository) Load(ctx context.Context, roundID int64) (matchmaker.Round, error) {
	var rnd matchmaker.Round
	var end sql.NullTime
	query := `SELECT id, start_time, end_time, participants FROM rounds WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, roundID).Scan(&rnd.ID, &rnd.StartTime, &end, &rnd.Participants)
	if err == sql.ErrNoRows {
		return matchmaker.Round{}, errors.ErrNotFound.WithMessage("round not found")
	}
	if err != nil {
		return matchmaker.Round{}, errors.Wrap(err, "failed to load round")
	}
	if end.Valid {
		rnd.EndTime = &end.Time
	}
	return rnd, nil
}

// Stamp записывает время завершения раунда (вызывается обработчиком
// persistence на событие ROUND_END, которое GameEndHandler рассылает при
// переходе InGameContext в StateEnded).
func (r *RoundRepository) Stamp(ctx context.Context, roundID int64, endTime time.Time) error {
	query := `UPDATE rounds SET end_time = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, roundID, endTime)
	if err != nil {
		return errors.Wrap(err, "failed to stamp round end time")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.ErrNotFound.WithMessage("round not found")
	}
	return nil
}
