package postgres

import (
	"context"
	"database/sql"

	"github.com/duoqueue/matchmaker/internal/infrastructure/db"
	"github.com/duoqueue/matchmaker/internal/matchmaker"
	"github.com/duoqueue/matchmaker/pkg/errors"
)

// MatchRepository хранит сформированные матчи: пару команд, раунд и
// коэффициент правдоподобия (odds_ratio), а также присоединяет
// накопленные результаты через result_with_team_details.
type MatchRepository struct {
	db *db.DB
}

// NewMatchRepository создаёт репозиторий матчей.
func NewMatchRepository(conn *db.DB) *MatchRepository {
	return &MatchRepository{db: conn}
}

// Insert фиксирует матч в момент формирования раунда принципал-агентом;
// строки результатов появляются позже, когда InsertResult обрабатывает
// отчёт игроков.
func (r *MatchRepository) Insert(ctx context.Context, m matchmaker.Match) error {
	query := `
		INSERT INTO matches (id, round_id, team_one_id, team_two_id, odds_ratio)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.Round.ID, m.TeamOne.Team.ID, m.TeamTwo.Team.ID, m.OddsRatio)
	if err != nil {
		return errors.Wrap(err, "failed to insert match")
	}
	return nil
}

// Exists проверяет наличие матча по match_id.
func (r *MatchRepository) Exists(ctx context.Context, matchID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM matches WHERE id = $1)`
	if err := r.db.QueryRowContext(ctx, query, matchID).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check match existence")
	}
	return exists, nil
}

const matchDetailsQuery = `
	SELECT m.id, m.round_id, r.start_time, r.end_time, r.participants, m.odds_ratio,
	       m.team_one_id, t1.name, t1.elo,
	       COALESCE(res1.points, 0), COALESCE(res1.delta, 0),
	       m.team_two_id, t2.name, t2.elo,
	       COALESCE(res2.points, 0), COALESCE(res2.delta, 0)
	FROM matches m
	JOIN rounds r ON r.id = m.round_id
	JOIN teams t1 ON t1.id = m.team_one_id
	JOIN teams t2 ON t2.id = m.team_two_id
	LEFT JOIN result_with_team_details res1 ON res1.match_id = m.id AND res1.team_id = m.team_one_id
	LEFT JOIN result_with_team_details res2 ON res2.match_id = m.id AND res2.team_id = m.team_two_id
`

func scanMatch(row interface{ Scan(...any) error }) (matchmaker.Match, error) {
	var m matchmaker.Match
	var end sql.NullTime
	err := row.Scan(
		&m.ID, &m.Round.ID, &m.Round.StartTime, &end, &m.Round.Participants, &m.OddsRatio,
		&m.TeamOne.Team.ID, &m.TeamOne.Team.Name, &m.TeamOne.Team.Elo, &m.TeamOne.Points, &m.TeamOne.Delta,
		&m.TeamTwo.Team.ID, &m.TeamTwo.Team.Name, &m.TeamTwo.Team.Elo, &m.TeamTwo.Points, &m.TeamTwo.Delta,
	)
	if err == nil && end.Valid {
		m.Round.EndTime = &end.Time
	}
	return m, err
}

// Load получает матч по match_id, с текущими очками/дельтами обеих команд
// (нули, если результат ещё не сообщён).
func (r *MatchRepository) Load(ctx context.Context, matchID int64) (matchmaker.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx, matchDetailsQuery+" WHERE m.id = $1", matchID))
	if err == sql.ErrNoRows {
		return matchmaker.Match{}, errors.ErrNotFound.WithMessage("match not found")
	}
	if err != nil {
		return matchmaker.Match{}, errors.Wrap(err, "failed to load match")
	}
	return m, nil
}

// ListByRound получает все матчи раунда (используется для восстановления
// InGameContext после перезапуска сервиса).
func (r *MatchRepository) ListByRound(ctx context.Context, roundID int64) ([]matchmaker.Match, error) {
	rows, err := r.db.QueryContext(ctx, matchDetailsQuery+" WHERE m.round_id = $1", roundID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list matches by round")
	}
	defer rows.Close()

	var matches []matchmaker.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan match")
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ListHistory reads the most recent matches, newest first, for the
// GET /matches/history page.
func (r *MatchRepository) ListHistory(ctx context.Context, limit int, afterMatchID int64) ([]matchmaker.Match, error) {
	query := matchDetailsQuery + `
		WHERE ($2 = 0 OR m.id < $2)
		ORDER BY m.id DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit, afterMatchID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list match history")
	}
	defer rows.Close()

	var matches []matchmaker.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan match")
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
