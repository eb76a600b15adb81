package postgres

import (
	"context"
	"database/sql"

	"github.com/duoqueue/matchmaker/internal/infrastructure/db"
	"github.com/duoqueue/matchmaker/internal/matchmaker"
	"github.com/duoqueue/matchmaker/pkg/errors"
)

// TeamRepository хранит команды, их игроков и текущий рейтинг Эло.
type TeamRepository struct {
	db *db.DB
}

// NewTeamRepository создаёт репозиторий команд.
func NewTeamRepository(conn *db.DB) *TeamRepository {
	return &TeamRepository{db: conn}
}

// Insert создаёт команду. Игроки должны уже существовать в таблице players
// (внешний ключ player_one_id/player_two_id).
func (r *TeamRepository) Insert(ctx context.Context, t matchmaker.Team) error {
	query := `
		INSERT INTO teams (id, name, player_one_id, player_two_id, elo)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.PlayerOne.DiscordID, t.PlayerTwo.DiscordID, t.Elo)
	if err != nil {
		return errors.Wrap(err, "failed to insert team")
	}
	return nil
}

// Exists проверяет наличие команды по team_id.
func (r *TeamRepository) Exists(ctx context.Context, teamID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM teams WHERE id = $1)`
	if err := r.db.QueryRowContext(ctx, query, teamID).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check team existence")
	}
	return exists, nil
}

const teamWithDetailsQuery = `
	SELECT t.id, t.name, t.elo,
	       p1.discord_id, p1.name,
	       p2.discord_id, p2.name
	FROM team_with_details t
	JOIN players p1 ON p1.discord_id = t.player_one_id
	JOIN players p2 ON p2.discord_id = t.player_two_id
	WHERE t.id = $1
`

func scanTeam(row interface{ Scan(...any) error }) (matchmaker.Team, error) {
	var t matchmaker.Team
	err := row.Scan(
		&t.ID, &t.Name, &t.Elo,
		&t.PlayerOne.DiscordID, &t.PlayerOne.Name,
		&t.PlayerTwo.DiscordID, &t.PlayerTwo.Name,
	)
	return t, err
}

// Load получает команду по team_id вместе с данными обоих игроков, читая
// из представления team_with_details.
func (r *TeamRepository) Load(ctx context.Context, teamID int64) (matchmaker.Team, error) {
	t, err := scanTeam(r.db.QueryRowContext(ctx, teamWithDetailsQuery, teamID))
	if err == sql.ErrNoRows {
		return matchmaker.Team{}, errors.ErrNotFound.WithMessage("team not found")
	}
	if err != nil {
		return matchmaker.Team{}, errors.Wrap(err, "failed to load team")
	}
	return t, nil
}

// LoadByName получает команду по уникальному имени.
func (r *TeamRepository) LoadByName(ctx context.Context, name string) (matchmaker.Team, error) {
	query := `
		SELECT t.id, t.name, t.elo,
		       p1.discord_id, p1.name,
		       p2.discord_id, p2.name
		FROM team_with_details t
		JOIN players p1 ON p1.discord_id = t.player_one_id
		JOIN players p2 ON p2.discord_id = t.player_two_id
		WHERE t.name = $1
	`
	t, err := scanTeam(r.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return matchmaker.Team{}, errors.ErrNotFound.WithMessage("team not found")
	}
	if err != nil {
		return matchmaker.Team{}, errors.Wrap(err, "failed to load team by name")
	}
	return t, nil
}

// UpdateElo перезаписывает текущий рейтинг команды (вызывается после
// применения delta из обработанного результата).
func (r *TeamRepository) UpdateElo(ctx context.Context, teamID int64, elo float64) error {
	query := `UPDATE teams SET elo = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, teamID, elo)
	if err != nil {
		return errors.Wrap(err, "failed to update team elo")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.ErrNotFound.WithMessage("team not found")
	}
	return nil
}

// List возвращает все команды, упорядоченные по рейтингу (используется
// GET /leaderboard, когда кэш лидерборда не задан, пуст или недоступен).
func (r *TeamRepository) List(ctx context.Context) ([]matchmaker.Team, error) {
	query := `
		SELECT t.id, t.name, t.elo,
		       p1.discord_id, p1.name,
		       p2.discord_id, p2.name
		FROM team_with_details t
		JOIN players p1 ON p1.discord_id = t.player_one_id
		JOIN players p2 ON p2.discord_id = t.player_two_id
		ORDER BY t.elo DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list teams")
	}
	defer rows.Close()

	var teams []matchmaker.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan team")
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}
