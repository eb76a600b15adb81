package postgres

import (
	"context"
	"database/sql"

	"github.com/duoqueue/matchmaker/internal/infrastructure/db"
	"github.com/duoqueue/matchmaker/internal/matchmaker"
	"github.com/duoqueue/matchmaker/pkg/errors"
)

// PlayerRepository хранит игроков, ключ — discord_id.
type PlayerRepository struct {
	db *db.DB
}

// NewPlayerRepository создаёт репозиторий игроков.
func NewPlayerRepository(conn *db.DB) *PlayerRepository {
	return &PlayerRepository{db: conn}
}

// Insert добавляет игрока; повторная вставка по тому же discord_id не
// является ошибкой (ON CONFLICT DO NOTHING), поскольку Queue — идемпотентная
// по сути точка входа для новых участников.
func (r *PlayerRepository) Insert(ctx context.Context, p matchmaker.Player) error {
	query := `
		INSERT INTO players (discord_id, name)
		VALUES ($1, $2)
		ON CONFLICT (discord_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, p.DiscordID, p.Name)
	if err != nil {
		return errors.Wrap(err, "failed to insert player")
	}
	return nil
}

// Exists проверяет наличие игрока по discord_id.
func (r *PlayerRepository) Exists(ctx context.Context, discordID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM players WHERE discord_id = $1)`
	if err := r.db.QueryRowContext(ctx, query, discordID).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check player existence")
	}
	return exists, nil
}

// Load получает игрока по discord_id.
func (r *PlayerRepository) Load(ctx context.Context, discordID int64) (matchmaker.Player, error) {
	var p matchmaker.Player
	query := `SELECT discord_id, name FROM players WHERE discord_id = $1`
	err := r.db.QueryRowContext(ctx, query, discordID).Scan(&p.DiscordID, &p.Name)
	if err == sql.ErrNoRows {
		return matchmaker.Player{}, errors.ErrNotFound.WithMessage("player not found")
	}
	if err != nil {
		return matchmaker.Player{}, errors.Wrap(err, "failed to load player")
	}
	return p, nil
}
