// Package repository defines the minimal storage contract the
// matchmaker core requires: insert, exists, load, execute over the
// domain entities. The core never imports a concrete driver; it
// depends only on this port.
package repository

import (
	"context"
	"time"

	"github.com/duoqueue/matchmaker/internal/matchmaker"
)

// PlayerRepository persists Player entities, keyed by discord_id.
type PlayerRepository interface {
	Insert(ctx context.Context, p matchmaker.Player) error
	Exists(ctx context.Context, discordID int64) (bool, error)
	Load(ctx context.Context, discordID int64) (matchmaker.Player, error)
}

// TeamRepository persists Team entities, keyed by team_id, with an
// additional load-by-name path (team names are unique).
type TeamRepository interface {
	Insert(ctx context.Context, t matchmaker.Team) error
	Exists(ctx context.Context, teamID int64) (bool, error)
	Load(ctx context.Context, teamID int64) (matchmaker.Team, error)
	LoadByName(ctx context.Context, name string) (matchmaker.Team, error)
	UpdateElo(ctx context.Context, teamID int64, elo float64) error
	List(ctx context.Context) ([]matchmaker.Team, error)
}

// RoundRepository persists Round descriptors.
type RoundRepository interface {
	Insert(ctx context.Context, r matchmaker.Round) error
	Load(ctx context.Context, roundID int64) (matchmaker.Round, error)
	Stamp(ctx context.Context, roundID int64, endTime time.Time) error
}

// MatchRepository persists Match entities, including their two Result
// slots.
type MatchRepository interface {
	Insert(ctx context.Context, m matchmaker.Match) error
	Exists(ctx context.Context, matchID int64) (bool, error)
	Load(ctx context.Context, matchID int64) (matchmaker.Match, error)
	ListByRound(ctx context.Context, roundID int64) ([]matchmaker.Match, error)
	// ListHistory returns up to limit matches ordered by match_id
	// descending, starting strictly before afterMatchID (0 meaning "from
	// the newest"); a paging caller asks for one row more than it shows,
	// trims the extra row and uses its presence as the hasMore flag.
	ListHistory(ctx context.Context, limit int, afterMatchID int64) ([]matchmaker.Match, error)
}

// ResultRepository persists Result rows and the derived
// result-with-team-details view.
type ResultRepository interface {
	Insert(ctx context.Context, r matchmaker.Result, matchID int64) error
	Execute(ctx context.Context, query string, args ...any) (Rows, error)
}

// Rows is the cursor returned by a structured Execute call; it is
// satisfied by *sql.Rows, kept narrow so callers don't need database/sql
// in their import graph just to range over a result set.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// Repositories bundles every entity repository the matchmaker's external
// handlers (persistence collaborator) need.
type Repositories struct {
	Players PlayerRepository
	Teams   TeamRepository
	Rounds  RoundRepository
	Matches MatchRepository
	Results ResultRepository
}
