package matchmaker

import "time"

// Player — участник, идентифицируется discord_id. Никогда не удаляется ядром.
type Player struct {
	DiscordID int64
	Name      string
}

// Team — команда фиксированного размера два. Elo меняется только через
// поглощение дельты результата.
type Team struct {
	ID        int64
	Name      string
	PlayerOne Player
	PlayerTwo Player
	Elo       float64
}

// HasPlayer проверяет членство игрока в команде по discord_id.
func (t Team) HasPlayer(discordID int64) bool {
	return t.PlayerOne.DiscordID == discordID || t.PlayerTwo.DiscordID == discordID
}

func (t Team) otherPlayer(discordID int64) (Player, bool) {
	switch discordID {
	case t.PlayerOne.DiscordID:
		return t.PlayerTwo, true
	case t.PlayerTwo.DiscordID:
		return t.PlayerOne, true
	default:
		return Player{}, false
	}
}

// Validate проверяет инвариант player_one != player_two и непустое имя.
func (t Team) Validate() error {
	if t.Name == "" || t.PlayerOne.DiscordID == 0 || t.PlayerTwo.DiscordID == 0 {
		return ErrMissingFields
	}
	if t.PlayerOne.DiscordID == t.PlayerTwo.DiscordID {
		return ErrMissingFields.WithMessage("player_one and player_two must be distinct")
	}
	return nil
}

// Round — один такт формирования матчей. round_id строго возрастает,
// end_time остаётся нулевым, пока раунд идёт.
type Round struct {
	ID           int64
	StartTime    time.Time
	EndTime      *time.Time
	Participants int
}

// Key — стабильный ключ реестра игр на время жизни раунда.
func (r Round) Key() int64 {
	return r.ID
}

// Result — очки и дельта одной стороны матча. Delta считается при
// завершении матча (см. InGameContext.AddResult).
type Result struct {
	ID     int64
	Team   Team
	Points float64
	Delta  float64
}

// Add суммирует очки и дельту двух результатов одной команды.
func (r Result) Add(other Result) Result {
	return Result{
		ID:     r.ID,
		Team:   r.Team,
		Points: r.Points + other.Points,
		Delta:  r.Delta + other.Delta,
	}
}

// Match — пара результатов одного раунда. OddsRatio — справочное поле
// (отношение ожидаемых очков team_one/team_two, выставляется при
// формировании матча), не используется в подсчёте дельты.
type Match struct {
	ID        int64
	Round     Round
	TeamOne   Result
	TeamTwo   Result
	OddsRatio float64
}

// Validate проверяет, что результаты ссылаются на разные команды.
func (m Match) Validate() error {
	if m.TeamOne.Team.ID == 0 || m.TeamTwo.Team.ID == 0 {
		return ErrMissingFields
	}
	if m.TeamOne.Team.ID == m.TeamTwo.Team.ID {
		return ErrMissingFields.WithMessage("match team_one and team_two must be distinct")
	}
	return nil
}

// teams возвращает обе команды матча в порядке team_one, team_two.
func (m Match) teams() [2]Team {
	return [2]Team{m.TeamOne.Team, m.TeamTwo.Team}
}

// TeamOfPlayer returns whichever of the match's two teams holds discordID.
func (m Match) TeamOfPlayer(discordID int64) (Team, bool) {
	for _, t := range m.teams() {
		if t.HasPlayer(discordID) {
			return t, true
		}
	}
	return Team{}, false
}

// pairKey — неупорядоченный ключ пары команд, для сравнения с историей.
type pairKey struct {
	a, b int64
}

func newPairKey(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

func (m Match) pairKey() pairKey {
	return newPairKey(m.TeamOne.Team.ID, m.TeamTwo.Team.ID)
}

// LookupKeyKind различает варианты полиморфного ключа поиска.
type LookupKeyKind int

const (
	LookupKeyNone LookupKeyKind = iota
	LookupKeyPlayer
	LookupKeyTeam
	LookupKeyMatch
	LookupKeyRoundID
)

// LookupKey — тегированный вариант ключа поиска: игрок, команда, матч или
// целочисленный round_id. Контейнеры диспетчеризуют по Kind, не по
// динамическим проверкам типов.
type LookupKey struct {
	Kind    LookupKeyKind
	Player  int64
	Team    int64
	MatchID int64
	RoundID int64
}

func ByPlayer(discordID int64) LookupKey { return LookupKey{Kind: LookupKeyPlayer, Player: discordID} }
func ByTeam(teamID int64) LookupKey      { return LookupKey{Kind: LookupKeyTeam, Team: teamID} }
func ByMatch(matchID int64) LookupKey    { return LookupKey{Kind: LookupKeyMatch, MatchID: matchID} }
func ByRoundID(roundID int64) LookupKey  { return LookupKey{Kind: LookupKeyRoundID, RoundID: roundID} }
