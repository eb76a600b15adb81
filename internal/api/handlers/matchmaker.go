package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/duoqueue/matchmaker/internal/infrastructure/cache"
	"github.com/duoqueue/matchmaker/internal/matchmaker"
	"github.com/duoqueue/matchmaker/internal/repository"
	"github.com/duoqueue/matchmaker/pkg/errors"
	"github.com/duoqueue/matchmaker/pkg/logger"
	"github.com/duoqueue/matchmaker/pkg/pagination"
	"github.com/duoqueue/matchmaker/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// facadeLockKey is the single critical section every mutating façade call
// serializes on across API replicas: the façade itself is only safe for
// concurrent use within one process.
const facadeLockKey = "matchmaker:facade"
const facadeLockTTL = 5 * time.Second

// MatchMakerHandler exposes the matchmaker façade over HTTP: queue/dequeue,
// result reporting, read-only queue/game state, and the admin config
// surface.
type MatchMakerHandler struct {
	mm          *matchmaker.MatchMaker
	repo        repository.Repositories
	lock        *cache.DistributedLock
	leaderboard *cache.LeaderboardCache
	log         *logger.Logger
}

// NewMatchMakerHandler wires the façade, the repository port (needed to
// resolve a team_id/discord_id path parameter into a full Team/Player
// before calling the façade), the cross-replica distributed lock guarding
// every mutating call, and the cached team leaderboard.
func NewMatchMakerHandler(mm *matchmaker.MatchMaker, repo repository.Repositories, lock *cache.DistributedLock, leaderboard *cache.LeaderboardCache, log *logger.Logger) *MatchMakerHandler {
	return &MatchMakerHandler{mm: mm, repo: repo, lock: lock, leaderboard: leaderboard, log: log}
}

// withFacadeLock runs fn under the distributed lock, logging (but not
// failing the request on) a lock acquisition error — a single-process
// deployment still has the façade's own mutex as its safety net.
func (h *MatchMakerHandler) withFacadeLock(r *http.Request, fn func() error) error {
	var inner error
	err := h.lock.WithLock(r.Context(), facadeLockKey, facadeLockTTL, func(ctx context.Context) error {
		inner = fn()
		return nil
	})
	if err != nil {
		h.log.LogError("failed to acquire facade lock", err)
		return fn()
	}
	return inner
}

func parseInt64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.ErrInvalidInput.WithMessage(name + " must be an integer")
	}
	return v, nil
}

// Queue enqueues a team.
// POST /api/v1/teams/{id}/queue
func (h *MatchMakerHandler) Queue(w http.ResponseWriter, r *http.Request) {
	teamID, err := parseInt64Param(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	team, err := h.repo.Teams.Load(r.Context(), teamID)
	if err != nil {
		writeError(w, err)
		return
	}
	err = h.withFacadeLock(r, func() error { return h.mm.QueueTeam(team) })
	if err != nil {
		writeError(w, toAppError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"queued": true, "team_id": team.ID})
}

// Dequeue removes a team from the queue.
// POST /api/v1/teams/{id}/dequeue
func (h *MatchMakerHandler) Dequeue(w http.ResponseWriter, r *http.Request) {
	teamID, err := parseInt64Param(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	team, err := h.repo.Teams.Load(r.Context(), teamID)
	if err != nil {
		writeError(w, err)
		return
	}
	err = h.withFacadeLock(r, func() error { return h.mm.DequeueTeam(team) })
	if err != nil {
		writeError(w, toAppError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"queued": false, "team_id": team.ID})
}

type postResultRequest struct {
	TeamOnePoints float64 `json:"team_one_points"`
	TeamTwoPoints float64 `json:"team_two_points"`
}

// PostResult reports the final score of an ongoing match.
// POST /api/v1/matches/{id}/result
func (h *MatchMakerHandler) PostResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := parseInt64Param(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req postResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.ErrInvalidInput.WithMessage("invalid request body"))
		return
	}
	if req.TeamOnePoints < 0 || req.TeamTwoPoints < 0 {
		writeError(w, errors.ErrValidation.WithMessage("points must not be negative"))
		return
	}

	match, ok := h.mm.GetMatch(matchID)
	if !ok {
		writeError(w, errors.ErrNotFound.WithMessage("match not found"))
		return
	}
	match.TeamOne.Points = req.TeamOnePoints
	match.TeamTwo.Points = req.TeamTwoPoints

	err = h.withFacadeLock(r, func() error { return h.mm.InsertResult(match) })
	if err != nil {
		writeError(w, toAppError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"match_id": matchID, "accepted": true})
}

// GetQueue lists queued teams, in queue order.
// GET /api/v1/queue
func (h *MatchMakerHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mm.GetQueue())
}

// GetGames lists ongoing rounds and their matches.
// GET /api/v1/games
func (h *MatchMakerHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	contexts := h.mm.GetGames()
	out := make([]map[string]any, 0, len(contexts))
	for _, c := range contexts {
		out = append(out, map[string]any{
			"round_key": c.Key(),
			"round":     c.Round(),
			"matches":   c.Matches(),
			"complete":  c.IsComplete(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPlayerTeam resolves the team a player currently belongs to.
// GET /api/v1/players/{id}/team
func (h *MatchMakerHandler) GetPlayerTeam(w http.ResponseWriter, r *http.Request) {
	discordID, err := parseInt64Param(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	team, ok := h.mm.GetTeamOfPlayer(discordID)
	if !ok {
		writeError(w, errors.ErrNotFound.WithMessage("player is not queued or matched"))
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// GetPlayerMatch resolves the ongoing match a player currently belongs to.
// GET /api/v1/players/{id}/match
func (h *MatchMakerHandler) GetPlayerMatch(w http.ResponseWriter, r *http.Request) {
	discordID, err := parseInt64Param(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	match, ok := h.mm.GetMatchOfPlayer(discordID)
	if !ok {
		writeError(w, errors.ErrNotFound.WithMessage("player has no ongoing match"))
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// AdminReset clears the queue, games registry, and every registered
// handler.
// POST /api/v1/admin/reset
func (h *MatchMakerHandler) AdminReset(w http.ResponseWriter, r *http.Request) {
	_ = h.withFacadeLock(r, func() error { h.mm.Reset(); return nil })
	writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

type thresholdRequest struct {
	Threshold int `json:"threshold"`
}

// AdminSetThreshold mutates the queue size that triggers round formation.
// PUT /api/v1/admin/config/threshold
func (h *MatchMakerHandler) AdminSetThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.ErrInvalidInput.WithMessage("invalid request body"))
		return
	}
	if err := validator.ValidateRange("threshold", req.Threshold, 2, 0); err != nil {
		writeError(w, errors.ErrValidation.WithMessage(err.Error()))
		return
	}
	_ = h.withFacadeLock(r, func() error { h.mm.SetThreshold(req.Threshold); return nil })
	writeJSON(w, http.StatusOK, map[string]any{"threshold": req.Threshold})
}

type principalRequest struct {
	Principal string `json:"principal"`
}

var knownPrincipals = []string{
	string(matchmaker.PrincipalMaxSum),
	string(matchmaker.PrincipalMinVariance),
	string(matchmaker.PrincipalMaxMin),
	string(matchmaker.PrincipalMinMax),
}

// AdminSetPrincipal mutates the configured match-selection policy.
// PUT /api/v1/admin/config/principal
func (h *MatchMakerHandler) AdminSetPrincipal(w http.ResponseWriter, r *http.Request) {
	var req principalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.ErrInvalidInput.WithMessage("invalid request body"))
		return
	}
	if err := validator.ValidateEnum("principal", req.Principal, knownPrincipals); err != nil {
		writeError(w, errors.ErrValidation.WithMessage(err.Error()))
		return
	}
	_ = h.withFacadeLock(r, func() error { h.mm.SetPrincipal(matchmaker.PrincipalName(req.Principal)); return nil })
	writeJSON(w, http.StatusOK, map[string]any{"principal": req.Principal})
}

// GetLeaderboard lists teams ranked by Elo, highest first. It reads from
// the Redis-cached sorted set when available, falling back to a direct
// Postgres query (already ORDER BY elo DESC) on a cache miss or when no
// cache is configured.
// GET /api/v1/leaderboard
func (h *MatchMakerHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := int64(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			limit = v
		}
	}

	if h.leaderboard != nil {
		entries, err := h.leaderboard.GetTop(r.Context(), limit)
		if err == nil && len(entries) > 0 {
			writeJSON(w, http.StatusOK, entries)
			return
		}
	}

	teams, err := h.repo.Teams.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if int64(len(teams)) > limit {
		teams = teams[:limit]
	}
	writeJSON(w, http.StatusOK, teams)
}

// GetHistory paginates stored matches (including those of a round that
// is still running), newest first, using a
// composite cursor keyed on match_id (match IDs are int64, not the
// uuid.UUID pagination.NewIDCursor expects).
// GET /api/v1/matches/history
func (h *MatchMakerHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	pageReq := pagination.PageRequest{}
	if raw := r.URL.Query().Get("first"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			pageReq.First = &v
		}
	}
	if raw := r.URL.Query().Get("after"); raw != "" {
		pageReq.After = &raw
	}
	if err := pageReq.Validate(); err != nil {
		writeError(w, errors.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	var afterMatchID int64
	cursor, err := pageReq.GetCursor()
	if err != nil {
		writeError(w, errors.ErrInvalidInput.WithMessage("invalid cursor"))
		return
	}
	if cursor != nil {
		if raw, ok := cursor.Fields["match_id"].(float64); ok {
			afterMatchID = int64(raw)
		}
	}

	limit := pageReq.GetLimit()
	matches, err := h.repo.Matches.ListHistory(r.Context(), limit+1, afterMatchID)
	if err != nil {
		writeError(w, err)
		return
	}
	hasMore := len(matches) > limit
	if hasMore {
		matches = matches[:limit]
	}

	conn, err := pagination.NewConnection(matches, func(m matchmaker.Match) (*pagination.Cursor, error) {
		return pagination.NewCompositeCursor(map[string]any{"match_id": m.ID}), nil
	}, &pageReq, hasMore)
	if err != nil {
		writeError(w, errors.ErrInternal.WithError(err))
		return
	}
	writeJSON(w, http.StatusOK, conn)
}

// toAppError maps the matchmaker package's sentinel errors onto the
// shared pkg/errors taxonomy so writeError reports the right HTTP status.
// Every sentinel the core raises is already a *pkg/errors.AppError (or
// embeds one), so the only work left is picking it out of wrapper types
// that carry extra fields (AlreadyQueuedError, HandlingError).
func toAppError(err error) error {
	if err == nil {
		return nil
	}
	if aq, ok := err.(*matchmaker.AlreadyQueuedError); ok {
		return aq.AppError
	}
	if he, ok := err.(*matchmaker.HandlingError); ok {
		return he.AppError
	}
	if ae, ok := err.(*errors.AppError); ok {
		return ae
	}
	return errors.ErrInternal.WithError(err)
}
