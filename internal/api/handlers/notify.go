package handlers

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/duoqueue/matchmaker/internal/notify"
	"github.com/duoqueue/matchmaker/pkg/errors"
	"github.com/duoqueue/matchmaker/pkg/logger"
	"github.com/go-chi/chi/v5"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var notifyUpgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		allowedOrigins := os.Getenv("WEBSOCKET_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			return true
		}

		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		for _, allowed := range strings.Split(allowedOrigins, ",") {
			if strings.TrimSpace(allowed) == origin {
				return true
			}
		}
		return false
	},
}

// NotifyHandler upgrades a round spectator connection to WebSocket and
// subscribes it to that round's queue/match/result events.
type NotifyHandler struct {
	hub *notify.Hub
	log *logger.Logger
}

// NewNotifyHandler wires the hub.
func NewNotifyHandler(hub *notify.Hub, log *logger.Logger) *NotifyHandler {
	return &NotifyHandler{hub: hub, log: log}
}

// HandleRound subscribes a client to one round's event stream.
// WS /api/v1/ws/{round_key}
func (h *NotifyHandler) HandleRound(w http.ResponseWriter, r *http.Request) {
	roundKey, err := strconv.ParseInt(chi.URLParam(r, "round_key"), 10, 64)
	if err != nil {
		writeError(w, errors.ErrInvalidInput.WithMessage("invalid round key"))
		return
	}

	var playerID int64
	if raw := r.URL.Query().Get("player_id"); raw != "" {
		playerID, _ = strconv.ParseInt(raw, 10, 64)
	}

	conn, err := notifyUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.LogError("failed to upgrade connection", err, zap.Int64("round_key", roundKey))
		return
	}

	h.log.Info("websocket connection established", zap.Int64("round_key", roundKey), zap.Int64("player_id", playerID))

	client := notify.NewClient(h.hub, conn, roundKey, playerID, h.log)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}

// GetStats reports connection counts per round.
// GET /api/v1/ws/stats
func (h *NotifyHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.hub.Stats())
}
