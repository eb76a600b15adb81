package matchmaker

import (
	"fmt"
	"net/http"

	apperrors "github.com/duoqueue/matchmaker/pkg/errors"
)

// Таксономия ошибок ядра матчмейкера.
var (
	ErrMissingFields   = apperrors.New(http.StatusBadRequest, "missing required fields", nil)
	ErrNotQueued       = apperrors.New(http.StatusNotFound, "team not queued", nil)
	ErrGameAlreadyExist = apperrors.New(http.StatusConflict, "round already has a game", nil)
	ErrGameEnded       = apperrors.New(http.StatusConflict, "round has already ended", nil)
	ErrMatchNotFound   = apperrors.New(http.StatusNotFound, "match not part of any ongoing round", nil)
	ErrDuplicateResult = apperrors.New(http.StatusConflict, "result already submitted for this match", nil)
	ErrMissingContext  = apperrors.New(http.StatusInternalServerError, "no in-game context accepted the result", nil)
	ErrHandlingError   = apperrors.New(http.StatusInternalServerError, "event handler failed", nil)
)

// AlreadyQueuedError переносит игрока и его текущую команду — нужны вызывающему для сообщения.
type AlreadyQueuedError struct {
	*apperrors.AppError
	Player  int64
	TeamID  int64
	TeamName string
}

func newAlreadyQueued(player int64, team Team) *AlreadyQueuedError {
	return &AlreadyQueuedError{
		AppError: apperrors.New(http.StatusConflict, fmt.Sprintf("player %d already queued on team %q", player, team.Name), nil),
		Player:   player,
		TeamID:   team.ID,
		TeamName: team.Name,
	}
}

// HandlingError оборачивает ошибку конкретного обработчика с его тегом.
type HandlingError struct {
	*apperrors.AppError
	HandlerKind EventKind
	HandlerTag  int64
}

func newHandlingError(kind EventKind, tag int64, cause error) *HandlingError {
	return &HandlingError{
		AppError:    ErrHandlingError.WithError(cause),
		HandlerKind: kind,
		HandlerTag:  tag,
	}
}
