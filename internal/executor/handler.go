package executor

import (
	"context"

	"github.com/duoqueue/matchmaker/internal/matchmaker"
)

// HandlerFunc does the actual work for an AsyncHandler; it runs on a pool
// worker, never on the façade's goroutine.
type HandlerFunc func(ctx context.Context, ectx matchmaker.EventContext) error

// AsyncHandler adapts a HandlerFunc into a matchmaker.EventHandler that
// never blocks the caller: Handle submits the work to the pool and
// returns immediately. Errors surface through the pool's retry/metrics
// path, not through the event kernel, so a broken notification channel
// can never turn into a rejected QueueTeam/InsertResult call.
type AsyncHandler struct {
	kind  matchmaker.EventKind
	tag   int64
	label string
	pool  *Pool
	fn    HandlerFunc
}

// NewAsyncHandler registers fn to run asynchronously whenever kind fires.
// tag identifies the handler for deregistration purposes; label names the
// job in logs and metrics.
func NewAsyncHandler(kind matchmaker.EventKind, tag int64, label string, pool *Pool, fn HandlerFunc) *AsyncHandler {
	return &AsyncHandler{kind: kind, tag: tag, label: label, pool: pool, fn: fn}
}

func (h *AsyncHandler) Kind() matchmaker.EventKind { return h.kind }
func (h *AsyncHandler) Tag() int64                 { return h.tag }
func (h *AsyncHandler) Requeue() bool               { return true }

func (h *AsyncHandler) IsReady(matchmaker.EventContext) bool { return true }

func (h *AsyncHandler) Handle(ectx matchmaker.EventContext) error {
	h.pool.Submit(Job{
		Label: h.label,
		Run: func(ctx context.Context) error {
			return h.fn(ctx, ectx)
		},
	})
	return nil
}
