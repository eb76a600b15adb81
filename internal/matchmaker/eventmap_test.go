package matchmaker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	kind      EventKind
	tag       int64
	ready     bool
	err       error
	requeue   bool
	callOrder *[]int64
}

func (h *fakeHandler) Kind() EventKind          { return h.kind }
func (h *fakeHandler) Tag() int64               { return h.tag }
func (h *fakeHandler) IsReady(_ EventContext) bool { return h.ready }
func (h *fakeHandler) Requeue() bool            { return h.requeue }
func (h *fakeHandler) Handle(_ EventContext) error {
	if h.callOrder != nil {
		*h.callOrder = append(*h.callOrder, h.tag)
	}
	return h.err
}

func TestEventMap_RegisterIsLIFO(t *testing.T) {
	m := NewEventMap()
	var order []int64
	h1 := &fakeHandler{kind: EventQueue, tag: 1, ready: true, requeue: true, callOrder: &order}
	h2 := &fakeHandler{kind: EventQueue, tag: 2, ready: true, requeue: true, callOrder: &order}
	m.Register(h1)
	m.Register(h2)

	err := m.Handle(Event{Kind: EventQueue})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, order)
}

func TestEventMap_PollFiltersNotReady(t *testing.T) {
	m := NewEventMap()
	ready := &fakeHandler{kind: EventQueue, tag: 1, ready: true, requeue: true}
	notReady := &fakeHandler{kind: EventQueue, tag: 2, ready: false, requeue: true}
	m.Register(ready)
	m.Register(notReady)

	polled := m.Poll(Event{Kind: EventQueue})
	require.Len(t, polled, 1)
	assert.Equal(t, int64(1), polled[0].Tag())
}

func TestEventMap_DeregistersOnRequeueFalse(t *testing.T) {
	m := NewEventMap()
	h := &fakeHandler{kind: EventResult, tag: 1, ready: true, requeue: false}
	m.Register(h)

	require.NoError(t, m.Handle(Event{Kind: EventResult}))
	assert.Empty(t, m.Poll(Event{Kind: EventResult}))
}

func TestEventMap_DeregistersOnError(t *testing.T) {
	m := NewEventMap()
	h := &fakeHandler{kind: EventResult, tag: 1, ready: true, requeue: true, err: errors.New("boom")}
	m.Register(h)

	err := m.Handle(Event{Kind: EventResult})
	require.Error(t, err)
	assert.Empty(t, m.Poll(Event{Kind: EventResult}))
}

func TestEventMap_ErrorDoesNotStopLaterHandlers(t *testing.T) {
	m := NewEventMap()
	var order []int64
	failing := &fakeHandler{kind: EventQueue, tag: 1, ready: true, requeue: true, err: errors.New("boom"), callOrder: &order}
	ok := &fakeHandler{kind: EventQueue, tag: 2, ready: true, requeue: true, callOrder: &order}
	m.Register(ok)
	m.Register(failing)

	err := m.Handle(Event{Kind: EventQueue})
	require.Error(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, order)
}

func TestEventMap_HandlerNeverVisitedTwice(t *testing.T) {
	m := NewEventMap()
	var order []int64
	h := &fakeHandler{kind: EventQueue, tag: 1, ready: true, requeue: true, callOrder: &order}
	m.Register(h)
	require.NoError(t, m.Handle(Event{Kind: EventQueue}))
	assert.Equal(t, []int64{1}, order)
}
