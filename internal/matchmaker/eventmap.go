package matchmaker

// EventMap routes events to registered handlers, keyed by kind. Handlers
// within a kind are visited newest-first; deregistration is collected
// during a dispatch and applied only after the walk completes, so no
// handler is mutated mid-iteration and none is visited twice.
type EventMap struct {
	buckets map[EventKind][]EventHandler
}

// NewEventMap builds an empty bucket for every known event kind.
func NewEventMap() *EventMap {
	m := &EventMap{buckets: make(map[EventKind][]EventHandler)}
	for _, k := range []EventKind{EventQueue, EventDequeue, EventResult, EventRoundStart, EventRoundEnd} {
		m.buckets[k] = nil
	}
	return m
}

// Register prepends the handler into the bucket for its kind (LIFO).
func (m *EventMap) Register(h EventHandler) {
	k := h.Kind()
	m.buckets[k] = append([]EventHandler{h}, m.buckets[k]...)
}

// Deregister removes the handler matching h.Kind()/h.Tag() from its bucket.
func (m *EventMap) Deregister(h EventHandler) {
	k := h.Kind()
	bucket := m.buckets[k]
	for i, cand := range bucket {
		if cand.Tag() == h.Tag() {
			m.buckets[k] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}

// Poll returns the handlers in event.Kind's bucket whose IsReady holds,
// in the bucket's current (LIFO) order.
func (m *EventMap) Poll(event Event) []EventHandler {
	var ready []EventHandler
	for _, h := range m.buckets[event.Kind] {
		if h.IsReady(event.Ctx) {
			ready = append(ready, h)
		}
	}
	return ready
}

// Handle invokes every ready handler for event, in LIFO order. Errors
// from one handler never prevent later handlers from running in the same
// dispatch. A handler is deregistered after the walk completes if it
// returned an error on this invocation, or if Requeue() is false.
// Returns the last error observed, or nil.
func (m *EventMap) Handle(event Event) error {
	ready := m.Poll(event)
	var lastErr error
	var toDeregister []EventHandler
	for _, h := range ready {
		err := h.Handle(event.Ctx)
		justErred := err != nil
		if justErred {
			lastErr = newHandlingError(h.Kind(), h.Tag(), err)
		}
		if !h.Requeue() || justErred {
			toDeregister = append(toDeregister, h)
		}
	}
	for _, h := range toDeregister {
		m.Deregister(h)
	}
	return lastErr
}

// Reset drops every registered handler from every bucket.
func (m *EventMap) Reset() {
	for k := range m.buckets {
		m.buckets[k] = nil
	}
}
