package notify

// NoopBroadcaster discards every message; it satisfies Broadcaster for
// tests and for deployments that run without the WebSocket surface.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Broadcast(int64, string, interface{}) {}
