package notify

// Broadcaster is the narrow surface EventBridge (and tests) need from a
// Hub.
type Broadcaster interface {
	Broadcast(roundKey int64, messageType string, payload interface{})
}
