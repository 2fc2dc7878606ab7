package services

// Change event types published after successful mutations.
const (
	EventBusCreated   = "bus.created"
	EventBusUpdated   = "bus.updated"
	EventBusDeleted   = "bus.deleted"
	EventRouteCreated = "route.created"
	EventRouteUpdated = "route.updated"
	EventRouteDeleted = "route.deleted"
)

// ChangeEvent tells subscribers that a bus or route changed.
type ChangeEvent struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}

// Notifier receives change events. Publish must not block.
type Notifier interface {
	Publish(event ChangeEvent)
}

type noopNotifier struct{}

func (noopNotifier) Publish(ChangeEvent) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
