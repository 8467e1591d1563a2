package services

// Events pushed to the kitchen display and the kitchen queue.
const (
	EventDeskCreate    = "desk.create"
	EventDeskDelete    = "desk.delete"
	EventSessionOpen   = "session.open"
	EventSessionClose  = "session.close"
	EventSessionMove   = "session.move"
	EventRequestCreate = "request.create"
	EventRequestUpdate = "request.update"
	EventRequestDelete = "request.delete"
	EventMenuUpdate    = "menu.update"
	EventOccupancy     = "occupancy.snapshot"
)

// Notifier receives engine events after the change is committed and the desk
// locks are released. Implementations should return promptly: the KDS hub only
// queues, the kitchen queue bounds each publish.
type Notifier interface {
	Notify(event string, data interface{})
}

// Notifiers fans an event out to every non-nil notifier.
type Notifiers []Notifier

func (ns Notifiers) Notify(event string, data interface{}) {
	for _, n := range ns {
		if n != nil {
			n.Notify(event, data)
		}
	}
}

type NopNotifier struct{}

func (NopNotifier) Notify(string, interface{}) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return NopNotifier{}
	}
	return n
}
