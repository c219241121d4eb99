package netsim

import "github.com/netemlab/minisr/internal/model"

// eventKind tells us which handler an event is destined for.
type eventKind int

const (
	// eventFromApplication feeds the next generated message to the sender.
	eventFromApplication = eventKind(iota)

	// eventFromNetwork delivers an in-transit packet to an entity.
	eventFromNetwork

	// eventAlarm fires an entity's retransmission alarm.
	eventAlarm
)

// String implements fmt.Stringer.
func (k eventKind) String() string {
	switch k {
	case eventFromApplication:
		return "from_application"
	case eventFromNetwork:
		return "from_network"
	case eventAlarm:
		return "alarm"
	default:
		return "unknown"
	}
}

// event is one pending occurrence in the simulation.
type event struct {
	// at is the virtual time when the event occurs.
	at float64

	// entity is the entity whose handler consumes the event.
	entity model.Entity

	// kind selects the handler.
	kind eventKind

	// packet is the in-transit packet for eventFromNetwork events.
	packet *model.Packet

	// order breaks ties between events scheduled for the same instant,
	// preserving scheduling order.
	order int

	// index is maintained by the heap implementation.
	index int
}

// eventQueue is a min-heap of pending events ordered by virtual time.
// It implements [container/heap.Interface].
type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].order < q[j].order
}

func (q eventQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *eventQueue) Push(x any) {
	ev := x.(*event)
	ev.index = len(*q)
	*q = append(*q, ev)
}

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	ev.index = -1
	*q = old[:n-1]
	return ev
}
