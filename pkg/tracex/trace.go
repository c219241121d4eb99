// Package tracex implements a run tracer that can be passed to the
// simulation to observe what happens to every packet and delivery, on
// virtual time, and serialize it to JSON afterwards.
package tracex

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/netemlab/minisr/internal/model"
	"github.com/netemlab/minisr/internal/optional"
)

// Tracer implements [model.Tracer]. The zero value is invalid; use
// [NewTracer].
type Tracer struct {
	// events is the sequence of collected events.
	events []model.TraceEvent

	// mu guards access to events.
	mu sync.Mutex

	// runID identifies one simulation run.
	runID uuid.UUID
}

// NewTracer returns a Tracer with a fresh run ID.
func NewTracer() *Tracer {
	return &Tracer{
		runID: uuid.New(),
	}
}

// RunID returns the identifier for this run.
func (t *Tracer) RunID() string {
	return t.runID.String()
}

// OnOutgoingPacket implements [model.Tracer].
func (t *Tracer) OnOutgoingPacket(at float64, entity model.Entity, packet *model.Packet, retransmission bool) {
	t.append(&event{
		eventType: model.TraceEventPacketOut,
		atTick:    at,
		entity:    entity,
		packet:    optional.Some(model.NewLoggedPacket(packet, model.DirectionOutgoing, retransmission)),
	})
}

// OnIncomingPacket implements [model.Tracer].
func (t *Tracer) OnIncomingPacket(at float64, entity model.Entity, packet *model.Packet) {
	t.append(&event{
		eventType: model.TraceEventPacketIn,
		atTick:    at,
		entity:    entity,
		packet:    optional.Some(model.NewLoggedPacket(packet, model.DirectionIncoming, false)),
	})
}

// OnLostPacket implements [model.Tracer].
func (t *Tracer) OnLostPacket(at float64, entity model.Entity, packet *model.Packet) {
	t.append(&event{
		eventType: model.TraceEventPacketLost,
		atTick:    at,
		entity:    entity,
		packet:    optional.Some(model.NewLoggedPacket(packet, model.DirectionOutgoing, false)),
	})
}

// OnCorruptedPacket implements [model.Tracer].
func (t *Tracer) OnCorruptedPacket(at float64, entity model.Entity, packet *model.Packet) {
	t.append(&event{
		eventType: model.TraceEventPacketCorrupted,
		atTick:    at,
		entity:    entity,
		packet:    optional.Some(model.NewLoggedPacket(packet, model.DirectionOutgoing, false)),
	})
}

// OnDelivered implements [model.Tracer].
func (t *Tracer) OnDelivered(at float64, entity model.Entity, payload [model.PayloadSize]byte) {
	t.append(&event{
		eventType: model.TraceEventDelivered,
		atTick:    at,
		entity:    entity,
		packet:    optional.None[model.LoggedPacket](),
	})
}

// OnAlarmSet implements [model.Tracer].
func (t *Tracer) OnAlarmSet(at float64, entity model.Entity, interval float64) {
	t.append(&event{
		eventType: model.TraceEventAlarmSet,
		atTick:    at,
		entity:    entity,
		packet:    optional.None[model.LoggedPacket](),
	})
}

// OnAlarmFired implements [model.Tracer].
func (t *Tracer) OnAlarmFired(at float64, entity model.Entity) {
	t.append(&event{
		eventType: model.TraceEventAlarmFired,
		atTick:    at,
		entity:    entity,
		packet:    optional.None[model.LoggedPacket](),
	})
}

// Trace implements [model.Tracer].
func (t *Tracer) Trace() []model.TraceEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.TraceEvent{}, t.events...)
}

func (t *Tracer) append(ev *event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, ev)
}

var _ model.Tracer = &Tracer{}

// event implements [model.TraceEvent].
type event struct {
	// eventType is the type of this event.
	eventType model.TraceEventType

	// atTick is the virtual time of this event.
	atTick float64

	// entity is the entity this event belongs to.
	entity model.Entity

	// packet is the optional packet metadata.
	packet optional.Value[model.LoggedPacket]
}

// Type implements [model.TraceEvent].
func (e *event) Type() model.TraceEventType {
	return e.eventType
}

// AtTick implements [model.TraceEvent].
func (e *event) AtTick() float64 {
	return e.atTick
}

// Packet implements [model.TraceEvent].
func (e *event) Packet() optional.Value[model.LoggedPacket] {
	return e.packet
}

// MarshalJSON implements json.Marshaler.
func (e *event) MarshalJSON() ([]byte, error) {
	j := struct {
		Type   string           `json:"operation"`
		AtTick float64          `json:"t"`
		Entity string           `json:"entity"`
		Packet *json.RawMessage `json:"packet,omitempty"`
	}{
		Type:   e.eventType.String(),
		AtTick: e.atTick,
		Entity: e.entity.String(),
	}
	if !e.packet.IsNone() {
		data, err := json.Marshal(e.packet.Unwrap())
		if err != nil {
			return nil, err
		}
		raw := json.RawMessage(data)
		j.Packet = &raw
	}
	return json.Marshal(j)
}
