package model

import (
	"encoding/json"
	"fmt"

	"github.com/netemlab/minisr/internal/optional"
)

// Tracer collects the observable events of a simulation run: packets
// crossing the channel, the channel's interference with them, and in-order
// deliveries to the application. A Tracer can optionally be attached to a
// simulation and is propagated to every layer that registers events.
type Tracer interface {
	// OnOutgoingPacket is called when an entity hands a packet to the
	// channel; retransmission tells a resend apart from a first send.
	OnOutgoingPacket(at float64, entity Entity, packet *Packet, retransmission bool)

	// OnIncomingPacket is called when a packet reaches an entity.
	OnIncomingPacket(at float64, entity Entity, packet *Packet)

	// OnLostPacket is called when the channel drops a packet in transit.
	OnLostPacket(at float64, entity Entity, packet *Packet)

	// OnCorruptedPacket is called when the channel tampers with a packet.
	OnCorruptedPacket(at float64, entity Entity, packet *Packet)

	// OnDelivered is called for every payload handed to the application.
	OnDelivered(at float64, entity Entity, payload [PayloadSize]byte)

	// OnAlarmSet is called when an entity arms its retransmission alarm
	// to fire after the given interval.
	OnAlarmSet(at float64, entity Entity, interval float64)

	// OnAlarmFired is called when an armed alarm expires.
	OnAlarmFired(at float64, entity Entity)

	// Trace returns the collected [TraceEvent]s.
	Trace() []TraceEvent
}

const (
	TraceEventPacketOut = iota
	TraceEventPacketIn
	TraceEventPacketLost
	TraceEventPacketCorrupted
	TraceEventDelivered
	TraceEventAlarmSet
	TraceEventAlarmFired
)

// TraceEventType indicates which event we logged.
type TraceEventType int

// Ensure that it implements the Stringer interface.
var _ fmt.Stringer = TraceEventType(0)

// String implements fmt.Stringer
func (e TraceEventType) String() string {
	switch e {
	case TraceEventPacketOut:
		return "packet_out"
	case TraceEventPacketIn:
		return "packet_in"
	case TraceEventPacketLost:
		return "packet_lost"
	case TraceEventPacketCorrupted:
		return "packet_corrupted"
	case TraceEventDelivered:
		return "delivered"
	case TraceEventAlarmSet:
		return "alarm_set"
	case TraceEventAlarmFired:
		return "alarm_fired"
	default:
		return "unknown"
	}
}

// TraceEvent must implement the event annotation methods, plus json serialization.
type TraceEvent interface {
	Type() TraceEventType
	AtTick() float64
	Packet() optional.Value[LoggedPacket]
	json.Marshaler
}

// LoggedPacket tracks metadata about a packet useful to build traces.
type LoggedPacket struct {
	Direction Direction

	// the only fields of the packet we want to log.
	Seq int
	Ack int

	// Retransmission marks outgoing packets that are resends.
	Retransmission bool
}

// MarshalJSON implements json.Marshaler.
func (lp LoggedPacket) MarshalJSON() ([]byte, error) {
	j := struct {
		Direction      string `json:"operation"`
		Seq            int    `json:"seq"`
		Ack            int    `json:"ack"`
		Retransmission bool   `json:"retransmission"`
	}{
		Direction:      lp.Direction.String(),
		Seq:            lp.Seq,
		Ack:            lp.Ack,
		Retransmission: lp.Retransmission,
	}
	return json.Marshal(j)
}

// newLoggedPacket keeps the fields of a packet we want in the trace.
func NewLoggedPacket(packet *Packet, direction Direction, retransmission bool) LoggedPacket {
	return LoggedPacket{
		Direction:      direction,
		Seq:            packet.Seq,
		Ack:            packet.Ack,
		Retransmission: retransmission,
	}
}

// DummyTracer is a no-op [Tracer].
type DummyTracer struct{}

// OnOutgoingPacket implements [Tracer].
func (dt DummyTracer) OnOutgoingPacket(at float64, entity Entity, packet *Packet, retransmission bool) {
}

// OnIncomingPacket implements [Tracer].
func (dt DummyTracer) OnIncomingPacket(at float64, entity Entity, packet *Packet) {}

// OnLostPacket implements [Tracer].
func (dt DummyTracer) OnLostPacket(at float64, entity Entity, packet *Packet) {}

// OnCorruptedPacket implements [Tracer].
func (dt DummyTracer) OnCorruptedPacket(at float64, entity Entity, packet *Packet) {}

// OnDelivered implements [Tracer].
func (dt DummyTracer) OnDelivered(at float64, entity Entity, payload [PayloadSize]byte) {}

// OnAlarmSet implements [Tracer].
func (dt DummyTracer) OnAlarmSet(at float64, entity Entity, interval float64) {}

// OnAlarmFired implements [Tracer].
func (dt DummyTracer) OnAlarmFired(at float64, entity Entity) {}

// Trace implements [Tracer].
func (dt DummyTracer) Trace() []TraceEvent { return nil }

var _ Tracer = DummyTracer{}
