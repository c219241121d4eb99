package tracex

import (
	"encoding/json"
	"testing"

	"github.com/netemlab/minisr/internal/model"
)

func TestTracerCollectsEventsInOrder(t *testing.T) {
	tracer := NewTracer()
	data := model.NewDataPacket(0, [model.PayloadSize]byte{})
	ack := model.NewACKPacket(0)

	tracer.OnOutgoingPacket(1.0, model.EntityA, data, false)
	tracer.OnAlarmSet(1.0, model.EntityA, 16.0)
	tracer.OnIncomingPacket(6.5, model.EntityB, data)
	tracer.OnOutgoingPacket(6.5, model.EntityB, ack, false)
	tracer.OnLostPacket(6.5, model.EntityB, ack)
	tracer.OnDelivered(6.5, model.EntityB, data.Payload)
	tracer.OnAlarmFired(17.0, model.EntityA)
	tracer.OnOutgoingPacket(17.0, model.EntityA, data, true)

	trace := tracer.Trace()
	if len(trace) != 8 {
		t.Fatal("unexpected number of events", len(trace))
	}

	wantTypes := []model.TraceEventType{
		model.TraceEventPacketOut,
		model.TraceEventAlarmSet,
		model.TraceEventPacketIn,
		model.TraceEventPacketOut,
		model.TraceEventPacketLost,
		model.TraceEventDelivered,
		model.TraceEventAlarmFired,
		model.TraceEventPacketOut,
	}
	for i, ev := range trace {
		if ev.Type() != wantTypes[i] {
			t.Fatalf("event %d: got type %s, want %s", i, ev.Type(), wantTypes[i])
		}
	}

	if trace[7].Packet().Unwrap().Retransmission != true {
		t.Fatal("the resend must be marked as a retransmission")
	}
	if !trace[5].Packet().IsNone() {
		t.Fatal("delivery events carry no packet metadata")
	}
	if !trace[6].Packet().IsNone() {
		t.Fatal("alarm events carry no packet metadata")
	}
}

func TestTracerEventsSerializeToJSON(t *testing.T) {
	tracer := NewTracer()
	tracer.OnOutgoingPacket(0.0, model.EntityA, model.NewDataPacket(3, [model.PayloadSize]byte{}), false)
	tracer.OnDelivered(9.9, model.EntityB, [model.PayloadSize]byte{})

	for _, ev := range tracer.Trace() {
		data, err := json.Marshal(ev)
		if err != nil {
			t.Fatal(err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatal(err)
		}
		if _, ok := decoded["operation"]; !ok {
			t.Fatal("missing operation field in", string(data))
		}
	}
}

func TestTracerRunID(t *testing.T) {
	first, second := NewTracer(), NewTracer()
	if first.RunID() == second.RunID() {
		t.Fatal("distinct tracers must have distinct run IDs")
	}
}
