package selectiverepeat

import (
	"github.com/netemlab/minisr/internal/model"
	"github.com/netemlab/minisr/pkg/config"
)

//
// Receiver window engine (entity B).
//
// The receiver owns the receive-side ring and the next in-order sequence
// number expected by the application. It consumes data arrivals and produces
// ACK packets and in-order application deliveries. This entity never
// originates application data of its own and never arms an alarm: the
// transfer is simplex.
//

// Receiver is the receive-side window engine. The zero value is invalid;
// use [NewReceiver] and call [Receiver.Init] before any other entry point.
type Receiver struct {
	// app receives the payloads reconstructed in order.
	app model.ApplicationSink

	// expected is the next in-order sequence number the application is
	// waiting for; it is also the base of the receive window.
	expected int

	// link is where outbound ACK packets go.
	link model.LinkWriter

	// logger is the logger to use.
	logger model.Logger

	// sequenceSpace is the sequence-number modulus.
	sequenceSpace int

	// slots is the ring, indexed by offset from expected.
	slots []recvSlot

	// stats counts the events this engine has seen.
	stats ReceiverStats

	// windowSize is the number of slots in the ring.
	windowSize int
}

// NewReceiver creates a new receiver engine writing ACKs to link and
// delivering in-order payloads to app.
func NewReceiver(cfg *config.Config, link model.LinkWriter, app model.ApplicationSink) *Receiver {
	r := &Receiver{
		app:           app,
		link:          link,
		logger:        cfg.Logger(),
		sequenceSpace: cfg.SequenceSpace(),
		windowSize:    cfg.WindowSize(),
	}
	r.Init()
	return r
}

// Init resets the engine to its initial state: expecting sequence number
// zero with an empty buffer. The collaborator must call it exactly once
// before any other entry point; it is idempotent if called again.
func (r *Receiver) Init() {
	r.expected = 0
	r.slots = make([]recvSlot, r.windowSize)
}

// OnPacketArrival consumes a data packet from the channel. Corrupted packets
// are dropped without an ACK: the sender's alarm will eventually force a
// retransmission. Every valid packet is ACKed individually, whether or not
// it is new. In-window packets are buffered; when the base slot fills, the
// whole contiguous occupied run is delivered to the application in sequence
// order and the window slides past it.
func (r *Receiver) OnPacketArrival(packet *model.Packet) {
	if packet.Corrupted() {
		r.logger.Info("packet is corrupted, do nothing")
		r.stats.CorruptedDropped++
		return
	}

	r.logger.Infof("packet %d is correctly received, send ACK", packet.Seq)
	r.stats.PacketsReceived++

	// selective repeat acknowledges every correctly received packet
	// individually, even duplicates already delivered: the first ACK for
	// them may have been lost and the sender is still waiting for one
	ack := model.NewACKPacket(packet.Seq)
	ack.Log(r.logger, model.DirectionOutgoing)
	r.link.SendToNetwork(ack)

	if !inWindow(r.expected, packet.Seq, r.windowSize, r.sequenceSpace) {
		r.logger.Debugf("packet %d is outside the receive window, ACKed only", packet.Seq)
		r.stats.DuplicatesIgnored++
		return
	}

	index := seqOffset(r.expected, packet.Seq, r.sequenceSpace)
	if r.slots[index].occupied {
		r.logger.Debugf("packet %d already buffered, ACKed only", packet.Seq)
		r.stats.DuplicatesIgnored++
		return
	}
	r.slots[index] = recvSlot{packet: packet, occupied: true}

	if index != 0 {
		// out of order: buffered until the run from the base reaches it
		r.logger.Debugf("packet %d buffered out of order, expecting %d", packet.Seq, r.expected)
		return
	}

	// deliver the contiguous occupied run starting at the base
	run := 0
	for run < r.windowSize && r.slots[run].occupied {
		r.app.DeliverToApplication(r.slots[run].packet.Payload)
		r.stats.Delivered++
		run++
	}
	r.expected = (r.expected + run) % r.sequenceSpace
	copy(r.slots, r.slots[run:])
	for i := r.windowSize - run; i < r.windowSize; i++ {
		r.slots[i] = recvSlot{}
	}
	r.logger.Debugf("delivered %d packets in order, now expecting %d", run, r.expected)
}

// Stats returns a copy of the counters this engine has accumulated.
func (r *Receiver) Stats() ReceiverStats {
	return r.stats
}

// Expected returns the next in-order sequence number the application is
// waiting for. It only advances past packets actually delivered upward,
// in sequence order, exactly once each.
func (r *Receiver) Expected() int {
	return r.expected
}
