package selectiverepeat

import (
	"github.com/netemlab/minisr/internal/model"
	"github.com/netemlab/minisr/pkg/config"
)

//
// Sender window engine (entity A).
//
// The sender owns the send-side ring, the next sequence number to assign and
// the single retransmission alarm. It consumes application submissions and
// ACK arrivals, and produces outbound data packets and alarm transitions.
//

// Sender is the send-side window engine. The zero value is invalid; use
// [NewSender] and call [Sender.Init] before any other entry point.
type Sender struct {
	// alarm arms and disarms the retransmission alarm.
	alarm model.AlarmController

	// alarmArmed mirrors whether we currently hold an armed alarm.
	alarmArmed bool

	// base is the oldest sequence number not yet retired from the window.
	base int

	// link is where outbound packets go.
	link model.LinkWriter

	// logger is the logger to use.
	logger model.Logger

	// nextSeq is the next sequence number to assign, always within
	// [base, base+windowSize) modulo sequenceSpace.
	nextSeq int

	// outstanding counts packets sent and not yet acknowledged.
	outstanding int

	// sequenceSpace is the sequence-number modulus.
	sequenceSpace int

	// slots is the ring, indexed by offset from base.
	slots []sendSlot

	// stats counts the events this engine has seen.
	stats SenderStats

	// timeout is the alarm interval in virtual time units.
	timeout float64

	// used counts the slots between base and nextSeq.
	used int

	// windowSize is the number of slots in the ring.
	windowSize int
}

// NewSender creates a new sender engine writing packets to link and driving
// its retransmission alarm through alarm.
func NewSender(cfg *config.Config, link model.LinkWriter, alarm model.AlarmController) *Sender {
	s := &Sender{
		alarm:         alarm,
		link:          link,
		logger:        cfg.Logger(),
		sequenceSpace: cfg.SequenceSpace(),
		timeout:       cfg.RetransmitTimeout(),
		windowSize:    cfg.WindowSize(),
	}
	s.Init()
	return s
}

// Init resets the engine to its initial state: sequence number zero, empty
// window, alarm bookkeeping cleared. The collaborator must call it exactly
// once before any other entry point; it is idempotent if called again.
func (s *Sender) Init() {
	s.alarmArmed = false
	s.base = 0
	s.nextSeq = 0
	s.outstanding = 0
	s.slots = make([]sendSlot, s.windowSize)
	s.used = 0
}

// OnApplicationSubmit consumes a message from the application. When the send
// window has a free slot it builds a data packet, buffers it, hands it to the
// channel and advances nextSeq. When the window is full it returns
// [ErrWindowFull] synchronously and drops the message.
func (s *Sender) OnApplicationSubmit(message model.Message) error {
	if !inWindow(s.base, s.nextSeq, s.windowSize, s.sequenceSpace) {
		s.logger.Info("new message arrives, send window is full")
		s.stats.WindowFullRejections++
		return ErrWindowFull
	}

	packet := model.NewDataPacket(s.nextSeq, message.Data)
	s.slots[s.used] = sendSlot{packet: packet, acked: false}
	s.used++
	s.outstanding++
	s.stats.PacketsSent++

	s.logger.Infof("sending packet %d to the network", packet.Seq)
	packet.Log(s.logger, model.DirectionOutgoing)
	s.link.SendToNetwork(packet)

	// the alarm tracks the window base: arm it only when this packet is
	// the sole occupant of a previously empty window.
	if s.outstanding == 1 {
		s.alarm.ArmAlarm(s.timeout)
		s.alarmArmed = true
	}

	s.nextSeq = (s.nextSeq + 1) % s.sequenceSpace
	return nil
}

// OnPacketArrival consumes a packet from the channel, which for this entity
// is always an ACK. Corrupted, out-of-window and duplicate ACKs cause no
// state change. A new in-window ACK marks its slot; when the base slot is
// acknowledged the window slides forward by the whole contiguous
// acknowledged prefix and the alarm is restarted or left disarmed.
func (s *Sender) OnPacketArrival(packet *model.Packet) {
	if packet.Corrupted() {
		s.logger.Info("corrupted ACK is received, do nothing")
		s.stats.CorruptedDropped++
		return
	}

	s.logger.Infof("uncorrupted ACK %d is received", packet.Ack)
	s.stats.ACKsReceived++

	if !inWindow(s.base, packet.Ack, s.windowSize, s.sequenceSpace) {
		s.logger.Debugf("ACK %d is outside the send window, ignored", packet.Ack)
		return
	}

	index := seqOffset(s.base, packet.Ack, s.sequenceSpace)
	if index >= s.used {
		// in the window range but nothing was sent with that number yet
		s.logger.Debugf("ACK %d does not match a buffered packet, ignored", packet.Ack)
		return
	}
	if s.slots[index].acked {
		s.logger.Info("duplicate ACK received, do nothing")
		s.stats.DuplicateACKs++
		return
	}

	s.slots[index].acked = true
	s.outstanding--
	s.stats.NewACKs++

	if index != 0 {
		// not the base: the slot stays buffered until the base catches up
		return
	}

	// slide the window past the contiguous acknowledged prefix
	run := 0
	for run < s.used && s.slots[run].acked {
		run++
	}
	s.base = (s.base + run) % s.sequenceSpace
	copy(s.slots, s.slots[run:s.used])
	for i := s.used - run; i < s.used; i++ {
		s.slots[i] = sendSlot{}
	}
	s.used -= run
	s.logger.Debugf("send window slides by %d, new base %d", run, s.base)

	// the alarm follows the base: restart it for the new oldest
	// outstanding packet, or leave it off when nothing is in flight
	s.alarm.DisarmAlarm()
	s.alarmArmed = false
	if s.outstanding > 0 {
		s.alarm.ArmAlarm(s.timeout)
		s.alarmArmed = true
	}
}

// OnAlarm consumes the expiry of the retransmission alarm: it resends the
// packet at the window base, the oldest outstanding one, and rearms the
// alarm for another full interval. Selective repeat resends exactly one
// packet per timeout; the other buffered unacknowledged packets wait until
// they become the base themselves.
func (s *Sender) OnAlarm() {
	if s.used == 0 {
		s.logger.Warn("alarm fired with an empty window")
		return
	}
	packet := s.slots[0].packet
	s.logger.Infof("timeout, resending packet %d", packet.Seq)
	s.stats.Retransmissions++
	s.link.SendToNetwork(packet)
	s.alarm.ArmAlarm(s.timeout)
	s.alarmArmed = true
}

// Stats returns a copy of the counters this engine has accumulated.
func (s *Sender) Stats() SenderStats {
	return s.stats
}

// Base returns the oldest sequence number still tracked by the send window.
func (s *Sender) Base() int {
	return s.base
}

// Outstanding returns how many packets are in flight and unacknowledged.
func (s *Sender) Outstanding() int {
	return s.outstanding
}

// AlarmArmed returns whether the engine believes its alarm is armed. The
// alarm is armed iff at least one packet is outstanding.
func (s *Sender) AlarmArmed() bool {
	return s.alarmArmed
}
