package netsim

import (
	"container/heap"
	"math/rand"

	"github.com/netemlab/minisr/internal/model"
	"github.com/netemlab/minisr/internal/runtimex"
	"github.com/netemlab/minisr/internal/selectiverepeat"
	"github.com/netemlab/minisr/pkg/config"
)

// maxEvents bounds a single run so that a pathological configuration
// cannot spin the event loop forever.
const maxEvents = 1_000_000

// Simulation wires a sender and a receiver engine back to back through the
// simulated unreliable channel and drives them with generated application
// messages. The zero value is invalid; use [New].
type Simulation struct {
	// alarmEvents tracks the single armed alarm event per entity.
	alarmEvents map[model.Entity]*event

	// cfg holds the run parameters.
	cfg *config.Config

	// generated counts application messages produced so far.
	generated int

	// lastArrival is the latest scheduled arrival per entity, used to
	// keep the channel from reordering in-transit packets.
	lastArrival map[model.Entity]float64

	// logger is the logger to use.
	logger model.Logger

	// now is the current virtual time.
	now float64

	// order is a monotonic counter breaking simultaneous-event ties.
	order int

	// queue is the pending event list.
	queue eventQueue

	// receiver is the receive-side engine (entity B).
	receiver *selectiverepeat.Receiver

	// retransmitting is set while the sender handles an alarm, so the
	// channel can tell a resend apart from a first send.
	retransmitting bool

	// rng is the seeded randomness source for loss, corruption and delays.
	rng *rand.Rand

	// sender is the send-side engine (entity A).
	sender *selectiverepeat.Sender

	// sink records what reaches the application at B.
	sink *applicationSink

	// stats counts what the channel did to the traffic.
	stats ChannelStats

	// submitted are the fill letters of the messages the sender accepted.
	submitted []byte

	// tracer collects run events.
	tracer model.Tracer
}

// ChannelStats counts what the simulated channel did to the traffic.
type ChannelStats struct {
	// Injected counts packets handed to the channel by both entities.
	Injected int

	// Lost counts packets the channel dropped.
	Lost int

	// Corrupted counts packets the channel tampered with.
	Corrupted int

	// MessagesDropped counts application messages rejected by a full
	// send window and reported lost by this driver.
	MessagesDropped int
}

// Report summarizes a finished run.
type Report struct {
	// ElapsedTicks is the virtual time when the last event fired.
	ElapsedTicks float64

	// Channel is what the channel did to the traffic.
	Channel ChannelStats

	// Sender holds the sender engine counters.
	Sender selectiverepeat.SenderStats

	// Receiver holds the receiver engine counters.
	Receiver selectiverepeat.ReceiverStats

	// Submitted counts messages the sender accepted into its window.
	Submitted int

	// Delivered counts payloads handed to the application at B.
	Delivered int
}

// New creates a simulation from the given configuration.
func New(cfg *config.Config) *Simulation {
	s := &Simulation{
		alarmEvents: make(map[model.Entity]*event),
		cfg:         cfg,
		lastArrival: make(map[model.Entity]float64),
		logger:      cfg.Logger(),
		queue:       eventQueue{},
		rng:         rand.New(rand.NewSource(cfg.Seed())),
		tracer:      cfg.Tracer(),
	}
	s.sink = &applicationSink{sim: s}
	s.sender = selectiverepeat.NewSender(cfg,
		&entityLink{sim: s, from: model.EntityA},
		&entityAlarm{sim: s, entity: model.EntityA})
	s.receiver = selectiverepeat.NewReceiver(cfg,
		&entityLink{sim: s, from: model.EntityB},
		s.sink)
	s.scheduleNextMessage()
	return s
}

// Run dispatches events until the pending list drains or the event budget
// is exhausted, then returns the run report.
func (s *Simulation) Run() *Report {
	for processed := 0; s.queue.Len() > 0; processed++ {
		if processed >= maxEvents {
			s.logger.Warn("netsim: event budget exhausted, stopping the run")
			break
		}
		ev := heap.Pop(&s.queue).(*event)
		s.now = ev.at
		s.dispatch(ev)
	}
	return &Report{
		ElapsedTicks: s.now,
		Channel:      s.stats,
		Sender:       s.sender.Stats(),
		Receiver:     s.receiver.Stats(),
		Submitted:    len(s.submitted),
		Delivered:    len(s.sink.letters),
	}
}

// dispatch hands one event to the handler of its target entity. Handlers
// run to completion: the next event is only popped after this returns.
func (s *Simulation) dispatch(ev *event) {
	s.logger.Debugf("netsim: t=%.2f %s for %s", s.now, ev.kind, ev.entity)
	switch ev.kind {
	case eventFromApplication:
		s.nextMessage()

	case eventFromNetwork:
		s.tracer.OnIncomingPacket(s.now, ev.entity, ev.packet)
		switch ev.entity {
		case model.EntityA:
			s.sender.OnPacketArrival(ev.packet)
		default:
			s.receiver.OnPacketArrival(ev.packet)
		}

	case eventAlarm:
		delete(s.alarmEvents, ev.entity)
		if ev.entity != model.EntityA {
			// the receiver never arms an alarm in simplex transfer
			s.logger.Warnf("netsim: spurious alarm for %s", ev.entity)
			return
		}
		s.tracer.OnAlarmFired(s.now, ev.entity)
		s.retransmitting = true
		s.sender.OnAlarm()
		s.retransmitting = false
	}
}

// nextMessage generates the next application message, submits it to the
// sender and schedules the following one. A rejected submission is a lost
// message: this driver just counts it, as the original harness does.
func (s *Simulation) nextMessage() {
	letter := payloadLetter(s.generated)
	s.generated++
	message := model.NewMessage(fillPayload(letter))
	if err := s.sender.OnApplicationSubmit(message); err != nil {
		s.stats.MessagesDropped++
	} else {
		s.submitted = append(s.submitted, letter)
	}
	s.scheduleNextMessage()
}

// scheduleNextMessage schedules the next application arrival at a random
// gap with the configured mean, until the message budget runs out.
func (s *Simulation) scheduleNextMessage() {
	if s.generated >= s.cfg.MessageCount() {
		return
	}
	gap := 2 * s.cfg.MessageInterval() * s.rng.Float64()
	s.push(s.now+gap, eventFromApplication, model.EntityA, nil)
}

// channelSend puts a packet in transit from the given entity to its peer,
// possibly losing, corrupting or delaying it on the way.
func (s *Simulation) channelSend(from model.Entity, packet *model.Packet) {
	to := peer(from)
	s.stats.Injected++
	s.tracer.OnOutgoingPacket(s.now, from, packet, s.retransmitting)
	packet.Log(s.logger, model.DirectionOutgoing)

	if s.rng.Float64() < s.cfg.LossProbability() {
		s.logger.Debugf("netsim: t=%.2f packet being lost", s.now)
		s.stats.Lost++
		s.tracer.OnLostPacket(s.now, from, packet)
		return
	}

	// the wire carries bytes, not pointers: round trip the codec so the
	// in-flight copy is independent of the sender's retransmit buffer
	data, err := packet.Bytes()
	runtimex.PanicOnError(err, "netsim: cannot marshal packet")
	copied, err := model.ParsePacket(data)
	runtimex.PanicOnError(err, "netsim: cannot parse packet")

	if s.rng.Float64() < s.cfg.CorruptionProbability() {
		s.logger.Debugf("netsim: t=%.2f packet being corrupted", s.now)
		s.corrupt(copied)
		s.stats.Corrupted++
		s.tracer.OnCorruptedPacket(s.now, from, copied)
	}

	// delays vary per packet but the channel never reorders: an arrival is
	// never scheduled before the previously scheduled one for this entity
	depart := s.now
	if last, ok := s.lastArrival[to]; ok && last > depart {
		depart = last
	}
	arrival := depart + s.cfg.MeanDelay()*(0.5+s.rng.Float64())
	s.lastArrival[to] = arrival
	s.push(arrival, eventFromNetwork, to, copied)
}

// corrupt tampers with one field of the packet, leaving the stored checksum
// alone so that the detector must flag the mismatch. Three quarters of the
// corruptions hit the payload, the rest the header, as in the original
// network emulator.
func (s *Simulation) corrupt(packet *model.Packet) {
	x := s.rng.Float64()
	switch {
	case x < 0.75:
		packet.Payload[0] = 'Z'
	case x < 0.875:
		packet.Seq++
	default:
		packet.Ack++
	}
}

// armAlarm schedules the alarm event for the given entity.
func (s *Simulation) armAlarm(entity model.Entity, interval float64) {
	if old, ok := s.alarmEvents[entity]; ok {
		s.logger.Warnf("netsim: alarm for %s armed while already armed", entity)
		heap.Remove(&s.queue, old.index)
	}
	s.tracer.OnAlarmSet(s.now, entity, interval)
	s.alarmEvents[entity] = s.push(s.now+interval, eventAlarm, entity, nil)
}

// disarmAlarm cancels the pending alarm event for the given entity.
func (s *Simulation) disarmAlarm(entity model.Entity) {
	ev, ok := s.alarmEvents[entity]
	if !ok {
		s.logger.Warnf("netsim: disarming alarm for %s, but none is armed", entity)
		return
	}
	heap.Remove(&s.queue, ev.index)
	delete(s.alarmEvents, entity)
}

// push schedules a new event and returns it.
func (s *Simulation) push(at float64, kind eventKind, entity model.Entity, packet *model.Packet) *event {
	ev := &event{
		at:     at,
		entity: entity,
		kind:   kind,
		packet: packet,
		order:  s.order,
	}
	s.order++
	heap.Push(&s.queue, ev)
	return ev
}

// peer returns the other entity.
func peer(e model.Entity) model.Entity {
	if e == model.EntityA {
		return model.EntityB
	}
	return model.EntityA
}

// entityLink adapts the channel to [model.LinkWriter] for one entity.
type entityLink struct {
	sim  *Simulation
	from model.Entity
}

// SendToNetwork implements [model.LinkWriter].
func (el *entityLink) SendToNetwork(packet *model.Packet) {
	el.sim.channelSend(el.from, packet)
}

// entityAlarm adapts the event queue to [model.AlarmController] for one entity.
type entityAlarm struct {
	sim    *Simulation
	entity model.Entity
}

// ArmAlarm implements [model.AlarmController].
func (ea *entityAlarm) ArmAlarm(interval float64) {
	ea.sim.armAlarm(ea.entity, interval)
}

// DisarmAlarm implements [model.AlarmController].
func (ea *entityAlarm) DisarmAlarm() {
	ea.sim.disarmAlarm(ea.entity)
}

// applicationSink records what the receiver delivers to the application.
type applicationSink struct {
	// letters are the first bytes of the delivered payloads, identifying
	// the generated messages compactly.
	letters []byte

	// payloads are the delivered payloads, in delivery order.
	payloads [][model.PayloadSize]byte

	// sim gives access to virtual time and the tracer.
	sim *Simulation
}

// DeliverToApplication implements [model.ApplicationSink].
func (as *applicationSink) DeliverToApplication(payload [model.PayloadSize]byte) {
	as.letters = append(as.letters, payload[0])
	as.payloads = append(as.payloads, payload)
	as.sim.tracer.OnDelivered(as.sim.now, model.EntityB, payload)
}

// SubmittedLetters returns the fill letters of the messages the sender
// accepted, in submission order.
func (s *Simulation) SubmittedLetters() []byte {
	return s.submitted
}

// DeliveredLetters returns the fill letters of the payloads delivered to
// the application, in delivery order.
func (s *Simulation) DeliveredLetters() []byte {
	return s.sink.letters
}

// payloadLetter returns the fill letter for the num-th generated message:
// 'a', 'b', ... cycling every 26 messages.
func payloadLetter(num int) byte {
	return byte('a' + num%26)
}

// fillPayload returns a payload-sized slice filled with the given byte.
func fillPayload(fill byte) []byte {
	payload := make([]byte, model.PayloadSize)
	for i := range payload {
		payload[i] = fill
	}
	return payload
}
