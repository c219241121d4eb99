package selectiverepeat

import (
	"time"

	"github.com/netemlab/minisr/internal/model"
	"github.com/netemlab/minisr/internal/workers"
	"github.com/netemlab/minisr/pkg/config"
)

var (
	serviceName = "selectiverepeat"
)

// Service is the concurrent packaging of the two engines: each one runs
// confined to its own worker goroutine and is driven by channel events, so
// the single-threaded, run-to-completion discipline of the engines is
// preserved without locks. Make sure you initialize the channels before
// invoking [Service.StartWorkers].
type Service struct {
	// ApplicationToSender moves application messages down to the sender.
	ApplicationToSender chan model.Message

	// NetworkToSender moves ACK packets up to the sender.
	NetworkToSender chan *model.Packet

	// SenderToNetwork is the shared channel where the sender writes
	// outbound data packets for the network to pick up.
	SenderToNetwork *chan *model.Packet

	// NetworkToReceiver moves data packets up to the receiver.
	NetworkToReceiver chan *model.Packet

	// ReceiverToNetwork is the shared channel where the receiver writes
	// outbound ACK packets for the network to pick up.
	ReceiverToNetwork *chan *model.Packet

	// ReceiverToApplication is the shared channel where the receiver
	// delivers in-order payloads to the application above.
	ReceiverToApplication *chan [model.PayloadSize]byte
}

// StartWorkers starts the sender and receiver workers.
func (s *Service) StartWorkers(cfg *config.Config, workersManager *workers.Manager) {
	ws := &workersState{
		applicationToSender:   s.ApplicationToSender,
		cfg:                   cfg,
		logger:                cfg.Logger(),
		networkToReceiver:     s.NetworkToReceiver,
		networkToSender:       s.NetworkToSender,
		receiverToApplication: *s.ReceiverToApplication,
		receiverToNetwork:     *s.ReceiverToNetwork,
		senderToNetwork:       *s.SenderToNetwork,
		workersManager:        workersManager,
	}
	workersManager.StartWorker(ws.senderWorker)
	workersManager.StartWorker(ws.receiverWorker)
}

// workersState contains the selective-repeat workers state.
type workersState struct {
	// applicationToSender is the channel from which we read new messages.
	applicationToSender <-chan model.Message

	// cfg holds the protocol parameters.
	cfg *config.Config

	// logger is the logger to use.
	logger model.Logger

	// networkToReceiver is the channel from which we read data arrivals.
	networkToReceiver <-chan *model.Packet

	// networkToSender is the channel from which we read ACK arrivals.
	networkToSender <-chan *model.Packet

	// receiverToApplication is the channel where we deliver payloads.
	receiverToApplication chan<- [model.PayloadSize]byte

	// receiverToNetwork is the channel where we write outbound ACKs.
	receiverToNetwork chan<- *model.Packet

	// senderToNetwork is the channel where we write outbound data.
	senderToNetwork chan<- *model.Packet

	// workersManager controls the workers lifecycle.
	workersManager *workers.Manager
}

// senderWorker runs the sender engine confined to this goroutine.
func (ws *workersState) senderWorker() {
	workerName := serviceName + ": senderWorker"

	defer func() {
		ws.workersManager.OnWorkerDone(workerName)
		ws.workersManager.StartShutdown()
	}()

	ws.logger.Debugf("%s: started", workerName)

	alarm := newWorkerAlarm(ws.cfg.TickDuration())
	link := &channelLink{ch: ws.senderToNetwork, workersManager: ws.workersManager}
	sender := NewSender(ws.cfg, link, alarm)

	for {
		// POSSIBLY BLOCK waiting for the next event for this entity
		select {
		case message := <-ws.applicationToSender:
			if err := sender.OnApplicationSubmit(message); err != nil {
				ws.logger.Warnf("%s: %s", workerName, err.Error())
			}

		case packet := <-ws.networkToSender:
			packet.Log(ws.logger, model.DirectionIncoming)
			sender.OnPacketArrival(packet)

		case <-alarm.fired():
			sender.OnAlarm()

		case <-ws.workersManager.ShouldShutdown():
			return
		}
	}
}

// receiverWorker runs the receiver engine confined to this goroutine.
func (ws *workersState) receiverWorker() {
	workerName := serviceName + ": receiverWorker"

	defer func() {
		ws.workersManager.OnWorkerDone(workerName)
		ws.workersManager.StartShutdown()
	}()

	ws.logger.Debugf("%s: started", workerName)

	link := &channelLink{ch: ws.receiverToNetwork, workersManager: ws.workersManager}
	sink := &channelSink{ch: ws.receiverToApplication, workersManager: ws.workersManager}
	receiver := NewReceiver(ws.cfg, link, sink)

	for {
		// POSSIBLY BLOCK waiting for the next data arrival
		select {
		case packet := <-ws.networkToReceiver:
			packet.Log(ws.logger, model.DirectionIncoming)
			receiver.OnPacketArrival(packet)

		case <-ws.workersManager.ShouldShutdown():
			return
		}
	}
}

// channelLink adapts a packet channel to [model.LinkWriter].
type channelLink struct {
	ch             chan<- *model.Packet
	workersManager *workers.Manager
}

// SendToNetwork implements [model.LinkWriter].
func (cl *channelLink) SendToNetwork(packet *model.Packet) {
	// POSSIBLY BLOCK writing to the shared channel to the network
	select {
	case cl.ch <- packet:
	case <-cl.workersManager.ShouldShutdown():
	}
}

// channelSink adapts a payload channel to [model.ApplicationSink].
type channelSink struct {
	ch             chan<- [model.PayloadSize]byte
	workersManager *workers.Manager
}

// DeliverToApplication implements [model.ApplicationSink].
func (cs *channelSink) DeliverToApplication(payload [model.PayloadSize]byte) {
	// POSSIBLY BLOCK delivering to the upper layer
	select {
	case cs.ch <- payload:
	case <-cs.workersManager.ShouldShutdown():
	}
}

// workerAlarm implements [model.AlarmController] on top of a [time.Timer],
// mapping virtual time units to wall clock through the tick duration. It is
// owned by the sender worker goroutine.
type workerAlarm struct {
	tick  time.Duration
	timer *time.Timer
}

func newWorkerAlarm(tick time.Duration) *workerAlarm {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	return &workerAlarm{tick: tick, timer: timer}
}

// fired returns the channel that receives when the armed interval elapses.
func (wa *workerAlarm) fired() <-chan time.Time {
	return wa.timer.C
}

// ArmAlarm implements [model.AlarmController].
func (wa *workerAlarm) ArmAlarm(interval float64) {
	wa.DisarmAlarm()
	wa.timer.Reset(time.Duration(interval * float64(wa.tick)))
}

// DisarmAlarm implements [model.AlarmController].
func (wa *workerAlarm) DisarmAlarm() {
	if !wa.timer.Stop() {
		select {
		case <-wa.timer.C:
		default:
		}
	}
}
