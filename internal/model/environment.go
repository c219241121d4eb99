package model

//
// Environment
//
// The interfaces an engine consumes from the channel/environment
// collaborator. The engines never call each other directly: every packet
// crosses the collaborator, which is also the sole scheduler of events.
//

// Entity identifies one of the two protocol peers.
type Entity int

const (
	// EntityA is the sending side.
	EntityA = Entity(iota)

	// EntityB is the receiving side.
	EntityB
)

// String implements fmt.Stringer.
func (e Entity) String() string {
	switch e {
	case EntityA:
		return "A"
	case EntityB:
		return "B"
	default:
		return "unknown"
	}
}

// LinkWriter is where an engine hands packets for transmission. The
// environment may lose, corrupt or delay them, but it never reorders the
// packets it does deliver.
type LinkWriter interface {
	// SendToNetwork hands a packet to the unreliable channel.
	SendToNetwork(packet *Packet)
}

// ApplicationSink receives the payloads the receiver engine has
// reconstructed in order.
type ApplicationSink interface {
	// DeliverToApplication hands a raw payload up to the application layer.
	DeliverToApplication(payload [PayloadSize]byte)
}

// AlarmController arms and disarms the single retransmission alarm an
// entity owns. The environment invokes the engine's alarm entry point
// when the armed interval elapses.
type AlarmController interface {
	// ArmAlarm schedules the alarm to fire after interval virtual time
	// units. At most one alarm is outstanding per entity.
	ArmAlarm(interval float64)

	// DisarmAlarm cancels the outstanding alarm, if any.
	DisarmAlarm()
}
