package arqtest

import "github.com/netemlab/minisr/internal/model"

//
// Recording doubles for the collaborator interfaces an engine consumes.
//

// RecordingLink implements [model.LinkWriter] and records every packet it
// is handed, in order.
type RecordingLink struct {
	// Packets are the packets handed to the link so far.
	Packets []*model.Packet
}

// SendToNetwork implements [model.LinkWriter].
func (rl *RecordingLink) SendToNetwork(packet *model.Packet) {
	rl.Packets = append(rl.Packets, packet)
}

// SeqSequence returns the sequence numbers of the recorded data packets.
func (rl *RecordingLink) SeqSequence() []int {
	seqs := make([]int, 0, len(rl.Packets))
	for _, p := range rl.Packets {
		if !p.IsACK() {
			seqs = append(seqs, p.Seq)
		}
	}
	return seqs
}

// AckSequence returns the ack numbers of the recorded ACK packets.
func (rl *RecordingLink) AckSequence() []int {
	acks := make([]int, 0, len(rl.Packets))
	for _, p := range rl.Packets {
		if p.IsACK() {
			acks = append(acks, p.Ack)
		}
	}
	return acks
}

var _ model.LinkWriter = &RecordingLink{}

// RecordingAlarm implements [model.AlarmController] and tracks the armed
// state the way the environment would.
type RecordingAlarm struct {
	// Armed tells whether the alarm is currently armed.
	Armed bool

	// Interval is the last armed interval.
	Interval float64

	// Arms counts ArmAlarm calls.
	Arms int

	// Disarms counts DisarmAlarm calls.
	Disarms int
}

// ArmAlarm implements [model.AlarmController].
func (ra *RecordingAlarm) ArmAlarm(interval float64) {
	ra.Armed = true
	ra.Interval = interval
	ra.Arms++
}

// DisarmAlarm implements [model.AlarmController].
func (ra *RecordingAlarm) DisarmAlarm() {
	ra.Armed = false
	ra.Disarms++
}

var _ model.AlarmController = &RecordingAlarm{}

// RecordingSink implements [model.ApplicationSink] and records the payloads
// delivered upward, in order.
type RecordingSink struct {
	// Payloads are the delivered payloads so far.
	Payloads [][model.PayloadSize]byte
}

// DeliverToApplication implements [model.ApplicationSink].
func (rs *RecordingSink) DeliverToApplication(payload [model.PayloadSize]byte) {
	rs.Payloads = append(rs.Payloads, payload)
}

// Letters returns the first byte of every delivered payload, which for the
// canonical fill-letter payloads identifies the message compactly.
func (rs *RecordingSink) Letters() []byte {
	letters := make([]byte, 0, len(rs.Payloads))
	for _, payload := range rs.Payloads {
		letters = append(letters, payload[0])
	}
	return letters
}

var _ model.ApplicationSink = &RecordingSink{}
