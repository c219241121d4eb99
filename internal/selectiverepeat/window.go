package selectiverepeat

//
// Window arithmetic
//
// Both engines view their buffer as a ring of windowSize slots anchored at a
// base sequence number. All wraparound arithmetic lives in the two helpers
// below so that the off-by-one logic exists in exactly one place.
//

import "github.com/netemlab/minisr/internal/model"

// seqOffset returns the logical offset of seq from base, modulo space.
// Offset zero is the base slot itself.
func seqOffset(base, seq, space int) int {
	return ((seq - base) + space) % space
}

// inWindow reports whether seq falls within [base, base+size) modulo space.
func inWindow(base, seq, size, space int) bool {
	return seqOffset(base, seq, space) < size
}

// sendSlot is one slot of the sender ring: a buffered data packet plus
// whether a valid ACK for it has arrived.
type sendSlot struct {
	packet *model.Packet
	acked  bool
}

// recvSlot is one slot of the receiver ring: a buffered data packet waiting
// for the in-order run from the base to reach it.
type recvSlot struct {
	packet   *model.Packet
	occupied bool
}
