package selectiverepeat

// SenderStats counts the events seen by a [Sender].
type SenderStats struct {
	// PacketsSent counts first transmissions of data packets.
	PacketsSent int

	// Retransmissions counts alarm-driven resends.
	Retransmissions int

	// ACKsReceived counts all uncorrupted ACK arrivals.
	ACKsReceived int

	// NewACKs counts ACKs that retired a previously unacknowledged packet.
	NewACKs int

	// DuplicateACKs counts valid ACKs for already-acknowledged packets.
	DuplicateACKs int

	// CorruptedDropped counts inbound packets failing the checksum.
	CorruptedDropped int

	// WindowFullRejections counts submissions rejected with [ErrWindowFull].
	WindowFullRejections int
}

// ReceiverStats counts the events seen by a [Receiver].
type ReceiverStats struct {
	// PacketsReceived counts all uncorrupted data arrivals.
	PacketsReceived int

	// CorruptedDropped counts inbound packets failing the checksum.
	CorruptedDropped int

	// DuplicatesIgnored counts valid packets ACKed but not buffered again.
	DuplicatesIgnored int

	// Delivered counts payloads handed to the application in order.
	Delivered int
}
