package model

//
// Packet
//
// Parsing and serializing selective-repeat packets.
//

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/netemlab/minisr/internal/bytesx"
)

// PayloadSize is the fixed size in bytes of every packet payload and
// of every application message.
const PayloadSize = 20

// NoField is the sentinel stored in header fields that are not in use:
// the ack number of a data packet and the sequence number of an ACK packet.
const NoField = -1

// wireSize is the encoded size of a packet: two two-byte header words,
// a four-byte checksum and the fixed-size payload.
const wireSize = 2 + 2 + 4 + PayloadSize

// Direction tells us which way a packet is flowing relative to an entity.
type Direction int

const (
	// DirectionIncoming marks packets received from the network.
	DirectionIncoming = Direction(iota)

	// DirectionOutgoing marks packets handed to the network.
	DirectionOutgoing
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case DirectionIncoming:
		return "recv"
	case DirectionOutgoing:
		return "send"
	default:
		return "undefined"
	}
}

// Packet is the wire contract between the sender and receiver engines. A
// packet is either a data packet (meaningful Seq, Ack set to [NoField]) or
// an ACK packet (meaningful Ack, Seq set to [NoField]). Both engines must
// agree on this layout and on the checksum formula bit-for-bit since this
// is not a negotiated protocol.
type Packet struct {
	// Seq is the sequence number of a data packet, in [0, sequence space).
	Seq int

	// Ack is the sequence number being acknowledged by an ACK packet.
	Ack int

	// Checksum is the additive checksum over the header and payload.
	Checksum int

	// Payload is the fixed-size application payload.
	Payload [PayloadSize]byte
}

// NewDataPacket returns a data packet carrying the given payload, with the
// ack field filled with the [NoField] sentinel and the checksum stamped.
func NewDataPacket(seq int, payload [PayloadSize]byte) *Packet {
	p := &Packet{
		Seq:      seq,
		Ack:      NoField,
		Checksum: 0,
		Payload:  payload,
	}
	p.Checksum = p.ComputeChecksum()
	return p
}

// NewACKPacket returns an ACK packet acknowledging the given sequence
// number, with an all-zeros payload and the checksum stamped.
func NewACKPacket(ack int) *Packet {
	p := &Packet{
		Seq:      NoField,
		Ack:      ack,
		Checksum: 0,
		Payload:  [PayloadSize]byte{},
	}
	p.Checksum = p.ComputeChecksum()
	return p
}

// ComputeChecksum recomputes the additive checksum over the packet fields
// as they currently are: the sequence number, plus the ack number, plus the
// sum of the payload bytes taken as unsigned small integers. This is a
// corruption detector, not an error-correcting code.
func (p *Packet) ComputeChecksum() int {
	checksum := p.Seq
	checksum += p.Ack
	for i := 0; i < PayloadSize; i++ {
		checksum += int(p.Payload[i])
	}
	return checksum
}

// Corrupted returns true iff the stored checksum does not match the one
// recomputed over the fields as received. Every inbound packet must pass
// this check before any other field is trusted.
func (p *Packet) Corrupted() bool {
	return p.Checksum != p.ComputeChecksum()
}

// IsACK returns true when this packet carries an acknowledgment rather
// than application data.
func (p *Packet) IsACK() bool {
	return p.Ack != NoField
}

// ErrPacketTooShort indicates that a packet is too short.
var ErrPacketTooShort = errors.New("minisr: packet too short")

// ErrParsePacket is a generic packet parse error which may be further qualified.
var ErrParsePacket = errors.New("minisr: packet parse error")

// ErrMarshalPacket is the error returned when we cannot marshal a packet.
var ErrMarshalPacket = errors.New("minisr: cannot marshal packet")

// Bytes returns a byte array that is ready to be sent on the wire.
func (p *Packet) Bytes() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := bytesx.WriteInt16(buf, p.Seq); err != nil {
		return nil, fmt.Errorf("%w: bad seq: %s", ErrMarshalPacket, err)
	}
	if err := bytesx.WriteInt16(buf, p.Ack); err != nil {
		return nil, fmt.Errorf("%w: bad ack: %s", ErrMarshalPacket, err)
	}
	if err := bytesx.WriteInt32(buf, p.Checksum); err != nil {
		return nil, fmt.Errorf("%w: bad checksum: %s", ErrMarshalPacket, err)
	}
	buf.Write(p.Payload[:])
	return buf.Bytes(), nil
}

// ParsePacket produces a packet from its wire representation. We assume
// that the underlying connection has already stripped out any framing.
func ParsePacket(data []byte) (*Packet, error) {
	if len(data) < wireSize {
		return nil, ErrPacketTooShort
	}
	buf := bytes.NewBuffer(data)
	p := &Packet{}
	var err error
	if p.Seq, err = bytesx.ReadInt16(buf); err != nil {
		return nil, fmt.Errorf("%w: bad seq: %s", ErrParsePacket, err)
	}
	if p.Ack, err = bytesx.ReadInt16(buf); err != nil {
		return nil, fmt.Errorf("%w: bad ack: %s", ErrParsePacket, err)
	}
	if p.Checksum, err = bytesx.ReadInt32(buf); err != nil {
		return nil, fmt.Errorf("%w: bad checksum: %s", ErrParsePacket, err)
	}
	if _, err := io.ReadFull(buf, p.Payload[:]); err != nil {
		return nil, fmt.Errorf("%w: bad payload: %s", ErrParsePacket, err)
	}
	return p, nil
}

// Log writes an entry in the passed logger with a representation of this packet.
func (p *Packet) Log(logger Logger, direction Direction) {
	var dir string
	switch direction {
	case DirectionIncoming:
		dir = "<"
	case DirectionOutgoing:
		dir = ">"
	default:
		logger.Warnf("wrong direction: %d", direction)
		return
	}

	if p.IsACK() {
		logger.Debugf("%s ACK {ack=%d}", dir, p.Ack)
		return
	}
	logger.Debugf("%s DATA {seq=%d} [%d bytes]", dir, p.Seq, PayloadSize)
}
