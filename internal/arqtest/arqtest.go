// Package arqtest provides utilities for minisr testing.
package arqtest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/netemlab/minisr/internal/model"
)

// TestPacket is used to script packet arrivals at an engine. The goal is to
// have a compact representation of a sequence of packets, their type, and
// extra properties like inter-arrival time in virtual ticks.
type TestPacket struct {
	// Kind is either "DATA" or "ACK".
	Kind string

	// Num is the sequence number (DATA) or the acked number (ACK).
	Num int

	// Corrupt tells us to tamper with the packet after stamping the
	// checksum, so that the detector must flag it.
	Corrupt bool

	// IAT is the inter-arrival time until the next packet, in ticks.
	IAT float64
}

// the test packet string is in the form:
// "[3] DATA +2t" or "[0] ACK! +1t" (the bang denotes in-flight corruption)
func NewTestPacketFromString(s string) (*TestPacket, error) {
	parts := strings.Split(s, " +")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid format for test packet: %s", s)
	}

	head := strings.Split(parts[0], " ")
	if len(head) != 2 {
		return nil, fmt.Errorf("invalid format for num-kind: %s", parts[0])
	}

	num, err := strconv.Atoi(strings.Trim(head[0], "[]"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse num: %v", err)
	}

	kind := head[1]
	corrupt := strings.HasSuffix(kind, "!")
	kind = strings.TrimSuffix(kind, "!")
	if kind != "DATA" && kind != "ACK" {
		return nil, fmt.Errorf("unknown packet kind: %s", kind)
	}

	iat, err := strconv.ParseFloat(strings.TrimSuffix(parts[1], "t"), 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse inter-arrival time: %v", err)
	}

	return &TestPacket{Kind: kind, Num: num, Corrupt: corrupt, IAT: iat}, nil
}

// Packet materializes this test packet as a wire packet. DATA packets get a
// payload filled with a letter derived from their sequence number, the same
// cycle the application source uses.
func (tp *TestPacket) Packet() *model.Packet {
	var p *model.Packet
	switch tp.Kind {
	case "ACK":
		p = model.NewACKPacket(tp.Num)
	default:
		p = model.NewDataPacket(tp.Num, FillPayload(PayloadLetter(tp.Num)))
	}
	if tp.Corrupt {
		p.Payload[0] ^= 0xff
	}
	return p
}

// MustParseSequence parses a scripted packet sequence, expanding range
// notation, and panics on malformed input. Test-only convenience.
func MustParseSequence(seq []string) []*TestPacket {
	parsed := make([]*TestPacket, 0, len(seq))
	for _, expr := range seq {
		for _, item := range maybeExpand(expr) {
			tp, err := NewTestPacketFromString(item)
			if err != nil {
				panic("arqtest: error reading test sequence: " + err.Error())
			}
			parsed = append(parsed, tp)
		}
	}
	return parsed
}

// possibly expand an input sequence in range notation for the packet numbers [0..5]
func maybeExpand(input string) []string {
	items := []string{}
	pattern := `^\[(\d+)\.\.(\d+)\] (.+)`
	regexpPattern := regexp.MustCompile(pattern)
	matches := regexpPattern.FindStringSubmatch(input)
	if len(matches) != 4 {
		// not a range, return the single element
		items = append(items, input)
		return items
	}

	// extract beginning and end of the range
	from, err := strconv.Atoi(matches[1])
	if err != nil {
		panic(err)
	}
	to, err := strconv.Atoi(matches[2])
	if err != nil {
		panic(err)
	}
	body := matches[3]

	// return the expanded num range
	for i := from; i <= to; i++ {
		items = append(items, fmt.Sprintf("[%d] %s", i, body))
	}
	return items
}

// PayloadLetter returns the fill letter the application source assigns to
// the message with the given number: 'a', 'b', ... cycling every 26.
func PayloadLetter(num int) byte {
	return byte('a' + num%26)
}

// FillPayload returns a payload filled with the given byte.
func FillPayload(fill byte) [model.PayloadSize]byte {
	var payload [model.PayloadSize]byte
	for i := range payload {
		payload[i] = fill
	}
	return payload
}
