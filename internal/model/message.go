package model

// Message is an application-layer message handed to the sender engine. It
// is opaque to the protocol: the engines never interpret its contents.
type Message struct {
	// Data is the fixed-size message body.
	Data [PayloadSize]byte
}

// NewMessage returns a message whose body is filled with up to
// [PayloadSize] bytes copied from the given slice. Shorter slices are
// zero-padded, longer ones are truncated.
func NewMessage(data []byte) Message {
	var m Message
	copy(m.Data[:], data)
	return m
}
