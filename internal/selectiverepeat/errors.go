package selectiverepeat

import "errors"

// ErrWindowFull is returned by [Sender.OnApplicationSubmit] when the send
// window has no free slot. The message is dropped, not queued: it is the
// caller's responsibility to retry later or to report the loss. Every other
// anomaly this protocol meets (corruption, stale or duplicate packets) is
// absorbed silently and resolved by the retransmission alarm, which is the
// system's only recovery primitive.
var ErrWindowFull = errors.New("selectiverepeat: send window is full")
