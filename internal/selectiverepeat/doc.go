// Package selectiverepeat implements the data-transfer core of a
// selective-repeat ARQ protocol: a sender engine and a receiver engine that
// cooperate to deliver a stream of fixed-size application messages reliably
// and in order across an unreliable, delay-prone, simplex channel.
//
// Both engines are pure state machines driven by inbound events. They never
// call each other directly: every packet crosses the external channel
// collaborator, which is also the sole scheduler of events. The data
// structures in this package lack mutexes because each engine is intended to
// be confined to a single goroutine (or to a single-threaded event loop such
// as the one in the netsim package), and engines SHOULD ONLY communicate via
// message passing.
package selectiverepeat
