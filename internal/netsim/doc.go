// Package netsim implements the channel/environment collaborator for the
// selective-repeat engines: a deterministic discrete-event simulator that
// owns virtual time, delays, drops and tampers with packets in transit, and
// dispatches exactly one event at a time (application submission, packet
// arrival, or alarm expiry) to exactly one entity. A dispatched handler runs
// to completion before the next event; there is no parallelism and no
// reentrancy, so the engines need no locks.
//
// The channel may lose or corrupt packets, according to the configured
// probabilities, but it never reorders the packets it does deliver: each
// scheduled arrival is never earlier than the previously scheduled one for
// the same direction.
package netsim
