// File: core/ring/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package ring implements the bounded-depth ordered dispatch ring sitting
// between frame submission and bitstream retrieval.
//
// The ring owns a fixed array of slots plus a FIFO ordering queue of slot
// indices with the same capacity. The producer handle acquires slots in
// strict round-robin order, populates them, submits to the driver and
// publishes the index; the consumer handle pops indices in FIFO order,
// waits on the exact slot's completion signal, exposes the locked output
// and releases the slot. Because retrieval order mirrors submission order
// and capacity is bounded, a slot is only re-acquired for writing after
// its prior occupant has been fully consumed and released: once capacity
// submissions are outstanding the producer blocks until the consumer
// catches up.
//
// The ring requires no locking beyond the handoff points: a slot index is
// never visible to both handles at once because the ordering queue is the
// sole transfer channel between the single producer and single consumer.
package ring
