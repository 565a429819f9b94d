// File: core/signal/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package signal provides OS-level completion-signal objects: an eventfd
// on Linux, a kernel event object on Windows, and a channel-backed
// fallback elsewhere. The raw handle of each object is what goes into the
// hardware submission record; the driver sets the object, the consumer
// side of the dispatch ring waits on it.
package signal
