// File: core/signal/signal.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package signal

import (
	"github.com/momentics/hioload-enc/api"
)

// New creates a platform-appropriate completion signal. The returned
// object additionally implements Setter so software drivers can flip it.
func New() (api.CompletionSignal, error) {
	return newSignal()
}

// Setter is the driver-side half of a completion signal. Only the driver
// collaborator sets the signal; the library itself never does.
type Setter interface {
	Set() error
}
