package health

import "sync/atomic"

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips the readiness gate. Called with false at the start of
// graceful shutdown so load balancers drain the instance.
func SetReady(v bool) {
	ready.Store(v)
}

// Ready reports the readiness gate state.
func Ready() bool {
	return ready.Load()
}
