package clock

import "time"

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the callback was prevented
	// from running; false means it already fired or was stopped before.
	Stop() bool
}

// Clock is the time source and scheduling primitive used by the giveaway
// engine. Production code uses System; tests substitute a fake so timer
// behavior can be driven deterministically.
type Clock interface {
	Now() time.Time
	After(d time.Duration, fn func()) Timer
}

type systemClock struct{}

// System returns the wall clock backed by the time package.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
