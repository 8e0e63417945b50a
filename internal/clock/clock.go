// Package clock abstracts the wall-clock source that stamps session start
// and end times, so the lifecycle logic can be driven by a fake in tests.
package clock

import "time"

// Clock yields the current time as epoch milliseconds, matching the
// timestamp unit of the persisted snapshot.
type Clock interface {
	NowMillis() int64
}

// Func adapts a plain function to the Clock interface.
type Func func() int64

func (f Func) NowMillis() int64 { return f() }

type systemClock struct{}

func (systemClock) NowMillis() int64 { return time.Now().UnixMilli() }

// System returns the real wall clock.
func System() Clock { return systemClock{} }

// Time converts an epoch-ms timestamp back into a time.Time for display.
func Time(millis int64) time.Time {
	return time.UnixMilli(millis)
}
