package domain

import "time"

// Clock supplies the current time to the engine. All time comparisons go
// through an injected Clock so the state machine stays deterministic under
// test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
