package ports

import "time"

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call stopped it.
	Stop() bool
}

// Clock abstracts wall-clock time so tick scheduling can be driven deterministically in tests.
type Clock interface {
	Now() time.Time

	// AfterFunc waits for d and then calls f on its own goroutine.
	AfterFunc(d time.Duration, f func()) Timer
}
