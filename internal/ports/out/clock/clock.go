package clock

import "time"

// Clock supplies current time to the application.
// An interface keeps freshness and rate-limit decisions deterministic in tests
// via a controllable implementation.
type Clock interface {
	Now() time.Time
}
