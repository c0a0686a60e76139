package providers

import "time"

// ClockProvider supplies the current time. Injecting it keeps debounce-window
// and trending-window arithmetic deterministic under test.
type ClockProvider interface {
	Now() time.Time
}
