// Package clock abstracts the monotonic clock used for solver deadlines so
// tests can inject a fake instead of sleeping real wall-clock time.
package clock

import (
	"time"

	"github.com/coder/quartz"
)

// Clock reports the current time. It is satisfied by quartz.Clock, so
// production code uses quartz.NewReal() and tests use quartz.NewMock(t).
type Clock interface {
	Now() time.Time
}

// Real returns the production clock backed by the system monotonic clock.
func Real() Clock {
	return quartz.NewReal()
}
