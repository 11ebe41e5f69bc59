// Package clock provides the production wall clock.
package clock

import (
	"time"

	clockport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/clock"
)

var _ clockport.Clock = SystemClock{}

// SystemClock reports UTC wall-clock time truncated to microseconds, the precision Postgres
// timestamptz keeps, so stored and in-memory timestamps compare equal.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
