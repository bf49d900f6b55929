package postgresadapter

import "time"

// SystemClock satisfies ports.Clock with the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
