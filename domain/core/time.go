package core

import (
	"time"
)

// Timestamp represents a point in time with timezone awareness
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now().UTC())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) String() string { return t.Time().Format(time.RFC3339) }

// Elapsed is the wall time a computation took.
type Elapsed time.Duration

// Since measures the time elapsed since start.
func Since(start Timestamp) Elapsed { return Elapsed(time.Since(start.Time())) }

func (e Elapsed) Duration() time.Duration { return time.Duration(e) }
func (e Elapsed) String() string          { return time.Duration(e).Round(time.Microsecond).String() }
