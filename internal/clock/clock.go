// Package clock supplies timestamps and unique ids to every mutating
// operation, so tests can pin both.
package clock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// ISOFormat is the timestamp layout persisted on every entity.
	ISOFormat = "2006-01-02T15:04:05"
	// DateFormat is the layout of user-assigned record dates.
	DateFormat = "2006-01-02"
)

// Clock provides the current time and fresh identifiers.
type Clock interface {
	// NowISO returns the current local time as an ISO-8601 string.
	NowISO() string
	// Today returns the current local date as YYYY-MM-DD.
	Today() string
	// NewID returns a fresh unique identifier.
	NewID() string
}

// System is the wall-clock implementation used in production.
type System struct{}

func NewSystem() System { return System{} }

func (System) NowISO() string { return time.Now().Format(ISOFormat) }
func (System) Today() string  { return time.Now().Format(DateFormat) }
func (System) NewID() string  { return uuid.NewString() }

// Fixed is a deterministic Clock for tests: frozen time, sequential ids.
type Fixed struct {
	Time time.Time
	seq  int
}

func NewFixed(t time.Time) *Fixed { return &Fixed{Time: t} }

func (f *Fixed) NowISO() string { return f.Time.Format(ISOFormat) }
func (f *Fixed) Today() string  { return f.Time.Format(DateFormat) }

func (f *Fixed) NewID() string {
	f.seq++
	return fmt.Sprintf("id-%04d", f.seq)
}

// Advance moves the frozen time forward.
func (f *Fixed) Advance(d time.Duration) { f.Time = f.Time.Add(d) }
