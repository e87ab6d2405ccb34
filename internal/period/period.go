// Package period implements the period lock guard: a single cutoff date on
// or before which nothing may be posted.
package period

import (
	"errors"
	"fmt"
	"time"
)

// ErrPeriodLocked is returned when a posting date falls inside a closed period.
var ErrPeriodLocked = errors.New("period locked")

// LockedError carries the rejected date and the configured cutoff.
type LockedError struct {
	Date     time.Time
	LockDate time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("period locked: %s is on or before lock date %s",
		e.Date.Format("2006-01-02"), e.LockDate.Format("2006-01-02"))
}

// Unwrap lets errors.Is match ErrPeriodLocked.
func (e *LockedError) Unwrap() error { return ErrPeriodLocked }

// Lock is a period lock setting. The zero value locks nothing.
// Locks compare calendar days, ignoring time of day.
type Lock struct {
	through time.Time
	set     bool
}

// LockedThrough returns a Lock that rejects every date on or before d.
func LockedThrough(d time.Time) Lock {
	return Lock{through: day(d), set: true}
}

// Date returns the lock date, if any.
func (l Lock) Date() (time.Time, bool) {
	return l.through, l.set
}

// AssertUnlocked returns a *LockedError when date <= lock date.
func (l Lock) AssertUnlocked(date time.Time) error {
	if !l.set {
		return nil
	}
	if day(date).After(l.through) {
		return nil
	}
	return &LockedError{Date: date, LockDate: l.through}
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
