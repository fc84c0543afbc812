// Package agenda computes the visible window of days and buckets items into it.
package agenda

import (
	"errors"
	"strings"
	"time"

	"github.com/cuida-app/cuida/internal/dateutil"
)

// WindowDays is the number of days in every window.
const WindowDays = 7

// ErrInvalidPolicy is returned for an unknown window policy name.
var ErrInvalidPolicy = errors.New("window policy must be 'rolling' or 'sunday'")

// Policy selects how the window is laid out around the reference date.
type Policy string

const (
	// PolicyRolling shows the reference date and the six days after it.
	PolicyRolling Policy = "rolling"
	// PolicySundayWeek shows the Sunday-to-Saturday week holding the reference date.
	PolicySundayWeek Policy = "sunday"
)

// ParsePolicy parses a policy name. Empty means PolicyRolling.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyRolling:
		return PolicyRolling, nil
	case PolicySundayWeek, "week":
		return PolicySundayWeek, nil
	default:
		return "", ErrInvalidPolicy
	}
}

// Window is seven consecutive date keys in increasing order.
type Window [WindowDays]string

// ComputeWindow returns the window for refKey under policy.
func ComputeWindow(refKey string, policy Policy) Window {
	start := dateutil.Encode(dateutil.Decode(refKey))
	if policy == PolicySundayWeek {
		start = StartOfWeek(start)
	}

	var w Window
	for i := range w {
		w[i] = dateutil.AddDays(start, i)
	}
	return w
}

// Start returns the first key of the window.
func (w Window) Start() string {
	return w[0]
}

// End returns the last key of the window.
func (w Window) End() string {
	return w[WindowDays-1]
}

// Contains reports whether key is one of the window's days.
func (w Window) Contains(key string) bool {
	return w.Index(key) >= 0
}

// Index returns the position of key in the window, or -1.
func (w Window) Index(key string) int {
	for i, k := range w {
		if k == key {
			return i
		}
	}
	return -1
}

// StartYear returns the calendar year of the first day.
func (w Window) StartYear() int {
	return dateutil.Decode(w.Start()).Year()
}

// Keys returns the window as a slice.
func (w Window) Keys() []string {
	return w[:]
}

// StartOfWeek returns the Sunday on or before key.
func StartOfWeek(key string) string {
	d := dateutil.Decode(key)
	return dateutil.Encode(d.AddDate(0, 0, -int(d.Weekday())))
}

// EndOfWeek returns the Saturday on or after key.
func EndOfWeek(key string) string {
	d := dateutil.Decode(key)
	return dateutil.Encode(d.AddDate(0, 0, int(time.Saturday-d.Weekday())))
}

// ShiftWeek moves a reference key by n weeks (n may be negative).
func ShiftWeek(refKey string, n int) string {
	return dateutil.AddDays(refKey, n*WindowDays)
}

// IsToday reports whether key is the current local day.
func IsToday(key string) bool {
	return key == dateutil.Today()
}
