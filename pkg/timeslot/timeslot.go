// Package timeslot models business-hours windows and the half-hour marks
// offered by the scheduling pickers.
package timeslot

import (
	"fmt"
	"time"
)

const DefaultStep = 30 * time.Minute

// Clock is a time of day in minutes since midnight
type Clock int

// ParseClock parses "HH:MM" (24h)
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockOf returns the time of day of t in t's location
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) Duration() time.Duration {
	return time.Duration(c) * time.Minute
}

// On places the clock on date's calendar day in loc
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, int(c)/60, int(c)%60, 0, 0, loc)
}

// Window is a daily business-hours range [Open, Close] stepped by Step
type Window struct {
	Open  Clock
	Close Clock
	Step  time.Duration
}

func NewWindow(open, close string, step time.Duration) (Window, error) {
	o, err := ParseClock(open)
	if err != nil {
		return Window{}, err
	}
	c, err := ParseClock(close)
	if err != nil {
		return Window{}, err
	}
	w := Window{Open: o, Close: c, Step: step}
	return w, w.Validate()
}

func MustWindow(open, close string, step time.Duration) Window {
	w, err := NewWindow(open, close, step)
	if err != nil {
		panic(err)
	}
	return w
}

func (w Window) Validate() error {
	if w.Step <= 0 || w.Step%time.Minute != 0 {
		return fmt.Errorf("slot step must be a positive number of minutes, got %v", w.Step)
	}
	if w.Open >= w.Close {
		return fmt.Errorf("window opens at %s but closes at %s", w.Open, w.Close)
	}
	if int(w.Close-w.Open)%w.stepMinutes() != 0 {
		return fmt.Errorf("window %s-%s is not a multiple of %v", w.Open, w.Close, w.Step)
	}
	return nil
}

func (w Window) String() string {
	return w.Open.String() + "-" + w.Close.String()
}

func (w Window) stepMinutes() int {
	return int(w.Step / time.Minute)
}

// Contains reports whether c falls inside [Open, Close]
func (w Window) Contains(c Clock) bool {
	return c >= w.Open && c <= w.Close
}

// Marks lists every step boundary from Open to Close inclusive
func (w Window) Marks() []Clock {
	var marks []Clock
	for c := w.Open; c <= w.Close; c += Clock(w.stepMinutes()) {
		marks = append(marks, c)
	}
	return marks
}

// StartOptions lists the marks an appointment can start on; the closing mark
// is excluded since nothing can end after it.
func (w Window) StartOptions() []string {
	marks := w.Marks()
	out := make([]string, 0, len(marks)-1)
	for _, m := range marks[:len(marks)-1] {
		out = append(out, m.String())
	}
	return out
}

// EndOptions lists the marks strictly after start, up to and including Close
func (w Window) EndOptions(start string) ([]string, error) {
	s, err := ParseClock(start)
	if err != nil {
		return nil, err
	}
	if !w.Contains(s) || s == w.Close {
		return nil, fmt.Errorf("start %s is outside business hours %s", start, w)
	}

	var out []string
	for _, m := range w.Marks() {
		if m > s {
			out = append(out, m.String())
		}
	}
	return out, nil
}

// ValidEnd reports whether end is one of EndOptions(start)
func (w Window) ValidEnd(start, end string) bool {
	opts, err := w.EndOptions(start)
	if err != nil {
		return false
	}
	for _, o := range opts {
		if o == end {
			return true
		}
	}
	return false
}

// IsStartOption reports whether start is one of StartOptions
func (w Window) IsStartOption(start string) bool {
	for _, o := range w.StartOptions() {
		if o == start {
			return true
		}
	}
	return false
}

// Bounds returns the window's opening and closing instants on day
func (w Window) Bounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	return w.Open.On(day, loc), w.Close.On(day, loc)
}
