package calendar

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/timeslot"
)

type View string

const (
	ViewMonth  View = "month"
	ViewWeek   View = "week"
	ViewDay    View = "day"
	ViewAgenda View = "agenda"
)

// AgendaDays is how far ahead the agenda view lists appointments
const AgendaDays = 30

func ParseView(v string) (View, error) {
	switch View(v) {
	case ViewMonth, ViewWeek, ViewDay, ViewAgenda:
		return View(v), nil
	case "":
		return ViewWeek, nil
	}
	return "", fmt.Errorf("unknown calendar view %q", v)
}

type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// Draft pre-fills the creation modal for a clicked slot
type Draft struct {
	Start  time.Time               `json:"start"`
	End    time.Time               `json:"end"`
	AllDay bool                    `json:"all_day"`
	Status model.AppointmentStatus `json:"status"`
}

// Event is an appointment as the calendar grid renders it
type Event struct {
	ID     string                  `json:"id"`
	Title  string                  `json:"title"`
	Start  time.Time               `json:"start"`
	End    time.Time               `json:"end"`
	AllDay bool                    `json:"all_day"`
	Color  string                  `json:"color"`
	Status model.AppointmentStatus `json:"status"`
	Label  string                  `json:"status_label"`
}

type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r Range) overlaps(start, end time.Time) bool {
	return start.Before(r.To) && end.After(r.From)
}

// Board is one user's list of appointments. It performs no conflict checks:
// overlapping appointments are allowed.
type Board struct {
	mu           sync.RWMutex
	appointments []*model.Appointment
	loaded       Range
	window       timeslot.Window
	loc          *time.Location
}

func NewBoard(window timeslot.Window, loc *time.Location, appointments ...*model.Appointment) *Board {
	if loc == nil {
		loc = time.Local
	}
	b := &Board{window: window, loc: loc}
	for _, a := range appointments {
		b.appointments = append(b.appointments, a.Clone())
	}
	return b
}

// SelectSlot builds a draft for the clicked range. A range made of whole days
// starting at midnight (month view clicks) becomes an all-day draft.
func (b *Board) SelectSlot(start, end time.Time) (Draft, error) {
	if !start.Before(end) {
		return Draft{}, errors.BadRequest("La hora de inicio debe ser anterior a la de fin", nil)
	}
	start, end = start.In(b.loc), end.In(b.loc)
	allDay := isMidnight(start) && isMidnight(end) && end.Sub(start)%(24*time.Hour) == 0
	return Draft{Start: start, End: end, AllDay: allDay, Status: model.StatusPending}, nil
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func (b *Board) SelectEvent(id string) (*model.Appointment, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i := b.indexOf(id); i >= 0 {
		return b.appointments[i].Clone(), nil
	}
	return nil, errors.NotFound("appointment", nil)
}

// Save upserts by id: an existing id is replaced in place, a new one appended
func (b *Board) Save(a *model.Appointment) (Outcome, error) {
	if a.ID == "" {
		return "", errors.BadRequest("appointment id is required", nil)
	}
	if err := a.Validate(); err != nil {
		return "", errors.BadRequest(err.Error(), err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.indexOf(a.ID); i >= 0 {
		b.appointments[i] = a.Clone()
		return OutcomeUpdated, nil
	}
	b.appointments = append(b.appointments, a.Clone())
	return OutcomeCreated, nil
}

func (b *Board) SetStatus(id string, status model.AppointmentStatus) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.indexOf(id); i >= 0 {
		b.appointments[i].Status = status
		return true
	}
	return false
}

func (b *Board) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	b.appointments = append(b.appointments[:i], b.appointments[i+1:]...)
	return true
}

func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.appointments)
}

// Appointments returns copies in board order
func (b *Board) Appointments() []*model.Appointment {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*model.Appointment, 0, len(b.appointments))
	for _, a := range b.appointments {
		out = append(out, a.Clone())
	}
	return out
}

// Covers reports whether r was already loaded from the backend
func (b *Board) Covers(r Range) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.loaded.From.IsZero() && !r.From.Before(b.loaded.From) && !r.To.After(b.loaded.To)
}

// Load replaces the board contents with a fresh backend snapshot of r
func (b *Board) Load(r Range, appointments []*model.Appointment) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.appointments = b.appointments[:0]
	for _, a := range appointments {
		b.appointments = append(b.appointments, a.Clone())
	}
	b.loaded = r
}

// RangeFor returns the instants a view anchored at anchor displays. Weeks
// start on Monday; the month view is padded to whole weeks.
func (b *Board) RangeFor(view View, anchor time.Time) Range {
	day := startOfDay(anchor.In(b.loc))
	switch view {
	case ViewDay:
		return Range{From: day, To: day.AddDate(0, 0, 1)}
	case ViewAgenda:
		return Range{From: day, To: day.AddDate(0, 0, AgendaDays)}
	case ViewMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, b.loc)
		next := first.AddDate(0, 1, 0)
		from := startOfWeek(first)
		to := startOfWeek(next.AddDate(0, 0, -1)).AddDate(0, 0, 7)
		return Range{From: from, To: to}
	default:
		from := startOfWeek(day)
		return Range{From: from, To: from.AddDate(0, 0, 7)}
	}
}

// Events renders the appointments overlapping r, ordered by start
func (b *Board) Events(r Range) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := make([]Event, 0)
	for _, a := range b.appointments {
		if !r.overlaps(a.Start, a.End) {
			continue
		}
		events = append(events, Event{
			ID:     a.ID,
			Title:  a.DisplayTitle(),
			Start:  a.Start.In(b.loc),
			End:    a.End.In(b.loc),
			AllDay: a.AllDay,
			Color:  a.DisplayColor(),
			Status: a.Status,
			Label:  a.Status.Label(),
		})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events
}

func (b *Board) Window() timeslot.Window {
	return b.window
}

func (b *Board) indexOf(id string) int {
	for i, a := range b.appointments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Messages are the Spanish labels of the calendar toolbar and grid
func Messages() map[string]string {
	return map[string]string{
		"allDay":          "Todo el día",
		"previous":        "Anterior",
		"next":            "Siguiente",
		"today":           "Hoy",
		"month":           "Mes",
		"week":            "Semana",
		"day":             "Día",
		"agenda":          "Agenda",
		"date":            "Fecha",
		"time":            "Hora",
		"event":           "Cita",
		"noEventsInRange": "No hay citas en este rango.",
		"showMore":        "+%d más",
	}
}
