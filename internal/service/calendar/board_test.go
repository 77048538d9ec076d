package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/timeslot"
)

var (
	lima     = time.FixedZone("PET", -5*3600)
	calendar = timeslot.MustWindow("07:00", "21:00", 30*time.Minute)
)

func at(day, hour, min int) time.Time {
	return time.Date(2024, 5, day, hour, min, 0, 0, lima)
}

func appt(id string, start, end time.Time) *model.Appointment {
	return &model.Appointment{ID: id, Start: start, End: end, Status: model.StatusPending}
}

func TestSaveUpsertsByID(t *testing.T) {
	b := NewBoard(calendar, lima, appt("1", at(10, 9, 0), at(10, 9, 30)))

	outcome, err := b.Save(appt("2", at(10, 10, 0), at(10, 10, 30)))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, 2, b.Len())

	moved := appt("1", at(10, 11, 0), at(10, 12, 0))
	outcome, err = b.Save(moved)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	assert.Equal(t, 2, b.Len(), "replacing keeps the length")

	list := b.Appointments()
	assert.Equal(t, "1", list[0].ID, "replaced in place")
	assert.Equal(t, at(10, 11, 0), list[0].Start)
}

func TestSaveRejectsInvertedRange(t *testing.T) {
	b := NewBoard(calendar, lima)
	_, err := b.Save(appt("1", at(10, 10, 0), at(10, 9, 0)))
	assert.True(t, errors.IsKind(err, errors.KindBadRequest))

	_, err = b.Save(appt("1", at(10, 10, 0), at(10, 10, 0)))
	assert.Error(t, err)
	assert.Zero(t, b.Len())
}

func TestOverlapsAreAllowed(t *testing.T) {
	b := NewBoard(calendar, lima)
	_, err := b.Save(appt("1", at(10, 9, 0), at(10, 10, 0)))
	require.NoError(t, err)
	_, err = b.Save(appt("2", at(10, 9, 30), at(10, 10, 30)))
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())
}

func TestSelectSlot(t *testing.T) {
	b := NewBoard(calendar, lima)

	d, err := b.SelectSlot(at(10, 9, 0), at(10, 9, 30))
	require.NoError(t, err)
	assert.False(t, d.AllDay)
	assert.Equal(t, model.StatusPending, d.Status)

	d, err = b.SelectSlot(at(10, 0, 0), at(11, 0, 0))
	require.NoError(t, err)
	assert.True(t, d.AllDay)

	_, err = b.SelectSlot(at(10, 9, 30), at(10, 9, 0))
	assert.Error(t, err)
}

func TestSelectEventReturnsCopy(t *testing.T) {
	b := NewBoard(calendar, lima, appt("1", at(10, 9, 0), at(10, 9, 30)))

	a, err := b.SelectEvent("1")
	require.NoError(t, err)
	a.Notes = "changed"

	again, _ := b.SelectEvent("1")
	assert.Empty(t, again.Notes)

	_, err = b.SelectEvent("404")
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestRangeFor(t *testing.T) {
	b := NewBoard(calendar, lima)
	// Friday 10 May 2024
	anchor := at(10, 15, 0)

	week := b.RangeFor(ViewWeek, anchor)
	assert.Equal(t, at(6, 0, 0), week.From)
	assert.Equal(t, at(13, 0, 0), week.To)

	day := b.RangeFor(ViewDay, anchor)
	assert.Equal(t, at(10, 0, 0), day.From)
	assert.Equal(t, at(11, 0, 0), day.To)

	month := b.RangeFor(ViewMonth, anchor)
	assert.Equal(t, time.Date(2024, 4, 29, 0, 0, 0, 0, lima), month.From)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, lima), month.To)

	agenda := b.RangeFor(ViewAgenda, anchor)
	assert.Equal(t, 30*24*time.Hour, agenda.To.Sub(agenda.From))
}

func TestEventsFiltersAndSorts(t *testing.T) {
	b := NewBoard(calendar, lima,
		appt("late", at(10, 16, 0), at(10, 17, 0)),
		appt("early", at(10, 8, 0), at(10, 8, 30)),
		appt("other-day", at(11, 8, 0), at(11, 8, 30)),
	)

	events := b.Events(b.RangeFor(ViewDay, at(10, 0, 0)))
	require.Len(t, events, 2)
	assert.Equal(t, "early", events[0].ID)
	assert.Equal(t, "Pendiente", events[0].Label)
	assert.Equal(t, model.StatusPending.Color(), events[0].Color)
}

func TestParseView(t *testing.T) {
	v, err := ParseView("")
	require.NoError(t, err)
	assert.Equal(t, ViewWeek, v)

	_, err = ParseView("year")
	assert.Error(t, err)
}
