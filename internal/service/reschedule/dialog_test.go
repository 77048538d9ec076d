package reschedule

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
	lima    = time.FixedZone("PET", -5*3600)
	hours   = timeslot.MustWindow("08:00", "20:00", 30*time.Minute)
	doctors = []model.Doctor{{ID: "2", Name: "Dr. Luis Paredes"}, {ID: "4", Name: "Dra. Carla Ruiz"}}
)

func original() *model.Appointment {
	return &model.Appointment{
		ID:       "7",
		Start:    time.Date(2024, 5, 10, 9, 0, 0, 0, lima),
		End:      time.Date(2024, 5, 10, 9, 30, 0, 0, lima),
		DoctorID: "2",
		Status:   model.StatusConfirmed,
		Patient:  &model.PatientRef{ID: "1", FullName: "Ana Torres"},
	}
}

func TestNewDialogPrefillsCurrentValues(t *testing.T) {
	d := newDialog("d1", "u1", original(), doctors, hours, lima)

	assert.Equal(t, StatePicking, d.State)
	assert.Equal(t, model.RescheduleData{Date: "2024-05-10", StartTime: "09:00", EndTime: "09:30", DoctorID: "2"}, d.Data)
	assert.True(t, d.CanNext())
}

func TestNewDialogSkipsValuesOutsideWindow(t *testing.T) {
	o := original()
	o.Start = time.Date(2024, 5, 10, 7, 0, 0, 0, lima)
	o.End = time.Date(2024, 5, 10, 7, 30, 0, 0, lima)
	o.DoctorID = "99"

	d := newDialog("d1", "u1", o, doctors, hours, lima)
	assert.Empty(t, d.Data.StartTime)
	assert.Empty(t, d.Data.EndTime)
	assert.Empty(t, d.Data.DoctorID)
	assert.False(t, d.CanNext())
}

func TestEndOptionsStrictlyAfterStart(t *testing.T) {
	d := newDialog("d1", "u1", original(), doctors, hours, lima)
	require.NoError(t, d.SetStart("19:00"))

	assert.Equal(t, []string{"19:30", "20:00"}, d.EndOptions())
	for _, opt := range d.EndOptions() {
		assert.Greater(t, opt, "19:00")
	}
}

func TestChangingStartClearsInvalidEnd(t *testing.T) {
	d := newDialog("d1", "u1", original(), doctors, hours, lima)
	require.NoError(t, d.SetStart("10:00"))
	require.NoError(t, d.SetEnd("11:00"))

	require.NoError(t, d.SetStart("10:30"))
	assert.Equal(t, "11:00", d.Data.EndTime, "still after the new start")

	require.NoError(t, d.SetStart("11:00"))
	assert.Empty(t, d.Data.EndTime, "end equal to start is cleared")
	assert.False(t, d.CanNext())

	require.NoError(t, d.SetEnd("11:30"))
	require.NoError(t, d.SetStart("12:00"))
	assert.Empty(t, d.Data.EndTime)
}

func TestSetEndValidation(t *testing.T) {
	d := newDialog("d1", "u1", original(), doctors, hours, lima)
	require.NoError(t, d.SetStart("10:00"))

	assert.True(t, errors.IsKind(d.SetEnd("10:00"), errors.KindValidation))
	assert.True(t, errors.IsKind(d.SetEnd("09:30"), errors.KindValidation))
	assert.True(t, errors.IsKind(d.SetEnd("20:30"), errors.KindValidation))
	assert.True(t, errors.IsKind(d.SetEnd("10:15"), errors.KindValidation))
	assert.NoError(t, d.SetEnd("20:00"))
}

func TestSetStartRejectsClosingMark(t *testing.T) {
	d := newDialog("d1", "u1", original(), doctors, hours, lima)
	assert.Error(t, d.SetStart("20:00"))
	assert.Error(t, d.SetStart("07:30"))
	assert.Error(t, d.SetDoctor("99"))
	assert.Error(t, d.SetDate("10/05/2024"))
}

func TestNextRequiresAllFields(t *testing.T) {
	o := original()
	o.DoctorID = ""
	d := newDialog("d1", "u1", o, doctors, hours, lima)

	err := d.Next()
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "doctor_id")
	assert.Equal(t, StatePicking, d.State)

	require.NoError(t, d.SetDoctor("4"))
	require.NoError(t, d.Next())
	assert.Equal(t, StateConfirming, d.State)

	// pickers are frozen while confirming
	assert.True(t, errors.IsKind(d.SetStart("10:00"), errors.KindConflict))

	require.NoError(t, d.Back())
	assert.Equal(t, StatePicking, d.State)
	assert.Error(t, d.SetShouldDelete(true), "toggle lives on the confirm step")
}

func TestDiffAndPatch(t *testing.T) {
	d := newDialog("d1", "u1", original(), doctors, hours, lima)
	require.NoError(t, d.SetDate("2024-05-11"))
	require.NoError(t, d.SetStart("15:00"))
	require.NoError(t, d.SetEnd("16:00"))
	require.NoError(t, d.SetDoctor("4"))
	require.NoError(t, d.Next())
	require.NoError(t, d.SetShouldDelete(true))

	diff := d.Diff()
	assert.Equal(t, Summary{
		Date: "2024-05-10", StartTime: "09:00", EndTime: "09:30",
		DoctorID: "2", DoctorName: "Dr. Luis Paredes", PatientName: "Ana Torres",
	}, diff.Original)
	assert.Equal(t, "Dra. Carla Ruiz", diff.Proposed.DoctorName)
	assert.Equal(t, "15:00", diff.Proposed.StartTime)

	p := d.Patch()
	assert.Equal(t, "2024-05-11", *p.Date)
	assert.Equal(t, "16:00", *p.EndTime)
	assert.True(t, *p.CancelOriginal)

	v := d.View()
	require.NotNil(t, v.Diff)
	assert.True(t, v.ShouldDelete)
}
