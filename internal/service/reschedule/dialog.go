package reschedule

import (
	"sync"
	"time"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/timeslot"
)

type State string

const (
	StateClosed     State = "closed"
	StatePicking    State = "picking"
	StateConfirming State = "confirming"
)

const dateLayout = "2006-01-02"

// Summary is one side of the confirmation diff
type Summary struct {
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	DoctorID    string `json:"doctor_id"`
	DoctorName  string `json:"doctor_name"`
	PatientName string `json:"patient_name,omitempty"`
}

type Diff struct {
	Original Summary `json:"original"`
	Proposed Summary `json:"proposed"`
}

// Dialog is the two-step reschedule flow for one appointment:
// picking -> confirming -> closed, with Back returning to picking.
type Dialog struct {
	mu sync.Mutex

	ID           string
	Owner        string
	State        State
	Original     *model.Appointment
	Doctors      []model.Doctor
	Data         model.RescheduleData
	ShouldDelete bool

	window timeslot.Window
	loc    *time.Location
}

func newDialog(id, owner string, original *model.Appointment, doctors []model.Doctor, window timeslot.Window, loc *time.Location) *Dialog {
	d := &Dialog{
		ID:       id,
		Owner:    owner,
		State:    StatePicking,
		Original: original,
		Doctors:  doctors,
		window:   window,
		loc:      loc,
	}

	// pre-fill the pickers with the current values when they are selectable
	start := original.Start.In(loc)
	d.Data.Date = start.Format(dateLayout)
	if s := timeslot.ClockOf(start).String(); window.IsStartOption(s) {
		d.Data.StartTime = s
		if e := timeslot.ClockOf(original.End.In(loc)).String(); window.ValidEnd(s, e) {
			d.Data.EndTime = e
		}
	}
	if d.hasDoctor(original.DoctorID) {
		d.Data.DoctorID = original.DoctorID
	}
	return d
}

func (d *Dialog) requireState(want State) error {
	if d.State != want {
		return errors.Conflict("La reprogramación no está en el paso correcto", nil)
	}
	return nil
}

func (d *Dialog) hasDoctor(id string) bool {
	for _, doc := range d.Doctors {
		if doc.ID == id {
			return true
		}
	}
	return false
}

func (d *Dialog) doctorName(id string) string {
	for _, doc := range d.Doctors {
		if doc.ID == id {
			return doc.Name
		}
	}
	return ""
}

func (d *Dialog) SetDate(date string) error {
	if err := d.requireState(StatePicking); err != nil {
		return err
	}
	if _, err := time.ParseInLocation(dateLayout, date, d.loc); err != nil {
		return errors.Validation("Fecha inválida", map[string]string{"date": "Use el formato AAAA-MM-DD"})
	}
	d.Data.Date = date
	return nil
}

// SetStart changes the start time and clears an end time that is no longer
// strictly after it.
func (d *Dialog) SetStart(start string) error {
	if err := d.requireState(StatePicking); err != nil {
		return err
	}
	if !d.window.IsStartOption(start) {
		return errors.Validation("Hora de inicio inválida", map[string]string{
			"start_time": "Seleccione una hora entre " + d.window.String(),
		})
	}
	d.Data.StartTime = start
	if d.Data.EndTime != "" && !d.window.ValidEnd(start, d.Data.EndTime) {
		d.Data.EndTime = ""
	}
	return nil
}

func (d *Dialog) SetEnd(end string) error {
	if err := d.requireState(StatePicking); err != nil {
		return err
	}
	if d.Data.StartTime == "" {
		return errors.Validation("Seleccione primero la hora de inicio", map[string]string{
			"end_time": "Seleccione primero la hora de inicio",
		})
	}
	if !d.window.ValidEnd(d.Data.StartTime, end) {
		return errors.Validation("Hora de fin inválida", map[string]string{
			"end_time": "La hora de fin debe ser posterior a la de inicio",
		})
	}
	d.Data.EndTime = end
	return nil
}

func (d *Dialog) SetDoctor(id string) error {
	if err := d.requireState(StatePicking); err != nil {
		return err
	}
	if !d.hasDoctor(id) {
		return errors.Validation("Doctor inválido", map[string]string{"doctor_id": "Seleccione un doctor de la lista"})
	}
	d.Data.DoctorID = id
	return nil
}

func (d *Dialog) StartOptions() []string {
	return d.window.StartOptions()
}

// EndOptions is empty until a start time is chosen
func (d *Dialog) EndOptions() []string {
	if d.Data.StartTime == "" {
		return []string{}
	}
	opts, err := d.window.EndOptions(d.Data.StartTime)
	if err != nil {
		return []string{}
	}
	return opts
}

func (d *Dialog) CanNext() bool {
	return d.State == StatePicking && d.Data.Complete()
}

func (d *Dialog) Next() error {
	if err := d.requireState(StatePicking); err != nil {
		return err
	}
	if !d.Data.Complete() {
		fields := map[string]string{}
		if d.Data.Date == "" {
			fields["date"] = "Requerido"
		}
		if d.Data.StartTime == "" {
			fields["start_time"] = "Requerido"
		}
		if d.Data.EndTime == "" {
			fields["end_time"] = "Requerido"
		}
		if d.Data.DoctorID == "" {
			fields["doctor_id"] = "Requerido"
		}
		return errors.Validation("Complete fecha, horario y doctor", fields)
	}
	d.State = StateConfirming
	return nil
}

func (d *Dialog) Back() error {
	if err := d.requireState(StateConfirming); err != nil {
		return err
	}
	d.State = StatePicking
	return nil
}

func (d *Dialog) SetShouldDelete(v bool) error {
	if err := d.requireState(StateConfirming); err != nil {
		return err
	}
	d.ShouldDelete = v
	return nil
}

func (d *Dialog) Diff() Diff {
	o := d.Original
	original := Summary{
		Date:      o.Start.In(d.loc).Format(dateLayout),
		StartTime: timeslot.ClockOf(o.Start.In(d.loc)).String(),
		EndTime:   timeslot.ClockOf(o.End.In(d.loc)).String(),
		DoctorID:  o.DoctorID,
	}
	original.DoctorName = d.doctorName(o.DoctorID)
	if original.DoctorName == "" && o.Doctor != nil {
		original.DoctorName = o.Doctor.Name
	}
	if o.Patient != nil {
		original.PatientName = o.Patient.FullName
	}

	return Diff{
		Original: original,
		Proposed: Summary{
			Date:        d.Data.Date,
			StartTime:   d.Data.StartTime,
			EndTime:     d.Data.EndTime,
			DoctorID:    d.Data.DoctorID,
			DoctorName:  d.doctorName(d.Data.DoctorID),
			PatientName: original.PatientName,
		},
	}
}

// Patch is the backend update sent on confirm
func (d *Dialog) Patch() model.AppointmentPatch {
	date, start, end, doctor := d.Data.Date, d.Data.StartTime, d.Data.EndTime, d.Data.DoctorID
	del := d.ShouldDelete
	return model.AppointmentPatch{
		Date:           &date,
		StartTime:      &start,
		EndTime:        &end,
		DoctorID:       &doctor,
		CancelOriginal: &del,
	}
}

// View is the JSON shape rendered by the dialog
type View struct {
	ID            string               `json:"id"`
	AppointmentID string               `json:"appointment_id"`
	State         State                `json:"state"`
	Data          model.RescheduleData `json:"data"`
	Doctors       []model.Doctor       `json:"doctors"`
	StartOptions  []string             `json:"start_options"`
	EndOptions    []string             `json:"end_options"`
	CanNext       bool                 `json:"can_next"`
	ShouldDelete  bool                 `json:"should_delete"`
	Diff          *Diff                `json:"diff,omitempty"`
}

func (d *Dialog) View() *View {
	v := &View{
		ID:            d.ID,
		AppointmentID: d.Original.ID,
		State:         d.State,
		Data:          d.Data,
		Doctors:       d.Doctors,
		StartOptions:  d.StartOptions(),
		EndOptions:    d.EndOptions(),
		CanNext:       d.CanNext(),
		ShouldDelete:  d.ShouldDelete,
	}
	if d.State == StateConfirming {
		diff := d.Diff()
		v.Diff = &diff
	}
	return v
}
