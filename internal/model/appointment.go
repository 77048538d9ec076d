package model

import (
	"fmt"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusPending   AppointmentStatus = "pending"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusAttended  AppointmentStatus = "attended"
)

// Statuses lists every appointment status in menu order
var Statuses = []AppointmentStatus{StatusConfirmed, StatusPending, StatusCancelled, StatusAttended}

var statusInfo = map[AppointmentStatus]struct {
	label, color, backend string
}{
	StatusConfirmed: {"Confirmada", "#16a34a", "CONFIRMADA"},
	StatusPending:   {"Pendiente", "#f59e0b", "PENDIENTE"},
	StatusCancelled: {"Cancelada", "#dc2626", "CANCELADA"},
	StatusAttended:  {"Atendida", "#2563eb", "ATENDIDA"},
}

func (s AppointmentStatus) Valid() bool {
	_, ok := statusInfo[s]
	return ok
}

func (s AppointmentStatus) Label() string {
	return statusInfo[s].label
}

func (s AppointmentStatus) Color() string {
	return statusInfo[s].color
}

// BackendCode is the status value the backend API stores
func (s AppointmentStatus) BackendCode() string {
	return statusInfo[s].backend
}

// ParseStatus accepts frontend values, backend codes and Spanish labels
func ParseStatus(v string) (AppointmentStatus, error) {
	v = strings.TrimSpace(v)
	for s, info := range statusInfo {
		if strings.EqualFold(v, string(s)) || strings.EqualFold(v, info.backend) || strings.EqualFold(v, info.label) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown appointment status %q", v)
}

type PatientRef struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

type Reason struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type Appointment struct {
	ID           string            `json:"id"`
	Title        string            `json:"title,omitempty"`
	Start        time.Time         `json:"start"`
	End          time.Time         `json:"end"`
	AllDay       bool              `json:"all_day,omitempty"`
	PatientID    string            `json:"patient_id"`
	DoctorID     string            `json:"doctor_id"`
	ReasonID     string            `json:"reason_id,omitempty"`
	ProcedureIDs []string          `json:"procedure_ids,omitempty"`
	Patient      *PatientRef       `json:"patient,omitempty"`
	Doctor       *Doctor           `json:"doctor,omitempty"`
	Reason       *Reason           `json:"reason,omitempty"`
	Procedures   []Procedure       `json:"procedures,omitempty"`
	Status       AppointmentStatus `json:"status"`
	Notes        string            `json:"notes,omitempty"`
	Color        string            `json:"color,omitempty"`
}

// Validate enforces start < end and a known status
func (a *Appointment) Validate() error {
	if a.Start.IsZero() || a.End.IsZero() {
		return fmt.Errorf("appointment start and end are required")
	}
	if !a.Start.Before(a.End) {
		return fmt.Errorf("appointment must start before it ends (%s >= %s)",
			a.Start.Format("2006-01-02 15:04"), a.End.Format("2006-01-02 15:04"))
	}
	if !a.Status.Valid() {
		return fmt.Errorf("unknown appointment status %q", a.Status)
	}
	return nil
}

// DisplayTitle is the calendar label: explicit title, else patient and reason
func (a *Appointment) DisplayTitle() string {
	if a.Title != "" {
		return a.Title
	}
	var parts []string
	if a.Patient != nil && a.Patient.FullName != "" {
		parts = append(parts, a.Patient.FullName)
	}
	if a.Reason != nil && a.Reason.Description != "" {
		parts = append(parts, a.Reason.Description)
	}
	if len(parts) == 0 {
		return "Cita"
	}
	return strings.Join(parts, " - ")
}

// DisplayColor prefers the explicit color, falling back to the status color
func (a *Appointment) DisplayColor() string {
	if a.Color != "" {
		return a.Color
	}
	return a.Status.Color()
}

// Clone returns a deep copy
func (a *Appointment) Clone() *Appointment {
	cp := *a
	cp.ProcedureIDs = append([]string(nil), a.ProcedureIDs...)
	cp.Procedures = append([]Procedure(nil), a.Procedures...)
	if a.Patient != nil {
		p := *a.Patient
		cp.Patient = &p
	}
	if a.Doctor != nil {
		d := *a.Doctor
		cp.Doctor = &d
	}
	if a.Reason != nil {
		r := *a.Reason
		cp.Reason = &r
	}
	return &cp
}

// RescheduleData is the proposal collected by the reschedule dialog
type RescheduleData struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	DoctorID  string `json:"doctor_id"`
}

// Complete reports whether every field has been chosen
func (r RescheduleData) Complete() bool {
	return r.Date != "" && r.StartTime != "" && r.EndTime != "" && r.DoctorID != ""
}

// AppointmentPatch is the partial update sent to the backend
type AppointmentPatch struct {
	Date           *string            `json:"date,omitempty"`
	StartTime      *string            `json:"start_time,omitempty"`
	EndTime        *string            `json:"end_time,omitempty"`
	DoctorID       *string            `json:"doctor_id,omitempty"`
	Status         *AppointmentStatus `json:"status,omitempty"`
	Notes          *string            `json:"notes,omitempty"`
	CancelOriginal *bool              `json:"cancel_original,omitempty"`
}

// AppointmentFilter bounds a backend list query. The backend compares whole
// days, so both From and To are inclusive dates.
type AppointmentFilter struct {
	From     time.Time
	To       time.Time
	DoctorID string
	Status   AppointmentStatus
}
