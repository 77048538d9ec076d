package action

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/reschedule"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

// Calendar is the calendar service as seen by actions
type Calendar interface {
	SelectEvent(ctx context.Context, id string) (*model.Appointment, error)
	SetStatus(ctx context.Context, id string, status model.AppointmentStatus) error
	Remove(ctx context.Context, id string) error
}

type Rescheduler interface {
	Open(ctx context.Context, appointmentID string) (*reschedule.View, error)
}

// Result tells the UI what happened; only the fields relevant to the kind
// are set.
type Result struct {
	Kind        Kind               `json:"kind"`
	Appointment *model.Appointment `json:"appointment,omitempty"`
	Link        string             `json:"link,omitempty"`
	Redirect    string             `json:"redirect,omitempty"`
	Reschedule  *reschedule.View   `json:"reschedule,omitempty"`
	Removed     bool               `json:"removed,omitempty"`
	Toast       *httputil.Toast    `json:"toast,omitempty"`
}

type Service struct {
	calendar    Calendar
	rescheduler Rescheduler
	countryCode string
	clinicName  string
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

func NewService(cal Calendar, r Rescheduler, countryCode, clinicName string, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		calendar:    cal,
		rescheduler: r,
		countryCode: countryCode,
		clinicName:  clinicName,
		metrics:     m,
		logger:      logger.With().Str("component", "action").Logger(),
	}
}

func (s *Service) Menu(ctx context.Context, appointmentID string) (*model.Appointment, []Item, error) {
	a, err := s.calendar.SelectEvent(ctx, appointmentID)
	if err != nil {
		return nil, nil, err
	}
	return a, Menu(a), nil
}

func (s *Service) Execute(ctx context.Context, appointmentID string, kind Kind) (*Result, error) {
	a, err := s.calendar.SelectEvent(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	res, err := s.execute(ctx, a, kind)
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.CountAction(string(kind), status)
	return res, err
}

func (s *Service) execute(ctx context.Context, a *model.Appointment, kind Kind) (*Result, error) {
	res := &Result{Kind: kind}

	switch kind {
	case KindConfirm, KindPending, KindCancel, KindAttend:
		to := kind.TargetStatus()
		if !CanTransition(a.Status, to) {
			return nil, errors.Conflict("Cambio de estado no permitido", nil)
		}
		if err := s.calendar.SetStatus(ctx, a.ID, to); err != nil {
			return nil, err
		}
		a.Status = to
		res.Appointment = a
		res.Toast = &httputil.Toast{Type: httputil.ToastSuccess, Title: "Cita " + strings.ToLower(to.Label())}

	case KindReminder:
		if a.Patient == nil || a.Patient.Phone == "" {
			return nil, errors.BadRequest("El paciente no tiene un teléfono registrado", nil)
		}
		link, err := WhatsAppLink(a.Patient.Phone, s.countryCode, ReminderText(a, s.clinicName))
		if err != nil {
			return nil, errors.BadRequest("El teléfono del paciente no es válido", err)
		}
		res.Link = link

	case KindViewPatient:
		if a.PatientID == "" {
			return nil, errors.NotFound("patient", nil)
		}
		res.Redirect = "/pacientes/" + a.PatientID

	case KindReschedule:
		v, err := s.rescheduler.Open(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		res.Reschedule = v

	case KindDelete:
		if err := s.calendar.Remove(ctx, a.ID); err != nil {
			return nil, err
		}
		res.Removed = true
		res.Toast = &httputil.Toast{Type: httputil.ToastSuccess, Title: "Cita eliminada"}

	default:
		return nil, errors.BadRequest("Acción desconocida", nil)
	}

	s.logger.Debug().Str("kind", string(kind)).Str("appointment_id", a.ID).Msg("action executed")
	return res, nil
}
