// Package reschedule runs the two-step reschedule dialog: pick a new date,
// time and doctor, then confirm with the choice of cancelling the original.
package reschedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/service/activity"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
	"github.com/jwalitptl/dental-admin/pkg/session"
	"github.com/jwalitptl/dental-admin/pkg/timeslot"
)

const DialogTTL = 30 * time.Minute

// Calendar is the part of the calendar service a confirmed reschedule touches
type Calendar interface {
	Publish(ctx context.Context, eventType, appointmentID string, data map[string]interface{})
	Invalidate(userID string)
}

// Selection carries the picker fields changed in one request
type Selection struct {
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	DoctorID  *string `json:"doctor_id"`
}

type ConfirmResult struct {
	AppointmentID string          `json:"appointment_id"`
	Reload        bool            `json:"reload"`
	Toast         *httputil.Toast `json:"toast"`
}

type Service struct {
	repo     repository.AppointmentRepository
	calendar Calendar
	dialogs  *gocache.Cache
	window   timeslot.Window
	loc      *time.Location
	metrics  *metrics.Metrics
	activity activity.Recorder
	logger   zerolog.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	cal Calendar,
	window timeslot.Window,
	loc *time.Location,
	m *metrics.Metrics,
	recorder activity.Recorder,
	logger zerolog.Logger,
) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		repo:     repo,
		calendar: cal,
		dialogs:  gocache.New(DialogTTL, time.Minute),
		window:   window,
		loc:      loc,
		metrics:  m,
		activity: recorder,
		logger:   logger.With().Str("component", "reschedule").Logger(),
	}
	s.dialogs.OnEvicted(func(string, interface{}) {
		s.metrics.SetOpenDialogs(s.dialogs.ItemCount())
	})
	return s
}

func (s *Service) Window() timeslot.Window {
	return s.window
}

// Open loads the appointment and the doctor list. On failure no dialog is
// created and the error is returned to the caller.
func (s *Service) Open(ctx context.Context, appointmentID string) (*View, error) {
	original, err := s.repo.Get(ctx, appointmentID)
	if err != nil {
		s.logger.Error().Err(err).Str("appointment_id", appointmentID).Msg("failed to load appointment for reschedule")
		return nil, err
	}
	combos, err := s.repo.Combos(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load doctors for reschedule")
		return nil, err
	}

	d := newDialog(uuid.NewString(), session.UserFromContext(ctx).UUID, original, combos.Doctors, s.window, s.loc)
	s.dialogs.Set(d.ID, d, gocache.DefaultExpiration)
	s.metrics.SetOpenDialogs(s.dialogs.ItemCount())
	s.metrics.CountReschedule("opened")

	return d.View(), nil
}

func (s *Service) dialog(ctx context.Context, id string) (*Dialog, error) {
	v, ok := s.dialogs.Get(id)
	if !ok {
		return nil, errors.NotFound("reschedule dialog", nil)
	}
	d := v.(*Dialog)
	if d.Owner != session.UserFromContext(ctx).UUID {
		return nil, errors.NotFound("reschedule dialog", nil)
	}
	return d, nil
}

// with runs fn on the locked dialog and returns its refreshed view
func (s *Service) with(ctx context.Context, id string, fn func(d *Dialog) error) (*View, error) {
	d, err := s.dialog(ctx, id)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := fn(d); err != nil {
		return nil, err
	}
	s.dialogs.Set(d.ID, d, gocache.DefaultExpiration)
	return d.View(), nil
}

func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	return s.with(ctx, id, func(*Dialog) error { return nil })
}

// Update applies the picker changes in order date, start, end, doctor so that
// a new start clears a stale end before a new end is validated against it.
// A rejected field leaves the dialog data as it was before the call.
func (s *Service) Update(ctx context.Context, id string, sel Selection) (*View, error) {
	return s.with(ctx, id, func(d *Dialog) error {
		prev := d.Data
		if err := applySelection(d, sel); err != nil {
			d.Data = prev
			return err
		}
		return nil
	})
}

func applySelection(d *Dialog, sel Selection) error {
	if sel.Date != nil {
		if err := d.SetDate(*sel.Date); err != nil {
			return err
		}
	}
	if sel.StartTime != nil {
		if err := d.SetStart(*sel.StartTime); err != nil {
			return err
		}
	}
	if sel.EndTime != nil {
		if err := d.SetEnd(*sel.EndTime); err != nil {
			return err
		}
	}
	if sel.DoctorID != nil {
		if err := d.SetDoctor(*sel.DoctorID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Next(ctx context.Context, id string) (*View, error) {
	return s.with(ctx, id, func(d *Dialog) error { return d.Next() })
}

func (s *Service) Back(ctx context.Context, id string) (*View, error) {
	return s.with(ctx, id, func(d *Dialog) error { return d.Back() })
}

func (s *Service) SetShouldDelete(ctx context.Context, id string, v bool) (*View, error) {
	return s.with(ctx, id, func(d *Dialog) error { return d.SetShouldDelete(v) })
}

// Confirm sends the update. On success the dialog closes and the caller must
// reload; on failure the dialog stays in confirming so the user can retry.
func (s *Service) Confirm(ctx context.Context, id string) (*ConfirmResult, error) {
	d, err := s.dialog(ctx, id)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.requireState(StateConfirming); err != nil {
		return nil, err
	}

	appointmentID := d.Original.ID
	if err := s.repo.Patch(ctx, appointmentID, d.Patch()); err != nil {
		s.metrics.CountReschedule("failed")
		s.logger.Error().Err(err).Str("appointment_id", appointmentID).Msg("reschedule update failed")
		return nil, err
	}

	d.State = StateClosed
	s.dialogs.Delete(d.ID)
	s.metrics.SetOpenDialogs(s.dialogs.ItemCount())
	s.metrics.CountReschedule("confirmed")

	s.activity.Record(ctx, model.ActivityReschedule, "appointment", appointmentID,
		d.Data.Date+" "+d.Data.StartTime+"-"+d.Data.EndTime)
	s.calendar.Invalidate(d.Owner)
	s.calendar.Publish(ctx, messaging.EventAppointmentRescheduled, appointmentID, map[string]interface{}{
		"date":               d.Data.Date,
		"start_time":         d.Data.StartTime,
		"end_time":           d.Data.EndTime,
		"doctor_id":          d.Data.DoctorID,
		"original_cancelled": d.ShouldDelete,
	})

	toast := &httputil.Toast{Type: httputil.ToastSuccess, Title: "Cita reprogramada"}
	if d.ShouldDelete {
		toast.Description = "La cita original fue cancelada"
	}
	return &ConfirmResult{AppointmentID: appointmentID, Reload: true, Toast: toast}, nil
}

// Close discards the dialog without touching the appointment
func (s *Service) Close(ctx context.Context, id string) error {
	d, err := s.dialog(ctx, id)
	if err != nil {
		return err
	}
	s.dialogs.Delete(d.ID)
	s.metrics.SetOpenDialogs(s.dialogs.ItemCount())
	s.metrics.CountReschedule("cancelled")
	return nil
}
