package calendar

import (
	"context"
	"time"

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

const boardTTL = 10 * time.Minute

// Calendar is everything the grid needs to render one view
type Calendar struct {
	View     View              `json:"view"`
	Range    Range             `json:"range"`
	Min      string            `json:"min"`
	Max      string            `json:"max"`
	Step     int               `json:"step_minutes"`
	Events   []Event           `json:"events"`
	Messages map[string]string `json:"messages"`
}

type SaveResult struct {
	Appointment *model.Appointment `json:"appointment"`
	Outcome     Outcome            `json:"outcome"`
	Toast       *httputil.Toast    `json:"toast"`
}

type Service struct {
	repo     repository.AppointmentRepository
	boards   *gocache.Cache
	window   timeslot.Window
	loc      *time.Location
	broker   messaging.Broker
	metrics  *metrics.Metrics
	activity activity.Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	window timeslot.Window,
	loc *time.Location,
	broker messaging.Broker,
	m *metrics.Metrics,
	recorder activity.Recorder,
	logger zerolog.Logger,
) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:     repo,
		boards:   gocache.New(boardTTL, 2*boardTTL),
		window:   window,
		loc:      loc,
		broker:   broker,
		metrics:  m,
		activity: recorder,
		logger:   logger.With().Str("component", "calendar").Logger(),
		now:      time.Now,
	}
}

func boardKey(ctx context.Context) string {
	if id := session.UserFromContext(ctx).UUID; id != "" {
		return id
	}
	return "anonymous"
}

// Board returns the caller's board, creating an empty one on first use
func (s *Service) Board(ctx context.Context) *Board {
	key := boardKey(ctx)
	if v, ok := s.boards.Get(key); ok {
		return v.(*Board)
	}
	b := NewBoard(s.window, s.loc)
	// Add fails if a concurrent request won the race; use theirs
	if err := s.boards.Add(key, b, gocache.DefaultExpiration); err != nil {
		if v, ok := s.boards.Get(key); ok {
			return v.(*Board)
		}
	}
	return b
}

// Invalidate drops a user's board so the next read reloads from the backend
func (s *Service) Invalidate(userID string) {
	if userID == "" {
		userID = "anonymous"
	}
	s.boards.Delete(userID)
}

func (s *Service) ensure(ctx context.Context, b *Board, r Range) error {
	if b.Covers(r) {
		return nil
	}
	list, err := s.repo.List(ctx, model.AppointmentFilter{
		From: r.From,
		To:   r.To.Add(-time.Nanosecond),
	})
	if err != nil {
		return err
	}
	b.Load(r, list)
	return nil
}

func (s *Service) Events(ctx context.Context, view View, anchor time.Time) (*Calendar, error) {
	if anchor.IsZero() {
		anchor = s.now()
	}
	b := s.Board(ctx)
	r := b.RangeFor(view, anchor)
	if err := s.ensure(ctx, b, r); err != nil {
		return nil, err
	}

	return &Calendar{
		View:     view,
		Range:    r,
		Min:      s.window.Open.String(),
		Max:      s.window.Close.String(),
		Step:     int(s.window.Step / time.Minute),
		Events:   b.Events(r),
		Messages: Messages(),
	}, nil
}

func (s *Service) SelectSlot(ctx context.Context, start, end time.Time) (Draft, error) {
	return s.Board(ctx).SelectSlot(start, end)
}

// SelectEvent returns the appointment from the board, falling back to the
// backend for appointments outside the loaded range.
func (s *Service) SelectEvent(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := s.Board(ctx).SelectEvent(id)
	if err == nil {
		return a, nil
	}
	return s.repo.Get(ctx, id)
}

// Save persists through the backend and upserts the result on the board
func (s *Service) Save(ctx context.Context, a *model.Appointment) (*SaveResult, error) {
	if err := a.Validate(); err != nil {
		s.metrics.CountSave("invalid")
		return nil, errors.Validation(err.Error(), map[string]string{"end": err.Error()})
	}

	// An id means the appointment exists on the backend, whether or not the
	// board has it loaded.
	var (
		saved   *model.Appointment
		err     error
		outcome = OutcomeCreated
	)
	if a.ID != "" {
		outcome = OutcomeUpdated
		saved, err = s.repo.Update(ctx, a)
	} else {
		saved, err = s.repo.Create(ctx, a)
	}
	if err != nil {
		s.metrics.CountSave("error")
		return nil, err
	}

	if _, err := s.Board(ctx).Save(saved); err != nil {
		return nil, err
	}
	s.metrics.CountSave(string(outcome))

	toast := &httputil.Toast{Type: httputil.ToastSuccess, Title: "Cita creada"}
	eventType := messaging.EventAppointmentCreated
	if outcome == OutcomeUpdated {
		toast.Title = "Cita actualizada"
		eventType = messaging.EventAppointmentUpdated
	}
	toast.Description = saved.DisplayTitle()

	s.activity.Record(ctx, model.ActivitySave, "appointment", saved.ID, string(outcome))
	s.Publish(ctx, eventType, saved.ID, nil)

	return &SaveResult{Appointment: saved, Outcome: outcome, Toast: toast}, nil
}

// SetStatus patches the status on the backend and mirrors it on the board
func (s *Service) SetStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	if err := s.repo.Patch(ctx, id, model.AppointmentPatch{Status: &status}); err != nil {
		return err
	}
	s.Board(ctx).SetStatus(id, status)
	s.activity.Record(ctx, model.ActivityStatusChange, "appointment", id, string(status))
	s.Publish(ctx, messaging.EventAppointmentStatusChanged, id, map[string]interface{}{"status": status})
	return nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Board(ctx).Remove(id)
	s.activity.Record(ctx, model.ActivityDelete, "appointment", id, "")
	s.Publish(ctx, messaging.EventAppointmentDeleted, id, nil)
	return nil
}

// Publish notifies other open calendars. Failures are logged; the local
// operation already succeeded.
func (s *Service) Publish(ctx context.Context, eventType, appointmentID string, data map[string]interface{}) {
	if s.broker == nil {
		return
	}
	evt := messaging.Event{
		Type:          eventType,
		AppointmentID: appointmentID,
		Actor:         session.UserFromContext(ctx).Username,
		Reload:        true,
		OccurredAt:    s.now().UTC(),
		Data:          data,
	}
	status := "ok"
	if err := s.broker.Publish(ctx, messaging.ChannelAppointments, evt); err != nil {
		status = "error"
		s.logger.Error().Err(err).Str("event", eventType).Str("appointment_id", appointmentID).Msg("failed to publish event")
	}
	s.metrics.CountEvent(eventType, status)
}
