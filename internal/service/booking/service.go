// Package booking handles the public booking form. Requests are validated and
// acknowledged but not persisted; the clinic calls the patient back.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
	"github.com/jwalitptl/dental-admin/pkg/mailer"
	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
	"github.com/jwalitptl/dental-admin/pkg/timeslot"
	"github.com/jwalitptl/dental-admin/pkg/validator"
)

const combosTTL = 5 * time.Minute

type Request struct {
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone"`
	Service  string `json:"service" validate:"required"`
	DoctorID string `json:"doctor" validate:"required"`
	Date     string `json:"date" validate:"required,date"`
	TimeSlot string `json:"time_slot" validate:"required,clock"`
	Notes    string `json:"notes" validate:"max=500"`
}

type Confirmation struct {
	Reference string          `json:"reference"`
	Toast     *httputil.Toast `json:"toast"`
}

type Options struct {
	Services  []string       `json:"services"`
	Doctors   []model.Doctor `json:"doctors"`
	TimeSlots []string       `json:"time_slots"`
}

type CombosSource interface {
	Combos(ctx context.Context) (*model.Combos, error)
}

type Config struct {
	Services   []string
	Latency    time.Duration
	Window     timeslot.Window
	Location   *time.Location
	ClinicName string
}

type Service struct {
	cfg       Config
	combos    CombosSource
	cache     *gocache.Cache
	validator *validator.Validator
	mailer    mailer.Sender
	broker    messaging.Broker
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewService(cfg Config, combos CombosSource, v *validator.Validator, sender mailer.Sender,
	broker messaging.Broker, m *metrics.Metrics, logger zerolog.Logger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Service{
		cfg:       cfg,
		combos:    combos,
		cache:     gocache.New(combosTTL, 2*combosTTL),
		validator: v,
		mailer:    sender,
		broker:    broker,
		metrics:   m,
		logger:    logger.With().Str("component", "booking").Logger(),
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// doctors serves the combos from cache; the public page loads them often
func (s *Service) doctors(ctx context.Context) ([]model.Doctor, error) {
	if v, ok := s.cache.Get("doctors"); ok {
		return v.([]model.Doctor), nil
	}
	combos, err := s.combos.Combos(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault("doctors", combos.Doctors)
	return combos.Doctors, nil
}

func (s *Service) Options(ctx context.Context) (*Options, error) {
	docs, err := s.doctors(ctx)
	if err != nil {
		return nil, err
	}
	return &Options{
		Services:  s.cfg.Services,
		Doctors:   docs,
		TimeSlots: s.cfg.Window.StartOptions(),
	}, nil
}

func (s *Service) Submit(ctx context.Context, req Request) (*Confirmation, error) {
	if err := s.validate(ctx, &req); err != nil {
		s.metrics.CountBooking("invalid")
		return nil, err
	}

	if err := s.sleep(ctx, s.cfg.Latency); err != nil {
		return nil, errors.Unavailable("La solicitud fue cancelada", err)
	}

	ref := "RES-" + strings.ToUpper(uuid.NewString()[:8])
	s.logger.Info().
		Str("reference", ref).
		Str("service", req.Service).
		Str("doctor_id", req.DoctorID).
		Str("date", req.Date).
		Str("time_slot", req.TimeSlot).
		Msg("booking requested")

	s.notify(ctx, ref, req)
	s.metrics.CountBooking("accepted")

	return &Confirmation{
		Reference: ref,
		Toast: &httputil.Toast{
			Type:        httputil.ToastSuccess,
			Title:       "¡Solicitud enviada!",
			Description: fmt.Sprintf("Le confirmaremos su cita del %s a las %s.", req.Date, req.TimeSlot),
		},
	}, nil
}

func (s *Service) validate(ctx context.Context, req *Request) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	fields := map[string]string{}
	if !contains(s.cfg.Services, req.Service) {
		fields["service"] = "Seleccione un servicio de la lista"
	}

	day, _ := time.ParseInLocation("2006-01-02", req.Date, s.cfg.Location)
	now := s.now().In(s.cfg.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)
	if day.Before(today) {
		fields["date"] = "La fecha no puede estar en el pasado"
	}
	if !s.cfg.Window.IsStartOption(req.TimeSlot) {
		fields["time_slot"] = "Seleccione un horario disponible"
	}

	// the doctor list is advisory here; an unreachable backend must not block
	// a request that is only acknowledged
	if docs, err := s.doctors(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("doctor list unavailable, skipping doctor check")
	} else if !hasDoctor(docs, req.DoctorID) {
		fields["doctor"] = "Seleccione un doctor de la lista"
	}

	if len(fields) > 0 {
		return errors.Validation("Revise los campos del formulario", fields)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, ref string, req Request) {
	if s.mailer != nil {
		err := s.mailer.Send(ctx, mailer.Message{
			To:      req.Email,
			Subject: fmt.Sprintf("Solicitud de cita %s - %s", ref, s.cfg.ClinicName),
			TextBody: fmt.Sprintf(
				"Hola %s,\n\nRecibimos su solicitud de %s para el %s a las %s.\n"+
					"Nos comunicaremos al %s para confirmarla.\n\nReferencia: %s\n%s",
				req.Name, req.Service, req.Date, req.TimeSlot, req.Phone, ref, s.cfg.ClinicName),
		})
		if err != nil {
			s.logger.Error().Err(err).Str("reference", ref).Msg("failed to send booking confirmation")
		}
	}

	if s.broker != nil {
		err := s.broker.Publish(ctx, messaging.ChannelAppointments, messaging.Event{
			Type:       messaging.EventBookingRequested,
			OccurredAt: s.now().UTC(),
			Data: map[string]interface{}{
				"reference": ref,
				"service":   req.Service,
				"doctor_id": req.DoctorID,
				"date":      req.Date,
				"time_slot": req.TimeSlot,
			},
		})
		status := "ok"
		if err != nil {
			status = "error"
			s.logger.Error().Err(err).Msg("failed to publish booking event")
		}
		s.metrics.CountEvent(messaging.EventBookingRequested, status)
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func hasDoctor(docs []model.Doctor, id string) bool {
	for _, d := range docs {
		if d.ID == id {
			return true
		}
	}
	return false
}
