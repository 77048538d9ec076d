package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/action"
	"github.com/jwalitptl/dental-admin/pkg/mailer"
)

// AppointmentLister is the part of the appointment repository the reminder
// job needs
type AppointmentLister interface {
	List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error)
}

type ReminderConfig struct {
	Schedule    string
	CountryCode string
	ClinicName  string
	Location    *time.Location
}

// RunSummary reports what one reminder run did
type RunSummary struct {
	Appointments int
	Emailed      int
	Links        int
	Skipped      int
	Failed       int
}

// ReminderWorker sends next-day appointment reminders
type ReminderWorker struct {
	repo   AppointmentLister
	sender mailer.Sender
	cfg    ReminderConfig
	logger zerolog.Logger
	now    func() time.Time
}

func NewReminderWorker(repo AppointmentLister, sender mailer.Sender, cfg ReminderConfig, logger zerolog.Logger) *ReminderWorker {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &ReminderWorker{
		repo:   repo,
		sender: sender,
		cfg:    cfg,
		logger: logger.With().Str("worker", "reminder").Logger(),
		now:    time.Now,
	}
}

// Schedule registers the job on c using the configured cron spec
func (w *ReminderWorker) Schedule(ctx context.Context, c *cron.Cron) (cron.EntryID, error) {
	id, err := c.AddFunc(w.cfg.Schedule, func() {
		if _, err := w.Run(ctx); err != nil {
			w.logger.Error().Err(err).Msg("reminder run failed")
		}
	})
	if err != nil {
		return 0, fmt.Errorf("invalid reminder schedule %q: %w", w.cfg.Schedule, err)
	}
	return id, nil
}

// Run reminds every non-cancelled appointment of the next calendar day
func (w *ReminderWorker) Run(ctx context.Context) (RunSummary, error) {
	var sum RunSummary

	y, m, d := w.now().In(w.cfg.Location).Date()
	from := time.Date(y, m, d+1, 0, 0, 0, 0, w.cfg.Location)
	to := from.AddDate(0, 0, 1)

	appointments, err := w.repo.List(ctx, model.AppointmentFilter{From: from, To: to.Add(-time.Nanosecond)})
	if err != nil {
		return sum, fmt.Errorf("list appointments for %s: %w", from.Format("2006-01-02"), err)
	}

	for _, a := range appointments {
		if a.Start.Before(from) || !a.Start.Before(to) {
			sum.Skipped++
			continue
		}
		if a.Status == model.StatusCancelled || a.Patient == nil {
			sum.Skipped++
			continue
		}
		sum.Appointments++
		text := action.ReminderText(a, w.cfg.ClinicName)

		if a.Patient.Phone != "" {
			link, err := action.WhatsAppLink(a.Patient.Phone, w.cfg.CountryCode, text)
			if err != nil {
				w.logger.Warn().Err(err).Str("appointment_id", a.ID).Msg("no whatsapp link")
			} else {
				sum.Links++
				w.logger.Info().Str("appointment_id", a.ID).Str("link", link).Msg("whatsapp reminder ready")
			}
		}

		if a.Patient.Email == "" {
			continue
		}
		err := w.sender.Send(ctx, mailer.Message{
			To:       a.Patient.Email,
			Subject:  "Recordatorio de cita - " + w.cfg.ClinicName,
			TextBody: text,
		})
		if err != nil {
			sum.Failed++
			w.logger.Error().Err(err).Str("appointment_id", a.ID).Msg("reminder email failed")
			continue
		}
		sum.Emailed++
	}

	w.logger.Info().
		Int("appointments", sum.Appointments).
		Int("emailed", sum.Emailed).
		Int("links", sum.Links).
		Int("failed", sum.Failed).
		Msg("reminder run finished")
	return sum, nil
}
