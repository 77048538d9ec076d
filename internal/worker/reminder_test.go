package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository/mocks"
	"github.com/jwalitptl/dental-admin/pkg/mailer"
)

type captureSender struct {
	sent []mailer.Message
	err  error
}

func (s *captureSender) Send(_ context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestRunRemindsTomorrow(t *testing.T) {
	lima := time.FixedZone("PET", -5*3600)
	tomorrow := time.Date(2024, 5, 8, 0, 0, 0, 0, lima)

	repo := new(mocks.AppointmentRepository)
	repo.On("List", mock.Anything, model.AppointmentFilter{From: tomorrow, To: tomorrow.AddDate(0, 0, 1).Add(-time.Nanosecond)}).Return([]*model.Appointment{
		{ID: "1", Status: model.StatusConfirmed, Start: tomorrow.Add(9 * time.Hour),
			Patient: &model.PatientRef{FullName: "Ana Torres", Phone: "987 654 321", Email: "ana@example.com"}},
		{ID: "2", Status: model.StatusCancelled, Start: tomorrow.Add(10 * time.Hour),
			Patient: &model.PatientRef{FullName: "Carlos Mendoza", Email: "carlos@example.com"}},
		{ID: "3", Status: model.StatusPending, Start: tomorrow.Add(11 * time.Hour),
			Patient: &model.PatientRef{FullName: "Lucía Huamán", Phone: "912345678"}},
	}, nil)

	sender := &captureSender{}
	w := NewReminderWorker(repo, sender, ReminderConfig{CountryCode: "51", ClinicName: "Sonrisa", Location: lima}, zerolog.Nop())
	w.now = func() time.Time { return time.Date(2024, 5, 7, 18, 0, 0, 0, lima) }

	sum, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Appointments: 2, Emailed: 1, Links: 2, Skipped: 1}, sum)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ana@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].TextBody, "Ana Torres")
	assert.Contains(t, sender.sent[0].TextBody, "08/05/2024")
	repo.AssertExpectations(t)
}

func TestRunEmailFailureCounted(t *testing.T) {
	now := time.Date(2024, 5, 7, 18, 0, 0, 0, time.UTC)
	repo := new(mocks.AppointmentRepository)
	repo.On("List", mock.Anything, mock.Anything).Return([]*model.Appointment{
		{ID: "1", Status: model.StatusConfirmed, Start: now.Add(16 * time.Hour), Patient: &model.PatientRef{Email: "ana@example.com"}},
	}, nil)

	w := NewReminderWorker(repo, &captureSender{err: fmt.Errorf("smtp down")}, ReminderConfig{ClinicName: "Sonrisa", Location: time.UTC}, zerolog.Nop())
	w.now = func() time.Time { return now }
	sum, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 0, sum.Emailed)
}

func TestRunQueriesOnlyTheNextDay(t *testing.T) {
	lima := time.FixedZone("PET", -5*3600)
	tomorrow := time.Date(2024, 5, 10, 0, 0, 0, 0, lima)

	var filter model.AppointmentFilter
	repo := new(mocks.AppointmentRepository)
	repo.On("List", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		filter = args.Get(1).(model.AppointmentFilter)
	}).Return([]*model.Appointment{
		{ID: "1", Status: model.StatusConfirmed, Start: tomorrow.Add(9 * time.Hour),
			Patient: &model.PatientRef{FullName: "Ana Torres", Email: "ana@example.com"}},
		{ID: "2", Status: model.StatusConfirmed, Start: tomorrow.AddDate(0, 0, 1).Add(9 * time.Hour),
			Patient: &model.PatientRef{FullName: "Carlos Mendoza", Email: "carlos@example.com"}},
	}, nil)

	sender := &captureSender{}
	w := NewReminderWorker(repo, sender, ReminderConfig{ClinicName: "Sonrisa", Location: lima}, zerolog.Nop())
	w.now = func() time.Time { return time.Date(2024, 5, 9, 18, 0, 0, 0, lima) }

	sum, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024-05-10", filter.From.In(lima).Format("2006-01-02"))
	assert.Equal(t, "2024-05-10", filter.To.In(lima).Format("2006-01-02"))
	assert.Equal(t, 1, sum.Appointments)
	assert.Equal(t, 1, sum.Skipped)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ana@example.com", sender.sent[0].To)
}

func TestRunListError(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("backend down"))

	w := NewReminderWorker(repo, &captureSender{}, ReminderConfig{}, zerolog.Nop())
	_, err := w.Run(context.Background())
	assert.ErrorContains(t, err, "backend down")
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	w := NewReminderWorker(new(mocks.AppointmentRepository), &captureSender{}, ReminderConfig{Schedule: "every day"}, zerolog.Nop())
	_, err := w.Schedule(context.Background(), cron.New())
	assert.Error(t, err)

	w.cfg.Schedule = "0 18 * * *"
	_, err = w.Schedule(context.Background(), cron.New())
	assert.NoError(t, err)
}
