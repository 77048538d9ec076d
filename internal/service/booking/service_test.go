package booking

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository/mocks"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/mailer"
	"github.com/jwalitptl/dental-admin/pkg/timeslot"
	"github.com/jwalitptl/dental-admin/pkg/validator"
)

type recordingSender struct {
	sent []mailer.Message
}

func (r *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func newService(t *testing.T, repo *mocks.AppointmentRepository, sender mailer.Sender) *Service {
	t.Helper()
	s := NewService(Config{
		Services:   []string{"Limpieza dental", "Ortodoncia"},
		Latency:    time.Second,
		Window:     timeslot.MustWindow("08:00", "20:00", 30*time.Minute),
		Location:   time.UTC,
		ClinicName: "Clínica Sonrisa",
	}, repo, validator.New(), sender, nil, nil, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }
	s.sleep = func(context.Context, time.Duration) error { return nil }
	return s
}

func validRequest() Request {
	return Request{
		Name:     "Ana Torres",
		Email:    "ana@example.com",
		Phone:    "987654321",
		Service:  "Limpieza dental",
		DoctorID: "2",
		Date:     "2024-05-11",
		TimeSlot: "09:30",
	}
}

func combos() *model.Combos {
	return &model.Combos{Doctors: []model.Doctor{{ID: "2", Name: "Dr. Luis Paredes"}}}
}

func TestSubmitAccepted(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	repo.On("Combos", mock.Anything).Return(combos(), nil).Once()
	sender := &recordingSender{}

	conf, err := newService(t, repo, sender).Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Regexp(t, `^RES-[0-9A-F]{8}$`, conf.Reference)
	assert.Equal(t, "¡Solicitud enviada!", conf.Toast.Title)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ana@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].TextBody, conf.Reference)
	repo.AssertExpectations(t)
}

func TestSubmitRequiredFields(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	_, err := newService(t, repo, nil).Submit(context.Background(), Request{Notes: "hola"})

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindValidation, appErr.Kind)
	for _, f := range []string{"name", "email", "phone", "service", "doctor", "date", "time_slot"} {
		assert.Contains(t, appErr.Fields, f)
	}
	assert.NotContains(t, appErr.Fields, "notes")
}

func TestSubmitBusinessRules(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	repo.On("Combos", mock.Anything).Return(combos(), nil)

	req := validRequest()
	req.Service = "Cirugía"
	req.Date = "2024-05-09"
	req.TimeSlot = "20:00"
	req.DoctorID = "99"

	_, err := newService(t, repo, nil).Submit(context.Background(), req)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Len(t, appErr.Fields, 4)
}

func TestSubmitToleratesMissingDoctorList(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	repo.On("Combos", mock.Anything).Return(nil, errors.Unavailable("down", nil))

	_, err := newService(t, repo, nil).Submit(context.Background(), validRequest())
	assert.NoError(t, err)
}

func TestSubmitCancelledDuringLatency(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	repo.On("Combos", mock.Anything).Return(combos(), nil)

	s := newService(t, repo, nil)
	s.sleep = sleepCtx

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Submit(ctx, validRequest())
	assert.Error(t, err)
}

func TestOptionsCachesDoctors(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	repo.On("Combos", mock.Anything).Return(combos(), nil).Once()

	s := newService(t, repo, nil)
	for i := 0; i < 3; i++ {
		opts, err := s.Options(context.Background())
		require.NoError(t, err)
		assert.Len(t, opts.Doctors, 1)
		assert.Equal(t, "08:00", opts.TimeSlots[0])
		assert.Equal(t, "19:30", opts.TimeSlots[len(opts.TimeSlots)-1])
	}
	repo.AssertExpectations(t)
}
