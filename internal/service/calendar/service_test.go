package calendar

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
	"github.com/jwalitptl/dental-admin/internal/service/activity"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/jwalitptl/dental-admin/pkg/session"
)

func userCtx(id string) context.Context {
	return session.NewContext(context.Background(), &session.Session{User: session.User{UUID: id, Username: id}})
}

func newService(repo *mocks.AppointmentRepository, broker messaging.Broker) *Service {
	s := NewService(repo, calendar, lima, broker, nil, activity.Nop{}, zerolog.Nop())
	s.now = func() time.Time { return at(10, 12, 0) }
	return s
}

func TestEventsLoadsOncePerRange(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	repo.On("List", mock.Anything, mock.AnythingOfType("model.AppointmentFilter")).
		Return([]*model.Appointment{appt("1", at(10, 9, 0), at(10, 9, 30))}, nil).Once()

	s := newService(repo, nil)
	ctx := userCtx("u-1")

	cal, err := s.Events(ctx, ViewWeek, at(10, 9, 0))
	require.NoError(t, err)
	require.Len(t, cal.Events, 1)
	assert.Equal(t, "07:00", cal.Min)
	assert.Equal(t, "21:00", cal.Max)
	assert.Equal(t, 30, cal.Step)
	assert.Equal(t, "Hoy", cal.Messages["today"])

	// same week again is served from the cached board
	_, err = s.Events(ctx, ViewDay, at(10, 9, 0))
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSaveCreateThenUpdate(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	broker := messaging.NewLocalBroker()
	defer broker.Close()

	ctx := userCtx("u-1")
	sub, err := broker.Subscribe(context.Background(), messaging.ChannelAppointments)
	require.NoError(t, err)

	draft := appt("", at(10, 9, 0), at(10, 9, 30))
	created := appt("42", at(10, 9, 0), at(10, 9, 30))
	repo.On("Create", mock.Anything, draft).Return(created, nil).Once()

	s := newService(repo, broker)
	res, err := s.Save(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, "Cita creada", res.Toast.Title)
	assert.Equal(t, 1, s.Board(ctx).Len())

	select {
	case msg := <-sub:
		assert.Contains(t, string(msg), messaging.EventAppointmentCreated)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}

	edit := appt("42", at(10, 10, 0), at(10, 10, 30))
	repo.On("Update", mock.Anything, edit).Return(edit, nil).Once()

	res, err = s.Save(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, "Cita actualizada", res.Toast.Title)
	assert.Equal(t, 1, s.Board(ctx).Len())
	repo.AssertExpectations(t)
}

func TestSaveExistingAppointmentOnColdBoardUpdates(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	original := appt("7", at(10, 9, 0), at(10, 9, 30))
	repo.On("Get", mock.Anything, "7").Return(original, nil).Once()

	s := newService(repo, nil)
	ctx := userCtx("u-1")

	// not on the board, so the backend lookup serves it
	a, err := s.SelectEvent(ctx, "7")
	require.NoError(t, err)

	moved := a.Clone()
	moved.Start, moved.End = at(10, 10, 0), at(10, 10, 30)
	repo.On("Update", mock.Anything, moved).Return(moved, nil).Once()

	res, err := s.Save(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, "Cita actualizada", res.Toast.Title)
	assert.Equal(t, "7", res.Appointment.ID)
	assert.Equal(t, 1, s.Board(ctx).Len())
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestSaveValidatesBeforeCallingBackend(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	s := newService(repo, nil)

	_, err := s.Save(userCtx("u-1"), appt("", at(10, 10, 0), at(10, 9, 0)))
	assert.True(t, errors.IsKind(err, errors.KindValidation))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSaveBackendErrorLeavesBoardUnchanged(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.Unavailable("down", nil))

	s := newService(repo, nil)
	ctx := userCtx("u-1")
	_, err := s.Save(ctx, appt("", at(10, 9, 0), at(10, 9, 30)))
	assert.True(t, errors.IsKind(err, errors.KindUnavailable))
	assert.Zero(t, s.Board(ctx).Len())
}

func TestBoardsArePerUser(t *testing.T) {
	s := newService(new(mocks.AppointmentRepository), nil)

	_, err := s.Board(userCtx("a")).Save(appt("1", at(10, 9, 0), at(10, 9, 30)))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Board(userCtx("a")).Len())
	assert.Zero(t, s.Board(userCtx("b")).Len())

	s.Invalidate("a")
	assert.Zero(t, s.Board(userCtx("a")).Len())
}

func TestSetStatusAndRemove(t *testing.T) {
	repo := new(mocks.AppointmentRepository)
	cancelled := model.StatusCancelled
	repo.On("Patch", mock.Anything, "1", model.AppointmentPatch{Status: &cancelled}).Return(nil)
	repo.On("Delete", mock.Anything, "1").Return(nil)

	s := newService(repo, nil)
	ctx := userCtx("u-1")
	_, err := s.Board(ctx).Save(appt("1", at(10, 9, 0), at(10, 9, 30)))
	require.NoError(t, err)

	require.NoError(t, s.SetStatus(ctx, "1", model.StatusCancelled))
	a, err := s.SelectEvent(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, a.Status)

	require.NoError(t, s.Remove(ctx, "1"))
	assert.Zero(t, s.Board(ctx).Len())
	repo.AssertExpectations(t)
}
