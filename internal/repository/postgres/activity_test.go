package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
)

func newMock(t *testing.T) (BaseRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBaseRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestActivityCreate(t *testing.T) {
	base, mock := newMock(t)
	repo := NewActivityRepository(base)

	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	entry := &model.ActivityEntry{
		ID: "a1", UserID: "u1", Username: "admin",
		Action: model.ActivityReschedule, EntityType: "appointment", EntityID: "7",
		CreatedAt: at,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_log")).
		WithArgs("a1", "u1", "admin", "appointment.reschedule", "appointment", "7", "", "", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityCreateRollsBack(t *testing.T) {
	base, mock := newMock(t)
	repo := NewActivityRepository(base)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_log")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.ActivityEntry{ID: "a1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityList(t *testing.T) {
	base, mock := newMock(t)
	repo := NewActivityRepository(base)

	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "username", "action", "entity_type", "entity_id", "details", "request_id", "created_at",
	}).AddRow("a1", "u1", "admin", "appointment.delete", "appointment", "7", "", "req-1", at)

	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_log")).
		WithArgs(100).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.ActivityDelete, list[0].Action)
	assert.Equal(t, "req-1", list[0].RequestID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
