package activity

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository/memory"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
	"github.com/jwalitptl/dental-admin/pkg/session"
)

func TestRecordFillsActorAndRequest(t *testing.T) {
	repo := memory.NewActivityRing(10)
	svc := NewService(repo, zerolog.Nop())

	ctx := session.NewContext(context.Background(), &session.Session{
		User: session.User{UUID: "u-1", Username: "recepcion"},
	})
	ctx = httputil.WithRequestID(ctx, "req-9")

	svc.Record(ctx, model.ActivityTagAdded, "patient", "1", "VIP")

	list, err := svc.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	e := list[0]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "u-1", e.UserID)
	assert.Equal(t, "recepcion", e.Username)
	assert.Equal(t, "req-9", e.RequestID)
	assert.Equal(t, model.ActivityTagAdded, e.Action)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestRecordAnonymous(t *testing.T) {
	repo := memory.NewActivityRing(10)
	svc := NewService(repo, zerolog.Nop())

	svc.Record(context.Background(), model.ActivityLogin, "session", "", "")
	list, _ := svc.List(context.Background(), 0)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].UserID)
}
