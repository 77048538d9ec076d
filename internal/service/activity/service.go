// Package activity records what admin users did, for the activity table.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
	"github.com/jwalitptl/dental-admin/pkg/session"
)

// Recorder is what other services depend on
type Recorder interface {
	Record(ctx context.Context, action model.ActivityAction, entityType, entityID, details string)
}

type Service struct {
	repo   repository.ActivityRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo repository.ActivityRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "activity").Logger(),
		now:    time.Now,
	}
}

// Record never fails the calling operation; store errors are only logged.
func (s *Service) Record(ctx context.Context, action model.ActivityAction, entityType, entityID, details string) {
	user := session.UserFromContext(ctx)
	entry := &model.ActivityEntry{
		ID:         uuid.NewString(),
		UserID:     user.UUID,
		Username:   user.Username,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		RequestID:  httputil.RequestID(ctx),
		CreatedAt:  s.now().UTC(),
	}

	s.logger.Info().
		Str("user", entry.Username).
		Str("action", string(action)).
		Str("entity_type", entityType).
		Str("entity_id", entityID).
		Str("request_id", entry.RequestID).
		Msg("activity")

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("action", string(action)).Msg("failed to store activity entry")
	}
}

func (s *Service) List(ctx context.Context, limit int) ([]*model.ActivityEntry, error) {
	return s.repo.List(ctx, limit)
}

// Nop discards entries
type Nop struct{}

func (Nop) Record(context.Context, model.ActivityAction, string, string, string) {}
