package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
)

type activityRepository struct {
	BaseRepository
}

func NewActivityRepository(base BaseRepository) repository.ActivityRepository {
	return &activityRepository{base}
}

func (r *activityRepository) Create(ctx context.Context, e *model.ActivityEntry) error {
	query := `
        INSERT INTO activity_log (
            id, user_id, username, action, entity_type, entity_id,
            details, request_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			e.ID,
			e.UserID,
			e.Username,
			e.Action,
			e.EntityType,
			e.EntityID,
			e.Details,
			e.RequestID,
			e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert activity entry: %w", err)
		}
		return nil
	})
}

func (r *activityRepository) List(ctx context.Context, limit int) ([]*model.ActivityEntry, error) {
	query := `
        SELECT id, user_id, username, action, entity_type, entity_id,
               details, request_id, created_at
        FROM activity_log
        ORDER BY created_at DESC
        LIMIT $1
    `

	if limit <= 0 {
		limit = 100
	}

	var entries []*model.ActivityEntry
	if err := r.GetDB().SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}
