package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/models"
)

// ActionRepository handles materialized action records
type ActionRepository struct {
	db *DB
}

// NewActionRepository creates a new action repository
func NewActionRepository(db *DB) *ActionRepository {
	return &ActionRepository{db: db}
}

const actionColumns = `id, user_id, item_id, description, confidence, owner, due_date, priority, source_span, created_at`

// GetByItemID returns the actions materialized from an item, in creation order
func (r *ActionRepository) GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*models.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions WHERE item_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []*models.Action
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actions: %w", err)
	}

	return actions, nil
}

// ElevatePriority sets a new priority on the earliest action linked to an
// item, returning the action id and the priority it previously held so the
// change can be undone.
func (r *ActionRepository) ElevatePriority(ctx context.Context, itemID uuid.UUID, priority models.Priority) (*uuid.UUID, *models.Priority, error) {
	// Fetch the previous priority first and guard the update on it, so a
	// concurrent change loses cleanly instead of being overwritten.
	var actionID uuid.UUID
	var prev models.Priority
	err := r.db.QueryRowContext(ctx, `
		SELECT id, priority FROM actions WHERE item_id = $1 ORDER BY created_at ASC, id ASC LIMIT 1
	`, itemID).Scan(&actionID, &prev)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find linked action: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE actions SET priority = $2 WHERE id = $1 AND priority = $3`,
		actionID, priority, prev)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to elevate action priority: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, nil, fmt.Errorf("elevate priority: %w", models.ErrConflict)
	}

	return &actionID, &prev, nil
}

// SetPriority sets the priority of a specific action. Used by feedback undo.
func (r *ActionRepository) SetPriority(ctx context.Context, actionID uuid.UUID, priority models.Priority) error {
	result, err := r.db.ExecContext(ctx, `UPDATE actions SET priority = $2 WHERE id = $1`, actionID, priority)
	if err != nil {
		return fmt.Errorf("failed to set action priority: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set action priority: %w", models.ErrNotFound)
	}

	return nil
}

// DeleteByItemID removes all actions materialized from an item
func (r *ActionRepository) DeleteByItemID(ctx context.Context, itemID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM actions WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("failed to delete actions: %w", err)
	}
	return nil
}

func scanAction(row rowScanner) (*models.Action, error) {
	action := &models.Action{}
	var owner, sourceSpan sql.NullString
	var dueDate sql.NullTime

	err := row.Scan(
		&action.ID,
		&action.UserID,
		&action.ItemID,
		&action.Description,
		&action.Confidence,
		&owner,
		&dueDate,
		&action.Priority,
		&sourceSpan,
		&action.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	action.Owner = owner.String
	action.SourceSpan = sourceSpan.String
	if dueDate.Valid {
		action.DueDate = &dueDate.Time
	}

	return action, nil
}
