package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stillwater-dev/inboxd/internal/models"
)

const itemColumns = `
	id, user_id, type, content, source, media_ref, status,
	classification, extracted_actions, tags, user_feedback,
	last_error, retry_count, failed_at,
	archive_reason, pre_archive_status,
	created_at, dispatched_at, archived_at, auto_archive_date`

// ItemRepository handles inbox item database operations. Every lifecycle
// transition is a conditional update guarded by the current status, so
// concurrent writers race safely: the loser matches zero rows and gets
// ErrConflict, which callers treat as a no-op.
type ItemRepository struct {
	db *DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// ListFilter narrows a paginated listing.
type ListFilter struct {
	Status *models.ItemStatus
	Limit  int
	Cursor *Cursor
}

// QueueMetrics holds aggregate counts for badge display, computed in a
// single grouped pass.
type QueueMetrics struct {
	StatusCounts     map[models.ItemStatus]int `json:"status_counts"`
	NeedsReviewCount int                       `json:"needs_review_count"`
}

// Create inserts a new item in the pending state.
func (r *ItemRepository) Create(ctx context.Context, item *models.InboxItem) error {
	query := `
		INSERT INTO inbox_items (id, user_id, type, content, source, media_ref, status, created_at, auto_archive_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		item.ID,
		item.UserID,
		item.Type,
		item.Content,
		item.Source,
		item.MediaRef,
		item.Status,
		now,
		item.AutoArchiveDate,
	).Scan(&item.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// GetByID retrieves an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InboxItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inbox_items WHERE id = $1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// ListByUser returns a page of a user's items ordered by createdAt ascending,
// with an opaque cursor for the next page.
func (r *ItemRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.InboxItem, string, error) {
	query := `SELECT ` + itemColumns + ` FROM inbox_items WHERE user_id = $1`
	args := []any{userID}
	argIndex := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(*filter.Status))
		argIndex++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, id) > ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.ID)
		argIndex++
		argIndex++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at ASC, id ASC LIMIT $%d", argIndex)
	args = append(args, limit)

	return r.queryItemsPage(ctx, query, args, limit)
}

// MarkProcessing transitions pending -> processing and stamps dispatched_at.
// Returns ErrConflict when the item is not pending, which callers use to skip
// duplicate dispatches.
func (r *ItemRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE inbox_items
		SET status = $2, dispatched_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query, id, models.ItemStatusProcessing, time.Now(), models.ItemStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark item processing: %w", err)
	}

	return requireOneRow(result, "mark processing")
}

// ApplyClassification transitions processing -> toStatus, stores the
// classification result, clears processing metadata, and materializes the
// extracted actions, all in one transaction. The target status is decided by
// the triage engine's routing policy: reviewed for confident results, pending
// when the result needs user review. The status guard makes a second delivery
// of the same callback a conflict, so actions are materialized exactly once.
func (r *ItemRepository) ApplyClassification(ctx context.Context, id uuid.UUID, toStatus models.ItemStatus, cls *models.Classification, extracted []models.ExtractedAction, tags []models.Tag) ([]*models.Action, error) {
	clsJSON, err := json.Marshal(cls)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal classification: %w", err)
	}
	actionsJSON, err := json.Marshal(extracted)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extracted actions: %w", err)
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE inbox_items
		SET status = $2, classification = $3, extracted_actions = $4, tags = $5,
		    last_error = NULL, retry_count = 0, failed_at = NULL
		WHERE id = $1 AND status = $6
		RETURNING user_id
	`

	var userID uuid.UUID
	err = tx.QueryRowContext(ctx, query, id, toStatus, clsJSON, actionsJSON, tagsJSON, models.ItemStatusProcessing).Scan(&userID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("apply classification: %w", models.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply classification: %w", err)
	}

	now := time.Now()
	actions := make([]*models.Action, 0, len(extracted))
	for _, ea := range extracted {
		action := &models.Action{
			ID:          uuid.New(),
			UserID:      userID,
			ItemID:      id,
			Description: ea.Description,
			Confidence:  ea.Confidence,
			Owner:       ea.Owner,
			DueDate:     ea.DueDate,
			Priority:    ea.Priority,
			SourceSpan:  ea.SourceSpan,
			CreatedAt:   now,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO actions (id, user_id, item_id, description, confidence, owner, due_date, priority, source_span, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, action.ID, action.UserID, action.ItemID, action.Description, action.Confidence,
			action.Owner, action.DueDate, action.Priority, action.SourceSpan, action.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to materialize action: %w", err)
		}
		actions = append(actions, action)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit classification: %w", err)
	}

	return actions, nil
}

// MarkError transitions processing -> error, recording the failure and
// incrementing the retry count.
func (r *ItemRepository) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	query := `
		UPDATE inbox_items
		SET status = $2, last_error = $3, retry_count = retry_count + 1, failed_at = $4
		WHERE id = $1 AND status = $5
	`

	result, err := r.db.ExecContext(ctx, query, id, models.ItemStatusError, message, time.Now(), models.ItemStatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to mark item errored: %w", err)
	}

	return requireOneRow(result, "mark error")
}

// MarkRetrying transitions error -> processing for an explicit user or
// operator retry. The retry count is left alone; only a further failure
// increments it.
func (r *ItemRepository) MarkRetrying(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE inbox_items
		SET status = $2, dispatched_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query, id, models.ItemStatusProcessing, time.Now(), models.ItemStatusError)
	if err != nil {
		return fmt.Errorf("failed to mark item retrying: %w", err)
	}

	return requireOneRow(result, "mark retrying")
}

// Archive transitions an item to archived, remembering the prior status for
// restore. allowError controls whether error items may be archived; the
// explicit user action allows it, automated sweeps do not.
func (r *ItemRepository) Archive(ctx context.Context, id uuid.UUID, reason models.ArchiveReason, allowError bool) error {
	allowed := []string{string(models.ItemStatusPending), string(models.ItemStatusReviewed)}
	if allowError {
		allowed = append(allowed, string(models.ItemStatusError))
	}

	query := `
		UPDATE inbox_items
		SET pre_archive_status = status, status = $2, archived_at = $3, archive_reason = $4
		WHERE id = $1 AND status = ANY($5)
	`

	result, err := r.db.ExecContext(ctx, query, id, models.ItemStatusArchived, time.Now(), reason, pqStringArray(allowed))
	if err != nil {
		return fmt.Errorf("failed to archive item: %w", err)
	}

	return requireOneRow(result, "archive")
}

// Restore transitions archived back to whatever status the item held before
// archival. Only an explicit restore revives an archived item.
func (r *ItemRepository) Restore(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE inbox_items
		SET status = COALESCE(pre_archive_status, $2), archived_at = NULL, archive_reason = NULL, pre_archive_status = NULL
		WHERE id = $1 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, id, models.ItemStatusPending, models.ItemStatusArchived)
	if err != nil {
		return fmt.Errorf("failed to restore item: %w", err)
	}

	return requireOneRow(result, "restore")
}

// SetUserFeedback replaces the stored user feedback for an item.
func (r *ItemRepository) SetUserFeedback(ctx context.Context, id uuid.UUID, fb *models.UserFeedback) error {
	var fbJSON any
	if fb != nil {
		raw, err := json.Marshal(fb)
		if err != nil {
			return fmt.Errorf("failed to marshal user feedback: %w", err)
		}
		fbJSON = raw
	}

	result, err := r.db.ExecContext(ctx, `UPDATE inbox_items SET user_feedback = $2 WHERE id = $1`, id, fbJSON)
	if err != nil {
		return fmt.Errorf("failed to set user feedback: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set user feedback: %w", models.ErrNotFound)
	}

	return nil
}

// SetStatus forces a status without a guard. Used only by feedback undo,
// which restores a snapshot it took while holding the undo record.
func (r *ItemRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error {
	query := `
		UPDATE inbox_items
		SET status = $2,
		    archived_at = CASE WHEN $2 = 'archived' THEN COALESCE(archived_at, NOW()) ELSE NULL END,
		    archive_reason = CASE WHEN $2 = 'archived' THEN archive_reason ELSE NULL END,
		    pre_archive_status = CASE WHEN $2 = 'archived' THEN pre_archive_status ELSE NULL END
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set status: %w", models.ErrNotFound)
	}
	return nil
}

// Delete permanently removes an item. The search index entry and materialized
// actions go with it (ON DELETE CASCADE for actions; the index entry is
// removed by the caller so index ownership stays with the indexer).
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM inbox_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete item: %w", models.ErrNotFound)
	}

	return nil
}

// NeedsReviewQueue returns pending items that are unclassified or below the
// needs-review threshold, excluding deferred disagreements, oldest first.
func (r *ItemRepository) NeedsReviewQueue(ctx context.Context, userID uuid.UUID, threshold float64, limit int, cursor *Cursor) ([]*models.InboxItem, string, error) {
	query := `SELECT ` + itemColumns + ` FROM inbox_items
		WHERE user_id = $1 AND status = $2
		AND COALESCE((user_feedback->>'deferred_to_weekly')::boolean, FALSE) = FALSE
		AND (classification IS NULL OR (classification->>'confidence')::float8 < $3)`
	args := []any{userID, models.ItemStatusPending, threshold}

	return r.queueQuery(ctx, query, args, limit, cursor)
}

// DisagreementsQueue returns pending items the user deferred to the weekly
// review, irrespective of confidence.
func (r *ItemRepository) DisagreementsQueue(ctx context.Context, userID uuid.UUID, limit int, cursor *Cursor) ([]*models.InboxItem, string, error) {
	query := `SELECT ` + itemColumns + ` FROM inbox_items
		WHERE user_id = $1 AND status = $2
		AND COALESCE((user_feedback->>'deferred_to_weekly')::boolean, FALSE) = TRUE`
	args := []any{userID, models.ItemStatusPending}

	return r.queueQuery(ctx, query, args, limit, cursor)
}

// ErrorQueue returns errored items oldest first so failures are worked in
// capture order.
func (r *ItemRepository) ErrorQueue(ctx context.Context, userID uuid.UUID, limit int, cursor *Cursor) ([]*models.InboxItem, string, error) {
	query := `SELECT ` + itemColumns + ` FROM inbox_items
		WHERE user_id = $1 AND status = $2`
	args := []any{userID, models.ItemStatusError}

	return r.queueQuery(ctx, query, args, limit, cursor)
}

// ReceiptsQueue returns reviewed items that were auto-filed at or above the
// auto-file threshold, newest first, for the receipts view.
func (r *ItemRepository) ReceiptsQueue(ctx context.Context, userID uuid.UUID, threshold float64, limit int) ([]*models.InboxItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inbox_items
		WHERE user_id = $1 AND status = $2
		AND classification IS NOT NULL AND (classification->>'confidence')::float8 >= $3
		ORDER BY created_at DESC LIMIT $4`

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, query, userID, models.ItemStatusReviewed, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// Metrics computes per-status counts and the needs-review count in a single
// grouped pass: O(distinct statuses), not O(items) round trips.
func (r *ItemRepository) Metrics(ctx context.Context, userID uuid.UUID, needsReviewThreshold float64) (*QueueMetrics, error) {
	query := `
		SELECT status, COUNT(*),
		       COUNT(*) FILTER (
		           WHERE status = 'pending'
		           AND COALESCE((user_feedback->>'deferred_to_weekly')::boolean, FALSE) = FALSE
		           AND (classification IS NULL OR (classification->>'confidence')::float8 < $2)
		       )
		FROM inbox_items
		WHERE user_id = $1
		GROUP BY status
	`

	rows, err := r.db.QueryContext(ctx, query, userID, needsReviewThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	metrics := &QueueMetrics{StatusCounts: make(map[models.ItemStatus]int)}
	for rows.Next() {
		var status models.ItemStatus
		var count, needsReview int
		if err := rows.Scan(&status, &count, &needsReview); err != nil {
			return nil, fmt.Errorf("failed to scan metrics: %w", err)
		}
		metrics.StatusCounts[status] = count
		metrics.NeedsReviewCount += needsReview
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metrics: %w", err)
	}

	return metrics, nil
}

// SweepAutoArchive archives a user's pending and reviewed items created
// before the cutoff. Error items are never touched so failures stay visible.
// The status guard in the WHERE clause re-checks at write time, so the sweep
// cannot race a fresh classification callback into a conflicting state.
func (r *ItemRepository) SweepAutoArchive(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int, error) {
	query := `
		UPDATE inbox_items
		SET pre_archive_status = status, status = $2, archived_at = $3, archive_reason = $4
		WHERE user_id = $1 AND status = ANY($5) AND created_at < $6
	`

	result, err := r.db.ExecContext(ctx, query,
		userID, models.ItemStatusArchived, time.Now(), models.ArchiveReasonAuto,
		pqStringArray([]string{string(models.ItemStatusPending), string(models.ItemStatusReviewed)}),
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep auto-archive: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// ExpiringSoon lists items close to their auto-archive deadline without
// mutating anything.
func (r *ItemRepository) ExpiringSoon(ctx context.Context, userID uuid.UUID, warningCutoff, archiveCutoff time.Time) ([]*models.InboxItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inbox_items
		WHERE user_id = $1 AND status = ANY($2)
		AND created_at < $3 AND created_at >= $4
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query,
		userID,
		pqStringArray([]string{string(models.ItemStatusPending), string(models.ItemStatusReviewed)}),
		warningCutoff, archiveCutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// Bankruptcy archives all of a user's pending items in a single statement,
// so the reported count always matches the rows actually archived.
func (r *ItemRepository) Bankruptcy(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		UPDATE inbox_items
		SET pre_archive_status = status, status = $2, archived_at = $3, archive_reason = $4
		WHERE user_id = $1 AND status = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		userID, models.ItemStatusArchived, time.Now(), models.ArchiveReasonBankruptcy, models.ItemStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to declare bankruptcy: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// SweepStuckProcessing force-fails items stuck in processing past the
// timeout window, recording a synthetic timeout error.
func (r *ItemRepository) SweepStuckProcessing(ctx context.Context, olderThan time.Time) (int, error) {
	query := `
		UPDATE inbox_items
		SET status = $1, last_error = $2, retry_count = retry_count + 1, failed_at = $3
		WHERE status = $4 AND dispatched_at < $5
	`

	result, err := r.db.ExecContext(ctx, query,
		models.ItemStatusError, "timeout", time.Now(), models.ItemStatusProcessing, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stuck items: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// ListUnindexed returns indexable items (reviewed, or pending with content)
// that have no search index entry yet, plus the total remaining.
func (r *ItemRepository) ListUnindexed(ctx context.Context, limit int) ([]*models.InboxItem, int, error) {
	if limit <= 0 {
		limit = 50
	}

	where := `
		FROM inbox_items i
		LEFT JOIN search_index s ON s.source_type = 'ITEM' AND s.source_id = i.id
		WHERE s.source_id IS NULL
		AND (i.status = 'reviewed' OR (i.status = 'pending' AND i.content <> ''))`

	var remaining int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) `+where).Scan(&remaining); err != nil {
		return nil, 0, fmt.Errorf("failed to count unindexed items: %w", err)
	}

	query := `SELECT ` + prefixColumns("i") + " " + where + ` ORDER BY i.created_at ASC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query unindexed items: %w", err)
	}
	defer rows.Close()

	items, err := collectItems(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, remaining, nil
}

// ListUsersWithItems returns the distinct owners of non-archived items, for
// per-user sweeps.
func (r *ItemRepository) ListUsersWithItems(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM inbox_items WHERE status <> $1`, models.ItemStatusArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

func (r *ItemRepository) queueQuery(ctx context.Context, baseQuery string, args []any, limit int, cursor *Cursor) ([]*models.InboxItem, string, error) {
	argIndex := len(args) + 1
	if cursor != nil {
		baseQuery += fmt.Sprintf(" AND (created_at, id) > ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursor.CreatedAt, cursor.ID)
		argIndex += 2
	}

	if limit <= 0 || limit > 500 {
		limit = 100
	}
	baseQuery += fmt.Sprintf(" ORDER BY created_at ASC, id ASC LIMIT $%d", argIndex)
	args = append(args, limit)

	return r.queryItemsPage(ctx, baseQuery, args, limit)
}

func (r *ItemRepository) queryItemsPage(ctx context.Context, query string, args []any, limit int) ([]*models.InboxItem, string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items, err := collectItems(rows)
	if err != nil {
		return nil, "", err
	}

	var nextCursor string
	if len(items) == limit {
		last := items[len(items)-1]
		nextCursor = EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return items, nextCursor, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.InboxItem, error) {
	item := &models.InboxItem{}
	var (
		source, mediaRef               sql.NullString
		clsJSON, actJSON, tagJSON      []byte
		fbJSON                         []byte
		lastError                      sql.NullString
		retryCount                     int
		failedAt                       sql.NullTime
		archiveReason, preArchive      sql.NullString
		dispatchedAt, archivedAt       sql.NullTime
		autoArchiveDate                sql.NullTime
	)

	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.Type,
		&item.Content,
		&source,
		&mediaRef,
		&item.Status,
		&clsJSON,
		&actJSON,
		&tagJSON,
		&fbJSON,
		&lastError,
		&retryCount,
		&failedAt,
		&archiveReason,
		&preArchive,
		&item.CreatedAt,
		&dispatchedAt,
		&archivedAt,
		&autoArchiveDate,
	)
	if err != nil {
		return nil, err
	}

	item.Source = source.String
	item.MediaRef = mediaRef.String

	if len(clsJSON) > 0 {
		item.Classification = &models.Classification{}
		if err := json.Unmarshal(clsJSON, item.Classification); err != nil {
			return nil, fmt.Errorf("failed to unmarshal classification: %w", err)
		}
	}
	if len(actJSON) > 0 {
		if err := json.Unmarshal(actJSON, &item.ExtractedActions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extracted actions: %w", err)
		}
	}
	if len(tagJSON) > 0 {
		if err := json.Unmarshal(tagJSON, &item.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if len(fbJSON) > 0 {
		item.UserFeedback = &models.UserFeedback{}
		if err := json.Unmarshal(fbJSON, item.UserFeedback); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user feedback: %w", err)
		}
	}

	if lastError.Valid || retryCount > 0 || failedAt.Valid {
		item.ProcessingMeta = &models.ProcessingMeta{
			LastError:  lastError.String,
			RetryCount: retryCount,
		}
		if failedAt.Valid {
			item.ProcessingMeta.FailedAt = &failedAt.Time
		}
	}

	if archiveReason.Valid {
		reason := models.ArchiveReason(archiveReason.String)
		item.ArchiveReason = &reason
	}
	if preArchive.Valid {
		status := models.ItemStatus(preArchive.String)
		item.PreArchiveStatus = &status
	}
	if archivedAt.Valid {
		item.ArchivedAt = &archivedAt.Time
	}
	if autoArchiveDate.Valid {
		item.AutoArchiveDate = &autoArchiveDate.Time
	}
	if dispatchedAt.Valid {
		item.DispatchedAt = &dispatchedAt.Time
	}

	return item, nil
}

func collectItems(rows *sql.Rows) ([]*models.InboxItem, error) {
	var items []*models.InboxItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

func pqStringArray(values []string) any {
	return pq.Array(values)
}

// prefixColumns qualifies the item column list with a table alias for joins.
func prefixColumns(alias string) string {
	parts := strings.Split(itemColumns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func requireOneRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrConflict)
	}
	return nil
}
