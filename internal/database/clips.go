package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/domiapp/domi-backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ClipRepository handles clip database operations
type ClipRepository struct {
	db *DB
}

// NewClipRepository creates a new clip repository
func NewClipRepository(db *DB) *ClipRepository {
	return &ClipRepository{db: db}
}

// Create inserts a new clip. Status is forced to pending; enrichment owns the
// transition to processed.
func (r *ClipRepository) Create(ctx context.Context, clip *models.Clip) error {
	query := `
		INSERT INTO clips (id, user_id, group_id, type, title, description, content, src_url, tags, metadata, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	if clip.Metadata == nil {
		clip.Metadata = models.Metadata{}
	}
	metadataJSON, err := json.Marshal(clip.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if clip.Tags == nil {
		clip.Tags = []string{}
	}

	clip.Status = models.ClipStatusPending
	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		clip.ID,
		clip.UserID,
		clip.GroupID,
		clip.Type,
		clip.Title,
		clip.Description,
		clip.Content,
		clip.SrcURL,
		pq.Array(clip.Tags),
		metadataJSON,
		clip.Status,
		now,
		now,
	).Scan(&clip.CreatedAt, &clip.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create clip: %w", err)
	}

	return nil
}

// GetByID retrieves a clip by ID
func (r *ClipRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Clip, error) {
	query := `
		SELECT id, user_id, group_id, type, title, description, content, src_url, tags, metadata, status, created_at, updated_at
		FROM clips
		WHERE id = $1
	`

	clip, err := scanClip(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("clip not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clip: %w", err)
	}

	return clip, nil
}

// GetByUserIDPaginated retrieves clips for a user with optional status/type/group filters
func (r *ClipRepository) GetByUserIDPaginated(ctx context.Context, userID uuid.UUID, status *models.ClipStatus, clipType *models.ClipType, groupID *uuid.UUID, page, pageSize int) ([]*models.Clip, int, error) {
	where := "WHERE user_id = $1"
	args := []any{userID}
	argIndex := 2

	if status != nil {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(*status))
		argIndex++
	}
	if clipType != nil {
		where += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, string(*clipType))
		argIndex++
	}
	if groupID != nil {
		where += fmt.Sprintf(" AND group_id = $%d", argIndex)
		args = append(args, *groupID)
		argIndex++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM clips " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clips: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, group_id, type, title, description, content, src_url, tags, metadata, status, created_at, updated_at
		FROM clips
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIndex, argIndex+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query clips: %w", err)
	}
	defer rows.Close()

	var clips []*models.Clip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan clip: %w", err)
		}
		clips = append(clips, clip)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating clips: %w", err)
	}

	return clips, total, nil
}

// ApplyPatch applies a partial update to a clip by id in a single conditional
// UPDATE. Nil patch fields leave the stored column untouched; patch metadata is
// overlaid onto the stored jsonb object rather than replacing it.
func (r *ClipRepository) ApplyPatch(ctx context.Context, id uuid.UUID, patch *models.ClipPatch) error {
	set := "SET updated_at = $2"
	args := []any{id, time.Now()}
	argIndex := 3

	if patch.Title != nil {
		set += fmt.Sprintf(", title = $%d", argIndex)
		args = append(args, *patch.Title)
		argIndex++
	}
	if patch.Description != nil {
		set += fmt.Sprintf(", description = $%d", argIndex)
		args = append(args, *patch.Description)
		argIndex++
	}
	if patch.Tags != nil {
		set += fmt.Sprintf(", tags = $%d", argIndex)
		args = append(args, pq.Array(patch.Tags))
		argIndex++
	}
	if patch.Metadata != nil {
		metadataJSON, err := json.Marshal(patch.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata patch: %w", err)
		}
		set += fmt.Sprintf(", metadata = metadata || $%d::jsonb", argIndex)
		args = append(args, metadataJSON)
		argIndex++
	}
	if patch.GroupID != nil {
		set += fmt.Sprintf(", group_id = $%d", argIndex)
		args = append(args, *patch.GroupID)
		argIndex++
	}
	if patch.Status != nil {
		set += fmt.Sprintf(", status = $%d", argIndex)
		args = append(args, string(*patch.Status))
		argIndex++
	}

	query := fmt.Sprintf("UPDATE clips %s WHERE id = $1", set)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update clip: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("clip not found")
	}

	return nil
}

// Delete deletes a clip by ID
func (r *ClipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete clip: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("clip not found")
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanClip(row rowScanner) (*models.Clip, error) {
	clip := &models.Clip{}
	var metadataJSON []byte
	var groupID uuid.NullUUID
	var tags pq.StringArray

	err := row.Scan(
		&clip.ID,
		&clip.UserID,
		&groupID,
		&clip.Type,
		&clip.Title,
		&clip.Description,
		&clip.Content,
		&clip.SrcURL,
		&tags,
		&metadataJSON,
		&clip.Status,
		&clip.CreatedAt,
		&clip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if groupID.Valid {
		clip.GroupID = &groupID.UUID
	}
	clip.Tags = []string(tags)
	if clip.Tags == nil {
		clip.Tags = []string{}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &clip.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	if clip.Metadata == nil {
		clip.Metadata = models.Metadata{}
	}

	return clip, nil
}
