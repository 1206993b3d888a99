package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skillacademy/course-service/internal/models"
)

type bookmarkRepository struct {
	db *sql.DB
}

// NewBookmarkRepository creates a new bookmark repository
func NewBookmarkRepository(db *sql.DB) *bookmarkRepository {
	return &bookmarkRepository{
		db: db,
	}
}

// Exists checks if a bookmark exists for the user and sub skill
func (r *bookmarkRepository) Exists(ctx context.Context, userID, rootSkillID, subSkillID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM sub_skill_bookmark WHERE user_id = ? AND root_skill_id = ? AND sub_skill_id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, rootSkillID, subSkillID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark existence: %w", err)
	}

	return exists, nil
}

// Create creates a new bookmark record
func (r *bookmarkRepository) Create(ctx context.Context, bookmark *models.SubSkillBookmark) error {
	query := `
		INSERT INTO sub_skill_bookmark (user_id, root_skill_id, sub_skill_id)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		bookmark.UserID,
		bookmark.RootSkillID,
		bookmark.SubSkillID,
	)
	if err != nil {
		return fmt.Errorf("failed to create bookmark: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	bookmark.BookmarkID = int(id)
	return nil
}

// Delete deletes a bookmark record.
// Returns true when a record was deleted, false when none existed.
func (r *bookmarkRepository) Delete(ctx context.Context, userID, rootSkillID, subSkillID string) (bool, error) {
	query := `
		DELETE FROM sub_skill_bookmark
		WHERE user_id = ? AND root_skill_id = ? AND sub_skill_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, userID, rootSkillID, subSkillID)
	if err != nil {
		return false, fmt.Errorf("failed to delete bookmark: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
