package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skillacademy/course-service/internal/models"
)

type skillRepository struct {
	db *sql.DB
}

// NewSkillRepository creates a new skill repository
func NewSkillRepository(db *sql.DB) *skillRepository {
	return &skillRepository{
		db: db,
	}
}

// GetRootSkill retrieves a root skill with its sub skills.
// Returns nil when the root skill does not exist.
func (r *skillRepository) GetRootSkill(ctx context.Context, rootSkillID string) (*models.RootSkill, error) {
	query := `SELECT id, name FROM root_skill WHERE id = ?`

	var root models.RootSkill
	err := r.db.QueryRowContext(ctx, query, rootSkillID).Scan(&root.ID, &root.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get root skill: %w", err)
	}

	subQuery := `SELECT id, parent_id, name FROM sub_skill WHERE parent_id = ?`
	rows, err := r.db.QueryContext(ctx, subQuery, rootSkillID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sub skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sub models.SubSkill
		if err := rows.Scan(&sub.ID, &sub.ParentID, &sub.Name); err != nil {
			return nil, fmt.Errorf("failed to scan sub skill: %w", err)
		}
		root.SubSkills = append(root.SubSkills, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sub skills: %w", err)
	}

	return &root, nil
}

// GetSubSkill retrieves a sub skill by ID under the given root skill.
// Returns nil when the sub skill does not exist.
func (r *skillRepository) GetSubSkill(ctx context.Context, rootSkillID, subSkillID string) (*models.SubSkill, error) {
	query := `SELECT id, parent_id, name FROM sub_skill WHERE id = ? AND parent_id = ?`

	var sub models.SubSkill
	err := r.db.QueryRowContext(ctx, query, subSkillID, rootSkillID).Scan(&sub.ID, &sub.ParentID, &sub.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sub skill: %w", err)
	}

	return &sub, nil
}

// GetSkillIDsByCourse returns the IDs of all skills associated with a course
func (r *skillRepository) GetSkillIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	query := `SELECT skill_id FROM skill_course WHERE course_id = ?`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get skill ids for course: %w", err)
	}
	defer rows.Close()

	var skillIDs []string
	for rows.Next() {
		var skillID string
		if err := rows.Scan(&skillID); err != nil {
			return nil, fmt.Errorf("failed to scan skill id: %w", err)
		}
		skillIDs = append(skillIDs, skillID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate skill ids: %w", err)
	}

	return skillIDs, nil
}
