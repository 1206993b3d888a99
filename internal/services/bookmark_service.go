package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/apperrors"
	"github.com/skillacademy/course-service/internal/cache"
	"github.com/skillacademy/course-service/internal/models"
)

// SkillCatalogRepository defines the skill tree lookups the bookmark
// service consumes
type SkillCatalogRepository interface {
	// GetRootSkill retrieves a root skill with its sub skills.
	// Returns nil when the root skill does not exist.
	GetRootSkill(ctx context.Context, rootSkillID string) (*models.RootSkill, error)
	// GetSubSkill retrieves a sub skill under the given root skill.
	// Returns nil when the sub skill does not exist.
	GetSubSkill(ctx context.Context, rootSkillID, subSkillID string) (*models.SubSkill, error)
}

// BookmarkRepository defines methods for bookmark data access
type BookmarkRepository interface {
	// Exists checks if a bookmark exists for the user and sub skill
	Exists(ctx context.Context, userID, rootSkillID, subSkillID string) (bool, error)
	// Create creates a new bookmark record
	Create(ctx context.Context, bookmark *models.SubSkillBookmark) error
	// Delete deletes a bookmark record.
	// Returns true when a record was deleted, false when none existed.
	Delete(ctx context.Context, userID, rootSkillID, subSkillID string) (bool, error)
}

// BookmarkService manages per-user bookmarks on the skill tree
type BookmarkService struct {
	skillRepo    SkillCatalogRepository
	bookmarkRepo BookmarkRepository
	cache        cache.Cache
	logger       *zap.Logger
}

// NewBookmarkService creates a new bookmark service
func NewBookmarkService(
	skillRepo SkillCatalogRepository,
	bookmarkRepo BookmarkRepository,
	c cache.Cache,
	logger *zap.Logger,
) *BookmarkService {
	return &BookmarkService{
		skillRepo:    skillRepo,
		bookmarkRepo: bookmarkRepo,
		cache:        c,
		logger:       logger,
	}
}

// BookmarkSubSkill bookmarks a single sub skill for the user
func (s *BookmarkService) BookmarkSubSkill(ctx context.Context, userID, rootSkillID, subSkillID string) error {
	sub, err := s.skillRepo.GetSubSkill(ctx, rootSkillID, subSkillID)
	if err != nil {
		return fmt.Errorf("failed to get sub skill: %w", err)
	}
	if sub == nil {
		return apperrors.ErrSkillNotFound
	}

	exists, err := s.bookmarkRepo.Exists(ctx, userID, rootSkillID, subSkillID)
	if err != nil {
		return fmt.Errorf("failed to check bookmark: %w", err)
	}
	if exists {
		return apperrors.ErrAlreadyBookmarked
	}

	bookmark := &models.SubSkillBookmark{
		UserID:      userID,
		RootSkillID: rootSkillID,
		SubSkillID:  subSkillID,
	}
	if err := s.bookmarkRepo.Create(ctx, bookmark); err != nil {
		return fmt.Errorf("failed to create bookmark: %w", err)
	}

	s.invalidateSkills(ctx)
	return nil
}

// UnbookmarkSubSkill removes a single sub skill bookmark
func (s *BookmarkService) UnbookmarkSubSkill(ctx context.Context, userID, rootSkillID, subSkillID string) error {
	deleted, err := s.bookmarkRepo.Delete(ctx, userID, rootSkillID, subSkillID)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	if !deleted {
		return apperrors.ErrBookmarkNotFound
	}

	s.invalidateSkills(ctx)
	return nil
}

// BookmarkRootSkill bookmarks every sub skill of a root skill. Sub
// skills that fail, including ones already bookmarked, are skipped so
// one bad entry cannot block the rest.
func (s *BookmarkService) BookmarkRootSkill(ctx context.Context, userID, rootSkillID string) error {
	root, err := s.skillRepo.GetRootSkill(ctx, rootSkillID)
	if err != nil {
		return fmt.Errorf("failed to get root skill: %w", err)
	}
	if root == nil {
		return apperrors.ErrSkillNotFound
	}

	for _, sub := range root.SubSkills {
		if err := s.BookmarkSubSkill(ctx, userID, rootSkillID, sub.ID); err != nil {
			s.logger.Debug("skipping sub skill bookmark",
				zap.String("user_id", userID),
				zap.String("sub_skill_id", sub.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// UnbookmarkRootSkill removes the bookmarks of every sub skill of a
// root skill, skipping sub skills that were not bookmarked
func (s *BookmarkService) UnbookmarkRootSkill(ctx context.Context, userID, rootSkillID string) error {
	root, err := s.skillRepo.GetRootSkill(ctx, rootSkillID)
	if err != nil {
		return fmt.Errorf("failed to get root skill: %w", err)
	}
	if root == nil {
		return apperrors.ErrSkillNotFound
	}

	for _, sub := range root.SubSkills {
		if err := s.UnbookmarkSubSkill(ctx, userID, rootSkillID, sub.ID); err != nil {
			s.logger.Debug("skipping sub skill unbookmark",
				zap.String("user_id", userID),
				zap.String("sub_skill_id", sub.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *BookmarkService) invalidateSkills(ctx context.Context) {
	if err := s.cache.InvalidateNamespace(ctx, cache.NamespaceSkills); err != nil {
		s.logger.Warn("failed to invalidate skills cache", zap.Error(err))
	}
}
