package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/apperrors"
	"github.com/skillacademy/course-service/internal/auth"
	"github.com/skillacademy/course-service/internal/cache"
	"github.com/skillacademy/course-service/internal/catalog"
	"github.com/skillacademy/course-service/internal/models"
)

// LectureProgressRepository defines methods for lecture completion data access
type LectureProgressRepository interface {
	// CreateIfAbsent atomically inserts a completion record unless one exists
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	// "lectureID" is the ID of the lecture.
	//
	// Returns true when the record was created and an error if any.
	CreateIfAbsent(ctx context.Context, userID, courseID, lectureID string) (bool, error)
	// GetCompletedLectures retrieves the completed lecture IDs for a course
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns a list of lecture IDs and an error if any.
	GetCompletedLectures(ctx context.Context, userID, courseID string) ([]string, error)
	// GetCompletedByUser retrieves all completed lecture IDs grouped by course
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns a map of course ID to lecture IDs and an error if any.
	GetCompletedByUser(ctx context.Context, userID string) (map[string][]string, error)
}

// SkillRepository defines the skill lookups the progress service needs
type SkillRepository interface {
	// GetSkillIDsByCourse retrieves the IDs of skills linked to a course
	GetSkillIDsByCourse(ctx context.Context, courseID string) ([]string, error)
}

// XPRepository defines methods for experience point data access
type XPRepository interface {
	// AddXP adds experience points to a user's skill total
	AddXP(ctx context.Context, userID, skillID string, amount int) error
}

// ProgressService tracks lecture completion and awards experience points
type ProgressService struct {
	catalog      *catalog.Catalog
	progressRepo LectureProgressRepository
	skillRepo    SkillRepository
	xpRepo       XPRepository
	cache        cache.Cache
	lectureXP    int
	progressTTL  time.Duration
	logger       *zap.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(
	cat *catalog.Catalog,
	progressRepo LectureProgressRepository,
	skillRepo SkillRepository,
	xpRepo XPRepository,
	c cache.Cache,
	lectureXP int,
	progressTTL time.Duration,
	logger *zap.Logger,
) *ProgressService {
	return &ProgressService{
		catalog:      cat,
		progressRepo: progressRepo,
		skillRepo:    skillRepo,
		xpRepo:       xpRepo,
		cache:        c,
		lectureXP:    lectureXP,
		progressTTL:  progressTTL,
		logger:       logger,
	}
}

// CompletedLectures returns the IDs of lectures the user completed in a course
func (s *ProgressService) CompletedLectures(ctx context.Context, userID, courseID string) ([]string, error) {
	lectures, err := s.progressRepo.GetCompletedLectures(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed lectures: %w", err)
	}
	return lectures, nil
}

// CompletedSetsByUser returns completed lecture IDs per course as sets
func (s *ProgressService) CompletedSetsByUser(ctx context.Context, userID string) (map[string]map[string]struct{}, error) {
	byCourse, err := s.progressRepo.GetCompletedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed lectures: %w", err)
	}

	sets := make(map[string]map[string]struct{}, len(byCourse))
	for courseID, lectureIDs := range byCourse {
		sets[courseID] = toSet(lectureIDs)
	}
	return sets, nil
}

// CompleteLecture marks a lecture as completed exactly once and awards
// experience points for every skill linked to the course. A repeated
// completion returns ErrAlreadyCompleted and awards nothing.
func (s *ProgressService) CompleteLecture(ctx context.Context, userID, courseID, lectureID string) error {
	course, ok := s.catalog.Get(courseID)
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if _, _, ok := course.FindLecture(lectureID); !ok {
		return apperrors.ErrLectureNotFound
	}

	created, err := s.progressRepo.CreateIfAbsent(ctx, userID, courseID, lectureID)
	if err != nil {
		return fmt.Errorf("failed to record lecture completion: %w", err)
	}
	if !created {
		return apperrors.ErrAlreadyCompleted
	}

	skillIDs, err := s.skillRepo.GetSkillIDsByCourse(ctx, courseID)
	if err != nil {
		// The completion stands even when the award fan-out cannot start
		s.logger.Error("failed to get skills for xp award",
			zap.String("course_id", courseID),
			zap.Error(err),
		)
		skillIDs = nil
	}
	for _, skillID := range skillIDs {
		if err := s.xpRepo.AddXP(ctx, userID, skillID, s.lectureXP); err != nil {
			s.logger.Error("failed to award xp",
				zap.String("user_id", userID),
				zap.String("skill_id", skillID),
				zap.Error(err),
			)
		}
	}

	if err := s.cache.InvalidateNamespace(ctx, cache.NamespaceLectureProgress); err != nil {
		s.logger.Warn("failed to invalidate lecture progress cache", zap.Error(err))
	}
	if err := s.cache.InvalidateNamespace(ctx, cache.NamespaceXP); err != nil {
		s.logger.Warn("failed to invalidate xp cache", zap.Error(err))
	}

	return nil
}

// CourseDetails returns the full course summary. For an authenticated
// user every lecture carries a completion flag and the result is cached
// in the lecture_progress namespace; anonymous callers get the summary
// without flags straight from the catalog.
func (s *ProgressService) CourseDetails(ctx context.Context, courseID string, user *auth.User) (*models.CourseSummary, error) {
	course, ok := s.catalog.Get(courseID)
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}

	if user == nil {
		return course.Summary(nil), nil
	}

	key := courseID + ":" + user.ID
	var cached models.CourseSummary
	hit, err := s.cache.Get(ctx, cache.NamespaceLectureProgress, key, &cached)
	if err != nil {
		s.logger.Warn("failed to read lecture progress cache", zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	completed, err := s.progressRepo.GetCompletedLectures(ctx, user.ID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed lectures: %w", err)
	}

	summary := course.Summary(toSet(completed))
	if err := s.cache.Set(ctx, cache.NamespaceLectureProgress, key, summary, s.progressTTL); err != nil {
		s.logger.Warn("failed to write lecture progress cache", zap.Error(err))
	}

	return summary, nil
}

// NextUnseen returns the first uncompleted lecture of the course in
// section order. When every lecture is completed it wraps around to the
// very first lecture.
func (s *ProgressService) NextUnseen(ctx context.Context, userID, courseID string) (*models.NextUnseenResponse, error) {
	course, ok := s.catalog.Get(courseID)
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}

	completed, err := s.progressRepo.GetCompletedLectures(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed lectures: %w", err)
	}
	completedSet := toSet(completed)

	for i := range course.Sections {
		section := &course.Sections[i]
		for j := range section.Lectures {
			lecture := &section.Lectures[j]
			if _, ok := completedSet[lecture.ID]; !ok {
				return &models.NextUnseenResponse{
					Section: *section,
					Lecture: *lecture,
				}, nil
			}
		}
	}

	if len(course.Sections) == 0 || len(course.Sections[0].Lectures) == 0 {
		return nil, apperrors.ErrLectureNotFound
	}
	return &models.NextUnseenResponse{
		Section: course.Sections[0],
		Lecture: course.Sections[0].Lectures[0],
	}, nil
}
