package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/apperrors"
	"github.com/skillacademy/course-service/internal/catalog"
	"github.com/skillacademy/course-service/internal/models"
)

// SolvedSubtasksSource defines the challenges lookup the viewtime
// service consumes. Calls forward the end user's own bearer token.
type SolvedSubtasksSource interface {
	SolvedSubtasks(ctx context.Context, authToken string) ([]models.Subtask, error)
}

// Estimated seconds spent per solved subtask type
const (
	multipleChoiceSeconds  = 60
	matchingSeconds        = 60
	codingChallengeSeconds = 1800
)

// ViewTimeService estimates how much time a user spent learning, from
// completed lectures and solved challenge subtasks
type ViewTimeService struct {
	catalog      *catalog.Catalog
	progressRepo LectureProgressRepository
	challenges   SolvedSubtasksSource
	logger       *zap.Logger
}

// NewViewTimeService creates a new viewtime service
func NewViewTimeService(
	cat *catalog.Catalog,
	progressRepo LectureProgressRepository,
	challenges SolvedSubtasksSource,
	logger *zap.Logger,
) *ViewTimeService {
	return &ViewTimeService{
		catalog:      cat,
		progressRepo: progressRepo,
		challenges:   challenges,
		logger:       logger,
	}
}

// CourseViewTime sums the durations of the user's completed lectures,
// broken down per course and section in catalog order. Courses and
// sections with a zero total are omitted.
func (s *ViewTimeService) CourseViewTime(ctx context.Context, userID string) (*models.ViewTime, error) {
	completedByCourse, err := s.progressRepo.GetCompletedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: completed lectures: %v", apperrors.ErrDataFetch, err)
	}

	result := &models.ViewTime{Courses: []models.ViewTimeCourse{}}
	for _, course := range s.catalog.All() {
		completed := toSet(completedByCourse[course.ID])
		if len(completed) == 0 {
			continue
		}

		courseTime := models.ViewTimeCourse{
			CourseID:   course.ID,
			CourseName: course.Title,
			Sections:   []models.ViewTimeSection{},
		}
		for _, section := range course.Sections {
			sectionTime := models.ViewTimeSection{
				SectionName: section.Title,
				Lectures:    []models.ViewTimeLecture{},
			}
			for _, lecture := range section.Lectures {
				if _, ok := completed[lecture.ID]; !ok || lecture.Duration <= 0 {
					continue
				}
				sectionTime.Lectures = append(sectionTime.Lectures, models.ViewTimeLecture{
					LectureName: lecture.Title,
					Time:        lecture.Duration,
				})
				sectionTime.TotalTime += lecture.Duration
			}
			if sectionTime.TotalTime > 0 {
				courseTime.Sections = append(courseTime.Sections, sectionTime)
				courseTime.TotalTime += sectionTime.TotalTime
			}
		}
		if courseTime.TotalTime > 0 {
			result.Courses = append(result.Courses, courseTime)
			result.TotalTime += courseTime.TotalTime
		}
	}

	return result, nil
}

// TaskViewTime estimates seconds spent on solved challenge subtasks.
// Unknown subtask types count as zero.
func (s *ViewTimeService) TaskViewTime(ctx context.Context, authToken string) (*models.TotalTime, error) {
	subtasks, err := s.challenges.SolvedSubtasks(ctx, authToken)
	if err != nil {
		return nil, fmt.Errorf("%w: solved subtasks: %v", apperrors.ErrDataFetch, err)
	}

	total := 0
	for _, subtask := range subtasks {
		switch subtask.Type {
		case models.SubtaskTypeMultipleChoice:
			total += multipleChoiceSeconds
		case models.SubtaskTypeMatching:
			total += matchingSeconds
		case models.SubtaskTypeCodingChallenge:
			total += codingChallengeSeconds
		}
	}

	return &models.TotalTime{TotalTime: total}, nil
}

// TotalViewTime sums course and task viewtime. Either source failing
// fails the whole call rather than reporting a partial total.
func (s *ViewTimeService) TotalViewTime(ctx context.Context, userID, authToken string) (*models.TotalTime, error) {
	courses, err := s.CourseViewTime(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.TaskViewTime(ctx, authToken)
	if err != nil {
		return nil, err
	}

	return &models.TotalTime{TotalTime: courses.TotalTime + tasks.TotalTime}, nil
}
