package services

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/auth"
	"github.com/skillacademy/course-service/internal/catalog"
	"github.com/skillacademy/course-service/internal/models"
)

// AccessChecker defines the access decisions the course service consumes
type AccessChecker interface {
	// OwnedCourseIDs returns the set of course IDs the user owns
	OwnedCourseIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	// AccessibleCourseIDs returns the set of course IDs the user may access
	AccessibleCourseIDs(ctx context.Context, user auth.User) (map[string]struct{}, error)
}

// CompletionSource defines the completion lookups the course service consumes
type CompletionSource interface {
	// CompletedSetsByUser returns completed lecture IDs per course as sets
	CompletedSetsByUser(ctx context.Context, userID string) (map[string]map[string]struct{}, error)
}

// ListFilters narrows and orders the course list
type ListFilters struct {
	Search      string // case-insensitive substring of the title
	Language    string // case-insensitive substring of the course language
	Author      string
	Free        *bool
	Owned       *bool // owned (true) or not owned (false); anonymous callers own nothing
	RecentFirst bool  // most recently watched first; needs an authenticated user
}

// CourseService serves catalog listings enriched with per-user state
type CourseService struct {
	catalog   *catalog.Catalog
	access    AccessChecker
	progress  CompletionSource
	watchRepo LastWatchRepository
	logger    *zap.Logger
}

// NewCourseService creates a new course service
func NewCourseService(
	cat *catalog.Catalog,
	access AccessChecker,
	progress CompletionSource,
	watchRepo LastWatchRepository,
	logger *zap.Logger,
) *CourseService {
	return &CourseService{
		catalog:   cat,
		access:    access,
		progress:  progress,
		watchRepo: watchRepo,
		logger:    logger,
	}
}

// ListCourses returns catalog summaries matching the filters. Anonymous
// callers get no completion flags and own no courses; the RecentFirst
// ordering is ignored without a user.
func (s *CourseService) ListCourses(ctx context.Context, user *auth.User, filters ListFilters) ([]*models.CourseSummary, error) {
	courses := s.catalog.All()

	var owned map[string]struct{}
	if filters.Owned != nil && user != nil {
		var err error
		owned, err = s.access.OwnedCourseIDs(ctx, user.ID)
		if err != nil {
			return nil, err
		}
	}

	search := strings.ToLower(filters.Search)
	matched := make([]*models.Course, 0, len(courses))
	for _, course := range courses {
		if search != "" && !strings.Contains(strings.ToLower(course.Title), search) {
			continue
		}
		if filters.Language != "" && !strings.Contains(strings.ToLower(course.Language), strings.ToLower(filters.Language)) {
			continue
		}
		if filters.Author != "" && !hasAuthor(course, filters.Author) {
			continue
		}
		if filters.Free != nil && course.Free != *filters.Free {
			continue
		}
		if filters.Owned != nil {
			if _, ok := owned[course.ID]; ok != *filters.Owned {
				continue
			}
		}
		matched = append(matched, course)
	}

	if filters.RecentFirst && user != nil {
		watched, err := s.watchRepo.GetTimestampsByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		// Watched courses first, newest watch leading; the rest keep
		// catalog order
		sort.SliceStable(matched, func(i, j int) bool {
			ti, iOK := watched[matched[i].ID]
			tj, jOK := watched[matched[j].ID]
			if iOK != jOK {
				return iOK
			}
			return ti.After(tj)
		})
	}

	return s.summarize(ctx, user, matched)
}

// AccessibleCourses returns summaries of every course the user may
// access, with completion flags set.
func (s *CourseService) AccessibleCourses(ctx context.Context, user auth.User) ([]*models.CourseSummary, error) {
	accessible, err := s.access.AccessibleCourseIDs(ctx, user)
	if err != nil {
		return nil, err
	}

	courses := make([]*models.Course, 0, len(accessible))
	for _, course := range s.catalog.All() {
		if _, ok := accessible[course.ID]; ok {
			courses = append(courses, course)
		}
	}

	return s.summarize(ctx, &user, courses)
}

// summarize builds summaries with completion flags when a user is present
func (s *CourseService) summarize(ctx context.Context, user *auth.User, courses []*models.Course) ([]*models.CourseSummary, error) {
	var completedByCourse map[string]map[string]struct{}
	if user != nil {
		var err error
		completedByCourse, err = s.progress.CompletedSetsByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
	}

	summaries := make([]*models.CourseSummary, 0, len(courses))
	for _, course := range courses {
		if user == nil {
			summaries = append(summaries, course.Summary(nil))
			continue
		}
		completed := completedByCourse[course.ID]
		if completed == nil {
			completed = map[string]struct{}{}
		}
		summaries = append(summaries, course.Summary(completed))
	}
	return summaries, nil
}

// hasAuthor reports whether any course author matches the name
func hasAuthor(course *models.Course, name string) bool {
	for _, author := range course.Authors {
		if strings.EqualFold(author.Name, name) {
			return true
		}
	}
	return false
}
