package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/apperrors"
	"github.com/skillacademy/course-service/internal/auth"
	"github.com/skillacademy/course-service/internal/cache"
	"github.com/skillacademy/course-service/internal/catalog"
	"github.com/skillacademy/course-service/internal/models"
)

// CourseAccessRepository defines methods for purchase record data access
type CourseAccessRepository interface {
	// Exists checks if a purchase record exists for user and course
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns a boolean and an error if any.
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	// CreateIfAbsent atomically inserts a purchase record unless one exists
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns true when the record was created and an error if any.
	CreateIfAbsent(ctx context.Context, userID, courseID string) (bool, error)
	// GetCourseIDsByUser retrieves the IDs of all purchased courses
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns a list of course IDs and an error if any.
	GetCourseIDsByUser(ctx context.Context, userID string) ([]string, error)
}

// LastWatchRepository defines methods for last watch data access
type LastWatchRepository interface {
	// Upsert records that the user opened the course just now
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns an error if any.
	Upsert(ctx context.Context, userID, courseID string) error
	// GetCourseIDsByUser retrieves the IDs of all courses the user opened
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns a list of course IDs and an error if any.
	GetCourseIDsByUser(ctx context.Context, userID string) ([]string, error)
	// GetTimestampsByUser retrieves the last watch timestamp per course
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns a map of course ID to timestamp and an error if any.
	GetTimestampsByUser(ctx context.Context, userID string) (map[string]time.Time, error)
}

// Entitlements defines the external premium subscription check
type Entitlements interface {
	// HasPremium reports whether the user holds an active premium subscription
	HasPremium(ctx context.Context, userID string) (bool, error)
}

// CoinLedger defines the external coin debit operation
type CoinLedger interface {
	// SpendCoins debits the user's balance.
	// Returns false without an error on insufficient funds.
	SpendCoins(ctx context.Context, userID string, amount int, description string) (bool, error)
}

// Notifier defines the best-effort purchase confirmation sender
type Notifier interface {
	SendPurchaseConfirmation(ctx context.Context, userID, courseTitle string) error
}

// AccessService decides whether a user may access a course and handles
// course purchases
type AccessService struct {
	catalog      *catalog.Catalog
	accessRepo   CourseAccessRepository
	watchRepo    LastWatchRepository
	entitlements Entitlements
	ledger       CoinLedger
	notifier     Notifier
	cache        cache.Cache
	accessTTL    time.Duration
	logger       *zap.Logger
}

// NewAccessService creates a new access service
func NewAccessService(
	cat *catalog.Catalog,
	accessRepo CourseAccessRepository,
	watchRepo LastWatchRepository,
	entitlements Entitlements,
	ledger CoinLedger,
	notifier Notifier,
	c cache.Cache,
	accessTTL time.Duration,
	logger *zap.Logger,
) *AccessService {
	return &AccessService{
		catalog:      cat,
		accessRepo:   accessRepo,
		watchRepo:    watchRepo,
		entitlements: entitlements,
		ledger:       ledger,
		notifier:     notifier,
		cache:        c,
		accessTTL:    accessTTL,
		logger:       logger,
	}
}

// hasAccess is the single access predicate. Both HasAccess and
// AccessibleCourseIDs go through it so set membership and the direct
// check can never disagree.
func hasAccess(course *models.Course, user auth.User, owned map[string]struct{}, premium bool) bool {
	if course.Free || user.Admin() {
		return true
	}
	if _, ok := owned[course.ID]; ok {
		return true
	}
	return premium
}

// OwnedCourseIDs returns the set of course IDs the user owns: purchased
// courses plus courses with a watch record. Cached per user in the
// course_access namespace.
func (s *AccessService) OwnedCourseIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	var cached []string
	hit, err := s.cache.Get(ctx, cache.NamespaceCourseAccess, userID, &cached)
	if err != nil {
		// A broken cache degrades to a recompute, not a failure
		s.logger.Warn("failed to read course access cache", zap.Error(err))
	}
	if hit {
		return toSet(cached), nil
	}

	purchased, err := s.accessRepo.GetCourseIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchased courses: %w", err)
	}
	watched, err := s.watchRepo.GetCourseIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watched courses: %w", err)
	}

	owned := toSet(purchased)
	for id := range toSet(watched) {
		owned[id] = struct{}{}
	}

	ids := make([]string, 0, len(owned))
	for id := range owned {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if err := s.cache.Set(ctx, cache.NamespaceCourseAccess, userID, ids, s.accessTTL); err != nil {
		s.logger.Warn("failed to write course access cache", zap.Error(err))
	}

	return owned, nil
}

// HasAccess reports whether the user may access the course. The checks
// run cheapest first; the result is identical to evaluating hasAccess
// over the full inputs.
func (s *AccessService) HasAccess(ctx context.Context, user auth.User, course *models.Course) (bool, error) {
	if hasAccess(course, user, nil, false) {
		return true, nil
	}

	owned, err := s.OwnedCourseIDs(ctx, user.ID)
	if err != nil {
		return false, err
	}
	if hasAccess(course, user, owned, false) {
		return true, nil
	}

	premium, err := s.entitlements.HasPremium(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check premium status: %w", err)
	}
	return hasAccess(course, user, owned, premium), nil
}

// AccessibleCourseIDs returns the IDs of all catalog courses the user
// may access. Membership matches HasAccess for every course.
func (s *AccessService) AccessibleCourseIDs(ctx context.Context, user auth.User) (map[string]struct{}, error) {
	owned, err := s.OwnedCourseIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	premium, err := s.entitlements.HasPremium(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check premium status: %w", err)
	}

	ids := make(map[string]struct{})
	for _, course := range s.catalog.All() {
		if hasAccess(course, user, owned, premium) {
			ids[course.ID] = struct{}{}
		}
	}
	return ids, nil
}

// PurchaseCourse buys access to a course for the user. The coin debit
// and record creation are atomic from the caller's perspective: a
// failed debit creates no record, a successful debit always ends with
// a record existing.
func (s *AccessService) PurchaseCourse(ctx context.Context, user auth.User, courseID string) (*models.PurchaseReceipt, error) {
	course, ok := s.catalog.Get(courseID)
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}

	if course.Free {
		return nil, apperrors.ErrCourseIsFree
	}

	exists, err := s.accessRepo.Exists(ctx, user.ID, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase record: %w", err)
	}
	if exists {
		return nil, apperrors.ErrAlreadyPurchased
	}

	paid, err := s.ledger.SpendCoins(ctx, user.ID, course.Price, fmt.Sprintf("Course '%s'", course.Title))
	if err != nil {
		return nil, fmt.Errorf("failed to debit coins: %w", err)
	}
	if !paid {
		return nil, apperrors.ErrNotEnoughCoins
	}

	created, err := s.accessRepo.CreateIfAbsent(ctx, user.ID, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase record: %w", err)
	}
	if !created {
		// Lost a race against a concurrent purchase; the record exists,
		// which is the state the debit paid for
		s.logger.Warn("purchase record already existed after debit",
			zap.String("user_id", user.ID),
			zap.String("course_id", course.ID),
		)
	}

	if err := s.cache.InvalidateNamespace(ctx, cache.NamespaceCourseAccess); err != nil {
		s.logger.Warn("failed to invalidate course access cache", zap.Error(err))
	}

	// Best effort: a failed notification must not roll back the purchase
	if err := s.notifier.SendPurchaseConfirmation(ctx, user.ID, course.Title); err != nil {
		s.logger.Warn("failed to send purchase confirmation",
			zap.String("user_id", user.ID),
			zap.String("course_id", course.ID),
			zap.Error(err),
		)
	}

	return &models.PurchaseReceipt{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		CourseID:    course.ID,
		Price:       course.Price,
		PurchasedAt: time.Now(),
	}, nil
}

// WatchCourse marks the course as watched for the user. The owned set
// derives from watch records, so its namespace is invalidated.
func (s *AccessService) WatchCourse(ctx context.Context, userID, courseID string) error {
	if _, ok := s.catalog.Get(courseID); !ok {
		return apperrors.ErrCourseNotFound
	}

	if err := s.watchRepo.Upsert(ctx, userID, courseID); err != nil {
		return fmt.Errorf("failed to record watch: %w", err)
	}

	if err := s.cache.InvalidateNamespace(ctx, cache.NamespaceCourseAccess); err != nil {
		s.logger.Warn("failed to invalidate course access cache", zap.Error(err))
	}

	return nil
}

// toSet converts a slice of IDs into a set
func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
