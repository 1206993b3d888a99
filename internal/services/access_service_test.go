package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/apperrors"
	"github.com/skillacademy/course-service/internal/auth"
	"github.com/skillacademy/course-service/internal/cache"
)

func newTestAccessService(
	t *testing.T,
	accessRepo *mockCourseAccessRepository,
	watchRepo *mockLastWatchRepository,
	entitlements *mockEntitlements,
	ledger *mockCoinLedger,
	notifier *mockNotifier,
) *AccessService {
	t.Helper()
	return NewAccessService(
		testCatalog(t),
		accessRepo,
		watchRepo,
		entitlements,
		ledger,
		notifier,
		cache.NewMemoryCache(),
		time.Minute,
		zap.NewNop(),
	)
}

func TestAccessService_HasAccess(t *testing.T) {
	user := auth.User{ID: "u1"}
	admin := auth.User{ID: "a1", Role: auth.RoleAdmin}

	tests := []struct {
		name         string
		user         auth.User
		courseID     string
		accessRepo   *mockCourseAccessRepository
		watchRepo    *mockLastWatchRepository
		entitlements *mockEntitlements
		expected     bool
	}{
		{
			name:         "free course for anyone",
			user:         user,
			courseID:     "intro",
			accessRepo:   &mockCourseAccessRepository{},
			watchRepo:    &mockLastWatchRepository{},
			entitlements: &mockEntitlements{},
			expected:     true,
		},
		{
			name:         "admin bypasses ownership",
			user:         admin,
			courseID:     "go-basics",
			accessRepo:   &mockCourseAccessRepository{},
			watchRepo:    &mockLastWatchRepository{},
			entitlements: &mockEntitlements{},
			expected:     true,
		},
		{
			name:         "purchased course",
			user:         user,
			courseID:     "go-basics",
			accessRepo:   &mockCourseAccessRepository{courseIDs: []string{"go-basics"}},
			watchRepo:    &mockLastWatchRepository{},
			entitlements: &mockEntitlements{},
			expected:     true,
		},
		{
			name:         "watched course counts as owned",
			user:         user,
			courseID:     "go-basics",
			accessRepo:   &mockCourseAccessRepository{},
			watchRepo:    &mockLastWatchRepository{courseIDs: []string{"go-basics"}},
			entitlements: &mockEntitlements{},
			expected:     true,
		},
		{
			name:         "premium subscriber",
			user:         user,
			courseID:     "go-basics",
			accessRepo:   &mockCourseAccessRepository{},
			watchRepo:    &mockLastWatchRepository{},
			entitlements: &mockEntitlements{premium: true},
			expected:     true,
		},
		{
			name:         "no entitlement",
			user:         user,
			courseID:     "go-basics",
			accessRepo:   &mockCourseAccessRepository{},
			watchRepo:    &mockLastWatchRepository{},
			entitlements: &mockEntitlements{},
			expected:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAccessService(t, tt.accessRepo, tt.watchRepo, tt.entitlements, &mockCoinLedger{}, &mockNotifier{})
			course, ok := testCatalog(t).Get(tt.courseID)
			require.True(t, ok)

			got, err := svc.HasAccess(context.Background(), tt.user, course)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAccessService_HasAccess_PremiumCheckError(t *testing.T) {
	svc := newTestAccessService(t,
		&mockCourseAccessRepository{},
		&mockLastWatchRepository{},
		&mockEntitlements{err: errors.New("shop down")},
		&mockCoinLedger{},
		&mockNotifier{},
	)
	course, _ := testCatalog(t).Get("go-basics")

	_, err := svc.HasAccess(context.Background(), auth.User{ID: "u1"}, course)

	assert.Error(t, err)
}

func TestAccessService_HasAccess_SkipsPremiumWhenOwned(t *testing.T) {
	entitlements := &mockEntitlements{}
	svc := newTestAccessService(t,
		&mockCourseAccessRepository{courseIDs: []string{"go-basics"}},
		&mockLastWatchRepository{},
		entitlements,
		&mockCoinLedger{},
		&mockNotifier{},
	)
	course, _ := testCatalog(t).Get("go-basics")

	got, err := svc.HasAccess(context.Background(), auth.User{ID: "u1"}, course)

	require.NoError(t, err)
	assert.True(t, got)
	assert.Zero(t, entitlements.calls)
}

// The accessible set and the direct check must agree for every course
// and every kind of user.
func TestAccessService_AccessibleCourseIDs_MatchesHasAccess(t *testing.T) {
	users := []struct {
		name         string
		user         auth.User
		accessRepo   *mockCourseAccessRepository
		entitlements *mockEntitlements
	}{
		{"plain user", auth.User{ID: "u1"}, &mockCourseAccessRepository{}, &mockEntitlements{}},
		{"owner", auth.User{ID: "u2"}, &mockCourseAccessRepository{courseIDs: []string{"go-basics"}}, &mockEntitlements{}},
		{"premium", auth.User{ID: "u3"}, &mockCourseAccessRepository{}, &mockEntitlements{premium: true}},
		{"admin", auth.User{ID: "a1", Role: auth.RoleAdmin}, &mockCourseAccessRepository{}, &mockEntitlements{}},
	}

	for _, tt := range users {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAccessService(t, tt.accessRepo, &mockLastWatchRepository{}, tt.entitlements, &mockCoinLedger{}, &mockNotifier{})

			accessible, err := svc.AccessibleCourseIDs(context.Background(), tt.user)
			require.NoError(t, err)

			for _, course := range testCatalog(t).All() {
				direct, err := svc.HasAccess(context.Background(), tt.user, course)
				require.NoError(t, err)
				_, inSet := accessible[course.ID]
				assert.Equal(t, direct, inSet, "course %s", course.ID)
			}
		})
	}
}

func TestAccessService_OwnedCourseIDs_Cached(t *testing.T) {
	accessRepo := &mockCourseAccessRepository{courseIDs: []string{"go-basics"}}
	watchRepo := &mockLastWatchRepository{courseIDs: []string{"intro"}}
	svc := newTestAccessService(t, accessRepo, watchRepo, &mockEntitlements{}, &mockCoinLedger{}, &mockNotifier{})

	owned, err := svc.OwnedCourseIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Contains(t, owned, "go-basics")
	assert.Contains(t, owned, "intro")

	// Second call is served from cache even when the database breaks
	accessRepo.idsErr = errors.New("database error")
	owned, err = svc.OwnedCourseIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, owned, 2)
}

func TestAccessService_PurchaseInvalidatesOwnedCourses(t *testing.T) {
	accessRepo := &mockCourseAccessRepository{created: true}
	watchRepo := &mockLastWatchRepository{}
	ledger := &mockCoinLedger{paid: true}
	svc := newTestAccessService(t, accessRepo, watchRepo, &mockEntitlements{}, ledger, &mockNotifier{})
	user := auth.User{ID: "u1"}

	owned, err := svc.OwnedCourseIDs(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)

	_, err = svc.PurchaseCourse(context.Background(), user, "go-basics")
	require.NoError(t, err)

	// The purchase invalidated the cached owned set, so the next read
	// recomputes from the repositories instead of serving the empty set
	accessRepo.courseIDs = []string{"go-basics"}
	owned, err = svc.OwnedCourseIDs(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Contains(t, owned, "go-basics")
}

func TestAccessService_WatchInvalidatesOwnedCourses(t *testing.T) {
	accessRepo := &mockCourseAccessRepository{}
	watchRepo := &mockLastWatchRepository{}
	svc := newTestAccessService(t, accessRepo, watchRepo, &mockEntitlements{}, &mockCoinLedger{}, &mockNotifier{})

	owned, err := svc.OwnedCourseIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, owned)

	require.NoError(t, svc.WatchCourse(context.Background(), "u1", "go-basics"))

	watchRepo.courseIDs = []string{"go-basics"}
	owned, err = svc.OwnedCourseIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Contains(t, owned, "go-basics")
}

func TestAccessService_PurchaseCourse(t *testing.T) {
	tests := []struct {
		name          string
		courseID      string
		accessRepo    *mockCourseAccessRepository
		ledger        *mockCoinLedger
		expectedErr   error
		expectReceipt bool
		expectDebit   bool
		expectRecord  bool
	}{
		{
			name:        "unknown course",
			courseID:    "missing",
			accessRepo:  &mockCourseAccessRepository{},
			ledger:      &mockCoinLedger{},
			expectedErr: apperrors.ErrCourseNotFound,
		},
		{
			name:        "free course cannot be bought",
			courseID:    "intro",
			accessRepo:  &mockCourseAccessRepository{},
			ledger:      &mockCoinLedger{},
			expectedErr: apperrors.ErrCourseIsFree,
		},
		{
			name:        "already purchased",
			courseID:    "go-basics",
			accessRepo:  &mockCourseAccessRepository{exists: true},
			ledger:      &mockCoinLedger{},
			expectedErr: apperrors.ErrAlreadyPurchased,
		},
		{
			name:        "insufficient coins creates no record",
			courseID:    "go-basics",
			accessRepo:  &mockCourseAccessRepository{},
			ledger:      &mockCoinLedger{paid: false},
			expectedErr: apperrors.ErrNotEnoughCoins,
			expectDebit: true,
		},
		{
			name:          "success",
			courseID:      "go-basics",
			accessRepo:    &mockCourseAccessRepository{created: true},
			ledger:        &mockCoinLedger{paid: true},
			expectReceipt: true,
			expectDebit:   true,
			expectRecord:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &mockNotifier{}
			svc := newTestAccessService(t, tt.accessRepo, &mockLastWatchRepository{}, &mockEntitlements{}, tt.ledger, notifier)

			receipt, err := svc.PurchaseCourse(context.Background(), auth.User{ID: "u1"}, tt.courseID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectDebit, tt.ledger.called)
			assert.Equal(t, tt.expectRecord, tt.accessRepo.createCalled)
			if tt.expectReceipt {
				require.NotNil(t, receipt)
				assert.Equal(t, "u1", receipt.UserID)
				assert.Equal(t, "go-basics", receipt.CourseID)
				assert.Equal(t, 500, receipt.Price)
				assert.Equal(t, 500, tt.ledger.amount)
				assert.True(t, notifier.called)
			} else {
				assert.Nil(t, receipt)
			}
		})
	}
}

func TestAccessService_PurchaseCourse_NotifierFailureIsNotFatal(t *testing.T) {
	svc := newTestAccessService(t,
		&mockCourseAccessRepository{created: true},
		&mockLastWatchRepository{},
		&mockEntitlements{},
		&mockCoinLedger{paid: true},
		&mockNotifier{err: errors.New("smtp down")},
	)

	receipt, err := svc.PurchaseCourse(context.Background(), auth.User{ID: "u1"}, "go-basics")

	require.NoError(t, err)
	assert.NotNil(t, receipt)
}

func TestAccessService_WatchCourse(t *testing.T) {
	t.Run("unknown course", func(t *testing.T) {
		watchRepo := &mockLastWatchRepository{}
		svc := newTestAccessService(t, &mockCourseAccessRepository{}, watchRepo, &mockEntitlements{}, &mockCoinLedger{}, &mockNotifier{})

		err := svc.WatchCourse(context.Background(), "u1", "missing")

		assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
		assert.False(t, watchRepo.upsertCalled)
	})

	t.Run("success", func(t *testing.T) {
		watchRepo := &mockLastWatchRepository{}
		svc := newTestAccessService(t, &mockCourseAccessRepository{}, watchRepo, &mockEntitlements{}, &mockCoinLedger{}, &mockNotifier{})

		err := svc.WatchCourse(context.Background(), "u1", "go-basics")

		assert.NoError(t, err)
		assert.True(t, watchRepo.upsertCalled)
	})
}
