package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillacademy/course-service/internal/catalog"
	"github.com/skillacademy/course-service/internal/models"
)

// testCatalog builds the catalog used across service tests: one paid
// course with two sections and one free course.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.New(
		&models.Course{
			ID:       "go-basics",
			Title:    "Go Basics",
			Language: "en",
			Authors:  []models.Author{{Name: "Pat Doe"}},
			Price:    500,
			Sections: []models.Section{
				{
					ID:    "s1",
					Title: "Getting Started",
					Lectures: []models.Lecture{
						{ID: "l1", Title: "Installation", Type: "mp4", Duration: 300},
						{ID: "l2", Title: "Hello World", Type: "mp4", Duration: 600},
					},
				},
				{
					ID:    "s2",
					Title: "Syntax",
					Lectures: []models.Lecture{
						{ID: "l3", Title: "Variables", Type: "mp4", Duration: 450},
						{ID: "l4", Title: "Cheat Sheet", Type: "pdf"},
					},
				},
			},
		},
		&models.Course{
			ID:    "intro",
			Title: "Introduction to Programming",
			Free:  true,
			Sections: []models.Section{
				{
					ID:    "s1",
					Title: "Basics",
					Lectures: []models.Lecture{
						{ID: "i1", Title: "What is Code", Type: "mp4", Duration: 200},
					},
				},
			},
		},
	)
	require.NoError(t, err)

	return cat
}

// mockCourseAccessRepository is a mock implementation of CourseAccessRepository
type mockCourseAccessRepository struct {
	exists       bool
	existsErr    error
	created      bool
	createErr    error
	createCalled bool
	courseIDs    []string
	idsErr       error
}

func (m *mockCourseAccessRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.exists, nil
}

func (m *mockCourseAccessRepository) CreateIfAbsent(ctx context.Context, userID, courseID string) (bool, error) {
	m.createCalled = true
	if m.createErr != nil {
		return false, m.createErr
	}
	return m.created, nil
}

func (m *mockCourseAccessRepository) GetCourseIDsByUser(ctx context.Context, userID string) ([]string, error) {
	if m.idsErr != nil {
		return nil, m.idsErr
	}
	return m.courseIDs, nil
}

// mockLastWatchRepository is a mock implementation of LastWatchRepository
type mockLastWatchRepository struct {
	upsertErr    error
	upsertCalled bool
	courseIDs    []string
	idsErr       error
	timestamps   map[string]time.Time
	tsErr        error
}

func (m *mockLastWatchRepository) Upsert(ctx context.Context, userID, courseID string) error {
	m.upsertCalled = true
	return m.upsertErr
}

func (m *mockLastWatchRepository) GetCourseIDsByUser(ctx context.Context, userID string) ([]string, error) {
	if m.idsErr != nil {
		return nil, m.idsErr
	}
	return m.courseIDs, nil
}

func (m *mockLastWatchRepository) GetTimestampsByUser(ctx context.Context, userID string) (map[string]time.Time, error) {
	if m.tsErr != nil {
		return nil, m.tsErr
	}
	return m.timestamps, nil
}

// mockEntitlements is a mock implementation of Entitlements
type mockEntitlements struct {
	premium bool
	err     error
	calls   int
}

func (m *mockEntitlements) HasPremium(ctx context.Context, userID string) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	return m.premium, nil
}

// mockCoinLedger is a mock implementation of CoinLedger
type mockCoinLedger struct {
	paid        bool
	err         error
	called      bool
	amount      int
	description string
}

func (m *mockCoinLedger) SpendCoins(ctx context.Context, userID string, amount int, description string) (bool, error) {
	m.called = true
	m.amount = amount
	m.description = description
	if m.err != nil {
		return false, m.err
	}
	return m.paid, nil
}

// mockNotifier is a mock implementation of Notifier
type mockNotifier struct {
	err    error
	called bool
}

func (m *mockNotifier) SendPurchaseConfirmation(ctx context.Context, userID, courseTitle string) error {
	m.called = true
	return m.err
}

// mockLectureProgressRepository is a mock implementation of LectureProgressRepository
type mockLectureProgressRepository struct {
	created      bool
	createErr    error
	createCalled bool
	completed    []string
	completedErr error
	byUser       map[string][]string
	byUserErr    error
}

func (m *mockLectureProgressRepository) CreateIfAbsent(ctx context.Context, userID, courseID, lectureID string) (bool, error) {
	m.createCalled = true
	if m.createErr != nil {
		return false, m.createErr
	}
	return m.created, nil
}

func (m *mockLectureProgressRepository) GetCompletedLectures(ctx context.Context, userID, courseID string) ([]string, error) {
	if m.completedErr != nil {
		return nil, m.completedErr
	}
	return m.completed, nil
}

func (m *mockLectureProgressRepository) GetCompletedByUser(ctx context.Context, userID string) (map[string][]string, error) {
	if m.byUserErr != nil {
		return nil, m.byUserErr
	}
	return m.byUser, nil
}

// mockSkillRepository is a mock implementation of SkillRepository
type mockSkillRepository struct {
	skillIDs []string
	err      error
}

func (m *mockSkillRepository) GetSkillIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.skillIDs, nil
}

// xpAward records one AddXP call
type xpAward struct {
	skillID string
	amount  int
}

// mockXPRepository is a mock implementation of XPRepository
type mockXPRepository struct {
	err     error
	failFor string // skill ID that returns err; empty fails all when err is set
	awards  []xpAward
}

func (m *mockXPRepository) AddXP(ctx context.Context, userID, skillID string, amount int) error {
	if m.err != nil && (m.failFor == "" || m.failFor == skillID) {
		return m.err
	}
	m.awards = append(m.awards, xpAward{skillID: skillID, amount: amount})
	return nil
}

// mockStreamTokenRepository is a mock implementation of StreamTokenRepository
type mockStreamTokenRepository struct {
	saveErr    error
	savedToken string
	savedName  string
	savedPath  string
	savedTTL   time.Duration
	path       string
	getErr     error
}

func (m *mockStreamTokenRepository) Save(ctx context.Context, token, name, path string, ttl time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedToken = token
	m.savedName = name
	m.savedPath = path
	m.savedTTL = ttl
	return nil
}

func (m *mockStreamTokenRepository) GetPath(ctx context.Context, token, name string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.path, nil
}

// mockSkillCatalogRepository is a mock implementation of SkillCatalogRepository
type mockSkillCatalogRepository struct {
	root    *models.RootSkill
	rootErr error
	sub     *models.SubSkill
	subErr  error
}

func (m *mockSkillCatalogRepository) GetRootSkill(ctx context.Context, rootSkillID string) (*models.RootSkill, error) {
	if m.rootErr != nil {
		return nil, m.rootErr
	}
	return m.root, nil
}

func (m *mockSkillCatalogRepository) GetSubSkill(ctx context.Context, rootSkillID, subSkillID string) (*models.SubSkill, error) {
	if m.subErr != nil {
		return nil, m.subErr
	}
	return m.sub, nil
}

// mockBookmarkRepository is a mock implementation of BookmarkRepository
type mockBookmarkRepository struct {
	exists       bool
	existsErr    error
	createErr    error
	createCalled int
	deleted      bool
	deleteErr    error
	deleteCalled int
}

func (m *mockBookmarkRepository) Exists(ctx context.Context, userID, rootSkillID, subSkillID string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.exists, nil
}

func (m *mockBookmarkRepository) Create(ctx context.Context, bookmark *models.SubSkillBookmark) error {
	m.createCalled++
	if m.createErr != nil {
		return m.createErr
	}
	bookmark.BookmarkID = m.createCalled
	return nil
}

func (m *mockBookmarkRepository) Delete(ctx context.Context, userID, rootSkillID, subSkillID string) (bool, error) {
	m.deleteCalled++
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	return m.deleted, nil
}

// mockSolvedSubtasksSource is a mock implementation of SolvedSubtasksSource
type mockSolvedSubtasksSource struct {
	subtasks []models.Subtask
	err      error
}

func (m *mockSolvedSubtasksSource) SolvedSubtasks(ctx context.Context, authToken string) ([]models.Subtask, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.subtasks, nil
}
