// Package catalog provides the in-memory course index. Courses are
// loaded once at startup from JSON files and are read-only afterwards.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/skillacademy/course-service/internal/models"
)

// Catalog is a read-mostly mapping from course ID to course structure
type Catalog struct {
	courses map[string]*models.Course
}

// Load reads all course JSON files from the given directory and builds
// the catalog. File names are not significant; the course ID comes
// from the document itself.
func Load(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read courses directory: %w", err)
	}

	courses := make(map[string]*models.Course)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read course file %s: %w", entry.Name(), err)
		}

		var course models.Course
		if err := json.Unmarshal(data, &course); err != nil {
			return nil, fmt.Errorf("failed to parse course file %s: %w", entry.Name(), err)
		}

		if course.ID == "" {
			return nil, fmt.Errorf("course file %s has no id", entry.Name())
		}
		if _, exists := courses[course.ID]; exists {
			return nil, fmt.Errorf("duplicate course id %q", course.ID)
		}
		if err := validateLectureIDs(&course); err != nil {
			return nil, fmt.Errorf("course %q: %w", course.ID, err)
		}

		courses[course.ID] = &course
	}

	return &Catalog{courses: courses}, nil
}

// New builds a catalog from already-loaded courses
func New(courses ...*models.Course) (*Catalog, error) {
	byID := make(map[string]*models.Course, len(courses))
	for _, course := range courses {
		if course.ID == "" {
			return nil, fmt.Errorf("course has no id")
		}
		if _, exists := byID[course.ID]; exists {
			return nil, fmt.Errorf("duplicate course id %q", course.ID)
		}
		if err := validateLectureIDs(course); err != nil {
			return nil, fmt.Errorf("course %q: %w", course.ID, err)
		}
		byID[course.ID] = course
	}
	return &Catalog{courses: byID}, nil
}

// validateLectureIDs checks that lecture IDs are unique within the course
func validateLectureIDs(course *models.Course) error {
	seen := make(map[string]struct{})
	for _, section := range course.Sections {
		for _, lecture := range section.Lectures {
			if _, dup := seen[lecture.ID]; dup {
				return fmt.Errorf("duplicate lecture id %q", lecture.ID)
			}
			seen[lecture.ID] = struct{}{}
		}
	}
	return nil
}

// Get returns the course with the given ID
func (c *Catalog) Get(courseID string) (*models.Course, bool) {
	course, ok := c.courses[courseID]
	return course, ok
}

// Lecture returns the section and lecture for the given course and lecture ID
func (c *Catalog) Lecture(courseID, lectureID string) (*models.Section, *models.Lecture, bool) {
	course, ok := c.courses[courseID]
	if !ok {
		return nil, nil, false
	}
	return course.FindLecture(lectureID)
}

// All returns all courses ordered by course ID
func (c *Catalog) All() []*models.Course {
	out := make([]*models.Course, 0, len(c.courses))
	for _, course := range c.courses {
		out = append(out, course)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the set of known course IDs
func (c *Catalog) IDs() map[string]struct{} {
	out := make(map[string]struct{}, len(c.courses))
	for id := range c.courses {
		out[id] = struct{}{}
	}
	return out
}

// Len returns the number of courses in the catalog
func (c *Catalog) Len() int {
	return len(c.courses)
}
