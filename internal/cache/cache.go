// Package cache provides the derived-value cache. Entries are grouped
// into namespaces; mutating operations invalidate whole namespaces
// because the writing side knows which derivations are affected but
// not which keys exist.
package cache

import (
	"context"
	"time"
)

// Cache namespaces. Every mutating call site declares the namespaces
// its write affects.
const (
	NamespaceCourseAccess    = "course_access"
	NamespaceLectureProgress = "lecture_progress"
	NamespaceXP              = "xp"
	NamespaceSkills          = "skills"
)

// Cache is a namespaced TTL cache for derived values. Values are
// JSON-serialized; dest on Get must be a pointer.
type Cache interface {
	// Get loads the entry for (namespace, key) into dest.
	// Returns false without touching dest on a miss.
	Get(ctx context.Context, namespace, key string, dest any) (bool, error)

	// Set stores value under (namespace, key) with the given TTL
	Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) error

	// InvalidateNamespace drops every entry in the namespace
	InvalidateNamespace(ctx context.Context, namespace string) error
}
