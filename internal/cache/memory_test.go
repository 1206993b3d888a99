package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var miss []string
	hit, err := c.Get(ctx, NamespaceCourseAccess, "u1", &miss)
	require.NoError(t, err)
	assert.False(t, hit)

	err = c.Set(ctx, NamespaceCourseAccess, "u1", []string{"c1", "c2"}, time.Minute)
	require.NoError(t, err)

	var got []string
	hit, err = c.Get(ctx, NamespaceCourseAccess, "u1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"c1", "c2"}, got)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	err := c.Set(ctx, NamespaceLectureProgress, "c1:u1", []string{"l1"}, -time.Second)
	require.NoError(t, err)

	var got []string
	hit, err := c.Get(ctx, NamespaceLectureProgress, "c1:u1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_InvalidateNamespace(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, NamespaceCourseAccess, "u1", []string{"c1"}, time.Minute))
	require.NoError(t, c.Set(ctx, NamespaceCourseAccess, "u2", []string{"c2"}, time.Minute))
	require.NoError(t, c.Set(ctx, NamespaceXP, "u1", 42, time.Minute))

	require.NoError(t, c.InvalidateNamespace(ctx, NamespaceCourseAccess))

	var got []string
	hit, err := c.Get(ctx, NamespaceCourseAccess, "u1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = c.Get(ctx, NamespaceCourseAccess, "u2", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	// Other namespaces are untouched
	var xp int
	hit, err = c.Get(ctx, NamespaceXP, "u1", &xp)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, xp)
}

func TestMemoryCache_NamespaceIsolation(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, NamespaceCourseAccess, "k", "access", time.Minute))
	require.NoError(t, c.Set(ctx, NamespaceSkills, "k", "skills", time.Minute))

	var got string
	hit, err := c.Get(ctx, NamespaceSkills, "k", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "skills", got)
}
