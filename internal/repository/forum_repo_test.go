package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestForumCreate_DuplicateSlug(t *testing.T) {
	repo := NewForumRepository(NewDB())

	_, err := repo.Create(&domain.Forum{Name: "First", Slug: "first"})
	require.NoError(t, err)

	_, err = repo.Create(&domain.Forum{Name: "Second", Slug: "first"})
	assert.ErrorIs(t, err, common.ErrConstraintViolation)
}

func TestForumCreate_DuplicateSubdomain(t *testing.T) {
	repo := NewForumRepository(NewDB())

	_, err := repo.Create(&domain.Forum{Name: "First", Slug: "first", Subdomain: strPtr("apex")})
	require.NoError(t, err)

	_, err = repo.Create(&domain.Forum{Name: "Second", Slug: "second", Subdomain: strPtr("apex")})
	assert.ErrorIs(t, err, common.ErrConstraintViolation)
}

func TestForumCreate_StampsTimestamps(t *testing.T) {
	repo := NewForumRepository(NewDB())

	forum, err := repo.Create(&domain.Forum{Name: "First", Slug: "first"})
	require.NoError(t, err)
	assert.False(t, forum.CreatedAt.IsZero())
	assert.Equal(t, forum.CreatedAt, forum.UpdatedAt)
	assert.Equal(t, int64(1), forum.ID)
}

func TestForumUpdate_PartialMerge(t *testing.T) {
	repo := NewForumRepository(NewDB())

	forum, err := repo.Create(&domain.Forum{Name: "First", Slug: "first", Subdomain: strPtr("apex")})
	require.NoError(t, err)

	updated, err := repo.Update(forum.ID, ForumPatch{Name: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	// untouched fields survive the merge
	assert.Equal(t, "first", updated.Slug)
	require.NotNil(t, updated.Subdomain)
	assert.Equal(t, "apex", *updated.Subdomain)
}

func TestForumUpdate_NotFound(t *testing.T) {
	repo := NewForumRepository(NewDB())

	_, err := repo.Update(99, ForumPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestForumDelete_NotFound(t *testing.T) {
	repo := NewForumRepository(NewDB())
	assert.ErrorIs(t, repo.Delete(42), common.ErrNotFound)
}

func TestCategories_PartitionAcrossForums(t *testing.T) {
	db := NewDB()
	repo := NewForumRepository(db)

	f1, err := repo.Create(&domain.Forum{Name: "One", Slug: "one"})
	require.NoError(t, err)
	f2, err := repo.Create(&domain.Forum{Name: "Two", Slug: "two"})
	require.NoError(t, err)

	_, err = repo.CreateCategory(&domain.Category{ForumID: f1.ID, Name: "General", Slug: "general"})
	require.NoError(t, err)
	_, err = repo.CreateCategory(&domain.Category{ForumID: f2.ID, Name: "General", Slug: "general"})
	require.NoError(t, err)

	cats, err := repo.FindCategoriesByForum(f1.ID)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
	assert.Equal(t, f1.ID, cats[0].ForumID)
}

func TestForumReturnedRecordIsDetached(t *testing.T) {
	repo := NewForumRepository(NewDB())

	forum, err := repo.Create(&domain.Forum{Name: "First", Slug: "first"})
	require.NoError(t, err)

	forum.Name = "mutated locally"

	reread, err := repo.FindByID(forum.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", reread.Name)
}
