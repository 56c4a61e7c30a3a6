package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
)

func TestDeleteRole_BlockedWhileAssigned(t *testing.T) {
	db := NewDB()
	repo := NewUserRepository(db)

	role, err := repo.CreateRole(&domain.Role{Name: "moderator"})
	require.NoError(t, err)
	user, err := repo.Create(&domain.User{Email: "m@example.com", RoleID: role.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.DeleteRole(role.ID), common.ErrInUse)

	// detaching the user frees the role
	require.NoError(t, repo.Delete(user.ID))
	assert.NoError(t, repo.DeleteRole(role.ID))
}

func TestDeleteRole_BlockedByForumGrant(t *testing.T) {
	db := NewDB()
	repo := NewUserRepository(db)
	forums := NewForumRepository(db)

	role, err := repo.CreateRole(&domain.Role{Name: "editor"})
	require.NoError(t, err)
	other, err := repo.CreateRole(&domain.Role{Name: "member"})
	require.NoError(t, err)
	user, err := repo.Create(&domain.User{Email: "e@example.com", RoleID: other.ID})
	require.NoError(t, err)
	forum, err := forums.Create(&domain.Forum{Name: "F", Slug: "f"})
	require.NoError(t, err)

	grant, err := repo.AssignForumRole(user.ID, forum.ID, role.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.DeleteRole(role.ID), common.ErrInUse)

	require.NoError(t, repo.RemoveForumRole(grant.ID))
	assert.NoError(t, repo.DeleteRole(role.ID))
}

func TestAssignForumRole_UpsertsPerUserForum(t *testing.T) {
	db := NewDB()
	repo := NewUserRepository(db)
	forums := NewForumRepository(db)

	r1, err := repo.CreateRole(&domain.Role{Name: "member"})
	require.NoError(t, err)
	r2, err := repo.CreateRole(&domain.Role{Name: "admin"})
	require.NoError(t, err)
	user, err := repo.Create(&domain.User{Email: "u@example.com", RoleID: r1.ID})
	require.NoError(t, err)
	forum, err := forums.Create(&domain.Forum{Name: "F", Slug: "f"})
	require.NoError(t, err)

	_, err = repo.AssignForumRole(user.ID, forum.ID, r1.ID)
	require.NoError(t, err)
	_, err = repo.AssignForumRole(user.ID, forum.ID, r2.ID)
	require.NoError(t, err)

	grants, err := repo.FindForumRolesByUser(user.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, r2.ID, grants[0].RoleID)
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(NewDB())

	_, err := repo.Create(&domain.User{Email: "dup@example.com"})
	require.NoError(t, err)
	_, err = repo.Create(&domain.User{Email: "dup@example.com"})
	assert.ErrorIs(t, err, common.ErrConstraintViolation)
}
