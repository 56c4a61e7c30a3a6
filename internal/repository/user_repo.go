package repository

import (
	"fmt"
	"sort"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
)

// UserRepository user, role and permission data access
type UserRepository interface {
	Create(user *domain.User) (*domain.User, error)
	FindByID(id int64) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	Update(id int64, patch UserPatch) (*domain.User, error)
	Delete(id int64) error

	CreateRole(role *domain.Role) (*domain.Role, error)
	FindRoleByID(id int64) (*domain.Role, error)
	ListRoles() ([]*domain.Role, error)
	DeleteRole(id int64) error

	CreatePermission(perm *domain.Permission) (*domain.Permission, error)
	ListPermissions() ([]*domain.Permission, error)

	AssignForumRole(userID, forumID, roleID int64) (*domain.UserForumRole, error)
	FindForumRolesByUser(userID int64) ([]*domain.UserForumRole, error)
	RemoveForumRole(id int64) error
}

// UserPatch is a partial-field update; nil fields are left unchanged
type UserPatch struct {
	Email       *string
	Username    *string
	DisplayName *string
	RoleID      *int64
}

type userRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *DB) UserRepository {
	return &userRepository{db: db}
}

func cloneUser(u *domain.User) *domain.User {
	out := *u
	return &out
}

func (r *userRepository) Create(user *domain.User) (*domain.User, error) {
	if user.Email == "" {
		return nil, fmt.Errorf("user email required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("email %q: %w", user.Email, common.ErrConstraintViolation)
		}
	}

	stored := cloneUser(user)
	stored.ID = r.db.nextID("users")
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	r.db.users[stored.ID] = stored

	return cloneUser(stored), nil
}

func (r *userRepository) FindByID(id int64) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, common.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *userRepository) FindByEmail(email string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, common.ErrNotFound)
}

func (r *userRepository) Update(id int64, patch UserPatch) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, common.ErrNotFound)
	}

	if patch.Email != nil {
		for _, other := range r.db.users {
			if other.ID != id && other.Email == *patch.Email {
				return nil, fmt.Errorf("email %q: %w", *patch.Email, common.ErrConstraintViolation)
			}
		}
		u.Email = *patch.Email
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.RoleID != nil {
		if _, ok := r.db.roles[*patch.RoleID]; !ok {
			return nil, fmt.Errorf("role %d: %w", *patch.RoleID, common.ErrNotFound)
		}
		u.RoleID = *patch.RoleID
	}
	u.UpdatedAt = r.db.now()

	return cloneUser(u), nil
}

func (r *userRepository) Delete(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return fmt.Errorf("user %d: %w", id, common.ErrNotFound)
	}
	delete(r.db.users, id)
	return nil
}

func (r *userRepository) CreateRole(role *domain.Role) (*domain.Role, error) {
	if role.Name == "" {
		return nil, fmt.Errorf("role name required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.roles {
		if existing.Name == role.Name {
			return nil, fmt.Errorf("role %q: %w", role.Name, common.ErrConstraintViolation)
		}
	}

	stored := *role
	stored.ID = r.db.nextID("roles")
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	r.db.roles[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *userRepository) FindRoleByID(id int64) (*domain.Role, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	role, ok := r.db.roles[id]
	if !ok {
		return nil, fmt.Errorf("role %d: %w", id, common.ErrNotFound)
	}
	out := *role
	return &out, nil
}

func (r *userRepository) ListRoles() ([]*domain.Role, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]*domain.Role, 0, len(r.db.roles))
	for _, role := range r.db.roles {
		c := *role
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteRole refuses to remove a role that any user or forum-scoped
// grant still references. There is no automatic cascade.
func (r *userRepository) DeleteRole(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.roles[id]; !ok {
		return fmt.Errorf("role %d: %w", id, common.ErrNotFound)
	}
	for _, u := range r.db.users {
		if u.RoleID == id {
			return fmt.Errorf("role %d assigned to user %d: %w", id, u.ID, common.ErrInUse)
		}
	}
	for _, g := range r.db.userForumRoles {
		if g.RoleID == id {
			return fmt.Errorf("role %d granted via forum role %d: %w", id, g.ID, common.ErrInUse)
		}
	}
	delete(r.db.roles, id)
	return nil
}

func (r *userRepository) CreatePermission(perm *domain.Permission) (*domain.Permission, error) {
	if perm.Name == "" {
		return nil, fmt.Errorf("permission name required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.permissions {
		if existing.Name == perm.Name {
			return nil, fmt.Errorf("permission %q: %w", perm.Name, common.ErrConstraintViolation)
		}
	}

	stored := *perm
	stored.ID = r.db.nextID("permissions")
	stored.CreatedAt = r.db.now()
	r.db.permissions[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *userRepository) ListPermissions() ([]*domain.Permission, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]*domain.Permission, 0, len(r.db.permissions))
	for _, p := range r.db.permissions {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *userRepository) AssignForumRole(userID, forumID, roleID int64) (*domain.UserForumRole, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[userID]; !ok {
		return nil, fmt.Errorf("user %d: %w", userID, common.ErrNotFound)
	}
	if _, ok := r.db.forums[forumID]; !ok {
		return nil, fmt.Errorf("forum %d: %w", forumID, common.ErrNotFound)
	}
	if _, ok := r.db.roles[roleID]; !ok {
		return nil, fmt.Errorf("role %d: %w", roleID, common.ErrNotFound)
	}

	// Upsert per (user, forum): a user holds one role per forum
	for _, g := range r.db.userForumRoles {
		if g.UserID == userID && g.ForumID == forumID {
			g.RoleID = roleID
			out := *g
			return &out, nil
		}
	}

	stored := &domain.UserForumRole{
		ID:        r.db.nextID("user_forum_roles"),
		UserID:    userID,
		ForumID:   forumID,
		RoleID:    roleID,
		CreatedAt: r.db.now(),
	}
	r.db.userForumRoles[stored.ID] = stored

	out := *stored
	return &out, nil
}

func (r *userRepository) FindForumRolesByUser(userID int64) ([]*domain.UserForumRole, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.UserForumRole
	for _, g := range r.db.userForumRoles {
		if g.UserID == userID {
			c := *g
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *userRepository) RemoveForumRole(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.userForumRoles[id]; !ok {
		return fmt.Errorf("forum role %d: %w", id, common.ErrNotFound)
	}
	delete(r.db.userForumRoles, id)
	return nil
}
