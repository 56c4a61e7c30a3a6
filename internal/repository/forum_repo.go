package repository

import (
	"fmt"
	"sort"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
)

// ForumRepository forum and category data access
type ForumRepository interface {
	Create(forum *domain.Forum) (*domain.Forum, error)
	FindByID(id int64) (*domain.Forum, error)
	FindBySlug(slug string) (*domain.Forum, error)
	Update(id int64, patch ForumPatch) (*domain.Forum, error)
	Delete(id int64) error
	FindByOwner(userID int64) ([]*domain.Forum, error)

	CreateCategory(category *domain.Category) (*domain.Category, error)
	FindCategoryByID(id int64) (*domain.Category, error)
	UpdateCategory(id int64, patch CategoryPatch) (*domain.Category, error)
	DeleteCategory(id int64) error
	FindCategoriesByForum(forumID int64) ([]*domain.Category, error)
}

// ForumPatch is a partial-field update; nil fields are left unchanged.
// An empty-string Subdomain or CustomDomain clears the value.
type ForumPatch struct {
	Name         *string
	Description  *string
	Subdomain    *string
	CustomDomain *string
	IsPublic     *bool
	IsListed     *bool
}

// CategoryPatch is a partial-field update for categories
type CategoryPatch struct {
	Name        *string
	Slug        *string
	Description *string
}

type forumRepository struct {
	db *DB
}

// NewForumRepository creates a new ForumRepository
func NewForumRepository(db *DB) ForumRepository {
	return &forumRepository{db: db}
}

func cloneForum(f *domain.Forum) *domain.Forum {
	out := *f
	if f.Subdomain != nil {
		s := *f.Subdomain
		out.Subdomain = &s
	}
	if f.CustomDomain != nil {
		s := *f.CustomDomain
		out.CustomDomain = &s
	}
	return &out
}

func cloneCategory(c *domain.Category) *domain.Category {
	out := *c
	return &out
}

// slugTaken must be called with db.mu held
func (r *forumRepository) slugTaken(slug string, excludeID int64) bool {
	for _, f := range r.db.forums {
		if f.ID != excludeID && f.Slug == slug {
			return true
		}
	}
	return false
}

func (r *forumRepository) subdomainTaken(subdomain string, excludeID int64) bool {
	for _, f := range r.db.forums {
		if f.ID != excludeID && f.Subdomain != nil && *f.Subdomain == subdomain {
			return true
		}
	}
	return false
}

func (r *forumRepository) customDomainTaken(dom string, excludeID int64) bool {
	for _, f := range r.db.forums {
		if f.ID != excludeID && f.CustomDomain != nil && *f.CustomDomain == dom {
			return true
		}
	}
	return false
}

func (r *forumRepository) Create(forum *domain.Forum) (*domain.Forum, error) {
	if forum.Name == "" || forum.Slug == "" {
		return nil, fmt.Errorf("forum name and slug required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.slugTaken(forum.Slug, 0) {
		return nil, fmt.Errorf("slug %q: %w", forum.Slug, common.ErrConstraintViolation)
	}
	if forum.Subdomain != nil && r.subdomainTaken(*forum.Subdomain, 0) {
		return nil, fmt.Errorf("subdomain %q: %w", *forum.Subdomain, common.ErrConstraintViolation)
	}
	if forum.CustomDomain != nil && r.customDomainTaken(*forum.CustomDomain, 0) {
		return nil, fmt.Errorf("custom domain %q: %w", *forum.CustomDomain, common.ErrConstraintViolation)
	}

	stored := cloneForum(forum)
	stored.ID = r.db.nextID("forums")
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	r.db.forums[stored.ID] = stored

	return cloneForum(stored), nil
}

func (r *forumRepository) FindByID(id int64) (*domain.Forum, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	f, ok := r.db.forums[id]
	if !ok {
		return nil, fmt.Errorf("forum %d: %w", id, common.ErrNotFound)
	}
	return cloneForum(f), nil
}

func (r *forumRepository) FindBySlug(slug string) (*domain.Forum, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, f := range r.db.forums {
		if f.Slug == slug {
			return cloneForum(f), nil
		}
	}
	return nil, fmt.Errorf("forum slug %q: %w", slug, common.ErrNotFound)
}

func (r *forumRepository) Update(id int64, patch ForumPatch) (*domain.Forum, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	f, ok := r.db.forums[id]
	if !ok {
		return nil, fmt.Errorf("forum %d: %w", id, common.ErrNotFound)
	}

	if patch.Subdomain != nil && *patch.Subdomain != "" && r.subdomainTaken(*patch.Subdomain, id) {
		return nil, fmt.Errorf("subdomain %q: %w", *patch.Subdomain, common.ErrConstraintViolation)
	}
	if patch.CustomDomain != nil && *patch.CustomDomain != "" && r.customDomainTaken(*patch.CustomDomain, id) {
		return nil, fmt.Errorf("custom domain %q: %w", *patch.CustomDomain, common.ErrConstraintViolation)
	}

	if patch.Name != nil {
		f.Name = *patch.Name
	}
	if patch.Description != nil {
		f.Description = *patch.Description
	}
	if patch.Subdomain != nil {
		if *patch.Subdomain == "" {
			f.Subdomain = nil
		} else {
			s := *patch.Subdomain
			f.Subdomain = &s
		}
	}
	if patch.CustomDomain != nil {
		if *patch.CustomDomain == "" {
			f.CustomDomain = nil
		} else {
			s := *patch.CustomDomain
			f.CustomDomain = &s
		}
	}
	if patch.IsPublic != nil {
		f.IsPublic = *patch.IsPublic
	}
	if patch.IsListed != nil {
		f.IsListed = *patch.IsListed
	}
	f.UpdatedAt = r.db.now()

	return cloneForum(f), nil
}

// Delete removes the forum row only; dependents are the caller's
// responsibility to detach
func (r *forumRepository) Delete(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.forums[id]; !ok {
		return fmt.Errorf("forum %d: %w", id, common.ErrNotFound)
	}
	delete(r.db.forums, id)
	return nil
}

func (r *forumRepository) FindByOwner(userID int64) ([]*domain.Forum, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.Forum
	for _, f := range r.db.forums {
		if f.OwnerID == userID {
			out = append(out, cloneForum(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *forumRepository) CreateCategory(category *domain.Category) (*domain.Category, error) {
	if category.Name == "" || category.Slug == "" {
		return nil, fmt.Errorf("category name and slug required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.forums[category.ForumID]; !ok {
		return nil, fmt.Errorf("forum %d: %w", category.ForumID, common.ErrNotFound)
	}

	stored := cloneCategory(category)
	stored.ID = r.db.nextID("categories")
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	r.db.categories[stored.ID] = stored

	return cloneCategory(stored), nil
}

func (r *forumRepository) FindCategoryByID(id int64) (*domain.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	return cloneCategory(c), nil
}

func (r *forumRepository) UpdateCategory(id int64, patch CategoryPatch) (*domain.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}

	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Slug != nil {
		c.Slug = *patch.Slug
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	c.UpdatedAt = r.db.now()

	return cloneCategory(c), nil
}

func (r *forumRepository) DeleteCategory(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.categories[id]; !ok {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	delete(r.db.categories, id)
	return nil
}

func (r *forumRepository) FindCategoriesByForum(forumID int64) ([]*domain.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.Category
	for _, c := range r.db.categories {
		if c.ForumID == forumID {
			out = append(out, cloneCategory(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
