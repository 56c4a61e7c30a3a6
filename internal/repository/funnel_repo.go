package repository

import (
	"fmt"
	"sort"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
)

// FunnelRepository funnel definition and analytics data access
type FunnelRepository interface {
	CreateDefinition(def *domain.FunnelDefinition) (*domain.FunnelDefinition, error)
	FindDefinitionByID(id int64) (*domain.FunnelDefinition, error)
	UpdateDefinition(id int64, patch FunnelPatch) (*domain.FunnelDefinition, error)
	DeleteDefinition(id int64) error
	FindDefinitionsByForum(forumID int64) ([]*domain.FunnelDefinition, error)

	// TrackProgress upserts the (funnel, user) analytic row; moving to
	// the final step marks it completed
	TrackProgress(funnelID, userID int64, step string) (*domain.FunnelAnalytic, error)
	FindAnalyticsByFunnel(funnelID int64) ([]*domain.FunnelAnalytic, error)
}

// FunnelPatch is a partial-field update; nil fields are left unchanged
type FunnelPatch struct {
	Name  *string
	Steps []string
}

type funnelRepository struct {
	db *DB
}

// NewFunnelRepository creates a new FunnelRepository
func NewFunnelRepository(db *DB) FunnelRepository {
	return &funnelRepository{db: db}
}

func cloneFunnel(f *domain.FunnelDefinition) *domain.FunnelDefinition {
	out := *f
	out.Steps = append([]string(nil), f.Steps...)
	return &out
}

func cloneAnalytic(a *domain.FunnelAnalytic) *domain.FunnelAnalytic {
	out := *a
	return &out
}

func (r *funnelRepository) CreateDefinition(def *domain.FunnelDefinition) (*domain.FunnelDefinition, error) {
	if def.Name == "" || len(def.Steps) == 0 {
		return nil, fmt.Errorf("funnel name and steps required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.forums[def.ForumID]; !ok {
		return nil, fmt.Errorf("forum %d: %w", def.ForumID, common.ErrNotFound)
	}

	stored := cloneFunnel(def)
	stored.ID = r.db.nextID("funnel_definitions")
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	r.db.funnels[stored.ID] = stored

	return cloneFunnel(stored), nil
}

func (r *funnelRepository) FindDefinitionByID(id int64) (*domain.FunnelDefinition, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	f, ok := r.db.funnels[id]
	if !ok {
		return nil, fmt.Errorf("funnel %d: %w", id, common.ErrNotFound)
	}
	return cloneFunnel(f), nil
}

func (r *funnelRepository) UpdateDefinition(id int64, patch FunnelPatch) (*domain.FunnelDefinition, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	f, ok := r.db.funnels[id]
	if !ok {
		return nil, fmt.Errorf("funnel %d: %w", id, common.ErrNotFound)
	}

	if patch.Name != nil {
		f.Name = *patch.Name
	}
	if patch.Steps != nil {
		if len(patch.Steps) == 0 {
			return nil, fmt.Errorf("funnel steps cannot be empty: %w", common.ErrInvalidInput)
		}
		f.Steps = append([]string(nil), patch.Steps...)
	}
	f.UpdatedAt = r.db.now()

	return cloneFunnel(f), nil
}

func (r *funnelRepository) DeleteDefinition(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.funnels[id]; !ok {
		return fmt.Errorf("funnel %d: %w", id, common.ErrNotFound)
	}
	delete(r.db.funnels, id)

	for aid, a := range r.db.funnelEntries {
		if a.FunnelID == id {
			delete(r.db.funnelEntries, aid)
		}
	}
	return nil
}

func (r *funnelRepository) FindDefinitionsByForum(forumID int64) ([]*domain.FunnelDefinition, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.FunnelDefinition
	for _, f := range r.db.funnels {
		if f.ForumID == forumID {
			out = append(out, cloneFunnel(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *funnelRepository) TrackProgress(funnelID, userID int64, step string) (*domain.FunnelAnalytic, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	def, ok := r.db.funnels[funnelID]
	if !ok {
		return nil, fmt.Errorf("funnel %d: %w", funnelID, common.ErrNotFound)
	}

	stepIdx := -1
	for i, s := range def.Steps {
		if s == step {
			stepIdx = i
			break
		}
	}
	if stepIdx < 0 {
		return nil, fmt.Errorf("step %q not in funnel %d: %w", step, funnelID, common.ErrInvalidInput)
	}
	completed := stepIdx == len(def.Steps)-1

	for _, a := range r.db.funnelEntries {
		if a.FunnelID == funnelID && a.UserID == userID {
			a.LastStep = step
			if completed {
				a.Completed = true
			}
			a.UpdatedAt = r.db.now()
			return cloneAnalytic(a), nil
		}
	}

	stored := &domain.FunnelAnalytic{
		ID:        r.db.nextID("funnel_analytics"),
		FunnelID:  funnelID,
		UserID:    userID,
		LastStep:  step,
		Completed: completed,
		CreatedAt: r.db.now(),
	}
	stored.UpdatedAt = stored.CreatedAt
	r.db.funnelEntries[stored.ID] = stored

	return cloneAnalytic(stored), nil
}

func (r *funnelRepository) FindAnalyticsByFunnel(funnelID int64) ([]*domain.FunnelAnalytic, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.FunnelAnalytic
	for _, a := range r.db.funnelEntries {
		if a.FunnelID == funnelID {
			out = append(out, cloneAnalytic(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
