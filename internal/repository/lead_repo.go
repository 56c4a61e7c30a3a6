package repository

import (
	"fmt"
	"math"
	"sort"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
)

// LeadRepository lead-capture form, view and submission data access
type LeadRepository interface {
	CreateForm(form *domain.LeadCaptureForm) (*domain.LeadCaptureForm, error)
	FindFormByID(id int64) (*domain.LeadCaptureForm, error)
	UpdateForm(id int64, patch LeadFormPatch) (*domain.LeadCaptureForm, error)
	DeleteForm(id int64) error
	FindFormsByForum(forumID int64) ([]*domain.LeadCaptureForm, error)

	RecordView(formID int64, converted bool) (*domain.LeadFormView, error)
	CountViews(formID int64) (int, error)

	AddSubmission(sub *domain.LeadSubmission) (*domain.LeadSubmission, error)
	FindSubmissionsByForm(formID int64) ([]*domain.LeadSubmission, error)
	FindSubmissionsByForum(forumID int64) ([]*domain.LeadSubmission, error)

	// ConversionRate is submissions / views * 100, 0 when no views
	ConversionRate(formID int64) (float64, error)
}

// LeadFormPatch is a partial-field update; nil fields are left unchanged
type LeadFormPatch struct {
	Name       *string
	Headline   *string
	ButtonText *string
	IsActive   *bool
}

type leadRepository struct {
	db *DB
}

// NewLeadRepository creates a new LeadRepository
func NewLeadRepository(db *DB) LeadRepository {
	return &leadRepository{db: db}
}

func cloneLeadForm(f *domain.LeadCaptureForm) *domain.LeadCaptureForm {
	out := *f
	return &out
}

func cloneSubmission(s *domain.LeadSubmission) *domain.LeadSubmission {
	out := *s
	if s.Payload != nil {
		out.Payload = append([]byte(nil), s.Payload...)
	}
	return &out
}

func (r *leadRepository) CreateForm(form *domain.LeadCaptureForm) (*domain.LeadCaptureForm, error) {
	if form.Name == "" {
		return nil, fmt.Errorf("form name required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.forums[form.ForumID]; !ok {
		return nil, fmt.Errorf("forum %d: %w", form.ForumID, common.ErrNotFound)
	}

	stored := cloneLeadForm(form)
	stored.ID = r.db.nextID("lead_forms")
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	r.db.leadForms[stored.ID] = stored

	return cloneLeadForm(stored), nil
}

func (r *leadRepository) FindFormByID(id int64) (*domain.LeadCaptureForm, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	f, ok := r.db.leadForms[id]
	if !ok {
		return nil, fmt.Errorf("lead form %d: %w", id, common.ErrNotFound)
	}
	return cloneLeadForm(f), nil
}

func (r *leadRepository) UpdateForm(id int64, patch LeadFormPatch) (*domain.LeadCaptureForm, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	f, ok := r.db.leadForms[id]
	if !ok {
		return nil, fmt.Errorf("lead form %d: %w", id, common.ErrNotFound)
	}

	if patch.Name != nil {
		f.Name = *patch.Name
	}
	if patch.Headline != nil {
		f.Headline = *patch.Headline
	}
	if patch.ButtonText != nil {
		f.ButtonText = *patch.ButtonText
	}
	if patch.IsActive != nil {
		f.IsActive = *patch.IsActive
	}
	f.UpdatedAt = r.db.now()

	return cloneLeadForm(f), nil
}

func (r *leadRepository) DeleteForm(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.leadForms[id]; !ok {
		return fmt.Errorf("lead form %d: %w", id, common.ErrNotFound)
	}
	delete(r.db.leadForms, id)
	return nil
}

func (r *leadRepository) FindFormsByForum(forumID int64) ([]*domain.LeadCaptureForm, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.LeadCaptureForm
	for _, f := range r.db.leadForms {
		if f.ForumID == forumID {
			out = append(out, cloneLeadForm(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *leadRepository) RecordView(formID int64, converted bool) (*domain.LeadFormView, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.leadForms[formID]; !ok {
		return nil, fmt.Errorf("lead form %d: %w", formID, common.ErrNotFound)
	}

	stored := &domain.LeadFormView{
		ID:        r.db.nextID("lead_form_views"),
		FormID:    formID,
		Converted: converted,
		ViewedAt:  r.db.now(),
	}
	r.db.leadViews[stored.ID] = stored

	out := *stored
	return &out, nil
}

func (r *leadRepository) CountViews(formID int64) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if _, ok := r.db.leadForms[formID]; !ok {
		return 0, fmt.Errorf("lead form %d: %w", formID, common.ErrNotFound)
	}

	count := 0
	for _, v := range r.db.leadViews {
		if v.FormID == formID {
			count++
		}
	}
	return count, nil
}

func (r *leadRepository) AddSubmission(sub *domain.LeadSubmission) (*domain.LeadSubmission, error) {
	if sub.Email == "" {
		return nil, fmt.Errorf("submission email required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.leadForms[sub.FormID]; !ok {
		return nil, fmt.Errorf("lead form %d: %w", sub.FormID, common.ErrNotFound)
	}

	stored := cloneSubmission(sub)
	stored.ID = r.db.nextID("lead_submissions")
	stored.CreatedAt = r.db.now()
	r.db.leadSubs[stored.ID] = stored

	return cloneSubmission(stored), nil
}

func (r *leadRepository) FindSubmissionsByForm(formID int64) ([]*domain.LeadSubmission, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.LeadSubmission
	for _, s := range r.db.leadSubs {
		if s.FormID == formID {
			out = append(out, cloneSubmission(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *leadRepository) FindSubmissionsByForum(forumID int64) ([]*domain.LeadSubmission, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.LeadSubmission
	for _, s := range r.db.leadSubs {
		form, ok := r.db.leadForms[s.FormID]
		if ok && form.ForumID == forumID {
			out = append(out, cloneSubmission(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *leadRepository) ConversionRate(formID int64) (float64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if _, ok := r.db.leadForms[formID]; !ok {
		return 0, fmt.Errorf("lead form %d: %w", formID, common.ErrNotFound)
	}

	views, subs := 0, 0
	for _, v := range r.db.leadViews {
		if v.FormID == formID {
			views++
		}
	}
	if views == 0 {
		return 0, nil
	}
	for _, s := range r.db.leadSubs {
		if s.FormID == formID {
			subs++
		}
	}
	rate := float64(subs) / float64(views) * 100
	return math.Round(rate*100) / 100, nil
}
