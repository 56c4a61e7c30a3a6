package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
)

// ScheduleRepository content schedule data access
type ScheduleRepository interface {
	Create(schedule *domain.ContentSchedule) (*domain.ContentSchedule, error)
	FindByID(id int64) (*domain.ContentSchedule, error)
	Update(id int64, patch SchedulePatch) (*domain.ContentSchedule, error)
	Delete(id int64) error
	FindByForum(forumID int64) ([]*domain.ContentSchedule, error)
	FindDue(asOf time.Time) ([]*domain.ContentSchedule, error)

	// SetStatus transitions the schedule. QuestionIDs may only be
	// attached together with the published status.
	SetStatus(id int64, status string, questionIDs []int64) (*domain.ContentSchedule, error)
}

// SchedulePatch is a partial-field update; nil fields are left unchanged
type SchedulePatch struct {
	Keyword      *string
	ContentType  *string
	ScheduledFor *time.Time
}

type scheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(db *DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func cloneSchedule(s *domain.ContentSchedule) *domain.ContentSchedule {
	out := *s
	if s.QuestionIDs != nil {
		out.QuestionIDs = append([]int64(nil), s.QuestionIDs...)
	}
	return &out
}

func validScheduleStatus(status string) bool {
	switch status {
	case domain.ScheduleStatusDraft, domain.ScheduleStatusScheduled,
		domain.ScheduleStatusPublished, domain.ScheduleStatusCancelled:
		return true
	}
	return false
}

func (r *scheduleRepository) Create(schedule *domain.ContentSchedule) (*domain.ContentSchedule, error) {
	if schedule.Keyword == "" {
		return nil, fmt.Errorf("schedule keyword required: %w", common.ErrInvalidInput)
	}
	if schedule.Status == "" {
		schedule.Status = domain.ScheduleStatusDraft
	}
	if !validScheduleStatus(schedule.Status) {
		return nil, fmt.Errorf("status %q: %w", schedule.Status, common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.forums[schedule.ForumID]; !ok {
		return nil, fmt.Errorf("forum %d: %w", schedule.ForumID, common.ErrNotFound)
	}

	stored := cloneSchedule(schedule)
	stored.ID = r.db.nextID("content_schedules")
	stored.QuestionIDs = nil // populated only on publish
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	r.db.schedules[stored.ID] = stored

	return cloneSchedule(stored), nil
}

func (r *scheduleRepository) FindByID(id int64) (*domain.ContentSchedule, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	s, ok := r.db.schedules[id]
	if !ok {
		return nil, fmt.Errorf("schedule %d: %w", id, common.ErrNotFound)
	}
	return cloneSchedule(s), nil
}

func (r *scheduleRepository) Update(id int64, patch SchedulePatch) (*domain.ContentSchedule, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.schedules[id]
	if !ok {
		return nil, fmt.Errorf("schedule %d: %w", id, common.ErrNotFound)
	}

	if patch.Keyword != nil {
		s.Keyword = *patch.Keyword
	}
	if patch.ContentType != nil {
		s.ContentType = *patch.ContentType
	}
	if patch.ScheduledFor != nil {
		s.ScheduledFor = *patch.ScheduledFor
	}
	s.UpdatedAt = r.db.now()

	return cloneSchedule(s), nil
}

func (r *scheduleRepository) Delete(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.schedules[id]; !ok {
		return fmt.Errorf("schedule %d: %w", id, common.ErrNotFound)
	}
	delete(r.db.schedules, id)
	return nil
}

func (r *scheduleRepository) FindByForum(forumID int64) ([]*domain.ContentSchedule, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.ContentSchedule
	for _, s := range r.db.schedules {
		if s.ForumID == forumID {
			out = append(out, cloneSchedule(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *scheduleRepository) FindDue(asOf time.Time) ([]*domain.ContentSchedule, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.ContentSchedule
	for _, s := range r.db.schedules {
		if s.Status == domain.ScheduleStatusScheduled && !s.ScheduledFor.After(asOf) {
			out = append(out, cloneSchedule(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.Before(out[j].ScheduledFor) })
	return out, nil
}

func (r *scheduleRepository) SetStatus(id int64, status string, questionIDs []int64) (*domain.ContentSchedule, error) {
	if !validScheduleStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, common.ErrInvalidInput)
	}
	if questionIDs != nil && status != domain.ScheduleStatusPublished {
		return nil, fmt.Errorf("question ids only attach on publish: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.schedules[id]
	if !ok {
		return nil, fmt.Errorf("schedule %d: %w", id, common.ErrNotFound)
	}

	s.Status = status
	if status == domain.ScheduleStatusPublished && questionIDs != nil {
		s.QuestionIDs = append([]int64(nil), questionIDs...)
	}
	s.UpdatedAt = r.db.now()

	return cloneSchedule(s), nil
}
