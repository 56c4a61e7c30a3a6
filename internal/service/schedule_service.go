package service

import (
	"context"
	"fmt"
	"time"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
	"github.com/questline/questline-backend/internal/repository"
	"github.com/questline/questline-backend/pkg/logger"
)

// GeneratedQuestion is one question proposed by the external content
// generator for a scheduled keyword
type GeneratedQuestion struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// GenerateFunc is the injected external text-generation call used to
// produce Q&A content for a schedule
type GenerateFunc func(ctx context.Context, keyword, contentType string) ([]GeneratedQuestion, error)

// ScheduleService drives content schedule lifecycle transitions.
// Publishing sequences two store writes (questions, then status +
// ids); a crash in between leaves a scheduled row with no ids, which
// a retried publish simply regenerates.
type ScheduleService struct {
	scheduleRepo repository.ScheduleRepository
	questionRepo repository.QuestionRepository
	generate     GenerateFunc
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(scheduleRepo repository.ScheduleRepository, questionRepo repository.QuestionRepository, generate GenerateFunc) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		questionRepo: questionRepo,
		generate:     generate,
	}
}

// Schedule moves a draft to scheduled for the given time
func (s *ScheduleService) Schedule(id int64, at time.Time) (*domain.ContentSchedule, error) {
	sched, err := s.scheduleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if sched.Status != domain.ScheduleStatusDraft && sched.Status != domain.ScheduleStatusScheduled {
		return nil, fmt.Errorf("schedule %d in status %q: %w", id, sched.Status, common.ErrInvalidTransition)
	}

	if _, err := s.scheduleRepo.Update(id, repository.SchedulePatch{ScheduledFor: &at}); err != nil {
		return nil, err
	}
	return s.scheduleRepo.SetStatus(id, domain.ScheduleStatusScheduled, nil)
}

// Publish generates the scheduled content through the external call,
// persists the questions and transitions the schedule to published
// with the generated ids attached. Generation errors surface to the
// caller and leave the schedule untouched so a retry regenerates.
func (s *ScheduleService) Publish(ctx context.Context, id int64, categoryID int64) (*domain.ContentSchedule, error) {
	sched, err := s.scheduleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if sched.Status != domain.ScheduleStatusScheduled {
		return nil, fmt.Errorf("schedule %d in status %q: %w", id, sched.Status, common.ErrInvalidTransition)
	}
	if s.generate == nil {
		return nil, fmt.Errorf("no content generator configured: %w", common.ErrExternalCallFailed)
	}

	drafts, err := s.generate(ctx, sched.Keyword, sched.ContentType)
	if err != nil {
		return nil, fmt.Errorf("generate content for %q: %v: %w", sched.Keyword, err, common.ErrExternalCallFailed)
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("generator returned no content for %q: %w", sched.Keyword, common.ErrExternalCallDegraded)
	}

	questionIDs := make([]int64, 0, len(drafts))
	for _, d := range drafts {
		q, err := s.questionRepo.Create(&domain.Question{
			ForumID:    sched.ForumID,
			CategoryID: categoryID,
			UserID:     sched.UserID,
			Title:      d.Title,
			Body:       d.Body,
		})
		if err != nil {
			return nil, err
		}
		questionIDs = append(questionIDs, q.ID)
	}

	published, err := s.scheduleRepo.SetStatus(id, domain.ScheduleStatusPublished, questionIDs)
	if err != nil {
		return nil, err
	}

	log := logger.WithForumID(sched.ForumID)
	log.Info().
		Int64("schedule_id", id).
		Int("questions", len(questionIDs)).
		Msg("content schedule published")

	return published, nil
}

// Cancel stops a draft or scheduled item; published content stays
func (s *ScheduleService) Cancel(id int64) (*domain.ContentSchedule, error) {
	sched, err := s.scheduleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	switch sched.Status {
	case domain.ScheduleStatusDraft, domain.ScheduleStatusScheduled:
		return s.scheduleRepo.SetStatus(id, domain.ScheduleStatusCancelled, nil)
	}
	return nil, fmt.Errorf("schedule %d in status %q: %w", id, sched.Status, common.ErrInvalidTransition)
}
