package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
	"github.com/questline/questline-backend/internal/repository"
)

type scheduleFixture struct {
	schedules repository.ScheduleRepository
	questions repository.QuestionRepository
	forumID   int64
	catID     int64
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()
	db := repository.NewDB()
	forums := repository.NewForumRepository(db)

	forum, err := forums.Create(&domain.Forum{Name: "F", Slug: "f"})
	require.NoError(t, err)
	cat, err := forums.CreateCategory(&domain.Category{ForumID: forum.ID, Name: "C", Slug: "c"})
	require.NoError(t, err)

	return &scheduleFixture{
		schedules: repository.NewScheduleRepository(db),
		questions: repository.NewQuestionRepository(db),
		forumID:   forum.ID,
		catID:     cat.ID,
	}
}

func (f *scheduleFixture) draft(t *testing.T) *domain.ContentSchedule {
	t.Helper()
	sched, err := f.schedules.Create(&domain.ContentSchedule{
		ForumID:     f.forumID,
		UserID:      1,
		Keyword:     "best trail shoes",
		ContentType: "qa_thread",
	})
	require.NoError(t, err)
	return sched
}

func TestSchedule_DraftToScheduled(t *testing.T) {
	f := newScheduleFixture(t)
	svc := NewScheduleService(f.schedules, f.questions, nil)
	sched := f.draft(t)

	at := time.Now().Add(time.Hour)
	out, err := svc.Schedule(sched.ID, at)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduleStatusScheduled, out.Status)
	assert.True(t, out.ScheduledFor.Equal(at))
}

func TestSchedule_Reschedule(t *testing.T) {
	f := newScheduleFixture(t)
	svc := NewScheduleService(f.schedules, f.questions, nil)
	sched := f.draft(t)

	_, err := svc.Schedule(sched.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	later := time.Now().Add(48 * time.Hour)
	out, err := svc.Schedule(sched.ID, later)
	require.NoError(t, err)
	assert.True(t, out.ScheduledFor.Equal(later))
}

func TestPublish_CreatesQuestionsAndAttachesIDs(t *testing.T) {
	f := newScheduleFixture(t)
	generate := func(_ context.Context, keyword, contentType string) ([]GeneratedQuestion, error) {
		assert.Equal(t, "best trail shoes", keyword)
		assert.Equal(t, "qa_thread", contentType)
		return []GeneratedQuestion{
			{Title: "Which trail shoes last longest?", Body: "Looking for durable options."},
			{Title: "Trail shoes for wet terrain?", Body: "Mostly muddy routes here."},
		}, nil
	}
	svc := NewScheduleService(f.schedules, f.questions, generate)

	sched := f.draft(t)
	_, err := svc.Schedule(sched.ID, time.Now())
	require.NoError(t, err)

	published, err := svc.Publish(context.Background(), sched.ID, f.catID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduleStatusPublished, published.Status)
	require.Len(t, published.QuestionIDs, 2)

	q, err := f.questions.FindByID(published.QuestionIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Which trail shoes last longest?", q.Title)
	assert.Equal(t, f.forumID, q.ForumID)
	assert.Equal(t, sched.UserID, q.UserID)
}

func TestPublish_RequiresScheduledStatus(t *testing.T) {
	f := newScheduleFixture(t)
	svc := NewScheduleService(f.schedules, f.questions, func(_ context.Context, _, _ string) ([]GeneratedQuestion, error) {
		return []GeneratedQuestion{{Title: "t", Body: "b"}}, nil
	})
	sched := f.draft(t)

	_, err := svc.Publish(context.Background(), sched.ID, f.catID)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestPublish_GeneratorErrorLeavesScheduleUntouched(t *testing.T) {
	f := newScheduleFixture(t)
	svc := NewScheduleService(f.schedules, f.questions, func(_ context.Context, _, _ string) ([]GeneratedQuestion, error) {
		return nil, errors.New("model unavailable")
	})
	sched := f.draft(t)
	_, err := svc.Schedule(sched.ID, time.Now())
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), sched.ID, f.catID)
	assert.ErrorIs(t, err, common.ErrExternalCallFailed)

	after, err := f.schedules.FindByID(sched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduleStatusScheduled, after.Status)
	assert.Nil(t, after.QuestionIDs)
}

func TestPublish_EmptyGenerationIsDegraded(t *testing.T) {
	f := newScheduleFixture(t)
	svc := NewScheduleService(f.schedules, f.questions, func(_ context.Context, _, _ string) ([]GeneratedQuestion, error) {
		return []GeneratedQuestion{}, nil
	})
	sched := f.draft(t)
	_, err := svc.Schedule(sched.ID, time.Now())
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), sched.ID, f.catID)
	assert.ErrorIs(t, err, common.ErrExternalCallDegraded)
}

func TestPublish_NoGeneratorConfigured(t *testing.T) {
	f := newScheduleFixture(t)
	svc := NewScheduleService(f.schedules, f.questions, nil)
	sched := f.draft(t)
	_, err := svc.Schedule(sched.ID, time.Now())
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), sched.ID, f.catID)
	assert.ErrorIs(t, err, common.ErrExternalCallFailed)
}

func TestCancel_PublishedCannotBeCancelled(t *testing.T) {
	f := newScheduleFixture(t)
	svc := NewScheduleService(f.schedules, f.questions, func(_ context.Context, _, _ string) ([]GeneratedQuestion, error) {
		return []GeneratedQuestion{{Title: "t", Body: "b"}}, nil
	})
	sched := f.draft(t)
	_, err := svc.Schedule(sched.ID, time.Now())
	require.NoError(t, err)
	_, err = svc.Publish(context.Background(), sched.ID, f.catID)
	require.NoError(t, err)

	_, err = svc.Cancel(sched.ID)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestCancel_Draft(t *testing.T) {
	f := newScheduleFixture(t)
	svc := NewScheduleService(f.schedules, f.questions, nil)
	sched := f.draft(t)

	out, err := svc.Cancel(sched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduleStatusCancelled, out.Status)
}
