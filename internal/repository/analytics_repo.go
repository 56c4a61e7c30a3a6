package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
)

// AnalyticsRepository raw event and metric data access
type AnalyticsRepository interface {
	RecordEvent(event *domain.AnalyticsEvent) (*domain.AnalyticsEvent, error)
	FindEventsByForum(forumID int64, from, to time.Time) ([]*domain.AnalyticsEvent, error)

	// UpsertEngagement keeps one row per (forum, calendar day)
	UpsertEngagement(metric *domain.UserEngagementMetric) (*domain.UserEngagementMetric, error)
	FindEngagementByForum(forumID int64, from, to time.Time) ([]*domain.UserEngagementMetric, error)

	RecordContentMetric(metric *domain.ContentPerformanceMetric) (*domain.ContentPerformanceMetric, error)
	FindContentMetricsByForum(forumID int64, from, to time.Time) ([]*domain.ContentPerformanceMetric, error)
}

type analyticsRepository struct {
	db *DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db *DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func cloneEvent(e *domain.AnalyticsEvent) *domain.AnalyticsEvent {
	out := *e
	if e.UserID != nil {
		v := *e.UserID
		out.UserID = &v
	}
	return &out
}

func cloneEngagement(m *domain.UserEngagementMetric) *domain.UserEngagementMetric {
	out := *m
	return &out
}

func cloneContentMetric(m *domain.ContentPerformanceMetric) *domain.ContentPerformanceMetric {
	out := *m
	return &out
}

// inRange checks t in [from, to)
func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (r *analyticsRepository) RecordEvent(event *domain.AnalyticsEvent) (*domain.AnalyticsEvent, error) {
	if event.EventType == "" {
		return nil, fmt.Errorf("event type required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.forums[event.ForumID]; !ok {
		return nil, fmt.Errorf("forum %d: %w", event.ForumID, common.ErrNotFound)
	}

	stored := cloneEvent(event)
	stored.ID = r.db.nextID("analytics_events")
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.db.now()
	}
	r.db.events[stored.ID] = stored

	return cloneEvent(stored), nil
}

func (r *analyticsRepository) FindEventsByForum(forumID int64, from, to time.Time) ([]*domain.AnalyticsEvent, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.AnalyticsEvent
	for _, e := range r.db.events {
		if e.ForumID == forumID && inRange(e.CreatedAt, from, to) {
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *analyticsRepository) UpsertEngagement(metric *domain.UserEngagementMetric) (*domain.UserEngagementMetric, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.forums[metric.ForumID]; !ok {
		return nil, fmt.Errorf("forum %d: %w", metric.ForumID, common.ErrNotFound)
	}

	day := metric.Date.Truncate(24 * time.Hour)
	for _, m := range r.db.engagement {
		if m.ForumID == metric.ForumID && m.Date.Equal(day) {
			m.ActiveUsers = metric.ActiveUsers
			m.PageViews = metric.PageViews
			m.AvgSessionDuration = metric.AvgSessionDuration
			m.UpdatedAt = r.db.now()
			return cloneEngagement(m), nil
		}
	}

	stored := cloneEngagement(metric)
	stored.ID = r.db.nextID("engagement_metrics")
	stored.Date = day
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	r.db.engagement[stored.ID] = stored

	return cloneEngagement(stored), nil
}

func (r *analyticsRepository) FindEngagementByForum(forumID int64, from, to time.Time) ([]*domain.UserEngagementMetric, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.UserEngagementMetric
	for _, m := range r.db.engagement {
		if m.ForumID == forumID && inRange(m.Date, from, to) {
			out = append(out, cloneEngagement(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *analyticsRepository) RecordContentMetric(metric *domain.ContentPerformanceMetric) (*domain.ContentPerformanceMetric, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.forums[metric.ForumID]; !ok {
		return nil, fmt.Errorf("forum %d: %w", metric.ForumID, common.ErrNotFound)
	}

	stored := cloneContentMetric(metric)
	stored.ID = r.db.nextID("content_metrics")
	stored.CreatedAt = r.db.now()
	r.db.contentMetrics[stored.ID] = stored

	return cloneContentMetric(stored), nil
}

func (r *analyticsRepository) FindContentMetricsByForum(forumID int64, from, to time.Time) ([]*domain.ContentPerformanceMetric, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.ContentPerformanceMetric
	for _, m := range r.db.contentMetrics {
		if m.ForumID == forumID && inRange(m.Date, from, to) {
			out = append(out, cloneContentMetric(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
