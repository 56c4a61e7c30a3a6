package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/questline/questline-backend/internal/domain"
	"github.com/questline/questline-backend/internal/repository"
)

// AnalyticsService records raw events and engagement rollups
type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analyticsRepo: analyticsRepo}
}

// RecordEvent stores one tracked event. A missing session id gets a
// fresh one so anonymous hits still group into sessions downstream.
func (s *AnalyticsService) RecordEvent(forumID int64, sessionID, eventType, path string, userID *int64) (*domain.AnalyticsEvent, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return s.analyticsRepo.RecordEvent(&domain.AnalyticsEvent{
		ForumID:   forumID,
		SessionID: sessionID,
		UserID:    userID,
		EventType: eventType,
		Path:      path,
	})
}

// RecordEngagement upserts the per-day engagement rollup for a forum
func (s *AnalyticsService) RecordEngagement(forumID int64, date time.Time, activeUsers, pageViews int, avgSessionDuration float64) (*domain.UserEngagementMetric, error) {
	return s.analyticsRepo.UpsertEngagement(&domain.UserEngagementMetric{
		ForumID:            forumID,
		Date:               date,
		ActiveUsers:        activeUsers,
		PageViews:          pageViews,
		AvgSessionDuration: avgSessionDuration,
	})
}
