package repository

import (
	"sync"
	"time"

	"github.com/questline/questline-backend/internal/domain"
)

// DB is the in-process store handle shared by every repository.
// One keyed collection per table, auto-incrementing int64 ids scoped
// to the table, all access serialized through a single RWMutex.
// Relationship queries are linear scans behind named repository
// methods, so indexes can be added later without touching call sites.
//
// The clock is injectable so tests can pin timestamps.
type DB struct {
	mu  sync.RWMutex
	now func() time.Time

	seq map[string]int64

	users          map[int64]*domain.User
	roles          map[int64]*domain.Role
	permissions    map[int64]*domain.Permission
	userForumRoles map[int64]*domain.UserForumRole

	forums     map[int64]*domain.Forum
	categories map[int64]*domain.Category

	questions map[int64]*domain.Question
	answers   map[int64]*domain.Answer
	votes     map[int64]*domain.Vote

	seoKeywords  map[int64]*domain.SeoKeyword
	seoPositions map[int64]*domain.SeoPosition
	seoGaps      map[int64]*domain.SeoContentGap
	seoReports   map[int64]*domain.SeoWeeklyReport

	schedules map[int64]*domain.ContentSchedule

	leadForms map[int64]*domain.LeadCaptureForm
	leadViews map[int64]*domain.LeadFormView
	leadSubs  map[int64]*domain.LeadSubmission

	funnels       map[int64]*domain.FunnelDefinition
	funnelEntries map[int64]*domain.FunnelAnalytic

	events         map[int64]*domain.AnalyticsEvent
	engagement     map[int64]*domain.UserEngagementMetric
	contentMetrics map[int64]*domain.ContentPerformanceMetric

	interlinks map[int64]*domain.ContentInterlink
}

// NewDB creates an empty store using the wall clock
func NewDB() *DB {
	return NewDBWithClock(time.Now)
}

// NewDBWithClock creates an empty store with an injected clock
func NewDBWithClock(now func() time.Time) *DB {
	return &DB{
		now: now,
		seq: make(map[string]int64),

		users:          make(map[int64]*domain.User),
		roles:          make(map[int64]*domain.Role),
		permissions:    make(map[int64]*domain.Permission),
		userForumRoles: make(map[int64]*domain.UserForumRole),

		forums:     make(map[int64]*domain.Forum),
		categories: make(map[int64]*domain.Category),

		questions: make(map[int64]*domain.Question),
		answers:   make(map[int64]*domain.Answer),
		votes:     make(map[int64]*domain.Vote),

		seoKeywords:  make(map[int64]*domain.SeoKeyword),
		seoPositions: make(map[int64]*domain.SeoPosition),
		seoGaps:      make(map[int64]*domain.SeoContentGap),
		seoReports:   make(map[int64]*domain.SeoWeeklyReport),

		schedules: make(map[int64]*domain.ContentSchedule),

		leadForms: make(map[int64]*domain.LeadCaptureForm),
		leadViews: make(map[int64]*domain.LeadFormView),
		leadSubs:  make(map[int64]*domain.LeadSubmission),

		funnels:       make(map[int64]*domain.FunnelDefinition),
		funnelEntries: make(map[int64]*domain.FunnelAnalytic),

		events:         make(map[int64]*domain.AnalyticsEvent),
		engagement:     make(map[int64]*domain.UserEngagementMetric),
		contentMetrics: make(map[int64]*domain.ContentPerformanceMetric),

		interlinks: make(map[int64]*domain.ContentInterlink),
	}
}

// nextID must be called with db.mu held for writing
func (db *DB) nextID(table string) int64 {
	db.seq[table]++
	return db.seq[table]
}
