package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
)

// SeoRepository keyword, position, content-gap and report data access
type SeoRepository interface {
	CreateKeyword(kw *domain.SeoKeyword) (*domain.SeoKeyword, error)
	FindKeywordByID(id int64) (*domain.SeoKeyword, error)
	UpdateKeyword(id int64, patch KeywordPatch) (*domain.SeoKeyword, error)
	// DeleteKeyword cascades: the keyword's position rows go with it
	DeleteKeyword(id int64) error
	FindKeywordsByForum(forumID int64) ([]*domain.SeoKeyword, error)

	// RecordPosition appends an immutable ranking observation, links it
	// to the previous one and stamps the keyword's LastCheckedAt
	RecordPosition(keywordID int64, date time.Time, position, clicks, impressions int, ctr float64) (*domain.SeoPosition, error)
	FindPositionsByKeyword(keywordID int64) ([]*domain.SeoPosition, error)
	LatestPosition(keywordID int64) (*domain.SeoPosition, error)

	CreateContentGap(gap *domain.SeoContentGap) (*domain.SeoContentGap, error)
	FindContentGapByID(id int64) (*domain.SeoContentGap, error)
	MarkGapAddressed(id int64, targetURL string) (*domain.SeoContentGap, error)
	ReopenGap(id int64) (*domain.SeoContentGap, error)
	DeleteContentGap(id int64) error
	FindContentGapsByForum(forumID int64, unaddressedOnly bool) ([]*domain.SeoContentGap, error)

	CreateWeeklyReport(report *domain.SeoWeeklyReport) (*domain.SeoWeeklyReport, error)
	FindWeeklyReportsByForum(forumID int64) ([]*domain.SeoWeeklyReport, error)
}

// KeywordPatch is a partial-field update; nil fields are left unchanged
type KeywordPatch struct {
	Keyword      *string
	TargetURL    *string
	Difficulty   *int
	SearchVolume *int
	IsTracking   *bool
}

type seoRepository struct {
	db *DB
}

// NewSeoRepository creates a new SeoRepository
func NewSeoRepository(db *DB) SeoRepository {
	return &seoRepository{db: db}
}

func cloneKeyword(k *domain.SeoKeyword) *domain.SeoKeyword {
	out := *k
	if k.LastCheckedAt != nil {
		t := *k.LastCheckedAt
		out.LastCheckedAt = &t
	}
	return &out
}

func clonePosition(p *domain.SeoPosition) *domain.SeoPosition {
	out := *p
	if p.PreviousPosition != nil {
		v := *p.PreviousPosition
		out.PreviousPosition = &v
	}
	return &out
}

func cloneGap(g *domain.SeoContentGap) *domain.SeoContentGap {
	out := *g
	if g.TargetURL != nil {
		s := *g.TargetURL
		out.TargetURL = &s
	}
	return &out
}

func cloneReport(rep *domain.SeoWeeklyReport) *domain.SeoWeeklyReport {
	out := *rep
	if rep.ReportData != nil {
		out.ReportData = append([]byte(nil), rep.ReportData...)
	}
	return &out
}

func (r *seoRepository) CreateKeyword(kw *domain.SeoKeyword) (*domain.SeoKeyword, error) {
	if kw.Keyword == "" {
		return nil, fmt.Errorf("keyword text required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.forums[kw.ForumID]; !ok {
		return nil, fmt.Errorf("forum %d: %w", kw.ForumID, common.ErrNotFound)
	}
	for _, existing := range r.db.seoKeywords {
		if existing.ForumID == kw.ForumID && existing.Keyword == kw.Keyword {
			return nil, fmt.Errorf("keyword %q: %w", kw.Keyword, common.ErrConstraintViolation)
		}
	}

	stored := cloneKeyword(kw)
	stored.ID = r.db.nextID("seo_keywords")
	stored.LastCheckedAt = nil
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	r.db.seoKeywords[stored.ID] = stored

	return cloneKeyword(stored), nil
}

func (r *seoRepository) FindKeywordByID(id int64) (*domain.SeoKeyword, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	k, ok := r.db.seoKeywords[id]
	if !ok {
		return nil, fmt.Errorf("keyword %d: %w", id, common.ErrNotFound)
	}
	return cloneKeyword(k), nil
}

func (r *seoRepository) UpdateKeyword(id int64, patch KeywordPatch) (*domain.SeoKeyword, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	k, ok := r.db.seoKeywords[id]
	if !ok {
		return nil, fmt.Errorf("keyword %d: %w", id, common.ErrNotFound)
	}

	if patch.Keyword != nil {
		k.Keyword = *patch.Keyword
	}
	if patch.TargetURL != nil {
		k.TargetURL = *patch.TargetURL
	}
	if patch.Difficulty != nil {
		k.Difficulty = *patch.Difficulty
	}
	if patch.SearchVolume != nil {
		k.SearchVolume = *patch.SearchVolume
	}
	if patch.IsTracking != nil {
		k.IsTracking = *patch.IsTracking
	}
	k.UpdatedAt = r.db.now()

	return cloneKeyword(k), nil
}

func (r *seoRepository) DeleteKeyword(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.seoKeywords[id]; !ok {
		return fmt.Errorf("keyword %d: %w", id, common.ErrNotFound)
	}
	delete(r.db.seoKeywords, id)

	// Position rows have no meaning without their keyword
	for pid, p := range r.db.seoPositions {
		if p.KeywordID == id {
			delete(r.db.seoPositions, pid)
		}
	}
	return nil
}

func (r *seoRepository) FindKeywordsByForum(forumID int64) ([]*domain.SeoKeyword, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.SeoKeyword
	for _, k := range r.db.seoKeywords {
		if k.ForumID == forumID {
			out = append(out, cloneKeyword(k))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *seoRepository) RecordPosition(keywordID int64, date time.Time, position, clicks, impressions int, ctr float64) (*domain.SeoPosition, error) {
	if position < 1 {
		return nil, fmt.Errorf("position must be >= 1: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	kw, ok := r.db.seoKeywords[keywordID]
	if !ok {
		return nil, fmt.Errorf("keyword %d: %w", keywordID, common.ErrNotFound)
	}

	var latest *domain.SeoPosition
	for _, p := range r.db.seoPositions {
		if p.KeywordID != keywordID {
			continue
		}
		if latest == nil || p.Date.After(latest.Date) || (p.Date.Equal(latest.Date) && p.ID > latest.ID) {
			latest = p
		}
	}

	stored := &domain.SeoPosition{
		ID:          r.db.nextID("seo_positions"),
		KeywordID:   keywordID,
		Date:        date,
		Position:    position,
		Clicks:      clicks,
		Impressions: impressions,
		CTR:         ctr,
		CreatedAt:   r.db.now(),
	}
	if latest != nil {
		prev := latest.Position
		stored.PreviousPosition = &prev
		stored.Change = prev - position // positive = moved up
	}
	r.db.seoPositions[stored.ID] = stored

	checked := r.db.now()
	kw.LastCheckedAt = &checked
	kw.UpdatedAt = checked

	return clonePosition(stored), nil
}

func (r *seoRepository) FindPositionsByKeyword(keywordID int64) ([]*domain.SeoPosition, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.SeoPosition
	for _, p := range r.db.seoPositions {
		if p.KeywordID == keywordID {
			out = append(out, clonePosition(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *seoRepository) LatestPosition(keywordID int64) (*domain.SeoPosition, error) {
	positions, err := r.FindPositionsByKeyword(keywordID)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, nil
	}
	return positions[len(positions)-1], nil
}

func (r *seoRepository) CreateContentGap(gap *domain.SeoContentGap) (*domain.SeoContentGap, error) {
	if gap.Topic == "" {
		return nil, fmt.Errorf("gap topic required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.forums[gap.ForumID]; !ok {
		return nil, fmt.Errorf("forum %d: %w", gap.ForumID, common.ErrNotFound)
	}

	stored := cloneGap(gap)
	stored.ID = r.db.nextID("seo_content_gaps")
	stored.Addressed = false
	stored.TargetURL = nil
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	r.db.seoGaps[stored.ID] = stored

	return cloneGap(stored), nil
}

func (r *seoRepository) FindContentGapByID(id int64) (*domain.SeoContentGap, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	g, ok := r.db.seoGaps[id]
	if !ok {
		return nil, fmt.Errorf("content gap %d: %w", id, common.ErrNotFound)
	}
	return cloneGap(g), nil
}

func (r *seoRepository) MarkGapAddressed(id int64, targetURL string) (*domain.SeoContentGap, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	g, ok := r.db.seoGaps[id]
	if !ok {
		return nil, fmt.Errorf("content gap %d: %w", id, common.ErrNotFound)
	}
	g.Addressed = true
	if targetURL != "" {
		g.TargetURL = &targetURL
	}
	g.UpdatedAt = r.db.now()

	return cloneGap(g), nil
}

// ReopenGap reverts an addressed gap; the normal flow is one-way but
// a revert stays possible
func (r *seoRepository) ReopenGap(id int64) (*domain.SeoContentGap, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	g, ok := r.db.seoGaps[id]
	if !ok {
		return nil, fmt.Errorf("content gap %d: %w", id, common.ErrNotFound)
	}
	g.Addressed = false
	g.TargetURL = nil
	g.UpdatedAt = r.db.now()

	return cloneGap(g), nil
}

func (r *seoRepository) DeleteContentGap(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.seoGaps[id]; !ok {
		return fmt.Errorf("content gap %d: %w", id, common.ErrNotFound)
	}
	delete(r.db.seoGaps, id)
	return nil
}

func (r *seoRepository) FindContentGapsByForum(forumID int64, unaddressedOnly bool) ([]*domain.SeoContentGap, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.SeoContentGap
	for _, g := range r.db.seoGaps {
		if g.ForumID != forumID {
			continue
		}
		if unaddressedOnly && g.Addressed {
			continue
		}
		out = append(out, cloneGap(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateWeeklyReport inserts an immutable weekly rollup; one row per
// (forum, week)
func (r *seoRepository) CreateWeeklyReport(report *domain.SeoWeeklyReport) (*domain.SeoWeeklyReport, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.forums[report.ForumID]; !ok {
		return nil, fmt.Errorf("forum %d: %w", report.ForumID, common.ErrNotFound)
	}
	for _, existing := range r.db.seoReports {
		if existing.ForumID == report.ForumID && existing.ReportDate.Equal(report.ReportDate) {
			return nil, fmt.Errorf("report for week %s: %w",
				report.ReportDate.Format("2006-01-02"), common.ErrConstraintViolation)
		}
	}

	stored := cloneReport(report)
	stored.ID = r.db.nextID("seo_weekly_reports")
	stored.CreatedAt = r.db.now()
	r.db.seoReports[stored.ID] = stored

	return cloneReport(stored), nil
}

func (r *seoRepository) FindWeeklyReportsByForum(forumID int64) ([]*domain.SeoWeeklyReport, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.SeoWeeklyReport
	for _, rep := range r.db.seoReports {
		if rep.ForumID == forumID {
			out = append(out, cloneReport(rep))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportDate.Before(out[j].ReportDate) })
	return out, nil
}
