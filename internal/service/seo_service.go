package service

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
	"github.com/questline/questline-backend/internal/repository"
	"github.com/questline/questline-backend/pkg/logger"
)

// keywordMovement is one keyword's movement inside a weekly report.
// It is serialized into the report's opaque payload; the store never
// interprets it.
type keywordMovement struct {
	KeywordID int64  `json:"keyword_id"`
	Keyword   string `json:"keyword"`
	Position  int    `json:"position"`
	Change    int    `json:"change"`
}

type weeklyReportData struct {
	TopImproved []keywordMovement `json:"top_improved"`
	TopDeclined []keywordMovement `json:"top_declined"`
}

const reportMoverLimit = 5

// SeoService builds weekly SEO rollups and manages content gaps
type SeoService struct {
	seoRepo       repository.SeoRepository
	analyticsRepo repository.AnalyticsRepository
}

// NewSeoService creates a new SeoService
func NewSeoService(seoRepo repository.SeoRepository, analyticsRepo repository.AnalyticsRepository) *SeoService {
	return &SeoService{seoRepo: seoRepo, analyticsRepo: analyticsRepo}
}

// GenerateWeeklyReport aggregates a forum's keyword movements for the
// week starting at weekStart into an immutable report row. Re-running
// for an existing week fails with a constraint violation; a new week
// is a new row.
func (s *SeoService) GenerateWeeklyReport(forumID int64, weekStart time.Time) (*domain.SeoWeeklyReport, error) {
	weekStart = weekStart.UTC().Truncate(24 * time.Hour)
	weekEnd := weekStart.AddDate(0, 0, 7)

	keywords, err := s.seoRepo.FindKeywordsByForum(forumID)
	if err != nil {
		return nil, err
	}

	var movements []keywordMovement
	posSum, posCount := 0, 0
	traffic := 0
	for _, kw := range keywords {
		positions, err := s.seoRepo.FindPositionsByKeyword(kw.ID)
		if err != nil {
			return nil, err
		}
		var latest *domain.SeoPosition
		for _, p := range positions {
			if !p.Date.Before(weekStart) && p.Date.Before(weekEnd) {
				latest = p
				traffic += p.Clicks
			}
		}
		if latest == nil {
			continue
		}
		posSum += latest.Position
		posCount++
		movements = append(movements, keywordMovement{
			KeywordID: kw.ID,
			Keyword:   kw.Keyword,
			Position:  latest.Position,
			Change:    latest.Change,
		})
	}

	avgPos := 0.0
	if posCount > 0 {
		avgPos = math.Round(float64(posSum)/float64(posCount)*10) / 10
	}

	data := weeklyReportData{}
	sort.Slice(movements, func(i, j int) bool {
		if movements[i].Change != movements[j].Change {
			return movements[i].Change > movements[j].Change
		}
		return movements[i].KeywordID < movements[j].KeywordID
	})
	for _, m := range movements {
		if m.Change > 0 && len(data.TopImproved) < reportMoverLimit {
			data.TopImproved = append(data.TopImproved, m)
		}
	}
	for i := len(movements) - 1; i >= 0; i-- {
		if movements[i].Change < 0 && len(data.TopDeclined) < reportMoverLimit {
			data.TopDeclined = append(data.TopDeclined, movements[i])
		}
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal report data: %w", err)
	}

	report, err := s.seoRepo.CreateWeeklyReport(&domain.SeoWeeklyReport{
		ForumID:        forumID,
		ReportDate:     weekStart,
		OrganicTraffic: traffic,
		AvgPosition:    avgPos,
		TotalKeywords:  len(keywords),
		ReportData:     payload,
	})
	if err != nil {
		return nil, err
	}

	log := logger.WithForumID(forumID)
	log.Info().
		Str("week", weekStart.Format("2006-01-02")).
		Int("keywords", len(keywords)).
		Msg("weekly seo report generated")

	return report, nil
}

// PrioritizeContentGaps lists unaddressed gaps with the biggest
// opportunity first
func (s *SeoService) PrioritizeContentGaps(forumID int64, limit int) ([]*domain.SeoContentGap, error) {
	gaps, err := s.seoRepo.FindContentGapsByForum(forumID, true)
	if err != nil {
		return nil, err
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].OpportunityScore != gaps[j].OpportunityScore {
			return gaps[i].OpportunityScore > gaps[j].OpportunityScore
		}
		return gaps[i].ID < gaps[j].ID
	})
	if limit > 0 && len(gaps) > limit {
		gaps = gaps[:limit]
	}
	return gaps, nil
}

// AddressGap marks a gap covered by the given URL
func (s *SeoService) AddressGap(gapID int64, targetURL string) (*domain.SeoContentGap, error) {
	if err := common.ValidateTargetURL(targetURL); err != nil {
		return nil, err
	}
	return s.seoRepo.MarkGapAddressed(gapID, targetURL)
}

// ReopenGap reverts an addressed gap back to the open pool
func (s *SeoService) ReopenGap(gapID int64) (*domain.SeoContentGap, error) {
	return s.seoRepo.ReopenGap(gapID)
}
