package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
	"github.com/questline/questline-backend/internal/repository"
)

// positionBuckets are the fixed histogram ranges for keyword rankings.
// Inclusive on both ends except the last, which is open-ended.
var positionBuckets = []struct {
	label    string
	min, max int
}{
	{"1-3", 1, 3},
	{"4-10", 4, 10},
	{"11-20", 11, 20},
	{"21-50", 21, 50},
	{"50+", 51, 0},
}

const topGapLimit = 5

// TrendService computes period-over-period and funnel aggregates from
// stored records. Every method is a pure read; the store is never
// mutated.
type TrendService struct {
	forumRepo     repository.ForumRepository
	questionRepo  repository.QuestionRepository
	seoRepo       repository.SeoRepository
	leadRepo      repository.LeadRepository
	funnelRepo    repository.FunnelRepository
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewTrendService creates a new TrendService
func NewTrendService(
	forumRepo repository.ForumRepository,
	questionRepo repository.QuestionRepository,
	seoRepo repository.SeoRepository,
	leadRepo repository.LeadRepository,
	funnelRepo repository.FunnelRepository,
	analyticsRepo repository.AnalyticsRepository,
) *TrendService {
	return &TrendService{
		forumRepo:     forumRepo,
		questionRepo:  questionRepo,
		seoRepo:       seoRepo,
		leadRepo:      leadRepo,
		funnelRepo:    funnelRepo,
		analyticsRepo: analyticsRepo,
		now:           time.Now,
	}
}

// WithClock overrides the wall clock; used by tests to pin windows
func (s *TrendService) WithClock(now func() time.Time) *TrendService {
	s.now = now
	return s
}

// periodDays maps a period token to its day count
func periodDays(period string) (int, error) {
	switch period {
	case "7d":
		return 7, nil
	case "30d":
		return 30, nil
	case "90d":
		return 90, nil
	case "1y":
		return 365, nil
	}
	return 0, fmt.Errorf("period %q: %w", period, common.ErrInvalidPeriod)
}

// windows returns [start, end) for the current window and the
// equal-length previous window immediately preceding it
func windows(now time.Time, days int) (curStart, curEnd, prevStart time.Time) {
	curEnd = now
	curStart = now.AddDate(0, 0, -days)
	prevStart = curStart.AddDate(0, 0, -days)
	return
}

// trendMetric computes the period-over-period percent with the
// fixed +100% sentinel when the previous window is empty
func trendMetric(current, previous int) domain.TrendMetric {
	var percent float64
	switch {
	case previous == 0 && current > 0:
		percent = 100
	case previous == 0:
		percent = 0
	default:
		percent = float64(current-previous) / float64(previous) * 100
	}
	percent = math.Round(percent*10) / 10

	return domain.TrendMetric{
		Current:      current,
		Previous:     previous,
		TrendPercent: percent,
		Trend:        formatTrend(percent),
	}
}

func formatTrend(percent float64) string {
	s := strconv.FormatFloat(percent, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	if percent >= 0 {
		return "+" + s + "%"
	}
	return s + "%"
}

func countCreatedBetween[T any](items []*T, createdAt func(*T) time.Time, from, to time.Time) int {
	n := 0
	for _, item := range items {
		t := createdAt(item)
		if !t.Before(from) && t.Before(to) {
			n++
		}
	}
	return n
}

// ComputeDashboardStats builds the period-over-period dashboard
// summary for a forum
func (s *TrendService) ComputeDashboardStats(forumID int64, period string) (*domain.DashboardStats, error) {
	if _, err := s.forumRepo.FindByID(forumID); err != nil {
		return nil, err
	}
	days, err := periodDays(period)
	if err != nil {
		return nil, err
	}
	curStart, curEnd, prevStart := windows(s.now(), days)

	questions, err := s.questionRepo.FindByForum(forumID)
	if err != nil {
		return nil, err
	}
	answers, err := s.questionRepo.FindAnswersByForum(forumID)
	if err != nil {
		return nil, err
	}
	submissions, err := s.leadRepo.FindSubmissionsByForum(forumID)
	if err != nil {
		return nil, err
	}
	curEvents, err := s.analyticsRepo.FindEventsByForum(forumID, curStart, curEnd)
	if err != nil {
		return nil, err
	}
	prevEvents, err := s.analyticsRepo.FindEventsByForum(forumID, prevStart, curStart)
	if err != nil {
		return nil, err
	}

	questionCreated := func(q *domain.Question) time.Time { return q.CreatedAt }
	answerCreated := func(a *domain.Answer) time.Time { return a.CreatedAt }
	subCreated := func(ls *domain.LeadSubmission) time.Time { return ls.CreatedAt }

	countPageViews := func(events []*domain.AnalyticsEvent) int {
		n := 0
		for _, e := range events {
			if e.EventType == domain.EventPageView {
				n++
			}
		}
		return n
	}

	engagement, err := s.analyticsRepo.FindEngagementByForum(forumID, curStart, curEnd)
	if err != nil {
		return nil, err
	}
	avgDuration := 0.0
	if len(engagement) > 0 {
		sum := 0.0
		for _, m := range engagement {
			sum += m.AvgSessionDuration
		}
		avgDuration = math.Round(sum/float64(len(engagement))*100) / 100
	}

	return &domain.DashboardStats{
		ForumID: forumID,
		Period:  period,
		Questions: trendMetric(
			countCreatedBetween(questions, questionCreated, curStart, curEnd),
			countCreatedBetween(questions, questionCreated, prevStart, curStart),
		),
		Answers: trendMetric(
			countCreatedBetween(answers, answerCreated, curStart, curEnd),
			countCreatedBetween(answers, answerCreated, prevStart, curStart),
		),
		PageViews: trendMetric(countPageViews(curEvents), countPageViews(prevEvents)),
		LeadSubmissions: trendMetric(
			countCreatedBetween(submissions, subCreated, curStart, curEnd),
			countCreatedBetween(submissions, subCreated, prevStart, curStart),
		),
		AvgSessionDuration: avgDuration,
	}, nil
}

// ComputeDailyTraffic buckets page views into one row per calendar
// day. Days without traffic produce zero rows, never gaps, so chart
// consumers always get a fixed-length series.
func (s *TrendService) ComputeDailyTraffic(forumID int64, period string) ([]domain.DailyTraffic, error) {
	if _, err := s.forumRepo.FindByID(forumID); err != nil {
		return nil, err
	}
	days, err := periodDays(period)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	seriesStart := today.AddDate(0, 0, -(days - 1))

	events, err := s.analyticsRepo.FindEventsByForum(forumID, seriesStart, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	views := make(map[string]int, days)
	visitors := make(map[string]map[string]struct{}, days)
	for _, e := range events {
		day := e.CreatedAt.UTC().Format("2006-01-02")
		if e.EventType == domain.EventPageView {
			views[day]++
		}
		if visitors[day] == nil {
			visitors[day] = make(map[string]struct{})
		}
		visitors[day][e.SessionID] = struct{}{}
	}

	out := make([]domain.DailyTraffic, 0, days)
	for i := 0; i < days; i++ {
		day := seriesStart.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, domain.DailyTraffic{
			Date:      day,
			PageViews: views[day],
			Visitors:  len(visitors[day]),
		})
	}
	return out, nil
}

// ComputeSeoRankingSummary aggregates tracked keyword rankings for a
// forum over the period
func (s *TrendService) ComputeSeoRankingSummary(forumID int64, period string) (*domain.SeoRankingSummary, error) {
	if _, err := s.forumRepo.FindByID(forumID); err != nil {
		return nil, err
	}
	days, err := periodDays(period)
	if err != nil {
		return nil, err
	}
	curStart, curEnd, _ := windows(s.now(), days)

	keywords, err := s.seoRepo.FindKeywordsByForum(forumID)
	if err != nil {
		return nil, err
	}

	summary := &domain.SeoRankingSummary{
		ForumID:       forumID,
		Period:        period,
		TotalKeywords: len(keywords),
	}
	for _, b := range positionBuckets {
		summary.Distribution = append(summary.Distribution, domain.PositionBucket{
			Label: b.label,
			Min:   b.min,
			Max:   b.max,
		})
	}

	posSum, posCount := 0, 0
	for _, kw := range keywords {
		if !kw.IsTracking {
			continue
		}
		summary.Tracked++

		positions, err := s.seoRepo.FindPositionsByKeyword(kw.ID)
		if err != nil {
			return nil, err
		}
		var latest *domain.SeoPosition
		for _, p := range positions {
			if !p.Date.Before(curStart) && p.Date.Before(curEnd) {
				latest = p
			}
		}
		if latest == nil {
			continue
		}

		posSum += latest.Position
		posCount++

		for i, b := range positionBuckets {
			if latest.Position >= b.min && (b.max == 0 || latest.Position <= b.max) {
				summary.Distribution[i].Count++
				break
			}
		}

		switch {
		case latest.Change > 0:
			summary.Improved++
		case latest.Change < 0:
			summary.Declined++
		default:
			summary.Unchanged++
		}
	}
	if posCount > 0 {
		summary.AvgPosition = math.Round(float64(posSum)/float64(posCount)*10) / 10
	}

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
	if len(gaps) > topGapLimit {
		gaps = gaps[:topGapLimit]
	}
	summary.TopGaps = gaps

	return summary, nil
}

// ComputeFunnelStats derives entry, completion and drop-off numbers
// for a funnel definition. Nothing is stored; stats are recomputed
// from the analytic rows each call.
func (s *TrendService) ComputeFunnelStats(funnelID int64) (*domain.FunnelStats, error) {
	if _, err := s.funnelRepo.FindDefinitionByID(funnelID); err != nil {
		return nil, err
	}
	analytics, err := s.funnelRepo.FindAnalyticsByFunnel(funnelID)
	if err != nil {
		return nil, err
	}

	stats := &domain.FunnelStats{
		FunnelID:      funnelID,
		TotalEntries:  len(analytics),
		DropOffPoints: make(map[string]int),
	}
	for _, a := range analytics {
		if a.Completed {
			stats.Completions++
			continue
		}
		stats.DropOffPoints[a.LastStep]++
	}
	if stats.TotalEntries > 0 {
		rate := float64(stats.Completions) / float64(stats.TotalEntries) * 100
		stats.ConversionRate = math.Round(rate*100) / 100
	}
	return stats, nil
}
