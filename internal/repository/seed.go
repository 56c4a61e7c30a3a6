package repository

import (
	"errors"
	"time"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
	"github.com/questline/questline-backend/pkg/logger"
)

const seedForumSlug = "demo"

// Seed populates a fresh store with a small demo dataset. It is a
// one-time startup step and a no-op when the demo forum already
// exists.
func Seed(db *DB) error {
	forums := NewForumRepository(db)
	if _, err := forums.FindBySlug(seedForumSlug); err == nil {
		return nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	users := NewUserRepository(db)
	questions := NewQuestionRepository(db)
	seo := NewSeoRepository(db)
	leads := NewLeadRepository(db)
	funnels := NewFunnelRepository(db)

	role, err := users.CreateRole(&domain.Role{Name: "owner", Description: "forum owner"})
	if err != nil {
		return err
	}
	owner, err := users.Create(&domain.User{
		Email:       "owner@example.com",
		Username:    "owner",
		DisplayName: "Demo Owner",
		RoleID:      role.ID,
	})
	if err != nil {
		return err
	}

	sub := "demo"
	forum, err := forums.Create(&domain.Forum{
		OwnerID:     owner.ID,
		Name:        "Demo Community",
		Slug:        seedForumSlug,
		Description: "A demo community about search optimization",
		Subdomain:   &sub,
		IsPublic:    true,
		IsListed:    true,
	})
	if err != nil {
		return err
	}

	category, err := forums.CreateCategory(&domain.Category{
		ForumID: forum.ID,
		Name:    "General",
		Slug:    "general",
	})
	if err != nil {
		return err
	}

	question, err := questions.Create(&domain.Question{
		ForumID:    forum.ID,
		CategoryID: category.ID,
		UserID:     owner.ID,
		Title:      "How does keyword tracking work?",
		Body:       "Looking for an explanation of position tracking across search results.",
	})
	if err != nil {
		return err
	}
	answer, err := questions.CreateAnswer(&domain.Answer{
		QuestionID: question.ID,
		UserID:     owner.ID,
		Body:       "Positions are recorded per keyword per day and compared against the previous observation.",
	})
	if err != nil {
		return err
	}
	if _, err := questions.CastVote(owner.ID, answer.ID, true); err != nil {
		return err
	}

	keyword, err := seo.CreateKeyword(&domain.SeoKeyword{
		ForumID:      forum.ID,
		Keyword:      "keyword tracking",
		TargetURL:    "/questions/how-does-keyword-tracking-work",
		Difficulty:   35,
		SearchVolume: 1200,
		IsTracking:   true,
	})
	if err != nil {
		return err
	}
	day := db.now().UTC().Truncate(24 * time.Hour)
	if _, err := seo.RecordPosition(keyword.ID, day.AddDate(0, 0, -1), 14, 40, 900, 4.4); err != nil {
		return err
	}
	if _, err := seo.RecordPosition(keyword.ID, day, 11, 55, 1000, 5.5); err != nil {
		return err
	}
	if _, err := seo.CreateContentGap(&domain.SeoContentGap{
		ForumID:          forum.ID,
		Topic:            "rank tracking alerts",
		OpportunityScore: 72.5,
	}); err != nil {
		return err
	}

	form, err := leads.CreateForm(&domain.LeadCaptureForm{
		ForumID:  forum.ID,
		Name:     "Newsletter",
		Headline: "Get weekly ranking tips",
		IsActive: true,
	})
	if err != nil {
		return err
	}
	if _, err := leads.RecordView(form.ID, true); err != nil {
		return err
	}
	if _, err := leads.AddSubmission(&domain.LeadSubmission{
		FormID: form.ID,
		Email:  "visitor@example.com",
	}); err != nil {
		return err
	}

	interlinks := NewInterlinkRepository(db)
	if _, err := interlinks.Create(&domain.ContentInterlink{
		SourceType:     domain.ContentTypeQuestion,
		SourceID:       question.ID,
		TargetType:     domain.ContentTypeMainPage,
		TargetID:       forum.ID,
		AnchorText:     "keyword tracking",
		RelevanceScore: 61,
		IsAutomatic:    true,
	}); err != nil {
		return err
	}

	funnel, err := funnels.CreateDefinition(&domain.FunnelDefinition{
		ForumID: forum.ID,
		Name:    "Signup",
		Steps:   []string{"visit", "register", "first_post"},
	})
	if err != nil {
		return err
	}
	if _, err := funnels.TrackProgress(funnel.ID, owner.ID, "first_post"); err != nil {
		return err
	}

	logger.GetLogger().Info().Int64("forum_id", forum.ID).Msg("demo data seeded")
	return nil
}
