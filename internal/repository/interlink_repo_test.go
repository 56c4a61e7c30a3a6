package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
)

func setupContent(t *testing.T) (*DB, *domain.Forum, *domain.Question, *domain.Answer) {
	t.Helper()
	db := NewDB()
	forums := NewForumRepository(db)
	questions := NewQuestionRepository(db)

	forum, err := forums.Create(&domain.Forum{Name: "Main", Slug: "main", Description: "landing copy"})
	require.NoError(t, err)
	cat, err := forums.CreateCategory(&domain.Category{ForumID: forum.ID, Name: "C", Slug: "c"})
	require.NoError(t, err)
	q, err := questions.Create(&domain.Question{
		ForumID: forum.ID, CategoryID: cat.ID, UserID: 1,
		Title: "Question title", Body: "question body",
	})
	require.NoError(t, err)
	a, err := questions.CreateAnswer(&domain.Answer{QuestionID: q.ID, UserID: 1, Body: "answer body"})
	require.NoError(t, err)
	return db, forum, q, a
}

func TestResolve_DispatchesByType(t *testing.T) {
	db, forum, q, a := setupContent(t)
	repo := NewInterlinkRepository(db)

	item, err := repo.Resolve(domain.ContentRef{Type: domain.ContentTypeQuestion, ID: q.ID})
	require.NoError(t, err)
	assert.Equal(t, "Question title", item.Title)

	item, err = repo.Resolve(domain.ContentRef{Type: domain.ContentTypeAnswer, ID: a.ID})
	require.NoError(t, err)
	// answers borrow their question's title
	assert.Equal(t, "Question title", item.Title)
	assert.Equal(t, "answer body", item.Body)

	item, err = repo.Resolve(domain.ContentRef{Type: domain.ContentTypeMainPage, ID: forum.ID})
	require.NoError(t, err)
	assert.Equal(t, "Main", item.Title)
	assert.Equal(t, "landing copy", item.Body)
}

func TestResolve_UnknownType(t *testing.T) {
	db, _, _, _ := setupContent(t)
	repo := NewInterlinkRepository(db)

	_, err := repo.Resolve(domain.ContentRef{Type: "comment", ID: 1})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCreate_ValidatesBothEnds(t *testing.T) {
	db, _, q, _ := setupContent(t)
	repo := NewInterlinkRepository(db)

	_, err := repo.Create(&domain.ContentInterlink{
		SourceType: domain.ContentTypeQuestion, SourceID: q.ID,
		TargetType: domain.ContentTypeAnswer, TargetID: 999,
		AnchorText: "answer body", RelevanceScore: 80,
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreatePair_WritesTwoDirectionalRows(t *testing.T) {
	db, _, q, a := setupContent(t)
	repo := NewInterlinkRepository(db)

	fwd, back, err := repo.CreatePair(&domain.ContentInterlink{
		SourceType: domain.ContentTypeQuestion, SourceID: q.ID,
		TargetType: domain.ContentTypeAnswer, TargetID: a.ID,
		AnchorText: "answer body", RelevanceScore: 80,
	})
	require.NoError(t, err)
	assert.NotEqual(t, fwd.ID, back.ID)
	assert.Equal(t, fwd.SourceID, back.TargetID)
	assert.Equal(t, fwd.TargetID, back.SourceID)

	outgoing, err := repo.FindBySource(domain.ContentRef{Type: domain.ContentTypeAnswer, ID: a.ID})
	require.NoError(t, err)
	assert.Len(t, outgoing, 1)
}
