package repository

import (
	"fmt"
	"sort"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
)

// QuestionRepository question, answer and vote data access
type QuestionRepository interface {
	Create(question *domain.Question) (*domain.Question, error)
	FindByID(id int64) (*domain.Question, error)
	// View returns the question and bumps its monotonic view counter
	View(id int64) (*domain.Question, error)
	Update(id int64, patch QuestionPatch) (*domain.Question, error)
	Delete(id int64) error
	FindByCategory(categoryID int64) ([]*domain.Question, error)
	FindByForum(forumID int64) ([]*domain.Question, error)

	CreateAnswer(answer *domain.Answer) (*domain.Answer, error)
	FindAnswerByID(id int64) (*domain.Answer, error)
	UpdateAnswer(id int64, patch AnswerPatch) (*domain.Answer, error)
	DeleteAnswer(id int64) error
	FindAnswersByQuestion(questionID int64) ([]*domain.Answer, error)
	FindAnswersByForum(forumID int64) ([]*domain.Answer, error)

	// CastVote upserts the (user, answer) vote
	CastVote(userID, answerID int64, isUpvote bool) (*domain.Vote, error)
	// VoteTally is count(up) - count(down), computed at read time
	VoteTally(answerID int64) (int, error)
}

// QuestionPatch is a partial-field update; nil fields are left unchanged
type QuestionPatch struct {
	Title      *string
	Body       *string
	CategoryID *int64
}

// AnswerPatch is a partial-field update for answers
type AnswerPatch struct {
	Body       *string
	IsAccepted *bool
}

type questionRepository struct {
	db *DB
}

// NewQuestionRepository creates a new QuestionRepository
func NewQuestionRepository(db *DB) QuestionRepository {
	return &questionRepository{db: db}
}

func cloneQuestion(q *domain.Question) *domain.Question {
	out := *q
	return &out
}

func cloneAnswer(a *domain.Answer) *domain.Answer {
	out := *a
	return &out
}

func (r *questionRepository) Create(question *domain.Question) (*domain.Question, error) {
	if question.Title == "" {
		return nil, fmt.Errorf("question title required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.forums[question.ForumID]; !ok {
		return nil, fmt.Errorf("forum %d: %w", question.ForumID, common.ErrNotFound)
	}
	if _, ok := r.db.categories[question.CategoryID]; !ok {
		return nil, fmt.Errorf("category %d: %w", question.CategoryID, common.ErrNotFound)
	}

	stored := cloneQuestion(question)
	stored.ID = r.db.nextID("questions")
	stored.Views = 0
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	r.db.questions[stored.ID] = stored

	return cloneQuestion(stored), nil
}

func (r *questionRepository) FindByID(id int64) (*domain.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	q, ok := r.db.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %d: %w", id, common.ErrNotFound)
	}
	return cloneQuestion(q), nil
}

func (r *questionRepository) View(id int64) (*domain.Question, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	q, ok := r.db.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %d: %w", id, common.ErrNotFound)
	}
	q.Views++
	return cloneQuestion(q), nil
}

func (r *questionRepository) Update(id int64, patch QuestionPatch) (*domain.Question, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	q, ok := r.db.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %d: %w", id, common.ErrNotFound)
	}

	if patch.Title != nil {
		q.Title = *patch.Title
	}
	if patch.Body != nil {
		q.Body = *patch.Body
	}
	if patch.CategoryID != nil {
		if _, ok := r.db.categories[*patch.CategoryID]; !ok {
			return nil, fmt.Errorf("category %d: %w", *patch.CategoryID, common.ErrNotFound)
		}
		q.CategoryID = *patch.CategoryID
	}
	q.UpdatedAt = r.db.now()

	return cloneQuestion(q), nil
}

func (r *questionRepository) Delete(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.questions[id]; !ok {
		return fmt.Errorf("question %d: %w", id, common.ErrNotFound)
	}
	delete(r.db.questions, id)
	return nil
}

func (r *questionRepository) FindByCategory(categoryID int64) ([]*domain.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.Question
	for _, q := range r.db.questions {
		if q.CategoryID == categoryID {
			out = append(out, cloneQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *questionRepository) FindByForum(forumID int64) ([]*domain.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.Question
	for _, q := range r.db.questions {
		if q.ForumID == forumID {
			out = append(out, cloneQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *questionRepository) CreateAnswer(answer *domain.Answer) (*domain.Answer, error) {
	if answer.Body == "" {
		return nil, fmt.Errorf("answer body required: %w", common.ErrInvalidInput)
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.questions[answer.QuestionID]; !ok {
		return nil, fmt.Errorf("question %d: %w", answer.QuestionID, common.ErrNotFound)
	}

	stored := cloneAnswer(answer)
	stored.ID = r.db.nextID("answers")
	stored.CreatedAt = r.db.now()
	stored.UpdatedAt = stored.CreatedAt
	r.db.answers[stored.ID] = stored

	return cloneAnswer(stored), nil
}

func (r *questionRepository) FindAnswerByID(id int64) (*domain.Answer, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	a, ok := r.db.answers[id]
	if !ok {
		return nil, fmt.Errorf("answer %d: %w", id, common.ErrNotFound)
	}
	return cloneAnswer(a), nil
}

func (r *questionRepository) UpdateAnswer(id int64, patch AnswerPatch) (*domain.Answer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	a, ok := r.db.answers[id]
	if !ok {
		return nil, fmt.Errorf("answer %d: %w", id, common.ErrNotFound)
	}

	if patch.Body != nil {
		a.Body = *patch.Body
	}
	if patch.IsAccepted != nil {
		a.IsAccepted = *patch.IsAccepted
	}
	a.UpdatedAt = r.db.now()

	return cloneAnswer(a), nil
}

func (r *questionRepository) DeleteAnswer(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.answers[id]; !ok {
		return fmt.Errorf("answer %d: %w", id, common.ErrNotFound)
	}
	delete(r.db.answers, id)
	return nil
}

func (r *questionRepository) FindAnswersByQuestion(questionID int64) ([]*domain.Answer, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.Answer
	for _, a := range r.db.answers {
		if a.QuestionID == questionID {
			out = append(out, cloneAnswer(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *questionRepository) FindAnswersByForum(forumID int64) ([]*domain.Answer, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.Answer
	for _, a := range r.db.answers {
		q, ok := r.db.questions[a.QuestionID]
		if ok && q.ForumID == forumID {
			out = append(out, cloneAnswer(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *questionRepository) CastVote(userID, answerID int64, isUpvote bool) (*domain.Vote, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.answers[answerID]; !ok {
		return nil, fmt.Errorf("answer %d: %w", answerID, common.ErrNotFound)
	}

	for _, v := range r.db.votes {
		if v.UserID == userID && v.AnswerID == answerID {
			v.IsUpvote = isUpvote
			v.UpdatedAt = r.db.now()
			out := *v
			return &out, nil
		}
	}

	stored := &domain.Vote{
		ID:        r.db.nextID("votes"),
		UserID:    userID,
		AnswerID:  answerID,
		IsUpvote:  isUpvote,
		CreatedAt: r.db.now(),
	}
	stored.UpdatedAt = stored.CreatedAt
	r.db.votes[stored.ID] = stored

	out := *stored
	return &out, nil
}

func (r *questionRepository) VoteTally(answerID int64) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if _, ok := r.db.answers[answerID]; !ok {
		return 0, fmt.Errorf("answer %d: %w", answerID, common.ErrNotFound)
	}

	tally := 0
	for _, v := range r.db.votes {
		if v.AnswerID != answerID {
			continue
		}
		if v.IsUpvote {
			tally++
		} else {
			tally--
		}
	}
	return tally, nil
}
