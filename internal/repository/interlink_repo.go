package repository

import (
	"fmt"
	"sort"

	"github.com/questline/questline-backend/internal/common"
	"github.com/questline/questline-backend/internal/domain"
)

// InterlinkRepository content interlink data access plus polymorphic
// (type, id) reference resolution
type InterlinkRepository interface {
	Create(link *domain.ContentInterlink) (*domain.ContentInterlink, error)
	// CreatePair stores a bidirectional relationship as two rows
	CreatePair(link *domain.ContentInterlink) (forward, backward *domain.ContentInterlink, err error)
	Delete(id int64) error
	FindBySource(ref domain.ContentRef) ([]*domain.ContentInterlink, error)
	FindByTarget(ref domain.ContentRef) ([]*domain.ContentInterlink, error)

	// Resolve materializes the text behind a weak content reference
	Resolve(ref domain.ContentRef) (*domain.ContentItem, error)
}

type interlinkRepository struct {
	db *DB

	// type-to-table dispatch; open to new content kinds
	resolvers map[domain.ContentType]func(id int64) (*domain.ContentItem, error)
}

// NewInterlinkRepository creates a new InterlinkRepository
func NewInterlinkRepository(db *DB) InterlinkRepository {
	r := &interlinkRepository{db: db}
	r.resolvers = map[domain.ContentType]func(int64) (*domain.ContentItem, error){
		domain.ContentTypeQuestion: r.resolveQuestion,
		domain.ContentTypeAnswer:   r.resolveAnswer,
		domain.ContentTypeMainPage: r.resolveMainPage,
	}
	return r
}

func cloneInterlink(l *domain.ContentInterlink) *domain.ContentInterlink {
	out := *l
	return &out
}

// resolveQuestion must be called with db.mu held for reading
func (r *interlinkRepository) resolveQuestion(id int64) (*domain.ContentItem, error) {
	q, ok := r.db.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %d: %w", id, common.ErrNotFound)
	}
	return &domain.ContentItem{
		Ref:   domain.ContentRef{Type: domain.ContentTypeQuestion, ID: id},
		Title: q.Title,
		Body:  q.Body,
	}, nil
}

func (r *interlinkRepository) resolveAnswer(id int64) (*domain.ContentItem, error) {
	a, ok := r.db.answers[id]
	if !ok {
		return nil, fmt.Errorf("answer %d: %w", id, common.ErrNotFound)
	}
	title := ""
	if q, ok := r.db.questions[a.QuestionID]; ok {
		title = q.Title
	}
	return &domain.ContentItem{
		Ref:   domain.ContentRef{Type: domain.ContentTypeAnswer, ID: id},
		Title: title,
		Body:  a.Body,
	}, nil
}

func (r *interlinkRepository) resolveMainPage(id int64) (*domain.ContentItem, error) {
	f, ok := r.db.forums[id]
	if !ok {
		return nil, fmt.Errorf("forum %d: %w", id, common.ErrNotFound)
	}
	return &domain.ContentItem{
		Ref:   domain.ContentRef{Type: domain.ContentTypeMainPage, ID: id},
		Title: f.Name,
		Body:  f.Description,
	}, nil
}

func (r *interlinkRepository) Resolve(ref domain.ContentRef) (*domain.ContentItem, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	resolve, ok := r.resolvers[ref.Type]
	if !ok {
		return nil, fmt.Errorf("content type %q: %w", ref.Type, common.ErrInvalidInput)
	}
	return resolve(ref.ID)
}

func (r *interlinkRepository) validateRef(ref domain.ContentRef) error {
	resolve, ok := r.resolvers[ref.Type]
	if !ok {
		return fmt.Errorf("content type %q: %w", ref.Type, common.ErrInvalidInput)
	}
	_, err := resolve(ref.ID)
	return err
}

func (r *interlinkRepository) create(link *domain.ContentInterlink) (*domain.ContentInterlink, error) {
	if err := r.validateRef(domain.ContentRef{Type: link.SourceType, ID: link.SourceID}); err != nil {
		return nil, err
	}
	if err := r.validateRef(domain.ContentRef{Type: link.TargetType, ID: link.TargetID}); err != nil {
		return nil, err
	}

	stored := cloneInterlink(link)
	stored.ID = r.db.nextID("content_interlinks")
	stored.CreatedAt = r.db.now()
	r.db.interlinks[stored.ID] = stored

	return cloneInterlink(stored), nil
}

func (r *interlinkRepository) Create(link *domain.ContentInterlink) (*domain.ContentInterlink, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.create(link)
}

func (r *interlinkRepository) CreatePair(link *domain.ContentInterlink) (*domain.ContentInterlink, *domain.ContentInterlink, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	forward, err := r.create(link)
	if err != nil {
		return nil, nil, err
	}

	reversed := cloneInterlink(link)
	reversed.SourceType, reversed.TargetType = link.TargetType, link.SourceType
	reversed.SourceID, reversed.TargetID = link.TargetID, link.SourceID
	backward, err := r.create(reversed)
	if err != nil {
		return nil, nil, err
	}
	return forward, backward, nil
}

func (r *interlinkRepository) Delete(id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.interlinks[id]; !ok {
		return fmt.Errorf("interlink %d: %w", id, common.ErrNotFound)
	}
	delete(r.db.interlinks, id)
	return nil
}

func (r *interlinkRepository) FindBySource(ref domain.ContentRef) ([]*domain.ContentInterlink, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.ContentInterlink
	for _, l := range r.db.interlinks {
		if l.SourceType == ref.Type && l.SourceID == ref.ID {
			out = append(out, cloneInterlink(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *interlinkRepository) FindByTarget(ref domain.ContentRef) ([]*domain.ContentInterlink, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []*domain.ContentInterlink
	for _, l := range r.db.interlinks {
		if l.TargetType == ref.Type && l.TargetID == ref.ID {
			out = append(out, cloneInterlink(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
