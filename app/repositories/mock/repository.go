package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"commentd/app/models"
	"commentd/app/repositories"
)

// CommentRepository is a map-backed repositories.CommentRepository for tests
type CommentRepository struct {
	comments map[int]models.Comment
	nextID   int
	mutex    sync.RWMutex

	// Err, when set, is returned by every call
	Err error
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{
		comments: make(map[int]models.Comment),
		nextID:   1,
	}
}

func (m *CommentRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.comments = make(map[int]models.Comment)
	m.nextID = 1
}

// Len reports how many comments are stored
func (m *CommentRepository) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.comments)
}

func (m *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	comment.ID = m.nextID
	m.nextID++
	comment.BeforeCreate(time.Now())
	m.comments[comment.ID] = *comment
	return nil
}

func (m *CommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &comment, nil
}

func (m *CommentRepository) List(ctx context.Context, filter models.CommentFilter) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comments := []*models.Comment{}
	for _, comment := range m.comments {
		if filter.TaskID != nil && comment.TaskID != *filter.TaskID {
			continue
		}
		c := comment
		comments = append(comments, &c)
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
	return comments, nil
}

func (m *CommentRepository) Update(ctx context.Context, id int, patch models.CommentPatch) (*models.Comment, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	comment.Apply(patch)
	m.comments[id] = comment
	return &comment, nil
}

func (m *CommentRepository) Delete(ctx context.Context, id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

var _ repositories.CommentRepository = (*CommentRepository)(nil)
