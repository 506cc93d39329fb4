package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"commentd/app/models"
	"commentd/app/repositories"
)

// requiredCreateFields is the list named in create validation failures
var requiredCreateFields = []string{"task_id", "author", "content"}

// ValidationError reports a client payload that is malformed or incomplete
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	now         func() time.Time
}

type Option func(*CommentService)

// WithClock replaces the clock used to stamp created_at
func WithClock(now func() time.Time) Option {
	return func(s *CommentService) {
		s.now = now
	}
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, opts ...Option) *CommentService {
	s := &CommentService{
		commentRepo: commentRepo,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateComment validates the request and stores a new comment
func (s *CommentService) CreateComment(ctx context.Context, req *models.CreateCommentRequest) (*models.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{
			Message: "Missing required fields: " + strings.Join(requiredCreateFields, ", "),
			Fields:  models.MissingFields(err),
		}
	}

	comment := models.NewComment(req)
	comment.BeforeCreate(s.now())

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// GetComment retrieves a comment by ID
func (s *CommentService) GetComment(ctx context.Context, id int) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

// ListComments retrieves comments newest first, optionally for one task
func (s *CommentService) ListComments(ctx context.Context, filter models.CommentFilter) ([]*models.Comment, error) {
	return s.commentRepo.List(ctx, filter)
}

// UpdateComment applies the author/content fields present in req.
// A missing comment is reported before any null field.
func (s *CommentService) UpdateComment(ctx context.Context, id int, req *models.UpdateCommentRequest) (*models.Comment, error) {
	if _, err := s.commentRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if req.Author.Set && req.Author.Null {
		return nil, nullFieldError("author")
	}
	if req.Content.Set && req.Content.Null {
		return nil, nullFieldError("content")
	}

	return s.commentRepo.Update(ctx, id, models.CommentPatch{
		Author:  req.Author.Ptr(),
		Content: req.Content.Ptr(),
	})
}

// DeleteComment deletes a comment
func (s *CommentService) DeleteComment(ctx context.Context, id int) error {
	return s.commentRepo.Delete(ctx, id)
}

func nullFieldError(field string) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf("%s cannot be null", field),
		Fields:  []string{field},
	}
}
