package repositories

import (
	"context"

	"commentd/app/models"
)

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int) (*models.Comment, error)
	List(ctx context.Context, filter models.CommentFilter) ([]*models.Comment, error)
	Update(ctx context.Context, id int, patch models.CommentPatch) (*models.Comment, error)
	Delete(ctx context.Context, id int) error
}
