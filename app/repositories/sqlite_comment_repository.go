package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"commentd/app/models"
)

const commentColumns = "id, task_id, author, content, created_at"

// SQLiteCommentRepository implements CommentRepository on a relational table
type SQLiteCommentRepository struct {
	db *sql.DB
}

// NewSQLiteCommentRepository creates the comments table if needed and returns
// a repository backed by it
func NewSQLiteCommentRepository(ctx context.Context, db *sql.DB) (*SQLiteCommentRepository, error) {
	if err := createCommentSchema(ctx, db); err != nil {
		return nil, err
	}
	return &SQLiteCommentRepository{db: db}, nil
}

func createCommentSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS comments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id INTEGER NOT NULL,
			author TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create comments table: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_comments_task_id
		ON comments(task_id)
	`)
	if err != nil {
		return fmt.Errorf("create comments index: %w", err)
	}
	return nil
}

// Create inserts the comment and copies the generated ID back
func (r *SQLiteCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	record := *comment
	record.BeforeCreate(time.Now())

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (task_id, author, content, created_at) VALUES (?, ?, ?, ?)",
		record.TaskID, record.Author, record.Content, models.FormatTime(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	record.ID = int(id)

	*comment = record
	return nil
}

// GetByID retrieves a comment by ID
func (r *SQLiteCommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id = ?", id)
	return scanComment(row)
}

// List retrieves comments, optionally restricted to one task, newest first
func (r *SQLiteCommentRepository) List(ctx context.Context, filter models.CommentFilter) ([]*models.Comment, error) {
	query := "SELECT " + commentColumns + " FROM comments"
	var args []any
	if filter.TaskID != nil {
		query += " WHERE task_id = ?"
		args = append(args, *filter.TaskID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Update applies a patch inside a transaction and returns the stored row
func (r *SQLiteCommentRepository) Update(ctx context.Context, id int, patch models.CommentPatch) (*models.Comment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		"UPDATE comments SET author = COALESCE(?, author), content = COALESCE(?, content) WHERE id = ?",
		patch.Author, patch.Content, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update comment %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update comment %d: %w", id, err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	comment, err := scanComment(tx.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id = ?", id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return comment, nil
}

// Delete removes a comment permanently
func (r *SQLiteCommentRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var (
		comment   models.Comment
		createdAt string
	)
	err := row.Scan(&comment.ID, &comment.TaskID, &comment.Author, &comment.Content, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan comment: %w", err)
	}

	comment.CreatedAt, err = models.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
