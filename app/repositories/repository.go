package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"commentd/config"

	"github.com/dgraph-io/badger/v4"
	_ "modernc.org/sqlite"
)

// Repository owns the storage handle behind the comment repository. It lives
// from process start (or test setup) until Close and always starts empty.
type Repository struct {
	Comments CommentRepository
	driver   string
	close    func() error
}

// Open creates the configured in-memory store
func Open(ctx context.Context, cfg config.StoreConfig) (*Repository, error) {
	switch cfg.Driver {
	case config.StoreBadger, "":
		db, err := OpenBadger()
		if err != nil {
			return nil, err
		}
		return &Repository{
			Comments: NewBadgerCommentRepository(db),
			driver:   config.StoreBadger,
			close:    db.Close,
		}, nil
	case config.StoreSQLite:
		db, err := OpenSQLite(ctx)
		if err != nil {
			return nil, err
		}
		comments, err := NewSQLiteCommentRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return &Repository{
			Comments: comments,
			driver:   config.StoreSQLite,
			close:    db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// OpenBadger opens an in-memory Badger instance
func OpenBadger() (*badger.DB, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return db, nil
}

// OpenSQLite opens an in-memory SQLite database. The pool is pinned to a
// single connection because every connection to :memory: is its own database.
func OpenSQLite(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}
	return db, nil
}

// Driver reports which backend is in use
func (r *Repository) Driver() string {
	return r.driver
}

func (r *Repository) Close() error {
	if r.close == nil {
		return nil
	}
	err := r.close()
	r.close = nil
	return err
}
