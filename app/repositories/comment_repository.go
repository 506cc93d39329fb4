package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"commentd/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
	// Serializes writers so concurrent creates never conflict on the sequence key
	mutex sync.RWMutex
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create assigns the next ID and stores the comment
func (r *BadgerCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	record := *comment
	record.BeforeCreate(time.Now())

	err := r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		record.ID = id

		data, err := marshalEntity(&record)
		if err != nil {
			return err
		}
		if err := txn.Set(commentKey(record.ID), data); err != nil {
			return err
		}
		return txn.Set(taskIndexKey(record.TaskID, record.ID), []byte{})
	})
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	*comment = record
	return nil
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var comment *models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		comment, err = getComment(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// List retrieves comments, optionally restricted to one task, newest first
func (r *BadgerCommentRepository) List(ctx context.Context, filter models.CommentFilter) ([]*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		if filter.TaskID == nil {
			return scanComments(txn, func(c *models.Comment) {
				comments = append(comments, c)
			})
		}

		ids, err := scanTaskIndex(txn, *filter.TaskID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			comment, err := getComment(txn, id)
			if err != nil {
				return fmt.Errorf("task index points at comment %d: %w", id, err)
			}
			comments = append(comments, comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(comments)
	return comments, nil
}

// Update applies a patch to an existing comment
func (r *BadgerCommentRepository) Update(ctx context.Context, id int, patch models.CommentPatch) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var comment *models.Comment
	err := r.db.Update(func(txn *badger.Txn) error {
		var err error
		comment, err = getComment(txn, id)
		if err != nil {
			return err
		}
		comment.Apply(patch)

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		return txn.Set(commentKey(id), data)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete deletes a comment and its task index entry
func (r *BadgerCommentRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.db.Update(func(txn *badger.Txn) error {
		comment, err := getComment(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(taskIndexKey(comment.TaskID, id)); err != nil {
			return err
		}
		return txn.Delete(commentKey(id))
	})
}

func getComment(txn *badger.Txn, id int) (*models.Comment, error) {
	item, err := txn.Get(commentKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	err = item.Value(func(val []byte) error {
		return unmarshalEntity(val, &comment)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal comment: %w", err)
	}
	return &comment, nil
}

func scanComments(txn *badger.Txn, fn func(*models.Comment)) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := []byte(CommentKeyPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var comment models.Comment
		err := it.Item().Value(func(val []byte) error {
			return unmarshalEntity(val, &comment)
		})
		if err != nil {
			return fmt.Errorf("failed to unmarshal comment: %w", err)
		}
		fn(&comment)
	}
	return nil
}

func scanTaskIndex(txn *badger.Txn, taskID int) ([]int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []int
	prefix := taskIndexPrefix(taskID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().Key()
		id, err := strconv.Atoi(string(key[len(prefix):]))
		if err != nil {
			return nil, fmt.Errorf("malformed index key %q: %w", key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
