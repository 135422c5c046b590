package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories sharing one database handle, which is either
// the connection pool or an open transaction.
type Store struct {
	db       *gorm.DB
	Users    UserRepository
	Beats    BeatRepository
	Comments CommentRepository
	Likes    LikeRepository
}

// NewStore creates repositories over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewGormUserRepository(db),
		Beats:    NewGormBeatRepository(db),
		Comments: NewGormCommentRepository(db),
		Likes:    NewGormLikeRepository(db),
	}
}

// Transaction runs fn with a Store bound to a single transaction. The
// transaction is rolled back when fn returns an error or panics.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// DB exposes the underlying handle for schema operations.
func (s *Store) DB() *gorm.DB {
	return s.db
}
