package repository

import (
	"context"
	"errors"
	"fmt"

	"Spitbox/model"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id int64) error
	ListByBeat(ctx context.Context, beatID int64) ([]*model.Comment, error)
	CountByBeats(ctx context.Context, beatIDs []int64) (map[int64]int64, error)
}

type gormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a GORM backed CommentRepository.
func NewGormCommentRepository(db *gorm.DB) CommentRepository {
	return &gormCommentRepository{db: db}
}

func (r *gormCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment on beat %d: %w", comment.BeatID, err)
	}
	return nil
}

// GetByID returns nil, nil when the comment does not exist.
func (r *gormCommentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment %d: %w", id, err)
	}
	return &comment, nil
}

// Update writes the mutable columns (content, timestamp).
func (r *gormCommentRepository) Update(ctx context.Context, comment *model.Comment) error {
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]interface{}{
			"content":   comment.Content,
			"timestamp": comment.Timestamp,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update comment %d: %w", comment.ID, err)
	}
	return nil
}

func (r *gormCommentRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&model.Comment{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}
	return nil
}

// ListByBeat orders by position in the track, then by id.
func (r *gormCommentRepository) ListByBeat(ctx context.Context, beatID int64) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.WithContext(ctx).
		Where("beat_id = ?", beatID).
		Order("timestamp ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for beat %d: %w", beatID, err)
	}
	return comments, nil
}

func (r *gormCommentRepository) CountByBeats(ctx context.Context, beatIDs []int64) (map[int64]int64, error) {
	counts, err := countByBeat(ctx, r.db, &model.Comment{}, beatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return counts, nil
}

type beatCount struct {
	BeatID int64
	Total  int64
}

// countByBeat runs one GROUP BY over beat_id for the given beats.
func countByBeat(ctx context.Context, db *gorm.DB, table interface{}, beatIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(beatIDs))
	if len(beatIDs) == 0 {
		return counts, nil
	}
	var rows []beatCount
	err := db.WithContext(ctx).Model(table).
		Select("beat_id, COUNT(*) AS total").
		Where("beat_id IN ?", beatIDs).
		Group("beat_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.BeatID] = row.Total
	}
	return counts, nil
}
