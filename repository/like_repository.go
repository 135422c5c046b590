package repository

import (
	"context"
	"fmt"

	"Spitbox/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations.
type LikeRepository interface {
	// Delete removes the (user, beat) like and reports whether one existed.
	Delete(ctx context.Context, userID, beatID int64) (bool, error)
	// Insert adds the (user, beat) like; an existing row is left alone and
	// reported as false.
	Insert(ctx context.Context, userID, beatID int64) (bool, error)
	CountByBeat(ctx context.Context, beatID int64) (int64, error)
	CountByBeats(ctx context.Context, beatIDs []int64) (map[int64]int64, error)
	LikedBeats(ctx context.Context, userID int64, beatIDs []int64) (map[int64]bool, error)
}

type gormLikeRepository struct {
	db *gorm.DB
}

// NewGormLikeRepository creates a GORM backed LikeRepository.
func NewGormLikeRepository(db *gorm.DB) LikeRepository {
	return &gormLikeRepository{db: db}
}

func (r *gormLikeRepository) Delete(ctx context.Context, userID, beatID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND beat_id = ?", userID, beatID).
		Delete(&model.Like{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete like (user %d, beat %d): %w", userID, beatID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormLikeRepository) Insert(ctx context.Context, userID, beatID int64) (bool, error) {
	like := &model.Like{UserID: userID, BeatID: beatID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert like (user %d, beat %d): %w", userID, beatID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormLikeRepository) CountByBeat(ctx context.Context, beatID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).Where("beat_id = ?", beatID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count likes for beat %d: %w", beatID, err)
	}
	return count, nil
}

func (r *gormLikeRepository) CountByBeats(ctx context.Context, beatIDs []int64) (map[int64]int64, error) {
	counts, err := countByBeat(ctx, r.db, &model.Like{}, beatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	return counts, nil
}

// LikedBeats returns the subset of beatIDs that userID likes.
func (r *gormLikeRepository) LikedBeats(ctx context.Context, userID int64, beatIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool)
	if userID == 0 || len(beatIDs) == 0 {
		return liked, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND beat_id IN ?", userID, beatIDs).
		Pluck("beat_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load likes of user %d: %w", userID, err)
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
