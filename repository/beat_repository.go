package repository

import (
	"context"
	"errors"
	"fmt"

	"Spitbox/model"

	"gorm.io/gorm"
)

// BeatFilter narrows List. A zero value lists every beat.
type BeatFilter struct {
	UserID int64
}

// BeatRepository defines the interface for beat data operations.
type BeatRepository interface {
	Create(ctx context.Context, beat *model.Beat) error
	GetByID(ctx context.Context, id int64) (*model.Beat, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter BeatFilter) ([]*model.Beat, error)
	Count(ctx context.Context) (int64, error)
}

type gormBeatRepository struct {
	db *gorm.DB
}

// NewGormBeatRepository creates a GORM backed BeatRepository.
func NewGormBeatRepository(db *gorm.DB) BeatRepository {
	return &gormBeatRepository{db: db}
}

func (r *gormBeatRepository) Create(ctx context.Context, beat *model.Beat) error {
	if err := r.db.WithContext(ctx).Create(beat).Error; err != nil {
		return fmt.Errorf("failed to create beat %q: %w", beat.Title, err)
	}
	return nil
}

// GetByID returns nil, nil when the beat does not exist.
func (r *gormBeatRepository) GetByID(ctx context.Context, id int64) (*model.Beat, error) {
	var beat model.Beat
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&beat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get beat %d: %w", id, err)
	}
	return &beat, nil
}

func (r *gormBeatRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Beat{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check beat %d: %w", id, err)
	}
	return count > 0, nil
}

// List returns beats newest first.
func (r *gormBeatRepository) List(ctx context.Context, filter BeatFilter) ([]*model.Beat, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var beats []*model.Beat
	if err := query.Find(&beats).Error; err != nil {
		return nil, fmt.Errorf("failed to list beats: %w", err)
	}
	return beats, nil
}

func (r *gormBeatRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Beat{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count beats: %w", err)
	}
	return count, nil
}
