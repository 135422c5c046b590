package service

import (
	"context"

	"Spitbox/apperror"
	"Spitbox/model"
	"Spitbox/repository"
)

// LikeService toggles likes on beats.
type LikeService struct {
	store *repository.Store
}

// NewLikeService creates a LikeService.
func NewLikeService(store *repository.Store) *LikeService {
	return &LikeService{store: store}
}

// Toggle removes the caller's like if present and adds it otherwise. The
// unique (user_id, beat_id) index keeps at most one like per pair even when
// two toggles race.
func (s *LikeService) Toggle(ctx context.Context, userID, beatID int64) (*model.LikeResult, error) {
	exists, err := s.store.Beats.Exists(ctx, beatID)
	if err != nil {
		return nil, apperror.NewInternal("Failed to toggle like", err)
	}
	if !exists {
		return nil, apperror.NewNotFound("Beat not found")
	}

	result := &model.LikeResult{}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		removed, err := tx.Likes.Delete(ctx, userID, beatID)
		if err != nil {
			return err
		}
		if !removed {
			// a racing toggle may have inserted first; either way the pair is liked
			if _, err := tx.Likes.Insert(ctx, userID, beatID); err != nil {
				return err
			}
		}
		result.Liked = !removed

		result.LikesCount, err = tx.Likes.CountByBeat(ctx, beatID)
		return err
	})
	if err != nil {
		return nil, wrapInternal(err, "Failed to toggle like")
	}
	return result, nil
}
