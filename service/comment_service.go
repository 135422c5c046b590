package service

import (
	"context"
	"math"
	"strings"

	"Spitbox/apperror"
	"Spitbox/logger"
	"Spitbox/model"
	"Spitbox/repository"
)

// CreateCommentInput is the body of a new comment. Timestamp is required.
type CreateCommentInput struct {
	Content   string   `json:"content"`
	Timestamp *float64 `json:"timestamp"`
}

// UpdateCommentInput carries the fields to change; nil means unchanged.
type UpdateCommentInput struct {
	Content   *string  `json:"content"`
	Timestamp *float64 `json:"timestamp"`
}

// CommentService handles timestamped comments on beats.
type CommentService struct {
	store *repository.Store
}

// NewCommentService creates a CommentService.
func NewCommentService(store *repository.Store) *CommentService {
	return &CommentService{store: store}
}

// List returns the comments of a beat ordered by their position in the track.
func (s *CommentService) List(ctx context.Context, beatID int64) ([]model.CommentView, error) {
	if err := s.requireBeat(ctx, s.store, beatID); err != nil {
		return nil, err
	}
	comments, err := s.store.Comments.ListByBeat(ctx, beatID)
	if err != nil {
		return nil, apperror.NewInternal("Failed to fetch comments", err)
	}

	seen := make(map[int64]bool)
	var userIDs []int64
	for _, c := range comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			userIDs = append(userIDs, c.UserID)
		}
	}
	users, err := s.store.Users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperror.NewInternal("Failed to fetch comments", err)
	}

	out := make([]model.CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, model.NewCommentView(c, usernameOf(users[c.UserID])))
	}
	return out, nil
}

// Create adds a comment at a position of the beat.
func (s *CommentService) Create(ctx context.Context, userID, beatID int64, in CreateCommentInput) (*model.CommentView, error) {
	if strings.TrimSpace(in.Content) == "" || in.Timestamp == nil {
		return nil, apperror.NewBadRequest("Missing required fields")
	}
	if err := validateTimestamp(*in.Timestamp); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Content:   in.Content,
		Timestamp: *in.Timestamp,
		UserID:    userID,
		BeatID:    beatID,
	}
	var author *model.User
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := s.requireBeat(ctx, tx, beatID); err != nil {
			return err
		}
		var err error
		if author, err = tx.Users.GetByID(ctx, userID); err != nil {
			return err
		}
		if author == nil {
			return apperror.NewNotFound("User not found")
		}
		return tx.Comments.Create(ctx, comment)
	})
	if err != nil {
		return nil, wrapInternal(err, "Failed to add comment")
	}
	logger.Debug("Comment added",
		logger.Int64("commentID", comment.ID),
		logger.Int64("beatID", beatID),
		logger.Float64("timestamp", comment.Timestamp))

	view := model.NewCommentView(comment, author.Username)
	return &view, nil
}

// Update changes the content and/or timestamp of the caller's own comment.
func (s *CommentService) Update(ctx context.Context, userID, commentID int64, in UpdateCommentInput) (*model.CommentView, error) {
	if in.Content == nil && in.Timestamp == nil {
		return nil, apperror.NewBadRequest("Missing content field")
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return nil, apperror.NewBadRequest("Content must not be empty")
	}
	if in.Timestamp != nil {
		if err := validateTimestamp(*in.Timestamp); err != nil {
			return nil, err
		}
	}

	var (
		comment  *model.Comment
		username string
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		if comment, err = s.ownedComment(ctx, tx, userID, commentID); err != nil {
			return err
		}
		if in.Content != nil {
			comment.Content = *in.Content
		}
		if in.Timestamp != nil {
			comment.Timestamp = *in.Timestamp
		}
		if err := tx.Comments.Update(ctx, comment); err != nil {
			return err
		}
		author, err := tx.Users.GetByID(ctx, comment.UserID)
		if err != nil {
			return err
		}
		username = usernameOf(author)
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err, "Failed to update comment")
	}

	view := model.NewCommentView(comment, username)
	return &view, nil
}

// Delete removes the caller's own comment.
func (s *CommentService) Delete(ctx context.Context, userID, commentID int64) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := s.ownedComment(ctx, tx, userID, commentID); err != nil {
			return err
		}
		return tx.Comments.Delete(ctx, commentID)
	})
	if err != nil {
		return wrapInternal(err, "Failed to delete comment")
	}
	return nil
}

func (s *CommentService) ownedComment(ctx context.Context, tx *repository.Store, userID, commentID int64) (*model.Comment, error) {
	comment, err := tx.Comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apperror.NewNotFound("Comment not found")
	}
	if comment.UserID != userID {
		return nil, apperror.NewForbidden("Unauthorized")
	}
	return comment, nil
}

func (s *CommentService) requireBeat(ctx context.Context, store *repository.Store, beatID int64) error {
	exists, err := store.Beats.Exists(ctx, beatID)
	if err != nil {
		return apperror.NewInternal("Failed to fetch beat", err)
	}
	if !exists {
		return apperror.NewNotFound("Beat not found")
	}
	return nil
}

func validateTimestamp(ts float64) error {
	if ts < 0 || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return apperror.NewBadRequest("Timestamp must be a non-negative number of seconds")
	}
	return nil
}

func usernameOf(u *model.User) string {
	if u == nil {
		return ""
	}
	return u.Username
}
