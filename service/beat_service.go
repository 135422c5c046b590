package service

import (
	"context"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"Spitbox/apperror"
	"Spitbox/logger"
	"Spitbox/model"
	"Spitbox/repository"
	"Spitbox/storage"

	"github.com/dustin/go-humanize"
)

// AudioFile is an uploaded audio part.
type AudioFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// CreateBeatInput holds the upload form. Empty Title means "not given".
type CreateBeatInput struct {
	Title       string
	Description string
	Audio       *AudioFile
}

// BeatService handles beat uploads and listings.
type BeatService struct {
	store   *repository.Store
	backend storage.Backend
	now     func() time.Time
}

// NewBeatService creates a BeatService storing audio in backend.
func NewBeatService(store *repository.Store, backend storage.Backend) *BeatService {
	return &BeatService{store: store, backend: backend, now: time.Now}
}

// Create stores the audio and then records the beat. When storing fails no row
// is written. baseURL is used to materialize relative audio references.
func (s *BeatService) Create(ctx context.Context, userID int64, in CreateBeatInput, baseURL string) (*model.BeatView, error) {
	if in.Audio == nil || in.Audio.Content == nil {
		return nil, apperror.NewBadRequest("No audio file provided")
	}
	if in.Audio.Filename == "" {
		return nil, apperror.NewBadRequest("No selected file")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = model.DefaultBeatTitle
	}
	if utf8.RuneCountInString(title) > model.MaxTitleLength {
		return nil, apperror.NewBadRequest("Title must be at most 100 characters")
	}

	name := storage.StoredFilename(in.Audio.Filename, s.now())
	if name == "" {
		return nil, apperror.NewBadRequest("Invalid file name")
	}

	author, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal("Failed to upload beat", err)
	}
	if author == nil {
		return nil, apperror.NewNotFound("User not found")
	}

	ref, err := s.backend.Store(ctx, in.Audio.Content, name)
	if err != nil {
		logger.Error("Failed to store audio",
			logger.String("backend", s.backend.Name()),
			logger.String("file", name),
			logger.ErrorField(err))
		return nil, apperror.NewUploadError("Failed to store audio file", err)
	}

	beat := &model.Beat{
		Title:       title,
		Description: in.Description,
		AudioURL:    ref,
		UserID:      userID,
	}
	if err := s.store.Beats.Create(ctx, beat); err != nil {
		// the stored file stays behind without a row
		logger.Error("Failed to record beat after storing audio",
			logger.String("audioURL", ref), logger.ErrorField(err))
		return nil, apperror.NewInternal("Failed to upload beat", err)
	}

	logger.Info("Beat uploaded",
		logger.Int64("beatID", beat.ID),
		logger.Int64("userID", userID),
		logger.String("backend", s.backend.Name()),
		logger.String("size", humanize.Bytes(uint64(max(in.Audio.Size, 0)))))

	view := beatView(beat, author, baseURL)
	return &view, nil
}

// List returns every beat, newest first. viewerID is 0 for anonymous callers.
func (s *BeatService) List(ctx context.Context, viewerID int64, baseURL string) ([]model.BeatView, error) {
	return s.list(ctx, repository.BeatFilter{}, viewerID, baseURL)
}

// ListByUsername returns the beats of one user. A leading "@" is ignored.
func (s *BeatService) ListByUsername(ctx context.Context, username string, viewerID int64, baseURL string) ([]model.BeatView, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	user, err := s.store.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.NewInternal("Failed to fetch beats", err)
	}
	if user == nil {
		return nil, apperror.NewNotFound("User not found")
	}
	return s.list(ctx, repository.BeatFilter{UserID: user.ID}, viewerID, baseURL)
}

// ListMine returns the caller's own beats.
func (s *BeatService) ListMine(ctx context.Context, userID int64, baseURL string) ([]model.BeatView, error) {
	return s.list(ctx, repository.BeatFilter{UserID: userID}, userID, baseURL)
}

// Get returns a single beat.
func (s *BeatService) Get(ctx context.Context, beatID int64, viewerID int64, baseURL string) (*model.BeatView, error) {
	beat, err := s.store.Beats.GetByID(ctx, beatID)
	if err != nil {
		return nil, apperror.NewInternal("Failed to fetch beat", err)
	}
	if beat == nil {
		return nil, apperror.NewNotFound("Beat not found")
	}
	views, err := s.views(ctx, []*model.Beat{beat}, viewerID, baseURL)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *BeatService) list(ctx context.Context, filter repository.BeatFilter, viewerID int64, baseURL string) ([]model.BeatView, error) {
	beats, err := s.store.Beats.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternal("Failed to fetch beats", err)
	}
	return s.views(ctx, beats, viewerID, baseURL)
}

// views decorates beats with authors and aggregates using a fixed number of
// queries, whatever the number of beats.
func (s *BeatService) views(ctx context.Context, beats []*model.Beat, viewerID int64, baseURL string) ([]model.BeatView, error) {
	out := make([]model.BeatView, 0, len(beats))
	if len(beats) == 0 {
		return out, nil
	}

	beatIDs := make([]int64, 0, len(beats))
	seen := make(map[int64]bool)
	var userIDs []int64
	for _, b := range beats {
		beatIDs = append(beatIDs, b.ID)
		if !seen[b.UserID] {
			seen[b.UserID] = true
			userIDs = append(userIDs, b.UserID)
		}
	}

	authors, err := s.store.Users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperror.NewInternal("Failed to fetch beats", err)
	}
	likes, err := s.store.Likes.CountByBeats(ctx, beatIDs)
	if err != nil {
		return nil, apperror.NewInternal("Failed to fetch beats", err)
	}
	comments, err := s.store.Comments.CountByBeats(ctx, beatIDs)
	if err != nil {
		return nil, apperror.NewInternal("Failed to fetch beats", err)
	}
	liked, err := s.store.Likes.LikedBeats(ctx, viewerID, beatIDs)
	if err != nil {
		return nil, apperror.NewInternal("Failed to fetch beats", err)
	}

	for _, b := range beats {
		view := beatView(b, authors[b.UserID], baseURL)
		view.LikesCount = likes[b.ID]
		view.CommentsCount = comments[b.ID]
		view.LikedByUser = liked[b.ID]
		out = append(out, view)
	}
	return out, nil
}

func beatView(b *model.Beat, author *model.User, baseURL string) model.BeatView {
	view := model.BeatView{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		AudioURL:    storage.MaterializeURL(b.AudioURL, baseURL),
		UserID:      b.UserID,
		CreatedAt:   b.CreatedAt,
	}
	if author != nil {
		view.Username = author.Username
		if author.ProfilePhoto != nil && *author.ProfilePhoto != "" {
			photo := storage.MaterializeURL(*author.ProfilePhoto, baseURL)
			view.AuthorPhoto = &photo
		}
	}
	return view
}
