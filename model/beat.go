package model

import "time"

// MaxTitleLength bounds Beat.Title.
const MaxTitleLength = 100

// DefaultBeatTitle is used when an upload carries no title.
const DefaultBeatTitle = "Untitled Beat"

// Beat represents an uploaded audio recording.
// AudioURL is either a server-relative "/uploads/<name>" reference or an absolute
// URL into a bucket. It is never changed after creation.
type Beat struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"type:text"`
	AudioURL    string    `json:"audio_url" gorm:"size:500;not null"`
	UserID      int64     `json:"user_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`

	// Only used to declare the foreign key.
	Author *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Beat) TableName() string {
	return "beats"
}

// BeatView is a beat joined with its author and aggregates, with URLs materialized.
type BeatView struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	AudioURL      string    `json:"audio_url"`
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	AuthorPhoto   *string   `json:"author_photo"`
	CreatedAt     time.Time `json:"created_at"`
	LikesCount    int64     `json:"likes_count"`
	LikedByUser   bool      `json:"liked_by_user"`
	CommentsCount int64     `json:"comments_count"`
}
