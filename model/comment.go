package model

import "time"

// Comment is attached to a position inside a beat's audio.
// Timestamp is the offset in seconds into the track, not the creation time.
type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Timestamp float64   `json:"timestamp" gorm:"not null"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	BeatID    int64     `json:"beat_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Beat *Beat `json:"-" gorm:"foreignKey:BeatID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comments"
}

// CommentView is a comment annotated with its author's username.
type CommentView struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Timestamp float64   `json:"timestamp"`
	UserID    int64     `json:"user_id"`
	BeatID    int64     `json:"beat_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentView builds the view of c written by username.
func NewCommentView(c *Comment, username string) CommentView {
	return CommentView{
		ID:        c.ID,
		Content:   c.Content,
		Timestamp: c.Timestamp,
		UserID:    c.UserID,
		BeatID:    c.BeatID,
		Username:  username,
		CreatedAt: c.CreatedAt,
	}
}
