package model

import "time"

// Like records that a user likes a beat.
// The unique index allows at most one row per (user_id, beat_id).
type Like struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_likes_user_beat,priority:1"`
	BeatID    int64     `json:"beat_id" gorm:"not null;uniqueIndex:idx_likes_user_beat,priority:2;index"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Beat *Beat `json:"-" gorm:"foreignKey:BeatID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Like) TableName() string {
	return "likes"
}

// LikeResult reports the state after a toggle.
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// AllModels lists every table in dependency order (parents first).
func AllModels() []interface{} {
	return []interface{}{&User{}, &Beat{}, &Comment{}, &Like{}}
}
