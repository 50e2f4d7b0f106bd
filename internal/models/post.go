package models

import "time"

// PostType tags a post as professional or social content.
type PostType string

const (
	PostTypeProfessional PostType = "professional"
	PostTypeSocial       PostType = "social"
)

// Valid reports whether t is one of the known post types.
func (t PostType) Valid() bool {
	return t == PostTypeProfessional || t == PostTypeSocial
}

// Post is a user-authored piece of content subject to moderation.
// Posts are hard-deleted; likes and comments are removed alongside.
type Post struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Title    string   `json:"title"`
	Content  string   `gorm:"type:text;not null" json:"content"`
	ImageURL string   `json:"image_url"`
	Type     PostType `gorm:"type:varchar(20);not null;default:'social';index" json:"type"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	User     User     `gorm:"foreignKey:UserID" json:"user"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->;-:migration" json:"liked"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
