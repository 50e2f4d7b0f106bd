// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a member of the network.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Image     string    `json:"image"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Headline  string    `json:"headline"`
	Location  string    `json:"location"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	IsBanned  bool      `gorm:"not null;default:false" json:"is_banned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed at query time
	FollowersCount int  `gorm:"->;-:migration" json:"followers_count"`
	FollowingCount int  `gorm:"->;-:migration" json:"following_count"`
	PostCount      int  `gorm:"->;-:migration" json:"post_count"`
	IsFollowing    bool `gorm:"->;-:migration" json:"is_following"`
}

// UserSummary is the public author projection embedded in feeds and queues.
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Summary projects the user down to its public author fields.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Image: u.Image}
}
