package models

import "time"

// Category is a user-configured main/sub category pair fed to the extraction
// prompt. Category CRUD lives in an excluded surface; this side only reads.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   string    `gorm:"index:idx_categories_owner" json:"owner_id"`
	MainName  string    `json:"main"`
	SubName   string    `json:"sub"`
	Keywords  string    `json:"keywords,omitempty"` // comma separated
	CreatedAt time.Time `json:"-"`
}
