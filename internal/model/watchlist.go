package model

import "time"

// WatchlistItem is a symbol the user tracks between screening runs.
type WatchlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"type:varchar(16);not null;uniqueIndex" json:"symbol"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WatchlistItem) TableName() string {
	return "watchlist_items"
}

type GetWatchlistParam struct {
	Symbols []string `json:"symbols"`
	Limit   *int     `json:"limit"`
}
