package domain

import (
	"time"
)

// AssetInfo tracks the locally cached icon for a coin
type AssetInfo struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Symbol       string    `json:"symbol" gorm:"index"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"image_url"`
	IconPath     string    `json:"icon_path"`
	LastSyncedAt time.Time `json:"last_synced_at"` // Last icon sync time
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NeedsIcon reports whether the icon is missing or the source image changed.
func (a *AssetInfo) NeedsIcon(imageURL string) bool {
	return a.IconPath == "" || a.ImageURL != imageURL
}
