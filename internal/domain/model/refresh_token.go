package model

import "time"

// 有効なrefresh tokenは1行1トークンで保存する。
// 平文は保存しない（sha256 -> base64url のハッシュのみ）。
// この表に行があること＝そのトークンが有効、が唯一の真実。
type RefreshToken struct {
	TokenHash string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"userId"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
