package model

import "time"

type Product struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	ImageURL    string `gorm:"not null" json:"image_url"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"type:varchar(100)" json:"category"`
	Price       int64  `gorm:"not null" json:"price"`
	Stock       int64  `gorm:"not null;default:0" json:"stock"`
	//削除は物理削除ではなくアーカイブ
	IsArchived bool `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
