package models

import "time"

type Menu struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	CategoryID uint         `gorm:"not null" json:"category_id"`
	Category   MenuCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name       string       `gorm:"type:varchar(255);not null" json:"name"`
	Price      float64      `gorm:"type:decimal(10,2);not null" json:"price"`
	// Harga promo per-menu (opsional); dipakai saat menghitung total aktual
	PromoPrice  *float64  `gorm:"type:decimal(10,2)" json:"promo_price,omitempty"`
	Stock       int       `json:"stock"`
	Description string    `gorm:"type:text" json:"description"`
	ImageUrl    *string   `gorm:"type:varchar(255)" json:"image_url,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// EffectivePrice -> harga promo jika ada, selain itu harga normal
func (m *Menu) EffectivePrice() float64 {
	if m.PromoPrice != nil && *m.PromoPrice > 0 && *m.PromoPrice < m.Price {
		return *m.PromoPrice
	}
	return m.Price
}
