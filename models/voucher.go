package models

import "time"

// Tipe diskon voucher
const (
	VoucherTypePercentage   = "percentage"
	VoucherTypeFixed        = "fixed"
	VoucherTypeFreeShipping = "free_shipping"
)

type Voucher struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Code         string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description  string `gorm:"type:text" json:"description"`
	DiscountType string `gorm:"type:varchar(20);not null" json:"discount_type"`
	// Untuk percentage: nilai persen (mis. 10 = 10%). Untuk fixed: nominal.
	DiscountValue float64 `gorm:"type:decimal(10,2);not null" json:"discount_value"`
	// Wajib > 0 untuk tipe percentage
	MaxDiscount   float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"max_discount"`
	MinOrderValue float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"min_order_value"`
	StartDate     time.Time `gorm:"not null" json:"start_date"`
	EndDate       time.Time `gorm:"not null" json:"end_date"`
	// 0 = tanpa batas pemakaian
	UsageLimit    int  `gorm:"not null;default:0" json:"usage_limit"`
	UsedCount     int  `gorm:"not null;default:0" json:"used_count"`
	FirstTimeOnly bool `gorm:"not null;default:false" json:"first_time_only"`
	IsActive      bool `gorm:"not null;default:true" json:"is_active"`
	// Kosong = berlaku untuk semua menu
	Menus     []Menu    `gorm:"many2many:voucher_menus" json:"menus,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// HasMenuRestriction -> voucher hanya berlaku untuk menu tertentu
func (v *Voucher) HasMenuRestriction() bool {
	return len(v.Menus) > 0
}

// IsExhausted -> kuota pemakaian sudah habis
func (v *Voucher) IsExhausted() bool {
	return v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit
}
