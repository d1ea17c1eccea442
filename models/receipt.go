package models

import "time"

type Receipt struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `json:"order_id"`
	Order     Order   `gorm:"foreignKey:OrderID" json:"order"`
	PaymentID uint    `json:"payment_id"`
	Payment   Payment `gorm:"foreignKey:PaymentID" json:"payment"`
	Subtotal  float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount  float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"discount"`
	Total     float64 `gorm:"type:decimal(12,2);not null" json:"total"`

	// Detail Pembayaran
	PaymentMethod    string  `gorm:"type:varchar(50);not null" json:"payment_method"`
	AmountPaid       float64 `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	Change           float64 `gorm:"type:decimal(12,2);not null" json:"change"`
	PaymentReference string  `gorm:"type:varchar(100)" json:"payment_reference"`

	ReceiptItems []ReceiptItem `gorm:"foreignKey:ReceiptID" json:"receipt_items"`

	ReceiptNumber string    `gorm:"type:varchar(50);uniqueIndex" json:"receipt_number"`
	PDFPath       string    `gorm:"type:varchar(255)" json:"pdf_path"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

type ReceiptItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ReceiptID uint    `gorm:"not null" json:"receipt_id"`
	Receipt   Receipt `gorm:"-" json:"-"`

	MenuID    uint    `gorm:"not null" json:"menu_id"`
	MenuName  string  `gorm:"type:varchar(100);not null" json:"menu_name"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal  float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Notes     string  `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
