package models

import (
	"fmt"
	"time"
)

type Order struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	CustomerID uint     `gorm:"not null" json:"customer_id"`
	Customer   Customer `gorm:"foreignKey:CustomerID" json:"customer"`
	// Nomor telepon pemesan; dipakai untuk deteksi pelanggan baru pada voucher
	CustomerPhone     string      `gorm:"type:varchar(50);index" json:"customer_phone"`
	Status            string      `gorm:"type:varchar(20);not null;default:'pending_payment'" json:"status"`
	TotalAmount       float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	VoucherID         *uint       `gorm:"index" json:"voucher_id,omitempty"`
	Voucher           *Voucher    `gorm:"foreignKey:VoucherID" json:"voucher,omitempty"`
	DiscountAmount    float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"discount_amount"`
	ChefID            *uint       `gorm:"index" json:"chef_id,omitempty"`
	Chef              *User       `gorm:"foreignKey:ChefID" json:"chef,omitempty"`
	StartCookingTime  *time.Time  `json:"start_cooking_time,omitempty"`
	FinishCookingTime *time.Time  `json:"finish_cooking_time,omitempty"`
	CreatedAt         time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems        []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	TableID           uint        `json:"table_id"`
	Table             Table       `gorm:"foreignKey:TableID" json:"table"`
}

// GenerateCustomerIdentifier menghasilkan identifier untuk customer berdasarkan ID
func (o *Order) GenerateCustomerIdentifier() string {
	return fmt.Sprintf("CUST-%d-%d", o.CustomerID, o.ID)
}

// PayableAmount -> total setelah diskon voucher
func (o *Order) PayableAmount() float64 {
	payable := o.TotalAmount - o.DiscountAmount
	if payable < 0 {
		return 0
	}
	return payable
}
