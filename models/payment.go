package models

import (
	"time"
)

// Payment represents a payment transaction for an order or a booking deposit
type Payment struct {
	ID            uint     `json:"id" gorm:"primaryKey"`
	OrderID       *uint    `json:"order_id,omitempty"`
	Order         *Order   `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	BookingID     *uint    `json:"booking_id,omitempty"`
	Booking       *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	Amount        float64  `json:"amount"`
	Status        string   `json:"status" gorm:"type:varchar(20);default:'pending'"`
	PaymentMethod string   `json:"payment_method" gorm:"type:varchar(20);default:'cash'"`
	PaymentType   string   `json:"payment_type"`
	ReferenceID   string   `json:"reference_id"`
	QRCode        string   `json:"qr_code"`      // Raw QR code data for QRIS
	QRImageURL    string   `json:"qr_image_url"` // URL to QR code image (dari Midtrans)
	Details       string   `json:"details"`      // Additional payment details in JSON
	CashReceived  float64  `json:"cash_received"`
	Change        float64  `json:"change"`
	// Refund untuk deposit booking yang dibatalkan
	IsRefund    bool       `json:"is_refund" gorm:"not null;default:false"`
	PaymentTime *time.Time `json:"payment_time"`
	ExpiredAt   *time.Time `json:"expired_at"`
	VerifiedBy  *uint      `json:"verified_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
