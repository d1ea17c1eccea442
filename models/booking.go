package models

import (
	"fmt"
	"time"
)

// Status reservasi
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

type Booking struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	CustomerName  string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(50);not null" json:"customer_phone"`
	TableID       uint   `gorm:"not null" json:"table_id"`
	Table         Table  `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	PartySize     int    `gorm:"not null" json:"party_size"`
	// Format tanggal "2006-01-02", jam "15:04"
	ReservationDate string  `gorm:"type:varchar(10);not null;index" json:"reservation_date"`
	ReservationTime string  `gorm:"type:varchar(5);not null" json:"reservation_time"`
	Status          string  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	DepositAmount   float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"deposit_amount"`
	DepositPaid     bool    `gorm:"not null;default:false" json:"deposit_paid"`
	// SlotKey menjaga invariant "satu booking aktif per (meja, tanggal, jam)"
	// lewat unique index. Booking yang dibatalkan/selesai menulis ulang key-nya
	// dengan suffix ID sehingga slot terbuka lagi.
	SlotKey   string    `gorm:"type:varchar(100);uniqueIndex" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// SlotKeyFor membentuk key slot aktif untuk kombinasi meja+tanggal+jam.
func SlotKeyFor(tableID uint, date, timeOfDay string) string {
	return fmt.Sprintf("%d|%s|%s", tableID, date, timeOfDay)
}

// ReleaseSlot melepaskan slot agar bisa dipakai booking lain.
func (b *Booking) ReleaseSlot() {
	b.SlotKey = fmt.Sprintf("%s#%d", SlotKeyFor(b.TableID, b.ReservationDate, b.ReservationTime), b.ID)
}

// IsActive -> booking masih menahan slot
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
