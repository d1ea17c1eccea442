package models

import "time"

// Status shift
const (
	ShiftStatusScheduled = "scheduled"
	ShiftStatusCompleted = "completed"
	ShiftStatusMissed    = "missed"
)

// Shift adalah jadwal kerja satu pegawai pada satu tanggal.
type Shift struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user"`
	// Format tanggal "2006-01-02", jam "15:04"
	ShiftDate string    `gorm:"type:varchar(10);not null;index" json:"shift_date"`
	StartTime string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime   string    `gorm:"type:varchar(5);not null" json:"end_time"`
	Role      string    `gorm:"type:varchar(50);not null" json:"role"`
	Status    string    `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
