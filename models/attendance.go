package models

import "time"

// Status kehadiran
const (
	AttendanceStatusPresent = "present"
	AttendanceStatusLate    = "late"
	AttendanceStatusAbsent  = "absent"
)

// Attendance mencatat clock-in/clock-out pegawai terhadap shift-nya.
type Attendance struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	UserID   uint       `gorm:"not null;index" json:"user_id"`
	User     User       `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user"`
	ShiftID  *uint      `gorm:"index" json:"shift_id,omitempty"`
	Shift    *Shift     `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`
	ClockIn  *time.Time `json:"clock_in,omitempty"`
	ClockOut *time.Time `json:"clock_out,omitempty"`
	Status   string     `gorm:"type:varchar(20);not null;default:'present'" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
