package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/models"
)

// Alasan penolakan ketersediaan
const (
	ReasonCapacityExceeded = "capacity exceeded"
	ReasonSlotTaken        = "slot taken"
)

var (
	ErrTableNotFound    = errors.New("table not found")
	ErrInvalidPartySize = errors.New("party size must be at least 1")
	ErrInvalidDate      = errors.New("invalid reservation date, expected YYYY-MM-DD")
	ErrInvalidTime      = errors.New("invalid reservation time, expected HH:MM")
	ErrPastDate         = errors.New("reservation date has already passed")
	ErrSlotTaken        = errors.New("table already booked for this slot")
)

// AvailabilityService memeriksa ketersediaan meja untuk reservasi dan
// melakukan reservasi secara atomik (satu booking aktif per slot).
type AvailabilityService struct {
	DB *gorm.DB
	// Now bisa di-override di test
	Now func() time.Time
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db, Now: time.Now}
}

type AvailabilityResult struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// ReserveRequest adalah input pembuatan booking. Identitas pemesan selalu
// eksplisit, tidak diambil dari context request.
type ReserveRequest struct {
	CustomerName    string
	CustomerPhone   string
	TableID         uint
	PartySize       int
	ReservationDate string
	ReservationTime string
	DepositAmount   float64
}

func (s *AvailabilityService) validateSlot(date, timeOfDay string, partySize int) error {
	if partySize < 1 {
		return ErrInvalidPartySize
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ErrInvalidDate
	}
	// Jam harus dalam format kanonik; "9:00" dan "09:00" bukan slot yang sama
	if _, err := time.Parse("15:04", timeOfDay); err != nil || len(timeOfDay) != 5 {
		return ErrInvalidTime
	}
	today := s.Now().Format("2006-01-02")
	if day.Format("2006-01-02") < today {
		return ErrPastDate
	}
	return nil
}

// CheckAvailability memeriksa apakah meja bisa direservasi pada slot tertentu.
// Penolakan aturan bisnis dikembalikan sebagai reason, bukan error.
func (s *AvailabilityService) CheckAvailability(tableID uint, date, timeOfDay string, partySize int) (*AvailabilityResult, error) {
	if err := s.validateSlot(date, timeOfDay, partySize); err != nil {
		return nil, err
	}

	var table models.Table
	if err := s.DB.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}

	// Kapasitas dicek sebelum query booking
	if partySize > table.Capacity {
		return &AvailabilityResult{Available: false, Reason: ReasonCapacityExceeded}, nil
	}

	var count int64
	if err := s.DB.Model(&models.Booking{}).
		Where("table_id = ? AND reservation_date = ? AND reservation_time = ? AND status IN ?",
			tableID, date, timeOfDay,
			[]string{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return &AvailabilityResult{Available: false, Reason: ReasonSlotTaken}, nil
	}

	return &AvailabilityResult{Available: true}, nil
}

// ListAvailableTables mengembalikan semua meja available dengan kapasitas
// cukup yang belum punya booking aktif di slot tersebut (set-difference).
func (s *AvailabilityService) ListAvailableTables(date, timeOfDay string, partySize int) ([]models.Table, error) {
	if err := s.validateSlot(date, timeOfDay, partySize); err != nil {
		return nil, err
	}

	var tables []models.Table
	if err := s.DB.
		Where("status = ? AND capacity >= ?", models.TableStatusAvailable, partySize).
		Order("table_number asc").
		Find(&tables).Error; err != nil {
		return nil, err
	}

	var bookedIDs []uint
	if err := s.DB.Model(&models.Booking{}).
		Where("reservation_date = ? AND reservation_time = ? AND status IN ?",
			date, timeOfDay,
			[]string{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Pluck("table_id", &bookedIDs).Error; err != nil {
		return nil, err
	}

	booked := make(map[uint]bool, len(bookedIDs))
	for _, id := range bookedIDs {
		booked[id] = true
	}

	available := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		if !booked[t.ID] {
			available = append(available, t)
		}
	}
	return available, nil
}

// Reserve memeriksa slot lalu menyimpan booking baru. Check-and-reserve
// bersifat atomik: unique index pada SlotKey menjamin insert kedua untuk slot
// yang sama gagal dengan duplicate key, jadi dua request yang balapan tidak
// bisa sama-sama lolos.
func (s *AvailabilityService) Reserve(req ReserveRequest) (*models.Booking, error) {
	result, err := s.CheckAvailability(req.TableID, req.ReservationDate, req.ReservationTime, req.PartySize)
	if err != nil {
		return nil, err
	}
	if !result.Available {
		if result.Reason == ReasonCapacityExceeded {
			return nil, fmt.Errorf("party size exceeds table capacity")
		}
		return nil, ErrSlotTaken
	}

	now := s.Now()
	booking := models.Booking{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		TableID:         req.TableID,
		PartySize:       req.PartySize,
		ReservationDate: req.ReservationDate,
		ReservationTime: req.ReservationTime,
		Status:          models.BookingStatusPending,
		DepositAmount:   req.DepositAmount,
		SlotKey:         models.SlotKeyFor(req.TableID, req.ReservationDate, req.ReservationTime),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.DB.Create(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	return &booking, nil
}
