package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/utils"
)

func setupAvailabilityTestDB(t *testing.T) *gorm.DB {
	// DB in-memory terpisah per test supaya tidak saling mengotori
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Table{}, &models.Booking{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestAvailabilityService(db *gorm.DB) *AvailabilityService {
	svc := NewAvailabilityService(db)
	// Waktu tetap supaya hasil test deterministik
	svc.Now = func() time.Time {
		return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestCheckAvailabilityValidation(t *testing.T) {
	utils.InitLogger()
	db := setupAvailabilityTestDB(t)
	svc := newTestAvailabilityService(db)

	_, err := svc.CheckAvailability(1, "2026-09-10", "19:00", 0)
	assert.ErrorIs(t, err, ErrInvalidPartySize)

	_, err = svc.CheckAvailability(1, "10-09-2026", "19:00", 2)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.CheckAvailability(1, "2026-08-31", "19:00", 2)
	assert.ErrorIs(t, err, ErrPastDate)

	// Jam tanpa leading zero ditolak; kalau lolos ia membentuk slot key
	// berbeda dari "09:00" untuk jam yang sama
	_, err = svc.CheckAvailability(1, "2026-09-10", "9:00", 2)
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = svc.CheckAvailability(1, "2026-09-10", "tujuh", 2)
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = svc.ListAvailableTables("2026-09-10", "9:00", 2)
	assert.ErrorIs(t, err, ErrInvalidTime)

	// Hari ini masih boleh
	db.Create(&models.Table{TableNumber: "A1", Capacity: 4, Status: models.TableStatusAvailable})
	result, err := svc.CheckAvailability(1, "2026-09-01", "19:00", 2)
	assert.NoError(t, err)
	assert.True(t, result.Available)
}

func TestCheckAvailabilityTableNotFound(t *testing.T) {
	utils.InitLogger()
	db := setupAvailabilityTestDB(t)
	svc := newTestAvailabilityService(db)

	_, err := svc.CheckAvailability(99, "2026-09-10", "19:00", 2)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestCheckAvailabilityCapacityBeforeBookings(t *testing.T) {
	utils.InitLogger()
	db := setupAvailabilityTestDB(t)
	svc := newTestAvailabilityService(db)

	table := models.Table{TableNumber: "A1", Capacity: 4, Status: models.TableStatusAvailable}
	db.Create(&table)

	// Slot juga sudah terisi; kapasitas tetap alasan yang menang
	db.Create(&models.Booking{
		CustomerName:    "Budi",
		TableID:         table.ID,
		PartySize:       2,
		ReservationDate: "2026-09-10",
		ReservationTime: "19:00",
		Status:          models.BookingStatusConfirmed,
		SlotKey:         models.SlotKeyFor(table.ID, "2026-09-10", "19:00"),
	})

	result, err := svc.CheckAvailability(table.ID, "2026-09-10", "19:00", 6)
	assert.NoError(t, err)
	assert.False(t, result.Available)
	assert.Equal(t, ReasonCapacityExceeded, result.Reason)
}

func TestCheckAvailabilitySlotTaken(t *testing.T) {
	utils.InitLogger()
	db := setupAvailabilityTestDB(t)
	svc := newTestAvailabilityService(db)

	table := models.Table{TableNumber: "A1", Capacity: 4, Status: models.TableStatusAvailable}
	db.Create(&table)

	db.Create(&models.Booking{
		CustomerName:    "Budi",
		TableID:         table.ID,
		PartySize:       2,
		ReservationDate: "2026-09-10",
		ReservationTime: "19:00",
		Status:          models.BookingStatusPending,
		SlotKey:         models.SlotKeyFor(table.ID, "2026-09-10", "19:00"),
	})

	result, err := svc.CheckAvailability(table.ID, "2026-09-10", "19:00", 2)
	assert.NoError(t, err)
	assert.False(t, result.Available)
	assert.Equal(t, ReasonSlotTaken, result.Reason)

	// Slot lain di meja yang sama tetap tersedia
	result, err = svc.CheckAvailability(table.ID, "2026-09-10", "20:00", 2)
	assert.NoError(t, err)
	assert.True(t, result.Available)
}

func TestListAvailableTables(t *testing.T) {
	utils.InitLogger()
	db := setupAvailabilityTestDB(t)
	svc := newTestAvailabilityService(db)

	small := models.Table{TableNumber: "A1", Capacity: 2, Status: models.TableStatusAvailable}
	big := models.Table{TableNumber: "B1", Capacity: 6, Status: models.TableStatusAvailable}
	booked := models.Table{TableNumber: "C1", Capacity: 6, Status: models.TableStatusAvailable}
	broken := models.Table{TableNumber: "D1", Capacity: 6, Status: models.TableStatusMaintenance}
	db.Create(&small)
	db.Create(&big)
	db.Create(&booked)
	db.Create(&broken)

	db.Create(&models.Booking{
		CustomerName:    "Sari",
		TableID:         booked.ID,
		PartySize:       4,
		ReservationDate: "2026-09-10",
		ReservationTime: "19:00",
		Status:          models.BookingStatusConfirmed,
		SlotKey:         models.SlotKeyFor(booked.ID, "2026-09-10", "19:00"),
	})

	tables, err := svc.ListAvailableTables("2026-09-10", "19:00", 4)
	assert.NoError(t, err)

	// small terlalu kecil, booked sudah terisi, broken sedang maintenance
	assert.Len(t, tables, 1)
	assert.Equal(t, big.ID, tables[0].ID)

	// Di slot lain meja yang dibooking ikut muncul
	tables, err = svc.ListAvailableTables("2026-09-11", "19:00", 4)
	assert.NoError(t, err)
	assert.Len(t, tables, 2)
}

func TestReserveCreatesPendingBooking(t *testing.T) {
	utils.InitLogger()
	db := setupAvailabilityTestDB(t)
	svc := newTestAvailabilityService(db)

	table := models.Table{TableNumber: "A1", Capacity: 4, Status: models.TableStatusAvailable}
	db.Create(&table)

	booking, err := svc.Reserve(ReserveRequest{
		CustomerName:    "Budi",
		CustomerPhone:   "0811111111",
		TableID:         table.ID,
		PartySize:       3,
		ReservationDate: "2026-09-10",
		ReservationTime: "19:00",
		DepositAmount:   50000,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, models.SlotKeyFor(table.ID, "2026-09-10", "19:00"), booking.SlotKey)
	assert.False(t, booking.DepositPaid)
}

func TestReserveSlotTakenIsAtomic(t *testing.T) {
	utils.InitLogger()
	db := setupAvailabilityTestDB(t)
	svc := newTestAvailabilityService(db)

	table := models.Table{TableNumber: "A1", Capacity: 4, Status: models.TableStatusAvailable}
	db.Create(&table)

	req := ReserveRequest{
		CustomerName:    "Budi",
		TableID:         table.ID,
		PartySize:       2,
		ReservationDate: "2026-09-10",
		ReservationTime: "19:00",
	}
	_, err := svc.Reserve(req)
	assert.NoError(t, err)

	req.CustomerName = "Sari"
	_, err = svc.Reserve(req)
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Hanya satu booking tersimpan
	var count int64
	db.Model(&models.Booking{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	utils.InitLogger()
	db := setupAvailabilityTestDB(t)
	svc := newTestAvailabilityService(db)

	table := models.Table{TableNumber: "A1", Capacity: 4, Status: models.TableStatusAvailable}
	db.Create(&table)

	req := ReserveRequest{
		CustomerName:    "Budi",
		TableID:         table.ID,
		PartySize:       2,
		ReservationDate: "2026-09-10",
		ReservationTime: "19:00",
	}
	booking, err := svc.Reserve(req)
	assert.NoError(t, err)

	// Batalkan: status berubah dan slot key dilepas
	booking.Status = models.BookingStatusCancelled
	booking.ReleaseSlot()
	assert.NoError(t, db.Save(booking).Error)

	req.CustomerName = "Sari"
	second, err := svc.Reserve(req)
	assert.NoError(t, err)
	assert.Equal(t, "Sari", second.CustomerName)
}
