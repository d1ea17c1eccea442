package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/controllers"
	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/utils"
)

// setupTestDBForBookings menggunakan SQLite in-memory khusus untuk BookingController.
// TranslateError wajib aktif supaya pelanggaran unique index slot terdeteksi.
func setupTestDBForBookings(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&models.Table{}, &models.Booking{}, &models.Order{}, &models.Payment{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupBookingRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	bookingCtrl := controllers.NewBookingController(db)
	router.GET("/bookings/availability", bookingCtrl.CheckAvailability)
	router.GET("/bookings/available-tables", bookingCtrl.ListAvailableTables)
	router.POST("/bookings", bookingCtrl.CreateBooking)
	router.GET("/bookings", bookingCtrl.GetAllBookings)
	router.PATCH("/bookings/:booking_id/confirm", bookingCtrl.ConfirmBooking)
	router.PATCH("/bookings/:booking_id/cancel", bookingCtrl.CancelBooking)
	router.PATCH("/bookings/:booking_id/complete", bookingCtrl.CompleteBooking)
	return router
}

func bookingPayload(tableID uint) map[string]interface{} {
	return map[string]interface{}{
		"customer_name":    "Budi",
		"customer_phone":   "0811223344",
		"table_id":         tableID,
		"party_size":       2,
		"reservation_date": "2030-05-10",
		"reservation_time": "19:00",
	}
}

func TestCreateBooking(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForBookings(t)

	table := models.Table{TableNumber: "A1", Capacity: 4, Status: models.TableStatusAvailable}
	db.Create(&table)

	router := setupBookingRouter(db)

	payloadBytes, err := json.Marshal(bookingPayload(table.ID))
	assert.NoError(t, err)

	req, err := http.NewRequest("POST", "/bookings", bytes.NewBuffer(payloadBytes))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Booking created", response["message"])

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])

	// Slot tersimpan di database dengan status pending
	var booking models.Booking
	err = db.Where("table_id = ?", table.ID).First(&booking).Error
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
}

func TestCreateBookingSlotConflict(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForBookings(t)

	table := models.Table{TableNumber: "B2", Capacity: 4, Status: models.TableStatusAvailable}
	db.Create(&table)

	router := setupBookingRouter(db)
	payloadBytes, err := json.Marshal(bookingPayload(table.ID))
	assert.NoError(t, err)

	// Booking pertama berhasil
	req, _ := http.NewRequest("POST", "/bookings", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Booking kedua untuk slot yang sama ditolak 409
	req, _ = http.NewRequest("POST", "/bookings", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	db.Model(&models.Booking{}).Where("table_id = ?", table.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForBookings(t)

	table := models.Table{TableNumber: "C3", Capacity: 2, Status: models.TableStatusAvailable}
	db.Create(&table)

	router := setupBookingRouter(db)

	// Slot kosong -> available
	url := fmt.Sprintf("/bookings/availability?table_id=%d&date=2030-05-10&time=19:00&party_size=2", table.ID)
	req, _ := http.NewRequest("GET", url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, true, data["available"])

	// Rombongan melebihi kapasitas -> tidak available
	url = fmt.Sprintf("/bookings/availability?table_id=%d&date=2030-05-10&time=19:00&party_size=6", table.ID)
	req, _ = http.NewRequest("GET", url, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data = response["data"].(map[string]interface{})
	assert.Equal(t, false, data["available"])
	assert.Equal(t, "capacity exceeded", data["reason"])

	// Meja tidak dikenal -> 404
	req, _ = http.NewRequest("GET", "/bookings/availability?table_id=999&date=2030-05-10&time=19:00", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfirmBooking(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForBookings(t)

	table := models.Table{TableNumber: "D4", Capacity: 4, Status: models.TableStatusAvailable}
	db.Create(&table)
	booking := models.Booking{
		CustomerName:    "Sari",
		CustomerPhone:   "0811000000",
		TableID:         table.ID,
		PartySize:       3,
		ReservationDate: "2030-05-10",
		ReservationTime: "18:00",
		Status:          models.BookingStatusPending,
		SlotKey:         models.SlotKeyFor(table.ID, "2030-05-10", "18:00"),
	}
	db.Create(&booking)

	router := setupBookingRouter(db)

	url := "/bookings/" + strconv.Itoa(int(booking.ID)) + "/confirm"
	req, _ := http.NewRequest("PATCH", url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Booking
	db.First(&updated, booking.ID)
	assert.Equal(t, models.BookingStatusConfirmed, updated.Status)

	// Meja ikut ditandai reserved
	var updatedTable models.Table
	db.First(&updatedTable, table.ID)
	assert.Equal(t, models.TableStatusReserved, updatedTable.Status)

	// Konfirmasi kedua ditolak karena status bukan pending
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PATCH", url, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelBookingFreesSlotAndRefundsDeposit(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForBookings(t)

	table := models.Table{TableNumber: "E5", Capacity: 4, Status: models.TableStatusReserved}
	db.Create(&table)
	booking := models.Booking{
		CustomerName:    "Andi",
		CustomerPhone:   "0811999999",
		TableID:         table.ID,
		PartySize:       2,
		ReservationDate: "2030-05-10",
		ReservationTime: "20:00",
		Status:          models.BookingStatusConfirmed,
		DepositAmount:   50000,
		DepositPaid:     true,
		SlotKey:         models.SlotKeyFor(table.ID, "2030-05-10", "20:00"),
	}
	db.Create(&booking)

	router := setupBookingRouter(db)

	url := "/bookings/" + strconv.Itoa(int(booking.ID)) + "/cancel"
	req, _ := http.NewRequest("PATCH", url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Booking
	db.First(&updated, booking.ID)
	assert.Equal(t, models.BookingStatusCancelled, updated.Status)

	// Meja kembali available
	var updatedTable models.Table
	db.First(&updatedTable, table.ID)
	assert.Equal(t, models.TableStatusAvailable, updatedTable.Status)

	// Refund deposit tercatat sebagai payment is_refund
	var refund models.Payment
	err := db.Where("booking_id = ? AND is_refund = ?", booking.ID, true).First(&refund).Error
	assert.NoError(t, err)
	assert.Equal(t, float64(50000), refund.Amount)

	// Slot terbebas: booking baru untuk slot yang sama diterima
	payload := bookingPayload(table.ID)
	payload["reservation_time"] = "20:00"
	payloadBytes, _ := json.Marshal(payload)
	req, _ = http.NewRequest("POST", "/bookings", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCompleteBooking(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForBookings(t)

	table := models.Table{TableNumber: "F6", Capacity: 4, Status: models.TableStatusReserved}
	db.Create(&table)
	booking := models.Booking{
		CustomerName:    "Rina",
		CustomerPhone:   "0812000000",
		TableID:         table.ID,
		PartySize:       4,
		ReservationDate: "2030-05-10",
		ReservationTime: "19:30",
		Status:          models.BookingStatusConfirmed,
		SlotKey:         models.SlotKeyFor(table.ID, "2030-05-10", "19:30"),
	}
	db.Create(&booking)

	router := setupBookingRouter(db)

	url := "/bookings/" + strconv.Itoa(int(booking.ID)) + "/complete"
	req, _ := http.NewRequest("PATCH", url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Booking
	db.First(&updated, booking.ID)
	assert.Equal(t, models.BookingStatusCompleted, updated.Status)

	// Tamu sudah datang, meja menjadi occupied
	var updatedTable models.Table
	db.First(&updatedTable, table.ID)
	assert.Equal(t, models.TableStatusOccupied, updatedTable.Status)
}
