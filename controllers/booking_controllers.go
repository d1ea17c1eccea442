package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/kds"
	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/services"
	"github.com/yeremiapane/resto-suite/utils"
)

type BookingController struct {
	DB           *gorm.DB
	Availability *services.AvailabilityService
}

func NewBookingController(db *gorm.DB) *BookingController {
	return &BookingController{
		DB:           db,
		Availability: services.NewAvailabilityService(db),
	}
}

// CheckAvailability -> cek apakah satu meja bisa direservasi di slot tertentu
func (bc *BookingController) CheckAvailability(c *gin.Context) {
	tableID, err := strconv.ParseUint(c.Query("table_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table_id"))
		return
	}
	partySize, err := strconv.Atoi(c.DefaultQuery("party_size", "1"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid party_size"))
		return
	}

	result, err := bc.Availability.CheckAvailability(
		uint(tableID), c.Query("date"), c.Query("time"), partySize)
	if err != nil {
		if errors.Is(err, services.ErrTableNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Availability checked", result)
}

// ListAvailableTables -> semua meja yang masih bisa direservasi di slot itu
func (bc *BookingController) ListAvailableTables(c *gin.Context) {
	partySize, err := strconv.Atoi(c.DefaultQuery("party_size", "1"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid party_size"))
		return
	}

	tables, err := bc.Availability.ListAvailableTables(c.Query("date"), c.Query("time"), partySize)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Available tables", tables)
}

// CreateBooking -> customer atau staf membuat reservasi (status pending)
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req struct {
		CustomerName    string  `json:"customer_name" binding:"required"`
		CustomerPhone   string  `json:"customer_phone" binding:"required"`
		TableID         uint    `json:"table_id" binding:"required"`
		PartySize       int     `json:"party_size" binding:"required,min=1"`
		ReservationDate string  `json:"reservation_date" binding:"required"`
		ReservationTime string  `json:"reservation_time" binding:"required"`
		DepositAmount   float64 `json:"deposit_amount"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	booking, err := bc.Availability.Reserve(services.ReserveRequest{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		TableID:         req.TableID,
		PartySize:       req.PartySize,
		ReservationDate: req.ReservationDate,
		ReservationTime: req.ReservationTime,
		DepositAmount:   req.DepositAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTableNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrSlotTaken):
			utils.RespondError(c, http.StatusConflict, err)
		default:
			utils.RespondError(c, http.StatusBadRequest, err)
		}
		return
	}

	utils.InfoLogger.Printf("Booking %d created for table %d at %s %s",
		booking.ID, booking.TableID, booking.ReservationDate, booking.ReservationTime)
	kds.BroadcastBookingCreate(*booking)

	utils.RespondJSON(c, http.StatusCreated, "Booking created", booking)
}

// GetAllBookings -> list reservasi, bisa difilter tanggal/status
func (bc *BookingController) GetAllBookings(c *gin.Context) {
	query := bc.DB.Preload("Table")
	if date := c.Query("date"); date != "" {
		query = query.Where("reservation_date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := query.Order("reservation_date asc, reservation_time asc").
		Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of bookings", bookings)
}

// GetBookingByID -> detail satu reservasi
func (bc *BookingController) GetBookingByID(c *gin.Context) {
	bookingID := c.Param("booking_id")

	var booking models.Booking
	if err := bc.DB.Preload("Table").First(&booking, bookingID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Booking detail", booking)
}

// ConfirmBooking -> staf mengkonfirmasi reservasi pending
func (bc *BookingController) ConfirmBooking(c *gin.Context) {
	bookingID := c.Param("booking_id")

	var booking models.Booking
	if err := bc.DB.First(&booking, bookingID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if booking.Status != models.BookingStatusPending {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("booking is not pending"))
		return
	}

	booking.Status = models.BookingStatusConfirmed
	booking.UpdatedAt = time.Now()
	if err := bc.DB.Save(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Meja ditandai reserved supaya tidak dipakai walk-in
	var table models.Table
	if err := bc.DB.First(&table, booking.TableID).Error; err == nil &&
		table.Status == models.TableStatusAvailable {
		table.Status = models.TableStatusReserved
		bc.DB.Save(&table)
	}

	kds.BroadcastBookingUpdate(booking)
	utils.RespondJSON(c, http.StatusOK, "Booking confirmed", booking)
}

// CancelBooking -> batalkan reservasi, lepaskan slot, refund deposit jika ada
func (bc *BookingController) CancelBooking(c *gin.Context) {
	bookingID := c.Param("booking_id")

	var booking models.Booking
	if err := bc.DB.First(&booking, bookingID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if !booking.IsActive() {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("booking cannot be cancelled"))
		return
	}

	tx := bc.DB.Begin()

	booking.Status = models.BookingStatusCancelled
	booking.ReleaseSlot()
	booking.UpdatedAt = time.Now()
	if err := tx.Save(&booking).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Bebaskan meja yang tertahan reserved
	var table models.Table
	if err := tx.First(&table, booking.TableID).Error; err == nil &&
		table.Status == models.TableStatusReserved {
		table.Status = models.TableStatusAvailable
		if err := tx.Save(&table).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	// Deposit yang sudah dibayar dikembalikan
	if booking.DepositPaid && booking.DepositAmount > 0 {
		refund := models.Payment{
			BookingID:     &booking.ID,
			Amount:        booking.DepositAmount,
			Status:        services.PaymentStatusSuccess,
			PaymentMethod: "refund",
			IsRefund:      true,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		if err := tx.Create(&refund).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Booking %d cancelled", booking.ID)
	kds.BroadcastBookingUpdate(booking)
	utils.RespondJSON(c, http.StatusOK, "Booking cancelled", booking)
}

// CompleteBooking -> tamu datang; reservasi selesai, meja menjadi occupied
func (bc *BookingController) CompleteBooking(c *gin.Context) {
	bookingID := c.Param("booking_id")

	var booking models.Booking
	if err := bc.DB.First(&booking, bookingID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if booking.Status != models.BookingStatusConfirmed {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("booking is not confirmed"))
		return
	}

	tx := bc.DB.Begin()

	booking.Status = models.BookingStatusCompleted
	booking.ReleaseSlot()
	booking.UpdatedAt = time.Now()
	if err := tx.Save(&booking).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var table models.Table
	if err := tx.First(&table, booking.TableID).Error; err == nil {
		table.Status = models.TableStatusOccupied
		if err := tx.Save(&table).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastBookingUpdate(booking)
	utils.RespondJSON(c, http.StatusOK, "Booking completed", booking)
}
