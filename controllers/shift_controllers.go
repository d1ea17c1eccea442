package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/utils"
)

type ShiftController struct {
	DB *gorm.DB
}

func NewShiftController(db *gorm.DB) *ShiftController {
	return &ShiftController{DB: db}
}

type shiftPayload struct {
	UserID    uint   `json:"user_id" binding:"required"`
	ShiftDate string `json:"shift_date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Role      string `json:"role" binding:"required,oneof=admin staff chef"`
	Notes     string `json:"notes"`
}

func validateShiftPayload(p *shiftPayload) error {
	if _, err := time.Parse("2006-01-02", p.ShiftDate); err != nil {
		return fmt.Errorf("invalid shift_date, use YYYY-MM-DD")
	}
	start, err := time.Parse("15:04", p.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start_time, use HH:MM")
	}
	end, err := time.Parse("15:04", p.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end_time, use HH:MM")
	}
	if !end.After(start) {
		return fmt.Errorf("end_time must be after start_time")
	}
	return nil
}

// CreateShift -> admin menjadwalkan shift pegawai
func (sc *ShiftController) CreateShift(c *gin.Context) {
	var req shiftPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := validateShiftPayload(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := sc.DB.First(&user, req.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("user not found"))
		return
	}

	// Satu pegawai tidak boleh punya dua shift di tanggal yang sama
	var count int64
	sc.DB.Model(&models.Shift{}).
		Where("user_id = ? AND shift_date = ? AND status = ?",
			req.UserID, req.ShiftDate, models.ShiftStatusScheduled).
		Count(&count)
	if count > 0 {
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("user already has a shift on %s", req.ShiftDate))
		return
	}

	shift := models.Shift{
		UserID:    req.UserID,
		ShiftDate: req.ShiftDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Role:      req.Role,
		Status:    models.ShiftStatusScheduled,
		Notes:     req.Notes,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := sc.DB.Create(&shift).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Shift created", shift)
}

// GetAllShifts -> list shift, filter tanggal/user opsional
func (sc *ShiftController) GetAllShifts(c *gin.Context) {
	query := sc.DB.Preload("User")
	if date := c.Query("date"); date != "" {
		query = query.Where("shift_date = ?", date)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var shifts []models.Shift
	if err := query.Order("shift_date asc, start_time asc").Find(&shifts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of shifts", shifts)
}

// GetShiftByID
func (sc *ShiftController) GetShiftByID(c *gin.Context) {
	shiftID := c.Param("shift_id")

	var shift models.Shift
	if err := sc.DB.Preload("User").First(&shift, shiftID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Shift detail", shift)
}

// UpdateShift -> hanya shift yang masih scheduled
func (sc *ShiftController) UpdateShift(c *gin.Context) {
	shiftID := c.Param("shift_id")

	var shift models.Shift
	if err := sc.DB.First(&shift, shiftID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if shift.Status != models.ShiftStatusScheduled {
		utils.RespondError(c, http.StatusBadRequest, errors.New("only scheduled shifts can be edited"))
		return
	}

	var req shiftPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := validateShiftPayload(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	shift.UserID = req.UserID
	shift.ShiftDate = req.ShiftDate
	shift.StartTime = req.StartTime
	shift.EndTime = req.EndTime
	shift.Role = req.Role
	shift.Notes = req.Notes
	shift.UpdatedAt = time.Now()

	if err := sc.DB.Save(&shift).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Shift updated", shift)
}

// DeleteShift -> hanya shift yang belum berjalan
func (sc *ShiftController) DeleteShift(c *gin.Context) {
	shiftID := c.Param("shift_id")

	var shift models.Shift
	if err := sc.DB.First(&shift, shiftID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if shift.Status != models.ShiftStatusScheduled {
		utils.RespondError(c, http.StatusBadRequest, errors.New("only scheduled shifts can be deleted"))
		return
	}

	if err := sc.DB.Delete(&shift).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift deleted", gin.H{"shift_id": shift.ID})
}
