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

// Toleransi keterlambatan sebelum status menjadi "late"
const lateGracePeriod = 10 * time.Minute

type AttendanceController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{DB: db, Now: time.Now}
}

// ClockIn -> pegawai absen masuk terhadap shift hari ini.
// Lewat dari toleransi keterlambatan, status menjadi "late".
func (ac *AttendanceController) ClockIn(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user not authenticated"))
		return
	}
	uid, ok := userID.(uint)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid user id"))
		return
	}

	now := ac.Now()
	today := now.Format("2006-01-02")

	var shift models.Shift
	if err := ac.DB.Where("user_id = ? AND shift_date = ? AND status = ?",
		uid, today, models.ShiftStatusScheduled).First(&shift).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("no scheduled shift for today"))
		return
	}

	// Tidak boleh clock-in dua kali untuk shift yang sama
	var existing models.Attendance
	if err := ac.DB.Where("user_id = ? AND shift_id = ?", uid, shift.ID).
		First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("already clocked in for this shift"))
		return
	}

	status := models.AttendanceStatusPresent
	shiftStart, err := time.ParseInLocation("2006-01-02 15:04",
		shift.ShiftDate+" "+shift.StartTime, now.Location())
	if err == nil && now.After(shiftStart.Add(lateGracePeriod)) {
		status = models.AttendanceStatusLate
	}

	attendance := models.Attendance{
		UserID:    uid,
		ShiftID:   &shift.ID,
		ClockIn:   &now,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ac.DB.Create(&attendance).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("User %d clocked in (%s)", uid, status)
	utils.RespondJSON(c, http.StatusCreated, "Clocked in", attendance)
}

// ClockOut -> pegawai absen pulang; shift ditandai completed
func (ac *AttendanceController) ClockOut(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user not authenticated"))
		return
	}
	uid, ok := userID.(uint)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid user id"))
		return
	}

	var attendance models.Attendance
	if err := ac.DB.Where("user_id = ? AND clock_out IS NULL", uid).
		Order("created_at desc").First(&attendance).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("no open attendance record"))
		return
	}

	now := ac.Now()
	attendance.ClockOut = &now
	attendance.UpdatedAt = now
	if err := ac.DB.Save(&attendance).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if attendance.ShiftID != nil {
		ac.DB.Model(&models.Shift{}).
			Where("id = ?", *attendance.ShiftID).
			Update("status", models.ShiftStatusCompleted)
	}

	utils.RespondJSON(c, http.StatusOK, "Clocked out", attendance)
}

// GetAllAttendance -> admin melihat catatan kehadiran
func (ac *AttendanceController) GetAllAttendance(c *gin.Context) {
	query := ac.DB.Preload("User").Preload("Shift")
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("DATE(created_at) = ?", date)
	}

	var records []models.Attendance
	if err := query.Order("created_at desc").Find(&records).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Attendance records", records)
}

// GetMyAttendance -> pegawai melihat catatan kehadirannya sendiri
func (ac *AttendanceController) GetMyAttendance(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user not authenticated"))
		return
	}

	var records []models.Attendance
	if err := ac.DB.Preload("Shift").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&records).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My attendance", records)
}

// GetStaffPerformance -> ringkasan kinerja per pegawai dalam satu rentang tanggal
func (ac *AttendanceController) GetStaffPerformance(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	startDate := c.DefaultQuery("start_date", ac.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	endDate := c.DefaultQuery("end_date", ac.Now().Format("2006-01-02"))

	type PerformanceRow struct {
		UserID          uint    `json:"user_id"`
		UserName        string  `json:"user_name"`
		Role            string  `json:"role"`
		TotalShifts     int64   `json:"total_shifts"`
		CompletedShifts int64   `json:"completed_shifts"`
		MissedShifts    int64   `json:"missed_shifts"`
		LateCount       int64   `json:"late_count"`
		OrdersHandled   int64   `json:"orders_handled"`
		AttendanceRate  float64 `json:"attendance_rate"`
	}

	var users []models.User
	if err := ac.DB.Where("role IN ?", []string{"staff", "chef"}).Find(&users).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	rows := make([]PerformanceRow, 0, len(users))
	for _, user := range users {
		row := PerformanceRow{UserID: user.ID, UserName: user.Name, Role: user.Role}

		ac.DB.Model(&models.Shift{}).
			Where("user_id = ? AND shift_date BETWEEN ? AND ?", user.ID, startDate, endDate).
			Count(&row.TotalShifts)

		ac.DB.Model(&models.Shift{}).
			Where("user_id = ? AND shift_date BETWEEN ? AND ? AND status = ?",
				user.ID, startDate, endDate, models.ShiftStatusCompleted).
			Count(&row.CompletedShifts)

		ac.DB.Model(&models.Shift{}).
			Where("user_id = ? AND shift_date BETWEEN ? AND ? AND status = ?",
				user.ID, startDate, endDate, models.ShiftStatusMissed).
			Count(&row.MissedShifts)

		ac.DB.Model(&models.Attendance{}).
			Where("user_id = ? AND status = ? AND DATE(created_at) BETWEEN ? AND ?",
				user.ID, models.AttendanceStatusLate, startDate, endDate).
			Count(&row.LateCount)

		// Chef: jumlah order yang dia masak di rentang itu
		if user.Role == "chef" {
			ac.DB.Model(&models.Order{}).
				Where("chef_id = ? AND DATE(created_at) BETWEEN ? AND ?",
					user.ID, startDate, endDate).
				Count(&row.OrdersHandled)
		}

		if row.TotalShifts > 0 {
			row.AttendanceRate = float64(row.CompletedShifts) / float64(row.TotalShifts) * 100
		}

		rows = append(rows, row)
	}

	utils.RespondJSON(c, http.StatusOK,
		fmt.Sprintf("Staff performance %s to %s", startDate, endDate), rows)
}
