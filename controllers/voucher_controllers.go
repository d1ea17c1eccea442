package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/services"
	"github.com/yeremiapane/resto-suite/utils"
)

type VoucherController struct {
	DB       *gorm.DB
	Selector *services.VoucherService
}

func NewVoucherController(db *gorm.DB) *VoucherController {
	return &VoucherController{
		DB:       db,
		Selector: services.NewVoucherService(db),
	}
}

type voucherPayload struct {
	Code          string  `json:"code" binding:"required"`
	Description   string  `json:"description"`
	DiscountType  string  `json:"discount_type" binding:"required,oneof=percentage fixed free_shipping"`
	DiscountValue float64 `json:"discount_value"`
	MaxDiscount   float64 `json:"max_discount"`
	MinOrderValue float64 `json:"min_order_value"`
	StartDate     string  `json:"start_date" binding:"required"`
	EndDate       string  `json:"end_date" binding:"required"`
	UsageLimit    int     `json:"usage_limit"`
	FirstTimeOnly bool    `json:"first_time_only"`
	IsActive      *bool   `json:"is_active"`
	MenuIDs       []uint  `json:"menu_ids"`
}

// validasi aturan voucher yang tidak bisa dititipkan ke binding tag
func (vc *VoucherController) validatePayload(p *voucherPayload) error {
	switch p.DiscountType {
	case models.VoucherTypePercentage:
		if p.DiscountValue <= 0 || p.DiscountValue > 100 {
			return fmt.Errorf("percentage value must be between 1 and 100")
		}
		if p.MaxDiscount <= 0 {
			return fmt.Errorf("percentage voucher requires max_discount")
		}
	case models.VoucherTypeFixed:
		if p.DiscountValue <= 0 {
			return fmt.Errorf("fixed voucher requires a positive discount_value")
		}
	}
	if p.UsageLimit < 0 {
		return fmt.Errorf("usage_limit cannot be negative")
	}
	return nil
}

func parseVoucherDates(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date, use YYYY-MM-DD")
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date, use YYYY-MM-DD")
	}
	// End date inklusif sampai akhir hari
	endDate = endDate.Add(24*time.Hour - time.Second)
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date must be after start_date")
	}
	return startDate, endDate, nil
}

// CreateVoucher -> admin membuat voucher baru
func (vc *VoucherController) CreateVoucher(c *gin.Context) {
	var req voucherPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := vc.validatePayload(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	startDate, endDate, err := parseVoucherDates(req.StartDate, req.EndDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	voucher := models.Voucher{
		Code:          req.Code,
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxDiscount:   req.MaxDiscount,
		MinOrderValue: req.MinOrderValue,
		StartDate:     startDate,
		EndDate:       endDate,
		UsageLimit:    req.UsageLimit,
		FirstTimeOnly: req.FirstTimeOnly,
		IsActive:      true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if req.IsActive != nil {
		voucher.IsActive = *req.IsActive
	}

	if len(req.MenuIDs) > 0 {
		var menus []models.Menu
		if err := vc.DB.Find(&menus, req.MenuIDs).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if len(menus) != len(req.MenuIDs) {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("one or more menu_ids do not exist"))
			return
		}
		voucher.Menus = menus
	}

	if err := vc.DB.Create(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(c, http.StatusConflict, fmt.Errorf("voucher code already exists"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Voucher %s created", voucher.Code)
	utils.RespondJSON(c, http.StatusCreated, "Voucher created", voucher)
}

// GetAllVouchers -> list voucher, filter opsional active=true/false
func (vc *VoucherController) GetAllVouchers(c *gin.Context) {
	query := vc.DB.Preload("Menus")
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var vouchers []models.Voucher
	if err := query.Order("code asc").Find(&vouchers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of vouchers", vouchers)
}

// GetVoucherByID -> detail voucher beserta menu yang terikat
func (vc *VoucherController) GetVoucherByID(c *gin.Context) {
	voucherID := c.Param("voucher_id")

	var voucher models.Voucher
	if err := vc.DB.Preload("Menus").First(&voucher, voucherID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Voucher detail", voucher)
}

// UpdateVoucher -> edit voucher. used_count tidak bisa diubah lewat endpoint ini.
func (vc *VoucherController) UpdateVoucher(c *gin.Context) {
	voucherID := c.Param("voucher_id")

	var voucher models.Voucher
	if err := vc.DB.First(&voucher, voucherID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req voucherPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := vc.validatePayload(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.UsageLimit > 0 && voucher.UsedCount > req.UsageLimit {
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("usage_limit cannot be lower than current used_count (%d)", voucher.UsedCount))
		return
	}

	startDate, endDate, err := parseVoucherDates(req.StartDate, req.EndDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	voucher.Code = req.Code
	voucher.Description = req.Description
	voucher.DiscountType = req.DiscountType
	voucher.DiscountValue = req.DiscountValue
	voucher.MaxDiscount = req.MaxDiscount
	voucher.MinOrderValue = req.MinOrderValue
	voucher.StartDate = startDate
	voucher.EndDate = endDate
	voucher.UsageLimit = req.UsageLimit
	voucher.FirstTimeOnly = req.FirstTimeOnly
	if req.IsActive != nil {
		voucher.IsActive = *req.IsActive
	}
	voucher.UpdatedAt = time.Now()

	if err := vc.DB.Save(&voucher).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Ganti daftar menu yang terikat bila dikirim
	if req.MenuIDs != nil {
		var menus []models.Menu
		if len(req.MenuIDs) > 0 {
			if err := vc.DB.Find(&menus, req.MenuIDs).Error; err != nil {
				utils.RespondError(c, http.StatusInternalServerError, err)
				return
			}
		}
		if err := vc.DB.Model(&voucher).Association("Menus").Replace(menus); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Voucher updated", voucher)
}

// DeactivateVoucher -> nonaktifkan tanpa menghapus riwayat pemakaian
func (vc *VoucherController) DeactivateVoucher(c *gin.Context) {
	voucherID := c.Param("voucher_id")

	var voucher models.Voucher
	if err := vc.DB.First(&voucher, voucherID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	voucher.IsActive = false
	voucher.UpdatedAt = time.Now()
	if err := vc.DB.Save(&voucher).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Voucher deactivated", voucher)
}

// DeleteVoucher -> hapus voucher yang belum pernah dipakai
func (vc *VoucherController) DeleteVoucher(c *gin.Context) {
	voucherID := c.Param("voucher_id")

	var voucher models.Voucher
	if err := vc.DB.First(&voucher, voucherID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if voucher.UsedCount > 0 {
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("voucher has been used, deactivate it instead"))
		return
	}

	if err := vc.DB.Select("Menus").Delete(&voucher).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Voucher deleted", nil)
}

// GetBestVoucher -> kombinasi voucher terbaik untuk keranjang saat ini
func (vc *VoucherController) GetBestVoucher(c *gin.Context) {
	var req struct {
		OrderAmount         float64             `json:"order_amount" binding:"required,gt=0"`
		CartItems           []services.CartItem `json:"cart_items"`
		CustomerPhone       string              `json:"customer_phone"`
		IncludeFreeShipping bool                `json:"include_free_shipping"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := vc.Selector.SelectBestVoucher(services.SelectVoucherRequest{
		OrderAmount:         req.OrderAmount,
		CartItems:           req.CartItems,
		CustomerPhone:       req.CustomerPhone,
		IncludeFreeShipping: req.IncludeFreeShipping,
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Best voucher combination", result)
}

// ValidateVoucher -> cek satu kode voucher terhadap keranjang
func (vc *VoucherController) ValidateVoucher(c *gin.Context) {
	var req struct {
		Code          string              `json:"code" binding:"required"`
		OrderAmount   float64             `json:"order_amount" binding:"required,gt=0"`
		CartItems     []services.CartItem `json:"cart_items"`
		CustomerPhone string              `json:"customer_phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	option, err := vc.Selector.ValidateAndCompute(req.Code, services.SelectVoucherRequest{
		OrderAmount:   req.OrderAmount,
		CartItems:     req.CartItems,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVoucherNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrVoucherNotValid), errors.Is(err, services.ErrVoucherExhausted):
			utils.RespondError(c, http.StatusBadRequest, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Voucher is valid", option)
}
