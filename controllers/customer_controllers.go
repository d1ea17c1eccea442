package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/utils"
)

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// ScanTable -> login sesi dine-in lewat QR meja. Jika sudah ada sesi aktif
// di meja itu, sesi yang sama dikembalikan.
func (cc *CustomerController) ScanTable(c *gin.Context) {
	tableID := c.Param("table_id")

	var table models.Table
	if err := cc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	// Sesi aktif yang sudah ada dipakai ulang
	var existing models.Customer
	if err := cc.DB.Where("table_id = ? AND status = ?", table.ID, "active").
		First(&existing).Error; err == nil {
		utils.RespondJSON(c, http.StatusOK, "Active session found", existing)
		return
	}

	if table.Status != models.TableStatusAvailable && table.Status != models.TableStatusReserved {
		utils.RespondError(c, http.StatusConflict, ErrTableOccupied)
		return
	}

	sessionKey := uuid.NewString()
	customer := models.Customer{
		TableID:    &table.ID,
		SessionKey: &sessionKey,
		Status:     "active",
	}

	if err := cc.DB.Create(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	table.Status = models.TableStatusOccupied
	if err := cc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New dine-in session (ID=%d) at TableID=%d", customer.ID, table.ID)
	utils.RespondJSON(c, http.StatusCreated, "Session started", customer)
}

// GetActiveSession -> cek sesi aktif pada sebuah meja
func (cc *CustomerController) GetActiveSession(c *gin.Context) {
	tableID := c.Param("table_id")

	var customer models.Customer
	if err := cc.DB.Preload("Table").
		Where("table_id = ? AND status = ?", tableID, "active").
		First(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("tidak ada sesi aktif di meja ini"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Active session", customer)
}

// GetAllCustomers -> Mendapatkan semua customer (aktif/finished)
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	var customers []models.Customer
	if err := cc.DB.Preload("Table").Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

// CreateCustomer -> staf membuat sesi manual untuk walk-in
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	type reqBody struct {
		TableID uint   `json:"table_id" binding:"required"`
		Phone   string `json:"phone"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Cek apakah meja masih available
	var table models.Table
	if err := cc.DB.First(&table, req.TableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if table.Status != models.TableStatusAvailable {
		utils.RespondError(c, http.StatusConflict, ErrTableOccupied)
		return
	}

	sessionKey := uuid.NewString()
	customer := models.Customer{
		TableID:    &req.TableID,
		SessionKey: &sessionKey,
		Phone:      req.Phone,
		Status:     "active",
	}

	if err := cc.DB.Create(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Ubah status table => occupied
	table.Status = models.TableStatusOccupied
	if err := cc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New customer created (ID=%d) at TableID=%d", customer.ID, req.TableID)

	utils.RespondJSON(c, http.StatusCreated, "Customer created", customer)
}

// GetCustomerByID -> Menampilkan detail 1 customer
func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	idStr := c.Param("customer_id")
	id, _ := strconv.Atoi(idStr)

	var customer models.Customer
	if err := cc.DB.Preload("Table").First(&customer, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer detail", customer)
}

// UpdateCustomer -> update status 'finished' saat customer meninggalkan meja
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	idStr := c.Param("customer_id")
	id, _ := strconv.Atoi(idStr)

	type reqBody struct {
		Status string `json:"status" binding:"required,oneof=active finished"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	customer.Status = req.Status
	if err := cc.DB.Save(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Jika customer selesai => meja masuk maintenance untuk dibersihkan
	if req.Status == "finished" && customer.TableID != nil {
		var table models.Table
		if err := cc.DB.First(&table, *customer.TableID).Error; err == nil {
			table.Status = models.TableStatusMaintenance
			cc.DB.Save(&table)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Customer updated", customer)
}

// DeleteCustomer -> Menghapus record customer
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	idStr := c.Param("customer_id")
	id, _ := strconv.Atoi(idStr)

	if err := cc.DB.Delete(&models.Customer{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer deleted", gin.H{"customer_id": id})
}

var ErrTableOccupied = &CustomError{"Table is not available"}
