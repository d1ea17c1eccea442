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

type OrderController struct {
	DB       *gorm.DB
	Vouchers *services.VoucherService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{
		DB:       db,
		Vouchers: services.NewVoucherService(db),
	}
}

// GetAllOrders -> list orders beserta items
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	query := oc.DB.Preload("OrderItems").Preload("Voucher")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// CreateOrder -> buat order dari sesi meja aktif (status='pending_payment')
func (oc *OrderController) CreateOrder(c *gin.Context) {
	tableID := c.Param("table_id")

	// Cek sesi customer aktif
	var customer models.Customer
	if err := oc.DB.Where("table_id = ? AND status = ?", tableID, "active").
		First(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("tidak ada sesi aktif di meja ini"))
		return
	}

	type ItemReq struct {
		MenuID   uint   `json:"menu_id" binding:"required"`
		Quantity int    `json:"quantity" binding:"required,min=1"`
		Notes    string `json:"notes"`
	}

	var body struct {
		Items         []ItemReq `json:"items" binding:"required,min=1"`
		CustomerPhone string    `json:"customer_phone"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Telepon dari body menang; fallback ke telepon sesi
	phone := body.CustomerPhone
	if phone == "" {
		phone = customer.Phone
	}

	tableIDNum, _ := strconv.ParseUint(tableID, 10, 32)

	tx := oc.DB.Begin()

	order := models.Order{
		CustomerID:    customer.ID,
		CustomerPhone: phone,
		Status:        services.OrderStatusPendingPayment,
		TotalAmount:   0,
		TableID:       uint(tableIDNum),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var total float64
	for _, item := range body.Items {
		var menu models.Menu
		if err := tx.First(&menu, item.MenuID).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("menu %d not found", item.MenuID))
			return
		}
		if menu.Stock < item.Quantity {
			tx.Rollback()
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("insufficient stock for %s", menu.Name))
			return
		}

		// Harga promo dipakai bila lebih murah
		price := menu.EffectivePrice()
		total += float64(item.Quantity) * price

		orderItem := models.OrderItem{
			OrderID:   order.ID,
			MenuID:    menu.ID,
			Quantity:  item.Quantity,
			Price:     price,
			Notes:     item.Notes,
			Status:    "pending",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := tx.Create(&orderItem).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}

		menu.Stock -= item.Quantity
		if err := tx.Save(&menu).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	order.TotalAmount = total
	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastOrderUpdate(order)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// ApplyVoucher -> pasang kode voucher ke order yang belum dibayar.
// Diskon dihitung dari isi order saat ini; kuota voucher langsung dipotong.
func (oc *OrderController) ApplyVoucher(c *gin.Context) {
	orderID := c.Param("order_id")

	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := oc.DB.Preload("OrderItems").First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if order.Status != services.OrderStatusPendingPayment {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("order is no longer payable"))
		return
	}
	if order.VoucherID != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("order already has a voucher"))
		return
	}

	cartItems := make([]services.CartItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		cartItems = append(cartItems, services.CartItem{
			MenuID:   item.MenuID,
			Quantity: item.Quantity,
		})
	}

	option, err := oc.Vouchers.ValidateAndCompute(body.Code, services.SelectVoucherRequest{
		OrderAmount:    order.TotalAmount,
		CartItems:      cartItems,
		CustomerPhone:  order.CustomerPhone,
		ExcludeOrderID: order.ID,
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

	// Potong kuota dulu; gagal berarti voucher keburu habis dipakai orang lain
	if err := oc.Vouchers.Redeem(option.Voucher.ID); err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}

	order.VoucherID = &option.Voucher.ID
	order.DiscountAmount = option.Discount
	order.UpdatedAt = time.Now()
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Voucher %s applied to order %d (discount %.2f)",
		option.Voucher.Code, order.ID, option.Discount)
	utils.RespondJSON(c, http.StatusOK, "Voucher applied", gin.H{
		"order":    order,
		"discount": option.Discount,
		"payable":  order.PayableAmount(),
	})
}

// RemoveVoucher -> lepas voucher dari order yang belum dibayar
func (oc *OrderController) RemoveVoucher(c *gin.Context) {
	orderID := c.Param("order_id")

	var order models.Order
	if err := oc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if order.Status != services.OrderStatusPendingPayment {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("order is no longer payable"))
		return
	}
	if order.VoucherID == nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("order has no voucher"))
		return
	}

	// Kuota dikembalikan
	oc.DB.Model(&models.Voucher{}).
		Where("id = ? AND used_count > 0", *order.VoucherID).
		UpdateColumn("used_count", gorm.Expr("used_count - 1"))

	order.VoucherID = nil
	order.DiscountAmount = 0
	order.UpdatedAt = time.Now()
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Voucher removed", order)
}

// GetOrderByID -> detail 1 order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	idStr := c.Param("order_id")
	id, _ := strconv.Atoi(idStr)

	var order models.Order
	if err := oc.DB.Preload("OrderItems").Preload("OrderItems.Menu").
		Preload("Voucher").First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrder untuk admin/staff mengupdate order
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" && roleInterface != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	orderID := c.Param("order_id")

	var order models.Order
	if err := oc.DB.Preload("OrderItems").First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type UpdateReq struct {
		Status *string `json:"status"`
		Items  []struct {
			ID       uint    `json:"id"`
			Status   string  `json:"status"`
			Quantity *int    `json:"quantity"`
			Notes    *string `json:"notes"`
		} `json:"items"`
	}

	var req UpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tx := oc.DB.Begin()

	if req.Status != nil {
		order.Status = *req.Status
		if err := tx.Save(&order).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	for _, itemUpdate := range req.Items {
		var item models.OrderItem
		if err := tx.First(&item, itemUpdate.ID).Error; err != nil {
			continue
		}

		item.Status = itemUpdate.Status
		if itemUpdate.Quantity != nil {
			item.Quantity = *itemUpdate.Quantity
		}
		if itemUpdate.Notes != nil {
			item.Notes = *itemUpdate.Notes
		}

		if err := tx.Save(&item).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	tx.Commit()

	kds.BroadcastOrderUpdate(order)
	kds.BroadcastStaffNotification(fmt.Sprintf("Order #%d updated by %s", order.ID, roleInterface))

	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// DeleteOrder
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	idStr := c.Param("order_id")
	id, _ := strconv.Atoi(idStr)

	if err := oc.DB.Delete(&models.Order{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"order_id": id})
}

/*
========================================
 ITEM-LEVEL COOKING
========================================
*/

// StartCookingItem -> Chef menandai 1 item dari "pending" => "in_progress"
func (oc *OrderController) StartCookingItem(c *gin.Context) {
	itemID := c.Param("item_id")

	var item models.OrderItem
	if err := oc.DB.First(&item, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if item.Status != "pending" {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("Item not in pending status"))
		return
	}

	item.Status = "in_progress"
	item.UpdatedAt = time.Now()
	oc.DB.Save(&item)

	utils.RespondJSON(c, http.StatusOK, "Item in_progress", item)
}

// FinishCookingItem -> Chef menandai 1 item => "ready".
// Jika semua item di order => "ready", order => "ready".
func (oc *OrderController) FinishCookingItem(c *gin.Context) {
	itemID := c.Param("item_id")

	var item models.OrderItem
	if err := oc.DB.First(&item, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if item.Status != "in_progress" {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("Item not in in_progress status"))
		return
	}

	item.Status = "ready"
	item.UpdatedAt = time.Now()
	oc.DB.Save(&item)

	// Cek apakah semua item di order ini => "ready"
	var countNotReady int64
	oc.DB.Model(&models.OrderItem{}).
		Where("order_id = ? AND status != ?", item.OrderID, "ready").
		Count(&countNotReady)

	if countNotReady == 0 {
		var order models.Order
		if err := oc.DB.First(&order, item.OrderID).Error; err == nil {
			order.Status = services.OrderStatusReady
			now := time.Now()
			order.FinishCookingTime = &now
			oc.DB.Save(&order)

			kds.BroadcastOrderUpdate(order)
			kds.BroadcastStaffNotification(fmt.Sprintf("Order #%d siap disajikan", order.ID))
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Item finished", item)
}

// StartCooking -> Chef menandai entire order => "in_progress"
func (oc *OrderController) StartCooking(c *gin.Context) {
	orderID := c.Param("order_id")

	var order models.Order
	if err := oc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if order.Status != services.OrderStatusPaid {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("order not in paid status"))
		return
	}

	now := time.Now()
	order.Status = services.OrderStatusInProgress
	order.StartCookingTime = &now

	// Chef yang menekan tombol tercatat di order
	if userID, exists := c.Get("user_id"); exists {
		if uid, ok := userID.(uint); ok {
			order.ChefID = &uid
		}
	}

	oc.DB.Save(&order)

	kds.BroadcastOrderUpdate(order)

	utils.RespondJSON(c, http.StatusOK, "Order in progress", order)
}

// FinishCooking -> Chef menandai entire order => "ready"
func (oc *OrderController) FinishCooking(c *gin.Context) {
	orderID := c.Param("order_id")

	var order models.Order
	if err := oc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if order.Status != services.OrderStatusInProgress {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("order not in in_progress status"))
		return
	}

	now := time.Now()
	order.Status = services.OrderStatusReady
	order.FinishCookingTime = &now
	oc.DB.Save(&order)

	kds.BroadcastOrderUpdate(order)

	utils.RespondJSON(c, http.StatusOK, "Order is ready", order)
}

// CompleteOrder -> staff menandai order "completed"
func (oc *OrderController) CompleteOrder(c *gin.Context) {
	orderID := c.Param("order_id")

	var order models.Order
	if err := oc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if order.Status != services.OrderStatusReady {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("Order not in ready status"))
		return
	}

	order.Status = services.OrderStatusCompleted
	order.UpdatedAt = time.Now()
	oc.DB.Save(&order)

	utils.RespondJSON(c, http.StatusOK, "Order completed", order)
}

// GetPendingItems khusus untuk Chef - menampilkan item yang perlu dimasak
func (oc *OrderController) GetPendingItems(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "chef" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var items []models.OrderItem
	if err := oc.DB.Preload("Menu").
		Preload("Order").
		Where("status = ?", "pending").
		Order("created_at asc").
		Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Pending items", items)
}

// GetKitchenDisplay khusus untuk Chef & Staff - overview dapur
func (oc *OrderController) GetKitchenDisplay(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "chef" && role != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var orders []models.Order
	if err := oc.DB.Preload("OrderItems").
		Preload("OrderItems.Menu").
		Where("status IN ?", []string{
			services.OrderStatusPaid,
			services.OrderStatusInProgress,
			services.OrderStatusReady,
		}).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Kitchen display orders", orders)
}

// GetOrderAnalytics untuk admin melihat analisis order
func (oc *OrderController) GetOrderAnalytics(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var analytics struct {
		PopularItems []struct {
			MenuID   uint    `json:"menu_id"`
			MenuName string  `json:"menu_name"`
			Count    int     `json:"count"`
			Revenue  float64 `json:"revenue"`
		} `json:"popular_items"`
		AveragePrepTime float64 `json:"average_prep_time"`
		PeakHours       []struct {
			Hour  int   `json:"hour"`
			Count int64 `json:"count"`
		} `json:"peak_hours"`
	}

	oc.DB.Raw(`
		SELECT m.id as menu_id, m.name as menu_name,
		COUNT(oi.id) as count, SUM(oi.price * oi.quantity) as revenue
		FROM order_items oi
		JOIN menus m ON oi.menu_id = m.id
		GROUP BY m.id, m.name
		ORDER BY count DESC
		LIMIT 10
	`).Scan(&analytics.PopularItems)

	oc.DB.Model(&models.Order{}).
		Where("finish_cooking_time IS NOT NULL").
		Select("AVG(EXTRACT(EPOCH FROM (finish_cooking_time - start_cooking_time)))").
		Row().Scan(&analytics.AveragePrepTime)

	oc.DB.Raw(`
		SELECT EXTRACT(HOUR FROM created_at) as hour, COUNT(*) as count
		FROM orders
		GROUP BY EXTRACT(HOUR FROM created_at)
		ORDER BY count DESC
	`).Scan(&analytics.PeakHours)

	utils.RespondJSON(c, http.StatusOK, "Order analytics", analytics)
}
