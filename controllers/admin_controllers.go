package controllers

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/kds"
	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/services"
	"github.com/yeremiapane/resto-suite/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// GetDashboardStats mengambil statistik untuk dashboard
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("no role found"))
		return
	}
	role, ok := roleInterface.(string)
	if !ok || role != "admin" {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized access"))
		return
	}

	today := time.Now().Format("2006-01-02")

	var stats struct {
		TotalOrders    int64   `json:"total_orders"`
		TodayOrders    int64   `json:"today_orders"`
		TotalRevenue   float64 `json:"total_revenue"`
		TodayRevenue   float64 `json:"today_revenue"`
		TotalDiscount  float64 `json:"total_discount"`
		AvgCookingTime float64 `json:"avg_cooking_time"`
		OrderStats     struct {
			PendingPayment int64 `json:"pending_payment"`
			Paid           int64 `json:"paid"`
			InProgress     int64 `json:"in_progress"`
			Ready          int64 `json:"ready"`
			Completed      int64 `json:"completed"`
		} `json:"order_stats"`
		PaymentStats struct {
			Pending int64   `json:"pending"`
			Success int64   `json:"success"`
			Total   float64 `json:"total"`
			Today   float64 `json:"today"`
		} `json:"payment_stats"`
		TableStats struct {
			Available   int64 `json:"available"`
			Occupied    int64 `json:"occupied"`
			Reserved    int64 `json:"reserved"`
			Maintenance int64 `json:"maintenance"`
		} `json:"table_stats"`
		BookingStats struct {
			Pending   int64 `json:"pending"`
			Confirmed int64 `json:"confirmed"`
			Today     int64 `json:"today"`
		} `json:"booking_stats"`
		VoucherStats struct {
			Active      int64 `json:"active"`
			Redemptions int64 `json:"redemptions"`
		} `json:"voucher_stats"`
	}

	ac.DB.Model(&models.Order{}).Count(&stats.TotalOrders)
	ac.DB.Model(&models.Order{}).Where("DATE(created_at) = ?", today).Count(&stats.TodayOrders)

	ac.DB.Model(&models.Order{}).Where("status = ?", services.OrderStatusPendingPayment).Count(&stats.OrderStats.PendingPayment)
	ac.DB.Model(&models.Order{}).Where("status = ?", services.OrderStatusPaid).Count(&stats.OrderStats.Paid)
	ac.DB.Model(&models.Order{}).Where("status = ?", services.OrderStatusInProgress).Count(&stats.OrderStats.InProgress)
	ac.DB.Model(&models.Order{}).Where("status = ?", services.OrderStatusReady).Count(&stats.OrderStats.Ready)
	ac.DB.Model(&models.Order{}).Where("status = ?", services.OrderStatusCompleted).Count(&stats.OrderStats.Completed)

	ac.DB.Model(&models.Payment{}).Where("status = ?", services.PaymentStatusPending).Count(&stats.PaymentStats.Pending)
	ac.DB.Model(&models.Payment{}).Where("status = ?", services.PaymentStatusSuccess).Count(&stats.PaymentStats.Success)

	// Refund tidak dihitung sebagai pemasukan
	ac.DB.Model(&models.Payment{}).
		Where("status = ? AND is_refund = ?", services.PaymentStatusSuccess, false).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.PaymentStats.Total)

	ac.DB.Model(&models.Payment{}).
		Where("status = ? AND is_refund = ? AND DATE(created_at) = ?",
			services.PaymentStatusSuccess, false, today).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.PaymentStats.Today)

	ac.DB.Model(&models.Order{}).
		Select("COALESCE(SUM(discount_amount), 0)").Row().Scan(&stats.TotalDiscount)

	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableStatusAvailable).Count(&stats.TableStats.Available)
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableStatusOccupied).Count(&stats.TableStats.Occupied)
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableStatusReserved).Count(&stats.TableStats.Reserved)
	ac.DB.Model(&models.Table{}).Where("status = ?", models.TableStatusMaintenance).Count(&stats.TableStats.Maintenance)

	ac.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusPending).Count(&stats.BookingStats.Pending)
	ac.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusConfirmed).Count(&stats.BookingStats.Confirmed)
	ac.DB.Model(&models.Booking{}).Where("reservation_date = ?", today).Count(&stats.BookingStats.Today)

	ac.DB.Model(&models.Voucher{}).Where("is_active = ?", true).Count(&stats.VoucherStats.Active)
	ac.DB.Model(&models.Voucher{}).
		Select("COALESCE(SUM(used_count), 0)").Row().Scan(&stats.VoucherStats.Redemptions)

	stats.TotalRevenue = stats.PaymentStats.Total
	stats.TodayRevenue = stats.PaymentStats.Today

	var avgCookingTime sql.NullFloat64
	ac.DB.Model(&models.Order{}).
		Where("start_cooking_time IS NOT NULL AND finish_cooking_time IS NOT NULL").
		Select("AVG(TIMESTAMPDIFF(MINUTE, start_cooking_time, finish_cooking_time))").
		Row().Scan(&avgCookingTime)
	if avgCookingTime.Valid {
		stats.AvgCookingTime = avgCookingTime.Float64
	}

	kds.BroadcastDashboardUpdate(stats)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", gin.H{
		"data": stats,
	})
}

// MonitorOrderFlow memantau alur order secara real-time
func (ac *AdminController) MonitorOrderFlow(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var orderFlow struct {
		PendingOrders []models.Order   `json:"pending_orders"`
		ActiveOrders  []models.Order   `json:"active_orders"`
		Payments      []models.Payment `json:"pending_payments"`
	}

	ac.DB.Preload("OrderItems").Preload("OrderItems.Menu").
		Where("status = ?", services.OrderStatusPendingPayment).
		Find(&orderFlow.PendingOrders)

	ac.DB.Preload("OrderItems").Preload("OrderItems.Menu").
		Where("status IN ?", []string{
			services.OrderStatusPaid,
			services.OrderStatusInProgress,
			services.OrderStatusReady,
		}).
		Find(&orderFlow.ActiveOrders)

	ac.DB.Preload("Order").
		Where("status = ?", services.PaymentStatusPending).
		Find(&orderFlow.Payments)

	utils.RespondJSON(c, http.StatusOK, "Order flow status", gin.H{
		"data": gin.H{
			"order_flow": orderFlow,
		},
	})
}

// salesSummary menghitung ringkasan penjualan pada satu rentang tanggal
func (ac *AdminController) salesSummary(startDate, endDate string) (totalSales float64, totalOrders int64, totalDiscount float64) {
	ac.DB.Model(&models.Payment{}).
		Where("status = ? AND is_refund = ? AND DATE(created_at) BETWEEN ? AND ?",
			services.PaymentStatusSuccess, false, startDate, endDate).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&totalSales)

	ac.DB.Model(&models.Order{}).
		Where("status = ? AND DATE(created_at) BETWEEN ? AND ?",
			services.OrderStatusCompleted, startDate, endDate).
		Count(&totalOrders)

	ac.DB.Model(&models.Order{}).
		Where("DATE(created_at) BETWEEN ? AND ?", startDate, endDate).
		Select("COALESCE(SUM(discount_amount), 0)").Row().Scan(&totalDiscount)
	return
}

// GetSalesReport mengambil laporan penjualan untuk satu rentang tanggal
func (ac *AdminController) GetSalesReport(c *gin.Context) {
	startDate := c.DefaultQuery("start_date", time.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	endDate := c.DefaultQuery("end_date", time.Now().Format("2006-01-02"))

	var sales struct {
		StartDate      string  `json:"start_date"`
		EndDate        string  `json:"end_date"`
		TotalSales     float64 `json:"total_sales"`
		TotalOrders    int64   `json:"total_orders"`
		TotalDiscount  float64 `json:"total_discount"`
		AverageOrder   float64 `json:"average_order"`
		TopSellingMenu []struct {
			MenuID   uint    `json:"menu_id"`
			Name     string  `json:"name"`
			Quantity int     `json:"quantity"`
			Revenue  float64 `json:"revenue"`
		} `json:"top_selling_menu"`
	}
	sales.StartDate = startDate
	sales.EndDate = endDate
	sales.TotalSales, sales.TotalOrders, sales.TotalDiscount = ac.salesSummary(startDate, endDate)

	if sales.TotalOrders > 0 {
		sales.AverageOrder = sales.TotalSales / float64(sales.TotalOrders)
	}

	ac.DB.Raw(`
		SELECT m.id as menu_id, m.name as name,
		SUM(oi.quantity) as quantity, SUM(oi.price * oi.quantity) as revenue
		FROM order_items oi
		JOIN menus m ON oi.menu_id = m.id
		JOIN orders o ON oi.order_id = o.id
		WHERE DATE(o.created_at) BETWEEN ? AND ?
		GROUP BY m.id, m.name
		ORDER BY quantity DESC
		LIMIT 10
	`, startDate, endDate).Scan(&sales.TopSellingMenu)

	utils.RespondJSON(c, http.StatusOK, "Sales report", gin.H{
		"data": gin.H{
			"sales": sales,
		},
	})
}

// GetOrderFlow menampilkan order terbaru dalam bentuk ringkas
func (ac *AdminController) GetOrderFlow(c *gin.Context) {
	var orders []models.Order
	if err := ac.DB.Preload("OrderItems.Menu").
		Order("created_at DESC").
		Limit(10).
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type flowItem struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}
	type flowOrder struct {
		OrderID     uint       `json:"order_id"`
		TableID     uint       `json:"table_id"`
		TotalAmount float64    `json:"total"`
		Status      string     `json:"status"`
		CreatedAt   time.Time  `json:"created_at"`
		Items       []flowItem `json:"items"`
	}

	recentOrders := make([]flowOrder, 0, len(orders))
	for _, order := range orders {
		items := make([]flowItem, 0, len(order.OrderItems))
		for _, item := range order.OrderItems {
			items = append(items, flowItem{Name: item.Menu.Name, Quantity: item.Quantity})
		}
		recentOrders = append(recentOrders, flowOrder{
			OrderID:     order.ID,
			TableID:     order.TableID,
			TotalAmount: order.TotalAmount,
			Status:      order.Status,
			CreatedAt:   order.CreatedAt,
			Items:       items,
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Recent orders retrieved successfully", gin.H{
		"data": gin.H{
			"recent_orders": recentOrders,
		},
	})
}

// ExportSalesCSV -> laporan penjualan per-order dalam format CSV
func (ac *AdminController) ExportSalesCSV(c *gin.Context) {
	startDate := c.DefaultQuery("start_date", time.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	endDate := c.DefaultQuery("end_date", time.Now().Format("2006-01-02"))

	var orders []models.Order
	if err := ac.DB.Preload("Voucher").
		Where("DATE(created_at) BETWEEN ? AND ?", startDate, endDate).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename="sales-%s-%s.csv"`, startDate, endDate))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{
		"order_id", "date", "table_id", "status",
		"total_amount", "voucher_code", "discount", "payable",
	})
	for _, order := range orders {
		voucherCode := ""
		if order.Voucher != nil {
			voucherCode = order.Voucher.Code
		}
		writer.Write([]string{
			fmt.Sprintf("%d", order.ID),
			order.CreatedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", order.TableID),
			order.Status,
			fmt.Sprintf("%.2f", order.TotalAmount),
			voucherCode,
			fmt.Sprintf("%.2f", order.DiscountAmount),
			fmt.Sprintf("%.2f", order.PayableAmount()),
		})
	}
}

// ExportSalesPDF -> ringkasan penjualan satu rentang tanggal dalam PDF
func (ac *AdminController) ExportSalesPDF(c *gin.Context) {
	startDate := c.DefaultQuery("start_date", time.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	endDate := c.DefaultQuery("end_date", time.Now().Format("2006-01-02"))

	totalSales, totalOrders, totalDiscount := ac.salesSummary(startDate, endDate)

	var dailyRows []struct {
		Day     string  `json:"day"`
		Orders  int64   `json:"orders"`
		Revenue float64 `json:"revenue"`
	}
	ac.DB.Raw(`
		SELECT DATE(p.created_at) as day, COUNT(*) as orders,
		COALESCE(SUM(p.amount), 0) as revenue
		FROM payments p
		WHERE p.status = ? AND p.is_refund = ? AND DATE(p.created_at) BETWEEN ? AND ?
		GROUP BY DATE(p.created_at)
		ORDER BY day
	`, services.PaymentStatusSuccess, false, startDate, endDate).Scan(&dailyRows)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Sales Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s s/d %s", startDate, endDate), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(60, 8, "Total penjualan", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, utils.FormatCurrencyIDR(totalSales), "", 1, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Order selesai", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("%d", totalOrders), "", 1, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Total diskon voucher", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, utils.FormatCurrencyIDR(totalDiscount), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(50, 7, "Tanggal", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Transaksi", "B", 0, "C", false, 0, "")
	pdf.CellFormat(60, 7, "Pendapatan", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range dailyRows {
		pdf.CellFormat(50, 7, row.Day, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", row.Orders), "", 0, "C", false, 0, "")
		pdf.CellFormat(60, 7, utils.FormatCurrencyIDR(row.Revenue), "", 1, "R", false, 0, "")
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename="sales-%s-%s.pdf"`, startDate, endDate))

	if err := pdf.Output(c.Writer); err != nil {
		utils.ErrorLogger.Printf("Error writing sales PDF: %v", err)
	}
}
