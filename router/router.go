package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/controllers"
	"github.com/yeremiapane/resto-suite/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	// Limiter global per IP; dipasang sebelum route didaftarkan supaya ikut
	// di rantai handler semua route
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	customerCtrl := controllers.NewCustomerController(db)
	categoryCtrl := controllers.NewMenuCategoryController(db)
	menuCtrl := controllers.NewMenuController(db)
	orderCtrl := controllers.NewOrderController(db)
	bookingCtrl := controllers.NewBookingController(db)
	voucherCtrl := controllers.NewVoucherController(db)
	paymentCtrl := controllers.NewPaymentController(db)
	receiptCtrl := controllers.NewReceiptController(db)
	shiftCtrl := controllers.NewShiftController(db)
	attendanceCtrl := controllers.NewAttendanceController(db)
	cleanLogCtrl := controllers.NewCleaningLogController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	adminCtrl := controllers.NewAdminController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// -- CUSTOMER (Tanpa Auth) --
	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.GET("/menus", menuCtrl.GetAllMenus)
	r.GET("/menus/by-category", menuCtrl.GetMenuByCategory)

	// Sesi meja via scan QR
	r.GET("/tables/:table_id/scan", customerCtrl.ScanTable)
	r.GET("/tables/:table_id/session", customerCtrl.GetActiveSession)
	r.GET("/tables", tableCtrl.GetAllTables)

	// Order dari meja (customer tidak perlu login)
	r.POST("/tables/:table_id/orders", orderCtrl.CreateOrder)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	r.POST("/orders/:order_id/voucher", orderCtrl.ApplyVoucher)
	r.DELETE("/orders/:order_id/voucher", orderCtrl.RemoveVoucher)

	// Reservasi meja
	r.GET("/bookings/availability", bookingCtrl.CheckAvailability)
	r.GET("/bookings/available-tables", bookingCtrl.ListAvailableTables)
	r.POST("/bookings", bookingCtrl.CreateBooking)

	// Voucher untuk customer
	r.POST("/vouchers/best", voucherCtrl.GetBestVoucher)
	r.POST("/vouchers/validate", voucherCtrl.ValidateVoucher)

	// Pembayaran dari sisi customer + webhook Midtrans
	paymentGroup := r.Group("/")
	paymentGroup.Use(middlewares.PaymentRateLimiter(), middlewares.LogPaymentRequest())
	{
		paymentGroup.POST("/orders/:order_id/payments/qris", paymentCtrl.CreateQRISPayment)
		paymentGroup.POST("/payments/callback", paymentCtrl.HandlePaymentCallback)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.EnhancedAuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/users", middlewares.RequireRoles("admin"), userCtrl.GetAllUsers)

	// TABLE
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.POST("/tables", middlewares.RequireRoles("admin"), tableCtrl.CreateTable)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.PATCH("/tables/:table_id", tableCtrl.UpdateTableStatus)
	auth.DELETE("/tables/:table_id", middlewares.RequireRoles("admin"), tableCtrl.DeleteTable)
	auth.PATCH("/tables/:table_id/clean", tableCtrl.MarkTableClean)

	// CUSTOMERS (staff/admin)
	auth.GET("/customers", customerCtrl.GetAllCustomers)
	auth.POST("/customers", customerCtrl.CreateCustomer)
	auth.GET("/customers/:customer_id", customerCtrl.GetCustomerByID)
	auth.PATCH("/customers/:customer_id", customerCtrl.UpdateCustomer)
	auth.DELETE("/customers/:customer_id", customerCtrl.DeleteCustomer)

	// MENU CATEGORIES (staff/admin only)
	auth.POST("/categories", categoryCtrl.CreateCategory)
	auth.GET("/categories/:cat_id", categoryCtrl.GetCategoryByID)
	auth.PATCH("/categories/:cat_id", categoryCtrl.UpdateCategory)
	auth.DELETE("/categories/:cat_id", categoryCtrl.DeleteCategory)

	// MENUS (staff/admin)
	auth.GET("/menus", menuCtrl.GetAllMenus)
	auth.POST("/menus", menuCtrl.CreateMenu)
	auth.GET("/menus/:menu_id", menuCtrl.GetMenuByID)
	auth.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
	auth.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)

	// BOOKINGS (staff/admin)
	auth.GET("/bookings", bookingCtrl.GetAllBookings)
	auth.GET("/bookings/:booking_id", bookingCtrl.GetBookingByID)
	auth.POST("/bookings/:booking_id/confirm", bookingCtrl.ConfirmBooking)
	auth.POST("/bookings/:booking_id/cancel", bookingCtrl.CancelBooking)
	auth.POST("/bookings/:booking_id/complete", bookingCtrl.CompleteBooking)
	auth.POST("/bookings/:booking_id/deposit", paymentCtrl.CreateDepositPayment)

	// VOUCHERS (admin)
	auth.GET("/vouchers", voucherCtrl.GetAllVouchers)
	auth.POST("/vouchers", middlewares.RequireRoles("admin"), voucherCtrl.CreateVoucher)
	auth.GET("/vouchers/:voucher_id", voucherCtrl.GetVoucherByID)
	auth.PATCH("/vouchers/:voucher_id", middlewares.RequireRoles("admin"), voucherCtrl.UpdateVoucher)
	auth.POST("/vouchers/:voucher_id/deactivate", middlewares.RequireRoles("admin"), voucherCtrl.DeactivateVoucher)
	auth.DELETE("/vouchers/:voucher_id", middlewares.RequireRoles("admin"), voucherCtrl.DeleteVoucher)

	// ORDERS (staff/admin)
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.PATCH("/orders/:order_id", orderCtrl.UpdateOrder)
	auth.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)

	// PAYMENTS (staff/admin)
	auth.GET("/payments", paymentCtrl.GetAllPayments)
	auth.GET("/payments/:payment_id", paymentCtrl.GetPaymentByID)
	auth.DELETE("/payments/:payment_id", paymentCtrl.DeletePayment)
	auth.POST("/payments/:payment_id/verify", paymentCtrl.VerifyPayment)
	auth.GET("/payments/:payment_id/check", paymentCtrl.CheckPaymentStatus)
	auth.POST("/orders/:order_id/payments/cash", paymentCtrl.CreateCashPayment)
	auth.POST("/payments/:payment_id/receipt", receiptCtrl.GenerateReceipt)

	// RECEIPTS
	auth.GET("/receipts", receiptCtrl.GetAllReceipts)
	auth.GET("/receipts/:receipt_id", receiptCtrl.GetReceiptByID)
	auth.GET("/receipts/:receipt_id/pdf", receiptCtrl.DownloadReceiptPDF)

	// SHIFTS (admin menjadwalkan)
	auth.GET("/shifts", shiftCtrl.GetAllShifts)
	auth.POST("/shifts", middlewares.RequireRoles("admin"), shiftCtrl.CreateShift)
	auth.GET("/shifts/:shift_id", shiftCtrl.GetShiftByID)
	auth.PATCH("/shifts/:shift_id", middlewares.RequireRoles("admin"), shiftCtrl.UpdateShift)
	auth.DELETE("/shifts/:shift_id", middlewares.RequireRoles("admin"), shiftCtrl.DeleteShift)

	// ATTENDANCE
	auth.POST("/attendance/clock-in", attendanceCtrl.ClockIn)
	auth.POST("/attendance/clock-out", attendanceCtrl.ClockOut)
	auth.GET("/attendance", middlewares.RequireRoles("admin"), attendanceCtrl.GetAllAttendance)
	auth.GET("/attendance/me", attendanceCtrl.GetMyAttendance)
	auth.GET("/staff/performance", attendanceCtrl.GetStaffPerformance)

	// CLEANING LOGS (Cleaner, staff, admin)
	auth.GET("/cleaning-logs", cleanLogCtrl.GetAllCleaningLogs)
	auth.POST("/cleaning-logs", cleanLogCtrl.CreateCleaningLog)
	auth.GET("/cleaning-logs/:clean_id", cleanLogCtrl.GetCleaningLogByID)
	auth.PATCH("/cleaning-logs/:clean_id", cleanLogCtrl.UpdateCleaningLog)
	auth.DELETE("/cleaning-logs/:clean_id", cleanLogCtrl.DeleteCleaningLog)

	// NOTIFICATIONS (staff/admin)
	auth.GET("/notifications", notificationCtrl.GetAllNotifications)
	auth.POST("/notifications", notificationCtrl.CreateNotification)
	auth.GET("/notifications/:notif_id", notificationCtrl.GetNotificationByID)
	auth.DELETE("/notifications/:notif_id", notificationCtrl.DeleteNotification)

	// KDS item-level (Chef)
	auth.POST("/order-items/:item_id/start", orderCtrl.StartCookingItem)
	auth.POST("/order-items/:item_id/finish", orderCtrl.FinishCookingItem)

	// KDS order-level
	auth.POST("/orders/:order_id/start-cooking", orderCtrl.StartCooking)
	auth.POST("/orders/:order_id/finish-cooking", orderCtrl.FinishCooking)
	auth.POST("/orders/:order_id/complete", orderCtrl.CompleteOrder)

	// Routes untuk Chef
	auth.GET("/kitchen/pending-items", orderCtrl.GetPendingItems)
	auth.GET("/kitchen/display", orderCtrl.GetKitchenDisplay)

	// Routes untuk Admin
	auth.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
	auth.GET("/orders/flow", adminCtrl.MonitorOrderFlow)
	auth.GET("/orders/analytics", orderCtrl.GetOrderAnalytics)
	auth.GET("/orders/getflow", adminCtrl.GetOrderFlow)
	auth.GET("/reports/sales", adminCtrl.GetSalesReport)
	auth.GET("/reports/export", adminCtrl.ExportSalesCSV)
	auth.GET("/reports/export-pdf", adminCtrl.ExportSalesPDF)

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/:role", controllers.KDSHandler)
	}

	return r
}
