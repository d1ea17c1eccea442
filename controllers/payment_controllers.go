package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/kds"
	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/services"
	"github.com/yeremiapane/resto-suite/utils"
)

type PaymentController struct {
	DB       *gorm.DB
	Payments *services.PaymentService
	Midtrans *services.MidtransService
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{
		DB:       db,
		Payments: services.NewPaymentService(db),
		Midtrans: services.GetMidtransService(),
	}
}

// payableOrder mengambil order yang masih boleh dibayar
func (pc *PaymentController) payableOrder(orderID string) (*models.Order, error) {
	var order models.Order
	if err := pc.DB.First(&order, orderID).Error; err != nil {
		return nil, err
	}
	if order.Status != services.OrderStatusPendingPayment {
		return nil, fmt.Errorf("order is not awaiting payment")
	}
	return &order, nil
}

// CreateCashPayment -> kasir menerima tunai; kembalian dihitung di sini
func (pc *PaymentController) CreateCashPayment(c *gin.Context) {
	orderID := c.Param("order_id")

	var body struct {
		CashReceived float64 `json:"cash_received" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := pc.payableOrder(orderID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payable := order.PayableAmount()
	if body.CashReceived < payable {
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("cash received is less than payable amount %s", utils.FormatCurrencyIDR(payable)))
		return
	}

	payment := models.Payment{
		OrderID:       &order.ID,
		Amount:        payable,
		Status:        services.PaymentStatusPending,
		PaymentMethod: "cash",
		PaymentType:   "cash",
		ReferenceID:   fmt.Sprintf("CASH-%s", uuid.NewString()),
		CashReceived:  body.CashReceived,
		Change:        body.CashReceived - payable,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := pc.DB.Create(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Tunai langsung dianggap lunas
	if err := pc.Payments.UpdatePaymentStatus(payment.ID, services.PaymentStatusSuccess); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pc.DB.First(&payment, payment.ID)

	utils.InfoLogger.Printf("Cash payment %d for order %d (change %.2f)",
		payment.ID, order.ID, payment.Change)
	utils.RespondJSON(c, http.StatusCreated, "Cash payment recorded", payment)
}

// CreateQRISPayment -> buat transaksi QRIS via Midtrans untuk 1 order
func (pc *PaymentController) CreateQRISPayment(c *gin.Context) {
	orderID := c.Param("order_id")

	order, err := pc.payableOrder(orderID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Hanya satu pembayaran QRIS pending per order
	var existing models.Payment
	if err := pc.DB.Where("order_id = ? AND status = ? AND payment_method = ?",
		order.ID, services.PaymentStatusPending, "qris").First(&existing).Error; err == nil {
		utils.RespondJSON(c, http.StatusOK, "Pending QRIS payment already exists", existing)
		return
	}

	referenceID := fmt.Sprintf("ORDER-%d-%s", order.ID, uuid.NewString()[:8])
	payable := order.PayableAmount()

	charge, err := pc.Midtrans.ChargeQRIS(referenceID, payable)
	if err != nil {
		utils.ErrorLogger.Printf("QRIS charge failed for order %d: %v", order.ID, err)
		utils.RespondError(c, http.StatusBadGateway, err)
		return
	}

	payment := models.Payment{
		OrderID:       &order.ID,
		Amount:        payable,
		Status:        services.PaymentStatusPending,
		PaymentMethod: "qris",
		PaymentType:   "qris",
		ReferenceID:   charge.ReferenceID,
		QRImageURL:    charge.QRCodeURL,
		ExpiredAt:     &charge.ExpiredAt,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := pc.DB.Create(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastPaymentPending(payment)
	utils.RespondJSON(c, http.StatusCreated, "QRIS payment created", payment)
}

// CreateDepositPayment -> pembayaran deposit untuk reservasi
func (pc *PaymentController) CreateDepositPayment(c *gin.Context) {
	bookingID := c.Param("booking_id")

	var booking models.Booking
	if err := pc.DB.First(&booking, bookingID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if !booking.IsActive() {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("booking is not active"))
		return
	}
	if booking.DepositAmount <= 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("booking has no deposit"))
		return
	}
	if booking.DepositPaid {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("deposit already paid"))
		return
	}

	var body struct {
		Method string `json:"method" binding:"required,oneof=cash qris"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment := models.Payment{
		BookingID:     &booking.ID,
		Amount:        booking.DepositAmount,
		Status:        services.PaymentStatusPending,
		PaymentMethod: body.Method,
		PaymentType:   "deposit",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if body.Method == "qris" {
		referenceID := fmt.Sprintf("BOOKING-%d-%s", booking.ID, uuid.NewString()[:8])
		charge, err := pc.Midtrans.ChargeQRIS(referenceID, booking.DepositAmount)
		if err != nil {
			utils.ErrorLogger.Printf("QRIS charge failed for booking %d: %v", booking.ID, err)
			utils.RespondError(c, http.StatusBadGateway, err)
			return
		}
		payment.ReferenceID = charge.ReferenceID
		payment.QRImageURL = charge.QRCodeURL
		payment.ExpiredAt = &charge.ExpiredAt
	} else {
		payment.ReferenceID = fmt.Sprintf("CASH-%s", uuid.NewString())
	}

	if err := pc.DB.Create(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Deposit tunai langsung lunas
	if body.Method == "cash" {
		if err := pc.Payments.UpdatePaymentStatus(payment.ID, services.PaymentStatusSuccess); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		pc.DB.First(&payment, payment.ID)
	}

	utils.RespondJSON(c, http.StatusCreated, "Deposit payment created", payment)
}

// HandlePaymentCallback -> webhook notifikasi dari Midtrans
func (pc *PaymentController) HandlePaymentCallback(c *gin.Context) {
	var notif struct {
		OrderID           string `json:"order_id"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
		SignatureKey      string `json:"signature_key"`
		TransactionStatus string `json:"transaction_status"`
	}
	if err := c.ShouldBindJSON(&notif); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !pc.Midtrans.VerifySignature(notif.OrderID, notif.StatusCode, notif.GrossAmount, notif.SignatureKey) {
		utils.ErrorLogger.Printf("Invalid callback signature for %s", notif.OrderID)
		utils.RespondError(c, http.StatusForbidden, errors.New("invalid signature"))
		return
	}

	var payment models.Payment
	if err := pc.DB.Where("reference_id = ?", notif.OrderID).First(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	newStatus := services.MapTransactionStatus(notif.TransactionStatus)
	if payment.Status == newStatus {
		utils.RespondJSON(c, http.StatusOK, "Status unchanged", payment)
		return
	}

	if err := pc.Payments.UpdatePaymentStatus(payment.ID, newStatus); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Callback: payment %d -> %s", payment.ID, newStatus)
	utils.RespondJSON(c, http.StatusOK, "Callback processed", gin.H{
		"payment_id": payment.ID,
		"status":     newStatus,
	})
}

// VerifyPayment -> staf memverifikasi pembayaran pending secara manual
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	paymentID := c.Param("payment_id")

	var payment models.Payment
	if err := pc.DB.First(&payment, paymentID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if payment.Status != services.PaymentStatusPending {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("payment is not pending"))
		return
	}

	if userID, exists := c.Get("user_id"); exists {
		if uid, ok := userID.(uint); ok {
			pc.DB.Model(&payment).Update("verified_by", uid)
		}
	}

	if err := pc.Payments.UpdatePaymentStatus(payment.ID, services.PaymentStatusSuccess); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pc.DB.First(&payment, payment.ID)

	utils.RespondJSON(c, http.StatusOK, "Payment verified", payment)
}

// CheckPaymentStatus -> sinkronkan status dari Midtrans
func (pc *PaymentController) CheckPaymentStatus(c *gin.Context) {
	paymentID := c.Param("payment_id")

	var payment models.Payment
	if err := pc.DB.First(&payment, paymentID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if payment.PaymentMethod != "qris" {
		utils.RespondJSON(c, http.StatusOK, "Payment status", payment)
		return
	}

	transactionStatus, err := pc.Midtrans.CheckStatus(payment.ReferenceID)
	if err != nil {
		utils.RespondError(c, http.StatusBadGateway, err)
		return
	}

	newStatus := services.MapTransactionStatus(transactionStatus)
	if newStatus != payment.Status {
		if err := pc.Payments.UpdatePaymentStatus(payment.ID, newStatus); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		pc.DB.First(&payment, payment.ID)
	}

	utils.RespondJSON(c, http.StatusOK, "Payment status", payment)
}

// GetAllPayments
func (pc *PaymentController) GetAllPayments(c *gin.Context) {
	query := pc.DB.Preload("Order").Preload("Booking")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var payments []models.Payment
	if err := query.Order("created_at desc").Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of payments", payments)
}

// GetPaymentByID
func (pc *PaymentController) GetPaymentByID(c *gin.Context) {
	idStr := c.Param("payment_id")
	id, _ := strconv.Atoi(idStr)

	var payment models.Payment
	if err := pc.DB.Preload("Order").Preload("Booking").First(&payment, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment detail", payment)
}

// DeletePayment -> hanya untuk pembayaran yang belum sukses
func (pc *PaymentController) DeletePayment(c *gin.Context) {
	idStr := c.Param("payment_id")
	id, _ := strconv.Atoi(idStr)

	var payment models.Payment
	if err := pc.DB.First(&payment, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if payment.Status == services.PaymentStatusSuccess {
		utils.RespondError(c, http.StatusBadRequest, errors.New("cannot delete a successful payment"))
		return
	}

	if err := pc.DB.Delete(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment deleted", gin.H{"payment_id": id})
}
