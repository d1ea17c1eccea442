package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/kds"
	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/utils"
)

// Status pembayaran
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
	PaymentStatusCancelled = "cancelled"
)

// Status order
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusCancelled      = "cancelled"
	OrderStatusInProgress     = "in_progress"
	OrderStatusReady          = "ready"
	OrderStatusCompleted      = "completed"
)

// PaymentService menangani operasi pembayaran
type PaymentService struct {
	db       *gorm.DB
	stopChan chan struct{}
}

// NewPaymentService membuat instance baru PaymentService
func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db, stopChan: make(chan struct{})}
}

// UpdatePaymentStatus mengupdate status pembayaran sekaligus status order-nya
// dalam satu transaksi.
func (s *PaymentService) UpdatePaymentStatus(paymentID uint, status string) error {
	tx := s.db.Begin()

	var payment models.Payment
	if err := tx.First(&payment, paymentID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to find payment: %w", err)
	}

	now := time.Now()
	payment.Status = status
	if status == PaymentStatusSuccess {
		payment.PaymentTime = &now
	}
	payment.UpdatedAt = now
	if err := tx.Save(&payment).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if payment.OrderID != nil {
		var order models.Order
		if err := tx.First(&order, *payment.OrderID).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to find order: %w", err)
		}

		switch status {
		case PaymentStatusSuccess:
			order.Status = OrderStatusPaid
		case PaymentStatusFailed, PaymentStatusExpired, PaymentStatusCancelled:
			order.Status = OrderStatusCancelled
		}
		order.UpdatedAt = now

		if err := tx.Save(&order).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to update order status: %w", err)
		}

		if err := tx.Commit().Error; err != nil {
			return err
		}

		if status == PaymentStatusSuccess {
			kds.BroadcastPaymentSuccess(payment)
			kds.BroadcastOrderUpdate(order)
			kds.BroadcastStaffNotification(fmt.Sprintf("Payment received for Order #%d", order.ID))
		}
		return nil
	}

	// Deposit booking: tandai deposit terbayar saat sukses
	if payment.BookingID != nil && status == PaymentStatusSuccess {
		if err := tx.Model(&models.Booking{}).
			Where("id = ?", *payment.BookingID).
			Update("deposit_paid", true).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to mark deposit paid: %w", err)
		}
	}

	return tx.Commit().Error
}

// StartTimeoutChecker menjalankan pengecekan berkala untuk pembayaran pending
// yang sudah melewati ExpiredAt.
func (s *PaymentService) StartTimeoutChecker() {
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.expireStalePayments()
			case <-s.stopChan:
				return
			}
		}
	}()
}

// StopTimeoutChecker menghentikan checker
func (s *PaymentService) StopTimeoutChecker() {
	close(s.stopChan)
}

func (s *PaymentService) expireStalePayments() {
	var stale []models.Payment
	if err := s.db.
		Where("status = ? AND expired_at IS NOT NULL AND expired_at < ?", PaymentStatusPending, time.Now()).
		Find(&stale).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching stale payments: %v", err)
		return
	}

	for _, payment := range stale {
		if err := s.UpdatePaymentStatus(payment.ID, PaymentStatusExpired); err != nil {
			utils.ErrorLogger.Printf("Error expiring payment %d: %v", payment.ID, err)
			continue
		}
		utils.InfoLogger.Printf("Payment %d expired after timeout", payment.ID)
	}
}
