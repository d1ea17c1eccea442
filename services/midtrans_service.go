package services

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"

	"github.com/yeremiapane/resto-suite/utils"
)

// MidtransService membungkus Core API Midtrans untuk pembayaran QRIS.
type MidtransService struct {
	client    coreapi.Client
	serverKey string
}

var (
	midtransService *MidtransService
	midtransOnce    sync.Once
)

// GetMidtransService returns singleton instance of MidtransService
func GetMidtransService() *MidtransService {
	midtransOnce.Do(func() {
		serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
		env := midtrans.Sandbox
		if os.Getenv("MIDTRANS_ENV") == "production" {
			env = midtrans.Production
		}

		if serverKey == "" {
			utils.ErrorLogger.Printf("MIDTRANS_SERVER_KEY is empty, QRIS payments will fail")
		}

		svc := &MidtransService{serverKey: serverKey}
		svc.client.New(serverKey, env)
		midtransService = svc
	})
	return midtransService
}

// ChargeResult adalah hasil charge QRIS yang dipakai controller payment.
type ChargeResult struct {
	ReferenceID string
	QRCodeURL   string
	Status      string
	ExpiredAt   time.Time
}

// ChargeQRIS membuat transaksi QRIS baru di Midtrans.
func (s *MidtransService) ChargeQRIS(referenceID string, amount float64) (*ChargeResult, error) {
	req := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeQris,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  referenceID,
			GrossAmt: int64(amount),
		},
	}

	resp, err := s.client.ChargeTransaction(req)
	if err != nil {
		return nil, fmt.Errorf("midtrans charge failed: %w", err)
	}

	result := &ChargeResult{
		ReferenceID: resp.OrderID,
		Status:      resp.TransactionStatus,
		// QRIS Midtrans kadaluarsa 15 menit setelah dibuat
		ExpiredAt: time.Now().Add(15 * time.Minute),
	}
	for _, action := range resp.Actions {
		if action.Name == "generate-qr-code" {
			result.QRCodeURL = action.URL
			break
		}
	}

	return result, nil
}

// CheckStatus menanyakan status transaksi ke Midtrans.
func (s *MidtransService) CheckStatus(referenceID string) (string, error) {
	resp, err := s.client.CheckTransaction(referenceID)
	if err != nil {
		return "", fmt.Errorf("midtrans status check failed: %w", err)
	}
	return resp.TransactionStatus, nil
}

// VerifySignature memvalidasi signature_key callback Midtrans:
// sha512(order_id + status_code + gross_amount + server_key).
func (s *MidtransService) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	h := sha512.New()
	h.Write([]byte(orderID + statusCode + grossAmount + s.serverKey))
	return hex.EncodeToString(h.Sum(nil)) == signature
}

// MapTransactionStatus memetakan status Midtrans ke status payment internal.
func MapTransactionStatus(transactionStatus string) string {
	switch transactionStatus {
	case "capture", "settlement":
		return PaymentStatusSuccess
	case "deny", "failure":
		return PaymentStatusFailed
	case "cancel":
		return PaymentStatusCancelled
	case "expire":
		return PaymentStatusExpired
	default:
		return PaymentStatusPending
	}
}
