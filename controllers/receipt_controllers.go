package controllers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/services"
	"github.com/yeremiapane/resto-suite/utils"
)

type ReceiptController struct {
	DB *gorm.DB
}

func NewReceiptController(db *gorm.DB) *ReceiptController {
	return &ReceiptController{DB: db}
}

const receiptDir = "public/receipts"

// GenerateReceipt membuat struk untuk pembayaran yang sudah sukses,
// termasuk file PDF-nya.
func (rc *ReceiptController) GenerateReceipt(c *gin.Context) {
	paymentID := c.Param("payment_id")

	var payment models.Payment
	if err := rc.DB.Preload("Order").
		Preload("Order.OrderItems").
		Preload("Order.OrderItems.Menu").
		Preload("Order.Voucher").
		First(&payment, paymentID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if payment.Status != services.PaymentStatusSuccess {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("payment belum selesai"))
		return
	}
	if payment.OrderID == nil || payment.Order == nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("payment is not tied to an order"))
		return
	}

	// Satu struk per pembayaran
	var existing models.Receipt
	if err := rc.DB.Preload("ReceiptItems").
		Where("payment_id = ?", payment.ID).First(&existing).Error; err == nil {
		utils.RespondJSON(c, http.StatusOK, "Receipt already exists", existing)
		return
	}

	order := payment.Order
	receiptNumber := fmt.Sprintf("RCP/%s/%06d", time.Now().Format("20060102"), payment.ID)

	receipt := models.Receipt{
		OrderID:          order.ID,
		PaymentID:        payment.ID,
		Subtotal:         order.TotalAmount,
		Discount:         order.DiscountAmount,
		Total:            order.PayableAmount(),
		PaymentMethod:    payment.PaymentMethod,
		AmountPaid:       payment.Amount + payment.Change,
		Change:           payment.Change,
		PaymentReference: payment.ReferenceID,
		ReceiptNumber:    receiptNumber,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	tx := rc.DB.Begin()
	if err := tx.Create(&receipt).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	for _, item := range order.OrderItems {
		receiptItem := models.ReceiptItem{
			ReceiptID: receipt.ID,
			MenuID:    item.MenuID,
			MenuName:  item.Menu.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Subtotal:  float64(item.Quantity) * item.Price,
			Notes:     item.Notes,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := tx.Create(&receiptItem).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		receipt.ReceiptItems = append(receipt.ReceiptItems, receiptItem)
	}

	// PDF gagal bukan alasan membatalkan struk; path dibiarkan kosong
	pdfPath, err := rc.writeReceiptPDF(&receipt, order)
	if err != nil {
		utils.ErrorLogger.Printf("Error writing receipt PDF for payment %d: %v", payment.ID, err)
	} else {
		receipt.PDFPath = pdfPath
		if err := tx.Model(&receipt).Update("pdf_path", pdfPath).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Receipt %s generated for payment %d", receiptNumber, payment.ID)
	utils.RespondJSON(c, http.StatusCreated, "Receipt generated", receipt)
}

// writeReceiptPDF menyusun file PDF struk dan mengembalikan path-nya
func (rc *ReceiptController) writeReceiptPDF(receipt *models.Receipt, order *models.Order) (string, error) {
	if err := os.MkdirAll(receiptDir, 0755); err != nil {
		return "", err
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Resto Suite", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, receipt.ReceiptNumber, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, receipt.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(60, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(15, 6, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range receipt.ReceiptItems {
		pdf.CellFormat(60, 6, item.MenuName, "", 0, "L", false, 0, "")
		pdf.CellFormat(15, 6, fmt.Sprintf("%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, utils.FormatCurrencyIDR(item.Subtotal), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	pdf.CellFormat(75, 6, "Subtotal", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, utils.FormatCurrencyIDR(receipt.Subtotal), "T", 1, "R", false, 0, "")
	if receipt.Discount > 0 {
		voucherLabel := "Diskon voucher"
		if order.Voucher != nil {
			voucherLabel = fmt.Sprintf("Voucher %s", order.Voucher.Code)
		}
		pdf.CellFormat(75, 6, voucherLabel, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, "-"+utils.FormatCurrencyIDR(receipt.Discount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(75, 7, "Total", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, utils.FormatCurrencyIDR(receipt.Total), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(75, 6, fmt.Sprintf("Pembayaran (%s)", receipt.PaymentMethod), "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, utils.FormatCurrencyIDR(receipt.AmountPaid), "", 1, "R", false, 0, "")
	if receipt.Change > 0 {
		pdf.CellFormat(75, 6, "Kembalian", "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, utils.FormatCurrencyIDR(receipt.Change), "", 1, "R", false, 0, "")
	}

	pdf.Ln(5)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Terima kasih atas kunjungan Anda", "", 1, "C", false, 0, "")

	path := fmt.Sprintf("%s/%d.pdf", receiptDir, receipt.PaymentID)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", err
	}
	return path, nil
}

// GetReceiptByID -> detail struk
func (rc *ReceiptController) GetReceiptByID(c *gin.Context) {
	receiptID := c.Param("receipt_id")

	var receipt models.Receipt
	if err := rc.DB.Preload("ReceiptItems").
		Preload("Order").
		Preload("Payment").
		First(&receipt, receiptID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Receipt detail", receipt)
}

// GetAllReceipts -> list struk, filter opsional per tanggal
func (rc *ReceiptController) GetAllReceipts(c *gin.Context) {
	query := rc.DB.Preload("ReceiptItems")
	if date := c.Query("date"); date != "" {
		query = query.Where("DATE(created_at) = ?", date)
	}

	var receipts []models.Receipt
	if err := query.Order("created_at desc").Find(&receipts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of receipts", receipts)
}

// DownloadReceiptPDF -> kirim file PDF struk
func (rc *ReceiptController) DownloadReceiptPDF(c *gin.Context) {
	receiptID := c.Param("receipt_id")

	var receipt models.Receipt
	if err := rc.DB.First(&receipt, receiptID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if receipt.PDFPath == "" {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("receipt has no PDF"))
		return
	}
	if _, err := os.Stat(receipt.PDFPath); err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("PDF file is missing"))
		return
	}

	c.FileAttachment(receipt.PDFPath, fmt.Sprintf("receipt-%d.pdf", receipt.ID))
}
