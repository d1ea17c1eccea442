package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/controllers"
	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/utils"
)

// setupTestDBForOrders menggunakan SQLite in-memory khusus untuk OrderController
func setupTestDBForOrders(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&models.Table{}, &models.Customer{}, &models.MenuCategory{},
		&models.Menu{}, &models.Voucher{}, &models.Order{}, &models.OrderItem{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupOrderRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	orderCtrl := controllers.NewOrderController(db)
	router.POST("/tables/:table_id/orders", orderCtrl.CreateOrder)
	router.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	router.POST("/orders/:order_id/voucher", orderCtrl.ApplyVoucher)
	router.DELETE("/orders/:order_id/voucher", orderCtrl.RemoveVoucher)
	return router
}

// seedOrderFixtures membuat meja dengan sesi aktif serta dua menu
func seedOrderFixtures(db *gorm.DB) (models.Table, models.Menu, models.Menu) {
	table := models.Table{TableNumber: "A1", Capacity: 4, Status: models.TableStatusOccupied}
	db.Create(&table)

	sessionKey := "test-session"
	customer := models.Customer{
		TableID:    &table.ID,
		SessionKey: &sessionKey,
		Phone:      "0811223344",
		Status:     "active",
	}
	db.Create(&customer)

	cat := models.MenuCategory{Name: "Makanan"}
	db.Create(&cat)
	promo := 40000.0
	nasi := models.Menu{CategoryID: cat.ID, Name: "Nasi Goreng", Price: 50000, PromoPrice: &promo, Stock: 10}
	teh := models.Menu{CategoryID: cat.ID, Name: "Es Teh", Price: 10000, Stock: 10}
	db.Create(&nasi)
	db.Create(&teh)

	return table, nasi, teh
}

func TestCreateOrderFromTableSession(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t)
	table, nasi, teh := seedOrderFixtures(db)
	router := setupOrderRouter(db)

	payload := map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_id": nasi.ID, "quantity": 2, "notes": "pedas"},
			{"menu_id": teh.ID, "quantity": 1},
		},
	}
	payloadBytes, _ := json.Marshal(payload)
	url := fmt.Sprintf("/tables/%d/orders", table.ID)
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Order created", response["message"])

	// Total memakai harga promo: 2x40000 + 1x10000
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(90000), data["total_amount"])
	assert.Equal(t, "pending_payment", data["status"])

	// Stok berkurang sesuai jumlah pesanan
	var updatedMenu models.Menu
	db.First(&updatedMenu, nasi.ID)
	assert.Equal(t, 8, updatedMenu.Stock)

	// Telepon sesi dipakai karena body tidak mengirim telepon
	var order models.Order
	db.First(&order)
	assert.Equal(t, "0811223344", order.CustomerPhone)
}

func TestCreateOrderWithoutSession(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t)

	table := models.Table{TableNumber: "B2", Capacity: 2, Status: models.TableStatusAvailable}
	db.Create(&table)

	router := setupOrderRouter(db)

	payloadBytes, _ := json.Marshal(map[string]interface{}{
		"items": []map[string]interface{}{{"menu_id": 1, "quantity": 1}},
	})
	url := fmt.Sprintf("/tables/%d/orders", table.ID)
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t)
	table, nasi, _ := seedOrderFixtures(db)
	router := setupOrderRouter(db)

	payloadBytes, _ := json.Marshal(map[string]interface{}{
		"items": []map[string]interface{}{{"menu_id": nasi.ID, "quantity": 99}},
	})
	url := fmt.Sprintf("/tables/%d/orders", table.ID)
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Transaksi dibatalkan: tidak ada order yang tercipta, stok utuh
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)

	var updatedMenu models.Menu
	db.First(&updatedMenu, nasi.ID)
	assert.Equal(t, 10, updatedMenu.Stock)
}

func TestApplyFirstTimeVoucherOnFirstOrder(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t)
	table, nasi, _ := seedOrderFixtures(db)
	router := setupOrderRouter(db)

	voucher := models.Voucher{
		Code:          "WELCOME",
		DiscountType:  models.VoucherTypeFixed,
		DiscountValue: 15000,
		FirstTimeOnly: true,
		StartDate:     time.Now().AddDate(0, 0, -1),
		EndDate:       time.Now().AddDate(0, 1, 0),
		IsActive:      true,
	}
	db.Create(&voucher)

	// Order pertama pelanggan; teleponnya belum punya riwayat lain
	payloadBytes, _ := json.Marshal(map[string]interface{}{
		"items": []map[string]interface{}{{"menu_id": nasi.ID, "quantity": 1}},
	})
	url := fmt.Sprintf("/tables/%d/orders", table.ID)
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	db.First(&order)

	// Order yang sedang di-checkout tidak terhitung riwayat: apply harus lolos
	applyURL := fmt.Sprintf("/orders/%d/voucher", order.ID)
	payloadBytes, _ = json.Marshal(map[string]string{"code": "WELCOME"})
	req, _ = http.NewRequest("POST", applyURL, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&order, order.ID)
	assert.NotNil(t, order.VoucherID)
	assert.Equal(t, float64(15000), order.DiscountAmount)

	// Order kedua pelanggan yang sama: voucher pelanggan baru ditolak
	payloadBytes, _ = json.Marshal(map[string]interface{}{
		"items": []map[string]interface{}{{"menu_id": nasi.ID, "quantity": 1}},
	})
	req, _ = http.NewRequest("POST", url, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var second models.Order
	db.Order("id desc").First(&second)
	payloadBytes, _ = json.Marshal(map[string]string{"code": "WELCOME"})
	req, _ = http.NewRequest("POST", fmt.Sprintf("/orders/%d/voucher", second.ID),
		bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplyAndRemoveVoucherOnOrder(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t)
	table, nasi, _ := seedOrderFixtures(db)
	router := setupOrderRouter(db)

	voucher := models.Voucher{
		Code:          "DISKON10",
		DiscountType:  models.VoucherTypePercentage,
		DiscountValue: 10,
		MaxDiscount:   50000,
		StartDate:     time.Now().AddDate(0, 0, -1),
		EndDate:       time.Now().AddDate(0, 1, 0),
		UsageLimit:    1,
		IsActive:      true,
	}
	db.Create(&voucher)

	// Buat order lewat endpoint supaya item dan total konsisten
	payloadBytes, _ := json.Marshal(map[string]interface{}{
		"items": []map[string]interface{}{{"menu_id": nasi.ID, "quantity": 2}},
	})
	url := fmt.Sprintf("/tables/%d/orders", table.ID)
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	db.First(&order)

	// Apply: diskon 10% dari 80000, kuota langsung terpotong
	applyURL := fmt.Sprintf("/orders/%d/voucher", order.ID)
	payloadBytes, _ = json.Marshal(map[string]string{"code": "DISKON10"})
	req, _ = http.NewRequest("POST", applyURL, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(8000), data["discount"])
	assert.Equal(t, float64(72000), data["payable"])

	var updatedVoucher models.Voucher
	db.First(&updatedVoucher, voucher.ID)
	assert.Equal(t, 1, updatedVoucher.UsedCount)

	// Apply kedua ditolak: order sudah punya voucher
	req, _ = http.NewRequest("POST", applyURL, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Remove: kuota dikembalikan, diskon dihapus
	req, _ = http.NewRequest("DELETE", applyURL, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&order, order.ID)
	assert.Nil(t, order.VoucherID)
	assert.Equal(t, float64(0), order.DiscountAmount)

	db.First(&updatedVoucher, voucher.ID)
	assert.Equal(t, 0, updatedVoucher.UsedCount)
}
