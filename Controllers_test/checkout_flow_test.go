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

// Alur lengkap dine-in: sesi meja -> order -> voucher -> bayar tunai ->
// dapur memasak -> order selesai.
func TestCheckoutFlow(t *testing.T) {
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Table{}, &models.Customer{},
		&models.MenuCategory{}, &models.Menu{}, &models.Voucher{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	chef := models.User{Name: "chef", Email: "chef@resto.local", Password: "hashed", Role: "chef"}
	db.Create(&chef)

	table := models.Table{TableNumber: "A1", Capacity: 4, Status: models.TableStatusOccupied}
	db.Create(&table)
	sessionKey := "flow-session"
	customer := models.Customer{TableID: &table.ID, SessionKey: &sessionKey,
		Phone: "0811555666", Status: "active"}
	db.Create(&customer)

	cat := models.MenuCategory{Name: "Makanan"}
	db.Create(&cat)
	menu := models.Menu{CategoryID: cat.ID, Name: "Ayam Bakar", Price: 45000, Stock: 5}
	db.Create(&menu)

	voucher := models.Voucher{
		Code:          "MAKAN5K",
		DiscountType:  models.VoucherTypeFixed,
		DiscountValue: 5000,
		StartDate:     time.Now().AddDate(0, 0, -1),
		EndDate:       time.Now().AddDate(0, 1, 0),
		IsActive:      true,
	}
	db.Create(&voucher)

	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", chef.ID)
		c.Set("role", "chef")
		c.Next()
	})
	orderCtrl := controllers.NewOrderController(db)
	paymentCtrl := controllers.NewPaymentController(db)
	router.POST("/tables/:table_id/orders", orderCtrl.CreateOrder)
	router.POST("/orders/:order_id/voucher", orderCtrl.ApplyVoucher)
	router.POST("/orders/:order_id/payments/cash", paymentCtrl.CreateCashPayment)
	router.PATCH("/orders/:order_id/start-cooking", orderCtrl.StartCooking)
	router.PATCH("/orders/:order_id/finish-cooking", orderCtrl.FinishCooking)
	router.PATCH("/orders/:order_id/complete", orderCtrl.CompleteOrder)

	do := func(method, url string, payload interface{}) *httptest.ResponseRecorder {
		var body *bytes.Buffer
		if payload != nil {
			b, _ := json.Marshal(payload)
			body = bytes.NewBuffer(b)
		} else {
			body = bytes.NewBuffer(nil)
		}
		req, _ := http.NewRequest(method, url, body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// 1. Order dua porsi dari sesi meja
	w := do("POST", fmt.Sprintf("/tables/%d/orders", table.ID), map[string]interface{}{
		"items": []map[string]interface{}{{"menu_id": menu.ID, "quantity": 2}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	db.First(&order)
	assert.Equal(t, float64(90000), order.TotalAmount)

	// 2. Pasang voucher: payable turun menjadi 85000
	w = do("POST", fmt.Sprintf("/orders/%d/voucher", order.ID),
		map[string]string{"code": "MAKAN5K"})
	assert.Equal(t, http.StatusOK, w.Code)

	// 3. Tunai kurang dari payable ditolak
	w = do("POST", fmt.Sprintf("/orders/%d/payments/cash", order.ID),
		map[string]interface{}{"cash_received": 80000})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 4. Tunai cukup: payment sukses, kembalian dihitung, order menjadi paid
	w = do("POST", fmt.Sprintf("/orders/%d/payments/cash", order.ID),
		map[string]interface{}{"cash_received": 100000})
	assert.Equal(t, http.StatusCreated, w.Code)

	var payment models.Payment
	db.Where("order_id = ?", order.ID).First(&payment)
	assert.Equal(t, "success", payment.Status)
	assert.Equal(t, float64(85000), payment.Amount)
	assert.Equal(t, float64(15000), payment.Change)

	db.First(&order, order.ID)
	assert.Equal(t, "paid", order.Status)

	// 5. Dapur: mulai masak, chef tercatat di order
	w = do("PATCH", fmt.Sprintf("/orders/%d/start-cooking", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&order, order.ID)
	assert.Equal(t, "in_progress", order.Status)
	assert.NotNil(t, order.ChefID)
	assert.Equal(t, chef.ID, *order.ChefID)

	// 6. Selesai masak lalu disajikan
	w = do("PATCH", fmt.Sprintf("/orders/%d/finish-cooking", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do("PATCH", fmt.Sprintf("/orders/%d/complete", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&order, order.ID)
	assert.Equal(t, "completed", order.Status)
	assert.NotNil(t, order.FinishCookingTime)
}
