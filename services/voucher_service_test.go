package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/utils"
)

var voucherTestNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func setupVoucherTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&models.MenuCategory{}, &models.Menu{}, &models.Voucher{},
		&models.Customer{}, &models.Order{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestVoucherService(db *gorm.DB) *VoucherService {
	svc := NewVoucherService(db)
	svc.Now = func() time.Time { return voucherTestNow }
	return svc
}

// voucher aktif sebulan di sekitar voucherTestNow
func activeVoucher(code, discountType string, value, maxDiscount, minOrder float64) models.Voucher {
	return models.Voucher{
		Code:          code,
		DiscountType:  discountType,
		DiscountValue: value,
		MaxDiscount:   maxDiscount,
		MinOrderValue: minOrder,
		StartDate:     voucherTestNow.AddDate(0, 0, -15),
		EndDate:       voucherTestNow.AddDate(0, 0, 15),
		IsActive:      true,
	}
}

func TestDiscountComputation(t *testing.T) {
	utils.InitLogger()
	db := setupVoucherTestDB(t)
	svc := newTestVoucherService(db)

	// Percentage dibulatkan lalu dibatasi max_discount
	pct := activeVoucher("PCT10", models.VoucherTypePercentage, 10, 20000, 0)
	assert.Equal(t, float64(10000), svc.Discount(&pct, 100000))
	assert.Equal(t, float64(20000), svc.Discount(&pct, 500000))
	// 10% dari 33333 = 3333.3 -> dibulatkan ke 3333
	assert.Equal(t, float64(3333), svc.Discount(&pct, 33333))

	// Fixed tidak boleh melebihi total
	fixed := activeVoucher("FIX25", models.VoucherTypeFixed, 25000, 0, 0)
	assert.Equal(t, float64(25000), svc.Discount(&fixed, 100000))
	assert.Equal(t, float64(15000), svc.Discount(&fixed, 15000))

	// Free shipping menghemat ongkos kirim
	ship := activeVoucher("SHIP", models.VoucherTypeFreeShipping, 0, 0, 0)
	assert.Equal(t, float64(DefaultShippingFee), svc.Discount(&ship, 100000))
}

func TestActualTotalUsesPromoPriceAndCap(t *testing.T) {
	utils.InitLogger()
	db := setupVoucherTestDB(t)
	svc := newTestVoucherService(db)

	cat := models.MenuCategory{Name: "Makanan"}
	db.Create(&cat)
	promo := 40000.0
	nasi := models.Menu{CategoryID: cat.ID, Name: "Nasi Goreng", Price: 50000, PromoPrice: &promo}
	teh := models.Menu{CategoryID: cat.ID, Name: "Es Teh", Price: 10000}
	db.Create(&nasi)
	db.Create(&teh)

	v := activeVoucher("PCT10", models.VoucherTypePercentage, 10, 100000, 0)
	db.Create(&v)

	// 2x40000 + 1x10000 = 90000; harga promo yang dihitung, bukan harga normal
	result, err := svc.SelectBestVoucher(SelectVoucherRequest{
		OrderAmount: 110000,
		CartItems: []CartItem{
			{MenuID: nasi.ID, Quantity: 2},
			{MenuID: teh.ID, Quantity: 1},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, float64(90000), result.ActualTotal)
	assert.Equal(t, float64(9000), result.BestCombination.TotalSavings)

	// Total keranjang dibatasi order amount yang dikirim
	result, err = svc.SelectBestVoucher(SelectVoucherRequest{
		OrderAmount: 60000,
		CartItems:   []CartItem{{MenuID: nasi.ID, Quantity: 2}},
	})
	assert.NoError(t, err)
	assert.Equal(t, float64(60000), result.ActualTotal)

	// Menu yang sudah dihapus dilewati tanpa error
	result, err = svc.SelectBestVoucher(SelectVoucherRequest{
		OrderAmount: 50000,
		CartItems: []CartItem{
			{MenuID: teh.ID, Quantity: 1},
			{MenuID: 999, Quantity: 2},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, float64(10000), result.ActualTotal)
}

func TestEligibilityRules(t *testing.T) {
	utils.InitLogger()
	db := setupVoucherTestDB(t)
	svc := newTestVoucherService(db)

	// Di bawah minimum order
	minOrder := activeVoucher("MIN100", models.VoucherTypeFixed, 10000, 0, 100000)
	db.Create(&minOrder)

	// Di luar masa berlaku
	expired := activeVoucher("OLD", models.VoucherTypeFixed, 50000, 0, 0)
	expired.StartDate = voucherTestNow.AddDate(0, -2, 0)
	expired.EndDate = voucherTestNow.AddDate(0, -1, 0)
	db.Create(&expired)

	// Nonaktif
	inactive := activeVoucher("OFF", models.VoucherTypeFixed, 50000, 0, 0)
	inactive.IsActive = false
	db.Create(&inactive)

	// Kuota habis
	exhausted := activeVoucher("FULL", models.VoucherTypeFixed, 50000, 0, 0)
	exhausted.UsageLimit = 5
	exhausted.UsedCount = 5
	db.Create(&exhausted)

	result, err := svc.SelectBestVoucher(SelectVoucherRequest{OrderAmount: 50000})
	assert.NoError(t, err)
	assert.Nil(t, result.BestCombination)
	assert.Empty(t, result.Alternatives)

	// Naikkan total: MIN100 jadi satu-satunya yang layak
	result, err = svc.SelectBestVoucher(SelectVoucherRequest{OrderAmount: 150000})
	assert.NoError(t, err)
	assert.NotNil(t, result.BestCombination)
	assert.Equal(t, "MIN100", result.BestCombination.Voucher.Code)
}

func TestFirstTimeOnlyNeedsIdentity(t *testing.T) {
	utils.InitLogger()
	db := setupVoucherTestDB(t)
	svc := newTestVoucherService(db)

	welcome := activeVoucher("WELCOME", models.VoucherTypeFixed, 30000, 0, 0)
	welcome.FirstTimeOnly = true
	db.Create(&welcome)

	// Tanpa nomor telepon tidak pernah layak
	result, err := svc.SelectBestVoucher(SelectVoucherRequest{OrderAmount: 100000})
	assert.NoError(t, err)
	assert.Nil(t, result.BestCombination)

	// Pelanggan baru dengan telepon -> layak
	result, err = svc.SelectBestVoucher(SelectVoucherRequest{
		OrderAmount:   100000,
		CustomerPhone: "0811111111",
	})
	assert.NoError(t, err)
	assert.NotNil(t, result.BestCombination)
	assert.Equal(t, "WELCOME", result.BestCombination.Voucher.Code)

	// Punya order sebelumnya -> tidak layak lagi
	customer := models.Customer{Status: "finished"}
	db.Create(&customer)
	db.Create(&models.Order{CustomerID: customer.ID, CustomerPhone: "0811111111", Status: OrderStatusCompleted})

	result, err = svc.SelectBestVoucher(SelectVoucherRequest{
		OrderAmount:   100000,
		CustomerPhone: "0811111111",
	})
	assert.NoError(t, err)
	assert.Nil(t, result.BestCombination)
}

func TestFirstTimeOnlyIgnoresOrderBeingCheckedOut(t *testing.T) {
	utils.InitLogger()
	db := setupVoucherTestDB(t)
	svc := newTestVoucherService(db)

	welcome := activeVoucher("WELCOME", models.VoucherTypeFixed, 30000, 0, 0)
	welcome.FirstTimeOnly = true
	db.Create(&welcome)

	// Satu-satunya order pelanggan adalah order yang sedang di-checkout;
	// order itu bukan riwayat, jadi voucher pelanggan baru tetap layak
	customer := models.Customer{Status: "active"}
	db.Create(&customer)
	current := models.Order{
		CustomerID:    customer.ID,
		CustomerPhone: "0822222222",
		Status:        OrderStatusPendingPayment,
		TotalAmount:   100000,
	}
	db.Create(&current)

	option, err := svc.ValidateAndCompute("WELCOME", SelectVoucherRequest{
		OrderAmount:    100000,
		CustomerPhone:  "0822222222",
		ExcludeOrderID: current.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, float64(30000), option.Discount)

	// Order lain dengan telepon yang sama tetap terhitung riwayat
	db.Create(&models.Order{CustomerID: customer.ID, CustomerPhone: "0822222222", Status: OrderStatusCompleted})
	_, err = svc.ValidateAndCompute("WELCOME", SelectVoucherRequest{
		OrderAmount:    100000,
		CustomerPhone:  "0822222222",
		ExcludeOrderID: current.ID,
	})
	assert.ErrorIs(t, err, ErrVoucherNotValid)
}

func TestMenuRestriction(t *testing.T) {
	utils.InitLogger()
	db := setupVoucherTestDB(t)
	svc := newTestVoucherService(db)

	cat := models.MenuCategory{Name: "Minuman"}
	db.Create(&cat)
	kopi := models.Menu{CategoryID: cat.ID, Name: "Kopi", Price: 25000}
	teh := models.Menu{CategoryID: cat.ID, Name: "Teh", Price: 10000}
	db.Create(&kopi)
	db.Create(&teh)

	coffeeOnly := activeVoucher("COFFEE", models.VoucherTypeFixed, 5000, 0, 0)
	coffeeOnly.Menus = []models.Menu{kopi}
	db.Create(&coffeeOnly)

	// Keranjang tanpa menu yang dibatasi -> tidak layak
	result, err := svc.SelectBestVoucher(SelectVoucherRequest{
		OrderAmount: 10000,
		CartItems:   []CartItem{{MenuID: teh.ID, Quantity: 1}},
	})
	assert.NoError(t, err)
	assert.Nil(t, result.BestCombination)

	// Cukup satu item yang cocok
	result, err = svc.SelectBestVoucher(SelectVoucherRequest{
		OrderAmount: 35000,
		CartItems: []CartItem{
			{MenuID: teh.ID, Quantity: 1},
			{MenuID: kopi.ID, Quantity: 1},
		},
	})
	assert.NoError(t, err)
	assert.NotNil(t, result.BestCombination)
	assert.Equal(t, "COFFEE", result.BestCombination.Voucher.Code)
}

func TestBestCombinationAndAlternatives(t *testing.T) {
	utils.InitLogger()
	db := setupVoucherTestDB(t)
	svc := newTestVoucherService(db)

	v1 := activeVoucher("AAA", models.VoucherTypeFixed, 20000, 0, 0)
	v2 := activeVoucher("BBB", models.VoucherTypeFixed, 15000, 0, 0)
	v3 := activeVoucher("CCC", models.VoucherTypeFixed, 10000, 0, 0)
	v4 := activeVoucher("DDD", models.VoucherTypeFixed, 5000, 0, 0)
	v5 := activeVoucher("EEE", models.VoucherTypeFixed, 2500, 0, 0)
	ship := activeVoucher("SHIP", models.VoucherTypeFreeShipping, 0, 0, 0)
	for _, v := range []models.Voucher{v1, v2, v3, v4, v5, ship} {
		db.Create(&v)
	}

	// Dengan free shipping: reguler terbaik + free shipping menang
	result, err := svc.SelectBestVoucher(SelectVoucherRequest{
		OrderAmount:         200000,
		IncludeFreeShipping: true,
	})
	assert.NoError(t, err)
	best := result.BestCombination
	assert.NotNil(t, best)
	assert.Equal(t, "AAA", best.Voucher.Code)
	assert.NotNil(t, best.FreeShippingVoucher)
	assert.Equal(t, "SHIP", best.FreeShippingVoucher.Code)
	assert.Equal(t, float64(20000+DefaultShippingFee), best.TotalSavings)

	// Alternatif maksimal tiga, urut diskon menurun
	assert.Len(t, result.Alternatives, 3)
	assert.Equal(t, "BBB", result.Alternatives[0].Voucher.Code)
	assert.Equal(t, "CCC", result.Alternatives[1].Voucher.Code)
	assert.Equal(t, "DDD", result.Alternatives[2].Voucher.Code)

	// Tanpa free shipping: voucher pengiriman diabaikan sama sekali
	result, err = svc.SelectBestVoucher(SelectVoucherRequest{OrderAmount: 200000})
	assert.NoError(t, err)
	assert.Equal(t, "AAA", result.BestCombination.Voucher.Code)
	assert.Nil(t, result.BestCombination.FreeShippingVoucher)
	assert.Equal(t, float64(20000), result.BestCombination.TotalSavings)
}

func TestTieBreakByCode(t *testing.T) {
	utils.InitLogger()
	db := setupVoucherTestDB(t)
	svc := newTestVoucherService(db)

	// Diskon identik; kode terkecil secara leksikografis harus menang
	zebra := activeVoucher("ZEBRA", models.VoucherTypeFixed, 10000, 0, 0)
	alpha := activeVoucher("ALPHA", models.VoucherTypeFixed, 10000, 0, 0)
	db.Create(&zebra)
	db.Create(&alpha)

	result, err := svc.SelectBestVoucher(SelectVoucherRequest{OrderAmount: 100000})
	assert.NoError(t, err)
	assert.Equal(t, "ALPHA", result.BestCombination.Voucher.Code)
	assert.Equal(t, "ZEBRA", result.Alternatives[0].Voucher.Code)
}

func TestValidateAndCompute(t *testing.T) {
	utils.InitLogger()
	db := setupVoucherTestDB(t)
	svc := newTestVoucherService(db)

	v := activeVoucher("PCT10", models.VoucherTypePercentage, 10, 50000, 20000)
	db.Create(&v)

	// Kode tidak ada
	_, err := svc.ValidateAndCompute("NOPE", SelectVoucherRequest{OrderAmount: 100000})
	assert.ErrorIs(t, err, ErrVoucherNotFound)

	// Di bawah minimum order
	_, err = svc.ValidateAndCompute("PCT10", SelectVoucherRequest{OrderAmount: 10000})
	assert.ErrorIs(t, err, ErrVoucherNotValid)

	// Valid
	option, err := svc.ValidateAndCompute("PCT10", SelectVoucherRequest{OrderAmount: 100000})
	assert.NoError(t, err)
	assert.Equal(t, float64(10000), option.Discount)

	// Kuota habis
	db.Model(&models.Voucher{}).Where("code = ?", "PCT10").
		Updates(map[string]interface{}{"usage_limit": 1, "used_count": 1})
	_, err = svc.ValidateAndCompute("PCT10", SelectVoucherRequest{OrderAmount: 100000})
	assert.ErrorIs(t, err, ErrVoucherExhausted)
}

func TestRedeemGuardsQuota(t *testing.T) {
	utils.InitLogger()
	db := setupVoucherTestDB(t)
	svc := newTestVoucherService(db)

	v := activeVoucher("ONCE", models.VoucherTypeFixed, 10000, 0, 0)
	v.UsageLimit = 1
	db.Create(&v)

	assert.NoError(t, svc.Redeem(v.ID))
	// Kuota sudah habis; redemption kedua ditolak
	assert.ErrorIs(t, svc.Redeem(v.ID), ErrVoucherExhausted)

	var reloaded models.Voucher
	db.First(&reloaded, v.ID)
	assert.Equal(t, 1, reloaded.UsedCount)

	// usage_limit = 0 berarti tanpa batas
	unlimited := activeVoucher("FREE", models.VoucherTypeFixed, 5000, 0, 0)
	db.Create(&unlimited)
	for i := 0; i < 5; i++ {
		assert.NoError(t, svc.Redeem(unlimited.ID))
	}
}
