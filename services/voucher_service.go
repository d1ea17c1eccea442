package services

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/models"
)

// Ongkos kirim default yang dihemat voucher free_shipping
const DefaultShippingFee = 30000

var (
	ErrVoucherNotFound  = errors.New("voucher not found")
	ErrVoucherNotValid  = errors.New("voucher is not valid for this order")
	ErrVoucherExhausted = errors.New("voucher usage limit reached")
)

// VoucherService memilih voucher dengan penghematan terbesar untuk satu
// keranjang. Semua perhitungan read-only; increment pemakaian ada di Redeem.
type VoucherService struct {
	DB          *gorm.DB
	ShippingFee float64
	// Now bisa di-override di test
	Now func() time.Time
}

func NewVoucherService(db *gorm.DB) *VoucherService {
	return &VoucherService{DB: db, ShippingFee: DefaultShippingFee, Now: time.Now}
}

type CartItem struct {
	MenuID   uint `json:"menu_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

// SelectVoucherRequest membawa identitas pemesan secara eksplisit.
// CustomerPhone boleh kosong; voucher khusus pelanggan baru butuh identitas
// sehingga tidak pernah terpilih tanpa nomor telepon.
type SelectVoucherRequest struct {
	OrderAmount   float64
	CartItems     []CartItem
	CustomerPhone string
	// false -> hanya voucher reguler yang dipertimbangkan
	IncludeFreeShipping bool
	// Order yang sedang di-checkout. Order ini tidak dihitung sebagai
	// riwayat, supaya pelanggan baru tetap terbaca baru saat apply.
	ExcludeOrderID uint
}

type VoucherOption struct {
	Voucher  models.Voucher `json:"voucher"`
	Discount float64        `json:"discount"`
}

type VoucherCombination struct {
	Voucher             *models.Voucher `json:"voucher,omitempty"`
	FreeShippingVoucher *models.Voucher `json:"free_shipping_voucher,omitempty"`
	TotalSavings        float64         `json:"total_savings"`
}

type SelectVoucherResult struct {
	BestCombination *VoucherCombination `json:"best_combination"`
	Alternatives    []VoucherOption     `json:"alternatives"`
	ActualTotal     float64             `json:"actual_total"`
}

// actualTotal menghitung total yang benar-benar dibayar: harga efektif tiap
// menu di keranjang, dibatasi agar tidak melebihi order amount yang dikirim.
func (s *VoucherService) actualTotal(req SelectVoucherRequest) (float64, error) {
	if len(req.CartItems) == 0 {
		return req.OrderAmount, nil
	}

	var total float64
	for _, item := range req.CartItems {
		var menu models.Menu
		if err := s.DB.First(&menu, item.MenuID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return 0, err
		}
		total += float64(item.Quantity) * menu.EffectivePrice()
	}

	if total > req.OrderAmount {
		total = req.OrderAmount
	}
	return total, nil
}

// priorOrderCount menghitung riwayat order pelanggan untuk aturan
// first-time-only. Order yang sedang di-checkout bukan riwayat.
func (s *VoucherService) priorOrderCount(req SelectVoucherRequest) (int64, error) {
	if req.CustomerPhone == "" {
		return 0, nil
	}
	query := s.DB.Model(&models.Order{}).Where("customer_phone = ?", req.CustomerPhone)
	if req.ExcludeOrderID != 0 {
		query = query.Where("id <> ?", req.ExcludeOrderID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Discount menghitung potongan satu voucher terhadap total.
// percentage -> min(total*value/100, maxDiscount); fixed -> min(value, total);
// free_shipping -> ongkos kirim yang dihemat. Dibulatkan ke rupiah penuh.
func (s *VoucherService) Discount(v *models.Voucher, total float64) float64 {
	var discount float64
	switch v.DiscountType {
	case models.VoucherTypePercentage:
		discount = math.Round(total * v.DiscountValue / 100)
		if discount > v.MaxDiscount {
			discount = v.MaxDiscount
		}
	case models.VoucherTypeFixed:
		discount = v.DiscountValue
		if discount > total {
			discount = total
		}
	case models.VoucherTypeFreeShipping:
		discount = s.ShippingFee
	}
	return math.Round(discount)
}

// isEligible menerapkan aturan kelayakan satu voucher untuk keranjang ini.
func (s *VoucherService) isEligible(v *models.Voucher, req SelectVoucherRequest, total float64, priorOrders int64) bool {
	if total < v.MinOrderValue {
		return false
	}

	if v.FirstTimeOnly {
		// Tanpa identitas tidak bisa dibuktikan pelanggan baru
		if req.CustomerPhone == "" || priorOrders > 0 {
			return false
		}
	}

	if v.HasMenuRestriction() {
		allowed := make(map[uint]bool, len(v.Menus))
		for _, m := range v.Menus {
			allowed[m.ID] = true
		}
		found := false
		for _, item := range req.CartItems {
			if allowed[item.MenuID] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// SelectBestVoucher memfilter katalog voucher aktif, menghitung diskon tiap
// kandidat, lalu memilih kombinasi dengan penghematan terbesar:
// reguler saja, reguler + free-shipping, atau free-shipping saja.
// Seri dimenangkan kandidat yang dievaluasi lebih dulu; antar voucher reguler
// dengan diskon sama, kode terkecil secara leksikografis yang menang.
func (s *VoucherService) SelectBestVoucher(req SelectVoucherRequest) (*SelectVoucherResult, error) {
	total, err := s.actualTotal(req)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var vouchers []models.Voucher
	if err := s.DB.Preload("Menus").
		Where("is_active = ? AND start_date <= ? AND end_date >= ? AND (usage_limit = 0 OR used_count < usage_limit)",
			true, now, now).
		Order("code asc").
		Find(&vouchers).Error; err != nil {
		return nil, err
	}

	// Deteksi pelanggan baru cukup sekali untuk semua voucher
	priorOrders, err := s.priorOrderCount(req)
	if err != nil {
		return nil, err
	}

	var regulars []VoucherOption
	var bestShipping *VoucherOption
	for i := range vouchers {
		v := vouchers[i]
		if !s.isEligible(&v, req, total, priorOrders) {
			continue
		}

		discount := s.Discount(&v, total)
		if v.DiscountType == models.VoucherTypeFreeShipping {
			if !req.IncludeFreeShipping {
				continue
			}
			// Iterasi sudah urut kode; > menjaga kode terkecil saat seri
			if bestShipping == nil || discount > bestShipping.Discount {
				bestShipping = &VoucherOption{Voucher: v, Discount: discount}
			}
			continue
		}
		regulars = append(regulars, VoucherOption{Voucher: v, Discount: discount})
	}

	// Urut diskon menurun, seri dipecah kode naik -> hasil deterministik
	sort.SliceStable(regulars, func(i, j int) bool {
		if regulars[i].Discount != regulars[j].Discount {
			return regulars[i].Discount > regulars[j].Discount
		}
		return strings.Compare(regulars[i].Voucher.Code, regulars[j].Voucher.Code) < 0
	})

	var bestRegular *VoucherOption
	if len(regulars) > 0 {
		bestRegular = &regulars[0]
	}

	// Tiga kandidat dievaluasi berurutan; pemenang harus strictly lebih besar
	// sehingga seri jatuh ke kandidat yang lebih awal.
	var best *VoucherCombination
	consider := func(c *VoucherCombination) {
		if c == nil {
			return
		}
		if best == nil || c.TotalSavings > best.TotalSavings {
			best = c
		}
	}

	if bestRegular != nil {
		consider(&VoucherCombination{
			Voucher:      &bestRegular.Voucher,
			TotalSavings: bestRegular.Discount,
		})
	}
	if bestRegular != nil && bestShipping != nil {
		consider(&VoucherCombination{
			Voucher:             &bestRegular.Voucher,
			FreeShippingVoucher: &bestShipping.Voucher,
			TotalSavings:        bestRegular.Discount + bestShipping.Discount,
		})
	}
	if bestShipping != nil {
		consider(&VoucherCombination{
			FreeShippingVoucher: &bestShipping.Voucher,
			TotalSavings:        bestShipping.Discount,
		})
	}

	alternatives := make([]VoucherOption, 0, 3)
	for i := 1; i < len(regulars) && len(alternatives) < 3; i++ {
		alternatives = append(alternatives, regulars[i])
	}

	return &SelectVoucherResult{
		BestCombination: best,
		Alternatives:    alternatives,
		ActualTotal:     total,
	}, nil
}

// ValidateAndCompute memvalidasi satu kode voucher untuk keranjang ini dan
// mengembalikan diskonnya. Dipakai jalur checkout order.
func (s *VoucherService) ValidateAndCompute(code string, req SelectVoucherRequest) (*VoucherOption, error) {
	var voucher models.Voucher
	if err := s.DB.Preload("Menus").Where("code = ?", code).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}

	now := s.Now()
	if !voucher.IsActive || now.Before(voucher.StartDate) || now.After(voucher.EndDate) {
		return nil, ErrVoucherNotValid
	}
	if voucher.IsExhausted() {
		return nil, ErrVoucherExhausted
	}

	total, err := s.actualTotal(req)
	if err != nil {
		return nil, err
	}

	priorOrders, err := s.priorOrderCount(req)
	if err != nil {
		return nil, err
	}

	if !s.isEligible(&voucher, req, total, priorOrders) {
		return nil, ErrVoucherNotValid
	}

	return &VoucherOption{Voucher: voucher, Discount: s.Discount(&voucher, total)}, nil
}

// Redeem menaikkan used_count secara kondisional. UPDATE dengan guard
// used_count < usage_limit menjamin kuota tidak pernah terlampaui walau
// dua redemption berjalan bersamaan.
func (s *VoucherService) Redeem(voucherID uint) error {
	res := s.DB.Model(&models.Voucher{}).
		Where("id = ? AND is_active = ? AND (usage_limit = 0 OR used_count < usage_limit)", voucherID, true).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVoucherExhausted
	}
	return nil
}
