package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/resto-suite/kds"
	"github.com/yeremiapane/resto-suite/models"
	"github.com/yeremiapane/resto-suite/utils"
)

// Masa tunggu sebelum booking pending yang lewat jamnya dianggap hangus
const bookingGracePeriod = 30 * time.Minute

// BookingMonitor menyapu booking pending yang sudah melewati jadwalnya dan
// membebaskan slot serta meja yang tertahan.
type BookingMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
	Now      func() time.Time
}

func NewBookingMonitor(db *gorm.DB) *BookingMonitor {
	return &BookingMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Minute,
		Now:      time.Now,
	}
}

func (bm *BookingMonitor) Start() {
	go func() {
		ticker := time.NewTicker(bm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				bm.sweepExpired()
			case <-bm.StopChan:
				return
			}
		}
	}()
}

func (bm *BookingMonitor) Stop() {
	close(bm.StopChan)
}

// sweepExpired membatalkan booking pending/confirmed yang jadwalnya sudah
// lewat (plus masa tunggu) tanpa kedatangan tamu.
func (bm *BookingMonitor) sweepExpired() {
	now := bm.Now()
	cutoff := now.Add(-bookingGracePeriod)
	today := cutoff.Format("2006-01-02")
	timeOfDay := cutoff.Format("15:04")

	var expired []models.Booking
	if err := bm.DB.
		Where("status IN ? AND (reservation_date < ? OR (reservation_date = ? AND reservation_time <= ?))",
			[]string{models.BookingStatusPending, models.BookingStatusConfirmed},
			today, today, timeOfDay).
		Find(&expired).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching expired bookings: %v", err)
		return
	}

	for i := range expired {
		booking := expired[i]

		tx := bm.DB.Begin()

		booking.Status = models.BookingStatusCancelled
		booking.ReleaseSlot()
		booking.UpdatedAt = now
		if err := tx.Save(&booking).Error; err != nil {
			tx.Rollback()
			utils.ErrorLogger.Printf("Error expiring booking %d: %v", booking.ID, err)
			continue
		}

		// Lepaskan meja yang masih tertahan status reserved
		var table models.Table
		if err := tx.First(&table, booking.TableID).Error; err == nil &&
			table.Status == models.TableStatusReserved {
			table.Status = models.TableStatusAvailable
			if err := tx.Save(&table).Error; err != nil {
				tx.Rollback()
				utils.ErrorLogger.Printf("Error releasing table %d: %v", table.ID, err)
				continue
			}
		}

		if err := tx.Commit().Error; err != nil {
			utils.ErrorLogger.Printf("Error committing booking expiry: %v", err)
			continue
		}

		utils.InfoLogger.Printf("Booking %d expired (no-show), slot released", booking.ID)
		kds.BroadcastBookingUpdate(booking)
		kds.BroadcastStaffNotification(
			fmt.Sprintf("Booking #%d atas nama %s hangus (tidak hadir)", booking.ID, booking.CustomerName))
	}
}
