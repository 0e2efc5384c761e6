package storage

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/bigjohnmusic/bigjohn-api/models"
)

// StartOrphanSweeper launches a background goroutine that periodically
// deletes object-store uploads that were never attached to content,
// e.g. after a partial multi-file VIP create failure. Best-effort.
func StartOrphanSweeper(db *gorm.DB, store ObjectStore, interval, ttl time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			sweepOnce(db, store, ttl)
		}
	}()
}

func sweepOnce(db *gorm.DB, store ObjectStore, ttl time.Duration) {
	var items []models.UploadedObject
	cutoff := time.Now().Add(-ttl)
	if err := db.Where("attached = ? AND created_at <= ?", false, cutoff).Limit(100).Find(&items).Error; err != nil {
		log.Printf("orphan sweeper query failed: %v", err)
		return
	}
	for _, it := range items {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := store.Delete(ctx, it.Key)
		cancel()
		if err != nil {
			log.Printf("orphan sweeper delete object failed key=%s: %v", it.Key, err)
			continue
		}
		// Remove the row only after the object is gone
		if err := db.Delete(&models.UploadedObject{}, it.ID).Error; err != nil {
			log.Printf("orphan sweeper delete row failed: %v", err)
		}
	}
}
