// services/cleanup.go - Background retention for read notifications
package services

import (
	"log"
	"time"

	"edscrum/models"

	"gorm.io/gorm"
)

// CleanupService periodically purges read notifications past their
// retention window so the notifications table does not grow unbounded.
type CleanupService struct {
	db        *gorm.DB
	retention time.Duration
	interval  time.Duration
	stop      chan struct{}
}

func NewCleanupService(db *gorm.DB) *CleanupService {
	return &CleanupService{
		db:        db,
		retention: 30 * 24 * time.Hour,
		interval:  6 * time.Hour,
		stop:      make(chan struct{}),
	}
}

// Start launches the cleanup worker.
func (s *CleanupService) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.PurgeReadNotifications(); err != nil {
					log.Printf("notification cleanup failed: %v", err)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the cleanup worker.
func (s *CleanupService) Stop() {
	close(s.stop)
}

// PurgeReadNotifications deletes read notifications older than the
// retention window and reports how many were removed.
func (s *CleanupService) PurgeReadNotifications() error {
	cutoff := time.Now().Add(-s.retention)
	res := s.db.Where("read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("purged %d read notifications older than %s", res.RowsAffected, cutoff.Format(time.RFC3339))
	}
	return nil
}
