// services/notification_service.go - Preference-aware notification sink
package services

import (
	"log"

	"edscrum/models"

	"gorm.io/gorm"
)

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify stores a notification for a user if their preferences allow it.
// Fire-and-forget: failures are logged and never propagate to the caller,
// so a broken sink can never roll back the mutation that triggered it.
func (s *NotificationService) Notify(userID uint, kind models.NotificationType, title, message string) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		log.Printf("notification skipped, user %d not found: %v", userID, err)
		return
	}

	if !s.wantsNotification(&user, kind) {
		return
	}

	n := models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	}
	if err := s.db.Create(&n).Error; err != nil {
		log.Printf("failed to store notification for user %d: %v", userID, err)
	}
}

func (s *NotificationService) wantsNotification(user *models.User, kind models.NotificationType) bool {
	switch kind {
	case models.NotificationAward:
		return user.NotificationAwards
	case models.NotificationRanking, models.NotificationSystem:
		return user.NotificationRankings
	default:
		// Team and sprint notifications are always delivered.
		return true
	}
}

func (s *NotificationService) ListForUser(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
