// models/notification.go
package models

import "time"

type NotificationType string

const (
	NotificationAward   NotificationType = "AWARD"
	NotificationTeam    NotificationType = "TEAM"
	NotificationSprint  NotificationType = "SPRINT"
	NotificationSystem  NotificationType = "SYSTEM"
	NotificationRanking NotificationType = "RANKING"
)

type Notification struct {
	ID      uint             `json:"id" gorm:"primaryKey"`
	UserID  uint             `json:"user_id" gorm:"not null;index"`
	User    *User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Type    NotificationType `json:"type" gorm:"not null;size:20"`
	Title   string           `json:"title" gorm:"not null;size:200"`
	Message string           `json:"message" gorm:"type:text"`
	Read    bool             `json:"read" gorm:"not null;default:false;index"`

	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
