// models/score.go
package models

import "time"

// Score caches a running point total per user (UserID set) or per team
// (TeamID set, UserID null). It is never the source of truth: the total is
// always re-derivable by summing the grant rows, and recomputes do exactly
// that.
type Score struct {
	ID          uint  `json:"id" gorm:"primaryKey"`
	UserID      *uint `json:"user_id" gorm:"index"`
	User        *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TeamID      *uint `json:"team_id" gorm:"index"`
	Team        *Team `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	TotalPoints int   `json:"total_points" gorm:"not null;default:0"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (Score) TableName() string {
	return "scores"
}
