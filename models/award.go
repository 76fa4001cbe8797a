// models/award.go
package models

import "time"

type AwardType string

const (
	AwardManual    AwardType = "MANUAL"
	AwardAutomatic AwardType = "AUTOMATIC"
)

type AwardTarget string

const (
	TargetIndividual AwardTarget = "INDIVIDUAL"
	TargetTeam       AwardTarget = "TEAM"
)

// Award is a definition in the catalog. Grant rows copy Points at grant
// time, so editing a definition only affects future grants.
type Award struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	Name        string      `json:"name" gorm:"not null;uniqueIndex;size:100"`
	Description string      `json:"description" gorm:"not null;type:text"`
	Points      int         `json:"points" gorm:"not null;default:0"`
	Type        AwardType   `json:"type" gorm:"not null;size:20"`
	TargetType  AwardTarget `json:"target_type" gorm:"not null;size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Award) TableName() string {
	return "awards"
}

// StudentAward is one grant instance for a student, optionally scoped to a
// project. At most one grant per (student, award, project) triple.
type StudentAward struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	StudentID    uint     `json:"student_id" gorm:"not null;index;uniqueIndex:idx_student_award_grant"`
	Student      *User    `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	AwardID      uint     `json:"award_id" gorm:"not null;index;uniqueIndex:idx_student_award_grant"`
	Award        *Award   `json:"award,omitempty" gorm:"foreignKey:AwardID"`
	ProjectID    *uint    `json:"project_id" gorm:"uniqueIndex:idx_student_award_grant"`
	Project      *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	PointsEarned int      `json:"points_earned" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (StudentAward) TableName() string {
	return "student_awards"
}

// TeamAward is one grant instance for a team.
type TeamAward struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	TeamID       uint     `json:"team_id" gorm:"not null;index;uniqueIndex:idx_team_award_grant"`
	Team         *Team    `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	AwardID      uint     `json:"award_id" gorm:"not null;index;uniqueIndex:idx_team_award_grant"`
	Award        *Award   `json:"award,omitempty" gorm:"foreignKey:AwardID"`
	ProjectID    *uint    `json:"project_id" gorm:"uniqueIndex:idx_team_award_grant"`
	Project      *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	PointsEarned int      `json:"points_earned" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (TeamAward) TableName() string {
	return "team_awards"
}
