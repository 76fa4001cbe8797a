// models/sprint.go
package models

import "time"

type SprintStatus string

const (
	SprintPlaneamento SprintStatus = "PLANEAMENTO"
	SprintEmCurso     SprintStatus = "EM_CURSO"
	SprintConcluido   SprintStatus = "CONCLUIDO"
)

type UserStoryStatus string

const (
	StoryTodo  UserStoryStatus = "TODO"
	StoryDoing UserStoryStatus = "DOING"
	StoryDone  UserStoryStatus = "DONE"
)

type Sprint struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"not null;size:100"`
	Goal        string       `json:"goal" gorm:"type:text"`
	Status      SprintStatus `json:"status" gorm:"not null;default:'PLANEAMENTO';size:20"`
	ProjectID   uint         `json:"project_id" gorm:"not null;index"`
	Project     *Project     `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	CreatedByID uint         `json:"created_by_id" gorm:"not null;index"`
	CreatedBy   *User        `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
	StartDate   *time.Time   `json:"start_date"`
	EndDate     *time.Time   `json:"end_date"`

	UserStories []UserStory `json:"user_stories,omitempty" gorm:"foreignKey:SprintID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Sprint) TableName() string {
	return "sprints"
}

type UserStory struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"not null;size:200"`
	Description string          `json:"description" gorm:"type:text"`
	Status      UserStoryStatus `json:"status" gorm:"not null;default:'TODO';size:20"`
	StoryPoints int             `json:"story_points" gorm:"default:0"`
	SprintID    uint            `json:"sprint_id" gorm:"not null;index"`
	Sprint      *Sprint         `json:"sprint,omitempty" gorm:"foreignKey:SprintID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserStory) TableName() string {
	return "user_stories"
}
