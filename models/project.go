// models/project.go
package models

import "time"

type ProjectStatus string

const (
	ProjectPlaneamento ProjectStatus = "PLANEAMENTO"
	ProjectEmCurso     ProjectStatus = "EM_CURSO"
	ProjectConcluido   ProjectStatus = "CONCLUIDO"
)

type Project struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	Name        string        `json:"name" gorm:"not null;size:100"`
	SprintGoals string        `json:"sprint_goals" gorm:"type:text"`
	Status      ProjectStatus `json:"status" gorm:"not null;default:'PLANEAMENTO';size:20;index"`
	CourseID    uint          `json:"course_id" gorm:"not null;index"`
	Course      *Course       `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	StartDate   *time.Time    `json:"start_date"`
	EndDate     *time.Time    `json:"end_date"`

	Sprints []Sprint `json:"sprints,omitempty" gorm:"foreignKey:ProjectID"`
	Teams   []Team   `json:"teams,omitempty" gorm:"foreignKey:ProjectID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}
