// models/course.go
package models

import "time"

type Course struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;size:100"`
	Tag         string `json:"tag" gorm:"size:20"`
	Code        string `json:"-" gorm:"size:50"`
	Description string `json:"description" gorm:"type:text"`
	Semester    int    `json:"semester"`
	Year        int    `json:"year"`
	TeacherID   uint   `json:"teacher_id" gorm:"not null;index"`
	Teacher     *User  `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`

	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:CourseID"`
	Projects    []Project    `json:"projects,omitempty" gorm:"foreignKey:CourseID"`
	Teams       []Team       `json:"teams,omitempty" gorm:"foreignKey:CourseID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

// Enrollment links a student to a course. One row per (student, course) pair.
type Enrollment struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	StudentID uint    `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	CourseID  uint    `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	Student   *User   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course    *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`

	CreatedAt time.Time `json:"created_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
