// services/course_service.go - Courses and enrollment
package services

import (
	"errors"
	"strings"

	"edscrum/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseService struct {
	db *gorm.DB
}

func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

// CreateCourse persists a course owned by a teacher.
func (s *CourseService) CreateCourse(teacherID uint, course *models.Course) error {
	var teacher models.User
	if err := s.db.First(&teacher, teacherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !teacher.IsTeacher() {
		return ErrForbidden
	}

	course.TeacherID = teacherID
	if course.Code == "" {
		course.Code = generateCourseCode()
	}
	return s.db.Create(course).Error
}

// generateCourseCode produces a short access code students use to enroll.
func generateCourseCode() string {
	return strings.ToUpper(uuid.New().String()[:8])
}

func (s *CourseService) GetCourse(courseID uint) (*models.Course, error) {
	var course models.Course
	err := s.db.Preload("Teacher").First(&course, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *CourseService) ListCourses() ([]models.Course, error) {
	var courses []models.Course
	err := s.db.Preload("Teacher").Order("year DESC, semester DESC, name ASC").Find(&courses).Error
	return courses, err
}

func (s *CourseService) ListCoursesByTeacher(teacherID uint) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.Where("teacher_id = ?", teacherID).Order("year DESC, semester DESC").Find(&courses).Error
	return courses, err
}

func (s *CourseService) ListCoursesByStudent(studentID uint) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.student_id = ?", studentID).
		Find(&courses).Error
	return courses, err
}

// Enroll joins a student to a course using its access code. The (student,
// course) pair is unique.
func (s *CourseService) Enroll(studentID, courseID uint, code string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if course.Code != "" && course.Code != code {
			return ErrInvalidCode
		}

		var student models.User
		if err := tx.First(&student, studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if student.Role != models.RoleStudent {
			return ErrForbidden
		}

		var count int64
		err := tx.Model(&models.Enrollment{}).
			Where("student_id = ? AND course_id = ?", studentID, courseID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyEnrolled
		}

		return tx.Create(&models.Enrollment{StudentID: studentID, CourseID: courseID}).Error
	})
}

func (s *CourseService) EnrolledStudents(courseID uint) ([]models.User, error) {
	var students []models.User
	err := s.db.Joins("JOIN enrollments ON enrollments.student_id = users.id").
		Where("enrollments.course_id = ?", courseID).
		Order("users.name ASC").
		Find(&students).Error
	return students, err
}
