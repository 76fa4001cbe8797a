// services/facts.go - Consolidated fact queries for the rule evaluator
package services

import (
	"errors"

	"edscrum/models"

	"gorm.io/gorm"
)

// FactProvider exposes the aggregate facts the rule evaluator's milestone
// predicates read. Keeping them behind one interface makes the predicates
// unit-testable against mocked facts, independent of storage.
type FactProvider interface {
	IsEnrolled(studentID, courseID uint) (bool, error)
	UserRole(userID uint) (models.UserRole, error)
	DistinctProjectCount(userID uint) (int, error)
	SprintCountCreated(userID uint) (int, error)
	CompletedProjectCount(userID uint) (int, error)
	ProjectStatus(projectID uint) (models.ProjectStatus, error)
	CourseRank(studentID, courseID uint) (int, error)
	EnrolledCourseIDs(studentID uint) ([]uint, error)
}

type gormFacts struct {
	db     *gorm.DB
	scores *ScoreService
}

func NewFactProvider(db *gorm.DB, scores *ScoreService) FactProvider {
	return &gormFacts{db: db, scores: scores}
}

func (f *gormFacts) IsEnrolled(studentID, courseID uint) (bool, error) {
	var count int64
	err := f.db.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (f *gormFacts) UserRole(userID uint) (models.UserRole, error) {
	var user models.User
	if err := f.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return user.Role, nil
}

// DistinctProjectCount counts the distinct projects across every team the
// user belongs to.
func (f *gormFacts) DistinctProjectCount(userID uint) (int, error) {
	teamIDs, err := TeamIDsOfUser(f.db, userID)
	if err != nil {
		return 0, err
	}
	if len(teamIDs) == 0 {
		return 0, nil
	}

	var count int64
	err = f.db.Model(&models.Team{}).
		Where("id IN ? AND project_id IS NOT NULL", teamIDs).
		Distinct("project_id").
		Count(&count).Error
	return int(count), err
}

func (f *gormFacts) SprintCountCreated(userID uint) (int, error) {
	var count int64
	err := f.db.Model(&models.Sprint{}).
		Where("created_by_id = ?", userID).
		Count(&count).Error
	return int(count), err
}

func (f *gormFacts) CompletedProjectCount(userID uint) (int, error) {
	teamIDs, err := TeamIDsOfUser(f.db, userID)
	if err != nil {
		return 0, err
	}
	if len(teamIDs) == 0 {
		return 0, nil
	}

	var count int64
	err = f.db.Model(&models.Project{}).
		Where("status = ?", models.ProjectConcluido).
		Where("id IN (?)", f.db.Model(&models.Team{}).
			Where("id IN ? AND project_id IS NOT NULL", teamIDs).
			Select("project_id")).
		Count(&count).Error
	return int(count), err
}

func (f *gormFacts) ProjectStatus(projectID uint) (models.ProjectStatus, error) {
	var project models.Project
	if err := f.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return project.Status, nil
}

func (f *gormFacts) CourseRank(studentID, courseID uint) (int, error) {
	return f.scores.CourseRank(studentID, courseID)
}

func (f *gormFacts) EnrolledCourseIDs(studentID uint) ([]uint, error) {
	var ids []uint
	err := f.db.Model(&models.Enrollment{}).
		Where("student_id = ?", studentID).
		Pluck("course_id", &ids).Error
	return ids, err
}
