// services/project_service.go - Projects and their status lifecycle
package services

import (
	"errors"
	"fmt"

	"edscrum/models"

	"gorm.io/gorm"
)

type ProjectService struct {
	db            *gorm.DB
	evaluator     *RuleEvaluator
	notifications *NotificationService
}

func NewProjectService(db *gorm.DB, evaluator *RuleEvaluator, notifications *NotificationService) *ProjectService {
	return &ProjectService{db: db, evaluator: evaluator, notifications: notifications}
}

func (s *ProjectService) CreateProject(project *models.Project) error {
	if project.StartDate != nil && project.EndDate != nil && !project.StartDate.Before(*project.EndDate) {
		return fmt.Errorf("project start date must be before end date")
	}

	var course models.Course
	if err := s.db.First(&course, project.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if project.Status == "" {
		project.Status = models.ProjectPlaneamento
	}
	return s.db.Create(project).Error
}

func (s *ProjectService) GetProject(projectID uint) (*models.Project, error) {
	var project models.Project
	err := s.db.Preload("Course").Preload("Sprints").First(&project, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) ListProjectsByCourse(courseID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.Where("course_id = ?", courseID).Order("id ASC").Find(&projects).Error
	return projects, err
}

func (s *ProjectService) UpdateProject(projectID uint, name, sprintGoals string) (*models.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	project.Name = name
	project.SprintGoals = sprintGoals
	return project, s.db.Save(project).Error
}

// StartProject moves a project into EM_CURSO.
func (s *ProjectService) StartProject(projectID uint) (*models.Project, error) {
	return s.setStatus(projectID, models.ProjectEmCurso)
}

// CompleteProject moves a project into CONCLUIDO. The transition is a
// milestone fact: every team on the project is evaluated for the completion
// award, exactly once per project.
func (s *ProjectService) CompleteProject(projectID uint) (*models.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if project.Status == models.ProjectConcluido {
		return project, nil
	}

	project.Status = models.ProjectConcluido
	if err := s.db.Save(project).Error; err != nil {
		return nil, err
	}

	s.evaluator.ProjectCompleted(project.ID)
	return project, nil
}

func (s *ProjectService) setStatus(projectID uint, status models.ProjectStatus) (*models.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	project.Status = status
	return project, s.db.Save(project).Error
}

// DeleteProject removes a project with an explicit delete plan: user
// stories, sprints, team references, then the project.
func (s *ProjectService) DeleteProject(projectID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		sprintIDs := tx.Model(&models.Sprint{}).Where("project_id = ?", projectID).Select("id")
		if err := tx.Where("sprint_id IN (?)", sprintIDs).Delete(&models.UserStory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Sprint{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Team{}).Where("project_id = ?", projectID).
			Update("project_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
}
