// services/sprint_service.go - Sprints and user stories
package services

import (
	"errors"
	"fmt"

	"edscrum/models"

	"gorm.io/gorm"
)

type SprintService struct {
	db            *gorm.DB
	evaluator     *RuleEvaluator
	notifications *NotificationService
}

func NewSprintService(db *gorm.DB, evaluator *RuleEvaluator, notifications *NotificationService) *SprintService {
	return &SprintService{db: db, evaluator: evaluator, notifications: notifications}
}

// CreateSprint persists a sprint and evaluates the creator's sprint-count
// milestones.
func (s *SprintService) CreateSprint(sprint *models.Sprint) error {
	var project models.Project
	if err := s.db.First(&project, sprint.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if sprint.Status == "" {
		sprint.Status = models.SprintPlaneamento
	}
	if err := s.db.Create(sprint).Error; err != nil {
		return err
	}

	s.evaluator.SprintCreated(sprint.CreatedByID, sprint.ProjectID)
	return nil
}

func (s *SprintService) GetSprint(sprintID uint) (*models.Sprint, error) {
	var sprint models.Sprint
	err := s.db.Preload("Project").Preload("UserStories").First(&sprint, sprintID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (s *SprintService) ListSprintsByProject(projectID uint) ([]models.Sprint, error) {
	var sprints []models.Sprint
	err := s.db.Where("project_id = ?", projectID).
		Preload("UserStories").
		Order("id ASC").
		Find(&sprints).Error
	return sprints, err
}

// CompleteSprint marks a sprint CONCLUIDO. Every user story must already be
// DONE; the teams on the project are notified.
func (s *SprintService) CompleteSprint(sprintID uint) (*models.Sprint, error) {
	sprint, err := s.GetSprint(sprintID)
	if err != nil {
		return nil, err
	}

	for _, story := range sprint.UserStories {
		if story.Status != models.StoryDone {
			return nil, ErrStoriesPending
		}
	}

	sprint.Status = models.SprintConcluido
	if err := s.db.Save(sprint).Error; err != nil {
		return nil, err
	}

	s.notifyProjectTeams(sprint,
		"Sprint Concluída",
		fmt.Sprintf("A sprint '%s' foi concluída com sucesso!", sprint.Name))
	return sprint, nil
}

// ReopenSprint puts a sprint back in EM_CURSO. A CONCLUIDO project regresses
// to EM_CURSO with it, since one of its sprints is live again.
func (s *SprintService) ReopenSprint(sprintID uint) (*models.Sprint, error) {
	sprint, err := s.GetSprint(sprintID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		sprint.Status = models.SprintEmCurso
		if err := tx.Save(sprint).Error; err != nil {
			return err
		}
		if sprint.Project != nil && sprint.Project.Status == models.ProjectConcluido {
			return tx.Model(&models.Project{}).
				Where("id = ?", sprint.ProjectID).
				Update("status", models.ProjectEmCurso).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sprint, nil
}

// DeleteSprint removes a sprint and its user stories, stories first.
func (s *SprintService) DeleteSprint(sprintID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var sprint models.Sprint
		if err := tx.First(&sprint, sprintID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("sprint_id = ?", sprintID).Delete(&models.UserStory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Sprint{}, sprintID).Error
	})
}

func (s *SprintService) AddUserStory(story *models.UserStory) error {
	var sprint models.Sprint
	if err := s.db.First(&sprint, story.SprintID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if story.Status == "" {
		story.Status = models.StoryTodo
	}
	return s.db.Create(story).Error
}

func (s *SprintService) UpdateStoryStatus(storyID uint, status models.UserStoryStatus) (*models.UserStory, error) {
	var story models.UserStory
	if err := s.db.First(&story, storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	story.Status = status
	return &story, s.db.Save(&story).Error
}

func (s *SprintService) notifyProjectTeams(sprint *models.Sprint, title, message string) {
	var teams []models.Team
	if err := s.db.Preload("Developers").Where("project_id = ?", sprint.ProjectID).Find(&teams).Error; err != nil {
		return
	}
	for _, team := range teams {
		for _, id := range team.MemberIDs() {
			s.notifications.Notify(id, models.NotificationSprint, title, message)
		}
	}
}
