// services/award_service.go - Award catalog and idempotent grant logic
package services

import (
	"errors"
	"fmt"
	"log"

	"edscrum/models"

	"gorm.io/gorm"
)

type AwardService struct {
	db            *gorm.DB
	scores        *ScoreService
	notifications *NotificationService
}

func NewAwardService(db *gorm.DB, scores *ScoreService, notifications *NotificationService) *AwardService {
	return &AwardService{db: db, scores: scores, notifications: notifications}
}

// ================== CATALOG CRUD ==================

func (s *AwardService) ListAwards() ([]models.Award, error) {
	var awards []models.Award
	err := s.db.Order("id ASC").Find(&awards).Error
	return awards, err
}

func (s *AwardService) GetAward(id uint) (*models.Award, error) {
	var award models.Award
	if err := s.db.First(&award, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &award, nil
}

func (s *AwardService) CreateAward(award *models.Award) error {
	return s.db.Create(award).Error
}

// UpdateAward edits a definition. Existing grant rows are untouched, they
// carry the point value that applied when they were granted.
func (s *AwardService) UpdateAward(id uint, name, description string, points int, awardType models.AwardType) (*models.Award, error) {
	award, err := s.GetAward(id)
	if err != nil {
		return nil, err
	}

	award.Name = name
	award.Description = description
	award.Points = points
	award.Type = awardType
	if err := s.db.Save(award).Error; err != nil {
		return nil, err
	}
	return award, nil
}

// DeleteAward removes a definition. Definitions with granted instances are
// protected, deleting them would orphan the grant history.
func (s *AwardService) DeleteAward(id uint) error {
	var granted int64
	if err := s.db.Model(&models.StudentAward{}).Where("award_id = ?", id).Count(&granted).Error; err != nil {
		return err
	}
	if granted == 0 {
		if err := s.db.Model(&models.TeamAward{}).Where("award_id = ?", id).Count(&granted).Error; err != nil {
			return err
		}
	}
	if granted > 0 {
		return ErrAwardInUse
	}
	return s.db.Delete(&models.Award{}, id).Error
}

// ================== AVAILABLE AWARDS ==================

// AvailableAwardsForStudent lists INDIVIDUAL awards not yet granted to the
// student in the given project context.
func (s *AwardService) AvailableAwardsForStudent(studentID, projectID uint) ([]models.Award, error) {
	var awards []models.Award
	err := s.db.Where("target_type = ?", models.TargetIndividual).
		Where("id NOT IN (?)", s.db.Model(&models.StudentAward{}).
			Where("student_id = ? AND project_id = ?", studentID, projectID).
			Select("award_id")).
		Order("id ASC").
		Find(&awards).Error
	return awards, err
}

// AvailableAwardsForTeam lists TEAM awards not yet granted to the team in
// the given project context.
func (s *AwardService) AvailableAwardsForTeam(teamID, projectID uint) ([]models.Award, error) {
	var awards []models.Award
	err := s.db.Where("target_type = ?", models.TargetTeam).
		Where("id NOT IN (?)", s.db.Model(&models.TeamAward{}).
			Where("team_id = ? AND project_id = ?", teamID, projectID).
			Select("award_id")).
		Order("id ASC").
		Find(&awards).Error
	return awards, err
}

// ================== GRANTS ==================

// GrantToStudent is the manual grant path. A duplicate (award, student,
// project) triple is a caller-visible ErrDuplicateGrant.
func (s *AwardService) GrantToStudent(awardID, studentID uint, projectID *uint) error {
	award, err := s.GetAward(awardID)
	if err != nil {
		return err
	}
	granted, err := s.grantStudent(award, studentID, projectID)
	if err != nil {
		return err
	}
	if !granted {
		return ErrDuplicateGrant
	}
	return nil
}

// GrantToTeam is the manual team grant path.
func (s *AwardService) GrantToTeam(awardID, teamID uint, projectID *uint) error {
	award, err := s.GetAward(awardID)
	if err != nil {
		return err
	}
	granted, err := s.grantTeam(award, teamID, projectID)
	if err != nil {
		return err
	}
	if !granted {
		return ErrDuplicateGrant
	}
	return nil
}

// GrantToStudentByName is the evaluator path: a missing catalog entry is a
// logged skip, a duplicate grant is a silent no-op. Returns whether a new
// grant row was written.
func (s *AwardService) GrantToStudentByName(name string, studentID uint, projectID *uint) (bool, error) {
	award, err := s.findByName(name)
	if err != nil {
		return false, err
	}
	if award == nil {
		log.Printf("award %q missing from catalog, skipping automatic grant", name)
		return false, nil
	}
	return s.grantStudent(award, studentID, projectID)
}

// GrantToTeamByName is the evaluator path for team awards.
func (s *AwardService) GrantToTeamByName(name string, teamID uint, projectID *uint) (bool, error) {
	award, err := s.findByName(name)
	if err != nil {
		return false, err
	}
	if award == nil {
		log.Printf("award %q missing from catalog, skipping automatic grant", name)
		return false, nil
	}
	return s.grantTeam(award, teamID, projectID)
}

func (s *AwardService) findByName(name string) (*models.Award, error) {
	var award models.Award
	err := s.db.Where("name = ?", name).First(&award).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &award, nil
}

// grantStudent writes a grant row and refreshes the student's score inside
// one transaction. The idempotency check runs first: with a project context
// the (award, student, project) triple must be new; without one, any prior
// grant of the award to the student blocks a re-grant.
func (s *AwardService) grantStudent(award *models.Award, studentID uint, projectID *uint) (bool, error) {
	granted := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		q := tx.Model(&models.StudentAward{}).Where("student_id = ? AND award_id = ?", studentID, award.ID)
		if projectID != nil {
			q = q.Where("project_id = ?", *projectID)
		}
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		var student models.User
		if err := tx.First(&student, studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		grant := models.StudentAward{
			StudentID:    studentID,
			AwardID:      award.ID,
			ProjectID:    projectID,
			PointsEarned: award.Points,
		}
		if err := tx.Create(&grant).Error; err != nil {
			return err
		}

		if _, err := s.scores.RecomputeStudentScore(tx, studentID); err != nil {
			return err
		}

		granted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if granted {
		s.notifications.Notify(studentID, models.NotificationAward,
			"Novo Prémio Conquistado!",
			fmt.Sprintf("Recebeste o prémio '%s' (+%d pontos).", award.Name, award.Points))
	}
	return granted, nil
}

// grantTeam writes a team grant row, refreshes the team score and every
// current member's score inside one transaction, then notifies the members.
func (s *AwardService) grantTeam(award *models.Award, teamID uint, projectID *uint) (bool, error) {
	granted := false
	var memberIDs []uint
	var teamName string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		q := tx.Model(&models.TeamAward{}).Where("team_id = ? AND award_id = ?", teamID, award.ID)
		if projectID != nil {
			q = q.Where("project_id = ?", *projectID)
		}
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		var team models.Team
		if err := tx.Preload("Developers").First(&team, teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		teamName = team.Name
		memberIDs = team.MemberIDs()

		grant := models.TeamAward{
			TeamID:       teamID,
			AwardID:      award.ID,
			ProjectID:    projectID,
			PointsEarned: award.Points,
		}
		if err := tx.Create(&grant).Error; err != nil {
			return err
		}

		if _, err := s.scores.RecomputeTeamScore(tx, teamID); err != nil {
			return err
		}
		for _, id := range memberIDs {
			if _, err := s.scores.RecomputeStudentScore(tx, id); err != nil {
				return err
			}
		}

		granted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if granted {
		msg := fmt.Sprintf("A tua equipa '%s' ganhou o prémio '%s' (+%d pontos).", teamName, award.Name, award.Points)
		for _, id := range memberIDs {
			s.notifications.Notify(id, models.NotificationAward, "Prémio de Equipa!", msg)
		}
	}
	return granted, nil
}
