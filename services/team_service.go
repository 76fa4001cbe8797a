// services/team_service.go - Team aggregate and membership lifecycle
package services

import (
	"errors"
	"fmt"

	"edscrum/models"

	"gorm.io/gorm"
)

// maxCommitRetries bounds the optimistic-concurrency retry loop. Every team
// mutation loads a snapshot with its version token, validates, and commits
// with a version check; a lost race rolls back and reloads.
const maxCommitRetries = 3

type TeamService struct {
	db            *gorm.DB
	scores        *ScoreService
	evaluator     *RuleEvaluator
	notifications *NotificationService
}

func NewTeamService(db *gorm.DB, scores *ScoreService, evaluator *RuleEvaluator, notifications *NotificationService) *TeamService {
	return &TeamService{db: db, scores: scores, evaluator: evaluator, notifications: notifications}
}

type CreateTeamInput struct {
	Name           string
	CourseID       uint
	ProjectID      *uint
	ScrumMasterID  *uint
	ProductOwnerID *uint
	DeveloperIDs   []uint
	MaxMembers     int
}

// ================== TEAM LIFECYCLE ==================

// CreateTeam validates every named participant against enrollment and the
// single-team-per-course rule, then persists the team and triggers the
// formation milestones for each member.
func (s *TeamService) CreateTeam(input CreateTeamInput) (*models.Team, error) {
	if input.MaxMembers <= 0 {
		input.MaxMembers = 10
	}

	team := &models.Team{
		Name:       input.Name,
		CourseID:   input.CourseID,
		ProjectID:  input.ProjectID,
		MaxMembers: input.MaxMembers,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, input.CourseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		seen := make(map[uint]bool)
		bind := func(userID uint) error {
			if seen[userID] {
				return ErrAlreadyInTeam
			}
			seen[userID] = true
			_, err := s.validateAvailability(tx, userID, input.CourseID)
			return err
		}

		if input.ScrumMasterID != nil {
			if err := bind(*input.ScrumMasterID); err != nil {
				return err
			}
			team.ScrumMasterID = input.ScrumMasterID
		}
		if input.ProductOwnerID != nil {
			if err := bind(*input.ProductOwnerID); err != nil {
				return err
			}
			team.ProductOwnerID = input.ProductOwnerID
		}
		for _, devID := range input.DeveloperIDs {
			if err := bind(devID); err != nil {
				return err
			}
		}

		if len(seen) > team.MaxMembers {
			return ErrCapacityExceeded
		}
		if len(seen) >= team.MaxMembers {
			team.IsClosed = true
		}

		if err := tx.Create(team).Error; err != nil {
			return err
		}

		if len(input.DeveloperIDs) > 0 {
			var devs []models.User
			if err := tx.Find(&devs, input.DeveloperIDs).Error; err != nil {
				return err
			}
			if err := tx.Model(team).Association("Developers").Append(&devs); err != nil {
				return err
			}
			team.Developers = devs
		}

		// Members of a new team inherit any pre-existing team context in
		// their totals; refresh them so the cache stays consistent.
		for _, id := range team.MemberIDs() {
			if _, err := s.scores.RecomputeStudentScore(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range team.MemberIDs() {
		s.notifications.Notify(id, models.NotificationTeam,
			"Bem-vindo à equipa!",
			fmt.Sprintf("Foste adicionado à equipa '%s'.", team.Name))
	}
	s.evaluator.TeamFormed(team)

	return s.GetTeamByID(team.ID)
}

// AddMember binds a student to a role slot. SM/PO conflicts, capacity,
// closed state, enrollment, and single-team-per-course are all re-validated
// inside the transaction; reaching capacity closes the team.
func (s *TeamService) AddMember(teamID, studentID uint, role models.TeamRole) (*models.Team, error) {
	var result *models.Team

	err := s.withRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			team, loadedVersion, err := s.loadTeam(tx, teamID)
			if err != nil {
				return err
			}

			if !team.CanAcceptMembers() {
				return ErrCapacityExceeded
			}
			if team.HasMember(studentID) {
				return ErrAlreadyInTeam
			}

			user, err := s.validateAvailability(tx, studentID, team.CourseID)
			if err != nil {
				return err
			}

			switch role {
			case models.TeamRoleScrumMaster:
				if team.ScrumMasterID != nil {
					return ErrRoleConflict
				}
				team.ScrumMasterID = &studentID
			case models.TeamRoleProductOwner:
				if team.ProductOwnerID != nil {
					return ErrRoleConflict
				}
				team.ProductOwnerID = &studentID
			default:
				if err := tx.Model(team).Association("Developers").Append(user); err != nil {
					return err
				}
				team.Developers = append(team.Developers, *user)
			}

			if team.IsFull() {
				team.IsClosed = true
			}

			if err := s.commitTeam(tx, team, loadedVersion); err != nil {
				return err
			}
			if _, err := s.scores.RecomputeStudentScore(tx, studentID); err != nil {
				return err
			}

			result = team
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(studentID, models.NotificationTeam,
		"Bem-vindo à equipa!",
		fmt.Sprintf("Foste adicionado à equipa '%s'.", result.Name))
	s.evaluator.MemberJoined(result, studentID)

	return s.GetTeamByID(teamID)
}

// RemoveMember unbinds a student from whatever role they hold. Removing the
// last member deletes the team outright; removing from a closed team
// reopens it. Returns whether the team was deleted.
func (s *TeamService) RemoveMember(teamID, studentID uint) (bool, error) {
	deleted := false
	var teamName string

	err := s.withRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			team, loadedVersion, err := s.loadTeam(tx, teamID)
			if err != nil {
				return err
			}
			teamName = team.Name

			role, ok := team.RoleOf(studentID)
			if !ok {
				return ErrNotMember
			}

			switch role {
			case models.TeamRoleScrumMaster:
				team.ScrumMasterID = nil
			case models.TeamRoleProductOwner:
				team.ProductOwnerID = nil
			default:
				if err := tx.Model(team).Association("Developers").Delete(&models.User{ID: studentID}); err != nil {
					return err
				}
				devs := team.Developers[:0]
				for _, dev := range team.Developers {
					if dev.ID != studentID {
						devs = append(devs, dev)
					}
				}
				team.Developers = devs
			}

			if team.MemberCount() == 0 {
				if err := s.deleteTeamTx(tx, team); err != nil {
					return err
				}
				deleted = true
			} else {
				if team.IsClosed {
					team.IsClosed = false
				}
				if err := s.commitTeam(tx, team, loadedVersion); err != nil {
					return err
				}
			}

			_, err = s.scores.RecomputeStudentScore(tx, studentID)
			return err
		})
	})
	if err != nil {
		return false, err
	}

	s.notifications.Notify(studentID, models.NotificationTeam,
		"Saída da equipa",
		fmt.Sprintf("Foste removido da equipa '%s'.", teamName))

	return deleted, nil
}

// CloseTeam is the explicit administrative close, independent of the
// automatic capacity-based transition.
func (s *TeamService) CloseTeam(teamID uint) (*models.Team, error) {
	return s.setClosed(teamID, true)
}

// ReopenTeam is the explicit administrative reopen.
func (s *TeamService) ReopenTeam(teamID uint) (*models.Team, error) {
	return s.setClosed(teamID, false)
}

func (s *TeamService) setClosed(teamID uint, closed bool) (*models.Team, error) {
	err := s.withRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			team, loadedVersion, err := s.loadTeam(tx, teamID)
			if err != nil {
				return err
			}
			team.IsClosed = closed
			return s.commitTeam(tx, team, loadedVersion)
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetTeamByID(teamID)
}

// DeleteTeam removes a team and its dependent rows. Deleting a team that no
// longer exists is a no-op, not an error.
func (s *TeamService) DeleteTeam(teamID uint) error {
	var memberIDs []uint
	var teamName string
	found := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.Preload("Developers").First(&team, teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		found = true
		teamName = team.Name
		memberIDs = team.MemberIDs()

		if err := s.deleteTeamTx(tx, &team); err != nil {
			return err
		}
		for _, id := range memberIDs {
			if _, err := s.scores.RecomputeStudentScore(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if found {
		for _, id := range memberIDs {
			s.notifications.Notify(id, models.NotificationTeam,
				"Equipa Eliminada",
				fmt.Sprintf("A equipa '%s' foi removida.", teamName))
		}
	}
	return nil
}

// deleteTeamTx is the explicit delete plan: dependent Score and TeamAward
// rows first, then the developer join rows, then the team itself. No ORM
// cascades.
func (s *TeamService) deleteTeamTx(tx *gorm.DB, team *models.Team) error {
	if err := tx.Where("team_id = ?", team.ID).Delete(&models.Score{}).Error; err != nil {
		return err
	}
	if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamAward{}).Error; err != nil {
		return err
	}
	if err := tx.Model(team).Association("Developers").Clear(); err != nil {
		return err
	}
	return tx.Delete(&models.Team{}, team.ID).Error
}

// ================== QUERIES ==================

func (s *TeamService) GetTeamByID(teamID uint) (*models.Team, error) {
	var team models.Team
	err := s.db.Preload("Course").
		Preload("Project").
		Preload("ScrumMaster").
		Preload("ProductOwner").
		Preload("Developers").
		First(&team, teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamService) ListTeamsByCourse(courseID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.Where("course_id = ?", courseID).
		Preload("ScrumMaster").
		Preload("ProductOwner").
		Preload("Developers").
		Find(&teams).Error
	return teams, err
}

// AvailableTeamsByCourse lists teams a student could still join: not closed
// and below capacity.
func (s *TeamService) AvailableTeamsByCourse(courseID uint) ([]models.Team, error) {
	teams, err := s.ListTeamsByCourse(courseID)
	if err != nil {
		return nil, err
	}
	available := teams[:0]
	for _, t := range teams {
		if t.CanAcceptMembers() {
			available = append(available, t)
		}
	}
	return available, nil
}

func (s *TeamService) TeamsByUser(userID uint) ([]models.Team, error) {
	ids, err := TeamIDsOfUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Team{}, nil
	}

	var teams []models.Team
	err = s.db.Where("id IN ?", ids).
		Preload("Course").
		Preload("Project").
		Find(&teams).Error
	return teams, err
}

// TeamMembers lists every user bound to the team, scrum master and product
// owner first.
func (s *TeamService) TeamMembers(teamID uint) ([]models.User, error) {
	team, err := s.GetTeamByID(teamID)
	if err != nil {
		return nil, err
	}

	var members []models.User
	if team.ScrumMaster != nil {
		members = append(members, *team.ScrumMaster)
	}
	if team.ProductOwner != nil && (team.ScrumMaster == nil || team.ProductOwner.ID != team.ScrumMaster.ID) {
		members = append(members, *team.ProductOwner)
	}
	for _, dev := range team.Developers {
		members = append(members, dev)
	}
	return members, nil
}

// TakenStudentIDs returns the ids of students already occupied by a team in
// the course, used by the UI to filter candidates.
func (s *TeamService) TakenStudentIDs(courseID uint) (map[uint]bool, error) {
	teams, err := s.ListTeamsByCourse(courseID)
	if err != nil {
		return nil, err
	}

	taken := make(map[uint]bool)
	for _, t := range teams {
		for _, id := range t.MemberIDs() {
			taken[id] = true
		}
	}
	return taken, nil
}

// ================== HELPERS ==================

// validateAvailability checks that a participant may be bound to a team in
// the course: teachers bypass enrollment, students must be enrolled and not
// already occupy a team in the same course.
func (s *TeamService) validateAvailability(tx *gorm.DB, userID, courseID uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if user.Role != models.RoleStudent {
		return &user, nil
	}

	var enrolled int64
	err := tx.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", userID, courseID).
		Count(&enrolled).Error
	if err != nil {
		return nil, err
	}
	if enrolled == 0 {
		return nil, ErrNotEnrolled
	}

	var taken int64
	err = tx.Model(&models.Team{}).
		Distinct("teams.id").
		Joins("LEFT JOIN team_developers ON team_developers.team_id = teams.id").
		Where("teams.course_id = ?", courseID).
		Where("teams.scrum_master_id = ? OR teams.product_owner_id = ? OR team_developers.user_id = ?",
			userID, userID, userID).
		Count(&taken).Error
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, ErrAlreadyInTeam
	}

	return &user, nil
}

func (s *TeamService) loadTeam(tx *gorm.DB, teamID uint) (*models.Team, uint, error) {
	var team models.Team
	if err := tx.Preload("Developers").First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}
	return &team, team.Version, nil
}

// commitTeam writes the mutated snapshot back guarded by the version loaded
// at the start of the transaction. RowsAffected == 0 means another writer
// committed first; the caller's transaction rolls back and retries.
func (s *TeamService) commitTeam(tx *gorm.DB, team *models.Team, loadedVersion uint) error {
	res := tx.Model(&models.Team{}).
		Where("id = ? AND version = ?", team.ID, loadedVersion).
		Updates(map[string]interface{}{
			"scrum_master_id":  team.ScrumMasterID,
			"product_owner_id": team.ProductOwnerID,
			"is_closed":        team.IsClosed,
			"version":          loadedVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	team.Version = loadedVersion + 1
	return nil
}

func (s *TeamService) withRetry(fn func() error) error {
	var err error
	for i := 0; i < maxCommitRetries; i++ {
		err = fn()
		if !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return err
}
