// services/score_service.go - Score ledger cache and ranking calculator
package services

import (
	"errors"
	"sort"

	"edscrum/models"

	"gorm.io/gorm"
)

type ScoreService struct {
	db *gorm.DB
}

func NewScoreService(db *gorm.DB) *ScoreService {
	return &ScoreService{db: db}
}

// RankingEntry is one row of a leaderboard.
type RankingEntry struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	TotalPoints int    `json:"total_points"`
}

// TeamIDsOfUser returns the ids of every team the user currently belongs to,
// in any role.
func TeamIDsOfUser(db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.Team{}).
		Distinct("teams.id").
		Joins("LEFT JOIN team_developers ON team_developers.team_id = teams.id").
		Where("teams.scrum_master_id = ? OR teams.product_owner_id = ? OR team_developers.user_id = ?",
			userID, userID, userID).
		Pluck("teams.id", &ids).Error
	return ids, err
}

// SumStudentPoints re-derives a student's total from the grant rows: own
// individual grants plus the team grants of every team the student currently
// belongs to. This is the authoritative definition of a student's total.
func (s *ScoreService) SumStudentPoints(db *gorm.DB, userID uint) (int, error) {
	var individual int
	err := db.Model(&models.StudentAward{}).
		Where("student_id = ?", userID).
		Select("COALESCE(SUM(points_earned), 0)").
		Scan(&individual).Error
	if err != nil {
		return 0, err
	}

	teamIDs, err := TeamIDsOfUser(db, userID)
	if err != nil {
		return 0, err
	}

	var team int
	if len(teamIDs) > 0 {
		err = db.Model(&models.TeamAward{}).
			Where("team_id IN ?", teamIDs).
			Select("COALESCE(SUM(points_earned), 0)").
			Scan(&team).Error
		if err != nil {
			return 0, err
		}
	}

	return individual + team, nil
}

// SumTeamPoints re-derives a team's total from its own grant rows.
func (s *ScoreService) SumTeamPoints(db *gorm.DB, teamID uint) (int, error) {
	var total int
	err := db.Model(&models.TeamAward{}).
		Where("team_id = ?", teamID).
		Select("COALESCE(SUM(points_earned), 0)").
		Scan(&total).Error
	return total, err
}

// RecomputeStudentScore refreshes the cached Score row for a user by full
// resummation and returns the new total.
func (s *ScoreService) RecomputeStudentScore(db *gorm.DB, userID uint) (int, error) {
	total, err := s.SumStudentPoints(db, userID)
	if err != nil {
		return 0, err
	}

	var score models.Score
	err = db.Where("user_id = ?", userID).First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		score = models.Score{UserID: &userID, TotalPoints: total}
		return total, db.Create(&score).Error
	}
	if err != nil {
		return 0, err
	}

	return total, db.Model(&score).Update("total_points", total).Error
}

// RecomputeTeamScore refreshes the cached team-level Score row (user_id null).
func (s *ScoreService) RecomputeTeamScore(db *gorm.DB, teamID uint) (int, error) {
	total, err := s.SumTeamPoints(db, teamID)
	if err != nil {
		return 0, err
	}

	var score models.Score
	err = db.Where("team_id = ? AND user_id IS NULL", teamID).First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		score = models.Score{TeamID: &teamID, TotalPoints: total}
		return total, db.Create(&score).Error
	}
	if err != nil {
		return 0, err
	}

	return total, db.Model(&score).Update("total_points", total).Error
}

// TotalPoints returns the cached total for a user, 0 if no score row exists.
func (s *ScoreService) TotalPoints(userID uint) (int, error) {
	var score models.Score
	err := s.db.Where("user_id = ?", userID).First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return score.TotalPoints, nil
}

// TeamTotalPoints returns the cached total for a team, 0 if none.
func (s *ScoreService) TeamTotalPoints(teamID uint) (int, error) {
	var score models.Score
	err := s.db.Where("team_id = ? AND user_id IS NULL", teamID).First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return score.TotalPoints, nil
}

// RankStudents orders the students enrolled in a course by total points
// descending. Ties break on ascending user id so the ordering is
// deterministic.
func (s *ScoreService) RankStudents(courseID uint) ([]RankingEntry, error) {
	var enrollments []models.Enrollment
	err := s.db.Where("course_id = ?", courseID).
		Preload("Student").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	ranking := make([]RankingEntry, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Student == nil {
			continue
		}
		total, err := s.TotalPoints(e.StudentID)
		if err != nil {
			return nil, err
		}
		ranking = append(ranking, RankingEntry{
			ID:          e.StudentID,
			Name:        e.Student.Name,
			TotalPoints: total,
		})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].TotalPoints != ranking[j].TotalPoints {
			return ranking[i].TotalPoints > ranking[j].TotalPoints
		}
		return ranking[i].ID < ranking[j].ID
	})

	return ranking, nil
}

// RankTeams orders a course's teams by the sum of their own team-level grant
// rows, descending, ties on ascending team id. Member-level individual
// grants do not count toward a team's position.
func (s *ScoreService) RankTeams(courseID uint) ([]RankingEntry, error) {
	var teams []models.Team
	if err := s.db.Where("course_id = ?", courseID).Find(&teams).Error; err != nil {
		return nil, err
	}

	ranking := make([]RankingEntry, 0, len(teams))
	for _, t := range teams {
		total, err := s.SumTeamPoints(s.db, t.ID)
		if err != nil {
			return nil, err
		}
		ranking = append(ranking, RankingEntry{
			ID:          t.ID,
			Name:        t.Name,
			TotalPoints: total,
		})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].TotalPoints != ranking[j].TotalPoints {
			return ranking[i].TotalPoints > ranking[j].TotalPoints
		}
		return ranking[i].ID < ranking[j].ID
	})

	return ranking, nil
}

// CourseRank returns a student's 1-based position in the course ranking,
// 0 if the student is not enrolled.
func (s *ScoreService) CourseRank(studentID, courseID uint) (int, error) {
	ranking, err := s.RankStudents(courseID)
	if err != nil {
		return 0, err
	}
	for i, entry := range ranking {
		if entry.ID == studentID {
			return i + 1, nil
		}
	}
	return 0, nil
}
