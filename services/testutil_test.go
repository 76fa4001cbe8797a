package services

import (
	"fmt"
	"testing"

	"edscrum/database"
	"edscrum/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testCourseCode = "SECRET"

// fixture wires the full service graph against an in-memory database with
// the migrated schema and seeded award catalog.
type fixture struct {
	db            *gorm.DB
	notifications *NotificationService
	scores        *ScoreService
	awards        *AwardService
	evaluator     *RuleEvaluator
	teams         *TeamService
	courses       *CourseService
	projects      *ProjectService
	sprints       *SprintService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	f := &fixture{db: db}
	f.notifications = NewNotificationService(db)
	f.scores = NewScoreService(db)
	f.awards = NewAwardService(db, f.scores, f.notifications)
	facts := NewFactProvider(db, f.scores)
	f.evaluator = NewRuleEvaluator(db, f.awards, facts)
	f.teams = NewTeamService(db, f.scores, f.evaluator, f.notifications)
	f.courses = NewCourseService(db)
	f.projects = NewProjectService(db, f.evaluator, f.notifications)
	f.sprints = NewSprintService(db, f.evaluator, f.notifications)
	return f
}

// clearRankingAwards removes the ranking milestone definitions so tests
// that only care about other rules get stable point totals. The evaluator
// skips rules whose catalog entry is missing.
func (f *fixture) clearRankingAwards(t *testing.T) {
	t.Helper()
	err := f.db.Where("name IN ?", []string{AwardTopFive, AwardTopThree}).
		Delete(&models.Award{}).Error
	require.NoError(t, err)
}

func (f *fixture) createUser(t *testing.T, name string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Name:                 name,
		Email:                fmt.Sprintf("%s@test.local", name),
		Password:             "hashed",
		Role:                 role,
		NotificationAwards:   true,
		NotificationRankings: true,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *fixture) createTeacher(t *testing.T, name string) *models.User {
	return f.createUser(t, name, models.RoleTeacher)
}

func (f *fixture) createStudent(t *testing.T, name string) *models.User {
	return f.createUser(t, name, models.RoleStudent)
}

func (f *fixture) createCourse(t *testing.T, teacherID uint, name string) *models.Course {
	t.Helper()
	course := &models.Course{Name: name, Code: testCourseCode, Semester: 1, Year: 2026}
	require.NoError(t, f.courses.CreateCourse(teacherID, course))
	return course
}

func (f *fixture) enroll(t *testing.T, studentID, courseID uint) {
	t.Helper()
	require.NoError(t, f.courses.Enroll(studentID, courseID, testCourseCode))
}

// enrolledStudent creates a student already enrolled in the course.
func (f *fixture) enrolledStudent(t *testing.T, name string, courseID uint) *models.User {
	t.Helper()
	student := f.createStudent(t, name)
	f.enroll(t, student.ID, courseID)
	return student
}

func (f *fixture) createProject(t *testing.T, courseID uint, name string) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, CourseID: courseID}
	require.NoError(t, f.projects.CreateProject(project))
	return project
}

func (f *fixture) studentGrantCount(t *testing.T, awardName string, studentID uint) int {
	t.Helper()
	var count int64
	err := f.db.Model(&models.StudentAward{}).
		Joins("JOIN awards ON awards.id = student_awards.award_id").
		Where("awards.name = ? AND student_awards.student_id = ?", awardName, studentID).
		Count(&count).Error
	require.NoError(t, err)
	return int(count)
}

func (f *fixture) teamGrantCount(t *testing.T, awardName string, teamID uint) int {
	t.Helper()
	var count int64
	err := f.db.Model(&models.TeamAward{}).
		Joins("JOIN awards ON awards.id = team_awards.award_id").
		Where("awards.name = ? AND team_awards.team_id = ?", awardName, teamID).
		Count(&count).Error
	require.NoError(t, err)
	return int(count)
}

func (f *fixture) studentTotal(t *testing.T, studentID uint) int {
	t.Helper()
	total, err := f.scores.TotalPoints(studentID)
	require.NoError(t, err)
	return total
}

func (f *fixture) teamTotal(t *testing.T, teamID uint) int {
	t.Helper()
	total, err := f.scores.TeamTotalPoints(teamID)
	require.NoError(t, err)
	return total
}
