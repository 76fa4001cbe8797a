package services

import (
	"fmt"
	"testing"

	"edscrum/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreeProjectsAwardGrantsExactlyOnce(t *testing.T) {
	f := newFixture(t)

	teacher := f.createTeacher(t, "prof")
	student := f.createStudent(t, "ana")

	// One team per course, each bound to a distinct project. The milestone
	// fires at the third distinct project and never again.
	for i := 1; i <= 4; i++ {
		course := f.createCourse(t, teacher.ID, fmt.Sprintf("C%d", i))
		f.enroll(t, student.ID, course.ID)
		project := f.createProject(t, course.ID, fmt.Sprintf("P%d", i))

		_, err := f.teams.CreateTeam(CreateTeamInput{
			Name:          fmt.Sprintf("Team %d", i),
			CourseID:      course.ID,
			ProjectID:     &project.ID,
			ScrumMasterID: &student.ID,
		})
		require.NoError(t, err)

		want := 0
		if i >= 3 {
			want = 1
		}
		assert.Equal(t, want, f.studentGrantCount(t, AwardThreeProjects, student.ID),
			"after %d projects", i)
	}
}

func TestSprintCountMilestones(t *testing.T) {
	f := newFixture(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	student := f.enrolledStudent(t, "ana", course.ID)
	project := f.createProject(t, course.ID, "P1")

	for i := 1; i <= 11; i++ {
		sprint := &models.Sprint{
			Name:        fmt.Sprintf("Sprint %d", i),
			ProjectID:   project.ID,
			CreatedByID: student.ID,
		}
		require.NoError(t, f.sprints.CreateSprint(sprint))
	}

	assert.Equal(t, 1, f.studentGrantCount(t, AwardFirstSprint, student.ID))
	assert.Equal(t, 1, f.studentGrantCount(t, AwardFiveSprints, student.ID))
	assert.Equal(t, 1, f.studentGrantCount(t, AwardTenSprints, student.ID))

	// The first-sprint grant carries the project it happened in.
	var grant models.StudentAward
	err := f.db.Joins("JOIN awards ON awards.id = student_awards.award_id").
		Where("awards.name = ? AND student_awards.student_id = ?", AwardFirstSprint, student.ID).
		First(&grant).Error
	require.NoError(t, err)
	require.NotNil(t, grant.ProjectID)
	assert.Equal(t, project.ID, *grant.ProjectID)
}

func TestSprintMilestonesIgnoreTeachers(t *testing.T) {
	f := newFixture(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	project := f.createProject(t, course.ID, "P1")

	sprint := &models.Sprint{Name: "Sprint 1", ProjectID: project.ID, CreatedByID: teacher.ID}
	require.NoError(t, f.sprints.CreateSprint(sprint))

	assert.Equal(t, 0, f.studentGrantCount(t, AwardFirstSprint, teacher.ID))
}

func TestProjectCompletedAwardsEveryTeamOnce(t *testing.T) {
	f := newFixture(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	s1 := f.enrolledStudent(t, "ana", course.ID)
	s2 := f.enrolledStudent(t, "bruno", course.ID)
	project := f.createProject(t, course.ID, "P1")

	alpha, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Alpha",
		CourseID:      course.ID,
		ProjectID:     &project.ID,
		ScrumMasterID: &s1.ID,
	})
	require.NoError(t, err)

	beta, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Beta",
		CourseID:      course.ID,
		ProjectID:     &project.ID,
		ScrumMasterID: &s2.ID,
	})
	require.NoError(t, err)

	completed, err := f.projects.CompleteProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectConcluido, completed.Status)

	assert.Equal(t, 1, f.teamGrantCount(t, AwardProjectCompleted, alpha.ID))
	assert.Equal(t, 1, f.teamGrantCount(t, AwardProjectCompleted, beta.ID))

	// Completing an already completed project does not re-evaluate.
	_, err = f.projects.CompleteProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.teamGrantCount(t, AwardProjectCompleted, alpha.ID))
	assert.Equal(t, 1, f.teamGrantCount(t, AwardProjectCompleted, beta.ID))
}

func TestRankingMilestones(t *testing.T) {
	f := newFixture(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")

	// Six enrolled students with strictly decreasing totals.
	students := make([]*models.User, 6)
	for i := range students {
		students[i] = f.enrolledStudent(t, fmt.Sprintf("aluno%d", i+1), course.ID)
		award := f.createManualAward(t, fmt.Sprintf("Base %d", i+1), (6-i)*10, models.TargetIndividual)
		require.NoError(t, f.awards.GrantToStudent(award.ID, students[i].ID, nil))
	}

	for _, s := range students {
		f.evaluator.ScoreChanged(s.ID)
	}

	for i, s := range students {
		topFive := f.studentGrantCount(t, AwardTopFive, s.ID)
		topThree := f.studentGrantCount(t, AwardTopThree, s.ID)
		switch {
		case i < 3:
			assert.Equal(t, 1, topFive, "student %d", i+1)
			assert.Equal(t, 1, topThree, "student %d", i+1)
		case i < 5:
			assert.Equal(t, 1, topFive, "student %d", i+1)
			assert.Equal(t, 0, topThree, "student %d", i+1)
		default:
			assert.Equal(t, 0, topFive, "student %d", i+1)
			assert.Equal(t, 0, topThree, "student %d", i+1)
		}
	}
}

func TestTeamFormedSkipsTeacherMembers(t *testing.T) {
	f := newFixture(t)
	f.clearRankingAwards(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	student := f.enrolledStudent(t, "ana", course.ID)

	// A teacher may sit in a team without enrollment and earns no
	// individual milestones from it.
	team, err := f.teams.CreateTeam(CreateTeamInput{
		Name:           "Alpha",
		CourseID:       course.ID,
		ScrumMasterID:  &teacher.ID,
		ProductOwnerID: &student.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.teamGrantCount(t, AwardTeamFormed, team.ID))
	assert.Equal(t, 0, f.studentGrantCount(t, AwardThreeProjects, teacher.ID))
}

// stubFacts lets the predicates be exercised without storage behind them.
type stubFacts struct {
	role         models.UserRole
	projectCount int
	sprintCount  int
	courseIDs    []uint
	rank         int
}

func (s *stubFacts) IsEnrolled(studentID, courseID uint) (bool, error)  { return true, nil }
func (s *stubFacts) UserRole(userID uint) (models.UserRole, error)      { return s.role, nil }
func (s *stubFacts) DistinctProjectCount(userID uint) (int, error)      { return s.projectCount, nil }
func (s *stubFacts) SprintCountCreated(userID uint) (int, error)        { return s.sprintCount, nil }
func (s *stubFacts) CompletedProjectCount(userID uint) (int, error)     { return 0, nil }
func (s *stubFacts) ProjectStatus(projectID uint) (models.ProjectStatus, error) {
	return models.ProjectEmCurso, nil
}
func (s *stubFacts) CourseRank(studentID, courseID uint) (int, error) { return s.rank, nil }
func (s *stubFacts) EnrolledCourseIDs(studentID uint) ([]uint, error) { return s.courseIDs, nil }

func TestSprintMilestoneFiresOnlyOnExactThreshold(t *testing.T) {
	f := newFixture(t)
	student := f.createStudent(t, "ana")

	facts := &stubFacts{role: models.RoleStudent, sprintCount: 4}
	evaluator := NewRuleEvaluator(f.db, f.awards, facts)

	// Count 4 sits between thresholds, nothing fires.
	evaluator.SprintCreated(student.ID, 0)
	assert.Equal(t, 0, f.studentGrantCount(t, AwardFiveSprints, student.ID))

	facts.sprintCount = 5
	evaluator.SprintCreated(student.ID, 0)
	assert.Equal(t, 1, f.studentGrantCount(t, AwardFiveSprints, student.ID))

	// Re-reporting the same count is absorbed by grant idempotency.
	evaluator.SprintCreated(student.ID, 0)
	assert.Equal(t, 1, f.studentGrantCount(t, AwardFiveSprints, student.ID))
}
