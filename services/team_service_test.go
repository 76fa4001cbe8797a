package services

import (
	"testing"

	"edscrum/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTeamGrantsFormationAward(t *testing.T) {
	f := newFixture(t)
	f.clearRankingAwards(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	s1 := f.enrolledStudent(t, "ana", course.ID)
	s2 := f.enrolledStudent(t, "bruno", course.ID)

	team, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Alpha",
		CourseID:      course.ID,
		ScrumMasterID: &s1.ID,
		DeveloperIDs:  []uint{s2.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, team)

	assert.Equal(t, 1, f.teamGrantCount(t, AwardTeamFormed, team.ID))
	assert.Equal(t, 30, f.teamTotal(t, team.ID))

	// The team grant flows into every member's total.
	assert.Equal(t, 30, f.studentTotal(t, s1.ID))
	assert.Equal(t, 30, f.studentTotal(t, s2.ID))
}

func TestCreateTeamRequiresEnrollment(t *testing.T) {
	f := newFixture(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	outsider := f.createStudent(t, "carla")

	_, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Alpha",
		CourseID:      course.ID,
		ScrumMasterID: &outsider.ID,
	})
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestCreateTeamRejectsOverCapacity(t *testing.T) {
	f := newFixture(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	s1 := f.enrolledStudent(t, "ana", course.ID)
	s2 := f.enrolledStudent(t, "bruno", course.ID)
	s3 := f.enrolledStudent(t, "carla", course.ID)

	_, err := f.teams.CreateTeam(CreateTeamInput{
		Name:           "Alpha",
		CourseID:       course.ID,
		ScrumMasterID:  &s1.ID,
		ProductOwnerID: &s2.ID,
		DeveloperIDs:   []uint{s3.ID},
		MaxMembers:     2,
	})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestSingleTeamPerCourse(t *testing.T) {
	f := newFixture(t)
	f.clearRankingAwards(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	s1 := f.enrolledStudent(t, "ana", course.ID)
	s2 := f.enrolledStudent(t, "bruno", course.ID)

	_, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Alpha",
		CourseID:      course.ID,
		ScrumMasterID: &s1.ID,
	})
	require.NoError(t, err)

	// Same student as a founding member of a second team in the course.
	_, err = f.teams.CreateTeam(CreateTeamInput{
		Name:         "Beta",
		CourseID:     course.ID,
		DeveloperIDs: []uint{s1.ID},
	})
	assert.ErrorIs(t, err, ErrAlreadyInTeam)

	// A second team in the same course for a different student is fine, but
	// adding the occupied student to it is not.
	beta, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Beta",
		CourseID:      course.ID,
		ScrumMasterID: &s2.ID,
	})
	require.NoError(t, err)

	_, err = f.teams.AddMember(beta.ID, s1.ID, models.TeamRoleDeveloper)
	assert.ErrorIs(t, err, ErrAlreadyInTeam)
}

func TestAddMemberFillsAndClosesTeam(t *testing.T) {
	f := newFixture(t)
	f.clearRankingAwards(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	s1 := f.enrolledStudent(t, "ana", course.ID)
	s2 := f.enrolledStudent(t, "bruno", course.ID)
	s3 := f.enrolledStudent(t, "carla", course.ID)

	team, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Alpha",
		CourseID:      course.ID,
		ScrumMasterID: &s1.ID,
		MaxMembers:    2,
	})
	require.NoError(t, err)
	assert.False(t, team.IsClosed)

	team, err = f.teams.AddMember(team.ID, s2.ID, models.TeamRoleDeveloper)
	require.NoError(t, err)
	assert.True(t, team.IsClosed)
	assert.Equal(t, 2, team.MemberCount())

	_, err = f.teams.AddMember(team.ID, s3.ID, models.TeamRoleDeveloper)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestAddMemberRoleConflict(t *testing.T) {
	f := newFixture(t)
	f.clearRankingAwards(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	s1 := f.enrolledStudent(t, "ana", course.ID)
	s2 := f.enrolledStudent(t, "bruno", course.ID)

	team, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Alpha",
		CourseID:      course.ID,
		ScrumMasterID: &s1.ID,
	})
	require.NoError(t, err)

	_, err = f.teams.AddMember(team.ID, s2.ID, models.TeamRoleScrumMaster)
	assert.ErrorIs(t, err, ErrRoleConflict)

	// The product owner slot is still free.
	team, err = f.teams.AddMember(team.ID, s2.ID, models.TeamRoleProductOwner)
	require.NoError(t, err)
	role, ok := team.RoleOf(s2.ID)
	require.True(t, ok)
	assert.Equal(t, models.TeamRoleProductOwner, role)
}

func TestRemoveMemberReopensClosedTeam(t *testing.T) {
	f := newFixture(t)
	f.clearRankingAwards(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	s1 := f.enrolledStudent(t, "ana", course.ID)
	s2 := f.enrolledStudent(t, "bruno", course.ID)

	team, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Alpha",
		CourseID:      course.ID,
		ScrumMasterID: &s1.ID,
		DeveloperIDs:  []uint{s2.ID},
		MaxMembers:    2,
	})
	require.NoError(t, err)
	assert.True(t, team.IsClosed)

	deleted, err := f.teams.RemoveMember(team.ID, s2.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	team, err = f.teams.GetTeamByID(team.ID)
	require.NoError(t, err)
	assert.False(t, team.IsClosed)
	assert.False(t, team.HasMember(s2.ID))
}

func TestRemoveLastMemberDeletesTeam(t *testing.T) {
	f := newFixture(t)
	f.clearRankingAwards(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	s1 := f.enrolledStudent(t, "ana", course.ID)

	team, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Alpha",
		CourseID:      course.ID,
		ScrumMasterID: &s1.ID,
	})
	require.NoError(t, err)
	teamID := team.ID
	require.Equal(t, 30, f.studentTotal(t, s1.ID))

	deleted, err := f.teams.RemoveMember(teamID, s1.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = f.teams.GetTeamByID(teamID)
	assert.ErrorIs(t, err, ErrNotFound)

	// No orphaned dependent rows survive the delete plan.
	var scoreRows int64
	require.NoError(t, f.db.Model(&models.Score{}).Where("team_id = ?", teamID).Count(&scoreRows).Error)
	assert.Zero(t, scoreRows)

	var grantRows int64
	require.NoError(t, f.db.Model(&models.TeamAward{}).Where("team_id = ?", teamID).Count(&grantRows).Error)
	assert.Zero(t, grantRows)

	// The departed member no longer carries the team's points.
	assert.Equal(t, 0, f.studentTotal(t, s1.ID))
}

func TestRemoveMemberNotMember(t *testing.T) {
	f := newFixture(t)
	f.clearRankingAwards(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	s1 := f.enrolledStudent(t, "ana", course.ID)
	s2 := f.enrolledStudent(t, "bruno", course.ID)

	team, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Alpha",
		CourseID:      course.ID,
		ScrumMasterID: &s1.ID,
	})
	require.NoError(t, err)

	_, err = f.teams.RemoveMember(team.ID, s2.ID)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestDeleteTeamIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.clearRankingAwards(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	s1 := f.enrolledStudent(t, "ana", course.ID)

	team, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Alpha",
		CourseID:      course.ID,
		ScrumMasterID: &s1.ID,
	})
	require.NoError(t, err)

	require.NoError(t, f.teams.DeleteTeam(team.ID))
	require.NoError(t, f.teams.DeleteTeam(team.ID))

	_, err = f.teams.GetTeamByID(team.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloseAndReopenTeam(t *testing.T) {
	f := newFixture(t)
	f.clearRankingAwards(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	s1 := f.enrolledStudent(t, "ana", course.ID)
	s2 := f.enrolledStudent(t, "bruno", course.ID)

	team, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Alpha",
		CourseID:      course.ID,
		ScrumMasterID: &s1.ID,
	})
	require.NoError(t, err)

	team, err = f.teams.CloseTeam(team.ID)
	require.NoError(t, err)
	assert.True(t, team.IsClosed)

	_, err = f.teams.AddMember(team.ID, s2.ID, models.TeamRoleDeveloper)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	team, err = f.teams.ReopenTeam(team.ID)
	require.NoError(t, err)
	assert.False(t, team.IsClosed)

	_, err = f.teams.AddMember(team.ID, s2.ID, models.TeamRoleDeveloper)
	require.NoError(t, err)
}

func TestAvailableTeamsByCourse(t *testing.T) {
	f := newFixture(t)
	f.clearRankingAwards(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	s1 := f.enrolledStudent(t, "ana", course.ID)
	s2 := f.enrolledStudent(t, "bruno", course.ID)

	open, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Open",
		CourseID:      course.ID,
		ScrumMasterID: &s1.ID,
	})
	require.NoError(t, err)

	closed, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Closed",
		CourseID:      course.ID,
		ScrumMasterID: &s2.ID,
		MaxMembers:    1,
	})
	require.NoError(t, err)
	require.True(t, closed.IsClosed)

	available, err := f.teams.AvailableTeamsByCourse(course.ID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].ID)

	taken, err := f.teams.TakenStudentIDs(course.ID)
	require.NoError(t, err)
	assert.True(t, taken[s1.ID])
	assert.True(t, taken[s2.ID])
}
