package services

import (
	"testing"

	"edscrum/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) createSprint(t *testing.T, projectID, creatorID uint, name string) *models.Sprint {
	t.Helper()
	sprint := &models.Sprint{Name: name, ProjectID: projectID, CreatedByID: creatorID}
	require.NoError(t, f.sprints.CreateSprint(sprint))
	return sprint
}

func TestCompleteSprintRequiresAllStoriesDone(t *testing.T) {
	f := newFixture(t)
	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	project := f.createProject(t, course.ID, "P1")
	sprint := f.createSprint(t, project.ID, teacher.ID, "Sprint 1")

	story := &models.UserStory{Title: "Login", SprintID: sprint.ID, StoryPoints: 3}
	require.NoError(t, f.sprints.AddUserStory(story))
	assert.Equal(t, models.StoryTodo, story.Status)

	_, err := f.sprints.CompleteSprint(sprint.ID)
	assert.ErrorIs(t, err, ErrStoriesPending)

	_, err = f.sprints.UpdateStoryStatus(story.ID, models.StoryDone)
	require.NoError(t, err)

	done, err := f.sprints.CompleteSprint(sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SprintConcluido, done.Status)
}

func TestReopenSprintRegressesCompletedProject(t *testing.T) {
	f := newFixture(t)
	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	project := f.createProject(t, course.ID, "P1")
	sprint := f.createSprint(t, project.ID, teacher.ID, "Sprint 1")

	_, err := f.sprints.CompleteSprint(sprint.ID)
	require.NoError(t, err)
	_, err = f.projects.CompleteProject(project.ID)
	require.NoError(t, err)

	reopened, err := f.sprints.ReopenSprint(sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SprintEmCurso, reopened.Status)

	fresh, err := f.projects.GetProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectEmCurso, fresh.Status)
}

func TestDeleteSprintRemovesStories(t *testing.T) {
	f := newFixture(t)
	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	project := f.createProject(t, course.ID, "P1")
	sprint := f.createSprint(t, project.ID, teacher.ID, "Sprint 1")

	require.NoError(t, f.sprints.AddUserStory(&models.UserStory{Title: "Login", SprintID: sprint.ID}))
	require.NoError(t, f.sprints.AddUserStory(&models.UserStory{Title: "Logout", SprintID: sprint.ID}))

	require.NoError(t, f.sprints.DeleteSprint(sprint.ID))
	// Idempotent on a missing sprint.
	require.NoError(t, f.sprints.DeleteSprint(sprint.ID))

	var stories int64
	require.NoError(t, f.db.Model(&models.UserStory{}).Where("sprint_id = ?", sprint.ID).Count(&stories).Error)
	assert.Zero(t, stories)
}

func TestCreateSprintRequiresProject(t *testing.T) {
	f := newFixture(t)
	teacher := f.createTeacher(t, "prof")

	err := f.sprints.CreateSprint(&models.Sprint{Name: "Orphan", ProjectID: 9999, CreatedByID: teacher.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProjectRemovesSprintsAndReleasesTeams(t *testing.T) {
	f := newFixture(t)
	f.clearRankingAwards(t)

	teacher := f.createTeacher(t, "prof")
	course := f.createCourse(t, teacher.ID, "ES")
	student := f.enrolledStudent(t, "ana", course.ID)
	project := f.createProject(t, course.ID, "P1")
	sprint := f.createSprint(t, project.ID, teacher.ID, "Sprint 1")
	require.NoError(t, f.sprints.AddUserStory(&models.UserStory{Title: "Login", SprintID: sprint.ID}))

	team, err := f.teams.CreateTeam(CreateTeamInput{
		Name:          "Alpha",
		CourseID:      course.ID,
		ProjectID:     &project.ID,
		ScrumMasterID: &student.ID,
	})
	require.NoError(t, err)

	require.NoError(t, f.projects.DeleteProject(project.ID))

	_, err = f.projects.GetProject(project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var sprints int64
	require.NoError(t, f.db.Model(&models.Sprint{}).Where("project_id = ?", project.ID).Count(&sprints).Error)
	assert.Zero(t, sprints)

	// The team survives, detached from the deleted project.
	fresh, err := f.teams.GetTeamByID(team.ID)
	require.NoError(t, err)
	assert.Nil(t, fresh.ProjectID)
}
