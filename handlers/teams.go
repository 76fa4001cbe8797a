// handlers/teams.go - Team formation and membership endpoints
package handlers

import (
	"edscrum/middleware"
	"edscrum/models"
	"edscrum/services"

	"github.com/gofiber/fiber/v2"
)

// CreateTeam forms a new team in a course.
// POST /api/teams
func CreateTeam(c *fiber.Ctx) error {
	var req struct {
		Name           string `json:"name"`
		CourseID       uint   `json:"course_id"`
		ProjectID      *uint  `json:"project_id"`
		ScrumMasterID  *uint  `json:"scrum_master_id"`
		ProductOwnerID *uint  `json:"product_owner_id"`
		DeveloperIDs   []uint `json:"developer_ids"`
		MaxMembers     int    `json:"max_members"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Team name is required"})
	}
	if req.CourseID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Course ID is required"})
	}

	team, err := teamService.CreateTeam(services.CreateTeamInput{
		Name:           req.Name,
		CourseID:       req.CourseID,
		ProjectID:      req.ProjectID,
		ScrumMasterID:  req.ScrumMasterID,
		ProductOwnerID: req.ProductOwnerID,
		DeveloperIDs:   req.DeveloperIDs,
		MaxMembers:     req.MaxMembers,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "team": team})
}

// GetTeam retrieves a team with its members.
// GET /api/teams/:id
func GetTeam(c *fiber.Ctx) error {
	teamID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	team, err := teamService.GetTeamByID(teamID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "team": team})
}

// ListCourseTeams lists teams in a course. available=true filters to teams
// that can still accept members.
// GET /api/courses/:id/teams
func ListCourseTeams(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var (
		teams []models.Team
		lerr  error
	)
	if c.Query("available") == "true" {
		teams, lerr = teamService.AvailableTeamsByCourse(courseID)
	} else {
		teams, lerr = teamService.ListTeamsByCourse(courseID)
	}
	if lerr != nil {
		return fail(c, lerr)
	}

	return c.JSON(fiber.Map{"success": true, "teams": teams})
}

// GetMyTeams lists the teams the authenticated user belongs to.
// GET /api/teams/mine
func GetMyTeams(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teams, err := teamService.TeamsByUser(userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "teams": teams})
}

// GetTeamMembers lists the members of a team.
// GET /api/teams/:id/members
func GetTeamMembers(c *fiber.Ctx) error {
	teamID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	members, err := teamService.TeamMembers(teamID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "members": members})
}

// AddTeamMember adds a student to a team in the given role.
// POST /api/teams/:id/members
func AddTeamMember(c *fiber.Ctx) error {
	teamID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		StudentID uint   `json:"student_id"`
		Role      string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.StudentID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Student ID is required"})
	}

	role := models.TeamRole(req.Role)
	switch role {
	case models.TeamRoleScrumMaster, models.TeamRoleProductOwner, models.TeamRoleDeveloper:
	case "":
		role = models.TeamRoleDeveloper
	default:
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid team role"})
	}

	team, err := teamService.AddMember(teamID, req.StudentID, role)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "team": team})
}

// RemoveTeamMember removes a student from a team. Removing the last member
// deletes the team.
// DELETE /api/teams/:id/members/:studentId
func RemoveTeamMember(c *fiber.Ctx) error {
	teamID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return fail(c, err)
	}

	deleted, err := teamService.RemoveMember(teamID, studentID)
	if err != nil {
		return fail(c, err)
	}

	if deleted {
		return c.JSON(fiber.Map{"success": true, "message": "Member removed; empty team deleted", "team_deleted": true})
	}

	team, err := teamService.GetTeamByID(teamID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "team": team, "team_deleted": false})
}

// CloseTeam closes a team to new members.
// POST /api/teams/:id/close
func CloseTeam(c *fiber.Ctx) error {
	teamID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	team, err := teamService.CloseTeam(teamID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "team": team})
}

// ReopenTeam reopens a closed team.
// POST /api/teams/:id/reopen
func ReopenTeam(c *fiber.Ctx) error {
	teamID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	team, err := teamService.ReopenTeam(teamID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "team": team})
}

// DeleteTeam removes a team and its dependent records.
// DELETE /api/teams/:id
func DeleteTeam(c *fiber.Ctx) error {
	teamID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := teamService.DeleteTeam(teamID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Team deleted"})
}
