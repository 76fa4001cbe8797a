// handlers/rankings.go - Ranking and score endpoints
package handlers

import (
	"edscrum/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetStudentRanking returns the course's students ordered by points.
// GET /api/courses/:id/ranking/students
func GetStudentRanking(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	ranking, err := scoreService.RankStudents(courseID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "ranking": ranking})
}

// GetTeamRanking returns the course's teams ordered by their own earned
// points.
// GET /api/courses/:id/ranking/teams
func GetTeamRanking(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	ranking, err := scoreService.RankTeams(courseID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "ranking": ranking})
}

// GetMyPoints returns the authenticated user's cached total.
// GET /api/scores/me
func GetMyPoints(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	total, err := scoreService.TotalPoints(userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "total_points": total})
}

// GetStudentPoints returns a student's cached total.
// GET /api/scores/student/:studentId
func GetStudentPoints(c *fiber.Ctx) error {
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return fail(c, err)
	}

	total, err := scoreService.TotalPoints(studentID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "total_points": total})
}

// GetTeamPoints returns a team's cached total.
// GET /api/scores/team/:teamId
func GetTeamPoints(c *fiber.Ctx) error {
	teamID, err := parseID(c, "teamId")
	if err != nil {
		return fail(c, err)
	}

	total, err := scoreService.TeamTotalPoints(teamID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "total_points": total})
}
