// handlers/awards.go - Award catalog and grant endpoints
package handlers

import (
	"edscrum/models"

	"github.com/gofiber/fiber/v2"
)

// ListAwards lists the award catalog.
// GET /api/awards
func ListAwards(c *fiber.Ctx) error {
	awards, err := awardService.ListAwards()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "awards": awards})
}

// GetAward retrieves a single award definition.
// GET /api/awards/:id
func GetAward(c *fiber.Ctx) error {
	awardID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	award, err := awardService.GetAward(awardID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "award": award})
}

// CreateAward adds a definition to the catalog.
// POST /api/awards
func CreateAward(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Points      int    `json:"points"`
		Type        string `json:"type"`
		TargetType  string `json:"target_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Award name is required"})
	}
	if req.Points < 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Points must not be negative"})
	}

	awardType := models.AwardType(req.Type)
	if awardType != models.AwardManual && awardType != models.AwardAutomatic {
		awardType = models.AwardManual
	}
	targetType := models.AwardTarget(req.TargetType)
	if targetType != models.TargetIndividual && targetType != models.TargetTeam {
		targetType = models.TargetIndividual
	}

	award := models.Award{
		Name:        req.Name,
		Description: req.Description,
		Points:      req.Points,
		Type:        awardType,
		TargetType:  targetType,
	}
	if err := awardService.CreateAward(&award); err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "award": award})
}

// UpdateAward edits a definition. Past grants keep their frozen points.
// PUT /api/awards/:id
func UpdateAward(c *fiber.Ctx) error {
	awardID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Points      int    `json:"points"`
		Type        string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.Points < 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Points must not be negative"})
	}

	award, err := awardService.UpdateAward(awardID, req.Name, req.Description, req.Points, models.AwardType(req.Type))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "award": award})
}

// DeleteAward removes a definition that has never been granted.
// DELETE /api/awards/:id
func DeleteAward(c *fiber.Ctx) error {
	awardID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := awardService.DeleteAward(awardID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Award deleted"})
}

// GrantAwardToStudent manually grants an award to a student.
// POST /api/awards/:id/grant/student
func GrantAwardToStudent(c *fiber.Ctx) error {
	awardID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		StudentID uint  `json:"student_id"`
		ProjectID *uint `json:"project_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.StudentID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Student ID is required"})
	}

	if err := awardService.GrantToStudent(awardID, req.StudentID, req.ProjectID); err != nil {
		return fail(c, err)
	}

	// The student's total changed, re-check ranking milestones.
	evaluator.ScoreChanged(req.StudentID)

	return c.Status(201).JSON(fiber.Map{"success": true, "message": "Award granted"})
}

// GrantAwardToTeam manually grants an award to a team.
// POST /api/awards/:id/grant/team
func GrantAwardToTeam(c *fiber.Ctx) error {
	awardID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		TeamID    uint  `json:"team_id"`
		ProjectID *uint `json:"project_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.TeamID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Team ID is required"})
	}

	if err := awardService.GrantToTeam(awardID, req.TeamID, req.ProjectID); err != nil {
		return fail(c, err)
	}

	// Team grants move every member's total.
	if members, merr := teamService.TeamMembers(req.TeamID); merr == nil {
		for _, member := range members {
			evaluator.ScoreChanged(member.ID)
		}
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "message": "Award granted"})
}

// GetAvailableAwardsForStudent lists awards not yet granted to a student
// for the given project.
// GET /api/awards/available/student/:studentId?project_id=N
func GetAvailableAwardsForStudent(c *fiber.Ctx) error {
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return fail(c, err)
	}
	projectID := uint(c.QueryInt("project_id"))

	awards, err := awardService.AvailableAwardsForStudent(studentID, projectID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "awards": awards})
}

// GetAvailableAwardsForTeam lists awards not yet granted to a team for the
// given project.
// GET /api/awards/available/team/:teamId?project_id=N
func GetAvailableAwardsForTeam(c *fiber.Ctx) error {
	teamID, err := parseID(c, "teamId")
	if err != nil {
		return fail(c, err)
	}
	projectID := uint(c.QueryInt("project_id"))

	awards, err := awardService.AvailableAwardsForTeam(teamID, projectID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "awards": awards})
}
