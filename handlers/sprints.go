// handlers/sprints.go - Sprint and user story endpoints
package handlers

import (
	"time"

	"edscrum/middleware"
	"edscrum/models"

	"github.com/gofiber/fiber/v2"
)

// CreateSprint creates a sprint and triggers the creator's sprint
// milestones.
// POST /api/sprints
func CreateSprint(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name      string     `json:"name"`
		Goal      string     `json:"goal"`
		ProjectID uint       `json:"project_id"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.Name == "" || req.ProjectID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Sprint name and project ID are required"})
	}

	sprint := models.Sprint{
		Name:        req.Name,
		Goal:        req.Goal,
		ProjectID:   req.ProjectID,
		CreatedByID: userID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := sprintService.CreateSprint(&sprint); err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "sprint": sprint})
}

// GetSprint retrieves a sprint with its user stories.
// GET /api/sprints/:id
func GetSprint(c *fiber.Ctx) error {
	sprintID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	sprint, err := sprintService.GetSprint(sprintID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "sprint": sprint})
}

// ListProjectSprints lists the sprints of a project.
// GET /api/projects/:id/sprints
func ListProjectSprints(c *fiber.Ctx) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	sprints, err := sprintService.ListSprintsByProject(projectID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "sprints": sprints})
}

// CompleteSprint closes a sprint once every story is done.
// POST /api/sprints/:id/complete
func CompleteSprint(c *fiber.Ctx) error {
	sprintID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	sprint, err := sprintService.CompleteSprint(sprintID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "sprint": sprint})
}

// ReopenSprint moves a completed sprint back to EM_CURSO. A completed
// project regresses with it.
// POST /api/sprints/:id/reopen
func ReopenSprint(c *fiber.Ctx) error {
	sprintID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	sprint, err := sprintService.ReopenSprint(sprintID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "sprint": sprint})
}

// DeleteSprint removes a sprint and its stories.
// DELETE /api/sprints/:id
func DeleteSprint(c *fiber.Ctx) error {
	sprintID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := sprintService.DeleteSprint(sprintID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Sprint deleted"})
}

// AddUserStory adds a story to a sprint backlog.
// POST /api/sprints/:id/stories
func AddUserStory(c *fiber.Ctx) error {
	sprintID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		StoryPoints int    `json:"story_points"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Story title is required"})
	}

	story := models.UserStory{
		Title:       req.Title,
		Description: req.Description,
		StoryPoints: req.StoryPoints,
		SprintID:    sprintID,
	}
	if err := sprintService.AddUserStory(&story); err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "story": story})
}

// UpdateUserStoryStatus moves a story across the board.
// PUT /api/stories/:id/status
func UpdateUserStoryStatus(c *fiber.Ctx) error {
	storyID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	status := models.UserStoryStatus(req.Status)
	switch status {
	case models.StoryTodo, models.StoryDoing, models.StoryDone:
	default:
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid story status"})
	}

	story, err := sprintService.UpdateStoryStatus(storyID, status)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "story": story})
}
