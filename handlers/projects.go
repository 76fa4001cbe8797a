// handlers/projects.go - Project lifecycle endpoints
package handlers

import (
	"time"

	"edscrum/models"

	"github.com/gofiber/fiber/v2"
)

type projectRequest struct {
	Name        string     `json:"name"`
	SprintGoals string     `json:"sprint_goals"`
	CourseID    uint       `json:"course_id"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// CreateProject creates a project in PLANEAMENTO state.
// POST /api/projects
func CreateProject(c *fiber.Ctx) error {
	var req projectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.Name == "" || req.CourseID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Project name and course ID are required"})
	}

	project := models.Project{
		Name:        req.Name,
		SprintGoals: req.SprintGoals,
		CourseID:    req.CourseID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := projectService.CreateProject(&project); err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "project": project})
}

// GetProject retrieves a project with its sprints and teams.
// GET /api/projects/:id
func GetProject(c *fiber.Ctx) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	project, err := projectService.GetProject(projectID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "project": project})
}

// ListCourseProjects lists the projects of a course.
// GET /api/courses/:id/projects
func ListCourseProjects(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	projects, err := projectService.ListProjectsByCourse(courseID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "projects": projects})
}

// UpdateProject changes a project's name and sprint goals.
// PUT /api/projects/:id
func UpdateProject(c *fiber.Ctx) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req projectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	project, err := projectService.UpdateProject(projectID, req.Name, req.SprintGoals)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "project": project})
}

// StartProject moves a project to EM_CURSO.
// POST /api/projects/:id/start
func StartProject(c *fiber.Ctx) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	project, err := projectService.StartProject(projectID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "project": project})
}

// CompleteProject moves a project to CONCLUIDO, triggering completion
// awards for its teams.
// POST /api/projects/:id/complete
func CompleteProject(c *fiber.Ctx) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	project, err := projectService.CompleteProject(projectID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "project": project})
}

// DeleteProject removes a project and its sprints and stories.
// DELETE /api/projects/:id
func DeleteProject(c *fiber.Ctx) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := projectService.DeleteProject(projectID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Project deleted"})
}
