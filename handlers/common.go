// handlers/common.go - Service wiring and shared HTTP helpers
package handlers

import (
	"errors"
	"strconv"

	"edscrum/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	notificationService *services.NotificationService
	scoreService        *services.ScoreService
	awardService        *services.AwardService
	evaluator           *services.RuleEvaluator
	teamService         *services.TeamService
	courseService       *services.CourseService
	projectService      *services.ProjectService
	sprintService       *services.SprintService
)

// Init wires the service graph against the given database connection.
// The evaluator sits between the award service and the domain services so
// that team, sprint, and project events can trigger automatic grants.
func Init(db *gorm.DB) {
	notificationService = services.NewNotificationService(db)
	scoreService = services.NewScoreService(db)
	awardService = services.NewAwardService(db, scoreService, notificationService)
	facts := services.NewFactProvider(db, scoreService)
	evaluator = services.NewRuleEvaluator(db, awardService, facts)
	teamService = services.NewTeamService(db, scoreService, evaluator, notificationService)
	courseService = services.NewCourseService(db)
	projectService = services.NewProjectService(db, evaluator, notificationService)
	sprintService = services.NewSprintService(db, evaluator, notificationService)
}

// parseID reads a numeric route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, fiber.NewError(400, "Invalid "+name)
	}
	return uint(id), nil
}

// fail translates service errors into HTTP responses.
func fail(c *fiber.Ctx, err error) error {
	status := 500
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = 404
	case errors.Is(err, services.ErrForbidden):
		status = 403
	case errors.Is(err, services.ErrInvalidCode):
		status = 400
	case errors.Is(err, services.ErrNotEnrolled),
		errors.Is(err, services.ErrAlreadyInTeam),
		errors.Is(err, services.ErrRoleConflict),
		errors.Is(err, services.ErrCapacityExceeded),
		errors.Is(err, services.ErrNotMember),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrDuplicateGrant),
		errors.Is(err, services.ErrAwardInUse),
		errors.Is(err, services.ErrAlreadyEnrolled),
		errors.Is(err, services.ErrStoriesPending):
		status = 409
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
