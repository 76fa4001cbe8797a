// main.go
package main

import (
	"log"
	"os"
	"time"

	"edscrum/database"
	"edscrum/handlers"
	"edscrum/middleware"
	"edscrum/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Initialize database and run migrations
	database.InitDB()
	defer database.CloseDB()

	// Wire the service graph
	handlers.Init(database.GetDB())

	// Background retention for read notifications
	cleanup := services.NewCleanupService(database.GetDB())
	cleanup.Start()
	defer cleanup.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimitMiddleware())

	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)
	authGroup.Get("/me", middleware.AuthMiddleware, handlers.GetProfile)
	authGroup.Put("/preferences", middleware.AuthMiddleware, handlers.UpdatePreferences)

	// Course routes
	courseGroup := api.Group("/courses")
	courseGroup.Use(middleware.AuthMiddleware)
	courseGroup.Post("/", middleware.TeacherOnly, handlers.CreateCourse)
	courseGroup.Get("/", handlers.ListCourses)
	courseGroup.Get("/:id", handlers.GetCourse)
	courseGroup.Post("/:id/enroll", handlers.EnrollInCourse)
	courseGroup.Get("/:id/students", handlers.GetEnrolledStudents)
	courseGroup.Get("/:id/teams", handlers.ListCourseTeams)
	courseGroup.Get("/:id/projects", handlers.ListCourseProjects)
	courseGroup.Get("/:id/ranking/students", handlers.GetStudentRanking)
	courseGroup.Get("/:id/ranking/teams", handlers.GetTeamRanking)

	// Team routes
	teamGroup := api.Group("/teams")
	teamGroup.Use(middleware.AuthMiddleware)
	teamGroup.Post("/", handlers.CreateTeam)
	teamGroup.Get("/mine", handlers.GetMyTeams)
	teamGroup.Get("/:id", handlers.GetTeam)
	teamGroup.Delete("/:id", handlers.DeleteTeam)
	teamGroup.Get("/:id/members", handlers.GetTeamMembers)
	teamGroup.Post("/:id/members", handlers.AddTeamMember)
	teamGroup.Delete("/:id/members/:studentId", handlers.RemoveTeamMember)
	teamGroup.Post("/:id/close", handlers.CloseTeam)
	teamGroup.Post("/:id/reopen", handlers.ReopenTeam)

	// Project routes
	projectGroup := api.Group("/projects")
	projectGroup.Use(middleware.AuthMiddleware)
	projectGroup.Post("/", middleware.TeacherOnly, handlers.CreateProject)
	projectGroup.Get("/:id", handlers.GetProject)
	projectGroup.Put("/:id", middleware.TeacherOnly, handlers.UpdateProject)
	projectGroup.Delete("/:id", middleware.TeacherOnly, handlers.DeleteProject)
	projectGroup.Post("/:id/start", middleware.TeacherOnly, handlers.StartProject)
	projectGroup.Post("/:id/complete", middleware.TeacherOnly, handlers.CompleteProject)
	projectGroup.Get("/:id/sprints", handlers.ListProjectSprints)

	// Sprint and user story routes
	sprintGroup := api.Group("/sprints")
	sprintGroup.Use(middleware.AuthMiddleware)
	sprintGroup.Post("/", handlers.CreateSprint)
	sprintGroup.Get("/:id", handlers.GetSprint)
	sprintGroup.Delete("/:id", handlers.DeleteSprint)
	sprintGroup.Post("/:id/complete", handlers.CompleteSprint)
	sprintGroup.Post("/:id/reopen", handlers.ReopenSprint)
	sprintGroup.Post("/:id/stories", handlers.AddUserStory)

	storyGroup := api.Group("/stories")
	storyGroup.Use(middleware.AuthMiddleware)
	storyGroup.Put("/:id/status", handlers.UpdateUserStoryStatus)

	// Award catalog and grant routes
	awardGroup := api.Group("/awards")
	awardGroup.Use(middleware.AuthMiddleware)
	awardGroup.Get("/", handlers.ListAwards)
	awardGroup.Post("/", middleware.TeacherOnly, handlers.CreateAward)
	awardGroup.Get("/available/student/:studentId", handlers.GetAvailableAwardsForStudent)
	awardGroup.Get("/available/team/:teamId", handlers.GetAvailableAwardsForTeam)
	awardGroup.Get("/:id", handlers.GetAward)
	awardGroup.Put("/:id", middleware.TeacherOnly, handlers.UpdateAward)
	awardGroup.Delete("/:id", middleware.TeacherOnly, handlers.DeleteAward)
	awardGroup.Post("/:id/grant/student", middleware.TeacherOnly, handlers.GrantAwardToStudent)
	awardGroup.Post("/:id/grant/team", middleware.TeacherOnly, handlers.GrantAwardToTeam)

	// Score routes
	scoreGroup := api.Group("/scores")
	scoreGroup.Use(middleware.AuthMiddleware)
	scoreGroup.Get("/me", handlers.GetMyPoints)
	scoreGroup.Get("/student/:studentId", handlers.GetStudentPoints)
	scoreGroup.Get("/team/:teamId", handlers.GetTeamPoints)

	// Notification routes
	notificationGroup := api.Group("/notifications")
	notificationGroup.Use(middleware.AuthMiddleware)
	notificationGroup.Get("/", handlers.GetNotifications)
	notificationGroup.Put("/read-all", handlers.MarkAllNotificationsRead)
	notificationGroup.Put("/:id/read", handlers.MarkNotificationRead)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("HTTP server starting on port %s", port)
	log.Printf("Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	appEnv := os.Getenv("APP_ENV")

	if appEnv == "production" {
		if jwtSecret == "" {
			log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
		}
		if len(jwtSecret) < 32 {
			log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
		}

		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
		return
	}

	if jwtSecret == "" {
		log.Println("WARNING: JWT_SECRET not set, using insecure development default")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
