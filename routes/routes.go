package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/config"
	controller "projecthub/controllers"
	"projecthub/middleware"
	"projecthub/models"
	"projecthub/services"
	"projecthub/utils"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)

	// Admin endpoints
	admin := app.Group("/admin", middleware.Protected(), middleware.RequireRole(models.RoleAdmin))
	admin.Post("/register", controller.RegisterAdmin)
	admin.Get("/users", controller.ListUsers)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	serviceLogger := logrus.New()
	storage := utils.NewStorage(config.AppConfig.UploadDir)

	teamService := services.NewTeamService(db, serviceLogger)
	applicationService := services.NewApplicationService(db, serviceLogger)
	milestoneService := services.NewMilestoneService(db, storage, serviceLogger)
	projectService := services.NewProjectService(db, storage, serviceLogger)

	teamController := controller.NewTeamController(teamService, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	projectController := controller.NewProjectController(projectService, applicationService, log.New(os.Stdout, "PROJECT: ", log.LstdFlags))
	milestoneController := controller.NewMilestoneController(milestoneService, log.New(os.Stdout, "MILESTONE: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Team routes
	teams := api.Group("/teams")
	teams.Get("/", teamController.GetTeams)
	teams.Post("/", middleware.RequireStudent(), teamController.CreateTeam)
	teams.Get("/mine", middleware.RequireStudent(), teamController.GetMyTeams)
	teams.Post("/:id/members", middleware.RequireStudent(), teamController.AddMember)
	teams.Post("/:id/apply", middleware.RequireStudent(), teamController.ApplyToTeam)
	teams.Get("/:id/join-requests", middleware.RequireStudent(), teamController.GetJoinRequests)
	teams.Put("/:id/status", middleware.RequireProfessor(), projectController.UpdateTeamStatus)

	// Join request decisions
	joinRequests := api.Group("/join-requests", middleware.RequireStudent())
	joinRequests.Get("/mine", teamController.GetMyJoinRequests)
	joinRequests.Post("/:id/approve", teamController.ApproveJoinRequest)
	joinRequests.Post("/:id/reject", teamController.RejectJoinRequest)

	// Project routes
	projects := api.Group("/projects")
	projects.Post("/", middleware.RequireProfessor(), projectController.CreateProject)
	projects.Get("/available", middleware.RequireStudent(), projectController.GetAvailableProjects)
	projects.Get("/active", middleware.RequireStudent(), projectController.GetActiveProjects)
	projects.Get("/mine", middleware.RequireProfessor(), projectController.GetMyProjects)
	projects.Get("/:id", projectController.GetProject)
	projects.Put("/:id", middleware.RequireProfessor(), projectController.UpdateProject)
	projects.Put("/:id/status", middleware.RequireProfessor(), projectController.UpdateProjectStatus)
	projects.Delete("/:id", middleware.RequireProfessor(), projectController.DeleteProject)
	projects.Post("/:id/resources", middleware.RequireProfessor(), projectController.UploadResource)
	projects.Get("/:id/resources/:resourceID", projectController.DownloadResource)
	projects.Post("/:id/milestones", middleware.RequireProfessor(), milestoneController.AddMilestone)

	// Application routes
	applications := api.Group("/applications")
	applications.Post("/", middleware.RequireStudent(), projectController.ApplyToProject)
	applications.Get("/mine", middleware.RequireStudent(), projectController.GetMyApplications)
	applications.Post("/:id/approve", middleware.RequireProfessor(), projectController.ApproveApplication)
	applications.Delete("/:id", middleware.RequireStudent(), projectController.WithdrawApplication)

	// Milestone routes
	milestones := api.Group("/milestones")
	milestones.Get("/mine", middleware.RequireStudent(), milestoneController.GetMyMilestones)
	milestones.Post("/:id/submit", middleware.RequireStudent(), milestoneController.SubmitMilestone)
	milestones.Put("/:id/grade", middleware.RequireProfessor(), milestoneController.GradeMilestone)

	// Submission routes
	submissions := api.Group("/submissions")
	submissions.Get("/", middleware.RequireProfessor(), milestoneController.GetSubmissions)
	submissions.Put("/:id/grade", middleware.RequireProfessor(), milestoneController.GradeSubmission)

	// Collaborator finder
	students := api.Group("/students")
	students.Get("/", projectController.GetStudents)
	students.Put("/me", middleware.RequireStudent(), projectController.UpdateMyProfile)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
