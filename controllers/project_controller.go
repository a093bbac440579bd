package controller

import (
	"io"
	"log"

	"github.com/gofiber/fiber/v2"

	"projecthub/models"
	"projecthub/services"
	"projecthub/utils"
)

type ProjectController struct {
	Service      *services.ProjectService
	Applications *services.ApplicationService
	Logger       *log.Logger
}

func NewProjectController(service *services.ProjectService, applications *services.ApplicationService, logger *log.Logger) *ProjectController {
	return &ProjectController{
		Service:      service,
		Applications: applications,
		Logger:       logger,
	}
}

// CreateProject publishes a project, optionally with its initial milestones.
func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	professor := c.Locals("professor").(*models.Professor)

	var input services.CreateProjectInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	project, err := pc.Service.CreateProject(professor.ID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(project))
}

// UpdateProject applies a partial update to an owned project.
func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	professor := c.Locals("professor").(*models.Professor)
	projectID := utils.ParseUint(c.Params("id"))

	var input services.UpdateProjectInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	project, err := pc.Service.UpdateProject(projectID, professor.ID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(project))
}

// UpdateProjectStatus transitions a project's lifecycle status.
func (pc *ProjectController) UpdateProjectStatus(c *fiber.Ctx) error {
	professor := c.Locals("professor").(*models.Professor)
	projectID := utils.ParseUint(c.Params("id"))

	var input struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	project, err := pc.Service.UpdateProjectStatus(projectID, input.Status, professor.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(project))
}

// DeleteProject removes a project and everything it owns.
func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	professor := c.Locals("professor").(*models.Professor)
	projectID := utils.ParseUint(c.Params("id"))

	if err := pc.Service.DeleteProject(projectID, professor.ID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": projectID}))
}

// GetProject returns the aggregated detail view of a project.
func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))

	detail, err := pc.Service.GetProjectDetail(projectID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(detail))
}

// GetAvailableProjects returns the student-facing project catalog.
func (pc *ProjectController) GetAvailableProjects(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)

	projects, err := pc.Service.ListAvailableProjects(student.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(projects))
}

// GetActiveProjects returns the student dashboard of assigned projects.
func (pc *ProjectController) GetActiveProjects(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)

	projects, err := pc.Service.ListActiveProjects(student.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(projects))
}

// GetMyProjects returns the projects the professor has published.
func (pc *ProjectController) GetMyProjects(c *fiber.Ctx) error {
	professor := c.Locals("professor").(*models.Professor)

	projects, err := pc.Service.ListProfessorProjects(professor.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(projects))
}

// UploadResource attaches an uploaded file to a project.
func (pc *ProjectController) UploadResource(c *fiber.Ctx) error {
	professor := c.Locals("professor").(*models.Professor)
	projectID := utils.ParseUint(c.Params("id"))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read file", err)
	}

	resource, err := pc.Service.AddResource(projectID, professor.ID, fileHeader.Filename, data)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(resource))
}

// DownloadResource streams a project resource back to the client.
func (pc *ProjectController) DownloadResource(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))
	resourceID := utils.ParseUint(c.Params("resourceID"))

	filename, data, err := pc.Service.GetResource(projectID, resourceID)
	if err != nil {
		return serviceError(c, err)
	}

	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// ApplyToProject files the student's team application for a project.
func (pc *ProjectController) ApplyToProject(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)

	var input services.ApplyToProjectInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	application, err := pc.Applications.ApplyTeamToProject(student.ID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(application))
}

// ApproveApplication accepts a team application; project owner only.
func (pc *ProjectController) ApproveApplication(c *fiber.Ctx) error {
	professor := c.Locals("professor").(*models.Professor)
	applicationID := utils.ParseUint(c.Params("id"))

	application, err := pc.Applications.ApproveApplication(applicationID, professor.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(application))
}

// WithdrawApplication deletes the team's application; leader only.
func (pc *ProjectController) WithdrawApplication(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)
	applicationID := utils.ParseUint(c.Params("id"))

	if err := pc.Applications.WithdrawApplication(applicationID, student.ID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"withdrawn": applicationID}))
}

// GetMyApplications returns the applications filed by the student's teams.
func (pc *ProjectController) GetMyApplications(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)

	applications, err := pc.Applications.ListTeamApplications(student.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(applications))
}

// UpdateTeamStatus is the professor's direct decision on an applying team.
func (pc *ProjectController) UpdateTeamStatus(c *fiber.Ctx) error {
	professor := c.Locals("professor").(*models.Professor)
	teamID := utils.ParseUint(c.Params("id"))

	var input struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	team, err := pc.Applications.UpdateTeamStatus(teamID, input.Status, professor.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(team))
}

// GetStudents returns all students for the collaborator finder.
func (pc *ProjectController) GetStudents(c *fiber.Ctx) error {
	students, err := pc.Service.ListStudents()
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(students))
}

// UpdateMyProfile sets the student's collaborator-finder fields.
func (pc *ProjectController) UpdateMyProfile(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)

	var input services.UpdateStudentProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	updated, err := pc.Service.UpdateStudentProfile(student.ID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(updated))
}
