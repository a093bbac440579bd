package controller

import (
	"io"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"projecthub/models"
	"projecthub/services"
	"projecthub/utils"
)

type MilestoneController struct {
	Service *services.MilestoneService
	Logger  *log.Logger
}

func NewMilestoneController(service *services.MilestoneService, logger *log.Logger) *MilestoneController {
	return &MilestoneController{
		Service: service,
		Logger:  logger,
	}
}

// AddMilestone defines a milestone on a project; owner only.
func (mc *MilestoneController) AddMilestone(c *fiber.Ctx) error {
	professor := c.Locals("professor").(*models.Professor)
	projectID := utils.ParseUint(c.Params("id"))

	var input services.MilestoneInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	milestone, err := mc.Service.AddMilestone(projectID, professor.ID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(milestone))
}

// SubmitMilestone records the team's submission. The request is multipart:
// team_id and text as form values, links newline-separated, files repeated
// under the "files" key.
func (mc *MilestoneController) SubmitMilestone(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)
	milestoneID := utils.ParseUint(c.Params("id"))

	teamID := utils.ParseUint(c.FormValue("team_id"))
	if teamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "team_id is required", nil)
	}

	var links []string
	for _, link := range strings.Split(c.FormValue("links"), "\n") {
		if trimmed := strings.TrimSpace(link); trimmed != "" {
			links = append(links, trimmed)
		}
	}

	var files []services.FileUpload
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fileHeader := range form.File["files"] {
			file, err := fileHeader.Open()
			if err != nil {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read uploaded file", err)
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read uploaded file", err)
			}
			files = append(files, services.FileUpload{
				Filename: fileHeader.Filename,
				Data:     data,
			})
		}
	}

	submission, err := mc.Service.SubmitMilestone(student.ID, services.SubmitMilestoneInput{
		MilestoneID: milestoneID,
		TeamID:      teamID,
		Text:        c.FormValue("text"),
		Links:       links,
		Files:       files,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(submission))
}

type gradeRequest struct {
	Grade    float64 `json:"grade" validate:"gte=0,lte=100"`
	Feedback string  `json:"feedback" validate:"omitempty,max=2000"`
	TeamID   uint    `json:"team_id"`
}

// GradeSubmission sets the grade and feedback on an existing submission.
func (mc *MilestoneController) GradeSubmission(c *fiber.Ctx) error {
	professor := c.Locals("professor").(*models.Professor)
	submissionID := utils.ParseUint(c.Params("id"))

	var input gradeRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	submission, err := mc.Service.GradeSubmission(submissionID, input.Grade, input.Feedback, professor.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(submission))
}

// GradeMilestone grades a milestone for a team, creating the submission slot
// when the team never submitted.
func (mc *MilestoneController) GradeMilestone(c *fiber.Ctx) error {
	professor := c.Locals("professor").(*models.Professor)
	milestoneID := utils.ParseUint(c.Params("id"))

	var input gradeRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if input.TeamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "team_id is required", nil)
	}

	submission, err := mc.Service.GradeMilestone(milestoneID, input.TeamID, input.Grade, input.Feedback, professor.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(submission))
}

// GetMyMilestones returns the milestones of the student's assigned projects.
func (mc *MilestoneController) GetMyMilestones(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)

	milestones, err := mc.Service.ListStudentMilestones(student.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(milestones))
}

// GetSubmissions returns submissions against the professor's projects,
// optionally narrowed with ?project_id=.
func (mc *MilestoneController) GetSubmissions(c *fiber.Ctx) error {
	professor := c.Locals("professor").(*models.Professor)

	var projectID *uint
	if raw := c.Query("project_id"); raw != "" {
		id := utils.ParseUint(raw)
		projectID = &id
	}

	submissions, err := mc.Service.ListProfessorSubmissions(professor.ID, projectID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(submissions))
}
