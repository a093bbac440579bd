package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"projecthub/models"
	"projecthub/services"
	"projecthub/utils"
)

type TeamController struct {
	Service *services.TeamService
	Logger  *log.Logger
}

func NewTeamController(service *services.TeamService, logger *log.Logger) *TeamController {
	return &TeamController{
		Service: service,
		Logger:  logger,
	}
}

// CreateTeam creates a team led by the authenticated student.
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)

	var input services.CreateTeamInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	team, err := tc.Service.CreateTeam(student.ID, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(team))
}

// GetTeams returns all teams for the collaborator finder.
func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	teams, err := tc.Service.ListTeams()
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(teams))
}

// GetMyTeams returns the teams the authenticated student belongs to.
func (tc *TeamController) GetMyTeams(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)

	teams, err := tc.Service.ListStudentTeams(student.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(teams))
}

// AddMember adds a student to the team directly; leader only.
func (tc *TeamController) AddMember(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)
	teamID := utils.ParseUint(c.Params("id"))

	var input struct {
		StudentID uint `json:"student_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if err := tc.Service.AddMember(teamID, input.StudentID, student.ID); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"team_id":    teamID,
		"student_id": input.StudentID,
	}))
}

// ApplyToTeam files a join request against a team.
func (tc *TeamController) ApplyToTeam(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)
	teamID := utils.ParseUint(c.Params("id"))

	var input struct {
		Message string `json:"message" validate:"omitempty,max=500"`
	}
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	application, err := tc.Service.ApplyToTeam(student.ID, teamID, input.Message)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(application))
}

// GetJoinRequests returns the join requests filed against a team; leader
// only.
func (tc *TeamController) GetJoinRequests(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)
	teamID := utils.ParseUint(c.Params("id"))

	requests, err := tc.Service.ListJoinRequests(teamID, student.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(requests))
}

// GetMyJoinRequests returns the join requests the student has filed.
func (tc *TeamController) GetMyJoinRequests(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)

	requests, err := tc.Service.ListStudentJoinRequests(student.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(requests))
}

// ApproveJoinRequest accepts a pending join request; leader only.
func (tc *TeamController) ApproveJoinRequest(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)
	applicationID := utils.ParseUint(c.Params("id"))

	if err := tc.Service.ApproveJoinRequest(applicationID, student.ID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"status": models.StatusApproved}))
}

// RejectJoinRequest declines a pending join request; leader only.
func (tc *TeamController) RejectJoinRequest(c *fiber.Ctx) error {
	student := c.Locals("student").(*models.Student)
	applicationID := utils.ParseUint(c.Params("id"))

	if err := tc.Service.RejectJoinRequest(applicationID, student.ID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"status": models.StatusRejected}))
}
