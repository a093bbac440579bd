package controller

import (
	"github.com/gofiber/fiber/v2"

	"projecthub/services"
	"projecthub/utils"
)

// statusForKind maps a workflow rejection to its HTTP status.
func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindUnauthorized:
		return fiber.StatusUnauthorized
	case services.KindNotOwner, services.KindNotLeader, services.KindNotTeamMember:
		return fiber.StatusForbidden
	case services.KindDuplicateApplication, services.KindDuplicateMember,
		services.KindAlreadyMember, services.KindAlreadySubmitted,
		services.KindAlreadyAssigned:
		return fiber.StatusConflict
	case services.KindInvalidTransition, services.KindCapacityExceeded,
		services.KindTeamFull, services.KindTeamLocked,
		services.KindTeamMismatch, services.KindDeadlinePassed,
		services.KindInvalidGrade, services.KindValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// serviceError renders a service failure. Workflow rejections surface their
// message; infrastructure failures hide it behind a generic 500.
func serviceError(c *fiber.Ctx, err error) error {
	if kind := services.KindOf(err); kind != "" {
		return utils.ErrorResponse(c, statusForKind(kind), err.Error(), nil)
	}
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", err)
}
