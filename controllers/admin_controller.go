package controller

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"projecthub/config"
	"projecthub/models"
	"projecthub/utils"
)

type RegisterAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterAdmin creates an admin account. Only reachable by an existing
// admin.
func RegisterAdmin(c *fiber.Ctx) error {
	var req RegisterAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var existingUser models.User
	if err := config.DB.Where("username = ? OR email = ?", req.Username, req.Email).
		First(&existingUser).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Username or email already registered", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", nil)
	}

	user := models.User{
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Admin{UserID: user.ID}).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create admin", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(user))
}

// ListUsers returns all users with their role profiles.
func ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := config.DB.Preload("Student").Preload("Professor").Preload("Admin").
		Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list users", err)
	}
	return c.JSON(utils.SuccessResponse(users))
}
