package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"projecthub/config"
	"projecthub/models"
	"projecthub/utils"
)

func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Try to get token from Authorization header first
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid authorization format",
				})
			}
			token = tokenParts[1]
		} else {
			// Fall back to cookie if header not present
			token = c.Cookies("access_token")
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authorization required",
				})
			}
		}

		claims, err := utils.ParseJWTToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		var user models.User
		if err := config.DB.First(&user, claims.UserID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		c.Locals("user", &user)
		c.Locals("userID", user.ID)

		return c.Next()
	}
}

// RequireRole restricts a route to the given roles. Must run after
// Protected().
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization required",
			})
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}

// RequireStudent loads the student profile for the authenticated user into
// locals. Must run after Protected().
func RequireStudent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok || user.Role != models.RoleStudent {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Student access required",
			})
		}

		var student models.Student
		if err := config.DB.Where("user_id = ?", user.ID).First(&student).Error; err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Student profile not found",
			})
		}

		c.Locals("student", &student)
		return c.Next()
	}
}

// RequireProfessor loads the professor profile for the authenticated user
// into locals. Must run after Protected().
func RequireProfessor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok || user.Role != models.RoleProfessor {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Professor access required",
			})
		}

		var professor models.Professor
		if err := config.DB.Where("user_id = ?", user.ID).First(&professor).Error; err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Professor profile not found",
			})
		}

		c.Locals("professor", &professor)
		return c.Next()
	}
}
