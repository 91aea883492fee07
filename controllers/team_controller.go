package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"teamhub/chat"
	"teamhub/models"
	"teamhub/utils"
)

type TeamController struct {
	DB      *gorm.DB
	Service *chat.TeamService
	Logger  *log.Logger
}

func NewTeamController(db *gorm.DB, service *chat.TeamService, logger *log.Logger) *TeamController {
	return &TeamController{
		DB:      db,
		Service: service,
		Logger:  logger,
	}
}

// CreateTeam creates a team with the caller as its owner.
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name        string `json:"name" validate:"required,min=3,max=100"`
		Description string `json:"description" validate:"omitempty,max=500"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	team, err := tc.Service.Create(c.Context(), user.ID, input.Name, input.Description)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(team))
}

// GetTeams lists the caller's teams.
func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	teams, err := tc.Service.ListForUser(c.Context(), user.ID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(teams))
}

func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	team, err := tc.Service.Get(c.Context(), utils.ParseUint(c.Params("id")), user.ID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(team))
}

// InviteMember adds a user to the team, addressed by user id or email.
// The invite email is best-effort; the durable state and socket
// notification are what matter.
func (tc *TeamController) InviteMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		UserID uint   `json:"user_id" validate:"omitempty"`
		Email  string `json:"email" validate:"omitempty,email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var target models.User
	switch {
	case input.UserID != 0:
		if err := tc.DB.First(&target, input.UserID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
		}
	case input.Email != "":
		if err := tc.DB.Where("email = ?", strings.ToLower(input.Email)).First(&target).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
		}
	default:
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "user_id or email is required", nil)
	}

	team, err := tc.Service.InviteMember(c.Context(), utils.ParseUint(c.Params("id")), user.ID, target.ID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	go func(email, inviter, teamName string) {
		if err := utils.SendTeamInviteEmail(email, inviter, teamName); err != nil {
			tc.Logger.Printf("failed to send invite email to %s: %v", email, err)
		}
	}(target.Email, user.Name, team.Name)

	return c.JSON(utils.SuccessResponse(team))
}

// ChangeRole updates a member's role; owner only.
func (tc *TeamController) ChangeRole(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Role string `json:"role" validate:"required,oneof=admin member"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	team, err := tc.Service.ChangeRole(c.Context(),
		utils.ParseUint(c.Params("id")), user.ID, utils.ParseUint(c.Params("userId")), input.Role)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	team, err := tc.Service.RemoveMember(c.Context(),
		utils.ParseUint(c.Params("id")), user.ID, utils.ParseUint(c.Params("userId")))
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(team))
}

// TransferOwnership hands the team to another member in one atomic swap.
func (tc *TeamController) TransferOwnership(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		NewOwnerID uint `json:"new_owner_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	team, err := tc.Service.TransferOwnership(c.Context(),
		utils.ParseUint(c.Params("id")), user.ID, input.NewOwnerID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if err := tc.Service.Delete(c.Context(), utils.ParseUint(c.Params("id")), user.ID); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": true}))
}
