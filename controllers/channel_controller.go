package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"teamhub/chat"
	"teamhub/models"
	"teamhub/utils"
)

type ChannelController struct {
	Service *chat.ChannelService
	Logger  *log.Logger
}

func NewChannelController(service *chat.ChannelService, logger *log.Logger) *ChannelController {
	return &ChannelController{
		Service: service,
		Logger:  logger,
	}
}

// CreateChannel creates a channel with the caller as its first admin.
func (cc *ChannelController) CreateChannel(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name        string `json:"name" validate:"required,min=3,max=100"`
		Description string `json:"description" validate:"omitempty,max=500"`
		Type        string `json:"type" validate:"required,oneof=public private direct"`
		TeamID      *uint  `json:"team_id"`
		ProjectID   *uint  `json:"project_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	ch, err := cc.Service.Create(c.Context(), user.ID,
		input.Name, input.Description, input.Type, input.TeamID, input.ProjectID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(ch))
}

// GetChannels lists channels visible to the caller.
func (cc *ChannelController) GetChannels(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	channels, err := cc.Service.ListForUser(c.Context(), user.ID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(channels))
}

func (cc *ChannelController) GetChannel(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	ch, err := cc.Service.Get(c.Context(), utils.ParseUint(c.Params("id")), user.ID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(ch))
}

// JoinChannel adds the caller to a public channel.
func (cc *ChannelController) JoinChannel(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	ch, err := cc.Service.Join(c.Context(), utils.ParseUint(c.Params("id")), user.ID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(ch))
}

func (cc *ChannelController) LeaveChannel(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	ch, err := cc.Service.Leave(c.Context(), utils.ParseUint(c.Params("id")), user.ID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(ch))
}

// AddMember lets a channel admin pull a user in.
func (cc *ChannelController) AddMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		UserID uint `json:"user_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	ch, err := cc.Service.AddMember(c.Context(), utils.ParseUint(c.Params("id")), user.ID, input.UserID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(ch))
}

// ArchiveChannel soft-deletes the channel; its messages remain.
func (cc *ChannelController) ArchiveChannel(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if err := cc.Service.Archive(c.Context(), utils.ParseUint(c.Params("id")), user.ID); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"archived": true}))
}
