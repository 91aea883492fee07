package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"teamhub/chat"
	"teamhub/models"
	"teamhub/utils"
)

type MessageController struct {
	Service *chat.MessageService
	Logger  *log.Logger
}

func NewMessageController(service *chat.MessageService, logger *log.Logger) *MessageController {
	return &MessageController{
		Service: service,
		Logger:  logger,
	}
}

// PostMessage creates a message, or a thread reply when parent_id is set.
func (mc *MessageController) PostMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Content     string              `json:"content" validate:"required,max=5000"`
		ParentID    *uint               `json:"parent_id"`
		Attachments []models.Attachment `json:"attachments" validate:"omitempty,dive"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	msg, err := mc.Service.Post(c.Context(), utils.ParseUint(c.Params("id")), user.ID,
		input.Content, input.ParentID, input.Attachments)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(msg))
}

// ListMessages pages the channel feed. The cursor is the id of the oldest
// message from the previous page.
func (mc *MessageController) ListMessages(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	limit := c.QueryInt("limit", 50)
	beforeID := uint(c.QueryInt("before", 0))

	msgs, err := mc.Service.List(c.Context(), utils.ParseUint(c.Params("id")), user.ID, limit, beforeID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(msgs))
}

// EditMessage replaces content; author only.
func (mc *MessageController) EditMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Content string `json:"content" validate:"required,max=5000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	msg, err := mc.Service.Edit(c.Context(), utils.ParseUint(c.Params("id")), user.ID, input.Content)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(msg))
}

// DeleteMessage soft-deletes; the row stays for thread integrity.
func (mc *MessageController) DeleteMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	msg, err := mc.Service.Delete(c.Context(), utils.ParseUint(c.Params("id")), user.ID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(msg))
}

// AddReaction appends an (emoji, user) pair to the message.
func (mc *MessageController) AddReaction(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Emoji string `json:"emoji" validate:"required,max=32"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	msg, err := mc.Service.AddReaction(c.Context(), utils.ParseUint(c.Params("id")), user.ID, input.Emoji)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(msg))
}

// RemoveReaction is idempotent; removing a pair that was never added
// still succeeds.
func (mc *MessageController) RemoveReaction(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	emoji := c.Query("emoji")
	if emoji == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "emoji query parameter is required", nil)
	}

	msg, err := mc.Service.RemoveReaction(c.Context(), utils.ParseUint(c.Params("id")), user.ID, emoji)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(msg))
}

// GetThread returns a parent message and its replies oldest-first.
func (mc *MessageController) GetThread(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	parent, replies, err := mc.Service.Thread(c.Context(), utils.ParseUint(c.Params("id")), user.ID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"parent":  parent,
		"replies": replies,
	}))
}
