package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"teamhub/chat"
	controller "teamhub/controllers"
	"teamhub/middleware"
	"teamhub/notify"
	"teamhub/realtime"
	"teamhub/store"
)

func SetupAuthRoutes(app *fiber.App) {
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
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, hub *realtime.Hub, pub chat.Publisher, appLog *logrus.Logger) {
	// Stores and lifecycle services
	st := store.New(db)
	dispatcher := notify.NewDispatcher(pub)

	teamService := chat.NewTeamService(st.Teams, pub, dispatcher, appLog)
	channelService := chat.NewChannelService(st.Channels, st.Teams, pub, appLog)
	messageService := chat.NewMessageService(st.Messages, st.Channels, pub, dispatcher, appLog)

	// Controllers with their respective loggers
	teamController := controller.NewTeamController(db, teamService, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	channelController := controller.NewChannelController(channelService, log.New(os.Stdout, "CHANNEL: ", log.LstdFlags))
	messageController := controller.NewMessageController(messageService, log.New(os.Stdout, "MESSAGE: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Team routes
	team := api.Group("/teams")
	team.Post("/", teamController.CreateTeam)
	team.Get("/", teamController.GetTeams)
	team.Get("/:id", teamController.GetTeam)
	team.Post("/:id/members", teamController.InviteMember)
	team.Put("/:id/members/:userId/role", teamController.ChangeRole)
	team.Delete("/:id/members/:userId", teamController.RemoveMember)
	team.Post("/:id/transfer-owner", teamController.TransferOwnership)
	team.Delete("/:id", teamController.DeleteTeam)

	// Channel routes
	channel := api.Group("/channels")
	channel.Post("/", channelController.CreateChannel)
	channel.Get("/", channelController.GetChannels)
	channel.Get("/:id", channelController.GetChannel)
	channel.Post("/:id/join", channelController.JoinChannel)
	channel.Post("/:id/leave", channelController.LeaveChannel)
	channel.Post("/:id/members", channelController.AddMember)
	channel.Delete("/:id", channelController.ArchiveChannel)

	// Message routes; posting is rate limited per user and channel
	channel.Post("/:id/messages", middleware.MessageRateLimiter(), messageController.PostMessage)
	channel.Get("/:id/messages", messageController.ListMessages)

	message := api.Group("/messages")
	message.Put("/:id", messageController.EditMessage)
	message.Delete("/:id", messageController.DeleteMessage)
	message.Post("/:id/reactions", messageController.AddReaction)
	message.Delete("/:id/reactions", messageController.RemoveReaction)
	message.Get("/:id/thread", messageController.GetThread)

	// WebSocket endpoint; the hub authenticates the handshake itself
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		hub.ServeWS(c)
	}))
}

func SetupRoutes(app *fiber.App, db *gorm.DB, hub *realtime.Hub, pub chat.Publisher, appLog *logrus.Logger) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app)
	SetupAPIRoutes(app, db, hub, pub, appLog)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
