package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"nauassist/internal/schedule"
	"nauassist/internal/service"
)

// RegisterRoutes mounts the API surface under /api/v1 plus the root-level
// health check.
func RegisterRoutes(app *fiber.App,
	assistant *service.Assistant,
	engine *schedule.Engine,
	groups GroupDirectory,
	db *mongo.Client,
	aiMode string,
) {
	v1 := app.Group("/api/v1")
	NewChatHandler(assistant).Register(v1)
	NewScheduleHandler(engine).Register(v1)
	NewGroupHandler(groups).Register(v1)

	NewHealthHandler(db, aiMode).Register(app)
}
