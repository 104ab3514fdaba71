package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/database"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db        *gorm.DB
	postStore string
}

func NewHealthHandler(db *gorm.DB, postStore string) *HealthHandler {
	return &HealthHandler{db: db, postStore: postStore}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		status = "degraded"
		dbStatus = "unhealthy"
	}

	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		PostStore: h.postStore,
	})
}
