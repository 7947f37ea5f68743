package handler

import (
	"context"
	"time"

	"go-pos-inventory/internal/cache"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Health checks database and cache connectivity.
func Health(db *gorm.DB, reports cache.ReportCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		cacheStatus := "connected"
		if _, disabled := reports.(cache.Noop); disabled {
			cacheStatus = "disabled"
		} else if reports.Ping(ctx) != nil {
			cacheStatus = "error"
		}

		status := fiber.StatusOK
		if dbStatus != "connected" || cacheStatus == "error" {
			status = fiber.StatusServiceUnavailable
		}

		return c.Status(status).JSON(fiber.Map{
			"ok":    status == fiber.StatusOK,
			"db":    dbStatus,
			"cache": cacheStatus,
		})
	}
}
