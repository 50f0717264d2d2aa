// internal/web/middleware/logging.go
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// RequestLogger returns the request logging middleware
func RequestLogger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${method} ${path} (${latency}) ${ip} ${locals:requestId}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Africa/Dakar",
	})
}
