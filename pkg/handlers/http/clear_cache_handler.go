package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/pawcraft/contentguard/pkg/sanitizer"
)

// clearCacheHandler drops every memoized sanitization result. Used for
// test isolation and after policy upgrades.
type clearCacheHandler struct {
	logger    *logrus.Logger
	sanitizer *sanitizer.Sanitizer
}

func NewClearCacheHandler(logger *logrus.Logger, s *sanitizer.Sanitizer) Handler {
	return &clearCacheHandler{logger: logger, sanitizer: s}
}

func (h *clearCacheHandler) Handle(c *fiber.Ctx) error {
	h.sanitizer.ClearCache()
	h.logger.Info("result cache cleared")
	return c.SendStatus(http.StatusNoContent)
}
