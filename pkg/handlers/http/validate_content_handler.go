package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/pawcraft/contentguard/pkg/sanitizer"
	"github.com/pawcraft/contentguard/pkg/types"
)

type validateContentRequest struct {
	Content *string        `json:"content"`
	Options *types.Options `json:"options"`
	UserID  string         `json:"user_id"`
}

// validateContentHandler returns only the risk verdict, computed under
// the most restrictive policy. Callers that want the cleaned content use
// the sanitize route.
type validateContentHandler struct {
	logger    *logrus.Logger
	sanitizer *sanitizer.Sanitizer
}

func NewValidateContentHandler(logger *logrus.Logger, s *sanitizer.Sanitizer) Handler {
	return &validateContentHandler{logger: logger, sanitizer: s}
}

func (h *validateContentHandler) Handle(c *fiber.Ctx) error {
	var req validateContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var content string
	if req.Content != nil {
		content = *req.Content
	}

	assessment := h.sanitizer.ValidateContent(c.Context(), content, req.Options)
	return c.Status(fiber.StatusOK).JSON(assessment)
}
