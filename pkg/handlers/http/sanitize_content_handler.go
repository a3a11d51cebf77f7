package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/risk"
	"github.com/pawcraft/contentguard/pkg/sanitizer"
	"github.com/pawcraft/contentguard/pkg/telemetry"
	"github.com/pawcraft/contentguard/pkg/types"
)

type sanitizeContentRequest struct {
	// Content is a pointer so an absent or null field degrades to empty
	// content instead of an error.
	Content     *string           `json:"content"`
	ContentType types.ContentType `json:"content_type"`
	Options     *types.Options    `json:"options"`
	UserID      string            `json:"user_id"`
}

type sanitizeContentResponse struct {
	Result types.SanitizationResult `json:"result"`
	Risk   types.RiskAssessment     `json:"risk"`
}

type sanitizeContentHandler struct {
	logger    *logrus.Logger
	sanitizer *sanitizer.Sanitizer
	reporter  telemetry.Reporter
	tracker   *telemetry.ViolationTracker
}

func NewSanitizeContentHandler(
	logger *logrus.Logger,
	s *sanitizer.Sanitizer,
	reporter telemetry.Reporter,
	tracker *telemetry.ViolationTracker,
) Handler {
	return &sanitizeContentHandler{
		logger:    logger,
		sanitizer: s,
		reporter:  reporter,
		tracker:   tracker,
	}
}

func (h *sanitizeContentHandler) Handle(c *fiber.Ctx) error {
	var req sanitizeContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var content string
	if req.Content != nil {
		content = *req.Content
	}

	result := h.sanitizer.Sanitize(c.Context(), content, req.ContentType, req.Options)
	assessment := risk.Assess(result, policy.For(req.ContentType).Strictness)

	if !result.IsValid {
		h.report(c, req, result)
	}

	return c.Status(fiber.StatusOK).JSON(sanitizeContentResponse{
		Result: result,
		Risk:   assessment,
	})
}

func (h *sanitizeContentHandler) report(c *fiber.Ctx, req sanitizeContentRequest, result types.SanitizationResult) {
	rctx := telemetry.ReportContext{
		UserID:      req.UserID,
		ContentType: req.ContentType,
		Source:      "api",
		RemoteIP:    c.IP(),
	}
	h.reporter.ReportSecurityViolations(c.Context(), result.SecurityViolations, rctx)

	if h.tracker == nil || req.UserID == "" {
		return
	}
	total, exceeded := h.tracker.Track(c.Context(), req.UserID, len(result.SecurityViolations))
	if exceeded {
		h.logger.WithFields(logrus.Fields{
			"user_id":    req.UserID,
			"violations": total,
		}).Warn("user exceeded violation threshold")
		h.reporter.ReportRateLimitExceeded(c.Context(), req.UserID, int(total), h.tracker.Window(), rctx)
	}
}
