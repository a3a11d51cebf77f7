package http

import (
	"github.com/gofiber/fiber/v2"
)

type Handler interface {
	Handle(c *fiber.Ctx) error
}

// HandlerTransport wires the route handlers into the server.
type HandlerTransport struct {
	SanitizeContentHandler Handler
	ValidateContentHandler Handler
	ClearCacheHandler      Handler
}
