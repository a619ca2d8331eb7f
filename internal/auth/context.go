package auth

import "github.com/gofiber/fiber/v2"

// Tenant identity is threaded explicitly from the edge: the gateway in
// front of this service authenticates the caller and forwards these
// headers. The ledger itself never reads ambient session state.

func TenantID(c *fiber.Ctx) string {
	return c.Get("X-Tenant-ID")
}

func ActorID(c *fiber.Ctx) string {
	return c.Get("X-User-ID")
}
