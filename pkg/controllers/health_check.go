package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/speech-relay/pkg/registry"
)

type HealthCheckController struct {
	registry *registry.Registry
}

func NewHealthCheckController(reg *registry.Registry) *HealthCheckController {
	return &HealthCheckController{
		registry: reg,
	}
}

// HandleHealthCheck reports process liveness and which roles are connected.
func (hc *HealthCheckController) HandleHealthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":   true,
		"producer": hc.registry.IsConnected(registry.RoleProducer),
		"consumer": hc.registry.IsConnected(registry.RoleConsumer),
	})
}
