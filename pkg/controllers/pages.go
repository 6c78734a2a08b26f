package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/speech-relay/pkg/config"
)

// PageController renders the two client pages.
type PageController struct {
	endpoints config.EndpointsInfo
	heartbeat string
}

func NewPageController(app *config.AppConfig) *PageController {
	return &PageController{
		endpoints: app.Endpoints,
		heartbeat: app.Heartbeat.Text,
	}
}

func (pc *PageController) HandleSpeechRecognition(c *fiber.Ctx) error {
	return c.Render(config.SpeechRecognitionTemplate, fiber.Map{
		"WsPath": pc.endpoints.SpeechRecognitionWS,
	})
}

func (pc *PageController) HandleObsSpeechOverlay(c *fiber.Ctx) error {
	return c.Render(config.ObsSpeechOverlayTemplate, fiber.Map{
		"WsPath":        pc.endpoints.ObsSpeechOverlayWS,
		"HeartbeatText": pc.heartbeat,
	})
}
