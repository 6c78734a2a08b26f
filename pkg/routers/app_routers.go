package routers

import (
	"io"
	"runtime"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	rr "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/factory"
	"github.com/mynaparrot/speech-relay/version"
)

type router struct {
	app       *fiber.App
	ctrl      *factory.ApplicationControllers
	endpoints config.EndpointsInfo
}

func New(appConfig *config.AppConfig, ctrl *factory.ApplicationControllers) *fiber.App {
	templateEngine := html.New(appConfig.Client.Path, ".html")

	if appConfig.Client.Debug {
		templateEngine.Reload(true)
		templateEngine.Debug(true)
	}

	cnf := fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		Views:       templateEngine,
		AppName:     "speech-relay version: " + version.Version + " runtime: " + runtime.Version(),
	}

	if appConfig.Client.ProxyHeader != "" {
		cnf.ProxyHeader = appConfig.Client.ProxyHeader
	}

	app := fiber.New(cnf)

	app.Use(logger.New(logger.Config{
		Done: func(c *fiber.Ctx, logString []byte) {
			appConfig.Logger.Debugln(string(logString))
		},
		Format: "${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}",
		Output: io.Discard,
	}))

	if appConfig.Client.PrometheusConf.Enable {
		prometheus := fiberprometheus.New("speech-relay")
		prometheus.RegisterAt(app, appConfig.Client.PrometheusConf.MetricsPath)
		app.Use(prometheus.Middleware)
	}

	app.Use(rr.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,OPTIONS",
	}))
	app.Static("/static", appConfig.Client.Path+"/static")

	r := &router{
		app:       app,
		ctrl:      ctrl,
		endpoints: appConfig.Endpoints,
	}

	r.registerPageRoutes()
	r.registerWebsocketRoutes()

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("not found")
	})

	return app
}

func (r *router) registerPageRoutes() {
	r.app.Get(r.endpoints.SpeechRecognition, r.ctrl.PageController.HandleSpeechRecognition)
	r.app.Get(r.endpoints.ObsSpeechOverlay, r.ctrl.PageController.HandleObsSpeechOverlay)
	r.app.Get("/healthCheck", r.ctrl.HealthCheckController.HandleHealthCheck)
}

func (r *router) registerWebsocketRoutes() {
	r.app.Get(r.endpoints.SpeechRecognitionWS, upgradeRequired, r.ctrl.SpeechRecognitionController.HandleWebSocket())
	r.app.Get(r.endpoints.ObsSpeechOverlayWS, upgradeRequired, r.ctrl.ObsSpeechOverlayController.HandleWebSocket())
}

// upgradeRequired rejects plain http requests on the websocket endpoints.
func upgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
