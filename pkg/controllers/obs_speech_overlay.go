package controllers

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/heartbeat"
	"github.com/mynaparrot/speech-relay/pkg/metrics"
	"github.com/mynaparrot/speech-relay/pkg/registry"
	"github.com/mynaparrot/speech-relay/pkg/wsconn"
	"github.com/sirupsen/logrus"
)

// ObsSpeechOverlayController owns the consumer sessions, the OBS browser
// source showing the subtitles.
type ObsSpeechOverlayController struct {
	ctx       context.Context
	registry  *registry.Registry
	heartbeat config.HeartbeatInfo
	logger    *logrus.Entry
}

func NewObsSpeechOverlayController(ctx context.Context, app *config.AppConfig, reg *registry.Registry) *ObsSpeechOverlayController {
	return &ObsSpeechOverlayController{
		ctx:       ctx,
		registry:  reg,
		heartbeat: app.Heartbeat,
		logger:    app.Logger.WithField("role", registry.RoleConsumer),
	}
}

func (oc *ObsSpeechOverlayController) HandleWebSocket() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		oc.Serve(c)
	})
}

// Serve runs one consumer session. Incoming frames only prove liveness and
// are discarded. The session ends when the read fails or the heartbeat stops.
func (oc *ObsSpeechOverlayController) Serve(raw wsconn.RawConn) {
	conn := wsconn.New(raw, wsconn.WithWriteTimeout(oc.heartbeat.Timeout))
	log := oc.logger.WithField("connId", conn.ID())

	ctx, cancel := context.WithCancel(oc.ctx)

	oc.registry.Add(registry.RoleConsumer, conn)
	metrics.ConnectedSessions.WithLabelValues(registry.RoleConsumer).Inc()
	log.Infoln("obs speech overlay connected")

	hb := heartbeat.New(conn, oc.heartbeat.Text, oc.heartbeat.Interval, log)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hb.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		// a stopped heartbeat closes the socket so the read returns
		<-hb.Done()
		_ = conn.Close()
	}()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("consumer session panicked: %v\n%s", r, debug.Stack())
		}
		cancel()
		wg.Wait()
		if hb.Failed() {
			metrics.HeartbeatFailures.Inc()
		}
		oc.registry.RemoveIf(registry.RoleConsumer, conn)
		_ = conn.Close()
		metrics.ConnectedSessions.WithLabelValues(registry.RoleConsumer).Dec()
		log.Infoln("obs speech overlay disconnected")
	}()

	for {
		_, _, err := conn.ReceiveText()
		if err != nil {
			if hb.Failed() {
				log.WithError(hb.Err()).Warnln("heartbeat failed, closing session")
				return
			}
			logReceiveError(ctx, log, err)
			return
		}
	}
}
