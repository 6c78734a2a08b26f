package controllers

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/speech-relay/pkg/metrics"
	"github.com/mynaparrot/speech-relay/pkg/pipeline"
	"github.com/mynaparrot/speech-relay/pkg/registry"
	"github.com/mynaparrot/speech-relay/pkg/supervisor"
	"github.com/mynaparrot/speech-relay/pkg/wsconn"
	"github.com/sirupsen/logrus"
)

// SpeechRecognitionController owns the producer sessions: the browser page
// that runs speech recognition and streams its results.
type SpeechRecognitionController struct {
	ctx       context.Context
	registry  *registry.Registry
	processor *pipeline.Processor
	logger    *logrus.Entry
}

func NewSpeechRecognitionController(ctx context.Context, reg *registry.Registry, processor *pipeline.Processor, logger *logrus.Logger) *SpeechRecognitionController {
	return &SpeechRecognitionController{
		ctx:       ctx,
		registry:  reg,
		processor: processor,
		logger:    logger.WithField("role", registry.RoleProducer),
	}
}

// HandleWebSocket upgrades the request and runs the session until the peer leaves.
func (sc *SpeechRecognitionController) HandleWebSocket() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		sc.Serve(c)
	})
}

// Serve runs one producer session on an accepted connection.
func (sc *SpeechRecognitionController) Serve(raw wsconn.RawConn) {
	conn := wsconn.New(raw)
	log := sc.logger.WithField("connId", conn.ID())

	ctx, cancel := context.WithCancel(sc.ctx)
	defer cancel()
	// server shutdown unblocks the read below
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	sc.registry.Add(registry.RoleProducer, conn)
	metrics.ConnectedSessions.WithLabelValues(registry.RoleProducer).Inc()
	log.Infoln("speech recognition connected")

	tasks := supervisor.New(ctx, log)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("producer session panicked: %v\n%s", r, debug.Stack())
		}
		tasks.Drain()
		sc.registry.RemoveIf(registry.RoleProducer, conn)
		_ = conn.Close()
		metrics.ConnectedSessions.WithLabelValues(registry.RoleProducer).Dec()
		log.Infoln("speech recognition disconnected")
	}()

	target := pipeline.TargetLookup(sc.registry.Lookup(registry.RoleConsumer))
	for {
		text, ok, err := conn.ReceiveText()
		if err != nil {
			logReceiveError(ctx, log, err)
			return
		}
		if !ok {
			log.Debugln("ignoring non-text frame")
			continue
		}
		sc.processor.ProcessMessage(tasks, conn, target, text)
	}
}

func logReceiveError(ctx context.Context, log *logrus.Entry, err error) {
	if ctx.Err() != nil {
		log.Debugln("session closed by server")
		return
	}
	var de *wsconn.DisconnectError
	if errors.As(err, &de) && de.IsUnexpectedClose() {
		log.WithError(err).Warnln("connection lost")
		return
	}
	log.WithError(err).Debugln("connection closed")
}
