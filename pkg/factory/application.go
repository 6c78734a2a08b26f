package factory

import (
	"context"

	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/controllers"
	"github.com/mynaparrot/speech-relay/pkg/registry"
	insightsservice "github.com/mynaparrot/speech-relay/pkg/services/insights"
	"github.com/mynaparrot/speech-relay/pkg/transcript"
	"github.com/sirupsen/logrus"
)

// ApplicationControllers holds all the controllers.
type ApplicationControllers struct {
	SpeechRecognitionController *controllers.SpeechRecognitionController
	ObsSpeechOverlayController  *controllers.ObsSpeechOverlayController
	PageController              *controllers.PageController
	HealthCheckController       *controllers.HealthCheckController
}

// Application is the root struct holding all dependencies.
type Application struct {
	Controllers *ApplicationControllers
	AppConfig   *config.AppConfig
	Ctx         context.Context
	Registry    *registry.Registry
	speechQueue *insightsservice.SpeechQueue
	recorder    *transcript.Recorder
}

func (a *Application) Boot() {
	a.AppConfig.Logger.WithFields(logrus.Fields{
		"translation": a.AppConfig.Translation.Enabled,
		"speech":      a.AppConfig.SpeechSynthesis.Enabled,
		"transcript":  a.recorder.Enabled(),
	}).Infoln("enrichment services ready")
}

// Shutdown releases the shared collaborators. Sessions are expected to be
// gone already because the application context was cancelled.
func (a *Application) Shutdown() {
	if a.speechQueue != nil {
		a.speechQueue.Stop()
	}
	if err := a.recorder.Close(); err != nil {
		a.AppConfig.Logger.WithError(err).Warnln("failed to close transcript")
	}
	if a.AppConfig.NatsConn != nil {
		_ = a.AppConfig.NatsConn.Drain()
	}
}
