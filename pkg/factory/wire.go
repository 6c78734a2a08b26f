//go:build wireinject
// +build wireinject

package factory

import (
	"context"

	"github.com/google/wire"
	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/controllers"
	"github.com/mynaparrot/speech-relay/pkg/registry"
)

// build the dependency set for services
var serviceSet = wire.NewSet(
	registry.New,
	provideTranscriptRecorder,
	provideTranslator,
	provideSpeechQueue,
	provideSpeaker,
	provideProcessor,
)

// build the dependency set for controllers
var controllerSet = wire.NewSet(
	controllers.NewSpeechRecognitionController,
	controllers.NewObsSpeechOverlayController,
	controllers.NewPageController,
	controllers.NewHealthCheckController,
)

// NewAppFactory is the injector function that wire will implement.
func NewAppFactory(ctx context.Context, appConfig *config.AppConfig) (*Application, error) {
	wire.Build(
		serviceSet,
		controllerSet,
		wire.FieldsOf(new(*config.AppConfig), "Logger"),

		wire.Struct(new(ApplicationControllers), "*"),
		wire.Struct(new(Application), "*"),
	)
	return nil, nil // This return value is ignored.
}
