package factory

import (
	"context"

	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/insights"
	"github.com/mynaparrot/speech-relay/pkg/pipeline"
	insightsservice "github.com/mynaparrot/speech-relay/pkg/services/insights"
	"github.com/mynaparrot/speech-relay/pkg/transcript"
)

func provideTranscriptRecorder(app *config.AppConfig) *transcript.Recorder {
	return transcript.New(&app.Transcript, app.NatsConn, app.Logger)
}

func provideTranslator(ctx context.Context, app *config.AppConfig) (insights.Translator, error) {
	return insightsservice.NewTranslator(ctx, &app.Translation, app.Logger)
}

func provideSpeechQueue(app *config.AppConfig) (*insightsservice.SpeechQueue, error) {
	return insightsservice.NewSpeaker(&app.SpeechSynthesis, app.Logger)
}

// provideSpeaker keeps a disabled queue as a nil interface.
func provideSpeaker(q *insightsservice.SpeechQueue) insights.Speaker {
	if q == nil {
		return nil
	}
	return q
}

func provideProcessor(app *config.AppConfig, translator insights.Translator, speaker insights.Speaker, rec *transcript.Recorder) *pipeline.Processor {
	return pipeline.New(&app.Translation, translator, speaker, rec, app.Logger)
}
