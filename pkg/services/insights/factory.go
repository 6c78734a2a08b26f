package insightsservice

import (
	"context"
	"fmt"

	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/insights"
	"github.com/mynaparrot/speech-relay/pkg/insights/providers/azure"
	"github.com/mynaparrot/speech-relay/pkg/insights/providers/gas"
	"github.com/mynaparrot/speech-relay/pkg/insights/providers/google"
	"github.com/mynaparrot/speech-relay/pkg/insights/providers/openai"
	"github.com/mynaparrot/speech-relay/pkg/insights/providers/voicevox"
	"github.com/sirupsen/logrus"
)

// NewTranslator is a factory function that creates the configured translation backend.
// It returns nil without error when translation is disabled.
func NewTranslator(ctx context.Context, conf *config.TranslationConfig, logger *logrus.Logger) (insights.Translator, error) {
	if !conf.Enabled {
		return nil, nil
	}

	log := logger.WithFields(logrus.Fields{
		"service":  "translation",
		"provider": conf.Provider,
	})
	switch conf.Provider {
	case config.TranslationProviderGas:
		return gas.NewTranslator(conf, log)
	case config.TranslationProviderOpenAI:
		return openai.NewTranslator(conf, log)
	case config.TranslationProviderGoogle:
		return google.NewTranslator(ctx, conf, log)
	default:
		return nil, fmt.Errorf("unknown translation provider type: %s", conf.Provider)
	}
}

// NewSpeaker creates the configured speech synthesis backend behind a playback
// queue. It returns nil without error when speech synthesis is disabled.
func NewSpeaker(conf *config.SpeechSynthesisConfig, logger *logrus.Logger) (*SpeechQueue, error) {
	if !conf.Enabled {
		return nil, nil
	}

	log := logger.WithFields(logrus.Fields{
		"service":  "speech",
		"provider": conf.Provider,
	})

	var speaker insights.Speaker
	var err error
	switch conf.Provider {
	case config.SpeechProviderVoicevox:
		speaker, err = voicevox.NewSpeaker(&conf.Voicevox, nil, log)
	case config.SpeechProviderAzure:
		speaker, err = azure.NewSpeaker(&conf.Azure, log)
	default:
		return nil, fmt.Errorf("unknown speech provider type: %s", conf.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewSpeechQueue(speaker, conf.MaxWorkers, log), nil
}
