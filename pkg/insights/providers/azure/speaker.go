package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/insights"
	"github.com/sirupsen/logrus"
)

// Speaker reads text on the default audio output with Azure Speech.
type Speaker struct {
	creds    config.CredentialsConfig
	language string
	voice    string
	log      *logrus.Entry
}

func NewSpeaker(conf *config.AzureSpeech, log *logrus.Entry) (*Speaker, error) {
	if conf.Credentials.APIKey == "" || conf.Credentials.Region == "" {
		return nil, fmt.Errorf("azure provider requires api_key (subscription key) and region")
	}

	return &Speaker{
		creds:    conf.Credentials,
		language: normalizeLanguage(conf.Language),
		voice:    conf.Voice,
		log:      log.WithField("service", "azure-tts"),
	}, nil
}

func (s *Speaker) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return insights.ErrEmptyText
	}

	conf, err := speech.NewSpeechConfigFromSubscription(s.creds.APIKey, s.creds.Region)
	if err != nil {
		return fmt.Errorf("failed to create azure speech config: %w", err)
	}
	defer conf.Close()

	if s.language != "" {
		if err = conf.SetSpeechSynthesisLanguage(s.language); err != nil {
			return fmt.Errorf("failed to set synthesis language: %w", err)
		}
	}
	if s.voice != "" {
		if err = conf.SetSpeechSynthesisVoiceName(s.voice); err != nil {
			return fmt.Errorf("failed to set synthesis voice: %w", err)
		}
	}

	audioConfig, err := audio.NewAudioConfigFromDefaultSpeakerOutput()
	if err != nil {
		return fmt.Errorf("failed to open default speaker: %w", err)
	}
	defer audioConfig.Close()

	synthesizer, err := speech.NewSpeechSynthesizerFromConfig(conf, audioConfig)
	if err != nil {
		return fmt.Errorf("failed to create speech synthesizer: %w", err)
	}
	defer synthesizer.Close()

	task := synthesizer.SpeakTextAsync(text)
	var outcome speech.SpeechSynthesisOutcome
	select {
	case outcome = <-task:
	case <-ctx.Done():
		if err = <-synthesizer.StopSpeakingAsync(); err != nil {
			s.log.WithError(err).Warnln("failed to stop speaking")
		}
		stopped := <-task
		stopped.Close()
		return ctx.Err()
	}
	defer outcome.Close()

	if outcome.Error != nil {
		return fmt.Errorf("synthesis outcome error: %w", outcome.Error)
	}
	if outcome.Result.Reason != common.SynthesizingAudioCompleted {
		cancellation, _ := speech.NewCancellationDetailsFromSpeechSynthesisResult(outcome.Result)
		details := ""
		if cancellation != nil {
			details = cancellation.ErrorDetails
		}
		return fmt.Errorf("synthesis failed: reason=%s, details=%s", outcome.Result.Reason.String(), details)
	}
	return nil
}

// normalizeLanguage maps script tags to the locales the synthesizer accepts.
func normalizeLanguage(language string) string {
	switch language {
	case "zh-Hans":
		return "zh-CN"
	case "zh-Hant":
		return "zh-TW"
	}
	return language
}
