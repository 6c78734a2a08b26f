package config

import (
	"fmt"
	"strings"
)

const (
	TranslationProviderGas    = "gas"
	TranslationProviderOpenAI = "openai"
	TranslationProviderGoogle = "google"

	SpeechProviderVoicevox = "voicevox"
	SpeechProviderAzure    = "azure"
)

// TranslationConfig is the config block of the translation enrichment.
type TranslationConfig struct {
	Enabled        bool   `yaml:"enabled"`
	SourceLanguage string `yaml:"source_language"`
	TargetLanguage string `yaml:"target_language"`

	// Provider picks the backend, one of "gas", "openai" or "google".
	Provider    string                 `yaml:"provider"`
	ApiBaseUrl  string                 `yaml:"api_base_url"`
	ApiUrl      string                 `yaml:"api_url"`
	GasId       string                 `yaml:"gas_id"`
	Credentials CredentialsConfig      `yaml:"credentials"`
	Options     map[string]interface{} `yaml:"options"`
}

// CredentialsConfig only contains the most common credential fields.
// can use the Options field if needed extra data
type CredentialsConfig struct {
	APIKey string `yaml:"api_key"`
	Region string `yaml:"region"`
}

type SpeechSynthesisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`

	// MaxWorkers limits how many utterances may play at the same time.
	MaxWorkers int            `yaml:"max_workers"`
	Voicevox   VoicevoxConfig `yaml:"voicevox"`
	Azure      AzureSpeech    `yaml:"azure"`
}

type VoicevoxConfig struct {
	Host          string                  `yaml:"host"`
	Port          int                     `yaml:"port"`
	UseVoice      string                  `yaml:"use_voice"`
	Voices        map[string]VoiceProfile `yaml:"voices"`
	PlayerCommand []string                `yaml:"player_command"`
}

type VoiceProfile struct {
	Speaker    int     `yaml:"speaker"`
	Speed      float64 `yaml:"speed"`
	Pitch      float64 `yaml:"pitch"`
	Intonation float64 `yaml:"intonation"`
	Volume     float64 `yaml:"volume"`
}

type AzureSpeech struct {
	Credentials CredentialsConfig `yaml:"credentials"`
	Language    string            `yaml:"language"`
	Voice       string            `yaml:"voice"`
}

func (t *TranslationConfig) prepare() error {
	if !t.Enabled {
		return nil
	}
	if t.SourceLanguage == "" || t.TargetLanguage == "" {
		return fmt.Errorf("translation requires both source_language and target_language")
	}
	if t.Provider == "" {
		t.Provider = TranslationProviderGas
	}

	if t.Provider == TranslationProviderGas && t.ApiUrl == "" {
		if t.ApiBaseUrl == "" {
			return fmt.Errorf("gas translation requires api_base_url or api_url")
		}
		t.ApiUrl = strings.ReplaceAll(t.ApiBaseUrl, GasIdPlaceholder, t.GasId)
	}
	return nil
}

// GetOption returns a string option, or def when missing.
func (t *TranslationConfig) GetOption(key, def string) string {
	if t.Options == nil {
		return def
	}
	if v, ok := t.Options[key].(string); ok && v != "" {
		return v
	}
	return def
}

func (s *SpeechSynthesisConfig) prepare() error {
	if !s.Enabled {
		return nil
	}
	if s.Provider == "" {
		s.Provider = SpeechProviderVoicevox
	}
	if s.MaxWorkers <= 0 {
		s.MaxWorkers = DefaultSpeechWorkers
	}

	if s.Provider == SpeechProviderVoicevox {
		v := &s.Voicevox
		if v.Host == "" {
			v.Host = DefaultVoicevoxHost
		}
		if v.Port == 0 {
			v.Port = DefaultVoicevoxPort
		}
		if v.UseVoice == "" {
			v.UseVoice = "female"
		}
		if _, ok := v.Voices[v.UseVoice]; !ok {
			return fmt.Errorf("voicevox voice %q is not configured", v.UseVoice)
		}
		if len(v.PlayerCommand) == 0 {
			v.PlayerCommand = []string{"aplay", "-q"}
		}
	}
	return nil
}

// ActiveVoice returns the voice profile selected by UseVoice.
func (v *VoicevoxConfig) ActiveVoice() VoiceProfile {
	return v.Voices[v.UseVoice]
}

// BaseUrl returns the root url of the VOICEVOX engine.
func (v *VoicevoxConfig) BaseUrl() string {
	return fmt.Sprintf("http://%s:%d", v.Host, v.Port)
}
