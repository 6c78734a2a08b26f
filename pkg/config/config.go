package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

type AppConfig struct {
	Logger   *logrus.Logger
	NatsConn *nats.Conn

	RootWorkingDir  string
	Client          ClientInfo            `yaml:"client"`
	LogSettings     LogSettings           `yaml:"log_settings"`
	Endpoints       EndpointsInfo         `yaml:"endpoints"`
	Heartbeat       HeartbeatInfo         `yaml:"heartbeat"`
	Transcript      TranscriptInfo        `yaml:"transcript"`
	Translation     TranslationConfig     `yaml:"translation"`
	SpeechSynthesis SpeechSynthesisConfig `yaml:"speech_synthesis"`
}

type ClientInfo struct {
	Port           int            `yaml:"port"`
	Debug          bool           `yaml:"debug"`
	Path           string         `yaml:"path"`
	ProxyHeader    string         `yaml:"proxy_header"`
	PrometheusConf PrometheusConf `yaml:"prometheus"`
}

type PrometheusConf struct {
	Enable      bool   `yaml:"enable"`
	MetricsPath string `yaml:"metrics_path"`
}

type LogSettings struct {
	LogLevel *string `yaml:"log_level"`
	// LogFormat is either "text" (default) or "json".
	LogFormat  string `yaml:"log_format"`
	LogFile    string `yaml:"log_file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// EndpointsInfo holds the http paths of the pages and websocket endpoints.
type EndpointsInfo struct {
	SpeechRecognition   string `yaml:"speech_recognition"`
	SpeechRecognitionWS string `yaml:"speech_recognition_ws"`
	ObsSpeechOverlay    string `yaml:"obs_speech_overlay"`
	ObsSpeechOverlayWS  string `yaml:"obs_speech_overlay_ws"`
}

type HeartbeatInfo struct {
	Text     string        `yaml:"text"`
	Interval time.Duration `yaml:"interval"`

	// Timeout is the write deadline for every frame sent to the overlay.
	Timeout time.Duration `yaml:"timeout"`
}

// TranscriptInfo controls the dedicated log of finalized recognition text.
type TranscriptInfo struct {
	Enabled           bool           `yaml:"enabled"`
	FilePath          string         `yaml:"file_path"`
	TimestampFormat   string         `yaml:"timestamp_format"`
	FinalTextEnable   bool           `yaml:"final_text_enable"`
	TranslationEnable bool           `yaml:"translation_enable"`
	MaxSize           int            `yaml:"max_size"`
	MaxBackups        int            `yaml:"max_backups"`
	Nats              TranscriptNats `yaml:"nats"`

	timestampGoLayout string
	resolvedFilePath  string
}

type TranscriptNats struct {
	Enabled bool     `yaml:"enabled"`
	Urls    []string `yaml:"urls"`
	Subject string   `yaml:"subject"`
}

// New validates the parsed configuration and fills the defaults.
func New(appCnf *AppConfig) (*AppConfig, error) {
	if appCnf.Client.Port == 0 {
		appCnf.Client.Port = DefaultPort
	}
	if appCnf.Client.PrometheusConf.Enable && appCnf.Client.PrometheusConf.MetricsPath == "" {
		appCnf.Client.PrometheusConf.MetricsPath = "/metrics"
	}

	e := &appCnf.Endpoints
	if e.SpeechRecognition == "" {
		e.SpeechRecognition = DefaultSpeechRecognitionPath
	}
	if e.SpeechRecognitionWS == "" {
		e.SpeechRecognitionWS = DefaultSpeechRecognitionWSPath
	}
	if e.ObsSpeechOverlay == "" {
		e.ObsSpeechOverlay = DefaultObsSpeechOverlayPath
	}
	if e.ObsSpeechOverlayWS == "" {
		e.ObsSpeechOverlayWS = DefaultObsSpeechOverlayWSPath
	}

	if appCnf.Heartbeat.Text == "" {
		appCnf.Heartbeat.Text = DefaultHeartbeatText
	}
	if appCnf.Heartbeat.Interval <= 0 {
		appCnf.Heartbeat.Interval = DefaultHeartbeatInterval
	}
	if appCnf.Heartbeat.Timeout < 0 {
		appCnf.Heartbeat.Timeout = 0
	}

	if err := appCnf.Transcript.prepare(appCnf.RootWorkingDir); err != nil {
		return nil, err
	}
	if err := appCnf.Translation.prepare(); err != nil {
		return nil, err
	}
	if err := appCnf.SpeechSynthesis.prepare(); err != nil {
		return nil, err
	}

	return appCnf, nil
}

func (t *TranscriptInfo) prepare(rootDir string) error {
	if !t.Enabled {
		return nil
	}
	if t.FilePath == "" {
		t.FilePath = DefaultTranscriptFile
	}
	t.resolvedFilePath = t.FilePath
	if strings.HasPrefix(t.FilePath, "./") && rootDir != "" {
		t.resolvedFilePath = filepath.Join(rootDir, t.FilePath)
	}
	if t.TimestampFormat == "" {
		t.TimestampFormat = DefaultTimestampFormat
	}
	t.timestampGoLayout = StrftimeToLayout(t.TimestampFormat)
	if t.MaxSize == 0 {
		t.MaxSize = 10
	}
	if t.MaxBackups == 0 {
		t.MaxBackups = 5
	}
	if t.Nats.Enabled {
		if len(t.Nats.Urls) == 0 {
			return fmt.Errorf("transcript nats is enabled but no urls are provided")
		}
		if t.Nats.Subject == "" {
			t.Nats.Subject = DefaultTranscriptSubject
		}
	}
	return nil
}

// TimestampLayout returns the Go time layout equivalent of TimestampFormat.
func (t *TranscriptInfo) TimestampLayout() string {
	if t.timestampGoLayout == "" {
		return StrftimeToLayout(DefaultTimestampFormat)
	}
	return t.timestampGoLayout
}

// ResolvedFilePath returns FilePath anchored at the working directory when relative.
func (t *TranscriptInfo) ResolvedFilePath() string {
	if t.resolvedFilePath == "" {
		return t.FilePath
	}
	return t.resolvedFilePath
}

var strftimeReplacer = strings.NewReplacer(
	"%Y", "2006",
	"%m", "01",
	"%d", "02",
	"%H", "15",
	"%M", "04",
	"%S", "05",
	"%y", "06",
	"%b", "Jan",
	"%a", "Mon",
	"%p", "PM",
	"%z", "-0700",
	"%f", "000000",
	"%%", "%",
)

// StrftimeToLayout converts the common strftime verbs into a Go time layout.
// Unknown verbs are kept as they are.
func StrftimeToLayout(format string) string {
	return strftimeReplacer.Replace(format)
}
