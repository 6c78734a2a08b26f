package logging

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/DeRuina/timberjack"
	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/sirupsen/logrus"
)

// NewLogger creates the application logger from the log_settings block.
func NewLogger(cfg *config.LogSettings) (*logrus.Logger, error) {
	logger := logrus.New()

	level := logrus.InfoLevel
	if cfg.LogLevel != nil && *cfg.LogLevel != "" {
		if lv, err := logrus.ParseLevel(strings.ToLower(*cfg.LogLevel)); err == nil {
			level = lv
		}
	}
	logger.SetLevel(level)

	var output io.Writer = os.Stdout
	if cfg.LogFile != "" {
		fileLogger := &timberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		output = io.MultiWriter(os.Stdout, fileLogger)
		logrus.New().Infof("file logging enabled, writing to %s", cfg.LogFile)
	}
	logger.SetOutput(output)

	// the caller is printed by SourceFormatter
	noCaller := func(f *runtime.Frame) (string, string) {
		return "", ""
	}

	var underlying logrus.Formatter
	addSpace := false
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		underlying = &logrus.JSONFormatter{
			CallerPrettyfier: noCaller,
		}
	default:
		underlying = &logrus.TextFormatter{
			FullTimestamp:    true,
			CallerPrettyfier: noCaller,
			ForceColors:      cfg.LogFile == "",
		}
		addSpace = true
	}

	logger.SetFormatter(&SourceFormatter{
		Underlying: underlying,
		AddSpace:   addSpace,
	})
	logger.SetReportCaller(true)

	return logger, nil
}
