// Package transcript writes finalized recognition text and its translations
// to a dedicated rotating log, and optionally to a NATS subject.
package transcript

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/DeRuina/timberjack"
	"github.com/goccy/go-json"
	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	kindFinal       = "final"
	kindTranslation = "translation"
)

// Entry is the payload published to NATS for every transcript line.
type Entry struct {
	Kind           string    `json:"kind"`
	Time           time.Time `json:"time"`
	Text           string    `json:"text"`
	LanguageCode   string    `json:"language_code,omitempty"`
	TranslatedText *string   `json:"translated_text,omitempty"`
	TargetLanguage string    `json:"target_language,omitempty"`
}

// Publisher is the part of *nats.Conn used by the recorder.
type Publisher interface {
	Publish(subj string, data []byte) error
}

type Recorder struct {
	conf   *config.TranscriptInfo
	logger *logrus.Entry
	layout string
	now    func() time.Time

	mu  sync.Mutex
	out io.WriteCloser

	pub     Publisher
	subject string
}

// New returns a recorder for the transcript settings. A disabled config
// gives a recorder whose methods do nothing.
func New(conf *config.TranscriptInfo, nc *nats.Conn, logger *logrus.Logger) *Recorder {
	r := &Recorder{
		conf:   conf,
		logger: logger.WithField("service", "transcript"),
		layout: conf.TimestampLayout(),
		now:    time.Now,
	}
	if !conf.Enabled {
		return r
	}

	r.out = &timberjack.Logger{
		Filename:   conf.ResolvedFilePath(),
		MaxSize:    conf.MaxSize,
		MaxBackups: conf.MaxBackups,
	}
	if conf.Nats.Enabled && nc != nil {
		r.pub = nc
		r.subject = conf.Nats.Subject
	}
	return r
}

// NewWithWriter is used when the caller owns the output, mainly for tests.
func NewWithWriter(conf *config.TranscriptInfo, out io.WriteCloser, pub Publisher, logger *logrus.Entry) *Recorder {
	return &Recorder{
		conf:    conf,
		logger:  logger,
		layout:  conf.TimestampLayout(),
		now:     time.Now,
		out:     out,
		pub:     pub,
		subject: conf.Nats.Subject,
	}
}

func (r *Recorder) Enabled() bool {
	return r != nil && r.conf.Enabled
}

// RecordFinal writes a finalized recognition text.
func (r *Recorder) RecordFinal(text, languageCode string) {
	if !r.Enabled() || !r.conf.FinalTextEnable {
		return
	}
	r.write(&Entry{
		Kind:         kindFinal,
		Text:         text,
		LanguageCode: languageCode,
	})
}

// RecordTranslation writes a translation result next to its original text.
func (r *Recorder) RecordTranslation(original string, translated *string, targetLanguage string) {
	if !r.Enabled() || !r.conf.TranslationEnable {
		return
	}
	r.write(&Entry{
		Kind:           kindTranslation,
		Text:           original,
		TranslatedText: translated,
		TargetLanguage: targetLanguage,
	})
}

func (r *Recorder) write(e *Entry) {
	e.Time = r.now()

	line := r.format(e)
	r.mu.Lock()
	_, err := io.WriteString(r.out, line)
	r.mu.Unlock()
	if err != nil {
		r.logger.WithError(err).Errorln("failed to write transcript")
	}

	if r.pub == nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		r.logger.WithError(err).Errorln("failed to marshal transcript entry")
		return
	}
	if err = r.pub.Publish(r.subject, data); err != nil {
		r.logger.WithError(err).Warnln("failed to publish transcript entry")
	}
}

func (r *Recorder) format(e *Entry) string {
	var sb strings.Builder
	sb.WriteString(e.Time.Format(r.layout))
	sb.WriteString(" - ")

	switch e.Kind {
	case kindTranslation:
		translated := ""
		if e.TranslatedText != nil {
			translated = *e.TranslatedText
		}
		fmt.Fprintf(&sb, "[Translation] %s: %s -> %s", e.TargetLanguage, e.Text, translated)
	default:
		fmt.Fprintf(&sb, "[Final] %s: %s", e.LanguageCode, e.Text)
	}
	sb.WriteByte('\n')
	return sb.String()
}

func (r *Recorder) Close() error {
	if r == nil || r.out == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out.Close()
}
