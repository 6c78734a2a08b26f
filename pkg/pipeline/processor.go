package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/insights"
	"github.com/mynaparrot/speech-relay/pkg/metrics"
	"github.com/mynaparrot/speech-relay/pkg/supervisor"
	"github.com/mynaparrot/speech-relay/pkg/transcript"
	"github.com/mynaparrot/speech-relay/pkg/wsconn"
	"github.com/sirupsen/logrus"
)

const (
	TaskTranslation = "translation"
	TaskSpeech      = "speech"
)

// Scheduler runs enrichment work in the background on behalf of a session.
type Scheduler interface {
	Schedule(name string, op supervisor.Operation) error
}

// TargetLookup resolves the consumer connection, nil when none is registered.
type TargetLookup func() *wsconn.Conn

type Processor struct {
	translator insights.Translator
	speaker    insights.Speaker
	transcript *transcript.Recorder
	sourceLang string
	targetLang string
	logger     *logrus.Entry
}

// New builds the processor. A nil translator or speaker disables that enrichment.
func New(conf *config.TranslationConfig, translator insights.Translator, speaker insights.Speaker, rec *transcript.Recorder, logger *logrus.Logger) *Processor {
	p := &Processor{
		speaker:    speaker,
		transcript: rec,
		logger:     logger.WithField("service", "pipeline"),
	}
	if conf != nil && conf.Enabled && translator != nil {
		p.translator = translator
		p.sourceLang = conf.SourceLanguage
		p.targetLang = conf.TargetLanguage
	}
	return p
}

// ProcessMessage handles one inbound frame of a producer session. The display
// message is sent before this returns; enrichment runs through tasks.
func (p *Processor) ProcessMessage(tasks Scheduler, source *wsconn.Conn, target TargetLookup, raw string) {
	log := p.logger
	if source != nil {
		log = log.WithField("connId", source.ID())
	}

	ev, err := ParseRecognitionEvent(raw)
	if err != nil {
		metrics.RecognitionEvents.WithLabelValues(metrics.ResultParseError).Inc()
		log.WithError(err).Warnf("dropping frame: %s", raw)
		return
	}
	p.logRecognition(log, ev)

	p.forward(log, target, ev)

	if !ev.IsFinal {
		return
	}

	p.transcript.RecordFinal(ev.Text, ev.LanguageCode)

	if p.translator != nil {
		if err := ev.CheckSourceLanguage(p.sourceLang); err != nil {
			metrics.EnrichmentTasks.WithLabelValues(TaskTranslation, metrics.OutcomeSkipped).Inc()
			log.WithError(err).Warnln("skipping translation")
		} else {
			p.schedule(log, tasks, TaskTranslation, p.translateOp(ev.Text, target))
		}
	}

	if p.speaker != nil {
		p.schedule(log, tasks, TaskSpeech, p.speakOp(ev.Text))
	}
}

func (p *Processor) logRecognition(log *logrus.Entry, ev *RecognitionEvent) {
	prefix := "[Interim]"
	if ev.IsFinal {
		prefix = "[Final  ]"
	}
	log.Infof("%s %s: %s", prefix, ev.LanguageCode, ev.Text)
}

func (p *Processor) forward(log *logrus.Entry, target TargetLookup, ev *RecognitionEvent) {
	conn := target()
	if conn == nil {
		metrics.RecognitionEvents.WithLabelValues(metrics.ResultNoTarget).Inc()
		log.Errorln("no target connection available")
		return
	}

	msg, err := encode(ev.DisplayMessage())
	if err != nil {
		log.WithError(err).Errorln("failed to encode display message")
		return
	}
	if err = conn.SendText(msg); err != nil {
		metrics.RecognitionEvents.WithLabelValues(metrics.ResultSendError).Inc()
		log.WithError(err).Errorln("error sending message to overlay")
		return
	}
	metrics.RecognitionEvents.WithLabelValues(metrics.ResultForwarded).Inc()
}

func (p *Processor) schedule(log *logrus.Entry, tasks Scheduler, name string, op supervisor.Operation) {
	metrics.InflightTasks.Inc()
	err := tasks.Schedule(name, func(ctx context.Context) error {
		defer metrics.InflightTasks.Dec()
		err := op(ctx)
		metrics.EnrichmentTasks.WithLabelValues(name, outcome(err)).Inc()
		return err
	})
	if err != nil {
		metrics.InflightTasks.Dec()
		log.WithError(err).Warnf("could not schedule %s task", name)
	}
}

func (p *Processor) translateOp(text string, target TargetLookup) supervisor.Operation {
	return func(ctx context.Context) error {
		res, err := p.translator.Translate(ctx, text, p.sourceLang, p.targetLang)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}
		p.transcript.RecordTranslation(res.OriginalText, res.TranslatedText, res.TargetLanguage)

		msg, err := encodeTranslation(res)
		if err != nil {
			return err
		}

		// the overlay may have reconnected while the request was in flight
		conn := target()
		if conn == nil {
			return errors.New("no target connection available for translation")
		}
		return conn.SendText(msg)
	}
}

func (p *Processor) speakOp(text string) supervisor.Operation {
	return func(ctx context.Context) error {
		if err := p.speaker.Speak(ctx, text); err != nil {
			return fmt.Errorf("speech synthesis failed: %w", err)
		}
		return nil
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCancelled
	}
	return metrics.OutcomeFailed
}
