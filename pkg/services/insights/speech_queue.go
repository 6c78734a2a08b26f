package insightsservice

import (
	"context"
	"errors"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/mynaparrot/speech-relay/pkg/insights"
	"github.com/sirupsen/logrus"
)

var ErrQueueStopped = errors.New("speech queue stopped")

// SpeechQueue funnels every utterance through a small worker pool so audio
// from different tasks never plays over each other.
type SpeechQueue struct {
	speaker insights.Speaker
	pool    *workerpool.WorkerPool
	log     *logrus.Entry

	mu      sync.RWMutex
	stopped bool
}

func NewSpeechQueue(speaker insights.Speaker, workers int, log *logrus.Entry) *SpeechQueue {
	if workers <= 0 {
		workers = 1
	}
	return &SpeechQueue{
		speaker: speaker,
		pool:    workerpool.New(workers),
		log:     log,
	}
}

// Speak queues text and waits until it was played, failed or ctx is done.
// An utterance whose context ends while still queued is never played.
func (q *SpeechQueue) Speak(ctx context.Context, text string) error {
	q.mu.RLock()
	if q.stopped {
		q.mu.RUnlock()
		return ErrQueueStopped
	}

	result := make(chan error, 1)
	q.pool.Submit(func() {
		if err := ctx.Err(); err != nil {
			result <- err
			return
		}
		result <- q.speaker.Speak(ctx, text)
	})
	q.mu.RUnlock()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitingQueueSize returns the number of utterances not started yet.
func (q *SpeechQueue) WaitingQueueSize() int {
	return q.pool.WaitingQueueSize()
}

// Stop waits for the queued utterances and releases the workers.
func (q *SpeechQueue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	q.mu.Unlock()

	q.pool.StopWait()
	if c, ok := q.speaker.(insights.Closer); ok {
		if err := c.Close(); err != nil {
			q.log.WithError(err).Warnln("failed to close speaker")
		}
	}
}
