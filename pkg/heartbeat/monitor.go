package heartbeat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sender is the write side of a connection the monitor probes.
type Sender interface {
	SendText(text string) error
}

// Monitor sends a fixed keep-alive text on an interval until a send fails
// or its context is cancelled. It never reads from the connection.
type Monitor struct {
	sender   Sender
	text     string
	interval time.Duration
	logger   *logrus.Entry

	done     chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	err      error
}

func New(sender Sender, text string, interval time.Duration, logger *logrus.Entry) *Monitor {
	return &Monitor{
		sender:   sender,
		text:     text,
		interval: interval,
		logger:   logger.WithField("service", "heartbeat"),
		done:     make(chan struct{}),
	}
}

// Run blocks until the monitor stops. It must be called once.
func (m *Monitor) Run(ctx context.Context) {
	defer m.stop(nil)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debugln("heartbeat cancelled")
			return
		case <-ticker.C:
			if err := m.sender.SendText(m.text); err != nil {
				m.logger.WithError(err).Warnln("heartbeat send failed, stopping")
				m.stop(err)
				return
			}
		}
	}
}

// Done is closed once the monitor has stopped.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Err returns the send error that stopped the monitor, nil if it was cancelled.
func (m *Monitor) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Failed reports whether the monitor stopped because the peer is unreachable.
func (m *Monitor) Failed() bool {
	err := m.Err()
	return err != nil && !errors.Is(err, context.Canceled)
}

func (m *Monitor) stop(err error) {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		m.err = err
		m.mu.Unlock()
		close(m.done)
	})
}
