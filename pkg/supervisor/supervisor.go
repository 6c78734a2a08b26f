// Package supervisor keeps track of the enrichment tasks spawned by one
// producer session so they can all be cancelled and awaited on teardown.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrClosed = errors.New("supervisor is draining")

// Operation is a unit of background work. It must return once ctx is done.
type Operation func(ctx context.Context) error

type task struct {
	id     string
	name   string
	cancel context.CancelFunc
}

type Supervisor struct {
	ctx    context.Context
	logger *logrus.Entry

	mu       sync.Mutex
	tasks    map[string]*task
	draining bool
	wg       sync.WaitGroup

	// OnFinish, when set, is called after every task with its name and result.
	OnFinish func(name string, err error)
}

// New creates a supervisor whose tasks derive from ctx.
func New(ctx context.Context, logger *logrus.Entry) *Supervisor {
	return &Supervisor{
		ctx:    ctx,
		logger: logger.WithField("service", "supervisor"),
		tasks:  make(map[string]*task),
	}
}

// Schedule runs op in its own goroutine and tracks it until it finishes.
func (s *Supervisor) Schedule(name string, op Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draining {
		return ErrClosed
	}

	ctx, cancel := context.WithCancel(s.ctx)
	t := &task{
		id:     uuid.NewString(),
		name:   name,
		cancel: cancel,
	}
	s.tasks[t.id] = t
	s.wg.Add(1)

	go s.run(ctx, t, op)
	return nil
}

func (s *Supervisor) run(ctx context.Context, t *task, op Operation) {
	defer s.wg.Done()
	defer s.forget(t)

	err := s.call(ctx, op)
	log := s.logger.WithFields(logrus.Fields{
		"task":   t.name,
		"taskId": t.id,
	})

	switch {
	case err == nil:
		log.Debugln("task finished")
	case errors.Is(err, context.Canceled):
		log.Debugln("task cancelled")
	default:
		log.WithError(err).Errorln("task failed")
	}

	if s.OnFinish != nil {
		s.OnFinish(t.name, err)
	}
}

func (s *Supervisor) call(ctx context.Context, op Operation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("task panicked: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return op(ctx)
}

func (s *Supervisor) forget(t *task) {
	t.cancel()
	s.mu.Lock()
	delete(s.tasks, t.id)
	s.mu.Unlock()
}

// Drain cancels every in-flight task and waits until all of them returned.
// Calling it more than once is safe.
func (s *Supervisor) Drain() {
	s.mu.Lock()
	s.draining = true
	pending := len(s.tasks)
	for _, t := range s.tasks {
		t.cancel()
	}
	s.mu.Unlock()

	if pending > 0 {
		s.logger.Debugf("waiting for %d task(s) to finish", pending)
	}
	s.wg.Wait()

	s.mu.Lock()
	clear(s.tasks)
	s.mu.Unlock()
}

// Len returns the number of in-flight tasks.
func (s *Supervisor) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
