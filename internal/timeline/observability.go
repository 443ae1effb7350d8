package timeline

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
)

type EventKind string

const (
	EventAdvance  EventKind = "advance"
	EventSpawn    EventKind = "spawn"
	EventNoop     EventKind = "noop"
	EventRejected EventKind = "rejected"
	EventReset    EventKind = "reset"
)

// TransitionEvent is reported for every engine operation. A branching choice
// reports an advance followed by a spawn.
type TransitionEvent struct {
	Kind       EventKind
	TimelineID string
	ChoiceID   string
	Timelines  int
	Code       apperrors.Code
	Duration   time.Duration
}

// TransitionObserver receives engine events. Observers must not call back
// into the engine that reports to them.
type TransitionObserver interface {
	ObserveTransition(ev TransitionEvent)
}

// TransitionLogger writes events to a zap logger.
type TransitionLogger struct {
	logger *zap.Logger
}

func NewTransitionLogger(logger *zap.Logger) *TransitionLogger {
	return &TransitionLogger{logger: logger}
}

func (l *TransitionLogger) ObserveTransition(ev TransitionEvent) {
	if l == nil || l.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("kind", string(ev.Kind)),
		zap.String("timeline_id", ev.TimelineID),
		zap.Int("timelines", ev.Timelines),
		zap.Duration("duration", ev.Duration),
	}
	if ev.ChoiceID != "" {
		fields = append(fields, zap.String("choice_id", ev.ChoiceID))
	}
	if ev.Kind == EventRejected {
		l.logger.Info("stale or malformed choice ignored", append(fields, zap.String("code", string(ev.Code)))...)
		return
	}
	l.logger.Debug("timeline transition", fields...)
}

// Observers fans events out to several observers in order.
type Observers []TransitionObserver

func (o Observers) ObserveTransition(ev TransitionEvent) {
	for _, next := range o {
		if next != nil {
			next.ObserveTransition(ev)
		}
	}
}

// AsyncTransitionObserver hands events to next on a background goroutine.
// Events are dropped, and counted, when the buffer is full or after Close.
type AsyncTransitionObserver struct {
	next    TransitionObserver
	events  chan TransitionEvent
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

func NewAsyncTransitionObserver(next TransitionObserver, buffer int) *AsyncTransitionObserver {
	if buffer <= 0 {
		buffer = 1
	}

	o := &AsyncTransitionObserver{
		next:   next,
		events: make(chan TransitionEvent, buffer),
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for ev := range o.events {
			if o.next == nil {
				continue
			}
			o.next.ObserveTransition(ev)
		}
	}()

	return o
}

func (o *AsyncTransitionObserver) ObserveTransition(ev TransitionEvent) {
	if o == nil {
		return
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		o.dropped.Add(1)
		return
	}
	select {
	case o.events <- ev:
	default:
		o.dropped.Add(1)
	}
}

func (o *AsyncTransitionObserver) Dropped() uint64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

// Close stops accepting events and waits for buffered ones to be delivered.
func (o *AsyncTransitionObserver) Close() {
	if o == nil {
		return
	}
	o.once.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.events)
		o.mu.Unlock()
		o.wg.Wait()
	})
}
