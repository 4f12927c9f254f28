package postgres

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hearthrpg/tracker/internal/game/tracker"
)

// Saver writes one encounter snapshot.
type Saver interface {
	Save(ctx context.Context, state tracker.EncounterState) error
}

// DebouncedSaver implements tracker.Persister with a single writer
// goroutine and a trailing-edge debounce: the tracker signals dirty state
// on every mutation batch, the saver writes the latest snapshot once the
// signals go quiet. Writes are strictly ordered because only the writer
// goroutine touches the repository.
type DebouncedSaver struct {
	writes  Saver
	delay   time.Duration
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	latest *tracker.EncounterState

	kick chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewDebouncedSaver starts the writer goroutine. delay is the quiet period
// before a pending snapshot is written; Close flushes whatever is pending.
//
// Precondition: writes and logger must be non-nil; delay must be positive.
func NewDebouncedSaver(writes Saver, delay time.Duration, logger *zap.Logger) *DebouncedSaver {
	s := &DebouncedSaver{
		writes:  writes,
		delay:   delay,
		timeout: 10 * time.Second,
		logger:  logger,
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// SaveState records the latest snapshot and signals the writer. It never
// blocks the tracker.
func (s *DebouncedSaver) SaveState(state tracker.EncounterState) {
	s.mu.Lock()
	s.latest = &state
	s.mu.Unlock()
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Close flushes any pending snapshot and stops the writer goroutine.
func (s *DebouncedSaver) Close() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *DebouncedSaver) run() {
	defer s.wg.Done()

	timer := time.NewTimer(s.delay)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-s.kick:
			if armed && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(s.delay)
			armed = true
		case <-timer.C:
			armed = false
			s.flush()
		case <-s.done:
			if armed && !timer.Stop() {
				<-timer.C
			}
			s.flush()
			return
		}
	}
}

func (s *DebouncedSaver) flush() {
	s.mu.Lock()
	state := s.latest
	s.latest = nil
	s.mu.Unlock()
	if state == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.writes.Save(ctx, *state); err != nil {
		s.logger.Error("saving encounter snapshot",
			zap.String("encounter", state.Name),
			zap.Error(err),
		)
	}
}
