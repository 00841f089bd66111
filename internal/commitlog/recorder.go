package commitlog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerengine/internal/engine"
	"github.com/cleared-dev/ledgerengine/internal/logging"
)

// Recorder subscribes to an engine's commit events and appends each one to
// the commit log.
type Recorder struct {
	root   string
	events chan engine.CommitEvent
	logger *zap.Logger
	now    func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	err    error
}

// NewRecorder creates a Recorder writing under root. buffer sizes the event
// channel; events beyond it are dropped by the engine.
func NewRecorder(root string, buffer int, logger *zap.Logger) *Recorder {
	return &Recorder{
		root:   root,
		events: make(chan engine.CommitEvent, buffer),
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
}

// Start registers the recorder with eng and begins consuming events.
func (r *Recorder) Start(ctx context.Context, eng *engine.Engine) {
	ctx, r.cancel = context.WithCancel(ctx)
	eng.Notify(r.events)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case ev := <-r.events:
				r.record(ev)
			case <-ctx.Done():
				r.drain()
				return
			}
		}
	}()
}

// Close stops the recorder after writing every event already delivered and
// returns the first write error, if any.
func (r *Recorder) Close() error {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) drain() {
	for {
		select {
		case ev := <-r.events:
			r.record(ev)
		default:
			return
		}
	}
}

func (r *Recorder) record(ev engine.CommitEvent) {
	if err := Append(r.root, []Entry{FromEvent(ev, r.now())}); err != nil {
		r.logger.Error("writing commit log", zap.String("entry_id", ev.EntryID), zap.Error(err))
		r.mu.Lock()
		if r.err == nil {
			r.err = err
		}
		r.mu.Unlock()
	}
}
