package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/gateway"
	"github.com/openpaw/pawdeck/pkg/metrics"
	"github.com/openpaw/pawdeck/pkg/utils"
)

// Options carries what every controller shares.
type Options struct {
	Emitter *event.Emitter
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	// RollbackOnFailure restores journaled snapshots of failed optimistic
	// updates.
	RollbackOnFailure bool
}

// viewBase holds the single last-error slot and the lifetime of a view.
// Close cancels the lifetime context, which aborts in-flight gateway calls
// started through bind.
type viewBase struct {
	name     string
	emitter  *event.Emitter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	rollback bool

	errMu   sync.RWMutex
	lastErr string

	lifeMu     sync.Mutex
	lifeCtx    context.Context
	lifeCancel context.CancelFunc
}

func (v *viewBase) init(name string, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = utils.GetLogger()
	}
	v.name = name
	v.emitter = opts.Emitter
	v.metrics = opts.Metrics
	v.logger = logger.With("view", name)
	v.rollback = opts.RollbackOnFailure
	v.lifeCtx, v.lifeCancel = context.WithCancel(context.Background())
}

// bind derives a context that ends with either ctx or the view lifetime.
func (v *viewBase) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	v.lifeMu.Lock()
	life := v.lifeCtx
	v.lifeMu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// endLifetime aborts in-flight calls and starts a fresh lifetime so the view
// can be activated again.
func (v *viewBase) endLifetime() {
	v.lifeMu.Lock()
	v.lifeCancel()
	v.lifeCtx, v.lifeCancel = context.WithCancel(context.Background())
	v.lifeMu.Unlock()
	v.clearError()
}

func (v *viewBase) LastError() string {
	v.errMu.RLock()
	defer v.errMu.RUnlock()
	return v.lastErr
}

func (v *viewBase) clearError() {
	v.errMu.Lock()
	v.lastErr = ""
	v.errMu.Unlock()
}

// fail stores msg in the error slot and announces it.
func (v *viewBase) fail(op string, msg string, err error) {
	v.errMu.Lock()
	v.lastErr = msg
	v.errMu.Unlock()

	v.logger.Warn("mutation failed", "op", op, "message", msg, "error", err)
	v.metrics.ObserveMutation(v.name, op, "failed")
	v.emitter.Emit(event.MutationFailedEvent{View: v.name, Op: op, Message: msg})
}

// failErr is fail with the gateway supplied message.
func (v *viewBase) failErr(op string, err error) {
	v.fail(op, gateway.Message(err), err)
}

func (v *viewBase) succeed(op string) {
	v.metrics.ObserveMutation(v.name, op, "ok")
}

func (v *viewBase) stale(op string) {
	v.logger.Debug("dropping stale response", "op", op)
	v.metrics.ObserveMutation(v.name, op, "stale")
}

func (v *viewBase) emit(ev event.Event) {
	v.emitter.Emit(ev)
}
