package store

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/lifeos/audit"
	"github.com/kasuganosora/lifeos/model"
	"github.com/kasuganosora/lifeos/scheduler"
	"go.uber.org/zap"
)

// ErrActionFailed wraps a handler error or panic. The player has already
// been shown a generic error toast when it is returned.
var ErrActionFailed = errors.New("store: action failed")

// GenericErrorMessage is the toast shown when a handler fails unexpectedly.
const GenericErrorMessage = "An error occurred. Please try again."

// Handler computes a patch from a state snapshot.
type Handler func(s *model.GameState) (model.Patch, error)

// Pure adapts a handler that cannot fail.
func Pure(fn func(s *model.GameState) model.Patch) Handler {
	return func(s *model.GameState) (model.Patch, error) { return fn(s), nil }
}

// Auditor records dispatched actions.
type Auditor interface {
	Log(entry audit.Entry)
}

// Timings controls the artificial latency and how long transient UI
// signals stay up before they are hidden automatically. Zero TTLs leave
// the signal up until the player dismisses it.
type Timings struct {
	Latency        time.Duration
	ToastTTL       time.Duration
	BadgeNoticeTTL time.Duration
	BattleAnimTTL  time.Duration
}

// Dispatcher runs handlers against a Store the way a remote call would:
// loading flag up, snapshot, latency, handler, merge, loading flag down.
type Dispatcher struct {
	store     *Store
	accountID int64
	timings   Timings
	sched     *scheduler.Scheduler
	audit     Auditor
	logger    *zap.Logger
	newID     func() string
}

// DispatcherOptions are the collaborators of a Dispatcher. Scheduler and
// Audit may be nil.
type DispatcherOptions struct {
	AccountID int64
	Timings   Timings
	Scheduler *scheduler.Scheduler
	Audit     Auditor
	Logger    *zap.Logger
}

func NewDispatcher(st *Store, opts DispatcherOptions) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		store:     st,
		accountID: opts.AccountID,
		timings:   opts.Timings,
		sched:     opts.Scheduler,
		audit:     opts.Audit,
		logger:    logger.With(zap.Int64("account_id", opts.AccountID)),
		newID:     uuid.NewString,
	}
}

func (d *Dispatcher) Store() *Store { return d.store }

// Do runs h under the loading flag key and merges its result, last merge
// wins. It returns the resulting state version.
func (d *Dispatcher) Do(ctx context.Context, key, name string, h Handler) (uint64, error) {
	return d.run(ctx, nil, key, name, h)
}

// DoExpect is Do with an optimistic version check. It fails with ErrStale
// before doing anything if the state is no longer at version, and discards
// the patch if another domain change lands while the handler runs.
func (d *Dispatcher) DoExpect(ctx context.Context, version uint64, key, name string, h Handler) (uint64, error) {
	return d.run(ctx, &version, key, name, h)
}

func (d *Dispatcher) run(ctx context.Context, expect *uint64, key, name string, h Handler) (uint64, error) {
	start := time.Now()
	traceID := d.newID()
	log := d.logger.With(zap.String("trace_id", traceID), zap.String("action", name), zap.String("key", key))

	if expect != nil {
		if v := d.store.Version(); v != *expect {
			return v, ErrStale
		}
	}

	if _, err := d.store.Apply(SetLoading{Key: key, Loading: true}); err != nil {
		return 0, err
	}
	defer func() {
		if _, err := d.store.Apply(SetLoading{Key: key}); err != nil {
			log.Warn("clear loading flag failed", zap.Error(err))
		}
	}()

	snap := d.store.Snapshot()
	if d.timings.Latency > 0 {
		t := time.NewTimer(d.timings.Latency)
		select {
		case <-ctx.Done():
			t.Stop()
			return snap.Version, ctx.Err()
		case <-t.C:
		}
	}

	patch, err := call(h, snap)
	if err != nil {
		log.Error("action failed", zap.Error(err))
		d.Notify(model.ToastError, GenericErrorMessage)
		v := d.store.Version()
		d.record(traceID, name, key, nil, err, v, time.Since(start))
		return v, fmt.Errorf("%w: %s: %v", ErrActionFailed, name, err)
	}

	apply := ApplyPatch{Action: name, Patch: patch}
	var v uint64
	if expect != nil {
		v, err = d.store.ApplyIf(snap.Version, apply)
	} else {
		v, err = d.store.Apply(apply)
	}
	if err != nil {
		log.Info("patch discarded", zap.Error(err))
		d.record(traceID, name, key, nil, err, v, time.Since(start))
		return v, err
	}

	d.scheduleHides(patch)
	d.record(traceID, name, key, patch, nil, v, time.Since(start))
	log.Debug("action applied", zap.Uint64("version", v), zap.Duration("took", time.Since(start)))
	return v, nil
}

// Notify queues a toast outside of any handler and arms its hide timer.
func (d *Dispatcher) Notify(typ model.ToastType, msg string) model.Toast {
	t := model.Toast{ID: d.newID(), Message: msg, Type: typ}
	if _, err := d.store.Apply(ShowToast{Toast: t}); err != nil {
		d.logger.Warn("show toast failed", zap.Error(err))
	}
	d.scheduleHides(model.Patch{Toasts: []model.Toast{t}})
	return t
}

// Hold raises the loading flag key until the returned func is called.
func (d *Dispatcher) Hold(key string) (release func()) {
	_, _ = d.store.Apply(SetLoading{Key: key, Loading: true})
	return func() { _, _ = d.store.Apply(SetLoading{Key: key}) }
}

func call(h Handler, s *model.GameState) (p model.Patch, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return h(s)
}

// scheduleHides arms the timers that retire the transient UI signals
// raised by p.
func (d *Dispatcher) scheduleHides(p model.Patch) {
	if d.sched == nil {
		return
	}
	if ttl := d.timings.ToastTTL; ttl > 0 {
		for _, t := range p.Toasts {
			id := t.ID
			d.sched.AddDelay(d.TaskName("toast/"+id), ttl, func() { d.store.Apply(HideToast{ID: id}) })
		}
	}
	if p.BadgeNotification != nil && d.timings.BadgeNoticeTTL > 0 {
		d.sched.AddDelay(d.TaskName("badge"), d.timings.BadgeNoticeTTL, func() { d.store.Apply(HideBadgeNotification{}) })
	}
	if p.BattleAnimation != nil && d.timings.BattleAnimTTL > 0 {
		d.sched.AddDelay(d.TaskName("battle"), d.timings.BattleAnimTTL, func() { d.store.Apply(HideBattleAnimation{}) })
	}
}

// TaskName namespaces a scheduler task under this account.
func (d *Dispatcher) TaskName(suffix string) string {
	return fmt.Sprintf("%s%s", TaskPrefix(d.accountID), suffix)
}

// TaskPrefix is the scheduler name prefix of every task owned by accountID.
func TaskPrefix(accountID int64) string {
	return fmt.Sprintf("acct/%d/", accountID)
}

func (d *Dispatcher) record(traceID, name, key string, p any, err error, v uint64, took time.Duration) {
	if d.audit == nil {
		return
	}
	e := audit.Entry{
		TraceID:    traceID,
		AccountID:  d.accountID,
		Action:     name,
		LoadingKey: key,
		Patch:      p,
		Version:    v,
		Duration:   took,
	}
	if err != nil {
		e.Error = err.Error()
	}
	d.audit.Log(e)
}
