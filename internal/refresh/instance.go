package refresh

import (
	"errors"
	"sync"
	"time"

	"github.com/GregMSThompson/widget-dashboard/internal/errs"
	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/pipeline"
	"github.com/GregMSThompson/widget-dashboard/internal/render"
	"github.com/GregMSThompson/widget-dashboard/internal/transform"
	"github.com/GregMSThompson/widget-dashboard/pkg/clock"
)

// Instance is one mounted widget. It owns the interval timer, at most one
// pending retry timer, the idle timer and the FetchState that fetch
// completions mutate.
//
// seq numbers every fetch attempt; dispatched is the newest attempt the rate
// limiter let through. Only completions behind dispatched are stale, so a
// throttled attempt never hides the request that is actually in flight.
type Instance struct {
	id      string
	cfg     models.WidgetConfig
	vars    pipeline.Params
	preview bool
	ctrl    *Controller

	mu         sync.Mutex
	state      FetchState
	mounted    bool
	seq        uint64
	dispatched uint64
	interval   clock.Timer
	retry      clock.Timer
	idle       clock.Timer
	lastSeen   time.Time
	attempts   int
}

func (i *Instance) ID() string { return i.id }

func (i *Instance) Config() models.WidgetConfig { return i.cfg }

func (i *Instance) Preview() bool { return i.preview }

// State returns a snapshot of the fetch state.
func (i *Instance) State() FetchState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// View renders the current data for the widget's display type. An error or a
// first load without data yields a placeholder.
func (i *Instance) View() render.View {
	s := i.State()
	switch {
	case s.Phase == PhaseError:
		return render.View{Type: i.cfg.DisplayType, Title: i.cfg.Name, Styling: i.cfg.Styling, Placeholder: s.ErrorMessage}
	case s.Phase != PhaseLoaded:
		return render.View{Type: i.cfg.DisplayType, Title: i.cfg.Name, Styling: i.cfg.Styling, Placeholder: "Loading"}
	}
	return render.Render(i.cfg.DisplayType, transform.Apply(i.cfg, s.Data), i.cfg)
}

func (i *Instance) start(previewData any) {
	if i.preview {
		i.mu.Lock()
		i.state = FetchState{Phase: PhaseLoaded, Data: previewData, LastUpdatedAt: i.ctrl.clock.Now()}
		i.mu.Unlock()
		i.ctrl.notify(i)
		return
	}

	i.mu.Lock()
	i.armInterval()
	i.mu.Unlock()
	go i.fetch()
}

// armInterval schedules the next periodic fetch. Callers hold i.mu.
func (i *Instance) armInterval() {
	every := i.cfg.RefreshEvery()
	if every <= 0 || !i.mounted {
		return
	}
	i.interval = i.ctrl.clock.AfterFunc(every, func() {
		i.mu.Lock()
		if !i.mounted {
			i.mu.Unlock()
			return
		}
		i.armInterval()
		i.mu.Unlock()
		i.fetch()
	})
}

// fetch runs one execution and applies its outcome unless the instance was
// unmounted or a newer request was dispatched in the meantime.
func (i *Instance) fetch() {
	i.mu.Lock()
	if !i.mounted {
		i.mu.Unlock()
		return
	}
	i.seq++
	seq := i.seq
	i.state.Sequence = seq
	if i.state.Data == nil {
		i.state.Phase = PhaseLoading
	} else {
		i.state.Refreshing = true
	}
	i.mu.Unlock()
	i.ctrl.notify(i)

	ctx := pipeline.WithAdmissionHook(i.ctrl.ctx, func() { i.markDispatched(seq) })
	res, err := i.ctrl.fetcher.Execute(ctx, i.cfg, i.vars)

	var throttled *errs.ThrottledError
	wasThrottled := errors.As(err, &throttled)

	i.mu.Lock()
	if !wasThrottled && seq > i.dispatched {
		i.dispatched = seq
	}
	if !i.mounted || seq < i.dispatched {
		i.mu.Unlock()
		i.ctrl.log.Debug("discarding stale fetch result", "instance_id", i.id, "sequence", seq)
		return
	}

	i.state.Refreshing = false
	if err != nil {
		if delay, ok := i.ctrl.policy.Next(err, i.attempts); ok {
			i.attempts++
			i.scheduleRetry(delay)
			i.mu.Unlock()
			i.ctrl.log.Debug("fetch deferred", "instance_id", i.id, "retry_in", delay, "reason", err.Error())
			i.ctrl.notify(i)
			return
		}
		i.attempts = 0
		i.state.Phase = PhaseError
		i.state.ErrorMessage = err.Error()
		i.mu.Unlock()
		i.ctrl.log.Warn("widget fetch failed", "instance_id", i.id, "widget", i.cfg.Name, "error", err)
		i.ctrl.notify(i)
		return
	}

	i.attempts = 0
	i.cancelRetry()
	i.state.Phase = PhaseLoaded
	i.state.Data = res.Data
	i.state.ErrorMessage = ""
	i.state.LastUpdatedAt = res.FetchedAt
	i.mu.Unlock()
	i.ctrl.notify(i)
}

func (i *Instance) markDispatched(seq uint64) {
	i.mu.Lock()
	if seq > i.dispatched {
		i.dispatched = seq
	}
	i.mu.Unlock()
}

// scheduleRetry replaces any pending retry. Callers hold i.mu.
func (i *Instance) scheduleRetry(delay time.Duration) {
	i.cancelRetry()
	i.retry = i.ctrl.clock.AfterFunc(delay, func() {
		i.mu.Lock()
		if !i.mounted {
			i.mu.Unlock()
			return
		}
		i.retry = nil
		i.mu.Unlock()
		i.fetch()
	})
}

// cancelRetry stops the pending retry, if any. Callers hold i.mu.
func (i *Instance) cancelRetry() {
	if i.retry != nil {
		i.retry.Stop()
		i.retry = nil
	}
}

// refresh fetches now, outside the interval. Preview instances never fetch.
func (i *Instance) refresh() {
	if i.preview {
		return
	}
	i.mu.Lock()
	i.cancelRetry()
	i.mu.Unlock()
	i.fetch()
}

// touch records client activity, postponing idle expiry.
func (i *Instance) touch() {
	i.mu.Lock()
	i.lastSeen = i.ctrl.clock.Now()
	i.mu.Unlock()
}

// armIdle schedules an idle check after d. Callers hold i.mu.
func (i *Instance) armIdle(d time.Duration) {
	i.idle = i.ctrl.clock.AfterFunc(d, i.checkIdle)
}

// checkIdle unmounts the instance once nobody has looked at it for the idle
// TTL, otherwise it re-arms for the rest of the window.
func (i *Instance) checkIdle() {
	ttl := i.ctrl.idleTTL
	i.mu.Lock()
	if !i.mounted {
		i.mu.Unlock()
		return
	}
	if quiet := i.ctrl.clock.Now().Sub(i.lastSeen); quiet < ttl {
		i.armIdle(ttl - quiet)
		i.mu.Unlock()
		return
	}
	i.idle = nil
	i.mu.Unlock()
	i.ctrl.expire(i)
}

func (i *Instance) stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.mounted = false
	if i.interval != nil {
		i.interval.Stop()
		i.interval = nil
	}
	if i.idle != nil {
		i.idle.Stop()
		i.idle = nil
	}
	i.cancelRetry()
}

// retryPending reports whether a retry timer is armed.
func (i *Instance) retryPending() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.retry != nil
}
