// Package refresh owns the lifecycle of mounted widget instances: the first
// fetch, periodic refresh, silent rate-limit retries, forced refresh and
// teardown.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/widget-dashboard/internal/errs"
	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/pipeline"
	"github.com/GregMSThompson/widget-dashboard/pkg/clock"
	"github.com/GregMSThompson/widget-dashboard/pkg/logger"
)

// Fetcher executes one widget query; *pipeline.Executor satisfies it.
type Fetcher interface {
	Execute(ctx context.Context, cfg models.WidgetConfig, vars pipeline.Params) (pipeline.Result, error)
}

// Gauge tracks the number of mounted instances; prometheus.Gauge satisfies it.
type Gauge interface {
	Set(float64)
}

type Config struct {
	Fetcher Fetcher
	Clock   clock.Clock
	Policy  pipeline.RetryPolicy
	// Bus, when set, routes Refresh and RefreshAll through the message bus.
	Bus      *Bus
	Mounted  Gauge
	OnChange func(instanceID string, state FetchState)
	// IdleTTL unmounts an instance nobody has read or refreshed for this long.
	// Zero keeps instances until they are unmounted explicitly.
	IdleTTL time.Duration
}

// MountRequest describes a widget being placed on a page.
type MountRequest struct {
	Config models.WidgetConfig
	Vars   pipeline.Params
	// Preview, when set, is shown as-is and no fetch is ever made.
	Preview *Preview
}

type Preview struct {
	Data any
}

type Controller struct {
	ctx      context.Context
	cancel   context.CancelFunc
	log      *slog.Logger
	fetcher  Fetcher
	clock    clock.Clock
	policy   pipeline.RetryPolicy
	bus      *Bus
	mounted  Gauge
	onChange func(string, FetchState)
	idleTTL  time.Duration

	mu          sync.RWMutex
	instances   map[string]*Instance
	unmountHook []func(instanceID string)
}

// NewController builds a controller whose fetches run under ctx. The context
// logger is used for lifecycle logging.
func NewController(ctx context.Context, cfg Config) (*Controller, error) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &Controller{
		ctx:       ctx,
		cancel:    cancel,
		log:       logger.FromContext(ctx),
		fetcher:   cfg.Fetcher,
		clock:     cfg.Clock,
		policy:    cfg.Policy,
		bus:       cfg.Bus,
		mounted:   cfg.Mounted,
		onChange:  cfg.OnChange,
		idleTTL:   cfg.IdleTTL,
		instances: make(map[string]*Instance),
	}
	if c.clock == nil {
		c.clock = clock.Real()
	}
	if c.policy == (pipeline.RetryPolicy{}) {
		c.policy = pipeline.DefaultRetryPolicy()
	}

	if c.bus != nil {
		if err := c.bus.Subscribe(ctx, c.dispatch); err != nil {
			cancel()
			return nil, err
		}
	}
	return c, nil
}

// Mount registers a new instance and starts it: preview data is loaded
// immediately, otherwise the first fetch is dispatched and the interval armed.
func (c *Controller) Mount(req MountRequest) *Instance {
	inst := &Instance{
		id:       uuid.NewString(),
		cfg:      req.Config,
		vars:     req.Vars,
		preview:  req.Preview != nil,
		ctrl:     c,
		mounted:  true,
		state:    FetchState{Phase: PhaseIdle},
		lastSeen: c.clock.Now(),
	}
	if c.idleTTL > 0 {
		inst.armIdle(c.idleTTL)
	}

	c.mu.Lock()
	c.instances[inst.id] = inst
	n := len(c.instances)
	c.mu.Unlock()
	c.setMounted(n)

	c.log.Info("widget mounted", "instance_id", inst.id, "widget", req.Config.Name, "plugin", req.Config.PluginName, "preview", inst.preview)

	var previewData any
	if req.Preview != nil {
		previewData = req.Preview.Data
	}
	inst.start(previewData)
	return inst
}

// Get returns a mounted instance and counts as activity for idle expiry.
func (c *Controller) Get(id string) (*Instance, error) {
	c.mu.RLock()
	inst, ok := c.instances[id]
	c.mu.RUnlock()
	if !ok {
		return nil, errs.NewNotFoundError("widget instance not found")
	}
	inst.touch()
	return inst, nil
}

// OnUnmount registers fn to run after every unmount, explicit or idle.
func (c *Controller) OnUnmount(fn func(instanceID string)) {
	c.mu.Lock()
	c.unmountHook = append(c.unmountHook, fn)
	c.mu.Unlock()
}

// Unmount cancels the instance's timers. A fetch still in flight completes
// but its result is dropped.
func (c *Controller) Unmount(id string) error {
	c.mu.Lock()
	inst, ok := c.instances[id]
	delete(c.instances, id)
	n := len(c.instances)
	c.mu.Unlock()
	if !ok {
		return errs.NewNotFoundError("widget instance not found")
	}

	inst.stop()
	c.setMounted(n)
	c.log.Info("widget unmounted", "instance_id", id)

	c.mu.RLock()
	hooks := c.unmountHook
	c.mu.RUnlock()
	for _, fn := range hooks {
		fn(id)
	}
	return nil
}

func (c *Controller) expire(inst *Instance) {
	c.log.Info("unmounting idle widget", "instance_id", inst.id, "idle_ttl", c.idleTTL)
	_ = c.Unmount(inst.id)
}

// Refresh forces a fetch for one instance. It bypasses the interval but not
// the rate limiter.
func (c *Controller) Refresh(id string) error {
	if _, err := c.Get(id); err != nil {
		return err
	}
	if c.bus != nil {
		return c.bus.Publish(id)
	}
	c.dispatch(id)
	return nil
}

// RefreshAll forces a fetch for every mounted instance.
func (c *Controller) RefreshAll() error {
	if c.bus != nil {
		return c.bus.Publish(AllInstances)
	}
	c.dispatch(AllInstances)
	return nil
}

func (c *Controller) dispatch(id string) {
	if id != AllInstances {
		inst, err := c.Get(id)
		if err != nil {
			c.log.Debug("refresh signal for unknown instance", "instance_id", id)
			return
		}
		go inst.refresh()
		return
	}
	for _, inst := range c.list() {
		go inst.refresh()
	}
}

func (c *Controller) list() []*Instance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Instance, 0, len(c.instances))
	for _, inst := range c.instances {
		out = append(out, inst)
	}
	return out
}

// Len returns the number of mounted instances.
func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.instances)
}

// Close unmounts every instance and stops listening for refresh signals.
func (c *Controller) Close() {
	for _, inst := range c.list() {
		_ = c.Unmount(inst.id)
	}
	c.cancel()
}

func (c *Controller) notify(inst *Instance) {
	if c.onChange != nil {
		c.onChange(inst.id, inst.State())
	}
}

func (c *Controller) setMounted(n int) {
	if c.mounted != nil {
		c.mounted.Set(float64(n))
	}
}
