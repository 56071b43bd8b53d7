package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"lanmap/internal/adapter"
	"lanmap/internal/domain"
	"lanmap/internal/metrics"
	"lanmap/internal/repository"
)

// ErrNoSources is returned when every tier and the last-good cache are
// exhausted. The controller never masks this by synthesizing a graph.
var ErrNoSources = errors.New("no topology sources available")

// ControllerConfig carries the timing knobs of the degradation controller.
type ControllerConfig struct {
	// Interval between scheduled passes.
	Interval time.Duration
	// Deadline bounds one whole pass; in-flight fetches past it are abandoned.
	Deadline time.Duration
	// CacheTTL is how long the last-good graph remains servable.
	CacheTTL time.Duration
	// Gateways are the operator-configured upstream gateways.
	Gateways []domain.GatewayDescriptor
}

// Controller orchestrates source adapters across priority tiers. Each pass
// fetches every live adapter concurrently, waits for all of them to settle,
// and walks the tier ladder until it has data it can honestly serve.
type Controller struct {
	cfg      ControllerConfig
	registry *adapter.Registry
	rec      *Reconciler
	repo     repository.Store
	met      *metrics.Metrics
	bus      *EventBus
	clock    clockwork.Clock
	log      *logrus.Logger

	mu       sync.RWMutex
	lastGood *domain.Graph // last successfully built graph, swapped atomically
	last     *domain.Graph // outcome of the most recent pass (may be cached)
	lastErr  error
	lastTier domain.Tier
}

// NewController creates the degradation controller. repo may be nil when
// persistence is disabled.
func NewController(cfg ControllerConfig, registry *adapter.Registry, rec *Reconciler,
	repo repository.Store, met *metrics.Metrics, bus *EventBus,
	clock clockwork.Clock, log *logrus.Logger) *Controller {

	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = 30 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}

	return &Controller{
		cfg:      cfg,
		registry: registry,
		rec:      rec,
		repo:     repo,
		met:      met,
		bus:      bus,
		clock:    clock,
		log:      log,
	}
}

// Hydrate loads the persisted last-good graph into the cache so a restart
// can still serve TIER_CACHED until the first live pass succeeds.
func (c *Controller) Hydrate(ctx context.Context) error {
	if c.repo == nil {
		return nil
	}
	g, err := c.repo.LatestSnapshot(ctx)
	if err != nil {
		return err
	}
	if g == nil {
		return nil
	}

	c.mu.Lock()
	c.lastGood = g
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"tier":         g.Tier,
		"generated_at": g.GeneratedAt,
	}).Info("hydrated cached graph")
	return nil
}

// Run executes one pass immediately and then on every interval tick until
// the context is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	if _, err := c.RunPass(ctx); err != nil {
		c.log.WithError(err).Warn("initial pass failed")
	}

	ticker := c.clock.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if _, err := c.RunPass(ctx); err != nil {
				c.log.WithError(err).Warn("pass failed")
			}
		}
	}
}

// Current returns the outcome of the most recent pass.
func (c *Controller) Current() (*domain.Graph, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil && c.lastErr == nil {
		return nil, ErrNoSources
	}
	return c.last, c.lastErr
}

// fetchResult is one adapter's settled outcome for a pass.
type fetchResult struct {
	tag     domain.SourceTag
	records []domain.PartialRecord
	err     error
}

// RunPass executes one complete fetch-merge-build cycle and returns the
// resulting graph, or ErrNoSources when every tier and the cache failed.
func (c *Controller) RunPass(ctx context.Context) (*domain.Graph, error) {
	passID := uuid.NewString()
	started := c.clock.Now()
	log := c.log.WithField("pass_id", passID)

	c.bus.Publish(Event{Type: EventPassStarted, Payload: map[string]string{"pass_id": passID}})

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Deadline)
	defer cancel()

	results := c.fetchLive(ctx)
	for _, res := range results {
		if res.err != nil {
			log.WithError(res.err).WithField("source", res.tag).Warn("adapter fetch failed")
			c.countFailure(res.tag, res.err)
		}
	}

	byTag := make(map[domain.SourceTag]fetchResult, len(results))
	for _, res := range results {
		byTag[res.tag] = res
	}

	rt := byTag[domain.SourceRealtime]
	pc := byTag[domain.SourcePortConfig]

	// Descriptors are only trusted when port-configuration answered in
	// this pass; a stale structure is never silently reused.
	var switches []domain.SwitchDescriptor
	if pc.err == nil {
		switches = c.switchDescriptors()
	}

	rtOK := rt.err == nil && len(rt.records) > 0
	pcOK := pc.err == nil && len(switches) > 0

	var (
		tier    domain.Tier
		records []domain.PartialRecord
	)

	switch {
	case rtOK:
		tier = domain.TierRealtime
		records = collectRecords(results, nil)

	case pcOK:
		tier = domain.TierConfigOnly
		log.WithError(tierReason(rt)).Warn("realtime unavailable, degrading to config-only tier")
		// Liveness is unknown for the whole pass; realtime records (if any)
		// are excluded so no stale ages leak through.
		records = collectRecords(results, map[domain.SourceTag]struct{}{domain.SourceRealtime: {}})

	default:
		log.WithFields(logrus.Fields{
			"realtime_error":   errString(tierReason(rt)),
			"portconfig_error": errString(tierReason(pc)),
		}).Warn("live tiers unavailable, degrading to static inventory")
		return c.staticPass(ctx, passID, started, log)
	}

	devices := c.rec.Reconcile(records)
	graph := BuildGraph(devices, switches, c.cfg.Gateways)
	graph.Tier = tier
	graph.PassID = passID
	graph.GeneratedAt = started

	c.commit(ctx, graph, started, log)
	return graph, nil
}

// fetchLive runs every live adapter concurrently and waits for all of them
// to settle. Failures are collected, never propagated mid-pass: this is a
// wait-all barrier, not best-of.
func (c *Controller) fetchLive(ctx context.Context) []fetchResult {
	live := c.registry.Live()
	results := make([]fetchResult, len(live))

	var g errgroup.Group
	for i, a := range live {
		g.Go(func() error {
			recs, err := a.Fetch(ctx)
			results[i] = fetchResult{tag: a.Tag(), records: recs, err: err}
			return nil
		})
	}
	// Wait-all barrier: every fetch settles (success, failure, or timeout)
	// before any tier decision is made. Goroutines always return nil; real
	// outcomes live in results.
	_ = g.Wait()

	return results
}

// staticPass is the TIER_STATIC_ONLY / TIER_CACHED / TIER_UNAVAILABLE tail
// of the state machine.
func (c *Controller) staticPass(ctx context.Context, passID string, started time.Time, log *logrus.Entry) (*domain.Graph, error) {
	if static := c.registry.Static(); static != nil {
		records, err := static.Fetch(ctx)
		if err != nil {
			log.WithError(err).Warn("static inventory fetch failed")
			c.countFailure(domain.SourceStatic, err)
		} else if len(records) > 0 {
			devices := c.rec.Reconcile(records)
			// Device-list-only topology: no port placement, every device
			// is an unattached node.
			graph := BuildGraph(devices, nil, nil)
			graph.Tier = domain.TierStaticOnly
			graph.PassID = passID
			graph.GeneratedAt = started

			c.commit(ctx, graph, started, log)
			return graph, nil
		}
	}

	if cached := c.cachedGraph(passID); cached != nil {
		log.WithFields(logrus.Fields{
			"origin_tier":  cached.OriginTier,
			"generated_at": cached.GeneratedAt,
		}).Warn("serving last-good cached graph")

		c.finishPass(ctx, cached, domain.TierCached, started, "", log)
		c.mu.Lock()
		c.last = cached
		c.lastErr = nil
		c.mu.Unlock()
		return cached, nil
	}

	err := fmt.Errorf("%w: all tiers exhausted and no cached graph", ErrNoSources)
	log.WithError(err).Error("pass failed")

	empty := &domain.Graph{Tier: domain.TierUnavailable, PassID: passID, GeneratedAt: started}
	c.finishPass(ctx, empty, domain.TierUnavailable, started, err.Error(), log)
	c.mu.Lock()
	c.last = nil
	c.lastErr = err
	c.mu.Unlock()
	return nil, err
}

// commit atomically swaps the last-good cache and records the pass.
func (c *Controller) commit(ctx context.Context, graph *domain.Graph, started time.Time, log *logrus.Entry) {
	c.mu.Lock()
	c.lastGood = graph
	c.last = graph
	c.lastErr = nil
	c.mu.Unlock()

	if c.repo != nil {
		if err := c.repo.SaveSnapshot(ctx, graph); err != nil {
			log.WithError(err).Warn("failed to persist snapshot")
		}
	}

	c.finishPass(ctx, graph, graph.Tier, started, "", log)

	c.bus.Publish(Event{Type: EventTopologyUpdated, Payload: map[string]any{
		"pass_id":      graph.PassID,
		"tier":         graph.Tier,
		"device_count": graph.DeviceCount(),
		"link_count":   graph.LinkCount(),
	}})
}

// finishPass handles the bookkeeping shared by every pass outcome: tier
// transition events, metrics, and the persisted pass history.
func (c *Controller) finishPass(ctx context.Context, graph *domain.Graph, tier domain.Tier, started time.Time, errMsg string, log *logrus.Entry) {
	duration := c.clock.Since(started)

	c.mu.Lock()
	prevTier := c.lastTier
	c.lastTier = tier
	c.mu.Unlock()

	if prevTier != "" && prevTier != tier {
		log.WithFields(logrus.Fields{"from": prevTier, "to": tier}).Warn("tier changed")
		c.bus.Publish(Event{Type: EventTierChanged, Payload: map[string]domain.Tier{
			"from": prevTier, "to": tier,
		}})
	}

	if c.met != nil {
		c.met.Passes.WithLabelValues(string(tier)).Inc()
		c.met.PassDuration.Observe(duration.Seconds())
		if graph != nil {
			c.met.Devices.Set(float64(graph.DeviceCount()))
			c.met.Links.Set(float64(graph.LinkCount()))
		}
	}

	if c.repo != nil {
		rec := repository.PassRecord{
			PassID:    graph.PassID,
			Tier:      tier,
			StartedAt: started,
			Duration:  duration,
			Error:     errMsg,
		}
		rec.DeviceCount = graph.DeviceCount()
		rec.LinkCount = graph.LinkCount()
		if err := c.repo.RecordPass(ctx, rec); err != nil {
			log.WithError(err).Warn("failed to record pass")
		}
	}

	c.bus.Publish(Event{Type: EventPassCompleted, Payload: map[string]any{
		"pass_id":  graph.PassID,
		"tier":     tier,
		"duration": duration.String(),
		"error":    errMsg,
	}})

	log.WithFields(logrus.Fields{
		"tier":     tier,
		"duration": duration,
		"devices":  graph.DeviceCount(),
		"links":    graph.LinkCount(),
	}).Info("pass finished")
}

// cachedGraph returns a copy of the last-good graph tagged with its true
// origin, or nil when no cache exists or it is past its TTL.
func (c *Controller) cachedGraph(passID string) *domain.Graph {
	c.mu.RLock()
	g := c.lastGood
	c.mu.RUnlock()

	if g == nil || c.clock.Since(g.GeneratedAt) > c.cfg.CacheTTL {
		return nil
	}

	cached := *g
	cached.Cached = true
	cached.OriginTier = g.Tier
	cached.Tier = domain.TierCached
	cached.PassID = passID
	// GeneratedAt stays at the original build time: a cached graph is
	// never relabeled as fresh.
	return &cached
}

// switchDescriptors returns the port-configuration adapter's most recent
// switch structure, empty when the adapter is absent or has not succeeded.
func (c *Controller) switchDescriptors() []domain.SwitchDescriptor {
	a, ok := c.registry.Get(domain.SourcePortConfig)
	if !ok {
		return nil
	}
	src, ok := a.(adapter.SwitchSource)
	if !ok {
		return nil
	}
	return src.Switches()
}

func (c *Controller) countFailure(tag domain.SourceTag, err error) {
	if c.met == nil {
		return
	}
	kind := string(adapter.KindUnavailable)
	var ae *adapter.Error
	if errors.As(err, &ae) {
		kind = string(ae.Kind)
	}
	c.met.AdapterFailures.WithLabelValues(string(tag), kind).Inc()
}

// collectRecords concatenates the records of every successful fetch, minus
// excluded sources, preserving adapter order for determinism.
func collectRecords(results []fetchResult, exclude map[domain.SourceTag]struct{}) []domain.PartialRecord {
	var out []domain.PartialRecord
	for _, res := range results {
		if res.err != nil {
			continue
		}
		if _, skip := exclude[res.tag]; skip {
			continue
		}
		out = append(out, res.records...)
	}
	return out
}

// tierReason explains why a source could not anchor its tier.
func tierReason(res fetchResult) error {
	if res.err != nil {
		return res.err
	}
	return fmt.Errorf("source %s returned no usable data", res.tag)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
