package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"trip-route-service/internal/domain"

	"go.uber.org/zap"
)

var ErrUnknownStop = errors.New("unknown stop")

// Snapshot is a consistent, read-only view of a route session.
type Snapshot struct {
	// Generation of the active set. Bumped by every toggle and reload.
	Generation uint64
	Resolved   []domain.ResolvedLocation
	Display    []domain.DisplayLocation
	// Active stop IDs in sequence order.
	ActiveStopIDs []string
	Route         domain.RouteResult
	// Active stop IDs the current Route was computed for.
	RouteStopIDs []string
	// Pending is true while the route for Generation is still being computed.
	Pending bool
	Region  Region
}

// Controller owns the active set and the latest route of one route view session.
//
// Toggle is the only mutator of the active set besides a full reload.
// Mutations are applied in call order under the lock; the network call runs
// outside it, and a result is applied only if no newer mutation happened
// meanwhile.
type Controller struct {
	resolver *Resolver
	engine   *RouteEngine
	overlap  OverlapConfig
	log      *zap.Logger

	mu           sync.Mutex
	loadGen      uint64
	generation   uint64
	resolved     []domain.ResolvedLocation
	display      []domain.DisplayLocation
	active       map[string]bool
	route        domain.RouteResult
	routeStopIDs []string
	subs         map[int]chan Snapshot
	nextSub      int
}

func NewController(resolver *Resolver, engine *RouteEngine, overlap OverlapConfig, log *zap.Logger) *Controller {
	return &Controller{
		resolver:     resolver,
		engine:       engine,
		overlap:      overlap,
		log:          log,
		active:       make(map[string]bool),
		route:        domain.EmptyRoute(nil),
		routeStopIDs: []string{},
		subs:         make(map[int]chan Snapshot),
	}
}

// Load resolves stops and computes the initial route. Calling it again
// reloads the session: stops that are still present keep their active flag
// and new stops start active.
//
// A load superseded by a newer one returns the state at that point without
// applying its own resolution.
func (c *Controller) Load(ctx context.Context, stops []domain.Stop) (Snapshot, error) {
	c.mu.Lock()
	c.loadGen++
	loadGen := c.loadGen
	c.mu.Unlock()

	resolved, err := c.resolver.Resolve(ctx, stops)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load stops: %w", err)
	}
	display := Deoverlap(resolved, c.overlap)

	c.mu.Lock()
	if loadGen != c.loadGen {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.log.Debug("discarding superseded load", zap.Uint64("load_gen", loadGen))
		return snap, nil
	}

	active := make(map[string]bool, len(resolved))
	for _, l := range resolved {
		if was, ok := c.active[l.StopID]; ok {
			active[l.StopID] = was
			continue
		}
		active[l.StopID] = true
	}

	c.resolved = resolved
	c.display = display
	c.active = active
	c.generation++
	gen := c.generation
	locs := c.activeLocked()
	c.mu.Unlock()

	c.log.Info("route session loaded",
		zap.Int("stops", len(stops)),
		zap.Int("resolved", len(resolved)),
		zap.Int("active", len(locs)),
		zap.Uint64("generation", gen))

	return c.recompute(ctx, gen, locs), nil
}

// Toggle flips a stop between active and inactive and recomputes the route.
func (c *Controller) Toggle(ctx context.Context, stopID string) (Snapshot, error) {
	c.mu.Lock()
	was, ok := c.active[stopID]
	if !ok {
		c.mu.Unlock()
		return Snapshot{}, fmt.Errorf("toggle %q: %w", stopID, ErrUnknownStop)
	}
	c.active[stopID] = !was
	c.generation++
	gen := c.generation
	locs := c.activeLocked()
	c.mu.Unlock()

	c.log.Debug("stop toggled",
		zap.String("stop_id", stopID),
		zap.Bool("active", !was),
		zap.Uint64("generation", gen))

	return c.recompute(ctx, gen, locs), nil
}

// recompute routes locs and applies the result if gen is still current.
func (c *Controller) recompute(ctx context.Context, gen uint64, locs []domain.ResolvedLocation) Snapshot {
	// A client hanging up must not turn the shared route into a fallback.
	result := c.engine.Compute(context.WithoutCancel(ctx), locs)
	result.Generation = gen

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Debug("discarding stale route",
			zap.Uint64("generation", gen),
			zap.Uint64("current", c.generation))
		return c.snapshotLocked()
	}

	c.route = result
	c.routeStopIDs = stopIDs(locs)
	snap := c.snapshotLocked()
	c.notifyLocked(snap)
	return snap
}

// Subscribe returns a channel receiving the current snapshot and every
// applied route afterwards. Slow readers only see the latest snapshot.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.snapshotLocked()
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			close(ch)
			c.mu.Unlock()
		})
	}
	return ch, cancel
}

func (c *Controller) notifyLocked(snap Snapshot) {
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) ResolvedLocations() []domain.ResolvedLocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.resolved)
}

func (c *Controller) DisplayLocations() []domain.DisplayLocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayLocked()
}

// ActiveSet returns the IDs of the active stops.
func (c *Controller) ActiveSet() map[string]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]struct{}, len(c.active))
	for id, on := range c.active {
		if on {
			out[id] = struct{}{}
		}
	}
	return out
}

// ActiveLocations returns the active resolved locations in sequence order.
func (c *Controller) ActiveLocations() []domain.ResolvedLocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLocked()
}

func (c *Controller) Route() domain.RouteResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneRoute(c.route)
}

func (c *Controller) activeLocked() []domain.ResolvedLocation {
	out := make([]domain.ResolvedLocation, 0, len(c.resolved))
	for _, l := range c.resolved {
		if c.active[l.StopID] {
			out = append(out, l)
		}
	}
	return out
}

func (c *Controller) displayLocked() []domain.DisplayLocation {
	out := slices.Clone(c.display)
	for i := range out {
		out[i].Active = c.active[out[i].StopID]
	}
	return out
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Generation:    c.generation,
		Resolved:      slices.Clone(c.resolved),
		Display:       c.displayLocked(),
		ActiveStopIDs: stopIDs(c.activeLocked()),
		Route:         cloneRoute(c.route),
		RouteStopIDs:  slices.Clone(c.routeStopIDs),
		Pending:       c.route.Generation != c.generation,
		Region:        FitRegion(c.resolved),
	}
}

func stopIDs(locs []domain.ResolvedLocation) []string {
	ids := make([]string, 0, len(locs))
	for _, l := range locs {
		ids = append(ids, l.StopID)
	}
	return ids
}

func cloneRoute(r domain.RouteResult) domain.RouteResult {
	r.PathPoints = slices.Clone(r.PathPoints)
	r.Legs = slices.Clone(r.Legs)
	return r
}
