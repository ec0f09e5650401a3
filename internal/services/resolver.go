package services

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/obs"
	"trip-route-service/internal/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type memoEntry struct {
	address string
	coord   domain.Coordinates
}

// Resolver maps stops to resolved locations.
//
// Stops with a usable coordinate are taken as-is; otherwise the address is
// geocoded. Stops that cannot be placed are dropped and logged, never
// reported as errors. Geocoded coordinates are remembered per stop ID so a
// reload only geocodes stops whose address changed.
//
// A Resolver belongs to a single session.
type Resolver struct {
	geocoder    ports.Geocoder
	concurrency int
	log         *zap.Logger

	mu   sync.Mutex
	memo map[string]memoEntry
}

func NewResolver(geocoder ports.Geocoder, concurrency int, log *zap.Logger) *Resolver {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Resolver{
		geocoder:    geocoder,
		concurrency: concurrency,
		log:         log,
		memo:        make(map[string]memoEntry),
	}
}

// Resolve returns the resolvable stops in sequence order.
// The only error is a cancelled or expired context.
func (r *Resolver) Resolve(ctx context.Context, stops []domain.Stop) (_ []domain.ResolvedLocation, err error) {
	defer obs.Time(ctx, r.log, "resolver.Resolve")(&err)

	ordered := slices.Clone(stops)
	slices.SortStableFunc(ordered, func(a, b domain.Stop) int {
		return cmp.Compare(a.Sequence, b.Sequence)
	})

	seen := make(map[string]struct{}, len(ordered))
	slots := make([]*domain.ResolvedLocation, len(ordered))

	type job struct {
		idx     int
		stop    domain.Stop
		address string
	}
	jobs := make([]job, 0)

	r.mu.Lock()
	for i, s := range ordered {
		if s.ID == "" {
			r.log.Warn("dropping stop without id", zap.String("name", s.DisplayName))
			continue
		}
		if _, dup := seen[s.ID]; dup {
			r.log.Warn("dropping duplicate stop id", zap.String("stop_id", s.ID))
			continue
		}
		seen[s.ID] = struct{}{}

		if s.HasCoordinate() {
			slots[i] = resolved(s, *s.RawCoordinate, domain.SourceRaw)
			continue
		}

		address := s.GeocodeQuery()
		if address == "" {
			r.log.Info("dropping unresolvable stop",
				zap.String("stop_id", s.ID),
				zap.String("reason", "no coordinate and no address"))
			continue
		}

		if m, ok := r.memo[s.ID]; ok && m.address == address {
			slots[i] = resolved(s, m.coord, domain.SourceMemo)
			continue
		}

		jobs = append(jobs, job{idx: i, stop: s, address: address})
	}

	// Forget stops that left the plan.
	for id := range r.memo {
		if _, ok := seen[id]; !ok {
			delete(r.memo, id)
		}
	}
	r.mu.Unlock()

	if len(jobs) > 0 && r.geocoder == nil {
		r.log.Warn("no geocoder configured; dropping stops that need geocoding", zap.Int("count", len(jobs)))
		jobs = nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, j := range jobs {
		g.Go(func() error {
			res, err := r.geocoder.Geocode(gctx, j.address)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				r.log.Warn("geocoding failed; dropping stop",
					zap.String("stop_id", j.stop.ID),
					zap.String("address", j.address),
					zap.Error(err))
				return nil
			}

			if !res.Found || !res.Coordinates.Valid() {
				r.log.Info("no geocoding match; dropping stop",
					zap.String("stop_id", j.stop.ID),
					zap.String("address", j.address))
				return nil
			}

			// Each job owns its slot; no lock needed for the slice.
			slots[j.idx] = resolved(j.stop, res.Coordinates, domain.SourceGeocoded)

			r.mu.Lock()
			r.memo[j.stop.ID] = memoEntry{address: j.address, coord: res.Coordinates}
			r.mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.ResolvedLocation, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}

	r.log.Debug("stops resolved",
		zap.Int("input", len(stops)),
		zap.Int("resolved", len(out)),
		zap.Int("geocoded", len(jobs)))

	return out, nil
}

func resolved(s domain.Stop, c domain.Coordinates, src domain.LocationSource) *domain.ResolvedLocation {
	return &domain.ResolvedLocation{
		StopID:      s.ID,
		DisplayName: s.DisplayName,
		Coordinate:  c,
		Sequence:    s.Sequence,
		Source:      src,
	}
}
