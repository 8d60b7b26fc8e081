package feed

import (
	"context"

	"goglobe/internal/geoip"
)

// Locator finds coordinates for an address. *geoip.Resolver satisfies it.
type Locator interface {
	Locate(ctx context.Context, ip string) (geoip.Location, bool)
}

// Enrich fills in coordinates, and the location label when empty, for hops
// that arrived without them. Hops are modified in place and returned.
func Enrich(ctx context.Context, hops []Hop, loc Locator) []Hop {
	if loc == nil {
		return hops
	}
	for i := range hops {
		if hops[i].Located() || hops[i].IP == "" {
			continue
		}
		l, ok := loc.Locate(ctx, hops[i].IP)
		if !ok {
			continue
		}
		hops[i].Coordinates = l.Coordinates()
		if hops[i].Location == "" || hops[i].Location == "N/A" {
			hops[i].Location = l.Place()
		}
	}
	return hops
}

type enriched struct {
	Source
	loc Locator
}

// WithLocator wraps src so every update is enriched before delivery.
func WithLocator(src Source, loc Locator) Source {
	if loc == nil {
		return src
	}
	return &enriched{Source: src, loc: loc}
}

func (e *enriched) Stream(ctx context.Context, out chan<- Update) error {
	in := make(chan Update)
	errc := make(chan error, 1)
	go func() {
		errc <- e.Source.Stream(ctx, in)
		close(in)
	}()
	for u := range in {
		u.Hops = Enrich(ctx, u.Hops, e.loc)
		if err := send(ctx, out, u); err != nil {
			// drain so the inner source can observe cancellation and exit
			for range in {
			}
			<-errc
			return err
		}
	}
	return <-errc
}
