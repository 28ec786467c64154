package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/joshp123/acwatch/internal/units"
)

// Fetcher polls every provider and concatenates their units in provider
// order. Any provider failure fails the whole fetch so the store is never
// replaced with a partial collection.
type Fetcher struct {
	providers []Provider
}

func NewFetcher(providers []Provider) *Fetcher {
	return &Fetcher{providers: providers}
}

func (f *Fetcher) Fetch(ctx context.Context) ([]units.Snapshot, error) {
	results := make([][]units.Snapshot, len(f.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range f.providers {
		g.Go(func() error {
			snaps, err := p.Units(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", p.ID(), err)
			}
			results[i] = snaps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []units.Snapshot
	for _, snaps := range results {
		out = append(out, snaps...)
	}
	if out == nil {
		out = []units.Snapshot{}
	}
	return out, nil
}
