// Package scanner loads asset formulae from every configured resource and
// merges the results.
package scanner

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/StinkyLord/rjs-builder/internal/assets"
	"github.com/StinkyLord/rjs-builder/internal/model"
)

// Loader turns a resource into formulae keyed by asset name.
type Loader interface {
	Load(r assets.Resource) (map[string]model.Formula, error)
}

// Result holds the merged formulae and which resources contributed to them.
type Result struct {
	Formulae         map[string]model.Formula
	ResourcesUsed    []string
	ResourcesSkipped []string
}

// Sorted returns the formulae ordered by output path.
func (r *Result) Sorted() []model.Formula {
	out := make([]model.Formula, 0, len(r.Formulae))
	for _, f := range r.Formulae {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Output != out[j].Output {
			return out[i].Output < out[j].Output
		}
		return out[i].Input < out[j].Input
	})
	return out
}

// Scanner runs the loader over all resources.
type Scanner struct {
	Loader    Loader
	Resources []assets.Resource
	Logger    zerolog.Logger

	// Limit caps the number of resources loaded at once. Zero means no limit.
	Limit int
}

// New creates a Scanner.
func New(loader Loader, resources []assets.Resource, logger zerolog.Logger) *Scanner {
	return &Scanner{
		Loader:    loader,
		Resources: resources,
		Logger:    logger,
	}
}

// Scan loads all resources concurrently. A resource that fails to load is
// logged and reported as skipped; it does not fail the scan. Results are
// merged in resource order, so an earlier resource wins a name collision.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	type resourceResult struct {
		formulae map[string]model.Formula
		err      error
	}

	results := make([]resourceResult, len(s.Resources))

	g, ctx := errgroup.WithContext(ctx)
	if s.Limit > 0 {
		g.SetLimit(s.Limit)
	}
	for i, r := range s.Resources {
		i, r := i, r
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.Logger.Debug().Str("resource", r.String()).Msg("loading resource")
			formulae, err := s.Loader.Load(r)
			results[i] = resourceResult{formulae: formulae, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Result{Formulae: map[string]model.Formula{}}
	for i, r := range results {
		name := s.Resources[i].String()
		if r.err != nil {
			s.Logger.Warn().Err(r.err).Str("resource", name).Msg("resource skipped")
			merged.ResourcesSkipped = append(merged.ResourcesSkipped, name)
			continue
		}
		if len(r.formulae) == 0 {
			merged.ResourcesSkipped = append(merged.ResourcesSkipped, name)
			continue
		}
		merged.ResourcesUsed = append(merged.ResourcesUsed, name)
		for key, f := range r.formulae {
			if _, ok := merged.Formulae[key]; !ok {
				merged.Formulae[key] = f
			}
		}
	}

	return merged, nil
}
