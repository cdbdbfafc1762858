package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"tccretro/internal/logging"
	"tccretro/internal/records"
	"tccretro/internal/services"
)

// Outcome is the per-analyzer entry produced by Registry.Run. Exactly one of
// Result or Err is meaningful.
type Outcome struct {
	Name   string
	Result Result
	Err    error
}

// OK reports whether the analyzer produced a result.
func (o Outcome) OK() bool { return o.Err == nil }

// Registry holds the ordered set of active analyzers.
type Registry struct {
	analyzers []Analyzer
	parallel  bool
	workers   int
	logger    *slog.Logger
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithParallel runs analyzers concurrently with at most workers goroutines.
// workers <= 0 uses GOMAXPROCS.
func WithParallel(workers int) RegistryOption {
	return func(r *Registry) {
		r.parallel = true
		r.workers = workers
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry builds a registry in registration order. Names must be unique.
func NewRegistry(analyzers []Analyzer, opts ...RegistryOption) (*Registry, error) {
	seen := make(map[string]struct{}, len(analyzers))
	list := make([]Analyzer, 0, len(analyzers))
	for i, a := range analyzers {
		if a == nil {
			return nil, fmt.Errorf("analyzer %d is nil", i)
		}
		name := a.Name()
		if name == "" {
			return nil, fmt.Errorf("analyzer %d has an empty name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate analyzer %q", name)
		}
		seen[name] = struct{}{}
		list = append(list, a)
	}
	r := &Registry{analyzers: list}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	r.logger = logging.NewComponentLogger(r.logger, "analyzer")
	return r, nil
}

// Names lists analyzer names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.analyzers))
	for i, a := range r.analyzers {
		names[i] = a.Name()
	}
	return names
}

// Len returns the number of registered analyzers.
func (r *Registry) Len() int { return len(r.analyzers) }

// Run applies every analyzer to rs and returns one Outcome per analyzer in
// registration order. A failing analyzer is recorded in its Outcome and does
// not stop the others. The returned error is non-nil only when ctx is done.
func (r *Registry) Run(ctx context.Context, rs []records.Record) ([]Outcome, error) {
	outcomes := make([]Outcome, len(r.analyzers))
	if r.parallel && len(r.analyzers) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)
		for i, a := range r.analyzers {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcomes[i] = r.apply(gctx, a, rs)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, a := range r.analyzers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = r.apply(ctx, a, rs)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (r *Registry) apply(ctx context.Context, a Analyzer, rs []records.Record) (out Outcome) {
	name := a.Name()
	out.Name = name
	logger := logging.WithContext(services.WithAnalyzer(ctx, name), r.logger)
	started := time.Now()

	defer func() {
		if p := recover(); p != nil {
			out.Result = Result{}
			out.Err = &AnalysisError{Analyzer: name, Reason: "panic", Err: fmt.Errorf("%v", p)}
		}
		if out.Err != nil {
			logging.WarnWithContext(logger, "analyzer failed", "analysis_failed",
				logging.Error(out.Err),
				logging.String(logging.FieldErrorHint, "inspect the input records for this analyzer"),
				logging.String(logging.FieldImpact, "section replaced by an analysis unavailable marker"),
			)
			return
		}
		logger.Debug("analyzer completed",
			logging.Int("categories", len(out.Result.Categories)),
			logging.Duration("elapsed", time.Since(started)),
		)
	}()

	res, err := a.Analyze(rs)
	if err != nil {
		var ae *AnalysisError
		if !errors.As(err, &ae) {
			err = &AnalysisError{Analyzer: name, Reason: "analyze failed", Err: err}
		}
		out.Err = err
		return out
	}
	if res.Name == "" {
		res.Name = name
	}
	out.Result = res
	return out
}
