package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/mandelpart/internal/errors"
	"github.com/agbru/mandelpart/internal/kernel"
	"github.com/agbru/mandelpart/internal/progress"
	"github.com/agbru/mandelpart/internal/strategy"
)

// ProgressBufferMultiplier sizes the progress channel per strategy. Sends
// never block, so a slow reporter only loses intermediate updates.
const ProgressBufferMultiplier = 5

const tracerName = "github.com/agbru/mandelpart/internal/orchestration"

// ExecuteStrategies runs every strategy concurrently over plane and returns
// one result per strategy, in input order. A failing strategy does not stop
// the others; its error is wrapped in apperrors.StrategyError. opts.Progress
// is replaced by a per-strategy channel callback feeding reporter.
func ExecuteStrategies(ctx context.Context, strategies []strategy.Strategy, plane kernel.Plane, opts strategy.Options, reporter ProgressReporter, out io.Writer) []StrategyResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]StrategyResult, len(strategies))
	progressChan := make(chan progress.ProgressUpdate, len(strategies)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, len(strategies), out)

	tracer := otel.Tracer(tracerName)
	for i, s := range strategies {
		i, s := i, s
		g.Go(func() error {
			spanCtx, span := tracer.Start(ctx, "strategy.run")
			defer span.End()
			span.SetAttributes(
				attribute.String("strategy", s.Name()),
				attribute.Int("height", plane.Height),
				attribute.Int("width", plane.Width),
				attribute.Int("procs", opts.Procs),
			)

			runOpts := opts
			runOpts.Progress = progress.ChannelCallback(progressChan, i)
			start := time.Now()
			res, err := s.Run(spanCtx, plane, runOpts)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				err = apperrors.StrategyError{Strategy: s.Name(), Cause: err}
				res = nil
			}
			results[i] = StrategyResult{
				Name:        s.Name(),
				Description: s.Description(),
				Result:      res,
				Duration:    time.Since(start),
				Err:         err,
			}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// AnalyzeComparisonResults sorts results (successes first, fastest first),
// presents them and checks that every successful strategy produced the same
// grid. It returns the exit code of the run.
func AnalyzeComparisonResults(results []StrategyResult, opts PresentationOptions, presenter ResultPresenter, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var reference *StrategyResult
	var firstError error
	for i := range results {
		if results[i].Err != nil {
			if firstError == nil {
				firstError = results[i].Err
			}
			continue
		}
		if reference == nil {
			reference = &results[i]
		}
	}

	presenter.PresentComparisonTable(results, out)

	if reference == nil {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No strategy could compute the grid.\n")
		return presenter.HandleError(firstError, 0, out)
	}

	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if row, col, differs := reference.Result.Grid.FirstDifference(res.Result.Grid); differs {
			mismatch := apperrors.MismatchError{Reference: reference.Name, Strategy: res.Name, Row: row, Col: col}
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %v.\n", mismatch)
			return apperrors.ExitCode(mismatch)
		}
	}

	if len(results) > 1 {
		fmt.Fprintf(out, "\nGlobal Status: Success. All valid grids are identical.\n")
	}
	presenter.PresentResult(*reference, opts, out)
	return apperrors.ExitSuccess
}
