package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/mandelpart/internal/cli"
	apperrors "github.com/agbru/mandelpart/internal/errors"
	"github.com/agbru/mandelpart/internal/kernel"
	"github.com/agbru/mandelpart/internal/logging"
	"github.com/agbru/mandelpart/internal/metrics"
	"github.com/agbru/mandelpart/internal/orchestration"
	"github.com/agbru/mandelpart/internal/render"
	"github.com/agbru/mandelpart/internal/strategy"
)

// runCompute runs the selected strategies, compares them and writes the
// requested outputs.
func (a *Application) runCompute(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	plane, err := kernel.NewPlane(a.Config.Height, a.Config.Width)
	if err != nil {
		return apperrors.HandleRunError(apperrors.NewConfigError("%v", err), 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	strategies := orchestration.GetStrategiesToRun(a.Config, a.Factory)

	a.Logger.Info("run started",
		logging.Int("height", plane.Height),
		logging.Int("width", plane.Width),
		logging.Int("procs", a.Config.Procs),
		logging.String("strategy", a.Config.Strategy))

	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		reporter, progressOut = orchestration.NullProgressReporter{}, io.Discard
	} else {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(strategies, out)
	}

	memory := metrics.NewMemoryCollector()
	before := memory.Snapshot()
	start := time.Now()
	results := orchestration.ExecuteStrategies(ctx, strategies, plane, strategy.Options{
		Procs:       a.Config.Procs,
		Granularity: a.Config.Granularity,
		Observer:    a.Metrics,
		Logger:      a.Logger,
	}, reporter, progressOut)
	for _, res := range results {
		switch {
		case res.Err == nil:
			a.Metrics.ObserveRun(res.Name, res.Result.TotalTime)
		case apperrors.IsContextError(res.Err):
			a.Logger.Info("strategy interrupted", logging.String("strategy", res.Name), logging.Err(res.Err))
		default:
			a.Logger.Error("strategy failed", res.Err, logging.String("strategy", res.Name))
		}
	}

	code := a.analyze(results, out)
	if code == apperrors.ExitSuccess {
		code = a.writeOutputs(ctx, results, out)
	}
	if a.Config.Verbose && !a.Config.Quiet {
		cli.DisplayMemoryStats(memory.Since(before), out)
	}
	if c := a.writeMetrics(); code == apperrors.ExitSuccess {
		code = c
	}

	a.Logger.Info("run finished",
		logging.Int("exit_code", code),
		logging.String("elapsed", time.Since(start).String()))
	return code
}

func (a *Application) analyze(results []orchestration.StrategyResult, out io.Writer) int {
	opts := orchestration.PresentationOptions{
		Height:  a.Config.Height,
		Width:   a.Config.Width,
		Procs:   a.Config.Procs,
		Verbose: a.Config.Verbose,
		Quiet:   a.Config.Quiet,
	}
	if a.Config.Quiet {
		return orchestration.AnalyzeComparisonResults(results, opts,
			quietPresenter{out: out, errOut: a.ErrWriter}, io.Discard)
	}
	presenter := cli.CLIResultPresenter{Verbose: a.Config.Verbose, Latency: a.Metrics}
	return orchestration.AnalyzeComparisonResults(results, opts, presenter, out)
}

// writeOutputs renders the images and dumps the matrix after a successful
// comparison. Results are sorted by then, so the first one is the reference.
func (a *Application) writeOutputs(ctx context.Context, results []orchestration.StrategyResult, out io.Writer) int {
	if a.Config.Print {
		if err := render.WriteMatrix(out, results[0].Result.Grid); err != nil {
			return apperrors.HandleRunError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
		}
	}
	if a.Config.NoRender {
		return apperrors.ExitSuccess
	}
	paths, err := cli.WriteImages(ctx, a.Renderer, results)
	if !a.Config.Quiet {
		cli.DisplayOutputFiles(out, paths...)
	}
	if err != nil {
		return apperrors.HandleRunError(apperrors.WrapError(err, "rendering images"), 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	return apperrors.ExitSuccess
}

func (a *Application) writeMetrics() int {
	if a.Config.MetricsFile == "" {
		return apperrors.ExitSuccess
	}
	if err := a.Metrics.WriteFile(a.Config.MetricsFile); err != nil {
		err = apperrors.WrapError(err, "write metrics to %s", a.Config.MetricsFile)
		a.Logger.Error("writing metrics failed", err, logging.String("path", a.Config.MetricsFile))
		fmt.Fprintf(a.ErrWriter, "Error writing metrics: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// quietPresenter prints one line per strategy and reports failures on the
// error stream only.
type quietPresenter struct {
	out    io.Writer
	errOut io.Writer
}

func (q quietPresenter) PresentComparisonTable(results []orchestration.StrategyResult, _ io.Writer) {
	cli.DisplayQuietResults(q.out, results)
}

func (quietPresenter) PresentResult(orchestration.StrategyResult, orchestration.PresentationOptions, io.Writer) {
}

func (q quietPresenter) HandleError(err error, duration time.Duration, _ io.Writer) int {
	return apperrors.HandleRunError(err, duration, q.errOut, nil)
}
