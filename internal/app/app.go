package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agbru/mandelpart/internal/cli"
	"github.com/agbru/mandelpart/internal/config"
	apperrors "github.com/agbru/mandelpart/internal/errors"
	"github.com/agbru/mandelpart/internal/logging"
	"github.com/agbru/mandelpart/internal/metrics"
	"github.com/agbru/mandelpart/internal/render"
	"github.com/agbru/mandelpart/internal/strategy"
	"github.com/agbru/mandelpart/internal/ui"
)

// Application is one mandelpart invocation.
type Application struct {
	Config    config.AppConfig
	Factory   strategy.Factory
	Renderer  render.Renderer
	Metrics   *metrics.Collector
	Logger    logging.Logger
	ErrWriter io.Writer
	// RunID tags every log entry of this invocation.
	RunID string
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory replaces the default strategy registry.
func WithFactory(f strategy.Factory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithRenderer replaces the PNG renderer.
func WithRenderer(r render.Renderer) AppOption {
	return func(a *Application) { a.Renderer = r }
}

// WithLogger replaces the stderr JSON logger.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New parses args (program name first) into an Application. Configuration
// problems are returned as apperrors.ConfigError, -h as flag.ErrHelp.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, RunID: uuid.NewString()}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = strategy.NewDefaultFactory()
	}

	programName := "mandelpart"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Factory.List())
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if app.Renderer == nil {
		palette, err := render.PaletteByName(cfg.Palette)
		if err != nil {
			return nil, apperrors.NewConfigError("%v", err)
		}
		png := render.NewPNGRenderer(cfg.OutputDir)
		png.Palette = palette
		app.Renderer = png
	}
	if app.Metrics == nil {
		app.Metrics = metrics.NewCollector()
	}
	if app.Logger == nil {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, apperrors.NewConfigError("invalid log level %q", cfg.LogLevel)
		}
		app.Logger = logging.NewZerologAdapter(zerolog.New(errWriter).Level(level).
			With().Timestamp().Str("component", "mandelpart").Logger())
	}
	app.Logger = logging.WithFields(app.Logger, logging.String("run_id", app.RunID))
	return app, nil
}

// Run executes the configured mode and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	switch {
	case a.Config.Completion != "":
		return a.runCompletion(out)
	case a.Config.ShowVersion:
		PrintVersion(out)
		return apperrors.ExitSuccess
	}

	ui.InitTheme(a.Config.NoColor)
	return a.runCompute(ctx, out)
}

func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// IsHelpError reports whether err comes from -h/--help.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
