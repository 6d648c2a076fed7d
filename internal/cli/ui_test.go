package cli

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/mandelpart/internal/progress"
	"github.com/agbru/mandelpart/internal/ui"
)

// MockSpinner records the calls DisplayProgress makes.
type MockSpinner struct {
	mu      sync.Mutex
	started bool
	stopped bool
	suffix  string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suffix = suffix
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(io.Discard))
	rs := &realSpinner{s}

	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
	if s.Suffix != " test" {
		t.Errorf("Suffix = %q", s.Suffix)
	}
}

func TestColors(t *testing.T) {
	saved := ui.GetCurrentTheme()
	t.Cleanup(func() { ui.SetCurrentTheme(saved) })

	ui.SetTheme("dark")
	c := CLIColorProvider{}
	if c.Red() != ui.DarkTheme.Error || c.Yellow() != ui.DarkTheme.Warning || c.Reset() != ui.DarkTheme.Reset {
		t.Error("CLIColorProvider must follow the active theme")
	}
}

func TestDisplayProgress(t *testing.T) {
	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()

	mockS := &MockSpinner{}
	newSpinner = func(options ...spinner.Option) Spinner {
		return mockS
	}

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan progress.ProgressUpdate)
	var out bytes.Buffer

	go func() {
		progressChan <- progress.ProgressUpdate{StrategyIndex: 0, Value: 0.5}
		progressChan <- progress.ProgressUpdate{StrategyIndex: 1, Value: 1.0}
		close(progressChan)
	}()

	DisplayProgress(&wg, progressChan, 2, &out)
	wg.Wait()

	if !mockS.started {
		t.Error("Spinner should have started")
	}
	if !mockS.stopped {
		t.Error("Spinner should have stopped")
	}
	if !strings.Contains(out.String(), "Comparing 2 strategies") || !strings.Contains(out.String(), "75.00%") {
		t.Errorf("final line = %q", out.String())
	}
}

func TestDisplayProgress_ZeroStrategies(t *testing.T) {
	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()
	newSpinner = func(options ...spinner.Option) Spinner {
		t.Error("no spinner expected without strategies")
		return &MockSpinner{}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan progress.ProgressUpdate, 1)
	progressChan <- progress.ProgressUpdate{Value: 0.3}
	close(progressChan)

	DisplayProgress(&wg, progressChan, 0, io.Discard)
	wg.Wait()
}
