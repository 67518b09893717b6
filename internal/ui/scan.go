package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/blegw/internal/discovery"
)

const scanTickInterval = 100 * time.Millisecond

// ScanFunc discovers gateways until ctx ends.
type ScanFunc func(ctx context.Context) ([]*discovery.Device, error)

type scanTickMsg time.Time

type scanDoneMsg struct {
	devices []*discovery.Device
	err     error
}

// ScanModel shows a progress bar while an mDNS scan runs.
type ScanModel struct {
	ctx     context.Context
	scan    ScanFunc
	timeout time.Duration
	started time.Time
	bar     progress.Model

	devices []*discovery.Device
	err     error
	done    bool
	now     func() time.Time
}

// NewScanModel creates a model that runs scan for up to timeout.
func NewScanModel(ctx context.Context, timeout time.Duration, scan ScanFunc) ScanModel {
	return ScanModel{
		ctx:     ctx,
		scan:    scan,
		timeout: timeout,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		now:     time.Now,
	}
}

// Init implements tea.Model
func (m ScanModel) Init() tea.Cmd {
	ctx, scan := m.ctx, m.scan
	return tea.Batch(
		func() tea.Msg {
			devices, err := scan(ctx)
			return scanDoneMsg{devices: devices, err: err}
		},
		scanTick(),
	)
}

func scanTick() tea.Cmd {
	return tea.Tick(scanTickInterval, func(t time.Time) tea.Msg { return scanTickMsg(t) })
}

// Update implements tea.Model
func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = context.Canceled
			m.done = true
			return m, tea.Quit
		}
	case scanTickMsg:
		if m.done {
			return m, nil
		}
		if m.started.IsZero() {
			m.started = m.now()
		}
		return m, scanTick()
	case scanDoneMsg:
		m.devices, m.err, m.done = msg.devices, msg.err, true
		return m, tea.Quit
	}
	return m, nil
}

// Percent is how much of the scan window has elapsed.
func (m ScanModel) Percent() float64 {
	if m.done {
		return 1
	}
	if m.started.IsZero() || m.timeout <= 0 {
		return 0
	}
	p := float64(m.now().Sub(m.started)) / float64(m.timeout)
	if p > 1 {
		return 1
	}
	return p
}

// View implements tea.Model
func (m ScanModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("  Scanning for gateways...\n  %s\n", m.bar.ViewAs(m.Percent()))
}

// Result returns the scan outcome once the model has finished.
func (m ScanModel) Result() ([]*discovery.Device, error) {
	return m.devices, m.err
}

// RunScan runs scan behind a progress bar and returns what it found.
func RunScan(ctx context.Context, timeout time.Duration, scan ScanFunc) ([]*discovery.Device, error) {
	final, err := tea.NewProgram(NewScanModel(ctx, timeout, scan)).Run()
	if err != nil {
		return nil, fmt.Errorf("scan display failed: %w", err)
	}
	return final.(ScanModel).Result()
}

// RenderDevices renders discovered gateways as a panel.
func RenderDevices(devices []*discovery.Device, width int) string {
	if len(devices) == 0 {
		return MutedStyle.Render("  No gateways found")
	}
	fields := make([]Field, 0, len(devices))
	for _, d := range devices {
		value := d.ConfigURL()
		if fw := d.GetMetadata("fw_ver"); fw != "" {
			value += "  " + MutedStyle.Render(fw)
		}
		fields = append(fields, Field{Key: d.Name, Value: value})
	}
	title := fmt.Sprintf("%d gateway", len(devices))
	if len(devices) != 1 {
		title += "s"
	}
	return RenderPanel(title, fields, width)
}
