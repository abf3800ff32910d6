package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/timenexus/timenexus/pkg/observability"
	"github.com/timenexus/timenexus/pkg/pipeline"
)

// =============================================================================
// Messages
// =============================================================================

type stateMsg struct{ to string }

type sliceMsg struct {
	layers   []int
	duration time.Duration
	err      error
}

type extractDoneMsg struct {
	result *pipeline.Result
	err    error
}

// =============================================================================
// Hooks Adapter
// =============================================================================

// programHooks forwards extraction events to a running program and to the
// hooks registered globally.
type programHooks struct {
	send func(tea.Msg)
	next observability.ExtractionHooks
}

func (h programHooks) OnStateChange(ctx context.Context, strategy, from, to string) {
	h.next.OnStateChange(ctx, strategy, from, to)
	h.send(stateMsg{to: to})
}

func (h programHooks) OnSliceComplete(ctx context.Context, strategy string, layers []int, d time.Duration, err error) {
	h.next.OnSliceComplete(ctx, strategy, layers, d, err)
	h.send(sliceMsg{layers: layers, duration: d, err: err})
}

// =============================================================================
// Key Bindings
// =============================================================================

type extractKeys struct {
	Quit key.Binding
}

func (k extractKeys) ShortHelp() []key.Binding  { return []key.Binding{k.Quit} }
func (k extractKeys) FullHelp() [][]key.Binding { return [][]key.Binding{{k.Quit}} }

var defaultExtractKeys = extractKeys{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "cancel"),
	),
}

// =============================================================================
// Model
// =============================================================================

// extractModel shows the progress of one extraction run: a bar over the
// service calls of the plan and one line per finished slice.
type extractModel struct {
	strategy string
	total    int
	state    string
	slices   []sliceMsg

	spinner  spinner.Model
	progress progressbar.Model
	help     help.Model
	keys     extractKeys
	cancel   context.CancelFunc

	cancelling bool
	result     *pipeline.Result
	err        error
}

func newExtractModel(strategy string, total int, cancel context.CancelFunc) extractModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleIconSpinner
	return extractModel{
		strategy: strategy,
		total:    total,
		state:    "idle",
		spinner:  s,
		progress: progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithWidth(40)),
		help:     help.New(),
		keys:     defaultExtractKeys,
		cancel:   cancel,
	}
}

func (m extractModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m extractModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && !m.cancelling {
			m.cancelling = true
			m.cancel()
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case stateMsg:
		m.state = msg.to
		return m, nil
	case sliceMsg:
		m.slices = append(m.slices, msg)
		return m, nil
	case extractDoneMsg:
		m.result, m.err = msg.result, msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m extractModel) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return min(float64(len(m.slices))/float64(m.total), 1)
}

func (m extractModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Extraction") + " " + StyleDim.Render(m.strategy) + "\n\n")

	for _, s := range m.slices {
		label := "layers " + formatLayers(s.layers)
		if s.err != nil {
			b.WriteString(styleIconError.Render(iconError) + " " + label + " " + StyleDim.Render(s.err.Error()) + "\n")
			continue
		}
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + label + " " +
			StyleDim.Render(s.duration.Round(time.Millisecond).String()) + "\n")
	}
	if m.result != nil || m.err != nil {
		return b.String()
	}

	state := m.state
	if m.cancelling {
		state = "cancelling"
	}
	fmt.Fprintf(&b, "\n%s %s %s\n", m.spinner.View(), m.progress.ViewAs(m.percent()),
		StyleDim.Render(fmt.Sprintf("%d/%d · %s", len(m.slices), m.total, state)))
	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}

// =============================================================================
// Runner
// =============================================================================

// useTUI reports whether the progress view can be drawn on stderr.
func useTUI(disabled bool) bool {
	return !disabled && isatty.IsTerminal(os.Stderr.Fd())
}

// executeWithTUI runs the pipeline while drawing its progress. Total is the
// number of service calls the strategy plans.
func executeWithTUI(ctx context.Context, r *pipeline.Runner, opts pipeline.Options, total int) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newExtractModel(opts.Strategy, total, cancel), tea.WithOutput(os.Stderr))
	opts.Hooks = programHooks{send: p.Send, next: observability.Extraction()}

	go func() {
		res, err := r.Execute(ctx, opts)
		p.Send(extractDoneMsg{result: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(extractModel)
	return m.result, m.err
}
