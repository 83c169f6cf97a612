// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/realpick/internal/session"
	"github.com/verte-zerg/realpick/internal/sink"
)

const (
	defaultViewer      = "xdg-open"
	defaultSaveTimeout = 30 * time.Second
)

// Options configures the quiz UI.
type Options struct {
	Session   *session.Session
	Sink      sink.ResultSink
	Logger    *zap.Logger
	ShowNames bool
	// Viewer is the command used to open a candidate image. Extra arguments
	// may be given separated by spaces.
	Viewer  string
	Consent string
	// SaveTimeout bounds one persist of a result. Zero means 30s.
	SaveTimeout time.Duration
}

// Model implements the Bubble Tea quiz UI over a session.
type Model struct {
	ctx       context.Context
	sess      *session.Session
	sink      sink.ResultSink
	logger    *zap.Logger
	showNames bool
	viewer    string

	width  int
	height int

	form    startForm
	consent consentView

	cursor         int
	status         string
	saveErr        error
	saveTimeout    time.Duration
	saving         bool
	confirmDiscard bool
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	pickedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6CC644"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a quiz TUI model. The context bounds persistence calls.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	viewer := strings.TrimSpace(opts.Viewer)
	if viewer == "" {
		viewer = defaultViewer
	}
	saveTimeout := opts.SaveTimeout
	if saveTimeout <= 0 {
		saveTimeout = defaultSaveTimeout
	}
	return &Model{
		ctx:         ctx,
		sess:        opts.Session,
		sink:        opts.Sink,
		logger:      logger,
		showNames:   opts.ShowNames,
		viewer:      viewer,
		form:        newStartForm(opts.Session.RequireConsent()),
		consent:     consentView{text: opts.Consent},
		saveTimeout: saveTimeout,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.form.focusCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case savedMsg:
		m.handleSaved(msg)
		return m, nil
	case viewerClosedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("viewer failed: %v", msg.err)
			m.logger.Warn("viewer failed", zap.String("viewer", m.viewer), zap.Error(msg.err))
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.sess.Phase() {
		case session.PhaseStart:
			return m.updateStart(msg)
		case session.PhaseTesting:
			return m.updateTesting(msg)
		case session.PhaseResult:
			return m.updateResult(msg)
		}
		return m, nil
	default:
		if m.sess.Phase() == session.PhaseStart {
			var cmd tea.Cmd
			m.form, cmd = m.form.update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.sess.Phase() {
	case session.PhaseStart:
		content = m.viewStart()
	case session.PhaseTesting:
		content = m.viewTesting()
	case session.PhaseResult:
		content = m.viewResult()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	body := lipgloss.NewStyle().Width(contentWidth(m.width)).Render(content)
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	page := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return page + "\n" + footerLine
}

func (m *Model) renderFooter() string {
	var segments []string
	switch m.sess.Phase() {
	case session.PhaseStart:
		segments = []string{"tab next field", "enter start", "ctrl+c quit"}
	case session.PhaseTesting:
		segments = []string{
			fmt.Sprintf("Question %d/%d", m.sess.Index()+1, m.sess.Len()),
			fmt.Sprintf("Answered %d/%d", m.sess.AnsweredCount(), m.sess.Len()),
			"1-4 pick",
			"←/→ move",
			"o open",
		}
		if m.sess.CanSubmit() {
			segments = append(segments, "s submit")
		}
	case session.PhaseResult:
		switch {
		case m.saving:
			segments = []string{"saving…"}
		case m.sess.Saved():
			segments = []string{"n next participant", "q quit"}
		default:
			segments = []string{"r retry save", "n discard result", "q quit"}
		}
	}
	return footerStyle.Render(strings.Join(segments, " · "))
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	return errorStyle.Render(strings.Join(wrapText(m.status, m.textWidth()), "\n"))
}

func (m *Model) textWidth() int {
	return contentWidth(m.width)
}
