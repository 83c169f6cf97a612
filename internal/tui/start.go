package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/verte-zerg/realpick/internal/model"
	"github.com/verte-zerg/realpick/internal/quizerr"
)

const (
	fieldName = iota
	fieldAge
	fieldProfession
	fieldExperience
	fieldCount
)

var fieldPrompts = [fieldCount]string{
	"Name:       ",
	"Age:        ",
	"Profession: ",
	"Experience: ",
}

var fieldPlaceholders = [fieldCount]string{
	"required",
	"0-120",
	"optional",
	"years, optional",
}

type startForm struct {
	inputs         []textinput.Model
	focus          int
	requireConsent bool
	consent        bool
}

func newStartForm(requireConsent bool) startForm {
	f := startForm{requireConsent: requireConsent}
	f.inputs = make([]textinput.Model, fieldCount)
	for i := range f.inputs {
		input := textinput.New()
		input.Prompt = fieldPrompts[i]
		input.Placeholder = fieldPlaceholders[i]
		input.Cursor.SetMode(cursor.CursorBlink)
		f.inputs[i] = input
	}
	f.inputs[fieldAge].CharLimit = 3
	f.setFocus(0)
	return f
}

// fieldTotal counts the focusable rows, including the consent toggle.
func (f *startForm) fieldTotal() int {
	if f.requireConsent {
		return fieldCount + 1
	}
	return fieldCount
}

func (f *startForm) onConsent() bool {
	return f.requireConsent && f.focus == fieldCount
}

func (f *startForm) setFocus(idx int) tea.Cmd {
	count := f.fieldTotal()
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	f.focus = idx
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *startForm) focusCmd() tea.Cmd {
	if f.focus < len(f.inputs) {
		return textinput.Blink
	}
	return nil
}

func (f startForm) update(msg tea.Msg) (startForm, tea.Cmd) {
	if f.focus >= len(f.inputs) {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f *startForm) metadata() (model.ParticipantMetadata, error) {
	meta := model.ParticipantMetadata{
		Name:       f.inputs[fieldName].Value(),
		Profession: f.inputs[fieldProfession].Value(),
		Experience: f.inputs[fieldExperience].Value(),
	}
	ageInput := strings.TrimSpace(f.inputs[fieldAge].Value())
	if ageInput == "" {
		return meta, quizerr.Validation("age is required")
	}
	age, err := strconv.Atoi(ageInput)
	if err != nil {
		return meta, quizerr.Validation("age must be a whole number, got %q", ageInput)
	}
	meta.Age = age
	if f.requireConsent {
		consent := f.consent
		meta.Consent = &consent
	}
	return meta, nil
}

func (m *Model) updateStart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		return m, m.form.setFocus(m.form.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.form.setFocus(m.form.focus - 1)
	case tea.KeyEnter:
		if m.form.focus < m.form.fieldTotal()-1 {
			return m, m.form.setFocus(m.form.focus + 1)
		}
		m.begin()
		return m, nil
	}
	if m.form.onConsent() {
		switch msg.String() {
		case " ", "x":
			m.form.consent = !m.form.consent
		case "y":
			m.form.consent = true
		case "n":
			m.form.consent = false
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m *Model) begin() {
	meta, err := m.form.metadata()
	if err == nil {
		err = m.sess.Start(meta)
	}
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.cursor = 0
	m.logger.Info("session started",
		zap.String("session", m.sess.ID()),
		zap.Int("questions", m.sess.Len()),
	)
}

func (m *Model) viewStart() string {
	lines := []string{titleStyle.Render("realpick"), ""}
	if consent := m.consent.render(m.textWidth()); consent != "" {
		lines = append(lines, consent, "")
	}
	for _, input := range m.form.inputs {
		lines = append(lines, input.View())
	}
	if m.form.requireConsent {
		box := "[ ]"
		if m.form.consent {
			box = "[x]"
		}
		line := box + " I agree to take part"
		if m.form.onConsent() {
			line = selectedStyle.Render(line + " (space to toggle)")
		} else {
			line = textStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if status := m.renderStatus(); status != "" {
		lines = append(lines, "", status)
	}
	return strings.Join(lines, "\n")
}

// consentView renders consent markdown once per width.
type consentView struct {
	text     string
	width    int
	rendered string
}

func (c *consentView) render(width int) string {
	if strings.TrimSpace(c.text) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	if c.rendered != "" && c.width == width {
		return c.rendered
	}
	c.width = width
	c.rendered = renderMarkdown(c.text, width)
	return c.rendered
}

func renderMarkdown(text string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return strings.Join(wrapText(text, width), "\n")
	}
	out, err := renderer.Render(text)
	if err != nil {
		return strings.Join(wrapText(text, width), "\n")
	}
	return strings.Trim(out, "\n")
}
