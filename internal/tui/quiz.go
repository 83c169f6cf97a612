package tui

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/verte-zerg/realpick/internal/question"
)

type viewerClosedMsg struct {
	err error
}

func (m *Model) updateTesting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1", "2", "3", "4":
		m.choose(int(msg.Runes[0] - '1'))
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter", " ":
		m.choose(m.cursor)
	case "left", "h":
		if m.sess.Previous() {
			m.syncCursor()
		}
	case "right", "l":
		if m.sess.Next() {
			m.syncCursor()
		}
	case "o":
		return m, m.openViewer()
	case "s":
		return m, m.submit()
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	n := len(m.sess.Question().Candidates)
	if n == 0 {
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

// syncCursor points the cursor at the recorded pick of the current question.
func (m *Model) syncCursor() {
	m.cursor = 0
	ans, ok := m.sess.Answer(m.sess.Index())
	if !ok {
		return
	}
	if pos := m.sess.Question().Position(ans.Chosen); pos >= 0 {
		m.cursor = pos
	}
}

func (m *Model) choose(pos int) {
	if err := m.sess.Choose(pos); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.cursor = pos
	if m.sess.Next() {
		m.syncCursor()
	}
}

func (m *Model) submit() tea.Cmd {
	res, err := m.sess.Submit()
	if err != nil {
		m.status = fmt.Sprintf("%v (%d of %d answered)", err, m.sess.AnsweredCount(), m.sess.Len())
		return nil
	}
	m.status = ""
	m.logger.Info("session submitted",
		zap.String("session", m.sess.ID()),
		zap.Int("correct", res.TotalCorrect),
		zap.Int("questions", res.TotalQuestions),
	)
	return m.persistCmd()
}

func (m *Model) openViewer() tea.Cmd {
	q := m.sess.Question()
	if m.cursor < 0 || m.cursor >= len(q.Candidates) {
		return nil
	}
	fields := strings.Fields(m.viewer)
	args := append(fields[1:], string(q.Candidates[m.cursor].Item))
	cmd := exec.Command(fields[0], args...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return viewerClosedMsg{err: err}
	})
}

func (m *Model) viewTesting() string {
	q := m.sess.Question()
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Question %d of %d", q.Index+1, m.sess.Len())),
		textStyle.Render("Which image is real?"),
		"",
	}
	lines = append(lines, m.candidateLines(q)...)
	if status := m.renderStatus(); status != "" {
		lines = append(lines, "", status)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) candidateLines(q question.Question) []string {
	picked := -1
	if ans, ok := m.sess.Answer(q.Index); ok {
		picked = q.Position(ans.Chosen)
	}
	lines := make([]string, 0, len(q.Candidates))
	for pos, c := range q.Candidates {
		marker := "  "
		if pos == m.cursor {
			marker = "> "
		}
		mark := "○"
		if pos == picked {
			mark = "●"
		}
		label := fmt.Sprintf("%s%d %s Image %c", marker, pos+1, mark, 'A'+pos)
		if m.showNames {
			label += "  " + filepath.Base(string(c.Item))
		}
		label = truncateTo(label, m.textWidth())
		switch {
		case pos == picked:
			label = pickedStyle.Render(label)
		case pos == m.cursor:
			label = selectedStyle.Render(label)
		default:
			label = mutedStyle.Render(label)
		}
		lines = append(lines, label)
	}
	return lines
}
