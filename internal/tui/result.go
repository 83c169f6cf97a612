package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/verte-zerg/realpick/internal/quizerr"
	"github.com/verte-zerg/realpick/internal/session"
)

type backendNamer interface {
	Names() []string
}

// savedMsg reports the outcome of a background persist of session id.
type savedMsg struct {
	id  string
	err error
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	key := msg.String()
	if key != "n" {
		m.confirmDiscard = false
	}
	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "r":
		if !m.sess.Saved() {
			m.status = ""
			return m, m.persistCmd()
		}
	case "n":
		if !m.sess.Saved() && !m.confirmDiscard {
			m.confirmDiscard = true
			m.status = "This result is not saved. Press n again to discard it or r to retry."
			return m, nil
		}
		return m, m.nextParticipant()
	}
	return m, nil
}

func (m *Model) nextParticipant() tea.Cmd {
	id := m.sess.ID()
	if !m.sess.Saved() {
		m.logger.Warn("unsaved result discarded", zap.String("session", id))
	}
	m.sess.Reset()
	m.logger.Info("session reset", zap.String("session", id))
	m.form = newStartForm(m.sess.RequireConsent())
	m.cursor = 0
	m.status = ""
	m.saveErr = nil
	m.confirmDiscard = false
	return m.form.focusCmd()
}

// persistCmd hands the scored record to the sink off the UI goroutine. Only one
// save runs at a time, so the sink is never called concurrently.
func (m *Model) persistCmd() tea.Cmd {
	if m.sink == nil {
		m.saveErr = quizerr.Persistence(fmt.Errorf("no result backend configured"), "session %s", m.sess.ID())
		return nil
	}
	rec, err := m.sess.Record()
	if err != nil {
		m.saveErr = err
		return nil
	}
	m.saving = true
	m.saveErr = nil
	parent, rs, timeout := m.ctx, m.sink, m.saveTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return savedMsg{id: rec.ID, err: rs.Persist(ctx, rec)}
	}
}

func (m *Model) handleSaved(msg savedMsg) {
	m.saving = false
	if m.sess.Phase() != session.PhaseResult || msg.id != m.sess.ID() {
		return
	}
	if msg.err != nil {
		m.saveErr = quizerr.Persistence(msg.err, "session %s", msg.id)
		m.logger.Error("session not saved", zap.String("session", msg.id), zap.Error(msg.err))
		return
	}
	if err := m.sess.MarkSaved(msg.id); err != nil {
		m.saveErr = err
		return
	}
	m.saveErr = nil
	m.logger.Info("session saved", zap.String("session", msg.id))
}

func (m *Model) viewResult() string {
	res := m.sess.Result()
	lines := []string{
		titleStyle.Render("Result"),
		"",
		textStyle.Render(fmt.Sprintf("Score %d/%d (%.1f%%)", res.TotalCorrect, res.TotalQuestions, res.Accuracy()*100)),
	}
	if misses := res.Mismatches(); len(misses) > 0 {
		lines = append(lines, "", mutedStyle.Render("Missed"))
		for _, o := range misses {
			line := fmt.Sprintf("Question %d: picked %s", o.Index+1, o.ChosenCategory)
			if m.showNames {
				line += fmt.Sprintf(" (%s, real was %s)", filepath.Base(string(o.Chosen)), filepath.Base(string(o.Correct)))
			}
			lines = append(lines, mutedStyle.Render(truncateTo(line, m.textWidth())))
		}
	}
	lines = append(lines, "", m.saveStatus())
	if status := m.renderStatus(); status != "" {
		lines = append(lines, "", status)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) saveStatus() string {
	if m.saving {
		return mutedStyle.Render("Saving results…")
	}
	if m.sess.Saved() {
		msg := "Results saved."
		if n, ok := m.sink.(backendNamer); ok && len(n.Names()) > 0 {
			msg = "Results saved to " + strings.Join(n.Names(), ", ") + "."
		}
		return pickedStyle.Render(msg)
	}
	if m.saveErr != nil {
		text := fmt.Sprintf("%v. Press r to retry.", m.saveErr)
		return errorStyle.Render(strings.Join(wrapText(text, m.textWidth()), "\n"))
	}
	return mutedStyle.Render("Results not saved yet.")
}
