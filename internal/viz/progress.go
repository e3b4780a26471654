package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/helicalc/busgrid/internal/dispatch"
)

// ProgressMsg reports a finished batch.
type ProgressMsg dispatch.Progress

// DoneMsg ends the progress view.
type DoneMsg struct {
	Err error
}

// ProgressModel shows batch progress of a single run.
type ProgressModel struct {
	title    string
	bar      progress.Model
	spin     spinner.Model
	progress dispatch.Progress
	rates    []float64
	started  time.Time
	last     time.Time
	done     bool
	err      error
}

func NewProgressModel(title string) ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StatusOK

	now := time.Now()
	return ProgressModel{
		title:   title,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spin:    sp,
		started: now,
		last:    now,
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.err = fmt.Errorf("interrupted")
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-12, 10), 80)

	case ProgressMsg:
		now := time.Now()
		p := dispatch.Progress(msg)
		if dt := now.Sub(m.last).Seconds(); dt > 0 {
			m.rates = append(m.rates, float64(p.Points-m.progress.Points)/dt)
		}
		m.progress, m.last = p, now

	case DoneMsg:
		m.done, m.err = true, msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ProgressModel) View() string {
	var s strings.Builder
	s.WriteString(Title.Render(m.title) + "\n\n")

	status := m.spin.View() + StatusOK.Render(" running")
	switch {
	case m.done && m.err == nil:
		status = StatusOK.Render("done")
	case m.err != nil:
		status = StatusFailed.Render("failed: " + m.err.Error())
	}
	s.WriteString(Row("Status", status) + "\n\n")

	p := m.progress
	s.WriteString(m.bar.ViewAs(p.Fraction()) + "\n\n")
	s.WriteString(Row("Batches", fmt.Sprintf("%d/%d", p.Batch, p.Batches)) + "\n")
	s.WriteString(Row("Points", fmt.Sprintf("%d/%d", p.Points, p.Total)) + "\n")
	s.WriteString(Row("Elapsed", time.Since(m.started).Round(time.Second).String()) + "\n")
	if len(m.rates) > 1 {
		s.WriteString(Row("Points/s", Sparkline(m.rates, m.bar.Width)) + "\n")
	}
	s.WriteString("\n" + Subtle.Render("q: quit"))
	return Panel.Render(s.String())
}

// Err is the error the model finished with, if any.
func (m ProgressModel) Err() error { return m.err }

// Observer forwards dispatch progress to a running program.
func Observer(p *tea.Program) dispatch.Observer {
	return dispatch.ObserverFunc(func(pr dispatch.Progress) {
		p.Send(ProgressMsg(pr))
	})
}
