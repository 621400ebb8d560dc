package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/TINANOROUZI/24hr-stories/internal/media"
	"github.com/TINANOROUZI/24hr-stories/internal/widget"
	"github.com/TINANOROUZI/24hr-stories/pkg/formatter"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
)

// Terminal cells are mapped to rough pixel units so the swipe threshold
// means the same thing as on a touch screen.
const (
	cellWidth  = 8
	cellHeight = 16
)

type batchDoneMsg struct {
	res media.BatchResult
	err error
}

type statusMsg string

type Model struct {
	ctx       context.Context
	ctrl      *widget.Controller
	picker    *PathPicker
	clock     clockwork.Clock
	logger    logger.Logger
	retention time.Duration
	styles    styles

	width          int
	cursor         int
	adding         bool
	input          string
	status         string
	pressedOutside bool
}

func NewModel(ctx context.Context, ctrl *widget.Controller, picker *PathPicker, clock clockwork.Clock, retention time.Duration, log logger.Logger) Model {
	return Model{
		ctx:       ctx,
		ctrl:      ctrl,
		picker:    picker,
		clock:     clock,
		logger:    log,
		retention: retention,
		styles:    newStyles(),
		width:     80,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case noticeMsg:
		m.status = msg.Message
	case statusMsg:
		m.status = string(msg)
	case batchDoneMsg:
		m.status = describeBatch(msg.res, msg.err)
	case shownMsg, progressMsg, hiddenMsg:
		// Redraw only.
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		m.ctrl.HandleKey(widget.KeyEscape)
	case "left":
		if !m.ctrl.HandleKey(widget.KeyArrowLeft) {
			m.cursor = max(0, m.cursor-1)
		}
	case "right":
		if !m.ctrl.HandleKey(widget.KeyArrowRight) {
			m.cursor = min(len(m.ctrl.View().Strip.Thumbs)-1, m.cursor+1)
			m.cursor = max(0, m.cursor)
		}
	case "a":
		m.adding, m.input = true, ""
		m.status = "Path(s) to add, Enter to confirm, Esc to cancel"
	case "h":
		return m, m.openArchive()
	case "x":
		return m, m.removeCurrent()
	case "enter", " ":
		return m, m.open(m.cursor)
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 9 {
			m.cursor = n - 1
			return m, m.open(n - 1)
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding, m.input, m.status = false, "", ""
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyEnter:
		m.adding = false
		m.picker.Set(m.input)
		m.input = ""
		m.status = "Adding…"
		return m, m.add(widget.Activation{Trigger: widget.TriggerKey, Key: widget.KeyEnter})
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

// handleMouse feeds presses inside the viewer to the swipe recognizer. A
// click that starts and ends outside the viewer closes it.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y := float64(msg.X*cellWidth), float64(msg.Y*cellHeight)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.pressedOutside = m.ctrl.View().Viewer.Open && !m.inViewer(msg.Y)
		if !m.pressedOutside {
			m.ctrl.PointerDown(x, y)
		}
	case tea.MouseActionMotion:
		if !m.pressedOutside {
			m.ctrl.PointerMove(x, y)
		}
	case tea.MouseActionRelease:
		if m.pressedOutside {
			m.pressedOutside = false
			if !m.inViewer(msg.Y) {
				m.ctrl.ClickOutside()
			}
			return
		}
		m.ctrl.PointerUp(x, y)
	}
}

// inViewer reports whether terminal row y falls inside the viewer box.
func (m Model) inViewer(y int) bool {
	vm := m.ctrl.View()
	if !vm.Viewer.Visible {
		return false
	}
	top := lipgloss.Height(m.renderHeader(vm))
	return y >= top && y < top+lipgloss.Height(m.renderViewer(vm.Viewer))
}

// add picks files and hands them to the controller's queue, so batches from
// back-to-back prompts never decode side by side.
func (m Model) add(a widget.Activation) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		results := make(chan media.BatchResult, 1)
		accepted, err := ctrl.QueueAdd(ctx, a, func(res media.BatchResult) {
			results <- res
		})
		if err != nil || !accepted {
			return batchDoneMsg{err: err}
		}
		select {
		case res := <-results:
			return batchDoneMsg{res: res}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) open(index int) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		if err := ctrl.OpenStory(index); err != nil {
			return statusMsg(fmt.Sprintf("Cannot open story %d", index+1))
		}
		return nil
	}
}

func (m Model) openArchive() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		// An empty archive is reported through the notifier.
		_ = ctrl.OpenArchive(ctx)
		return nil
	}
}

func (m Model) removeCurrent() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		item := ctrl.View().Viewer.Item
		if item == nil {
			return nil
		}
		if err := ctrl.Remove(ctx, item.ID); err != nil {
			return statusMsg("Could not remove story")
		}
		return statusMsg("Story removed")
	}
}

// describeBatch summarises a finished batch. Per-file problems already
// arrived as notices.
func describeBatch(res media.BatchResult, err error) string {
	switch {
	case errors.Is(err, ErrNothingPicked):
		return ""
	case err != nil:
		return fmt.Sprintf("Could not add: %v", err)
	case len(res.Items) == 0:
		return "Nothing added"
	case len(res.Items) == 1:
		return "Added 1 story"
	default:
		return fmt.Sprintf("Added %s stories", formatter.FormatNumber(len(res.Items)))
	}
}
