package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/TINANOROUZI/24hr-stories/internal/widget"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
)

// Run paints the widget in the terminal until the user quits or ctx ends.
func Run(ctx context.Context, ctrl *widget.Controller, clock clockwork.Clock, retention time.Duration, log logger.Logger) error {
	bridge := NewBridge()
	picker := NewPathPicker(log)

	ctrl.SetNotifier(bridge)
	ctrl.SetPicker(picker)
	ctrl.Observe(bridge)
	defer ctrl.Observe(nil)

	if err := ctrl.Start(ctx); err != nil {
		return err
	}

	p := tea.NewProgram(
		NewModel(ctx, ctrl, picker, clock, retention, log),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	bridge.Attach(p.Send)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run terminal ui: %w", err)
	}
	return nil
}
