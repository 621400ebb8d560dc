package tui

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/widget"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
)

var ErrNothingPicked = errors.New("no file path entered")

// PathPicker resolves the paths typed at the add prompt.
type PathPicker struct {
	logger logger.Logger

	mu      sync.Mutex
	pending []string
}

func NewPathPicker(log logger.Logger) *PathPicker {
	return &PathPicker{logger: log}
}

var _ widget.FilePicker = (*PathPicker)(nil)

// Set queues whitespace-separated paths for the next Pick.
func (p *PathPicker) Set(input string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = strings.Fields(input)
}

func (p *PathPicker) Pick(ctx context.Context) ([]domain.File, error) {
	p.mu.Lock()
	paths := p.pending
	p.pending = nil
	p.mu.Unlock()

	if len(paths) == 0 {
		return nil, ErrNothingPicked
	}

	var (
		files []domain.File
		errs  []error
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := domain.FileFromPath(path)
		if err != nil {
			p.logger.Warn("Skipping unreadable path", "path", path, "error", err)
			errs = append(errs, err)
			continue
		}
		files = append(files, f)
	}

	if len(files) == 0 {
		return nil, errors.Join(errs...)
	}
	return files, nil
}
