package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/TINANOROUZI/24hr-stories/internal/app"
	"github.com/TINANOROUZI/24hr-stories/internal/scheduler"
	"github.com/TINANOROUZI/24hr-stories/internal/widget"
	"github.com/TINANOROUZI/24hr-stories/pkg/config"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

type env struct {
	ctrl      *widget.Controller
	scheduler *scheduler.Scheduler
	cfg       *config.Config
	log       logger.Logger
	clock     clockwork.Clock
}

// withApp builds the container, starts the session and runs fn against it.
func withApp(ctx context.Context, extra []fx.Option, fn func(ctx context.Context, e env) error) error {
	var e env
	opts := append([]fx.Option{
		fx.Logger(logger.New(logger.Opts{Writer: io.Discard})),
		app.Module,
		fx.Populate(&e.ctrl, &e.scheduler, &e.cfg, &e.log, &e.clock),
	}, extra...)

	a := fx.New(opts...)
	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		if err := a.Stop(context.Background()); err != nil {
			e.log.Error("Failed to stop application", "error", err)
		}
	}()

	if err := e.ctrl.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, e)
}

// printer reports notices on stderr for the one-shot commands.
type printer struct {
	w io.Writer
}

func newPrinter() *printer {
	return &printer{w: os.Stderr}
}

func (p *printer) Notify(n widget.Notice) {
	fmt.Fprintf(p.w, "%s: %s\n", n.Kind, n.Message)
}

var withPrinter = fx.Provide(
	fx.Annotate(
		newPrinter,
		fx.As(new(widget.Notifier)),
	),
)
