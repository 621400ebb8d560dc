package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/TINANOROUZI/24hr-stories/internal/story"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

type Sweeper interface {
	Sweep(ctx context.Context) (story.SweepResult, error)
}

type Opts struct {
	fx.In

	Sweeper Sweeper
	Logger  logger.Logger
	Clock   clockwork.Clock
}

type Scheduler struct {
	sweeper Sweeper
	logger  logger.Logger
	clock   clockwork.Clock
}

func New(opts Opts) *Scheduler {
	return &Scheduler{
		sweeper: opts.Sweeper,
		logger:  opts.Logger,
		clock:   opts.Clock,
	}
}

// ScheduleSweep re-runs the expiry sweep every interval until ctx ends, so
// stories expire during long sessions too.
func (s *Scheduler) ScheduleSweep(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		return fmt.Errorf("invalid sweep interval %s", every)
	}

	scheduler, err := gocron.NewScheduler(gocron.WithClock(s.clock))
	if err != nil {
		return fmt.Errorf("failed to create sweep scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			taskCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()

			res, err := s.sweeper.Sweep(taskCtx)
			if err != nil {
				s.logger.Error("Scheduled sweep failed", "error", err)
				return
			}
			if res.Moved() > 0 {
				s.logger.Info("Scheduled sweep archived stories", "moved", res.Moved())
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	scheduler.Start()
	s.logger.Debug("Sweep scheduled", "every", every)

	go func() {
		<-ctx.Done()
		s.logger.Debug("Stopping sweep scheduler")
		if err := scheduler.Shutdown(); err != nil {
			s.logger.Error("Failed to shut down sweep scheduler", "error", err)
		}
	}()

	return nil
}
