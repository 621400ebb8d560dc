package app

import (
	"github.com/TINANOROUZI/24hr-stories/internal/media/mediaimpl"
	"github.com/TINANOROUZI/24hr-stories/internal/playback/playbackimpl"
	"github.com/TINANOROUZI/24hr-stories/internal/scheduler"
	"github.com/TINANOROUZI/24hr-stories/internal/storage/storagefx"
	"github.com/TINANOROUZI/24hr-stories/internal/story/storyimpl"
	"github.com/TINANOROUZI/24hr-stories/internal/widget"
	"github.com/TINANOROUZI/24hr-stories/pkg/config"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		clockwork.NewRealClock,
	),
	storagefx.Module,
	mediaimpl.Module,
	storyimpl.Module,
	playbackimpl.Module,
	widget.Module,
	fx.Provide(
		func(c *widget.Controller) scheduler.Sweeper { return c },
		scheduler.New,
	),
)
