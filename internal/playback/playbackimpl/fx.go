package playbackimpl

import (
	"github.com/TINANOROUZI/24hr-stories/internal/playback"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(playback.Engine)),
	),
)
