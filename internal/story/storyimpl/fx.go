package storyimpl

import (
	"github.com/TINANOROUZI/24hr-stories/internal/story"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(story.Store)),
	),
)
