package mediaimpl

import (
	"github.com/TINANOROUZI/24hr-stories/internal/media"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(media.Ingestor)),
	),
)
