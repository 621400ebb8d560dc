package tui

import (
	"time"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/playback"
)

// Player stands in for video playback, which a terminal cannot do. The
// engine falls back to its timed advance.
type Player struct{}

func NewPlayer() *Player {
	return &Player{}
}

var _ playback.Player = (*Player)(nil)

func (*Player) Load(domain.StoryItem, playback.PlayerCallbacks) error {
	return playback.ErrPlaybackUnavailable
}

func (*Player) Play() error {
	return playback.ErrPlaybackUnavailable
}

func (*Player) Stop() {}

func (*Player) Position() (time.Duration, time.Duration) {
	return 0, 0
}
