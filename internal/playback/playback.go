package playback

import (
	"errors"
	"time"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
)

var ErrPlaybackUnavailable = errors.New("video playback unavailable")

// Session is a snapshot of the viewer. Visible stays true for the short
// transition after Close until the viewer is hidden.
type Session struct {
	Collection domain.Collection
	Index      int
	Open       bool
	Visible    bool
	Total      int
}

// Segment is one slot of the segmented progress bar. Fill is a percentage.
type Segment struct {
	Done bool
	Fill float64
}

type PlayerCallbacks struct {
	// Metadata reports that the media duration is known.
	Metadata func()
	// Ended reports that playback reached the end.
	Ended func()
}

// Player plays video items for the engine. Callbacks must not be invoked
// from inside Load or Play.
type Player interface {
	Load(item domain.StoryItem, cb PlayerCallbacks) error
	Play() error
	Stop()
	Position() (current, duration time.Duration)
}

// Observer is told about visual changes. Calls happen outside the engine's
// lock, so an observer may call back into the engine.
type Observer interface {
	Shown(s Session, item domain.StoryItem)
	Progress(percent float64)
	Hidden()
}

type Engine interface {
	Open(c domain.Collection, items []domain.StoryItem, index int) error
	Next()
	Prev()
	Close()
	// SetItems refreshes the items of c if that collection is open.
	SetItems(c domain.Collection, items []domain.StoryItem)
	Session() Session
	Current() (domain.StoryItem, bool)
	Segments() []Segment
	Progress() float64
	SetObserver(o Observer)
}

func Wrap(index, n int) int {
	if n <= 0 {
		return 0
	}
	return ((index % n) + n) % n
}
