package tui

import (
	"sync"
	"time"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/playback"
	"github.com/TINANOROUZI/24hr-stories/internal/widget"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"
)

// progressRedraws caps how often intermediate progress reaches the program.
const progressRedraws = 20

type shownMsg struct {
	session playback.Session
	item    domain.StoryItem
}

type progressMsg float64

type hiddenMsg struct{}

type noticeMsg widget.Notice

// Bridge forwards engine and controller events into the bubbletea program.
type Bridge struct {
	mu       sync.Mutex
	send     func(tea.Msg)
	progress *rate.Limiter
}

func NewBridge() *Bridge {
	return &Bridge{
		progress: rate.NewLimiter(rate.Every(time.Second/progressRedraws), 1),
	}
}

var (
	_ playback.Observer = (*Bridge)(nil)
	_ widget.Notifier   = (*Bridge)(nil)
)

func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) Shown(s playback.Session, item domain.StoryItem) {
	b.forward(shownMsg{session: s, item: item})
}

// Progress drops intermediate samples above the redraw rate. Start and end
// of a countdown always go through.
func (b *Bridge) Progress(percent float64) {
	if percent > 0 && percent < 100 && !b.progress.Allow() {
		return
	}
	b.forward(progressMsg(percent))
}

func (b *Bridge) Hidden() {
	b.forward(hiddenMsg{})
}

func (b *Bridge) Notify(n widget.Notice) {
	b.forward(noticeMsg(n))
}

// forward never blocks: the sender may hold the controller lock while the
// program is busy inside Update calling the controller.
func (b *Bridge) forward(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()

	if send != nil {
		go send(msg)
	}
}
