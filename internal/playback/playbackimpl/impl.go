package playbackimpl

import (
	"fmt"
	"sync"
	"time"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/playback"
	"github.com/TINANOROUZI/24hr-stories/pkg/config"
	"github.com/TINANOROUZI/24hr-stories/pkg/errors"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

type Timings struct {
	ImageDuration time.Duration
	ImageTick     time.Duration
	VideoTick     time.Duration
	VideoFallback time.Duration
	CloseDelay    time.Duration
}

func TimingsFromConfig(cfg *config.Config) Timings {
	p := cfg.Playback
	return Timings{
		ImageDuration: p.ImageDuration,
		ImageTick:     p.ImageTick,
		VideoTick:     p.VideoTick,
		VideoFallback: p.VideoFallback,
		CloseDelay:    p.CloseDelay,
	}
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
	Clock  clockwork.Clock
	Player playback.Player `optional:"true"`
}

type EngineImpl struct {
	timings Timings
	clock   clockwork.Clock
	player  playback.Player
	logger  logger.Logger

	mu         sync.Mutex
	observer   playback.Observer
	events     []func()
	gen        uint64
	open       bool
	visible    bool
	collection domain.Collection
	items      []domain.StoryItem
	index      int
	progress   float64
	playing    bool

	// The single timer slot: at most one advance timer and one sampler are
	// live, both belonging to generation gen.
	timer       clockwork.Timer
	stopSampler chan struct{}
	hideTimer   clockwork.Timer
}

func New(opts Opts) *EngineImpl {
	return NewWithTimings(TimingsFromConfig(opts.Config), opts.Clock, opts.Player, opts.Logger)
}

func NewWithTimings(t Timings, clock clockwork.Clock, player playback.Player, log logger.Logger) *EngineImpl {
	return &EngineImpl{
		timings: t,
		clock:   clock,
		player:  player,
		logger:  log,
	}
}

var _ playback.Engine = (*EngineImpl)(nil)

func (e *EngineImpl) Open(c domain.Collection, items []domain.StoryItem, index int) error {
	if len(items) == 0 {
		return fmt.Errorf("cannot open %s: %w", c, domain.ErrEmptyCollection)
	}
	if index < 0 || index >= len(items) {
		return fmt.Errorf("index %d of %d: %w", index, len(items), errors.ErrInvalidInput)
	}

	e.locked(func() {
		if e.hideTimer != nil {
			e.hideTimer.Stop()
			e.hideTimer = nil
		}
		e.open, e.visible = true, true
		e.collection = c
		e.items = append([]domain.StoryItem(nil), items...)
		e.index = index

		e.logger.Debug("Viewer opened", "collection", c, "index", index, "total", len(items))
		e.activateLocked()
	})
	return nil
}

func (e *EngineImpl) Next() {
	e.locked(func() { e.stepLocked(1) })
}

func (e *EngineImpl) Prev() {
	e.locked(func() { e.stepLocked(-1) })
}

func (e *EngineImpl) Close() {
	e.locked(e.closeLocked)
}

func (e *EngineImpl) SetItems(c domain.Collection, items []domain.StoryItem) {
	e.locked(func() {
		if !e.open || c != e.collection {
			return
		}
		current := e.items[e.index].ID
		e.items = append([]domain.StoryItem(nil), items...)

		for i, item := range e.items {
			if item.ID == current {
				e.index = i
				return
			}
		}
		if len(e.items) == 0 {
			e.closeLocked()
			return
		}
		e.index = min(e.index, len(e.items)-1)
		e.activateLocked()
	})
}

func (e *EngineImpl) Session() playback.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.sessionLocked()
}

func (e *EngineImpl) Current() (domain.StoryItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return domain.StoryItem{}, false
	}
	return e.items[e.index], true
}

func (e *EngineImpl) Segments() []playback.Segment {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return nil
	}
	segments := make([]playback.Segment, len(e.items))
	for i := range segments {
		switch {
		case i < e.index:
			segments[i] = playback.Segment{Done: true, Fill: 100}
		case i == e.index:
			segments[i] = playback.Segment{Fill: e.progress}
		}
	}
	return segments
}

func (e *EngineImpl) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.progress
}

func (e *EngineImpl) SetObserver(o playback.Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.observer = o
}

// locked runs fn under the lock and then delivers the observer events it
// queued.
func (e *EngineImpl) locked(fn func()) {
	e.mu.Lock()
	fn()
	events := e.events
	e.events = nil
	e.mu.Unlock()

	for _, ev := range events {
		ev()
	}
}

func (e *EngineImpl) emitLocked(fn func(o playback.Observer)) {
	if o := e.observer; o != nil {
		e.events = append(e.events, func() { fn(o) })
	}
}

func (e *EngineImpl) sessionLocked() playback.Session {
	return playback.Session{
		Collection: e.collection,
		Index:      e.index,
		Open:       e.open,
		Visible:    e.visible,
		Total:      len(e.items),
	}
}

func (e *EngineImpl) stepLocked(delta int) {
	if !e.open {
		return
	}
	e.index = playback.Wrap(e.index+delta, len(e.items))
	e.activateLocked()
}

func (e *EngineImpl) closeLocked() {
	if !e.open {
		return
	}
	e.cancelLocked()
	e.gen++
	gen := e.gen

	e.open = false
	e.collection = domain.Active
	e.items = nil
	e.index = 0
	e.progress = 0

	e.hideTimer = e.clock.AfterFunc(e.timings.CloseDelay, func() {
		e.locked(func() {
			if gen != e.gen || e.open {
				return
			}
			e.visible = false
			e.hideTimer = nil
			e.emitLocked(func(o playback.Observer) { o.Hidden() })
		})
	})
	e.logger.Debug("Viewer closed")
}

// activateLocked shows the item at index and starts its advance machinery.
// Anything armed for the previous item is cancelled first.
func (e *EngineImpl) activateLocked() {
	e.cancelLocked()
	e.gen++
	gen := e.gen
	e.progress = 0

	item := e.items[e.index]
	session := e.sessionLocked()
	e.emitLocked(func(o playback.Observer) {
		o.Shown(session, item)
		o.Progress(0)
	})

	switch item.Kind {
	case domain.KindVideo:
		e.startVideoLocked(gen, item)
	default:
		e.startCountdownLocked(gen, e.timings.ImageDuration, e.timings.ImageTick)
	}
}

func (e *EngineImpl) startCountdownLocked(gen uint64, d, tick time.Duration) {
	start := e.clock.Now()
	e.timer = e.clock.AfterFunc(d, func() { e.advance(gen) })
	e.sampleLocked(gen, tick, func() (float64, bool) {
		return float64(e.clock.Since(start)) / float64(d) * 100, true
	})
}

func (e *EngineImpl) startVideoLocked(gen uint64, item domain.StoryItem) {
	err := playback.ErrPlaybackUnavailable
	if e.player != nil {
		err = e.player.Load(item, playback.PlayerCallbacks{
			Metadata: func() {
				e.locked(func() {
					if gen == e.gen && e.playing && e.timer == nil {
						e.sampleLocked(gen, e.timings.VideoTick, e.videoProgressLocked)
					}
				})
			},
			Ended: func() { e.advance(gen) },
		})
		if err == nil {
			e.playing = true
			err = e.player.Play()
		}
	}
	if err == nil {
		return
	}

	// A rejected play must not stall the viewer.
	e.logger.Debug("Video playback did not start, arming fallback advance",
		"id", item.ID, "fallback", e.timings.VideoFallback, "error", err)
	e.startCountdownLocked(gen, e.timings.VideoFallback, e.timings.VideoTick)
}

func (e *EngineImpl) videoProgressLocked() (float64, bool) {
	cur, dur := e.player.Position()
	if dur <= 0 {
		return 0, false
	}
	return float64(cur) / float64(dur) * 100, true
}

func (e *EngineImpl) advance(gen uint64) {
	e.locked(func() {
		if gen != e.gen || !e.open {
			return
		}
		e.stepLocked(1)
	})
}

// sampleLocked replaces the progress sampler with one polling measure every
// tick while gen is current.
func (e *EngineImpl) sampleLocked(gen uint64, every time.Duration, measure func() (float64, bool)) {
	e.stopSamplerLocked()

	stop := make(chan struct{})
	e.stopSampler = stop
	ticker := e.clock.NewTicker(every)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				e.locked(func() {
					if gen != e.gen {
						return
					}
					if p, ok := measure(); ok {
						e.setProgressLocked(p)
					}
				})
			}
		}
	}()
}

func (e *EngineImpl) setProgressLocked(p float64) {
	p = max(0, min(100, p))
	if p == e.progress {
		return
	}
	e.progress = p
	e.emitLocked(func(o playback.Observer) { o.Progress(p) })
}

func (e *EngineImpl) stopSamplerLocked() {
	if e.stopSampler != nil {
		close(e.stopSampler)
		e.stopSampler = nil
	}
}

func (e *EngineImpl) cancelLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.stopSamplerLocked()
	if e.playing {
		e.player.Stop()
		e.playing = false
	}
}
