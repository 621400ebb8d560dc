package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/gesture"
	"github.com/TINANOROUZI/24hr-stories/internal/media"
	"github.com/TINANOROUZI/24hr-stories/internal/playback"
	"github.com/TINANOROUZI/24hr-stories/internal/story"
	"github.com/TINANOROUZI/24hr-stories/internal/strip"
	"github.com/TINANOROUZI/24hr-stories/pkg/config"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/fx"
)

var ErrNoPicker = errors.New("no file picker configured")

type Opts struct {
	fx.In

	LC       fx.Lifecycle
	Config   *config.Config
	Logger   logger.Logger
	Store    story.Store
	Ingestor media.Ingestor
	Engine   playback.Engine
	Notifier Notifier   `optional:"true"`
	Picker   FilePicker `optional:"true"`
}

// Controller owns the widget state. Every mutation goes through it; the
// lock is always taken before the engine's.
type Controller struct {
	store    story.Store
	ingestor media.Ingestor
	engine   playback.Engine
	logger   logger.Logger
	gesture  *gesture.Recognizer

	// ingestMu keeps batches from decoding side by side. Taken before mu.
	ingestMu sync.Mutex
	pool     *ants.Pool
	queueMu  sync.Mutex
	queue    []func()
	draining bool

	mu       sync.Mutex
	notifier Notifier
	picker   FilePicker
	started  bool
	strip    strip.View
}

func New(opts Opts) (*Controller, error) {
	// One worker keeps queued batches strictly sequential.
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest pool: %w", err)
	}

	c := &Controller{
		store:    opts.Store,
		ingestor: opts.Ingestor,
		engine:   opts.Engine,
		logger:   opts.Logger,
		gesture:  gesture.NewRecognizer(opts.Config.Playback.SwipeThreshold),
		pool:     pool,
		notifier: opts.Notifier,
		picker:   opts.Picker,
		strip:    strip.Render(nil),
	}

	if opts.LC != nil {
		opts.LC.Append(fx.Hook{
			OnStop: func(context.Context) error {
				c.Release()
				return nil
			},
		})
	}
	return c, nil
}

// Start loads both collections once per session.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	if _, err := c.store.Load(ctx); err != nil {
		if !errors.Is(err, domain.ErrPersistenceFailed) {
			return fmt.Errorf("failed to load stories: %w", err)
		}
		c.notifyPersistLocked(err)
	}
	if _, err := c.store.LoadArchive(ctx); err != nil {
		c.logger.Warn("Failed to read story archive", "error", err)
	}

	c.started = true
	c.refreshLocked()

	c.logger.Info("Stories widget started", "active", len(c.store.Active()), "archive", len(c.store.Archive()))
	return nil
}

// AddFiles ingests a batch in order, adds every success to the front of the
// active collection and persists once. Concurrent calls run one at a time.
func (c *Controller) AddFiles(ctx context.Context, files []domain.File) media.BatchResult {
	c.ingestMu.Lock()
	defer c.ingestMu.Unlock()

	res := c.ingestor.IngestBatch(ctx, files)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range res.Items {
		c.store.Add(item)
	}
	for _, f := range res.Failures {
		if errors.Is(f.Err, domain.ErrTooLarge) {
			c.notifyLocked(Notice{Kind: NoticeTooLarge, File: f.Name, Message: fmt.Sprintf("%s is too large to add", f.Name)})
			continue
		}
		c.notifyLocked(Notice{Kind: NoticeAddFailed, File: f.Name, Message: fmt.Sprintf("Could not add %s", f.Name)})
	}

	if len(res.Items) == 0 {
		return res
	}
	if err := c.store.Persist(ctx, c.store.Active()); err != nil {
		c.notifyPersistLocked(err)
	}
	c.refreshLocked()
	return res
}

// Enqueue runs AddFiles in the background. Batches run one after another in
// submission order; done, if set, receives each result.
func (c *Controller) Enqueue(ctx context.Context, files []domain.File, done func(media.BatchResult)) error {
	job := func() {
		res := c.AddFiles(ctx, files)
		if done != nil {
			done(res)
		}
	}

	c.queueMu.Lock()
	c.queue = append(c.queue, job)
	if c.draining {
		c.queueMu.Unlock()
		return nil
	}
	c.draining = true
	c.queueMu.Unlock()

	if err := c.pool.Submit(c.drain); err != nil {
		c.queueMu.Lock()
		c.queue = nil
		c.draining = false
		c.queueMu.Unlock()
		return fmt.Errorf("failed to queue batch: %w", err)
	}
	return nil
}

func (c *Controller) drain() {
	for {
		c.queueMu.Lock()
		if len(c.queue) == 0 {
			c.draining = false
			c.queueMu.Unlock()
			return
		}
		job := c.queue[0]
		c.queue = c.queue[1:]
		c.queueMu.Unlock()

		job()
	}
}

// OpenStory opens the viewer on the strip thumb at index.
func (c *Controller) OpenStory(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := c.store.Active()
	idx, err := strip.Select(c.strip, index, active)
	if err != nil {
		c.strip = strip.Render(active)
		return err
	}
	return c.openLocked(domain.Active, active, idx)
}

// OpenArchive re-reads the archive and opens it at its most recent entry.
func (c *Controller) OpenArchive(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	archive, err := c.store.LoadArchive(ctx)
	if err != nil {
		c.logger.Warn("Failed to re-read story archive", "error", err)
	}
	c.refreshLocked()

	return c.openLocked(domain.Archive, archive, 0)
}

func (c *Controller) openLocked(coll domain.Collection, items []domain.StoryItem, index int) error {
	err := c.engine.Open(coll, items, index)
	if errors.Is(err, domain.ErrEmptyCollection) {
		c.notifyLocked(Notice{Kind: NoticeEmptyCollection, Message: "Nothing to show"})
	}
	return err
}

func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.Next()
}

func (c *Controller) Prev() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.Prev()
}

func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.Close()
}

// HandleKey applies viewer shortcuts. It reports whether key was consumed.
func (c *Controller) HandleKey(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.engine.Session().Open {
		return false
	}
	switch key {
	case KeyEscape:
		c.engine.Close()
	case KeyArrowLeft:
		c.engine.Prev()
	case KeyArrowRight:
		c.engine.Next()
	default:
		return false
	}
	return true
}

// ActivateAdd asks the picker for files and adds them. Pointer, click and
// Enter/Space are equivalent; anything else is ignored and reported as not
// accepted.
func (c *Controller) ActivateAdd(ctx context.Context, a Activation) (res media.BatchResult, accepted bool, err error) {
	files, accepted, err := c.pick(ctx, a)
	if !accepted || err != nil {
		return res, accepted, err
	}
	if len(files) > 0 {
		res = c.AddFiles(ctx, files)
	}
	return res, true, nil
}

// QueueAdd is ActivateAdd through the background queue. done receives the
// result once the batch has been added, or an empty result right away when
// nothing was picked. It is not called when an error is returned.
func (c *Controller) QueueAdd(ctx context.Context, a Activation, done func(media.BatchResult)) (accepted bool, err error) {
	files, accepted, err := c.pick(ctx, a)
	if !accepted || err != nil {
		return accepted, err
	}
	if len(files) == 0 {
		if done != nil {
			done(media.BatchResult{})
		}
		return true, nil
	}
	return true, c.Enqueue(ctx, files, done)
}

func (c *Controller) pick(ctx context.Context, a Activation) ([]domain.File, bool, error) {
	if !a.accepted() {
		return nil, false, nil
	}

	c.mu.Lock()
	picker := c.picker
	c.mu.Unlock()
	if picker == nil {
		return nil, true, ErrNoPicker
	}

	files, err := picker.Pick(ctx)
	if err != nil {
		return nil, true, fmt.Errorf("failed to pick files: %w", err)
	}
	return files, true, nil
}

func (c *Controller) ClickOutside() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.engine.Session().Open {
		c.engine.Close()
	}
}

func (c *Controller) PointerDown(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.engine.Session().Open {
		c.gesture.Start(x, y)
	}
}

// PointerMove reports whether default scrolling should be suppressed.
func (c *Controller) PointerMove(x, y float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gesture.Move(x, y)
}

func (c *Controller) PointerUp(x, y float64) gesture.Action {
	c.mu.Lock()
	defer c.mu.Unlock()

	action := c.gesture.EndAt(x, y)
	if !c.engine.Session().Open {
		return gesture.None
	}
	switch action {
	case gesture.SwipeNext:
		c.engine.Next()
	case gesture.SwipePrev:
		c.engine.Prev()
	}
	return action
}

// Sweep re-runs the expiry sweep mid-session. A viewer showing the active
// collection is closed when that collection shrinks.
func (c *Controller) Sweep(ctx context.Context) (story.SweepResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.store.Sweep(ctx)
	if err != nil {
		c.notifyPersistLocked(err)
	}
	if res.Moved() == 0 {
		return res, err
	}

	if s := c.engine.Session(); s.Open && s.Collection == domain.Active {
		c.engine.Close()
	}
	c.refreshLocked()
	return res, err
}

func (c *Controller) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.store.Remove(ctx, id)
	if errors.Is(err, story.ErrNotFound) {
		return err
	}
	if err != nil {
		c.notifyPersistLocked(err)
	}
	c.refreshLocked()
	return err
}

func (c *Controller) View() ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Active:   c.store.Active(),
		Archive:  c.store.Archive(),
		Session:  c.engine.Session(),
		Segments: c.engine.Segments(),
		Progress: c.engine.Progress(),
	}
	if item, ok := c.engine.Current(); ok {
		snap.Current = &item
	}

	vm := Project(snap)
	c.strip = vm.Strip
	return vm
}

// Items returns a copy of one collection as the session currently sees it.
func (c *Controller) Items(coll domain.Collection) []domain.StoryItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	if coll == domain.Archive {
		return c.store.Archive()
	}
	return c.store.Active()
}

func (c *Controller) SetNotifier(n Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifier = n
}

func (c *Controller) SetPicker(p FilePicker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.picker = p
}

func (c *Controller) Observe(o playback.Observer) {
	c.engine.SetObserver(o)
}

func (c *Controller) Release() {
	c.pool.Release()
}

// refreshLocked re-renders the strip and hands fresh item lists to the
// engine.
func (c *Controller) refreshLocked() {
	active := c.store.Active()
	c.strip = strip.Render(active)
	c.engine.SetItems(domain.Active, active)
	c.engine.SetItems(domain.Archive, c.store.Archive())
}

func (c *Controller) notifyPersistLocked(err error) {
	c.logger.Error("Failed to save stories", "error", err)
	c.notifyLocked(Notice{Kind: NoticePersistenceFailed, Message: "Stories could not be saved on this device"})
}

func (c *Controller) notifyLocked(n Notice) {
	if c.notifier == nil {
		c.logger.Debug("Notice dropped, no notifier", "kind", n.Kind, "message", n.Message)
		return
	}
	c.notifier.Notify(n)
}
