package widget_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/gesture"
	"github.com/TINANOROUZI/24hr-stories/internal/media"
	"github.com/TINANOROUZI/24hr-stories/internal/media/mediaimpl"
	mock_media "github.com/TINANOROUZI/24hr-stories/internal/media/mocks"
	"github.com/TINANOROUZI/24hr-stories/internal/playback/playbackimpl"
	"github.com/TINANOROUZI/24hr-stories/internal/storage"
	"github.com/TINANOROUZI/24hr-stories/internal/storage/memory"
	mock_storage "github.com/TINANOROUZI/24hr-stories/internal/storage/mocks"
	"github.com/TINANOROUZI/24hr-stories/internal/story"
	"github.com/TINANOROUZI/24hr-stories/internal/story/storyimpl"
	"github.com/TINANOROUZI/24hr-stories/internal/widget"
	mock_widget "github.com/TINANOROUZI/24hr-stories/internal/widget/mocks"
	"github.com/TINANOROUZI/24hr-stories/pkg/config"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
)

const mib = 1 << 20

type harness struct {
	c     *widget.Controller
	clock *clockwork.FakeClock
	sub   storage.Substrate
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Story.Retention = 24 * time.Hour
	cfg.Story.ArchiveWarn = 200
	cfg.Playback.SwipeThreshold = 40
	return cfg
}

func testLimits() mediaimpl.Limits {
	return mediaimpl.Limits{
		MaxImageDim:      1400,
		JPEGQuality:      82,
		MaxImageBytes:    mib + mib/2,
		MaxFallbackBytes: 4*mib + mib/2,
		MaxVideoBytes:    4 * mib,
	}
}

func newHarness(t *testing.T, sub storage.Substrate, ingestor media.Ingestor, notifier widget.Notifier) *harness {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC))
	log := logger.NewNop()
	cfg := testConfig()

	if ingestor == nil {
		ingestor = mediaimpl.NewWithLimits(testLimits(), clock, log)
	}
	store := storyimpl.New(storyimpl.Opts{Substrate: sub, Config: cfg, Logger: log, Clock: clock})
	engine := playbackimpl.NewWithTimings(playbackimpl.Timings{
		ImageDuration: 3 * time.Second,
		ImageTick:     50 * time.Millisecond,
		VideoTick:     80 * time.Millisecond,
		VideoFallback: 15 * time.Second,
		CloseDelay:    200 * time.Millisecond,
	}, clock, nil, log)

	c, err := widget.New(widget.Opts{
		LC:       fxtest.NewLifecycle(t),
		Config:   cfg,
		Logger:   log,
		Store:    store,
		Ingestor: ingestor,
		Engine:   engine,
		Notifier: notifier,
	})
	require.NoError(t, err)
	t.Cleanup(c.Release)

	require.NoError(t, c.Start(context.Background()))
	return &harness{c: c, clock: clock, sub: sub}
}

func memFile(name, mimeType string, data []byte) domain.File {
	return domain.File{
		Name: name,
		Type: mimeType,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func clip(name string) domain.File {
	return memFile(name, "video/mp4", []byte("ftyp"+name))
}

type noticeLog struct {
	mu      sync.Mutex
	notices []widget.Notice
}

func (l *noticeLog) record(n widget.Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

func (l *noticeLog) kinds() []widget.NoticeKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]widget.NoticeKind, 0, len(l.notices))
	for _, n := range l.notices {
		out = append(out, n.Kind)
	}
	return out
}

func stripIDs(vm widget.ViewModel) []string {
	out := make([]string, 0, len(vm.Strip.Thumbs))
	for _, th := range vm.Strip.Thumbs {
		out = append(out, th.ID)
	}
	return out
}

func TestAddFiles_OversizedVideoSkippedWithOneNotice(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mock_widget.NewMockNotifier(ctrl)
	log := &noticeLog{}
	notifier.EXPECT().Notify(gomock.Any()).Do(log.record).Times(1)

	sub := memory.New()
	h := newHarness(t, sub, nil, notifier)

	res := h.c.AddFiles(context.Background(), []domain.File{
		{Name: "long.mp4", Type: "video/mp4", Size: 5 * mib},
	})

	assert.Empty(t, res.Items)
	assert.Equal(t, []widget.NoticeKind{widget.NoticeTooLarge}, log.kinds())
	assert.Empty(t, h.c.View().Strip.Thumbs)
	assert.True(t, h.c.View().Strip.EmptyHint)

	_, err := sub.Get(context.Background(), story.ActiveKey)
	assert.ErrorIs(t, err, storage.ErrNotFound, "nothing added, nothing written")
}

func TestAddFiles_BatchOrderAndSingleWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := mock_storage.NewMockSubstrate(ctrl)
	backing := memory.New()

	sub.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(backing.Get).AnyTimes()
	sub.EXPECT().Set(gomock.Any(), story.ActiveKey, gomock.Any()).DoAndReturn(backing.Set).Times(1)

	h := newHarness(t, sub, nil, nil)
	res := h.c.AddFiles(context.Background(), []domain.File{
		clip("first"), memFile("notes.txt", "text/plain", []byte("x")), clip("second"), clip("third"),
	})

	require.Len(t, res.Items, 3)
	assert.Equal(t, []string{"notes.txt"}, res.Skipped)

	vm := h.c.View()
	want := []string{res.Items[2].ID, res.Items[1].ID, res.Items[0].ID}
	assert.Equal(t, want, stripIDs(vm))
	assert.False(t, vm.Strip.EmptyHint)
}

func TestAddFiles_NoticePerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	ingestor := mock_media.NewMockIngestor(ctrl)
	notifier := mock_widget.NewMockNotifier(ctrl)
	log := &noticeLog{}
	notifier.EXPECT().Notify(gomock.Any()).Do(log.record).Times(3)

	ingestor.EXPECT().IngestBatch(gomock.Any(), gomock.Any()).Return(media.BatchResult{
		Failures: []media.FileError{
			{Name: "a.mp4", Err: domain.ErrTooLarge},
			{Name: "b.png", Err: errors.New("read error")},
			{Name: "c.mp4", Err: domain.ErrTooLarge},
		},
		Skipped: []string{"d.txt"},
	})

	h := newHarness(t, memory.New(), ingestor, notifier)
	h.c.AddFiles(context.Background(), make([]domain.File, 4))

	assert.Equal(t, []widget.NoticeKind{widget.NoticeTooLarge, widget.NoticeAddFailed, widget.NoticeTooLarge}, log.kinds())
}

func TestAddFiles_PersistenceFailureKeepsItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mock_widget.NewMockNotifier(ctrl)
	log := &noticeLog{}
	notifier.EXPECT().Notify(gomock.Any()).Do(log.record).Times(1)

	h := newHarness(t, storage.WithQuota(memory.New(), 16), nil, notifier)
	res := h.c.AddFiles(context.Background(), []domain.File{clip("a"), clip("b")})

	require.Len(t, res.Items, 2)
	assert.Equal(t, []widget.NoticeKind{widget.NoticePersistenceFailed}, log.kinds())
	assert.Len(t, h.c.View().Strip.Thumbs, 2)
}

func TestOpenStory_NextThreeTimesWraps(t *testing.T) {
	h := newHarness(t, memory.New(), nil, nil)
	h.c.AddFiles(context.Background(), []domain.File{clip("a"), clip("b"), clip("c")})
	h.c.View()

	require.NoError(t, h.c.OpenStory(0))

	var seen []int
	for i := 0; i < 3; i++ {
		h.c.Next()
		seen = append(seen, h.c.View().Viewer.Index)
	}
	assert.Equal(t, []int{1, 2, 0}, seen)
}

func TestOpenArchive_EmptyRaisesOneNotice(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mock_widget.NewMockNotifier(ctrl)
	log := &noticeLog{}
	notifier.EXPECT().Notify(gomock.Any()).Do(log.record).Times(1)

	h := newHarness(t, memory.New(), nil, notifier)
	before := h.c.View().Viewer

	err := h.c.OpenArchive(context.Background())

	assert.ErrorIs(t, err, domain.ErrEmptyCollection)
	assert.Equal(t, []widget.NoticeKind{widget.NoticeEmptyCollection}, log.kinds())
	assert.Equal(t, before, h.c.View().Viewer)
}

func TestOpenArchive_StartsAtMostRecent(t *testing.T) {
	h := newHarness(t, memory.New(), nil, nil)
	ctx := context.Background()
	h.c.AddFiles(ctx, []domain.File{clip("old")})
	h.clock.Advance(time.Hour)
	h.c.AddFiles(ctx, []domain.File{clip("newer")})

	h.clock.Advance(24 * time.Hour)
	res, err := h.c.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, res.Moved())

	require.NoError(t, h.c.OpenArchive(ctx))
	vm := h.c.View()
	assert.Equal(t, domain.Archive, vm.Viewer.Collection)
	assert.Equal(t, 0, vm.Viewer.Index)
	assert.Equal(t, 2, vm.Viewer.Total)
	assert.Equal(t, 2, vm.ArchiveCount)
	assert.True(t, vm.Strip.EmptyHint)
}

func TestHandleKey(t *testing.T) {
	h := newHarness(t, memory.New(), nil, nil)
	h.c.AddFiles(context.Background(), []domain.File{clip("a"), clip("b")})

	assert.False(t, h.c.HandleKey(widget.KeyArrowRight), "closed viewer ignores keys")

	require.NoError(t, h.c.OpenStory(0))
	assert.True(t, h.c.HandleKey(widget.KeyArrowRight))
	assert.Equal(t, 1, h.c.View().Viewer.Index)
	assert.True(t, h.c.HandleKey(widget.KeyArrowLeft))
	assert.Equal(t, 0, h.c.View().Viewer.Index)
	assert.False(t, h.c.HandleKey("Tab"))

	assert.True(t, h.c.HandleKey(widget.KeyEscape))
	vm := h.c.View()
	assert.False(t, vm.Viewer.Open)
	assert.Nil(t, vm.Viewer.Item)
}

func TestActivateAdd_Triggers(t *testing.T) {
	ctrl := gomock.NewController(t)
	picker := mock_widget.NewMockFilePicker(ctrl)
	h := newHarness(t, memory.New(), nil, nil)
	h.c.SetPicker(picker)
	ctx := context.Background()

	picker.EXPECT().Pick(gomock.Any()).Return([]domain.File{clip("x")}, nil).Times(4)

	for _, a := range []widget.Activation{
		{Trigger: widget.TriggerPointer},
		{Trigger: widget.TriggerClick},
		{Trigger: widget.TriggerKey, Key: widget.KeyEnter},
		{Trigger: widget.TriggerKey, Key: widget.KeySpace},
	} {
		res, ok, err := h.c.ActivateAdd(ctx, a)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Len(t, res.Items, 1)
	}

	_, ok, err := h.c.ActivateAdd(ctx, widget.Activation{Trigger: widget.TriggerKey, Key: "a"})
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Len(t, h.c.View().Strip.Thumbs, 4)
}

func TestActivateAdd_NoPicker(t *testing.T) {
	h := newHarness(t, memory.New(), nil, nil)

	_, _, err := h.c.ActivateAdd(context.Background(), widget.Activation{Trigger: widget.TriggerClick})
	assert.ErrorIs(t, err, widget.ErrNoPicker)
}

func TestPointerSwipe(t *testing.T) {
	h := newHarness(t, memory.New(), nil, nil)
	h.c.AddFiles(context.Background(), []domain.File{clip("a"), clip("b"), clip("c")})
	require.NoError(t, h.c.OpenStory(1))

	h.c.PointerDown(200, 100)
	assert.True(t, h.c.PointerMove(150, 105))
	assert.Equal(t, gesture.SwipeNext, h.c.PointerUp(120, 104))
	assert.Equal(t, 2, h.c.View().Viewer.Index)

	h.c.PointerDown(100, 100)
	assert.Equal(t, gesture.SwipePrev, h.c.PointerUp(180, 90))
	assert.Equal(t, 1, h.c.View().Viewer.Index)

	h.c.PointerDown(100, 100)
	assert.Equal(t, gesture.None, h.c.PointerUp(120, 100))
	assert.Equal(t, 1, h.c.View().Viewer.Index)
}

func TestClickOutsideCloses(t *testing.T) {
	h := newHarness(t, memory.New(), nil, nil)
	h.c.AddFiles(context.Background(), []domain.File{clip("a")})
	require.NoError(t, h.c.OpenStory(0))

	h.c.ClickOutside()
	assert.False(t, h.c.View().Viewer.Open)
}

func TestSweep_ClosesActiveViewerWhenItShrinks(t *testing.T) {
	h := newHarness(t, memory.New(), nil, nil)
	ctx := context.Background()
	h.c.AddFiles(ctx, []domain.File{clip("a")})
	h.clock.Advance(12 * time.Hour)
	h.c.AddFiles(ctx, []domain.File{clip("b")})
	require.NoError(t, h.c.OpenStory(0))

	h.clock.Advance(13 * time.Hour)
	res, err := h.c.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Moved())

	vm := h.c.View()
	assert.False(t, vm.Viewer.Open)
	assert.Len(t, vm.Strip.Thumbs, 1)
	assert.Equal(t, 1, vm.ArchiveCount)
}

func TestRemove(t *testing.T) {
	h := newHarness(t, memory.New(), nil, nil)
	ctx := context.Background()
	res := h.c.AddFiles(ctx, []domain.File{clip("a"), clip("b")})

	require.NoError(t, h.c.Remove(ctx, res.Items[0].ID))
	assert.Equal(t, []string{res.Items[1].ID}, stripIDs(h.c.View()))

	assert.ErrorIs(t, h.c.Remove(ctx, "missing"), story.ErrNotFound)
}

func TestEnqueue_BatchesRunInOrder(t *testing.T) {
	h := newHarness(t, memory.New(), nil, nil)
	ctx := context.Background()

	var (
		mu    sync.Mutex
		order []string
	)
	done := func(res media.BatchResult) {
		mu.Lock()
		defer mu.Unlock()
		for _, it := range res.Items {
			order = append(order, it.ID)
		}
	}

	require.NoError(t, h.c.Enqueue(ctx, []domain.File{clip("a"), clip("b")}, done))
	require.NoError(t, h.c.Enqueue(ctx, []domain.File{clip("c")}, done))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	want := []string{order[2], order[1], order[0]}
	assert.Equal(t, want, stripIDs(h.c.View()))
}

func TestAddFiles_ConcurrentBatchesIngestOneAtATime(t *testing.T) {
	ctrl := gomock.NewController(t)
	ingestor := mock_media.NewMockIngestor(ctrl)
	h := newHarness(t, memory.New(), ingestor, nil)

	var (
		mu       sync.Mutex
		inFlight int
		peak     int
	)
	ingestor.EXPECT().IngestBatch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, files []domain.File) media.BatchResult {
			mu.Lock()
			inFlight++
			peak = max(peak, inFlight)
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return media.BatchResult{}
		}).Times(2)

	var wg sync.WaitGroup
	for _, name := range []string{"a", "b"} {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.c.AddFiles(context.Background(), []domain.File{clip(name)})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, peak)
}

func TestQueueAdd_RunsThroughQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	picker := mock_widget.NewMockFilePicker(ctrl)
	h := newHarness(t, memory.New(), nil, nil)
	h.c.SetPicker(picker)
	ctx := context.Background()

	picker.EXPECT().Pick(gomock.Any()).Return([]domain.File{clip("x"), clip("y")}, nil)

	results := make(chan media.BatchResult, 1)
	ok, err := h.c.QueueAdd(ctx, widget.Activation{Trigger: widget.TriggerKey, Key: widget.KeyEnter}, func(res media.BatchResult) {
		results <- res
	})
	require.NoError(t, err)
	assert.True(t, ok)

	select {
	case res := <-results:
		assert.Len(t, res.Items, 2)
	case <-time.After(time.Second):
		t.Fatal("queued batch never finished")
	}
	assert.Len(t, h.c.View().Strip.Thumbs, 2)

	ok, err = h.c.QueueAdd(ctx, widget.Activation{Trigger: widget.TriggerKey, Key: "a"}, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
