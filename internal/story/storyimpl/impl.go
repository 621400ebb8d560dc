package storyimpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/storage"
	"github.com/TINANOROUZI/24hr-stories/internal/story"
	"github.com/TINANOROUZI/24hr-stories/pkg/config"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Substrate storage.Substrate
	Config    *config.Config
	Logger    logger.Logger
	Clock     clockwork.Clock
}

type StoreImpl struct {
	substrate   storage.Substrate
	logger      logger.Logger
	clock       clockwork.Clock
	retention   time.Duration
	archiveWarn int

	mu      sync.Mutex
	loaded  bool
	active  []domain.StoryItem
	archive []domain.StoryItem
}

func New(opts Opts) *StoreImpl {
	return &StoreImpl{
		substrate:   opts.Substrate,
		logger:      opts.Logger,
		clock:       opts.Clock,
		retention:   opts.Config.Story.Retention,
		archiveWarn: opts.Config.Story.ArchiveWarn,
	}
}

var _ story.Store = (*StoreImpl)(nil)

func (s *StoreImpl) Load(ctx context.Context) ([]domain.StoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return clone(s.active), nil
	}

	active, err := s.read(ctx, story.ActiveKey)
	if err != nil {
		return nil, err
	}
	archive, err := s.read(ctx, story.ArchiveKey)
	if err != nil {
		return nil, err
	}
	s.active, s.archive, s.loaded = active, archive, true

	s.logger.Debug("Stories loaded", "active", len(active), "archive", len(archive))

	_, err = s.sweepLocked(ctx)
	return clone(s.active), err
}

func (s *StoreImpl) LoadArchive(ctx context.Context) ([]domain.StoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	persisted, err := s.read(ctx, story.ArchiveKey)
	if err != nil {
		return clone(s.archive), err
	}

	merged := make([]domain.StoryItem, 0, len(persisted)+len(s.archive))
	seen := make(map[string]struct{}, len(persisted))
	for _, item := range persisted {
		seen[item.ID] = struct{}{}
		merged = append(merged, item)
	}
	for _, item := range s.archive {
		if _, ok := seen[item.ID]; !ok {
			seen[item.ID] = struct{}{}
			merged = append(merged, item)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return archivedAt(merged[i]) > archivedAt(merged[j])
	})
	s.archive = merged

	// Another session may have swept items we still show as active.
	kept := s.active[:0:0]
	for _, item := range s.active {
		if _, ok := seen[item.ID]; !ok {
			kept = append(kept, item)
		}
	}
	if dropped := len(s.active) - len(kept); dropped > 0 {
		s.logger.Info("Dropping active stories archived elsewhere", "count", dropped)
	}
	s.active = kept

	return clone(s.archive), nil
}

func (s *StoreImpl) Add(item domain.StoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = append([]domain.StoryItem{item}, s.active...)
}

// Persist replaces the active collection and writes it through. The new
// list is kept in memory even when the write fails.
func (s *StoreImpl) Persist(ctx context.Context, active []domain.StoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = clone(active)
	return s.write(ctx, story.ActiveKey, s.active)
}

func (s *StoreImpl) Active() []domain.StoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return clone(s.active)
}

func (s *StoreImpl) Archive() []domain.StoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return clone(s.archive)
}

func (s *StoreImpl) Sweep(ctx context.Context) (story.SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweepLocked(ctx)
}

func (s *StoreImpl) Remove(ctx context.Context, id string) (domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.active, id); i >= 0 {
		s.active = append(s.active[:i:i], s.active[i+1:]...)
		s.logger.Info("Story removed", "id", id, "collection", domain.Active)
		return domain.Active, s.write(ctx, story.ActiveKey, s.active)
	}
	if i := indexOf(s.archive, id); i >= 0 {
		s.archive = append(s.archive[:i:i], s.archive[i+1:]...)
		s.logger.Info("Story removed", "id", id, "collection", domain.Archive)
		return domain.Archive, s.write(ctx, story.ArchiveKey, s.archive)
	}
	return domain.Active, fmt.Errorf("%s: %w", id, story.ErrNotFound)
}

// sweepLocked moves expired items to the front of the archive. The archive
// record is written before the active one so a failure in between leaves the
// item in both records, never in neither; the next sweep reconciles it.
func (s *StoreImpl) sweepLocked(ctx context.Context) (story.SweepResult, error) {
	now := s.clock.Now()
	fresh, expired := story.Partition(s.active, now, s.retention)
	if len(expired) == 0 {
		return story.SweepResult{}, nil
	}

	archived := make(map[string]struct{}, len(s.archive))
	for _, item := range s.archive {
		archived[item.ID] = struct{}{}
	}
	var moved []domain.StoryItem
	for _, item := range expired {
		if _, ok := archived[item.ID]; !ok {
			moved = append(moved, item)
		}
	}

	if len(moved) > 0 {
		archive := append(clone(moved), s.archive...)
		if err := s.write(ctx, story.ArchiveKey, archive); err != nil {
			return story.SweepResult{}, err
		}
		s.archive = archive
	}
	s.active = fresh

	s.logger.Info("Expired stories archived", "moved", len(moved), "active", len(s.active), "archive", len(s.archive))
	if s.archiveWarn > 0 && len(s.archive) > s.archiveWarn {
		s.logger.Warn("Story archive keeps growing", "entries", len(s.archive), "threshold", s.archiveWarn)
	}

	res := story.SweepResult{Archived: moved}
	return res, s.write(ctx, story.ActiveKey, s.active)
}

// read treats a missing or unparseable record as an empty collection.
func (s *StoreImpl) read(ctx context.Context, key string) ([]domain.StoryItem, error) {
	raw, err := s.substrate.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var items []domain.StoryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("Ignoring corrupt story record", "key", key, "error", err)
		return nil, nil
	}
	return items, nil
}

func (s *StoreImpl) write(ctx context.Context, key string, items []domain.StoryItem) error {
	if items == nil {
		items = []domain.StoryItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.substrate.Set(ctx, key, raw); err != nil {
		s.logger.Error("Failed to persist stories", "key", key, "count", len(items), "error", err)
		return fmt.Errorf("%w: %s: %w", domain.ErrPersistenceFailed, key, err)
	}
	return nil
}

func archivedAt(item domain.StoryItem) int64 {
	if item.ArchivedAt == nil {
		return 0
	}
	return *item.ArchivedAt
}

func indexOf(items []domain.StoryItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func clone(items []domain.StoryItem) []domain.StoryItem {
	if items == nil {
		return nil
	}
	out := make([]domain.StoryItem, len(items))
	copy(out, items)
	return out
}
