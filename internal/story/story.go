package story

import (
	"context"
	"errors"
	"time"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
)

// Record keys on the substrate. Both hold a JSON array written wholesale.
const (
	ActiveKey  = "stories_v2"
	ArchiveKey = "stories_archive_v1"
)

var ErrNotFound = errors.New("story not found")

type SweepResult struct {
	// Archived lists the items moved by this sweep, newest-archived-first.
	Archived []domain.StoryItem
}

func (r SweepResult) Moved() int {
	return len(r.Archived)
}

type Store interface {
	// Load reads the active record and sweeps expired items into the archive.
	// The substrate is read only on the first call of a session.
	Load(ctx context.Context) ([]domain.StoryItem, error)
	// LoadArchive re-reads the archive record, picking up migrations made
	// since the session started.
	LoadArchive(ctx context.Context) ([]domain.StoryItem, error)
	Add(item domain.StoryItem)
	Persist(ctx context.Context, active []domain.StoryItem) error
	Active() []domain.StoryItem
	Archive() []domain.StoryItem
	Sweep(ctx context.Context) (SweepResult, error)
	Remove(ctx context.Context, id string) (domain.Collection, error)
}

// Partition splits items by age. An item stays fresh while it is younger
// than retention; the rest come back stamped as archived at now. Relative
// order is preserved in both halves.
func Partition(items []domain.StoryItem, now time.Time, retention time.Duration) (fresh, expired []domain.StoryItem) {
	for _, item := range items {
		if item.CreatedAt > 0 && now.Sub(item.Created()) < retention {
			fresh = append(fresh, item)
			continue
		}
		expired = append(expired, item.WithArchivedAt(now))
	}
	return fresh, expired
}
