package story

import (
	"testing"
	"time"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition(t *testing.T) {
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) int64 { return now.Add(-d).UnixMilli() }

	items := []domain.StoryItem{
		{ID: "fresh", CreatedAt: at(time.Hour)},
		{ID: "boundary", CreatedAt: at(24 * time.Hour)},
		{ID: "almost", CreatedAt: at(24*time.Hour - time.Millisecond)},
		{ID: "old", CreatedAt: at(30 * time.Hour)},
		{ID: "unknown-age"},
	}

	fresh, expired := Partition(items, now, 24*time.Hour)

	require.Len(t, fresh, 2)
	assert.Equal(t, "fresh", fresh[0].ID)
	assert.Equal(t, "almost", fresh[1].ID)
	assert.Nil(t, fresh[0].ArchivedAt)

	require.Len(t, expired, 3)
	assert.Equal(t, []string{"boundary", "old", "unknown-age"}, []string{expired[0].ID, expired[1].ID, expired[2].ID})
	for _, item := range expired {
		require.NotNil(t, item.ArchivedAt)
		assert.Equal(t, now.UnixMilli(), *item.ArchivedAt)
	}
	assert.Nil(t, items[1].ArchivedAt, "input must not be mutated")
}

func TestPartition_Empty(t *testing.T) {
	fresh, expired := Partition(nil, time.Now(), 24*time.Hour)
	assert.Empty(t, fresh)
	assert.Empty(t, expired)
}
