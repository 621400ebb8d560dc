package widget

import (
	"testing"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_Closed(t *testing.T) {
	vm := Project(Snapshot{
		Archive: []domain.StoryItem{{ID: "x"}},
		Session: playback.Session{Visible: true},
	})

	assert.True(t, vm.Strip.EmptyHint)
	assert.Equal(t, 1, vm.ArchiveCount)
	assert.True(t, vm.Viewer.Visible)
	assert.False(t, vm.Viewer.Open)
	assert.Nil(t, vm.Viewer.Item)
}

func TestProject_Open(t *testing.T) {
	active := []domain.StoryItem{{ID: "b"}, {ID: "a"}}
	current := active[1]
	segs := []playback.Segment{{Done: true, Fill: 100}, {Fill: 40}}

	vm := Project(Snapshot{
		Active:   active,
		Session:  playback.Session{Collection: domain.Active, Index: 1, Open: true, Visible: true, Total: 2},
		Current:  &current,
		Segments: segs,
		Progress: 40,
	})

	require.NotNil(t, vm.Viewer.Item)
	assert.Equal(t, "a", vm.Viewer.Item.ID)
	assert.Equal(t, 1, vm.Viewer.Index)
	assert.Equal(t, 2, vm.Viewer.Total)
	assert.Equal(t, segs, vm.Viewer.Segments)
	assert.Equal(t, 40.0, vm.Viewer.Progress)
	assert.Len(t, vm.Strip.Thumbs, 2)

	current.ID = "mutated"
	assert.Equal(t, "a", vm.Viewer.Item.ID)
}

func TestActivation_Accepted(t *testing.T) {
	assert.True(t, Activation{Trigger: TriggerPointer}.accepted())
	assert.True(t, Activation{Trigger: TriggerClick}.accepted())
	assert.True(t, Activation{Trigger: TriggerKey, Key: KeyEnter}.accepted())
	assert.True(t, Activation{Trigger: TriggerKey, Key: KeySpace}.accepted())
	assert.False(t, Activation{Trigger: TriggerKey, Key: KeyEscape}.accepted())
}
