package widget

import (
	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/playback"
	"github.com/TINANOROUZI/24hr-stories/internal/strip"
)

type ViewerView struct {
	// Visible is false once the close transition has finished.
	Visible    bool
	Open       bool
	Collection domain.Collection
	Index      int
	Total      int
	Segments   []playback.Segment
	Progress   float64
	Item       *domain.StoryItem
}

type ViewModel struct {
	Strip        strip.View
	Viewer       ViewerView
	ArchiveCount int
}

// Snapshot is everything the paint layer needs at one instant.
type Snapshot struct {
	Active   []domain.StoryItem
	Archive  []domain.StoryItem
	Session  playback.Session
	Current  *domain.StoryItem
	Segments []playback.Segment
	Progress float64
}

func Project(s Snapshot) ViewModel {
	vm := ViewModel{
		Strip:        strip.Render(s.Active),
		ArchiveCount: len(s.Archive),
		Viewer: ViewerView{
			Visible:    s.Session.Visible,
			Open:       s.Session.Open,
			Collection: s.Session.Collection,
		},
	}
	if !s.Session.Open || s.Current == nil {
		return vm
	}

	item := *s.Current
	vm.Viewer.Index = s.Session.Index
	vm.Viewer.Total = s.Session.Total
	vm.Viewer.Segments = s.Segments
	vm.Viewer.Progress = s.Progress
	vm.Viewer.Item = &item
	return vm
}
