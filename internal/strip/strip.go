package strip

import (
	"errors"
	"fmt"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
)

var ErrStaleSelection = errors.New("selection no longer matches the active stories")

type AddControl struct {
	Label string
	Hint  string
}

// addControl leads every strip. Render hands out the same pointer each time.
var addControl = &AddControl{Label: "+", Hint: "Add story"}

type Thumb struct {
	Index    int
	ID       string
	Kind     domain.Kind
	Data     string
	Muted    bool
	Autoplay bool
}

type View struct {
	Add       *AddControl
	Thumbs    []Thumb
	EmptyHint bool
}

// Render mirrors the active collection, newest first.
func Render(active []domain.StoryItem) View {
	v := View{
		Add:       addControl,
		Thumbs:    make([]Thumb, 0, len(active)),
		EmptyHint: len(active) == 0,
	}
	for i, item := range active {
		v.Thumbs = append(v.Thumbs, Thumb{
			Index: i,
			ID:    item.ID,
			Kind:  item.Kind,
			Data:  item.Data,
			Muted: true,
		})
	}
	return v
}

// Select resolves a click on thumb index of v against the collection as it
// is now. It fails when the strip was rendered from an older collection.
func Select(v View, index int, active []domain.StoryItem) (int, error) {
	if index < 0 || index >= len(v.Thumbs) {
		return 0, fmt.Errorf("thumb %d of %d: %w", index, len(v.Thumbs), ErrStaleSelection)
	}
	if index >= len(active) || active[index].ID != v.Thumbs[index].ID {
		return 0, fmt.Errorf("thumb %d (%s): %w", index, v.Thumbs[index].ID, ErrStaleSelection)
	}
	return index, nil
}
