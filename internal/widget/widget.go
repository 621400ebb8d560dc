package widget

import (
	"context"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
)

type NoticeKind int

const (
	NoticeTooLarge NoticeKind = iota + 1
	NoticeAddFailed
	NoticePersistenceFailed
	NoticeEmptyCollection
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeTooLarge:
		return "too_large"
	case NoticeAddFailed:
		return "add_failed"
	case NoticePersistenceFailed:
		return "persistence_failed"
	case NoticeEmptyCollection:
		return "empty_collection"
	default:
		return "unknown"
	}
}

// Notice is a user-visible message. File is set for per-file notices.
type Notice struct {
	Kind    NoticeKind
	Message string
	File    string
}

//go:generate go run go.uber.org/mock/mockgen -source=widget.go -destination=mocks/mock.go

// Notifier receives notices while the controller lock is held; it must not
// call back into the controller synchronously.
type Notifier interface {
	Notify(n Notice)
}

type FilePicker interface {
	Pick(ctx context.Context) ([]domain.File, error)
}

type Key string

const (
	KeyEscape     Key = "Escape"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
	KeyEnter      Key = "Enter"
	KeySpace      Key = " "
)

type Trigger int

const (
	TriggerPointer Trigger = iota
	TriggerClick
	TriggerKey
)

// Activation describes how the add control was activated. Key is only read
// for TriggerKey.
type Activation struct {
	Trigger Trigger
	Key     Key
}

func (a Activation) accepted() bool {
	switch a.Trigger {
	case TriggerPointer, TriggerClick:
		return true
	case TriggerKey:
		return a.Key == KeyEnter || a.Key == KeySpace
	default:
		return false
	}
}
