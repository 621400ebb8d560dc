package domain

import (
	"strings"
	"time"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// ClassifyType maps a declared MIME-like type to a story kind. The prefix is
// the only signal used.
func ClassifyType(mimeType string) (Kind, bool) {
	t := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(t, "image/"):
		return KindImage, true
	case strings.HasPrefix(t, "video/"):
		return KindVideo, true
	default:
		return "", false
	}
}

type Collection int

const (
	Active Collection = iota
	Archive
)

func (c Collection) String() string {
	if c == Archive {
		return "archive"
	}
	return "active"
}

type StoryItem struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	Data       string `json:"data"`
	CreatedAt  int64  `json:"createdAt"`
	ArchivedAt *int64 `json:"archivedAt,omitempty"`
}

func (s StoryItem) Created() time.Time {
	return time.UnixMilli(s.CreatedAt)
}

func (s StoryItem) IsArchived() bool {
	return s.ArchivedAt != nil
}

// WithArchivedAt returns a copy stamped as archived at t.
func (s StoryItem) WithArchivedAt(t time.Time) StoryItem {
	ms := t.UnixMilli()
	s.ArchivedAt = &ms
	return s
}
