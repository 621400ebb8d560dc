package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/TINANOROUZI/24hr-stories/internal/storage"
)

// Run exercises the behaviour every storage.Substrate must share.
// makeSubstrate must return an empty, isolated substrate.
func Run(t *testing.T, makeSubstrate func(t *testing.T) storage.Substrate) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := makeSubstrate(t)
		if _, err := s.Get(ctx, "stories_v2"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Get missing: want ErrNotFound, got %v", err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		s := makeSubstrate(t)
		want := `[{"id":"a","kind":"image","data":"data:image/jpeg;base64,AA==","createdAt":1}]`
		if err := s.Set(ctx, "stories_v2", []byte(want)); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, err := s.Get(ctx, "stories_v2")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got) != want {
			t.Fatalf("Get: got %q want %q", got, want)
		}
	})

	t.Run("overwrite replaces whole record", func(t *testing.T) {
		s := makeSubstrate(t)
		if err := s.Set(ctx, "stories_v2", []byte(`[1,2,3]`)); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := s.Set(ctx, "stories_v2", []byte(`[]`)); err != nil {
			t.Fatalf("Set overwrite: %v", err)
		}
		got, err := s.Get(ctx, "stories_v2")
		if err != nil || string(got) != `[]` {
			t.Fatalf("Get after overwrite: got=%q err=%v", got, err)
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := makeSubstrate(t)
		if err := s.Set(ctx, "stories_v2", []byte(`["active"]`)); err != nil {
			t.Fatalf("Set active: %v", err)
		}
		if err := s.Set(ctx, "stories_archive_v1", []byte(`["archive"]`)); err != nil {
			t.Fatalf("Set archive: %v", err)
		}
		got, err := s.Get(ctx, "stories_v2")
		if err != nil || string(got) != `["active"]` {
			t.Fatalf("Get active: got=%q err=%v", got, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := makeSubstrate(t)
		if err := s.Set(ctx, "stories_v2", []byte(`[]`)); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := s.Delete(ctx, "stories_v2"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, "stories_v2"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Get after delete: want ErrNotFound, got %v", err)
		}
		if err := s.Delete(ctx, "never-set"); err != nil {
			t.Fatalf("Delete missing key should be a no-op, got %v", err)
		}
	})
}
