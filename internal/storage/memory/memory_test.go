package memory

import (
	"testing"

	"github.com/TINANOROUZI/24hr-stories/internal/storage"
	"github.com/TINANOROUZI/24hr-stories/internal/storage/storagetest"
)

func TestStore_Compliance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Substrate {
		return New()
	})
}
