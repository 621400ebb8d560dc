package mediaimpl

import (
	"fmt"
	"io"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/media"
	"github.com/TINANOROUZI/24hr-stories/pkg/formatter"
)

// ingestVideo stores the raw bytes unmodified, provided they fit the ceiling.
func (m *IngestorImpl) ingestVideo(file domain.File) (string, error) {
	limit := m.limits.MaxVideoBytes
	if file.Size > limit {
		return "", fmt.Errorf("%s is %s, over the %s video limit: %w",
			file.Name, formatter.FormatBytes(file.Size), formatter.FormatBytes(limit), domain.ErrTooLarge)
	}

	// The declared size is not trusted; read at most one byte past the limit.
	raw, err := readFile(file, limit+1)
	if err != nil {
		return "", err
	}
	if int64(len(raw)) > limit {
		return "", fmt.Errorf("%s exceeds the %s video limit: %w", file.Name, formatter.FormatBytes(limit), domain.ErrTooLarge)
	}

	return media.EncodeDataURI(file.Type, raw), nil
}

func readFile(file domain.File, limit int64) ([]byte, error) {
	if file.Open == nil {
		return nil, fmt.Errorf("%s has no content", file.Name)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	return raw, nil
}
