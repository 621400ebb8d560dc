package mediaimpl

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/media"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mib = 1 << 20

func testLimits() Limits {
	return Limits{
		MaxImageDim:      1400,
		JPEGQuality:      82,
		MaxImageBytes:    mib + mib/2,
		MaxFallbackBytes: 4*mib + mib/2,
		MaxVideoBytes:    4 * mib,
		Ladder: []Step{
			{MaxDim: 1280, Quality: 75},
			{MaxDim: 1024, Quality: 68},
			{MaxDim: 800, Quality: 60},
		},
	}
}

func newTestIngestor(t *testing.T) (*IngestorImpl, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewWithLimits(testLimits(), clock, logger.NewNop()), clock
}

func memFile(name, mimeType string, data []byte) domain.File {
	return domain.File{
		Name: name,
		Type: mimeType,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 7 {
		for x := 0; x < w; x += 7 {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeStored(t *testing.T, item domain.StoryItem) image.Image {
	t.Helper()
	mimeType, raw, err := media.DecodeDataURI(item.Data)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", mimeType)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestIngest_ImageDownscaledToMaxDimension(t *testing.T) {
	m, clock := newTestIngestor(t)

	item, err := m.Ingest(context.Background(), memFile("wide.png", "image/png", pngBytes(t, 2000, 1000)))
	require.NoError(t, err)

	assert.Equal(t, domain.KindImage, item.Kind)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, clock.Now().UnixMilli(), item.CreatedAt)
	assert.Nil(t, item.ArchivedAt)

	b := decodeStored(t, item).Bounds()
	assert.Equal(t, 1400, b.Dx())
	assert.Equal(t, 700, b.Dy())
	assert.LessOrEqual(t, media.PayloadSize(item.Data), testLimits().MaxImageBytes)
}

func TestIngest_SmallImageNotUpscaled(t *testing.T) {
	m, _ := newTestIngestor(t)

	item, err := m.Ingest(context.Background(), memFile("tiny.png", "image/png", pngBytes(t, 30, 20)))
	require.NoError(t, err)

	b := decodeStored(t, item).Bounds()
	assert.Equal(t, 30, b.Dx())
	assert.Equal(t, 20, b.Dy())
}

func TestIngest_WalksLadderUntilUnderCeiling(t *testing.T) {
	m, _ := newTestIngestor(t)

	var tried []Step
	m.encode = func(_ image.Image, maxDim, quality int) ([]byte, error) {
		tried = append(tried, Step{MaxDim: maxDim, Quality: quality})
		if maxDim > 1024 {
			return make([]byte, 2*mib), nil
		}
		return []byte("small"), nil
	}

	item, err := m.Ingest(context.Background(), memFile("huge.png", "image/png", pngBytes(t, 64, 64)))
	require.NoError(t, err)

	assert.Equal(t, []Step{{1400, 82}, {1280, 75}, {1024, 68}}, tried)
	assert.Equal(t, int64(len("small")), media.PayloadSize(item.Data))
}

func TestIngest_LadderExhaustedIsTooLarge(t *testing.T) {
	m, _ := newTestIngestor(t)

	calls := 0
	m.encode = func(image.Image, int, int) ([]byte, error) {
		calls++
		return make([]byte, 2*mib), nil
	}

	_, err := m.Ingest(context.Background(), memFile("noise.png", "image/png", pngBytes(t, 64, 64)))
	assert.ErrorIs(t, err, domain.ErrTooLarge)
	assert.Equal(t, 4, calls)
}

func TestIngest_UndecodableImageKeepsOriginalBytes(t *testing.T) {
	m, _ := newTestIngestor(t)
	raw := []byte("not really a heic file")

	item, err := m.Ingest(context.Background(), memFile("photo.heic", "image/heic", raw))
	require.NoError(t, err)

	mimeType, stored, err := media.DecodeDataURI(item.Data)
	require.NoError(t, err)
	assert.Equal(t, "image/heic", mimeType)
	assert.Equal(t, raw, stored)
}

func TestIngest_UndecodableImageOverFallbackCeiling(t *testing.T) {
	m, _ := newTestIngestor(t)
	raw := make([]byte, 5*mib)

	_, err := m.Ingest(context.Background(), memFile("photo.heic", "image/heic", raw))
	assert.ErrorIs(t, err, domain.ErrTooLarge)
	assert.ErrorIs(t, err, domain.ErrDecodeFailed)
}

func TestIngest_VideoStoredUnmodified(t *testing.T) {
	m, _ := newTestIngestor(t)
	raw := bytes.Repeat([]byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p'}, 1000)

	item, err := m.Ingest(context.Background(), memFile("clip.mp4", "video/mp4", raw))
	require.NoError(t, err)

	assert.Equal(t, domain.KindVideo, item.Kind)
	mimeType, stored, err := media.DecodeDataURI(item.Data)
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", mimeType)
	assert.Equal(t, raw, stored)
}

func TestIngest_VideoOverCeilingRejected(t *testing.T) {
	m, _ := newTestIngestor(t)

	opened := false
	f := domain.File{
		Name: "long.mp4",
		Type: "video/mp4",
		Size: 5 * mib,
		Open: func() (io.ReadCloser, error) {
			opened = true
			return nil, errors.New("should not be read")
		},
	}

	_, err := m.Ingest(context.Background(), f)
	assert.ErrorIs(t, err, domain.ErrTooLarge)
	assert.False(t, opened)
}

func TestIngest_VideoLyingAboutSize(t *testing.T) {
	m, _ := newTestIngestor(t)
	f := memFile("long.mp4", "video/mp4", make([]byte, 4*mib+1))
	f.Size = 10

	_, err := m.Ingest(context.Background(), f)
	assert.ErrorIs(t, err, domain.ErrTooLarge)
}

func TestIngest_UnsupportedType(t *testing.T) {
	m, _ := newTestIngestor(t)

	_, err := m.Ingest(context.Background(), memFile("notes.txt", "text/plain", []byte("hi")))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIngestBatch_ContinuesPastFailures(t *testing.T) {
	m, _ := newTestIngestor(t)

	files := []domain.File{
		memFile("a.png", "image/png", pngBytes(t, 40, 40)),
		{Name: "big.mp4", Type: "video/mp4", Size: 5 * mib},
		memFile("readme.txt", "text/plain", []byte("x")),
		memFile("b.mp4", "video/mp4", []byte("tiny video")),
	}

	res := m.IngestBatch(context.Background(), files)

	require.Len(t, res.Items, 2)
	assert.Equal(t, domain.KindImage, res.Items[0].Kind)
	assert.Equal(t, domain.KindVideo, res.Items[1].Kind)
	assert.NotEqual(t, res.Items[0].ID, res.Items[1].ID)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "big.mp4", res.Failures[0].Name)
	assert.ErrorIs(t, res.Failures[0].Err, domain.ErrTooLarge)

	assert.Equal(t, []string{"readme.txt"}, res.Skipped)
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{"landscape", 2000, 1000, 1400, 1400, 700},
		{"portrait", 1000, 3000, 1200, 400, 1200},
		{"already small", 640, 480, 1400, 640, 480},
		{"sliver keeps one pixel", 10000, 2, 800, 800, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := scaledSize(tt.w, tt.h, tt.maxDim)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}
