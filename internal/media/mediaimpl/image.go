package mediaimpl

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/media"
	"github.com/TINANOROUZI/24hr-stories/pkg/formatter"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type encodeFunc func(src image.Image, maxDim, quality int) ([]byte, error)

func (m *IngestorImpl) ingestImage(ctx context.Context, file domain.File) (string, error) {
	raw, err := readFile(file, 0)
	if err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return m.fallback(file, raw, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return m.fallback(file, raw, fmt.Errorf("bad image dimensions %dx%d", b.Dx(), b.Dy()))
	}

	for _, step := range m.steps() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		out, err := m.encode(img, step.MaxDim, step.Quality)
		if err != nil {
			return m.fallback(file, raw, err)
		}
		if int64(len(out)) <= m.limits.MaxImageBytes {
			return media.EncodeDataURI("image/jpeg", out), nil
		}

		m.logger.Debug("Encoded image over ceiling, stepping down",
			"file", file.Name, "max_dim", step.MaxDim, "quality", step.Quality, "bytes", len(out))
	}

	return "", fmt.Errorf("%s cannot be compressed under %s: %w",
		file.Name, formatter.FormatBytes(m.limits.MaxImageBytes), domain.ErrTooLarge)
}

// steps is the first attempt at the configured maximum followed by the
// ladder, never exceeding the maximum.
func (m *IngestorImpl) steps() []Step {
	steps := []Step{{MaxDim: m.limits.MaxImageDim, Quality: m.limits.JPEGQuality}}
	for _, s := range m.limits.Ladder {
		steps = append(steps, Step{MaxDim: min(s.MaxDim, m.limits.MaxImageDim), Quality: s.Quality})
	}
	return steps
}

// fallback keeps the original bytes when the image cannot be re-encoded,
// e.g. a codec we do not support. It may exceed the image ceiling.
func (m *IngestorImpl) fallback(file domain.File, raw []byte, cause error) (string, error) {
	decodeErr := fmt.Errorf("%s: %w: %v", file.Name, domain.ErrDecodeFailed, cause)
	size := int64(len(raw))

	if size > m.limits.MaxFallbackBytes {
		return "", fmt.Errorf("%w: original is %s: %w", decodeErr, formatter.FormatBytes(size), domain.ErrTooLarge)
	}
	if size > m.limits.MaxImageBytes {
		m.logger.Debug("Storing undecodable image over the image ceiling", "file", file.Name, "bytes", size)
	}

	m.logger.Info("Storing original image bytes", "file", file.Name, "reason", decodeErr)
	return media.EncodeDataURI(file.Type, raw), nil
}

// scaledSize fits w×h inside maxDim on the longer side without upscaling.
func scaledSize(w, h, maxDim int) (int, int) {
	scale := math.Min(1, float64(maxDim)/float64(max(w, h)))
	ow := max(1, int(math.Round(float64(w)*scale)))
	oh := max(1, int(math.Round(float64(h)*scale)))
	return ow, oh
}

func encodeJPEG(src image.Image, maxDim, quality int) ([]byte, error) {
	b := src.Bounds()
	w, h := scaledSize(b.Dx(), b.Dy(), maxDim)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha: flatten onto white.
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
