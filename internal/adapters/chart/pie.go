package chart

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/sensorboard/internal/domain/status"
)

// Output formats and their content types.
const (
	FormatSVG = "svg"
	FormatPNG = "png"

	ContentTypeSVG = "image/svg+xml"
	ContentTypePNG = "image/png"
)

const (
	defaultSize = 480
	emptyLabel  = "No sensors"
	emptyColor  = "#e0e0e0"
)

// PieRenderer draws datasets as a pie chart onto its surface.
type PieRenderer struct {
	surface *Surface
	format  string
	width   int
	height  int
	title   string
}

// NewPieRenderer binds a renderer to surface.
func NewPieRenderer(surface *Surface, opts ...Option) (*PieRenderer, error) {
	if surface == nil {
		return nil, ErrNilSurface
	}
	r := &PieRenderer{
		surface: surface,
		format:  FormatSVG,
		width:   defaultSize,
		height:  defaultSize,
		title:   status.DatasetLabel,
	}
	for _, opt := range opts {
		opt(r)
	}
	if _, err := contentType(r.format); err != nil {
		return nil, err
	}
	return r, nil
}

// Surface returns the surface this renderer draws on.
func (r *PieRenderer) Surface() *Surface { return r.surface }

// ContentType is the MIME type of the frames this renderer draws.
func (r *PieRenderer) ContentType() string {
	ct, _ := contentType(r.format)
	return ct
}

// Render draws ds and returns the handle owning the drawn frame.
func (r *PieRenderer) Render(ctx context.Context, ds status.Dataset) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	values, err := pieValues(ds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	pie := gochart.PieChart{
		Title:  r.title,
		Width:  r.width,
		Height: r.height,
		Values: values,
	}

	var buf bytes.Buffer
	provider := gochart.SVG
	if r.format == FormatPNG {
		provider = gochart.PNG
	}
	if err := pie.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	version := r.surface.Draw(buf.Bytes(), r.ContentType(), ds)
	return &pieHandle{surface: r.surface, version: version, dataset: ds}, nil
}

// pieValues maps a dataset onto pie slices. An all-zero dataset becomes one grey slice
// because the pie cannot draw zero-sized slices.
func pieValues(ds status.Dataset) ([]gochart.Value, error) {
	if len(ds.Values) == 0 || len(ds.Labels) != len(ds.Values) || len(ds.Colors) != len(ds.Values) {
		return nil, fmt.Errorf("%w: %d labels, %d values, %d colors",
			ErrInvalidDataset, len(ds.Labels), len(ds.Values), len(ds.Colors))
	}

	values := make([]gochart.Value, 0, len(ds.Values))
	for i, v := range ds.Values {
		if v < 0 {
			return nil, fmt.Errorf("%w: %s=%d", ErrInvalidDataset, ds.Labels[i], v)
		}
		if v == 0 {
			continue
		}
		fill, err := parseHex(ds.Colors[i])
		if err != nil {
			return nil, err
		}
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s (%d)", ds.Labels[i], v),
			Value: float64(v),
			Style: gochart.Style{
				FillColor:   fill,
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
				FontColor:   drawing.ColorWhite,
			},
		})
	}
	if len(values) == 0 {
		fill, _ := parseHex(emptyColor)
		values = append(values, gochart.Value{
			Label: emptyLabel,
			Value: 1,
			Style: gochart.Style{FillColor: fill, FontColor: drawing.ColorBlack},
		})
	}
	return values, nil
}

// parseHex reads "#rrggbb".
func parseHex(hex string) (drawing.Color, error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return drawing.Color{}, fmt.Errorf("%w: color %q", ErrInvalidDataset, hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("%w: color %q", ErrInvalidDataset, hex)
	}
	return drawing.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func contentType(format string) (string, error) {
	switch format {
	case FormatSVG:
		return ContentTypeSVG, nil
	case FormatPNG:
		return ContentTypePNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

type pieHandle struct {
	surface *Surface
	version uint64
	dataset status.Dataset
	once    sync.Once
}

func (h *pieHandle) Dataset() status.Dataset { return h.dataset }

// Destroy clears the surface unless a newer chart has been drawn since.
func (h *pieHandle) Destroy() error {
	h.once.Do(func() {
		h.surface.Clear(h.version)
	})
	return nil
}
