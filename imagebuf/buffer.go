package imagebuf

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/colorimage/exif"
	"github.com/t2bot/colorimage/metrics"
	"github.com/t2bot/colorimage/sink"
)

var ErrNotInitialized = errors.New("imagebuf: image has no pixels yet")
var ErrInvalidSize = errors.New("imagebuf: dimensions must be positive")
var ErrOutOfBounds = errors.New("imagebuf: rectangle is outside the image")
var ErrBufferTooSmall = errors.New("imagebuf: destination buffer too small")
var ErrOrientationUnsupported = errors.New("imagebuf: orientation cannot be applied")

// Buffer is a PixelSink that keeps the decoded image around for further
// processing.
type Buffer interface {
	sink.PixelSink
	Width() int
	Height() int
	Channels() int
	Layout() sink.Layout
	Orientation() exif.Orientation
	Resize(width int, height int) error
	Crop(x int, y int, width int, height int) error
	ApplyOrientation() error
	DumpInterleaved(dst []byte) (int, error)
	DumpPlanar(dst []byte) (int, error)
	Image() image.Image
}

func parseExif(payload []byte) exif.Orientation {
	o, err := exif.ParseOrientation(payload)
	if err != nil {
		reason := exif.Reason(err)
		metrics.ExifFailures.With(prometheus.Labels{"reason": reason}).Inc()
		logrus.WithField("reason", reason).Debug("Ignoring unusable exif data: ", err)
		return exif.None
	}
	return o
}

// orient returns a copy of img turned upright according to o.
func orient(img image.Image, o exif.Orientation) *image.NRGBA {
	t := o.Transform()
	if t.IsIdentity() {
		return imaging.Clone(img)
	}

	result := img
	// Flip first
	if t.FlipHorizontal {
		result = imaging.FlipH(result)
	}
	if t.FlipVertical {
		result = imaging.FlipV(result)
	}

	// Rotate second
	switch t.RotateDegrees {
	case 90:
		result = imaging.Rotate90(result)
	case 180:
		result = imaging.Rotate180(result)
	case 270:
		result = imaging.Rotate270(result)
	}

	if n, ok := result.(*image.NRGBA); ok {
		return n
	}
	return imaging.Clone(result)
}

func violation(format string, args ...interface{}) *sink.ContractViolation {
	return &sink.ContractViolation{Message: fmt.Sprintf(format, args...)}
}

// geometry tracks the dimensions and row bookkeeping shared by both buffers.
type geometry struct {
	width       int
	height      int
	initialized bool
	source      sink.Layout
	orientation exif.Orientation
}

func (g *geometry) initSize(width int, height int) {
	if g.initialized {
		panic(violation("InitSize called on an image that already has pixels"))
	}
	if width <= 0 || height <= 0 {
		panic(violation("InitSize called with empty dimensions %dx%d", width, height))
	}
	g.width = width
	g.height = height
	g.initialized = true
}

func (g *geometry) checkRow(l sink.Layout, row int, buf []byte, width int) {
	if !g.initialized {
		panic(violation("row %d written before InitSize", row))
	}
	if row < 0 || row >= g.height {
		panic(violation("row %d outside image of height %d", row, g.height))
	}
	if width != g.width {
		panic(violation("row %d has width %d, expected %d", row, width, g.width))
	}
	if len(buf) < width*l.Channels() {
		panic(violation("row %d buffer holds %d bytes, need %d", row, len(buf), width*l.Channels()))
	}
	g.source = l
}

func (g *geometry) reset() {
	*g = geometry{}
}

func (g *geometry) Width() int {
	return g.width
}

func (g *geometry) Height() int {
	return g.height
}

// Layout is the layout the decoder delivered rows in.
func (g *geometry) Layout() sink.Layout {
	return g.source
}

func (g *geometry) Orientation() exif.Orientation {
	return g.orientation
}

func (g *geometry) Initialized() bool {
	return g.initialized
}

func (g *geometry) validCrop(x int, y int, width int, height int) error {
	if !g.initialized {
		return ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}
	if x < 0 || y < 0 || x+width > g.width || y+height > g.height {
		return ErrOutOfBounds
	}
	return nil
}

// growing reports whether a resize to width x height enlarges either axis,
// in which case interpolation is bicubic rather than area averaging.
func (g *geometry) growing(width int, height int) bool {
	return width > g.width || height > g.height
}

func (g *geometry) orientationToApply() (exif.Orientation, error) {
	if !g.initialized {
		return exif.None, ErrNotInitialized
	}
	if g.orientation == exif.None || g.orientation == exif.Normal {
		return exif.None, nil
	}
	if !g.orientation.Valid() {
		return exif.None, ErrOrientationUnsupported
	}
	return g.orientation, nil
}

var _ Buffer = (*ColorImage)(nil)
var _ Buffer = (*RasterImage)(nil)
var _ sink.ColorManaged = (*ColorImage)(nil)
