package sink

import (
	"github.com/t2bot/colorimage/exif"
)

// Layout is the channel arrangement of a row delivered to a PixelSink.
type Layout int

const (
	Gray Layout = iota + 1
	GrayAlpha
	RGB
	RGBA
)

func (l Layout) Channels() int {
	switch l {
	case Gray:
		return 1
	case GrayAlpha:
		return 2
	case RGB:
		return 3
	case RGBA:
		return 4
	default:
		return 0
	}
}

func (l Layout) HasAlpha() bool {
	return l == GrayAlpha || l == RGBA
}

func (l Layout) IsGray() bool {
	return l == Gray || l == GrayAlpha
}

func (l Layout) String() string {
	switch l {
	case Gray:
		return "gray"
	case GrayAlpha:
		return "gray_alpha"
	case RGB:
		return "rgb"
	case RGBA:
		return "rgb_alpha"
	default:
		return "unknown"
	}
}

// PixelSink receives decoded image data from a codec engine.
//
// InitSize is called once per decode attempt before any row. Rows arrive in
// increasing order starting at 0, all through the same WriteRow variant,
// each with width equal to the InitSize width. ParseExif is called at most
// once with the raw APP1 payload and returns the orientation it found, or 0.
//
// Reset discards everything received so far so the sink can be handed to
// another decode attempt.
type PixelSink interface {
	InitSize(width int, height int)
	WriteRowGray(row int, buf []byte, width int)
	WriteRowGrayAlpha(row int, buf []byte, width int)
	WriteRowRGB(row int, buf []byte, width int)
	WriteRowRGBA(row int, buf []byte, width int)
	ParseExif(payload []byte) exif.Orientation
	Reset()
}

// ColorManaged is implemented by sinks that want rows passed through the
// colour management transform of an embedded ICC profile.
type ColorManaged interface {
	WantsColorManagement() bool
}

func WantsColorManagement(s PixelSink) bool {
	if cm, ok := s.(ColorManaged); ok {
		return cm.WantsColorManagement()
	}
	return false
}

// WriteRow dispatches to the WriteRow variant matching l.
func WriteRow(s PixelSink, l Layout, row int, buf []byte, width int) {
	switch l {
	case Gray:
		s.WriteRowGray(row, buf, width)
	case GrayAlpha:
		s.WriteRowGrayAlpha(row, buf, width)
	case RGB:
		s.WriteRowRGB(row, buf, width)
	case RGBA:
		s.WriteRowRGBA(row, buf, width)
	default:
		panic(violation("unknown row layout %d", l))
	}
}
