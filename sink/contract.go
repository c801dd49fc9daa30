package sink

import (
	"fmt"

	"github.com/t2bot/colorimage/exif"
)

// ContractViolation is the panic value raised when a codec engine breaks the
// PixelSink calling contract. It indicates a broken integration rather than
// bad input, so it is never returned as an error.
type ContractViolation struct {
	Message string
}

func (v *ContractViolation) Error() string {
	return "pixel sink contract violated: " + v.Message
}

func violation(format string, args ...interface{}) *ContractViolation {
	return &ContractViolation{Message: fmt.Sprintf(format, args...)}
}

// Checked wraps a PixelSink and panics with a *ContractViolation whenever the
// calling contract is broken.
type Checked struct {
	inner PixelSink

	initialized bool
	width       int
	height      int
	layout      Layout
	nextRow     int
	exifSeen    bool
}

func Enforce(s PixelSink) *Checked {
	if c, ok := s.(*Checked); ok {
		return c
	}
	return &Checked{inner: s}
}

func (c *Checked) Inner() PixelSink {
	return c.inner
}

func (c *Checked) Width() int {
	return c.width
}

func (c *Checked) Height() int {
	return c.height
}

// Layout returns the layout used so far, or 0 before the first row.
func (c *Checked) Layout() Layout {
	return c.layout
}

func (c *Checked) RowsWritten() int {
	return c.nextRow
}

// Complete is true once every row announced by InitSize was delivered.
func (c *Checked) Complete() bool {
	return c.initialized && c.nextRow == c.height
}

func (c *Checked) InitSize(width int, height int) {
	if c.initialized {
		panic(violation("InitSize called twice (%dx%d, then %dx%d)", c.width, c.height, width, height))
	}
	if width <= 0 || height <= 0 {
		panic(violation("InitSize called with empty dimensions %dx%d", width, height))
	}
	c.initialized = true
	c.width = width
	c.height = height
	c.inner.InitSize(width, height)
}

func (c *Checked) checkRow(l Layout, row int, buf []byte, width int) {
	if !c.initialized {
		panic(violation("row %d written before InitSize", row))
	}
	if c.layout == 0 {
		c.layout = l
	} else if c.layout != l {
		panic(violation("row %d written as %s after rows written as %s", row, l, c.layout))
	}
	if row != c.nextRow {
		panic(violation("row %d written out of order, expected row %d", row, c.nextRow))
	}
	if row >= c.height {
		panic(violation("row %d is past the image height %d", row, c.height))
	}
	if width != c.width {
		panic(violation("row %d has width %d, expected %d", row, width, c.width))
	}
	if len(buf) < width*l.Channels() {
		panic(violation("row %d buffer holds %d bytes, need %d", row, len(buf), width*l.Channels()))
	}
	c.nextRow++
}

func (c *Checked) WriteRowGray(row int, buf []byte, width int) {
	c.checkRow(Gray, row, buf, width)
	c.inner.WriteRowGray(row, buf, width)
}

func (c *Checked) WriteRowGrayAlpha(row int, buf []byte, width int) {
	c.checkRow(GrayAlpha, row, buf, width)
	c.inner.WriteRowGrayAlpha(row, buf, width)
}

func (c *Checked) WriteRowRGB(row int, buf []byte, width int) {
	c.checkRow(RGB, row, buf, width)
	c.inner.WriteRowRGB(row, buf, width)
}

func (c *Checked) WriteRowRGBA(row int, buf []byte, width int) {
	c.checkRow(RGBA, row, buf, width)
	c.inner.WriteRowRGBA(row, buf, width)
}

func (c *Checked) ParseExif(payload []byte) exif.Orientation {
	if c.exifSeen {
		panic(violation("ParseExif called more than once"))
	}
	c.exifSeen = true
	return c.inner.ParseExif(payload)
}

func (c *Checked) Reset() {
	c.initialized = false
	c.width = 0
	c.height = 0
	c.layout = 0
	c.nextRow = 0
	c.exifSeen = false
	c.inner.Reset()
}

func (c *Checked) WantsColorManagement() bool {
	return WantsColorManagement(c.inner)
}
