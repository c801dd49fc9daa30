package formats

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Info is the header-level description of an image.
type Info struct {
	Format ImageFormat
	Width  int
	Height int
}

func (i Info) Pixels() int {
	return i.Width * i.Height
}

// Probe reads only the header of b to report its dimensions. The image data
// itself is not decoded. An error is returned when the format is unknown or
// the header cannot be read.
func Probe(b []byte) (Info, error) {
	f, ok := GuessFormat(b)
	if !ok {
		return Info{}, errors.New("probe: unknown format")
	}

	var c image.Config
	var err error
	r := bytes.NewReader(b)
	switch f {
	case Jpeg:
		c, err = jpeg.DecodeConfig(r)
	case Png:
		c, err = png.DecodeConfig(r)
	case Gif:
		c, err = gif.DecodeConfig(r)
	case Bmp:
		c, err = bmp.DecodeConfig(r)
	case Tiff:
		c, err = tiff.DecodeConfig(r)
	}
	if err != nil {
		return Info{Format: f}, errors.Wrapf(err, "probe: error reading %s header", f)
	}
	return Info{Format: f, Width: c.Width, Height: c.Height}, nil
}
