package codec

import (
	"github.com/sirupsen/logrus"
	"github.com/t2bot/colorimage/colormgmt"
	"github.com/t2bot/colorimage/exif"
	"github.com/t2bot/colorimage/formats"
	"github.com/t2bot/colorimage/sink"
)

// Status is the result code reported by an Engine. Anything but StatusOK is
// a failure; the meaning of other codes is engine specific.
type Status int

const (
	StatusOK Status = iota
	StatusBadHeader
	StatusCorrupt
	StatusInitFailed
	StatusPanicked
)

// Handle carries one decode's engine state between Init, Decode and Cleanup.
type Handle struct {
	ColorManaged bool
	Log          *logrus.Entry

	// Err holds the engine's description of the last failure, if any.
	Err error
}

// Callbacks is the table of PixelSink operations handed to an Engine.
type Callbacks struct {
	InitSize          func(width int, height int)
	WriteRowGray      func(row int, buf []byte, width int)
	WriteRowGrayAlpha func(row int, buf []byte, width int)
	WriteRowRGB       func(row int, buf []byte, width int)
	WriteRowRGBA      func(row int, buf []byte, width int)
	ParseExif         func(payload []byte) exif.Orientation
}

func CallbacksFor(s sink.PixelSink) Callbacks {
	return Callbacks{
		InitSize:          s.InitSize,
		WriteRowGray:      s.WriteRowGray,
		WriteRowGrayAlpha: s.WriteRowGrayAlpha,
		WriteRowRGB:       s.WriteRowRGB,
		WriteRowRGBA:      s.WriteRowRGBA,
		ParseExif:         s.ParseExif,
	}
}

func (cb Callbacks) writeRow(l sink.Layout, row int, buf []byte, width int) {
	switch l {
	case sink.Gray:
		cb.WriteRowGray(row, buf, width)
	case sink.GrayAlpha:
		cb.WriteRowGrayAlpha(row, buf, width)
	case sink.RGB:
		cb.WriteRowRGB(row, buf, width)
	case sink.RGBA:
		cb.WriteRowRGBA(row, buf, width)
	}
}

func (cb Callbacks) parseExif(payload []byte) exif.Orientation {
	if cb.ParseExif == nil || payload == nil {
		return exif.None
	}
	return cb.ParseExif(payload)
}

// Engine decodes one compressed format and streams the result into a
// Callbacks table. Decode must call InitSize once before any row, deliver
// every row once in increasing order through one layout, and call ParseExif
// at most once.
type Engine interface {
	Format() formats.ImageFormat
	Init(colorManaged bool) (*Handle, error)
	Decode(h *Handle, input []byte, cm *colormgmt.Context, cb Callbacks) Status
	Cleanup(h *Handle)
}
