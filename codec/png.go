package codec

import (
	"bytes"
	"image/png"

	"github.com/t2bot/colorimage/colormgmt"
	"github.com/t2bot/colorimage/formats"
	"github.com/t2bot/colorimage/sink"
)

type pngEngine struct{}

func (e pngEngine) Format() formats.ImageFormat {
	return formats.Png
}

func (e pngEngine) Init(colorManaged bool) (*Handle, error) {
	return &Handle{ColorManaged: colorManaged}, nil
}

func (e pngEngine) Decode(h *Handle, input []byte, cm *colormgmt.Context, cb Callbacks) (status Status) {
	defer recoverEngine(h, &status)

	md, err := scanPngMetadata(input)
	if err == errNotPng {
		h.Err = err
		return StatusBadHeader
	}
	if err != nil {
		h.Err = err
		return StatusCorrupt
	}
	if md.iccErr != nil {
		h.Log.Warn("Ignoring embedded colour profile: ", md.iccErr)
	}

	img, err := png.Decode(bytes.NewReader(input))
	if err != nil {
		h.Err = err
		return StatusCorrupt
	}

	if md.exif != nil {
		orientation := cb.parseExif(md.exif)
		h.Log.Debug("Exif orientation: ", orientation)
	}

	layout := pngLayout(md)
	b := img.Bounds()
	cb.InitSize(b.Dx(), b.Dy())
	streamRows(img, layout, transformFor(h, cm, md.icc, layout), cb)
	return StatusOK
}

func (e pngEngine) Cleanup(h *Handle) {
}

func pngLayout(md pngMetadata) sink.Layout {
	switch md.colorType {
	case pngColorGray:
		if md.transparency {
			return sink.GrayAlpha
		}
		return sink.Gray
	case pngColorGrayAlpha:
		return sink.GrayAlpha
	case pngColorTrueColor, pngColorPaletted:
		if md.transparency {
			return sink.RGBA
		}
		return sink.RGB
	default:
		return sink.RGBA
	}
}

func init() {
	Register(pngEngine{})
}
