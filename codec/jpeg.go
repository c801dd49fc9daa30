package codec

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/t2bot/colorimage/colormgmt"
	"github.com/t2bot/colorimage/formats"
	"github.com/t2bot/colorimage/sink"
)

type jpegEngine struct{}

func (e jpegEngine) Format() formats.ImageFormat {
	return formats.Jpeg
}

func (e jpegEngine) Init(colorManaged bool) (*Handle, error) {
	return &Handle{ColorManaged: colorManaged}, nil
}

func (e jpegEngine) Decode(h *Handle, input []byte, cm *colormgmt.Context, cb Callbacks) (status Status) {
	defer recoverEngine(h, &status)

	md, err := scanJpegMetadata(input)
	if err == errNotJpeg {
		h.Err = err
		return StatusBadHeader
	}
	if err != nil {
		// The pixel decoder gets the final say on the stream
		h.Log.Debug("Ignoring unreadable jpeg metadata: ", err)
		md = jpegMetadata{}
	}
	if md.iccErr != nil {
		h.Log.Warn("Ignoring embedded colour profile: ", md.iccErr)
	}

	img, err := jpeg.Decode(bytes.NewReader(input))
	if err != nil {
		h.Err = err
		return StatusCorrupt
	}

	if md.exif != nil {
		orientation := cb.parseExif(md.exif)
		h.Log.Debug("Exif orientation: ", orientation)
	}

	layout := sink.RGB
	if _, ok := img.(*image.Gray); ok {
		layout = sink.Gray
	}

	b := img.Bounds()
	cb.InitSize(b.Dx(), b.Dy())
	streamRows(img, layout, transformFor(h, cm, md.icc, layout), cb)
	return StatusOK
}

func (e jpegEngine) Cleanup(h *Handle) {
}

func init() {
	Register(jpegEngine{})
}
