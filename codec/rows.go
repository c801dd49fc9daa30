package codec

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"github.com/t2bot/colorimage/colormgmt"
	"github.com/t2bot/colorimage/sink"
)

// streamRows delivers every row of img to cb in layout l, passing each row
// through tr when it is not nil.
func streamRows(img image.Image, l sink.Layout, tr colormgmt.Transform, cb Callbacks) {
	b := img.Bounds()
	width := b.Dx()
	row := make([]byte, width*l.Channels())
	for y := 0; y < b.Dy(); y++ {
		fillRow(img, b.Min.Y+y, l, row)
		if tr != nil {
			tr.Apply(row, row, width)
		}
		cb.writeRow(l, y, row, width)
	}
}

func fillRow(img image.Image, y int, l sink.Layout, dst []byte) {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.Gray:
		if l == sink.Gray {
			start := src.PixOffset(b.Min.X, y)
			copy(dst, src.Pix[start:start+b.Dx()])
			return
		}
	case *image.NRGBA:
		if l == sink.RGBA {
			start := src.PixOffset(b.Min.X, y)
			copy(dst, src.Pix[start:start+4*b.Dx()])
			return
		}
	case *image.YCbCr:
		if l == sink.RGB {
			for x := b.Min.X; x < b.Max.X; x++ {
				yi := src.YOffset(x, y)
				ci := src.COffset(x, y)
				r, g, bl := color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
				i := 3 * (x - b.Min.X)
				dst[i], dst[i+1], dst[i+2] = r, g, bl
			}
			return
		}
	}

	ch := l.Channels()
	for x := b.Min.X; x < b.Max.X; x++ {
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		i := ch * (x - b.Min.X)
		switch l {
		case sink.Gray:
			dst[i] = c.R
		case sink.GrayAlpha:
			dst[i], dst[i+1] = c.R, c.A
		case sink.RGB:
			dst[i], dst[i+1], dst[i+2] = c.R, c.G, c.B
		case sink.RGBA:
			dst[i], dst[i+1], dst[i+2], dst[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

// transformFor returns the colour transform for an embedded profile, or nil
// when colour management is off or the profile cannot be used.
func transformFor(h *Handle, cm *colormgmt.Context, profile []byte, l sink.Layout) colormgmt.Transform {
	if !h.ColorManaged || cm == nil || profile == nil {
		return nil
	}
	tr, err := cm.TransformFor(profile, l)
	if err != nil {
		h.Log.Warn("Ignoring embedded colour profile: ", err)
		return nil
	}
	return tr
}

// recoverEngine converts a panic raised by the decoding library into a
// failure status. Contract violations come from the sink side and keep
// propagating.
func recoverEngine(h *Handle, status *Status) {
	r := recover()
	if r == nil {
		return
	}
	if v, ok := r.(*sink.ContractViolation); ok {
		panic(v)
	}
	h.Err = errors.Errorf("panic during decode: %v", r)
	*status = StatusPanicked
}
