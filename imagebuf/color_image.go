package imagebuf

import (
	"image"

	"github.com/buckket/go-blurhash"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/t2bot/colorimage/exif"
	"github.com/t2bot/colorimage/sink"
)

const blurhashSampleSize = 64

// ColorImage is a colour-managed RGBA buffer. Gray sources are replicated
// across the colour channels and sources without alpha are stored opaque.
type ColorImage struct {
	geometry
	img *image.NRGBA
}

func NewColorImage() *ColorImage {
	return &ColorImage{}
}

func (i *ColorImage) WantsColorManagement() bool {
	return true
}

func (i *ColorImage) Channels() int {
	return 4
}

func (i *ColorImage) InitSize(width int, height int) {
	i.initSize(width, height)
	i.img = image.NewNRGBA(image.Rect(0, 0, width, height))
}

func (i *ColorImage) rowPix(row int) []byte {
	offset := i.img.PixOffset(0, row)
	return i.img.Pix[offset : offset+i.width*4]
}

func (i *ColorImage) WriteRowGray(row int, buf []byte, width int) {
	i.checkRow(sink.Gray, row, buf, width)
	pix := i.rowPix(row)
	for x := 0; x < width; x++ {
		v := buf[x]
		pix[x*4], pix[x*4+1], pix[x*4+2], pix[x*4+3] = v, v, v, 0xff
	}
}

func (i *ColorImage) WriteRowGrayAlpha(row int, buf []byte, width int) {
	i.checkRow(sink.GrayAlpha, row, buf, width)
	pix := i.rowPix(row)
	for x := 0; x < width; x++ {
		v := buf[x*2]
		pix[x*4], pix[x*4+1], pix[x*4+2], pix[x*4+3] = v, v, v, buf[x*2+1]
	}
}

func (i *ColorImage) WriteRowRGB(row int, buf []byte, width int) {
	i.checkRow(sink.RGB, row, buf, width)
	pix := i.rowPix(row)
	for x := 0; x < width; x++ {
		pix[x*4], pix[x*4+1], pix[x*4+2], pix[x*4+3] = buf[x*3], buf[x*3+1], buf[x*3+2], 0xff
	}
}

func (i *ColorImage) WriteRowRGBA(row int, buf []byte, width int) {
	i.checkRow(sink.RGBA, row, buf, width)
	copy(i.rowPix(row), buf[:width*4])
}

func (i *ColorImage) ParseExif(payload []byte) exif.Orientation {
	i.orientation = parseExif(payload)
	return i.orientation
}

func (i *ColorImage) Reset() {
	i.reset()
	i.img = nil
}

func (i *ColorImage) Image() image.Image {
	return i.img
}

func (i *ColorImage) Resize(width int, height int) error {
	if !i.initialized {
		return ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}
	if width == i.width && height == i.height {
		return nil
	}

	filter := imaging.Box
	if i.growing(width, height) {
		filter = imaging.CatmullRom
	}
	i.img = imaging.Resize(i.img, width, height, filter)
	i.width = width
	i.height = height
	return nil
}

func (i *ColorImage) Crop(x int, y int, width int, height int) error {
	if err := i.validCrop(x, y, width, height); err != nil {
		return err
	}
	i.img = imaging.Crop(i.img, image.Rect(x, y, x+width, y+height))
	i.width = width
	i.height = height
	return nil
}

func (i *ColorImage) ApplyOrientation() error {
	o, err := i.orientationToApply()
	if err != nil {
		return err
	}
	if o != exif.None {
		i.img = orient(i.img, o)
		b := i.img.Bounds()
		i.width = b.Dx()
		i.height = b.Dy()
	}
	i.orientation = exif.Normal
	return nil
}

func (i *ColorImage) DumpInterleaved(dst []byte) (int, error) {
	if !i.initialized {
		return 0, ErrNotInitialized
	}
	n := i.width * i.height * 4
	if len(dst) < n {
		return 0, ErrBufferTooSmall
	}
	for y := 0; y < i.height; y++ {
		copy(dst[y*i.width*4:], i.rowPix(y))
	}
	return n, nil
}

func (i *ColorImage) DumpPlanar(dst []byte) (int, error) {
	if !i.initialized {
		return 0, ErrNotInitialized
	}
	plane := i.width * i.height
	if len(dst) < plane*4 {
		return 0, ErrBufferTooSmall
	}
	for y := 0; y < i.height; y++ {
		pix := i.rowPix(y)
		for x := 0; x < i.width; x++ {
			idx := y*i.width + x
			for c := 0; c < 4; c++ {
				dst[c*plane+idx] = pix[x*4+c]
			}
		}
	}
	return plane * 4, nil
}

// Blurhash computes a placeholder hash with the given number of components
// on each axis.
func (i *ColorImage) Blurhash(xComponents int, yComponents int) (string, error) {
	if !i.initialized {
		return "", ErrNotInitialized
	}
	// Smaller images make the hash calculation faster
	thumb := imaging.Fill(i.img, blurhashSampleSize, blurhashSampleSize, imaging.Center, imaging.Lanczos)
	hash, err := blurhash.Encode(xComponents, yComponents, thumb)
	if err != nil {
		return "", errors.Wrap(err, "error calculating blurhash")
	}
	return hash, nil
}
