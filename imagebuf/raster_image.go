package imagebuf

import (
	"image"
	"image/color"

	"github.com/t2bot/colorimage/exif"
	"github.com/t2bot/colorimage/sink"
	"golang.org/x/image/draw"
)

// boxKernel averages every source pixel under the destination pixel.
var boxKernel = &draw.Kernel{
	Support: 0.5,
	At: func(t float64) float64 {
		return 1
	},
}

// RasterImage is a raw, unmanaged RGB buffer. Gray sources are replicated
// and alpha is dropped.
type RasterImage struct {
	geometry
	pix []byte
}

func NewRasterImage() *RasterImage {
	return &RasterImage{}
}

func (i *RasterImage) WantsColorManagement() bool {
	return false
}

func (i *RasterImage) Channels() int {
	return 3
}

func (i *RasterImage) InitSize(width int, height int) {
	i.initSize(width, height)
	i.pix = make([]byte, width*height*3)
}

func (i *RasterImage) rowPix(row int) []byte {
	return i.pix[row*i.width*3 : (row+1)*i.width*3]
}

func (i *RasterImage) WriteRowGray(row int, buf []byte, width int) {
	i.checkRow(sink.Gray, row, buf, width)
	pix := i.rowPix(row)
	for x := 0; x < width; x++ {
		v := buf[x]
		pix[x*3], pix[x*3+1], pix[x*3+2] = v, v, v
	}
}

func (i *RasterImage) WriteRowGrayAlpha(row int, buf []byte, width int) {
	i.checkRow(sink.GrayAlpha, row, buf, width)
	pix := i.rowPix(row)
	for x := 0; x < width; x++ {
		v := buf[x*2]
		pix[x*3], pix[x*3+1], pix[x*3+2] = v, v, v
	}
}

func (i *RasterImage) WriteRowRGB(row int, buf []byte, width int) {
	i.checkRow(sink.RGB, row, buf, width)
	copy(i.rowPix(row), buf[:width*3])
}

func (i *RasterImage) WriteRowRGBA(row int, buf []byte, width int) {
	i.checkRow(sink.RGBA, row, buf, width)
	pix := i.rowPix(row)
	for x := 0; x < width; x++ {
		pix[x*3], pix[x*3+1], pix[x*3+2] = buf[x*4], buf[x*4+1], buf[x*4+2]
	}
}

func (i *RasterImage) ParseExif(payload []byte) exif.Orientation {
	i.orientation = parseExif(payload)
	return i.orientation
}

func (i *RasterImage) Reset() {
	i.reset()
	i.pix = nil
}

func (i *RasterImage) ColorModel() color.Model {
	return color.RGBAModel
}

func (i *RasterImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.width, i.height)
}

func (i *RasterImage) At(x int, y int) color.Color {
	return i.RGBAAt(x, y)
}

func (i *RasterImage) RGBAAt(x int, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}.In(i.Bounds())) {
		return color.RGBA{}
	}
	o := (y*i.width + x) * 3
	return color.RGBA{R: i.pix[o], G: i.pix[o+1], B: i.pix[o+2], A: 0xff}
}

func (i *RasterImage) Set(x int, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(i.Bounds())) {
		return
	}
	o := (y*i.width + x) * 3
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	i.pix[o], i.pix[o+1], i.pix[o+2] = rgba.R, rgba.G, rgba.B
}

func (i *RasterImage) Image() image.Image {
	return i
}

func (i *RasterImage) Resize(width int, height int) error {
	if !i.initialized {
		return ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}
	if width == i.width && height == i.height {
		return nil
	}

	kernel := boxKernel
	if i.growing(width, height) {
		kernel = draw.CatmullRom
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	kernel.Scale(dst, dst.Bounds(), i, i.Bounds(), draw.Src, nil)
	i.replace(dst)
	return nil
}

func (i *RasterImage) Crop(x int, y int, width int, height int) error {
	if err := i.validCrop(x, y, width, height); err != nil {
		return err
	}
	pix := make([]byte, width*height*3)
	for row := 0; row < height; row++ {
		src := i.rowPix(y + row)
		copy(pix[row*width*3:(row+1)*width*3], src[x*3:(x+width)*3])
	}
	i.pix = pix
	i.width = width
	i.height = height
	return nil
}

func (i *RasterImage) ApplyOrientation() error {
	o, err := i.orientationToApply()
	if err != nil {
		return err
	}
	if o != exif.None {
		i.replace(orient(i, o))
	}
	i.orientation = exif.Normal
	return nil
}

// replace swaps the store for the (opaque) contents of img.
func (i *RasterImage) replace(img image.Image) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	pix := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			o := (y*width + x) * 3
			pix[o], pix[o+1], pix[o+2] = c.R, c.G, c.B
		}
	}
	i.pix = pix
	i.width = width
	i.height = height
}

func (i *RasterImage) DumpInterleaved(dst []byte) (int, error) {
	if !i.initialized {
		return 0, ErrNotInitialized
	}
	if len(dst) < len(i.pix) {
		return 0, ErrBufferTooSmall
	}
	return copy(dst, i.pix), nil
}

func (i *RasterImage) DumpPlanar(dst []byte) (int, error) {
	if !i.initialized {
		return 0, ErrNotInitialized
	}
	plane := i.width * i.height
	if len(dst) < plane*3 {
		return 0, ErrBufferTooSmall
	}
	for idx := 0; idx < plane; idx++ {
		dst[idx] = i.pix[idx*3]
		dst[plane+idx] = i.pix[idx*3+1]
		dst[2*plane+idx] = i.pix[idx*3+2]
	}
	return plane * 3, nil
}
