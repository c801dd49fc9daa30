package formats

// ImageFormat identifies a compressed raster container.
type ImageFormat int

const (
	Bmp ImageFormat = iota + 1
	Gif
	Jpeg
	Png
	Tiff
)

var All = []ImageFormat{Bmp, Gif, Jpeg, Png, Tiff}

func (f ImageFormat) String() string {
	switch f {
	case Bmp:
		return "bmp"
	case Gif:
		return "gif"
	case Jpeg:
		return "jpeg"
	case Png:
		return "png"
	case Tiff:
		return "tiff"
	default:
		return "unknown"
	}
}

func (f ImageFormat) ContentType() string {
	switch f {
	case Bmp:
		return "image/bmp"
	case Gif:
		return "image/gif"
	case Jpeg:
		return "image/jpeg"
	case Png:
		return "image/png"
	case Tiff:
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}
