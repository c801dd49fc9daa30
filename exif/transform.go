package exif

// Transform is the flip and rotation needed to display an image upright.
// Flips are applied first, then the counter-clockwise rotation.
type Transform struct {
	RotateDegrees  int // should be 0, 90, 180, or 270
	FlipVertical   bool
	FlipHorizontal bool
}

func (t Transform) IsIdentity() bool {
	return t.RotateDegrees == 0 && !t.FlipVertical && !t.FlipHorizontal
}

// Transform returns the correction for o. Codes outside [1,8] map to the
// identity transform.
func (o Orientation) Transform() Transform {
	if !o.Valid() {
		return Transform{}
	}

	flipHorizontal := o < 5 && (o%2) == 0
	flipVertical := o > 4 && (o%2) != 0
	degrees := 0

	switch o {
	case Normal, FlipH:
		degrees = 0
	case Rotate180, FlipV:
		degrees = 180
	case Transpose, Rotate90CW:
		degrees = 270
	case Transverse, Rotate270CW:
		degrees = 90
	}

	return Transform{degrees, flipVertical, flipHorizontal}
}

// SwapsDimensions is true when the corrected image has width and height
// exchanged.
func (o Orientation) SwapsDimensions() bool {
	return o >= Transpose && o <= Rotate270CW
}
