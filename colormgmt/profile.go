package colormgmt

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/t2bot/colorimage/sink"
)

const iccHeaderSize = 128

// Profiles larger than this are refused.
const MaxProfileSize = 4 * 1024 * 1024

var ErrInvalidProfile = errors.New("icc: invalid profile")
var ErrProfileMismatch = errors.New("icc: profile colour space does not match the pixel layout")

// ColorSpace is the data colour space signature of an ICC profile header.
type ColorSpace string

const (
	SpaceRGB  ColorSpace = "RGB "
	SpaceGray ColorSpace = "GRAY"
	SpaceCMYK ColorSpace = "CMYK"
)

// ProfileHeader is the subset of the 128 byte ICC header this package uses.
type ProfileHeader struct {
	Size       uint32
	Class      string
	ColorSpace ColorSpace
	PCS        string
}

func ParseProfileHeader(profile []byte) (ProfileHeader, error) {
	if len(profile) < iccHeaderSize {
		return ProfileHeader{}, errors.Wrapf(ErrInvalidProfile, "profile is %d bytes, shorter than the header", len(profile))
	}
	if len(profile) > MaxProfileSize {
		return ProfileHeader{}, errors.Wrapf(ErrInvalidProfile, "profile is %d bytes", len(profile))
	}
	if string(profile[36:40]) != "acsp" {
		return ProfileHeader{}, errors.Wrap(ErrInvalidProfile, "missing acsp signature")
	}
	h := ProfileHeader{
		Size:       binary.BigEndian.Uint32(profile[0:4]),
		Class:      string(profile[12:16]),
		ColorSpace: ColorSpace(profile[16:20]),
		PCS:        string(profile[20:24]),
	}
	if int(h.Size) > len(profile) {
		return h, errors.Wrapf(ErrInvalidProfile, "header declares %d bytes but only %d are present", h.Size, len(profile))
	}
	return h, nil
}

// Supports reports whether a profile in this colour space can describe rows
// of layout l.
func (s ColorSpace) Supports(l sink.Layout) bool {
	switch s {
	case SpaceGray:
		return l.IsGray()
	case SpaceRGB:
		return l == sink.RGB || l == sink.RGBA
	default:
		return false
	}
}
