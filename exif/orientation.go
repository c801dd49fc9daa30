package exif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// An APP1 segment larger than this violates the JPEG standard.
const MaxSegmentSize = 64 * 1024

const (
	tagOrientation = 0x0112
	typeShort      = 3
	entrySize      = 12
)

var ErrTooLarge = errors.New("exif: segment too large")
var ErrBadSignature = errors.New("exif: missing Exif header")
var ErrBadByteOrderMark = errors.New("exif: unknown byte order mark")
var ErrOffsetOutOfRange = errors.New("exif: IFD0 offset out of range")
var ErrTruncated = errors.New("exif: segment truncated")
var ErrUnexpectedType = errors.New("exif: orientation has unexpected type or count")
var ErrInvalidOrientationValue = errors.New("exif: orientation value out of range")
var ErrNotFound = errors.New("exif: no orientation tag")

var (
	exifHeader      = []byte("Exif\x00\x00")
	bigEndianBOM    = []byte{'M', 'M', 0, '*'}
	littleEndianBOM = []byte{'I', 'I', '*', 0}
)

// Orientation is the value of the EXIF orientation tag. Zero means no usable
// tag was present.
type Orientation uint16

const (
	None        Orientation = 0
	Normal      Orientation = 1
	FlipH       Orientation = 2
	Rotate180   Orientation = 3
	FlipV       Orientation = 4
	Transpose   Orientation = 5
	Rotate90CW  Orientation = 6
	Transverse  Orientation = 7
	Rotate270CW Orientation = 8
)

func (o Orientation) Valid() bool {
	return o >= Normal && o <= Rotate270CW
}

// ParseOrientation extracts the orientation tag from a raw APP1 payload,
// starting with the "Exif\0\0" header. Only IFD0 is scanned.
func ParseOrientation(payload []byte) (Orientation, error) {
	if len(payload) > MaxSegmentSize {
		return None, ErrTooLarge
	}

	r := bytes.NewReader(payload)
	if !matchBytes(r, exifHeader) {
		return None, ErrBadSignature
	}

	var order binary.ByteOrder
	bom := make([]byte, 4)
	if _, err := io.ReadFull(r, bom); err != nil {
		return None, ErrTruncated
	}
	switch {
	case bytes.Equal(bom, bigEndianBOM):
		order = binary.BigEndian
	case bytes.Equal(bom, littleEndianBOM):
		order = binary.LittleEndian
	default:
		return None, ErrBadByteOrderMark
	}

	p := &fieldReader{r: r, order: order}
	ifd0Offset, err := p.uint32()
	if err != nil {
		return None, err
	}
	if ifd0Offset > MaxSegmentSize {
		return None, ErrOffsetOutOfRange
	}

	// The offset is relative to the byte order mark, which follows the
	// 6 byte Exif header.
	if err = p.seekTo(int64(ifd0Offset) + int64(len(exifHeader))); err != nil {
		return None, err
	}

	entries, err := p.uint16()
	if err != nil {
		return None, err
	}
	for i := uint16(0); i < entries; i++ {
		tag, err := p.uint16()
		if err != nil {
			return None, err
		}
		if tag != tagOrientation {
			if err = p.skip(entrySize - 2); err != nil {
				return None, err
			}
			continue
		}

		typ, err := p.uint16()
		if err != nil {
			return None, err
		}
		count, err := p.uint32()
		if err != nil {
			return None, err
		}
		if typ != typeShort || count != 1 {
			return None, ErrUnexpectedType
		}

		value, err := p.uint16()
		if err != nil {
			return None, err
		}
		o := Orientation(value)
		if !o.Valid() {
			return None, ErrInvalidOrientationValue
		}

		// The value field is 4 bytes wide and a SHORT only fills the first
		// half. The padding may be cut off at the end of the segment.
		_ = p.skip(2)
		return o, nil
	}

	return None, ErrNotFound
}

func matchBytes(r *bytes.Reader, s []byte) bool {
	buf := make([]byte, len(s))
	if _, err := io.ReadFull(r, buf); err != nil {
		return false
	}
	return bytes.Equal(buf, s)
}

type fieldReader struct {
	r     *bytes.Reader
	order binary.ByteOrder
	buf   [4]byte
}

func (p *fieldReader) uint16() (uint16, error) {
	if _, err := io.ReadFull(p.r, p.buf[:2]); err != nil {
		return 0, ErrTruncated
	}
	return p.order.Uint16(p.buf[:2]), nil
}

func (p *fieldReader) uint32() (uint32, error) {
	if _, err := io.ReadFull(p.r, p.buf[:4]); err != nil {
		return 0, ErrTruncated
	}
	return p.order.Uint32(p.buf[:4]), nil
}

func (p *fieldReader) seekTo(pos int64) error {
	if pos > p.r.Size() {
		return ErrTruncated
	}
	_, err := p.r.Seek(pos, io.SeekStart)
	if err != nil {
		return ErrTruncated
	}
	return nil
}

func (p *fieldReader) skip(n int64) error {
	if int64(p.r.Len()) < n {
		return ErrTruncated
	}
	_, err := p.r.Seek(n, io.SeekCurrent)
	if err != nil {
		return ErrTruncated
	}
	return nil
}

// Reason returns a short label for a parse error, for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrBadByteOrderMark):
		return "bad_byte_order"
	case errors.Is(err, ErrOffsetOutOfRange):
		return "offset_out_of_range"
	case errors.Is(err, ErrTruncated):
		return "truncated"
	case errors.Is(err, ErrUnexpectedType):
		return "unexpected_type"
	case errors.Is(err, ErrInvalidOrientationValue):
		return "invalid_value"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "other"
	}
}
