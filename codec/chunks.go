package codec

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/t2bot/colorimage/colormgmt"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

var errNotPng = errors.New("png: bad signature")

const (
	pngColorGray      = 0
	pngColorTrueColor = 2
	pngColorPaletted  = 3
	pngColorGrayAlpha = 4
	pngColorTrueAlpha = 6
)

type pngMetadata struct {
	colorType    byte
	transparency bool
	exif         []byte
	icc          []byte
	iccErr       error
}

// scanPngMetadata walks the chunk list up to IEND, collecting the header
// colour type, tRNS presence, the first eXIf chunk and the iCCP profile.
// Chunk CRCs are left to the pixel decoder.
func scanPngMetadata(b []byte) (pngMetadata, error) {
	md := pngMetadata{}
	if len(b) < len(pngSignature) || !bytes.Equal(b[:len(pngSignature)], pngSignature) {
		return md, errNotPng
	}

	sawHeader := false
	i := len(pngSignature)
	for i+8 <= len(b) {
		length := binary.BigEndian.Uint32(b[i : i+4])
		typ := string(b[i+4 : i+8])
		if uint64(i)+12+uint64(length) > uint64(len(b)) {
			return md, errors.Errorf("png: chunk %q at offset %d overruns the input", typ, i)
		}
		data := b[i+8 : i+8+int(length)]

		switch typ {
		case "IHDR":
			if len(data) < 13 {
				return md, errors.New("png: short IHDR")
			}
			md.colorType = data[9]
			sawHeader = true
		case "tRNS":
			md.transparency = true
		case "eXIf":
			if md.exif == nil {
				if bytes.HasPrefix(data, exifSignature) {
					md.exif = data
				} else {
					md.exif = append(append([]byte{}, exifSignature...), data...)
				}
			}
		case "iCCP":
			if md.icc == nil && md.iccErr == nil {
				md.icc, md.iccErr = inflateProfile(data)
			}
		case "IEND":
			i = len(b)
			continue
		}

		i += 12 + int(length)
	}

	if !sawHeader {
		return md, errors.New("png: missing IHDR")
	}
	return md, nil
}

// inflateProfile decodes the body of an iCCP chunk: a profile name, a null
// separator, the compression method and the zlib stream.
func inflateProfile(data []byte) ([]byte, error) {
	sep := bytes.IndexByte(data, 0)
	if sep < 1 || sep > 79 || sep+2 > len(data) {
		return nil, errors.New("png: malformed iCCP chunk")
	}
	if data[sep+1] != 0 {
		return nil, errors.Errorf("png: unknown iCCP compression method %d", data[sep+1])
	}
	zr, err := zlib.NewReader(bytes.NewReader(data[sep+2:]))
	if err != nil {
		return nil, errors.Wrap(err, "png: error opening iCCP stream")
	}
	defer zr.Close()

	profile, err := io.ReadAll(io.LimitReader(zr, colormgmt.MaxProfileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "png: error inflating iCCP stream")
	}
	if len(profile) > colormgmt.MaxProfileSize {
		return nil, errors.New("png: iCCP profile too large")
	}
	return profile, nil
}
