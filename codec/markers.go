package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	markerSOI   = 0xd8
	markerEOI   = 0xd9
	markerSOS   = 0xda
	markerRST0  = 0xd0
	markerRST7  = 0xd7
	markerTEM   = 0x01
	markerAPP1  = 0xe1
	markerAPP2  = 0xe2
	iccChunkHdr = 14 // "ICC_PROFILE\0", sequence number, chunk count
)

var exifSignature = []byte("Exif\x00\x00")
var iccSignature = []byte("ICC_PROFILE\x00")

var errNotJpeg = errors.New("jpeg: missing start of image marker")

type jpegMetadata struct {
	exif []byte
	icc  []byte

	// iccErr is set when ICC chunks were present but could not be assembled.
	iccErr error
}

// scanJpegMetadata walks the marker segments ahead of the first scan and
// collects the first Exif APP1 payload and the ICC profile from APP2. Bytes
// between segments that are not markers are skipped. Only errNotJpeg means
// the input cannot be a JPEG; other errors describe unreadable metadata.
func scanJpegMetadata(b []byte) (jpegMetadata, error) {
	md := jpegMetadata{}
	if len(b) < 2 || b[0] != 0xff || b[1] != markerSOI {
		return md, errNotJpeg
	}

	iccChunks := make(map[int][]byte)
	iccCount := 0

	i := 2
	for i+1 < len(b) {
		if b[i] != 0xff {
			// Stray bytes between segments: resync on the next marker
			i++
			continue
		}
		marker := b[i+1]
		if marker == 0xff {
			// fill byte
			i++
			continue
		}
		if marker == markerSOS || marker == markerEOI {
			break
		}
		if marker == markerTEM || (marker >= markerRST0 && marker <= markerRST7) {
			i += 2
			continue
		}
		if i+4 > len(b) {
			return md, errors.New("jpeg: truncated segment header")
		}
		segLen := int(binary.BigEndian.Uint16(b[i+2 : i+4]))
		if segLen < 2 || i+2+segLen > len(b) {
			return md, errors.Errorf("jpeg: segment at offset %d overruns the input", i)
		}
		payload := b[i+4 : i+2+segLen]

		switch marker {
		case markerAPP1:
			if md.exif == nil && bytes.HasPrefix(payload, exifSignature) {
				md.exif = payload
			}
		case markerAPP2:
			if len(payload) >= iccChunkHdr && bytes.HasPrefix(payload, iccSignature) {
				seq := int(payload[12])
				count := int(payload[13])
				if iccCount == 0 {
					iccCount = count
				}
				if count != iccCount || seq < 1 || seq > count {
					md.iccErr = errors.Errorf("jpeg: bad ICC chunk %d of %d", seq, count)
				} else if _, dup := iccChunks[seq]; dup {
					md.iccErr = errors.Errorf("jpeg: duplicate ICC chunk %d", seq)
				} else {
					iccChunks[seq] = payload[iccChunkHdr:]
				}
			}
		}

		i += 2 + segLen
	}

	if iccCount > 0 && md.iccErr == nil {
		if len(iccChunks) != iccCount {
			md.iccErr = errors.Errorf("jpeg: found %d of %d ICC chunks", len(iccChunks), iccCount)
		} else {
			profile := make([]byte, 0)
			for seq := 1; seq <= iccCount; seq++ {
				profile = append(profile, iccChunks[seq]...)
			}
			md.icc = profile
		}
	}

	return md, nil
}
