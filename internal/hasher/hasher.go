// Package hasher derives short xxHash64 identifiers for tiles and pools.
package hasher

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"

	"github.com/AnyUserName/cardmosaic/internal/raster"
)

// HexLen is the length of the hex strings returned by this package.
const HexLen = 16

func hexSum(v uint64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return hex.EncodeToString(b[:])
}

// ContentHash is the xxHash64 of data as 16 hex chars.
func ContentHash(data []byte) string {
	return hexSum(xxhash.Sum64(data))
}

// PixelHash hashes the decoded pixels and dimensions of img, so two
// encodings of the same picture hash alike.
func PixelHash(img *raster.Image) string {
	h := xxhash.New()
	var dims [16]byte
	binary.BigEndian.PutUint64(dims[:8], uint64(img.W))
	binary.BigEndian.PutUint64(dims[8:], uint64(img.H))
	h.Write(dims[:])
	h.Write(img.Pix)
	return hexSum(h.Sum64())
}

// Fingerprint combines per-tile hashes, in order, into one pool identifier.
func Fingerprint(hashes []string) string {
	h := xxhash.New()
	for _, s := range hashes {
		h.WriteString(s)
		h.Write([]byte{0})
	}
	return hexSum(h.Sum64())
}
