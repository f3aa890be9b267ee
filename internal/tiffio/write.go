package tiffio

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"os"

	"golang.org/x/image/tiff"

	"github.com/histotools/geojson2masks/internal/mask"
)

// Write encodes img to path as a grayscale TIFF. When compress is set,
// strips are deflate (zlib) compressed.
func Write(path string, img image.Image, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, img, compress); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes img as TIFF. 8- and 16-bit grayscale images go through
// the x/image encoder; *mask.Gray32 needs 32 bits per sample, which
// that encoder cannot produce, so it takes the strip writer below.
func Encode(w io.Writer, img image.Image, compress bool) error {
	if g, ok := img.(*mask.Gray32); ok {
		return encodeGray32(w, g, compress)
	}
	opt := &tiff.Options{Compression: tiff.Uncompressed}
	if compress {
		opt.Compression = tiff.Deflate
	}
	return tiff.Encode(w, img, opt)
}

// TIFF structures for the 32-bit path. Field layout per the TIFF 6.0
// specification: an IFD entry is tag, type, count, then a value that
// is stored inline when it fits in four bytes.
const (
	leHeader = "II\x2a\x00" // little-endian magic

	dtShort = 3
	dtLong  = 4

	tImageWidth      = 256
	tImageLength     = 257
	tBitsPerSample   = 258
	tCompression     = 259
	tPhotometric     = 262
	tStripOffsets    = 273
	tSamplesPerPixel = 277
	tRowsPerStrip    = 278
	tStripByteCounts = 279
	tSampleFormat    = 339

	compressionNone    = 1
	compressionDeflate = 8 // Adobe deflate: zlib-wrapped strips

	photometricMinIsBlack = 1
	sampleFormatUnsigned  = 1
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value uint32
}

// encodeGray32 emits a minimal single-strip little-endian TIFF:
// header, pixel data, then the IFD.
func encodeGray32(w io.Writer, g *mask.Gray32, compress bool) error {
	width := g.Rect.Dx()
	height := g.Rect.Dy()

	raw := make([]byte, 4*width*height)
	i := 0
	for y := g.Rect.Min.Y; y < g.Rect.Max.Y; y++ {
		for x := g.Rect.Min.X; x < g.Rect.Max.X; x++ {
			binary.LittleEndian.PutUint32(raw[i:], uint32(g.Label(x, y)))
			i += 4
		}
	}

	strip := raw
	compression := uint32(compressionNone)
	if compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		strip = buf.Bytes()
		compression = compressionDeflate
	}

	// Pixel data sits right after the 8-byte header; the IFD follows
	// on a word boundary.
	stripOffset := uint32(8)
	ifdOffset := stripOffset + uint32(len(strip))
	pad := ifdOffset % 2
	ifdOffset += pad

	entries := []ifdEntry{
		{tImageWidth, dtLong, 1, uint32(width)},
		{tImageLength, dtLong, 1, uint32(height)},
		{tBitsPerSample, dtShort, 1, 32},
		{tCompression, dtShort, 1, compression},
		{tPhotometric, dtShort, 1, photometricMinIsBlack},
		{tStripOffsets, dtLong, 1, stripOffset},
		{tSamplesPerPixel, dtShort, 1, 1},
		{tRowsPerStrip, dtLong, 1, uint32(height)},
		{tStripByteCounts, dtLong, 1, uint32(len(strip))},
		{tSampleFormat, dtShort, 1, sampleFormatUnsigned},
	}

	var header [8]byte
	copy(header[:4], leHeader)
	binary.LittleEndian.PutUint32(header[4:], ifdOffset)
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(strip); err != nil {
		return err
	}
	if pad != 0 {
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
	}

	ifd := make([]byte, 2+12*len(entries)+4)
	binary.LittleEndian.PutUint16(ifd, uint16(len(entries)))
	for i, e := range entries {
		off := 2 + 12*i
		binary.LittleEndian.PutUint16(ifd[off:], e.tag)
		binary.LittleEndian.PutUint16(ifd[off+2:], e.typ)
		binary.LittleEndian.PutUint32(ifd[off+4:], e.count)
		binary.LittleEndian.PutUint32(ifd[off+8:], e.value)
	}
	// Trailing zero: no next IFD.
	_, err := w.Write(ifd)
	return err
}
