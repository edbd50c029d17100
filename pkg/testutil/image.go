package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// CreatePNG writes a real PNG of the given pixel size. PNGs carry no
// EXIF block, so they exercise the header-probe dimension path and never
// have an embedded capture time.
func CreatePNG(t *testing.T, dir, name string, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return CreateFile(t, dir, name, buf.String())
}

// CreateJPEGWithEXIF writes a minimal JPEG container holding only an
// EXIF APP1 segment with the given pixel dimensions and, when dateTime
// is non-empty (EXIF layout, "2006:01:02 15:04:05"), a capture time.
func CreateJPEGWithEXIF(t *testing.T, dir, name string, width, height int, dateTime string) string {
	t.Helper()

	tiff := exifTIFF(uint32(width), uint32(height), dateTime)
	payload := append([]byte("Exif\x00\x00"), tiff...)

	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8}) // SOI
	app1Len := len(payload) + 2
	buf.Write([]byte{0xFF, 0xE1, byte(app1Len >> 8), byte(app1Len)})
	buf.Write(payload)
	buf.Write([]byte{0xFF, 0xD9}) // EOI

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

const (
	tagDateTime         = 0x0132
	tagExifIFDPointer   = 0x8769
	tagDateTimeOriginal = 0x9003
	tagPixelXDimension  = 0xA002
	tagPixelYDimension  = 0xA003

	typeASCII = 2
	typeLong  = 4
)

// exifTIFF assembles a little-endian TIFF block: IFD0 with an optional
// DateTime tag and a pointer to the Exif sub-IFD, which carries the
// pixel dimensions and the optional DateTimeOriginal.
func exifTIFF(width, height uint32, dateTime string) []byte {
	hasDT := dateTime != ""
	dtBytes := append([]byte(dateTime), 0) // EXIF ASCII is NUL-terminated

	ifd0Count := 1
	if hasDT {
		ifd0Count++
	}
	ifd0Off := 8
	ifd0Size := 2 + ifd0Count*12 + 4

	dtOff := ifd0Off + ifd0Size
	exifOff := dtOff
	if hasDT {
		exifOff += len(dtBytes)
	}
	exifCount := 2
	if hasDT {
		exifCount++
	}
	exifSize := 2 + exifCount*12 + 4
	dtoOff := exifOff + exifSize

	var buf bytes.Buffer
	le := binary.LittleEndian

	write16 := func(v uint16) {
		var b [2]byte
		le.PutUint16(b[:], v)
		buf.Write(b[:])
	}
	write32 := func(v uint32) {
		var b [4]byte
		le.PutUint32(b[:], v)
		buf.Write(b[:])
	}
	entry := func(tag, typ uint16, count, value uint32) {
		write16(tag)
		write16(typ)
		write32(count)
		write32(value)
	}

	// TIFF header
	buf.WriteString("II")
	write16(42)
	write32(uint32(ifd0Off))

	// IFD0
	write16(uint16(ifd0Count))
	if hasDT {
		entry(tagDateTime, typeASCII, uint32(len(dtBytes)), uint32(dtOff))
	}
	entry(tagExifIFDPointer, typeLong, 1, uint32(exifOff))
	write32(0)
	if hasDT {
		buf.Write(dtBytes)
	}

	// Exif sub-IFD
	write16(uint16(exifCount))
	if hasDT {
		entry(tagDateTimeOriginal, typeASCII, uint32(len(dtBytes)), uint32(dtoOff))
	}
	entry(tagPixelXDimension, typeLong, 1, width)
	entry(tagPixelYDimension, typeLong, 1, height)
	write32(0)
	if hasDT {
		buf.Write(dtBytes)
	}

	return buf.Bytes()
}
