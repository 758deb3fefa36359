package rawdev

// Commit a developed Intermediate to disk as a 16-bit TIFF: row
// strips, predictor-free LZW, camera make/model and a minimal EXIF
// block in the directory. This is the one file format the core emits
// itself; everything else is downstream's business.

import(
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

const(
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagMake            = 271
	tagModel           = 272
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagPredictor       = 317
	tagExifIFD         = 34665

	tagExifVersion     = 36864

	typeShort     = 3
	typeLong      = 4
	typeASCII     = 2
	typeUndefined = 7

	compressionLZW = 5
	photometricGray = 1
	photometricRGB  = 2
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte // raw little-endian value bytes
}

func shortEntry(tag uint16, vals ...uint16) ifdEntry {
	b := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(b[i*2:], v)
	}
	return ifdEntry{tag:tag, typ:typeShort, count:uint32(len(vals)), value:b}
}

func longEntry(tag uint16, vals ...uint32) ifdEntry {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[i*4:], v)
	}
	return ifdEntry{tag:tag, typ:typeLong, count:uint32(len(vals)), value:b}
}

func asciiEntry(tag uint16, s string) ifdEntry {
	b := append([]byte(s), 0)
	return ifdEntry{tag:tag, typ:typeASCII, count:uint32(len(b)), value:b}
}

// buildIFD lays out one directory at ifdOff, spilling values wider
// than 4 bytes into the area right after it. Returns the serialized
// bytes (directory + overflow).
func buildIFD(entries []ifdEntry, ifdOff uint32, next uint32) []byte {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	dirSize := uint32(2 + 12*len(entries) + 4)
	overflowOff := ifdOff + dirSize

	dir := make([]byte, 0, dirSize)
	overflow := []byte{}

	dir = binary.LittleEndian.AppendUint16(dir, uint16(len(entries)))
	for _, e := range entries {
		dir = binary.LittleEndian.AppendUint16(dir, e.tag)
		dir = binary.LittleEndian.AppendUint16(dir, e.typ)
		dir = binary.LittleEndian.AppendUint32(dir, e.count)

		if len(e.value) <= 4 {
			v := [4]byte{}
			copy(v[:], e.value)
			dir = append(dir, v[:]...)
		} else {
			if (overflowOff+uint32(len(overflow)))%2 == 1 {
				overflow = append(overflow, 0) // keep values word aligned
			}
			dir = binary.LittleEndian.AppendUint32(dir, overflowOff+uint32(len(overflow)))
			overflow = append(overflow, e.value...)
		}
	}
	dir = binary.LittleEndian.AppendUint32(dir, next)

	return append(dir, overflow...)
}

// WriteTIFF emits the Intermediate as a little-endian TIFF. The
// sensor supplies make/model for the directory.
func WriteTIFF(w io.Writer, im Intermediate, s *SensorImage) error {
	data, spp := im.Samples()
	if data == nil {
		return fmt.Errorf("tiff: empty intermediate")
	}
	width, height := im.Dim()

	photometric := uint16(photometricRGB)
	if spp == 1 {
		photometric = photometricGray
	}

	// Scale float samples to u16, row-major
	raw := make([]byte, len(data)*2)
	for i, v := range data {
		x := v * 65535
		switch {
		case x < 0:     x = 0
		case x > 65535: x = 65535
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(x+0.5))
	}

	// Strip the rows so readers don't need the whole image in one gulp
	rowBytes := width * spp * 2
	rowsPerStrip := 1
	if rowBytes > 0 {
		rowsPerStrip = (64*1024 + rowBytes - 1) / rowBytes
	}
	if rowsPerStrip < 1 {
		rowsPerStrip = 1
	}
	if rowsPerStrip > height {
		rowsPerStrip = height
	}

	strips := [][]byte{}
	for y:=0; y<height; y+=rowsPerStrip {
		yEnd := y + rowsPerStrip
		if yEnd > height {
			yEnd = height
		}
		strips = append(strips, lzwEncode(raw[y*rowBytes : yEnd*rowBytes]))
	}

	stripOffsets := make([]uint32, len(strips))
	stripCounts := make([]uint32, len(strips))
	off := uint32(8)
	for i, strip := range strips {
		stripOffsets[i] = off
		stripCounts[i] = uint32(len(strip))
		off += uint32(len(strip))
	}
	if off%2 == 1 {
		off++ // pad so the IFDs start word aligned
	}

	exifOff := off
	exifIFD := buildIFD([]ifdEntry{
		{tag:tagExifVersion, typ:typeUndefined, count:4, value:[]byte("0220")},
	}, exifOff, 0)

	rootOff := exifOff + uint32(len(exifIFD))

	bits := make([]uint16, spp)
	for i := range bits {
		bits[i] = 16
	}

	entries := []ifdEntry{
		longEntry(tagImageWidth, uint32(width)),
		longEntry(tagImageLength, uint32(height)),
		shortEntry(tagBitsPerSample, bits...),
		shortEntry(tagCompression, compressionLZW),
		shortEntry(tagPhotometric, photometric),
		longEntry(tagStripOffsets, stripOffsets...),
		shortEntry(tagSamplesPerPixel, uint16(spp)),
		longEntry(tagRowsPerStrip, uint32(rowsPerStrip)),
		longEntry(tagStripByteCounts, stripCounts...),
		shortEntry(tagPredictor, 1),
		longEntry(tagExifIFD, exifOff),
	}
	if s != nil && s.Make != "" {
		entries = append(entries, asciiEntry(tagMake, s.Make))
	}
	if s != nil && s.Model != "" {
		entries = append(entries, asciiEntry(tagModel, s.Model))
	}

	rootIFD := buildIFD(entries, rootOff, 0)

	// header: II, magic, offset of IFD0
	header := make([]byte, 8)
	header[0], header[1] = 'I', 'I'
	binary.LittleEndian.PutUint16(header[2:], 42)
	binary.LittleEndian.PutUint32(header[4:], rootOff)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("tiff header: %v", err)
	}
	written := uint32(8)
	for _, strip := range strips {
		if _, err := w.Write(strip); err != nil {
			return fmt.Errorf("tiff strip: %v", err)
		}
		written += uint32(len(strip))
	}
	for written < exifOff {
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
		written++
	}
	if _, err := w.Write(exifIFD); err != nil {
		return fmt.Errorf("tiff exif ifd: %v", err)
	}
	if _, err := w.Write(rootIFD); err != nil {
		return fmt.Errorf("tiff ifd: %v", err)
	}

	return nil
}
