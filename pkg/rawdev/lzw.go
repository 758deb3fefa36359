package rawdev

// TIFF-flavor LZW compression for the strip writer. This is the
// "early change" variant: the code width bumps one code sooner than
// classic LZW, so stdlib compress/lzw output is not decodable by TIFF
// readers (and golang.org/x/image/tiff/lzw only decodes), hence our
// own encoder. Codes are packed MSB first.

const(
	lzwClearCode = 256
	lzwEOICode   = 257
	lzwFirstCode = 258
	lzwMaxCode   = 4094 // emit a clear before the table fills
)

type bitWriter struct {
	buf []byte
	acc uint32
	n   uint
}

func (b *bitWriter)write(code uint32, width uint) {
	b.acc = b.acc<<width | code
	b.n += width
	for b.n >= 8 {
		b.buf = append(b.buf, byte(b.acc>>(b.n-8)))
		b.n -= 8
	}
}

func (b *bitWriter)flush() {
	if b.n > 0 {
		b.buf = append(b.buf, byte(b.acc<<(8-b.n)))
		b.n = 0
	}
}

func lzwEncode(src []byte) []byte {
	bw := &bitWriter{buf: make([]byte, 0, len(src)/2+16)}

	width := uint(9)
	next := uint32(lzwFirstCode)
	table := make(map[string]uint32)

	reset := func() {
		width = 9
		next = lzwFirstCode
		table = make(map[string]uint32)
	}

	code := func(s string) uint32 {
		if len(s) == 1 {
			return uint32(s[0])
		}
		return table[s]
	}

	bw.write(lzwClearCode, width)

	omega := ""
	for _, k := range src {
		cand := omega + string(k)
		if len(cand) == 1 {
			omega = cand
			continue
		}
		if _, exists := table[cand]; exists {
			omega = cand
			continue
		}

		bw.write(code(omega), width)
		table[cand] = next
		next++
		if next == 1<<width - 1 { // early change
			width++
		}
		if next >= lzwMaxCode {
			bw.write(lzwClearCode, width)
			reset()
		}

		omega = string(k)
	}

	if omega != "" {
		bw.write(code(omega), width)
	}
	bw.write(lzwEOICode, width)
	bw.flush()

	return bw.buf
}
