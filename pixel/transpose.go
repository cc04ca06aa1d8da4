package pixel

// transposeBlock is the number of pixels processed per unrolled batch.
const transposeBlock = 32

// Deinterleave splits an array-of-structures pixel slice into four
// struct-of-arrays byte planes, one per channel, each of length N. It is a
// pure byte permutation: no arithmetic, no reduction, and its output is
// exactly inverted by Interleave.
func Deinterleave(pixels []Pixel) (b, g, r, a []byte) {
	n := len(pixels)
	b = make([]byte, n)
	g = make([]byte, n)
	r = make([]byte, n)
	a = make([]byte, n)
	deinterleaveInto(pixels, b, g, r, a)
	return b, g, r, a
}

// DeinterleaveInto is the allocation-free counterpart of Deinterleave: b, g,
// r, a must each have length len(pixels). The codec fuses this permutation
// with decorrelation in its own encode loop; this entry point is for callers
// that want a plain transpose with no residual arithmetic.
func DeinterleaveInto(pixels []Pixel, b, g, r, a []byte) {
	deinterleaveInto(pixels, b, g, r, a)
}

func deinterleaveInto(pixels []Pixel, b, g, r, a []byte) {
	n := len(pixels)
	i := 0
	for ; i+transposeBlock <= n; i += transposeBlock {
		for j := 0; j < transposeBlock; j++ {
			p := pixels[i+j]
			b[i+j] = p.B
			g[i+j] = p.G
			r[i+j] = p.R
			a[i+j] = p.A
		}
	}
	for ; i < n; i++ {
		p := pixels[i]
		b[i] = p.B
		g[i] = p.G
		r[i] = p.R
		a[i] = p.A
	}
}

// Interleave recombines four equal-length channel planes into an
// array-of-structures pixel slice. The exact inverse of Deinterleave.
func Interleave(b, g, r, a []byte) []Pixel {
	n := len(b)
	pixels := make([]Pixel, n)
	InterleaveInto(b, g, r, a, pixels)
	return pixels
}

// InterleaveInto is the allocation-free counterpart of Interleave: pixels
// must have length len(b).
func InterleaveInto(b, g, r, a []byte, pixels []Pixel) {
	n := len(b)
	i := 0
	for ; i+transposeBlock <= n; i += transposeBlock {
		for j := 0; j < transposeBlock; j++ {
			pixels[i+j] = Pixel{B: b[i+j], G: g[i+j], R: r[i+j], A: a[i+j]}
		}
	}
	for ; i < n; i++ {
		pixels[i] = Pixel{B: b[i], G: g[i], R: r[i], A: a[i]}
	}
}
