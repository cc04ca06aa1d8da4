package pixel

import (
	"math/rand/v2"
	"testing"
)

func randomPixels(n int, rng *rand.Rand) []Pixel {
	ps := make([]Pixel, n)
	for i := range ps {
		ps[i] = Pixel{
			B: byte(rng.IntN(256)),
			G: byte(rng.IntN(256)),
			R: byte(rng.IntN(256)),
			A: byte(rng.IntN(256)),
		}
	}
	return ps
}

// TestTransposeInvolution checks spec.md §8 property 4 across sizes that
// straddle the 32-pixel block boundary (0, 1, block-1, block, block+1, and
// a couple of larger multi-block sizes).
func TestTransposeInvolution(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(1, 2))
	sizes := []int{0, 1, transposeBlock - 1, transposeBlock, transposeBlock + 1, 100, 4096}
	for _, n := range sizes {
		ps := randomPixels(n, rng)
		b, g, r, a := Deinterleave(ps)
		if len(b) != n || len(g) != n || len(r) != n || len(a) != n {
			t.Fatalf("n=%d: plane lengths %d %d %d %d", n, len(b), len(g), len(r), len(a))
		}
		got := Interleave(b, g, r, a)
		if len(got) != n {
			t.Fatalf("n=%d: Interleave returned %d pixels", n, len(got))
		}
		for i := range ps {
			if got[i] != ps[i] {
				t.Fatalf("n=%d: pixel %d: got %+v, want %+v", n, i, got[i], ps[i])
			}
		}
	}
}

// TestDeinterleavePermutesBytes checks that the transpose reshuffles bytes
// without modifying any of them — the byte multiset is unchanged.
func TestDeinterleavePermutesBytes(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(7, 9))
	ps := randomPixels(257, rng)

	var wantCounts, gotCounts [256]int
	for _, p := range ps {
		wantCounts[p.B]++
		wantCounts[p.G]++
		wantCounts[p.R]++
		wantCounts[p.A]++
	}
	b, g, r, a := Deinterleave(ps)
	for _, plane := range [][]byte{b, g, r, a} {
		for _, v := range plane {
			gotCounts[v]++
		}
	}
	if wantCounts != gotCounts {
		t.Fatal("deinterleave changed the multiset of bytes")
	}
}

func TestInterleaveIntoAllocationFree(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(3, 4))
	ps := randomPixels(65, rng)
	b, g, r, a := Deinterleave(ps)

	out := make([]Pixel, len(ps))
	InterleaveInto(b, g, r, a, out)
	for i := range ps {
		if out[i] != ps[i] {
			t.Fatalf("pixel %d: got %+v, want %+v", i, out[i], ps[i])
		}
	}
}

func TestS1SolidColourPlanes(t *testing.T) {
	t.Parallel()
	const side = 4
	ps := make([]Pixel, side*side)
	for i := range ps {
		ps[i] = Pixel{B: 0x80, G: 0x80, R: 0x80, A: 0xFF}
	}
	b, g, r, a := Deinterleave(ps)
	for i := 0; i < len(ps); i++ {
		if b[i] != 0x80 || g[i] != 0x80 || r[i] != 0x80 || a[i] != 0xFF {
			t.Fatalf("pixel %d: planes %02x %02x %02x %02x", i, b[i], g[i], r[i], a[i])
		}
	}
}

func TestS2HorizontalGradientPlane(t *testing.T) {
	t.Parallel()
	const w = 16
	ps := make([]Pixel, w)
	for i := range ps {
		ps[i] = Pixel{B: 0, G: byte(i), R: 0, A: 255}
	}
	_, g, _, _ := Deinterleave(ps)
	for i := 0; i < w; i++ {
		if g[i] != byte(i) {
			t.Fatalf("green[%d] = %d, want %d", i, g[i], i)
		}
	}
}
