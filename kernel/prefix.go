package kernel

import "golang.org/x/sys/cpu"

// wideBlock is the batch size the "wide" code path processes at once. It is
// a power of two so the Hillis-Steele doubling scan below terminates in
// log2(wideBlock) passes: shift-and-add within a block, then carry the
// block's final byte into the next block via a running scalar accumulator.
const wideBlock = 32

// wideAvailable gates the block-processing path on AVX2 being present. Both
// code paths below are plain Go (no assembly): AVX2 presence only picks
// which loop shape runs, and both shapes must produce byte-identical output
// for every input (see prefix_test.go).
var wideAvailable = cpu.X86.HasAVX2

// PrefixDiff returns the wrapping adjacent difference of x: y[0]=x[0],
// y[i]=x[i]-x[i-1]. x is not modified.
func PrefixDiff(x []byte) []byte {
	y := make([]byte, len(x))
	copy(y, x)
	PrefixDiffInPlace(y)
	return y
}

// PrefixSum returns the wrapping additive prefix sum of y, the exact
// inverse of PrefixDiff. y is not modified.
func PrefixSum(y []byte) []byte {
	x := make([]byte, len(y))
	copy(x, y)
	PrefixSumInPlace(x)
	return x
}

// PrefixDiffInPlace overwrites x with its wrapping adjacent difference.
func PrefixDiffInPlace(x []byte) {
	if wideAvailable && len(x) > wideBlock {
		prefixDiffWide(x)
		return
	}
	prefixDiffScalar(x)
}

// PrefixSumInPlace overwrites x with its wrapping additive prefix sum, the
// exact inverse of PrefixDiffInPlace.
func PrefixSumInPlace(x []byte) {
	if wideAvailable && len(x) > wideBlock {
		prefixSumWide(x)
		return
	}
	prefixSumScalar(x)
}

// prefixDiffScalar computes the adjacent difference right-to-left so that
// x[i-1] is still the original value when x[i] is overwritten.
func prefixDiffScalar(x []byte) {
	for i := len(x) - 1; i >= 1; i-- {
		x[i] -= x[i-1]
	}
}

// prefixSumScalar computes the additive prefix sum left-to-right; x[i-1]
// has already become the running sum by the time x[i] reads it, which is
// exactly the recurrence x[i] = x[i-1] + y[i].
func prefixSumScalar(x []byte) {
	for i := 1; i < len(x); i++ {
		x[i] += x[i-1]
	}
}

// prefixDiffWide processes x in wideBlock-sized batches. Each batch is
// snapshotted so within-batch differences can be computed out of the
// original order (no right-to-left constraint needed once the batch is
// copied), then the running carry links batches together exactly as
// prefixDiffScalar's sequential version does.
func prefixDiffWide(x []byte) {
	var buf [wideBlock]byte
	var carry byte
	n := len(x)
	i := 0
	for ; i+wideBlock <= n; i += wideBlock {
		block := x[i : i+wideBlock]
		copy(buf[:], block)
		block[0] = buf[0] - carry
		for j := 1; j < wideBlock; j++ {
			block[j] = buf[j] - buf[j-1]
		}
		carry = buf[wideBlock-1]
	}
	tail := x[i:]
	for k := len(tail) - 1; k >= 1; k-- {
		tail[k] -= tail[k-1]
	}
	if len(tail) > 0 {
		tail[0] -= carry
	}
}

// prefixSumWide processes x in wideBlock-sized batches using a Hillis-Steele
// inclusive scan (doubling strides of byte-indexed adds rather than register
// shifts, since this path is plain Go), followed by adding the running carry
// from the previous batch and updating the carry to the batch's final value.
func prefixSumWide(x []byte) {
	var carry byte
	n := len(x)
	i := 0
	for ; i+wideBlock <= n; i += wideBlock {
		block := x[i : i+wideBlock]
		for shift := 1; shift < wideBlock; shift <<= 1 {
			for j := wideBlock - 1; j >= shift; j-- {
				block[j] += block[j-shift]
			}
		}
		for j := 0; j < wideBlock; j++ {
			block[j] += carry
		}
		carry = block[wideBlock-1]
	}
	for ; i < n; i++ {
		x[i] += carry
		carry = x[i]
	}
}
