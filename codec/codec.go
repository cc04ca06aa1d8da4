// Package codec implements the four-stage lossless image codec: AoS→SoA
// transpose fused with per-pixel YUV-like decorrelation, wrapping
// prefix-diff, and an outer zstd layer, parallelized one worker per channel
// inside a wpool.Scope. It is the orchestration layer; the byte kernels live
// in package kernel and the transpose in package pixel.
package codec

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wayland-transpositor/wprs/bufview"
	"github.com/wayland-transpositor/wprs/kernel"
	"github.com/wayland-transpositor/wprs/pixel"
	"github.com/wayland-transpositor/wprs/wpool"
)

// CompressedFrame is a zstd stream wrapping exactly 4*N plaintext bytes,
// Y‖U‖V‖A, with no per-plane length prefix. N travels out-of-band (it is the
// n parameter to Decode).
type CompressedFrame []byte

const numChannels = 4

// Encode turns frame into its compressed wire representation. Every stage is
// total byte arithmetic, so a structurally valid frame fails to encode only
// when ctx is already canceled or a channel worker reports an error; those
// errors are returned wrapped, not as *EncodeError.
func Encode(ctx context.Context, frame pixel.Frame, opts Options) (CompressedFrame, error) {
	if err := frame.Validate(); err != nil {
		return nil, &EncodeError{Kind: InvalidFrame, Detail: err.Error()}
	}
	log := opts.logger()
	n := frame.N()
	pool := opts.pool()

	yPlane := pool.GetPlane(n)
	uPlane := pool.GetPlane(n)
	vPlane := pool.GetPlane(n)
	aPlane := pool.GetPlane(n)

	src := bufview.NewSliceView(frame.Pixels)

	if ctx.Err() != nil {
		return nil, fmt.Errorf("codec: encode: %w", ctx.Err())
	}

	scope := wpool.NewScope(ctx)
	pool.Go(scope, func() error { return encodeChannel(src, yPlane, channelY, log) })
	pool.Go(scope, func() error { return encodeChannel(src, uPlane, channelU, log) })
	pool.Go(scope, func() error { return encodeChannel(src, vPlane, channelV, log) })
	pool.Go(scope, func() error { return encodeChannel(src, aPlane, channelA, log) })
	if err := scope.Wait(); err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}

	payload := make([]byte, 0, numChannels*n)
	payload = append(payload, yPlane...)
	payload = append(payload, uPlane...)
	payload = append(payload, vPlane...)
	payload = append(payload, aPlane...)

	pool.PutPlane(yPlane)
	pool.PutPlane(uPlane)
	pool.PutPlane(vPlane)
	pool.PutPlane(aPlane)

	compressed, err := compressConcat(opts.level(), payload)
	if err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}
	return CompressedFrame(compressed), nil
}

type channelKind int

const (
	channelY channelKind = iota
	channelU
	channelV
	channelA
)

func (c channelKind) String() string {
	return [...]string{"Y", "U", "V", "A"}[c]
}

// encodeChannel writes one plane: the transpose and the decorrelation
// residual are fused into a single pass over the shared source view, then
// the plane is wrapping-prefix-diffed in place.
func encodeChannel(src bufview.View[pixel.Pixel], plane []byte, which channelKind, log *slog.Logger) (err error) {
	defer func() {
		if err != nil {
			log.Error("channel worker failed", "channel", which.String(), "error", err)
		}
	}()
	pixels, err := src.Slice()
	if err != nil {
		return err
	}
	switch which {
	case channelY:
		for i, p := range pixels {
			plane[i] = p.G
		}
	case channelU:
		for i, p := range pixels {
			plane[i] = p.B - p.G
		}
	case channelV:
		for i, p := range pixels {
			plane[i] = p.R - p.G
		}
	case channelA:
		for i, p := range pixels {
			plane[i] = p.A
		}
	}
	kernel.PrefixDiffInPlace(plane)
	return nil
}

// Decode reverses Encode exactly, given the known pixel count n (the caller
// already knows width and height from the surrounding protocol message and
// is responsible for wrapping the returned pixels into a pixel.Frame of that
// shape). Payload and worker failures are typed *DecodeError values; a ctx
// that is already canceled yields the context's error, wrapped.
func Decode(ctx context.Context, data []byte, n int, opts Options) ([]pixel.Pixel, error) {
	if ctx.Err() != nil {
		return nil, fmt.Errorf("codec: decode: %w", ctx.Err())
	}
	plaintext, err := decompressExact(data, numChannels*n)
	if err != nil {
		return nil, err
	}

	yPlane := plaintext[0*n : 1*n]
	uPlane := plaintext[1*n : 2*n]
	vPlane := plaintext[2*n : 3*n]
	aPlane := plaintext[3*n : 4*n]

	log := opts.logger()
	pool := opts.pool()

	// Stage 1: every plane is an independent wrapping prefix sum — no
	// cross-channel dependency yet, so all four run in one scope.
	sumScope := wpool.NewScope(ctx)
	planes := [numChannels][]byte{yPlane, uPlane, vPlane, aPlane}
	kinds := [numChannels]channelKind{channelY, channelU, channelV, channelA}
	for i := range planes {
		plane, which := planes[i], kinds[i]
		pool.Go(sumScope, func() (err error) {
			defer func() {
				if err != nil {
					log.Error("prefix-sum worker failed", "channel", which.String(), "error", err)
				}
			}()
			kernel.PrefixSumInPlace(plane)
			return nil
		})
	}
	if err := sumScope.Wait(); err != nil {
		return nil, &DecodeError{Kind: Parallelism, Detail: "prefix-sum stage", Cause: err}
	}

	// Stage 2: Y is now final (it's g), so B and R can be recovered from
	// their residuals against it. Y and A need no further work.
	recombineScope := wpool.NewScope(ctx)
	pool.Go(recombineScope, func() (err error) {
		defer func() {
			if err != nil {
				log.Error("recombine worker failed", "error", err)
			}
		}()
		kernel.RecorrelateInPlace(uPlane, yPlane, vPlane)
		return nil
	})
	if err := recombineScope.Wait(); err != nil {
		return nil, &DecodeError{Kind: Parallelism, Detail: "recombine stage", Cause: err}
	}

	return pixel.Interleave(uPlane, yPlane, vPlane, aPlane), nil
}
