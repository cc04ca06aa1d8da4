// Command wprsbench exercises the codec over a corpus of PNGs, reporting
// per-frame throughput and compression ratio. Flag-parsed, no subcommands,
// one directory argument.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/wayland-transpositor/wprs/codec"
	"github.com/wayland-transpositor/wprs/pixel"
	"github.com/wayland-transpositor/wprs/wpool"
	"github.com/wayland-transpositor/wprs/wprslog"
)

func main() {
	dir := flag.String("dir", "testdata", "directory of PNG files to benchmark")
	level := flag.Int("level", codec.DefaultZstdLevel, "zstd compression level")
	repeat := flag.Int("repeat", 10, "encode/decode repetitions per file")
	flag.Parse()

	log := wprslog.New("wprsbench")
	slog.SetDefault(log)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Error("read directory", "dir", *dir, "error", err)
		os.Exit(1)
	}

	pool := wpool.DefaultPool()
	opts := codec.Options{Level: *level, Pool: pool, Logger: log}

	var anyRun bool
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".png" {
			continue
		}
		path := filepath.Join(*dir, entry.Name())
		frame, err := loadPNGFrame(path)
		if err != nil {
			log.Error("load PNG", "path", path, "error", err)
			continue
		}
		anyRun = true
		if err := benchmarkFile(context.Background(), path, frame, opts, *repeat); err != nil {
			log.Error("benchmark failed", "path", path, "error", err)
		}
	}
	if !anyRun {
		fmt.Fprintf(os.Stderr, "no .png files found in %s\n", *dir)
		os.Exit(1)
	}
}

func loadPNGFrame(path string) (pixel.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return pixel.Frame{}, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return pixel.Frame{}, err
	}
	return frameFromImage(img), nil
}

func frameFromImage(img image.Image) pixel.Frame {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]pixel.Pixel, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			pixels = append(pixels, pixel.Pixel{
				B: byte(b >> 8),
				G: byte(g >> 8),
				R: byte(r >> 8),
				A: byte(a >> 8),
			})
		}
	}
	return pixel.Frame{Width: uint32(width), Height: uint32(height), Pixels: pixels}
}

func benchmarkFile(ctx context.Context, path string, frame pixel.Frame, opts codec.Options, repeat int) error {
	rawBytes := frame.N() * 4
	var encodeTotal, decodeTotal time.Duration
	var compressedLen int

	for i := 0; i < repeat; i++ {
		start := time.Now()
		compressed, err := codec.Encode(ctx, frame, opts)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		encodeTotal += time.Since(start)
		compressedLen = len(compressed)

		start = time.Now()
		pixels, err := codec.Decode(ctx, compressed, frame.N(), opts)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		decodeTotal += time.Since(start)

		for j := range frame.Pixels {
			if pixels[j] != frame.Pixels[j] {
				return fmt.Errorf("round-trip mismatch at pixel %d", j)
			}
		}
	}

	ratio := float64(rawBytes) / float64(compressedLen)
	fmt.Printf("%-40s %dx%-4d raw=%8d bytes compressed=%8d bytes ratio=%5.2fx encode=%8s decode=%8s\n",
		filepath.Base(path), frame.Width, frame.Height, rawBytes, compressedLen, ratio,
		(encodeTotal / time.Duration(repeat)).Round(time.Microsecond),
		(decodeTotal / time.Duration(repeat)).Round(time.Microsecond),
	)
	return nil
}
