// Command wprsframed is a minimal demonstration transport: it opens a QUIC
// connection and streams codec.CompressedFrames, each prefixed with a
// 12-byte header of {width, height, payloadLen uint32, big-endian}. It has
// no wire-compatibility or versioning guarantees; it exists to exercise the
// codec end-to-end over a real network stack.
package main

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/wayland-transpositor/wprs/codec"
	"github.com/wayland-transpositor/wprs/internal/wirecert"
	"github.com/wayland-transpositor/wprs/pixel"
	"github.com/wayland-transpositor/wprs/wpool"
	"github.com/wayland-transpositor/wprs/wprslog"
)

const alpn = "wprsframed/1"

const headerSize = 12 // width, height, payloadLen, each uint32 big-endian

func main() {
	mode := flag.String("mode", "", "server or client")
	addr := flag.String("addr", "127.0.0.1:4433", "address to listen on or dial")
	pngPath := flag.String("png", "", "client mode: PNG file to send")
	fingerprint := flag.String("fingerprint", "", "client mode: base64 SHA-256 fingerprint of the server cert printed at startup")
	flag.Parse()

	log := wprslog.New("wprsframed")
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	var err error
	switch *mode {
	case "server":
		err = runServer(ctx, *addr, log)
	case "client":
		if *pngPath == "" || *fingerprint == "" {
			fmt.Fprintln(os.Stderr, "client mode requires -png and -fingerprint (printed by the server at startup)")
			os.Exit(1)
		}
		err = runClient(ctx, *addr, *pngPath, *fingerprint, log)
	default:
		fmt.Fprintln(os.Stderr, "usage: wprsframed -mode=server|client -addr=host:port [-png=file.png] [-fingerprint=base64]")
		os.Exit(1)
	}
	if err != nil {
		log.Error("wprsframed failed", "mode", *mode, "error", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, addr string, log *slog.Logger) error {
	cert, err := wirecert.Generate(14 * 24 * time.Hour)
	if err != nil {
		return fmt.Errorf("generate cert: %w", err)
	}
	log.Info("certificate generated", "fingerprint", cert.FingerprintBase64(), "expires", cert.NotAfter.Format(time.RFC3339))

	tlsConf := wirecert.ServerTLSConfig(cert, alpn)
	listener, err := quic.ListenAddr(addr, tlsConf, nil)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer listener.Close()

	log.Info("wprsframed server listening", "addr", addr)
	pool := wpool.DefaultPool()
	opts := codec.Options{Pool: pool, Logger: log}

	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go handleConn(ctx, conn, opts, log)
	}
}

func handleConn(ctx context.Context, conn *quic.Conn, opts codec.Options, log *slog.Logger) {
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		log.Error("accept stream", "error", err)
		return
	}
	defer stream.Close()

	width, height, payload, err := readFrame(stream)
	if err != nil {
		log.Error("read frame", "error", err)
		return
	}
	n := int(width) * int(height)

	pixels, err := codec.Decode(ctx, payload, n, opts)
	if err != nil {
		log.Error("decode", "error", err)
		return
	}
	log.Info("received frame", "width", width, "height", height, "pixels", len(pixels))
}

func runClient(ctx context.Context, addr, pngPath, fingerprintB64 string, log *slog.Logger) error {
	frame, err := loadPNG(pngPath)
	if err != nil {
		return fmt.Errorf("load PNG: %w", err)
	}

	wantFingerprint, err := base64.StdEncoding.DecodeString(fingerprintB64)
	if err != nil || len(wantFingerprint) != 32 {
		return fmt.Errorf("fingerprint must be a base64-encoded 32-byte SHA-256 digest")
	}
	var fp [32]byte
	copy(fp[:], wantFingerprint)

	tlsConf := wirecert.ClientTLSConfig(fp, alpn)
	conn, err := quic.DialAddr(ctx, addr, tlsConf, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseWithError(0, "")

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	opts := codec.Options{Pool: wpool.DefaultPool(), Logger: log}
	compressed, err := codec.Encode(ctx, frame, opts)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if err := writeFrame(stream, frame.Width, frame.Height, compressed); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	log.Info("sent frame", "width", frame.Width, "height", frame.Height, "compressed_bytes", len(compressed))
	return nil
}

func writeFrame(w io.Writer, width, height uint32, payload []byte) error {
	var header [headerSize]byte
	binary.BigEndian.PutUint32(header[0:4], width)
	binary.BigEndian.PutUint32(header[4:8], height)
	binary.BigEndian.PutUint32(header[8:12], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func readFrame(r io.Reader) (width, height uint32, payload []byte, err error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, 0, nil, err
	}
	width = binary.BigEndian.Uint32(header[0:4])
	height = binary.BigEndian.Uint32(header[4:8])
	payloadLen := binary.BigEndian.Uint32(header[8:12])

	payload = make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, 0, nil, err
	}
	return width, height, payload, nil
}

func loadPNG(path string) (pixel.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return pixel.Frame{}, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return pixel.Frame{}, err
	}
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
	return pixel.Frame{Width: uint32(width), Height: uint32(height), Pixels: pixels}, nil
}
