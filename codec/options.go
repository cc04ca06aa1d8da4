package codec

import (
	"log/slog"

	"github.com/wayland-transpositor/wprs/wpool"
	"github.com/wayland-transpositor/wprs/wprslog"
)

// DefaultZstdLevel is the default low single-digit zstd compression level.
const DefaultZstdLevel = 3

// Options configures an Encode/Decode call. The zero value is valid: it
// allocates plane buffers fresh, logs nowhere, and compresses at
// DefaultZstdLevel.
type Options struct {
	// Level is the zstd compression level. Zero means DefaultZstdLevel.
	Level int
	// Pool supplies reusable plane buffers. Nil means allocate fresh.
	Pool *wpool.Pool
	// Logger receives per-worker diagnostics. Nil means discard.
	Logger *slog.Logger
}

func (o Options) level() int {
	if o.Level == 0 {
		return DefaultZstdLevel
	}
	return o.Level
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return wprslog.Discard()
	}
	return o.Logger
}

func (o Options) pool() *wpool.Pool {
	return o.Pool // nil is valid: wpool.Pool methods accept a nil receiver.
}
