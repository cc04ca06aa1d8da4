package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// levelToEncoderLevel maps a low-single-digit zstd numeric level onto
// klauspost/compress/zstd's named speed presets, since the library's
// streaming/one-shot encoder is configured by EncoderLevel rather than a raw
// integer.
func levelToEncoderLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 1:
		return zstd.SpeedFastest
	case level <= 3:
		return zstd.SpeedDefault
	case level <= 9:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// compressConcat zstd-compresses the concatenated Y‖U‖V‖A payload.
func compressConcat(level int, payload []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(levelToEncoderLevel(level)))
	if err != nil {
		return nil, fmt.Errorf("codec: construct zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(payload, make([]byte, 0, len(payload))), nil
}

// decompressExact zstd-decompresses data and requires the result to be
// exactly wantLen bytes.
func decompressExact(data []byte, wantLen int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, &DecodeError{Kind: Format, Detail: "construct zstd decoder", Cause: err}
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, make([]byte, 0, wantLen))
	if err != nil {
		return nil, &DecodeError{Kind: Format, Detail: "zstd decompression failed", Cause: err}
	}
	if len(out) != wantLen {
		return nil, &DecodeError{
			Kind:   Format,
			Detail: fmt.Sprintf("decompressed payload is %d bytes, want %d", len(out), wantLen),
		}
	}
	return out, nil
}
