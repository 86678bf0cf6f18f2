package glf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// decodeFunc turns a stored payload region into raw acoustic samples.
// expected is the sample count implied by the record geometry; it sizes
// the output buffer, it does not license truncation or padding.
type decodeFunc func(stored []byte, expected int) ([]byte, error)

// payloadDecoders is the fixed dispatch table over the closed set of
// compression schemes the format defines.
var payloadDecoders = map[CompressionType]decodeFunc{
	CompressionZlib: inflateZlib,
	CompressionRaw:  storeRaw,
	CompressionH264: decodeH264,
}

// extractPayload slices the stored acoustic region for rec out of the
// .dat stream and decodes it. The decoded length must equal the record's
// declared geometry product exactly; anything else is corruption.
func extractPayload(dat []byte, rec *ImageRecord, index int) ([]byte, error) {
	start := rec.DataOffset
	end := start + uint64(rec.DataSize)
	if end < start || end > uint64(len(dat)) {
		return nil, fmt.Errorf("%w: record %d: payload [%d, %d) in %d-byte stream", ErrOutOfBounds, index, start, end, len(dat))
	}
	stored := dat[start:end:end]

	decode, ok := payloadDecoders[rec.Compression]
	if !ok {
		return nil, fmt.Errorf("%w: record %d: unknown compression scheme %d", ErrDecompression, index, uint16(rec.Compression))
	}
	expected := int(rec.Width) * int(rec.Height)
	out, err := decode(stored, expected)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", index, err)
	}
	if len(out) != expected {
		return nil, fmt.Errorf("%w: record %d: decoded %d bytes, geometry %dx%d wants %d",
			ErrSizeMismatch, index, len(out), rec.Width, rec.Height, expected)
	}
	return out, nil
}

// inflateZlib decodes a zlib-framed deflate stream.
func inflateZlib(stored []byte, expected int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(stored))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	defer func() { _ = zr.Close() }()

	out := bytes.NewBuffer(make([]byte, 0, expected))
	if _, err := io.Copy(out, zr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	return out.Bytes(), nil
}

// storeRaw passes an uncompressed payload through unchanged.
func storeRaw(stored []byte, expected int) ([]byte, error) {
	return stored, nil
}

// decodeH264 rejects video-compressed payloads; the scheme is part of
// the format but outside this decoder.
func decodeH264(stored []byte, expected int) ([]byte, error) {
	return nil, fmt.Errorf("%w: h264 payloads are not supported", ErrDecompression)
}
