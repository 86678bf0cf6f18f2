package glf

import "errors"

var (
	// ErrBadMagic means the buffer does not open with a recognised GLF
	// container signature (zip local-file header or bare .dat sync byte).
	ErrBadMagic = errors.New("glf: bad magic")
	// ErrUnsupportedVersion means a frame or image record declares a
	// version outside the supported set.
	ErrUnsupportedVersion = errors.New("glf: unsupported version")
	// ErrTruncatedContainer means a record extent runs past the end of
	// the buffer, or the outer archive is structurally incomplete.
	ErrTruncatedContainer = errors.New("glf: truncated container")
	// ErrMalformedHeader means a record failed a self-consistency check
	// (tag bytes, geometry sanity, unknown record type).
	ErrMalformedHeader = errors.New("glf: malformed record header")
	// ErrIndexOutOfRange means a record index outside [0, RecordCount).
	ErrIndexOutOfRange = errors.New("glf: record index out of range")
	// ErrOutOfBounds means a cursor read or seek past the buffer end.
	ErrOutOfBounds = errors.New("glf: read out of bounds")
	// ErrDecompression means the payload decompressor failed or the
	// record uses a compression scheme this decoder cannot handle.
	ErrDecompression = errors.New("glf: payload decompression failed")
	// ErrSizeMismatch means the decoded payload length does not equal
	// the size implied by the record geometry.
	ErrSizeMismatch = errors.New("glf: decoded payload size mismatch")
	// ErrGeometryMismatch means a payload cannot be laid out as the
	// declared width x height sample grid.
	ErrGeometryMismatch = errors.New("glf: payload does not fit declared geometry")
)
