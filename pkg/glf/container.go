package glf

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// zipMagic opens the outer GLF container, which is a zip archive holding
// a .cfg, a .dat and an .xml entry. Only the .dat stream matters here.
var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// ContainerHeader summarises the validated top-level structure of a file.
type ContainerHeader struct {
	// Zipped reports whether the outer zip container was present; a
	// bare .dat stream is also accepted.
	Zipped bool
	// Version is the frame version of the first record in the stream.
	Version uint8
	// RecordCount is the number of image records in the offset table.
	RecordCount uint32
	// StatusCount is the number of status records in the stream.
	StatusCount uint32
	// DatSize is the byte length of the .dat stream.
	DatSize uint64
}

// OffsetEntry locates one image record's full extent, frame header
// included, within the .dat stream.
type OffsetEntry struct {
	Start  uint64
	Length uint64
}

// container is the result of the open-time walk: the validated header,
// the offset table and the eagerly parsed records, all index-aligned.
type container struct {
	Header   ContainerHeader
	Offsets  []OffsetEntry
	Records  []*ImageRecord
	Statuses []*StatusRecord
	dat      []byte
}

// parseContainer validates the outer structure of buf, resolves the .dat
// stream and walks every record in it. Corruption surfaces here, at open
// time, never during later extraction.
func parseContainer(buf []byte) (*container, error) {
	if len(buf) < len(zipMagic) {
		return nil, fmt.Errorf("%w: %d-byte buffer", ErrTruncatedContainer, len(buf))
	}

	var (
		dat    []byte
		zipped bool
		err    error
	)
	switch {
	case bytes.HasPrefix(buf, zipMagic):
		zipped = true
		if dat, err = unzipDat(buf); err != nil {
			return nil, err
		}
	case buf[0] == frameSync:
		dat = buf
	default:
		return nil, fmt.Errorf("%w: leading bytes % x", ErrBadMagic, buf[:4])
	}

	ctr := &container{dat: dat}
	ctr.Header.Zipped = zipped
	ctr.Header.DatSize = uint64(len(dat))
	if err := ctr.walk(); err != nil {
		return nil, err
	}
	ctr.Header.RecordCount = uint32(len(ctr.Records))
	ctr.Header.StatusCount = uint32(len(ctr.Statuses))
	return ctr, nil
}

// unzipDat pulls the .dat entry out of the outer archive.
func unzipDat(buf []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("%w: outer archive: %v", ErrTruncatedContainer, err)
	}
	for _, f := range zr.File {
		if !strings.Contains(f.Name, "dat") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrTruncatedContainer, f.Name, err)
		}
		dat, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrTruncatedContainer, f.Name, err)
		}
		return dat, nil
	}
	return nil, fmt.Errorf("%w: archive has no .dat entry", ErrTruncatedContainer)
}

// walk scans the .dat stream record by record, building the offset table
// and parsing image and status records eagerly. Record types the decoder
// does not interpret are skipped over via the declared frame length.
func (ctr *container) walk() error {
	c := NewCursor(ctr.dat)
	index := 0
	for c.Remaining() > 2 {
		start := c.Pos()
		h, err := parseFrameHeader(c)
		if err != nil {
			if index == 0 && errors.Is(err, ErrBadMagic) {
				// A bad first sync byte means this is not a
				// GLF stream at all.
				return err
			}
			return wrapTruncated(index, err)
		}
		if index == 0 {
			ctr.Header.Version = h.Version
		}
		if !h.Type.known() {
			return fmt.Errorf("%w: record %d: unknown record type %d", ErrMalformedHeader, index, uint8(h.Type))
		}

		switch h.Type {
		case RecordImage:
			rec, err := parseImageRecord(h, c, index)
			if err != nil {
				return wrapTruncated(index, err)
			}
			ctr.Offsets = append(ctr.Offsets, OffsetEntry{
				Start:  uint64(start),
				Length: uint64(rec.RecordSize),
			})
			ctr.Records = append(ctr.Records, rec)
		case RecordStatus:
			rec, err := parseStatusRecord(h, c, index)
			if err != nil {
				return wrapTruncated(index, err)
			}
			ctr.Statuses = append(ctr.Statuses, rec)
		default:
			if err := c.Skip(int(h.PayloadLength)); err != nil {
				return wrapTruncated(index, err)
			}
		}
		index++
	}
	return nil
}

// wrapTruncated converts cursor overruns into the container-level
// truncation error; header self-consistency failures pass through.
func wrapTruncated(index int, err error) error {
	if errors.Is(err, ErrOutOfBounds) {
		return fmt.Errorf("%w: record %d: %v", ErrTruncatedContainer, index, err)
	}
	if errors.Is(err, ErrBadMagic) {
		// A lost sync byte mid-stream is record corruption, not a
		// foreign file.
		return fmt.Errorf("%w: record %d: %v", ErrMalformedHeader, index, err)
	}
	return err
}
