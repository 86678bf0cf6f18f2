package glf

import (
	"fmt"
	"time"
)

const (
	imageRecordTag  = 1
	imageVersionTag = 0xEFEF
	imageEndTag     = 0xDEDE

	// maxImageVersion is the newest image record layout this decoder
	// reads; version 3 added the explicit compression word.
	maxImageVersion = 3

	// Sanity bounds on declared geometry. The widest production heads
	// form 1024 beams; range spans run to a few thousand lines.
	maxBeamSpan  = 4096
	maxRangeSpan = 65536
)

// CompressionType is the closed set of payload storage schemes the file
// format defines.
type CompressionType uint16

const (
	CompressionZlib CompressionType = 0
	CompressionRaw  CompressionType = 1
	CompressionH264 CompressionType = 2
)

func (t CompressionType) String() string {
	switch t {
	case CompressionZlib:
		return "zlib"
	case CompressionRaw:
		return "raw"
	case CompressionH264:
		return "h264"
	default:
		return fmt.Sprintf("compression(%d)", uint16(t))
	}
}

// ImageRecord is the parsed metadata for one sonar sweep. The acoustic
// payload itself is not held here; DataOffset and DataSize locate it in
// the document's backing buffer and ExtractImage decodes it on demand.
// Range and bearing fields keep their raw on-disk values; width is the
// bearing span and height the range span, one byte per sample.
type ImageRecord struct {
	Header FrameHeader

	Version      uint16
	ImageVersion uint16

	RangeStart       uint32
	RangeEnd         uint32
	RangeCompression uint16
	BearingStart     uint32
	BearingEnd       uint32

	Compression CompressionType
	DataOffset  uint64
	DataSize    uint32

	// BearingTable holds one beam bearing in radians per image column.
	BearingTable []float64

	StateFlags          uint32
	ModulationFrequency uint32
	BeamFormAperture    float32
	TxTicks             float64
	PingFlags           uint16
	SoundSpeed          float32
	PercentGain         uint16
	Chirp               uint8
	SonarType           uint8
	Platform            uint8

	// RecordSize is the full on-disk extent including the frame header.
	RecordSize uint32

	Width  uint32
	Height uint32
}

// TxTime returns the transmission timestamp in UTC.
func (r *ImageRecord) TxTime() time.Time { return TickTime(r.TxTicks) }

// parseImageRecord decodes an image record body. The cursor must sit just
// past the frame header; on success it sits just past the end tag.
func parseImageRecord(h FrameHeader, c *Cursor, index int) (*ImageRecord, error) {
	rec := &ImageRecord{Header: h}
	start := c.Pos() - frameHeaderSize

	fail := func(format string, args ...any) (*ImageRecord, error) {
		msg := fmt.Sprintf(format, args...)
		return nil, fmt.Errorf("%w: record %d: %s", ErrMalformedHeader, index, msg)
	}

	rtype, err := c.U16()
	if err != nil {
		return nil, err
	}
	if rtype != imageRecordTag {
		return fail("record tag 0x%04x", rtype)
	}
	if rec.Version, err = c.U16(); err != nil {
		return nil, err
	}
	if rec.Version != imageVersionTag {
		return fail("version tag 0x%04x", rec.Version)
	}
	if rec.ImageVersion, err = c.U16(); err != nil {
		return nil, err
	}
	if rec.ImageVersion > maxImageVersion {
		return nil, fmt.Errorf("%w: record %d: image version %d", ErrUnsupportedVersion, index, rec.ImageVersion)
	}
	if rec.RangeStart, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.RangeEnd, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.RangeCompression, err = c.U16(); err != nil {
		return nil, err
	}
	if rec.BearingStart, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.BearingEnd, err = c.U32(); err != nil {
		return nil, err
	}

	if rec.BearingEnd <= rec.BearingStart || rec.BearingEnd-rec.BearingStart > maxBeamSpan {
		return fail("bearing span [%d, %d)", rec.BearingStart, rec.BearingEnd)
	}
	if rec.RangeEnd <= rec.RangeStart || rec.RangeEnd-rec.RangeStart > maxRangeSpan {
		return fail("range span [%d, %d)", rec.RangeStart, rec.RangeEnd)
	}
	rec.Width = rec.BearingEnd - rec.BearingStart
	rec.Height = rec.RangeEnd - rec.RangeStart

	// Image version 3 stores the compression scheme explicitly. Older
	// layouts leave it implied: raw unless the payload size disagrees
	// with the geometry, which means a zlib stream.
	rec.Compression = CompressionRaw
	if rec.ImageVersion == maxImageVersion {
		comp, err := c.U16()
		if err != nil {
			return nil, err
		}
		rec.Compression = CompressionType(comp)
	}

	if rec.DataSize, err = c.U32(); err != nil {
		return nil, err
	}
	rec.DataOffset = uint64(c.Pos())
	if err := c.Skip(int(rec.DataSize)); err != nil {
		return nil, err
	}

	if rec.ImageVersion != maxImageVersion && rec.DataSize != rec.Width*rec.Height {
		rec.Compression = CompressionZlib
	}

	rec.BearingTable = make([]float64, rec.Width)
	for i := range rec.BearingTable {
		if rec.BearingTable[i], err = c.F64(); err != nil {
			return nil, err
		}
	}

	if rec.StateFlags, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.ModulationFrequency, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.BeamFormAperture, err = c.F32(); err != nil {
		return nil, err
	}
	if rec.TxTicks, err = c.F64(); err != nil {
		return nil, err
	}
	if rec.PingFlags, err = c.U16(); err != nil {
		return nil, err
	}
	if rec.SoundSpeed, err = c.F32(); err != nil {
		return nil, err
	}
	if rec.PercentGain, err = c.U16(); err != nil {
		return nil, err
	}
	if rec.Chirp, err = c.U8(); err != nil {
		return nil, err
	}
	if rec.SonarType, err = c.U8(); err != nil {
		return nil, err
	}
	if rec.Platform, err = c.U8(); err != nil {
		return nil, err
	}
	// One pad byte before the end tag.
	if err := c.Skip(1); err != nil {
		return nil, err
	}
	endTag, err := c.U16()
	if err != nil {
		return nil, err
	}
	if endTag != imageEndTag {
		return fail("end tag 0x%04x", endTag)
	}

	rec.RecordSize = uint32(c.Pos() - start)
	return rec, nil
}
