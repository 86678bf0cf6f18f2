package glf

import (
	"fmt"
	"time"
)

const (
	// frameSync opens every record in the .dat stream.
	frameSync = '*'
	// frameHeaderSize is the fixed on-disk size of a FrameHeader,
	// including two trailing spare bytes.
	frameHeaderSize = 21
	// maxFrameVersion is the newest frame layout this decoder reads.
	maxFrameVersion = 3
)

// RecordType identifies the payload carried by one .dat frame.
type RecordType uint8

const (
	RecordImage       RecordType = 0
	RecordV4Protocol  RecordType = 1
	RecordAnalogVideo RecordType = 2
	RecordStatus      RecordType = 3
	RecordRawSerial   RecordType = 98
	RecordGeneric     RecordType = 99
)

func (t RecordType) String() string {
	switch t {
	case RecordImage:
		return "image"
	case RecordV4Protocol:
		return "v4-protocol"
	case RecordAnalogVideo:
		return "analog-video"
	case RecordStatus:
		return "status"
	case RecordRawSerial:
		return "raw-serial"
	case RecordGeneric:
		return "generic"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

func (t RecordType) known() bool {
	switch t {
	case RecordImage, RecordV4Protocol, RecordAnalogVideo, RecordStatus, RecordRawSerial, RecordGeneric:
		return true
	default:
		return false
	}
}

// FrameHeader is the fixed 21-byte header in front of every record.
// Timestamps stay as raw ticks here; calendar conversion happens on
// demand so parsing has no timezone dependency.
type FrameHeader struct {
	Version       uint8
	PayloadLength uint32 // bytes following the header
	Ticks         float64
	Type          RecordType
	DeviceID      uint16
	NodeID        uint16
}

// Time returns the capture timestamp in UTC.
func (h FrameHeader) Time() time.Time { return TickTime(h.Ticks) }

// TimeIn returns the capture timestamp in the given location.
func (h FrameHeader) TimeIn(loc *time.Location) time.Time { return TickTimeIn(h.Ticks, loc) }

func (h FrameHeader) String() string {
	return fmt.Sprintf("(%s len=%d device=%d node=%d %s)", h.Type, h.PayloadLength, h.DeviceID, h.NodeID, h.Time().Format(time.RFC3339))
}

// parseFrameHeader decodes one frame header at the cursor position. The
// on-disk length field counts the header itself; PayloadLength is stored
// net of it.
func parseFrameHeader(c *Cursor) (FrameHeader, error) {
	start := c.Pos()
	var h FrameHeader

	sync, err := c.U8()
	if err != nil {
		return h, err
	}
	if sync != frameSync {
		return h, fmt.Errorf("%w: frame sync byte 0x%02x at offset %d", ErrBadMagic, sync, start)
	}
	if h.Version, err = c.U8(); err != nil {
		return h, err
	}
	if h.Version > maxFrameVersion {
		return h, fmt.Errorf("%w: frame version %d at offset %d", ErrUnsupportedVersion, h.Version, start)
	}
	rawLen, err := c.U32()
	if err != nil {
		return h, err
	}
	if rawLen < frameHeaderSize {
		return h, fmt.Errorf("%w: frame length %d shorter than header at offset %d", ErrMalformedHeader, rawLen, start)
	}
	h.PayloadLength = rawLen - frameHeaderSize
	if h.Ticks, err = c.F64(); err != nil {
		return h, err
	}
	typ, err := c.U8()
	if err != nil {
		return h, err
	}
	h.Type = RecordType(typ)
	if h.DeviceID, err = c.U16(); err != nil {
		return h, err
	}
	if h.NodeID, err = c.U16(); err != nil {
		return h, err
	}
	// Two spare bytes pad the header to 21.
	if err := c.Seek(start + frameHeaderSize); err != nil {
		return h, err
	}
	return h, nil
}
