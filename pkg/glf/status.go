package glf

import "fmt"

// statusRecordSize is the fixed on-disk size of a status record body.
const statusRecordSize = 218

// StatusRecord reports how the sonar was performing when a sweep was
// captured: board temperatures, link statistics and addressing. Shutdown
// status codes: 0 over-temperature, 1 out of water, 2 out-of-water
// indicator.
type StatusRecord struct {
	Header FrameHeader

	BFVersion  uint16
	DAVersion  uint16
	Flags      uint16
	DeviceID   uint16
	XDSelected uint8

	// MK2 board temperatures, degrees C.
	FPGATemp       float64
	HSCTemp        float64
	DAFPGATemp     float64
	TransducerTemp float64
	PSUTemp        float64
	DieTemp        float64
	TxTemp         float64

	// Analog front end temperatures, top and bottom per AFE.
	AFETopTemp [4]float64
	AFEBotTemp [4]float64

	LinkType           uint16
	UplinkSpeed        float64
	DownlinkSpeed      float64
	LinkQuality        uint16
	PacketCount        uint32
	RecvErrorCount     uint32
	ResentPacketCount  uint32
	DroppedPacketCount uint32
	UnknownPacketCount uint32
	LostLineCount      uint32
	GeneralCount       uint32

	SonarAltIP uint32
	SurfaceIP  uint32
	SubnetMask [4]byte
	MACAddress [6]byte

	BootRegister    uint32
	BootRegisterDA  uint32
	FPGATime        uint64
	DIPSwitch       uint16
	ShutdownStatus  uint16
	NetAdapterFound bool
}

// parseStatusRecord decodes a status record body. The cursor must sit
// just past the frame header.
func parseStatusRecord(h FrameHeader, c *Cursor, index int) (*StatusRecord, error) {
	rec := &StatusRecord{Header: h}
	start := c.Pos()

	if c.Remaining() < statusRecordSize {
		return nil, fmt.Errorf("%w: status record %d needs %d bytes, %d left", ErrOutOfBounds, index, statusRecordSize, c.Remaining())
	}

	var err error
	if rec.BFVersion, err = c.U16(); err != nil {
		return nil, err
	}
	if rec.DAVersion, err = c.U16(); err != nil {
		return nil, err
	}
	if rec.Flags, err = c.U16(); err != nil {
		return nil, err
	}
	if rec.DeviceID, err = c.U16(); err != nil {
		return nil, err
	}
	if rec.XDSelected, err = c.U8(); err != nil {
		return nil, err
	}
	// One spare byte after the selector.
	if err = c.Seek(start + 10); err != nil {
		return nil, err
	}

	if rec.FPGATemp, err = c.F64(); err != nil {
		return nil, err
	}
	if rec.HSCTemp, err = c.F64(); err != nil {
		return nil, err
	}
	if rec.DAFPGATemp, err = c.F64(); err != nil {
		return nil, err
	}
	if rec.TransducerTemp, err = c.F64(); err != nil {
		return nil, err
	}
	if rec.PSUTemp, err = c.F64(); err != nil {
		return nil, err
	}
	if rec.DieTemp, err = c.F64(); err != nil {
		return nil, err
	}
	if rec.TxTemp, err = c.F64(); err != nil {
		return nil, err
	}
	for i := range rec.AFETopTemp {
		if rec.AFETopTemp[i], err = c.F64(); err != nil {
			return nil, err
		}
		if rec.AFEBotTemp[i], err = c.F64(); err != nil {
			return nil, err
		}
	}

	if rec.LinkType, err = c.U16(); err != nil {
		return nil, err
	}
	if rec.UplinkSpeed, err = c.F64(); err != nil {
		return nil, err
	}
	if rec.DownlinkSpeed, err = c.F64(); err != nil {
		return nil, err
	}
	if rec.LinkQuality, err = c.U16(); err != nil {
		return nil, err
	}
	if rec.PacketCount, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.RecvErrorCount, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.ResentPacketCount, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.DroppedPacketCount, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.UnknownPacketCount, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.LostLineCount, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.GeneralCount, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.SonarAltIP, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.SurfaceIP, err = c.U32(); err != nil {
		return nil, err
	}
	mask, err := c.Bytes(4)
	if err != nil {
		return nil, err
	}
	copy(rec.SubnetMask[:], mask)
	mac, err := c.Bytes(6)
	if err != nil {
		return nil, err
	}
	copy(rec.MACAddress[:], mac)

	if rec.BootRegister, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.BootRegisterDA, err = c.U32(); err != nil {
		return nil, err
	}
	if rec.FPGATime, err = c.U64(); err != nil {
		return nil, err
	}
	if rec.DIPSwitch, err = c.U16(); err != nil {
		return nil, err
	}
	if rec.ShutdownStatus, err = c.U16(); err != nil {
		return nil, err
	}
	adap, err := c.U8()
	if err != nil {
		return nil, err
	}
	rec.NetAdapterFound = adap != 0
	// One spare byte closes the record.
	if err = c.Seek(start + statusRecordSize); err != nil {
		return nil, err
	}
	return rec, nil
}
