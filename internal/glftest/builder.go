// Package glftest assembles synthetic GLF byte streams so decoder,
// renderer and API tests can construct inputs without fixture files.
package glftest

import (
	"archive/zip"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
)

const frameHeaderSize = 21

// Record is one synthetic .dat frame.
type Record interface {
	frame() (typ uint8, device uint16, ticks float64, body []byte)
}

// Image describes one synthetic image record.
type Image struct {
	Device uint16
	Width  int
	Height int
	Ticks  float64
	Gain   uint16

	// ImageVersion defaults to 3 (explicit compression word).
	ImageVersion uint16
	// Compression is the scheme word written for version-3 records:
	// 0 zlib, 1 raw, 2 h264.
	Compression uint16
	// Samples are the raw acoustic bytes; nil means a deterministic
	// ramp of Width*Height values.
	Samples []byte
	// Stored overrides the stored payload bytes entirely, bypassing
	// compression, for corruption tests.
	Stored []byte
}

func (im Image) frame() (uint8, uint16, float64, []byte) {
	return 0, im.Device, im.Ticks, im.body()
}

// RawSamples returns the acoustic bytes the record was built from.
func (im Image) RawSamples() []byte {
	if im.Samples != nil {
		return im.Samples
	}
	s := make([]byte, im.Width*im.Height)
	for i := range s {
		s[i] = byte(i)
	}
	return s
}

func (im Image) body() []byte {
	version := im.ImageVersion
	if version == 0 {
		version = 3
	}
	samples := im.RawSamples()
	stored := im.Stored
	if stored == nil {
		switch {
		case version == 3 && im.Compression == 0:
			stored = Deflate(samples)
		default:
			stored = samples
		}
	}

	var b []byte
	b = le16(b, 1)      // record tag
	b = le16(b, 0xEFEF) // version tag
	b = le16(b, version)
	b = le32(b, 0)                 // range start
	b = le32(b, uint32(im.Height)) // range end
	b = le16(b, 0)                 // range compression
	b = le32(b, 100)               // bearing start
	b = le32(b, 100+uint32(im.Width))
	if version == 3 {
		b = le16(b, im.Compression)
	}
	b = le32(b, uint32(len(stored)))
	b = append(b, stored...)
	for i := 0; i < im.Width; i++ {
		b = f64(b, -0.5+float64(i)/float64(im.Width))
	}
	b = le32(b, 0)        // state flags
	b = le32(b, 720000)   // modulation frequency
	b = f32(b, 120.0)     // beamform aperture
	b = f64(b, im.Ticks)  // tx ticks
	b = le16(b, 0)        // ping flags
	b = f32(b, 1490.5)    // sound speed
	b = le16(b, im.Gain)  // percent gain
	b = append(b, 1)      // chirp
	b = append(b, 2)      // sonar type
	b = append(b, 0)      // platform
	b = append(b, 0)      // pad
	b = le16(b, 0xDEDE)   // end tag
	return b
}

// Status describes one synthetic status record.
type Status struct {
	Device   uint16
	Ticks    float64
	PSUTemp  float64
	Shutdown uint16
}

func (st Status) frame() (uint8, uint16, float64, []byte) {
	var b []byte
	b = le16(b, 0x0102) // bf version
	b = le16(b, 0x0304) // da version
	b = le16(b, 0)      // flags
	b = le16(b, st.Device)
	b = append(b, 1, 0) // xd selected + spare
	for i := 0; i < 4; i++ {
		b = f64(b, 30.0+float64(i))
	}
	b = f64(b, st.PSUTemp)
	b = f64(b, 41.0) // die temp
	b = f64(b, 42.0) // tx temp
	for i := 0; i < 8; i++ {
		b = f64(b, 20.0+float64(i))
	}
	b = le16(b, 1)         // link type
	b = f64(b, 1e8)        // uplink
	b = f64(b, 1e8)        // downlink
	b = le16(b, 97)        // link quality
	b = le32(b, 1000)      // packet count
	b = le32(b, 2)         // recv errors
	b = le32(b, 3)         // resent
	b = le32(b, 4)         // dropped
	b = le32(b, 0)         // unknown
	b = le32(b, 0)         // lost lines
	b = le32(b, 1009)      // general count
	b = le32(b, 0x0100a8c0) // alt ip
	b = le32(b, 0x0200a8c0) // surface ip
	b = append(b, 255, 255, 255, 0)          // subnet mask
	b = append(b, 0, 1, 2, 3, 4, 5)          // mac
	b = le32(b, 0)                           // boot register
	b = le32(b, 0)                           // boot register da
	b = append(b, make([]byte, 8)...)        // fpga time
	b = le16(b, 0)                           // dip switch
	b = le16(b, st.Shutdown)
	b = append(b, 1, 0) // net adapter + spare
	return 3, st.Device, st.Ticks, b
}

// Raw describes a frame of an arbitrary record type with an opaque body,
// for exercising the skip path and type validation.
type Raw struct {
	Type   uint8
	Device uint16
	Ticks  float64
	Body   []byte
}

func (r Raw) frame() (uint8, uint16, float64, []byte) {
	return r.Type, r.Device, r.Ticks, r.Body
}

// Dat lays the given records out as a .dat stream.
func Dat(recs ...Record) []byte {
	var out []byte
	for _, r := range recs {
		typ, device, ticks, body := r.frame()
		out = append(out, '*', 2)
		out = le32(out, uint32(frameHeaderSize+len(body)))
		out = f64(out, ticks)
		out = append(out, typ)
		out = le16(out, device)
		out = le16(out, 0xABCD) // node id
		out = append(out, 0, 0) // spare
		out = append(out, body...)
	}
	return out
}

// Zip wraps a .dat stream in the outer GLF archive layout.
func Zip(dat []byte) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range []struct {
		name string
		data []byte
	}{
		{"log.cfg", []byte("cfg")},
		{"log.dat", dat},
		{"log.xml", []byte("<log/>")},
	} {
		w, err := zw.Create(entry.name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write(entry.data); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Deflate wraps raw in a zlib stream, the way image payloads are stored.
func Deflate(raw []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func le16(b []byte, v uint16) []byte { return binary.LittleEndian.AppendUint16(b, v) }
func le32(b []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(b, v) }
func f32(b []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
}
func f64(b []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
}
