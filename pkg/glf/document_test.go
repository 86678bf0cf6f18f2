package glf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benthiclabs/glf/internal/glftest"
)

func testLog() ([]glftest.Image, []byte) {
	images := []glftest.Image{
		{Device: 7, Width: 8, Height: 4, Ticks: 100.5, Gain: 40},
		{Device: 7, Width: 8, Height: 4, Ticks: 101.0, Gain: 40},
		{Device: 7, Width: 16, Height: 8, Ticks: 101.5, Gain: 55},
	}
	dat := glftest.Dat(
		images[0],
		glftest.Status{Device: 7, Ticks: 100.7, PSUTemp: 38.25, Shutdown: 1},
		images[1],
		images[2],
	)
	return images, dat
}

func TestOpenZippedLog(t *testing.T) {
	t.Parallel()

	images, dat := testLog()
	path := filepath.Join(t.TempDir(), "dive.glf")
	if err := os.WriteFile(path, glftest.Zip(dat), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = doc.Close() }()

	if !doc.Container.Zipped {
		t.Fatalf("expected zipped container")
	}
	if got := doc.RecordCount(); got != len(images) {
		t.Fatalf("record count: got %d want %d", got, len(images))
	}
	if doc.Container.RecordCount != uint32(len(images)) {
		t.Fatalf("container record count: got %d", doc.Container.RecordCount)
	}
	if doc.StatusCount() != 1 {
		t.Fatalf("status count: got %d", doc.StatusCount())
	}
	if doc.Container.DatSize != uint64(len(dat)) {
		t.Fatalf("dat size: got %d want %d", doc.Container.DatSize, len(dat))
	}

	for i, want := range images {
		rec, err := doc.Header(i)
		if err != nil {
			t.Fatalf("header %d: %v", i, err)
		}
		if rec.Header.DeviceID != want.Device {
			t.Fatalf("record %d device: got %d", i, rec.Header.DeviceID)
		}
		if int(rec.Width) != want.Width || int(rec.Height) != want.Height {
			t.Fatalf("record %d geometry: got %dx%d", i, rec.Width, rec.Height)
		}
		if rec.PercentGain != want.Gain {
			t.Fatalf("record %d gain: got %d", i, rec.PercentGain)
		}
		if rec.Compression != CompressionZlib {
			t.Fatalf("record %d compression: got %s", i, rec.Compression)
		}
		if len(rec.BearingTable) != want.Width {
			t.Fatalf("record %d bearing table: got %d entries", i, len(rec.BearingTable))
		}

		img, err := doc.ExtractImage(i)
		if err != nil {
			t.Fatalf("extract %d: %v", i, err)
		}
		if img.Width != want.Width || img.Height != want.Height {
			t.Fatalf("image %d geometry: got %dx%d", i, img.Width, img.Height)
		}
		if !bytes.Equal(img.Pix, want.RawSamples()) {
			t.Fatalf("image %d pixels differ from source samples", i)
		}
	}
}

func TestOpenBareDat(t *testing.T) {
	t.Parallel()

	_, dat := testLog()
	doc, err := Parse(dat)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Container.Zipped {
		t.Fatalf("bare stream reported as zipped")
	}
	if doc.RecordCount() != 3 || doc.StatusCount() != 1 {
		t.Fatalf("counts: %d records, %d statuses", doc.RecordCount(), doc.StatusCount())
	}
}

func TestHeadersDeterministic(t *testing.T) {
	t.Parallel()

	_, dat := testLog()
	doc, err := Parse(dat)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	first, err := doc.Header(1)
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	again, err := doc.Header(1)
	if err != nil {
		t.Fatalf("header again: %v", err)
	}
	if first != again {
		t.Fatalf("Header must return the same parsed record")
	}
	if first.Header.Ticks != 101.0 {
		t.Fatalf("ticks: got %v", first.Header.Ticks)
	}
	want := time.Date(1980, 1, 1, 0, 1, 41, 0, time.UTC)
	if !first.Header.Time().Equal(want) {
		t.Fatalf("time: got %v want %v", first.Header.Time(), want)
	}
}

func TestOffsetTableWithinBounds(t *testing.T) {
	t.Parallel()

	_, dat := testLog()
	doc, err := Parse(dat)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var prev uint64
	for i := 0; i < doc.RecordCount(); i++ {
		entry, err := doc.Offset(i)
		if err != nil {
			t.Fatalf("offset %d: %v", i, err)
		}
		if entry.Start < prev {
			t.Fatalf("offset %d not monotonic: %d after %d", i, entry.Start, prev)
		}
		if entry.Start+entry.Length > uint64(len(dat)) {
			t.Fatalf("offset %d extent [%d, %d) exceeds %d", i, entry.Start, entry.Start+entry.Length, len(dat))
		}
		prev = entry.Start
	}
}

func TestIndexBoundaries(t *testing.T) {
	t.Parallel()

	_, dat := testLog()
	doc, err := Parse(dat)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	n := doc.RecordCount()
	if _, err := doc.Header(n - 1); err != nil {
		t.Fatalf("header %d: %v", n-1, err)
	}
	if _, err := doc.Header(n); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("header %d: got %v", n, err)
	}
	if _, err := doc.Header(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("header -1: got %v", err)
	}
	if _, err := doc.ExtractImage(n); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("extract %d: got %v", n, err)
	}
	if _, err := doc.Status(doc.StatusCount()); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("status: got %v", err)
	}
}

func TestBadMagic(t *testing.T) {
	t.Parallel()

	_, dat := testLog()
	zipped := glftest.Zip(dat)
	zipped[0] = 'Q'
	if _, err := Parse(zipped); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("corrupt zip magic: got %v", err)
	}
	if _, err := Parse([]byte("not a sonar log at all")); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("garbage: got %v", err)
	}
}

func TestTruncatedStream(t *testing.T) {
	t.Parallel()

	_, dat := testLog()
	cut := dat[:len(dat)-10]
	if _, err := Parse(cut); !errors.Is(err, ErrTruncatedContainer) {
		t.Fatalf("truncated stream: got %v", err)
	}
}

func TestUnsupportedFrameVersion(t *testing.T) {
	t.Parallel()

	_, dat := testLog()
	mod := bytes.Clone(dat)
	mod[1] = 9
	if _, err := Parse(mod); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("frame version 9: got %v", err)
	}
}

func TestMidstreamSyncCorruption(t *testing.T) {
	t.Parallel()

	_, dat := testLog()
	doc, err := Parse(dat)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	first, err := doc.Offset(0)
	if err != nil {
		t.Fatalf("offset: %v", err)
	}
	mod := bytes.Clone(dat)
	mod[first.Start+first.Length] = '!'
	if _, err := Parse(mod); !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("mid-stream sync corruption: got %v", err)
	}
}

func TestCorruptEndTag(t *testing.T) {
	t.Parallel()

	dat := glftest.Dat(glftest.Image{Device: 1, Width: 4, Height: 4, Compression: 1})
	dat[len(dat)-1] = 0
	if _, err := Parse(dat); !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("corrupt end tag: got %v", err)
	}
}

func TestUnknownRecordTypes(t *testing.T) {
	t.Parallel()

	// Documented-but-uninterpreted types are skipped over.
	dat := glftest.Dat(
		glftest.Image{Device: 1, Width: 4, Height: 2},
		glftest.Raw{Type: 99, Device: 1, Body: []byte("opaque payload")},
		glftest.Image{Device: 1, Width: 4, Height: 2},
	)
	doc, err := Parse(dat)
	if err != nil {
		t.Fatalf("parse with generic record: %v", err)
	}
	if doc.RecordCount() != 2 {
		t.Fatalf("record count: got %d", doc.RecordCount())
	}

	// A type outside the documented set is corruption.
	bad := glftest.Dat(
		glftest.Image{Device: 1, Width: 4, Height: 2},
		glftest.Raw{Type: 50, Device: 1, Body: []byte("junk")},
	)
	if _, err := Parse(bad); !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("undocumented type: got %v", err)
	}
}

func TestStatusRecordFields(t *testing.T) {
	t.Parallel()

	_, dat := testLog()
	doc, err := Parse(dat)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	st, err := doc.Status(0)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.DeviceID != 7 {
		t.Fatalf("device: got %d", st.DeviceID)
	}
	if st.PSUTemp != 38.25 {
		t.Fatalf("psu temp: got %v", st.PSUTemp)
	}
	if st.ShutdownStatus != 1 {
		t.Fatalf("shutdown status: got %d", st.ShutdownStatus)
	}
	if !st.NetAdapterFound {
		t.Fatalf("net adapter flag lost")
	}
	if st.MACAddress != [6]byte{0, 1, 2, 3, 4, 5} {
		t.Fatalf("mac: got %v", st.MACAddress)
	}
}

func TestSizeMismatch(t *testing.T) {
	t.Parallel()

	// Declared 4x4 grid, zlib payload inflating to 10 bytes.
	dat := glftest.Dat(glftest.Image{
		Device:  1,
		Width:   4,
		Height:  4,
		Samples: make([]byte, 10),
	})
	doc, err := Parse(dat)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := doc.ExtractImage(0); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("short payload: got %v", err)
	}
}

func TestCorruptZlibStream(t *testing.T) {
	t.Parallel()

	dat := glftest.Dat(glftest.Image{
		Device: 1,
		Width:  4,
		Height: 4,
		Stored: []byte{0xDE, 0xAD, 0xBE, 0xEF},
	})
	doc, err := Parse(dat)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := doc.ExtractImage(0); !errors.Is(err, ErrDecompression) {
		t.Fatalf("corrupt stream: got %v", err)
	}
}

func TestH264Rejected(t *testing.T) {
	t.Parallel()

	dat := glftest.Dat(glftest.Image{Device: 1, Width: 4, Height: 4, Compression: 2})
	doc, err := Parse(dat)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := doc.ExtractImage(0); !errors.Is(err, ErrDecompression) {
		t.Fatalf("h264 payload: got %v", err)
	}
}

func TestPreV3CompressionInference(t *testing.T) {
	t.Parallel()

	samples := make([]byte, 32)
	for i := range samples {
		samples[i] = byte(255 - i)
	}

	// Raw: stored size matches geometry.
	raw := glftest.Dat(glftest.Image{
		Device: 1, Width: 8, Height: 4, ImageVersion: 2, Samples: samples,
	})
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse raw: %v", err)
	}
	rec, _ := doc.Header(0)
	if rec.Compression != CompressionRaw {
		t.Fatalf("raw record compression: got %s", rec.Compression)
	}
	img, err := doc.ExtractImage(0)
	if err != nil {
		t.Fatalf("extract raw: %v", err)
	}
	if !bytes.Equal(img.Pix, samples) {
		t.Fatalf("raw pixels differ")
	}

	// Deflated: stored size disagrees with geometry, implying zlib.
	packed := glftest.Dat(glftest.Image{
		Device: 1, Width: 8, Height: 4, ImageVersion: 2,
		Samples: samples, Stored: glftest.Deflate(samples),
	})
	doc, err = Parse(packed)
	if err != nil {
		t.Fatalf("parse packed: %v", err)
	}
	rec, _ = doc.Header(0)
	if rec.Compression != CompressionZlib {
		t.Fatalf("packed record compression: got %s", rec.Compression)
	}
	img, err = doc.ExtractImage(0)
	if err != nil {
		t.Fatalf("extract packed: %v", err)
	}
	if !bytes.Equal(img.Pix, samples) {
		t.Fatalf("packed pixels differ")
	}
}

func TestExtractImageForDevice(t *testing.T) {
	t.Parallel()

	dat := glftest.Dat(
		glftest.Image{Device: 7, Width: 4, Height: 2, Ticks: 1},
		glftest.Image{Device: 9, Width: 4, Height: 2, Ticks: 2},
		glftest.Image{Device: 7, Width: 4, Height: 2, Ticks: 3},
		glftest.Image{Device: 9, Width: 4, Height: 2, Ticks: 4},
		glftest.Image{Device: 7, Width: 4, Height: 2, Ticks: 5},
	)
	doc, err := Parse(dat)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	img, next, err := doc.ExtractImageForDevice(0, 9)
	if err != nil {
		t.Fatalf("device walk: %v", err)
	}
	if img.Record.Header.Ticks != 2 {
		t.Fatalf("wrong record extracted: ticks %v", img.Record.Header.Ticks)
	}
	if next != 3 {
		t.Fatalf("next index: got %d", next)
	}

	// The last record for a device has no successor.
	if _, _, err := doc.ExtractImageForDevice(next+1, 9); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("exhausted device: got %v", err)
	}
}

func TestConcurrentExtraction(t *testing.T) {
	t.Parallel()

	_, dat := testLog()
	doc, err := Parse(dat)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	done := make(chan error, 8)
	for g := 0; g < 8; g++ {
		go func() {
			for i := 0; i < doc.RecordCount(); i++ {
				if _, err := doc.ExtractImage(i); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}()
	}
	for g := 0; g < 8; g++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent extract: %v", err)
		}
	}
}
