// Package glf decodes Tritech GLF sonar log files: the outer container,
// the per-sweep record metadata and the compressed acoustic payloads,
// reconstructed into renderable intensity grids.
//
// A Document is immutable after Open and safe for concurrent read-only
// use; extraction re-reads the backing buffer on every call and returns
// buffers owned by the caller.
package glf

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Document is a fully opened GLF log: the validated container, the
// record offset table and every record header, parsed eagerly. Open
// fails on the first structural problem; a partially valid Document is
// never returned.
type Document struct {
	Container ContainerHeader

	offsets  []OffsetEntry
	records  []*ImageRecord
	statuses []*StatusRecord
	dat      []byte
	mapped   []byte // original mmap region, nil when heap-backed
}

// Open maps a GLF file read-only and parses it. If mmap is unavailable
// the file is read into memory instead. The returned document must be
// closed to release any mapping.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: file size %d", ErrTruncatedContainer, size64)
	}
	size := int(size64)

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		doc, parseErr := parseDocument(data, data)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return doc, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parseDocument(data, nil)
}

// Parse opens a GLF container already resident in memory. The document
// keeps buf (or, for zipped containers, the extracted stream) for its
// lifetime; callers must not mutate it.
func Parse(buf []byte) (*Document, error) {
	return parseDocument(buf, nil)
}

func parseDocument(buf, mapped []byte) (*Document, error) {
	ctr, err := parseContainer(buf)
	if err != nil {
		return nil, err
	}
	if ctr.Header.Zipped && mapped != nil {
		// The .dat stream was inflated onto the heap; the mapping
		// backs nothing the document retains.
		_ = unix.Munmap(mapped)
		mapped = nil
	}
	return &Document{
		Container: ctr.Header,
		offsets:   ctr.Offsets,
		records:   ctr.Records,
		statuses:  ctr.Statuses,
		dat:       ctr.dat,
		mapped:    mapped,
	}, nil
}

// Close releases any mapping backing the document.
func (d *Document) Close() error {
	if d == nil {
		return nil
	}
	var err error
	if d.mapped != nil {
		err = unix.Munmap(d.mapped)
		d.mapped = nil
	}
	d.dat = nil
	d.offsets = nil
	d.records = nil
	d.statuses = nil
	return err
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

// RecordCount returns the number of image records.
func (d *Document) RecordCount() int { return len(d.records) }

// StatusCount returns the number of status records.
func (d *Document) StatusCount() int { return len(d.statuses) }

// Header returns the parsed metadata for image record i.
func (d *Document) Header(i int) (*ImageRecord, error) {
	if i < 0 || i >= len(d.records) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(d.records))
	}
	return d.records[i], nil
}

// Offset returns the offset-table entry for image record i.
func (d *Document) Offset(i int) (OffsetEntry, error) {
	if i < 0 || i >= len(d.offsets) {
		return OffsetEntry{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(d.offsets))
	}
	return d.offsets[i], nil
}

// Status returns status record i.
func (d *Document) Status(i int) (*StatusRecord, error) {
	if i < 0 || i >= len(d.statuses) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(d.statuses))
	}
	return d.statuses[i], nil
}

// ExtractImage decodes image record i into a freshly allocated pixel
// buffer using the default linear greyscale mapping. Nothing is cached;
// every call re-reads and re-decodes the stored payload.
func (d *Document) ExtractImage(i int) (*SonarImage, error) {
	return d.ExtractImageMapped(i, nil)
}

// ExtractImageMapped decodes image record i, mapping each sample through
// m. A nil map is the identity greyscale transform.
func (d *Document) ExtractImageMapped(i int, m IntensityMap) (*SonarImage, error) {
	rec, err := d.Header(i)
	if err != nil {
		return nil, err
	}
	payload, err := extractPayload(d.dat, rec, i)
	if err != nil {
		return nil, err
	}
	return buildImage(payload, rec, m, i)
}

// ExtractImageForDevice scans forward from index start for the next
// image record captured by deviceID, decodes it and returns the index of
// the following record for the same device, for walking one head of a
// multiplexed log. ErrIndexOutOfRange is returned when no further record
// for the device exists.
func (d *Document) ExtractImageForDevice(start int, deviceID uint16) (*SonarImage, int, error) {
	i := start
	if i < 0 {
		return nil, 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(d.records))
	}
	for ; i < len(d.records); i++ {
		if d.records[i].Header.DeviceID == deviceID {
			break
		}
	}
	if i >= len(d.records) {
		return nil, 0, fmt.Errorf("%w: no record for device %d at or after %d", ErrIndexOutOfRange, deviceID, start)
	}
	next := i + 1
	for ; next < len(d.records); next++ {
		if d.records[next].Header.DeviceID == deviceID {
			break
		}
	}
	if next >= len(d.records) {
		return nil, 0, fmt.Errorf("%w: no further record for device %d after %d", ErrIndexOutOfRange, deviceID, i)
	}
	img, err := d.ExtractImage(i)
	if err != nil {
		return nil, 0, err
	}
	return img, next, nil
}
