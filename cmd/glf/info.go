package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/benthiclabs/glf/pkg/glf"
)

func infoCmd() *cli.Command {
	var (
		showRecords bool
		recordLimit int
		asJSON      bool
	)

	return &cli.Command{
		Name:  "info",
		Usage: "Summarise the contents of a GLF log",
		Flags: append([]cli.Flag{
			fileFlag(),
			&cli.BoolFlag{Name: "records", Usage: "list individual image records", Destination: &showRecords},
			&cli.IntFlag{Name: "records-limit", Usage: "limit record listing (0 = no limit)", Value: 50, Destination: &recordLimit},
			&cli.BoolFlag{Name: "json", Usage: "emit the summary as JSON", Destination: &asJSON},
		}, loggingFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			applyLoggingConfig(c, LoadConfig())
			log := buildLogger()

			doc, err := openDocument(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = doc.Close() }()

			if asJSON {
				return printInfoJSON(doc)
			}

			stat, _ := os.Stat(filePath)
			fmt.Printf("GLF Log: %s\n", filePath)
			if stat != nil {
				fmt.Printf("File: %s (%s)\n", filepath.Base(filePath), formatBytes(uint64(stat.Size())))
			}

			printContainer(doc)
			printDevices(doc)

			if showRecords {
				printRecordList(doc, recordLimit)
			}
			return nil
		},
	}
}

func printInfoJSON(doc *glf.Document) error {
	type summary struct {
		Zipped       bool     `json:"zipped"`
		FrameVersion uint8    `json:"frame_version"`
		RecordCount  uint32   `json:"record_count"`
		StatusCount  uint32   `json:"status_count"`
		DatSize      uint64   `json:"dat_size"`
		Devices      []uint16 `json:"devices"`
	}
	h := doc.Container
	out := summary{
		Zipped:       h.Zipped,
		FrameVersion: h.Version,
		RecordCount:  h.RecordCount,
		StatusCount:  h.StatusCount,
		DatSize:      h.DatSize,
		Devices:      documentDevices(doc),
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printContainer(doc *glf.Document) {
	h := doc.Container
	section("Container")
	row("zipped", fmt.Sprintf("%v", h.Zipped))
	row("frame_version", fmt.Sprintf("%d", h.Version))
	row("image_records", fmt.Sprintf("%d", h.RecordCount))
	row("status_records", fmt.Sprintf("%d", h.StatusCount))
	row("dat_size", formatBytes(h.DatSize))

	if doc.RecordCount() > 0 {
		first, _ := doc.Header(0)
		last, _ := doc.Header(doc.RecordCount() - 1)
		if first != nil && last != nil {
			row("first_record", first.Header.Time().Format("2006-01-02 15:04:05.000"))
			row("last_record", last.Header.Time().Format("2006-01-02 15:04:05.000"))
		}
	}
}

func printDevices(doc *glf.Document) {
	devices := documentDevices(doc)
	if len(devices) == 0 {
		return
	}
	section("Devices")
	for _, dev := range devices {
		count := 0
		var geom string
		for i := 0; i < doc.RecordCount(); i++ {
			rec, err := doc.Header(i)
			if err != nil {
				continue
			}
			if rec.Header.DeviceID != dev {
				continue
			}
			count++
			geom = fmt.Sprintf("%dx%d", rec.Width, rec.Height)
		}
		fmt.Printf("device %-5d records=%-6d geometry=%s\n", dev, count, geom)
	}
}

func printRecordList(doc *glf.Document, limit int) {
	section("Image Records")
	n := doc.RecordCount()
	printed := 0
	for i := 0; i < n; i++ {
		rec, err := doc.Header(i)
		if err != nil {
			continue
		}
		fmt.Printf("%6d  %s dev=%-5d %4dx%-5d %s gain=%d%% speed=%.1fm/s\n",
			i,
			rec.Header.Time().Format("15:04:05.000"),
			rec.Header.DeviceID,
			rec.Width, rec.Height,
			rec.Compression,
			rec.PercentGain,
			rec.SoundSpeed,
		)
		printed++
		if limit > 0 && printed >= limit {
			break
		}
	}
	if limit > 0 && printed < n {
		fmt.Printf("... (%d shown of %d)\n", printed, n)
	}
}

// documentDevices returns the distinct sonar device IDs in first-seen order.
func documentDevices(doc *glf.Document) []uint16 {
	seen := map[uint16]bool{}
	var out []uint16
	for i := 0; i < doc.RecordCount(); i++ {
		rec, err := doc.Header(i)
		if err != nil {
			continue
		}
		if !seen[rec.Header.DeviceID] {
			seen[rec.Header.DeviceID] = true
			out = append(out, rec.Header.DeviceID)
		}
	}
	return out
}

func section(title string) {
	line := strings.Repeat("-", len(title)+8)
	fmt.Printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}

func row(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-24s %s\n", label+":", value)
}

func formatBytes(b uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.2f GiB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MiB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KiB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
