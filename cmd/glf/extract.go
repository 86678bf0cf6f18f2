package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/benthiclabs/glf/internal/render"
	"github.com/benthiclabs/glf/pkg/glf"
)

func extractCmd() *cli.Command {
	var (
		outDir      string
		paletteName string
		format      string
		index       int
		deviceID    int
		minLevel    int
		maxLevel    int
	)

	return &cli.Command{
		Name:  "extract",
		Usage: "Extract sonar sweeps from a GLF log as images",
		Flags: append([]cli.Flag{
			fileFlag(),
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output directory",
				Value:       ".",
				Destination: &outDir,
			},
			&cli.StringFlag{
				Name:        "palette",
				Usage:       "colour palette (greyscale, amber)",
				Value:       "greyscale",
				Destination: &paletteName,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "image format (png, jpg)",
				Value:       "png",
				Destination: &format,
			},
			&cli.IntFlag{
				Name:        "index",
				Aliases:     []string{"i"},
				Usage:       "extract a single record by index (-1 = all)",
				Value:       -1,
				Destination: &index,
			},
			&cli.IntFlag{
				Name:        "device",
				Aliases:     []string{"d"},
				Usage:       "only extract records from this sonar device (-1 = all)",
				Value:       -1,
				Destination: &deviceID,
			},
			&cli.IntFlag{
				Name:        "min",
				Usage:       "intensity mapped to black",
				Value:       0,
				Destination: &minLevel,
			},
			&cli.IntFlag{
				Name:        "max",
				Usage:       "intensity mapped to full scale",
				Value:       255,
				Destination: &maxLevel,
			},
		}, loggingFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			cfg := LoadConfig()
			applyLoggingConfig(c, cfg)
			applyExtractConfig(c, cfg, &outDir, &paletteName)
			log := buildLogger()

			palette, err := render.Lookup(paletteName)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if format != "png" && format != "jpg" && format != "jpeg" {
				return cli.Exit(fmt.Sprintf("error: unknown image format %q", format), 1)
			}
			if minLevel < 0 || maxLevel > 255 || minLevel >= maxLevel {
				return cli.Exit("error: contrast window must satisfy 0 <= min < max <= 255", 1)
			}

			doc, err := openDocument(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = doc.Close() }()

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return cli.Exit(fmt.Sprintf("error: create output dir: %v", err), 1)
			}

			var m glf.IntensityMap
			if minLevel != 0 || maxLevel != 255 {
				m = glf.LinearMap(uint8(minLevel), uint8(maxLevel))
			}

			written, skipped := 0, 0
			for i := 0; i < doc.RecordCount(); i++ {
				if index >= 0 && i != index {
					continue
				}
				rec, err := doc.Header(i)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				if deviceID >= 0 && rec.Header.DeviceID != uint16(deviceID) {
					continue
				}

				img, err := doc.ExtractImageMapped(i, m)
				if err != nil {
					// A corrupt sweep should not abort the rest of the log.
					if errors.Is(err, glf.ErrDecompression) ||
						errors.Is(err, glf.ErrSizeMismatch) ||
						errors.Is(err, glf.ErrGeometryMismatch) {
						log.Warn("skipping corrupt record", "index", i, "error", err)
						skipped++
						continue
					}
					return cli.Exit(fmt.Sprintf("error: extract record %d: %v", i, err), 1)
				}

				name := fmt.Sprintf("%s_dev%d_%06d.%s", baseName(filePath), rec.Header.DeviceID, i, format)
				path := filepath.Join(outDir, name)
				if err := render.WriteFile(path, img, palette); err != nil {
					return cli.Exit(fmt.Sprintf("error: write %s: %v", path, err), 1)
				}
				log.Debug("wrote image", "path", path, "width", img.Width, "height", img.Height)
				written++
			}

			if index >= 0 && written == 0 && skipped == 0 {
				return cli.Exit(fmt.Sprintf("error: record index %d out of range", index), 1)
			}
			log.Info("extraction complete", "written", written, "skipped", skipped, "out", outDir)
			return nil
		},
	}
}

func baseName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
