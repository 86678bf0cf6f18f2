package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/benthiclabs/glf/internal/api"
	"github.com/benthiclabs/glf/internal/render"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		paletteName string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a GLF log over a REST API",
		Flags: append([]cli.Flag{
			fileFlag(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "palette",
				Usage:       "colour palette for rendered images (greyscale, amber)",
				Value:       "greyscale",
				Destination: &paletteName,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		}, loggingFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := LoadConfig()
			applyLoggingConfig(c, cfg)
			applyServeConfig(c, cfg, &addr, &paletteName)
			log := buildLogger()

			palette, err := render.Lookup(paletteName)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			doc, err := openDocument(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = doc.Close() }()

			server := api.NewServer(doc, filepath.Base(filePath), palette)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server",
				"address", addr,
				"file", filePath,
				"records", doc.RecordCount(),
			)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
