package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/benthiclabs/glf/internal/logger"
	"github.com/benthiclabs/glf/pkg/glf"
)

var (
	filePath  string
	logLevel  string
	logFormat string
	debug     bool
)

func fileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to .glf log file",
		Destination: &filePath,
		Required:    true,
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func buildLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}
	switch logFormat {
	case "json":
		return logger.JSON(os.Stderr, level)
	case "text":
		return logger.Text(os.Stderr, level)
	default:
		return logger.Pretty(os.Stderr, level)
	}
}

// openDocument opens the log named by --file, with the usual complaints
// for paths that are not GLF logs.
func openDocument(log logger.Logger) (*glf.Document, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", filePath, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%q is a directory", filePath)
	}
	lower := strings.ToLower(filePath)
	if !strings.HasSuffix(lower, ".glf") && !strings.HasSuffix(lower, ".dat") {
		return nil, fmt.Errorf("%q is not a .glf or .dat file", filePath)
	}

	doc, err := glf.Open(filePath)
	if err != nil {
		return nil, err
	}
	log.Debug("opened log",
		"path", filePath,
		"records", doc.RecordCount(),
		"statuses", doc.StatusCount(),
		"dat_size", doc.Container.DatSize,
	)
	return doc, nil
}
