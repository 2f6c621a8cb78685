// Command tsmview parses a .tsm track map and dumps it as SVG or JSON
// for visual or tooling inspection.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/trackmap/tsmkernel/pkg/export"
	"github.com/trackmap/tsmkernel/pkg/tsm"
)

var (
	format  = flag.String("format", "svg", "Output format: svg, json, json-compact, or tsm")
	output  = flag.String("output", "", "Output file path (default: stdout)")
	title   = flag.String("title", "Track Map", "SVG title")
	verbose = flag.Bool("verbose", false, "Enable debug-level logging")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tsmview [flags] <track.tsm>")
		os.Exit(1)
	}

	logger := newLogger(*verbose)
	if err := run(logger, flag.Arg(0)); err != nil {
		logger.Error().Err(err).Msg("view failed")
		os.Exit(1)
	}
}

func run(logger zerolog.Logger, path string) error {
	m, issues, err := tsm.Parse(context.Background(), path)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, iss := range issues {
		logger.Warn().Str("kind", iss.Kind.String()).Int("line", iss.Line).Msg(iss.Message)
	}

	var data []byte
	switch *format {
	case "svg":
		opts := export.DefaultSVGOptions()
		opts.Title = *title
		data, err = export.ExportSVG(m, opts)
	case "json":
		data, err = export.ExportJSON(m)
	case "json-compact":
		data, err = export.ExportJSONCompact(m)
	case "tsm":
		var sb strings.Builder
		err = export.WriteTSM(&sb, m)
		data = []byte(sb.String())
	default:
		return fmt.Errorf("unknown format %q: must be svg, json, json-compact, or tsm", *format)
	}
	if err != nil {
		return fmt.Errorf("exporting: %w", err)
	}

	if *output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(*output, data, 0644)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
