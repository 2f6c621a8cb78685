// Command tsmvalidate parses a .tsm track map, runs the structural
// validator over it, and exits 0 if the map is valid or 1 if any
// Error-severity issue was found.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trackmap/tsmkernel/pkg/config"
	"github.com/trackmap/tsmkernel/pkg/tsm"
	"github.com/trackmap/tsmkernel/pkg/validate"
)

const version = "1.0.0"

var (
	configPath          = flag.String("config", "", "Path to YAML policy config (optional)")
	tracksRoot          = flag.String("tracks", "", "Tracks root directory (overrides config)")
	connectivityError   = flag.Bool("connectivity-error", false, "Treat unreached cells as errors")
	requireSafeZone     = flag.Bool("require-safe-zone", false, "Require at least one safe zone")
	requireIntersection = flag.Bool("require-intersection", false, "Require at least one intersection")
	verbose             = flag.Bool("verbose", false, "Enable debug-level logging")
	versionF            = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *versionF {
		fmt.Printf("tsmvalidate version %s\n", version)
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tsmvalidate [flags] <track.tsm>")
		os.Exit(1)
	}

	logger := newLogger(*verbose).With().Str("run_id", uuid.NewString()).Logger()

	ok, err := run(logger, flag.Arg(0))
	if err != nil {
		logger.Error().Err(err).Msg("validation run failed")
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

func run(logger zerolog.Logger, trackArg string) (bool, error) {
	opts := validate.Options{
		ConnectivitySeverityError: *connectivityError,
		RequireSafeZone:           *requireSafeZone,
		RequireIntersection:       *requireIntersection,
	}
	root := "Tracks"
	if exe, err := os.Executable(); err == nil {
		root = filepath.Join(filepath.Dir(exe), "Tracks")
	}

	if *configPath != "" {
		cfg, err := config.LoadPolicyConfig(*configPath)
		if err != nil {
			return false, fmt.Errorf("loading config: %w", err)
		}
		opts = cfg.Options()
		root = cfg.TracksRoot
	}
	if *tracksRoot != "" {
		root = *tracksRoot
	}
	if *connectivityError {
		opts.ConnectivitySeverityError = true
	}
	if *requireSafeZone {
		opts.RequireSafeZone = true
	}
	if *requireIntersection {
		opts.RequireIntersection = true
	}

	path := config.ResolveTrackPath(root, trackArg)
	logger.Debug().Str("path", path).Msg("resolved track path")

	start := time.Now()
	m, parseIssues, err := tsm.Parse(context.Background(), path)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}

	result := validate.Validate(m, opts)
	elapsed := time.Since(start)

	allIssues := append(append([]tsm.Issue{}, parseIssues...), result.Issues...)
	for _, iss := range allIssues {
		ev := logger.Warn()
		if iss.Severity == tsm.Error {
			ev = logger.Error()
		}
		ev.Str("kind", iss.Kind.String()).Int("line", iss.Line).Msg(iss.Message)
	}

	hasError := !result.IsValid()
	for _, iss := range parseIssues {
		if iss.Severity == tsm.Error {
			hasError = true
		}
	}

	logger.Info().
		Dur("elapsed", elapsed).
		Int("issues", len(allIssues)).
		Bool("valid", !hasError).
		Msg("validation complete")

	if hasError {
		fmt.Printf("INVALID: %s (%d issue(s))\n", path, len(allIssues))
	} else {
		fmt.Printf("OK: %s\n", path)
	}

	return !hasError, nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}
