package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func main() {
	var (
		dir       = flag.String("pkg", ".", "directory of the package holding the interface")
		ifaceName = flag.String("interface", "", "name of the interface to double (required)")
		out       = flag.String("out", "", "output file, defaults to <interface>_double_gen.go next to the package")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		With().
		Timestamp().
		Logger()

	if *ifaceName == "" {
		logger.Fatal().Msg("missing -interface flag")
	}

	start := time.Now()

	pkg, iface, err := loadInterface(*dir, *ifaceName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load interface")
	}
	logger.Debug().
		Str("package", pkg.PkgPath).
		Str("interface", *ifaceName).
		Int("methods", iface.NumMethods()).
		Msg("interface loaded")

	model, err := buildModel(pkg, *ifaceName, iface)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to analyze interface")
	}

	code, err := emit(model)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to generate adapter")
	}

	target := *out
	if target == "" {
		target = filepath.Join(*dir, fmt.Sprintf("%s_double_gen.go", strings.ToLower(*ifaceName)))
	}
	if err := os.WriteFile(target, code, 0o644); err != nil {
		logger.Fatal().Err(err).Msg("failed to write adapter")
	}

	logger.Info().
		Str("file", target).
		Dur("took", time.Since(start)).
		Msg("adapter generated")
}
