// Command bodysvg prepares the body diagram assets: it extracts the pose
// variants of the source drawing into their own files, normalizes the
// overlay rectangles, and renders previews.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/benoitkugler/bodysvg/internal/config"
)

// Exit code policy: items which degrade with a warning still exit 0.
const (
	exitOK      = 0
	exitFailure = 1 // invalid configuration, unreadable source
	exitUsage   = 2
)

var errUsage = errors.New("usage error")

const usage = `usage: bodysvg [flags] <command> [args]

commands:
  extract              extract the configured groups into their own files
  normalize [files]    normalize the overlay rectangles (default: configured files)
  run                  extract, then normalize
  preview [files]      render PNG previews and the PDF proof sheet (default: extracted files)
  survey <file>        print the rectangles census of a file

flags:
`

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	os.Exit(run(os.Args[1:], os.Stdout))
}

// run parses the command line, executes the command and
// returns the exit code.
func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("bodysvg", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	var (
		configPath string
		verbose    bool
		source     string
		outputBase string
		padding    float64
		bounds     string
		width      int
	)
	fs.StringVar(&configPath, "config", "", "Path to a YAML or JSON configuration file")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")
	fs.StringVar(&source, "source", "", "Source drawing, overriding the configuration")
	fs.StringVar(&outputBase, "out", "", "Output base directory, overriding the configuration")
	fs.Float64Var(&padding, "padding", 0, "Padding around the extracted groups, in user units")
	fs.StringVar(&bounds, "bounds", "", "Bounds method: pairs or path")
	fs.IntVar(&width, "width", 0, "Width of the PNG previews, in pixels")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("loading configuration failed")
			return exitFailure
		}
	}
	// explicit flags take precedence over the file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source = source
		case "out":
			cfg.OutputBase = outputBase
		case "padding":
			cfg.Padding = padding
		case "bounds":
			cfg.Bounds = bounds
		case "width":
			cfg.Preview.Width = width
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return exitFailure
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}
	cmd := command{cfg: cfg, out: stdout}
	err := cmd.dispatch(fs.Arg(0), fs.Args()[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		log.Error().Err(err).Msg("invalid command line")
		fs.Usage()
		return exitUsage
	default:
		log.Error().Err(err).Msg("run failed")
		return exitFailure
	}
}
