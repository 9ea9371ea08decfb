package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/svx/internal/exit"
)

const (
	// DefaultStreamThreshold is the input size above which auto mode
	// switches to the streaming resolver.
	DefaultStreamThreshold = 4 << 20
)

var (
	ErrNoArguments       = errors.New("no arguments provided")
	ErrMissingInput      = errors.New("input data file is required")
	ErrMissingOutput     = errors.New("output search values file is required")
	ErrMissingSearchPath = errors.New("session search path is required")
	ErrInvalidMode       = errors.New("mode must be auto, document or stream")
	ErrInvalidLogLevel   = errors.New("log level must be debug, info, warn or error")
)

// Mode selects the resolution strategy for a run.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeDocument Mode = "document"
	ModeStream   Mode = "stream"
)

// Config represents the complete configuration for one svx run.
type Config struct {
	InputFile  string // read source for the JSON data
	OutputFile string // write destination for the search values
	SearchPath string // session search path specification

	Mode            Mode
	StreamThreshold int64 // bytes; auto mode streams above this size

	LogLevel slog.Level
	Quiet    bool
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return ErrMissingInput
	}
	if c.OutputFile == "" {
		return ErrMissingOutput
	}
	if c.SearchPath == "" {
		return ErrMissingSearchPath
	}

	switch c.Mode {
	case ModeAuto, ModeDocument, ModeStream:
	default:
		return fmt.Errorf("%w, got: %s", ErrInvalidMode, c.Mode)
	}

	if _, err := os.Stat(c.InputFile); err != nil {
		return fmt.Errorf("input data file %s not found: %w", c.InputFile, err)
	}

	return nil
}

// stepFile mirrors the host pipeline's step parameters.
type stepFile struct {
	InputDataFile          string `yaml:"inputDataFile"`
	OutputSearchValuesFile string `yaml:"outputSearchValuesFile"`
	SessionSearchPath      string `yaml:"sessionSearchPath"`
}

// loadStepFile reads pipeline step parameters from a YAML file.
func loadStepFile(filename string) (stepFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return stepFile{}, fmt.Errorf("failed to read step file %s: %w", filename, err)
	}

	var step stepFile
	if err := yaml.Unmarshal(data, &step); err != nil {
		return stepFile{}, fmt.Errorf("failed to parse step file %s: %w", filename, err)
	}

	return step, nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	// Suppress the default usage and error output since we handle both ourselves
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		input           = fs.String("input", "", "Path to the JSON input data file")
		output          = fs.String("output", "", "Path to write the derived search values to")
		searchPath      = fs.String("search-path", "", "Session search path specification")
		step            = fs.String("step", "", "Path to YAML step file with inputDataFile, outputSearchValuesFile and sessionSearchPath")
		mode            = fs.String("mode", string(ModeAuto), "Resolution strategy: auto, document or stream")
		streamThreshold = fs.Int64("stream-threshold", DefaultStreamThreshold, "Input size in bytes above which auto mode streams")
		logLevel        = fs.String("log-level", "info", "Log level: debug, info, warn or error")
		quiet           = fs.Bool("quiet", false, "Suppress log output")
	)

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	config := &Config{
		InputFile:       *input,
		OutputFile:      *output,
		SearchPath:      *searchPath,
		Mode:            Mode(*mode),
		StreamThreshold: *streamThreshold,
		Quiet:           *quiet,
	}

	// Step file values fill in whatever the flags left unset.
	if *step != "" {
		stepValues, err := loadStepFile(*step)
		if err != nil {
			return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
		}
		if config.InputFile == "" {
			config.InputFile = stepValues.InputDataFile
		}
		if config.OutputFile == "" {
			config.OutputFile = stepValues.OutputSearchValuesFile
		}
		if config.SearchPath == "" {
			config.SearchPath = stepValues.SessionSearchPath
		}
	}

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}
	config.LogLevel = level

	if err := config.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

func parseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(value))); err != nil {
		return 0, fmt.Errorf("%w, got: %s", ErrInvalidLogLevel, value)
	}
	return level, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `svx - derive search values from a JSON document

Usage: svx [options]

Options:
  --input FILE             Path to the JSON input data file
  --output FILE            Path to write the derived search values to
  --search-path EXPR       Session search path specification
  --step FILE              YAML step file with inputDataFile, outputSearchValuesFile
                           and sessionSearchPath (flags take precedence)
  --mode MODE              Resolution strategy: auto, document or stream (default: auto)
  --stream-threshold N     Input size in bytes above which auto mode streams (default: 4194304)
  --log-level LEVEL        Log level: debug, info, warn or error (default: info)
  --quiet                  Suppress log output
  -h, --help               Show this help message

Examples:
  svx --input data.json --output values.txt --search-path '$.Clients[*].ClientID'
  svx --input data.json --output values.txt \
      --search-path 'concat(-, $.Clients[*].ClientID, $.Clients[*].ClaimID)'
  svx --step step.yaml                   # Read the three parameters from a step file
  svx --step step.yaml --mode stream     # Force the streaming resolver`
}
