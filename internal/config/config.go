package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Extraction defaults
	DefaultMinTextLength  = 50
	DefaultFragmentRatio  = 0.3
	DefaultMarkerMinLen   = 20
	DefaultSectionMinLen  = 50
	DefaultAttemptTimeout = 30 * time.Second
	DefaultPDFToText      = "pdftotext"
	DefaultPython         = "python3"
	DefaultConcurrency    = 4

	// EnvPrefix is prepended to every environment override
	EnvPrefix = "RFQ_EXTRACT"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// ErrVersionRequested is returned by Load when --version was passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the RFQ extractor binaries
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Documents are only read from below this directory
	PDFDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	LogFile     string
	MaxFileSize int64 // Maximum PDF file size in bytes

	// Extraction tuning
	MinTextLength  int
	FragmentRatio  float64
	MarkerMinLen   int
	SectionMinLen  int
	AttemptTimeout time.Duration
	PDFToText      string
	Python         string
	Concurrency    int
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:           ModeStdio, // Default to stdio mode for MCP compatibility
		Host:           DefaultHost,
		Port:           DefaultPort,
		PDFDirectory:   currentDir,
		Version:        "1.0.0",
		ServerName:     "mcp-rfq-extractor",
		LogLevel:       DefaultLogLevel,
		MaxFileSize:    DefaultMaxFileSize,
		MinTextLength:  DefaultMinTextLength,
		FragmentRatio:  DefaultFragmentRatio,
		MarkerMinLen:   DefaultMarkerMinLen,
		SectionMinLen:  DefaultSectionMinLen,
		AttemptTimeout: DefaultAttemptTimeout,
		PDFToText:      DefaultPDFToText,
		Python:         DefaultPython,
		Concurrency:    DefaultConcurrency,
	}
}

// LoadFromFlags parses the process command line and returns a configuration
func LoadFromFlags() (*Config, error) {
	return Load(pflag.CommandLine, os.Args[1:])
}

// Load registers the shared flags on flags, parses args and resolves every
// value from flags, RFQ_EXTRACT_* environment variables (a .env file in
// the working directory is read first) and defaults, in that order.
// Callers may define their own flags on flags before calling Load.
func Load(flags *pflag.FlagSet, args []string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(flags, cfg)
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	setupUsageMessage(flags)

	if checkVersionFlag(args) {
		return nil, ErrVersionRequested
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	populateConfigFromViper(v, cfg)

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("logfile", cfg.LogFile)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("mintextlength", cfg.MinTextLength)
	v.SetDefault("fragmentratio", cfg.FragmentRatio)
	v.SetDefault("markerminlen", cfg.MarkerMinLen)
	v.SetDefault("sectionminlen", cfg.SectionMinLen)
	v.SetDefault("attempttimeout", cfg.AttemptTimeout)
	v.SetDefault("pdftotext", cfg.PDFToText)
	v.SetDefault("python", cfg.Python)
	v.SetDefault("concurrency", cfg.Concurrency)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	flags.String("host", cfg.Host, "Server host address (server mode only)")
	flags.Int("port", cfg.Port, "Server port (server mode only)")
	flags.String("dir", cfg.PDFDirectory, "Directory containing RFQ documents")
	flags.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("logfile", cfg.LogFile, "Also write JSON logs to this file, rotated")
	flags.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	flags.Int("mintextlength", cfg.MinTextLength, "Characters a backend must produce to be accepted")
	flags.Float64("fragmentratio", cfg.FragmentRatio, "Share of single-character tokens that marks text as fragmented")
	flags.Int("markerminlen", cfg.MarkerMinLen, "Minimum length of an Item/Line marker section")
	flags.Int("sectionminlen", cfg.SectionMinLen, "Minimum length of a separator or blank-line section")
	flags.Duration("attempttimeout", cfg.AttemptTimeout, "Time limit for a single extraction backend")
	flags.String("pdftotext", cfg.PDFToText, "pdftotext executable")
	flags.String("python", cfg.Python, "Python interpreter used by the script backend")
	flags.Int("concurrency", cfg.Concurrency, "Documents processed in parallel by the batch CLI")
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(flags *pflag.FlagSet) {
	flags.Usage = func() {
		printUsage(os.Stderr, flags)
	}
}

func printUsage(w io.Writer, flags *pflag.FlagSet) {
	flags.SetOutput(w)
	fmt.Fprintf(w, "Usage of %s:\n", os.Args[0])
	fmt.Fprintf(w, "\nRFQ Extractor - pulls furniture line items out of RFQ PDF documents\n\n")
	fmt.Fprintf(w, "Options:\n")
	flags.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  %s --dir=/path/to/rfqs                     # stdio mode\n", os.Args[0])
	fmt.Fprintf(w, "  %s --mode=server --dir=/path/to/rfqs       # server mode\n", os.Args[0])
	fmt.Fprintf(w, "  %s --attempttimeout=1m --mintextlength=80  # tuned extraction\n", os.Args[0])
	fmt.Fprintf(w, "\nEnvironment Variables (also read from ./.env):\n")
	flags.VisitAll(func(f *pflag.Flag) {
		fmt.Fprintf(w, "  %s_%s\n", EnvPrefix, strings.ToUpper(f.Name))
	})
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.LogFile = v.GetString("logfile")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.MinTextLength = v.GetInt("mintextlength")
	cfg.FragmentRatio = v.GetFloat64("fragmentratio")
	cfg.MarkerMinLen = v.GetInt("markerminlen")
	cfg.SectionMinLen = v.GetInt("sectionminlen")
	cfg.AttemptTimeout = v.GetDuration("attempttimeout")
	cfg.PDFToText = v.GetString("pdftotext")
	cfg.Python = v.GetString("python")
	cfg.Concurrency = v.GetInt("concurrency")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Port only matters in server mode
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.MinTextLength < 1 {
		return errors.New("minimum text length must be positive")
	}
	if c.FragmentRatio <= 0 || c.FragmentRatio > 1 {
		return fmt.Errorf("fragment ratio must be in (0, 1], got %v", c.FragmentRatio)
	}
	if c.MarkerMinLen < 0 || c.SectionMinLen < 0 {
		return errors.New("section length thresholds cannot be negative")
	}
	if c.AttemptTimeout <= 0 {
		return errors.New("attempt timeout must be positive")
	}
	if c.PDFToText == "" || c.Python == "" {
		return errors.New("pdftotext and python executables must be named")
	}
	if c.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"MinTextLength: %d, FragmentRatio: %v, AttemptTimeout: %s, Concurrency: %d}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize,
		c.MinTextLength, c.FragmentRatio, c.AttemptTimeout, c.Concurrency)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
