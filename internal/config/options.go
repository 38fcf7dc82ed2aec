package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/virtualboard/vb-ident/internal/ident"
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvMode    = "VBID_MODE"
	EnvLogFile = "VBID_LOG_FILE"
)

// ctxKeyOptions is used to store options within a cobra command context.
type ctxKeyOptions struct{}

// Flags carries the raw values of the persistent CLI flags.
type Flags struct {
	JSON       bool
	Verbose    bool
	Mode       string
	LogFile    string
	ConfigFile string
}

// fileConfig is the optional YAML config file layout.
type fileConfig struct {
	Mode    string `yaml:"mode"`
	LogFile string `yaml:"log_file"`
}

// Options contains global settings shared by all commands.
type Options struct {
	JSONOutput bool
	Verbose    bool
	Mode       ident.Mode
	LogFile    string

	logger   *logrus.Logger
	logClose func() error
}

var (
	optionsMu sync.RWMutex
	current   *Options
)

// New creates a new Options instance populated with defaults.
func New() *Options {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Options{Mode: ident.ModeRune, logger: logger}
}

// Init resolves settings (flag, then environment, then config file) and configures logging.
func (o *Options) Init(flags Flags) error {
	var fc fileConfig
	if flags.ConfigFile != "" {
		loaded, err := loadFile(flags.ConfigFile)
		if err != nil {
			return err
		}
		fc = loaded
	}

	modeName := firstNonEmpty(flags.Mode, os.Getenv(EnvMode), fc.Mode)
	mode, err := ident.ParseMode(modeName)
	if err != nil {
		return err
	}
	logFile := firstNonEmpty(flags.LogFile, os.Getenv(EnvLogFile), fc.LogFile)

	o.JSONOutput = flags.JSON
	o.Verbose = flags.Verbose
	o.Mode = mode
	o.LogFile = logFile

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if flags.Verbose {
		logger.SetLevel(logrus.InfoLevel)
		var output io.Writer = os.Stderr
		if logFile != "" {
			// #nosec G304 -- log file path provided via command flag
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			output = f
			o.logClose = f.Close
		}
		logger.SetOutput(output)
	} else {
		logger.SetLevel(logrus.WarnLevel)
		logger.SetOutput(io.Discard)
	}

	o.logger = logger
	SetCurrent(o)

	logger.WithFields(logrus.Fields{
		"mode":   o.Mode.String(),
		"config": flags.ConfigFile,
	}).Info("options initialised")
	return nil
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	// #nosec G304 -- config path provided via command flag
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, fmt.Errorf("config file not found: %w", err)
		}
		return fc, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return fc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// SetCurrent stores the provided options as the globally accessible configuration.
func SetCurrent(o *Options) {
	optionsMu.Lock()
	defer optionsMu.Unlock()
	current = o
}

// Current retrieves the globally stored options.
func Current() (*Options, error) {
	optionsMu.RLock()
	defer optionsMu.RUnlock()
	if current == nil {
		return nil, fmt.Errorf("configuration not initialised")
	}
	return current, nil
}

// Close releases any resources held by options (e.g., log files).
func (o *Options) Close() error {
	if o.logClose != nil {
		err := o.logClose()
		o.logClose = nil
		return err
	}
	return nil
}

// WithContext returns a new context with the options stored.
func (o *Options) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKeyOptions{}, o)
}

// FromContext extracts Options from command context.
func FromContext(ctx context.Context) (*Options, error) {
	if ctx == nil {
		return nil, fmt.Errorf("nil context provided")
	}
	if opts, ok := ctx.Value(ctxKeyOptions{}).(*Options); ok {
		return opts, nil
	}
	return Current()
}

// Logger exposes the configured logger.
func (o *Options) Logger() *logrus.Logger {
	return o.logger
}
