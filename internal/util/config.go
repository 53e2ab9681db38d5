package util

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const DefaultMaxDepth = 100000

type Configuration struct {
	Version   string
	BuildDate string
	Commit    string

	Trace          bool
	DynamicScoping bool
	NoPrint        bool
	MaxDepth       int
	DebugJsonAST   bool
	DebugTxtAST    bool

	HistoryDSN     string
	HistoryEnabled bool

	LogLevel string
	LogFile  string
}

func DefaultConfiguration() Configuration {
	return Configuration{
		MaxDepth:       DefaultMaxDepth,
		HistoryEnabled: true,
		LogLevel:       "none",
	}
}

// LexicalScoping is the inverse of DynamicScoping; lexical is the default.
func (c Configuration) LexicalScoping() bool {
	return !c.DynamicScoping
}

// fileConfig mirrors the keys allowed in a config file. Absent keys leave the
// configuration untouched.
type fileConfig struct {
	Trace          *bool   `yaml:"trace" toml:"trace"`
	DynamicScoping *bool   `yaml:"dynamic_scoping" toml:"dynamic_scoping"`
	NoPrint        *bool   `yaml:"no_print" toml:"no_print"`
	MaxDepth       *int    `yaml:"max_depth" toml:"max_depth"`
	History        *string `yaml:"history" toml:"history"`
	HistoryEnabled *bool   `yaml:"history_enabled" toml:"history_enabled"`
	LogLevel       *string `yaml:"log_level" toml:"log_level"`
	LogFile        *string `yaml:"log_file" toml:"log_file"`
}

// LoadFile applies a .yaml, .yml or .toml file on top of cfg. Unknown keys are errors.
func LoadFile(path string, cfg *Configuration) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &fc)
		if err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("parsing config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	default:
		return fmt.Errorf("config %s: unsupported extension %q (want .yaml, .yml or .toml)", path, filepath.Ext(path))
	}

	if fc.MaxDepth != nil && *fc.MaxDepth <= 0 {
		return fmt.Errorf("config %s: max_depth must be positive, got %d", path, *fc.MaxDepth)
	}
	fc.apply(cfg)
	slog.Debug("configuration loaded", slog.String("path", path))
	return nil
}

func (fc fileConfig) apply(cfg *Configuration) {
	if fc.Trace != nil {
		cfg.Trace = *fc.Trace
	}
	if fc.DynamicScoping != nil {
		cfg.DynamicScoping = *fc.DynamicScoping
	}
	if fc.NoPrint != nil {
		cfg.NoPrint = *fc.NoPrint
	}
	if fc.MaxDepth != nil {
		cfg.MaxDepth = *fc.MaxDepth
	}
	if fc.History != nil {
		cfg.HistoryDSN = *fc.History
	}
	if fc.HistoryEnabled != nil {
		cfg.HistoryEnabled = *fc.HistoryEnabled
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
}
