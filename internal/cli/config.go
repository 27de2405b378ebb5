package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/barcodewheel/pkg/pipeline"
	"github.com/matzehuels/barcodewheel/pkg/wheel"
)

// configFileName is the config file looked up in the working directory.
const configFileName = "wheel.toml"

// Config is the TOML configuration file schema. Every key has a flag
// equivalent; flags set on the command line win over the file.
//
// Example:
//
//	[catalog]
//	csv = "products.csv"
//
//	[wheel]
//	slices = 8
//	size = 600
//
//	[wheel.slots.barcode]
//	padding = 0.12
//
//	[barcode]
//	symbology = "upca"
//
//	[colors]
//	foreground = "#1a1a2e"
type Config struct {
	Catalog struct {
		CSV             string `toml:"csv"`
		MongoURI        string `toml:"mongo_uri"`
		MongoDatabase   string `toml:"mongo_database"`
		MongoCollection string `toml:"mongo_collection"`
	} `toml:"catalog"`

	Wheel struct {
		Slices int                       `toml:"slices"`
		Size   float64                   `toml:"size"`
		Margin float64                   `toml:"margin"`
		Slots  map[string]wheel.Override `toml:"slots"`
	} `toml:"wheel"`

	Barcode struct {
		Symbology string `toml:"symbology"`
		Backend   string `toml:"backend"`
	} `toml:"barcode"`

	Font struct {
		Family string   `toml:"family"`
		Bold   bool     `toml:"bold"`
		Italic bool     `toml:"italic"`
		Files  []string `toml:"files"`
	} `toml:"font"`

	Colors struct {
		Foreground string `toml:"foreground"`
		Background string `toml:"background"`
		Canvas     string `toml:"canvas"`
	} `toml:"colors"`

	Render struct {
		Formats []string `toml:"formats"`
		Engine  string   `toml:"engine"`
		Scale   float64  `toml:"scale"`
	} `toml:"render"`

	Cache struct {
		Backend       string `toml:"backend"` // file, redis, or none
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
	} `toml:"cache"`

	Preview struct {
		Addr string `toml:"addr"`
	} `toml:"preview"`
}

// loadConfig reads the config file at path. An empty path searches the
// default locations and returns an empty config when none exists; an
// explicit path must exist.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = findConfig()
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return &Config{}, nil
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// findConfig looks for wheel.toml in the working directory, then under
// the XDG config directory.
func findConfig() string {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		p := filepath.Join(configHome, appName, "config.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".config", appName, "config.toml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// applyConfig copies config values into opts for every flag the user
// did not set explicitly. Pipeline defaults were applied before flag
// registration, so only keys present in the file are copied.
func applyConfig(cmd *cobra.Command, cfg *Config, opts *pipeline.Options) {
	flags := cmd.Flags()
	unset := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && !f.Changed
	}

	if cfg.Wheel.Slices > 0 && unset("slices") {
		opts.Slices = cfg.Wheel.Slices
	}
	if cfg.Wheel.Size > 0 && unset("size") {
		opts.Size = cfg.Wheel.Size
	}
	if cfg.Wheel.Margin > 0 && unset("margin") {
		opts.Margin = cfg.Wheel.Margin
	}
	if len(cfg.Wheel.Slots) > 0 && opts.Slots == nil {
		opts.Slots = cfg.Wheel.Slots
	}

	if cfg.Barcode.Symbology != "" && unset("symbology") {
		opts.Symbology = cfg.Barcode.Symbology
	}
	if cfg.Barcode.Backend != "" && unset("backend") {
		opts.Backend = cfg.Barcode.Backend
	}

	if cfg.Font.Family != "" && unset("font") {
		opts.Font = cfg.Font.Family
	}
	if cfg.Font.Bold && unset("bold") {
		opts.Bold = true
	}
	if cfg.Font.Italic && unset("italic") {
		opts.Italic = true
	}

	if cfg.Colors.Foreground != "" && unset("foreground") {
		opts.Foreground = cfg.Colors.Foreground
	}
	if cfg.Colors.Background != "" && unset("background") {
		opts.Background = cfg.Colors.Background
	}
	if cfg.Colors.Canvas != "" && unset("canvas") {
		opts.Canvas = cfg.Colors.Canvas
	}

	if len(cfg.Render.Formats) > 0 && unset("format") {
		opts.Formats = cfg.Render.Formats
	}
	if cfg.Render.Engine != "" && unset("engine") {
		opts.Engine = cfg.Render.Engine
	}
	if cfg.Render.Scale > 0 && unset("scale") {
		opts.Scale = cfg.Render.Scale
	}
}

// applySource decides where the catalog comes from: a positional CSV
// argument wins, then mongo flags, then the config file.
func applySource(args []string, cfg *Config, opts *pipeline.Options) {
	if len(args) > 0 {
		opts.CSV = args[0]
		return
	}
	if opts.MongoURI != "" || opts.CSV != "" {
		return
	}
	switch {
	case cfg.Catalog.CSV != "":
		opts.CSV = cfg.Catalog.CSV
	case cfg.Catalog.MongoURI != "":
		opts.MongoURI = cfg.Catalog.MongoURI
		if opts.MongoDatabase == "" {
			opts.MongoDatabase = cfg.Catalog.MongoDatabase
		}
		if opts.MongoCollection == "" {
			opts.MongoCollection = cfg.Catalog.MongoCollection
		}
	}
}
