// Package config loads canvass configuration from file, environment and
// defaults, in that order of increasing precedence for the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Manager handles loading configuration.
type Manager struct {
	v   *viper.Viper
	cfg *Config
}

// NewManager creates a config manager and loads the initial config.
// cfgFile may be empty; the search path is then the working directory and
// $HOME/.canvass, and a missing file is not an error.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{v: viper.New()}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.cfg = cfg

	return cm, nil
}

// initViper sets up viper with defaults and the config file.
func (cm *Manager) initViper(cfgFile string) error {
	setDefaults(cm.v)

	// Environment variables with CANVASS_ prefix; dots become underscores
	// (store.dsn -> CANVASS_STORE_DSN).
	cm.v.SetEnvPrefix("CANVASS")
	cm.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cm.v.AutomaticEnv()

	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("canvass")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
		cm.v.AddConfigPath("$HOME/.canvass")
	}

	if err := cm.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the loaded configuration.
func (cm *Manager) Get() *Config {
	return cm.cfg
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("ocr.tesseract", d.OCR.Tesseract)
	v.SetDefault("ocr.lang", d.OCR.Lang)
	v.SetDefault("ocr.psms", d.OCR.PSMs)
	v.SetDefault("ocr.oem", d.OCR.OEM)
	v.SetDefault("ocr.tessdata_dir", d.OCR.TessdataDir)
	v.SetDefault("ocr.tsv", d.OCR.TSV)
	v.SetDefault("ocr.retries", d.OCR.Retries)
	v.SetDefault("ocr.retry_delay", d.OCR.RetryDelay)
	v.SetDefault("ocr.gosseract", d.OCR.Gosseract)
	v.SetDefault("preprocess.disabled", d.Preprocess.Disabled)
	v.SetDefault("preprocess.debug_dir", d.Preprocess.DebugDir)
	v.SetDefault("preprocess.contrast", d.Preprocess.Contrast)
	v.SetDefault("preprocess.sharpen", d.Preprocess.Sharpen)
	v.SetDefault("parse.tie_break", d.Parse.TieBreak)
	v.SetDefault("lexicon.path", d.Lexicon.Path)
	v.SetDefault("ingest.pdftoppm", d.Ingest.Pdftoppm)
	v.SetDefault("ingest.dpi", d.Ingest.DPI)
	v.SetDefault("ingest.max_pages", d.Ingest.MaxPages)
	v.SetDefault("ingest.converter", d.Ingest.Converter)
	v.SetDefault("ingest.skip_hidden", d.Ingest.SkipHidden)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("export.format", d.Export.Format)
	v.SetDefault("export.path", d.Export.Path)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.initial_scan", d.Watch.InitialScan)
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	header := []byte(`# canvass configuration
# Any key can be overridden with a CANVASS_* environment variable,
# e.g. CANVASS_STORE_DSN, CANVASS_OCR_LANG.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}

// yaml.v3 renders time.Duration as nanoseconds; keep the written file
// human-readable instead.
func (d WatchCfg) MarshalYAML() (any, error) {
	type raw struct {
		Debounce    string `yaml:"debounce"`
		InitialScan bool   `yaml:"initial_scan"`
	}
	return raw{Debounce: d.Debounce.String(), InitialScan: d.InitialScan}, nil
}

func (o OCRCfg) MarshalYAML() (any, error) {
	type raw struct {
		Tesseract   string `yaml:"tesseract"`
		Lang        string `yaml:"lang"`
		PSMs        []int  `yaml:"psms"`
		OEM         int    `yaml:"oem"`
		TessdataDir string `yaml:"tessdata_dir"`
		TSV         bool   `yaml:"tsv"`
		Retries     int    `yaml:"retries"`
		RetryDelay  string `yaml:"retry_delay"`
		Gosseract   bool   `yaml:"gosseract"`
	}
	return raw{
		Tesseract:   o.Tesseract,
		Lang:        o.Lang,
		PSMs:        o.PSMs,
		OEM:         o.OEM,
		TessdataDir: o.TessdataDir,
		TSV:         o.TSV,
		Retries:     o.Retries,
		RetryDelay:  o.RetryDelay.String(),
		Gosseract:   o.Gosseract,
	}, nil
}
