package config

import (
	"strings"
	"time"

	"github.com/kwheaton/canvass/internal/ingest"
	"github.com/kwheaton/canvass/internal/ocr"
	"github.com/kwheaton/canvass/internal/parse"
	"github.com/kwheaton/canvass/internal/preprocess"
)

// Config holds canvass configuration.
// Loaded from canvass.yaml in the working directory or $HOME/.canvass,
// with CANVASS_* environment variables taking precedence.
type Config struct {
	Log        LogCfg        `mapstructure:"log" yaml:"log"`
	OCR        OCRCfg        `mapstructure:"ocr" yaml:"ocr"`
	Preprocess PreprocessCfg `mapstructure:"preprocess" yaml:"preprocess"`
	Parse      ParseCfg      `mapstructure:"parse" yaml:"parse"`
	Lexicon    LexiconCfg    `mapstructure:"lexicon" yaml:"lexicon"`
	Ingest     IngestCfg     `mapstructure:"ingest" yaml:"ingest"`
	Store      StoreCfg      `mapstructure:"store" yaml:"store"`
	Export     ExportCfg     `mapstructure:"export" yaml:"export"`
	Watch      WatchCfg      `mapstructure:"watch" yaml:"watch"`
}

// LogCfg controls the slog handler.
type LogCfg struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// OCRCfg configures the tesseract engine.
type OCRCfg struct {
	Tesseract   string        `mapstructure:"tesseract" yaml:"tesseract"`
	Lang        string        `mapstructure:"lang" yaml:"lang"`
	PSMs        []int         `mapstructure:"psms" yaml:"psms"`
	OEM         int           `mapstructure:"oem" yaml:"oem"`
	TessdataDir string        `mapstructure:"tessdata_dir" yaml:"tessdata_dir"`
	TSV         bool          `mapstructure:"tsv" yaml:"tsv"`
	Retries     int           `mapstructure:"retries" yaml:"retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	Gosseract   bool          `mapstructure:"gosseract" yaml:"gosseract"`
}

// PreprocessCfg configures the image variant pass.
type PreprocessCfg struct {
	Disabled bool    `mapstructure:"disabled" yaml:"disabled"`
	DebugDir string  `mapstructure:"debug_dir" yaml:"debug_dir"`
	Contrast float64 `mapstructure:"contrast" yaml:"contrast"`
	Sharpen  float64 `mapstructure:"sharpen" yaml:"sharpen"`
}

// ParseCfg configures the line parser.
type ParseCfg struct {
	// TieBreak decides contested cue tokens: "address" or "occupation".
	TieBreak string `mapstructure:"tie_break" yaml:"tie_break"`
}

// LexiconCfg points at a lexicon file; empty uses the embedded defaults.
type LexiconCfg struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// IngestCfg configures file discovery and format conversion.
type IngestCfg struct {
	Pdftoppm   string `mapstructure:"pdftoppm" yaml:"pdftoppm"`
	DPI        int    `mapstructure:"dpi" yaml:"dpi"`
	MaxPages   int    `mapstructure:"max_pages" yaml:"max_pages"`
	Converter  string `mapstructure:"converter" yaml:"converter"` // magick, convert or gm
	SkipHidden bool   `mapstructure:"skip_hidden" yaml:"skip_hidden"`
}

// StoreCfg configures persistence. DSN is a SQLite path or a postgres URL.
type StoreCfg struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// ExportCfg configures the default export target.
type ExportCfg struct {
	Format string `mapstructure:"format" yaml:"format"` // csv or xlsx
	Path   string `mapstructure:"path" yaml:"path"`
}

// WatchCfg configures the directory watcher.
type WatchCfg struct {
	Debounce    time.Duration `mapstructure:"debounce" yaml:"debounce"`
	InitialScan bool          `mapstructure:"initial_scan" yaml:"initial_scan"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogCfg{
			Level:  "info",
			Format: "text",
		},
		OCR: OCRCfg{
			Tesseract:  "tesseract",
			Lang:       "eng",
			PSMs:       []int{3, 4, 6},
			Retries:    2,
			RetryDelay: 500 * time.Millisecond,
		},
		Preprocess: PreprocessCfg{
			Contrast: 30,
			Sharpen:  1.0,
		},
		Parse: ParseCfg{
			TieBreak: "address",
		},
		Ingest: IngestCfg{
			Pdftoppm:   "pdftoppm",
			DPI:        300,
			SkipHidden: true,
		},
		Store: StoreCfg{
			DSN: "canvass.db",
		},
		Export: ExportCfg{
			Format: "csv",
			Path:   "records.csv",
		},
		Watch: WatchCfg{
			Debounce:    2 * time.Second,
			InitialScan: true,
		},
	}
}

// ToOCRConfig converts the OCR section for ocr.NewEngine.
func (c *Config) ToOCRConfig() ocr.Config {
	retries := c.OCR.Retries
	if retries < 0 {
		retries = 0
	}
	return ocr.Config{
		Tesseract:    c.OCR.Tesseract,
		Lang:         c.OCR.Lang,
		PSMs:         c.OCR.PSMs,
		OEM:          c.OCR.OEM,
		TessdataDir:  c.OCR.TessdataDir,
		EnableTSV:    c.OCR.TSV,
		Retries:      uint(retries),
		RetryDelay:   c.OCR.RetryDelay,
		UseGosseract: c.OCR.Gosseract,
	}
}

// ToPreprocessConfig converts the preprocess section.
func (c *Config) ToPreprocessConfig() preprocess.Config {
	return preprocess.Config{
		Disabled: c.Preprocess.Disabled,
		DebugDir: c.Preprocess.DebugDir,
		Contrast: c.Preprocess.Contrast,
		Sharpen:  c.Preprocess.Sharpen,
	}
}

// ToPDFConfig converts the ingest section for the PDF rasterizer.
func (c *Config) ToPDFConfig() ingest.PDFConfig {
	return ingest.PDFConfig{
		Pdftoppm: c.Ingest.Pdftoppm,
		DPI:      c.Ingest.DPI,
		MaxPages: c.Ingest.MaxPages,
	}
}

// ToTieBreak maps the configured tie-break name. Unknown values keep the
// address-wins default.
func (c *Config) ToTieBreak() parse.TieBreak {
	if strings.EqualFold(c.Parse.TieBreak, "occupation") {
		return parse.TieOccupation
	}
	return parse.TieAddress
}
